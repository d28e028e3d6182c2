// Package ratelimit provides a keyed rate limiter using token bucket algorithm.
// It supports both non-blocking (Allow) and blocking (Wait) operations.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// entry pairs a limiter with the last time its key was seen.
type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter manages per-key rate limiting.
// Each unique key gets its own independent rate limiter. Keys idle for
// longer than the idle timeout are evicted by a background sweep.
type KeyedRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	limit   rate.Limit
	burst   int
	idle    time.Duration
	now     func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// DefaultIdleTimeout is how long an unused key is remembered.
const DefaultIdleTimeout = 10 * time.Minute

// New creates a new keyed rate limiter.
// rps: requests per second allowed.
// burst: maximum burst size (tokens available immediately).
func New(rps float64, burst int) *KeyedRateLimiter {
	return NewWithIdleTimeout(rps, burst, DefaultIdleTimeout)
}

// PerMinute creates a limiter allowing n requests per minute per key, all of which may burst.
func PerMinute(n int) *KeyedRateLimiter {
	return New(float64(n)/time.Minute.Seconds(), n)
}

// NewWithIdleTimeout is New with a custom eviction window.
func NewWithIdleTimeout(rps float64, burst int, idle time.Duration) *KeyedRateLimiter {
	krl := &KeyedRateLimiter{
		entries: make(map[string]*entry),
		limit:   rate.Limit(rps),
		burst:   burst,
		idle:    idle,
		now:     time.Now,
		done:    make(chan struct{}),
	}

	go krl.cleanup()

	return krl
}

// Allow checks if a request for the given key should be allowed.
// Returns immediately without blocking. Use for inbound request protection.
func (krl *KeyedRateLimiter) Allow(key string) bool {
	return krl.getLimiter(key).Allow()
}

// Wait blocks until a request for the given key is allowed or context is canceled.
func (krl *KeyedRateLimiter) Wait(ctx context.Context, key string) error {
	return krl.getLimiter(key).Wait(ctx)
}

// Len returns the number of tracked keys.
func (krl *KeyedRateLimiter) Len() int {
	krl.mu.Lock()
	defer krl.mu.Unlock()
	return len(krl.entries)
}

// getLimiter returns the limiter for a key, creating one if needed.
func (krl *KeyedRateLimiter) getLimiter(key string) *rate.Limiter {
	krl.mu.Lock()
	defer krl.mu.Unlock()

	e, ok := krl.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(krl.limit, krl.burst)}
		krl.entries[key] = e
	}
	e.lastSeen = krl.now()
	return e.limiter
}

// Stop shuts down the cleanup goroutine.
func (krl *KeyedRateLimiter) Stop() {
	krl.stopOnce.Do(func() {
		close(krl.done)
	})
}

// evict drops keys idle since before cutoff.
func (krl *KeyedRateLimiter) evict(cutoff time.Time) {
	krl.mu.Lock()
	defer krl.mu.Unlock()
	for key, e := range krl.entries {
		if e.lastSeen.Before(cutoff) {
			delete(krl.entries, key)
		}
	}
}

func (krl *KeyedRateLimiter) cleanup() {
	ticker := time.NewTicker(krl.idle)
	defer ticker.Stop()

	for {
		select {
		case <-krl.done:
			return
		case <-ticker.C:
			krl.evict(krl.now().Add(-krl.idle))
		}
	}
}
