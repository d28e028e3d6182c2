package mail

import (
	"context"
	"fmt"

	"github.com/bookly/bookly-server/internal/ratelimit"
)

// ThrottledSender holds each Send until the relay's quota has room.
// All workers share one bucket keyed by relay host.
type ThrottledSender struct {
	next    Sender
	limiter *ratelimit.KeyedRateLimiter
	key     string
}

// NewThrottledSender wraps next so at most perMinute messages leave per minute.
func NewThrottledSender(next Sender, perMinute int, host string) *ThrottledSender {
	return &ThrottledSender{
		next:    next,
		limiter: ratelimit.PerMinute(perMinute),
		key:     host,
	}
}

// Send waits for a token, then delivers. A cancelled ctx abandons the message.
func (s *ThrottledSender) Send(ctx context.Context, msg Message) error {
	if err := s.limiter.Wait(ctx, s.key); err != nil {
		return fmt.Errorf("mail rate limit: %w", err)
	}
	return s.next.Send(ctx, msg)
}

// Close releases the limiter's sweeper.
func (s *ThrottledSender) Close() error {
	s.limiter.Stop()
	return nil
}
