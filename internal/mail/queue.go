package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrQueueFull is returned by MemoryQueue.Enqueue when the buffer has no room.
var ErrQueueFull = errors.New("mail queue is full")

// ErrQueueClosed is returned when enqueueing after Close.
var ErrQueueClosed = errors.New("mail queue is closed")

const sendTimeout = 30 * time.Second

// Queue accepts messages for background delivery.
type Queue interface {
	// Enqueue hands msg to the queue without waiting for delivery.
	Enqueue(ctx context.Context, msg Message) error
	// Start launches the delivery workers.
	Start(ctx context.Context)
	// Close stops accepting messages and waits for the workers to exit.
	Close() error
}

func deliver(sender Sender, logger *slog.Logger, msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := sender.Send(ctx, msg); err != nil {
		logger.Error("email delivery failed", "subject", msg.Subject, "recipients", len(msg.To), "error", err)
		return
	}
	logger.Debug("email delivered", "subject", msg.Subject, "recipients", len(msg.To))
}

// MemoryQueue is an in-process queue backed by a buffered channel.
// Messages still buffered at Close are delivered before Close returns.
type MemoryQueue struct {
	sender  Sender
	logger  *slog.Logger
	workers int

	mu     sync.RWMutex
	ch     chan Message
	closed bool
	wg     sync.WaitGroup
}

// NewMemoryQueue creates a queue with room for buffer pending messages.
func NewMemoryQueue(sender Sender, workers, buffer int, logger *slog.Logger) *MemoryQueue {
	if workers < 1 {
		workers = 1
	}
	return &MemoryQueue{
		sender:  sender,
		logger:  logger,
		workers: workers,
		ch:      make(chan Message, buffer),
	}
}

// Start launches the workers. The context is unused; workers stop when Close drains the channel.
func (q *MemoryQueue) Start(_ context.Context) {
	for range q.workers {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for msg := range q.ch {
				deliver(q.sender, q.logger, msg)
			}
		}()
	}
	q.logger.Info("mail queue started", "backend", "memory", "workers", q.workers)
}

// Enqueue buffers msg, failing fast with ErrQueueFull instead of blocking.
func (q *MemoryQueue) Enqueue(_ context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.ch <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops intake and waits for buffered messages to be delivered.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	q.wg.Wait()
	return nil
}

const redisQueueKey = "bookly:mail"

// RedisQueue pushes messages onto a Redis list so any server instance can deliver them.
type RedisQueue struct {
	rdb     *redis.Client
	sender  Sender
	logger  *slog.Logger
	workers int
	key     string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRedisQueue creates a queue on the shared client. The client is not closed by the queue.
func NewRedisQueue(rdb *redis.Client, sender Sender, workers int, logger *slog.Logger) *RedisQueue {
	if workers < 1 {
		workers = 1
	}
	return &RedisQueue{
		rdb:     rdb,
		sender:  sender,
		logger:  logger,
		workers: workers,
		key:     redisQueueKey,
	}
}

// Enqueue serializes msg and pushes it onto the list.
func (q *RedisQueue) Enqueue(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	if err := q.rdb.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("enqueue message: %w", err)
	}
	return nil
}

// Start launches workers that block on BRPOP until ctx is cancelled or Close is called.
func (q *RedisQueue) Start(ctx context.Context) {
	ctx, q.cancel = context.WithCancel(ctx)
	for range q.workers {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			q.work(ctx)
		}()
	}
	q.logger.Info("mail queue started", "backend", "redis", "workers", q.workers, "key", q.key)
}

func (q *RedisQueue) work(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		// A finite timeout lets the loop notice cancellation even on an idle list.
		res, err := q.rdb.BRPop(ctx, 5*time.Second, q.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			q.logger.Error("mail queue pop failed", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		// BRPOP returns [key, value].
		if len(res) < 2 {
			continue
		}

		var msg Message
		if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
			q.logger.Error("dropping undecodable mail payload", "error", err)
			continue
		}
		deliver(q.sender, q.logger, msg)
	}
}

// Close stops the workers. Messages left on the list are picked up on next start.
func (q *RedisQueue) Close() error {
	if q.cancel != nil {
		q.cancel()
	}
	q.wg.Wait()
	return nil
}
