package blocklist

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "bookly:blocklist:"

// Redis keeps revoked ids as expiring Redis keys, shared by every server instance.
type Redis struct {
	rdb *redis.Client
}

// NewRedis wraps an existing client. The client's lifecycle stays with the caller.
func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

// Add stores jti with an expiry of ttl.
func (r *Redis) Add(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.rdb.Set(ctx, redisKeyPrefix+jti, "", ttl).Err(); err != nil {
		return fmt.Errorf("blocklist add: %w", err)
	}
	return nil
}

// Contains reports whether the jti key is still present.
func (r *Redis) Contains(ctx context.Context, jti string) (bool, error) {
	n, err := r.rdb.Exists(ctx, redisKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("blocklist lookup: %w", err)
	}
	return n > 0, nil
}

// Claim relies on SET NX, so only the first writer of the key wins.
func (r *Redis) Claim(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}
	ok, err := r.rdb.SetNX(ctx, redisKeyPrefix+jti, "", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("blocklist claim: %w", err)
	}
	return ok, nil
}

// Close is a no-op; the shared client is closed by its owner.
func (r *Redis) Close() error {
	return nil
}
