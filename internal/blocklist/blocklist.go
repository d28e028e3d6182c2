// Package blocklist records revoked token ids until the tokens would have expired anyway.
package blocklist

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
)

// Blocklist stores revoked token ids (jti) with a time to live.
type Blocklist interface {
	// Add revokes jti for ttl. A non-positive ttl is a no-op since the token has already expired.
	Add(ctx context.Context, jti string, ttl time.Duration) error
	// Contains reports whether jti is currently revoked.
	Contains(ctx context.Context, jti string) (bool, error)
	// Claim atomically revokes jti for ttl and reports whether this call was
	// the one that did it. Of any number of concurrent claims on one jti,
	// at most one returns true. A non-positive ttl never claims.
	Claim(ctx context.Context, jti string, ttl time.Duration) (bool, error)
	Close() error
}

// Backends.
const (
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Backend string
	// DataPath is the parent directory of the Badger files.
	DataPath string
	// Redis is required for the redis backend and is not closed by the blocklist.
	Redis  *redis.Client
	Logger *slog.Logger
}

// New builds the blocklist named by opts.Backend.
func New(opts Options) (Blocklist, error) {
	switch opts.Backend {
	case BackendBadger:
		return OpenBadger(filepath.Join(opts.DataPath, "blocklist"), opts.Logger)
	case BackendMemory:
		return OpenBadger("", opts.Logger)
	case BackendRedis:
		if opts.Redis == nil {
			return nil, fmt.Errorf("redis blocklist requires a redis client")
		}
		return NewRedis(opts.Redis), nil
	default:
		return nil, fmt.Errorf("unknown blocklist backend %q", opts.Backend)
	}
}
