package providers

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do/v2"

	"github.com/bookly/bookly-server/internal/config"
	"github.com/bookly/bookly-server/internal/logger"
	"github.com/bookly/bookly-server/internal/store/sqlstore"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlstore.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the SQL database and applies pending migrations.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.App.DataPath, 0o750); err != nil {
		return nil, fmt.Errorf("create data path: %w", err)
	}

	db, err := sqlstore.Open(cfg.Database.URL, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "dialect", db.Dialect())

	return &StoreHandle{Store: db}, nil
}

// RedisHandle holds the shared Redis client. Client is nil when nothing is configured to use Redis.
type RedisHandle struct {
	Client *redis.Client
}

// Shutdown implements do.Shutdownable.
func (h *RedisHandle) Shutdown() error {
	if h.Client == nil {
		return nil
	}
	return h.Client.Close()
}

// ProvideRedis connects to Redis when the blocklist or mail queue needs it.
func ProvideRedis(i do.Injector) (*RedisHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.UsesRedis() {
		return &RedisHandle{}, nil
	}

	var opts *redis.Options
	if cfg.Redis.URL != "" {
		parsed, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: cfg.Redis.Addr()}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
	}

	log.Info("Redis connected", "addr", opts.Addr)

	return &RedisHandle{Client: client}, nil
}
