package blocklist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	jtiPrefix  = "jti:"
	gcInterval = 10 * time.Minute
)

// Badger keeps revoked ids in an embedded Badger database, relying on entry TTLs for expiry.
type Badger struct {
	db     *badger.DB
	logger *slog.Logger

	stop chan struct{}
	wg   sync.WaitGroup
}

// OpenBadger opens a Badger blocklist at path. An empty path keeps everything in memory.
func OpenBadger(path string, logger *slog.Logger) (*Badger, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable Badger's internal logging
	if path == "" {
		opts = opts.WithInMemory(true)
	} else {
		opts.SyncWrites = true
		opts.CompactL0OnClose = true
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	b := &Badger{db: db, logger: logger, stop: make(chan struct{})}
	if path != "" {
		b.wg.Add(1)
		go b.gcLoop()
		if logger != nil {
			logger.Info("Token blocklist opened", "path", path)
		}
	}
	return b, nil
}

func key(jti string) []byte {
	return []byte(jtiPrefix + jti)
}

// Add revokes jti until ttl elapses.
func (b *Badger) Add(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return b.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key(jti), []byte{1}).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
}

// Contains reports whether jti is revoked and not yet expired.
func (b *Badger) Contains(_ context.Context, jti string) (bool, error) {
	err := b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key(jti))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// errClaimed aborts a claim transaction when the key is already present.
var errClaimed = errors.New("jti already claimed")

// Claim reads and writes the key in one transaction. Badger rejects the
// later of two overlapping transactions with ErrConflict, which counts as lost.
func (b *Badger) Claim(_ context.Context, jti string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key(jti))
		if err == nil {
			return errClaimed
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.SetEntry(badger.NewEntry(key(jti), []byte{1}).WithTTL(ttl))
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errClaimed), errors.Is(err, badger.ErrConflict):
		return false, nil
	default:
		return false, fmt.Errorf("blocklist claim: %w", err)
	}
}

// Close stops value log GC and closes the database.
func (b *Badger) Close() error {
	close(b.stop)
	b.wg.Wait()
	return b.db.Close()
}

// gcLoop reclaims space held by expired entries.
func (b *Badger) gcLoop() {
	defer b.wg.Done()

	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stop:
			return
		case <-ticker.C:
			for {
				// RunValueLogGC returns an error once there is nothing left to rewrite.
				if err := b.db.RunValueLogGC(0.5); err != nil {
					if !errors.Is(err, badger.ErrNoRewrite) && b.logger != nil {
						b.logger.Warn("blocklist value log GC failed", "error", err)
					}
					break
				}
			}
		}
	}
}
