// Package main prints a summary of a Bookly data directory: row counts from
// the SQL database and the revoked tokens held in the Badger blocklist.
//
// Stop the server first; Badger holds an exclusive lock on its directory.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/bookly/bookly-server/internal/logger"
	"github.com/bookly/bookly-server/internal/store/sqlstore"
)

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/Bookly")
	}
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = "sqlite://" + filepath.Join(dataPath, "bookly.db")
	}

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	inspectSQL(dbURL)
	fmt.Println()
	inspectBlocklist(filepath.Join(dataPath, "blocklist"))
}

func inspectSQL(url string) {
	s, err := sqlstore.Open(url, logger.Discard())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	fmt.Printf("Database: %s (%s)\n", url, s.Dialect())

	users, err := s.ListUsers(ctx)
	if err != nil {
		log.Fatalf("Failed to list users: %v", err)
	}
	verified, admins := 0, 0
	for _, u := range users {
		if u.IsVerified {
			verified++
		}
		if u.IsAdmin() {
			admins++
		}
	}
	fmt.Printf("  Users:   %d (%d verified, %d admin)\n", len(users), verified, admins)

	books, err := s.ListBooks(ctx)
	if err != nil {
		log.Fatalf("Failed to list books: %v", err)
	}
	orphaned := 0
	for _, b := range books {
		if b.UserUID == "" {
			orphaned++
		}
	}
	fmt.Printf("  Books:   %d (%d without owner)\n", len(books), orphaned)

	reviews, err := s.ListReviews(ctx)
	if err != nil {
		log.Fatalf("Failed to list reviews: %v", err)
	}
	fmt.Printf("  Reviews: %d\n", len(reviews))

	tags, err := s.ListTags(ctx)
	if err != nil {
		log.Fatalf("Failed to list tags: %v", err)
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	fmt.Printf("  Tags:    %d %s\n", len(tags), formatList(names, 8))
}

func inspectBlocklist(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("Blocklist: %s (not present, redis or memory backend?)\n", path)
		return
	}

	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open blocklist: %v", err)
	}
	defer db.Close()

	fmt.Printf("Blocklist: %s\n", path)

	now := time.Now()
	count := 0
	var nextExpiry time.Time

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte("jti:")})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			if item.IsDeletedOrExpired() {
				continue
			}
			count++

			expires := time.Unix(int64(item.ExpiresAt()), 0)
			if nextExpiry.IsZero() || expires.Before(nextExpiry) {
				nextExpiry = expires
			}
			if count <= 5 {
				fmt.Printf("  %s expires in %s\n",
					strings.TrimPrefix(string(item.Key()), "jti:"),
					expires.Sub(now).Round(time.Second))
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to read blocklist: %v", err)
	}

	fmt.Printf("  Revoked tokens: %d\n", count)
	if count > 0 {
		fmt.Printf("  Next expiry: %s\n", nextExpiry.Format(time.RFC3339))
	}
}

func formatList(items []string, limit int) string {
	if len(items) == 0 {
		return ""
	}
	if len(items) > limit {
		return "[" + strings.Join(items[:limit], ", ") + ", ...]"
	}
	return "[" + strings.Join(items, ", ") + "]"
}
