// Package main runs database migrations for the Bookly server.
//
// Usage:
//
//	go run ./cmd/migrate up
//	go run ./cmd/migrate down
//	go run ./cmd/migrate status
//	go run ./cmd/migrate version
//	go run ./cmd/migrate --database-url postgres://bookly@localhost/bookly up-to 2
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/bookly/bookly-server/internal/logger"
	"github.com/bookly/bookly-server/internal/store/sqlstore"
)

var allowed = map[string]bool{
	"up":        true,
	"up-by-one": true,
	"up-to":     true,
	"down":      true,
	"down-to":   true,
	"redo":      true,
	"reset":     true,
	"status":    true,
	"version":   true,
}

func main() {
	databaseURL := flag.String("database-url", "", "Database URL (default: $DATABASE_URL or sqlite://$DATA_PATH/bookly.db)")
	envFile := flag.String("env-file", ".env", "Path to .env file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <up|up-by-one|up-to|down|down-to|redo|reset|status|version> [args]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 || !allowed[flag.Arg(0)] {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load(*envFile)

	log := logger.New(logger.Config{Level: logger.ParseLevel(os.Getenv("LOG_LEVEL"))})

	url, err := resolveURL(*databaseURL)
	if err != nil {
		log.Fatal("Failed to resolve database URL", "error", err)
	}

	db, dialect, err := sqlstore.OpenDB(url)
	if err != nil {
		log.Fatal("Failed to open database", "error", err)
	}
	defer db.Close()

	command := flag.Arg(0)
	if err := sqlstore.Migrate(context.Background(), db, dialect, log.Logger, command, flag.Args()[1:]...); err != nil {
		log.Fatal("Migration failed", "command", command, "error", err)
	}

	log.Info("Migration complete", "command", command, "dialect", dialect)
}

func resolveURL(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv("DATABASE_URL"); env != "" {
		return env, nil
	}

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataPath = filepath.Join(home, "Bookly")
	}
	if err := os.MkdirAll(dataPath, 0o750); err != nil {
		return "", err
	}
	return "sqlite://" + filepath.Join(dataPath, "bookly.db"), nil
}
