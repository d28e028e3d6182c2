// Package sqlstore implements store.Store on top of database/sql.
//
// The same queries run against SQLite (modernc.org/sqlite) and PostgreSQL
// (pgx stdlib driver). Both accept $n placeholders, timestamps are kept as
// fixed-width UTC text so they sort lexically on either engine, and the
// schema is managed by goose migrations embedded in the binary.
package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/bookly/bookly-server/internal/store"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Dialects understood by goose.
const (
	DialectSQLite   = "sqlite3"
	DialectPostgres = "postgres"
)

// timeLayout is fixed width so text comparison matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// dateLayout is used for calendar dates such as a book's published date.
const dateLayout = "2006-01-02"

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

// Store provides SQL-backed persistence for the Bookly server.
type Store struct {
	db      *sql.DB
	dialect string
	logger  *slog.Logger
}

var _ store.Store = (*Store)(nil)

// OpenDB opens a connection pool for a database URL without touching the schema.
// Supported URLs are sqlite://path/to/file.db and postgres:// (or postgresql://).
func OpenDB(url string) (*sql.DB, string, error) {
	switch {
	case strings.HasPrefix(url, "sqlite://"):
		path := strings.TrimPrefix(url, "sqlite://")
		if path == "" {
			return nil, "", fmt.Errorf("sqlite url %q has no path", url)
		}
		if path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, "", fmt.Errorf("create database directory: %w", err)
			}
		}
		dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, "", fmt.Errorf("open sqlite: %w", err)
		}
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(time.Hour)
		return db, DialectSQLite, nil

	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		db, err := sql.Open("pgx", url)
		if err != nil {
			return nil, "", fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxOpenConns(16)
		db.SetMaxIdleConns(4)
		db.SetConnMaxLifetime(30 * time.Minute)
		return db, DialectPostgres, nil

	default:
		return nil, "", fmt.Errorf("unsupported database url %q", url)
	}
}

// Open connects to the database at url and applies pending migrations.
func Open(url string, logger *slog.Logger) (*Store, error) {
	db, dialect, err := OpenDB(url)
	if err != nil {
		return nil, err
	}

	if err := Migrate(context.Background(), db, dialect, logger, "up"); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("database ready", "dialect", dialect)

	return &Store{db: db, dialect: dialect, logger: logger}, nil
}

// Migrate runs a goose command ("up", "down", "status", "version", "reset")
// against the embedded migrations. Goose output goes to logger.
func Migrate(ctx context.Context, db *sql.DB, dialect string, logger *slog.Logger, command string, args ...string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetLogger(gooseLogger{logger: logger})
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.RunContext(ctx, command, db, "migrations", args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// gooseLogger feeds goose's printf-style output into slog.
type gooseLogger struct {
	logger *slog.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "goose")
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "goose")
	os.Exit(1)
}

// Dialect reports which engine the store is connected to.
func (s *Store) Dialect() string {
	return s.dialect
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// withTx runs fn inside a transaction, rolling back on error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// mapError converts driver errors into store sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return store.ErrAlreadyExists.WithCause(err)
		case "23503":
			return store.ErrReferenceMissing.WithCause(err)
		}
		return err
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"),
		strings.Contains(msg, "PRIMARY KEY constraint failed"):
		return store.ErrAlreadyExists.WithCause(err)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return store.ErrReferenceMissing.WithCause(err)
	}
	return err
}

// expectOne turns a zero-row update or delete into store.ErrNotFound.
func expectOne(res sql.Result, err error) error {
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// formatTime formats a time.Time for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime parses a stored timestamp.
func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// nullString maps "" to SQL NULL for optional foreign keys.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
