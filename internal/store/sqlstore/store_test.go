package sqlstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bookly/bookly-server/internal/domain"
	"github.com/bookly/bookly-server/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := Open("sqlite://"+dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func makeTestUser(uid, email string) *domain.User {
	u := &domain.User{
		UID:          uid,
		Username:     "reader",
		Email:        email,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		PasswordHash: "hash",
		Role:         domain.RoleUser,
	}
	u.InitTimestamps()
	return u
}

func makeTestBook(uid, userUID string, createdAt time.Time) *domain.Book {
	return &domain.Book{
		Timestamps:    domain.Timestamps{CreatedAt: createdAt, UpdatedAt: createdAt},
		UID:           uid,
		Title:         "Title " + uid,
		Author:        "Author",
		Publisher:     "Publisher",
		PublishedDate: time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC),
		PageCount:     412,
		Language:      "en",
		UserUID:       userUID,
	}
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	if s.Dialect() != DialectSQLite {
		t.Errorf("dialect: got %q", s.Dialect())
	}

	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	var fk int
	if err := s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	for _, table := range []string{"users", "books", "reviews", "tags", "book_tags", "goose_db_version"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=$1", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}

	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestOpen_Reopen(t *testing.T) {
	url := "sqlite://" + filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	s, err := Open(url, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	// Migrations already applied; a second open must be a no-op.
	s2, err := Open(url, logger)
	if err != nil {
		t.Fatalf("re-open store: %v", err)
	}
	s2.Close()
}

func TestOpen_UnsupportedURL(t *testing.T) {
	_, err := Open("mysql://localhost/bookly", slog.New(slog.NewTextHandler(os.Stderr, nil)))
	if err == nil {
		t.Fatal("expected error for mysql url")
	}
}

func TestMigrate_DownAndUp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := Migrate(ctx, s.db, s.dialect, s.logger, "down"); err != nil {
		t.Fatalf("down: %v", err)
	}

	var name string
	err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='book_tags'").Scan(&name)
	if err == nil {
		t.Fatal("book_tags should be gone after down")
	}

	if err := Migrate(ctx, s.db, s.dialect, s.logger, "up"); err != nil {
		t.Fatalf("up: %v", err)
	}
	if err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='book_tags'").Scan(&name); err != nil {
		t.Fatalf("book_tags missing after up: %v", err)
	}
}

func TestMigrate_LogsThroughSlog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	s, err := Open("sqlite://"+filepath.Join(t.TempDir(), "log.db"), logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()

	out := buf.String()
	if !strings.Contains(out, "component=goose") {
		t.Fatalf("goose output not routed to slog:\n%s", out)
	}
	if !strings.Contains(out, "00001_create_users.sql") {
		t.Errorf("expected applied migration in log:\n%s", out)
	}
}

func TestTimeLayoutSortsLexically(t *testing.T) {
	a := time.Date(2024, 1, 1, 10, 0, 0, 5, time.UTC)
	b := time.Date(2024, 1, 1, 10, 0, 0, 500_000_000, time.UTC)
	if !(formatTime(a) < formatTime(b)) {
		t.Errorf("%s should sort before %s", formatTime(a), formatTime(b))
	}

	got, err := parseTime(formatTime(b))
	if err != nil {
		t.Fatalf("parseTime: %v", err)
	}
	if !got.Equal(b) {
		t.Errorf("round trip: got %v, want %v", got, b)
	}
}

func TestMapError(t *testing.T) {
	if mapError(nil) != nil {
		t.Error("nil should stay nil")
	}
	if !errors.Is(mapError(errors.New("UNIQUE constraint failed: users.email")), store.ErrAlreadyExists) {
		t.Error("unique violation should map to ErrAlreadyExists")
	}
	if !errors.Is(mapError(errors.New("FOREIGN KEY constraint failed")), store.ErrReferenceMissing) {
		t.Error("fk violation should map to ErrReferenceMissing")
	}
	other := errors.New("disk I/O error")
	if mapError(other) != other {
		t.Error("unknown errors pass through")
	}
}
