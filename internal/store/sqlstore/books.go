package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bookly/bookly-server/internal/domain"
)

// bookColumns must match the scan order in scanBook.
const bookColumns = `uid, title, author, publisher, published_date, page_count, language, user_uid, created_at, updated_at`

func scanBook(scanner rowScanner) (*domain.Book, error) {
	var (
		b             domain.Book
		publishedDate string
		userUID       sql.NullString
		createdAt     string
		updatedAt     string
	)

	err := scanner.Scan(
		&b.UID,
		&b.Title,
		&b.Author,
		&b.Publisher,
		&publishedDate,
		&b.PageCount,
		&b.Language,
		&userUID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.UserUID = userUID.String

	if b.PublishedDate, err = parseDate(publishedDate); err != nil {
		return nil, fmt.Errorf("parse published_date: %w", err)
	}
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &b, nil
}

func (s *Store) queryBooks(ctx context.Context, query string, args ...any) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// CreateBook inserts a new book.
// Returns store.ErrReferenceMissing if the owning user does not exist.
func (s *Store) CreateBook(ctx context.Context, b *domain.Book) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (`+bookColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		b.UID,
		b.Title,
		b.Author,
		b.Publisher,
		formatDate(b.PublishedDate),
		b.PageCount,
		b.Language,
		nullString(b.UserUID),
		formatTime(b.CreatedAt),
		formatTime(b.UpdatedAt),
	)
	return mapError(err)
}

// GetBook retrieves a book by UID.
func (s *Store) GetBook(ctx context.Context, uid string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE uid = $1`, uid)
	b, err := scanBook(row)
	if err != nil {
		return nil, mapError(err)
	}
	return b, nil
}

// ListBooks returns every book, newest first.
func (s *Store) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	return s.queryBooks(ctx, `SELECT `+bookColumns+` FROM books ORDER BY created_at DESC, uid`)
}

// ListBooksByUser returns the books submitted by one user, newest first.
func (s *Store) ListBooksByUser(ctx context.Context, userUID string) ([]*domain.Book, error) {
	return s.queryBooks(ctx,
		`SELECT `+bookColumns+` FROM books WHERE user_uid = $1 ORDER BY created_at DESC, uid`, userUID)
}

// UpdateBook writes every mutable column. The owner is not reassigned.
func (s *Store) UpdateBook(ctx context.Context, b *domain.Book) error {
	return expectOne(s.db.ExecContext(ctx, `
		UPDATE books SET
			title = $1,
			author = $2,
			publisher = $3,
			published_date = $4,
			page_count = $5,
			language = $6,
			updated_at = $7
		WHERE uid = $8`,
		b.Title,
		b.Author,
		b.Publisher,
		formatDate(b.PublishedDate),
		b.PageCount,
		b.Language,
		formatTime(b.UpdatedAt),
		b.UID,
	))
}

// DeleteBook removes a book along with its reviews and tag links.
func (s *Store) DeleteBook(ctx context.Context, uid string) error {
	return expectOne(s.db.ExecContext(ctx, `DELETE FROM books WHERE uid = $1`, uid))
}
