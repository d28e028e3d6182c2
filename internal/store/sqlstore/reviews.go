package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bookly/bookly-server/internal/domain"
)

const reviewColumns = `uid, rating, review_text, user_uid, book_uid, created_at, updated_at`

func scanReview(scanner rowScanner) (*domain.Review, error) {
	var (
		r         domain.Review
		userUID   sql.NullString
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&r.UID,
		&r.Rating,
		&r.ReviewText,
		&userUID,
		&r.BookUID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.UserUID = userUID.String

	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &r, nil
}

func (s *Store) queryReviews(ctx context.Context, query string, args ...any) ([]*domain.Review, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*domain.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// CreateReview inserts a review.
// Returns store.ErrReferenceMissing if the book or author does not exist.
func (s *Store) CreateReview(ctx context.Context, r *domain.Review) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reviews (`+reviewColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.UID,
		r.Rating,
		r.ReviewText,
		nullString(r.UserUID),
		r.BookUID,
		formatTime(r.CreatedAt),
		formatTime(r.UpdatedAt),
	)
	return mapError(err)
}

// GetReview retrieves a review by UID.
func (s *Store) GetReview(ctx context.Context, uid string) (*domain.Review, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE uid = $1`, uid)
	r, err := scanReview(row)
	if err != nil {
		return nil, mapError(err)
	}
	return r, nil
}

// ListReviews returns every review, oldest first.
func (s *Store) ListReviews(ctx context.Context) ([]*domain.Review, error) {
	return s.queryReviews(ctx, `SELECT `+reviewColumns+` FROM reviews ORDER BY created_at, uid`)
}

// ListReviewsByBook returns the reviews of one book, oldest first.
func (s *Store) ListReviewsByBook(ctx context.Context, bookUID string) ([]*domain.Review, error) {
	return s.queryReviews(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE book_uid = $1 ORDER BY created_at, uid`, bookUID)
}

// ListReviewsByUser returns the reviews written by one user, oldest first.
func (s *Store) ListReviewsByUser(ctx context.Context, userUID string) ([]*domain.Review, error) {
	return s.queryReviews(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE user_uid = $1 ORDER BY created_at, uid`, userUID)
}

// DeleteReview removes a review.
func (s *Store) DeleteReview(ctx context.Context, uid string) error {
	return expectOne(s.db.ExecContext(ctx, `DELETE FROM reviews WHERE uid = $1`, uid))
}
