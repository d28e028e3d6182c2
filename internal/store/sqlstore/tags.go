package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bookly/bookly-server/internal/domain"
)

const tagColumns = `uid, name, slug, created_at`

func scanTag(scanner rowScanner) (*domain.Tag, error) {
	var (
		t         domain.Tag
		createdAt string
	)

	if err := scanner.Scan(&t.UID, &t.Name, &t.Slug, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &t, nil
}

func (s *Store) queryTags(ctx context.Context, query string, args ...any) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// CreateTag inserts a new tag.
// Returns store.ErrAlreadyExists on duplicate slug.
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (`+tagColumns+`)
		VALUES ($1, $2, $3, $4)`,
		t.UID,
		t.Name,
		t.Slug,
		formatTime(t.CreatedAt),
	)
	return mapError(err)
}

// GetTag retrieves a tag by UID.
func (s *Store) GetTag(ctx context.Context, uid string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tags WHERE uid = $1`, uid)
	t, err := scanTag(row)
	if err != nil {
		return nil, mapError(err)
	}
	return t, nil
}

// GetTagBySlug retrieves a tag by its normalized slug.
func (s *Store) GetTagBySlug(ctx context.Context, slug string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tags WHERE slug = $1`, slug)
	t, err := scanTag(row)
	if err != nil {
		return nil, mapError(err)
	}
	return t, nil
}

// ListTags returns all tags ordered by name.
func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	return s.queryTags(ctx, `SELECT `+tagColumns+` FROM tags ORDER BY name, uid`)
}

// UpdateTag renames a tag. Returns store.ErrAlreadyExists if the new slug is taken.
func (s *Store) UpdateTag(ctx context.Context, t *domain.Tag) error {
	return expectOne(s.db.ExecContext(ctx,
		`UPDATE tags SET name = $1, slug = $2 WHERE uid = $3`,
		t.Name, t.Slug, t.UID,
	))
}

// DeleteTag removes a tag and unlinks it from every book.
func (s *Store) DeleteTag(ctx context.Context, uid string) error {
	return expectOne(s.db.ExecContext(ctx, `DELETE FROM tags WHERE uid = $1`, uid))
}

// AddBookTags links tagUIDs to a book. Either every link is written or none is.
func (s *Store) AddBookTags(ctx context.Context, bookUID string, tagUIDs []string) error {
	if len(tagUIDs) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO book_tags (book_uid, tag_uid) VALUES ($1, $2)
			ON CONFLICT (book_uid, tag_uid) DO NOTHING`)
		if err != nil {
			return fmt.Errorf("prepare book_tags insert: %w", err)
		}
		defer stmt.Close()

		for _, tagUID := range tagUIDs {
			if _, err := stmt.ExecContext(ctx, bookUID, tagUID); err != nil {
				return mapError(err)
			}
		}
		return nil
	})
}

// RemoveBookTag unlinks one tag from a book.
// Returns store.ErrNotFound if the link does not exist.
func (s *Store) RemoveBookTag(ctx context.Context, bookUID, tagUID string) error {
	return expectOne(s.db.ExecContext(ctx,
		`DELETE FROM book_tags WHERE book_uid = $1 AND tag_uid = $2`, bookUID, tagUID))
}

// ListTagsForBook returns the tags linked to a book, ordered by name.
func (s *Store) ListTagsForBook(ctx context.Context, bookUID string) ([]*domain.Tag, error) {
	return s.queryTags(ctx, `
		SELECT t.uid, t.name, t.slug, t.created_at
		FROM tags t
		JOIN book_tags bt ON bt.tag_uid = t.uid
		WHERE bt.book_uid = $1
		ORDER BY t.name, t.uid`, bookUID)
}

// ListBookUIDsForTag returns the UIDs of books carrying a tag.
func (s *Store) ListBookUIDsForTag(ctx context.Context, tagUID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT book_uid FROM book_tags WHERE tag_uid = $1 ORDER BY book_uid`, tagUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var uids []string
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		uids = append(uids, uid)
	}
	return uids, rows.Err()
}
