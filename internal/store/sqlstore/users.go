package sqlstore

import (
	"context"
	"fmt"

	"github.com/bookly/bookly-server/internal/domain"
)

// userColumns must match the scan order in scanUser.
const userColumns = `uid, username, email, first_name, last_name, role, is_verified, password_hash, created_at, updated_at`

func scanUser(scanner rowScanner) (*domain.User, error) {
	var (
		u         domain.User
		role      string
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&u.UID,
		&u.Username,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&role,
		&u.IsVerified,
		&u.PasswordHash,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)

	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &u, nil
}

// CreateUser inserts a new account.
// Returns store.ErrAlreadyExists when the email is taken.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		u.UID,
		u.Username,
		u.Email,
		u.FirstName,
		u.LastName,
		string(u.Role),
		u.IsVerified,
		u.PasswordHash,
		formatTime(u.CreatedAt),
		formatTime(u.UpdatedAt),
	)
	return mapError(err)
}

// GetUser retrieves a user by UID.
func (s *Store) GetUser(ctx context.Context, uid string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE uid = $1`, uid)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

// GetUserByEmail retrieves a user by email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

// ListUsers returns all users ordered by creation time.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, uid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser writes every mutable column. Email is immutable.
func (s *Store) UpdateUser(ctx context.Context, u *domain.User) error {
	return expectOne(s.db.ExecContext(ctx, `
		UPDATE users SET
			username = $1,
			first_name = $2,
			last_name = $3,
			role = $4,
			is_verified = $5,
			password_hash = $6,
			updated_at = $7
		WHERE uid = $8`,
		u.Username,
		u.FirstName,
		u.LastName,
		string(u.Role),
		u.IsVerified,
		u.PasswordHash,
		formatTime(u.UpdatedAt),
		u.UID,
	))
}

// DeleteUser removes an account. Books and reviews it owned keep existing
// with their owner cleared.
func (s *Store) DeleteUser(ctx context.Context, uid string) error {
	return expectOne(s.db.ExecContext(ctx, `DELETE FROM users WHERE uid = $1`, uid))
}
