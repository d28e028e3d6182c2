package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bookly/bookly-server/internal/domain"
	domainerrors "github.com/bookly/bookly-server/internal/errors"
	"github.com/bookly/bookly-server/internal/store"
)

// UserService is the admin view of accounts.
type UserService struct {
	store  store.Store
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(store store.Store, logger *slog.Logger) *UserService {
	return &UserService{store: store, logger: logger}
}

// UserUpdateRequest is a partial account update. Email and password are not editable here.
type UserUpdateRequest struct {
	Username   *string `json:"username,omitempty" validate:"omitempty,max=8"`
	FirstName  *string `json:"first_name,omitempty" validate:"omitempty,max=25"`
	LastName   *string `json:"last_name,omitempty" validate:"omitempty,max=25"`
	Role       *string `json:"role,omitempty" validate:"omitempty,oneof=admin user"`
	IsVerified *bool   `json:"is_verified,omitempty"`
}

func (r UserUpdateRequest) toUpdate() domain.UserUpdate {
	upd := domain.UserUpdate{
		Username:   r.Username,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		IsVerified: r.IsVerified,
	}
	if r.Role != nil {
		role := domain.Role(*r.Role)
		upd.Role = &role
	}
	return upd
}

// List returns every user.
func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}

// Get returns one user.
func (s *UserService) Get(ctx context.Context, uid string) (*domain.User, error) {
	u, err := s.store.GetUser(ctx, uid)
	if err != nil {
		return nil, translate(err, domainerrors.ErrUserNotFound, "get user")
	}
	return u, nil
}

// Update applies the set fields of req to the user.
func (s *UserService) Update(ctx context.Context, uid string, req UserUpdateRequest) (*domain.User, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	u, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	u.Apply(req.toUpdate())
	u.Touch()

	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, translate(err, domainerrors.ErrUserNotFound, "update user")
	}

	s.logger.Info("user updated", "user_uid", uid)
	return u, nil
}

// Delete removes the account. Their books stay behind without an owner.
func (s *UserService) Delete(ctx context.Context, uid string) error {
	if err := s.store.DeleteUser(ctx, uid); err != nil {
		return translate(err, domainerrors.ErrUserNotFound, "delete user")
	}
	s.logger.Info("user deleted", "user_uid", uid)
	return nil
}
