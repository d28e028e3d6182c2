package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookly/bookly-server/internal/domain"
	"github.com/bookly/bookly-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users",
		Summary:     "List users",
		Description: "Returns all accounts (admin only)",
		Tags:        []string{"Users"},
		Security:    bearer,
	}, s.handleListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{user_uid}",
		Summary:     "Get user",
		Description: "Returns an account by UID (admin only)",
		Tags:        []string{"Users"},
		Security:    bearer,
	}, s.handleGetUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateUser",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/{user_uid}",
		Summary:     "Update user",
		Description: "Updates names, role or verification state (admin only)",
		Tags:        []string{"Users"},
		Security:    bearer,
	}, s.handleUpdateUser)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteUser",
		Method:        http.MethodDelete,
		Path:          "/api/v1/users/{user_uid}",
		Summary:       "Delete user",
		Description:   "Deletes an account. Its books are kept without an owner.",
		Tags:          []string{"Users"},
		Security:      bearer,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteUser)
}

// UsersOutput wraps a list of users for Huma.
type UsersOutput struct {
	Body []*domain.User
}

// UserOutput wraps a user for Huma.
type UserOutput struct {
	Body *domain.User
}

// UserPathInput identifies a user.
type UserPathInput struct {
	Authorization string `header:"Authorization"`
	UserUID       string `path:"user_uid" doc:"User UID"`
}

// UpdateUserInput wraps the update user request for Huma.
type UpdateUserInput struct {
	Authorization string `header:"Authorization"`
	UserUID       string `path:"user_uid" doc:"User UID"`
	Body          service.UserUpdateRequest
}

func (s *Server) handleListUsers(ctx context.Context, input *AuthInput) (*UsersOutput, error) {
	if _, err := s.authorizeRequest(ctx, input.Authorization, adminOnly); err != nil {
		return nil, err
	}

	users, err := s.services.User.List(ctx)
	if err != nil {
		return nil, err
	}
	return &UsersOutput{Body: users}, nil
}

func (s *Server) handleGetUser(ctx context.Context, input *UserPathInput) (*UserOutput, error) {
	if _, err := s.authorizeRequest(ctx, input.Authorization, adminOnly); err != nil {
		return nil, err
	}

	user, err := s.services.User.Get(ctx, input.UserUID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: user}, nil
}

func (s *Server) handleUpdateUser(ctx context.Context, input *UpdateUserInput) (*UserOutput, error) {
	if _, err := s.authorizeRequest(ctx, input.Authorization, adminOnly); err != nil {
		return nil, err
	}

	user, err := s.services.User.Update(ctx, input.UserUID, input.Body)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: user}, nil
}

func (s *Server) handleDeleteUser(ctx context.Context, input *UserPathInput) (*struct{}, error) {
	if _, err := s.authorizeRequest(ctx, input.Authorization, adminOnly); err != nil {
		return nil, err
	}

	if err := s.services.User.Delete(ctx, input.UserUID); err != nil {
		return nil, err
	}
	return nil, nil
}
