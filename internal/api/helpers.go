package api

import (
	"context"
	"strings"

	"github.com/bookly/bookly-server/internal/auth"
	"github.com/bookly/bookly-server/internal/domain"
	"github.com/bookly/bookly-server/internal/service"
)

// Role sets accepted by the role check.
var (
	anyRole   = []domain.Role{domain.RoleAdmin, domain.RoleUser}
	adminOnly = []domain.Role{domain.RoleAdmin}
)

// bearerToken returns the token from an "Authorization: Bearer ..." header, or "".
func bearerToken(authHeader string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(authHeader), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// authenticateRequest validates an access token and returns its claims.
func (s *Server) authenticateRequest(ctx context.Context, authHeader string) (*auth.Claims, error) {
	return s.services.Auth.Authenticate(ctx, bearerToken(authHeader), service.AccessToken)
}

// authorizeRequest validates an access token and requires a verified user holding one of roles.
func (s *Server) authorizeRequest(ctx context.Context, authHeader string, roles []domain.Role) (*domain.User, error) {
	claims, err := s.authenticateRequest(ctx, authHeader)
	if err != nil {
		return nil, err
	}
	return s.services.Auth.Authorize(ctx, claims, roles...)
}

// currentUser validates an access token and loads its user. Unverified accounts pass.
func (s *Server) currentUser(ctx context.Context, authHeader string) (*domain.User, error) {
	claims, err := s.authenticateRequest(ctx, authHeader)
	if err != nil {
		return nil, err
	}
	return s.services.Auth.CurrentUser(ctx, claims)
}
