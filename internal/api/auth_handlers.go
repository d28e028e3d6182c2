package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookly/bookly-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "signup",
		Method:        http.MethodPost,
		Path:          "/api/v1/auth/signup",
		Summary:       "Sign up",
		Description:   "Creates an unverified account and emails a verification link",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusCreated,
	}, s.handleSignup)

	huma.Register(s.api, huma.Operation{
		OperationID: "verifyEmail",
		Method:      http.MethodGet,
		Path:        "/api/v1/auth/verify/{token}",
		Summary:     "Verify email",
		Description: "Marks the account behind a verification link as verified",
		Tags:        []string{"Auth"},
	}, s.handleVerify)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "Login",
		Description: "Exchanges email and password for an access and refresh token pair",
		Tags:        []string{"Auth"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "refreshToken",
		Method:      http.MethodGet,
		Path:        "/api/v1/auth/refresh-token",
		Summary:     "Refresh access token",
		Description: "Issues a new access token. Send the refresh token as the Bearer credential.",
		Tags:        []string{"Auth"},
		Security:    bearer,
	}, s.handleRefresh)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/auth/me",
		Summary:     "Get current user",
		Description: "Returns the authenticated user with their books and reviews",
		Tags:        []string{"Auth"},
		Security:    bearer,
	}, s.handleMe)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodGet,
		Path:        "/api/v1/auth/logout",
		Summary:     "Logout",
		Description: "Revokes the access token used for this request",
		Tags:        []string{"Auth"},
		Security:    bearer,
	}, s.handleLogout)

	huma.Register(s.api, huma.Operation{
		OperationID: "requestPasswordReset",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/password-reset-request",
		Summary:     "Request password reset",
		Description: "Emails a reset link. Answers the same whether or not the address has an account.",
		Tags:        []string{"Auth"},
	}, s.handlePasswordResetRequest)

	huma.Register(s.api, huma.Operation{
		OperationID: "confirmPasswordReset",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/password-reset-confirm/{token}",
		Summary:     "Confirm password reset",
		Description: "Sets a new password using a reset link token",
		Tags:        []string{"Auth"},
	}, s.handlePasswordResetConfirm)

	huma.Register(s.api, huma.Operation{
		OperationID: "sendMail",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/send-mail",
		Summary:     "Send welcome mail",
		Description: "Queues a welcome message to each address (admin only)",
		Tags:        []string{"Auth"},
		Security:    bearer,
	}, s.handleSendMail)
}

// === DTOs ===

// SignupInput wraps the signup request for Huma.
type SignupInput struct {
	Body service.SignupRequest
}

// SignupOutput wraps the signup response for Huma.
type SignupOutput struct {
	Body service.SignupResponse
}

// TokenPathInput carries a URL token from an emailed link.
type TokenPathInput struct {
	Token string `path:"token" doc:"Token from the emailed link"`
}

// MessageOutput wraps a plain message response for Huma.
type MessageOutput struct {
	Body service.MessageResponse
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body service.LoginRequest
}

// LoginOutput wraps the login response for Huma.
type LoginOutput struct {
	Body service.LoginResponse
}

// AuthInput carries only the bearer credential.
type AuthInput struct {
	Authorization string `header:"Authorization"`
}

// RefreshOutput wraps the refresh response for Huma.
type RefreshOutput struct {
	Body service.RefreshResponse
}

// ProfileOutput wraps the current user profile for Huma.
type ProfileOutput struct {
	Body service.Profile
}

// PasswordResetRequestInput wraps the reset request for Huma.
type PasswordResetRequestInput struct {
	Body service.PasswordResetRequest
}

// PasswordResetConfirmInput wraps the reset confirmation for Huma.
type PasswordResetConfirmInput struct {
	Token string `path:"token" doc:"Token from the reset link"`
	Body  service.PasswordResetConfirm
}

// SendMailInput wraps the send-mail request for Huma.
type SendMailInput struct {
	Authorization string `header:"Authorization"`
	Body          service.SendMailRequest
}

// === Handlers ===

func (s *Server) handleSignup(ctx context.Context, input *SignupInput) (*SignupOutput, error) {
	resp, err := s.services.Auth.Signup(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &SignupOutput{Body: *resp}, nil
}

func (s *Server) handleVerify(ctx context.Context, input *TokenPathInput) (*MessageOutput, error) {
	resp, err := s.services.Auth.Verify(ctx, input.Token)
	if err != nil {
		return nil, err
	}
	return &MessageOutput{Body: *resp}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	resp, err := s.services.Auth.Login(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &LoginOutput{Body: *resp}, nil
}

func (s *Server) handleRefresh(ctx context.Context, input *AuthInput) (*RefreshOutput, error) {
	claims, err := s.services.Auth.Authenticate(ctx, bearerToken(input.Authorization), service.RefreshToken)
	if err != nil {
		return nil, err
	}

	resp, err := s.services.Auth.Refresh(ctx, claims)
	if err != nil {
		return nil, err
	}
	return &RefreshOutput{Body: *resp}, nil
}

func (s *Server) handleMe(ctx context.Context, input *AuthInput) (*ProfileOutput, error) {
	user, err := s.authorizeRequest(ctx, input.Authorization, anyRole)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.Auth.Me(ctx, user)
	if err != nil {
		return nil, err
	}
	return &ProfileOutput{Body: *profile}, nil
}

func (s *Server) handleLogout(ctx context.Context, input *AuthInput) (*MessageOutput, error) {
	claims, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	resp, err := s.services.Auth.Logout(ctx, claims)
	if err != nil {
		return nil, err
	}
	return &MessageOutput{Body: *resp}, nil
}

func (s *Server) handlePasswordResetRequest(ctx context.Context, input *PasswordResetRequestInput) (*MessageOutput, error) {
	resp, err := s.services.Auth.RequestPasswordReset(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &MessageOutput{Body: *resp}, nil
}

func (s *Server) handlePasswordResetConfirm(ctx context.Context, input *PasswordResetConfirmInput) (*MessageOutput, error) {
	resp, err := s.services.Auth.ConfirmPasswordReset(ctx, input.Token, input.Body)
	if err != nil {
		return nil, err
	}
	return &MessageOutput{Body: *resp}, nil
}

func (s *Server) handleSendMail(ctx context.Context, input *SendMailInput) (*MessageOutput, error) {
	if _, err := s.authorizeRequest(ctx, input.Authorization, adminOnly); err != nil {
		return nil, err
	}

	resp, err := s.services.Auth.SendWelcome(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &MessageOutput{Body: *resp}, nil
}
