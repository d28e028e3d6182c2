package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bookly/bookly-server/internal/auth"
	"github.com/bookly/bookly-server/internal/blocklist"
	"github.com/bookly/bookly-server/internal/domain"
	domainerrors "github.com/bookly/bookly-server/internal/errors"
	"github.com/bookly/bookly-server/internal/id"
	"github.com/bookly/bookly-server/internal/mail"
	"github.com/bookly/bookly-server/internal/store"
)

// TokenKind says which JWT a route expects.
type TokenKind int

const (
	AccessToken TokenKind = iota
	RefreshToken
)

// AuthService handles signup, email verification, login, token refresh,
// logout and password resets.
type AuthService struct {
	store     store.Store
	tokens    *auth.TokenService
	urlTokens *auth.URLTokenService
	blocklist blocklist.Blocklist
	mailer    mail.Queue
	templates *mail.Renderer
	domain    string
	logger    *slog.Logger
	now       func() time.Time
}

// NewAuthService creates a new authentication service.
// domain is the public host used in email links.
func NewAuthService(
	store store.Store,
	tokens *auth.TokenService,
	urlTokens *auth.URLTokenService,
	blocklist blocklist.Blocklist,
	mailer mail.Queue,
	templates *mail.Renderer,
	domain string,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:     store,
		tokens:    tokens,
		urlTokens: urlTokens,
		blocklist: blocklist,
		mailer:    mailer,
		templates: templates,
		domain:    domain,
		logger:    logger,
		now:       time.Now,
	}
}

// SignupRequest contains the data for a new account.
type SignupRequest struct {
	Username  string `json:"username" validate:"required,max=8"`
	Email     string `json:"email" validate:"required,email,max=40"`
	FirstName string `json:"first_name" validate:"required,max=25"`
	LastName  string `json:"last_name" validate:"required,max=25"`
	Password  string `json:"password" validate:"required,min=6,max=1024"`
}

// SignupResponse is returned after an account is created.
type SignupResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginUser is the slice of the user returned alongside fresh tokens.
type LoginUser struct {
	Email string `json:"email"`
	UID   string `json:"uid"`
}

// LoginResponse contains the issued token pair.
type LoginResponse struct {
	Message      string    `json:"message"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	User         LoginUser `json:"user"`
}

// RefreshResponse carries a new access token.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// PasswordResetRequest starts a password reset.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordResetConfirm sets a new password using an emailed token.
type PasswordResetConfirm struct {
	NewPassword        string `json:"new_password" validate:"required,min=6,max=1024"`
	ConfirmNewPassword string `json:"confirm_new_password" validate:"required"`
}

// SendMailRequest lists the recipients of a welcome message.
type SendMailRequest struct {
	Addresses []string `json:"addresses" validate:"required,min=1,dive,email"`
}

// Profile is the current user with their books and reviews.
type Profile struct {
	domain.User
	Books   []*domain.Book   `json:"books"`
	Reviews []*domain.Review `json:"reviews"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates an unverified user and queues the verification email.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*SignupResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.store.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, domainerrors.ErrUserAlreadyExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		UID:          id.New(),
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: passwordHash,
		Role:         domain.RoleUser,
	}
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent signup for the same address.
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user signed up", "user_uid", user.UID)

	s.sendVerification(ctx, user)

	return &SignupResponse{
		Message: "Account Created! Check email to verify your account",
		User:    user,
	}, nil
}

func (s *AuthService) sendVerification(ctx context.Context, user *domain.User) {
	token, err := s.urlTokens.Create(user.Email, auth.PurposeVerify)
	if err != nil {
		s.logger.Error("create verification token", "user_uid", user.UID, "error", err)
		return
	}
	link := s.link("verify", token)
	msg, err := s.templates.VerifyEmail(user.Email, user.FirstName, link, s.urlTokens.TTL())
	if err != nil {
		s.logger.Error("render verification email", "user_uid", user.UID, "error", err)
		return
	}
	s.enqueue(ctx, msg)
}

func (s *AuthService) link(route, token string) string {
	return fmt.Sprintf("http://%s/api/v1/auth/%s/%s", s.domain, route, token)
}

// enqueue hands msg to the mail queue. Failures are logged and never reach the caller.
func (s *AuthService) enqueue(ctx context.Context, msg mail.Message) {
	if err := s.mailer.Enqueue(ctx, msg); err != nil {
		s.logger.Error("enqueue email", "subject", msg.Subject, "error", err)
	}
}

// openURLToken decodes token and claims its id in the blocklist, so each
// token opens at most once even under concurrent requests. The claim happens
// before the caller touches the account; a failed update still spends it.
func (s *AuthService) openURLToken(ctx context.Context, token, purpose string) (*auth.URLClaims, error) {
	claims, err := s.urlTokens.Verify(token, purpose)
	if err != nil {
		return nil, domainerrors.ErrInvalidToken.WithCause(err)
	}
	claimed, err := s.blocklist.Claim(ctx, claims.TokenID, claims.Expiration.Sub(s.now()))
	if err != nil {
		return nil, fmt.Errorf("claim url token: %w", err)
	}
	if !claimed {
		return nil, domainerrors.ErrInvalidToken
	}
	return claims, nil
}

// Verify marks the account named in a verification token as verified.
func (s *AuthService) Verify(ctx context.Context, token string) (*MessageResponse, error) {
	claims, err := s.openURLToken(ctx, token, auth.PurposeVerify)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, claims.Email)
	if err != nil {
		return nil, translate(err, domainerrors.ErrUserNotFound, "get user")
	}

	if !user.IsVerified {
		user.IsVerified = true
		user.Touch()
		if err := s.store.UpdateUser(ctx, user); err != nil {
			return nil, translate(err, domainerrors.ErrUserNotFound, "update user")
		}
	}

	s.logger.Info("user verified", "user_uid", user.UID)
	return &MessageResponse{Message: "Account verified successfully"}, nil
}

// Login checks credentials and issues an access and refresh token pair.
// Every failure, including an unknown email, is reported as invalid credentials.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validate.Validate(req); err != nil {
		return nil, domainerrors.ErrInvalidCredentials
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, domainerrors.ErrInvalidCredentials
	}

	if auth.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user, req.Password)
	}

	tokenUser := auth.TokenUserFor(user)
	accessToken, err := s.tokens.GenerateAccessToken(tokenUser)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(tokenUser)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	s.logger.Info("user logged in", "user_uid", user.UID)

	return &LoginResponse{
		Message:      "Login successful",
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         LoginUser{Email: user.Email, UID: user.UID},
	}, nil
}

// rehash upgrades a legacy password hash after a successful login.
func (s *AuthService) rehash(ctx context.Context, user *domain.User, password string) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		s.logger.Warn("rehash password", "user_uid", user.UID, "error", err)
		return
	}
	user.PasswordHash = hash
	user.Touch()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		s.logger.Warn("store rehashed password", "user_uid", user.UID, "error", err)
	}
}

// Authenticate verifies a bearer token of the given kind and checks the blocklist.
func (s *AuthService) Authenticate(ctx context.Context, raw string, kind TokenKind) (*auth.Claims, error) {
	if raw == "" {
		if kind == RefreshToken {
			return nil, domainerrors.ErrRefreshTokenRequired
		}
		return nil, domainerrors.ErrAccessTokenRequired
	}

	claims, err := s.tokens.VerifyToken(raw)
	if err != nil {
		return nil, domainerrors.ErrInvalidToken.WithCause(err)
	}

	revoked, err := s.blocklist.Contains(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check blocklist: %w", err)
	}
	if revoked {
		return nil, domainerrors.ErrRevokedToken
	}

	switch {
	case kind == AccessToken && claims.Refresh:
		return nil, domainerrors.ErrAccessTokenRequired
	case kind == RefreshToken && !claims.Refresh:
		return nil, domainerrors.ErrRefreshTokenRequired
	}
	return claims, nil
}

// CurrentUser loads the account behind claims without any role or verification check.
func (s *AuthService) CurrentUser(ctx context.Context, claims *auth.Claims) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, claims.User.UserUID)
	if err != nil {
		return nil, translate(err, domainerrors.ErrUserNotFound, "get user")
	}
	return user, nil
}

// Authorize loads the token's user and checks it is verified and holds one of roles.
func (s *AuthService) Authorize(ctx context.Context, claims *auth.Claims, roles ...domain.Role) (*domain.User, error) {
	user, err := s.CurrentUser(ctx, claims)
	if err != nil {
		return nil, err
	}
	if !user.IsVerified {
		return nil, domainerrors.ErrAccountNotVerified
	}
	if !user.HasRole(roles...) {
		return nil, domainerrors.ErrInsufficientPermission
	}
	return user, nil
}

// Refresh issues a new access token for the user in a verified refresh token.
func (s *AuthService) Refresh(_ context.Context, claims *auth.Claims) (*RefreshResponse, error) {
	if claims.Remaining(s.now()) <= 0 {
		return nil, domainerrors.ErrInvalidToken
	}
	token, err := s.tokens.GenerateAccessToken(claims.User)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	return &RefreshResponse{AccessToken: token}, nil
}

// Me returns the user together with their books and reviews.
func (s *AuthService) Me(ctx context.Context, user *domain.User) (*Profile, error) {
	books, err := s.store.ListBooksByUser(ctx, user.UID)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	reviews, err := s.store.ListReviewsByUser(ctx, user.UID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	if books == nil {
		books = []*domain.Book{}
	}
	if reviews == nil {
		reviews = []*domain.Review{}
	}
	return &Profile{User: *user, Books: books, Reviews: reviews}, nil
}

// Logout revokes the access token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) (*MessageResponse, error) {
	if err := s.blocklist.Add(ctx, claims.ID, claims.Remaining(s.now())); err != nil {
		return nil, fmt.Errorf("revoke token: %w", err)
	}
	s.logger.Info("user logged out", "user_uid", claims.User.UserUID)
	return &MessageResponse{Message: "Logged Out Successfully"}, nil
}

// RequestPasswordReset queues a reset link when the address belongs to an account.
// The response is the same either way so callers cannot probe for accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, req PasswordResetRequest) (*MessageResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	resp := &MessageResponse{Message: "Please check your email for instructions to reset your password"}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Debug("password reset for unknown email")
			return resp, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	token, err := s.urlTokens.Create(user.Email, auth.PurposeReset)
	if err != nil {
		return nil, fmt.Errorf("create reset token: %w", err)
	}
	msg, err := s.templates.ResetPassword(user.Email, s.link("password-reset-confirm", token), s.urlTokens.TTL())
	if err != nil {
		return nil, fmt.Errorf("render reset email: %w", err)
	}
	s.enqueue(ctx, msg)

	return resp, nil
}

// ConfirmPasswordReset sets a new password for the account named in token.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token string, req PasswordResetConfirm) (*MessageResponse, error) {
	if req.NewPassword != req.ConfirmNewPassword {
		return nil, domainerrors.ErrPasswordMismatch
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	claims, err := s.openURLToken(ctx, token, auth.PurposeReset)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, claims.Email)
	if err != nil {
		return nil, translate(err, domainerrors.ErrUserNotFound, "get user")
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash
	user.Touch()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, translate(err, domainerrors.ErrUserNotFound, "update user")
	}

	s.logger.Info("password reset", "user_uid", user.UID)
	return &MessageResponse{Message: "Password reset Successfully"}, nil
}

// SendWelcome queues a welcome message to each address.
func (s *AuthService) SendWelcome(ctx context.Context, req SendMailRequest) (*MessageResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	msg, err := s.templates.Welcome(req.Addresses)
	if err != nil {
		return nil, fmt.Errorf("render welcome email: %w", err)
	}
	s.enqueue(ctx, msg)
	return &MessageResponse{Message: "Email sent successfully"}, nil
}
