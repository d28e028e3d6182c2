package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bookly/bookly-server/internal/domain"
	"github.com/bookly/bookly-server/internal/id"
)

const tokenIssuer = "bookly-server"

// ErrInvalidToken is returned for any token that fails to parse or validate.
var ErrInvalidToken = errors.New("invalid token")

// TokenService issues and verifies JWT access and refresh tokens.
type TokenService struct {
	secret               []byte
	method               jwt.SigningMethod
	accessTokenDuration  time.Duration
	refreshTokenDuration time.Duration
	now                  func() time.Time
}

// NewTokenService creates a token service. algorithm is one of HS256, HS384 or HS512.
func NewTokenService(secret, algorithm string, accessDuration, refreshDuration time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}

	var method jwt.SigningMethod
	switch strings.ToUpper(algorithm) {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported JWT algorithm %q", algorithm)
	}

	return &TokenService{
		secret:               []byte(secret),
		method:               method,
		accessTokenDuration:  accessDuration,
		refreshTokenDuration: refreshDuration,
		now:                  time.Now,
	}, nil
}

// TokenUserFor builds the token snapshot of a user.
func TokenUserFor(u *domain.User) TokenUser {
	return TokenUser{Email: u.Email, UserUID: u.UID, Role: string(u.Role)}
}

// GenerateAccessToken creates a short-lived access token.
func (s *TokenService) GenerateAccessToken(user TokenUser) (string, error) {
	return s.generate(user, false, id.PrefixAccess, s.accessTokenDuration)
}

// GenerateRefreshToken creates a long-lived refresh token.
func (s *TokenService) GenerateRefreshToken(user TokenUser) (string, error) {
	return s.generate(user, true, id.PrefixRefresh, s.refreshTokenDuration)
}

func (s *TokenService) generate(user TokenUser, refresh bool, prefix string, ttl time.Duration) (string, error) {
	jti, err := id.Token(prefix)
	if err != nil {
		return "", fmt.Errorf("generate token ID: %w", err)
	}

	now := s.now()
	claims := Claims{
		User:    user,
		Refresh: refresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   user.UserUID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks signature, algorithm, issuer and expiry and returns the claims.
// Whether the token is an access or refresh token is left to the caller.
func (s *TokenService) VerifyToken(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.ID == "" || claims.User.UserUID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// AccessTokenDuration returns the configured access token lifetime.
func (s *TokenService) AccessTokenDuration() time.Duration {
	return s.accessTokenDuration
}

// RefreshTokenDuration returns the configured refresh token lifetime.
func (s *TokenService) RefreshTokenDuration() time.Duration {
	return s.refreshTokenDuration
}
