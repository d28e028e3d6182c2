package auth

import (
	"encoding/json"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/bookly/bookly-server/internal/id"
)

const urlTokenAudience = "bookly-email-link"

// URLTokenService creates the encrypted PASETO v4.local tokens used in
// verification and password reset links.
type URLTokenService struct {
	symmetricKey paseto.V4SymmetricKey
	ttl          time.Duration
}

// NewURLTokenService creates a service from a 32-byte key.
func NewURLTokenService(key []byte, ttl time.Duration) (*URLTokenService, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", keyLength, len(key))
	}

	symmetricKey, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &URLTokenService{symmetricKey: symmetricKey, ttl: ttl}, nil
}

// Create returns a token for email bound to purpose.
func (s *URLTokenService) Create(email, purpose string) (string, error) {
	jti, err := id.Token(id.PrefixURL)
	if err != nil {
		return "", fmt.Errorf("generate token ID: %w", err)
	}

	now := time.Now()
	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetAudience(urlTokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(s.ttl))
	token.SetJti(jti)
	token.SetString("email", email)
	token.SetString("purpose", purpose)

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// Verify decrypts tokenString and checks its expiry and purpose.
func (s *URLTokenService) Verify(tokenString, purpose string) (*URLClaims, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(urlTokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var claims URLClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("%w: parse claims: %v", ErrInvalidToken, err)
	}
	if claims.Purpose != purpose || claims.Email == "" || claims.TokenID == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// TTL returns the configured token lifetime.
func (s *URLTokenService) TTL() time.Duration {
	return s.ttl
}
