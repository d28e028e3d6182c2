package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenUser is the user snapshot embedded in access and refresh tokens.
type TokenUser struct {
	Email   string `json:"email"`
	UserUID string `json:"user_uid"`
	Role    string `json:"role"`
}

// Claims are the JWT claims of access and refresh tokens.
type Claims struct {
	User    TokenUser `json:"user"`
	Refresh bool      `json:"refresh"`
	jwt.RegisteredClaims
}

// Remaining returns how long until the token expires, or zero if it already has.
func (c *Claims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	if d := c.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// URL token purposes.
const (
	PurposeVerify = "verify"
	PurposeReset  = "reset"
)

// URLClaims are carried by the encrypted tokens embedded in email links.
type URLClaims struct {
	Email      string    `json:"email"`
	Purpose    string    `json:"purpose"`
	TokenID    string    `json:"jti"`
	Expiration time.Time `json:"exp"`
	IssuedAt   time.Time `json:"iat"`
}
