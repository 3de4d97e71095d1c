package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the payload the auth service puts in its access tokens:
// sub (username), id, role, exp.
type TokenClaims struct {
	UserID int    `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (c *TokenClaims) Username() string { return c.Subject }

func (c *TokenClaims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(c.ExpiresAt.Time)
}

// DecodeClaims decodes the token payload WITHOUT verifying the signature.
// The client has no signing key; the token stays an opaque bearer credential
// and the server remains the only authority on its validity. Decoded claims
// are used purely for display (whoami) and UI hints (admin commands).
func DecodeClaims(token string) (*TokenClaims, error) {
	var claims TokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}
