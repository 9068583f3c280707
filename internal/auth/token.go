package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the token fields courier reads: who the viewer is and when
// the session ends. The portal signs and verifies tokens; the client
// only decodes them, so the parse is deliberately unverified.
type Claims struct {
	Subject   string
	Name      string
	ExpiresAt time.Time
}

// DecodeClaims extracts claims from a bearer token without verifying the
// signature.
func DecodeClaims(token string) (*Claims, error) {
	mapClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mapClaims); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}

	out := &Claims{}
	if sub, err := mapClaims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if name, ok := mapClaims["name"].(string); ok {
		out.Name = name
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if out.Subject == "" {
		return nil, fmt.Errorf("token has no subject claim")
	}
	return out, nil
}

// Expired reports whether the token's lifetime has passed. Tokens
// without an exp claim never expire client-side.
func (c *Claims) Expired() bool {
	return !c.ExpiresAt.IsZero() && time.Now().After(c.ExpiresAt)
}
