package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"unlockdesk/pkg/status"
)

// Claims are the access-token claims the client cares about. The parse
// is unverified: the backend signed and validates the token, the client
// only reads role and expiry to gate UI and schedule refreshes.
type Claims struct {
	UserID    int64
	Username  string
	Role      status.Role
	ExpiresAt time.Time
}

// ParseClaims decodes the JWT payload without signature verification.
func ParseClaims(token string) (Claims, error) {
	var out Claims
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return out, fmt.Errorf("parse access token: %w", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return out, fmt.Errorf("unexpected claims type")
	}
	if v, ok := claims["user_id"].(float64); ok {
		out.UserID = int64(v)
	}
	if v, ok := claims["username"].(string); ok {
		out.Username = v
	}
	if v, ok := claims["role"].(string); ok {
		out.Role = status.Role(v)
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// Expired reports whether the claims' expiry has passed (with a small
// skew allowance). Zero expiry counts as expired.
func (c Claims) Expired(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return true
	}
	return now.After(c.ExpiresAt.Add(-10 * time.Second))
}
