package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

// ErrDecode is returned when a credential cannot be decoded into usable claims.
var ErrDecode = errors.New("credential decode failed")

// Claims is the payload carried by a goSocial credential.
type Claims struct {
	UserID   string `json:"id,omitempty"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username"`
	gjwt.RegisteredClaims
}

// Expiry returns the expiry instant, or the zero time when the claim is absent.
func (c *Claims) Expiry() time.Time {
	if c == nil || c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Issued returns the issued-at instant, or the zero time when the claim is absent.
func (c *Claims) Issued() time.Time {
	if c == nil || c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// ExpiredAt reports whether the claims are expired at now. A credential whose
// expiry equals now is already expired.
func (c *Claims) ExpiredAt(now time.Time) bool {
	exp := c.Expiry()
	return !exp.IsZero() && !exp.After(now)
}

// Decode parses a credential without verifying its signature. The credential must be
// three dot-separated base64url segments whose payload carries exp and username.
//
// Errors always wrap [ErrDecode].
func Decode(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: empty credential", ErrDecode)
	}

	claims := &Claims{}
	if _, _, err := gjwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if err := claims.validateShape(); err != nil {
		return nil, err
	}

	return claims, nil
}

func (c *Claims) validateShape() error {
	if c.ExpiresAt == nil {
		return fmt.Errorf("%w: missing exp claim", ErrDecode)
	}
	if strings.TrimSpace(c.Username) == "" {
		return fmt.Errorf("%w: missing username claim", ErrDecode)
	}
	return nil
}
