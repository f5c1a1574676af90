// Package auth supplies the bearer token attached to broker connections
// and authorized publishes. Token issuance belongs to the login service
// and stays outside this module; this package only carries tokens and
// reads their unverified claims so the client can address topics by its
// own username and refuse to connect with a token that is already dead.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource yields the current bearer token.
type TokenSource interface {
	Token() (string, error)
}

// Errors returned by token sources.
var (
	ErrNoToken      = errors.New("auth: no token available")
	ErrTokenExpired = errors.New("auth: token has expired")
)

// StaticSource is a fixed, opaque token. Used when the token's contents
// are nobody's business, e.g. in tests or against brokers with external
// session validation.
type StaticSource string

// Token returns the fixed token.
func (s StaticSource) Token() (string, error) {
	if s == "" {
		return "", ErrNoToken
	}
	return string(s), nil
}

// JWTSource wraps a raw JWT issued by the login service. Claims are read
// without signature verification: the broker verifies, the client only
// needs the subject username and the expiry.
type JWTSource struct {
	raw    string
	claims jwt.RegisteredClaims
}

// NewJWTSource parses the raw token's claims. The signature is not
// checked.
func NewJWTSource(raw string) (*JWTSource, error) {
	if raw == "" {
		return nil, ErrNoToken
	}

	src := &JWTSource{raw: raw}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &src.claims); err != nil {
		return nil, fmt.Errorf("auth: malformed token: %w", err)
	}
	return src, nil
}

// Token returns the raw token, refusing once the expiry has passed so a
// dead token is never attached to a new connection.
func (s *JWTSource) Token() (string, error) {
	if exp, ok := s.ExpiresAt(); ok && time.Now().After(exp) {
		return "", ErrTokenExpired
	}
	return s.raw, nil
}

// Username returns the subject claim, the addressing key for all of the
// local user's topics.
func (s *JWTSource) Username() string {
	return s.claims.Subject
}

// ExpiresAt returns the expiry claim when present.
func (s *JWTSource) ExpiresAt() (time.Time, bool) {
	if s.claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return s.claims.ExpiresAt.Time, true
}

// Bearer formats a token the way the broker and the profile API expect it
// in Authorization values.
func Bearer(token string) string {
	return "Bearer " + token
}
