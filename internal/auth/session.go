// Package auth implements the session-cookie collaborator used to gate the
// owner-facing routes (profile management, inbox). A session is an HS256
// signed JWT carried in a cookie; the subject claim is the account id.
//
// The anonymous submission path never touches this package: senders do not
// authenticate, by design.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName is the cookie that carries the signed session token.
const SessionCookieName = "anonbox_session"

// ErrInvalidSession is returned for missing, malformed, expired, or
// tampered-with session tokens.
var ErrInvalidSession = errors.New("invalid session")

// Sessions issues and verifies session tokens with one shared HMAC key.
type Sessions struct {
	key []byte
	ttl time.Duration
}

// NewSessions constructs a session manager. A non-positive ttl defaults to
// 24 hours.
func NewSessions(secret string, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Sessions{key: []byte(secret), ttl: ttl}
}

// Issue signs a new session token for accountID.
func (s *Sessions) Issue(accountID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   accountID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.key)
}

// Verify parses and validates token and returns the account id it was issued
// for. Any failure (bad signature, expiry, wrong algorithm, empty subject)
// collapses to ErrInvalidSession; callers need no finer detail than
// "not logged in".
func (s *Sessions) Verify(token string) (string, error) {
	if token == "" {
		return "", ErrInvalidSession
	}
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSession
		}
		return s.key, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidSession
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidSession
	}
	return claims.Subject, nil
}
