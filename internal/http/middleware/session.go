// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the session gate: it resolves the current account
// from the session cookie and enforces the route-gating policy. The public
// surface (share-link pages, the anonymous submission endpoint and its debug
// companions, health and metrics) is reachable without a session; everything
// else requires one.
//
// Anonymous senders never authenticate: the gate must stay out of the way of
// the submission path even when the visitor carries a stale or broken cookie.
package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kmarinos/go-anonbox-backend/internal/auth"
)

// publicPrefixes are path prefixes reachable without a session.
var publicPrefixes = []string{
	"/api/send-message",
	"/api/test-mobile",
	"/api/mobile-debug",
	"/api/profiles",
	"/auth",
	"/swagger",
}

var (
	// usernamePathRE matches a bare public profile page: /<username>.
	usernamePathRE = regexp.MustCompile(`^/[a-zA-Z0-9_-]+$`)
	// messagePathRE matches a share link with an id: /<username>/<uuid>.
	messagePathRE = regexp.MustCompile(`^/[a-zA-Z0-9_-]+/[a-fA-F0-9-]{36}$`)
)

// IsPublicPath reports whether path is reachable without a session under the
// route-gating policy.
func IsPublicPath(path string) bool {
	if path == "/" || path == "/health" || path == "/metrics" {
		return true
	}
	for _, p := range publicPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	// Reserved app routes are never treated as usernames.
	if strings.HasPrefix(path, "/api/") {
		return false
	}
	return usernamePathRE.MatchString(path) || messagePathRE.MatchString(path)
}

// Session returns a middleware that resolves the current account from the
// session cookie and enforces the route-gating policy.
//
// On every request the cookie is verified when present and the account id is
// stored in the context (key "accountID") for handlers and the rate limiter.
// A missing or invalid session aborts with 401 only on non-public paths; an
// invalid cookie on a public path is simply ignored.
func Session(sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cookie, err := c.Cookie(auth.SessionCookieName); err == nil && cookie != "" {
			if accountID, verr := sessions.Verify(cookie); verr == nil {
				c.Set(accountIDKey, accountID)
			}
		}

		if _, ok := c.Get(accountIDKey); !ok && !IsPublicPath(c.Request.URL.Path) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "unauthorized",
				"message":    "authentication required",
			})
			return
		}
		c.Next()
	}
}

// AccountID extracts the authenticated account id set by Session, or ""
// for anonymous requests.
func AccountID(c *gin.Context) string {
	if v, ok := c.Get(accountIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
