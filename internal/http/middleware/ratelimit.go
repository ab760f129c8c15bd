// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements an in-memory token-bucket rate limiter with per-sender
// buckets. Anonymous submission is the main abuse surface of the service, so
// the limiter keys anonymous traffic by client IP and authenticated traffic by
// account id. Idle buckets are evicted opportunistically to bound memory.
//
// The limiter is process-local. A horizontally scaled deployment needs a
// shared limiter (Redis or similar) to enforce a global budget.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// keyFunc maps a request to the identity whose bucket should be charged.
// Implementations must return a stable string for the lifetime of a request.
type keyFunc func(*gin.Context) string

// KeyByAccountOrIP returns a keyFunc that charges the authenticated account
// when the session middleware resolved one, and the client IP otherwise.
//
// Keys are prefixed so account ids and IP addresses can never collide
// ("account:abc" vs "ip:203.0.113.7").
func KeyByAccountOrIP() keyFunc {
	return func(c *gin.Context) string {
		if id := AccountID(c); id != "" {
			return "account:" + id
		}
		return "ip:" + c.ClientIP()
	}
}

// bucket pairs a limiter with its last activity time so idle entries can be
// evicted.
type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces per-key token-bucket limits.
//
// Buckets are created lazily and kept in a map guarded by a mutex. Every
// ~5000 lookups the map is swept and entries idle for longer than the TTL are
// dropped. Safe for concurrent use.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	keyFn keyFunc

	mu      sync.Mutex
	buckets map[string]*bucket
	sweepN  uint64
	ttl     time.Duration
}

// NewRateLimiter builds a RateLimiter replenishing rps tokens per second with
// the given burst, keyed by keyFn. A burst <= 0 is coerced to 1.
func NewRateLimiter(rps float64, burst int, keyFn keyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		keyFn:   keyFn,
		buckets: make(map[string]*bucket),
		ttl:     10 * time.Minute,
	}
}

// take returns the limiter for key, creating it if absent. The sweep runs
// before the lookup so a stale bucket can be evicted even when it is the one
// being fetched.
func (rl *RateLimiter) take(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.Lock()
	rl.sweepN++
	if rl.sweepN >= 5000 {
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) >= rl.ttl {
				delete(rl.buckets, k)
			}
		}
		rl.sweepN = 0
	}

	if b, ok := rl.buckets[key]; ok {
		b.lastSeen = now
		lim := b.lim
		rl.mu.Unlock()
		return lim
	}

	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.buckets[key] = &bucket{lim: lim, lastSeen: now}
	rl.mu.Unlock()
	return lim
}

// Handler returns a Gin middleware that enforces the limiter. Requests over
// budget are rejected with 429, a Retry-After hint, and the standard error
// envelope.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.take(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}

		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.Writer.Header().Get(requestIDHeader),
			"code":       "too_many_requests",
			"message":    "rate limit exceeded",
		})
	}
}
