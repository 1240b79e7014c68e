// Package middleware contains the Gin middleware shared by both API surfaces.
//
// This file holds the process-local token-bucket limiter. One instance is
// shared by the solutions and items surfaces, so a client's budget covers
// both. Buckets are keyed by client IP since neither surface authenticates.
//
// Three kinds of request never spend a token: CORS pre-flights, idempotent
// replays flagged by IdempotencyValidator, and anything outside the groups
// the limiter is mounted on (health, metrics). A rejection goes to the
// group's ErrorHandler, so the 429 body takes that group's shape.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/tbourn/go-crud-backend/internal/services"
)

const (
	defaultIdleTTL = 10 * time.Minute

	// sweepEvery is the number of lookups between idle-bucket sweeps.
	sweepEvery = 5000
)

// keyFunc selects the identity used to key a bucket.
type keyFunc func(*gin.Context) string

// KeyByIP keys buckets by client IP ("ip:203.0.113.7").
func KeyByIP() keyFunc {
	return func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	}
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimiter hands out one token bucket per key. Safe for concurrent use.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	keyFn keyFunc

	mu      sync.Mutex
	buckets map[string]*bucket
	idleTTL time.Duration
	lookups uint64
}

// NewRateLimiter returns a limiter refilling rps tokens per second up to
// burst (coerced to at least 1). An rps of 0 leaves only the initial burst.
func NewRateLimiter(rps float64, burst int, keyFn keyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		keyFn:   keyFn,
		buckets: make(map[string]*bucket),
		idleTTL: defaultIdleTTL,
	}
}

// limiterFor returns the bucket for key, creating it on first use. Every
// sweepEvery lookups, buckets idle for idleTTL are dropped first, the
// requested one included.
func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	now := time.Now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.lookups++
	if rl.lookups >= sweepEvery {
		rl.sweep(now)
		rl.lookups = 0
	}

	if b, ok := rl.buckets[key]; ok {
		b.seen = now
		return b.lim
	}
	b := &bucket{lim: rate.NewLimiter(rl.rps, rl.burst), seen: now}
	rl.buckets[key] = b
	return b.lim
}

// sweep drops idle buckets. Callers hold rl.mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for k, b := range rl.buckets {
		if now.Sub(b.seen) >= rl.idleTTL {
			delete(rl.buckets, k)
		}
	}
}

// Handler enforces the limit. A rejected request gets Retry-After: 1 and is
// passed to abort as a rate-limited error.
func (rl *RateLimiter) Handler(abort ErrorHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || IsRateBypass(c) {
			c.Next()
			return
		}
		if !rl.limiterFor(rl.keyFn(c)).Allow() {
			c.Header("Retry-After", "1")
			abort(c, services.RateLimited())
			return
		}
		c.Next()
	}
}
