// Package middleware contains the Gin middleware shared by both API surfaces.
//
// This file implements Idempotency-Key handling for item creation. The
// validator checks the header, stashes the key for the handler, and asks a
// lookup whether the key already produced an item. A known key marks the
// request as a replay, which lets it skip the rate limiter; the handler
// still serves the stored item through the service.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-crud-backend/internal/services"
)

const (
	// HeaderIdempotencyKey carries the client-chosen key of a POST.
	HeaderIdempotencyKey = "Idempotency-Key"
	// HeaderIdempotentReplayed is set to "true" on responses served from a
	// previous request with the same key.
	HeaderIdempotentReplayed = "Idempotent-Replayed"
)

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"
)

var defaultKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// GetIdempotencyKey returns the validated key, if the request carried one.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether the lookup found a live record for the key.
func IsReplay(c *gin.Context) bool {
	v, _ := c.Get(ctxKeyIdemReplay)
	b, _ := v.(bool)
	return b
}

// IsRateBypass reports whether the rate limiter should skip this request.
func IsRateBypass(c *gin.Context) bool {
	v, _ := c.Get(ctxKeyRateBypass)
	b, _ := v.(bool)
	return b
}

// IdempotencyOptions configures key validation.
type IdempotencyOptions struct {
	// MaxLen caps the key length in bytes. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts the key's characters. Nil uses ^[A-Za-z0-9._~\-:]+$.
	Pattern *regexp.Regexp
}

// IdempotencyLookup reports whether key has a live record at now. Lookup
// errors are ignored by the validator; the service repeats the lookup
// inside its transaction.
type IdempotencyLookup func(ctx context.Context, key string, now time.Time) (bool, error)

// IdempotencyValidator validates Idempotency-Key on POST requests. An
// absent header is a no-op. An invalid one is passed to abort as a
// validation error.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup, abort ErrorHandler) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultKeyPattern
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			abort(c, services.Validation(HeaderIdempotencyKey, "Invalid Idempotency-Key header"))
			return
		}

		c.Set(ctxKeyIdemKey, key)
		if lookup != nil {
			if ok, _ := lookup(c.Request.Context(), key, time.Now().UTC()); ok {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}
		c.Next()
	}
}
