// Package middleware contains the Gin middleware shared by both API surfaces.
//
// This file holds the two CORS postures. The enveloped surface uses
// gin-contrib/cors driven by configuration. The solutions surface answers
// every response, errors and pre-flight included, with a fixed permissive
// header set, so the configurable middleware must skip it.
package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Fixed headers of the solutions surface.
const (
	FixedAllowOrigin  = "*"
	FixedAllowMethods = "GET, POST, OPTIONS"
	FixedAllowHeaders = "Content-Type"
)

// CORSOptions configures the gin-contrib/cors posture.
type CORSOptions struct {
	// AllowedOrigins; empty allows any origin.
	AllowedOrigins []string
	// SkipPaths are exact request paths the middleware leaves untouched.
	SkipPaths []string
}

// CORS returns gin-contrib/cors configured from opts, bypassed for
// opts.SkipPaths.
func CORS(opts CORSOptions) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", HeaderIdempotencyKey, requestIDHeader},
		ExposeHeaders:    []string{requestIDHeader, "Content-Length", HeaderIdempotentReplayed},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(opts.AllowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = opts.AllowedOrigins
	}
	inner := cors.New(cfg)

	skip := make(map[string]struct{}, len(opts.SkipPaths))
	for _, p := range opts.SkipPaths {
		skip[p] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		inner(c)
	}
}

// FixedCORS sets the solutions surface headers before the handler runs so
// they are present on every outcome.
func FixedCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", FixedAllowOrigin)
		h.Set("Access-Control-Allow-Methods", FixedAllowMethods)
		h.Set("Access-Control-Allow-Headers", FixedAllowHeaders)
		c.Next()
	}
}
