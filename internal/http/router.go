// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency, and rate limiting.
//
// Two surfaces are mounted:
//   - the solutions surface at cfg.SolutionsPath: bare JSON bodies and fixed
//     permissive CORS headers on every outcome
//   - the items surface under cfg.APIBasePath: enveloped JSON bodies and
//     configurable CORS
package httpapi

import (
	"context"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/go-crud-backend/docs"
	"github.com/tbourn/go-crud-backend/internal/config"
	"github.com/tbourn/go-crud-backend/internal/http/handlers"
	"github.com/tbourn/go-crud-backend/internal/http/middleware"
	"github.com/tbourn/go-crud-backend/internal/repo"
	"github.com/tbourn/go-crud-backend/internal/services"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. db backs the items surface and idempotency records; docs backs the
// solutions surface.
//
// Global middleware order:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. CaptureBody: buffer the body once for logging and decoding
//  4. Logger: structured logs with redaction
//  5. Recovery: panics become internal errors in the caller's shape
//  6. Metrics, labelled by surface
//  7. Gzip (optional)
//  8. CORS for everything but the solutions path, then security headers
//
// Each surface then selects its response policy before anything that can
// fail, so rate-limit and body errors take the surface's shape.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, docs services.SolutionStore, cfg config.Config) {
	r.HandleMethodNotAllowed = false

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Body capture with the configured cap; overflow surfaces as a
	// malformed body when a handler needs it.
	r.Use(middleware.CaptureBody(cfg.MaxBodyBytes))

	// 4) Structured logging with redaction
	r.Use(middleware.Logger(middleware.LoggerOptions{
		LogBody: cfg.LogRequestBody,
		Redact: middleware.RedactOptions{
			MaskHeaders: []string{"X-API-Key"},
		},
	}))

	// 5) Panic recovery
	r.Use(middleware.Recovery(handlers.Abort))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics(middleware.MetricsOptions{
		Surfaces: []middleware.Surface{
			{Name: "solutions", Prefix: cfg.SolutionsPath},
			{Name: "items", Prefix: cfg.APIBasePath},
		},
	}))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Compression
	if cfg.GzipEnabled {
		r.Use(gzip.Gzip(gzip.DefaultCompression))
	}

	// 8) CORS posture and security headers
	r.Use(middleware.CORS(middleware.CORSOptions{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		SkipPaths:      []string{cfg.SolutionsPath},
	}))
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallback
	r.NoRoute(handlers.RouteNotFound)

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/docs
	solSvc := &services.SolutionService{Store: docs}
	itemSvc := &services.ItemService{DB: db, IdempotencyTTL: cfg.IdempotencyTTL}
	h := handlers.New(solSvc, itemSvc, cfg.Environment)

	// Liveness/health
	r.GET("/health", h.Health)

	// One limiter shared by both surfaces
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByIP())

	// Solutions surface. The pre-flight sits outside the limiter: it must
	// answer 200 with the fixed headers whatever the server state.
	sol := r.Group(cfg.SolutionsPath,
		handlers.UsePolicy(handlers.PolicyBare),
		middleware.FixedCORS(),
	)
	sol.OPTIONS("", h.SolutionsPreflight)
	{
		limited := sol.Group("", rl.Handler(handlers.Abort), middleware.JSONBody(handlers.Abort))
		limited.POST("", h.SubmitSolution)
		limited.GET("", h.ListSolutions)
	}

	// Items surface
	api := groupWithPrefix(r, cfg.APIBasePath,
		handlers.UsePolicy(handlers.PolicyEnvelope),
		middleware.IdempotencyValidator(
			middleware.IdempotencyOptions{MaxLen: 200},
			func(ctx context.Context, key string, now time.Time) (bool, error) {
				rec, err := repo.GetIdempotency(ctx, db, key, now)
				if errors.Is(err, repo.ErrNotFound) {
					return false, nil
				}
				return rec != nil, err
			},
			handlers.Abort,
		),
		rl.Handler(handlers.Abort),
		middleware.JSONBody(handlers.Abort),
	)
	{
		api.GET("/items", h.ListItems)
		api.GET("/items/:id", h.GetItem)
		api.POST("/items", h.CreateItem)
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string, mw ...gin.HandlerFunc) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("", mw...)
	}
	return r.Group(prefix, mw...)
}
