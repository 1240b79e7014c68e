// Package middleware contains the Gin middleware shared by both API surfaces.
//
// This file holds the Prometheus collectors. Every request is attributed to
// the surface whose prefix owns its route (solutions, items, or "other" for
// health, metrics and docs), so dashboards can split the bare and enveloped
// APIs without parsing paths.
//
// Labels:
//   - surface: name from MetricsOptions.Surfaces, or "other"
//   - route:   the registered Gin route; requests with no route share
//     the single value "unmatched"
//   - method, status: HTTP verb and numeric status code
//   - kind:    error kind for api_errors_total
package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	unmatchedPath = "unmatched"
	otherSurface  = "other"
)

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by surface, route, method and status.",
		},
		[]string{"surface", "route", "method", "status"},
	)

	// No status label on the histograms; route and method are enough to
	// find a slow endpoint.
	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by surface, route and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"surface", "route", "method"},
	)

	// Solution documents and item payloads are small; the top bucket sits
	// just under the default body cap.
	httpRespSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response body size by surface and route.",
			Buckets: prometheus.ExponentialBuckets(64, 4, 8), // 64B..1MiB
		},
		[]string{"surface", "route"},
	)

	httpInflight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "Requests currently being served, by surface.",
		},
		[]string{"surface"},
	)

	apiErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Classified API errors by kind.",
		},
		[]string{"kind"},
	)

	idemReplays = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idempotent_replays_total",
			Help: "Requests served as idempotent replays, by surface.",
		},
		[]string{"surface"},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpRespSize, httpInflight, apiErrors, idemReplays)
}

// ObserveError increments api_errors_total for kind.
func ObserveError(kind string) {
	apiErrors.WithLabelValues(kind).Inc()
}

// Surface names an API surface and the route prefix it owns.
type Surface struct {
	Name   string
	Prefix string
}

// MetricsOptions configures Metrics.
type MetricsOptions struct {
	// Surfaces are tried in order; the first whose prefix owns the request
	// path wins. A "" or "/" prefix owns every path.
	Surfaces []Surface
}

func (o MetricsOptions) surfaceOf(path string) string {
	for _, s := range o.Surfaces {
		if ownsPath(s.Prefix, path) {
			return s.Name
		}
	}
	return otherSurface
}

// ownsPath reports whether prefix is path itself or a whole-segment prefix
// of it, so "/api" owns "/api/items" but not "/apis".
func ownsPath(prefix, path string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return true
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// Metrics records per-request counters, latency and response size labelled
// by surface and route, and counts idempotent replays.
func Metrics(opts MetricsOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		surface := opts.surfaceOf(c.Request.URL.Path)
		inflight := httpInflight.WithLabelValues(surface)
		inflight.Inc()
		defer inflight.Dec()

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedPath
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		httpReqs.WithLabelValues(surface, route, method, status).Inc()
		httpLat.WithLabelValues(surface, route, method).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size >= 0 {
			httpRespSize.WithLabelValues(surface, route).Observe(float64(size))
		}
		if IsReplay(c) {
			idemReplays.WithLabelValues(surface).Inc()
		}
	}
}
