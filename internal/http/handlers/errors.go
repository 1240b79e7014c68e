// Package handlers: error classifier.
//
// Abort is the single place where a failure becomes a response. It maps the
// error's Kind to a status and a caller-facing message, logs the failure once
// with full request context, counts it, and writes the body in the active
// policy's shape.
//
//	Kind           Status  Caller message
//	malformed_body 400     "Invalid JSON format" + parser message + hint
//	validation     400     the field-naming message
//	not_found      404     the not-found message
//	rate_limited   429     "Too many requests"
//	store          500     "Database operation failed"
//	unknown        500     "Internal server error"
//
// Store and unknown details are logged, never returned.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-crud-backend/internal/http/middleware"
	"github.com/tbourn/go-crud-backend/internal/services"
)

const (
	msgMalformed   = "Invalid JSON format"
	hintMalformed  = "Please check your JSON syntax. Common issues: missing quotes, trailing commas, or unclosed strings"
	msgNotFound    = "Not found"
	msgRateLimited = "Too many requests"
	msgStore       = "Database operation failed"
	msgInternal    = "Internal server error"
)

// classify maps err to its status and response body.
func classify(err error) (services.Kind, int, ErrorResponse) {
	kind := services.KindOf(err)
	e, _ := services.AsError(err)

	switch kind {
	case services.KindMalformedBody:
		resp := ErrorResponse{Error: msgMalformed, Hint: hintMalformed}
		if e != nil {
			resp.Message = e.Message
		}
		return kind, http.StatusBadRequest, resp
	case services.KindValidation:
		return kind, http.StatusBadRequest, ErrorResponse{Error: e.Message}
	case services.KindNotFound:
		msg := msgNotFound
		if e != nil && e.Message != "" {
			msg = e.Message
		}
		return kind, http.StatusNotFound, ErrorResponse{Error: msg}
	case services.KindRateLimited:
		return kind, http.StatusTooManyRequests, ErrorResponse{Error: msgRateLimited}
	case services.KindStore:
		return kind, http.StatusInternalServerError, ErrorResponse{Error: msgStore}
	default:
		return kind, http.StatusInternalServerError, ErrorResponse{Error: msgInternal}
	}
}

// Abort classifies err, logs and counts it, and writes the error response.
func Abort(c *gin.Context, err error) {
	kind, status, resp := classify(err)

	lg := middleware.LoggerFrom(c)
	ev := lg.Warn()
	if status >= http.StatusInternalServerError {
		ev = lg.Error()
	}
	ev.Stack().Err(err).
		Str("kind", kind.String()).
		Int("status", status).
		Str("query", c.Request.URL.RawQuery).
		Str("remote_ip", c.ClientIP()).
		Str("body", middleware.LoggedBody(c)).
		Msg("request failed")

	middleware.ObserveError(kind.String())
	writeError(c, status, resp)
}

// RouteNotFound answers requests no route matched.
func RouteNotFound(c *gin.Context) {
	middleware.LoggerFrom(c).Warn().
		Str("url", c.Request.URL.RequestURI()).
		Msg("route not found")
	writeError(c, http.StatusNotFound, ErrorResponse{
		Error: "Route not found",
		Path:  c.Request.URL.RequestURI(),
	})
}
