// Package middleware contains the Gin middleware shared by both API surfaces.
//
// This file provides the request-scoped plumbing every request goes through:
//
//   - RequestID() assigns or propagates X-Request-ID.
//   - CaptureBody() reads the (size-capped) body once and keeps the raw bytes
//     in the context so the logger and the JSON parser see the same payload.
//   - Logger() emits "request received" before the handler runs and
//     "response sent" after it, and attaches a request-scoped zerolog.Logger.
//   - Recovery() turns panics into classified errors via a callback.
//   - LoggerFrom() retrieves the request-scoped logger.
//
// Order: RequestID → CaptureBody → Logger → Recovery, so panics and errors are
// logged with the correlation id and the captured body.
package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

const (
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"

	ctxKeyLogger  = "logger"
	ctxKeyRawBody = "body.raw"
	ctxKeyBodyErr = "body.err"
	ctxKeyLogBody = "body.log"

	// maxQueryLogLength caps the number of bytes of the raw query string logged.
	maxQueryLogLength = 2048
	// maxBodyLogLength caps the number of bytes of the request body logged.
	maxBodyLogLength = 4096
)

// RequestID attaches (or propagates) a correlation identifier per request.
// An incoming X-Request-ID is reused; otherwise a UUIDv4 is generated.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = newRequestID()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// GetRequestID returns the correlation id set by RequestID.
func GetRequestID(c *gin.Context) string {
	v, _ := c.Get(requestIDKey)
	return asString(v)
}

// CaptureBody caps the request body at maxBytes and reads it once. The raw
// bytes are restored on c.Request.Body and stored for RawBody. A read
// failure (including exceeding the cap) is stored for the JSON parser to
// report; it does not abort here.
func CaptureBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}
		if maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		raw, err := io.ReadAll(c.Request.Body)
		_ = c.Request.Body.Close()
		if err != nil {
			c.Set(ctxKeyBodyErr, errors.Wrap(err, "read request body"))
		}
		c.Set(ctxKeyRawBody, raw)
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))
		c.Next()
	}
}

// RawBody returns the bytes captured by CaptureBody (nil when none).
func RawBody(c *gin.Context) []byte {
	v, _ := c.Get(ctxKeyRawBody)
	b, _ := v.([]byte)
	return b
}

func bodyErr(c *gin.Context) error {
	v, _ := c.Get(ctxKeyBodyErr)
	err, _ := v.(error)
	return err
}

// LoggedBody returns the redacted, truncated body exactly as Logger logged it.
func LoggedBody(c *gin.Context) string {
	v, _ := c.Get(ctxKeyLogBody)
	return asString(v)
}

// LoggerOptions configures Logger.
type LoggerOptions struct {
	// LogBody includes the redacted request body in "request received".
	LogBody bool
	// Redact options for query strings, bodies and headers.
	Redact RedactOptions
}

// Logger writes two structured lines per request: "request received"
// (method, path, query, body, client ip, user agent) when the request
// arrives and "response sent" (status, latency, bytes) when it completes.
// The response line is warn for 4xx and error for 5xx.
//
// A request-scoped logger carrying request_id (and trace_id when a span is
// active) is stored in the context for LoggerFrom.
func Logger(opts LoggerOptions) gin.HandlerFunc {
	r := NewRedactor(opts.Redact)
	return func(c *gin.Context) {
		start := time.Now()

		lc := log.With().
			Str("request_id", GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path)
		if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.HasTraceID() {
			lc = lc.Str("trace_id", sc.TraceID().String())
		}
		l := lc.Logger()
		c.Set(ctxKeyLogger, &l)

		ev := l.Info().
			Str("query", truncate(r.String(c.Request.URL.RawQuery), maxQueryLogLength)).
			Str("remote_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Interface("headers", r.Headers(c.Request.Header))
		if opts.LogBody {
			if raw := RawBody(c); len(raw) > 0 {
				body := truncate(r.Body(raw), maxBodyLogLength)
				c.Set(ctxKeyLogBody, body)
				ev = ev.Str("body", body)
			}
		}
		ev.Msg("request received")

		c.Next()

		status := c.Writer.Status()
		var out *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			out = l.Error()
		case status >= http.StatusBadRequest:
			out = l.Warn()
		default:
			out = l.Info()
		}
		if route := c.FullPath(); route != "" {
			out = out.Str("route", route)
		}
		out.
			Int("status", status).
			Dur("latency", time.Since(start)).
			Int("bytes_out", c.Writer.Size()).
			Msg("response sent")
	}
}

// PanicHandler receives a recovered panic converted to an error.
type PanicHandler func(c *gin.Context, err error)

// Recovery intercepts panics and hands them to onPanic as an error carrying
// a stack trace. With a nil onPanic, or when the response was already
// written, it aborts with a bare 500.
func Recovery(onPanic PanicHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			err, ok := rec.(error)
			if ok {
				err = errors.WithStack(err)
			} else {
				err = errors.Errorf("panic: %v", rec)
			}
			if onPanic == nil || c.Writer.Written() {
				LoggerFrom(c).Error().Stack().Err(err).Msg("panic recovered")
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			onPanic(c, err)
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped zerolog.Logger, or the global logger
// when Logger() has not run.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(ctxKeyLogger); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// truncate caps s at max bytes, backing off to a rune boundary, and appends
// an ellipsis. A max <= 0 disables truncation.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
