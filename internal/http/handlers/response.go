// Package handlers provides the HTTP handlers for the solutions and items
// surfaces together with the response envelope builder and the error
// classifier they share.
//
// This file builds every response body. Two policies exist and each route
// group selects one with UsePolicy:
//
//   - Envelope (items, health, route-not-found):
//     success {success:true, [count], data, [message], timestamp}
//     error   {success:false, error, [message, hint], timestamp}
//   - Bare (solutions):
//     success is the payload itself
//     error   {error, [message, hint]}
//
// Handlers never build bodies by hand; they call ok/okList/created and Abort.
//
// Example envelope:
//
//	HTTP/1.1 200 OK
//	{ "success": true, "count": 1, "data": [ {...} ], "timestamp": "2024-05-01T12:00:00.000Z" }
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Policy selects the response shape of a route group.
type Policy int

const (
	// PolicyEnvelope wraps bodies in {success, data, timestamp}.
	PolicyEnvelope Policy = iota
	// PolicyBare writes payloads as-is and errors as {error}.
	PolicyBare
)

const ctxKeyPolicy = "response.policy"

// TimestampLayout is ISO-8601 UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// now is swapped in tests.
var now = time.Now

// Timestamp formats t in TimestampLayout.
func Timestamp(t time.Time) string { return t.UTC().Format(TimestampLayout) }

// UsePolicy selects p for the rest of the chain.
func UsePolicy(p Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxKeyPolicy, p)
		c.Next()
	}
}

// PolicyFrom returns the active policy; PolicyEnvelope when none was set.
func PolicyFrom(c *gin.Context) Policy {
	if v, ok := c.Get(ctxKeyPolicy); ok {
		if p, ok := v.(Policy); ok {
			return p
		}
	}
	return PolicyEnvelope
}

// SuccessResponse is the enveloped success body.
type SuccessResponse struct {
	Success   bool   `json:"success" example:"true"`
	Count     *int   `json:"count,omitempty" example:"1"`
	Data      any    `json:"data"`
	Message   string `json:"message,omitempty" example:"Item created successfully"`
	Timestamp string `json:"timestamp" example:"2024-05-01T12:00:00.000Z"`
}

// ErrorResponse is the enveloped error body.
type ErrorResponse struct {
	Success   bool   `json:"success" example:"false"`
	Error     string `json:"error" example:"Item not found"`
	Message   string `json:"message,omitempty"`
	Hint      string `json:"hint,omitempty"`
	Path      string `json:"path,omitempty"`
	Timestamp string `json:"timestamp" example:"2024-05-01T12:00:00.000Z"`
}

// BareErrorResponse is the error body of the bare policy.
type BareErrorResponse struct {
	Error   string `json:"error" example:"problemId required"`
	Message string `json:"message,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

// ok writes data with status under the active policy.
func ok(c *gin.Context, status int, data any) {
	write(c, status, data, nil, "")
}

// okList writes a collection; the envelope also carries its count.
func okList[T any](c *gin.Context, status int, items []T) {
	n := len(items)
	write(c, status, items, &n, "")
}

// created writes a newly created resource with a human message.
func created(c *gin.Context, status int, data any, msg string) {
	write(c, status, data, nil, msg)
}

func write(c *gin.Context, status int, data any, count *int, msg string) {
	if PolicyFrom(c) == PolicyBare {
		c.JSON(status, data)
		return
	}
	c.JSON(status, SuccessResponse{
		Success:   true,
		Count:     count,
		Data:      data,
		Message:   msg,
		Timestamp: Timestamp(now()),
	})
}

// writeError aborts with an error body under the active policy.
func writeError(c *gin.Context, status int, e ErrorResponse) {
	if PolicyFrom(c) == PolicyBare {
		c.AbortWithStatusJSON(status, BareErrorResponse{Error: e.Error, Message: e.Message, Hint: e.Hint})
		return
	}
	e.Success = false
	e.Timestamp = Timestamp(now())
	c.AbortWithStatusJSON(status, e)
}
