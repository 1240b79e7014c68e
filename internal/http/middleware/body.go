// Package middleware contains the Gin middleware shared by both API surfaces.
//
// This file decodes JSON request bodies for a route group. It runs after the
// group's response policy is selected so a malformed body is answered in that
// group's error shape.
package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/tbourn/go-crud-backend/internal/services"
)

const ctxKeyJSONBody = "body.json"

var (
	jsonNull     = []byte("null")
	errNotObject = errors.New("request body must be a JSON object")
)

// ErrorHandler writes the classified response for err and aborts.
type ErrorHandler func(c *gin.Context, err error)

// JSONBody decodes the captured body of POST, PUT and PATCH requests into a
// JSON object. An empty body decodes to an empty object. Anything that is not
// a single JSON object, or a body that could not be read, is passed to abort
// as a malformed-body error.
func JSONBody(abort ErrorHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		if err := bodyErr(c); err != nil {
			abort(c, services.MalformedBody(err))
			return
		}

		obj := map[string]json.RawMessage{}
		if raw := bytes.TrimSpace(RawBody(c)); len(raw) > 0 {
			if raw[0] != '{' && !bytes.Equal(raw, jsonNull) && json.Valid(raw) {
				abort(c, services.MalformedBody(errNotObject))
				return
			}
			if err := json.Unmarshal(raw, &obj); err != nil {
				abort(c, services.MalformedBody(err))
				return
			}
			if obj == nil {
				// a literal null
				obj = map[string]json.RawMessage{}
			}
		}
		c.Set(ctxKeyJSONBody, obj)
		c.Next()
	}
}

// BodyFrom returns the object decoded by JSONBody (never nil).
func BodyFrom(c *gin.Context) map[string]json.RawMessage {
	if v, ok := c.Get(ctxKeyJSONBody); ok {
		if m, ok := v.(map[string]json.RawMessage); ok {
			return m
		}
	}
	return map[string]json.RawMessage{}
}
