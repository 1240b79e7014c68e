// Package services implements the request-independent core of the API: the
// validation layer that turns raw JSON bodies into typed inputs, and the
// upsert/fetch engine for solutions and items.
//
// This file defines the typed error taxonomy every layer speaks. Handlers
// never inspect error strings; they classify by Kind (see KindOf) and map the
// kind to a status code and caller-facing message at the pipeline boundary.
package services

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/tbourn/go-crud-backend/internal/repo"
)

// Kind classifies a failure. The zero value is KindUnknown.
type Kind int

const (
	KindUnknown Kind = iota
	KindMalformedBody
	KindValidation
	KindNotFound
	KindStore
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindMalformedBody:
		return "malformed_body"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindStore:
		return "store"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// Error is the typed failure returned by the validation layer and the engine.
//
// Message is safe to show to callers for MalformedBody, Validation and
// NotFound. For Store and Unknown it is only logged.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Validation returns a validation error naming field.
func Validation(field, msg string) error {
	return errors.WithStack(&Error{Kind: KindValidation, Field: field, Message: msg})
}

// NotFound returns a not-found error with a caller-facing message.
func NotFound(msg string) error {
	return errors.WithStack(&Error{Kind: KindNotFound, Message: msg})
}

// MalformedBody wraps a JSON parser failure.
func MalformedBody(err error) error {
	return errors.WithStack(&Error{Kind: KindMalformedBody, Message: err.Error(), Err: err})
}

// Store wraps a persistence failure. A nil err yields nil.
func Store(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindStore, Err: err}
}

// RateLimited reports a request rejected by the rate limiter.
func RateLimited() error {
	return &Error{Kind: KindRateLimited, Message: "Too many requests"}
}

// KindOf classifies err. Typed errors win; a bare repo.ErrNotFound is a
// NotFound; everything else is Unknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, repo.ErrNotFound) {
		return KindNotFound
	}
	return KindUnknown
}

// AsError extracts the typed error from err's chain, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
