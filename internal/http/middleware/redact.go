// Package middleware contains the Gin middleware shared by both API surfaces.
//
// This file implements the Redactor used by Logger to scrub obvious PII from
// query strings, request bodies and headers before they reach the logs.
//
// Scrubbing rules:
//   - UUIDs, emails and phone numbers in free text are replaced by tags
//   - values of sensitive JSON keys (password, token, secret, ...) are masked
//   - sensitive headers (Authorization, Cookie, Set-Cookie, plus custom) are masked
package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// RedactOptions configures extra scrubbing on top of the built-in rules.
//
// MaskHeaders and MaskFields are matched case-insensitively.
type RedactOptions struct {
	MaskHeaders []string
	MaskFields  []string
}

var (
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// Digits-only so it never eats the hex groups of a UUID.
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

var defaultMaskFields = []string{"password", "token", "secret", "apiKey", "api_key", "authorization"}

// Redactor scrubs log-bound strings. The zero value applies no field or
// header masks beyond the free-text patterns.
type Redactor struct {
	headers map[string]struct{}
	fieldRE *regexp.Regexp
}

// NewRedactor compiles the masks in opts together with the built-in ones.
func NewRedactor(opts RedactOptions) *Redactor {
	headers := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			headers[h] = struct{}{}
		}
	}

	fields := append(append([]string(nil), defaultMaskFields...), opts.MaskFields...)
	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			quoted = append(quoted, regexp.QuoteMeta(f))
		}
	}
	fieldRE := regexp.MustCompile(`(?i)("(?:` + strings.Join(quoted, "|") + `)"\s*:\s*)"(?:[^"\\]|\\.)*"`)

	return &Redactor{headers: headers, fieldRE: fieldRE}
}

// String scrubs identifiers from free text. UUIDs go first so the looser
// phone pattern cannot match their digit groups.
func (r *Redactor) String(s string) string {
	if s == "" {
		return s
	}
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
}

// Body masks sensitive JSON fields, then scrubs the rest as free text.
func (r *Redactor) Body(raw []byte) string {
	s := string(raw)
	if r.fieldRE != nil {
		s = r.fieldRE.ReplaceAllString(s, `${1}"[REDACTED]"`)
	}
	return r.String(s)
}

// Headers returns a flattened, scrubbed copy of h.
func (r *Redactor) Headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		if _, ok := r.headers[strings.ToLower(k)]; ok {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = r.String(strings.Join(vv, ", "))
	}
	return out
}

func newRequestID() string { return uuid.NewString() }
