// Package services: validation layer.
//
// Every write endpoint hands its decoded JSON object to one of the Validate*
// functions below before touching a store. The functions are pure: they coerce
// the raw fields into a typed input, NFC-normalize strings, then let
// go-playground/validator check required-ness in declaration order so the
// first offending field is the one reported.
package services

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"
	"gorm.io/datatypes"
)

const (
	solutionExample = `{"problemId":"42","username":"alice","solutionLink":"https://example.com/solution"}`
	itemExample     = `{"name":"My Item","data":"optional data"}`
)

// SolutionInput is a validated solution submission.
type SolutionInput struct {
	ProblemID    string `json:"problemId" validate:"required"`
	Username     string `json:"username" validate:"required"`
	SolutionLink string `json:"solutionLink" validate:"required"`
}

// ItemInput is a validated item creation request. Data is nil when the
// caller omitted it or sent null.
type ItemInput struct {
	Name string         `json:"name" validate:"required"`
	Data datatypes.JSON `json:"data"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// firstInvalid returns the JSON name of the first field that failed its tags.
func firstInvalid(s any) (string, bool) {
	err := validate.Struct(s)
	if err == nil {
		return "", false
	}
	if ves, ok := err.(validator.ValidationErrors); ok && len(ves) > 0 {
		return ves[0].Field(), true
	}
	return "", true
}

// ValidateSolution checks a POST /solutions body. problemId may be a JSON
// string or number; username and solutionLink must be strings. A field of
// the wrong type counts as missing.
func ValidateSolution(body map[string]json.RawMessage) (SolutionInput, error) {
	in := SolutionInput{
		ProblemID:    stringOrNumber(body["problemId"]),
		Username:     stringField(body["username"]),
		SolutionLink: stringField(body["solutionLink"]),
	}
	if field, bad := firstInvalid(in); bad {
		return SolutionInput{}, Validation(field, solutionMessage(field))
	}
	return in, nil
}

func solutionMessage(field string) string {
	kind := "a non-empty string"
	if field == "problemId" {
		kind = "a non-empty string or number"
	}
	return field + " is required and must be " + kind + ". Example: " + solutionExample
}

// ValidateProblemQuery checks the problemId query parameter of GET /solutions.
func ValidateProblemQuery(v string) (string, error) {
	v = norm.NFC.String(v)
	if v == "" {
		return "", Validation("problemId", "problemId required")
	}
	return v, nil
}

// ValidateItem checks a POST /items body. The stored name is trimmed; data is
// passed through untouched.
func ValidateItem(body map[string]json.RawMessage) (ItemInput, error) {
	in := ItemInput{
		Name: strings.TrimSpace(stringField(body["name"])),
	}
	if raw := bytes.TrimSpace(body["data"]); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		in.Data = datatypes.JSON(append([]byte(nil), raw...))
	}
	if field, bad := firstInvalid(in); bad {
		return ItemInput{}, Validation(field, field+" is required and must be a non-empty string. Example: "+itemExample)
	}
	return in, nil
}

// ParseItemID parses a path id as a base-10 non-negative integer. Anything
// else is a validation error, never a not-found.
func ParseItemID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, strconv.IntSize)
	if err != nil {
		return 0, Validation("id", "Invalid item ID")
	}
	return uint(id), nil
}

// stringField decodes raw as a JSON string. Absent, null and non-string
// values decode to "".
func stringField(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return norm.NFC.String(s)
}

// stringOrNumber accepts a JSON string or number; numbers are rendered in
// their shortest decimal form (42 -> "42", 1.50 -> "1.5").
func stringOrNumber(raw json.RawMessage) string {
	if s := stringField(raw); s != "" {
		return s
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if len(raw) == 0 || dec.Decode(&n) != nil {
		return ""
	}
	f, err := n.Float64()
	if err != nil {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
