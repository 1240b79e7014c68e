package services

import (
	"encoding/json"
	"strings"
	"testing"
)

func body(t *testing.T, s string) map[string]json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		t.Fatalf("bad fixture %q: %v", s, err)
	}
	return m
}

func wantValidation(t *testing.T, err error, field string) *Error {
	t.Helper()
	e, ok := AsError(err)
	if !ok || e.Kind != KindValidation {
		t.Fatalf("want validation error, got %v", err)
	}
	if e.Field != field {
		t.Fatalf("field = %q, want %q", e.Field, field)
	}
	return e
}

func TestValidateSolution_OK(t *testing.T) {
	in, err := ValidateSolution(body(t, `{"problemId":"p1","username":"alice","solutionLink":"https://x"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.ProblemID != "p1" || in.Username != "alice" || in.SolutionLink != "https://x" {
		t.Fatalf("unexpected input: %+v", in)
	}
}

func TestValidateSolution_NumericProblemID(t *testing.T) {
	cases := map[string]string{
		`42`:   "42",
		`0`:    "0",
		`1.50`: "1.5",
		`-7`:   "-7",
	}
	for raw, want := range cases {
		in, err := ValidateSolution(body(t, `{"problemId":`+raw+`,"username":"a","solutionLink":"l"}`))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", raw, err)
		}
		if in.ProblemID != want {
			t.Fatalf("%s: problemId = %q, want %q", raw, in.ProblemID, want)
		}
	}
}

func TestValidateSolution_FirstMissingFieldIsNamed(t *testing.T) {
	tests := []struct {
		body  string
		field string
	}{
		{`{}`, "problemId"},
		{`{"username":"a","solutionLink":"l"}`, "problemId"},
		{`{"problemId":"","username":"a","solutionLink":"l"}`, "problemId"},
		{`{"problemId":true,"username":"a","solutionLink":"l"}`, "problemId"},
		{`{"problemId":null,"username":"a","solutionLink":"l"}`, "problemId"},
		{`{"problemId":"p","solutionLink":"l"}`, "username"},
		{`{"problemId":"p","username":7,"solutionLink":"l"}`, "username"},
		{`{"problemId":"p","username":"a"}`, "solutionLink"},
		{`{"problemId":"p","username":"a","solutionLink":["l"]}`, "solutionLink"},
		// two missing: the earlier one wins
		{`{"problemId":"p"}`, "username"},
	}
	for _, tc := range tests {
		_, err := ValidateSolution(body(t, tc.body))
		e := wantValidation(t, err, tc.field)
		if !strings.Contains(e.Message, tc.field) || !strings.Contains(e.Message, "Example:") {
			t.Fatalf("%s: message %q should name the field and show an example", tc.body, e.Message)
		}
	}
}

func TestValidateSolution_NFC(t *testing.T) {
	// "e" followed by a combining acute accent composes to U+00E9.
	in, err := ValidateSolution(body(t, `{"problemId":"p","username":"jose\u0301","solutionLink":"l"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Username != "jos\u00e9" {
		t.Fatalf("username not NFC-normalized: %q", in.Username)
	}
}

func TestValidateProblemQuery(t *testing.T) {
	if v, err := ValidateProblemQuery("42"); err != nil || v != "42" {
		t.Fatalf("got %q, %v", v, err)
	}
	_, err := ValidateProblemQuery("")
	e := wantValidation(t, err, "problemId")
	if e.Message != "problemId required" {
		t.Fatalf("message = %q", e.Message)
	}
}

func TestValidateItem(t *testing.T) {
	in, err := ValidateItem(body(t, `{"name":"  Widget  ","data":{"a":[1,2]}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Name != "Widget" {
		t.Fatalf("name = %q, want trimmed", in.Name)
	}
	if string(in.Data) != `{"a":[1,2]}` {
		t.Fatalf("data = %s", in.Data)
	}

	for _, raw := range []string{`{"name":"x"}`, `{"name":"x","data":null}`} {
		in, err := ValidateItem(body(t, raw))
		if err != nil {
			t.Fatalf("%s: %v", raw, err)
		}
		if in.Data != nil {
			t.Fatalf("%s: data should be nil, got %s", raw, in.Data)
		}
	}

	// falsy-but-present values are kept
	in, err = ValidateItem(body(t, `{"name":"x","data":0}`))
	if err != nil || string(in.Data) != "0" {
		t.Fatalf("data = %s, err = %v", in.Data, err)
	}
}

func TestValidateItem_InvalidName(t *testing.T) {
	for _, raw := range []string{`{}`, `{"name":""}`, `{"name":"   "}`, `{"name":42}`, `{"name":null}`} {
		_, err := ValidateItem(body(t, raw))
		e := wantValidation(t, err, "name")
		want := `name is required and must be a non-empty string. Example: {"name":"My Item","data":"optional data"}`
		if e.Message != want {
			t.Fatalf("%s: message = %q", raw, e.Message)
		}
	}
}

func TestParseItemID(t *testing.T) {
	for s, want := range map[string]uint{"0": 0, "1": 1, "999999": 999999} {
		got, err := ParseItemID(s)
		if err != nil || got != want {
			t.Fatalf("ParseItemID(%q) = %d, %v", s, got, err)
		}
	}
	for _, s := range []string{"", "abc", "-1", "1.5", "12abc", "+3", " 1", "99999999999999999999999"} {
		_, err := ParseItemID(s)
		e := wantValidation(t, err, "id")
		if e.Message != "Invalid item ID" {
			t.Fatalf("%q: message = %q", s, e.Message)
		}
	}
}
