package rules

import (
	"bytes"
	"log/slog"
	"regexp"
	"strings"
	"testing"

	"github.com/goliatone/go-formguard/pkg/model"
)

type stubField struct {
	name     string
	kind     string
	value    model.Value
	siblings map[string]*stubField
}

func (f *stubField) Name() string       { return f.name }
func (f *stubField) Type() string       { return f.kind }
func (f *stubField) Value() model.Value { return f.value }
func (f *stubField) Sibling(name string) (model.FieldContext, bool) {
	s, ok := f.siblings[name]
	if !ok {
		return nil, false
	}
	return s, true
}

func check(t *testing.T, id model.RuleID, value model.Value, param any) bool {
	t.Helper()
	predicate, ok := builtins[id]
	if !ok {
		t.Fatalf("builtin %q missing", id)
	}
	return predicate(model.Input{Value: value, Param: param})
}

func TestBuiltins_EmptyValuesPass(t *testing.T) {
	empties := []model.Value{model.Null(), model.Text(""), model.List(), model.Files()}
	cases := []struct {
		id    model.RuleID
		param any
	}{
		{model.RuleEmail, nil},
		{model.RuleURL, nil},
		{model.RulePhone, nil},
		{model.RuleMinLength, 3},
		{model.RuleMaxLength, 3},
		{model.RuleMin, 10},
		{model.RuleMax, 10},
		{model.RulePattern, `^\d+$`},
		{model.RuleNumeric, nil},
		{model.RuleInteger, nil},
		{model.RuleAlphanumeric, nil},
		{model.RuleArrayMin, 2},
		{model.RuleArrayMax, 2},
	}

	for _, tc := range cases {
		for _, empty := range empties {
			if !check(t, tc.id, empty, tc.param) {
				t.Fatalf("%s: expected empty %s value to pass", tc.id, empty.Kind())
			}
		}
	}
}

func TestRequired(t *testing.T) {
	cases := []struct {
		name  string
		value model.Value
		want  bool
	}{
		{name: "checked checkbox", value: model.Bool(true), want: true},
		{name: "unchecked checkbox", value: model.Bool(false), want: false},
		{name: "non empty list", value: model.List("a"), want: true},
		{name: "empty list", value: model.List(), want: false},
		{name: "text", value: model.Text("x"), want: true},
		{name: "empty text", value: model.Text(""), want: false},
		{name: "null", value: model.Null(), want: false},
		{name: "zero number", value: model.Number(0), want: true},
		{name: "files", value: model.Files("cv.pdf"), want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := check(t, model.RuleRequired, tc.value, nil); got != tc.want {
				t.Fatalf("required(%v) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}
}

func TestEmail(t *testing.T) {
	if !IsEmail("test@example.com") {
		t.Fatalf("expected test@example.com to be valid")
	}
	if IsEmail("invalid-email") {
		t.Fatalf("expected invalid-email to be invalid")
	}
	if !check(t, model.RuleEmail, model.Text(""), nil) {
		t.Fatalf("expected empty email to pass")
	}
	if check(t, model.RuleEmail, model.Text("a b@c.d"), nil) {
		t.Fatalf("expected whitespace in email to fail")
	}
}

func TestMinLength(t *testing.T) {
	if check(t, model.RuleMinLength, model.Text("hi"), 3) {
		t.Fatalf("expected hi to fail minLength 3")
	}
	if !check(t, model.RuleMinLength, model.Text("hello"), 3) {
		t.Fatalf("expected hello to pass minLength 3")
	}
	if !check(t, model.RuleMinLength, model.Text("hello"), "5") {
		t.Fatalf("expected string parameter to be coerced")
	}
	if check(t, model.RuleMinLength, model.List("a"), 2) {
		t.Fatalf("expected list length to be bounded")
	}
	if !check(t, model.RuleMinLength, model.Text("héllo"), 5) {
		t.Fatalf("expected length to count runes")
	}
}

func TestMaxLength(t *testing.T) {
	if check(t, model.RuleMaxLength, model.Text("toolong"), 3) {
		t.Fatalf("expected toolong to fail maxLength 3")
	}
	if !check(t, model.RuleMaxLength, model.List("a", "b"), 2) {
		t.Fatalf("expected two items to pass maxLength 2")
	}
}

func TestPhone(t *testing.T) {
	cases := map[string]bool{
		"+12345678901":      true,
		"123":               false,
		"abc":               false,
		"(555) 123-4567":    true,
		"+1234567890123456": false,
		"555-123-45678":     true,
		"+1 (555) 12x-4567": false,
	}
	for input, want := range cases {
		if got := IsPhone(input); got != want {
			t.Fatalf("IsPhone(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestURL(t *testing.T) {
	cases := map[string]bool{
		"https://example.com/path": true,
		"http://":                  false,
		"example.com":              false,
		"mailto:me@example.com":    true,
		"/relative/path":           false,
	}
	for input, want := range cases {
		if got := IsURL(input); got != want {
			t.Fatalf("IsURL(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestMinMax(t *testing.T) {
	if check(t, model.RuleMin, model.Text("15"), 18) {
		t.Fatalf("expected 15 to fail min 18")
	}
	if !check(t, model.RuleMin, model.Text("18"), "18") {
		t.Fatalf("expected 18 to pass min 18")
	}
	if check(t, model.RuleMin, model.Text("abc"), 1) {
		t.Fatalf("expected non numeric value to fail min")
	}
	if check(t, model.RuleMax, model.Number(11), 10) {
		t.Fatalf("expected 11 to fail max 10")
	}
	if !check(t, model.RuleMax, model.Number(10), 10.0) {
		t.Fatalf("expected 10 to pass max 10")
	}
}

func TestNumericAndInteger(t *testing.T) {
	if !check(t, model.RuleNumeric, model.Text(" 12.5 "), nil) {
		t.Fatalf("expected 12.5 to be numeric")
	}
	if check(t, model.RuleNumeric, model.Text("Inf"), nil) {
		t.Fatalf("expected infinity to be rejected")
	}
	if check(t, model.RuleNumeric, model.Text("12a"), nil) {
		t.Fatalf("expected 12a to be rejected")
	}
	if !check(t, model.RuleInteger, model.Text("42"), nil) {
		t.Fatalf("expected 42 to be an integer")
	}
	if check(t, model.RuleInteger, model.Text("4.2"), nil) {
		t.Fatalf("expected 4.2 to be rejected")
	}
}

func TestAlphanumeric(t *testing.T) {
	if !check(t, model.RuleAlphanumeric, model.Text("abc123"), nil) {
		t.Fatalf("expected abc123 to pass")
	}
	if check(t, model.RuleAlphanumeric, model.Text("abc-123"), nil) {
		t.Fatalf("expected abc-123 to fail")
	}
}

func TestArrayBounds(t *testing.T) {
	if check(t, model.RuleArrayMin, model.List("a"), 2) {
		t.Fatalf("expected one item to fail arrayMin 2")
	}
	if !check(t, model.RuleArrayMin, model.Text("solo"), 1) {
		t.Fatalf("expected scalar to count as one item")
	}
	if check(t, model.RuleArrayMax, model.List("a", "b", "c"), 2) {
		t.Fatalf("expected three items to fail arrayMax 2")
	}
}

func TestPattern(t *testing.T) {
	if !check(t, model.RulePattern, model.Text("abc"), "^[a-z]+$") {
		t.Fatalf("expected abc to match")
	}
	if check(t, model.RulePattern, model.Text("ABC"), regexp.MustCompile("^[a-z]+$")) {
		t.Fatalf("expected ABC not to match")
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ok := builtins[model.RulePattern](model.Input{
		Value:  model.Text("abc"),
		Param:  "([a-z",
		Logger: logger,
		Field:  &stubField{name: "code"},
	})
	if ok {
		t.Fatalf("expected malformed pattern to fail closed")
	}
	if !strings.Contains(buf.String(), "invalid pattern") {
		t.Fatalf("expected malformed pattern to be logged, got %q", buf.String())
	}
}

func TestEqualTo(t *testing.T) {
	password := &stubField{name: "password", value: model.Text("s3cret")}
	confirm := &stubField{
		name:     "confirm",
		value:    model.Text("s3cret"),
		siblings: map[string]*stubField{"password": password},
	}

	in := model.Input{Value: confirm.value, Param: "password", Field: confirm}
	if !equalTo(in) {
		t.Fatalf("expected equal values to pass")
	}

	in.Value = model.Text("other")
	if equalTo(in) {
		t.Fatalf("expected different values to fail")
	}

	var buf bytes.Buffer
	in.Param = "missing"
	in.Logger = slog.New(slog.NewTextHandler(&buf, nil))
	if !equalTo(in) {
		t.Fatalf("expected missing target to pass")
	}
	if !strings.Contains(buf.String(), "equalTo target field not found") {
		t.Fatalf("expected missing target warning, got %q", buf.String())
	}

	in.Param = "confirm"
	if !equalTo(in) {
		t.Fatalf("expected self comparison to pass")
	}
}
