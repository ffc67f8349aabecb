package testsupport

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formguard/pkg/dom"
	"github.com/goliatone/go-formguard/pkg/model"
)

// LoadForm parses an HTML fixture and returns its document and the form
// matching selector ("" picks the first form).
func LoadForm(t *testing.T, path, selector string) (*dom.Document, *dom.Element) {
	t.Helper()
	return ParseForm(t, MustReadGoldenString(t, path), selector)
}

// ParseForm parses inline markup and returns its document and form.
func ParseForm(t *testing.T, markup, selector string) (*dom.Document, *dom.Element) {
	t.Helper()

	doc, err := dom.ParseString(markup)
	if err != nil {
		t.Fatalf("parse markup: %v", err)
	}
	form, err := doc.Form(selector)
	if err != nil {
		t.Fatalf("select form %q: %v", selector, err)
	}
	return doc, form
}

// DiffResult compares two validation results regardless of error order.
func DiffResult(want, got model.Result) string {
	return cmp.Diff(want, got, cmpopts.SortSlices(func(a, b model.FieldError) bool {
		return a.Field < b.Field
	}), cmpopts.EquateEmpty())
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// CaptureTemplateOutput runs a render function against a buffer and returns
// both the returned string and what was written.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}
