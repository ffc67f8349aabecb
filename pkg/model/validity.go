package model

import (
	"errors"
	"fmt"
	"strings"
)

// NativeFlags mirrors the constraint validation state exposed by markup
// constraints (the browser ValidityState flags).
type NativeFlags struct {
	ValueMissing    bool `json:"valueMissing"`
	TypeMismatch    bool `json:"typeMismatch"`
	TooShort        bool `json:"tooShort"`
	TooLong         bool `json:"tooLong"`
	PatternMismatch bool `json:"patternMismatch"`
	RangeUnderflow  bool `json:"rangeUnderflow"`
	RangeOverflow   bool `json:"rangeOverflow"`
	StepMismatch    bool `json:"stepMismatch"`
	BadInput        bool `json:"badInput"`
	CustomError     bool `json:"customError"`
}

// Any reports whether at least one flag is set.
func (f NativeFlags) Any() bool {
	return f.ValueMissing || f.TypeMismatch || f.TooShort || f.TooLong ||
		f.PatternMismatch || f.RangeUnderflow || f.RangeOverflow ||
		f.StepMismatch || f.BadInput || f.CustomError
}

// Map returns the flags keyed by their constraint validation names.
func (f NativeFlags) Map() map[string]bool {
	return map[string]bool{
		"valueMissing":    f.ValueMissing,
		"typeMismatch":    f.TypeMismatch,
		"tooShort":        f.TooShort,
		"tooLong":         f.TooLong,
		"patternMismatch": f.PatternMismatch,
		"rangeUnderflow":  f.RangeUnderflow,
		"rangeOverflow":   f.RangeOverflow,
		"stepMismatch":    f.StepMismatch,
		"badInput":        f.BadInput,
		"customError":     f.CustomError,
	}
}

// Set raises the native flag paired with a rule. Rules without a native
// counterpart leave the flags untouched.
func (f *NativeFlags) Set(id RuleID) {
	switch id {
	case RuleRequired:
		f.ValueMissing = true
	case RuleEmail, RuleURL:
		f.TypeMismatch = true
	case RuleMinLength:
		f.TooShort = true
	case RuleMaxLength:
		f.TooLong = true
	case RuleMin:
		f.RangeUnderflow = true
	case RuleMax:
		f.RangeOverflow = true
	case RulePattern:
		f.PatternMismatch = true
	case RulePhone:
		f.CustomError = true
	}
}

// Clear drops the native flag a declared rule takes over from markup.
func (f *NativeFlags) Clear(id RuleID) {
	switch id {
	case RuleRequired:
		f.ValueMissing = false
	case RuleEmail, RuleURL:
		f.TypeMismatch = false
	case RuleMinLength:
		f.TooShort = false
	case RuleMaxLength:
		f.TooLong = false
	case RuleMin:
		f.RangeUnderflow = false
	case RuleMax:
		f.RangeOverflow = false
	case RulePattern:
		f.PatternMismatch = false
	}
}

// FirstRule maps the first raised flag back to the rule reporting it, in
// the order browsers surface validation messages.
func (f NativeFlags) FirstRule() (RuleID, bool) {
	switch {
	case f.ValueMissing:
		return RuleRequired, true
	case f.BadInput:
		return RuleNumeric, true
	case f.TypeMismatch:
		return RuleEmail, true
	case f.TooShort:
		return RuleMinLength, true
	case f.TooLong:
		return RuleMaxLength, true
	case f.RangeUnderflow:
		return RuleMin, true
	case f.RangeOverflow:
		return RuleMax, true
	case f.StepMismatch:
		return RuleStep, true
	case f.PatternMismatch:
		return RulePattern, true
	case f.CustomError:
		return RuleCustom, true
	}
	return "", false
}

// Validity is the evaluated state of one field: the aggregate verdict, the
// native-style flags and the set of violated rules.
type Validity struct {
	Valid bool `json:"valid"`
	NativeFlags
	Mismatches map[RuleID]bool `json:"mismatches,omitempty"`
	order      []RuleID
}

// NewValidity returns a valid state seeded with native flags.
func NewValidity(native NativeFlags) Validity {
	return Validity{
		Valid:       !native.Any(),
		NativeFlags: native,
	}
}

// Fail records a violated rule, raising its mismatch and native flags.
func (v *Validity) Fail(id RuleID) {
	v.Valid = false
	if v.Mismatches == nil {
		v.Mismatches = make(map[RuleID]bool)
	}
	if !v.Mismatches[id] {
		v.order = append(v.order, id)
	}
	v.Mismatches[id] = true
	v.NativeFlags.Set(id)
}

// Mismatch reports whether the rule was violated.
func (v Validity) Mismatch(id RuleID) bool {
	return v.Mismatches[id]
}

// Violated returns the violated rules in evaluation order.
func (v Validity) Violated() []RuleID {
	return append([]RuleID(nil), v.order...)
}

// Flags exposes the validity as an open map: `valid`, every native flag and
// one `<rule>Mismatch` entry per violated rule.
func (v Validity) Flags() map[string]bool {
	out := v.NativeFlags.Map()
	out["valid"] = v.Valid
	for id, failed := range v.Mismatches {
		out[string(id)+"Mismatch"] = failed
	}
	return out
}

// FieldError reports the first violated rule of an invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Rule    RuleID `json:"rule"`
}

// Result is the outcome of a full form validation pass.
type Result struct {
	Valid  bool         `json:"isValid"`
	Errors []FieldError `json:"errors"`
}

// ErrInvalid is matched by errors returned from Result.Err.
var ErrInvalid = errors.New("form validation failed")

// Has reports whether the field produced an error.
func (r Result) Has(field string) bool {
	_, ok := r.Get(field)
	return ok
}

// Get returns the error recorded for a field.
func (r Result) Get(field string) (FieldError, bool) {
	for _, err := range r.Errors {
		if err.Field == field {
			return err, true
		}
	}
	return FieldError{}, false
}

// Fields lists the invalid fields in report order.
func (r Result) Fields() []string {
	out := make([]string, 0, len(r.Errors))
	for _, err := range r.Errors {
		out = append(out, err.Field)
	}
	return out
}

// Err returns nil for a valid result and an error wrapping ErrInvalid
// otherwise.
func (r Result) Err() error {
	if r.Valid && len(r.Errors) == 0 {
		return nil
	}
	parts := make([]string, 0, len(r.Errors))
	for _, err := range r.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(parts, "; "))
}
