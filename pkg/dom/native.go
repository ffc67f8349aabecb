package dom

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-formguard/pkg/model"
	"github.com/goliatone/go-formguard/pkg/rules"
)

// NativeValidity derives the constraint validation flags from the markup of
// the field. Disabled, readonly and hidden controls are barred from
// constraint validation and report no flags.
func (f *Field) NativeValidity() model.NativeFlags {
	var flags model.NativeFlags
	primary := f.Primary()
	if barred(primary) {
		return flags
	}
	if primary.CustomValidity() != "" {
		flags.CustomError = true
	}

	kind := primary.Type()
	switch kind {
	case "checkbox", "radio":
		required := false
		checked := false
		for _, c := range f.controls {
			required = required || c.HasAttr("required")
			checked = checked || c.Checked()
		}
		flags.ValueMissing = required && !checked
		return flags
	case "file":
		flags.ValueMissing = primary.HasAttr("required") && len(primary.Files()) == 0
		return flags
	case "select-one", "select-multiple":
		flags.ValueMissing = primary.HasAttr("required") && selectMissing(primary)
		return flags
	}

	value := primary.Value()
	if primary.HasAttr("required") && value == "" {
		flags.ValueMissing = true
	}
	if value == "" {
		return flags
	}

	switch kind {
	case "email":
		for _, addr := range emailList(primary, value) {
			if !rules.IsEmail(addr) {
				flags.TypeMismatch = true
			}
		}
	case "url":
		flags.TypeMismatch = !rules.IsURL(value)
	}

	if lengthChecked(kind) {
		length := utf8.RuneCountInString(value)
		if n, ok := intAttr(primary, "minlength"); ok && length < n {
			flags.TooShort = true
		}
		if n, ok := intAttr(primary, "maxlength"); ok && length > n {
			flags.TooLong = true
		}
		if raw, ok := primary.Attr("pattern"); ok && raw != "" {
			if re, err := regexp.Compile(`^(?:` + raw + `)$`); err == nil && !re.MatchString(value) {
				flags.PatternMismatch = true
			}
		}
	}

	switch kind {
	case "number", "range":
		n, ok := model.ParseNumber(value)
		if !ok {
			flags.BadInput = true
			return flags
		}
		if lo, ok := floatAttr(primary, "min"); ok && n < lo {
			flags.RangeUnderflow = true
		}
		if hi, ok := floatAttr(primary, "max"); ok && n > hi {
			flags.RangeOverflow = true
		}
		flags.StepMismatch = stepMismatch(primary, n)
	case "date", "month", "week", "time", "datetime-local":
		// ISO formats order lexically within one type.
		if lo, ok := primary.Attr("min"); ok && lo != "" && value < lo {
			flags.RangeUnderflow = true
		}
		if hi, ok := primary.Attr("max"); ok && hi != "" && value > hi {
			flags.RangeOverflow = true
		}
	}
	return flags
}

// Barred reports whether the control is excluded from constraint
// validation: disabled (directly or through a fieldset), hidden, or read-only
// for controls that honour readonly.
func (e *Element) Barred() bool { return barred(e) }

func barred(el *Element) bool {
	if el.Disabled() || el.Type() == "hidden" {
		return true
	}
	if el.HasAttr("readonly") {
		switch el.Type() {
		case "checkbox", "radio", "file", "select-one", "select-multiple":
			return false
		}
		return true
	}
	return false
}

func selectMissing(sel *Element) bool {
	values := sel.SelectedValues()
	if len(values) == 0 {
		return true
	}
	return sel.Type() == "select-one" && values[0] == ""
}

func emailList(el *Element, value string) []string {
	if !el.HasAttr("multiple") {
		return []string{value}
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		out = append(out, strings.TrimSpace(part))
	}
	return out
}

func lengthChecked(kind string) bool {
	switch kind {
	case "text", "search", "url", "tel", "email", "password", "textarea":
		return true
	}
	return false
}

func intAttr(el *Element, key string) (int, bool) {
	f, ok := floatAttr(el, key)
	if !ok || f < 0 {
		return 0, false
	}
	return int(f), true
}

func floatAttr(el *Element, key string) (float64, bool) {
	raw, ok := el.Attr(key)
	if !ok {
		return 0, false
	}
	return model.ParseNumber(raw)
}

func stepMismatch(el *Element, n float64) bool {
	raw := strings.ToLower(strings.TrimSpace(el.AttrOr("step", "1")))
	if raw == "any" {
		return false
	}
	step, ok := model.ParseNumber(raw)
	if !ok || step <= 0 {
		step = 1
	}
	base, ok := floatAttr(el, "min")
	if !ok {
		base = 0
	}
	q := (n - base) / step
	return math.Abs(q-math.Round(q)) > 1e-9
}
