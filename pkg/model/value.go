package model

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindText
	KindNumber
	KindBool
	KindList
	KindFiles
)

func (k ValueKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindFiles:
		return "files"
	default:
		return "null"
	}
}

// Value is the current value of a form field, extracted according to the
// field type. The zero Value is the null value.
type Value struct {
	kind  ValueKind
	text  string
	num   float64
	flag  bool
	items []string
}

// Null returns the absent value.
func Null() Value { return Value{} }

// Text wraps a textual value (text inputs, textareas, radios, single selects).
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Number wraps a parsed numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Bool wraps a single checkbox state.
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// List wraps checkbox group and multi-select values.
func List(items ...string) Value {
	return Value{kind: KindList, items: append([]string{}, items...)}
}

// Files wraps the names of files selected in a file input.
func Files(names ...string) Value {
	return Value{kind: KindFiles, items: append([]string{}, names...)}
}

// Kind reports the variant of v.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether v carries no value at all.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsEmpty reports whether v is null, an empty string, or an empty list. A
// false checkbox is not empty.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindText:
		return v.text == ""
	case KindList, KindFiles:
		return len(v.items) == 0
	default:
		return false
	}
}

// IsList reports whether v holds multiple entries (list or files).
func (v Value) IsList() bool { return v.kind == KindList || v.kind == KindFiles }

// Items returns the entries of a list value. Scalars are returned as a single
// element slice and null as nil.
func (v Value) Items() []string {
	switch v.kind {
	case KindList, KindFiles:
		return append([]string(nil), v.items...)
	case KindNull:
		return nil
	default:
		return []string{v.String()}
	}
}

// Len returns the element count for lists and the rune count for scalars.
func (v Value) Len() int {
	switch v.kind {
	case KindList, KindFiles:
		return len(v.items)
	case KindNull:
		return 0
	default:
		return len([]rune(v.String()))
	}
}

// Bool returns the boolean state and whether v is a boolean.
func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.flag, true
}

// Float coerces v to a number. Text is trimmed and parsed; booleans, lists and
// null do not coerce.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindText:
		return ParseNumber(v.text)
	default:
		return 0, false
	}
}

// String renders v as text. Lists are joined with commas.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.flag)
	case KindList, KindFiles:
		return strings.Join(v.items, ",")
	default:
		return ""
	}
}

// Equal compares two values. Numbers and numeric text compare numerically;
// lists compare element-wise.
func (v Value) Equal(other Value) bool {
	if v.IsList() || other.IsList() {
		return slices.Equal(v.Items(), other.Items())
	}
	if v.kind == KindNumber || other.kind == KindNumber {
		a, okA := v.Float()
		b, okB := other.Float()
		if okA && okB {
			return a == b
		}
	}
	if v.kind == KindBool || other.kind == KindBool {
		return v.kind == other.kind && v.flag == other.flag
	}
	return v.String() == other.String()
}

// Interface returns the Go representation used for serialization.
func (v Value) Interface() any {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return v.num
	case KindBool:
		return v.flag
	case KindList, KindFiles:
		return append([]string{}, v.items...)
	default:
		return nil
	}
}

// ParseNumber converts text into a finite number. Surrounding whitespace is
// ignored; empty text, NaN and infinities are rejected.
func ParseNumber(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ToNumber coerces a rule parameter into a number.
func ToNumber(param any) (float64, bool) {
	switch p := param.(type) {
	case nil:
		return 0, false
	case float64:
		return p, !math.IsNaN(p) && !math.IsInf(p, 0)
	case float32:
		return float64(p), true
	case int:
		return float64(p), true
	case int8:
		return float64(p), true
	case int16:
		return float64(p), true
	case int32:
		return float64(p), true
	case int64:
		return float64(p), true
	case uint:
		return float64(p), true
	case uint8:
		return float64(p), true
	case uint16:
		return float64(p), true
	case uint32:
		return float64(p), true
	case uint64:
		return float64(p), true
	case string:
		return ParseNumber(p)
	case Value:
		return p.Float()
	default:
		return 0, false
	}
}
