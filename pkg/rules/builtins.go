package rules

import (
	"math"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/goliatone/go-formguard/pkg/model"
)

var (
	emailRegex        = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	alphanumericRegex = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	phoneRegex        = regexp.MustCompile(`^\+?[0-9]+$`)
	phoneStripper     = strings.NewReplacer(" ", "", "(", "", ")", "", "-", "")

	patternCache sync.Map // string -> *regexp.Regexp
)

const (
	phoneMinDigits = 10
	phoneMaxDigits = 15
)

// IsEmail reports whether s looks like an email address.
func IsEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// IsURL reports whether s parses as an absolute URL. Hierarchical schemes
// must carry a host.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "ftp", "ws", "wss":
		return u.Host != ""
	}
	return u.Opaque != "" || u.Host != "" || u.Path != ""
}

// IsPhone reports whether s is a phone number: an optional leading plus and
// 10 to 15 digits once spaces, parentheses and dashes are removed.
func IsPhone(s string) bool {
	cleaned := phoneStripper.Replace(s)
	if !phoneRegex.MatchString(cleaned) {
		return false
	}
	digits := len(strings.TrimPrefix(cleaned, "+"))
	return digits >= phoneMinDigits && digits <= phoneMaxDigits
}

// IsAlphanumeric reports whether s only holds ASCII letters and digits.
func IsAlphanumeric(s string) bool {
	return alphanumericRegex.MatchString(s)
}

// Func adapts a two argument predicate that ignores the field context.
func Func(fn func(value model.Value, param any) bool) model.Predicate {
	if fn == nil {
		return nil
	}
	return func(in model.Input) bool {
		return fn(in.Value, in.Param)
	}
}

func required(in model.Input) bool {
	v := in.Value
	if b, ok := v.Bool(); ok {
		return b
	}
	return !v.IsEmpty()
}

func email(in model.Input) bool {
	if in.Value.IsEmpty() {
		return true
	}
	return IsEmail(in.Value.String())
}

func absoluteURL(in model.Input) bool {
	if in.Value.IsEmpty() {
		return true
	}
	return IsURL(in.Value.String())
}

func phone(in model.Input) bool {
	if in.Value.IsEmpty() {
		return true
	}
	return IsPhone(in.Value.String())
}

func minLength(in model.Input) bool {
	if in.Value.IsEmpty() {
		return true
	}
	bound, ok := model.ToNumber(in.Param)
	if !ok {
		return true
	}
	return float64(in.Value.Len()) >= bound
}

func maxLength(in model.Input) bool {
	if in.Value.IsEmpty() {
		return true
	}
	bound, ok := model.ToNumber(in.Param)
	if !ok {
		return true
	}
	return float64(in.Value.Len()) <= bound
}

func minimum(in model.Input) bool {
	return compareNumber(in, func(value, bound float64) bool { return value >= bound })
}

func maximum(in model.Input) bool {
	return compareNumber(in, func(value, bound float64) bool { return value <= bound })
}

func compareNumber(in model.Input, cmp func(value, bound float64) bool) bool {
	if in.Value.IsEmpty() {
		return true
	}
	value, ok := in.Value.Float()
	if !ok {
		return false
	}
	bound, ok := model.ToNumber(in.Param)
	if !ok {
		return true
	}
	return cmp(value, bound)
}

func pattern(in model.Input) bool {
	if in.Value.IsEmpty() {
		return true
	}
	re, err := CompilePattern(in.Param)
	if err != nil {
		if in.Logger != nil {
			in.Logger.Error("invalid pattern", "field", fieldName(in.Field), "pattern", in.Param, "error", err)
		}
		return false
	}
	if re == nil {
		return true
	}
	return re.MatchString(in.Value.String())
}

// CompilePattern compiles a pattern rule parameter. Compiled expressions are
// cached by source. An empty or nil parameter yields a nil expression.
func CompilePattern(param any) (*regexp.Regexp, error) {
	switch p := param.(type) {
	case *regexp.Regexp:
		return p, nil
	case string:
		if p == "" {
			return nil, nil
		}
		if cached, ok := patternCache.Load(p); ok {
			return cached.(*regexp.Regexp), nil
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		patternCache.Store(p, re)
		return re, nil
	case nil:
		return nil, nil
	default:
		return nil, errUnsupportedPattern
	}
}

func numeric(in model.Input) bool {
	if in.Value.IsEmpty() {
		return true
	}
	_, ok := in.Value.Float()
	return ok
}

func integer(in model.Input) bool {
	if in.Value.IsEmpty() {
		return true
	}
	f, ok := in.Value.Float()
	return ok && f == math.Trunc(f)
}

func alphanumeric(in model.Input) bool {
	if in.Value.IsEmpty() {
		return true
	}
	return IsAlphanumeric(in.Value.String())
}

func arrayMin(in model.Input) bool {
	return countBound(in, func(count, bound float64) bool { return count >= bound })
}

func arrayMax(in model.Input) bool {
	return countBound(in, func(count, bound float64) bool { return count <= bound })
}

func countBound(in model.Input, cmp func(count, bound float64) bool) bool {
	if in.Value.IsEmpty() {
		return true
	}
	bound, ok := model.ToNumber(in.Param)
	if !ok {
		return true
	}
	return cmp(float64(len(in.Value.Items())), bound)
}

// equalTo compares against a sibling field named by the parameter. A missing
// sibling is reported and treated as a pass. Comparing a field with itself
// always passes.
func equalTo(in model.Input) bool {
	target, _ := in.Param.(string)
	target = strings.TrimSpace(target)
	if target == "" || in.Field == nil {
		return true
	}
	if target == in.Field.Name() {
		return true
	}
	sibling, ok := in.Field.Sibling(target)
	if !ok {
		if in.Logger != nil {
			in.Logger.Warn("equalTo target field not found", "field", in.Field.Name(), "target", target)
		}
		return true
	}
	return in.Value.Equal(sibling.Value())
}

// custom passes on its own: the rule only fails through an inline predicate,
// which the evaluator runs in its place.
func custom(model.Input) bool {
	return true
}

func fieldName(field model.FieldContext) string {
	if field == nil {
		return ""
	}
	return field.Name()
}
