// Package constraints keeps declared rules and native markup constraints
// in step: it derives rules from attributes, reports disagreements and can
// write declared rules back as attributes.
package constraints

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formguard/pkg/dom"
	"github.com/goliatone/go-formguard/pkg/model"
)

// Conflict describes a declared rule that disagrees with the attribute
// expressing the same constraint.
type Conflict struct {
	Field     string
	Rule      model.RuleID
	Attribute string
	Declared  string
	Native    string
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s: rule %s=%s conflicts with attribute %s=%q", c.Field, c.Rule, c.Declared, c.Attribute, c.Native)
}

// attributes pairs rules with the attribute carrying the same constraint.
var attributes = map[model.RuleID]string{
	model.RuleRequired:  "required",
	model.RuleMinLength: "minlength",
	model.RuleMaxLength: "maxlength",
	model.RuleMin:       "min",
	model.RuleMax:       "max",
	model.RulePattern:   "pattern",
}

// Attribute returns the attribute expressing a rule natively.
func Attribute(id model.RuleID) (string, bool) {
	attr, ok := attributes[id]
	return attr, ok
}

// FromField derives rules from the markup constraints of a field, in a
// fixed order: required, type, minLength, maxLength, min, max, pattern.
// Controls barred from constraint validation yield no rules.
func FromField(field *dom.Field) []model.Rule {
	el := field.Primary()
	if el.Barred() {
		return nil
	}
	var out []model.Rule

	required := false
	for _, c := range field.Controls() {
		required = required || c.HasAttr("required")
	}
	if required {
		out = append(out, model.Rule{Name: model.RuleRequired})
	}

	switch el.Type() {
	case "email":
		out = append(out, model.Rule{Name: model.RuleEmail})
	case "url":
		out = append(out, model.Rule{Name: model.RuleURL})
	}

	for _, id := range []model.RuleID{model.RuleMinLength, model.RuleMaxLength} {
		if n, ok := intAttr(el, attributes[id]); ok {
			out = append(out, model.Rule{Name: id, Param: n})
		}
	}
	if numericType(el.Type()) {
		for _, id := range []model.RuleID{model.RuleMin, model.RuleMax} {
			if raw, ok := el.Attr(attributes[id]); ok {
				if n, ok := model.ParseNumber(raw); ok {
					out = append(out, model.Rule{Name: id, Param: n})
				}
			}
		}
	}
	if raw, ok := el.Attr("pattern"); ok && raw != "" {
		out = append(out, model.Rule{Name: model.RulePattern, Param: Anchor(raw)})
	}
	return out
}

// Anchor wraps a markup pattern so it matches the whole value, as the
// pattern attribute does.
func Anchor(pattern string) string {
	return "^(?:" + pattern + ")$"
}

// Conflicts compares declared rules with the field's attributes. Rules
// that only exist on one side are not conflicts.
func Conflicts(field *dom.Field, declared []model.Rule) []Conflict {
	el := field.Primary()
	var out []Conflict
	for _, rule := range declared {
		attr, ok := attributes[rule.Name]
		if !ok || rule.Name == model.RuleRequired {
			continue
		}
		native, present := el.Attr(attr)
		if !present {
			continue
		}
		declaredText := paramText(rule.Param)
		if sameParam(rule.Name, rule.Param, native) {
			continue
		}
		out = append(out, Conflict{
			Field:     field.Name(),
			Rule:      rule.Name,
			Attribute: attr,
			Declared:  declaredText,
			Native:    native,
		})
	}

	kind := el.Type()
	for _, rule := range declared {
		switch {
		case rule.Name == model.RuleEmail && kind == "url",
			rule.Name == model.RuleURL && kind == "email":
			out = append(out, Conflict{
				Field:     field.Name(),
				Rule:      rule.Name,
				Attribute: "type",
				Declared:  string(rule.Name),
				Native:    kind,
			})
		}
	}
	return out
}

// Merge appends derived rules whose kind is not declared already. Declared
// rules keep their position and parameters.
func Merge(declared, derived []model.Rule) []model.Rule {
	out := append([]model.Rule(nil), declared...)
	have := make(map[model.RuleID]bool, len(declared))
	for _, rule := range declared {
		have[rule.Name] = true
	}
	for _, rule := range derived {
		if have[rule.Name] {
			continue
		}
		have[rule.Name] = true
		out = append(out, rule)
	}
	return out
}

// Apply writes declared rules as native attributes on every control of the
// field. Rules without a native counterpart, inline predicates and pattern
// values that are not strings are skipped.
func Apply(field *dom.Field, declared []model.Rule) {
	for _, el := range field.Controls() {
		for _, rule := range declared {
			attr, ok := attributes[rule.Name]
			if !ok || rule.Predicate != nil {
				continue
			}
			switch rule.Name {
			case model.RuleRequired:
				el.ToggleAttr(attr, true)
			case model.RulePattern:
				if s, ok := rule.Param.(string); ok {
					el.SetAttr(attr, s)
				}
			case model.RuleMin, model.RuleMax:
				if !numericType(el.Type()) {
					continue
				}
				el.SetAttr(attr, paramText(rule.Param))
			default:
				el.SetAttr(attr, paramText(rule.Param))
			}
		}
	}
}

func sameParam(id model.RuleID, param any, native string) bool {
	if id == model.RulePattern {
		s, ok := param.(string)
		if !ok {
			return true
		}
		return s == native || s == Anchor(native)
	}
	want, ok := model.ToNumber(param)
	if !ok {
		return true
	}
	got, ok := model.ParseNumber(native)
	return ok && got == want
}

func paramText(param any) string {
	switch p := param.(type) {
	case nil:
		return ""
	case string:
		return p
	case float64:
		return strconv.FormatFloat(p, 'f', -1, 64)
	case fmt.Stringer:
		return p.String()
	}
	return fmt.Sprint(param)
}

func intAttr(el *dom.Element, key string) (int, bool) {
	raw, ok := el.Attr(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func numericType(kind string) bool {
	return kind == "number" || kind == "range"
}
