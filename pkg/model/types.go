package model

// RuleID identifies a validation rule. Built-in identifiers are declared below;
// custom rules registered at runtime use their own RuleID values.
type RuleID string

const (
	RuleRequired     RuleID = "required"
	RuleEmail        RuleID = "email"
	RuleURL          RuleID = "url"
	RulePhone        RuleID = "phone"
	RuleMinLength    RuleID = "minLength"
	RuleMaxLength    RuleID = "maxLength"
	RuleMin          RuleID = "min"
	RuleMax          RuleID = "max"
	RulePattern      RuleID = "pattern"
	RuleNumeric      RuleID = "numeric"
	RuleInteger      RuleID = "integer"
	RuleAlphanumeric RuleID = "alphanumeric"
	RuleArrayMin     RuleID = "arrayMin"
	RuleArrayMax     RuleID = "arrayMax"
	RuleEqualTo      RuleID = "equalTo"
	RuleCustom       RuleID = "custom"

	// RuleStep is never declared by callers. It reports a native step
	// mismatch that no declared rule covers.
	RuleStep RuleID = "step"
)

// BuiltinRules lists the identifiers served by the built-in predicate table in
// a stable order.
func BuiltinRules() []RuleID {
	return []RuleID{
		RuleRequired, RuleEmail, RuleURL, RulePhone,
		RuleMinLength, RuleMaxLength, RuleMin, RuleMax,
		RulePattern, RuleNumeric, RuleInteger, RuleAlphanumeric,
		RuleArrayMin, RuleArrayMax, RuleEqualTo, RuleCustom,
	}
}

// Rule is a single constraint attached to a field. Param carries the rule
// argument (a bound, a pattern, a sibling field name). Message overrides the
// default error message. Predicate, when set, is evaluated instead of the
// registry entry for Name.
type Rule struct {
	Name      RuleID    `json:"rule" yaml:"rule" jsonschema:"required"`
	Param     any       `json:"value,omitempty" yaml:"value,omitempty"`
	Message   string    `json:"errorMessage,omitempty" yaml:"errorMessage,omitempty"`
	Predicate Predicate `json:"-" yaml:"-"`
}

// FieldConfig binds an ordered rule list to a named form field.
type FieldConfig struct {
	Name             string `json:"name" yaml:"name" jsonschema:"required"`
	Rules            []Rule `json:"rules" yaml:"rules"`
	SuppressWarnings bool   `json:"suppressWarnings,omitempty" yaml:"suppressWarnings,omitempty"`
}

// RuleNames returns the rule identifiers of the config in declaration order.
func (c FieldConfig) RuleNames() []RuleID {
	out := make([]RuleID, 0, len(c.Rules))
	for _, rule := range c.Rules {
		out = append(out, rule.Name)
	}
	return out
}

// HasRule reports whether a rule with the given identifier is declared.
func (c FieldConfig) HasRule(id RuleID) bool {
	for _, rule := range c.Rules {
		if rule.Name == id {
			return true
		}
	}
	return false
}
