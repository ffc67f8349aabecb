// Package messages turns violated rules into human readable error text.
package messages

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formguard/pkg/model"
)

// Fallback is used for rules without a default message.
const Fallback = "This field is invalid"

var defaults = map[model.RuleID]string{
	model.RuleRequired:     "This field is required",
	model.RuleEmail:        "Please enter a valid email address",
	model.RuleURL:          "Please enter a valid URL",
	model.RulePhone:        "Please enter a valid phone number",
	model.RuleMinLength:    "Please enter at least {value} characters",
	model.RuleMaxLength:    "Please enter no more than {value} characters",
	model.RuleMin:          "Please enter a value greater than or equal to {value}",
	model.RuleMax:          "Please enter a value less than or equal to {value}",
	model.RulePattern:      "Please match the requested format",
	model.RuleNumeric:      "Please enter a valid number",
	model.RuleInteger:      "Please enter a whole number",
	model.RuleAlphanumeric: "Please use only letters and numbers",
	model.RuleArrayMin:     "Please select at least {value} options",
	model.RuleArrayMax:     "Please select no more than {value} options",
	model.RuleEqualTo:      "This field must match {value}",
	model.RuleCustom:       "Please enter a valid value",
	model.RuleStep:         "Please enter a valid value",
}

// Default returns the built-in message template of a rule.
func Default(id model.RuleID) string {
	if msg, ok := defaults[id]; ok {
		return msg
	}
	return Fallback
}

// Format substitutes the {value} and {label} placeholders.
func Format(template string, param any, label string) string {
	return strings.NewReplacer(
		"{value}", ParamText(param),
		"{label}", label,
	).Replace(template)
}

// ParamText renders a rule parameter for display.
func ParamText(param any) string {
	switch p := param.(type) {
	case nil:
		return ""
	case string:
		return p
	case float64:
		return strconv.FormatFloat(p, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(p), 'f', -1, 32)
	case fmt.Stringer:
		return p.String()
	}
	return fmt.Sprint(param)
}

// Resolver picks the message template of a violated rule: the rule's own
// message, then a configured override, then the default.
type Resolver struct {
	Overrides map[model.RuleID]string
}

// Template returns the unformatted message for rule.
func (r Resolver) Template(rule model.Rule) string {
	if rule.Message != "" {
		return rule.Message
	}
	if msg, ok := r.Overrides[rule.Name]; ok && msg != "" {
		return msg
	}
	return Default(rule.Name)
}

// Message resolves, formats and strips markup from the message of rule.
func (r Resolver) Message(rule model.Rule, label string) string {
	return Plain(Format(r.Template(rule), rule.Param, label))
}

var (
	plainPolicyOnce sync.Once
	plainPolicy     *bluemonday.Policy
)

// Plain removes markup from a message so it can be written as text content.
func Plain(msg string) string {
	trimmed := strings.TrimSpace(msg)
	if trimmed == "" || !strings.ContainsAny(trimmed, "<&") {
		return trimmed
	}
	plainPolicyOnce.Do(func() {
		plainPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(html.UnescapeString(plainPolicy.Sanitize(trimmed)))
}
