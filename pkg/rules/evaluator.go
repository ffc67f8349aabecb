package rules

import (
	"errors"
	"log/slog"

	"github.com/goliatone/go-formguard/pkg/model"
)

var errUnsupportedPattern = errors.New("rules: pattern must be a string or *regexp.Regexp")

// Evaluator applies single rules to field values. Unknown rules pass and are
// reported through the logger so a typo never blocks a form.
type Evaluator struct {
	Registry *Registry
	Logger   *slog.Logger
}

// NewEvaluator returns an evaluator bound to registry. A nil registry uses the
// built-in table only; a nil logger uses slog.Default.
func NewEvaluator(registry *Registry, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{Registry: registry, Logger: logger}
}

// Evaluate reports whether value satisfies rule. It never panics: a failing
// predicate is recovered, logged and counted as a violation.
func (e *Evaluator) Evaluate(field model.FieldContext, value model.Value, rule model.Rule) (ok bool) {
	logger := e.logger()
	var registry *Registry
	if e != nil {
		registry = e.Registry
	}

	predicate := rule.Predicate
	if predicate == nil {
		var found bool
		predicate, found = registry.Lookup(rule.Name)
		if !found {
			logger.Warn("unknown validation rule; treating as passed", "rule", rule.Name, "field", fieldName(field))
			return true
		}
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("validation rule panicked", "rule", rule.Name, "field", fieldName(field), "panic", r)
			ok = false
		}
	}()

	return predicate(model.Input{
		Value:  value,
		Param:  rule.Param,
		Field:  field,
		Logger: logger,
	})
}

func (e *Evaluator) logger() *slog.Logger {
	if e == nil || e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}
