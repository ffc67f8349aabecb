// Package validity folds a field's rule list and its native constraint state
// into a single model.Validity.
package validity

import (
	"github.com/goliatone/go-formguard/pkg/model"
	"github.com/goliatone/go-formguard/pkg/rules"
)

// Aggregator computes field validity with a rule evaluator.
type Aggregator struct {
	evaluator *rules.Evaluator
}

// New returns an aggregator backed by evaluator.
func New(evaluator *rules.Evaluator) *Aggregator {
	if evaluator == nil {
		evaluator = rules.NewEvaluator(nil, nil)
	}
	return &Aggregator{evaluator: evaluator}
}

// Compute evaluates every rule and merges the outcome with the native
// constraint flags of the field. Native flags of constraints covered by a
// declared rule are dropped first so the declared rule decides. The result is
// handed to the field's validity cache when it has one.
func (a *Aggregator) Compute(field model.FieldContext, list []model.Rule) model.Validity {
	value := field.Value()

	v := model.NewValidity(residualNative(field, list))
	for _, rule := range list {
		if !a.evaluator.Evaluate(field, value, rule) {
			v.Fail(rule.Name)
		}
	}

	if cache, ok := field.(model.ValidityCache); ok {
		cache.CacheValidity(v)
	}
	return v
}

// Native returns the validity derived from markup constraints alone.
func (a *Aggregator) Native(field model.FieldContext) model.Validity {
	v := model.NewValidity(residualNative(field, nil))
	if cache, ok := field.(model.ValidityCache); ok {
		cache.CacheValidity(v)
	}
	return v
}

// First evaluates rules in order and stops at the first failure, which it
// returns. When every rule passes, a remaining native violation is reported
// as a synthetic rule.
func (a *Aggregator) First(field model.FieldContext, list []model.Rule) (model.Rule, bool) {
	value := field.Value()
	for _, rule := range list {
		if !a.evaluator.Evaluate(field, value, rule) {
			return rule, true
		}
	}
	if id, ok := residualNative(field, list).FirstRule(); ok {
		return model.Rule{Name: id}, true
	}
	return model.Rule{}, false
}

func residualNative(field model.FieldContext, list []model.Rule) model.NativeFlags {
	native, ok := field.(model.NativeConstraints)
	if !ok {
		return model.NativeFlags{}
	}
	flags := native.NativeValidity()
	for _, rule := range list {
		flags.Clear(rule.Name)
	}
	return flags
}
