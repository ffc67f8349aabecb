// Package rules holds the validator registry, the built-in predicates and the
// single rule evaluator.
//
// Built-in rules treat empty values as valid, except `required`. Unknown rule
// identifiers evaluate to true and log a warning: a misspelled rule must not
// block a submission. A malformed `pattern` fails the field and logs an error.
//
// Registries are independent. Each one serves the shared built-in table plus
// its own overrides:
//
//	reg := rules.NewRegistry()
//	reg.Register("creditCard", rules.Func(func(v model.Value, _ any) bool {
//		return luhn(v.String())
//	}))
//	eval := rules.NewEvaluator(reg, logger)
//	ok := eval.Evaluate(field, field.Value(), model.Rule{Name: "creditCard"})
package rules
