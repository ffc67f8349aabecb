package model

import "log/slog"

// FieldContext is the view of a form field the evaluation core needs. It
// keeps predicates independent from any concrete document implementation.
type FieldContext interface {
	// Name returns the field name.
	Name() string
	// Type returns the lowercased control type (text, email, checkbox,
	// select-multiple, textarea, ...).
	Type() string
	// Value extracts the current value.
	Value() Value
	// Sibling resolves another field of the same form by name.
	Sibling(name string) (FieldContext, bool)
}

// NativeConstraints is implemented by fields that can report the validation
// state of their markup constraints.
type NativeConstraints interface {
	NativeValidity() NativeFlags
}

// ValidityCache is implemented by fields that keep the last computed
// validity for outside inspection. The cache is write-only for the engine.
type ValidityCache interface {
	CacheValidity(v Validity)
}

// Input is handed to predicates.
type Input struct {
	Value  Value
	Param  any
	Field  FieldContext
	Logger *slog.Logger
}

// Predicate decides whether a value satisfies a rule.
type Predicate func(in Input) bool
