// Package model defines the shared types of the validation engine: rule
// identifiers and declarations, field configs, the tagged field Value, the
// per-field Validity and the form level Result. Validity keeps the native
// constraint flags (valueMissing, rangeUnderflow, ...) next to a set of
// violated rule identifiers so callers can query either view. FieldContext is
// the seam between the evaluation core and the document that owns the fields.
package model
