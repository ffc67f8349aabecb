package formguard

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-formguard/pkg/dom"
	"github.com/goliatone/go-formguard/pkg/model"
	"github.com/goliatone/go-formguard/pkg/openapi"
	"github.com/goliatone/go-formguard/pkg/orchestrator"
	"github.com/goliatone/go-formguard/pkg/render"
	"github.com/goliatone/go-formguard/pkg/ruleset"
)

// Orchestrator aliases the form orchestrator for callers importing only the
// root package.
type Orchestrator = orchestrator.Orchestrator

// Option configures an Orchestrator.
type Option = orchestrator.Option

// Rule is a single field constraint.
type Rule = model.Rule

// Result is the outcome of validating a whole form.
type Result = model.Result

// New binds an orchestrator to a form element.
func New(form *dom.Element, options ...Option) (*Orchestrator, error) {
	return orchestrator.New(form, options...)
}

// Apply registers every field of a ruleset. Fields missing from the form
// are skipped and reported together in the returned error.
func Apply(o *Orchestrator, rs ruleset.Ruleset) error {
	if o == nil {
		return errors.New("formguard: orchestrator is nil")
	}
	var errs []error
	for _, field := range rs.Fields {
		err := o.AddField(field.Name, field.Rules, orchestrator.WithFieldSuppressWarnings(field.SuppressWarnings))
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Bind selects a form of doc, builds its orchestrator with the messages of
// the matching ruleset, and registers the ruleset's fields. The ruleset is
// looked up by selector, then by the form's id and name.
func Bind(doc *dom.Document, selector string, store *ruleset.Store, options ...Option) (*Orchestrator, error) {
	if doc == nil {
		return nil, errors.New("formguard: document is nil")
	}
	form, err := doc.Form(selector)
	if err != nil {
		return nil, err
	}

	rs, ok := lookupRuleset(store, selector, form)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ruleset.ErrNoRuleset, FormName(form))
	}

	opts := append([]Option{orchestrator.WithCustomMessages(rs.Messages)}, options...)
	o, err := orchestrator.New(form, opts...)
	if err != nil {
		return nil, err
	}
	if err := Apply(o, rs); err != nil {
		return o, err
	}
	return o, nil
}

func lookupRuleset(store *ruleset.Store, selector string, form *dom.Element) (ruleset.Ruleset, bool) {
	keys := []string{selector}
	for _, key := range []string{form.ID(), form.Name()} {
		if key != "" {
			keys = append(keys, key)
		}
	}
	for _, key := range keys {
		if rs, ok := store.Form(key); ok {
			return rs, true
		}
	}
	return ruleset.Ruleset{}, false
}

// FromOpenAPI derives a ruleset from the request body of an OpenAPI
// operation stored at path.
func FromOpenAPI(ctx context.Context, path, operationID string) (ruleset.Ruleset, error) {
	doc, err := openapi.NewLoader().Load(ctx, openapi.SourceFromFile(path))
	if err != nil {
		return ruleset.Ruleset{}, err
	}
	return openapi.Declarations(ctx, doc, operationID)
}

// FromJSONSchema derives a ruleset from a JSON Schema file. The ruleset is
// named form, or the schema title when form is empty.
func FromJSONSchema(ctx context.Context, path, form string) (ruleset.Ruleset, error) {
	doc, err := openapi.NewLoader().Load(ctx, openapi.SourceFromFile(path))
	if err != nil {
		return ruleset.Ruleset{}, err
	}
	return openapi.SchemaDeclarations(ctx, doc, form)
}

// BuildReport validates the form of o and collects one report line per
// registered field, in registration order.
func BuildReport(o *Orchestrator) render.Report {
	result := o.Validate()
	report := render.NewReport(FormName(o.Form()), result)
	for _, name := range o.Fields() {
		field, ok := dom.LookupField(o.Form(), name)
		if !ok {
			continue
		}
		validity, err := o.FieldValidity(name)
		if err != nil {
			continue
		}
		report.AddField(name, field.Value(), validity)
	}
	return report
}

// FormName returns the id of a form, or its name.
func FormName(form *dom.Element) string {
	if id := form.ID(); id != "" {
		return id
	}
	return form.Name()
}
