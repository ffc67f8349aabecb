package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/goliatone/go-formguard"
	"github.com/goliatone/go-formguard/pkg/constraints"
	"github.com/goliatone/go-formguard/pkg/dom"
	"github.com/goliatone/go-formguard/pkg/model"
	"github.com/goliatone/go-formguard/pkg/orchestrator"
	"github.com/goliatone/go-formguard/pkg/render"
	"github.com/goliatone/go-formguard/pkg/ruleset"
	"github.com/goliatone/go-formguard/pkg/tui"
)

const (
	exitValid   = 0
	exitInvalid = 1
	exitError   = 2
)

type app struct {
	opts      options
	logger    *slog.Logger
	renderers *render.Registry
	driver    tui.PromptDriver
	stdout    io.Writer
}

func newApp(opts options, stdout, stderr io.Writer) (*app, error) {
	renderers, err := render.NewDefaultRegistry()
	if err != nil {
		return nil, err
	}
	if _, err := renderers.Get(opts.Format); err != nil && !opts.Annotate {
		return nil, fmt.Errorf("%w: unknown -format %q (have %v)", errUsage, opts.Format, renderers.List())
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: opts.logLevel()}))
	return &app{
		opts:      opts,
		logger:    logger,
		renderers: renderers,
		stdout:    stdout,
	}, nil
}

// runOnce validates the form once and writes the report. It returns the
// process exit code.
func (a *app) runOnce(ctx context.Context) (int, error) {
	doc, guard, declared, err := a.bind(ctx)
	if err != nil {
		return exitError, err
	}
	if err := a.fill(guard.Form()); err != nil {
		return exitError, err
	}

	if a.opts.Interactive {
		driver := a.driver
		if driver == nil {
			driver = tui.NewSurveyDriver(a.stdout)
		}
		session, err := tui.NewSession(guard,
			tui.WithPromptDriver(driver),
			tui.WithMaxAttempts(a.opts.MaxAttempts),
			tui.WithLogger(a.logger),
		)
		if err != nil {
			return exitError, err
		}
		if _, err := session.Run(ctx); err != nil {
			return exitError, err
		}
	}

	report := formguard.BuildReport(guard)
	report.Source = a.opts.FormPath

	if a.opts.Annotate {
		for _, fc := range declared.Fields {
			if field, ok := dom.LookupField(guard.Form(), fc.Name); ok {
				constraints.Apply(field, fc.Rules)
			}
		}
		if err := doc.Render(a.stdout); err != nil {
			return exitError, fmt.Errorf("write document: %w", err)
		}
	} else {
		out, err := a.renderers.Render(ctx, a.opts.Format, report, render.RenderOptions{OnlyInvalid: a.opts.OnlyInvalid})
		if err != nil {
			return exitError, err
		}
		if _, err := a.stdout.Write(out); err != nil {
			return exitError, err
		}
	}

	guard.Destroy()
	if !report.Valid {
		return exitInvalid, nil
	}
	return exitValid, nil
}

// bind parses the document and registers the declared rules. Without a rule
// source every field of the form is registered with its markup constraints
// only.
func (a *app) bind(ctx context.Context) (*dom.Document, *orchestrator.Orchestrator, ruleset.Ruleset, error) {
	file, err := os.Open(a.opts.FormPath)
	if err != nil {
		return nil, nil, ruleset.Ruleset{}, fmt.Errorf("open form: %w", err)
	}
	defer file.Close()

	doc, err := dom.Parse(file)
	if err != nil {
		return nil, nil, ruleset.Ruleset{}, err
	}
	form, err := doc.Form(a.opts.Selector)
	if err != nil {
		return nil, nil, ruleset.Ruleset{}, err
	}

	var rs ruleset.Ruleset
	switch {
	case a.opts.RulesPath != "":
		store, err := ruleset.Load(a.opts.RulesPath)
		if err != nil {
			return nil, nil, ruleset.Ruleset{}, err
		}
		found, ok := store.Form(a.opts.Selector)
		if !ok {
			found, ok = store.Form(formguard.FormName(form))
		}
		if !ok {
			return nil, nil, ruleset.Ruleset{}, fmt.Errorf("%w: %q in %s", ruleset.ErrNoRuleset, formguard.FormName(form), a.opts.RulesPath)
		}
		rs = found
	case a.opts.OpenAPIPath != "":
		rs, err = formguard.FromOpenAPI(ctx, a.opts.OpenAPIPath, a.opts.Operation)
		if err != nil {
			return nil, nil, ruleset.Ruleset{}, err
		}
	case a.opts.SchemaPath != "":
		rs, err = formguard.FromJSONSchema(ctx, a.opts.SchemaPath, formguard.FormName(form))
		if err != nil {
			return nil, nil, ruleset.Ruleset{}, err
		}
	default:
		for _, name := range form.FieldNames() {
			rs.Fields = append(rs.Fields, model.FieldConfig{Name: name})
		}
	}

	guard, err := formguard.New(form, a.orchestratorOptions(rs)...)
	if err != nil {
		return nil, nil, ruleset.Ruleset{}, err
	}
	if err := formguard.Apply(guard, rs); err != nil {
		a.logger.Warn("some declared fields are missing from the form", "error", err)
	}
	return doc, guard, rs, nil
}

func (a *app) orchestratorOptions(rs ruleset.Ruleset) []orchestrator.Option {
	return []orchestrator.Option{
		orchestrator.WithLogger(a.logger),
		orchestrator.WithSuppressAllWarnings(a.opts.SuppressWarnings),
		orchestrator.WithErrorClass(a.opts.ErrorClass),
		orchestrator.WithSuccessClass(a.opts.SuccessClass),
		orchestrator.WithErrorContainerAttribute(a.opts.ContainerAttr),
		orchestrator.WithCustomMessages(rs.Messages),
	}
}

// fill assigns the -set and -values inputs to the form controls.
func (a *app) fill(form *dom.Element) error {
	values := a.opts.Values.clone()
	if a.opts.ValuesPath != "" {
		if err := values.loadValues(a.opts.ValuesPath); err != nil {
			return err
		}
	}
	for _, name := range values.order {
		field, ok := dom.LookupField(form, name)
		if !ok {
			a.logger.Warn("value given for a field the form does not have", "field", name)
			continue
		}
		field.Set(values.values[name]...)
	}
	return nil
}
