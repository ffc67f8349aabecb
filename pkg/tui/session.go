package tui

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/goliatone/go-formguard/pkg/dom"
	"github.com/goliatone/go-formguard/pkg/model"
	"github.com/goliatone/go-formguard/pkg/orchestrator"
)

// DefaultMaxAttempts bounds how often one field is prompted.
const DefaultMaxAttempts = 3

// Option configures a Session.
type Option func(*Session)

// WithPromptDriver overrides the survey driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithMaxAttempts sets how many times an invalid field is prompted before
// the session gives up. Values below one are ignored.
func WithMaxAttempts(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Session fills the registered fields of an orchestrator from the terminal,
// prompting each field again until its rules pass.
type Session struct {
	orch        *orchestrator.Orchestrator
	driver      PromptDriver
	maxAttempts int
	logger      *slog.Logger
}

// NewSession binds a session to an orchestrator.
func NewSession(orch *orchestrator.Orchestrator, options ...Option) (*Session, error) {
	if orch == nil {
		return nil, fmt.Errorf("tui: orchestrator is required")
	}
	s := &Session{
		orch:        orch,
		maxAttempts: DefaultMaxAttempts,
		logger:      slog.Default(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver(nil)
	}
	return s, nil
}

// Run prompts every registered field in registration order and returns the
// final validation result.
func (s *Session) Run(ctx context.Context) (model.Result, error) {
	for _, name := range s.orch.Fields() {
		if err := s.PromptField(ctx, name); err != nil {
			return model.Result{}, err
		}
	}
	return s.orch.Validate(), nil
}

// PromptField asks for one field until it validates. Disabled fields are
// skipped.
func (s *Session) PromptField(ctx context.Context, name string) error {
	if s.driver == nil {
		return ErrNoDriver
	}
	field, ok := dom.LookupField(s.orch.Form(), name)
	if !ok {
		return fmt.Errorf("%w: %q", orchestrator.ErrFieldNotFound, name)
	}
	if field.Primary().Disabled() {
		s.logger.Debug("skipping disabled field", "field", name)
		return nil
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		values, err := s.ask(ctx, field)
		if err != nil {
			return err
		}
		field.Set(values...)
		field.Primary().Dispatch(dom.EventChange)

		if s.orch.ValidateField(name, true) {
			return nil
		}
		fe, _ := s.orch.FieldError(name)
		if err := s.driver.Info(ctx, "  "+fe.Message); err != nil {
			return err
		}
		s.logger.Debug("field rejected", "field", name, "rule", fe.Rule, "attempt", attempt)
	}
	return fmt.Errorf("%w: %q", ErrTooManyAttempts, name)
}

type choice struct {
	label string
	value string
}

func (s *Session) ask(ctx context.Context, field *dom.Field) ([]string, error) {
	message := field.Name()
	if label, ok := field.LabelText(); ok {
		message = label
	}
	primary := field.Primary()
	current := field.Value()

	switch kind := field.Type(); {
	case kind == "checkbox" && !field.Grouped():
		on, err := s.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: primary.Checked()})
		if err != nil || !on {
			return nil, err
		}
		return []string{primary.Value()}, nil

	case kind == "radio" || kind == "select-one":
		opts := choices(field)
		idx, err := s.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      labels(opts),
			DefaultIndex: slices.IndexFunc(opts, func(c choice) bool { return c.value == current.String() }),
		})
		if err != nil || idx < 0 || idx >= len(opts) {
			return nil, err
		}
		return []string{opts[idx].value}, nil

	case kind == "checkbox" || kind == "select-multiple":
		opts := choices(field)
		selected := current.Items()
		var defaults []int
		for i, c := range opts {
			if slices.Contains(selected, c.value) {
				defaults = append(defaults, i)
			}
		}
		picked, err := s.driver.MultiSelect(ctx, SelectConfig{Message: message, Options: labels(opts), Defaults: defaults})
		if err != nil {
			return nil, err
		}
		out := make([]string, 0, len(picked))
		for _, idx := range picked {
			if idx >= 0 && idx < len(opts) {
				out = append(out, opts[idx].value)
			}
		}
		return out, nil

	case kind == "password":
		value, err := s.driver.Password(ctx, InputConfig{Message: message})
		return []string{value}, err

	case kind == "file":
		value, err := s.driver.Input(ctx, InputConfig{Message: message, Help: "comma separated file names"})
		if err != nil {
			return nil, err
		}
		var names []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				names = append(names, part)
			}
		}
		return names, nil

	default:
		value, err := s.driver.Input(ctx, InputConfig{Message: message, Default: current.String()})
		return []string{value}, err
	}
}

func choices(field *dom.Field) []choice {
	primary := field.Primary()
	if primary.Tag() == "select" {
		var out []choice
		for _, opt := range primary.Options() {
			if opt.HasAttr("disabled") {
				continue
			}
			label := strings.Join(strings.Fields(opt.Text()), " ")
			if label == "" {
				label = opt.OptionValue()
			}
			out = append(out, choice{label: label, value: opt.OptionValue()})
		}
		return out
	}
	out := make([]choice, 0, len(field.Controls()))
	for _, control := range field.Controls() {
		out = append(out, choice{label: control.Value(), value: control.Value()})
	}
	return out
}

func labels(opts []choice) []string {
	out := make([]string, len(opts))
	for i, c := range opts {
		out[i] = c.label
	}
	return out
}
