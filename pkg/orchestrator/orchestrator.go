package orchestrator

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/goliatone/go-formguard/pkg/constraints"
	"github.com/goliatone/go-formguard/pkg/dom"
	"github.com/goliatone/go-formguard/pkg/messages"
	"github.com/goliatone/go-formguard/pkg/model"
	"github.com/goliatone/go-formguard/pkg/rules"
	"github.com/goliatone/go-formguard/pkg/validity"
)

var (
	// ErrNotForm is returned by New when the element is not a <form>.
	ErrNotForm = errors.New("orchestrator: element is not a form")
	// ErrFieldNotFound is returned when a field name has no control in the
	// bound form.
	ErrFieldNotFound = errors.New("orchestrator: field not found in form")
	// ErrInvalidValidator is returned by AddCustomValidator for an empty id
	// or a nil predicate.
	ErrInvalidValidator = errors.New("orchestrator: validator needs an id and a predicate")
)

const (
	triggerChange     = "change"
	triggerBlur       = "blur"
	triggerSubmit     = "submit"
	triggerAutoSubmit = "autosubmit"
)

// Orchestrator validates the fields of one form. It is not safe for
// concurrent use; the registry it holds may be shared.
type Orchestrator struct {
	form     *dom.Element
	cfg      Config
	logger   *slog.Logger
	warnings *warningSwitch

	registry   *rules.Registry
	aggregator *validity.Aggregator
	messages   messages.Resolver

	order  []string
	fields map[string]*model.FieldConfig

	listeners       map[string]dom.ListenerID
	cached          map[string]bool
	warnedContainer map[string]bool
	warnedLabel     map[string]bool
	destroyed       bool
}

// New binds an orchestrator to form. Live validation listeners requested
// by the options are installed immediately.
func New(form *dom.Element, options ...Option) (*Orchestrator, error) {
	if form == nil || !form.IsForm() {
		return nil, ErrNotForm
	}

	cfg := defaultConfig()
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Registry == nil {
		cfg.Registry = rules.NewRegistry()
	}

	state := &warningSwitch{all: cfg.SuppressAllWarnings}
	logger := slog.New(newWarningGate(cfg.Logger.Handler(), state))

	o := &Orchestrator{
		form:            form,
		cfg:             cfg,
		logger:          logger,
		warnings:        state,
		registry:        cfg.Registry,
		aggregator:      validity.New(rules.NewEvaluator(cfg.Registry, logger)),
		messages:        messages.Resolver{Overrides: cfg.CustomMessages},
		fields:          make(map[string]*model.FieldConfig),
		listeners:       make(map[string]dom.ListenerID),
		cached:          make(map[string]bool),
		warnedContainer: make(map[string]bool),
		warnedLabel:     make(map[string]bool),
	}

	if cfg.ValidateOnChange {
		o.listen(triggerChange, dom.EventChange, o.handleLive)
	}
	if cfg.ValidateOnBlur {
		o.listen(triggerBlur, dom.EventBlur, o.handleLive)
	}
	return o, nil
}

// Form returns the bound form element.
func (o *Orchestrator) Form() *dom.Element { return o.form }

// Config returns a copy of the effective configuration.
func (o *Orchestrator) Config() Config {
	cfg := o.cfg
	cfg.CustomMessages = maps.Clone(o.cfg.CustomMessages)
	return cfg
}

// Fields lists registered field names in registration order.
func (o *Orchestrator) Fields() []string {
	return slices.Clone(o.order)
}

// AddField registers rules for a named field of the form. Registering the
// same name again replaces its rules in place. Rules the markup declares
// through attributes and that the caller did not declare are appended;
// disagreements between both sides are reported as warnings.
func (o *Orchestrator) AddField(name string, list []model.Rule, options ...FieldOption) error {
	name = strings.TrimSpace(name)
	field, ok := dom.LookupField(o.form, name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrFieldNotFound, name)
	}

	cfg := &model.FieldConfig{Name: name}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}
	o.warnings.setField(name, cfg.SuppressWarnings)

	for _, conflict := range constraints.Conflicts(field, list) {
		o.logger.Warn("declared rule conflicts with markup attribute; declared rule wins",
			"field", name,
			"rule", conflict.Rule,
			"attribute", conflict.Attribute,
			"declared", conflict.Declared,
			"native", conflict.Native,
		)
	}
	cfg.Rules = constraints.Merge(list, constraints.FromField(field))

	if _, ok := field.LabelText(); !ok && !o.warnedLabel[name] {
		o.warnedLabel[name] = true
		o.logger.Warn("field has no label; messages will use its name", "field", name)
	}

	if _, exists := o.fields[name]; !exists {
		o.order = append(o.order, name)
	}
	o.fields[name] = cfg
	return nil
}

// ValidateField evaluates the rules of one field, stopping at the first
// failure, and optionally updates its UI. Unregistered fields are valid.
func (o *Orchestrator) ValidateField(name string, showUI bool) bool {
	cfg, ok := o.fields[name]
	if !ok {
		o.logger.Warn("validateField called for an unregistered field", "field", name)
		return true
	}
	field, ok := dom.LookupField(o.form, name)
	if !ok {
		o.logger.Warn("registered field is no longer in the form", "field", name)
		return true
	}

	rule, failed := o.aggregator.First(field, cfg.Rules)
	if !showUI {
		return !failed
	}
	if failed {
		o.showError(field, o.message(field, o.resolveRule(field, cfg, rule.Name)))
	} else {
		o.showSuccess(field)
	}
	return !failed
}

// FieldError reports the first failing rule of a registered field with its
// resolved message. The UI is left untouched.
func (o *Orchestrator) FieldError(name string) (model.FieldError, bool) {
	cfg, ok := o.fields[name]
	if !ok {
		return model.FieldError{}, false
	}
	field, ok := dom.LookupField(o.form, name)
	if !ok {
		return model.FieldError{}, false
	}
	rule, failed := o.aggregator.First(field, cfg.Rules)
	if !failed {
		return model.FieldError{}, false
	}
	rule = o.resolveRule(field, cfg, rule.Name)
	return model.FieldError{Field: name, Message: o.message(field, rule), Rule: rule.Name}, true
}

// Validate evaluates every registered field and updates the UI of each. The
// result carries one error per invalid field naming its first violated rule
// in declaration order.
func (o *Orchestrator) Validate() (result model.Result) {
	result.Errors = []model.FieldError{}
	current := ""
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("form validation aborted", "field", current, "panic", r)
			if !result.Has(current) {
				result.Errors = append(result.Errors, model.FieldError{Field: current, Message: messages.Fallback, Rule: model.RuleCustom})
			}
			result.Valid = false
		}
	}()

	for _, name := range o.order {
		current = name
		cfg := o.fields[name]
		field, ok := dom.LookupField(o.form, name)
		if !ok {
			o.logger.Warn("registered field is no longer in the form", "field", name)
			continue
		}

		v := o.aggregator.Compute(field, cfg.Rules)
		o.cached[name] = true
		if v.Valid {
			o.showSuccess(field)
			continue
		}

		rule := o.resolveRule(field, cfg, firstViolation(cfg.Rules, v))
		msg := o.message(field, rule)
		result.Errors = append(result.Errors, model.FieldError{Field: name, Message: msg, Rule: rule.Name})
		o.showError(field, msg)
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// FieldValidity computes the full validity of a field without touching the
// UI. Fields present in the form but not registered report their native
// constraint state.
func (o *Orchestrator) FieldValidity(name string) (model.Validity, error) {
	field, ok := dom.LookupField(o.form, name)
	if !ok {
		return model.Validity{}, fmt.Errorf("%w: %q", ErrFieldNotFound, name)
	}
	o.cached[name] = true
	if cfg, ok := o.fields[name]; ok {
		return o.aggregator.Compute(field, cfg.Rules), nil
	}
	return o.aggregator.Native(field), nil
}

// OnSubmit intercepts form submission: the default action is always
// prevented, the form is validated and callback receives the result. A
// later call replaces the previous callback.
func (o *Orchestrator) OnSubmit(callback func(model.Result)) {
	o.listen(triggerSubmit, dom.EventSubmit, func(ev *dom.Event) {
		ev.PreventDefault()
		result := o.Validate()
		if callback != nil {
			callback(result)
		}
	})
}

// EnableAutoSubmit validates on submission and lets the submission through
// only when the form is valid.
func (o *Orchestrator) EnableAutoSubmit() {
	o.listen(triggerAutoSubmit, dom.EventSubmit, func(ev *dom.Event) {
		if !o.Validate().Valid {
			ev.PreventDefault()
		}
	})
}

// AddCustomValidator registers a predicate under id in the orchestrator's
// registry. Replacing an existing rule is allowed and reported.
func (o *Orchestrator) AddCustomValidator(id model.RuleID, predicate model.Predicate) error {
	if strings.TrimSpace(string(id)) == "" || predicate == nil {
		return ErrInvalidValidator
	}
	if o.registry.Register(id, predicate) {
		o.logger.Warn("custom validator replaces an existing rule", "rule", id)
	}
	return nil
}

// SuppressWarnings toggles configuration warnings at runtime.
func (o *Orchestrator) SuppressWarnings(suppress bool) {
	o.warnings.setAll(suppress)
}

// ClearErrors resets the UI state of every registered field.
func (o *Orchestrator) ClearErrors() {
	for _, name := range o.order {
		field, ok := dom.LookupField(o.form, name)
		if !ok {
			continue
		}
		o.clearField(field)
	}
}

// Destroy removes the listeners installed by the orchestrator and the
// validity it cached on fields, then clears the UI. Calling it twice is
// harmless.
func (o *Orchestrator) Destroy() {
	doc := o.form.Document()
	for trigger, id := range o.listeners {
		doc.RemoveEventListener(id)
		delete(o.listeners, trigger)
	}
	for name := range o.cached {
		if field, ok := dom.LookupField(o.form, name); ok {
			field.ClearCachedValidity()
		}
		delete(o.cached, name)
	}
	o.ClearErrors()
	o.destroyed = true
}

func (o *Orchestrator) listen(trigger string, t dom.EventType, fn dom.Listener) {
	if o.destroyed {
		o.logger.Warn("orchestrator destroyed; listener not installed", "trigger", trigger)
		return
	}
	if id, ok := o.listeners[trigger]; ok {
		o.form.Document().RemoveEventListener(id)
	}
	o.listeners[trigger] = o.form.AddEventListener(t, fn)
}

func (o *Orchestrator) handleLive(ev *dom.Event) {
	if ev.Target == nil {
		return
	}
	name := ev.Target.Name()
	if _, ok := o.fields[name]; !ok {
		return
	}
	o.ValidateField(name, true)
}

// firstViolation returns the first declared rule the validity marks as
// violated, falling back to the native flag left standing.
func firstViolation(list []model.Rule, v model.Validity) model.RuleID {
	for _, rule := range list {
		if v.Mismatch(rule.Name) {
			return rule.Name
		}
	}
	if id, ok := v.NativeFlags.FirstRule(); ok {
		return id
	}
	return model.RuleCustom
}

// resolveRule maps a violated identifier back to the declared rule, or
// builds one describing the native constraint that failed.
func (o *Orchestrator) resolveRule(field *dom.Field, cfg *model.FieldConfig, id model.RuleID) model.Rule {
	for _, rule := range cfg.Rules {
		if rule.Name == id {
			return rule
		}
	}
	primary := field.Primary()
	rule := model.Rule{Name: id}
	switch id {
	case model.RuleStep:
		rule.Param = primary.AttrOr("step", "1")
	case model.RuleCustom:
		rule.Message = primary.CustomValidity()
	}
	return rule
}

func (o *Orchestrator) message(field *dom.Field, rule model.Rule) string {
	label, ok := field.LabelText()
	if !ok {
		label = field.Name()
	}
	return o.messages.Message(rule, label)
}
