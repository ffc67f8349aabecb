package orchestrator

import (
	"log/slog"
	"maps"
	"strings"

	"github.com/goliatone/go-formguard/pkg/model"
	"github.com/goliatone/go-formguard/pkg/rules"
)

const (
	defaultErrorClass    = "error"
	defaultSuccessClass  = "success"
	defaultContainerAttr = "data-error-for"
)

// Config holds the settings of an orchestrator. It is fixed once New
// returns; Config() hands out a copy.
type Config struct {
	SuppressAllWarnings     bool
	ErrorClass              string
	SuccessClass            string
	ErrorContainerAttribute string
	ValidateOnChange        bool
	ValidateOnBlur          bool
	CustomMessages          map[model.RuleID]string

	// Logger receives configuration warnings. Defaults to slog.Default.
	Logger *slog.Logger
	// Registry resolves rule identifiers. Defaults to a private registry so
	// custom validators stay local to the orchestrator; pass rules.Default()
	// to share registrations.
	Registry *rules.Registry
}

// Option customises the orchestrator configuration.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		ErrorClass:              defaultErrorClass,
		SuccessClass:            defaultSuccessClass,
		ErrorContainerAttribute: defaultContainerAttr,
		CustomMessages:          map[model.RuleID]string{},
	}
}

// WithSuppressAllWarnings silences configuration warnings from the start.
func WithSuppressAllWarnings(suppress bool) Option {
	return func(c *Config) {
		c.SuppressAllWarnings = suppress
	}
}

// WithErrorClass overrides the class added to invalid fields.
func WithErrorClass(class string) Option {
	return func(c *Config) {
		if class = strings.TrimSpace(class); class != "" {
			c.ErrorClass = class
		}
	}
}

// WithSuccessClass overrides the class added to valid fields.
func WithSuccessClass(class string) Option {
	return func(c *Config) {
		if class = strings.TrimSpace(class); class != "" {
			c.SuccessClass = class
		}
	}
}

// WithErrorContainerAttribute changes the attribute used to find the error
// container of a field.
func WithErrorContainerAttribute(attr string) Option {
	return func(c *Config) {
		if attr = strings.TrimSpace(attr); attr != "" {
			c.ErrorContainerAttribute = attr
		}
	}
}

// WithValidateOnChange validates registered fields when they fire change.
func WithValidateOnChange(enabled bool) Option {
	return func(c *Config) {
		c.ValidateOnChange = enabled
	}
}

// WithValidateOnBlur validates registered fields when they lose focus.
func WithValidateOnBlur(enabled bool) Option {
	return func(c *Config) {
		c.ValidateOnBlur = enabled
	}
}

// WithCustomMessages merges message overrides keyed by rule. Templates may
// use the {value} and {label} placeholders.
func WithCustomMessages(overrides map[model.RuleID]string) Option {
	return func(c *Config) {
		if len(overrides) == 0 {
			return
		}
		if c.CustomMessages == nil {
			c.CustomMessages = make(map[model.RuleID]string, len(overrides))
		}
		maps.Copy(c.CustomMessages, overrides)
	}
}

// WithLogger routes warnings and evaluation errors to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithRegistry injects the validator registry.
func WithRegistry(registry *rules.Registry) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// FieldOption customises a single field registration.
type FieldOption func(*model.FieldConfig)

// WithFieldSuppressWarnings silences warnings about one field.
func WithFieldSuppressWarnings(suppress bool) FieldOption {
	return func(fc *model.FieldConfig) {
		fc.SuppressWarnings = suppress
	}
}
