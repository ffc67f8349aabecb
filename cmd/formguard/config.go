package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
)

// envConfig holds the defaults read from FORMGUARD_* variables. Flags
// override them.
type envConfig struct {
	Format           string        `env:"FORMGUARD_FORMAT" envDefault:"text"`
	LogLevel         string        `env:"FORMGUARD_LOG_LEVEL" envDefault:"warn"`
	ErrorClass       string        `env:"FORMGUARD_ERROR_CLASS" envDefault:"error"`
	SuccessClass     string        `env:"FORMGUARD_SUCCESS_CLASS" envDefault:"success"`
	ContainerAttr    string        `env:"FORMGUARD_ERROR_CONTAINER_ATTR" envDefault:"data-error-for"`
	SuppressWarnings bool          `env:"FORMGUARD_SUPPRESS_WARNINGS"`
	MaxAttempts      int           `env:"FORMGUARD_MAX_ATTEMPTS" envDefault:"3"`
	WatchDebounce    time.Duration `env:"FORMGUARD_WATCH_DEBOUNCE" envDefault:"150ms"`
}

type options struct {
	envConfig

	FormPath    string
	Selector    string
	RulesPath   string
	OpenAPIPath string
	SchemaPath  string
	Operation   string
	ValuesPath  string
	Values      setFlag
	OnlyInvalid bool
	Annotate    bool
	Interactive bool
	Watch       bool
}

var errUsage = errors.New("formguard: usage")

// setFlag collects repeated -set name=value pairs. Repeating a name adds a
// value, which is how checkbox groups and multi-selects receive several.
type setFlag struct {
	order  []string
	values map[string][]string
}

func (s *setFlag) String() string {
	if s == nil {
		return ""
	}
	parts := make([]string, 0, len(s.order))
	for _, name := range s.order {
		parts = append(parts, name+"="+strings.Join(s.values[name], ","))
	}
	return strings.Join(parts, " ")
}

func (s *setFlag) Set(raw string) error {
	name, value, ok := strings.Cut(raw, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", raw)
	}
	s.add(name, value)
	return nil
}

func (s *setFlag) add(name string, values ...string) {
	if s.values == nil {
		s.values = make(map[string][]string)
	}
	if _, seen := s.values[name]; !seen {
		s.order = append(s.order, name)
	}
	s.values[name] = append(s.values[name], values...)
}

func (s *setFlag) clone() *setFlag {
	out := &setFlag{}
	for _, name := range s.order {
		out.add(name, s.values[name]...)
	}
	return out
}

// loadValues merges a JSON object of field values. Values may be strings,
// numbers, booleans or arrays of those.
func (s *setFlag) loadValues(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read values: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse values %s: %w", path, err)
	}
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		switch v := raw[name].(type) {
		case []any:
			items := make([]string, 0, len(v))
			for _, item := range v {
				items = append(items, scalar(item))
			}
			s.add(name, items...)
		default:
			s.add(name, scalar(v))
		}
	}
	return nil
}

func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// withEnvFile merges the dotenv file named by FORMGUARD_ENV_FILE into
// environ. Variables already set take precedence over the file.
func withEnvFile(environ map[string]string) (map[string]string, error) {
	path := environ["FORMGUARD_ENV_FILE"]
	if path == "" {
		return environ, nil
	}
	file, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read env file: %w", err)
	}
	merged := make(map[string]string, len(environ)+len(file))
	for k, v := range file {
		merged[k] = v
	}
	for k, v := range environ {
		merged[k] = v
	}
	return merged, nil
}

func parseOptions(args []string, environ map[string]string, stderr io.Writer) (options, error) {
	var opts options
	environ, err := withEnvFile(environ)
	if err != nil {
		return opts, err
	}
	if err := env.ParseWithOptions(&opts.envConfig, env.Options{Environment: environ}); err != nil {
		return opts, fmt.Errorf("read environment: %w", err)
	}

	fs := flag.NewFlagSet("formguard", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: formguard -form page.html [flags]\n\nValidate an HTML form against declared rules.\n\n")
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.FormPath, "form", "", "HTML document holding the form")
	fs.StringVar(&opts.Selector, "select", "", "form id or name (first form if empty)")
	fs.StringVar(&opts.RulesPath, "rules", "", "YAML or JSON rule declaration file")
	fs.StringVar(&opts.OpenAPIPath, "openapi", "", "OpenAPI document to derive rules from")
	fs.StringVar(&opts.SchemaPath, "schema", "", "JSON Schema (JSON or YAML) to derive rules from")
	fs.StringVar(&opts.Operation, "operation", "", "OpenAPI operation id (required with -openapi)")
	fs.StringVar(&opts.ValuesPath, "values", "", "JSON object of field values to fill in")
	fs.Var(&opts.Values, "set", "field value as name=value (repeatable)")
	fs.StringVar(&opts.Format, "format", opts.Format, "report format: text, json or html")
	fs.BoolVar(&opts.OnlyInvalid, "only-invalid", false, "list failing fields only")
	fs.BoolVar(&opts.Annotate, "annotate", false, "print the document with validation UI applied instead of a report")
	fs.BoolVar(&opts.Interactive, "interactive", false, "prompt for each field until it validates")
	fs.BoolVar(&opts.Watch, "watch", false, "validate again whenever an input file changes")
	fs.BoolVar(&opts.SuppressWarnings, "quiet", opts.SuppressWarnings, "suppress configuration warnings")

	if err := fs.Parse(args); err != nil {
		return opts, errors.Join(errUsage, err)
	}
	if opts.FormPath == "" {
		fs.Usage()
		return opts, fmt.Errorf("%w: -form is required", errUsage)
	}
	sources := 0
	for _, path := range []string{opts.RulesPath, opts.OpenAPIPath, opts.SchemaPath} {
		if path != "" {
			sources++
		}
	}
	if sources > 1 {
		return opts, fmt.Errorf("%w: -rules, -openapi and -schema are exclusive", errUsage)
	}
	if opts.OpenAPIPath != "" && opts.Operation == "" {
		return opts, fmt.Errorf("%w: -operation is required with -openapi", errUsage)
	}
	if opts.Interactive && opts.Watch {
		return opts, fmt.Errorf("%w: -interactive and -watch are exclusive", errUsage)
	}
	return opts, nil
}

func (o options) logLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(o.LogLevel)); err != nil {
		return slog.LevelWarn
	}
	return level
}

// inputs lists the files whose changes trigger a new run in watch mode.
func (o options) inputs() []string {
	var out []string
	for _, path := range []string{o.FormPath, o.RulesPath, o.OpenAPIPath, o.SchemaPath, o.ValuesPath} {
		if path != "" {
			out = append(out, path)
		}
	}
	return out
}

func environMap(environ []string) map[string]string {
	out := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out
}
