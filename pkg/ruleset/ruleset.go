package ruleset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formguard/pkg/model"
)

// ErrNoRuleset is returned when a store holds no declaration for a form.
var ErrNoRuleset = errors.New("ruleset: no declaration for form")

// Ruleset is the rule declaration of one form.
type Ruleset struct {
	// Form is the selector of the form (its id or name).
	Form string
	// Source names the file the declaration came from.
	Source   string
	Messages map[model.RuleID]string
	Fields   []model.FieldConfig
}

// Field returns the configuration of a named field.
func (r Ruleset) Field(name string) (model.FieldConfig, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return model.FieldConfig{}, false
}

// Store indexes rulesets by form selector.
type Store struct {
	forms map[string]Ruleset
}

// Form returns the ruleset declared for a form. A store holding a single
// ruleset also answers for the empty selector.
func (s *Store) Form(selector string) (Ruleset, bool) {
	if s == nil {
		return Ruleset{}, false
	}
	key := strings.TrimPrefix(strings.TrimSpace(selector), "#")
	if rs, ok := s.forms[key]; ok {
		return rs, true
	}
	if key == "" && len(s.forms) == 1 {
		for _, rs := range s.forms {
			return rs, true
		}
	}
	return Ruleset{}, false
}

// Forms lists the declared form selectors in sorted order.
func (s *Store) Forms() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.forms))
	for key := range s.forms {
		out = append(out, key)
	}
	slices.Sort(out)
	return out
}

// Empty reports whether the store holds any ruleset.
func (s *Store) Empty() bool {
	return s == nil || len(s.forms) == 0
}

// Load parses a single declaration file.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ruleset: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// LoadFS walks fsys and merges every JSON/YAML declaration file. A form
// declared in two files is an error. A nil fsys yields an empty store.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{forms: make(map[string]Ruleset)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isRulesFile(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("ruleset: read %s: %w", path, err)
		}
		parsed, err := Parse(data, path)
		if err != nil {
			return err
		}
		for key, rs := range parsed.forms {
			if prev, exists := store.forms[key]; exists {
				return fmt.Errorf("ruleset: form %q declared in %s and %s", key, prev.Source, path)
			}
			store.forms[key] = rs
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

type documentFile struct {
	Forms    map[string]formFile `json:"forms" yaml:"forms"`
	Form     string              `json:"form" yaml:"form"`
	Messages map[string]string   `json:"messages" yaml:"messages"`
	Fields   []model.FieldConfig `json:"fields" yaml:"fields"`
}

func (d documentFile) single() formFile {
	return formFile{Form: d.Form, Messages: d.Messages, Fields: d.Fields}
}

type formFile struct {
	Form     string              `json:"form" yaml:"form"`
	Messages map[string]string   `json:"messages" yaml:"messages"`
	Fields   []model.FieldConfig `json:"fields" yaml:"fields"`
}

// Parse decodes a declaration document. Two shapes are accepted: a single
// form (`form`, `messages`, `fields` at the top level) or several forms
// keyed by selector under `forms`.
func Parse(data []byte, source string) (*Store, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("ruleset: file %s is empty", source)
	}

	doc, err := decode(data, source)
	if err != nil {
		return nil, err
	}

	store := &Store{forms: make(map[string]Ruleset)}
	if len(doc.Fields) > 0 {
		rs, err := normalise(doc.single(), doc.Form, source)
		if err != nil {
			return nil, err
		}
		store.forms[rs.Form] = rs
	}
	for key, raw := range doc.Forms {
		selector := strings.TrimPrefix(strings.TrimSpace(key), "#")
		if _, exists := store.forms[selector]; exists {
			return nil, fmt.Errorf("ruleset: duplicate form %q (file %s)", selector, source)
		}
		rs, err := normalise(raw, selector, source)
		if err != nil {
			return nil, err
		}
		store.forms[selector] = rs
	}
	if len(store.forms) == 0 {
		return nil, fmt.Errorf("ruleset: file %s declares no fields", source)
	}
	return store, nil
}

func decode(data []byte, source string) (documentFile, error) {
	var doc documentFile
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return documentFile{}, fmt.Errorf("ruleset: parse %s: %w", source, err)
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("ruleset: parse %s: %w", source, err)
	}
	return doc, nil
}

func normalise(raw formFile, selector, source string) (Ruleset, error) {
	rs := Ruleset{
		Form:   strings.TrimPrefix(strings.TrimSpace(selector), "#"),
		Source: source,
		Fields: make([]model.FieldConfig, 0, len(raw.Fields)),
	}
	if len(raw.Messages) > 0 {
		rs.Messages = make(map[model.RuleID]string, len(raw.Messages))
		for id, msg := range raw.Messages {
			rs.Messages[model.RuleID(strings.TrimSpace(id))] = msg
		}
	}

	seen := make(map[string]bool, len(raw.Fields))
	for i, field := range raw.Fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			return Ruleset{}, fmt.Errorf("ruleset: form %q (file %s) field #%d has no name", rs.Form, source, i)
		}
		if seen[name] {
			return Ruleset{}, fmt.Errorf("ruleset: form %q (file %s) declares field %q twice", rs.Form, source, name)
		}
		seen[name] = true

		cfg := model.FieldConfig{Name: name, SuppressWarnings: field.SuppressWarnings}
		for j, rule := range field.Rules {
			id := model.RuleID(strings.TrimSpace(string(rule.Name)))
			if id == "" {
				return Ruleset{}, fmt.Errorf("ruleset: field %q (file %s) rule #%d has no name", name, source, j)
			}
			rule.Name = id
			cfg.Rules = append(cfg.Rules, rule)
		}
		rs.Fields = append(rs.Fields, cfg)
	}
	return rs, nil
}

func isRulesFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
