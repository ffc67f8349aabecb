package rules

import (
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-formguard/pkg/model"
)

// builtins is shared by every registry and never mutated after init.
var builtins = map[model.RuleID]model.Predicate{
	model.RuleRequired:     required,
	model.RuleEmail:        email,
	model.RuleURL:          absoluteURL,
	model.RulePhone:        phone,
	model.RuleMinLength:    minLength,
	model.RuleMaxLength:    maxLength,
	model.RuleMin:          minimum,
	model.RuleMax:          maximum,
	model.RulePattern:      pattern,
	model.RuleNumeric:      numeric,
	model.RuleInteger:      integer,
	model.RuleAlphanumeric: alphanumeric,
	model.RuleArrayMin:     arrayMin,
	model.RuleArrayMax:     arrayMax,
	model.RuleEqualTo:      equalTo,
	model.RuleCustom:       custom,
}

// Builtins returns a copy of the built-in predicate table.
func Builtins() map[model.RuleID]model.Predicate {
	return maps.Clone(builtins)
}

// Registry resolves rule identifiers to predicates. Lookups consult the
// instance overrides first and fall back to the built-in table, so
// registrations on one registry never leak into another.
type Registry struct {
	mu        sync.RWMutex
	overrides map[model.RuleID]model.Predicate
}

// NewRegistry constructs a registry serving the built-in rules.
func NewRegistry() *Registry {
	return &Registry{
		overrides: make(map[model.RuleID]model.Predicate),
	}
}

// Register adds or replaces the predicate for id and reports whether an
// existing entry (custom or built-in) was shadowed. Empty identifiers and nil
// predicates are ignored.
func (r *Registry) Register(id model.RuleID, predicate model.Predicate) bool {
	if r == nil || predicate == nil {
		return false
	}
	id = model.RuleID(strings.TrimSpace(string(id)))
	if id == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, custom := r.overrides[id]
	_, builtin := builtins[id]
	r.overrides[id] = predicate
	return custom || builtin
}

// Lookup returns the predicate registered for id.
func (r *Registry) Lookup(id model.RuleID) (model.Predicate, bool) {
	if r != nil {
		r.mu.RLock()
		predicate, ok := r.overrides[id]
		r.mu.RUnlock()
		if ok {
			return predicate, true
		}
	}
	predicate, ok := builtins[id]
	return predicate, ok
}

// Has reports whether id resolves to a predicate.
func (r *Registry) Has(id model.RuleID) bool {
	_, ok := r.Lookup(id)
	return ok
}

// List returns every resolvable rule identifier, sorted.
func (r *Registry) List() []model.RuleID {
	seen := maps.Clone(builtins)
	if r != nil {
		r.mu.RLock()
		for id, predicate := range r.overrides {
			seen[id] = predicate
		}
		r.mu.RUnlock()
	}
	ids := make([]model.RuleID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns a process-wide registry for callers that want to register
// a rule once and reuse it across orchestrators.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}
