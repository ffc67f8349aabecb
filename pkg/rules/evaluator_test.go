package rules

import (
	"bytes"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formguard/pkg/model"
)

func newTestEvaluator(reg *Registry) (*Evaluator, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewEvaluator(reg, slog.New(slog.NewTextHandler(&buf, nil))), &buf
}

func TestEvaluate_UnknownRuleFailsOpen(t *testing.T) {
	eval, logs := newTestEvaluator(NewRegistry())
	field := &stubField{name: "nickname", value: model.Text("x")}

	if !eval.Evaluate(field, field.value, model.Rule{Name: "requird"}) {
		t.Fatalf("expected unknown rule to pass")
	}
	if !strings.Contains(logs.String(), "unknown validation rule") {
		t.Fatalf("expected warning for unknown rule, got %q", logs.String())
	}
}

func TestEvaluate_InlinePredicateWins(t *testing.T) {
	eval, _ := newTestEvaluator(NewRegistry())
	field := &stubField{name: "email", value: model.Text("test@example.com")}

	rule := model.Rule{
		Name: model.RuleEmail,
		Predicate: func(model.Input) bool {
			return false
		},
	}
	if eval.Evaluate(field, field.value, rule) {
		t.Fatalf("expected inline predicate to override the registry")
	}
}

func TestEvaluate_RecoversPanics(t *testing.T) {
	eval, logs := newTestEvaluator(NewRegistry())
	field := &stubField{name: "code", value: model.Text("x")}

	rule := model.Rule{
		Name: "explode",
		Predicate: func(model.Input) bool {
			panic("boom")
		},
	}
	if eval.Evaluate(field, field.value, rule) {
		t.Fatalf("expected panicking predicate to count as a failure")
	}
	if !strings.Contains(logs.String(), "validation rule panicked") {
		t.Fatalf("expected panic to be logged, got %q", logs.String())
	}
}

func TestEvaluate_CustomRuleKind(t *testing.T) {
	eval, _ := newTestEvaluator(NewRegistry())
	field := &stubField{name: "token", value: model.Text("abc")}

	if !eval.Evaluate(field, field.value, model.Rule{Name: model.RuleCustom}) {
		t.Fatalf("expected custom rule without predicate to pass")
	}
	rule := model.Rule{Name: model.RuleCustom, Predicate: Func(func(v model.Value, _ any) bool {
		return v.String() == "xyz"
	})}
	if eval.Evaluate(field, field.value, rule) {
		t.Fatalf("expected custom rule to use its predicate")
	}
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	called := false
	replaced := reg.Register("creditCard", func(model.Input) bool {
		called = true
		return true
	})
	if replaced {
		t.Fatalf("expected first registration not to replace anything")
	}

	eval, _ := newTestEvaluator(reg)
	field := &stubField{name: "card", value: model.Text("4111")}
	if !eval.Evaluate(field, field.value, model.Rule{Name: "creditCard"}) {
		t.Fatalf("expected registered predicate to pass")
	}
	if !called {
		t.Fatalf("expected registered predicate to be invoked")
	}

	if !reg.Register("creditCard", func(model.Input) bool { return false }) {
		t.Fatalf("expected second registration to report replacement")
	}
	if !reg.Register(model.RuleEmail, func(model.Input) bool { return true }) {
		t.Fatalf("expected shadowing a builtin to report replacement")
	}
}

func TestRegistry_InstancesAreIsolated(t *testing.T) {
	first := NewRegistry()
	second := NewRegistry()

	first.Register(model.RuleRequired, func(model.Input) bool { return true })

	eval, _ := newTestEvaluator(second)
	field := &stubField{name: "name", value: model.Text("")}
	if eval.Evaluate(field, field.value, model.Rule{Name: model.RuleRequired}) {
		t.Fatalf("expected override on another registry not to leak")
	}
	if _, ok := builtins[model.RuleRequired]; !ok {
		t.Fatalf("expected builtin table to stay intact")
	}
}

func TestRegistry_IgnoresInvalidRegistrations(t *testing.T) {
	reg := NewRegistry()
	reg.Register("", func(model.Input) bool { return true })
	reg.Register("nil", nil)

	if reg.Has("") || reg.Has("nil") {
		t.Fatalf("expected invalid registrations to be ignored")
	}
}

func TestRegistry_List(t *testing.T) {
	reg := NewRegistry()
	reg.Register("zip", func(model.Input) bool { return true })

	got := reg.List()
	want := append(model.BuiltinRules(), "zip")
	slices.Sort(want)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
}
