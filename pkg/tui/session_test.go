package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formguard/pkg/dom"
	"github.com/goliatone/go-formguard/pkg/model"
	"github.com/goliatone/go-formguard/pkg/orchestrator"
)

type stubDriver struct {
	inputs    []string
	passwords []string
	confirm   []bool
	selectIdx []int
	multiIdx  [][]int
	info      []string

	inputPos, passPos, confirmPos, selectPos, multiPos int
	lastSelect                                         SelectConfig
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, _ InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.lastSelect = cfg
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.info = append(s.info, msg)
	return nil
}

const sessionForm = `<form id="join">
  <label for="email">Email</label>
  <input id="email" name="email" type="email" required>
  <label for="pw">Password</label>
  <input id="pw" name="pw" type="password">
  <label for="plan">Plan</label>
  <select id="plan" name="plan">
    <option value="">Choose</option>
    <option value="free">Free tier</option>
    <option value="pro">Pro tier</option>
  </select>
  <input type="checkbox" name="topics[]" value="go" aria-label="Topics">
  <input type="checkbox" name="topics[]" value="rust">
  <label><input type="checkbox" name="terms"> Accept terms</label>
</form>`

func newSession(t *testing.T, driver PromptDriver) (*orchestrator.Orchestrator, *Session) {
	t.Helper()
	doc, err := dom.ParseString(sessionForm)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	form, err := doc.Form("join")
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch, err := orchestrator.New(form, orchestrator.WithLogger(quiet))
	if err != nil {
		t.Fatalf("orchestrator: %v", err)
	}
	for name, list := range map[string][]model.Rule{
		"email":    nil,
		"pw":       {{Name: model.RuleMinLength, Param: 8}},
		"plan":     {{Name: model.RuleRequired}},
		"topics[]": {{Name: model.RuleArrayMin, Param: 1}},
		"terms":    {{Name: model.RuleRequired}},
	} {
		if err := orch.AddField(name, list); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}
	session, err := NewSession(orch, WithPromptDriver(driver), WithLogger(quiet))
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	return orch, session
}

func TestSession_PromptField_RetriesUntilValid(t *testing.T) {
	driver := &stubDriver{inputs: []string{"", "nope", "ada@example.com"}}
	orch, session := newSession(t, driver)

	if err := session.PromptField(context.Background(), "email"); err != nil {
		t.Fatalf("prompt: %v", err)
	}
	want := []string{"  This field is required", "  Please enter a valid email address"}
	if diff := cmp.Diff(want, driver.info); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
	if _, failed := orch.FieldError("email"); failed {
		t.Fatalf("expected email to be valid")
	}
}

func TestSession_PromptField_GivesUp(t *testing.T) {
	driver := &stubDriver{passwords: []string{"a", "b"}}
	_, session := newSession(t, driver)
	WithMaxAttempts(2)(session)

	err := session.PromptField(context.Background(), "pw")
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
	if len(driver.info) != 2 {
		t.Fatalf("expected two rejections, got %v", driver.info)
	}
}

func TestSession_Run(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"ada@example.com"},
		passwords: []string{"longenough"},
		selectIdx: []int{0, 2},
		multiIdx:  [][]int{{1}},
		confirm:   []bool{true},
	}
	orch, session := newSession(t, driver)

	result, err := session.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected valid result, got %+v", result)
	}
	if diff := cmp.Diff([]string{"Choose", "Free tier", "Pro tier"}, driver.lastSelect.Options); diff != "" {
		t.Fatalf("select options mismatch (-want +got):\n%s", diff)
	}
	if len(driver.info) != 1 {
		t.Fatalf("expected the empty plan to be rejected once, got %v", driver.info)
	}

	plan, _ := dom.LookupField(orch.Form(), "plan")
	if got := plan.Value().String(); got != "pro" {
		t.Fatalf("expected plan pro, got %q", got)
	}
	topics, _ := dom.LookupField(orch.Form(), "topics[]")
	if diff := cmp.Diff([]string{"rust"}, topics.Value().Items()); diff != "" {
		t.Fatalf("topics mismatch (-want +got):\n%s", diff)
	}
}

func TestSession_DriverErrorStops(t *testing.T) {
	_, session := newSession(t, &stubDriver{})
	if _, err := session.Run(context.Background()); err == nil {
		t.Fatalf("expected driver error")
	}
	if _, err := session.Run(context.Background()); errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("driver errors must not count as attempts")
	}
}

func TestNewSession_RequiresOrchestrator(t *testing.T) {
	if _, err := NewSession(nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSession_UnknownField(t *testing.T) {
	_, session := newSession(t, &stubDriver{})
	if err := session.PromptField(context.Background(), "missing"); !errors.Is(err, orchestrator.ErrFieldNotFound) {
		t.Fatalf("expected ErrFieldNotFound, got %v", err)
	}
}
