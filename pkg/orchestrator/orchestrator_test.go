package orchestrator_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formguard/pkg/dom"
	"github.com/goliatone/go-formguard/pkg/model"
	"github.com/goliatone/go-formguard/pkg/orchestrator"
	"github.com/goliatone/go-formguard/pkg/rules"
)

const profileForm = `<!doctype html>
<html><body>
<form id="profile">
  <label for="name">Name</label>
  <input id="name" name="name">
  <div class="error-message" data-error-for="name" hidden></div>

  <label for="age">Age</label>
  <input id="age" name="age" value="15">
  <div id="age-error"></div>

  <label for="email">Email</label>
  <input id="email" name="email" type="email" value="a@b.co">

  <label for="card">Card</label>
  <input id="card" name="card" value="4111">

  <label for="password">Password</label>
  <input id="password" name="password" type="password" value="s3cret">
  <label for="confirm">Confirm</label>
  <input id="confirm" name="confirm" type="password" value="other">

  <input name="nickname" required>

  <button type="submit">Save</button>
</form>
<p id="not-a-form"></p>
</body></html>`

type harness struct {
	doc  *dom.Document
	form *dom.Element
	orch *orchestrator.Orchestrator
	logs *bytes.Buffer
}

func newHarness(t *testing.T, opts ...orchestrator.Option) *harness {
	t.Helper()
	doc, err := dom.ParseString(profileForm)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	form, err := doc.Form("#profile")
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	orch, err := orchestrator.New(form, append([]orchestrator.Option{orchestrator.WithLogger(logger)}, opts...)...)
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	return &harness{doc: doc, form: form, orch: orch, logs: &logs}
}

func (h *harness) add(t *testing.T, name string, list ...model.Rule) {
	t.Helper()
	if err := h.orch.AddField(name, list); err != nil {
		t.Fatalf("add field %s: %v", name, err)
	}
}

func (h *harness) control(t *testing.T, name string) *dom.Element {
	t.Helper()
	field, ok := dom.LookupField(h.form, name)
	if !ok {
		t.Fatalf("field %s missing", name)
	}
	return field.Primary()
}

func TestNew_RejectsNonForm(t *testing.T) {
	doc, err := dom.ParseString(profileForm)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	p, _ := doc.ElementByID("not-a-form")
	if _, err := orchestrator.New(p); !errors.Is(err, orchestrator.ErrNotForm) {
		t.Fatalf("expected ErrNotForm, got %v", err)
	}
	if _, err := orchestrator.New(nil); !errors.Is(err, orchestrator.ErrNotForm) {
		t.Fatalf("expected ErrNotForm for nil, got %v", err)
	}
}

func TestNew_Defaults(t *testing.T) {
	h := newHarness(t)
	cfg := h.orch.Config()
	if cfg.ErrorClass != "error" || cfg.SuccessClass != "success" || cfg.ErrorContainerAttribute != "data-error-for" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.ValidateOnBlur || cfg.ValidateOnChange || cfg.SuppressAllWarnings {
		t.Fatalf("expected live validation and suppression off by default")
	}
	if h.doc.ListenerCount() != 0 {
		t.Fatalf("expected no listeners by default, got %d", h.doc.ListenerCount())
	}
}

func TestValidateField_AgeBelowMinimum(t *testing.T) {
	h := newHarness(t)
	h.add(t, "age", model.Rule{Name: model.RuleRequired}, model.Rule{Name: model.RuleMin, Param: 18})

	if h.orch.ValidateField("age", true) {
		t.Fatalf("expected age 15 to be invalid")
	}

	v, err := h.orch.FieldValidity("age")
	if err != nil {
		t.Fatalf("field validity: %v", err)
	}
	flags := v.Flags()
	want := map[string]bool{"valid": false, "minMismatch": true, "rangeUnderflow": true, "valueMissing": false}
	for key, expected := range want {
		if flags[key] != expected {
			t.Fatalf("flag %s = %v, want %v", key, flags[key], expected)
		}
	}
}

func TestAddField_MissingFieldFails(t *testing.T) {
	h := newHarness(t)
	err := h.orch.AddField("ghost", []model.Rule{{Name: model.RuleRequired}})
	if !errors.Is(err, orchestrator.ErrFieldNotFound) {
		t.Fatalf("expected ErrFieldNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Fatalf("expected error to name the field, got %v", err)
	}
	if len(h.orch.Fields()) != 0 {
		t.Fatalf("expected nothing registered")
	}
}

func TestAddCustomValidator_UsedByDeclaredRule(t *testing.T) {
	h := newHarness(t)
	var seen []string
	err := h.orch.AddCustomValidator("creditCard", func(in model.Input) bool {
		seen = append(seen, in.Value.String())
		return len(in.Value.String()) == 16
	})
	if err != nil {
		t.Fatalf("add custom validator: %v", err)
	}
	h.add(t, "card", model.Rule{Name: "creditCard", Message: "Invalid card"})

	result := h.orch.Validate()
	if diff := cmp.Diff([]string{"4111"}, seen); diff != "" {
		t.Fatalf("predicate calls mismatch (-want +got):\n%s", diff)
	}
	got, ok := result.Get("card")
	if !ok || got.Rule != "creditCard" || got.Message != "Invalid card" {
		t.Fatalf("unexpected card error: %+v", result.Errors)
	}
}

func TestAddCustomValidator_StaysLocal(t *testing.T) {
	first := newHarness(t)
	second := newHarness(t)
	if err := first.orch.AddCustomValidator(model.RuleRequired, func(model.Input) bool { return true }); err != nil {
		t.Fatalf("add custom validator: %v", err)
	}
	if !strings.Contains(first.logs.String(), "custom validator replaces an existing rule") {
		t.Fatalf("expected overwrite warning, got %q", first.logs.String())
	}

	second.add(t, "name", model.Rule{Name: model.RuleRequired})
	if second.orch.ValidateField("name", false) {
		t.Fatalf("expected override on another orchestrator not to apply")
	}

	if err := first.orch.AddCustomValidator("", func(model.Input) bool { return true }); !errors.Is(err, orchestrator.ErrInvalidValidator) {
		t.Fatalf("expected ErrInvalidValidator, got %v", err)
	}
}

func TestAddCustomValidator_SharedRegistry(t *testing.T) {
	shared := rules.NewRegistry()
	first := newHarness(t, orchestrator.WithRegistry(shared))
	second := newHarness(t, orchestrator.WithRegistry(shared))

	if err := first.orch.AddCustomValidator("never", func(model.Input) bool { return false }); err != nil {
		t.Fatalf("add custom validator: %v", err)
	}
	second.add(t, "card", model.Rule{Name: "never"})
	if second.orch.ValidateField("card", false) {
		t.Fatalf("expected shared registration to apply")
	}
}

func TestValidateField_ShortCircuits(t *testing.T) {
	h := newHarness(t)
	calls := 0
	h.add(t, "name",
		model.Rule{Name: model.RuleRequired},
		model.Rule{Name: "counted", Predicate: func(model.Input) bool {
			calls++
			return true
		}},
	)

	if h.orch.ValidateField("name", true) {
		t.Fatalf("expected empty name to fail")
	}
	if calls != 0 {
		t.Fatalf("expected second rule to be skipped, got %d calls", calls)
	}
	container := h.control(t, "name").NextElementSibling()
	if v, _ := container.Attr("data-error-for"); v != "name" {
		t.Fatalf("expected the declared container to be used")
	}
	if container.Text() != "This field is required" {
		t.Fatalf("expected required message, got %q", container.Text())
	}
	if n := strings.Count(h.doc.String(), `data-error-for="name"`); n != 1 {
		t.Fatalf("expected no extra container, got %d", n)
	}
}

func TestValidate_OneErrorPerInvalidField(t *testing.T) {
	h := newHarness(t)
	h.add(t, "name", model.Rule{Name: model.RuleRequired}, model.Rule{Name: model.RuleMinLength, Param: 3})
	h.add(t, "age", model.Rule{Name: model.RuleNumeric}, model.Rule{Name: model.RuleMin, Param: 18}, model.Rule{Name: model.RuleMax, Param: 10})
	h.add(t, "email", model.Rule{Name: model.RuleEmail})

	result := h.orch.Validate()
	want := model.Result{
		Valid: false,
		Errors: []model.FieldError{
			{Field: "name", Message: "This field is required", Rule: model.RuleRequired},
			{Field: "age", Message: "Please enter a value greater than or equal to 18", Rule: model.RuleMin},
		},
	}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
	if !errors.Is(result.Err(), model.ErrInvalid) {
		t.Fatalf("expected result error to wrap ErrInvalid")
	}
}

func TestValidate_Idempotent(t *testing.T) {
	h := newHarness(t)
	h.add(t, "name", model.Rule{Name: model.RuleRequired})
	h.add(t, "confirm", model.Rule{Name: model.RuleEqualTo, Param: "password", Message: "{label} must match"})

	first := h.orch.Validate()
	markup := h.doc.String()
	second := h.orch.Validate()

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("results differ (-first +second):\n%s", diff)
	}
	if markup != h.doc.String() {
		t.Fatalf("expected UI updates to be idempotent")
	}
	if got, _ := first.Get("confirm"); got.Message != "Confirm must match" {
		t.Fatalf("expected label placeholder, got %q", got.Message)
	}
}

func TestValidate_AllValid(t *testing.T) {
	h := newHarness(t)
	h.add(t, "email", model.Rule{Name: model.RuleRequired}, model.Rule{Name: model.RuleEmail})

	result := h.orch.Validate()
	if !result.Valid || len(result.Errors) != 0 || result.Err() != nil {
		t.Fatalf("expected valid result, got %+v", result)
	}
	if !h.control(t, "email").HasClass("success") {
		t.Fatalf("expected success class")
	}
}

func TestDisplay_InvalidThenValid(t *testing.T) {
	h := newHarness(t, orchestrator.WithErrorClass("is-invalid"), orchestrator.WithSuccessClass("is-valid"))
	h.add(t, "age", model.Rule{Name: model.RuleMin, Param: 18})
	age := h.control(t, "age")
	container, _ := h.doc.ElementByID("age-error")

	h.orch.ValidateField("age", true)
	if !age.HasClass("is-invalid") || age.HasClass("is-valid") {
		t.Fatalf("unexpected classes %v", age.Classes())
	}
	if v, _ := age.Attr("aria-invalid"); v != "true" {
		t.Fatalf("expected aria-invalid")
	}
	if v, _ := age.Attr("aria-describedby"); v != "age-error" {
		t.Fatalf("expected aria-describedby to point at the container, got %q", v)
	}
	if role, _ := container.Attr("role"); role != "alert" || container.HasAttr("hidden") {
		t.Fatalf("expected visible alert container")
	}
	if container.Text() != "Please enter a value greater than or equal to 18" {
		t.Fatalf("unexpected message %q", container.Text())
	}

	age.SetValue("21")
	h.orch.ValidateField("age", true)
	if !age.HasClass("is-valid") || age.HasClass("is-invalid") || age.HasAttr("aria-invalid") || age.HasAttr("aria-describedby") {
		t.Fatalf("unexpected valid state %v", age.Node().Attr)
	}
	if container.Text() != "" || !container.HasAttr("hidden") || container.HasAttr("role") {
		t.Fatalf("expected container to be emptied and hidden")
	}
}

func TestDisplay_CreatesMissingContainerOnce(t *testing.T) {
	h := newHarness(t)
	h.add(t, "card", model.Rule{Name: model.RuleMinLength, Param: 16})

	h.orch.ValidateField("card", true)
	h.orch.ValidateField("card", true)

	container, ok := h.doc.ElementByID("card-error")
	if !ok {
		t.Fatalf("expected container to be created")
	}
	if v, _ := container.Attr("data-error-for"); v != "card" {
		t.Fatalf("expected container to carry the lookup attribute")
	}
	if n := strings.Count(h.logs.String(), "no error container found"); n != 1 {
		t.Fatalf("expected one warning, got %d", n)
	}
	if n := strings.Count(h.doc.String(), `id="card-error"`); n != 1 {
		t.Fatalf("expected a single container, got %d", n)
	}
}

func TestValidateField_Unregistered(t *testing.T) {
	h := newHarness(t)
	if !h.orch.ValidateField("card", true) {
		t.Fatalf("expected unregistered field to be valid")
	}
	if !strings.Contains(h.logs.String(), "unregistered field") {
		t.Fatalf("expected warning, got %q", h.logs.String())
	}
}

func TestFieldValidity_NativeOnly(t *testing.T) {
	h := newHarness(t)
	v, err := h.orch.FieldValidity("nickname")
	if err != nil {
		t.Fatalf("field validity: %v", err)
	}
	if v.Valid || !v.ValueMissing {
		t.Fatalf("expected native required to fail, got %+v", v.Flags())
	}
	if _, err := h.orch.FieldValidity("ghost"); !errors.Is(err, orchestrator.ErrFieldNotFound) {
		t.Fatalf("expected ErrFieldNotFound, got %v", err)
	}
}

func TestAddField_MergesMarkupConstraints(t *testing.T) {
	h := newHarness(t)
	h.add(t, "nickname", model.Rule{Name: model.RuleAlphanumeric})

	result := h.orch.Validate()
	got, ok := result.Get("nickname")
	if !ok || got.Rule != model.RuleRequired {
		t.Fatalf("expected markup required to be enforced, got %+v", result.Errors)
	}
	if !strings.Contains(h.logs.String(), "field has no label") {
		t.Fatalf("expected missing label warning")
	}
	if got.Message != "This field is required" {
		t.Fatalf("unexpected message %q", got.Message)
	}
}

func TestAddField_ConflictWarning(t *testing.T) {
	doc, err := dom.ParseString(`<form><label for="bio">Bio</label><input id="bio" name="bio" minlength="3" value="abcd"></form>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	form, _ := doc.Form("")
	var logs bytes.Buffer
	orch, err := orchestrator.New(form, orchestrator.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if err := orch.AddField("bio", []model.Rule{{Name: model.RuleMinLength, Param: 5}}); err != nil {
		t.Fatalf("add field: %v", err)
	}
	if !strings.Contains(logs.String(), "declared rule conflicts with markup attribute") {
		t.Fatalf("expected conflict warning, got %q", logs.String())
	}
	if orch.ValidateField("bio", false) {
		t.Fatalf("expected declared minLength 5 to win over markup")
	}
}

func TestSuppressWarnings(t *testing.T) {
	h := newHarness(t, orchestrator.WithSuppressAllWarnings(true))
	h.add(t, "name", model.Rule{Name: "nonexistent"})
	h.orch.ValidateField("name", false)
	if h.logs.Len() != 0 {
		t.Fatalf("expected warnings to be suppressed, got %q", h.logs.String())
	}

	h.orch.SuppressWarnings(false)
	h.orch.ValidateField("name", false)
	if !strings.Contains(h.logs.String(), "unknown validation rule") {
		t.Fatalf("expected warning after re-enabling, got %q", h.logs.String())
	}
}

func TestSuppressWarnings_PerField(t *testing.T) {
	h := newHarness(t)
	if err := h.orch.AddField("nickname", []model.Rule{{Name: "nonexistent"}}, orchestrator.WithFieldSuppressWarnings(true)); err != nil {
		t.Fatalf("add field: %v", err)
	}
	h.orch.ValidateField("nickname", false)
	if h.logs.Len() != 0 {
		t.Fatalf("expected field warnings to be suppressed, got %q", h.logs.String())
	}

	h.add(t, "name", model.Rule{Name: "nonexistent"})
	h.orch.ValidateField("name", false)
	if !strings.Contains(h.logs.String(), "field=name") {
		t.Fatalf("expected warnings for other fields, got %q", h.logs.String())
	}
}

func TestOnSubmit_AlwaysPrevents(t *testing.T) {
	h := newHarness(t)
	h.add(t, "email", model.Rule{Name: model.RuleEmail})

	var results []model.Result
	h.orch.OnSubmit(func(r model.Result) { results = append(results, r) })

	if h.form.Submit() {
		t.Fatalf("expected submit to be prevented")
	}
	if len(results) != 1 || !results[0].Valid {
		t.Fatalf("expected one valid result, got %+v", results)
	}

	h.orch.OnSubmit(func(model.Result) {})
	if h.doc.ListenerCount() != 1 {
		t.Fatalf("expected OnSubmit to replace its listener, got %d", h.doc.ListenerCount())
	}
}

func TestEnableAutoSubmit(t *testing.T) {
	h := newHarness(t)
	h.add(t, "name", model.Rule{Name: model.RuleRequired})
	h.orch.EnableAutoSubmit()

	if h.form.Submit() {
		t.Fatalf("expected invalid form submission to be prevented")
	}
	if !h.control(t, "name").HasClass("error") {
		t.Fatalf("expected UI to be updated on submit")
	}

	h.control(t, "name").SetValue("Ada")
	if !h.form.Submit() {
		t.Fatalf("expected valid form submission to proceed")
	}
}

func TestLiveValidation(t *testing.T) {
	h := newHarness(t, orchestrator.WithValidateOnChange(true), orchestrator.WithValidateOnBlur(true))
	h.add(t, "email", model.Rule{Name: model.RuleEmail})

	email := h.control(t, "email")
	email.Change("broken")
	if !email.HasClass("error") {
		t.Fatalf("expected change to trigger validation")
	}
	email.SetValue("ok@example.com")
	email.Blur()
	if !email.HasClass("success") {
		t.Fatalf("expected blur to trigger validation")
	}

	card := h.control(t, "card")
	card.Change("x")
	if card.HasClass("error") || card.HasClass("success") {
		t.Fatalf("expected unregistered fields to be ignored")
	}
}

func TestDestroy(t *testing.T) {
	h := newHarness(t, orchestrator.WithValidateOnChange(true))
	h.add(t, "name", model.Rule{Name: model.RuleRequired})
	h.orch.OnSubmit(nil)
	h.orch.EnableAutoSubmit()

	foreign := h.form.AddEventListener(dom.EventSubmit, func(*dom.Event) {})
	h.orch.Validate()

	field, _ := dom.LookupField(h.form, "name")
	if _, ok := field.CachedValidity(); !ok {
		t.Fatalf("expected validity to be cached")
	}

	h.orch.Destroy()
	if h.doc.ListenerCount() != 1 {
		t.Fatalf("expected only the foreign listener to remain, got %d", h.doc.ListenerCount())
	}
	if !h.doc.RemoveEventListener(foreign) {
		t.Fatalf("expected foreign listener to survive")
	}
	if _, ok := field.CachedValidity(); ok {
		t.Fatalf("expected cached validity to be removed")
	}
	if field.Primary().HasClass("error") {
		t.Fatalf("expected errors to be cleared")
	}

	h.orch.Destroy()
	if !h.form.Submit() {
		t.Fatalf("expected submission to proceed after destroy")
	}
}

func TestClearErrors(t *testing.T) {
	h := newHarness(t)
	h.add(t, "name", model.Rule{Name: model.RuleRequired})
	h.orch.Validate()

	h.orch.ClearErrors()
	name := h.control(t, "name")
	if name.HasClass("error") || name.HasAttr("aria-invalid") {
		t.Fatalf("expected field state to be cleared")
	}
	if msg := name.NextElementSibling(); msg.Text() != "" || !msg.HasAttr("hidden") {
		t.Fatalf("expected container to be cleared")
	}
}

func TestCustomMessages(t *testing.T) {
	h := newHarness(t, orchestrator.WithCustomMessages(map[model.RuleID]string{
		model.RuleMin: "{label} must be {value} or more",
	}))
	h.add(t, "age", model.Rule{Name: model.RuleMin, Param: 18})

	got, _ := h.orch.Validate().Get("age")
	if got.Message != "Age must be 18 or more" {
		t.Fatalf("unexpected message %q", got.Message)
	}
}

func TestValidate_NativeStepMismatch(t *testing.T) {
	doc, err := dom.ParseString(`<form><label>Qty <input name="qty" type="number" step="5" value="7"></label></form>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	form, _ := doc.Form("")
	orch, err := orchestrator.New(form, orchestrator.WithSuppressAllWarnings(true))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := orch.AddField("qty", []model.Rule{{Name: model.RuleNumeric}}); err != nil {
		t.Fatalf("add field: %v", err)
	}

	got, ok := orch.Validate().Get("qty")
	if !ok || got.Rule != model.RuleStep {
		t.Fatalf("expected step violation, got %+v", got)
	}
	if orch.ValidateField("qty", false) {
		t.Fatalf("expected validateField to agree")
	}
}

func TestFieldError_LeavesUIAlone(t *testing.T) {
	h := newHarness(t)
	h.add(t, "age", model.Rule{Name: model.RuleMin, Param: 18})

	fe, ok := h.orch.FieldError("age")
	if !ok {
		t.Fatalf("expected age to fail")
	}
	want := model.FieldError{Field: "age", Rule: model.RuleMin, Message: "Please enter a value greater than or equal to 18"}
	if diff := cmp.Diff(want, fe); diff != "" {
		t.Fatalf("field error mismatch (-want +got):\n%s", diff)
	}
	if h.control(t, "age").HasClass("error") {
		t.Fatalf("FieldError must not touch the UI")
	}

	h.control(t, "age").SetValue("30")
	if _, ok := h.orch.FieldError("age"); ok {
		t.Fatalf("expected age to pass")
	}
	if _, ok := h.orch.FieldError("unknown"); ok {
		t.Fatalf("unregistered fields report no error")
	}
}

const twoForms = `<!doctype html>
<html><body>
<form id="login">
  <label for="login-email">Email</label>
  <input id="login-email" name="email">
  <div data-error-for="email" hidden></div>
  <p id="email-error"></p>
</form>
<form id="signup">
  <label for="signup-email">Email</label>
  <input id="signup-email" name="email">
  <div data-error-for="email" hidden></div>
  <label for="signup-nick">Nick</label>
  <input id="signup-nick" name="nick">
  <p id="nick-error"></p>
</form>
</body></html>`

func TestValidate_FormsShareDocument(t *testing.T) {
	doc, err := dom.ParseString(twoForms)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	login, _ := doc.Form("login")
	signup, _ := doc.Form("signup")
	quiet := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	loginOrch, err := orchestrator.New(login, orchestrator.WithLogger(quiet))
	if err != nil {
		t.Fatalf("login orchestrator: %v", err)
	}
	signupOrch, err := orchestrator.New(signup, orchestrator.WithLogger(quiet))
	if err != nil {
		t.Fatalf("signup orchestrator: %v", err)
	}
	for _, o := range []*orchestrator.Orchestrator{loginOrch, signupOrch} {
		if err := o.AddField("email", []model.Rule{{Name: model.RuleRequired}}); err != nil {
			t.Fatalf("add email: %v", err)
		}
	}
	if err := signupOrch.AddField("nick", []model.Rule{{Name: model.RuleRequired}}); err != nil {
		t.Fatalf("add nick: %v", err)
	}

	containerOf := func(form *dom.Element) *dom.Element {
		return form.Find(func(el *dom.Element) bool { return el.AttrOr("data-error-for", "") == "email" })
	}

	if result := signupOrch.Validate(); result.Valid {
		t.Fatalf("expected signup to be invalid")
	}
	if got := containerOf(signup).Text(); got != "This field is required" {
		t.Fatalf("expected message in the signup container, got %q", got)
	}
	if got := containerOf(login).Text(); got != "" || !containerOf(login).HasAttr("hidden") {
		t.Fatalf("login container must stay untouched, got %q", got)
	}
	loginErrorP, _ := doc.ElementByID("email-error")
	if loginErrorP.Text() != "" {
		t.Fatalf("login id container must stay untouched, got %q", loginErrorP.Text())
	}

	if result := loginOrch.Validate(); result.Valid {
		t.Fatalf("expected login to be invalid")
	}
	loginOrch.Destroy()
	if got := containerOf(signup).Text(); got != "This field is required" {
		t.Fatalf("destroying login must not reset signup, got %q", got)
	}
}

func TestValidate_HiddenRequiredControlIsSkipped(t *testing.T) {
	doc, err := dom.ParseString(`<form id="f">
  <input type="hidden" name="token" required>
  <fieldset disabled><label for="old">Old</label><input id="old" name="old" required></fieldset>
</form>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	form, _ := doc.Form("f")
	orch, err := orchestrator.New(form, orchestrator.WithSuppressAllWarnings(true))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for _, name := range []string{"token", "old"} {
		if err := orch.AddField(name, nil); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}
	if result := orch.Validate(); !result.Valid {
		t.Fatalf("expected barred controls to pass, got %+v", result.Errors)
	}
}

// failingWarnHandler panics on Warn records once armed, standing in for a
// collaborator that fails mid-validation.
type failingWarnHandler struct{ armed *bool }

func (h failingWarnHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h failingWarnHandler) Handle(_ context.Context, r slog.Record) error {
	if *h.armed && r.Level == slog.LevelWarn {
		panic("log sink failed")
	}
	return nil
}

func (h failingWarnHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h failingWarnHandler) WithGroup(string) slog.Handler      { return h }

func TestValidate_RecoveredPanicReportsField(t *testing.T) {
	doc, err := dom.ParseString(`<form id="f">
  <label for="a">A</label><input id="a" name="a">
  <label for="b">B</label><input id="b" name="b" value="x"><div id="b-error"></div>
</form>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	form, _ := doc.Form("f")
	armed := false
	orch, err := orchestrator.New(form, orchestrator.WithLogger(slog.New(failingWarnHandler{armed: &armed})))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for _, name := range []string{"a", "b"} {
		if err := orch.AddField(name, nil); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}
	a, _ := doc.ElementByID("a")
	a.Remove()
	armed = true

	result := orch.Validate()
	want := []model.FieldError{{Field: "a", Message: "This field is invalid", Rule: model.RuleCustom}}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if result.Valid || result.Err() == nil {
		t.Fatalf("expected an invalid result with an error")
	}
}
