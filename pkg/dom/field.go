package dom

import (
	"strings"

	"github.com/goliatone/go-formguard/pkg/model"
)

// ValidityKey is the data store key holding the last computed validity of
// a field, written on its first control.
const ValidityKey = "formguard.validity"

// Controls returns the value-carrying controls of a form: its descendants
// plus controls elsewhere in the document pointing at it with form="id".
func (e *Element) Controls() []*Element {
	controls := e.FindAll(func(el *Element) bool {
		return el.IsControl() && el.Name() != ""
	})
	if id := e.ID(); id != "" {
		for _, el := range e.doc.Root().FindAll(func(el *Element) bool {
			return el.IsControl() && el.Name() != "" && el.AttrOr("form", "") == id && !e.Contains(el)
		}) {
			controls = append(controls, el)
		}
	}
	return controls
}

// ControlsNamed returns the controls of a form sharing a name.
func (e *Element) ControlsNamed(name string) []*Element {
	var out []*Element
	for _, el := range e.Controls() {
		if el.Name() == name {
			out = append(out, el)
		}
	}
	return out
}

// FieldNames lists the distinct control names of a form in document order.
func (e *Element) FieldNames() []string {
	seen := make(map[string]bool)
	var out []string
	for _, el := range e.Controls() {
		if !seen[el.Name()] {
			seen[el.Name()] = true
			out = append(out, el.Name())
		}
	}
	return out
}

// Field is a named field of a form: one control or a group of controls
// sharing a name (checkbox groups, radio groups).
type Field struct {
	form     *Element
	name     string
	controls []*Element
}

var (
	_ model.FieldContext      = (*Field)(nil)
	_ model.NativeConstraints = (*Field)(nil)
	_ model.ValidityCache     = (*Field)(nil)
)

// LookupField resolves a named field of a form.
func LookupField(form *Element, name string) (*Field, bool) {
	if form == nil || name == "" {
		return nil, false
	}
	controls := form.ControlsNamed(name)
	if len(controls) == 0 {
		return nil, false
	}
	return &Field{form: form, name: name, controls: controls}, true
}

func (f *Field) Name() string { return f.name }

// Form returns the owning form.
func (f *Field) Form() *Element { return f.form }

// Controls returns the elements backing the field.
func (f *Field) Controls() []*Element { return append([]*Element(nil), f.controls...) }

// Primary returns the first control; UI state is attached to it.
func (f *Field) Primary() *Element { return f.controls[0] }

// Type returns the type of the first control.
func (f *Field) Type() string { return f.Primary().Type() }

// Grouped reports whether the field is backed by several checkable controls
// or uses the "name[]" array convention.
func (f *Field) Grouped() bool {
	return len(f.controls) > 1 || strings.HasSuffix(f.name, "[]")
}

// Value extracts the current value by control type: a lone checkbox yields
// a Bool, checkbox groups and multi-selects yield a List, radios yield the
// checked value, file inputs yield Files, number and range inputs yield a
// Number when parseable. Everything else is Text.
func (f *Field) Value() model.Value {
	primary := f.Primary()
	switch primary.Type() {
	case "checkbox":
		if !f.Grouped() {
			return model.Bool(primary.Checked())
		}
		checked := []string{}
		for _, c := range f.controls {
			if c.Checked() {
				checked = append(checked, c.Value())
			}
		}
		return model.List(checked...)
	case "radio":
		for _, c := range f.controls {
			if c.Checked() {
				return model.Text(c.Value())
			}
		}
		return model.Text("")
	case "select-multiple":
		return model.List(primary.SelectedValues()...)
	case "file":
		return model.Files(primary.Files()...)
	case "number", "range":
		raw := primary.Value()
		if n, ok := model.ParseNumber(raw); ok {
			return model.Number(n)
		}
		return model.Text(raw)
	}
	if f.Grouped() {
		values := make([]string, 0, len(f.controls))
		for _, c := range f.controls {
			values = append(values, c.Value())
		}
		return model.List(values...)
	}
	return model.Text(primary.Value())
}

// Sibling resolves another field of the same form.
func (f *Field) Sibling(name string) (model.FieldContext, bool) {
	other, ok := LookupField(f.form, name)
	if !ok {
		return nil, false
	}
	return other, true
}

// CacheValidity stores the computed validity on the primary control.
func (f *Field) CacheValidity(v model.Validity) {
	f.Primary().SetData(ValidityKey, v)
}

// CachedValidity returns the last cached validity, if any.
func (f *Field) CachedValidity() (model.Validity, bool) {
	v, ok := f.Primary().Data(ValidityKey)
	if !ok {
		return model.Validity{}, false
	}
	validity, ok := v.(model.Validity)
	return validity, ok
}

// ClearCachedValidity removes the cached validity.
func (f *Field) ClearCachedValidity() {
	f.Primary().DeleteData(ValidityKey)
}

// Set assigns a raw value the way a user would: checkable groups check the
// controls whose value is listed, multi-selects select the listed options,
// file inputs attach the names, everything else takes the first value.
func (f *Field) Set(values ...string) {
	primary := f.Primary()
	switch primary.Type() {
	case "checkbox", "radio":
		if primary.Type() == "checkbox" && !f.Grouped() {
			on := len(values) > 0 && values[0] != "" && values[0] != "false" && values[0] != "off"
			primary.SetChecked(on)
			return
		}
		want := make(map[string]bool, len(values))
		for _, v := range values {
			want[v] = true
		}
		for _, c := range f.controls {
			c.RemoveAttr("checked")
		}
		for _, c := range f.controls {
			if want[c.Value()] {
				c.SetChecked(true)
			}
		}
	case "select-multiple":
		primary.SetSelected(values...)
	case "file":
		primary.SetFiles(values...)
	default:
		value := ""
		if len(values) > 0 {
			value = values[0]
		}
		primary.SetValue(value)
	}
}
