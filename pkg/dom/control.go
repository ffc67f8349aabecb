package dom

import (
	"strings"

	"golang.org/x/net/html/atom"
)

const (
	filesKey          = "dom.files"
	customValidityKey = "dom.customValidity"
)

// Type returns the control type the way HTMLInputElement.type reports it:
// lowercased input types defaulting to "text", select-one / select-multiple
// and textarea.
func (e *Element) Type() string {
	switch e.node.DataAtom {
	case atom.Input:
		kind := strings.ToLower(strings.TrimSpace(e.AttrOr("type", "")))
		if kind == "" {
			return "text"
		}
		return kind
	case atom.Select:
		if e.HasAttr("multiple") {
			return "select-multiple"
		}
		return "select-one"
	case atom.Textarea:
		return "textarea"
	case atom.Button:
		return strings.ToLower(e.AttrOr("type", "submit"))
	}
	return e.Tag()
}

// Value returns the current value of a control. Checkable inputs report
// their value attribute ("on" when absent); selects report the first
// selected option.
func (e *Element) Value() string {
	switch e.node.DataAtom {
	case atom.Textarea:
		return e.Text()
	case atom.Select:
		selected := e.SelectedValues()
		if len(selected) == 0 {
			return ""
		}
		return selected[0]
	case atom.Input:
		switch e.Type() {
		case "checkbox", "radio":
			return e.AttrOr("value", "on")
		}
	}
	return e.AttrOr("value", "")
}

// SetValue updates a control the way assigning .value does. For selects it
// selects the matching option; for checkboxes and radios it changes the
// value attribute, not the checked state.
func (e *Element) SetValue(value string) {
	switch e.node.DataAtom {
	case atom.Textarea:
		e.SetText(value)
	case atom.Select:
		e.SetSelected(value)
	default:
		e.SetAttr("value", value)
	}
}

// Checked reports the checked state of checkboxes and radios.
func (e *Element) Checked() bool {
	return e.HasAttr("checked")
}

// SetChecked toggles the checked state. Checking a radio unchecks the other
// radios of the same group within its form.
func (e *Element) SetChecked(on bool) {
	e.ToggleAttr("checked", on)
	if !on || e.Type() != "radio" || e.Name() == "" {
		return
	}
	scope := e.Closest("form")
	if scope == nil {
		scope = e.doc.Root()
	}
	for _, other := range scope.FindAll(func(el *Element) bool {
		return el.node.DataAtom == atom.Input && el.Type() == "radio" && el.Name() == e.Name()
	}) {
		if !other.Is(e) {
			other.RemoveAttr("checked")
		}
	}
}

// Options returns the <option> descendants of a select.
func (e *Element) Options() []*Element {
	return e.FindAll(func(el *Element) bool { return el.node.DataAtom == atom.Option })
}

// OptionValue returns the submitted value of an <option>: its value
// attribute, or its collapsed text.
func (e *Element) OptionValue() string { return optionValue(e) }

func optionValue(opt *Element) string {
	if v, ok := opt.Attr("value"); ok {
		return v
	}
	return strings.Join(strings.Fields(opt.Text()), " ")
}

// SelectedValues lists the values of selected options. A single select
// without an explicitly selected option falls back to its first enabled
// option, as browsers do.
func (e *Element) SelectedValues() []string {
	var out []string
	options := e.Options()
	for _, opt := range options {
		if opt.HasAttr("selected") {
			out = append(out, optionValue(opt))
		}
	}
	if len(out) > 0 || e.HasAttr("multiple") {
		if len(out) > 1 && !e.HasAttr("multiple") {
			return out[len(out)-1:]
		}
		return out
	}
	for _, opt := range options {
		if !opt.HasAttr("disabled") {
			return []string{optionValue(opt)}
		}
	}
	return nil
}

// SetSelected selects the options whose value is listed and deselects the
// rest. A single select keeps at most the last match.
func (e *Element) SetSelected(values ...string) {
	want := make(map[string]bool, len(values))
	for _, v := range values {
		want[v] = true
	}
	options := e.Options()
	multiple := e.HasAttr("multiple")
	var last *Element
	for _, opt := range options {
		opt.RemoveAttr("selected")
		if want[optionValue(opt)] {
			if multiple {
				opt.SetAttr("selected", "")
			}
			last = opt
		}
	}
	if !multiple && last != nil {
		last.SetAttr("selected", "")
	}
}

// Files returns the names of the files attached to a file input.
func (e *Element) Files() []string {
	v, ok := e.Data(filesKey)
	if !ok {
		return nil
	}
	files, _ := v.([]string)
	return append([]string(nil), files...)
}

// SetFiles attaches file names to a file input. Markup cannot carry a file
// selection so it lives in the element data store.
func (e *Element) SetFiles(names ...string) {
	if len(names) == 0 {
		e.DeleteData(filesKey)
		return
	}
	e.SetData(filesKey, append([]string(nil), names...))
}

// SetCustomValidity stores a custom validity message; an empty message
// clears it.
func (e *Element) SetCustomValidity(message string) {
	if message == "" {
		e.DeleteData(customValidityKey)
		return
	}
	e.SetData(customValidityKey, message)
}

// CustomValidity returns the stored custom validity message.
func (e *Element) CustomValidity() string {
	v, _ := e.Data(customValidityKey)
	s, _ := v.(string)
	return s
}

// Disabled reports whether the control or an ancestor fieldset is disabled.
func (e *Element) Disabled() bool {
	if e.HasAttr("disabled") {
		return true
	}
	for p := e.Parent(); p != nil; p = p.Parent() {
		if p.node.DataAtom == atom.Fieldset && p.HasAttr("disabled") {
			return true
		}
	}
	return false
}
