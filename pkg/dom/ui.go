package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrorMessageClass marks error containers found by adjacency and created
// on demand.
const ErrorMessageClass = "error-message"

// ContainerID is the conventional id of the error container of a field.
func ContainerID(name string) string {
	return strings.TrimSuffix(name, "[]") + "-error"
}

// ErrorContainer looks up the element that displays the field's error
// message, trying in order: an element whose attr equals the field name,
// the conventional id, and the next element sibling of the field (or of its
// wrapping label) carrying the error-message class. Only elements owned by
// the field's form are considered, so forms sharing a document and field
// names never see each other's containers.
func (f *Field) ErrorContainer(attr string) (*Element, bool) {
	if attr != "" {
		byAttr := func(el *Element) bool {
			v, ok := el.Attr(attr)
			return ok && v == f.name && !el.IsControl()
		}
		if found := f.form.Find(byAttr); found != nil {
			return found, true
		}
		for _, el := range f.form.doc.Root().FindAll(byAttr) {
			if f.owns(el) {
				return el, true
			}
		}
	}
	id := ContainerID(f.name)
	if found := f.form.Find(func(el *Element) bool { return el.ID() == id }); found != nil {
		return found, true
	}
	if el, ok := f.form.doc.ElementByID(id); ok && f.owns(el) {
		return el, true
	}
	if next := f.anchor().NextElementSibling(); next != nil && next.HasClass(ErrorMessageClass) {
		return next, true
	}
	return nil, false
}

// owns reports whether el belongs to the field's form: inside it, associated
// with form="id", or placed right after one of the field's controls.
func (f *Field) owns(el *Element) bool {
	if f.form.Contains(el) {
		return true
	}
	if id := f.form.ID(); id != "" && el.AttrOr("form", "") == id {
		return true
	}
	for _, c := range f.controls {
		if next := f.lift(c).NextElementSibling(); next != nil && next.Is(el) {
			return true
		}
	}
	return false
}

// CreateErrorContainer inserts an empty, hidden container right after the
// field (after its wrapping label when there is one).
func (f *Field) CreateErrorContainer(attr string) *Element {
	container := f.form.doc.CreateElement("div")
	container.SetAttr("class", ErrorMessageClass)
	if attr != "" {
		container.SetAttr(attr, f.name)
	}
	container.SetAttr("id", ContainerID(f.name))
	container.SetAttr("hidden", "")
	f.anchor().InsertAfter(container)
	return container
}

// anchor is the element after which UI for the field is placed: the last
// control, lifted to its wrapping label.
func (f *Field) anchor() *Element {
	return f.lift(f.controls[len(f.controls)-1])
}

func (f *Field) lift(control *Element) *Element {
	if label := control.Closest("label"); label != nil && f.form.Contains(label) {
		return label
	}
	return control
}

// Label finds the <label> describing the field: label[for=id] first, then a
// wrapping label.
func (f *Field) Label() (*Element, bool) {
	primary := f.Primary()
	if id := primary.ID(); id != "" {
		found := f.form.doc.Root().Find(func(el *Element) bool {
			return el.node.DataAtom == atom.Label && el.AttrOr("for", "") == id
		})
		if found != nil {
			return found, true
		}
	}
	if label := primary.Closest("label"); label != nil {
		return label, true
	}
	return nil, false
}

// LabelText returns the human readable label of the field: the label text
// (without nested control text), then aria-label. It reports false when the
// field has no accessible name.
func (f *Field) LabelText() (string, bool) {
	if label, ok := f.Label(); ok {
		if text := strings.Join(strings.Fields(labelText(label)), " "); text != "" {
			return strings.TrimSuffix(text, ":"), true
		}
	}
	if aria := strings.TrimSpace(f.Primary().AttrOr("aria-label", "")); aria != "" {
		return aria, true
	}
	return "", false
}

func labelText(label *Element) string {
	var b strings.Builder
	for c := label.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
			continue
		}
		wrapped := label.doc.wrap(c)
		if c.Type != html.ElementNode || wrapped.IsControl() || c.DataAtom == atom.Option {
			continue
		}
		b.WriteString(" ")
		b.WriteString(labelText(wrapped))
	}
	return b.String()
}
