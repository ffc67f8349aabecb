package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrFormNotFound is returned when a document has no matching <form>.
var ErrFormNotFound = errors.New("dom: form not found")

// Document is a parsed HTML document plus the runtime state a browser keeps
// next to the markup: event listeners and per-element data.
type Document struct {
	root      *html.Node
	listeners []*listener
	data      map[*html.Node]map[string]any
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	return &Document{
		root: root,
		data: make(map[*html.Node]map[string]any),
	}, nil
}

// ParseString parses HTML markup held in a string.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// Render writes the current markup of the document.
func (d *Document) Render(w io.Writer) error {
	if d == nil || d.root == nil {
		return errors.New("dom: document is nil")
	}
	return html.Render(w, d.root)
}

// String renders the document to a string, returning "" on failure.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// Root returns the document node wrapped as an element.
func (d *Document) Root() *Element {
	return d.wrap(d.root)
}

// Forms returns every <form> element in document order.
func (d *Document) Forms() []*Element {
	return d.Root().FindAll(func(e *Element) bool {
		return e.node.DataAtom == atom.Form
	})
}

// Form resolves a form by selector: "" picks the first form, "#id" or a bare
// value matches the id first and the name attribute second.
func (d *Document) Form(selector string) (*Element, error) {
	forms := d.Forms()
	if len(forms) == 0 {
		return nil, ErrFormNotFound
	}
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return forms[0], nil
	}
	key := strings.TrimPrefix(selector, "#")
	for _, form := range forms {
		if form.ID() == key {
			return form, nil
		}
	}
	for _, form := range forms {
		if form.Name() == key {
			return form, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrFormNotFound, selector)
}

// ElementByID returns the first element with the given id.
func (d *Document) ElementByID(id string) (*Element, bool) {
	if id == "" {
		return nil, false
	}
	found := d.Root().Find(func(e *Element) bool {
		return e.ID() == id
	})
	return found, found != nil
}

// CreateElement returns a detached element owned by the document.
func (d *Document) CreateElement(tag string) *Element {
	tag = strings.ToLower(strings.TrimSpace(tag))
	return d.wrap(&html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	})
}

func (d *Document) wrap(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	return &Element{doc: d, node: n}
}
