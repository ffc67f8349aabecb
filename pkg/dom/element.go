package dom

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element wraps an element node of a Document.
type Element struct {
	doc  *Document
	node *html.Node
}

// Document returns the owning document.
func (e *Element) Document() *Document { return e.doc }

// Node exposes the underlying html node.
func (e *Element) Node() *html.Node { return e.node }

// Tag returns the lowercased tag name.
func (e *Element) Tag() string {
	if e == nil || e.node == nil || e.node.Type != html.ElementNode {
		return ""
	}
	return e.node.Data
}

// Is reports whether two wrappers point at the same node.
func (e *Element) Is(other *Element) bool {
	return e != nil && other != nil && e.node == other.node
}

// Attr returns the value of an attribute.
func (e *Element) Attr(key string) (string, bool) {
	if e == nil || e.node == nil {
		return "", false
	}
	for _, attr := range e.node.Attr {
		if attr.Namespace == "" && strings.EqualFold(attr.Key, key) {
			return attr.Val, true
		}
	}
	return "", false
}

// AttrOr returns the attribute value or fallback when it is absent.
func (e *Element) AttrOr(key, fallback string) string {
	if v, ok := e.Attr(key); ok {
		return v
	}
	return fallback
}

// HasAttr reports whether the attribute is present.
func (e *Element) HasAttr(key string) bool {
	_, ok := e.Attr(key)
	return ok
}

// SetAttr sets or replaces an attribute.
func (e *Element) SetAttr(key, value string) {
	key = strings.ToLower(key)
	for i, attr := range e.node.Attr {
		if attr.Namespace == "" && attr.Key == key {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: key, Val: value})
}

// RemoveAttr deletes an attribute if present.
func (e *Element) RemoveAttr(key string) {
	e.node.Attr = slices.DeleteFunc(e.node.Attr, func(attr html.Attribute) bool {
		return attr.Namespace == "" && strings.EqualFold(attr.Key, key)
	})
}

// ToggleAttr adds a boolean attribute when on is true and removes it otherwise.
func (e *Element) ToggleAttr(key string, on bool) {
	if on {
		if !e.HasAttr(key) {
			e.SetAttr(key, "")
		}
		return
	}
	e.RemoveAttr(key)
}

func (e *Element) ID() string   { return e.AttrOr("id", "") }
func (e *Element) Name() string { return e.AttrOr("name", "") }

// Classes returns the class list.
func (e *Element) Classes() []string {
	return strings.Fields(e.AttrOr("class", ""))
}

func (e *Element) HasClass(class string) bool {
	return slices.Contains(e.Classes(), class)
}

// AddClass appends a class once.
func (e *Element) AddClass(class string) {
	if class == "" || e.HasClass(class) {
		return
	}
	e.SetAttr("class", strings.TrimSpace(e.AttrOr("class", "")+" "+class))
}

// RemoveClass drops every occurrence of a class. An emptied class attribute
// is removed.
func (e *Element) RemoveClass(class string) {
	if !e.HasAttr("class") {
		return
	}
	classes := slices.DeleteFunc(e.Classes(), func(c string) bool { return c == class })
	if len(classes) == 0 {
		e.RemoveAttr("class")
		return
	}
	e.SetAttr("class", strings.Join(classes, " "))
}

// Text returns the concatenated text content.
func (e *Element) Text() string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.node)
	return b.String()
}

// SetText replaces every child with a single text node.
func (e *Element) SetText(text string) {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
	if text != "" {
		e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

// Parent returns the parent element, nil at the top of the tree.
func (e *Element) Parent() *Element {
	for p := e.node.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return e.doc.wrap(p)
		}
	}
	return nil
}

// Closest returns the nearest ancestor (or the element itself) with tag.
func (e *Element) Closest(tag string) *Element {
	for n := e.node; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && n.Data == tag {
			return e.doc.wrap(n)
		}
	}
	return nil
}

// Contains reports whether other is a descendant of e.
func (e *Element) Contains(other *Element) bool {
	if other == nil {
		return false
	}
	for n := other.node.Parent; n != nil; n = n.Parent {
		if n == e.node {
			return true
		}
	}
	return false
}

// NextElementSibling skips text and comment nodes.
func (e *Element) NextElementSibling() *Element {
	for n := e.node.NextSibling; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode {
			return e.doc.wrap(n)
		}
	}
	return nil
}

// Children returns the direct child elements.
func (e *Element) Children() []*Element {
	var out []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, e.doc.wrap(c))
		}
	}
	return out
}

// FindAll returns the descendants matching match in document order.
func (e *Element) FindAll(match func(*Element) bool) []*Element {
	var out []*Element
	e.walk(func(el *Element) bool {
		if match(el) {
			out = append(out, el)
		}
		return true
	})
	return out
}

// Find returns the first descendant matching match.
func (e *Element) Find(match func(*Element) bool) *Element {
	var found *Element
	e.walk(func(el *Element) bool {
		if match(el) {
			found = el
			return false
		}
		return true
	})
	return found
}

func (e *Element) walk(visit func(*Element) bool) {
	var rec func(*html.Node) bool
	rec = func(n *html.Node) bool {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && !visit(e.doc.wrap(c)) {
				return false
			}
			if !rec(c) {
				return false
			}
		}
		return true
	}
	rec(e.node)
}

// InsertAfter places child right after e in e's parent.
func (e *Element) InsertAfter(child *Element) {
	if e.node.Parent == nil || child == nil {
		return
	}
	if child.node.Parent != nil {
		child.node.Parent.RemoveChild(child.node)
	}
	e.node.Parent.InsertBefore(child.node, e.node.NextSibling)
}

// AppendChild adds child as the last child of e.
func (e *Element) AppendChild(child *Element) {
	if child == nil {
		return
	}
	if child.node.Parent != nil {
		child.node.Parent.RemoveChild(child.node)
	}
	e.node.AppendChild(child.node)
}

// Remove detaches the element from the tree.
func (e *Element) Remove() {
	if e.node.Parent != nil {
		e.node.Parent.RemoveChild(e.node)
	}
}

// IsForm reports whether the element is a <form>.
func (e *Element) IsForm() bool {
	return e != nil && e.node != nil && e.node.Type == html.ElementNode && e.node.DataAtom == atom.Form
}

// IsControl reports whether the element is a form-associated control that
// carries a value.
func (e *Element) IsControl() bool {
	switch e.node.DataAtom {
	case atom.Input, atom.Select, atom.Textarea:
		return true
	}
	return false
}
