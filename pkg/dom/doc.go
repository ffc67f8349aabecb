// Package dom models the parts of a browser document a form validator talks
// to: elements and attributes, control values, markup constraint flags,
// bubbling events, a per-element data store, error containers and labels.
//
// Documents are parsed with golang.org/x/net/html and can be rendered back
// after validation has annotated them:
//
//	doc, _ := dom.ParseString(markup)
//	form, _ := doc.Form("#signup")
//	field, _ := dom.LookupField(form, "email")
//	field.Set("someone@example.com")
//	_ = field.Value() // model.Text("someone@example.com")
package dom
