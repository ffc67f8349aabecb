package dom

// Data returns a value from the element data store.
func (e *Element) Data(key string) (any, bool) {
	if e == nil || e.doc == nil {
		return nil, false
	}
	entries, ok := e.doc.data[e.node]
	if !ok {
		return nil, false
	}
	v, ok := entries[key]
	return v, ok
}

// SetData stores a value next to the element. Data is never rendered.
func (e *Element) SetData(key string, value any) {
	entries, ok := e.doc.data[e.node]
	if !ok {
		entries = make(map[string]any)
		e.doc.data[e.node] = entries
	}
	entries[key] = value
}

// DeleteData removes a key from the element data store.
func (e *Element) DeleteData(key string) {
	entries, ok := e.doc.data[e.node]
	if !ok {
		return
	}
	delete(entries, key)
	if len(entries) == 0 {
		delete(e.doc.data, e.node)
	}
}
