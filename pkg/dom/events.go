package dom

import (
	"slices"

	"github.com/google/uuid"
	"golang.org/x/net/html"
)

// EventType names a dispatched event.
type EventType string

const (
	EventInput  EventType = "input"
	EventChange EventType = "change"
	EventBlur   EventType = "blur"
	EventSubmit EventType = "submit"
)

// Event is delivered to listeners. Every event bubbles from its target to
// the document root so a listener on a form sees events of its controls.
type Event struct {
	Type          EventType
	Target        *Element
	CurrentTarget *Element

	defaultPrevented bool
	stopped          bool
}

// PreventDefault cancels the default action of the event.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether a listener cancelled the event.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// StopPropagation stops the event from reaching further ancestors.
func (e *Event) StopPropagation() { e.stopped = true }

// Listener handles an event.
type Listener func(*Event)

// ListenerID identifies a registered listener for later removal.
type ListenerID string

type listener struct {
	id   ListenerID
	node *html.Node
	typ  EventType
	fn   Listener
}

// AddEventListener registers fn for events of type t reaching e.
func (e *Element) AddEventListener(t EventType, fn Listener) ListenerID {
	id := ListenerID(uuid.NewString())
	e.doc.listeners = append(e.doc.listeners, &listener{id: id, node: e.node, typ: t, fn: fn})
	return id
}

// RemoveEventListener unregisters a listener and reports whether it existed.
func (d *Document) RemoveEventListener(id ListenerID) bool {
	before := len(d.listeners)
	d.listeners = slices.DeleteFunc(d.listeners, func(l *listener) bool { return l.id == id })
	return len(d.listeners) != before
}

// ListenerCount returns the number of registered listeners.
func (d *Document) ListenerCount() int { return len(d.listeners) }

// Dispatch fires an event at e and bubbles it up the tree. Listeners added
// during dispatch do not see the event in flight.
func (e *Element) Dispatch(t EventType) *Event {
	ev := &Event{Type: t, Target: e}
	snapshot := slices.Clone(e.doc.listeners)
	for n := e.node; n != nil && !ev.stopped; n = n.Parent {
		for _, l := range snapshot {
			if l.node != n || l.typ != t || !e.doc.registered(l.id) {
				continue
			}
			ev.CurrentTarget = e.doc.wrap(n)
			l.fn(ev)
		}
	}
	ev.CurrentTarget = nil
	return ev
}

func (d *Document) registered(id ListenerID) bool {
	return slices.ContainsFunc(d.listeners, func(l *listener) bool { return l.id == id })
}

// Change sets the value of a control and fires a change event. Checkboxes
// and radios interpret "" and "false" as unchecked, anything else as
// checked.
func (e *Element) Change(value string) *Event {
	switch e.Type() {
	case "checkbox", "radio":
		e.SetChecked(value != "" && value != "false")
	default:
		e.SetValue(value)
	}
	return e.Dispatch(EventChange)
}

// Blur fires a blur event at e.
func (e *Element) Blur() *Event { return e.Dispatch(EventBlur) }

// Submit fires a submit event at a form and reports whether the submission
// would proceed.
func (e *Element) Submit() bool {
	return !e.Dispatch(EventSubmit).DefaultPrevented()
}
