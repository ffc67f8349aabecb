package orchestrator

import (
	"context"
	"log/slog"
	"sync"
)

// warningSwitch holds the suppression state shared by every handler derived
// from one orchestrator logger.
type warningSwitch struct {
	mu     sync.RWMutex
	all    bool
	fields map[string]bool
}

func (s *warningSwitch) setAll(on bool) {
	s.mu.Lock()
	s.all = on
	s.mu.Unlock()
}

func (s *warningSwitch) setField(name string, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !on {
		delete(s.fields, name)
		return
	}
	if s.fields == nil {
		s.fields = make(map[string]bool)
	}
	s.fields[name] = true
}

func (s *warningSwitch) silenced(field string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.all || (field != "" && s.fields[field])
}

// warningGate wraps a slog.Handler and drops warning records while
// suppression is on, globally or for the field named by the record's
// "field" attribute. Errors always pass.
type warningGate struct {
	next  slog.Handler
	state *warningSwitch
	field string
}

func newWarningGate(next slog.Handler, state *warningSwitch) slog.Handler {
	return &warningGate{next: next, state: state}
}

func (h *warningGate) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *warningGate) Handle(ctx context.Context, rec slog.Record) error {
	if rec.Level >= slog.LevelWarn && rec.Level < slog.LevelError {
		field := h.field
		rec.Attrs(func(attr slog.Attr) bool {
			if attr.Key == "field" {
				field = attr.Value.String()
				return false
			}
			return true
		})
		if h.state.silenced(field) {
			return nil
		}
	}
	return h.next.Handle(ctx, rec)
}

func (h *warningGate) WithAttrs(attrs []slog.Attr) slog.Handler {
	field := h.field
	for _, attr := range attrs {
		if attr.Key == "field" {
			field = attr.Value.String()
		}
	}
	return &warningGate{next: h.next.WithAttrs(attrs), state: h.state, field: field}
}

func (h *warningGate) WithGroup(name string) slog.Handler {
	return &warningGate{next: h.next.WithGroup(name), state: h.state, field: h.field}
}
