// Package logging provides a bounded in-process log buffer exposed as a
// slog.Handler, so a running session's recent records can be inspected
// without scraping process output.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Entry is one captured log record.
type Entry struct {
	Time     time.Time
	Level    slog.Level
	Category string
	Message  string
	Context  map[string]string
}

const defaultRingCapacity = 500

// ring is the bounded buffer shared by a handler and all its clones.
type ring struct {
	mu       sync.Mutex
	entries  []Entry
	capacity int
}

func (r *ring) add(e Entry) {
	r.mu.Lock()
	r.entries = append(r.entries, e)
	if len(r.entries) > r.capacity {
		r.entries = r.entries[len(r.entries)-r.capacity:]
	}
	r.mu.Unlock()
}

// RingHandler is a slog.Handler that keeps the most recent records in a
// bounded ring and optionally forwards them to an inner handler.
// Clones produced by WithAttrs and WithGroup share the same ring, so
// all derived loggers feed one buffer. Safe for concurrent use.
type RingHandler struct {
	ring  *ring
	inner slog.Handler
	attrs []slog.Attr
	group string
}

// NewRingHandler creates a handler retaining up to capacity records.
// inner may be nil.
func NewRingHandler(capacity int, inner slog.Handler) *RingHandler {
	if capacity <= 0 {
		capacity = defaultRingCapacity
	}
	return &RingHandler{ring: &ring{capacity: capacity}, inner: inner}
}

// Enabled implements slog.Handler.
func (h *RingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if h.inner != nil {
		return h.inner.Enabled(ctx, level)
	}
	return true
}

// Handle implements slog.Handler.
func (h *RingHandler) Handle(ctx context.Context, record slog.Record) error {
	entry := Entry{
		Time:    record.Time,
		Level:   record.Level,
		Message: record.Message,
		Context: make(map[string]string),
	}

	collect := func(a slog.Attr) {
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		if key == "category" {
			entry.Category = a.Value.String()
			return
		}
		entry.Context[key] = fmt.Sprint(a.Value.Any())
	}
	for _, a := range h.attrs {
		collect(a)
	}
	record.Attrs(func(a slog.Attr) bool {
		collect(a)
		return true
	})
	if len(entry.Context) == 0 {
		entry.Context = nil
	}

	h.ring.add(entry)

	if h.inner != nil {
		return h.inner.Handle(ctx, record)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *RingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	if h.inner != nil {
		clone.inner = h.inner.WithAttrs(attrs)
	}
	return &clone
}

// WithGroup implements slog.Handler.
func (h *RingHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if h.group != "" {
		clone.group = h.group + "." + name
	} else {
		clone.group = name
	}
	if h.inner != nil {
		clone.inner = h.inner.WithGroup(name)
	}
	return &clone
}

// Entries returns a copy of the buffered records, oldest first.
func (h *RingHandler) Entries() []Entry {
	h.ring.mu.Lock()
	defer h.ring.mu.Unlock()
	out := make([]Entry, len(h.ring.entries))
	copy(out, h.ring.entries)
	return out
}

// EntriesByCategory returns buffered records whose category matches.
func (h *RingHandler) EntriesByCategory(category string) []Entry {
	h.ring.mu.Lock()
	defer h.ring.mu.Unlock()
	var out []Entry
	for _, e := range h.ring.entries {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

// Clear drops all buffered records.
func (h *RingHandler) Clear() {
	h.ring.mu.Lock()
	defer h.ring.mu.Unlock()
	h.ring.entries = nil
}
