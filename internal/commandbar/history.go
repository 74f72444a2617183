// Package commandbar is the client-side command orchestration layer: a
// three-state submission machine, best-effort pronoun resolution against
// recent command history, and the HTTP client for the /ai-command endpoint.
package commandbar

import (
	"sync"
	"time"
)

// Entry is one submitted command in the bar's history. ShapeIDs are the
// shapes that submission created, newest commands carry the freshest
// referents for pronoun resolution.
type Entry struct {
	Command  string
	Resolved string
	ShapeIDs []string
	At       time.Time
}

// History is a bounded ring of recent command entries. Safe for concurrent
// use.
type History struct {
	mu      sync.RWMutex
	entries []Entry
	max     int
}

// DefaultHistorySize bounds the ring when no size is given.
const DefaultHistorySize = 50

// NewHistory creates a ring holding at most max entries.
func NewHistory(max int) *History {
	if max <= 0 {
		max = DefaultHistorySize
	}
	return &History{max: max}
}

// Add appends an entry, evicting the oldest when full.
func (h *History) Add(entry Entry) {
	if entry.At.IsZero() {
		entry.At = time.Now()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, entry)
	if len(h.entries) > h.max {
		h.entries = h.entries[len(h.entries)-h.max:]
	}
}

// AttachShapes records the shape ids a submission created on the newest
// entry. The executor callback learns the server-assigned ids after the bar
// has already logged the command, so attachment happens separately.
func (h *History) AttachShapes(ids []string) {
	if len(ids) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return
	}
	last := &h.entries[len(h.entries)-1]
	last.ShapeIDs = append(last.ShapeIDs, ids...)
}

// Recent returns entries newest first.
func (h *History) Recent() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Entry, len(h.entries))
	for i, e := range h.entries {
		out[len(h.entries)-1-i] = e
	}
	return out
}

// LastCreatedShape returns the most recently created shape id, scanning
// newest first.
func (h *History) LastCreatedShape() (string, bool) {
	for _, entry := range h.Recent() {
		if len(entry.ShapeIDs) > 0 {
			return entry.ShapeIDs[len(entry.ShapeIDs)-1], true
		}
	}
	return "", false
}
