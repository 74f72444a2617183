package board

import (
	"encoding/json"
	"sync"
	"time"
)

// Event types pushed over the board stream.
const (
	EventShapeCreated   = "shape_created"
	EventShapeUpdated   = "shape_updated"
	EventCommandApplied = "command_applied"
)

// Event is the envelope sent to board stream subscribers.
type Event struct {
	Type      string          `json:"type"`
	BoardID   string          `json:"board_id"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"ts"`
}

// Hub fans board events out to subscribers. Broadcast never blocks; slow
// subscribers lose events rather than stalling command execution.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]map[chan Event]struct{})}
}

// Subscribe registers a listener for one board's events. The returned cancel
// func removes the listener and closes the channel; calling it more than once
// is a no-op.
func (h *Hub) Subscribe(boardID string) (chan Event, func()) {
	ch := make(chan Event, 16)
	h.mu.Lock()
	listeners := h.subscribers[boardID]
	if listeners == nil {
		listeners = make(map[chan Event]struct{})
		h.subscribers[boardID] = listeners
	}
	listeners[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			listeners := h.subscribers[boardID]
			if listeners != nil {
				delete(listeners, ch)
				if len(listeners) == 0 {
					delete(h.subscribers, boardID)
				}
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Broadcast delivers an event to every subscriber of its board.
func (h *Hub) Broadcast(event Event) {
	if h == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	h.mu.RLock()
	for ch := range h.subscribers[event.BoardID] {
		select {
		case ch <- event:
		default:
		}
	}
	h.mu.RUnlock()
}

// SubscriberCount reports the number of listeners on a board.
func (h *Hub) SubscriberCount(boardID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[boardID])
}
