package events

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Event types published by theme sessions.
const (
	TypeResolved   = "theme.resolved"
	TypePreference = "theme.preference"
	TypeSession    = "session.closed"
)

type Event struct {
	ID      int64     `json:"id"`
	Type    string    `json:"type"`
	Session string    `json:"session,omitempty"`
	At      time.Time `json:"at"`
	Data    []byte    `json:"data"` // JSON payload
}

// ThemeState is the payload of theme.resolved and theme.preference.
type ThemeState struct {
	Preference string `json:"preference"`
	System     string `json:"system"`
	Resolved   string `json:"resolved"`
	Forced     string `json:"forced,omitempty"`
}

// Hub is an in-memory pub/sub with a small ring buffer for late clients.
type Hub struct {
	nextID atomic.Int64

	mu    sync.Mutex
	ring  []Event
	start int
	size  int

	subs      map[int]subscriber
	nextSubID int
}

type subscriber struct {
	session string
	ch      chan Event
}

func NewHub(capacity int) *Hub {
	if capacity <= 0 {
		capacity = 100
	}
	return &Hub{
		ring: make([]Event, capacity),
		subs: make(map[int]subscriber),
	}
}

// Publish records an event for session ("" for process-wide events) and
// fans it out to matching subscribers.
func (h *Hub) Publish(session, eventType string, data any) Event {
	id := h.nextID.Add(1)

	payload := []byte("{}")
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			payload = b
		}
	}

	ev := Event{
		ID:      id,
		Type:    eventType,
		Session: session,
		At:      time.Now().UTC(),
		Data:    payload,
	}

	h.mu.Lock()
	h.pushLocked(ev)
	for _, sub := range h.subs {
		if !matches(sub.session, ev) {
			continue
		}
		// Don't let slow clients block producers.
		select {
		case sub.ch <- ev:
		default:
		}
	}
	h.mu.Unlock()
	return ev
}

// Subscribe delivers events for session. An empty session receives every
// event.
func (h *Hub) Subscribe(session string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextSubID
	h.nextSubID++
	ch := make(chan Event, 128)
	h.subs[id] = subscriber{session: session, ch: ch}

	cancel := func() {
		h.mu.Lock()
		if s, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(s.ch)
		}
		h.mu.Unlock()
	}

	return ch, cancel
}

// SnapshotSince returns buffered events for session with ID > lastID,
// oldest-first. If lastID is 0, the full ring buffer snapshot is returned.
func (h *Hub) SnapshotSince(session string, lastID int64) []Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Event, 0, h.size)
	for i := 0; i < h.size; i++ {
		ev := h.ring[(h.start+i)%len(h.ring)]
		if !matches(session, ev) {
			continue
		}
		if lastID == 0 || ev.ID > lastID {
			out = append(out, ev)
		}
	}
	return out
}

// Subscribers returns the number of open subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func matches(session string, ev Event) bool {
	return session == "" || ev.Session == "" || ev.Session == session
}

func (h *Hub) pushLocked(ev Event) {
	capacity := len(h.ring)
	if capacity == 0 {
		return
	}

	if h.size < capacity {
		idx := (h.start + h.size) % capacity
		h.ring[idx] = ev
		h.size++
		return
	}

	// Overwrite oldest.
	h.ring[h.start] = ev
	h.start = (h.start + 1) % capacity
}
