package media

import (
	"strings"
	"sync"
)

// HintQuery is a settable query. The API feeds it from the
// Sec-CH-Prefers-Color-Scheme client hint and from PUT /api/system.
type HintQuery struct {
	mu        sync.Mutex
	dark      bool
	listeners listeners[bool]
}

func NewHintQuery(dark bool) *HintQuery {
	return &HintQuery{dark: dark}
}

func (q *HintQuery) Matches() (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dark, nil
}

func (q *HintQuery) Subscribe(fn func(bool)) (func(), error) {
	return q.listeners.add(fn), nil
}

// Set records the new signal and notifies subscribers when it changed.
func (q *HintQuery) Set(dark bool) {
	q.mu.Lock()
	changed := q.dark != dark
	q.dark = dark
	q.mu.Unlock()
	if changed {
		q.listeners.notify(dark)
	}
}

// ParseHint interprets a Sec-CH-Prefers-Color-Scheme value ("dark" or
// "light", optionally quoted). ok is false for anything else.
func ParseHint(v string) (dark bool, ok bool) {
	switch strings.ToLower(strings.Trim(strings.TrimSpace(v), `"`)) {
	case "dark":
		return true, true
	case "light":
		return false, true
	default:
		return false, false
	}
}
