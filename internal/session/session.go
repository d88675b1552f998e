package session

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mattjoyce/shade/internal/dom"
	"github.com/mattjoyce/shade/internal/events"
	"github.com/mattjoyce/shade/internal/media"
	"github.com/mattjoyce/shade/internal/theme"
)

// ErrClosed is returned by Open after the registry is closed.
var ErrClosed = errors.New("session registry is closed")

// Session is one browser's theme engine with its document root.
type Session struct {
	ID string

	mu     sync.Mutex
	engine *theme.Engine
	root   *dom.Node
	hint   *media.HintQuery
	hub    *events.Hub

	created  time.Time
	lastSeen atomic.Int64
}

// Do runs fn with exclusive access to the session's engine. fn must not
// call back into the session.
func (s *Session) Do(fn func(e *theme.Engine)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.engine)
}

// dispatch is the engine's Dispatcher: watcher callbacks arriving on other
// goroutines wait for the session like any direct call.
func (s *Session) dispatch(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// SetSystemHint forwards the client's dark-mode signal. It does nothing when
// the registry uses a shared system query.
func (s *Session) SetSystemHint(dark bool) {
	if s.hint != nil {
		s.hint.Set(dark)
	}
}

// AcceptsHints reports whether the session's system signal comes from its
// client rather than a shared server-side query.
func (s *Session) AcceptsHints() bool { return s.hint != nil }

// Root is the session's document root element.
func (s *Session) Root() *dom.Node { return s.root }

func (s *Session) Created() time.Time { return s.created }

func (s *Session) LastSeen() time.Time { return time.Unix(0, s.lastSeen.Load()) }

func (s *Session) touch(t time.Time) { s.lastSeen.Store(t.UnixNano()) }

// State is a point-in-time view of a session.
type State struct {
	Session     string         `json:"session"`
	Preference  theme.Theme    `json:"preference"`
	System      theme.Resolved `json:"system"`
	Resolved    theme.Resolved `json:"resolved"`
	Forced      theme.Theme    `json:"forced,omitempty"`
	Initialized bool           `json:"initialized"`
	Themes      []theme.Theme  `json:"themes"`
	Root        dom.Snapshot   `json:"root"`
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	e := s.engine
	cfg := e.Config()
	return State{
		Session:     s.ID,
		Preference:  e.Preference(),
		System:      e.SystemPreference(),
		Resolved:    e.ResolvedTheme(),
		Forced:      cfg.ForcedTheme,
		Initialized: e.Initialized(),
		Themes:      cfg.Themes(),
		Root:        s.root.Snapshot(),
	}
}

// publishLocked runs inside engine callbacks, which only fire while the
// session lock is held.
func (s *Session) publishLocked(eventType string) {
	if s.hub == nil {
		return
	}
	st := s.stateLocked()
	s.hub.Publish(s.ID, eventType, events.ThemeState{
		Preference: string(st.Preference),
		System:     string(st.System),
		Resolved:   string(st.Resolved),
		Forced:     string(st.Forced),
	})
}

func (s *Session) destroy() {
	s.Do(func(e *theme.Engine) { e.Destroy() })
	if s.hub != nil {
		s.hub.Publish(s.ID, events.TypeSession, nil)
	}
}
