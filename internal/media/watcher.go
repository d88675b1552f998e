package media

import (
	"log/slog"
	"sync"

	"github.com/mattjoyce/shade/internal/theme"
)

// Watcher adapts a Query to theme.SystemWatcher. A nil query is a platform
// without the signal: the watcher stays inert and reports light.
type Watcher struct {
	query  Query
	logger *slog.Logger

	mu          sync.Mutex
	attached    bool
	detached    bool
	unsubscribe func()

	listeners listeners[theme.Resolved]
}

func NewWatcher(query Query, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{query: query, logger: logger}
}

// Attach starts observing the query when enableSystem is set. It does
// nothing after Detach or when already attached.
func (w *Watcher) Attach(enableSystem bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.detached || w.attached || !enableSystem || w.query == nil {
		return
	}

	cancel, err := w.query.Subscribe(w.handle)
	if err != nil {
		w.logger.Warn("failed to set up system theme detection", "error", err)
		return
	}
	w.unsubscribe = cancel
	w.attached = true
}

// CurrentPreference reads the query. It returns light when not attached
// or when the query fails.
func (w *Watcher) CurrentPreference() theme.Resolved {
	w.mu.Lock()
	attached := w.attached
	w.mu.Unlock()
	if !attached {
		return theme.ResolvedLight
	}

	dark, err := w.query.Matches()
	if err != nil {
		w.logger.Warn("failed to read system theme", "error", err)
		return theme.ResolvedLight
	}
	return toResolved(dark)
}

// OnChange registers fn for system preference changes.
func (w *Watcher) OnChange(fn func(theme.Resolved)) func() {
	return w.listeners.add(fn)
}

// Detach stops observing and drops every listener. It is idempotent and
// safe to call from inside a change callback.
func (w *Watcher) Detach() {
	w.mu.Lock()
	if w.detached {
		w.mu.Unlock()
		return
	}
	w.detached = true
	w.attached = false
	unsubscribe := w.unsubscribe
	w.unsubscribe = nil
	w.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	w.listeners.clear()
}

func (w *Watcher) handle(dark bool) {
	w.mu.Lock()
	attached := w.attached
	w.mu.Unlock()
	if !attached {
		return
	}
	w.listeners.notify(toResolved(dark))
}

func toResolved(dark bool) theme.Resolved {
	if dark {
		return theme.ResolvedDark
	}
	return theme.ResolvedLight
}
