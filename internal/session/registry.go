// Package session keeps one theme engine per browser session.
package session

import (
	"context"
	"database/sql"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mattjoyce/shade/internal/dom"
	"github.com/mattjoyce/shade/internal/events"
	"github.com/mattjoyce/shade/internal/media"
	"github.com/mattjoyce/shade/internal/storage"
	"github.com/mattjoyce/shade/internal/theme"
)

// Options configures a Registry.
type Options struct {
	Theme theme.Config
	// DB backs preferences with SQLite. When nil each session gets an
	// in-memory store that is lost when the session is pruned.
	DB *sql.DB
	// Query is a process-wide system signal shared by all sessions. When nil
	// each session gets its own HintQuery fed by its client.
	Query media.Query
	// IdleTTL destroys sessions not seen for this long. Zero disables pruning.
	IdleTTL time.Duration
	// Retention purges stored preferences not written for this long.
	// Zero keeps them forever.
	Retention time.Duration
	Hub       *events.Hub
	Logger    *slog.Logger
}

// Registry owns the live sessions.
type Registry struct {
	opts   Options
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

func NewRegistry(opts Options) *Registry {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Hub == nil {
		opts.Hub = events.NewHub(100)
	}
	return &Registry{
		opts:     opts,
		logger:   opts.Logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Hub returns the hub sessions publish to.
func (r *Registry) Hub() *events.Hub { return r.opts.Hub }

// Config returns the theme configuration every session shares.
func (r *Registry) Config() theme.Config { return r.opts.Theme }

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Get returns a live session and marks it as seen.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if ok {
		s.touch(r.now())
	}
	return s, ok
}

// IDs returns the live session IDs, sorted.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Open returns the session for id, creating it when needed. An id that is
// not a UUID is replaced by a fresh one, so callers must use the returned
// session's ID. hint, when set, is the client's dark-mode signal.
func (r *Registry) Open(id string, hint *bool) (*Session, bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, false, ErrClosed
	}
	if s, ok := r.sessions[id]; ok {
		s.touch(r.now())
		r.mu.Unlock()
		if hint != nil {
			s.SetSystemHint(*hint)
		}
		return s, false, nil
	}

	s := r.newSession(id, hint)
	r.sessions[id] = s
	r.mu.Unlock()

	s.Do(func(e *theme.Engine) {
		<-theme.Bootstrap(e, theme.Interactive)
	})
	r.logger.Info("session opened", "session_id", id)
	return s, true, nil
}

func (r *Registry) newSession(id string, hint *bool) *Session {
	logger := r.logger.With(slog.String("session_id", id))

	var kv storage.KV
	if r.opts.DB != nil {
		kv = storage.NewSQLiteKV(r.opts.DB, id)
	} else {
		kv = storage.NewMemoryKV()
	}

	s := &Session{
		ID:      id,
		root:    dom.NewNode(),
		hub:     r.opts.Hub,
		created: r.now(),
	}
	s.lastSeen.Store(s.created.UnixNano())

	query := r.opts.Query
	if query == nil {
		s.hint = media.NewHintQuery(hint != nil && *hint)
		query = s.hint
	}

	s.engine = theme.NewEngine(
		r.opts.Theme,
		storage.NewManager(kv, logger),
		media.NewWatcher(query, logger),
		dom.NewApplier(s.root, logger),
		theme.WithLogger(logger),
		theme.WithDispatcher(s.dispatch),
	)
	s.engine.Subscribe(func(theme.Resolved) { s.publishLocked(events.TypeResolved) })
	s.engine.OnPreferenceChange(func(theme.Theme) { s.publishLocked(events.TypePreference) })
	return s
}

// Prune destroys sessions idle for longer than IdleTTL and returns how many
// were removed.
func (r *Registry) Prune() int {
	if r.opts.IdleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.opts.IdleTTL)

	r.mu.Lock()
	var stale []*Session
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		s.destroy()
		r.logger.Info("session pruned", "session_id", s.ID)
	}
	return len(stale)
}

// Run prunes idle sessions and purges old stored preferences until ctx is
// done, then closes the registry.
func (r *Registry) Run(ctx context.Context) error {
	interval := r.opts.IdleTTL / 2
	if interval <= 0 || interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Close()
			return nil
		case <-ticker.C:
			r.Prune()
			r.purge(ctx)
		}
	}
}

func (r *Registry) purge(ctx context.Context) {
	if r.opts.DB == nil || r.opts.Retention <= 0 {
		return
	}
	n, err := storage.PurgeBefore(ctx, r.opts.DB, r.now().Add(-r.opts.Retention))
	if err != nil {
		r.logger.Warn("failed to purge stored preferences", "error", err)
		return
	}
	if n > 0 {
		r.logger.Info("purged stored preferences", "rows", n)
	}
}

// Close destroys every session. Open fails afterwards.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	all := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	r.sessions = map[string]*Session{}
	r.mu.Unlock()

	for _, s := range all {
		s.destroy()
	}
}
