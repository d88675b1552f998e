package session

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/shade/internal/events"
	"github.com/mattjoyce/shade/internal/log"
	"github.com/mattjoyce/shade/internal/media"
	"github.com/mattjoyce/shade/internal/storage"
	"github.com/mattjoyce/shade/internal/theme"
)

func newRegistry(t *testing.T, opts Options) *Registry {
	t.Helper()
	if opts.Theme == (theme.Config{}) {
		opts.Theme = theme.DefaultConfig()
	}
	opts.Logger = log.Discard()
	r := NewRegistry(opts)
	t.Cleanup(r.Close)
	return r
}

func boolPtr(b bool) *bool { return &b }

func TestOpenCreatesInitializedSession(t *testing.T) {
	r := newRegistry(t, Options{})

	s, created, err := r.Open("not-a-uuid", boolPtr(true))
	require.NoError(t, err)
	assert.True(t, created)
	_, err = uuid.Parse(s.ID)
	assert.NoError(t, err)

	st := s.State()
	assert.True(t, st.Initialized)
	assert.Equal(t, theme.System, st.Preference)
	assert.Equal(t, theme.ResolvedDark, st.Resolved)
	assert.Equal(t, "dark", st.Root.Attributes["data-theme"])
	assert.Equal(t, "dark", st.Root.Style["color-scheme"])

	again, created, err := r.Open(s.ID, nil)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, s, again)
	assert.Equal(t, 1, r.Len())
}

func TestSessionHintDrivesResolvedTheme(t *testing.T) {
	hub := events.NewHub(10)
	r := newRegistry(t, Options{Hub: hub})

	s, _, err := r.Open("", nil)
	require.NoError(t, err)
	ch, cancel := hub.Subscribe(s.ID)
	defer cancel()

	s.SetSystemHint(true)
	assert.Equal(t, theme.ResolvedDark, s.State().Resolved)

	ev := <-ch
	assert.Equal(t, events.TypeResolved, ev.Type)
	var payload events.ThemeState
	require.NoError(t, json.Unmarshal(ev.Data, &payload))
	assert.Equal(t, "dark", payload.Resolved)
	assert.Equal(t, "system", payload.Preference)

	_, _, err = r.Open(s.ID, boolPtr(false))
	require.NoError(t, err)
	assert.Equal(t, theme.ResolvedLight, s.State().Resolved)
}

func TestSessionPreferenceSurvivesRestartWithSQLite(t *testing.T) {
	db, err := storage.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "shade.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	first := newRegistry(t, Options{DB: db})
	s, _, err := first.Open("", nil)
	require.NoError(t, err)
	var setErr error
	s.Do(func(e *theme.Engine) { setErr = e.SetTheme(theme.Dark) })
	require.NoError(t, setErr)
	first.Close()

	second := newRegistry(t, Options{DB: db})
	restored, created, err := second.Open(s.ID, nil)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, theme.Dark, restored.State().Preference)
}

func TestSharedQuery(t *testing.T) {
	q := media.NewHintQuery(false)
	r := newRegistry(t, Options{Query: q})

	a, _, err := r.Open("", nil)
	require.NoError(t, err)
	b, _, err := r.Open("", boolPtr(true))
	require.NoError(t, err)
	assert.Equal(t, theme.ResolvedLight, b.State().Resolved, "client hints are ignored with a shared query")

	q.Set(true)
	assert.Equal(t, theme.ResolvedDark, a.State().Resolved)
	assert.Equal(t, theme.ResolvedDark, b.State().Resolved)
}

func TestPrune(t *testing.T) {
	hub := events.NewHub(10)
	r := newRegistry(t, Options{IdleTTL: time.Minute, Hub: hub})
	now := time.Now()
	r.now = func() time.Time { return now }

	old, _, err := r.Open("", nil)
	require.NoError(t, err)

	now = now.Add(45 * time.Second)
	fresh, _, err := r.Open("", nil)
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	assert.Equal(t, 1, r.Prune())

	_, ok := r.Get(old.ID)
	assert.False(t, ok)
	_, ok = r.Get(fresh.ID)
	assert.True(t, ok)

	var destroyed bool
	old.Do(func(e *theme.Engine) { destroyed = e.Destroyed() })
	assert.True(t, destroyed)

	closed := hub.SnapshotSince(old.ID, 0)
	require.NotEmpty(t, closed)
	assert.Equal(t, events.TypeSession, closed[len(closed)-1].Type)
}

func TestAutoInitDisabled(t *testing.T) {
	cfg, _ := theme.Resolve(theme.Options{EnableAutoInit: boolPtr(false)})
	r := newRegistry(t, Options{Theme: cfg})

	s, _, err := r.Open("", nil)
	require.NoError(t, err)
	assert.False(t, s.State().Initialized)
	assert.Empty(t, s.State().Root.Style)

	s.Do(func(e *theme.Engine) { e.Initialize(theme.Interactive) })
	assert.True(t, s.State().Initialized)
}

func TestClose(t *testing.T) {
	r := newRegistry(t, Options{})
	s, _, err := r.Open("", nil)
	require.NoError(t, err)

	r.Close()
	r.Close()
	assert.Equal(t, 0, r.Len())

	var destroyed bool
	s.Do(func(e *theme.Engine) { destroyed = e.Destroyed() })
	assert.True(t, destroyed)

	_, _, err = r.Open("", nil)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRunStopsOnCancel(t *testing.T) {
	r := newRegistry(t, Options{})
	_, _, err := r.Open("", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.Equal(t, 0, r.Len())
}
