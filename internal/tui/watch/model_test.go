package watch

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/shade/internal/api"
	"github.com/mattjoyce/shade/internal/client"
	"github.com/mattjoyce/shade/internal/events"
	"github.com/mattjoyce/shade/internal/session"
	"github.com/mattjoyce/shade/internal/theme"
)

type fakeAPI struct {
	mu        sync.Mutex
	state     session.State
	calls     []string
	systemErr error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{state: session.State{
		Session:    "0f8c2f4e-1111-2222-3333-444455556666",
		Preference: theme.System,
		System:     theme.ResolvedLight,
		Resolved:   theme.ResolvedLight,
		Themes:     []theme.Theme{theme.Light, theme.Dark, theme.System},
	}}
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAPI) Session() string { return f.state.Session }

func (f *fakeAPI) Health(context.Context) (api.HealthzResponse, error) {
	f.record("health")
	return api.HealthzResponse{Status: "ok", UptimeSeconds: 90, Sessions: 2}, nil
}

func (f *fakeAPI) State(context.Context) (session.State, error) {
	f.record("state")
	return f.state, nil
}

func (f *fakeAPI) SetTheme(_ context.Context, t string) (session.State, error) {
	f.record("set:" + t)
	f.state.Preference = theme.Theme(t)
	return f.state, nil
}

func (f *fakeAPI) Toggle(context.Context) (session.State, error) {
	f.record("toggle")
	return f.state, nil
}

func (f *fakeAPI) SetSystem(_ context.Context, dark bool) (session.State, error) {
	f.record("system")
	if f.systemErr != nil {
		return session.State{}, f.systemErr
	}
	if dark {
		f.state.System, f.state.Resolved = theme.ResolvedDark, theme.ResolvedDark
	}
	return f.state, nil
}

func (f *fakeAPI) Stream(ctx context.Context, _ int64, _ func(events.Event)) error {
	<-ctx.Done()
	return ctx.Err()
}

func update(t *testing.T, m tea.Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	mm, ok := next.(Model)
	require.True(t, ok)
	return mm, cmd
}

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestStateRepaintsPalette(t *testing.T) {
	fake := newFakeAPI()
	m := *New(fake, Options{})
	defer m.cancel()
	assert.False(t, m.palette.Dark)

	st := fake.state
	st.Resolved = theme.ResolvedDark
	m, cmd := update(t, m, stateMsg(st))
	assert.True(t, m.palette.Dark)
	assert.True(t, m.streaming)
	assert.NotNil(t, cmd, "first state starts the event stream")

	m, cmd = update(t, m, stateMsg(fake.state))
	assert.False(t, m.palette.Dark)
	assert.Nil(t, cmd)
}

func TestKeysDriveAPI(t *testing.T) {
	fake := newFakeAPI()
	m := *New(fake, Options{})
	defer m.cancel()
	m, _ = update(t, m, stateMsg(fake.state))

	tests := []struct {
		key  rune
		call string
	}{
		{'t', "toggle"},
		{'l', "set:light"},
		{'d', "set:dark"},
		{'s', "set:system"},
	}
	for _, tt := range tests {
		_, cmd := update(t, m, keyMsg(tt.key))
		require.NotNil(t, cmd, "key %q", tt.key)
		msg := cmd()
		_, ok := msg.(stateMsg)
		assert.True(t, ok, "key %q returned %T", tt.key, msg)
	}
	assert.Equal(t, []string{"toggle", "set:light", "set:dark", "set:system"}, fake.calls)
}

func TestForcedDisablesThemeKeys(t *testing.T) {
	fake := newFakeAPI()
	fake.state.Forced = theme.Dark
	m := *New(fake, Options{})
	defer m.cancel()
	m, _ = update(t, m, stateMsg(fake.state))

	_, cmd := update(t, m, keyMsg('t'))
	assert.Nil(t, cmd)
	assert.Empty(t, fake.calls)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Contains(t, m.View(), "changes disabled")
}

func TestQuitCancelsContext(t *testing.T) {
	m := *New(newFakeAPI(), Options{})
	_, cmd := update(t, m, keyMsg('q'))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Error(t, m.ctx.Err())
}

func TestEventsUpdateLogAndRefetch(t *testing.T) {
	fake := newFakeAPI()
	m := *New(fake, Options{})
	defer m.cancel()

	at := time.Now()
	m, cmd := update(t, m, eventMsg(events.Event{
		ID:   7,
		Type: events.TypeResolved,
		At:   at,
		Data: []byte(`{"preference":"system","system":"dark","resolved":"dark"}`),
	}))
	require.NotNil(t, cmd)
	assert.Equal(t, int64(7), m.lastID)
	assert.Equal(t, at, m.lastEvent)
	require.Len(t, m.eventLog, 1)
	assert.Equal(t, "system (system dark) -> dark", describeEvent(m.eventLog[0]))

	m, _ = update(t, m, eventMsg(events.Event{ID: 3, Type: "other", At: at, Data: []byte(`{}`)}))
	assert.Equal(t, int64(7), m.lastID, "lastID never moves backwards")
	assert.Len(t, m.eventLog, 2)
}

func TestReportSystemIgnoresServerSource(t *testing.T) {
	fake := newFakeAPI()
	fake.systemErr = &client.StatusError{Code: http.StatusConflict}
	assert.Nil(t, reportSystem(context.Background(), fake, true)())

	fake.systemErr = errors.New("boom")
	_, ok := reportSystem(context.Background(), fake, true)().(errMsg)
	assert.True(t, ok)

	fake.systemErr = nil
	msg := reportSystem(context.Background(), fake, true)()
	st, ok := msg.(stateMsg)
	require.True(t, ok)
	assert.Equal(t, theme.ResolvedDark, st.Resolved)
}

func TestViewRendersState(t *testing.T) {
	fake := newFakeAPI()
	m := *New(fake, Options{})
	defer m.cancel()
	assert.Equal(t, "Connecting to shade...", m.View())

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m, _ = update(t, m, stateMsg(fake.state))
	m, _ = update(t, m, healthMsg{Status: "ok", Sessions: 3})

	view := m.View()
	assert.Contains(t, view, "SHADE WATCH")
	assert.Contains(t, view, "[System]")
	assert.Contains(t, view, "sessions: 3")
	assert.Contains(t, view, "0f8c2f4e")
}
