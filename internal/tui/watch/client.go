package watch

import (
	"context"
	"errors"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattjoyce/shade/internal/api"
	"github.com/mattjoyce/shade/internal/client"
	"github.com/mattjoyce/shade/internal/events"
	"github.com/mattjoyce/shade/internal/session"
)

// API is the subset of client.Client the TUI drives.
type API interface {
	Session() string
	Health(ctx context.Context) (api.HealthzResponse, error)
	State(ctx context.Context) (session.State, error)
	SetTheme(ctx context.Context, theme string) (session.State, error)
	Toggle(ctx context.Context) (session.State, error)
	SetSystem(ctx context.Context, dark bool) (session.State, error)
	Stream(ctx context.Context, lastID int64, fn func(events.Event)) error
}

var _ API = (*client.Client)(nil)

// --- Message types ---

type eventMsg events.Event

type stateMsg session.State

type healthMsg api.HealthzResponse

type tickMsg time.Time

type errMsg error

type sseDisconnectedMsg struct{}
type reconnectMsg struct{}

// --- Commands ---

const requestTimeout = 5 * time.Second

// subscribeToEvents streams the session's events into ch. Returns
// sseDisconnectedMsg when the connection drops.
func subscribeToEvents(ctx context.Context, c API, lastID int64, ch chan<- events.Event) tea.Cmd {
	return func() tea.Msg {
		_ = c.Stream(ctx, lastID, func(ev events.Event) {
			select {
			case ch <- ev:
			case <-ctx.Done():
			}
		})
		if ctx.Err() != nil {
			return nil
		}
		return sseDisconnectedMsg{}
	}
}

// receiveNextEvent waits for the next event from the channel.
func receiveNextEvent(ctx context.Context, ch <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-ch:
			return eventMsg(ev)
		case <-ctx.Done():
			return nil
		}
	}
}

func stateCmd(ctx context.Context, call func(context.Context) (session.State, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		st, err := call(ctx)
		if err != nil {
			return errMsg(err)
		}
		return stateMsg(st)
	}
}

func fetchState(ctx context.Context, c API) tea.Cmd {
	return stateCmd(ctx, c.State)
}

func setTheme(ctx context.Context, c API, theme string) tea.Cmd {
	return stateCmd(ctx, func(ctx context.Context) (session.State, error) {
		return c.SetTheme(ctx, theme)
	})
}

func toggleTheme(ctx context.Context, c API) tea.Cmd {
	return stateCmd(ctx, c.Toggle)
}

// reportSystem pushes the terminal's background as the session's system
// signal. A 409 means the server has its own source and is not an error.
func reportSystem(ctx context.Context, c API, dark bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		st, err := c.SetSystem(ctx, dark)
		var se *client.StatusError
		if errors.As(err, &se) && se.Code == http.StatusConflict {
			return nil
		}
		if err != nil {
			return errMsg(err)
		}
		return stateMsg(st)
	}
}

// fetchHealth queries the /healthz endpoint.
func fetchHealth(ctx context.Context, c API) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		h, err := c.Health(ctx)
		if err != nil {
			return errMsg(err)
		}
		return healthMsg(h)
	}
}
