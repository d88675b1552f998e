package watch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mattjoyce/shade/internal/events"
	"github.com/mattjoyce/shade/internal/session"
	"github.com/mattjoyce/shade/internal/theme"
)

// Options configures the watch TUI.
type Options struct {
	// TerminalDark, when set, is reported as the session's system signal.
	TerminalDark *bool
}

// Model is the main BubbleTea model for the watch TUI.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	api    API
	opts   Options

	width  int
	height int

	// State
	state     session.State
	haveState bool
	health    HealthState
	eventLog  []events.Event
	lastEvent time.Time
	lastID    int64
	streaming bool

	// UI state
	palette Palette
	keys    keyMap
	help    help.Model

	// Communication
	hubEvents chan events.Event

	// Error display
	lastError string
}

// New creates a new watch TUI model.
func New(c API, opts Options) *Model {
	ctx, cancel := context.WithCancel(context.Background())
	return &Model{
		ctx:       ctx,
		cancel:    cancel,
		api:       c,
		opts:      opts,
		eventLog:  make([]events.Event, 0),
		hubEvents: make(chan events.Event, 100),
		palette:   NewPalette(opts.TerminalDark != nil && *opts.TerminalDark),
		keys:      newKeyMap(),
		help:      help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	first := fetchState(m.ctx, m.api)
	if m.opts.TerminalDark != nil {
		// Reporting also returns the state, and opens the session first.
		first = reportSystem(m.ctx, m.api, *m.opts.TerminalDark)
	}
	return tea.Batch(
		first,
		fetchHealth(m.ctx, m.api),
		tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) }),
		tea.EnterAltScreen,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.cancel()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Toggle):
			return m, toggleTheme(m.ctx, m.api)
		case key.Matches(msg, m.keys.Light):
			return m, setTheme(m.ctx, m.api, string(theme.Light))
		case key.Matches(msg, m.keys.Dark):
			return m, setTheme(m.ctx, m.api, string(theme.Dark))
		case key.Matches(msg, m.keys.System):
			return m, setTheme(m.ctx, m.api, string(theme.System))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tickMsg:
		return m, tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })

	case stateMsg:
		m.applyState(session.State(msg))
		if !m.streaming {
			// The session exists now, so the stream binds to it.
			m.streaming = true
			return m, tea.Batch(
				subscribeToEvents(m.ctx, m.api, m.lastID, m.hubEvents),
				receiveNextEvent(m.ctx, m.hubEvents),
			)
		}

	case eventMsg:
		e := events.Event(msg)

		// Update event log (newest first)
		m.eventLog = append([]events.Event{e}, m.eventLog...)
		if len(m.eventLog) > maxEventLog {
			m.eventLog = m.eventLog[:maxEventLog]
		}
		m.lastEvent = e.At
		if e.ID > m.lastID {
			m.lastID = e.ID
		}
		m.health.Connected = true

		cmds := []tea.Cmd{receiveNextEvent(m.ctx, m.hubEvents)}
		switch e.Type {
		case events.TypeResolved, events.TypePreference:
			cmds = append(cmds, fetchState(m.ctx, m.api))
		case events.TypeSession:
			// The server pruned the session; the next request reopens it
			// under the same id and the stored preference. The stream ends
			// and reconnects on its own.
			m.lastError = "session closed by server, reopening"
			cmds = append(cmds, fetchState(m.ctx, m.api))
		}
		return m, tea.Batch(cmds...)

	case healthMsg:
		m.health.Status = msg.Status
		m.health.UptimeSeconds = msg.UptimeSeconds
		m.health.Sessions = msg.Sessions
		m.health.Connected = true
		m.health.LastCheck = time.Now()

		return m, tea.Tick(5*time.Second, func(time.Time) tea.Msg {
			return fetchHealth(m.ctx, m.api)()
		})

	case sseDisconnectedMsg:
		m.health.Connected = false
		m.lastError = "SSE disconnected, reconnecting..."
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return reconnectMsg{}
		})

	case reconnectMsg:
		return m, subscribeToEvents(m.ctx, m.api, m.lastID, m.hubEvents)

	case errMsg:
		m.lastError = msg.Error()
		m.health.Connected = false
		return m, tea.Tick(5*time.Second, func(time.Time) tea.Msg {
			return fetchHealth(m.ctx, m.api)()
		})
	}

	return m, nil
}

func (m *Model) applyState(st session.State) {
	m.state = st
	m.haveState = true
	m.lastError = ""
	m.palette = NewPalette(st.Resolved == theme.ResolvedDark)
	m.keys.setEnabled(st.Forced == "")
}

func (m Model) View() string {
	if m.width == 0 {
		return "Connecting to shade..."
	}
	p := m.palette

	header := renderHeader(m.health, m.api.Session(), m.lastEvent, p, m.width)
	picker := renderPicker(m.state, m.haveState, p, m.width)
	eventLog := renderEventLog(m.eventLog, p, m.width)

	parts := []string{header, picker, eventLog}
	if m.lastError != "" {
		parts = append(parts, p.Failed.Render(fmt.Sprintf(" ! %s", m.lastError)))
	}
	m.help.Styles.ShortKey = p.Selected
	m.help.Styles.ShortDesc = p.Help
	m.help.Styles.FullKey = p.Selected
	m.help.Styles.FullDesc = p.Help
	parts = append(parts, " "+m.help.View(m.keys))

	return lipgloss.NewStyle().Margin(1, 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, parts...),
	)
}

func renderPicker(st session.State, ok bool, p Palette, width int) string {
	innerWidth := width - 4
	if !ok {
		return p.Border.Width(innerWidth).Render(p.Dim.Render(" Loading theme state..."))
	}

	choices := make([]string, 0, len(st.Themes))
	for _, t := range st.Themes {
		label := strings.ToUpper(string(t[:1])) + string(t[1:])
		if t == st.Preference {
			choices = append(choices, p.Selected.Render("["+label+"]"))
		} else {
			choices = append(choices, p.Dim.Render(" "+label+" "))
		}
	}

	rows := []string{
		p.Label.Render("Preference") + strings.Join(choices, " "),
		p.Label.Render("System") + p.Value.Render(string(st.System)),
		p.Label.Render("Resolved") + p.Value.Render(string(st.Resolved)),
	}
	if st.Forced != "" {
		rows = append(rows, p.Label.Render("Forced")+p.Highlight.Render(string(st.Forced)+" (changes disabled)"))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		p.Title.Render("THEME"),
		lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(rows, "\n")),
	)
	return p.Border.Width(innerWidth).Render(content)
}
