package watch

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// HealthState tracks server health from /healthz polling.
type HealthState struct {
	Status        string
	UptimeSeconds int64
	Sessions      int
	Connected     bool
	LastCheck     time.Time
}

func renderHeader(health HealthState, session string, lastEvent time.Time, p Palette, width int) string {
	innerWidth := width - 4

	statusText := p.OK.Render("CONNECTED")
	if !health.Connected {
		statusText = p.Failed.Render("CONNECTING")
	} else if health.Status != "ok" && health.Status != "" {
		statusText = p.Failed.Render("DEGRADED")
	}

	clock := p.Dim.Render(time.Now().Format("15:04:05"))
	titleText := p.Title.Render("SHADE WATCH")
	pad := innerWidth - lipgloss.Width(titleText) - lipgloss.Width(clock) - 2
	if pad < 1 {
		pad = 1
	}
	titleLine := titleText + strings.Repeat(" ", pad) + clock + " "

	uptime := formatDuration(time.Duration(health.UptimeSeconds) * time.Second)
	statsLine := fmt.Sprintf(" %s  up %s  sessions: %d", statusText, uptime, health.Sessions)

	lastEventStr := "never"
	if !lastEvent.IsZero() {
		lastEventStr = fmt.Sprintf("%s ago", time.Since(lastEvent).Round(time.Second))
	}
	sessionLine := p.Dim.Render(fmt.Sprintf(" session %s  last event %s", shortID(session), lastEventStr))

	content := lipgloss.JoinVertical(lipgloss.Left, titleLine, statsLine, sessionLine)
	return p.Border.Width(innerWidth).Render(content)
}

func shortID(id string) string {
	if id == "" {
		return "(pending)"
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
