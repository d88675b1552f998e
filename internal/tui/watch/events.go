package watch

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mattjoyce/shade/internal/events"
)

const maxEventLog = 50

func renderEventLog(eventLog []events.Event, p Palette, width int) string {
	innerWidth := width - 4

	if len(eventLog) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			p.Title.Render("EVENTS"),
			p.Dim.Render("  Waiting for events..."),
		)
		return p.Border.Width(innerWidth).Render(content)
	}

	var lines []string
	for i, e := range eventLog {
		if i >= 8 {
			break
		}
		lines = append(lines, formatEvent(e, p))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		p.Title.Render("EVENTS"),
		lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(lines, "\n")),
	)
	return p.Border.Width(innerWidth).Render(content)
}

func formatEvent(e events.Event, p Palette) string {
	ts := p.Dim.Render(e.At.Format("15:04:05"))

	typeStyle := p.Dim
	switch e.Type {
	case events.TypeResolved:
		typeStyle = p.Highlight
	case events.TypePreference:
		typeStyle = p.Selected
	case events.TypeSession:
		typeStyle = p.Failed
	}
	typeName := typeStyle.Render(fmt.Sprintf("%-18s", e.Type))

	return fmt.Sprintf("%s %s %s", ts, typeName, describeEvent(e))
}

func describeEvent(e events.Event) string {
	var st events.ThemeState
	if err := json.Unmarshal(e.Data, &st); err != nil || st.Resolved == "" {
		raw := string(e.Data)
		if len(raw) > 60 {
			raw = raw[:60] + "..."
		}
		return raw
	}
	desc := fmt.Sprintf("%s (system %s) -> %s", st.Preference, st.System, st.Resolved)
	if st.Forced != "" {
		desc += " forced"
	}
	return desc
}
