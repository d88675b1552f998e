// Package watch implements the shade system watch TUI: a theme picker for
// one session that repaints itself in the session's resolved theme.
package watch

import "github.com/charmbracelet/lipgloss"

// Palette centralizes all styling for the watch TUI. There is one palette
// per resolved theme.
type Palette struct {
	Dark bool

	Border    lipgloss.Style
	Title     lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Selected  lipgloss.Style
	Dim       lipgloss.Style
	Highlight lipgloss.Style
	OK        lipgloss.Style
	Failed    lipgloss.Style
	Help      lipgloss.Style
}

// NewPalette returns the dark or light palette.
func NewPalette(dark bool) Palette {
	if dark {
		return newPalette(true, paletteColors{
			fg:     "#E6EDF3",
			muted:  "#9198A1",
			accent: "#4493F8",
			border: "#874BFD",
			warm:   "#E5C07B",
			ok:     "#3FB950",
			bad:    "#F85149",
		})
	}
	return newPalette(false, paletteColors{
		fg:     "#1F2328",
		muted:  "#59636E",
		accent: "#0969DA",
		border: "#8250DF",
		warm:   "#9A6700",
		ok:     "#1A7F37",
		bad:    "#CF222E",
	})
}

type paletteColors struct {
	fg, muted, accent, border, warm, ok, bad string
}

func newPalette(dark bool, c paletteColors) Palette {
	return Palette{
		Dark: dark,
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(c.border)),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(c.fg)).
			Padding(0, 1),
		Label:     lipgloss.NewStyle().Foreground(lipgloss.Color(c.muted)).Width(12),
		Value:     lipgloss.NewStyle().Foreground(lipgloss.Color(c.fg)).Bold(true),
		Selected:  lipgloss.NewStyle().Foreground(lipgloss.Color(c.accent)).Bold(true),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color(c.muted)),
		Highlight: lipgloss.NewStyle().Foreground(lipgloss.Color(c.warm)),
		OK:        lipgloss.NewStyle().Foreground(lipgloss.Color(c.ok)),
		Failed:    lipgloss.NewStyle().Foreground(lipgloss.Color(c.bad)),
		Help:      lipgloss.NewStyle().Foreground(lipgloss.Color(c.muted)),
	}
}
