package watch

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle key.Binding
	Light  key.Binding
	Dark   key.Binding
	System key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Toggle: key.NewBinding(key.WithKeys("t", " "), key.WithHelp("t", "toggle")),
		Light:  key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "light")),
		Dark:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dark")),
		System: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "system")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Light, k.Dark, k.System},
		{k.Help, k.Quit},
	}
}

// setEnabled turns the theme bindings off while a theme is forced.
func (k *keyMap) setEnabled(enabled bool) {
	k.Toggle.SetEnabled(enabled)
	k.Light.SetEnabled(enabled)
	k.Dark.SetEnabled(enabled)
	k.System.SetEnabled(enabled)
}
