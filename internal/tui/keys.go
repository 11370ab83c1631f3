package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Answer   key.Binding
	Backfill key.Binding
	Recalc   key.Binding
	Yes      key.Binding
	No       key.Binding
	Back     key.Binding
	Skip     key.Binding
	Escape   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Answer, k.Backfill, k.Quit, k.Help}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Answer, k.Backfill, k.Recalc},
		{k.Yes, k.No, k.Back, k.Skip, k.Escape, k.Help, k.Quit},
	}
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Answer: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "answer today"),
		),
		Backfill: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "fill missing days"),
		),
		Recalc: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "recalculate"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "yes"),
		),
		No: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "no"),
		),
		Back: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous day"),
		),
		Skip: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "skip rest"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
