package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the player key bindings
type KeyMap struct {
	Left        key.Binding
	Right       key.Binding
	Up          key.Binding
	Down        key.Binding
	Select      key.Binding
	Direct      key.Binding
	Next        key.Binding
	Prev        key.Binding
	Loop        key.Binding
	VolumeUp    key.Binding
	VolumeDown  key.Binding
	Mute        key.Binding
	SeekBack    key.Binding
	SeekForward key.Binding
	Tips        key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the default bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "right"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "play/stop"),
		),
		Direct: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "play/stop sound"),
		),
		Next: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "previous"),
		),
		Loop: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "loop"),
		),
		VolumeUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "volume up"),
		),
		VolumeDown: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "volume down"),
		),
		Mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute"),
		),
		SeekBack: key.NewBinding(
			key.WithKeys(","),
			key.WithHelp(",", "seek back"),
		),
		SeekForward: key.NewBinding(
			key.WithKeys("."),
			key.WithHelp(".", "seek forward"),
		),
		Tips: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "tips"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Next, k.Prev, k.Loop, k.VolumeUp, k.VolumeDown, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.Select, k.Direct, k.Next, k.Prev},
		{k.Loop, k.VolumeUp, k.VolumeDown, k.Mute},
		{k.SeekBack, k.SeekForward, k.Tips, k.Quit},
	}
}
