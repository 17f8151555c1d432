// SPDX-License-Identifier: MIT
package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the visualizer's controller bindings.
type keyMap struct {
	Forward    key.Binding
	Backward   key.Binding
	Pause      key.Binding
	Mute       key.Binding
	VolumeUp   key.Binding
	VolumeDown key.Binding
	Next       key.Binding
	Gate       key.Binding
	Info       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Forward: key.NewBinding(
			key.WithKeys("v", "right"),
			key.WithHelp("v", "next mode"),
		),
		Backward: key.NewBinding(
			key.WithKeys("b", "left"),
			key.WithHelp("b", "previous mode"),
		),
		Pause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "pause"),
		),
		Mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute"),
		),
		VolumeUp: key.NewBinding(
			key.WithKeys("up", "+"),
			key.WithHelp("↑", "volume up"),
		),
		VolumeDown: key.NewBinding(
			key.WithKeys("down", "-"),
			key.WithHelp("↓", "volume down"),
		),
		Next: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next track"),
		),
		Gate: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "silence gate"),
		),
		Info: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "info"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// withSource enables the player bindings only when a file is playing and
// the gate binding only when capturing.
func (k keyMap) withSource(playback, playlist, capture bool) keyMap {
	k.Pause.SetEnabled(playback)
	k.Mute.SetEnabled(playback)
	k.VolumeUp.SetEnabled(playback)
	k.VolumeDown.SetEnabled(playback)
	k.Next.SetEnabled(playlist)
	k.Gate.SetEnabled(capture)
	return k
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Forward, k.Backward, k.Pause, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Forward, k.Backward},
		{k.Pause, k.Mute, k.VolumeUp, k.VolumeDown},
		{k.Next, k.Gate, k.Info},
		{k.Help, k.Quit},
	}
}
