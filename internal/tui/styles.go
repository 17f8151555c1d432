// SPDX-License-Identifier: MIT
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"raven/internal/viz"
)

var palette = viz.Gruvbox()

func paletteColor(c viz.Color) lipgloss.Color {
	return lipgloss.Color(palette.Hex(c, 1))
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(paletteColor(viz.Background)).
			Background(paletteColor(viz.Green)).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(paletteColor(viz.Foreground))

	highlightStyle = lipgloss.NewStyle().
			Foreground(paletteColor(viz.Green)).
			Bold(true)

	modeStyle = lipgloss.NewStyle().
			Foreground(paletteColor(viz.Yellow)).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(paletteColor(viz.Aqua))

	errorStyle = lipgloss.NewStyle().
			Foreground(paletteColor(viz.Red))
)
