// SPDX-License-Identifier: MIT
package viz

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color indexes the Gruvbox palette.
type Color uint8

const (
	Background Color = iota
	Foreground
	Yellow
	Blue
	Green
	Red
	Orange
	Aqua
	Purple
)

// rayColors is the rotation used by the radial modes, indexed by bin % 6.
var rayColors = [...]Color{Yellow, Blue, Green, Red, Orange, Purple}

// Palette resolves color indexes to RGB.
type Palette struct {
	colors [Purple + 1]colorful.Color
}

func mustParseHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic("mustParseHex: " + err.Error())
	}
	return c
}

// Gruvbox returns the dark Gruvbox palette.
func Gruvbox() *Palette {
	return &Palette{colors: [...]colorful.Color{
		Background: mustParseHex("#282828"),
		Foreground: mustParseHex("#ebdbb2"),
		Yellow:     mustParseHex("#fabd2f"),
		Blue:       mustParseHex("#83a598"),
		Green:      mustParseHex("#b8bb26"),
		Red:        mustParseHex("#fb4934"),
		Orange:     mustParseHex("#fe8019"),
		Aqua:       mustParseHex("#8ec07c"),
		Purple:     mustParseHex("#d3869b"),
	}}
}

// RGB returns the color for c. Unknown indexes resolve to the foreground.
func (p *Palette) RGB(c Color) colorful.Color {
	if int(c) >= len(p.colors) {
		return p.colors[Foreground]
	}
	return p.colors[c]
}

// Shade blends c from the background toward full intensity by t in [0, 1],
// in Lab space so quiet bins fade evenly into the background.
func (p *Palette) Shade(c Color, t float64) colorful.Color {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p.colors[Background].BlendLab(p.RGB(c), t).Clamped()
}

// Hex returns the shaded color as "#rrggbb".
func (p *Palette) Hex(c Color, t float64) string {
	return p.Shade(c, t).Hex()
}
