// SPDX-License-Identifier: MIT
package viz

import (
	"math"

	"raven/internal/analysis"
)

const (
	// DefaultThreshold is the normalized amplitude at or below which a bin
	// draws nothing.
	DefaultThreshold = 0.01

	binGrowth   = 1.06 // geometric step of the visible bin series
	firstBin    = 20.0
	barStep     = 0.4  // bar width as a fraction of the cell, standard and radial modes
	pixelStep   = 1.06 // pixel mode overlaps neighbouring cells
	strokeWidth = 2.0
)

// VisibleBins returns how many bins fit on screen for a window of n bins:
// the number of terms of 20·1.06^k that stay below n.
func VisibleBins(n int) int {
	m := 0
	for f := firstBin; f < float64(n); f *= binGrowth {
		m++
	}
	return m
}

// Geometry describes the drawing surface.
type Geometry struct {
	Width  float64
	Height float64
	Bins   int // visible bin count
}

// Center returns the midpoint of the surface.
func (g Geometry) Center() (x, y float64) {
	return g.Width / 2, g.Height / 2
}

// CellWidth returns the horizontal space allotted to one bin.
func (g Geometry) CellWidth() float64 {
	if g.Bins <= 0 {
		return 0
	}
	return g.Width / float64(g.Bins)
}

// Kind is the shape of a draw primitive.
type Kind uint8

const (
	Rect Kind = iota
	Line
	Circle
)

// Primitive is one shape to paint. Rects use X, Y, W, H; lines run from
// (X, Y) to (X2, Y2) with stroke W; circles are centered at (X, Y) with
// radius R.
type Primitive struct {
	Kind      Kind
	X, Y      float64
	X2, Y2    float64
	W, H      float64
	R         float64
	Color     Color
	Intensity float64 // normalized amplitude that produced the shape
	Bin       int
}

// Mapper turns a normalized amplitude spectrum into primitives for the
// active mode. It owns the smoothing history of the radial bars, so one
// Mapper belongs to one render loop.
type Mapper struct {
	threshold float64
	history   *analysis.SmoothingHistory
}

// NewMapper creates a mapper for spectra of size bins. A threshold <= 0
// selects DefaultThreshold.
func NewMapper(size int, threshold float64) *Mapper {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Mapper{
		threshold: threshold,
		history:   analysis.NewSmoothingHistory(size),
	}
}

// Threshold returns the draw threshold.
func (mp *Mapper) Threshold() float64 {
	return mp.threshold
}

// Reset clears the smoothing history.
func (mp *Mapper) Reset() {
	mp.history.Reset()
}

// Map appends the primitives for mode to dst and returns it. amps holds
// normalized amplitudes; only the first g.Bins entries are drawn.
func (mp *Mapper) Map(mode Mode, amps []float64, g Geometry, dst []Primitive) []Primitive {
	limit := min(g.Bins, len(amps)-1, mp.history.Len())
	if limit <= 0 {
		return dst
	}

	cell := g.CellWidth()
	cx, cy := g.Center()
	hubDrawn := false

	for i := range limit {
		a := amps[i]
		if a <= mp.threshold {
			continue
		}

		switch mode {
		case Standard, Pixel:
			step, color := barStep, Red
			if mode == Pixel {
				step, color = pixelStep, Purple
			}
			dst = append(dst, Primitive{
				Kind:      Rect,
				X:         float64(i) * cell,
				Y:         g.Height - g.Height*a,
				W:         cell * step,
				H:         g.Height * a,
				Color:     color,
				Intensity: a,
				Bin:       i,
			})

		case Waveform:
			dst = append(dst, Primitive{
				Kind:      Line,
				X:         float64(i) * cell,
				Y:         cy + g.Height/2*a,
				X2:        float64(i+1) * cell,
				Y2:        cy + g.Height/2*amps[i+1],
				W:         strokeWidth,
				Color:     Blue,
				Intensity: a,
				Bin:       i,
			})

		case Starburst:
			dx, dy := direction(i, g.Bins)
			reach := a * g.Height / 2
			dst = append(dst, Primitive{
				Kind:      Line,
				X:         cx,
				Y:         cy,
				X2:        cx + dx*reach,
				Y2:        cy + dy*reach,
				W:         strokeWidth,
				Color:     rayColors[i%len(rayColors)],
				Intensity: a,
				Bin:       i,
			})

		case RadialBars:
			if !hubDrawn {
				dst = append(dst, Primitive{Kind: Circle, X: cx, Y: cy, R: g.Height / 8, Color: Foreground, Intensity: 1, Bin: -1})
				hubDrawn = true
			}
			outer := g.Height / 4
			scale := g.Height / 4
			smoothed := mp.history.Blend(i, a)
			dx, dy := direction(i, g.Bins)
			dst = append(dst, Primitive{
				Kind:      Line,
				X:         cx + dx*outer,
				Y:         cy + dy*outer,
				X2:        cx + dx*(outer+smoothed*scale),
				Y2:        cy + dy*(outer+smoothed*scale),
				W:         cell * barStep,
				Color:     rayColors[i%len(rayColors)],
				Intensity: smoothed,
				Bin:       i,
			})
		}
	}
	return dst
}

// direction returns the unit vector for bin i of m spread over a full turn.
func direction(i, m int) (float64, float64) {
	angle := float64(i) * 2 * math.Pi / float64(m)
	return math.Cos(angle), math.Sin(angle)
}
