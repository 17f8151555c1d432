// SPDX-License-Identifier: MIT
package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"raven/internal/viz"
)

// Braille dot positions (col, row) → bit offset:
//
//	(0,0)=0  (1,0)=3
//	(0,1)=1  (1,1)=4
//	(0,2)=2  (1,2)=5
//	(0,3)=6  (1,3)=7
var brailleBits = [2][4]uint8{
	{0, 1, 2, 6},
	{3, 4, 5, 7},
}

const (
	dotsX = 2
	dotsY = 4

	shadeLevels = 8
	minShade    = 0.35 // quietest drawn bins stay visible against the background
)

// Canvas rasterizes draw primitives onto a grid of Braille cells. Each cell
// is a 2x4 dot grid, so a canvas of cols x rows cells offers a drawing
// surface of 2*cols x 4*rows dots with roughly square dots. A cell takes the
// color of the loudest primitive that touched it.
type Canvas struct {
	cols, rows int
	dots       []uint8
	color      []viz.Color
	level      []float64
}

// NewCanvas creates an empty canvas of cols x rows cells.
func NewCanvas(cols, rows int) *Canvas {
	c := &Canvas{}
	c.Resize(cols, rows)
	return c
}

// Resize changes the cell grid and clears it.
func (c *Canvas) Resize(cols, rows int) {
	c.cols, c.rows = max(cols, 0), max(rows, 0)
	n := c.cols * c.rows
	if cap(c.dots) < n {
		c.dots = make([]uint8, n)
		c.color = make([]viz.Color, n)
		c.level = make([]float64, n)
	}
	c.dots = c.dots[:n]
	c.color = c.color[:n]
	c.level = c.level[:n]
	c.Clear()
}

// Clear removes every dot.
func (c *Canvas) Clear() {
	clear(c.dots)
	clear(c.level)
}

// Cols returns the width in cells.
func (c *Canvas) Cols() int { return c.cols }

// Rows returns the height in cells.
func (c *Canvas) Rows() int { return c.rows }

// Width returns the drawing surface width in dots.
func (c *Canvas) Width() int { return c.cols * dotsX }

// Height returns the drawing surface height in dots.
func (c *Canvas) Height() int { return c.rows * dotsY }

// Geometry returns the mapping geometry for the canvas with bins visible
// bins.
func (c *Canvas) Geometry(bins int) viz.Geometry {
	return viz.Geometry{Width: float64(c.Width()), Height: float64(c.Height()), Bins: bins}
}

// Set lights the dot at (x, y). Dots outside the surface are ignored.
func (c *Canvas) Set(x, y int, color viz.Color, intensity float64) {
	if x < 0 || y < 0 || x >= c.Width() || y >= c.Height() {
		return
	}
	i := (y/dotsY)*c.cols + x/dotsX
	c.dots[i] |= 1 << brailleBits[x%dotsX][y%dotsY]
	if intensity >= c.level[i] {
		c.level[i] = intensity
		c.color[i] = color
	}
}

// Lit reports whether the dot at (x, y) is set.
func (c *Canvas) Lit(x, y int) bool {
	if x < 0 || y < 0 || x >= c.Width() || y >= c.Height() {
		return false
	}
	i := (y/dotsY)*c.cols + x/dotsX
	return c.dots[i]&(1<<brailleBits[x%dotsX][y%dotsY]) != 0
}

// Draw rasterizes every primitive in order.
func (c *Canvas) Draw(prims []viz.Primitive) {
	for i := range prims {
		p := &prims[i]
		switch p.Kind {
		case viz.Rect:
			c.fillRect(p.X, p.Y, p.W, p.H, p.Color, p.Intensity)
		case viz.Line:
			c.line(p.X, p.Y, p.X2, p.Y2, p.W, p.Color, p.Intensity)
		case viz.Circle:
			c.circle(p.X, p.Y, p.R, p.Color, p.Intensity)
		}
	}
}

// fillRect lights every dot whose center lies in the rectangle. Rectangles
// narrower than a dot still light one column.
func (c *Canvas) fillRect(x, y, w, h float64, color viz.Color, intensity float64) {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1 := max(int(math.Ceil(x+w)), x0+1)
	y1 := max(int(math.Ceil(y+h)), y0+1)
	for py := max(y0, 0); py < min(y1, c.Height()); py++ {
		for px := max(x0, 0); px < min(x1, c.Width()); px++ {
			c.Set(px, py, color, intensity)
		}
	}
}

// line draws a Bresenham line with a square pen of the given stroke. The
// segment is clipped to the canvas plus the pen margin first, so the walk
// never leaves the visible area however far the endpoints are.
func (c *Canvas) line(x0f, y0f, x1f, y1f, stroke float64, color viz.Color, intensity float64) {
	pen := max(int(math.Round(stroke)), 1)
	off := (pen - 1) / 2

	margin := float64(pen)
	x0f, y0f, x1f, y1f, ok := clipSegment(x0f, y0f, x1f, y1f,
		-margin, -margin, float64(c.Width()-1)+margin, float64(c.Height()-1)+margin)
	if !ok {
		return
	}
	x0, y0 := int(math.Round(x0f)), int(math.Round(y0f))
	x1, y1 := int(math.Round(x1f)), int(math.Round(y1f))

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		for py := range pen {
			for px := range pen {
				c.Set(x0+px-off, y0+py-off, color, intensity)
			}
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// clipSegment clips the segment (x0,y0)-(x1,y1) to the rectangle
// [xmin,xmax]x[ymin,ymax] with the Liang-Barsky algorithm. ok is false when
// no part of the segment is inside or a coordinate is not finite.
func clipSegment(x0, y0, x1, y1, xmin, ymin, xmax, ymax float64) (cx0, cy0, cx1, cy1 float64, ok bool) {
	for _, v := range [4]float64{x0, y0, x1, y1} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, 0, 0, 0, false
		}
	}
	if xmax < xmin || ymax < ymin {
		return 0, 0, 0, 0, false
	}

	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0
	for _, edge := range [4][2]float64{
		{-dx, x0 - xmin},
		{dx, xmax - x0},
		{-dy, y0 - ymin},
		{dy, ymax - y0},
	} {
		p, q := edge[0], edge[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = max(t0, r)
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = min(t1, r)
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}

// circle draws a midpoint circle outline.
func (c *Canvas) circle(cxf, cyf, rf float64, color viz.Color, intensity float64) {
	cx, cy, r := int(math.Round(cxf)), int(math.Round(cyf)), int(math.Round(rf))
	if r <= 0 {
		c.Set(cx, cy, color, intensity)
		return
	}
	x, y := r, 0
	err := 1 - r
	for x >= y {
		for _, p := range [8][2]int{
			{x, y}, {y, x}, {-y, x}, {-x, y},
			{-x, -y}, {-y, -x}, {y, -x}, {x, -y},
		} {
			c.Set(cx+p[0], cy+p[1], color, intensity)
		}
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2*(y-x) + 1
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Render returns the canvas as rows of styled Braille text. Runs of cells
// sharing a color and shade are rendered with one style.
func (c *Canvas) Render(styles *shadeStyles) string {
	var sb strings.Builder
	var run strings.Builder
	for row := range c.rows {
		if row > 0 {
			sb.WriteByte('\n')
		}
		runKey := -1
		for col := range c.cols {
			i := row*c.cols + col
			key := -1
			r := ' '
			if c.dots[i] != 0 {
				key = styles.key(c.color[i], c.level[i])
				r = rune(0x2800 + int(c.dots[i]))
			}
			if key != runKey {
				styles.flush(&sb, &run, runKey)
				runKey = key
			}
			run.WriteRune(r)
		}
		styles.flush(&sb, &run, runKey)
	}
	return sb.String()
}

// String renders the canvas without color.
func (c *Canvas) String() string {
	var sb strings.Builder
	for row := range c.rows {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for col := range c.cols {
			if d := c.dots[row*c.cols+col]; d != 0 {
				sb.WriteRune(rune(0x2800 + int(d)))
			} else {
				sb.WriteByte(' ')
			}
		}
	}
	return sb.String()
}

// shadeStyles caches one lipgloss style per palette color and shade level.
type shadeStyles struct {
	palette *viz.Palette
	styles  map[int]lipgloss.Style
}

func newShadeStyles(p *viz.Palette) *shadeStyles {
	return &shadeStyles{palette: p, styles: make(map[int]lipgloss.Style)}
}

// key quantizes an intensity into one of shadeLevels steps of color.
func (s *shadeStyles) key(color viz.Color, intensity float64) int {
	level := int(math.Round(min(max(intensity, 0), 1) * (shadeLevels - 1)))
	return int(color)*shadeLevels + level
}

func (s *shadeStyles) style(key int) lipgloss.Style {
	if st, ok := s.styles[key]; ok {
		return st
	}
	color := viz.Color(key / shadeLevels)
	t := minShade + (1-minShade)*float64(key%shadeLevels)/(shadeLevels-1)
	st := lipgloss.NewStyle().Foreground(lipgloss.Color(s.palette.Hex(color, t)))
	s.styles[key] = st
	return st
}

// flush writes the pending run to sb, styled unless it is blank.
func (s *shadeStyles) flush(sb, run *strings.Builder, key int) {
	if run.Len() == 0 {
		return
	}
	if key < 0 {
		sb.WriteString(run.String())
	} else {
		sb.WriteString(s.style(key).Render(run.String()))
	}
	run.Reset()
}
