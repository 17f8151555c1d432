// SPDX-License-Identifier: MIT
package tui

import "github.com/charmbracelet/harmonica"

// readout eases a header value toward its latest target once per frame.
type readout struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
}

func newReadout(fps int, frequency float64) readout {
	return readout{spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, 1.0)}
}

func (r *readout) step(target float64) float64 {
	r.pos, r.vel = r.spring.Update(r.pos, r.vel, target)
	return r.pos
}

// snap jumps straight to v, e.g. after the source was reset.
func (r *readout) snap(v float64) {
	r.pos, r.vel = v, 0
}
