// SPDX-License-Identifier: MIT

// Package viz selects and applies the visualization mappings that turn a
// normalized amplitude spectrum into draw primitives.
package viz

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Mode identifies one rendering mapping.
type Mode uint32

// Modes in cycling order.
const (
	Standard Mode = iota
	Pixel
	Waveform
	Starburst
	RadialBars
)

// AllModes lists every mode in cycling order.
var AllModes = []Mode{Standard, Pixel, Waveform, Starburst, RadialBars}

// String returns the display name of the mode.
func (m Mode) String() string {
	switch m {
	case Standard:
		return "standard"
	case Pixel:
		return "pixel"
	case Waveform:
		return "waveform"
	case Starburst:
		return "starburst"
	case RadialBars:
		return "radial-bars"
	default:
		return "unknown"
	}
}

// MarshalText encodes the mode by name, so JSON frames carry "starburst"
// rather than 3.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name.
func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// ParseMode converts a name (case-insensitive) to a Mode. Unknown names
// return Standard and an error.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.ReplaceAll(name, "_", "-")) {
	case "standard", "":
		return Standard, nil
	case "pixel":
		return Pixel, nil
	case "waveform":
		return Waveform, nil
	case "starburst":
		return Starburst, nil
	case "radial-bars", "radialbars", "radial":
		return RadialBars, nil
	default:
		return Standard, fmt.Errorf("unknown visualization mode: '%s'", name)
	}
}

// Selector is the cyclic mode state machine. The input context cycles it,
// the render context reads it; the position is a single atomic word so
// neither needs a lock.
type Selector struct {
	modes []Mode
	index atomic.Uint32
}

// NewSelector creates a selector over modes, starting at the first one.
// With no modes registered every operation is a no-op and Active reports
// Standard.
func NewSelector(modes ...Mode) *Selector {
	return &Selector{modes: append([]Mode(nil), modes...)}
}

// NewDefaultSelector creates a selector over AllModes starting at initial.
func NewDefaultSelector(initial Mode) *Selector {
	s := NewSelector(AllModes...)
	s.Select(initial)
	return s
}

// Active returns the selected mode.
func (s *Selector) Active() Mode {
	if len(s.modes) == 0 {
		return Standard
	}
	return s.modes[s.index.Load()]
}

// Modes returns the registered modes in cycling order.
func (s *Selector) Modes() []Mode {
	return append([]Mode(nil), s.modes...)
}

// CycleForward moves to the next mode, wrapping after the last.
func (s *Selector) CycleForward() Mode {
	return s.step(1)
}

// CycleBackward moves to the previous mode, wrapping before the first.
func (s *Selector) CycleBackward() Mode {
	return s.step(uint32(len(s.modes)) - 1)
}

// step advances by delta positions. Backward is expressed as count-1 steps
// forward so the index never underflows.
func (s *Selector) step(delta uint32) Mode {
	count := uint32(len(s.modes))
	if count == 0 {
		return Standard
	}
	for {
		cur := s.index.Load()
		next := (cur + delta) % count
		if s.index.CompareAndSwap(cur, next) {
			return s.modes[next]
		}
	}
}

// Select jumps to mode if it is registered and reports whether it was.
func (s *Selector) Select(mode Mode) bool {
	for i, m := range s.modes {
		if m == mode {
			s.index.Store(uint32(i))
			return true
		}
	}
	return false
}
