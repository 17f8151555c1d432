// SPDX-License-Identifier: MIT
package audio

import "math"

// EnableGate turns silence detection on.
func (e *Engine) EnableGate() {
	e.gateEnabled.Store(true)
}

// DisableGate turns silence detection off and clears the silent flag.
func (e *Engine) DisableGate() {
	e.gateEnabled.Store(false)
	e.silent.Store(false)
}

// GateEnabled reports whether silence detection is running.
func (e *Engine) GateEnabled() bool {
	return e.gateEnabled.Load()
}

// ToggleGate switches silence detection and reports whether it is now on.
func (e *Engine) ToggleGate() bool {
	if e.gateEnabled.Load() {
		e.DisableGate()
		return false
	}
	e.EnableGate()
	return true
}

// SetGateThreshold adjusts the silence threshold.
// The value is in the range of 0.0-1.0 where 0=never silent, 1=always silent.
func (e *Engine) SetGateThreshold(threshold float64) {
	if threshold < 0.0 {
		threshold = 0.0
	}
	if threshold > 1.0 {
		threshold = 1.0
	}

	e.gateThreshold.Store(math.Float64bits(threshold))
}

// GetGateThreshold returns the current silence threshold as a float64.
func (e *Engine) GetGateThreshold() float64 {
	return math.Float64frombits(e.gateThreshold.Load())
}

// Silent reports whether the last captured buffer stayed at or below the
// threshold. Always false while the gate is disabled.
func (e *Engine) Silent() bool {
	return e.silent.Load()
}

// absf clears the sign bit.
func absf(x float32) float32 {
	return math.Float32frombits(math.Float32bits(x) &^ (1 << 31))
}
