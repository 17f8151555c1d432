// SPDX-License-Identifier: MIT
package audio

import (
	"testing"
)

func TestGateEnableHotPath(t *testing.T) {
	engine := newTestEngine()
	engine.DisableGate()

	if engine.gateEnabled.Load() {
		t.Error("Gate should be disabled initially")
	}

	engine.EnableGate()
	if !engine.gateEnabled.Load() {
		t.Error("Gate should be enabled after EnableGate()")
	}

	engine.DisableGate()
	if engine.gateEnabled.Load() {
		t.Error("Gate should be disabled after DisableGate()")
	}

	engine.EnableGate()
	engine.EnableGate() // Multiple calls should be idempotent
	if !engine.gateEnabled.Load() {
		t.Error("Gate should remain enabled after multiple EnableGate()")
	}

	engine.DisableGate()
	engine.DisableGate() // Multiple calls should be idempotent
	if engine.gateEnabled.Load() {
		t.Error("Gate should remain disabled after multiple DisableGate()")
	}
}

func TestGateToggle(t *testing.T) {
	engine := newTestEngine()
	engine.SetGateThreshold(0.1)
	engine.processBuffer(quietBuffer)
	if !engine.GateEnabled() || !engine.Silent() {
		t.Fatalf("enabled %v silent %v, want both", engine.GateEnabled(), engine.Silent())
	}

	if engine.ToggleGate() {
		t.Error("ToggleGate() = true, want the gate off")
	}
	if engine.GateEnabled() || engine.Silent() {
		t.Error("a disabled gate must not report silence")
	}

	if !engine.ToggleGate() || !engine.GateEnabled() {
		t.Error("second ToggleGate() should turn the gate back on")
	}
}

func TestGateThresholdBoundaries(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{-0.1, 0.0}, // Below min
		{0.0, 0.0},  // Minimum
		{0.5, 0.5},  // Middle
		{1.0, 1.0},  // Maximum
		{1.5, 1.0},  // Above max
	}

	engine := newTestEngine()

	for _, tt := range tests {
		t.Run(formatFloat(tt.input), func(t *testing.T) {
			engine.SetGateThreshold(tt.input)
			got := engine.GetGateThreshold()

			if absFloat(got-tt.expected) > 0.001 {
				t.Errorf("Gate threshold conversion: got %.3f, want %.3f", got, tt.expected)
			}
		})
	}
}

func TestGateDetectionHotPath(t *testing.T) {
	tests := []struct {
		desc        string
		buffer      []float32
		gateEnabled bool
		threshold   float64
		wantSilent  bool
	}{
		{"Gate disabled/Quiet signal", quietBuffer, false, 0.1, false}, // Disabled gate never reports silence
		{"Gate enabled/Quiet signal/Low threshold", quietBuffer, true, 0.0001, false},
		{"Gate enabled/Quiet signal/Mid threshold", quietBuffer, true, 0.1, true},
		{"Gate enabled/Loud signal/Mid threshold", loudBuffer, true, 0.1, false},
		{"Gate enabled/Loud signal/High threshold", loudBuffer, true, 0.999, true},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			engine := newTestEngine()
			fa := engine.analyzer.(*fakeAnalyzer)
			if !tt.gateEnabled {
				engine.DisableGate()
			}
			engine.SetGateThreshold(tt.threshold)

			engine.processBuffer(tt.buffer)

			if engine.Silent() != tt.wantSilent {
				t.Errorf("Silent() = %v, want %v", engine.Silent(), tt.wantSilent)
			}
			// Silence is reported, never used to skip analysis.
			if fa.calls != 1 {
				t.Errorf("analyzer calls = %d, want 1", fa.calls)
			}
		})
	}
}

func BenchmarkGateThresholdConversionHotPath(b *testing.B) {
	engine := newTestEngine()
	values := []float64{0.0, 0.25, 0.5, 0.75, 1.0}

	for _, v := range values {
		b.Run(formatFloat(v), func(b *testing.B) {
			b.ReportAllocs()

			for b.Loop() {
				engine.SetGateThreshold(v)
				_ = engine.GetGateThreshold() // Discard result to prevent optimization
			}
		})
	}
}
