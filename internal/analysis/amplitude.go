// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// DefaultPeak is the normalization divisor used when a pass has no usable
// peak (no bins inspected, or every inspected magnitude is zero).
const DefaultPeak = 1.0

// Metric selects how a complex bin is reduced to a scalar magnitude.
type Metric int

const (
	// MetricMin is min(|re|, im). It is not a modulus; the visual modes
	// are tuned against it.
	MetricMin Metric = iota
	// MetricModulus is the Euclidean modulus |z|.
	MetricModulus
)

// String returns the configuration name of the metric.
func (m Metric) String() string {
	switch m {
	case MetricMin:
		return "min"
	case MetricModulus:
		return "modulus"
	default:
		return "unknown"
	}
}

// ParseMetric converts a configuration name (case-insensitive) to a Metric.
// Unknown names return MetricMin and an error.
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(name) {
	case "min", "":
		return MetricMin, nil
	case "modulus", "abs":
		return MetricModulus, nil
	default:
		return MetricMin, fmt.Errorf("unknown magnitude metric: '%s'", name)
	}
}

// PeakScope selects which bins are inspected when computing the peak.
type PeakScope int

const (
	// PeakFull inspects the whole spectrum, the same bins that are displayed,
	// so normalized amplitudes never exceed 1.
	PeakFull PeakScope = iota
	// PeakFresh inspects only the first `frames` bins of the pass, where
	// frames is the size of the callback batch. Normalized values of the
	// remaining bins may exceed 1.
	PeakFresh
)

// String returns the configuration name of the scope.
func (s PeakScope) String() string {
	switch s {
	case PeakFull:
		return "full"
	case PeakFresh:
		return "fresh"
	default:
		return "unknown"
	}
}

// ParsePeakScope converts a configuration name (case-insensitive) to a
// PeakScope. Unknown names return PeakFull and an error.
func ParsePeakScope(name string) (PeakScope, error) {
	switch strings.ToLower(name) {
	case "full", "":
		return PeakFull, nil
	case "fresh":
		return PeakFresh, nil
	default:
		return PeakFull, fmt.Errorf("unknown peak scope: '%s'", name)
	}
}

// MinComponent returns the lesser of |real(z)| and imag(z).
func MinComponent(z complex128) float64 {
	a := math.Abs(real(z))
	b := imag(z)
	if a < b {
		return a
	}
	return b
}

// Modulus returns |z|.
func Modulus(z complex128) float64 {
	return cmplx.Abs(z)
}

// Magnitude applies the metric to one bin.
func (m Metric) Magnitude(z complex128) float64 {
	if m == MetricModulus {
		return Modulus(z)
	}
	return MinComponent(z)
}

// Extractor turns a spectrum into per-bin amplitudes and a peak divisor.
type Extractor struct {
	metric Metric
	scope  PeakScope
}

// NewExtractor creates an extractor using the given metric and peak scope.
func NewExtractor(metric Metric, scope PeakScope) *Extractor {
	return &Extractor{metric: metric, scope: scope}
}

// Metric returns the configured magnitude metric.
func (e *Extractor) Metric() Metric {
	return e.metric
}

// Scope returns the configured peak scope.
func (e *Extractor) Scope() PeakScope {
	return e.scope
}

// Extract writes the amplitude of every bin of spectrum into dst and
// returns the peak over the inspected bins. Negative magnitudes (possible
// with MetricMin when imag < 0) are stored as 0. frames is the number of
// frames delivered in the pass and only matters for PeakFresh.
func (e *Extractor) Extract(dst []float64, spectrum []complex128, frames int) float64 {
	for i, z := range spectrum {
		dst[i] = max(e.metric.Magnitude(z), 0)
	}

	inspected := dst[:len(spectrum)]
	if e.scope == PeakFresh {
		inspected = inspected[:min(max(frames, 0), len(inspected))]
	}
	if len(inspected) == 0 {
		return DefaultPeak
	}

	peak := floats.Max(inspected)
	if peak <= 0 {
		return DefaultPeak
	}
	return peak
}

// Normalize writes amplitudes[i] / peak into dst. A non-positive peak is
// replaced by DefaultPeak.
func Normalize(dst, amplitudes []float64, peak float64) {
	if peak <= 0 {
		peak = DefaultPeak
	}
	floats.ScaleTo(dst, 1/peak, amplitudes)
}

// SmoothingHistory is the per-bin temporal state used by the radial bars
// mapping. Each update replaces an entry with the mean of its previous
// value and the new amplitude. It is owned by a single render consumer.
type SmoothingHistory struct {
	values []float64
}

// NewSmoothingHistory returns a zeroed history of size bins.
func NewSmoothingHistory(size int) *SmoothingHistory {
	return &SmoothingHistory{values: make([]float64, size)}
}

// Blend stores and returns (history[i] + amplitude) / 2.
func (h *SmoothingHistory) Blend(i int, amplitude float64) float64 {
	v := (h.values[i] + amplitude) * 0.5
	h.values[i] = v
	return v
}

// Value returns the current smoothed value of bin i.
func (h *SmoothingHistory) Value(i int) float64 {
	return h.values[i]
}

// Len returns the number of bins tracked.
func (h *SmoothingHistory) Len() int {
	return len(h.values)
}

// Reset zeroes the history.
func (h *SmoothingHistory) Reset() {
	clear(h.values)
}
