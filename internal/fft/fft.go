// SPDX-License-Identifier: MIT

// Package fft implements the spectral analyzer used by the real-time
// pipeline: a recursive radix-2 decimation-in-time Cooley-Tukey transform
// over a power-of-two window, plus the direct O(N²) DFT kept as a
// correctness reference.
package fft

import (
	"fmt"
	"math"
	"math/cmplx"

	"raven/pkg/bitint"
)

// Analyzer holds the precomputed twiddle factors for a fixed transform size.
// After construction TransformInto performs no allocations and no
// trigonometry, so it is safe to call from the audio callback.
type Analyzer struct {
	size     int
	depth    int
	twiddles []complex128 // twiddles[j] = exp(-2πi·j/size), j < size/2
}

// NewAnalyzer creates an analyzer for windows of exactly size samples.
// A size that is not a positive power of two is a configuration error the
// real-time path cannot recover from, so it panics.
func NewAnalyzer(size int) *Analyzer {
	mustBePowerOfTwo(size)

	twiddles := make([]complex128, size/2)
	for j := range twiddles {
		twiddles[j] = cmplx.Exp(complex(0, -2*math.Pi*float64(j)/float64(size)))
	}

	return &Analyzer{
		size:     size,
		depth:    bitint.Log2(size),
		twiddles: twiddles,
	}
}

// Size returns the number of points of the transform.
func (a *Analyzer) Size() int {
	return a.size
}

// Depth returns the recursion depth, log2(Size).
func (a *Analyzer) Depth() int {
	return a.depth
}

// TransformInto computes the spectrum of in and writes it to out. Both
// slices must have exactly Size elements.
func (a *Analyzer) TransformInto(out []complex128, in []float64) {
	if len(in) != a.size || len(out) != a.size {
		panic(fmt.Sprintf("fft: analyzer of size %d given input %d and output %d", a.size, len(in), len(out)))
	}
	a.transform(out, in, 0, 1)
}

// transform writes the spectrum of in[offset], in[offset+stride], ... into
// out, whose length n is the number of samples in that sub-range. The
// evens of the sub-range land in out[:n/2], the odds in out[n/2:].
func (a *Analyzer) transform(out []complex128, in []float64, offset, stride int) {
	n := len(out)
	if n == 1 {
		out[0] = complex(in[offset], 0)
		return
	}

	half := n / 2
	a.transform(out[:half], in, offset, stride*2)
	a.transform(out[half:], in, offset+stride, stride*2)

	// exp(-2πi·k/n) == twiddles[k·size/n]
	step := a.size / n
	for k := range half {
		v := a.twiddles[k*step] * out[k+half]
		e := out[k]
		out[k] = e + v
		out[k+half] = e - v
	}
}

// Transform returns the spectrum of in. It allocates the analyzer and the
// output on every call; the audio path uses an Analyzer instead.
func Transform(in []float64) []complex128 {
	a := NewAnalyzer(len(in))
	out := make([]complex128, len(in))
	a.TransformInto(out, in)
	return out
}

func mustBePowerOfTwo(n int) {
	if !bitint.IsPowerOfTwo(n) {
		panic(fmt.Sprintf("fft: size must be a positive power of 2, got %d", n))
	}
}
