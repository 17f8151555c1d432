// SPDX-License-Identifier: MIT
package fft

import (
	"math"
	"math/cmplx"
)

// DFT is the direct-summation reference transform,
//
//	out[f] = Σ in[i]·exp(-2πi·f·i/n)
//
// It uses the same sign convention as the FFT so the two are directly
// comparable. Unlike the FFT it accepts any length. O(N²); for tests and
// diagnostics only.
func DFT(in []float64) []complex128 {
	n := len(in)
	out := make([]complex128, n)
	for f := range n {
		var sum complex128
		for i, x := range in {
			t := float64(f*i%n) / float64(n)
			sum += complex(x, 0) * cmplx.Exp(complex(0, -2*math.Pi*t))
		}
		out[f] = sum
	}
	return out
}
