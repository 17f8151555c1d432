// SPDX-License-Identifier: MIT
package fft

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	testFFTSize    = 8192
	testSampleRate = 44100
	tolerance      = 1e-3
)

func randomSignal(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	x := make([]float64, n)
	for i := range x {
		x[i] = rng.Float64()*2 - 1
	}
	return x
}

func assertSpectraClose(t *testing.T, got, want []complex128) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if d := cmplx.Abs(got[i] - want[i]); d > tolerance {
			t.Fatalf("bin %d: got %v, want %v (|diff| %.2e)", i, got[i], want[i], d)
		}
	}
}

func TestTransformPowerOfTwoSizes(t *testing.T) {
	for n := 1; n <= testFFTSize; n *= 2 {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			out := Transform(make([]float64, n))
			if len(out) != n {
				t.Errorf("Transform returned %d bins, want %d", len(out), n)
			}
		})
	}
}

func TestTransformRejectsInvalidSizes(t *testing.T) {
	for _, n := range []int{0, 3, 5, 6} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("Transform of length %d did not panic", n)
				}
			}()
			Transform(make([]float64, n))
		})
	}
}

func TestAnalyzerRejectsMismatchedBuffers(t *testing.T) {
	a := NewAnalyzer(8)
	defer func() {
		if recover() == nil {
			t.Error("TransformInto with a short input did not panic")
		}
	}()
	a.TransformInto(make([]complex128, 8), make([]float64, 4))
}

func TestTransformBaseCase(t *testing.T) {
	out := Transform([]float64{0.75})
	if out[0] != complex(0.75, 0) {
		t.Errorf("Transform([0.75]) = %v, want (0.75+0i)", out[0])
	}
}

func TestTransformMatchesDFT(t *testing.T) {
	for n := 1; n <= 1024; n *= 2 {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			x := randomSignal(n, int64(n))
			assertSpectraClose(t, Transform(x), DFT(x))
		})
	}
}

func TestTransformMatchesGonum(t *testing.T) {
	for n := 2; n <= 1024; n *= 2 {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			x := randomSignal(n, 42)
			seq := make([]complex128, n)
			for i, v := range x {
				seq[i] = complex(v, 0)
			}
			want := fourier.NewCmplxFFT(n).Coefficients(nil, seq)
			assertSpectraClose(t, Transform(x), want)
		})
	}
}

func TestTransformDC(t *testing.T) {
	out := Transform([]float64{1, 1, 1, 1, 1, 1, 1, 1})
	want := make([]complex128, 8)
	want[0] = 8
	assertSpectraClose(t, out, want)
}

func TestTransformNyquist(t *testing.T) {
	out := Transform([]float64{1, -1, 1, -1})
	want := []complex128{0, 0, 4, 0}
	assertSpectraClose(t, out, want)
}

func TestTransformLinearity(t *testing.T) {
	const n = 256
	a, b := 0.3, -1.7
	x := randomSignal(n, 1)
	y := randomSignal(n, 2)

	mixed := make([]float64, n)
	for i := range mixed {
		mixed[i] = a*x[i] + b*y[i]
	}

	tx, ty := Transform(x), Transform(y)
	want := make([]complex128, n)
	for i := range want {
		want[i] = complex(a, 0)*tx[i] + complex(b, 0)*ty[i]
	}
	assertSpectraClose(t, Transform(mixed), want)
}

func TestTransformSinePeak(t *testing.T) {
	const n = 1024
	const bin = 37
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Cos(2 * math.Pi * bin * float64(i) / n)
	}
	out := Transform(x)
	if got := real(out[bin]); math.Abs(got-n/2) > tolerance {
		t.Errorf("bin %d real = %.4f, want %.1f", bin, got, float64(n/2))
	}
	if got := real(out[n-bin]); math.Abs(got-n/2) > tolerance {
		t.Errorf("mirror bin %d real = %.4f, want %.1f", n-bin, got, float64(n/2))
	}
}

func TestAnalyzerDepth(t *testing.T) {
	if d := NewAnalyzer(testFFTSize).Depth(); d != 13 {
		t.Errorf("Depth() = %d, want 13", d)
	}
}

func TestTransformIntoHotPath(t *testing.T) {
	a := NewAnalyzer(testFFTSize)
	in := randomSignal(testFFTSize, 7)
	out := make([]complex128, testFFTSize)

	a.TransformInto(out, in)
	allocs := testing.AllocsPerRun(20, func() {
		a.TransformInto(out, in)
	})

	if allocs > 0 {
		t.Errorf("Expected zero allocations in TransformInto hot path, got %.1f", allocs)
	}
}

func BenchmarkTransformInto(b *testing.B) {
	a := NewAnalyzer(testFFTSize)
	in := make([]float64, testFFTSize)
	for i := range in {
		tm := float64(i) / testSampleRate
		in[i] = math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2
	}
	out := make([]complex128, testFFTSize)

	b.ReportAllocs()

	for b.Loop() {
		a.TransformInto(out, in)
	}
}

func BenchmarkDFT1024(b *testing.B) {
	in := randomSignal(1024, 3)
	for b.Loop() {
		_ = DFT(in)
	}
}
