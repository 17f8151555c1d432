// SPDX-License-Identifier: MIT
package analysis

// SlidingWindow holds the most recent N mono samples, oldest first. It is
// owned by the producer; nothing else may touch it while the audio callback
// is attached.
type SlidingWindow struct {
	samples []float64
}

// NewSlidingWindow returns a zero-filled window of size samples.
func NewSlidingWindow(size int) *SlidingWindow {
	return &SlidingWindow{samples: make([]float64, size)}
}

// Append shifts every sample one slot toward index 0, dropping the oldest,
// and writes sample into the last slot. O(N); each incoming frame must be
// appended exactly once, in arrival order.
func (w *SlidingWindow) Append(sample float64) {
	n := len(w.samples)
	copy(w.samples[:n-1], w.samples[1:])
	w.samples[n-1] = sample
}

// AppendStereo appends the mono downmix of one stereo frame.
func (w *SlidingWindow) AppendStereo(left, right float32) {
	w.Append((float64(left) + float64(right)) / 2)
}

// Samples returns the window contents. The slice aliases the window and is
// overwritten by the next Append.
func (w *SlidingWindow) Samples() []float64 {
	return w.samples
}

// Len returns the window size.
func (w *SlidingWindow) Len() int {
	return len(w.samples)
}

// Reset zero-fills the window.
func (w *SlidingWindow) Reset() {
	clear(w.samples)
}
