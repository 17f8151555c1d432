// SPDX-License-Identifier: MIT
package analysis

import (
	"sync/atomic"

	"gonum.org/v1/gonum/floats"
)

// Snapshot is the result of one analysis pass as seen by a consumer.
type Snapshot struct {
	Amplitudes []float64 // Raw per-bin amplitudes, len == window size.
	Peak       float64   // Normalization divisor for this pass, > 0.
	Sequence   uint64    // Pass counter, increases with every publication.
	Frames     int       // Frames delivered by the callback that produced this pass.
}

// NormalizeInto writes the normalized amplitudes of the snapshot into dst.
func (s *Snapshot) NormalizeInto(dst []float64) {
	Normalize(dst, s.Amplitudes, s.Peak)
}

// PeakBin returns the index of the largest amplitude in [lo, hi).
// It returns lo when the range is empty.
func (s *Snapshot) PeakBin(lo, hi int) int {
	lo = max(lo, 0)
	hi = min(hi, len(s.Amplitudes))
	if hi <= lo {
		return lo
	}
	return lo + floats.MaxIdx(s.Amplitudes[lo:hi])
}

const (
	slotMask = 0b011
	freshBit = 0b100
)

// Reader is a single consumer's view of the published snapshots. It is a
// lock-free triple buffer: the producer fills its back slot and swaps it
// into the middle, the consumer swaps the middle into its front slot when a
// newer pass is waiting. Each slot is owned by exactly one side at a time,
// so a consumer never observes a partially written pass.
//
// Acquire must only be called from one goroutine.
type Reader struct {
	slots  [3]Snapshot
	back   int           // producer-owned slot index
	front  int           // consumer-owned slot index
	middle atomic.Uint32 // shared slot index, plus freshBit when unread
}

func newReader(size int) *Reader {
	r := &Reader{back: 0, front: 2}
	for i := range r.slots {
		r.slots[i] = Snapshot{
			Amplitudes: make([]float64, size),
			Peak:       DefaultPeak,
		}
	}
	r.middle.Store(1)
	return r
}

// Acquire returns the most recent published snapshot. The returned value is
// owned by the caller until its next call to Acquire and must not be
// retained past it.
func (r *Reader) Acquire() *Snapshot {
	if r.middle.Load()&freshBit != 0 {
		prev := r.middle.Swap(uint32(r.front))
		r.front = int(prev & slotMask)
	}
	return &r.slots[r.front]
}

// Pending reports whether a pass newer than the last acquired one is waiting.
func (r *Reader) Pending() bool {
	return r.middle.Load()&freshBit != 0
}

// stage returns the producer's slot for writing.
func (r *Reader) stage() *Snapshot {
	return &r.slots[r.back]
}

// publish makes the staged slot visible to the consumer.
func (r *Reader) publish() {
	prev := r.middle.Swap(uint32(r.back) | freshBit)
	r.back = int(prev & slotMask)
}
