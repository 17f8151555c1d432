// SPDX-License-Identifier: MIT
package analysis

import (
	"sync"
	"testing"
)

func stageValue(r *Reader, v float64, seq uint64) {
	s := r.stage()
	for i := range s.Amplitudes {
		s.Amplitudes[i] = v
	}
	s.Peak = v
	s.Sequence = seq
	r.publish()
}

func TestReaderInitialSnapshot(t *testing.T) {
	r := newReader(4)
	s := r.Acquire()
	if s.Peak != DefaultPeak || s.Sequence != 0 || len(s.Amplitudes) != 4 {
		t.Errorf("initial snapshot = %+v, want zeroed amplitudes with default peak", *s)
	}
	if r.Pending() {
		t.Error("fresh reader should have nothing pending")
	}
}

func TestReaderReturnsLatestPublication(t *testing.T) {
	r := newReader(4)
	stageValue(r, 1, 1)
	stageValue(r, 2, 2)
	stageValue(r, 3, 3)

	if !r.Pending() {
		t.Fatal("expected a pending publication")
	}
	s := r.Acquire()
	if s.Sequence != 3 || s.Amplitudes[0] != 3 {
		t.Errorf("Acquire() = seq %d amp %v, want seq 3 amp 3", s.Sequence, s.Amplitudes[0])
	}

	// Nothing new: the same slot is returned again.
	if again := r.Acquire(); again != s {
		t.Error("Acquire without a new publication should return the same snapshot")
	}
}

func TestReaderAcquiredSlotIsStableUntilNextAcquire(t *testing.T) {
	r := newReader(2)
	stageValue(r, 1, 1)
	held := r.Acquire()

	// The producer keeps publishing while the consumer holds its slot.
	for i := 2; i < 10; i++ {
		stageValue(r, float64(i), uint64(i))
	}
	if held.Sequence != 1 || held.Amplitudes[0] != 1 {
		t.Errorf("held snapshot changed under the consumer: %+v", *held)
	}
	if next := r.Acquire(); next.Sequence != 9 {
		t.Errorf("next Acquire sequence = %d, want 9", next.Sequence)
	}
}

// Every staged pass has all bins equal to its sequence number, so any mix of
// two passes within one acquired snapshot is a torn read.
func TestReaderNoTornReads(t *testing.T) {
	const (
		size   = 1024
		passes = 20000
	)
	r := newReader(size)

	var wg sync.WaitGroup
	done := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(done)
		for seq := uint64(1); seq <= passes; seq++ {
			stageValue(r, float64(seq), seq)
		}
	}()

	var last uint64
	for {
		select {
		case <-done:
			wg.Wait()
			if s := r.Acquire(); s.Sequence != passes {
				t.Errorf("final sequence = %d, want %d", s.Sequence, passes)
			}
			return
		default:
		}

		s := r.Acquire()
		if s.Sequence < last {
			t.Fatalf("sequence went backwards: %d after %d", s.Sequence, last)
		}
		last = s.Sequence
		want := float64(s.Sequence)
		for i, v := range s.Amplitudes {
			if s.Sequence != 0 && v != want {
				t.Fatalf("torn snapshot: bin %d = %v in pass %d", i, v, s.Sequence)
			}
		}
	}
}

func TestSnapshotPeakBin(t *testing.T) {
	s := &Snapshot{Amplitudes: []float64{0, 5, 1, 9, 2}}
	tests := []struct {
		lo, hi, want int
	}{
		{0, 5, 3},
		{0, 3, 1},
		{4, 10, 4},
		{3, 3, 3},
	}
	for _, tt := range tests {
		if got := s.PeakBin(tt.lo, tt.hi); got != tt.want {
			t.Errorf("PeakBin(%d, %d) = %d, want %d", tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestSnapshotNormalizeInto(t *testing.T) {
	s := &Snapshot{Amplitudes: []float64{1, 2, 4}, Peak: 4}
	dst := make([]float64, 3)
	s.NormalizeInto(dst)
	if dst[0] != 0.25 || dst[1] != 0.5 || dst[2] != 1 {
		t.Errorf("NormalizeInto = %v, want [0.25 0.5 1]", dst)
	}
}
