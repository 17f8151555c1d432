// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"raven/internal/fft"
	applog "raven/internal/log"
	"raven/pkg/bitint"
)

// Options configures a Pipeline.
type Options struct {
	WindowSize int       // Samples in the sliding window; must be a power of two.
	SampleRate float64   // Sample rate of the analyzed stream (Hz).
	Channels   int       // Interleaved channels per frame, 1 or 2.
	Metric     Metric    // Magnitude metric.
	PeakScope  PeakScope // Bins inspected for the peak.
}

// Pipeline is the real-time analysis callback. Every call to Process
// downmixes and appends each frame to the sliding window, transforms the
// whole window, extracts amplitudes and publishes them to every subscribed
// Reader. The window, spectrum and amplitude buffers are owned by the
// producer; consumers only ever see the published copies.
type Pipeline struct {
	windowSize int
	sampleRate float64
	channels   int

	window     *SlidingWindow
	analyzer   *fft.Analyzer
	extractor  *Extractor
	spectrum   []complex128
	amplitudes []float64
	peak       float64
	sequence   uint64

	detached atomic.Bool
	readers  atomic.Pointer[[]*Reader]
	subMu    sync.Mutex // serializes NewReader/Unsubscribe

	latestMu sync.Mutex // guards the reader backing Latest*
	latest   *Reader
}

// NewPipeline validates opts and allocates every buffer the hot path needs.
func NewPipeline(opts Options) (*Pipeline, error) {
	if !bitint.IsPowerOfTwo(opts.WindowSize) {
		return nil, fmt.Errorf("window size must be a power of 2, got %d (nearest valid: %d)",
			opts.WindowSize, bitint.NearestPowerOfTwo(opts.WindowSize))
	}
	if opts.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", opts.SampleRate)
	}
	if opts.Channels != 1 && opts.Channels != 2 {
		return nil, fmt.Errorf("channels must be 1 or 2, got %d", opts.Channels)
	}

	analyzer := fft.NewAnalyzer(opts.WindowSize)
	applog.Infof("Analysis: Initializing pipeline (Window: %d, Depth: %d, SampleRate: %.1f Hz, Channels: %d, Metric: %s, Peak: %s)",
		opts.WindowSize, analyzer.Depth(), opts.SampleRate, opts.Channels, opts.Metric, opts.PeakScope)

	p := &Pipeline{
		windowSize: opts.WindowSize,
		sampleRate: opts.SampleRate,
		channels:   opts.Channels,
		window:     NewSlidingWindow(opts.WindowSize),
		analyzer:   analyzer,
		extractor:  NewExtractor(opts.Metric, opts.PeakScope),
		spectrum:   make([]complex128, opts.WindowSize),
		amplitudes: make([]float64, opts.WindowSize),
		peak:       DefaultPeak,
	}
	p.latest = p.NewReader()
	return p, nil
}

// Process analyzes one buffer of interleaved frames. Implements AudioProcessor.
func (p *Pipeline) Process(interleaved []float32) {
	p.ProcessFrames(interleaved, len(interleaved)/p.channels)
}

// ProcessFrames analyzes the first frames frames of interleaved. It does
// nothing while the pipeline is detached.
func (p *Pipeline) ProcessFrames(interleaved []float32, frames int) {
	if p.detached.Load() {
		return
	}
	frames = min(frames, len(interleaved)/p.channels)

	if p.channels == 1 {
		for i := range frames {
			p.window.Append(float64(interleaved[i]))
		}
	} else {
		for i := range frames {
			p.window.AppendStereo(interleaved[2*i], interleaved[2*i+1])
		}
	}

	p.analyzer.TransformInto(p.spectrum, p.window.Samples())
	p.peak = p.extractor.Extract(p.amplitudes, p.spectrum, frames)
	p.sequence++
	p.publish(frames)
}

func (p *Pipeline) publish(frames int) {
	readers := p.readers.Load()
	if readers == nil {
		return
	}
	for _, r := range *readers {
		s := r.stage()
		copy(s.Amplitudes, p.amplitudes)
		s.Peak = p.peak
		s.Sequence = p.sequence
		s.Frames = frames
		r.publish()
	}
}

// NewReader subscribes a new consumer. Each consumer goroutine needs its
// own Reader. Safe to call while the producer is running.
func (p *Pipeline) NewReader() *Reader {
	r := newReader(p.windowSize)

	p.subMu.Lock()
	defer p.subMu.Unlock()

	var next []*Reader
	if cur := p.readers.Load(); cur != nil {
		next = slices.Clone(*cur)
	}
	next = append(next, r)
	p.readers.Store(&next)
	return r
}

// Unsubscribe stops publishing to r.
func (p *Pipeline) Unsubscribe(r *Reader) {
	p.subMu.Lock()
	defer p.subMu.Unlock()

	cur := p.readers.Load()
	if cur == nil {
		return
	}
	next := slices.DeleteFunc(slices.Clone(*cur), func(x *Reader) bool { return x == r })
	p.readers.Store(&next)
}

// Detach makes subsequent Process calls no-ops. Audio sources call it after
// their stream has stopped and before Reset.
func (p *Pipeline) Detach() {
	p.detached.Store(true)
}

// Attach re-enables processing after Detach.
func (p *Pipeline) Attach() {
	p.detached.Store(false)
}

// Detached reports whether the pipeline is ignoring callbacks.
func (p *Pipeline) Detached() bool {
	return p.detached.Load()
}

// Reset zeroes the window, spectrum and amplitudes, restores the default
// peak and publishes the empty pass so no consumer keeps stale bins. It must
// not run concurrently with Process: detach the producer first.
func (p *Pipeline) Reset() {
	p.window.Reset()
	clear(p.spectrum)
	clear(p.amplitudes)
	p.peak = DefaultPeak
	p.sequence++
	p.publish(0)
}

// LatestSnapshot returns a private copy of the most recently published
// pass. Amplitudes, peak and sequence always belong to the same pass.
func (p *Pipeline) LatestSnapshot() Snapshot {
	p.latestMu.Lock()
	defer p.latestMu.Unlock()
	s := *p.latest.Acquire()
	s.Amplitudes = slices.Clone(s.Amplitudes)
	return s
}

// LatestAmplitudes returns a private copy of the most recently published
// raw amplitudes.
func (p *Pipeline) LatestAmplitudes() []float64 {
	return p.LatestSnapshot().Amplitudes
}

// LatestPeak returns the peak of the most recently published pass.
func (p *Pipeline) LatestPeak() float64 {
	p.latestMu.Lock()
	defer p.latestMu.Unlock()
	return p.latest.Acquire().Peak
}

// FrequencyForBin returns the center frequency (Hz) of a bin, or 0 for an
// out of range index. Implements SnapshotProvider.
func (p *Pipeline) FrequencyForBin(binIndex int) float64 {
	if binIndex < 0 || binIndex >= p.windowSize {
		return 0.0
	}
	return float64(binIndex) * (p.sampleRate / float64(p.windowSize))
}

// WindowSize returns the number of samples per pass. Implements SnapshotProvider.
func (p *Pipeline) WindowSize() int {
	return p.windowSize
}

// SampleRate returns the configured sample rate. Implements SnapshotProvider.
func (p *Pipeline) SampleRate() float64 {
	return p.sampleRate
}
