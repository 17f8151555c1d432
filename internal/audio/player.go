// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gordonklaus/portaudio"

	"raven/internal/config"
	applog "raven/internal/log"
)

const (
	playerChannels = 2
	volumeStep     = 0.1
)

// Player plays decoded WAV tracks through an output device and taps every
// delivered buffer into the analyzer before volume is applied, so the
// display does not depend on the volume setting.
type Player struct {
	log      *applog.Logger
	analyzer Analyzer

	device          *portaudio.DeviceInfo
	framesPerBuffer int
	lowLatency      bool

	mu     sync.Mutex // serializes Load and Close
	stream stream

	track    atomic.Pointer[Track]
	position atomic.Int64 // next frame to play
	paused   atomic.Bool
	muted    atomic.Bool
	finished atomic.Bool
	volume   atomic.Uint64 // math.Float64bits
}

// NewPlayer resolves the configured output device. Nothing plays until Load.
func NewPlayer(cfg *config.Config, analyzer Analyzer) (*Player, error) {
	device, err := OutputDevice(cfg.Audio.OutputDevice)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output device: %w", err)
	}
	p := newPlayer(analyzer, cfg.Audio.FramesPerBuffer)
	p.device = device
	p.lowLatency = cfg.Audio.LowLatency
	return p, nil
}

func newPlayer(analyzer Analyzer, framesPerBuffer int) *Player {
	p := &Player{
		log:             applog.New("Player"),
		analyzer:        analyzer,
		framesPerBuffer: framesPerBuffer,
	}
	p.volume.Store(math.Float64bits(1))
	return p
}

// Load decodes path and starts playing it from the beginning. The current
// stream is stopped first, then the analyzer is detached and reset, so no
// callback can observe the swap.
func (p *Player) Load(path string) error {
	t, err := LoadTrack(path)
	if err != nil {
		return err
	}
	return p.Play(t)
}

// Play swaps in an already decoded track.
func (p *Player) Play(t *Track) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.closeStream(); err != nil {
		return err
	}
	p.analyzer.Detach()
	p.analyzer.Reset()

	p.track.Store(t)
	p.position.Store(0)
	p.finished.Store(false)

	s, err := openStream(p.streamParameters(t.SampleRate), p.processOutputStream)
	if err != nil {
		return fmt.Errorf("failed to open output stream: %w", err)
	}
	p.stream = s

	p.analyzer.Attach()
	if err := s.Start(); err != nil {
		p.analyzer.Detach()
		p.stream = nil
		return errors.Join(fmt.Errorf("failed to start output stream: %w", err), s.Close())
	}

	p.log.Infof("Playing %s (%d Hz, %d ch, %d-bit, %s)",
		t.Name(), t.SampleRate, t.Channels, t.BitDepth, t.Duration().Round(time.Second))
	return nil
}

func (p *Player) streamParameters(sampleRate int) portaudio.StreamParameters {
	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Channels: playerChannels,
			Device:   p.device,
		},
		FramesPerBuffer: p.framesPerBuffer,
		SampleRate:      float64(sampleRate),
	}
	if p.device != nil {
		if p.lowLatency {
			params.Output.Latency = p.device.DefaultLowOutputLatency
		} else {
			params.Output.Latency = p.device.DefaultHighOutputLatency
		}
	}
	return params
}

// processOutputStream fills out with the next frames of the track.
// Performance Critical:
// - No allocations or locks
// - The analyzer sees the samples before volume is applied
func (p *Player) processOutputStream(out []float32) {
	t := p.track.Load()
	if t == nil || p.paused.Load() || p.finished.Load() {
		clear(out)
		return
	}

	pos := int(p.position.Load())
	n := copy(out, t.Samples[pos*playerChannels:])
	frames := n / playerChannels
	clear(out[n:])

	if frames > 0 {
		p.analyzer.ProcessFrames(out[:n], frames)
	}

	pos += frames
	p.position.Store(int64(pos))
	if pos >= t.Frames() {
		p.finished.Store(true)
	}

	if gain := float32(p.gain()); gain != 1 {
		for i := range out[:n] {
			out[i] *= gain
		}
	}
}

func (p *Player) gain() float64 {
	if p.muted.Load() {
		return 0
	}
	return math.Float64frombits(p.volume.Load())
}

// Close stops playback and clears the analyzer.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.closeStream()
	p.analyzer.Detach()
	p.analyzer.Reset()
	p.track.Store(nil)
	return err
}

// closeStream stops and closes the current stream. Stop returns only after
// the running callback has finished.
func (p *Player) closeStream() error {
	if p.stream == nil {
		return nil
	}
	s := p.stream
	p.stream = nil
	if err := s.Stop(); err != nil {
		s.Close()
		return fmt.Errorf("failed to stop output stream: %w", err)
	}
	if err := s.Close(); err != nil {
		return fmt.Errorf("failed to close output stream: %w", err)
	}
	return nil
}

// TogglePause pauses or resumes playback and reports whether it is now paused.
// A paused player outputs silence and does not feed the analyzer.
func (p *Player) TogglePause() bool {
	for {
		cur := p.paused.Load()
		if p.paused.CompareAndSwap(cur, !cur) {
			return !cur
		}
	}
}

// Paused reports whether playback is paused.
func (p *Player) Paused() bool {
	return p.paused.Load()
}

// ToggleMute mutes or unmutes output and reports whether it is now muted.
func (p *Player) ToggleMute() bool {
	for {
		cur := p.muted.Load()
		if p.muted.CompareAndSwap(cur, !cur) {
			return !cur
		}
	}
}

// Muted reports whether output is muted.
func (p *Player) Muted() bool {
	return p.muted.Load()
}

// Volume returns the output volume in [0, 1].
func (p *Player) Volume() float64 {
	return math.Float64frombits(p.volume.Load())
}

// SetVolume clamps v to [0, 1] and rounds it to the volume step.
func (p *Player) SetVolume(v float64) float64 {
	v = math.Round(max(0, min(1, v))/volumeStep) * volumeStep
	p.volume.Store(math.Float64bits(v))
	return v
}

// VolumeUp raises the volume by one step.
func (p *Player) VolumeUp() float64 {
	return p.SetVolume(p.Volume() + volumeStep)
}

// VolumeDown lowers the volume by one step.
func (p *Player) VolumeDown() float64 {
	return p.SetVolume(p.Volume() - volumeStep)
}

// Track returns the loaded track, or nil.
func (p *Player) Track() *Track {
	return p.track.Load()
}

// Position returns the playing time of the current track.
func (p *Player) Position() time.Duration {
	t := p.track.Load()
	if t == nil || t.SampleRate == 0 {
		return 0
	}
	return time.Duration(float64(p.position.Load()) / float64(t.SampleRate) * float64(time.Second))
}

// Finished reports whether the current track played to its end.
func (p *Player) Finished() bool {
	return p.finished.Load()
}
