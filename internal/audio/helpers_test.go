// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"strconv"
	"testing"

	"github.com/gordonklaus/portaudio"

	"raven/internal/config"
)

const (
	testSampleRate = 44100
	testFrameSize  = 256
	testChannels   = 2
)

var (
	quietBuffer = constantBuffer(0.001)
	loudBuffer  = constantBuffer(0.8)

	errStartFailed = errors.New("mock start error")
	errStopFailed  = errors.New("mock stop error")
)

func constantBuffer(v float32) []float32 {
	buf := make([]float32, testFrameSize*testChannels)
	for i := range buf {
		if i%2 == 0 {
			buf[i] = v
		} else {
			buf[i] = -v
		}
	}
	return buf
}

// fakeAnalyzer records calls without allocating on ProcessFrames.
type fakeAnalyzer struct {
	calls      int
	lastFrames int
	last       []float32
	firstLeft  float32
	detached   bool
	events     []string
}

func (f *fakeAnalyzer) Process(interleaved []float32) {
	f.ProcessFrames(interleaved, len(interleaved)/2)
}

func (f *fakeAnalyzer) ProcessFrames(interleaved []float32, frames int) {
	if f.detached {
		return
	}
	f.calls++
	f.lastFrames = frames
	f.last = interleaved
	if len(interleaved) > 0 {
		f.firstLeft = interleaved[0]
	}
}

func (f *fakeAnalyzer) Detach() {
	f.detached = true
	f.events = append(f.events, "detach")
}

func (f *fakeAnalyzer) Attach() {
	f.detached = false
	f.events = append(f.events, "attach")
}

func (f *fakeAnalyzer) Reset() {
	f.events = append(f.events, "reset")
}

// fakeStream stands in for a PortAudio stream.
type fakeStream struct {
	started, stopped, closed bool
	startErr, stopErr        error
	events                   *[]string
}

func (s *fakeStream) Start() error {
	s.started = true
	s.log("start")
	return s.startErr
}

func (s *fakeStream) Stop() error {
	s.stopped = true
	s.log("stop")
	return s.stopErr
}

func (s *fakeStream) Close() error {
	s.closed = true
	s.log("close")
	return nil
}

func (s *fakeStream) log(e string) {
	if s.events != nil {
		*s.events = append(*s.events, e)
	}
}

// stubOpenStream replaces openStream for the duration of the test and
// returns the streams it opened along with their callbacks.
func stubOpenStream(t *testing.T, events *[]string, startErr error) (*[]*fakeStream, *[]any) {
	t.Helper()
	var streams []*fakeStream
	var callbacks []any

	orig := openStream
	t.Cleanup(func() { openStream = orig })
	openStream = func(_ portaudio.StreamParameters, cb any) (stream, error) {
		s := &fakeStream{events: events, startErr: startErr}
		streams = append(streams, s)
		callbacks = append(callbacks, cb)
		if events != nil {
			*events = append(*events, "open")
		}
		return s, nil
	}
	return &streams, &callbacks
}

func failOpenStream(t *testing.T) {
	t.Helper()
	orig := openStream
	t.Cleanup(func() { openStream = orig })
	openStream = func(portaudio.StreamParameters, any) (stream, error) {
		return nil, errors.New("mock open error")
	}
}

func newTestConfig() *config.Config {
	cfg := config.Default()
	cfg.Audio.SampleRate = testSampleRate
	cfg.Audio.InputChannels = testChannels
	cfg.Audio.FramesPerBuffer = testFrameSize
	return cfg
}

func newTestEngine() *Engine {
	return newEngine(newTestConfig(), &fakeAnalyzer{})
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}

func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
