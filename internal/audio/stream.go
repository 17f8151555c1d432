// SPDX-License-Identifier: MIT
/*
Package audio feeds the analysis pipeline from PortAudio:
- Engine captures an input device, with optional WAV recording
- Player plays WAV files through an output device
- Devices lists and resolves PortAudio devices

Thread Safety:
- Callbacks run on the PortAudio thread and only touch preallocated buffers
- State shared with control goroutines is held in atomics
- Stopping a stream waits for the running callback, so the analyzer can be
  detached and reset safely afterwards
*/
package audio

import (
	"github.com/gordonklaus/portaudio"

	"raven/internal/analysis"
)

// Analyzer is what an audio source drives: the real-time processor plus the
// detach/reset handshake used on teardown.
type Analyzer interface {
	analysis.AudioProcessor
	analysis.Lifecycle
}

// stream is the subset of *portaudio.Stream the sources use.
type stream interface {
	Start() error
	Stop() error
	Close() error
}

// openStream opens a PortAudio stream, replaceable in tests.
var openStream = func(params portaudio.StreamParameters, callback any) (stream, error) {
	s, err := portaudio.OpenStream(params, callback)
	if err != nil {
		return nil, err
	}
	return s, nil
}
