// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"raven/internal/config"
)

// RecordingPath returns a timestamped file name inside dir.
func RecordingPath(dir string, now time.Time) string {
	return filepath.Join(dir, "raven-"+now.Format("20060102-150405")+".wav")
}

func (e *Engine) StartRecording(filename string) error {
	if e.isRecording.Load() {
		return fmt.Errorf("already recording")
	}

	bitDepth := e.config.Recording.BitDepth
	if bitDepth == 0 {
		bitDepth = config.DefaultBitDepth
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	e.outputFile = file

	channels := e.config.Audio.InputChannels
	e.wavEncoder = wav.NewEncoder(file, int(e.config.Audio.SampleRate),
		bitDepth, channels, wavFormatPCM)

	e.sampleBuf = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  int(e.config.Audio.SampleRate),
		},
		Data:           make([]int, e.config.Audio.FramesPerBuffer*channels),
		SourceBitDepth: bitDepth,
	}
	e.sampleScale = float64(int(1)<<(bitDepth-1) - 1)
	e.writeFailures = 0

	e.isRecording.Store(true)

	return nil
}

// writeRecording converts float samples to the recording bit depth and
// appends them to the WAV file. Recording stops after too many consecutive
// write failures.
func (e *Engine) writeRecording(samples []float32) {
	data := e.sampleBuf.Data[:cap(e.sampleBuf.Data)]
	n := min(len(samples), len(data))
	for i, sample := range samples[:n] {
		s := max(-1, min(1, float64(sample)))
		data[i] = int(s * e.sampleScale)
	}
	e.sampleBuf.Data = data[:n]

	if err := e.wavEncoder.Write(e.sampleBuf); err != nil {
		e.writeFailures++
		e.log.Errorf("Error writing to WAV file: %v", err)
		if e.writeFailures >= config.MaxConsecutiveWriteFailures {
			e.log.Errorf("Recording stopped after %d consecutive write failures", e.writeFailures)
			e.isRecording.Store(false)
		}
		return
	}
	e.writeFailures = 0
}

func (e *Engine) StopRecording() error {
	if e.wavEncoder == nil && e.outputFile == nil {
		return nil
	}

	e.isRecording.Store(false)

	var errs []error
	if e.wavEncoder != nil {
		errs = append(errs, e.wavEncoder.Close())
		e.wavEncoder = nil
	}
	if e.outputFile != nil {
		errs = append(errs, e.outputFile.Close())
		e.outputFile = nil
	}
	return errors.Join(errs...)
}

// Recording reports whether captured input is being written to disk.
func (e *Engine) Recording() bool {
	return e.isRecording.Load()
}
