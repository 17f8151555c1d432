// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"

	"raven/internal/config"
	applog "raven/internal/log"
)

// Engine captures an input device and feeds every buffer to the analyzer.
type Engine struct {
	// Core configuration and state.
	config   *config.Config
	log      *applog.Logger
	analyzer Analyzer

	// Audio input handling.
	inputBuffer  []float32
	inputDevice  *portaudio.DeviceInfo
	inputLatency time.Duration
	inputStream  stream

	// Silence gate. It only reports; analysis runs on every buffer.
	gateEnabled   atomic.Bool
	gateThreshold atomic.Uint64 // math.Float64bits of a [0, 1] amplitude
	silent        atomic.Bool

	// Recording state and buffers.
	isRecording   atomic.Bool
	outputFile    *os.File
	wavEncoder    *wav.Encoder
	sampleBuf     *audio.IntBuffer // Reusable buffer for format conversion
	sampleScale   float64
	writeFailures int
}

// NewEngine resolves the configured input device and preallocates the
// callback buffers.
func NewEngine(cfg *config.Config, analyzer Analyzer) (*Engine, error) {
	inputDevice, err := InputDevice(cfg.Audio.InputDevice)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve input device: %w", err)
	}

	engine := newEngine(cfg, analyzer)
	engine.inputDevice = inputDevice
	if cfg.Audio.LowLatency {
		engine.inputLatency = inputDevice.DefaultLowInputLatency
	} else {
		engine.inputLatency = inputDevice.DefaultHighInputLatency
	}
	return engine, nil
}

func newEngine(cfg *config.Config, analyzer Analyzer) *Engine {
	e := &Engine{
		config:      cfg,
		log:         applog.New("Engine"),
		analyzer:    analyzer,
		inputBuffer: make([]float32, cfg.Audio.FramesPerBuffer*cfg.Audio.InputChannels),
	}
	e.gateEnabled.Store(true)
	e.SetGateThreshold(cfg.Recording.SilenceThreshold)
	return e
}

// Start opens the input stream and, when configured, starts recording.
func (e *Engine) Start() error {
	if e.config.Recording.Enabled {
		if err := os.MkdirAll(e.config.Recording.OutputDir, 0o755); err != nil {
			return fmt.Errorf("failed to create recording directory: %w", err)
		}
		filename := RecordingPath(e.config.Recording.OutputDir, time.Now())
		if err := e.StartRecording(filename); err != nil {
			return err
		}
		e.log.Infof("Recording to %s", filename)
	}

	e.analyzer.Attach()
	if err := e.StartInputStream(); err != nil {
		return fmt.Errorf("failed to start input stream: %w", err)
	}

	name := "default"
	if e.inputDevice != nil {
		name = e.inputDevice.Name
	}
	e.log.Infof("Capturing %s (%.0f Hz, %d ch, %d frames/buffer)",
		name, e.config.Audio.SampleRate, e.config.Audio.InputChannels, e.config.Audio.FramesPerBuffer)
	return nil
}

func (e *Engine) StartInputStream() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: e.config.Audio.InputChannels,
			Device:   e.inputDevice,
			Latency:  e.inputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0, // No output device
			Device:   nil,
		},
		FramesPerBuffer: e.config.Audio.FramesPerBuffer,
		SampleRate:      e.config.Audio.SampleRate,
	}

	stream, err := openStream(params, e.processInputStream)
	if err != nil {
		return err
	}
	e.inputStream = stream

	if err := e.inputStream.Start(); err != nil {
		e.inputStream.Close()
		e.inputStream = nil
		return err
	}

	return nil
}

func (e *Engine) StopInputStream() error {
	if e.inputStream == nil {
		return nil
	}

	// A stream that fails to stop is still closed and forgotten.
	err := errors.Join(e.inputStream.Stop(), e.inputStream.Close())
	e.inputStream = nil
	return err
}

// processInputStream is the core audio processing callback.
// Performance Critical:
// - Runs in a dedicated OS thread (LockOSThread)
// - Uses pre-allocated buffers only
// - No dynamic allocations in the hot path
func (e *Engine) processInputStream(in []float32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	n := copy(e.inputBuffer, in)
	e.processBuffer(e.inputBuffer[:n])

	// Write to WAV file if recording
	if e.isRecording.Load() && e.wavEncoder != nil {
		e.writeRecording(e.inputBuffer[:n])
	}
}

// processBuffer updates the silence gate and runs the analysis.
// Performance Critical (Hot Path):
// - No allocations
// - Branchless absolute value
func (e *Engine) processBuffer(buffer []float32) {
	if e.gateEnabled.Load() {
		var maxAmplitude float32
		for _, sample := range buffer {
			amplitude := absf(sample)
			if amplitude > maxAmplitude {
				maxAmplitude = amplitude
			}
		}
		e.silent.Store(float64(maxAmplitude) <= e.GetGateThreshold())
	}

	e.analyzer.ProcessFrames(buffer, len(buffer)/e.config.Audio.InputChannels)
}

// Close stops capture and recording, then detaches and clears the analyzer.
// Every step runs even when an earlier one fails; the errors are joined.
func (e *Engine) Close() error {
	var errs []error
	if err := e.StopInputStream(); err != nil {
		errs = append(errs, fmt.Errorf("stopping input stream: %w", err))
	}
	if err := e.StopRecording(); err != nil {
		errs = append(errs, fmt.Errorf("stopping recording: %w", err))
	}

	e.analyzer.Detach()
	e.analyzer.Reset()
	return errors.Join(errs...)
}
