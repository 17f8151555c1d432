// SPDX-License-Identifier: MIT

// Package core ties the analysis pipeline and the mode selector together.
// Audio sources feed it, render consumers and publishers read from it, and
// the controller cycles its mode.
package core

import (
	"fmt"

	"raven/internal/analysis"
	"raven/internal/config"
	applog "raven/internal/log"
	"raven/internal/viz"
)

// Core owns one Pipeline and one Selector for the lifetime of the process.
type Core struct {
	pipeline *analysis.Pipeline
	selector *viz.Selector
}

// New builds a Core from the analysis and render sections of cfg. The
// sample rate and channel count come from the audio source that will feed
// it.
func New(cfg *config.Config, sampleRate float64, channels int) (*Core, error) {
	metric, err := analysis.ParseMetric(cfg.Analysis.Magnitude)
	if err != nil {
		return nil, err
	}
	scope, err := analysis.ParsePeakScope(cfg.Analysis.PeakScope)
	if err != nil {
		return nil, err
	}
	mode, err := viz.ParseMode(cfg.Render.InitialMode)
	if err != nil {
		return nil, err
	}

	pipeline, err := analysis.NewPipeline(analysis.Options{
		WindowSize: cfg.Analysis.WindowSize,
		SampleRate: sampleRate,
		Channels:   channels,
		Metric:     metric,
		PeakScope:  scope,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis pipeline: %w", err)
	}

	applog.Debugf("Core: Initial mode %s", mode)
	return &Core{
		pipeline: pipeline,
		selector: viz.NewDefaultSelector(mode),
	}, nil
}

// Process forwards a callback buffer to the pipeline.
func (c *Core) Process(interleaved []float32) { c.pipeline.Process(interleaved) }

// ProcessFrames forwards a callback buffer to the pipeline.
func (c *Core) ProcessFrames(interleaved []float32, frames int) {
	c.pipeline.ProcessFrames(interleaved, frames)
}

// Detach makes the pipeline ignore further callbacks.
func (c *Core) Detach() { c.pipeline.Detach() }

// Attach resumes processing.
func (c *Core) Attach() { c.pipeline.Attach() }

// Reset clears the pipeline and publishes the empty pass. The smoothing
// history of each consumer's mapper is reset by that consumer when it sees
// the reset pass.
func (c *Core) Reset() { c.pipeline.Reset() }

// LatestSnapshot returns a private copy of the last published pass.
func (c *Core) LatestSnapshot() analysis.Snapshot { return c.pipeline.LatestSnapshot() }

// LatestAmplitudes returns a private copy of the last published amplitudes.
func (c *Core) LatestAmplitudes() []float64 { return c.pipeline.LatestAmplitudes() }

// LatestPeak returns the peak of the last published pass.
func (c *Core) LatestPeak() float64 { return c.pipeline.LatestPeak() }

// ActiveMode returns the selected visualization mode.
func (c *Core) ActiveMode() viz.Mode { return c.selector.Active() }

// Active implements the publishers' mode source.
func (c *Core) Active() viz.Mode { return c.selector.Active() }

// CycleForward selects the next mode.
func (c *Core) CycleForward() viz.Mode { return c.selector.CycleForward() }

// CycleBackward selects the previous mode.
func (c *Core) CycleBackward() viz.Mode { return c.selector.CycleBackward() }

// NewReader subscribes a consumer.
func (c *Core) NewReader() *analysis.Reader { return c.pipeline.NewReader() }

// Unsubscribe stops publishing to r.
func (c *Core) Unsubscribe(r *analysis.Reader) { c.pipeline.Unsubscribe(r) }

// FrequencyForBin returns the center frequency (Hz) of a bin.
func (c *Core) FrequencyForBin(binIndex int) float64 { return c.pipeline.FrequencyForBin(binIndex) }

// WindowSize returns the number of bins per pass.
func (c *Core) WindowSize() int { return c.pipeline.WindowSize() }

// SampleRate returns the sample rate of the analyzed stream.
func (c *Core) SampleRate() float64 { return c.pipeline.SampleRate() }

var (
	_ analysis.AudioProcessor   = (*Core)(nil)
	_ analysis.Lifecycle        = (*Core)(nil)
	_ analysis.SnapshotProvider = (*Core)(nil)
)
