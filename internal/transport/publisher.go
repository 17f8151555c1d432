// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"raven/internal/analysis"
	applog "raven/internal/log"
	"raven/internal/viz"
)

// DefaultInterval is used when a publisher is created with a non-positive
// interval (~30Hz).
const DefaultInterval = 33 * time.Millisecond

// ModeSource reports the active visualization mode.
type ModeSource interface {
	Active() viz.Mode
}

// Publisher periodically acquires the latest snapshot through its own
// reader, normalizes it into a Frame and sends the frame to each of its
// transports. It runs in a separate goroutine managed by Start and Stop.
type Publisher struct {
	log        *applog.Logger
	provider   analysis.SnapshotProvider
	reader     *analysis.Reader
	modes      ModeSource
	transports []Transport
	interval   time.Duration
	maxBins    int

	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex // Protects ticker and doneChan during Start/Stop.

	sequenceNum uint32
	sentAny     bool
	normalized  []float64
}

// NewPublisher subscribes a new reader on provider and returns a publisher
// sending to transports every interval. maxBins limits the amplitudes per
// frame; zero or less publishes every bin. modes may be nil, in which case
// frames report viz.Standard.
func NewPublisher(provider analysis.SnapshotProvider, modes ModeSource, interval time.Duration, maxBins int, transports ...Transport) (*Publisher, error) {
	if provider == nil {
		return nil, fmt.Errorf("publisher: snapshot provider cannot be nil")
	}
	if len(transports) == 0 {
		return nil, fmt.Errorf("publisher: at least one transport is required")
	}
	log := applog.New("Publisher")
	if interval <= 0 {
		interval = DefaultInterval
		log.Warnf("Invalid interval provided, defaulting to %s", interval)
	}

	bins := provider.WindowSize()
	if maxBins > 0 && maxBins < bins {
		bins = maxBins
	}
	log.Infof("Initializing (Interval: %s, Bins: %d, Transports: %d)", interval, bins, len(transports))

	return &Publisher{
		log:        log,
		provider:   provider,
		reader:     provider.NewReader(),
		modes:      modes,
		transports: transports,
		interval:   interval,
		maxBins:    bins,
		normalized: make([]float64, provider.WindowSize()),
	}, nil
}

// Start begins the periodic publishing process. It is safe to call Start
// multiple times; subsequent calls are no-ops while running.
func (p *Publisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		p.log.Warnf("Start called but already running.")
		return
	}

	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	ticker := p.ticker
	doneChan := p.doneChan
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.log.Debugf("Publisher goroutine started (Interval: %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				p.publish()
			case <-doneChan:
				return
			}
		}
	}()
}

// Stop signals the publisher goroutine to terminate and waits for it to
// exit. It is safe to call Stop multiple times.
func (p *Publisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return nil
	}
	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})
	p.mu.Unlock()

	p.wg.Wait()
	p.log.Debugf("Publisher goroutine finished.")
	return nil
}

// Close stops the publisher, unsubscribes its reader and closes every
// transport.
func (p *Publisher) Close() error {
	err := p.Stop()
	p.provider.Unsubscribe(p.reader)
	for _, t := range p.transports {
		if cerr := t.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}
	return err
}

// publish sends the latest pass to every transport. A pass that was already
// sent is skipped.
func (p *Publisher) publish() {
	frame, ok := p.buildFrame(time.Now())
	if !ok {
		return
	}
	for _, t := range p.transports {
		if err := t.Send(frame); err != nil {
			p.log.Debugf("Error sending frame %d: %v", frame.Sequence, err)
		}
	}
}

// buildFrame acquires the latest snapshot and converts it into a Frame.
// Each frame owns its amplitude slice because transports may hand it to
// another goroutine.
func (p *Publisher) buildFrame(now time.Time) (Frame, bool) {
	if p.sentAny && !p.reader.Pending() {
		return Frame{}, false
	}
	snap := p.reader.Acquire()
	p.sentAny = true

	snap.NormalizeInto(p.normalized)
	amps := make([]float32, p.maxBins)
	for i := range amps {
		amps[i] = float32(p.normalized[i])
	}

	mode := viz.Standard
	if p.modes != nil {
		mode = p.modes.Active()
	}

	p.sequenceNum++
	return Frame{
		Sequence:   p.sequenceNum,
		Timestamp:  now.UnixNano(),
		Pass:       snap.Sequence,
		Mode:       mode,
		Peak:       snap.Peak,
		Amplitudes: amps,
	}, true
}

// Ensure Publisher satisfies the io.Closer interface at compile time.
var _ interface{ Close() error } = (*Publisher)(nil)
