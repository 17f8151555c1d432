// SPDX-License-Identifier: MIT
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"raven/cmd"
	"raven/internal/audio"
	"raven/internal/config"
	"raven/internal/core"
	applog "raven/internal/log"
	"raven/internal/transport"
	"raven/internal/transport/udp"
	"raven/internal/tui"
	"raven/pkg/build"
)

// source is the running audio producer, capture or file playback.
type source interface {
	Close() error
}

// session is what startSource hands to the hot path. Exactly one of
// engine and player is set.
type session struct {
	core   *core.Core
	src    source
	engine *audio.Engine
	player *audio.Player
	next   func() (string, error)
}

// main is the entry point for the spectrum visualizer.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Configure runtime settings
//   - Initialize PortAudio
//   - Parse command line arguments
//   - Execute one-off commands if requested
//
// 2. Concurrent Phase (Hot Path):
//   - Start capture or file playback
//   - Start spectrum publishers
//   - Run the terminal display, or wait for a signal when headless
//
// 3. Shutdown Phase (Cold Path):
//   - Stop the audio source
//   - Close publishers and transports
//   - Terminate PortAudio
func main() {
	if err := run(); err != nil {
		applog.Fatalf("%v", err)
	}
}

func run() error {
	// ==================== STARTUP PHASE (Cold Path) ====================

	// Development builds carry no ldflags; keep the defaults.
	if err := build.Initialize(); err != nil {
		applog.Debugf("Build: %v, using development defaults", err)
	}

	// Limit OS threads to optimize for real-time audio processing:
	// - One thread dedicated to the audio callback (time-critical)
	// - One thread for UI and I/O operations
	runtime.GOMAXPROCS(2)

	opts, err := cmd.ParseArgs()
	if err != nil {
		return err
	}
	if opts == nil {
		return nil
	}
	cfg := opts.Config
	applog.Configure(cfg.LogLevel, cfg.Debug)

	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()

	// Handle one-off commands that don't require an audio stream
	if cfg.Command != "" {
		return executeCommand(cfg.Command)
	}

	// The terminal owns stdout and stderr while the display runs.
	if !cfg.Render.Headless {
		closeLog, err := redirectLog()
		if err != nil {
			return err
		}
		defer closeLog()
	}

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	sess, err := startSource(cfg, opts.Files)
	if err != nil {
		return err
	}

	publishers, err := startPublishers(cfg, sess.core)
	if err != nil {
		return errors.Join(err, sess.src.Close())
	}

	var runErr error
	if cfg.Render.Headless {
		applog.Infof("Running headless, press Ctrl+C to stop")
		done := make(chan os.Signal, 1)
		signal.Notify(done, os.Interrupt, syscall.SIGTERM)
		<-done
	} else {
		tuiOpts := tui.Options{
			FPS:       cfg.Render.FPS,
			Threshold: cfg.Render.MinAmplitude,
			Title:     title(opts.Files),
			Next:      sess.next,
		}
		if sess.player != nil {
			tuiOpts.Playback = sess.player
		}
		if sess.engine != nil {
			tuiOpts.Capture = sess.engine
		}
		runErr = tui.Run(tui.NewVisualizerModel(sess.core, tuiOpts))
	}

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	errs := []error{runErr}
	if err := sess.src.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing audio source: %w", err))
	}
	for _, p := range publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing publisher: %w", err))
		}
	}
	return errors.Join(errs...)
}

// startSource builds the analysis core and starts either file playback or
// input capture. The core's sample rate is fixed here, so playback uses the
// first track's rate.
func startSource(cfg *config.Config, files []string) (*session, error) {
	if len(files) == 0 {
		c, err := core.New(cfg, cfg.Audio.SampleRate, cfg.Audio.InputChannels)
		if err != nil {
			return nil, err
		}
		engine, err := audio.NewEngine(cfg, c)
		if err != nil {
			return nil, err
		}
		if err := engine.Start(); err != nil {
			return nil, errors.Join(err, engine.Close())
		}
		return &session{core: c, src: engine, engine: engine}, nil
	}

	first, err := audio.LoadTrack(files[0])
	if err != nil {
		return nil, err
	}
	c, err := core.New(cfg, float64(first.SampleRate), 2)
	if err != nil {
		return nil, err
	}
	player, err := audio.NewPlayer(cfg, c)
	if err != nil {
		return nil, err
	}
	if err := player.Play(first); err != nil {
		return nil, err
	}

	var next func() (string, error)
	if len(files) > 1 {
		index := 0
		next = func() (string, error) {
			index = (index + 1) % len(files)
			if err := player.Load(files[index]); err != nil {
				return "", err
			}
			if t := player.Track(); t != nil && float64(t.SampleRate) != c.SampleRate() {
				applog.Warnf("Playlist: %s plays at %d Hz, frequencies are labeled for %.0f Hz",
					t.Name(), t.SampleRate, c.SampleRate())
			}
			return filepath.Base(files[index]), nil
		}
	}
	return &session{core: c, src: player, player: player, next: next}, nil
}

// startPublishers starts one publisher per enabled transport.
func startPublishers(cfg *config.Config, c *core.Core) ([]*transport.Publisher, error) {
	var publishers []*transport.Publisher
	closeAll := func() {
		for _, p := range publishers {
			p.Close()
		}
	}
	add := func(interval time.Duration, t transport.Transport) error {
		p, err := transport.NewPublisher(c, c, interval, cfg.Transport.MaxBins, t)
		if err != nil {
			return errors.Join(err, t.Close())
		}
		p.Start()
		publishers = append(publishers, p)
		return nil
	}

	if cfg.Transport.WSEnabled {
		ws, err := transport.NewWebSocketTransport(cfg.Transport.WSAddress)
		if err != nil {
			closeAll()
			return nil, err
		}
		if err := add(cfg.Transport.WSSendInterval, ws); err != nil {
			closeAll()
			return nil, err
		}
		applog.Infof("WebSocket: serving spectrum frames on %s", ws.Addr())
	}

	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			closeAll()
			return nil, err
		}
		if err := add(cfg.Transport.UDPSendInterval, sender); err != nil {
			closeAll()
			return nil, err
		}
		applog.Infof("UDP: sending spectrum frames to %s", cfg.Transport.UDPTargetAddress)
	}

	if cfg.Transport.LogEnabled {
		if err := add(config.DefaultSendInterval, transport.NewLoggingTransport()); err != nil {
			closeAll()
			return nil, err
		}
	}
	return publishers, nil
}

// executeCommand handles one-off commands that don't require an audio
// stream, such as listing available audio devices.
func executeCommand(command string) error {
	switch command {
	case "list":
		return audio.ListDevices(os.Stdout)
	case "devices":
		sel, ok, err := tui.StartDeviceListUI()
		if err != nil || !ok {
			return err
		}
		fmt.Printf("Selected %s\n\n  %s --device %d --sample-rate %.0f\n",
			sel.DeviceName, build.GetBuildFlags().Name, sel.DeviceID, sel.SampleRate)
		return nil
	default:
		return fmt.Errorf("unknown command: '%s'", command)
	}
}

// redirectLog sends log output to a file in the temp directory for the
// lifetime of the display.
func redirectLog() (func(), error) {
	path := filepath.Join(os.TempDir(), build.GetBuildFlags().Name+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	applog.SetOutput(f)
	return func() {
		applog.SetOutput(os.Stderr)
		f.Close()
	}, nil
}

func title(files []string) string {
	if len(files) == 0 {
		return "input"
	}
	return filepath.Base(files[0])
}
