// SPDX-License-Identifier: MIT

// Package cmd parses the command line into the visualizer's configuration.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"raven/internal/audio"
	"raven/internal/config"
	"raven/pkg/build"
)

// Options is the parsed command line.
type Options struct {
	Config *config.Config
	Files  []string // WAV files to play in order; empty to capture input.
}

// flagValues holds raw flag values until they are merged over the file
// configuration.
type flagValues struct {
	configPath      string
	device          int
	outputDevice    int
	channels        int
	sampleRate      float64
	framesPerBuffer int
	lowLatency      bool
	windowSize      int
	magnitude       string
	peakScope       string
	fps             int
	mode            string
	headless        bool
	record          bool
	outputDir       string
	verbose         bool
	logLevel        string
	ws              string
	udp             string
}

// ParseArgs parses os.Args. It returns nil options when there is nothing to
// run, e.g. after --help or --version.
func ParseArgs() (*Options, error) {
	return parseArgs(os.Args[1:], os.Stdout)
}

func parseArgs(args []string, out io.Writer) (*Options, error) {
	buildInfo := build.GetBuildFlags()
	var (
		flags   flagValues
		options *Options
	)

	run := func(command string) func(*cobra.Command, []string) error {
		return func(c *cobra.Command, args []string) error {
			opts, err := resolve(c.Flags(), &flags, args)
			if err != nil {
				return err
			}
			opts.Config.Command = command
			options = opts
			return nil
		}
	}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name + " [file.wav ...]",
		Short:         buildInfo.Description,
		Long:          buildInfo.Description + ".\n\nWith no files the default input device is analyzed; with WAV files they are played in order.",
		Version:       buildInfo.VersionString(),
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.ArbitraryArgs,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: run(""),
	}
	rootCmd.SetOut(out)
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Args:  cobra.NoArgs,
		RunE:  run("list"),
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "devices",
		Short: "Browse audio devices interactively",
		Args:  cobra.NoArgs,
		RunE:  run("devices"),
	})

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Path to a YAML configuration file (default: ./config.yaml or ./raven.yaml)")

	// Audio Device Configuration
	pf.IntVarP(&flags.device, "device", "d", config.DefaultDeviceID,
		"Input device ID. Use the 'list' command to see available devices.")
	pf.IntVar(&flags.outputDevice, "output-device", config.DefaultDeviceID,
		"Output device ID for file playback")
	pf.IntVarP(&flags.channels, "channels", "c", config.DefaultChannels,
		"Number of input channels to capture (1=mono, 2=stereo)")
	pf.Float64VarP(&flags.sampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Capture sample rate, measured in Hertz (Hz)")
	pf.IntVarP(&flags.framesPerBuffer, "frames-per-buffer", "b", config.DefaultFramesPerBuffer,
		"The number of frames per buffer (affects latency)")
	pf.BoolVarP(&flags.lowLatency, "low-latency", "l", config.DefaultLowLatency,
		"Use low latency mode for real-time processing")

	// Analysis Configuration
	pf.IntVarP(&flags.windowSize, "window-size", "w", config.DefaultWindowSize,
		"Samples per transform, a power of two")
	pf.StringVar(&flags.magnitude, "magnitude", config.DefaultMagnitude,
		"Magnitude metric: min or modulus")
	pf.StringVar(&flags.peakScope, "peak-scope", config.DefaultPeakScope,
		"Bins inspected for the normalization peak: full or fresh")

	// Render Configuration
	pf.IntVar(&flags.fps, "fps", config.DefaultFPS, "Frames per second of the terminal display")
	pf.StringVarP(&flags.mode, "mode", "m", config.DefaultInitialMode,
		"Initial mode: standard, pixel, waveform, starburst or radial-bars")
	pf.BoolVar(&flags.headless, "headless", false, "Run without the terminal display until interrupted")

	// Recording Configuration
	pf.BoolVarP(&flags.record, "record", "r", false, "Record captured input to a WAV file")
	pf.StringVarP(&flags.outputDir, "output-dir", "o", config.DefaultOutputDir, "Directory for recordings")

	// Transport Configuration
	pf.StringVar(&flags.ws, "ws", config.DefaultWSAddress, "Serve spectrum frames over WebSocket on this address")
	pf.Lookup("ws").NoOptDefVal = config.DefaultWSAddress
	pf.StringVar(&flags.udp, "udp", config.DefaultUDPTargetAddress, "Send spectrum frames as UDP packets to this address")
	pf.Lookup("udp").NoOptDefVal = config.DefaultUDPTargetAddress

	// Debug Configuration
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Show verbose output")
	pf.StringVar(&flags.logLevel, "log-level", config.DefaultLogLevel, "Log level: debug, info, warn or error")

	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	return options, nil
}

// resolve loads the configuration file and overlays every flag the user set.
func resolve(fs *pflag.FlagSet, flags *flagValues, files []string) (*Options, error) {
	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}

	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("device", func() { cfg.Audio.InputDevice = flags.device })
	set("output-device", func() { cfg.Audio.OutputDevice = flags.outputDevice })
	set("channels", func() { cfg.Audio.InputChannels = flags.channels })
	set("sample-rate", func() { cfg.Audio.SampleRate = flags.sampleRate })
	set("frames-per-buffer", func() { cfg.Audio.FramesPerBuffer = flags.framesPerBuffer })
	set("low-latency", func() { cfg.Audio.LowLatency = flags.lowLatency })
	set("window-size", func() { cfg.Analysis.WindowSize = flags.windowSize })
	set("magnitude", func() { cfg.Analysis.Magnitude = flags.magnitude })
	set("peak-scope", func() { cfg.Analysis.PeakScope = flags.peakScope })
	set("fps", func() { cfg.Render.FPS = flags.fps })
	set("mode", func() { cfg.Render.InitialMode = flags.mode })
	set("headless", func() { cfg.Render.Headless = flags.headless })
	set("record", func() { cfg.Recording.Enabled = flags.record })
	set("output-dir", func() { cfg.Recording.OutputDir = flags.outputDir })
	set("ws", func() {
		cfg.Transport.WSEnabled = true
		cfg.Transport.WSAddress = flags.ws
	})
	set("udp", func() {
		cfg.Transport.UDPEnabled = true
		cfg.Transport.UDPTargetAddress = flags.udp
	})
	set("verbose", func() { cfg.Debug = flags.verbose })
	set("log-level", func() { cfg.LogLevel = flags.logLevel })

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if len(files) == 0 && cfg.Audio.File != "" {
		files = []string{cfg.Audio.File}
	}
	var errs []error
	for _, f := range files {
		if !audio.IsSupportedFile(f) {
			errs = append(errs, fmt.Errorf("%w: '%s'", audio.ErrUnsupportedFile, f))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if len(files) > 0 && cfg.Recording.Enabled {
		return nil, fmt.Errorf("--record only applies to captured input, not file playback")
	}

	return &Options{Config: cfg, Files: files}, nil
}
