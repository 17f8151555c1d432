// SPDX-License-Identifier: MIT
package config

import "time"

// Core configuration constants that define the boundaries and defaults
// for the visualizer.
const (
	// Audio defaults
	DefaultDeviceID        = MinDeviceID // Default to system default device
	DefaultSampleRate      = 44100       // CD-quality audio
	DefaultFramesPerBuffer = 512         // Balanced latency/performance
	DefaultLowLatency      = false       // Standard latency mode
	DefaultChannels        = 2           // Stereo, downmixed for analysis

	// Analysis defaults
	DefaultWindowSize = 8192   // Samples per transform
	DefaultMagnitude  = "min"  // min(|re|, im)
	DefaultPeakScope  = "full" // Peak over every bin

	// Render defaults
	DefaultFPS          = 60
	DefaultMinAmplitude = 0.01
	DefaultInitialMode  = "standard"

	// Recording defaults
	DefaultFormat           = "wav" // WAV file format for recordings
	DefaultOutputDir        = "./recordings"
	DefaultBitDepth         = 16
	DefaultSilenceThreshold = 0.01

	// Transport defaults
	DefaultUDPTargetAddress = "127.0.0.1:9090"
	DefaultWSAddress        = ":8080"
	DefaultSendInterval     = 33 * time.Millisecond // ~30Hz
	DefaultMaxBins          = 512

	DefaultLogLevel = "info"

	// Hardware and processing limits
	MinDeviceID     = -1     // -1 represents system default device
	MinSampleRate   = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate   = 192000 // Maximum supported sample rate (Hz)
	MaxBufferFrames = 8192   // Maximum frames per buffer (power of 2)
	MaxWindowSize   = 1 << 16
	MaxFPS          = 240

	// Error handling configuration
	MaxConsecutiveWriteFailures = 5 // Max recording write failures before stopping
)

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	Debug     bool            `yaml:"debug"`             // Enable debug logging.
	LogLevel  string          `yaml:"log_level"`         // Logging level ("debug", "info", "warn", "error").
	Command   string          `yaml:"command,omitempty"` // A one-off command to execute instead of visualizing ("list", "devices").
	Audio     AudioConfig     `yaml:"audio"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Render    RenderConfig    `yaml:"render"`
	Recording RecordingConfig `yaml:"recording"`
	Transport TransportConfig `yaml:"transport"`
}

// AudioConfig holds settings related to audio input/output.
type AudioConfig struct {
	InputDevice     int     `yaml:"input_device"`      // PortAudio device index for capture (-1 for default).
	OutputDevice    int     `yaml:"output_device"`     // PortAudio device index for file playback (-1 for default).
	SampleRate      float64 `yaml:"sample_rate"`       // Capture sample rate in Hz. Files play at their own rate.
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Frames delivered per audio callback.
	LowLatency      bool    `yaml:"low_latency"`       // Request low latency settings from PortAudio device.
	InputChannels   int     `yaml:"input_channels"`    // 1 for mono, 2 for stereo.
	File            string  `yaml:"file,omitempty"`    // WAV file to play instead of capturing.
}

// AnalysisConfig holds the spectrum pipeline settings.
type AnalysisConfig struct {
	WindowSize int    `yaml:"window_size"` // Samples per transform, a power of two.
	Magnitude  string `yaml:"magnitude"`   // "min" or "modulus".
	PeakScope  string `yaml:"peak_scope"`  // "full" or "fresh".
}

// RenderConfig holds settings for the terminal visualizer.
type RenderConfig struct {
	FPS          int     `yaml:"fps"`
	MinAmplitude float64 `yaml:"min_amplitude"` // Normalized amplitude at or below which a bin is not drawn.
	InitialMode  string  `yaml:"initial_mode"`
	Headless     bool    `yaml:"headless"` // Run without the terminal UI.
}

// RecordingConfig holds settings related to recording captured input.
type RecordingConfig struct {
	Enabled          bool    `yaml:"enabled"`           // Enable audio recording to file.
	OutputDir        string  `yaml:"output_dir"`        // Directory to save recorded audio files.
	Format           string  `yaml:"format"`            // File format for recordings ("wav").
	BitDepth         int     `yaml:"bit_depth"`         // 16, 24 or 32.
	SilenceThreshold float64 `yaml:"silence_threshold"` // Buffer peak below which input counts as silent.
}

// TransportConfig holds settings related to publishing spectra over the network.
type TransportConfig struct {
	UDPEnabled       bool          `yaml:"udp_enabled"`
	UDPTargetAddress string        `yaml:"udp_target_address"` // e.g. "127.0.0.1:9090".
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`
	WSEnabled        bool          `yaml:"ws_enabled"`
	WSAddress        string        `yaml:"ws_address"` // Listen address for the WebSocket server.
	WSSendInterval   time.Duration `yaml:"ws_send_interval"`
	LogEnabled       bool          `yaml:"log_enabled"` // Log frame summaries at debug level.
	MaxBins          int           `yaml:"max_bins"`    // Bins per frame, 0 for all.
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Audio: AudioConfig{
			InputDevice:     DefaultDeviceID,
			OutputDevice:    DefaultDeviceID,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			LowLatency:      DefaultLowLatency,
			InputChannels:   DefaultChannels,
		},
		Analysis: AnalysisConfig{
			WindowSize: DefaultWindowSize,
			Magnitude:  DefaultMagnitude,
			PeakScope:  DefaultPeakScope,
		},
		Render: RenderConfig{
			FPS:          DefaultFPS,
			MinAmplitude: DefaultMinAmplitude,
			InitialMode:  DefaultInitialMode,
		},
		Recording: RecordingConfig{
			OutputDir:        DefaultOutputDir,
			Format:           DefaultFormat,
			BitDepth:         DefaultBitDepth,
			SilenceThreshold: DefaultSilenceThreshold,
		},
		Transport: TransportConfig{
			UDPTargetAddress: DefaultUDPTargetAddress,
			UDPSendInterval:  DefaultSendInterval,
			WSAddress:        DefaultWSAddress,
			WSSendInterval:   DefaultSendInterval,
			MaxBins:          DefaultMaxBins,
		},
	}
}
