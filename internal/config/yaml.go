// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"raven/internal/analysis"
	applog "raven/internal/log"
	"raven/internal/viz"
	"raven/pkg/bitint"
)

// candidates are searched in order when LoadConfig is given no path.
var candidates = []string{
	"config.yaml",
	"raven.yaml",
}

// LoadConfig loads configuration from a YAML file specified by path. If path is empty,
// it searches default locations. If no file is found, it uses built-in defaults.
// After loading, it applies environment variable overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate reports every invalid field, joined into one error.
func (c *Config) Validate() error {
	var errs []error

	if _, ok := applog.ParseLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("log_level '%s' is not one of debug, info, warn, error", c.LogLevel))
	}

	// Audio
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		errs = append(errs, fmt.Errorf("audio.sample_rate %.0f outside [%d, %d]", c.Audio.SampleRate, MinSampleRate, MaxSampleRate))
	}
	if c.Audio.FramesPerBuffer <= 0 || c.Audio.FramesPerBuffer > MaxBufferFrames {
		errs = append(errs, fmt.Errorf("audio.frames_per_buffer %d outside [1, %d]", c.Audio.FramesPerBuffer, MaxBufferFrames))
	}
	if c.Audio.InputChannels != 1 && c.Audio.InputChannels != 2 {
		errs = append(errs, fmt.Errorf("audio.input_channels must be 1 or 2, got %d", c.Audio.InputChannels))
	}
	if c.Audio.InputDevice < MinDeviceID || c.Audio.OutputDevice < MinDeviceID {
		errs = append(errs, fmt.Errorf("audio device ids must be >= %d", MinDeviceID))
	}

	// Analysis
	if !bitint.IsPowerOfTwo(c.Analysis.WindowSize) || c.Analysis.WindowSize > MaxWindowSize {
		errs = append(errs, fmt.Errorf("analysis.window_size must be a power of 2 up to %d, got %d (nearest valid: %d)",
			MaxWindowSize, c.Analysis.WindowSize, min(bitint.NearestPowerOfTwo(c.Analysis.WindowSize), MaxWindowSize)))
	}
	if _, err := analysis.ParseMetric(c.Analysis.Magnitude); err != nil {
		errs = append(errs, fmt.Errorf("analysis.magnitude: %w", err))
	}
	if _, err := analysis.ParsePeakScope(c.Analysis.PeakScope); err != nil {
		errs = append(errs, fmt.Errorf("analysis.peak_scope: %w", err))
	}

	// Render
	if c.Render.FPS <= 0 || c.Render.FPS > MaxFPS {
		errs = append(errs, fmt.Errorf("render.fps %d outside [1, %d]", c.Render.FPS, MaxFPS))
	}
	if c.Render.MinAmplitude < 0 || c.Render.MinAmplitude >= 1 {
		errs = append(errs, fmt.Errorf("render.min_amplitude %v outside [0, 1)", c.Render.MinAmplitude))
	}
	if _, err := viz.ParseMode(c.Render.InitialMode); err != nil {
		errs = append(errs, fmt.Errorf("render.initial_mode: %w", err))
	}

	// Recording
	if c.Recording.Enabled {
		if !strings.EqualFold(c.Recording.Format, "wav") {
			errs = append(errs, fmt.Errorf("recording.format '%s' is not supported, only wav", c.Recording.Format))
		}
		switch c.Recording.BitDepth {
		case 16, 24, 32:
		default:
			errs = append(errs, fmt.Errorf("recording.bit_depth must be 16, 24 or 32, got %d", c.Recording.BitDepth))
		}
	}

	// Transport
	if c.Transport.UDPEnabled {
		if c.Transport.UDPTargetAddress == "" {
			errs = append(errs, errors.New("transport.udp_target_address must be set when UDP is enabled"))
		} else if !strings.Contains(c.Transport.UDPTargetAddress, ":") {
			errs = append(errs, fmt.Errorf("transport.udp_target_address '%s' appears invalid (missing port?)", c.Transport.UDPTargetAddress))
		}
		if c.Transport.UDPSendInterval <= 0 {
			errs = append(errs, errors.New("transport.udp_send_interval must be positive when UDP is enabled"))
		}
	}
	if c.Transport.WSEnabled {
		if c.Transport.WSAddress == "" {
			errs = append(errs, errors.New("transport.ws_address must be set when WebSocket is enabled"))
		}
		if c.Transport.WSSendInterval <= 0 {
			errs = append(errs, errors.New("transport.ws_send_interval must be positive when WebSocket is enabled"))
		}
	}
	if c.Transport.MaxBins < 0 {
		errs = append(errs, fmt.Errorf("transport.max_bins must not be negative, got %d", c.Transport.MaxBins))
	}

	return errors.Join(errs...)
}

// applyEnvOverrides replaces fields from ENV_* variables. Values that fail
// to parse are ignored.
func (c *Config) applyEnvOverrides() {
	// ENV_DEBUG
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Debug = bVal
			applog.Infof("configuration: Overriding debug from env: %v", bVal)
		}
	}
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		c.LogLevel = val
		applog.Infof("configuration: Overriding log_level from env: %s", val)
	}
	// ENV_WINDOW_SIZE
	if val, ok := os.LookupEnv("ENV_WINDOW_SIZE"); ok {
		if n, err := strconv.Atoi(val); err == nil {
			c.Analysis.WindowSize = n
			applog.Infof("configuration: Overriding analysis.window_size from env: %d", n)
		}
	}

	// ENV_UDP_{...}
	// These are specific to the transport layer.

	// ENV_UDP_ENABLED
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Transport.UDPEnabled = bVal
			applog.Infof("configuration: Overriding transport.udp_enabled from env: %v", bVal)
		}
	}
	// ENV_UDP_TARGET_ADDRESS
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		c.Transport.UDPTargetAddress = val
		applog.Infof("configuration: Overriding transport.udp_target_address from env: %s", val)
	}
	// ENV_UDP_SEND_INTERVAL
	if val, ok := os.LookupEnv("ENV_UDP_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			c.Transport.UDPSendInterval = dur
			applog.Infof("configuration: Overriding transport.udp_send_interval from env: %s", dur)
		}
	}

	// ENV_WS_ENABLED
	if val, ok := os.LookupEnv("ENV_WS_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Transport.WSEnabled = bVal
			applog.Infof("configuration: Overriding transport.ws_enabled from env: %v", bVal)
		}
	}
	// ENV_WS_ADDRESS
	if val, ok := os.LookupEnv("ENV_WS_ADDRESS"); ok {
		c.Transport.WSAddress = val
		applog.Infof("configuration: Overriding transport.ws_address from env: %s", val)
	}
}
