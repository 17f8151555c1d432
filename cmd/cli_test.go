// SPDX-License-Identifier: MIT
package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"raven/internal/audio"
	"raven/internal/config"
)

func parse(t *testing.T, args ...string) (*Options, string, error) {
	t.Helper()
	var out bytes.Buffer
	opts, err := parseArgs(args, &out)
	return opts, out.String(), err
}

func TestParseArgsDefaults(t *testing.T) {
	opts, _, err := parse(t)
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	cfg := opts.Config
	if cfg.Command != "" || len(opts.Files) != 0 {
		t.Errorf("command %q files %v", cfg.Command, opts.Files)
	}
	if cfg.Analysis.WindowSize != config.DefaultWindowSize || cfg.Render.InitialMode != config.DefaultInitialMode {
		t.Errorf("defaults not applied: %+v", cfg.Analysis)
	}
	if cfg.Transport.WSEnabled || cfg.Transport.UDPEnabled {
		t.Error("transports should be off by default")
	}
}

func TestParseArgsFlagsOverride(t *testing.T) {
	opts, _, err := parse(t,
		"--window-size", "4096",
		"--mode", "starburst",
		"--peak-scope", "fresh",
		"--fps", "30",
		"--ws",
		"--udp", "10.0.0.1:9000",
		"-d", "3",
		"-v",
	)
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	cfg := opts.Config
	if cfg.Analysis.WindowSize != 4096 || cfg.Analysis.PeakScope != "fresh" {
		t.Errorf("analysis = %+v", cfg.Analysis)
	}
	if cfg.Render.InitialMode != "starburst" || cfg.Render.FPS != 30 {
		t.Errorf("render = %+v", cfg.Render)
	}
	if !cfg.Transport.WSEnabled || cfg.Transport.WSAddress != config.DefaultWSAddress {
		t.Errorf("--ws without a value should use the default address: %+v", cfg.Transport)
	}
	if !cfg.Transport.UDPEnabled || cfg.Transport.UDPTargetAddress != "10.0.0.1:9000" {
		t.Errorf("udp = %v %q", cfg.Transport.UDPEnabled, cfg.Transport.UDPTargetAddress)
	}
	if cfg.Audio.InputDevice != 3 || !cfg.Debug {
		t.Errorf("device %d debug %v", cfg.Audio.InputDevice, cfg.Debug)
	}
}

func TestParseArgsConfigFileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raven.yaml")
	yaml := "analysis:\n  window_size: 2048\nrender:\n  fps: 30\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	opts, _, err := parse(t, "--config", path, "--fps", "50")
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if opts.Config.Analysis.WindowSize != 2048 {
		t.Errorf("window size = %d, want 2048 from the file", opts.Config.Analysis.WindowSize)
	}
	if opts.Config.Render.FPS != 50 {
		t.Errorf("fps = %d, want the flag's 50", opts.Config.Render.FPS)
	}
}

func TestParseArgsSubcommands(t *testing.T) {
	for _, name := range []string{"list", "devices"} {
		opts, _, err := parse(t, name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if opts.Config.Command != name {
			t.Errorf("Command = %q, want %q", opts.Config.Command, name)
		}
	}
	if _, _, err := parse(t, "list", "extra"); err == nil {
		t.Error("list should reject arguments")
	}
}

func TestParseArgsFiles(t *testing.T) {
	opts, _, err := parse(t, "one.wav", "two.WAV")
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if len(opts.Files) != 2 || opts.Files[1] != "two.WAV" {
		t.Errorf("Files = %v", opts.Files)
	}

	_, _, err = parse(t, "one.wav", "song.mp3")
	if !errors.Is(err, audio.ErrUnsupportedFile) || !strings.Contains(err.Error(), "song.mp3") {
		t.Errorf("mp3 error = %v", err)
	}

	if _, _, err := parse(t, "--record", "one.wav"); err == nil {
		t.Error("recording a file playback should be rejected")
	}
}

func TestParseArgsInvalid(t *testing.T) {
	tests := []struct {
		args    []string
		wantErr string
	}{
		{[]string{"--window-size", "1000"}, "nearest valid: 1024"},
		{[]string{"--mode", "spiral"}, "visualization mode"},
		{[]string{"--magnitude", "phase"}, "magnitude metric"},
		{[]string{"--no-such-flag"}, "unknown flag"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			_, _, err := parse(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseArgsHelpAndVersion(t *testing.T) {
	opts, out, err := parse(t, "--help")
	if err != nil || opts != nil {
		t.Fatalf("--help = %v, %v", opts, err)
	}
	for _, want := range []string{"devices", "--window-size", "--peak-scope"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q", want)
		}
	}

	opts, out, err = parse(t, "--version")
	if err != nil || opts != nil {
		t.Fatalf("--version = %v, %v", opts, err)
	}
	if !strings.Contains(out, "dev") {
		t.Errorf("version output = %q", out)
	}
}
