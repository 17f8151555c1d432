// SPDX-License-Identifier: MIT
package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

// captureOutput redirects the logger into a buffer for the duration of the test.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevLevel := GetLevel()
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(prevLevel)
	})
	return &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in    string
		level LogLevel
		ok    bool
	}{
		{"debug", LevelDebug, true},
		{"INFO", LevelInfo, true},
		{"Warning", LevelWarn, true},
		{"error", LevelError, true},
		{"fatal", LevelFatal, true},
		{"verbose", LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			level, ok := ParseLevel(tt.in)
			if level != tt.level || ok != tt.ok {
				t.Errorf("ParseLevel(%q) = (%s, %v), want (%s, %v)", tt.in, level, ok, tt.level, tt.ok)
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := captureOutput(t)
	SetLevel(LevelWarn)

	Debugf("hidden %d", 1)
	Infof("hidden %d", 2)
	Warnf("shown %d", 3)
	Errorf("shown %d", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("messages below the level were logged: %q", out)
	}
	if !strings.Contains(out, "[WARN]  shown 3") || !strings.Contains(out, "[ERROR] shown 4") {
		t.Errorf("expected warn and error messages, got %q", out)
	}
}

func TestConfigure(t *testing.T) {
	captureOutput(t)

	if got := Configure("error", false); got != LevelError {
		t.Errorf("Configure(error) = %s, want ERROR", got)
	}
	if got := Configure("error", true); got != LevelDebug {
		t.Errorf("Configure(error, debug) = %s, want DEBUG", got)
	}
	if got := Configure("nonsense", false); got != LevelInfo {
		t.Errorf("Configure(nonsense) = %s, want INFO", got)
	}
}

func TestComponentLogger(t *testing.T) {
	buf := captureOutput(t)
	SetLevel(LevelDebug)

	l := New("Player")
	l.Infof("loaded %s", "song.wav")
	l.Debugf("frames %d", 512)

	out := buf.String()
	if !strings.Contains(out, "[INFO]  Player: loaded song.wav") {
		t.Errorf("missing component prefix in %q", out)
	}
	if !strings.Contains(out, "[DEBUG] Player: frames 512") {
		t.Errorf("missing debug line in %q", out)
	}
}
