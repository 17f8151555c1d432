// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrUnsupportedFile is returned for files the player cannot decode.
var ErrUnsupportedFile = errors.New("unsupported audio file")

const wavFormatPCM = 1

// Track is a fully decoded file held as interleaved stereo float32 samples.
type Track struct {
	Path       string
	Samples    []float32 // interleaved L/R
	SampleRate int
	Channels   int // channels in the source file
	BitDepth   int
}

// Frames returns the number of stereo frames.
func (t *Track) Frames() int {
	return len(t.Samples) / 2
}

// Duration returns the playing time.
func (t *Track) Duration() time.Duration {
	if t.SampleRate == 0 {
		return 0
	}
	return time.Duration(float64(t.Frames()) / float64(t.SampleRate) * float64(time.Second))
}

// Name returns the file name without its directory.
func (t *Track) Name() string {
	return filepath.Base(t.Path)
}

// IsSupportedFile reports whether path has an extension the player decodes.
func IsSupportedFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".wav")
}

// LoadTrack decodes the WAV file at path.
func LoadTrack(path string) (*Track, error) {
	if !IsSupportedFile(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	t, err := DecodeTrack(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.Path = path
	return t, nil
}

// DecodeTrack decodes WAV data from r.
func DecodeTrack(r io.ReadSeeker) (*Track, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: invalid WAV file", ErrUnsupportedFile)
	}

	if dec.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: WAV format %d is not integer PCM", ErrUnsupportedFile, dec.WavAudioFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	channels := int(dec.NumChans)
	if channels < 1 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedFile, channels)
	}
	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d-bit samples", ErrUnsupportedFile, bitDepth)
	}

	return &Track{
		Samples:    toStereo(buf, channels, bitDepth),
		SampleRate: int(dec.SampleRate),
		Channels:   channels,
		BitDepth:   bitDepth,
	}, nil
}

// toStereo scales integer PCM to [-1, 1] and interleaves it as stereo.
// Mono is duplicated; channels beyond the second are dropped.
func toStereo(buf *audio.IntBuffer, channels, bitDepth int) []float32 {
	frames := len(buf.Data) / channels
	out := make([]float32, frames*2)

	offset := 0
	if bitDepth == 8 {
		offset = 128 // 8-bit WAV is unsigned
	}
	scale := 1.0 / float64(int(1)<<(bitDepth-1))

	for i := range frames {
		left := float32(float64(buf.Data[i*channels]-offset) * scale)
		right := left
		if channels > 1 {
			right = float32(float64(buf.Data[i*channels+1]-offset) * scale)
		}
		out[2*i] = left
		out[2*i+1] = right
	}
	return out
}
