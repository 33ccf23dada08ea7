// SPDX-License-Identifier: MIT
/*
Package source provides frequency sampler adapters. A sampler delivers one
byte-scaled frequency-magnitude vector per tick; the analysis package pulls
from it and never cares where the bins came from.

Adapters:
  - SliceSource: in-memory fixtures for tests and replays.
  - WAVSource: offline analysis of a PCM WAV file.

Real-time capture from a PortAudio input device lives in the live
subpackage, which is the only part of the tree that needs cgo. LiveConfig,
Gate and Recorder stay here so configuration and tests do not.
*/
package source

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"
)

// Frame is one measurement: the frequency-magnitude vector at a playback position.
type Frame struct {
	TimestampMs int64   // Playback position of the measurement.
	Bins        []uint8 // Byte-scaled magnitudes, lowest frequency first.
}

// FrequencySource yields frames in strictly increasing timestamp order.
// Next returns io.EOF once the source is exhausted.
type FrequencySource interface {
	Next(ctx context.Context) (Frame, error)
}

// DurationProvider is implemented by sources that know their total length.
type DurationProvider interface {
	Duration() time.Duration
}

// SliceSource replays a fixed list of frames.
type SliceSource struct {
	frames []Frame
	pos    int
}

// NewSliceSource returns a source over the given frames.
func NewSliceSource(frames ...Frame) *SliceSource {
	return &SliceSource{frames: frames}
}

// NewUniformSource builds frames at a fixed interval from a list of bin vectors.
func NewUniformSource(interval time.Duration, bins ...[]uint8) *SliceSource {
	frames := make([]Frame, len(bins))
	for i, b := range bins {
		frames[i] = Frame{TimestampMs: int64(i) * interval.Milliseconds(), Bins: b}
	}
	return NewSliceSource(frames...)
}

// Next returns the next frame or io.EOF.
func (s *SliceSource) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if s.pos >= len(s.frames) {
		return Frame{}, io.EOF
	}
	f := s.frames[s.pos]
	s.pos++
	return f, nil
}

// Duration reports the timestamp of the last frame.
func (s *SliceSource) Duration() time.Duration {
	if len(s.frames) == 0 {
		return 0
	}
	return time.Duration(s.frames[len(s.frames)-1].TimestampMs) * time.Millisecond
}

// Default byte-scaling range, matching the browser AnalyserNode defaults.
const (
	DefaultMinDecibels = -100.0
	DefaultMaxDecibels = -30.0
)

// ByteScaler maps linear FFT magnitudes onto the [0,255] byte range via a
// decibel window.
type ByteScaler struct {
	MinDecibels float64
	MaxDecibels float64
}

// NewByteScaler validates the decibel window.
func NewByteScaler(minDb, maxDb float64) (ByteScaler, error) {
	if minDb >= maxDb {
		return ByteScaler{}, fmt.Errorf("min decibels (%.1f) must be below max decibels (%.1f)", minDb, maxDb)
	}
	return ByteScaler{MinDecibels: minDb, MaxDecibels: maxDb}, nil
}

// Scale writes byte-scaled magnitudes into dst. Magnitudes are normalized by
// fftSize before conversion to decibels. dst must be at least len(magnitudes).
func (s ByteScaler) Scale(dst []uint8, magnitudes []float64, fftSize int) {
	span := s.MaxDecibels - s.MinDecibels
	norm := 1.0 / float64(fftSize)
	for i, m := range magnitudes {
		m *= norm
		if m <= 0 {
			dst[i] = 0
			continue
		}
		db := 20 * math.Log10(m)
		v := 255 * (db - s.MinDecibels) / span
		switch {
		case v <= 0:
			dst[i] = 0
		case v >= 255:
			dst[i] = 255
		default:
			dst[i] = uint8(v)
		}
	}
}
