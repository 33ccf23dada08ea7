// SPDX-License-Identifier: MIT
package source

import (
	"context"
	"fmt"
	"io"
	"math/cmplx"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mjibson/go-dsp/fft"

	applog "haptic/internal/log"
)

var wavLog = applog.With("source/wav")

// SpectrumConfig controls how raw PCM is turned into frequency frames.
type SpectrumConfig struct {
	Interval time.Duration // Distance between successive frames.
	FFTSize  int           // Samples per analysis window; bins = FFTSize/2.
	Window   WindowFunc
	Scaler   ByteScaler
}

// DefaultSpectrumConfig mirrors a 2048-point analyser polled every 100ms.
func DefaultSpectrumConfig() SpectrumConfig {
	return SpectrumConfig{
		Interval: 100 * time.Millisecond,
		FFTSize:  2048,
		Scaler:   ByteScaler{MinDecibels: DefaultMinDecibels, MaxDecibels: DefaultMaxDecibels},
	}
}

// Validate checks the interval, FFT size and decibel window.
func (c SpectrumConfig) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("spectrum interval must be positive, got %s", c.Interval)
	}
	if c.FFTSize < 2 {
		return fmt.Errorf("fft size must be at least 2, got %d", c.FFTSize)
	}
	if c.Scaler.MinDecibels >= c.Scaler.MaxDecibels {
		return fmt.Errorf("invalid decibel window [%.1f, %.1f]", c.Scaler.MinDecibels, c.Scaler.MaxDecibels)
	}
	return nil
}

// WAVSource produces frequency frames from a decoded PCM WAV file. The whole
// file is decoded up front; frames are computed lazily on Next.
type WAVSource struct {
	cfg        SpectrumConfig
	samples    []float64 // Mono mixdown in [-1,1].
	sampleRate int
	hop        int // Samples between frames.
	pos        int // Index of the next frame.

	// Pre-allocated buffers reused on every Next.
	windowed []float64
	coeffs   []float64
	mags     []float64
}

// OpenWAV decodes the WAV file at path.
func OpenWAV(path string, cfg SpectrumConfig) (*WAVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wav file: %w", err)
	}
	defer f.Close()
	return NewWAVSource(f, cfg)
}

// NewWAVSource decodes WAV data from r.
func NewWAVSource(r io.ReadSeeker, cfg SpectrumConfig) (*WAVSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("not a valid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode wav data: %w", err)
	}
	if buf.Format == nil || buf.Format.SampleRate <= 0 || buf.Format.NumChannels <= 0 {
		return nil, fmt.Errorf("wav file has no usable format")
	}

	samples := mixdown(buf)
	hop := int(float64(buf.Format.SampleRate) * cfg.Interval.Seconds())
	if hop < 1 {
		hop = 1
	}

	coeffs := cfg.Window.Coefficients(cfg.FFTSize)

	wavLog.Infof("Decoded %d frames (%d Hz, %d ch, %d bit), hop %d samples",
		len(samples), buf.Format.SampleRate, buf.Format.NumChannels, buf.SourceBitDepth, hop)

	return &WAVSource{
		cfg:        cfg,
		samples:    samples,
		sampleRate: buf.Format.SampleRate,
		hop:        hop,
		windowed:   make([]float64, cfg.FFTSize),
		coeffs:     coeffs,
		mags:       make([]float64, cfg.FFTSize/2),
	}, nil
}

// mixdown averages all channels into a mono signal normalized to [-1,1].
func mixdown(buf *audio.IntBuffer) []float64 {
	channels := buf.Format.NumChannels
	depth := buf.SourceBitDepth
	if depth <= 0 {
		depth = 16
	}
	scale := 1.0 / float64(int64(1)<<(depth-1))

	frames := len(buf.Data) / channels
	out := make([]float64, frames)
	for i := range frames {
		var sum float64
		for c := range channels {
			sum += float64(buf.Data[i*channels+c])
		}
		out[i] = sum / float64(channels) * scale
	}
	return out
}

// Next computes the spectrum of the window starting at the next hop.
func (s *WAVSource) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	start := s.pos * s.hop
	if start >= len(s.samples) {
		return Frame{}, io.EOF
	}

	for i := range s.windowed {
		if start+i < len(s.samples) {
			s.windowed[i] = s.samples[start+i] * s.coeffs[i]
		} else {
			s.windowed[i] = 0 // Zero-pad the tail.
		}
	}

	// go-dsp accepts any length, so FFTSize need not be a power of two.
	out := fft.FFTReal(s.windowed)
	for i := range s.mags {
		s.mags[i] = cmplx.Abs(out[i])
	}

	bins := make([]uint8, len(s.mags))
	s.cfg.Scaler.Scale(bins, s.mags, s.cfg.FFTSize)

	frame := Frame{
		TimestampMs: int64(s.pos) * s.cfg.Interval.Milliseconds(),
		Bins:        bins,
	}
	s.pos++
	return frame, nil
}

// Duration returns the length of the decoded audio.
func (s *WAVSource) Duration() time.Duration {
	return time.Duration(float64(len(s.samples)) / float64(s.sampleRate) * float64(time.Second))
}

// SampleRate returns the sample rate of the decoded file.
func (s *WAVSource) SampleRate() int {
	return s.sampleRate
}
