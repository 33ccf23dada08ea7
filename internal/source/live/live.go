// SPDX-License-Identifier: MIT

// Package live captures frequency frames from a PortAudio input device.
package live

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"
	"time"

	"github.com/gordonklaus/portaudio"
	"gonum.org/v1/gonum/dsp/fourier"

	applog "haptic/internal/log"
	"haptic/internal/source"
	"haptic/pkg/bitint"
)

var log = applog.With("source/live")

// Source yields one frame per spectrum interval from an input stream. Reads
// block for one interval of audio, so the device paces the caller.
type Source struct {
	cfg    source.LiveConfig
	stream *portaudio.Stream

	fft      *fourier.FFT
	gate     source.Gate
	recorder *source.Recorder

	// Pre-allocated buffers reused on every Next.
	input     []int32      // Interleaved PortAudio read buffer (hop × channels).
	history   []float64    // Sliding mono window of FFTSize samples.
	windowed  []float64    // Windowed copy of history.
	coeffs    []float64    // Window coefficients.
	fftOutput []complex128 // FFT complex output (FFTSize/2+1).
	mags      []float64    // Magnitudes without the Nyquist bin.

	pos int
}

// Open opens and starts an input stream. PortAudio must be initialized.
func Open(cfg source.LiveConfig) (*Source, error) {
	if err := cfg.Spectrum.Validate(); err != nil {
		return nil, err
	}
	if !bitint.IsPowerOfTwo(cfg.Spectrum.FFTSize) {
		return nil, fmt.Errorf("fft size must be a power of 2, got %d", cfg.Spectrum.FFTSize)
	}
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", cfg.SampleRate)
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}

	device, err := inputDevice(cfg.DeviceID)
	if err != nil {
		return nil, err
	}

	latency := device.DefaultHighInputLatency
	if cfg.LowLatency {
		latency = device.DefaultLowInputLatency
	}

	hop := int(cfg.SampleRate * cfg.Spectrum.Interval.Seconds())
	if hop < 1 {
		hop = 1
	}

	s := &Source{
		cfg:       cfg,
		fft:       fourier.NewFFT(cfg.Spectrum.FFTSize),
		gate:      source.NewGate(cfg.GateThreshold),
		input:     make([]int32, hop*cfg.Channels),
		history:   make([]float64, cfg.Spectrum.FFTSize),
		windowed:  make([]float64, cfg.Spectrum.FFTSize),
		coeffs:    cfg.Spectrum.Window.Coefficients(cfg.Spectrum.FFTSize),
		fftOutput: make([]complex128, cfg.Spectrum.FFTSize/2+1),
		mags:      make([]float64, cfg.Spectrum.FFTSize/2),
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: cfg.Channels,
			Latency:  latency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0, // No output device
			Device:   nil,
		},
		SampleRate:      cfg.SampleRate,
		FramesPerBuffer: hop,
	}

	if cfg.RecordPath != "" {
		rec, err := source.NewRecorder(cfg.RecordPath, int(cfg.SampleRate), cfg.Channels)
		if err != nil {
			return nil, err
		}
		s.recorder = rec
	}

	// Passing a buffer instead of a callback selects blocking I/O.
	stream, err := portaudio.OpenStream(params, s.input)
	if err != nil {
		s.closeRecorder()
		return nil, fmt.Errorf("failed to open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		s.closeRecorder()
		return nil, fmt.Errorf("failed to start input stream: %w", err)
	}
	s.stream = stream

	log.Infof("Capturing from %q (%.0f Hz, %d ch, hop %d, fft %d)",
		device.Name, cfg.SampleRate, cfg.Channels, hop, cfg.Spectrum.FFTSize)
	return s, nil
}

// Next blocks for one interval of audio and returns its spectrum.
func (s *Source) Next(ctx context.Context) (source.Frame, error) {
	if err := ctx.Err(); err != nil {
		return source.Frame{}, err
	}
	if s.stream == nil {
		return source.Frame{}, fmt.Errorf("live source is closed")
	}
	if err := s.stream.Read(); err != nil {
		return source.Frame{}, fmt.Errorf("failed to read input stream: %w", err)
	}
	if s.recorder != nil {
		if err := s.recorder.Write(s.input); err != nil {
			return source.Frame{}, err
		}
	}

	// A closed gate feeds silence into the window.
	scale := 1 / float64(math.MaxInt32)
	if !s.gate.Open(s.input) {
		scale = 0
	}

	// Slide the mono window and append the first channel of the new block.
	hop := len(s.input) / s.cfg.Channels
	size := len(s.history)
	if hop >= size {
		for i := range size {
			s.history[i] = float64(s.input[(hop-size+i)*s.cfg.Channels]) * scale
		}
	} else {
		copy(s.history, s.history[hop:])
		for i := range hop {
			s.history[size-hop+i] = float64(s.input[i*s.cfg.Channels]) * scale
		}
	}

	for i := range s.windowed {
		s.windowed[i] = s.history[i] * s.coeffs[i]
	}
	s.fft.Coefficients(s.fftOutput, s.windowed)
	for i := range s.mags {
		s.mags[i] = cmplx.Abs(s.fftOutput[i])
	}

	bins := make([]uint8, len(s.mags))
	s.cfg.Spectrum.Scaler.Scale(bins, s.mags, s.cfg.Spectrum.FFTSize)

	frame := source.Frame{
		TimestampMs: int64(s.pos) * s.cfg.Spectrum.Interval.Milliseconds(),
		Bins:        bins,
	}
	s.pos++
	return frame, nil
}

// Elapsed returns the amount of audio captured so far.
func (s *Source) Elapsed() time.Duration {
	return time.Duration(s.pos) * s.cfg.Spectrum.Interval
}

// Close stops and closes the input stream and finalizes any recording.
func (s *Source) Close() error {
	if s.stream == nil {
		return s.closeRecorder()
	}
	stream := s.stream
	s.stream = nil
	if err := stream.Stop(); err != nil {
		stream.Close()
		s.closeRecorder()
		return fmt.Errorf("failed to stop input stream: %w", err)
	}
	if err := stream.Close(); err != nil {
		s.closeRecorder()
		return fmt.Errorf("failed to close input stream: %w", err)
	}
	log.Debugf("Input stream closed after %s", s.Elapsed())
	return s.closeRecorder()
}

func (s *Source) closeRecorder() error {
	if s.recorder == nil {
		return nil
	}
	rec := s.recorder
	s.recorder = nil
	if err := rec.Close(); err != nil {
		return err
	}
	log.Infof("Recorded %d frames to %s", rec.Frames(), s.cfg.RecordPath)
	return nil
}
