// SPDX-License-Identifier: MIT
package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"path/filepath"
	"testing"
	"time"

	"haptic/pkg/utils"
)

func TestByteScaler(t *testing.T) {
	if _, err := NewByteScaler(-30, -100); err == nil {
		t.Error("Expected an inverted decibel window to be rejected")
	}

	s, err := NewByteScaler(DefaultMinDecibels, DefaultMaxDecibels)
	if err != nil {
		t.Fatal(err)
	}

	const fftSize = 1000
	mags := []float64{
		0,                                 // silence
		fftSize,                           // 0 dB, above the window
		fftSize * math.Pow(10, -65.0/20),  // midpoint of [-100, -30]
		fftSize * math.Pow(10, -120.0/20), // below the window
	}
	dst := make([]uint8, len(mags))
	s.Scale(dst, mags, fftSize)

	want := []uint8{0, 255, 127, 0}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("bin %d: got %d, want %d", i, dst[i], want[i])
		}
	}
}

func TestSliceSource(t *testing.T) {
	src := NewUniformSource(100*time.Millisecond, []uint8{1}, []uint8{2}, []uint8{3})
	if d := src.Duration(); d != 200*time.Millisecond {
		t.Errorf("Duration = %s, want 200ms", d)
	}

	ctx := context.Background()
	for i := range 3 {
		f, err := src.Next(ctx)
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if f.TimestampMs != int64(i)*100 || f.Bins[0] != uint8(i+1) {
			t.Errorf("frame %d: unexpected %+v", i, f)
		}
	}
	if _, err := src.Next(ctx); !errors.Is(err, io.EOF) {
		t.Errorf("Expected io.EOF, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := NewSliceSource(Frame{}).Next(cancelled); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if NewSliceSource().Duration() != 0 {
		t.Error("Empty source should report zero duration")
	}
}

func TestParseWindowFunc(t *testing.T) {
	tests := []struct {
		name    string
		want    WindowFunc
		wantErr bool
	}{
		{"", Hann, false},
		{"hanning", Hann, false},
		{"Hamming", Hamming, false},
		{"BLACKMAN", Blackman, false},
		{"BlackmanNuttall", BlackmanNuttall, false},
		{"none", Rectangular, false},
		{"triangle", Hann, true},
	}
	for _, tt := range tests {
		got, err := ParseWindowFunc(tt.name)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseWindowFunc(%q) = %v, %v; want %v, error=%t", tt.name, got, err, tt.want, tt.wantErr)
		}
	}
	if Lanczos.String() != "Lanczos" || WindowFunc(99).String() != "WindowFunc(99)" {
		t.Error("Unexpected String output")
	}
}

func TestWindowCoefficients(t *testing.T) {
	const size = 64
	for _, c := range Rectangular.Coefficients(size) {
		if c != 1 {
			t.Fatalf("Rectangular window should be flat, got %f", c)
		}
	}

	var zero WindowFunc
	hann := zero.Coefficients(size)
	if math.Abs(hann[0]) > 1e-9 {
		t.Errorf("Hann window should start at zero, got %f", hann[0])
	}
	for i := range size / 2 {
		if math.Abs(hann[i]-hann[size-1-i]) > 1e-9 {
			t.Fatalf("Hann window not symmetric at %d", i)
		}
	}
}

func writeTone(t *testing.T, samples []float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := utils.WriteWAV(path, samples, 44100); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWAVSource(t *testing.T) {
	// Quiet enough that no bin clips at 255.
	path := writeTone(t, utils.GenerateSineWave(44100, 44100, 60, 0.01))

	cfg := DefaultSpectrumConfig()
	src, err := OpenWAV(path, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if src.SampleRate() != 44100 {
		t.Errorf("SampleRate = %d", src.SampleRate())
	}
	if d := src.Duration(); d != time.Second {
		t.Errorf("Duration = %s, want 1s", d)
	}

	var frames []Frame
	for {
		f, err := src.Next(context.Background())
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		frames = append(frames, f)
	}
	if len(frames) != 10 {
		t.Fatalf("Expected 10 frames, got %d", len(frames))
	}

	// 60 Hz sits between bins 2 and 3 at 21.5 Hz per bin.
	first := frames[0]
	if len(first.Bins) != cfg.FFTSize/2 {
		t.Fatalf("Expected %d bins, got %d", cfg.FFTSize/2, len(first.Bins))
	}
	if peak := utils.FindPeakBin(first.Bins, 0, len(first.Bins)-1); peak < 2 || peak > 3 {
		t.Errorf("Expected the peak near 60 Hz, got bin %d", peak)
	}
	for i, f := range frames {
		if f.TimestampMs != int64(i)*100 {
			t.Errorf("frame %d: timestamp %d", i, f.TimestampMs)
		}
	}
}

func TestWAVSourceSilence(t *testing.T) {
	path := writeTone(t, make([]float64, 4410))
	src, err := OpenWAV(path, DefaultSpectrumConfig())
	if err != nil {
		t.Fatal(err)
	}
	f, err := src.Next(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for i, b := range f.Bins {
		if b != 0 {
			t.Fatalf("bin %d: expected silence, got %d", i, b)
		}
	}
	if _, err := src.Next(context.Background()); !errors.Is(err, io.EOF) {
		t.Errorf("Expected a single frame, got %v", err)
	}
}

func TestWAVSourceRejects(t *testing.T) {
	if _, err := NewWAVSource(bytes.NewReader([]byte("not a wav file")), DefaultSpectrumConfig()); err == nil {
		t.Error("Expected invalid data to be rejected")
	}

	cfg := DefaultSpectrumConfig()
	cfg.Interval = 0
	if _, err := NewWAVSource(bytes.NewReader(nil), cfg); err == nil {
		t.Error("Expected a zero interval to be rejected")
	}
	if _, err := OpenWAV(filepath.Join(t.TempDir(), "missing.wav"), DefaultSpectrumConfig()); err == nil {
		t.Error("Expected a missing file to be rejected")
	}
}

func TestDeviceType(t *testing.T) {
	tests := map[string]Device{
		"Input/Output": {MaxInputChannels: 2, MaxOutputChannels: 2},
		"Input":        {MaxInputChannels: 1},
		"Output":       {MaxOutputChannels: 2},
		"":             {},
	}
	for want, d := range tests {
		if got := d.Type(); got != want {
			t.Errorf("Type() = %q, want %q", got, want)
		}
	}

	var buf bytes.Buffer
	WriteDevices(&buf, []Device{{ID: 3, Name: "Mic", MaxInputChannels: 1, DefaultSampleRate: 48000}})
	if !bytes.Contains(buf.Bytes(), []byte("[3] Mic (Input)")) {
		t.Errorf("Unexpected device listing:\n%s", buf.String())
	}
}
