// SPDX-License-Identifier: MIT
// Package utils holds fixtures shared by tests: a recording transport,
// synthetic signals and a WAV writer.
package utils

import (
	"cmp"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// RecordingTransport implements the Transport interface for testing. It keeps
// every value sent to it.
type RecordingTransport struct {
	mu     sync.Mutex
	sent   []any
	closed bool
}

// Send stores the data for later inspection instead of transmitting.
func (r *RecordingTransport) Send(data any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("recording transport is closed")
	}
	r.sent = append(r.sent, data)
	return nil
}

// Close marks the transport closed; later sends fail.
func (r *RecordingTransport) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Sent returns a copy of everything sent so far.
func (r *RecordingTransport) Sent() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.sent...)
}

// Len returns the number of values sent so far.
func (r *RecordingTransport) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

// GenerateSineWave returns size samples of a sine at frequency, scaled by
// amplitude (1.0 is full scale).
func GenerateSineWave(size int, sampleRate, frequency, amplitude float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = math.Sin(2*math.Pi*frequency*t) * amplitude
	}
	return buffer
}

// GenerateBursts alternates bursts of a tone with silence, each segment
// lasting segment samples, for size samples in total. The signal starts
// with a burst.
func GenerateBursts(size, segment int, sampleRate, frequency, amplitude float64) []float64 {
	tone := GenerateSineWave(size, sampleRate, frequency, amplitude)
	for i := range tone {
		if (i/segment)%2 == 1 {
			tone[i] = 0
		}
	}
	return tone
}

// PCM converts samples in [-1,1] to signed integers at the given bit depth.
func PCM(samples []float64, bitDepth int) []int {
	full := float64(int64(1)<<(bitDepth-1) - 1)
	out := make([]int, len(samples))
	for i, s := range samples {
		out[i] = int(math.Round(math.Max(-1, math.Min(1, s)) * full))
	}
	return out
}

// WriteWAV writes mono 16-bit PCM to path.
func WriteWAV(path string, samples []float64, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           PCM(samples, 16),
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to encode wav: %w", err)
	}
	return enc.Close()
}

// FindPeakBin returns the index of the largest value in values[startBin:endBin+1].
// Out-of-range bounds are clamped.
func FindPeakBin[T cmp.Ordered](values []T, startBin, endBin int) int {
	if len(values) == 0 {
		return 0
	}
	if startBin < 0 {
		startBin = 0
	}
	if endBin >= len(values) {
		endBin = len(values) - 1
	}

	peakBin := startBin
	peakValue := values[startBin]
	for bin := startBin + 1; bin <= endBin; bin++ {
		if values[bin] > peakValue {
			peakValue = values[bin]
			peakBin = bin
		}
	}
	return peakBin
}
