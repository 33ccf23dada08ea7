// SPDX-License-Identifier: MIT
/*
Package analysis reduces frequency-magnitude vectors to a bass-energy time
series. The extractor itself is stateless: all accumulated state lives in a
Builder owned by the caller, and the finished Analysis is read-only.
*/
package analysis

import (
	"fmt"

	"haptic/internal/haptic"
)

// DefaultSampleIntervalMs is the reference sampling cadence.
const DefaultSampleIntervalMs = 100

// Analysis is an immutable bass-energy time series. BassFrequencies,
// TimeStamps and Intensity are parallel and always have equal length.
type Analysis struct {
	BassFrequencies  []float64 `json:"bassFrequencies"`  // Bass energy per sample, [0,255].
	TimeStamps       []int64   `json:"timeStamps"`       // Sampler timestamps in ms.
	Intensity        []float64 `json:"intensity"`        // BassFrequencies[i] / 255.
	Duration         float64   `json:"duration"`         // Source duration in seconds.
	SampleIntervalMs int       `json:"sampleIntervalMs"` // Cadence the samples were taken at.
}

// Len returns the number of samples.
func (a Analysis) Len() int {
	return len(a.BassFrequencies)
}

// Interval returns the sample interval, falling back to the reference cadence.
func (a Analysis) Interval() int {
	if a.SampleIntervalMs > 0 {
		return a.SampleIntervalMs
	}
	return DefaultSampleIntervalMs
}

// EffectiveDuration returns Duration, or an estimate from the sample count
// when the source did not report one.
func (a Analysis) EffectiveDuration() float64 {
	if a.Duration > 0 {
		return a.Duration
	}
	return float64(a.Len()*a.Interval()) / 1000
}

// Validate checks the parallel-sequence invariants. Analyses decoded from
// JSON are validated before synthesis.
func (a Analysis) Validate() error {
	n := len(a.BassFrequencies)
	if len(a.TimeStamps) != n {
		return fmt.Errorf("%w: %d timestamps for %d samples", haptic.ErrInvalidInput, len(a.TimeStamps), n)
	}
	if len(a.Intensity) != 0 && len(a.Intensity) != n {
		return fmt.Errorf("%w: %d intensities for %d samples", haptic.ErrInvalidInput, len(a.Intensity), n)
	}
	for i, v := range a.BassFrequencies {
		if v < 0 || v > MaxEnergy {
			return fmt.Errorf("%w: sample %d bass energy %.2f outside [0,255]", haptic.ErrInvalidInput, i, v)
		}
		if i > 0 && a.TimeStamps[i] <= a.TimeStamps[i-1] {
			return fmt.Errorf("%w: sample %d timestamp %d not after %d", haptic.ErrInvalidInput, i, a.TimeStamps[i], a.TimeStamps[i-1])
		}
	}
	if a.Duration < 0 {
		return fmt.Errorf("%w: negative duration %.3f", haptic.ErrInvalidInput, a.Duration)
	}
	return nil
}

// Peaks returns the sample indices whose bass energy exceeds threshold.
func (a Analysis) Peaks(threshold float64) []int {
	var peaks []int
	for i, v := range a.BassFrequencies {
		if v > threshold {
			peaks = append(peaks, i)
		}
	}
	return peaks
}

// Builder accumulates samples for one analysis run.
type Builder struct {
	intervalMs int
	bass       []float64
	stamps     []int64
	intensity  []float64
}

// NewBuilder returns a builder for samples taken every intervalMs.
func NewBuilder(intervalMs int) *Builder {
	if intervalMs <= 0 {
		intervalMs = DefaultSampleIntervalMs
	}
	return &Builder{intervalMs: intervalMs}
}

// Add extracts the bass energy from bins and appends it at timestampMs.
func (b *Builder) Add(timestampMs int64, bins []uint8) error {
	energy, err := BassEnergy(bins)
	if err != nil {
		return err
	}
	return b.AddEnergy(timestampMs, energy)
}

// AddEnergy appends an already-extracted bass energy value.
func (b *Builder) AddEnergy(timestampMs int64, energy float64) error {
	if timestampMs < 0 {
		return fmt.Errorf("%w: negative timestamp %d", haptic.ErrInvalidInput, timestampMs)
	}
	if n := len(b.stamps); n > 0 && timestampMs <= b.stamps[n-1] {
		return fmt.Errorf("%w: timestamp %d not after %d", haptic.ErrInvalidInput, timestampMs, b.stamps[n-1])
	}
	if energy < 0 || energy > MaxEnergy {
		return fmt.Errorf("%w: bass energy %.2f outside [0,255]", haptic.ErrInvalidInput, energy)
	}
	b.bass = append(b.bass, energy)
	b.stamps = append(b.stamps, timestampMs)
	b.intensity = append(b.intensity, energy/MaxEnergy)
	return nil
}

// Len returns the number of samples added so far.
func (b *Builder) Len() int {
	return len(b.bass)
}

// Build returns an immutable snapshot. The builder may keep accumulating.
func (b *Builder) Build(durationSeconds float64) Analysis {
	return Analysis{
		BassFrequencies:  append([]float64{}, b.bass...),
		TimeStamps:       append([]int64{}, b.stamps...),
		Intensity:        append([]float64{}, b.intensity...),
		Duration:         durationSeconds,
		SampleIntervalMs: b.intervalMs,
	}
}
