// SPDX-License-Identifier: MIT
/*
Package synth maps a bass-energy time series to a sequence of typed haptic
events.

Each sample is bucketed by energy into at most one event:

	energy > 200        impact     min(intensity*1.2, 1)   150ms
	150 < energy ≤ 200  pulse      intensity               200ms
	100 < energy ≤ 150  vibration  intensity*0.8           300ms
	 50 < energy ≤ 100  rumble     intensity*0.6           400ms
	energy ≤ 50         no event

Event timestamps are derived from the sample index (index × interval), not
from the sampler's own clock. A free-text prompt may then modulate the whole
sequence; see ParsePrompt.
*/
package synth

import (
	"haptic/internal/analysis"
	"haptic/internal/haptic"
)

// Threshold is one row of the bucketing table.
type Threshold struct {
	Above      float64 // Exclusive lower bound on bass energy.
	Kind       haptic.Kind
	Gain       float64 // Multiplier applied to the sample intensity.
	DurationMs int64
}

// Thresholds is the bucketing table in strictly descending order.
var Thresholds = []Threshold{
	{Above: 200, Kind: haptic.Impact, Gain: 1.2, DurationMs: 150},
	{Above: 150, Kind: haptic.Pulse, Gain: 1.0, DurationMs: 200},
	{Above: 100, Kind: haptic.Vibration, Gain: 0.8, DurationMs: 300},
	{Above: 50, Kind: haptic.Rumble, Gain: 0.6, DurationMs: 400},
}

// Synthesizer converts analyses into haptic events. The zero value uses the
// analysis' own sample interval.
type Synthesizer struct {
	IntervalMs int // Overrides the analysis interval when positive.
}

// New returns a synthesizer emitting events every intervalMs per sample.
func New(intervalMs int) *Synthesizer {
	return &Synthesizer{IntervalMs: intervalMs}
}

// Synthesize buckets every sample of a and applies the prompt modulation.
// An empty analysis yields an empty, non-nil sequence.
func (s *Synthesizer) Synthesize(a analysis.Analysis, prompt string) []haptic.Event {
	interval := int64(a.Interval())
	if s != nil && s.IntervalMs > 0 {
		interval = int64(s.IntervalMs)
	}

	events := make([]haptic.Event, 0, a.Len())
	for i, freq := range a.BassFrequencies {
		inten := sampleIntensity(a, i, freq)
		ev, ok := bucket(freq, inten)
		if !ok {
			continue
		}
		ev.TimestampMs = int64(i) * interval
		events = append(events, ev)
	}

	return ParsePrompt(prompt).Apply(events)
}

// Synthesize runs the default synthesizer.
func Synthesize(a analysis.Analysis, prompt string) []haptic.Event {
	return (&Synthesizer{}).Synthesize(a, prompt)
}

// sampleIntensity returns the stored intensity, falling back to freq/255 when
// it is missing or zero.
func sampleIntensity(a analysis.Analysis, i int, freq float64) float64 {
	if i < len(a.Intensity) && a.Intensity[i] != 0 {
		return a.Intensity[i]
	}
	return freq / analysis.MaxEnergy
}

// bucket maps a single sample to an event. Ranges are exclusive at the
// bottom, so each energy matches at most one row.
func bucket(freq, inten float64) (haptic.Event, bool) {
	for _, t := range Thresholds {
		if freq > t.Above {
			f := freq
			return haptic.Event{
				Intensity:       haptic.Clamp01(inten * t.Gain),
				DurationMs:      t.DurationMs,
				Kind:            t.Kind,
				SourceFrequency: &f,
			}, true
		}
	}
	return haptic.Event{}, false
}
