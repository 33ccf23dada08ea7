// SPDX-License-Identifier: MIT
package synth

import (
	"math"
	"testing"

	"haptic/internal/analysis"
	"haptic/internal/haptic"
)

const epsilon = 1e-9

func series(bass ...float64) analysis.Analysis {
	stamps := make([]int64, len(bass))
	for i := range stamps {
		stamps[i] = int64(i) * 100
	}
	return analysis.Analysis{BassFrequencies: bass, TimeStamps: stamps, SampleIntervalMs: 100}
}

func TestSynthesizeThresholds(t *testing.T) {
	events := Synthesize(series(201, 180, 120, 75, 30), "")

	want := []struct {
		ts        int64
		kind      haptic.Kind
		intensity float64
		duration  int64
	}{
		{0, haptic.Impact, 201.0 / 255 * 1.2, 150},
		{100, haptic.Pulse, 180.0 / 255, 200},
		{200, haptic.Vibration, 120.0 / 255 * 0.8, 300},
		{300, haptic.Rumble, 75.0 / 255 * 0.6, 400},
	}
	if len(events) != len(want) {
		t.Fatalf("Expected %d events, got %d: %+v", len(want), len(events), events)
	}
	for i, w := range want {
		e := events[i]
		if e.TimestampMs != w.ts || e.Kind != w.kind || e.DurationMs != w.duration {
			t.Errorf("event %d: got %+v, want ts=%d kind=%s duration=%d", i, e, w.ts, w.kind, w.duration)
		}
		if math.Abs(e.Intensity-w.intensity) > epsilon {
			t.Errorf("event %d: intensity %.6f, want %.6f", i, e.Intensity, w.intensity)
		}
		if e.SourceFrequency == nil {
			t.Errorf("event %d: missing source frequency", i)
		}
	}
}

func TestSynthesizeBoundaries(t *testing.T) {
	tests := []struct {
		bass float64
		kind haptic.Kind
		emit bool
	}{
		{255, haptic.Impact, true},
		{200, haptic.Pulse, true},
		{150, haptic.Vibration, true},
		{100, haptic.Rumble, true},
		{50, "", false},
		{0, "", false},
	}
	for _, tt := range tests {
		events := Synthesize(series(tt.bass), "")
		if !tt.emit {
			if len(events) != 0 {
				t.Errorf("bass %.0f: expected no event, got %+v", tt.bass, events)
			}
			continue
		}
		if len(events) != 1 || events[0].Kind != tt.kind {
			t.Errorf("bass %.0f: expected one %s event, got %+v", tt.bass, tt.kind, events)
		}
	}
}

func TestSynthesizeImpactClamped(t *testing.T) {
	events := Synthesize(series(255), "")
	if len(events) != 1 || events[0].Intensity != 1 {
		t.Fatalf("Expected a single impact at full intensity, got %+v", events)
	}
}

func TestSynthesizeUsesStoredIntensity(t *testing.T) {
	a := series(210)
	a.Intensity = []float64{0.5}
	events := Synthesize(a, "")
	if math.Abs(events[0].Intensity-0.6) > epsilon {
		t.Errorf("Expected 0.5*1.2, got %f", events[0].Intensity)
	}
}

func TestSynthesizeEmpty(t *testing.T) {
	events := Synthesize(analysis.Analysis{}, "intense rhythmic")
	if events == nil || len(events) != 0 {
		t.Errorf("Expected an empty non-nil slice, got %#v", events)
	}
}

func TestSynthesizerIntervalOverride(t *testing.T) {
	events := New(50).Synthesize(series(180, 180, 180), "")
	for i, e := range events {
		if e.TimestampMs != int64(i)*50 {
			t.Errorf("event %d: timestamp %d, want %d", i, e.TimestampMs, i*50)
		}
	}
}

func TestSynthesizeDeterministic(t *testing.T) {
	a := series(201, 180, 120, 75, 30, 220, 160)
	first := Synthesize(a, "strong beat")
	second := Synthesize(a, "strong beat")
	if len(first) != len(second) {
		t.Fatalf("Lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Kind != second[i].Kind || first[i].Intensity != second[i].Intensity ||
			first[i].TimestampMs != second[i].TimestampMs || first[i].DurationMs != second[i].DurationMs {
			t.Errorf("event %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestParsePrompt(t *testing.T) {
	tests := []struct {
		prompt string
		want   Modulation
	}{
		{"", Modulation{}},
		{"make it INTENSE", Modulation{Intense: true}},
		{"strong and soft", Modulation{Intense: true}},
		{"something gentle", Modulation{Gentle: true}},
		{"soft rhythmic feel", Modulation{Gentle: true, Rhythmic: true}},
		{"follow the beat", Modulation{Rhythmic: true}},
		{"calm", Modulation{}},
	}
	for _, tt := range tests {
		if got := ParsePrompt(tt.prompt); got != tt.want {
			t.Errorf("ParsePrompt(%q) = %+v, want %+v", tt.prompt, got, tt.want)
		}
	}
}

func TestModulationIntensity(t *testing.T) {
	tests := []struct {
		name string
		mod  Modulation
		in   float64
		want float64
	}{
		{"intense", Modulation{Intense: true}, 0.5, 0.75},
		{"intense clamps", Modulation{Intense: true}, 0.9, 1.0},
		{"gentle", Modulation{Gentle: true}, 0.5, 0.35},
		{"none", Modulation{}, 0.5, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := tt.mod.Apply([]haptic.Event{{Intensity: tt.in, DurationMs: 100, Kind: haptic.Impact}})
			if math.Abs(events[0].Intensity-tt.want) > epsilon {
				t.Errorf("got %f, want %f", events[0].Intensity, tt.want)
			}
		})
	}
}

func TestModulationRhythmic(t *testing.T) {
	m := Modulation{Rhythmic: true}
	events := m.Apply([]haptic.Event{
		{Intensity: 0.3, DurationMs: 400, Kind: haptic.Rumble},
		{Intensity: 0.3, DurationMs: 120, Kind: haptic.Impact},
	})
	if events[0].Kind != haptic.Pulse || events[0].DurationMs != 320 {
		t.Errorf("Expected pulse of 320ms, got %+v", events[0])
	}
	if events[1].Kind != haptic.Pulse || events[1].DurationMs != 100 {
		t.Errorf("Expected pulse of 100ms, got %+v", events[1])
	}
	if m.String() != "rhythmic" {
		t.Errorf("Unexpected String(): %s", m)
	}
}

func TestMerge(t *testing.T) {
	a := []haptic.Event{{TimestampMs: 0, Kind: haptic.Impact}, {TimestampMs: 200, Kind: haptic.Impact}}
	b := []haptic.Event{{TimestampMs: 100, Kind: haptic.Pulse}, {TimestampMs: 200, Kind: haptic.Pulse}}

	got := Merge(a, b)
	wantKinds := []haptic.Kind{haptic.Impact, haptic.Pulse, haptic.Impact, haptic.Pulse}
	if len(got) != len(wantKinds) {
		t.Fatalf("Expected %d events, got %d", len(wantKinds), len(got))
	}
	for i, k := range wantKinds {
		if got[i].Kind != k {
			t.Errorf("event %d: kind %s, want %s", i, got[i].Kind, k)
		}
	}
}

func BenchmarkSynthesize(b *testing.B) {
	bass := make([]float64, 3000)
	for i := range bass {
		bass[i] = float64(i % 256)
	}
	a := series(bass...)

	b.ReportAllocs()
	for b.Loop() {
		Synthesize(a, "intense beat")
	}
}
