// SPDX-License-Identifier: MIT
package synth

import (
	"math"
	"strings"

	"haptic/internal/haptic"
)

// Prompt keywords, matched case-insensitively as substrings.
var (
	intenseKeywords  = []string{"intense", "strong"}
	gentleKeywords   = []string{"gentle", "soft"}
	rhythmicKeywords = []string{"rhythmic", "beat"}
)

const (
	intenseGain     = 1.5
	gentleGain      = 0.7
	rhythmicScale   = 0.8
	rhythmicFloorMs = 100
)

// Modulation records which prompt rules fired.
type Modulation struct {
	Intense  bool // Intensity ×1.5, clamped to 1.
	Gentle   bool // Intensity ×0.7. Never set together with Intense.
	Rhythmic bool // Kind forced to pulse, duration max(d×0.8, 100).
}

// ParsePrompt scans a free-text prompt for modulation keywords. The intense
// rule takes precedence over the gentle rule; the rhythmic rule composes with
// either.
func ParsePrompt(prompt string) Modulation {
	p := strings.ToLower(prompt)
	var m Modulation
	switch {
	case containsAny(p, intenseKeywords):
		m.Intense = true
	case containsAny(p, gentleKeywords):
		m.Gentle = true
	}
	m.Rhythmic = containsAny(p, rhythmicKeywords)
	return m
}

// Active reports whether any rule fired.
func (m Modulation) Active() bool {
	return m.Intense || m.Gentle || m.Rhythmic
}

// Apply rewrites events in place and returns them. Intensity rules run
// before the rhythmic kind and duration rewrite.
func (m Modulation) Apply(events []haptic.Event) []haptic.Event {
	if !m.Active() {
		return events
	}
	for i := range events {
		ev := &events[i]
		switch {
		case m.Intense:
			ev.Intensity = math.Min(ev.Intensity*intenseGain, 1)
		case m.Gentle:
			ev.Intensity = ev.Intensity * gentleGain
		}
		if m.Rhythmic {
			ev.Kind = haptic.Pulse
			ev.DurationMs = rhythmicDuration(ev.DurationMs)
		}
	}
	return events
}

// rhythmicDuration shrinks a duration by 20% with a 100ms floor.
func rhythmicDuration(d int64) int64 {
	scaled := math.Max(float64(d)*rhythmicScale, rhythmicFloorMs)
	return int64(math.Round(scaled))
}

// String lists the fired rules, for logs.
func (m Modulation) String() string {
	var parts []string
	if m.Intense {
		parts = append(parts, "intense")
	}
	if m.Gentle {
		parts = append(parts, "gentle")
	}
	if m.Rhythmic {
		parts = append(parts, "rhythmic")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// Merge interleaves two event sequences by timestamp. On equal timestamps
// events from a come first. Neither input is modified.
func Merge(a, b []haptic.Event) []haptic.Event {
	out := make([]haptic.Event, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if b[j].TimestampMs < a[i].TimestampMs {
			out = append(out, b[j].Clone())
			j++
		} else {
			out = append(out, a[i].Clone())
			i++
		}
	}
	for ; i < len(a); i++ {
		out = append(out, a[i].Clone())
	}
	for ; j < len(b); j++ {
		out = append(out, b[j].Clone())
	}
	return out
}
