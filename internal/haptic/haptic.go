// SPDX-License-Identifier: MIT
/*
Package haptic defines the value types shared by the synthesizer, the preset
catalog and the metadata codec: timed haptic events, processing options, the
metadata block persisted inside tagged files, and named presets.

All values are plain data. Nothing in this package holds state between calls.
*/
package haptic

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Kind is the category of a haptic event.
type Kind string

const (
	Impact    Kind = "impact"
	Pulse     Kind = "pulse"
	Vibration Kind = "vibration"
	Rumble    Kind = "rumble"
)

// Kinds lists every valid Kind in threshold order (strongest first).
var Kinds = []Kind{Impact, Pulse, Vibration, Rumble}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case Impact, Pulse, Vibration, Rumble:
		return true
	default:
		return false
	}
}

// ParseKind converts a string (case-insensitive) to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: unknown haptic kind %q", ErrInvalidInput, s)
	}
	return k, nil
}

// Event is a single timed haptic instruction.
type Event struct {
	TimestampMs     int64    `json:"timestamp"`           // Offset from the start of playback.
	Intensity       float64  `json:"intensity"`           // Normalized strength in [0,1].
	DurationMs      int64    `json:"duration"`            // How long the actuator runs, > 0.
	Kind            Kind     `json:"type"`                // Event category.
	SourceFrequency *float64 `json:"frequency,omitempty"` // Bass energy that produced the event, if synthesized.
}

// Validate checks the event invariants.
func (e Event) Validate() error {
	if e.TimestampMs < 0 {
		return fmt.Errorf("%w: negative timestamp %d", ErrInvalidInput, e.TimestampMs)
	}
	if e.Intensity < 0 || e.Intensity > 1 {
		return fmt.Errorf("%w: intensity %.4f outside [0,1]", ErrInvalidInput, e.Intensity)
	}
	if e.DurationMs <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %d", ErrInvalidInput, e.DurationMs)
	}
	if !e.Kind.Valid() {
		return fmt.Errorf("%w: unknown haptic kind %q", ErrInvalidInput, e.Kind)
	}
	return nil
}

// End returns the timestamp at which the event stops.
func (e Event) End() int64 {
	return e.TimestampMs + e.DurationMs
}

// Clone returns a deep copy of the event.
func (e Event) Clone() Event {
	if e.SourceFrequency != nil {
		f := *e.SourceFrequency
		e.SourceFrequency = &f
	}
	return e
}

// CloneEvents deep-copies a slice of events. A nil input yields an empty slice.
func CloneEvents(events []Event) []Event {
	out := make([]Event, len(events))
	for i, e := range events {
		out[i] = e.Clone()
	}
	return out
}

// ValidateEvents validates every event and their ordering.
func ValidateEvents(events []Event) error {
	var last int64
	for i, e := range events {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
		if i > 0 && e.TimestampMs < last {
			return fmt.Errorf("%w: event %d timestamp %d precedes %d", ErrInvalidInput, i, e.TimestampMs, last)
		}
		last = e.TimestampMs
	}
	return nil
}

// Span returns the end of the last-finishing event, or 0 for no events.
func Span(events []Event) time.Duration {
	var end int64
	for _, e := range events {
		if e.End() > end {
			end = e.End()
		}
	}
	return time.Duration(end) * time.Millisecond
}

// Clamp01 limits v to the closed range [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ContainerFormat is the output container requested by the caller.
type ContainerFormat string

const (
	MP4  ContainerFormat = "mp4"
	WebM ContainerFormat = "webm"
	AVI  ContainerFormat = "avi"
)

// Quality is the requested output quality.
type Quality string

const (
	Low    Quality = "low"
	Medium Quality = "medium"
	High   Quality = "high"
)

// Options configures how a tagged file is produced.
type Options struct {
	ContainerFormat      ContainerFormat `json:"format" yaml:"format"`
	Quality              Quality         `json:"quality" yaml:"quality"`
	IncludeAudio         bool            `json:"includeAudio" yaml:"include_audio"`
	HapticIntensityScale float64         `json:"hapticIntensity" yaml:"haptic_intensity"`
}

// DefaultOptions returns the options used when the caller supplies none.
func DefaultOptions() Options {
	return Options{
		ContainerFormat:      MP4,
		Quality:              High,
		IncludeAudio:         true,
		HapticIntensityScale: 1.0,
	}
}

// Validate checks that every option holds a known value.
func (o Options) Validate() error {
	switch o.ContainerFormat {
	case MP4, WebM, AVI:
	default:
		return fmt.Errorf("%w: unsupported container format %q", ErrInvalidInput, o.ContainerFormat)
	}
	switch o.Quality {
	case Low, Medium, High:
	default:
		return fmt.Errorf("%w: unsupported quality %q", ErrInvalidInput, o.Quality)
	}
	if o.HapticIntensityScale < 0 || o.HapticIntensityScale > 1 {
		return fmt.Errorf("%w: haptic intensity scale %.3f outside [0,1]", ErrInvalidInput, o.HapticIntensityScale)
	}
	return nil
}

// Block is the metadata unit persisted inside a tagged file.
type Block struct {
	Version   string
	Patterns  []Event
	Options   Options
	CreatedAt time.Time // Millisecond precision; stored as Unix milliseconds, decoded as UTC.
}

// NewBlock assembles a block stamped with the given time, truncated to milliseconds.
func NewBlock(version string, patterns []Event, opts Options, now time.Time) Block {
	return Block{
		Version:   version,
		Patterns:  CloneEvents(patterns),
		Options:   opts,
		CreatedAt: time.UnixMilli(now.UnixMilli()).UTC(),
	}
}

// Validate checks the block invariants.
func (b Block) Validate() error {
	if b.Version == "" {
		return fmt.Errorf("%w: metadata version is required", ErrInvalidInput)
	}
	if b.CreatedAt.Nanosecond()%int(time.Millisecond) != 0 {
		return fmt.Errorf("%w: creation time %s has sub-millisecond precision", ErrInvalidInput, b.CreatedAt.Format(time.RFC3339Nano))
	}
	if err := b.Options.Validate(); err != nil {
		return err
	}
	return ValidateEvents(b.Patterns)
}

type blockJSON struct {
	Version   string  `json:"version"`
	Patterns  []Event `json:"patterns"`
	Options   Options `json:"options"`
	Timestamp int64   `json:"timestamp"`
}

// MarshalJSON encodes the block in its stable wire form.
func (b Block) MarshalJSON() ([]byte, error) {
	patterns := b.Patterns
	if patterns == nil {
		patterns = []Event{}
	}
	return json.Marshal(blockJSON{
		Version:   b.Version,
		Patterns:  patterns,
		Options:   b.Options,
		Timestamp: b.CreatedAt.UnixMilli(),
	})
}

// UnmarshalJSON decodes the block from its stable wire form.
func (b *Block) UnmarshalJSON(data []byte) error {
	var raw blockJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Patterns == nil {
		raw.Patterns = []Event{}
	}
	*b = Block{
		Version:   raw.Version,
		Patterns:  raw.Patterns,
		Options:   raw.Options,
		CreatedAt: time.UnixMilli(raw.Timestamp).UTC(),
	}
	return nil
}

// Preset is a named, static haptic event sequence.
type Preset struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Patterns    []Event `json:"patterns"`
}

// Clone returns a deep copy of the preset.
func (p Preset) Clone() Preset {
	p.Patterns = CloneEvents(p.Patterns)
	return p
}
