// SPDX-License-Identifier: MIT
// Package preset holds the static catalog of named haptic pattern sets.
package preset

import (
	"fmt"

	"haptic/internal/haptic"
)

// catalog is read-only after package initialization; every accessor hands
// out deep copies.
var catalog = []haptic.Preset{
	{
		ID:          "action_intense",
		Name:        "Action Intense",
		Description: "Strong impacts and vibrations for action scenes",
		Category:    "action",
		Patterns: []haptic.Event{
			{TimestampMs: 0, Intensity: 0.9, DurationMs: 200, Kind: haptic.Impact},
			{TimestampMs: 500, Intensity: 0.8, DurationMs: 150, Kind: haptic.Pulse},
		},
	},
	{
		ID:          "music_rhythmic",
		Name:        "Music Rhythmic",
		Description: "Rhythmic pulses that match musical beats",
		Category:    "music",
		Patterns: []haptic.Event{
			{TimestampMs: 0, Intensity: 0.6, DurationMs: 100, Kind: haptic.Pulse},
			{TimestampMs: 250, Intensity: 0.6, DurationMs: 100, Kind: haptic.Pulse},
		},
	},
	{
		ID:          "ambient_gentle",
		Name:        "Ambient Gentle",
		Description: "Soft vibrations for ambient content",
		Category:    "ambient",
		Patterns: []haptic.Event{
			{TimestampMs: 0, Intensity: 0.3, DurationMs: 500, Kind: haptic.Vibration},
		},
	},
	{
		ID:          "gaming_explosive",
		Name:        "Gaming Explosive",
		Description: "High-intensity patterns for gaming content",
		Category:    "gaming",
		Patterns: []haptic.Event{
			{TimestampMs: 0, Intensity: 1.0, DurationMs: 300, Kind: haptic.Impact},
			{TimestampMs: 100, Intensity: 0.7, DurationMs: 200, Kind: haptic.Rumble},
		},
	},
	{
		ID:          "cinematic_rumble",
		Name:        "Cinematic Rumble",
		Description: "Long low rumbles that build under a score",
		Category:    "action",
		Patterns: []haptic.Event{
			{TimestampMs: 0, Intensity: 0.4, DurationMs: 800, Kind: haptic.Rumble},
			{TimestampMs: 800, Intensity: 0.6, DurationMs: 800, Kind: haptic.Rumble},
			{TimestampMs: 1600, Intensity: 0.85, DurationMs: 400, Kind: haptic.Impact},
		},
	},
	{
		ID:          "heartbeat_pulse",
		Name:        "Heartbeat Pulse",
		Description: "Double pulse at a resting heart rate",
		Category:    "ambient",
		Patterns: []haptic.Event{
			{TimestampMs: 0, Intensity: 0.7, DurationMs: 100, Kind: haptic.Pulse},
			{TimestampMs: 180, Intensity: 0.5, DurationMs: 100, Kind: haptic.Pulse},
			{TimestampMs: 1000, Intensity: 0.7, DurationMs: 100, Kind: haptic.Pulse},
			{TimestampMs: 1180, Intensity: 0.5, DurationMs: 100, Kind: haptic.Pulse},
		},
	},
}

// List returns every preset in catalog order.
func List() []haptic.Preset {
	out := make([]haptic.Preset, len(catalog))
	for i, p := range catalog {
		out[i] = p.Clone()
	}
	return out
}

// Get returns the preset with the given id.
func Get(id string) (haptic.Preset, error) {
	for _, p := range catalog {
		if p.ID == id {
			return p.Clone(), nil
		}
	}
	return haptic.Preset{}, fmt.Errorf("%w: %w: unknown preset %q", haptic.ErrNotFound, haptic.ErrInvalidInput, id)
}

// Apply returns the patterns of the preset with the given id, verbatim.
func Apply(id string) ([]haptic.Event, error) {
	p, err := Get(id)
	if err != nil {
		return nil, err
	}
	return p.Patterns, nil
}

// ByCategory returns the presets in the given category.
func ByCategory(category string) []haptic.Preset {
	var out []haptic.Preset
	for _, p := range catalog {
		if p.Category == category {
			out = append(out, p.Clone())
		}
	}
	return out
}

// Categories returns the distinct categories in catalog order.
func Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range catalog {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}
