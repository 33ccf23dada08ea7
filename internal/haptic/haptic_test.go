// SPDX-License-Identifier: MIT
package haptic

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(" " + string(k) + " ")
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	got, err := ParseKind("IMPACT")
	require.NoError(t, err)
	assert.Equal(t, Impact, got)

	_, err = ParseKind("buzz")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEventValidate(t *testing.T) {
	valid := Event{TimestampMs: 0, Intensity: 1, DurationMs: 1, Kind: Rumble}
	require.NoError(t, valid.Validate())

	tests := map[string]func(e *Event){
		"negative timestamp": func(e *Event) { e.TimestampMs = -1 },
		"intensity above 1":  func(e *Event) { e.Intensity = 1.01 },
		"negative intensity": func(e *Event) { e.Intensity = -0.1 },
		"zero duration":      func(e *Event) { e.DurationMs = 0 },
		"unknown kind":       func(e *Event) { e.Kind = "buzz" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			e := valid
			mutate(&e)
			assert.ErrorIs(t, e.Validate(), ErrInvalidInput)
		})
	}
}

func TestValidateEventsOrder(t *testing.T) {
	events := []Event{
		{TimestampMs: 100, Intensity: 0.5, DurationMs: 10, Kind: Pulse},
		{TimestampMs: 100, Intensity: 0.5, DurationMs: 10, Kind: Pulse},
		{TimestampMs: 50, Intensity: 0.5, DurationMs: 10, Kind: Pulse},
	}
	assert.NoError(t, ValidateEvents(events[:2]))
	assert.ErrorIs(t, ValidateEvents(events), ErrInvalidInput)
	assert.NoError(t, ValidateEvents(nil))
}

func TestCloneIsDeep(t *testing.T) {
	f := 180.0
	events := []Event{{TimestampMs: 0, Intensity: 0.5, DurationMs: 10, Kind: Pulse, SourceFrequency: &f}}

	clone := CloneEvents(events)
	*clone[0].SourceFrequency = 1
	clone[0].Intensity = 0.1

	assert.Equal(t, 180.0, f)
	assert.Equal(t, 0.5, events[0].Intensity)
	assert.NotNil(t, CloneEvents(nil))
}

func TestSpanAndClamp(t *testing.T) {
	events := []Event{
		{TimestampMs: 0, DurationMs: 800},
		{TimestampMs: 500, DurationMs: 100},
	}
	assert.Equal(t, 800*time.Millisecond, Span(events))
	assert.Zero(t, Span(nil))

	assert.Equal(t, 0.0, Clamp01(-2))
	assert.Equal(t, 1.0, Clamp01(1.5))
	assert.Equal(t, 0.25, Clamp01(0.25))
}

func TestOptionsValidate(t *testing.T) {
	require.NoError(t, DefaultOptions().Validate())

	bad := []Options{
		{ContainerFormat: "mkv", Quality: High, HapticIntensityScale: 1},
		{ContainerFormat: MP4, Quality: "ultra", HapticIntensityScale: 1},
		{ContainerFormat: MP4, Quality: Low, HapticIntensityScale: 1.5},
		{ContainerFormat: MP4, Quality: Low, HapticIntensityScale: -0.5},
	}
	for _, o := range bad {
		assert.ErrorIs(t, o.Validate(), ErrInvalidInput, "%+v", o)
	}
}

func TestBlockJSON(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 987654321, time.FixedZone("X", 3600))
	block := NewBlock("1.0", nil, DefaultOptions(), now)

	assert.Equal(t, now.UnixMilli(), block.CreatedAt.UnixMilli())
	assert.Equal(t, time.UTC, block.CreatedAt.Location())
	assert.NotNil(t, block.Patterns)

	data, err := json.Marshal(block)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"version": "1.0",
		"patterns": [],
		"options": {"format": "mp4", "quality": "high", "includeAudio": true, "hapticIntensity": 1},
		"timestamp": 1714561200987
	}`, string(data))

	var decoded Block
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, block, decoded)
}

func TestBlockValidate(t *testing.T) {
	block := NewBlock("", nil, DefaultOptions(), time.Now())
	assert.ErrorIs(t, block.Validate(), ErrInvalidInput)

	block.Version = "1.0"
	assert.NoError(t, block.Validate())

	block.Patterns = []Event{{Kind: Impact}}
	assert.ErrorIs(t, block.Validate(), ErrInvalidInput)
}

func TestBlockValidateCreatedAtPrecision(t *testing.T) {
	block := Block{
		Version:   "1.0",
		Options:   DefaultOptions(),
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 987654321, time.UTC),
	}
	assert.ErrorIs(t, block.Validate(), ErrInvalidInput)

	block.CreatedAt = block.CreatedAt.Truncate(time.Millisecond)
	assert.NoError(t, block.Validate())

	block.CreatedAt = time.Time{}
	assert.NoError(t, block.Validate())
}

func TestEventJSONFieldNames(t *testing.T) {
	f := 201.0
	data, err := json.Marshal(Event{TimestampMs: 100, Intensity: 0.5, DurationMs: 150, Kind: Impact, SourceFrequency: &f})
	require.NoError(t, err)
	assert.JSONEq(t, `{"timestamp":100,"intensity":0.5,"duration":150,"type":"impact","frequency":201}`, string(data))

	data, err = json.Marshal(Event{TimestampMs: 0, Intensity: 0.5, DurationMs: 150, Kind: Pulse})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "frequency")
}
