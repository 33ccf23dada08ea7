// SPDX-License-Identifier: MIT
package preset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haptic/internal/haptic"
)

func TestCatalogIsValid(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range List() {
		assert.False(t, seen[p.ID], "duplicate preset id %s", p.ID)
		seen[p.ID] = true
		assert.NotEmpty(t, p.Name)
		assert.NotEmpty(t, p.Category)
		assert.NotEmpty(t, p.Patterns)
		assert.NoError(t, haptic.ValidateEvents(p.Patterns), p.ID)
	}
	assert.Len(t, seen, 6)
}

func TestGet(t *testing.T) {
	p, err := Get("action_intense")
	require.NoError(t, err)
	assert.Equal(t, "Action Intense", p.Name)
	require.Len(t, p.Patterns, 2)
	assert.Equal(t, haptic.Event{TimestampMs: 0, Intensity: 0.9, DurationMs: 200, Kind: haptic.Impact}, p.Patterns[0])
	assert.Equal(t, haptic.Event{TimestampMs: 500, Intensity: 0.8, DurationMs: 150, Kind: haptic.Pulse}, p.Patterns[1])

	_, err = Get("does_not_exist")
	assert.ErrorIs(t, err, haptic.ErrNotFound)
	assert.ErrorIs(t, err, haptic.ErrInvalidInput)
}

func TestApplyReturnsCopies(t *testing.T) {
	events, err := Apply("music_rhythmic")
	require.NoError(t, err)
	require.Len(t, events, 2)
	events[0].Intensity = 0

	again, err := Apply("music_rhythmic")
	require.NoError(t, err)
	assert.Equal(t, 0.6, again[0].Intensity)

	_, err = Apply("")
	assert.ErrorIs(t, err, haptic.ErrNotFound)
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"action", "music", "ambient", "gaming"}, Categories())

	action := ByCategory("action")
	require.Len(t, action, 2)
	assert.Equal(t, "action_intense", action[0].ID)
	assert.Equal(t, "cinematic_rumble", action[1].ID)

	assert.Empty(t, ByCategory("horror"))
}
