// SPDX-License-Identifier: MIT
package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPutGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	value := []byte(`{"a":1}`)
	require.NoError(t, s.Put(ctx, "k", value))
	value[0] = 'x'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got), "stored values are copied")

	got[0] = 'y'
	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(again))

	require.NoError(t, s.Put(ctx, "k", []byte("replaced")))
	got, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "replaced", string(got))

	require.NoError(t, s.Delete(ctx, "k"))
	assert.ErrorIs(t, s.Delete(ctx, "k"), ErrNotFound)
}

func TestMemoryList(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	for _, k := range []string{"patterns_b", "analysis_1", "patterns_a", "file_1"} {
		require.NoError(t, s.Put(ctx, k, []byte("{}")))
	}

	keys, err := s.List(ctx, PatternsPrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{"patterns_a", "patterns_b"}, keys)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestMemoryCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewMemory()
	assert.ErrorIs(t, s.Put(ctx, "k", nil), context.Canceled)

	keys, err := s.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, keys, "a cancelled put must not write")
}

func TestIDs(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	id := NewAnalysisID(now)
	assert.Regexp(t, regexp.MustCompile(`^analysis_1700000000123_[0-9a-f]{9}$`), id)
	assert.NotEqual(t, id, NewAnalysisID(now))

	assert.Regexp(t, regexp.MustCompile(`^file_1700000000123_[0-9a-f]{9}$`), NewFileID(now))

	key := PatternsKey(id)
	assert.Equal(t, "patterns_"+id, key)
	back, ok := AnalysisIDFromPatternsKey(key)
	assert.True(t, ok)
	assert.Equal(t, id, back)
}

func TestOpen(t *testing.T) {
	s, err := Open(context.Background(), "", MongoConfig{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	_, err = Open(context.Background(), "redis", MongoConfig{})
	assert.Error(t, err)

	_, err = Open(context.Background(), DriverMongo, MongoConfig{})
	assert.Error(t, err, "mongo requires a uri")
}
