// SPDX-License-Identifier: MIT
/*
Package store persists analyses and pattern sets as opaque values under string
keys.

Keys follow a fixed scheme so that related records can be found by prefix:

	analysis_<unixMillis>_<rand9>   stored analysis
	file_<unixMillis>_<rand9>       uploaded file reference
	patterns_<analysisID>           patterns generated from an analysis

Values are stored verbatim. Decoding, and skipping of malformed values, is the
caller's concern.
*/
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"haptic/internal/haptic"
)

// Key prefixes.
const (
	AnalysisPrefix = "analysis_"
	FilePrefix     = "file_"
	PatternsPrefix = "patterns_"
)

// ErrNotFound is returned by Get and Delete for unknown keys.
var ErrNotFound = haptic.ErrNotFound

// Store is a key-value persistence backend. Implementations are safe for
// concurrent use.
type Store interface {
	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error
	// Get returns the value stored under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// List returns every key with the given prefix in ascending order.
	List(ctx context.Context, prefix string) ([]string, error)
	// Delete removes key or returns ErrNotFound.
	Delete(ctx context.Context, key string) error
	// Close releases the backend.
	Close(ctx context.Context) error
}

// NewAnalysisID returns a fresh analysis key.
func NewAnalysisID(now time.Time) string {
	return newID(AnalysisPrefix, now)
}

// NewFileID returns a fresh file key.
func NewFileID(now time.Time) string {
	return newID(FilePrefix, now)
}

// PatternsKey returns the key under which patterns generated from analysisID are stored.
func PatternsKey(analysisID string) string {
	return PatternsPrefix + analysisID
}

// AnalysisIDFromPatternsKey reverses PatternsKey.
func AnalysisIDFromPatternsKey(key string) (string, bool) {
	return strings.CutPrefix(key, PatternsPrefix)
}

func newID(prefix string, now time.Time) string {
	return fmt.Sprintf("%s%d_%s", prefix, now.UnixMilli(), randSuffix())
}

// randSuffix returns nine random lowercase hex characters.
func randSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}

func notFound(key string) error {
	return fmt.Errorf("%w: key %q", ErrNotFound, key)
}

// Drivers accepted by Open.
const (
	DriverMemory = "memory"
	DriverMongo  = "mongo"
)

// Open returns the store selected by driver. An empty driver selects memory.
func Open(ctx context.Context, driver string, mongoCfg MongoConfig) (Store, error) {
	switch driver {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverMongo:
		return OpenMongo(ctx, mongoCfg)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
