// SPDX-License-Identifier: MIT
package haptic

import "errors"

// Error taxonomy shared across the module. Callers match with errors.Is.
var (
	// ErrInvalidInput reports an empty frequency vector, a malformed event or an unknown preset id.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound reports absence: no metadata marker in a payload, no preset, no stored key.
	// Absence of embedded haptics is a normal state and must not be surfaced as a failure.
	ErrNotFound = errors.New("not found")

	// ErrCorruptMetadata reports a marker whose length prefix or body cannot be decoded.
	ErrCorruptMetadata = errors.New("corrupt haptic metadata")

	// ErrUnsupportedVersion reports a metadata block written by an unknown format version.
	ErrUnsupportedVersion = errors.New("unsupported haptic metadata version")
)
