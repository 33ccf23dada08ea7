// SPDX-License-Identifier: MIT
/*
Package codec embeds a haptic metadata block into an opaque byte payload and
recovers it again. The payload is never parsed; the block is appended after
it behind a marker and a length prefix.

Trailer Structure (BigEndian), offsets relative to the end of the payload:

+---------------------------------------------------------------------+
| Field      | Data Type | Size (Bytes) | Description                   |
|------------|-----------|--------------|-------------------------------|
| Marker     | ASCII     | 6            | Literal "HAPTIC"              |
| Length     | uint32    | 4            | Byte length of the body (N)   |
| Body       | UTF-8     | N            | JSON-encoded metadata block   |
+---------------------------------------------------------------------+

Extraction scans for the first occurrence of the marker. A payload that
happens to contain the marker bytes earlier will be misread; that is a
known limitation of the format.
*/
package codec

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"time"
	"unicode/utf8"

	"haptic/internal/haptic"
	applog "haptic/internal/log"
)

var log = applog.With("codec")

const (
	// Marker precedes every embedded block.
	Marker = "HAPTIC"

	// HeaderSize is the marker plus the length prefix.
	HeaderSize = len(Marker) + 4

	// Version is the only metadata format version this codec reads and writes.
	Version = "1.0"

	// OutputPrefix is prepended to the name of a tagged file.
	OutputPrefix = "haptic_"
)

var marker = []byte(Marker)

// NewBlock builds a block in the current format version.
func NewBlock(patterns []haptic.Event, opts haptic.Options, now time.Time) haptic.Block {
	return haptic.NewBlock(Version, patterns, opts, now)
}

// Marshal validates the block and returns its serialized body.
func Marshal(block haptic.Block) ([]byte, error) {
	if err := block.Validate(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(block)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	if uint64(len(body)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: metadata body of %d bytes exceeds the 32-bit length prefix", haptic.ErrInvalidInput, len(body))
	}
	return body, nil
}

// WriteBlock writes the marker, length prefix and body for block to w and
// returns the number of bytes written.
func WriteBlock(w io.Writer, block haptic.Block) (int64, error) {
	body, err := Marshal(block)
	if err != nil {
		return 0, err
	}

	header := new(bytes.Buffer)
	header.Grow(HeaderSize)
	header.Write(marker)
	if err := binary.Write(header, binary.BigEndian, uint32(len(body))); err != nil {
		return 0, fmt.Errorf("failed to pack length prefix: %w", err)
	}

	n, err := w.Write(header.Bytes())
	written := int64(n)
	if err != nil {
		return written, fmt.Errorf("failed to write metadata header: %w", err)
	}
	n, err = w.Write(body)
	written += int64(n)
	if err != nil {
		return written, fmt.Errorf("failed to write metadata body: %w", err)
	}
	return written, nil
}

// Embed returns a copy of payload with block appended. The payload itself is
// not modified. CreatedAt must have millisecond precision (NewBlock truncates
// it); Extract returns it in UTC.
func Embed(payload []byte, block haptic.Block) ([]byte, error) {
	body, err := Marshal(block)
	if err != nil {
		return nil, err
	}
	if Contains(payload) {
		log.Warnf("Payload already contains a %q marker; extraction will read the earlier one", Marker)
	}

	out := make([]byte, 0, len(payload)+HeaderSize+len(body))
	out = append(out, payload...)
	out = append(out, marker...)
	out = binary.BigEndian.AppendUint32(out, uint32(len(body)))
	out = append(out, body...)

	log.Debugf("Embedded %d patterns (%d byte body) after %d byte payload", len(block.Patterns), len(body), len(payload))
	return out, nil
}

// Extract locates and decodes the first embedded block in payload.
//
// It returns haptic.ErrNotFound when the payload carries no marker,
// haptic.ErrCorruptMetadata when the length prefix or body cannot be read,
// and haptic.ErrUnsupportedVersion for blocks written by another format version.
func Extract(payload []byte) (*haptic.Block, error) {
	offset := bytes.Index(payload, marker)
	if offset < 0 {
		return nil, haptic.ErrNotFound
	}
	return decodeAt(payload, offset)
}

// Contains reports whether payload carries a marker, without decoding.
func Contains(payload []byte) bool {
	return bytes.Contains(payload, marker)
}

func decodeAt(payload []byte, offset int) (*haptic.Block, error) {
	lengthAt := offset + len(Marker)
	bodyAt := offset + HeaderSize
	if bodyAt > len(payload) {
		return nil, fmt.Errorf("%w: length prefix truncated at offset %d", haptic.ErrCorruptMetadata, lengthAt)
	}

	length := uint64(binary.BigEndian.Uint32(payload[lengthAt:bodyAt]))
	if uint64(bodyAt)+length > uint64(len(payload)) {
		return nil, fmt.Errorf("%w: body of %d bytes runs past end of payload (%d bytes available)",
			haptic.ErrCorruptMetadata, length, len(payload)-bodyAt)
	}
	body := payload[bodyAt : bodyAt+int(length)]

	if !utf8.Valid(body) {
		return nil, fmt.Errorf("%w: body is not valid UTF-8", haptic.ErrCorruptMetadata)
	}

	var block haptic.Block
	if err := json.Unmarshal(body, &block); err != nil {
		return nil, fmt.Errorf("%w: %v", haptic.ErrCorruptMetadata, err)
	}
	if block.Version == "" {
		return nil, fmt.Errorf("%w: body carries no version", haptic.ErrCorruptMetadata)
	}
	if block.Version != Version {
		return nil, fmt.Errorf("%w: %q", haptic.ErrUnsupportedVersion, block.Version)
	}
	if err := block.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", haptic.ErrCorruptMetadata, err)
	}

	log.Debugf("Extracted %d patterns from offset %d", len(block.Patterns), offset)
	return &block, nil
}

// OutputName returns the name of the tagged file produced from name.
func OutputName(name string) string {
	dir, base := filepath.Split(name)
	return filepath.Join(dir, OutputPrefix+base)
}
