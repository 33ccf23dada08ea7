// SPDX-License-Identifier: MIT
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"haptic/internal/codec"
	"haptic/internal/haptic"
)

// stdio names standard input or output in file arguments.
const stdio = "-"

func readJSON(path string, v any) error {
	var r io.Reader = os.Stdin
	if path != stdio {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// writeJSON writes v indented to path, or to w when path is empty or "-".
func writeJSON(w io.Writer, path string, v any) error {
	if path != "" && path != stdio {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readPatterns loads events from a JSON array file. A file that carries an
// embedded block is accepted too, in which case its options are returned.
func readPatterns(path string) ([]haptic.Event, *haptic.Options, error) {
	if path != stdio {
		block, err := codec.ExtractFile(path)
		if err == nil {
			return block.Patterns, &block.Options, nil
		}
		if !isNotFound(err) {
			return nil, nil, err
		}
	}

	var events []haptic.Event
	if err := readJSON(path, &events); err != nil {
		return nil, nil, err
	}
	if err := haptic.ValidateEvents(events); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return events, nil, nil
}
