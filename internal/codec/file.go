// SPDX-License-Identifier: MIT
package codec

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"haptic/internal/haptic"
)

// EmbedFile copies src to dst and appends block. When dst is empty the output
// is written next to src under OutputName(src). The payload is streamed into
// a temporary file that is renamed into place once the block is written, so a
// failed embed never leaves a partial output. Returns the output path.
func EmbedFile(src, dst string, block haptic.Block) (string, error) {
	if dst == "" {
		dst = OutputName(src)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open payload: %w", err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	tmpName := tmp.Name()
	abort := func(err error) (string, error) {
		tmp.Close()
		os.Remove(tmpName)
		return "", err
	}

	copied, err := io.Copy(tmp, in)
	if err != nil {
		return abort(fmt.Errorf("failed to copy payload: %w", err))
	}
	trailer, err := WriteBlock(tmp, block)
	if err != nil {
		return abort(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to close output file: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to move output file into place: %w", err)
	}

	log.Infof("Wrote %s (%d patterns, %d byte payload, %d byte trailer)", dst, len(block.Patterns), copied, trailer)
	return dst, nil
}

// ExtractFile reads path and extracts its embedded block.
func ExtractFile(path string) (*haptic.Block, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	return Extract(payload)
}
