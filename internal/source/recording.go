// SPDX-License-Identifier: MIT
package source

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Recorder writes raw interleaved int32 capture blocks to a 32-bit PCM WAV
// file. It is not safe for concurrent use.
type Recorder struct {
	file    *os.File
	encoder *wav.Encoder
	buf     *audio.IntBuffer // Reused for format conversion.
	frames  int
}

// NewRecorder creates the file at path.
func NewRecorder(path string, sampleRate, channels int) (*Recorder, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("invalid recording format: %d Hz, %d channels", sampleRate, channels)
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create recording: %w", err)
	}
	return &Recorder{
		file:    file,
		encoder: wav.NewEncoder(file, sampleRate, 32, channels, 1),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: 32,
		},
	}, nil
}

// Write appends one interleaved block.
func (r *Recorder) Write(block []int32) error {
	if r.encoder == nil {
		return fmt.Errorf("recording is closed")
	}
	if cap(r.buf.Data) < len(block) {
		r.buf.Data = make([]int, len(block))
	}
	r.buf.Data = r.buf.Data[:len(block)]
	for i, sample := range block {
		r.buf.Data[i] = int(sample)
	}
	if err := r.encoder.Write(r.buf); err != nil {
		return fmt.Errorf("failed to write recording: %w", err)
	}
	r.frames += len(block) / r.buf.Format.NumChannels
	return nil
}

// Frames returns the number of frames written so far.
func (r *Recorder) Frames() int {
	return r.frames
}

// Close finalizes the WAV header and closes the file. It is safe to call
// more than once.
func (r *Recorder) Close() error {
	if r.encoder == nil {
		return nil
	}
	enc, file := r.encoder, r.file
	r.encoder, r.file = nil, nil
	if err := enc.Close(); err != nil {
		file.Close()
		return fmt.Errorf("failed to finalize recording: %w", err)
	}
	return file.Close()
}
