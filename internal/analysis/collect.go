// SPDX-License-Identifier: MIT
package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	applog "haptic/internal/log"
	"haptic/internal/source"
)

var log = applog.With("analysis")

// DefaultWindow is the reference analysis window.
const DefaultWindow = 5 * time.Second

// CollectOptions controls how many frames Collect pulls.
type CollectOptions struct {
	Interval time.Duration // Sampler cadence recorded on the Analysis.
	Window   time.Duration // Stop once a frame reaches this offset; 0 reads to the end.
	Duration float64       // Source duration in seconds; 0 asks the source, then estimates.
}

// Collect drives src until it is exhausted, the window elapses or ctx is
// cancelled, and returns the accumulated analysis. A cancelled context
// returns the context error and no partial analysis.
func Collect(ctx context.Context, src source.FrequencySource, opts CollectOptions) (Analysis, error) {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultSampleIntervalMs * time.Millisecond
	}
	b := NewBuilder(int(interval.Milliseconds()))
	window := opts.Window.Milliseconds()

	for {
		frame, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Analysis{}, fmt.Errorf("frequency source failed after %d samples: %w", b.Len(), err)
		}
		if window > 0 && frame.TimestampMs >= window {
			break
		}
		if err := b.Add(frame.TimestampMs, frame.Bins); err != nil {
			return Analysis{}, fmt.Errorf("sample %d: %w", b.Len(), err)
		}
	}

	duration := opts.Duration
	if duration <= 0 {
		if dp, ok := src.(source.DurationProvider); ok {
			duration = dp.Duration().Seconds()
		}
	}

	a := b.Build(duration)
	log.Debugf("Collected %d samples (%.2fs, interval %dms)", a.Len(), a.EffectiveDuration(), a.Interval())
	return a, nil
}
