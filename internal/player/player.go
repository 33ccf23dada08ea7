// SPDX-License-Identifier: MIT
// Package player schedules haptic events in real time onto a transport.
package player

import (
	"context"
	"fmt"
	"time"

	"haptic/internal/haptic"
	applog "haptic/internal/log"
	"haptic/internal/transport"
)

var log = applog.With("player")

// Player sends each event to its transport when the event's timestamp is
// reached, relative to the start of Play.
type Player struct {
	out   transport.Transport
	after func(time.Duration) <-chan time.Time
}

// New returns a player writing to out.
func New(out transport.Transport) *Player {
	return &Player{out: out, after: afterTimer}
}

// Stats summarizes one playback.
type Stats struct {
	Sent    int
	Failed  int
	Elapsed time.Duration
}

// Play schedules events and blocks until the last one has been sent or ctx
// is cancelled. Intensities are multiplied by opts.HapticIntensityScale
// before sending; the input slice is not modified. Send failures are logged
// and counted but do not stop playback.
func (p *Player) Play(ctx context.Context, events []haptic.Event, opts haptic.Options) (Stats, error) {
	if err := haptic.ValidateEvents(events); err != nil {
		return Stats{}, err
	}
	scale := haptic.Clamp01(opts.HapticIntensityScale)

	var st Stats
	start := time.Now()
	log.Infof("Playing %d events over %s (scale %.2f)", len(events), haptic.Span(events), scale)

	for _, ev := range events {
		due := time.Duration(ev.TimestampMs)*time.Millisecond - time.Since(start)
		if due > 0 {
			select {
			case <-ctx.Done():
				st.Elapsed = time.Since(start)
				return st, fmt.Errorf("playback stopped after %d of %d events: %w", st.Sent, len(events), ctx.Err())
			case <-p.after(due):
			}
		} else if err := ctx.Err(); err != nil {
			st.Elapsed = time.Since(start)
			return st, fmt.Errorf("playback stopped after %d of %d events: %w", st.Sent, len(events), err)
		}

		out := ev.Clone()
		out.Intensity = haptic.Clamp01(out.Intensity * scale)
		if err := p.out.Send(out); err != nil {
			st.Failed++
			log.Warnf("Failed to send %s event at %dms: %v", ev.Kind, ev.TimestampMs, err)
			continue
		}
		st.Sent++
	}

	st.Elapsed = time.Since(start)
	log.Debugf("Playback finished: %d sent, %d failed in %s", st.Sent, st.Failed, st.Elapsed)
	return st, nil
}

func afterTimer(d time.Duration) <-chan time.Time {
	return time.After(d)
}
