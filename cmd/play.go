// SPDX-License-Identifier: MIT
package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"haptic/internal/player"
	"haptic/internal/transport"
	"haptic/internal/transport/udp"
)

func newPlayCommand(a *app) *cobra.Command {
	var (
		udpAddr   string
		intensity float64
	)

	cmd := &cobra.Command{
		Use:   "play <patterns.json|video>",
		Short: "Play haptic patterns in real time",
		Long: "Schedule the patterns of a JSON file or a tagged video. Events are logged " +
			"and, when UDP is enabled, sent as binary packets to the target address.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, embedded, err := readPatterns(args[0])
			if err != nil {
				return err
			}
			opts := a.cfg.Processing
			if embedded != nil {
				opts = *embedded
			}
			if cmd.Flags().Changed("intensity") {
				opts.HapticIntensityScale = intensity
			}
			if err := opts.Validate(); err != nil {
				return err
			}

			out, err := a.playbackTransports(udpAddr)
			if err != nil {
				return err
			}
			defer out.Close()

			stats, err := player.New(out).Play(cmd.Context(), events, opts)
			if err != nil {
				return err
			}
			a.printf("Played %d events in %s (%d failed)\n", stats.Sent, stats.Elapsed.Round(time.Millisecond), stats.Failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&udpAddr, "udp", "", "Also send events to this UDP address (host:port)")
	cmd.Flags().Float64Var(&intensity, "intensity", 1, "Playback intensity scale in [0,1]")
	return cmd
}

// playbackTransports returns the sinks playback events go to: the log, and
// UDP when configured or requested with addr.
func (a *app) playbackTransports(addr string, extra ...transport.Transport) (transport.Multi, error) {
	out := transport.Multi{transport.NewLoggingTransport()}
	out = append(out, extra...)

	if addr == "" && a.cfg.Transport.UDPEnabled {
		addr = a.cfg.Transport.UDPTargetAddress
	}
	if addr == "" {
		return out, nil
	}
	sender, err := udp.NewEventSender(addr)
	if err != nil {
		out.Close()
		return nil, err
	}
	return append(out, sender), nil
}
