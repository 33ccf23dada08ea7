// SPDX-License-Identifier: MIT
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"haptic/internal/codec"
	"haptic/internal/haptic"
	"haptic/internal/service"
	"haptic/internal/store"
)

type embedOptions struct {
	patterns  string
	output    string
	format    string
	quality   string
	noAudio   bool
	intensity float64
}

func newEmbedCommand(a *app) *cobra.Command {
	var opts embedOptions

	cmd := &cobra.Command{
		Use:   "embed <video>",
		Short: "Append haptic patterns to a video file",
		Long: "Write a copy of the video with the patterns appended as a metadata trailer. " +
			"The output defaults to haptic_<name> next to the input.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, _, err := readPatterns(opts.patterns)
			if err != nil {
				return err
			}

			svc := service.New(store.NewMemory(), service.WithDefaults(a.cfg.Processing))
			resolved, err := opts.resolve(cmd, svc, args[0])
			if err != nil {
				return err
			}

			out, block, err := svc.EmbedFile(args[0], opts.output, events, resolved)
			if err != nil {
				return err
			}
			a.printf("Wrote %s (%d events, %s, %s quality)\n", out, len(block.Patterns),
				block.Options.ContainerFormat, block.Options.Quality)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.patterns, "patterns", "p", "", "Patterns JSON file ('-' for stdin)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output path (default haptic_<name>)")
	cmd.Flags().StringVar(&opts.format, "format", "", "Container format recorded in the metadata (mp4, webm, avi)")
	cmd.Flags().StringVar(&opts.quality, "quality", "", "Quality recorded in the metadata (low, medium, high)")
	cmd.Flags().BoolVar(&opts.noAudio, "no-audio", false, "Record that the output carries no audio")
	cmd.Flags().Float64Var(&opts.intensity, "intensity", 1, "Playback intensity scale in [0,1]")
	_ = cmd.MarkFlagRequired("patterns")
	return cmd
}

// resolve returns nil when no option flag was given, so the service picks
// its defaults and the probed container format.
func (o embedOptions) resolve(cmd *cobra.Command, svc *service.Service, path string) (*haptic.Options, error) {
	flags := cmd.Flags()
	if !flags.Changed("format") && !flags.Changed("quality") && !flags.Changed("no-audio") && !flags.Changed("intensity") {
		return nil, nil
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	opts, _ := svc.ResolveOptions(payload, nil)
	if flags.Changed("format") {
		opts.ContainerFormat = haptic.ContainerFormat(o.format)
	}
	if flags.Changed("quality") {
		opts.Quality = haptic.Quality(o.quality)
	}
	if flags.Changed("no-audio") {
		opts.IncludeAudio = !o.noAudio
	}
	if flags.Changed("intensity") {
		opts.HapticIntensityScale = o.intensity
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &opts, nil
}

func newExtractCommand(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "extract <video>",
		Short: "Read the haptic patterns embedded in a video file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			block, err := codec.ExtractFile(args[0])
			if isNotFound(err) {
				a.printf("%s: no haptic data\n", args[0])
				return nil
			}
			if err != nil {
				return err
			}

			if output == "" {
				a.printf("Version:   %s\n", block.Version)
				a.printf("Created:   %s\n", block.CreatedAt.Format("2006-01-02 15:04:05.000 MST"))
				a.printf("Options:   %s, %s quality, audio=%t, intensity=%.2f\n",
					block.Options.ContainerFormat, block.Options.Quality,
					block.Options.IncludeAudio, block.Options.HapticIntensityScale)
				a.printf("Patterns:  %d spanning %s\n", len(block.Patterns), haptic.Span(block.Patterns))
				for _, e := range block.Patterns {
					a.printf("  %6d ms  %-9s %.2f for %d ms\n", e.TimestampMs, e.Kind, e.Intensity, e.DurationMs)
				}
				return nil
			}
			return writeJSON(a.out, output, block)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the metadata block as JSON to this file ('-' for stdout)")
	return cmd
}

func isNotFound(err error) bool {
	return errors.Is(err, haptic.ErrNotFound)
}
