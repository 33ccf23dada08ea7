// SPDX-License-Identifier: MIT
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"haptic/internal/analysis"
	"haptic/internal/haptic"
	"haptic/internal/preset"
	"haptic/internal/synth"
)

func newSynthesizeCommand(a *app) *cobra.Command {
	var (
		prompt     string
		presetID   string
		analysisID string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "synthesize [analysis.json]",
		Short: "Generate haptic patterns from an analysis",
		Long: "Generate haptic patterns from an analysis file, or from a stored analysis " +
			"with --id. Keywords in --prompt shape the result: intense or strong, " +
			"gentle or soft, rhythmic or beat. With an analysis, --preset lays the " +
			"preset's patterns alongside the synthesized ones; alone it prints the preset.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var events []haptic.Event
			switch {
			case analysisID != "":
				if len(args) > 0 {
					return errors.New("give either an analysis file or --id, not both")
				}
				svc, closeStore, err := a.openService(cmd.Context())
				if err != nil {
					return err
				}
				defer closeStore()
				if events, err = svc.Generate(cmd.Context(), analysisID, prompt, presetID); err != nil {
					return err
				}

			case len(args) == 1:
				var result analysis.Analysis
				if err := readJSON(args[0], &result); err != nil {
					return err
				}
				if err := result.Validate(); err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				events = synth.New(0).Synthesize(result, prompt)
				if presetID != "" {
					layer, err := preset.Apply(presetID)
					if err != nil {
						return err
					}
					events = synth.Merge(events, layer)
				}

			case presetID != "":
				var err error
				if events, err = preset.Apply(presetID); err != nil {
					return err
				}

			default:
				return errors.New("an analysis file, --id or --preset is required")
			}

			log.Infof("Generated %d events spanning %s", len(events), haptic.Span(events))
			if events == nil {
				events = []haptic.Event{}
			}
			return writeJSON(a.out, output, events)
		},
	}

	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Free-text prompt that modulates the patterns")
	cmd.Flags().StringVar(&presetID, "preset", "", "Lay a preset's patterns alongside the synthesized ones")
	cmd.Flags().StringVar(&analysisID, "id", "", "Generate for a stored analysis and store the patterns")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the patterns to this file instead of stdout")
	return cmd
}
