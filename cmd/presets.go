// SPDX-License-Identifier: MIT
package cmd

import (
	"github.com/spf13/cobra"

	"haptic/internal/haptic"
	"haptic/internal/preset"
)

func newPresetsCommand(a *app) *cobra.Command {
	var (
		category string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "presets [id]",
		Short: "List the built-in pattern presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				p, err := preset.Get(args[0])
				if err != nil {
					return err
				}
				return writeJSON(a.out, "", p)
			}

			presets := preset.List()
			if category != "" {
				presets = preset.ByCategory(category)
			}
			if asJSON {
				if presets == nil {
					presets = []haptic.Preset{}
				}
				return writeJSON(a.out, "", presets)
			}

			for _, p := range presets {
				a.printf("%-18s %-9s %2d events  %s\n", p.ID, p.Category, len(p.Patterns), p.Description)
			}
			if len(presets) == 0 {
				a.printf("No presets in category %q. Categories: %v\n", category, preset.Categories())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Only list presets in this category")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the presets as JSON")
	return cmd
}
