// SPDX-License-Identifier: MIT
package cmd

import (
	"github.com/spf13/cobra"

	"haptic/pkg/build"
)

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.printf("%s\n", build.GetBuildFlags())
			return nil
		},
	}
}
