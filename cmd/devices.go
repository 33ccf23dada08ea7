// SPDX-License-Identifier: MIT
package cmd

import (
	"github.com/spf13/cobra"

	"haptic/internal/source"
	"haptic/internal/source/live"
	"haptic/internal/tui"
)

func newDevicesCommand(a *app) *cobra.Command {
	var pick bool

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List available audio devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := live.Initialize(); err != nil {
				return err
			}
			defer live.Terminate()

			devices, err := live.Devices()
			if err != nil {
				return err
			}
			if !pick {
				source.WriteDevices(a.out, devices)
				return nil
			}

			sel, err := tui.Pick(devices)
			if err != nil {
				return err
			}
			a.printf("Selected [%d] %s at %.0f Hz\n", sel.DeviceID, sel.DeviceName, sel.SampleRate)
			a.printf("Use: capture --device %d --sample-rate %.0f\n", sel.DeviceID, sel.SampleRate)
			return nil
		},
	}

	cmd.Flags().BoolVar(&pick, "tui", false, "Browse input devices interactively")
	return cmd
}
