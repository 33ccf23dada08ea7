// SPDX-License-Identifier: MIT
package cmd

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"haptic/internal/analysis"
	"haptic/internal/source"
	"haptic/internal/source/live"
	"haptic/internal/tui"
)

func newCaptureCommand(a *app) *cobra.Command {
	var (
		opts       analyzeOptions
		deviceID   int
		sampleRate float64
		lowLatency bool
		pick       bool
		gate       float64
		record     string
	)

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Analyse live input from an audio device",
		Long: "Capture from an input device and build a bass-energy series. " +
			"Capture stops after --window, or on interrupt when the window is 0.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := live.Initialize(); err != nil {
				return err
			}
			defer live.Terminate()

			cfg := a.cfg.Live()
			if cmd.Flags().Changed("device") {
				cfg.DeviceID = deviceID
			}
			if cmd.Flags().Changed("sample-rate") {
				cfg.SampleRate = sampleRate
			}
			if cmd.Flags().Changed("low-latency") {
				cfg.LowLatency = lowLatency
			}
			if cmd.Flags().Changed("interval") {
				cfg.Spectrum.Interval = opts.interval
			}
			if cmd.Flags().Changed("gate") {
				cfg.GateThreshold = gate
			}
			cfg.RecordPath = record
			window := a.cfg.Analysis.Window
			if cmd.Flags().Changed("window") {
				window = opts.window
			}

			if pick {
				devices, err := live.Devices()
				if err != nil {
					return err
				}
				sel, err := tui.Pick(devices)
				if err != nil {
					return err
				}
				cfg.DeviceID = sel.DeviceID
				cfg.SampleRate = sel.SampleRate
			}

			src, err := live.Open(cfg)
			if err != nil {
				return err
			}
			defer src.Close()

			if window > 0 {
				a.printf("Capturing %s of audio...\n", window)
			} else {
				a.printf("Capturing until interrupted...\n")
			}
			// An interrupt ends the capture but keeps what was heard.
			ctx := context.WithoutCancel(cmd.Context())
			result, err := analysis.Collect(ctx, untilDone{src: src, stop: cmd.Context()}, analysis.CollectOptions{
				Interval: cfg.Spectrum.Interval,
				Window:   window,
			})
			if err != nil {
				return err
			}
			log.Debugf("Captured %s of audio", src.Elapsed().Round(time.Millisecond))
			return a.reportAnalysis(ctx, result, opts)
		},
	}

	cmd.Flags().IntVarP(&deviceID, "device", "d", source.DefaultDeviceID,
		"Input device ID. Use 'devices' to see available devices.")
	cmd.Flags().Float64VarP(&sampleRate, "sample-rate", "s", 0,
		"Sample rate, measured in Hertz (Hz)")
	cmd.Flags().BoolVarP(&lowLatency, "low-latency", "l", false,
		"Use low latency mode for real-time processing")
	cmd.Flags().Float64Var(&gate, "gate", 0,
		"Noise gate threshold as a fraction of full scale (0 disables)")
	cmd.Flags().StringVarP(&record, "record", "r", "",
		"Also record the raw input to this WAV file")
	cmd.Flags().BoolVar(&pick, "tui", false,
		"Choose the device and sample rate interactively")
	cmd.Flags().DurationVarP(&opts.window, "window", "w", 0,
		"Capture length (0 captures until interrupted)")
	cmd.Flags().DurationVarP(&opts.interval, "interval", "i", 0,
		"Distance between samples")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "",
		"Write the analysis as JSON to this file ('-' for stdout)")
	cmd.Flags().BoolVar(&opts.save, "save", false,
		"Store the analysis in the configured store and print its id")
	cmd.Flags().StringVar(&opts.fileID, "file-id", "",
		"File id recorded with a stored analysis (generated when empty)")
	return cmd
}

// untilDone ends a live capture with io.EOF once stop is cancelled.
type untilDone struct {
	src  *live.Source
	stop context.Context
}

func (u untilDone) Next(ctx context.Context) (source.Frame, error) {
	if u.stop.Err() != nil {
		return source.Frame{}, io.EOF
	}
	return u.src.Next(ctx)
}

func (u untilDone) Duration() time.Duration {
	return u.src.Elapsed()
}
