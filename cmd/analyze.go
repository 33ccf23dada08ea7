// SPDX-License-Identifier: MIT
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"haptic/internal/analysis"
	"haptic/internal/source"
)

// peakThreshold marks samples reported as bass peaks in the summary.
const peakThreshold = 150

type analyzeOptions struct {
	window   time.Duration
	interval time.Duration
	fftSize  int
	output   string
	save     bool
	fileID   string
}

func newAnalyzeCommand(a *app) *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze <file.wav>",
		Short: "Extract the bass-energy series from a WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.Spectrum()
			if cmd.Flags().Changed("interval") {
				cfg.Interval = opts.interval
			}
			if cmd.Flags().Changed("fft-size") {
				cfg.FFTSize = opts.fftSize
			}
			window := a.cfg.Analysis.Window
			if cmd.Flags().Changed("window") {
				window = opts.window
			}

			src, err := source.OpenWAV(args[0], cfg)
			if err != nil {
				return err
			}
			result, err := analysis.Collect(cmd.Context(), src, analysis.CollectOptions{
				Interval: cfg.Interval,
				Window:   window,
			})
			if err != nil {
				return err
			}
			return a.reportAnalysis(cmd.Context(), result, opts)
		},
	}

	cmd.Flags().DurationVarP(&opts.window, "window", "w", 0,
		"Analyse only this much audio (0 reads the whole file)")
	cmd.Flags().DurationVarP(&opts.interval, "interval", "i", 0,
		"Distance between samples")
	cmd.Flags().IntVar(&opts.fftSize, "fft-size", 0,
		"Samples per FFT")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "",
		"Write the analysis as JSON to this file ('-' for stdout)")
	cmd.Flags().BoolVar(&opts.save, "save", false,
		"Store the analysis in the configured store and print its id")
	cmd.Flags().StringVar(&opts.fileID, "file-id", "",
		"File id recorded with a stored analysis (generated when empty)")
	return cmd
}

// reportAnalysis prints a summary and writes or stores the result.
func (a *app) reportAnalysis(ctx context.Context, result analysis.Analysis, opts analyzeOptions) error {
	if opts.output != stdio {
		a.printSummary(result)
	}
	if opts.output != "" {
		if err := writeJSON(a.out, opts.output, result); err != nil {
			return fmt.Errorf("failed to write analysis: %w", err)
		}
	}
	if !opts.save {
		return nil
	}

	svc, closeStore, err := a.openService(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	fileID := opts.fileID
	if fileID == "" {
		fileID = svc.NewFileID()
	}
	rec, err := svc.SaveAnalysis(ctx, fileID, result)
	if err != nil {
		return err
	}
	a.printf("Stored analysis %s (file %s)\n", rec.ID, rec.FileID)
	return nil
}

func (a *app) printSummary(result analysis.Analysis) {
	peaks := result.Peaks(peakThreshold)
	a.printf("Samples:   %d every %d ms\n", result.Len(), result.Interval())
	a.printf("Duration:  %.2f s\n", result.EffectiveDuration())
	a.printf("Peaks:     %d above %d\n", len(peaks), peakThreshold)
	for _, i := range peaks {
		a.printf("  %6d ms  %5.1f\n", result.TimeStamps[i], result.BassFrequencies[i])
	}
}
