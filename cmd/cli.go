// SPDX-License-Identifier: MIT
// Package cmd implements the haptic command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"haptic/internal/config"
	applog "haptic/internal/log"
	"haptic/internal/service"
	"haptic/internal/store"
	"haptic/pkg/build"
)

var log = applog.With("cli")

// app carries state shared by every subcommand once the root pre-run has
// loaded the configuration.
type app struct {
	configPath string
	verbose    bool

	cfg *config.Config
	out io.Writer
}

// Execute runs the command line with os.Args.
func Execute(ctx context.Context) error {
	root := NewRootCommand()
	root.SetArgs(os.Args[1:])
	return root.ExecuteContext(ctx)
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	buildInfo := build.GetBuildFlags()
	a := &app{out: os.Stdout}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.out = cmd.OutOrStdout()
			return a.load()
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "",
		"Path to a YAML config file. Defaults to ./config.yaml when present.")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false,
		"Show verbose output")

	rootCmd.AddCommand(
		newAnalyzeCommand(a),
		newCaptureCommand(a),
		newDevicesCommand(a),
		newSynthesizeCommand(a),
		newPresetsCommand(a),
		newEmbedCommand(a),
		newExtractCommand(a),
		newPlayCommand(a),
		newServeCommand(a),
		newVersionCommand(a),
	)
	return rootCmd
}

// load reads the configuration and applies the log level.
func (a *app) load() error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, _ := applog.ParseLevel(cfg.LogLevel)
	if a.verbose {
		level = applog.LevelDebug
	}
	applog.SetLevel(level)
	return nil
}

// openService opens the configured store and wraps it in a service. The
// returned close function releases the store.
func (a *app) openService(ctx context.Context) (*service.Service, func(), error) {
	timeout := a.cfg.Store.Timeout
	if timeout <= 0 {
		timeout = config.DefaultStoreTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	st, err := store.Open(ctx, a.cfg.Store.Driver, a.cfg.Mongo())
	if err != nil {
		return nil, nil, err
	}
	svc := service.New(st, service.WithDefaults(a.cfg.Processing))
	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := st.Close(ctx); err != nil {
			log.Warnf("Error closing store: %v", err)
		}
	}
	return svc, closeFn, nil
}

func (a *app) printf(format string, v ...any) {
	fmt.Fprintf(a.out, format, v...)
}
