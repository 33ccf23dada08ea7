// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"haptic/cmd"
	applog "haptic/internal/log"
	"haptic/pkg/build"
)

// main wires build information and signal handling around the command line.
// Interrupts cancel the command context: capture keeps what it has heard,
// play stops between events and serve shuts down gracefully.
func main() {
	// Development builds run without ldflags; that is worth a note, not an exit.
	if err := build.Initialize(); err != nil {
		applog.Debugf("Build information incomplete: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		stop()
		applog.Fatalf("%v", err)
	}
}
