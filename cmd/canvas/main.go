// ABOUTME: Entry point for the canvas CLI binary
// ABOUTME: Stamps build info and runs the root command under an interrupt-aware context
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/harper/semantic-canvas/cmd/canvas/commands"
)

// Stamped by goreleaser via -ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersion(version, commit, date)

	// Ctrl-C stops long runs such as regenerate between provider calls.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
