// Wledctl backs up and updates WLED LED controllers on the local network.
//
// Devices are addressed directly with --target or found over mDNS with
// --discover. Backups fetch cfg.json and presets.json into a directory;
// updates upload a firmware image to /update.
//
// Usage:
//
//	wledctl [flags] backup|update|discover|version
//
// See 'wledctl --help' for available flags.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
