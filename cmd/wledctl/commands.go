package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/muurk/wledctl/internal/config"
	"github.com/muurk/wledctl/internal/discovery"
	"github.com/muurk/wledctl/internal/fleet"
	"github.com/muurk/wledctl/internal/logging"
	"github.com/muurk/wledctl/internal/ui"
	"github.com/muurk/wledctl/internal/version"
	"github.com/muurk/wledctl/internal/wled"
)

// errNoCommand is returned when flags were given without a command
var errNoCommand = errors.New("no command specified")

// app holds the raw flag values and output streams for one invocation
type app struct {
	flags  config.Flags
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "wledctl [flags] COMMAND",
		Short: "Back up and update WLED controllers",
		Long: `Back up configuration and presets from WLED devices, or push new
firmware to them.

Devices are selected with --target (a single host or IP) or --discover
(every _wled._tcp service found over mDNS). When both are given,
--target wins and no discovery is performed.`,
		Example: `  # Back up every device on the network into ./backups
  wledctl --discover --directory ./backups backup

  # Update a single device
  wledctl --target 192.168.1.50 --firmware WLED_0.15.0_ESP32.bin update

  # List devices, one hostname per line
  wledctl --discover --quiet discover`,
		Version:           version.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		Args:              cobra.ArbitraryArgs,
		PersistentPreRunE: a.validateFlags,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				cmd.SetOut(a.stderr)
				_ = cmd.Usage()
				return fmt.Errorf("unknown command %q for %q", args[0], cmd.Name())
			}
			// Without a command: usage, and an error only if flags were given
			if cmd.Flags().NFlag() == 0 {
				cmd.SetOut(a.stdout)
				return cmd.Help()
			}
			cmd.SetOut(a.stderr)
			_ = cmd.Usage()
			return errNoCommand
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.flags.Target, "target", "t", "", "Target a single device by hostname or IP (skips discovery)")
	flags.BoolVarP(&a.flags.Discover, "discover", "D", false, "Find devices via mDNS (_wled._tcp)")
	flags.StringVarP(&a.flags.Directory, "directory", "d", config.DefaultDirectory, "Backup directory")
	flags.StringVarP(&a.flags.Firmware, "firmware", "f", "", "Firmware image for update")
	flags.BoolVarP(&a.flags.Quiet, "quiet", "q", false, "Suppress status output; discover prints bare hostnames")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "backup",
			Short: "Save cfg.json and presets.json from each device",
			Long: `Download /cfg.json and /presets.json from each device into
<directory>/<hostname>.cfg.json and <directory>/<hostname>.presets.json.

Existing backups are only replaced when both files were fetched.`,
			Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(cmd.Context(), func(ctx context.Context, r *fleet.Runner) error {
					_, err := r.Backup(ctx)
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "update",
			Short: "Upload firmware to each device",
			Long: `POST the --firmware image to /update on each device. The device
flashes and reboots on its own; wledctl does not wait for it.`,
			Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(cmd.Context(), func(ctx context.Context, r *fleet.Runner) error {
					_, err := r.Update(ctx)
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "discover",
			Short: "List WLED devices found via mDNS",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(cmd.Context(), func(ctx context.Context, r *fleet.Runner) error {
					return r.Discover(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(a.stdout, "wledctl %s\n", version.Full())
			},
		},
	)

	return rootCmd
}

// validateFlags rejects string flags whose value is empty or looks like
// another flag, e.g. "--target --discover".
func (a *app) validateFlags(cmd *cobra.Command, args []string) error {
	for _, name := range []string{"target", "directory", "firmware"} {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		value := f.Value.String()
		if value == "" || strings.HasPrefix(value, "-") {
			return &fleet.ArgumentError{Flag: "--" + name, Reason: "requires a value"}
		}
	}
	a.flags.DirectorySet = cmd.Flags().Changed("directory")
	return nil
}

// run builds the runner for the resolved options and executes fn.
func (a *app) run(ctx context.Context, fn func(context.Context, *fleet.Runner) error) error {
	file, err := config.Load("")
	if err != nil {
		return err
	}

	opts := config.Resolve(file, a.flags, isTerminal(a.stdout))

	logger, err := logging.New(logging.Options{
		Quiet:  opts.Quiet,
		Color:  opts.Color,
		Output: zapcore.AddSync(a.stdout),
	})
	if err != nil {
		return err
	}
	defer logger.Sync()

	provider, err := discovery.NewProvider(opts.DiscoveryBackend, opts.DiscoveryTimeout)
	if err != nil {
		return err
	}

	runner := &fleet.Runner{
		Options:  opts,
		Provider: provider,
		Client:   wled.NewClient(opts.HTTPTimeout),
		Logger:   logger,
		Out:      a.stdout,
	}
	return fn(ctx, runner)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && ui.IsTerminal(f)
}
