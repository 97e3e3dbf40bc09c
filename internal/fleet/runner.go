package fleet

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/muurk/wledctl/internal/backup"
	"github.com/muurk/wledctl/internal/config"
	"github.com/muurk/wledctl/internal/discovery"
	"github.com/muurk/wledctl/internal/firmware"
	"github.com/muurk/wledctl/internal/logging"
	"github.com/muurk/wledctl/internal/ui"
)

// DeviceClient is everything the runner needs from the HTTP layer
type DeviceClient interface {
	backup.Downloader
	firmware.Poster
}

// Runner executes one wledctl command over the resolved device set.
// Devices are processed one at a time; a failing device never stops the batch.
type Runner struct {
	Options  config.Options
	Provider discovery.Provider
	Client   DeviceClient
	Logger   *logging.Logger
	Out      io.Writer // discover listing
}

// Summary counts the outcome of a batch
type Summary struct {
	Attempted int
	Failed    []string // hostnames
}

// Succeeded returns the number of devices that completed
func (s Summary) Succeeded() int {
	return s.Attempted - len(s.Failed)
}

// Targets resolves the devices to operate on. --target wins over --discover
// and never triggers discovery.
func (r *Runner) Targets(ctx context.Context) ([]discovery.Device, error) {
	if r.Options.Target != "" {
		return []discovery.Device{discovery.NewTargetDevice(r.Options.Target)}, nil
	}
	if r.Options.Discover {
		return r.discover(ctx)
	}
	return nil, ErrNoTarget
}

func (r *Runner) discover(ctx context.Context) ([]discovery.Device, error) {
	if r.Provider == nil {
		return nil, &PreconditionError{What: "mDNS discovery", Err: errors.New("no discovery provider configured")}
	}

	r.Logger.Debug("discovering devices", zap.String("service", discovery.ServiceType), zap.String("backend", r.Options.DiscoveryBackend))

	devices, err := r.Provider.Discover(ctx)
	if err != nil {
		var unavailable *discovery.UnavailableError
		if errors.As(err, &unavailable) {
			return nil, &PreconditionError{What: "mDNS discovery", Err: err}
		}
		return nil, fmt.Errorf("discovery failed: %w", err)
	}

	r.Logger.Debug("discovery complete", zap.Int("devices", len(devices)))
	for _, d := range devices {
		r.Logger.Debug("found device", zap.Stringer("device", d))
	}
	return devices, nil
}

// Backup backs up every target into Options.Directory.
func (r *Runner) Backup(ctx context.Context) (Summary, error) {
	devices, err := r.Targets(ctx)
	if err != nil {
		return Summary{}, err
	}

	b := &backup.Runner{
		Client:    r.Client,
		Logger:    r.Logger,
		Directory: r.Options.Directory,
	}
	return r.each(ctx, "backup", devices, b.Backup)
}

// Update uploads Options.FirmwarePath to every target. The firmware file is
// checked once, before targets are resolved.
func (r *Runner) Update(ctx context.Context) (Summary, error) {
	if err := firmware.Check(r.Options.FirmwarePath); err != nil {
		return Summary{}, &PreconditionError{What: "firmware", Err: err}
	}

	devices, err := r.Targets(ctx)
	if err != nil {
		return Summary{}, err
	}

	u := &firmware.Updater{
		Client:       r.Client,
		Logger:       r.Logger,
		FirmwarePath: r.Options.FirmwarePath,
	}
	return r.each(ctx, "update", devices, u.Update)
}

// Discover lists discovered devices on Out: bare hostnames in quiet mode,
// "hostname  address:port" otherwise.
func (r *Runner) Discover(ctx context.Context) error {
	devices, err := r.discover(ctx)
	if err != nil {
		return err
	}

	for _, d := range devices {
		if r.Options.Quiet {
			fmt.Fprintln(r.Out, d.Hostname)
			continue
		}
		fmt.Fprintln(r.Out, ui.DeviceLine(d.Hostname, d.Address, d.Port, r.Options.Color))
	}
	return nil
}

// each runs op for every device, isolating failures. It only returns an
// error when ctx is cancelled.
func (r *Runner) each(ctx context.Context, action string, devices []discovery.Device, op func(context.Context, discovery.Device) error) (Summary, error) {
	var summary Summary

	if len(devices) == 0 {
		r.Logger.Info(fmt.Sprintf("%s: no WLED devices found", action))
		return summary, nil
	}

	for _, dev := range devices {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("%s interrupted: %w", action, err)
		}

		summary.Attempted++
		if err := op(ctx, dev); err != nil {
			summary.Failed = append(summary.Failed, dev.Hostname)
		}
	}

	if len(devices) > 1 {
		msg := fmt.Sprintf("%s: %d of %d devices succeeded", action, summary.Succeeded(), summary.Attempted)
		if len(summary.Failed) > 0 {
			r.Logger.Error(msg, zap.Strings("failed", summary.Failed))
		} else {
			r.Logger.Info(msg)
		}
	}

	return summary, nil
}
