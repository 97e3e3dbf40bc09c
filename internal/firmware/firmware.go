package firmware

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/muurk/wledctl/internal/discovery"
	"github.com/muurk/wledctl/internal/logging"
	"github.com/muurk/wledctl/internal/wled"
)

// Poster uploads a firmware image to a device URL
type Poster interface {
	UploadFirmware(ctx context.Context, host, url, firmwarePath string) wled.Result
}

// Check verifies the firmware file exists and is a regular file. It runs
// once per invocation, before any device is contacted.
func Check(path string) error {
	if path == "" {
		return fmt.Errorf("no firmware file specified (use --firmware)")
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("firmware file not found: %s", path)
	}
	if err != nil {
		return fmt.Errorf("cannot access firmware file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("firmware path is not a regular file: %s", path)
	}
	return nil
}

// Updater pushes one firmware image to devices
type Updater struct {
	Client       Poster
	Logger       *logging.Logger
	FirmwarePath string
}

// Update uploads the firmware to dev. Success means the device accepted the
// upload; flashing and reboot are not awaited.
func (u *Updater) Update(ctx context.Context, dev discovery.Device) error {
	url := dev.BaseURL() + wled.UpdatePath

	u.Logger.Debug("uploading firmware", zap.String("host", dev.Hostname), zap.String("url", url), zap.String("file", u.FirmwarePath))

	result := u.Client.UploadFirmware(ctx, dev.Hostname, url, u.FirmwarePath)
	if !result.OK() {
		u.Logger.Error(fmt.Sprintf("%s: firmware upload failed: %v", dev.Hostname, result.Err()))
		return fmt.Errorf("upload firmware: %w", result.Err())
	}

	u.Logger.Success(fmt.Sprintf("%s: firmware uploaded, device will flash and reboot", dev.Hostname))
	return nil
}
