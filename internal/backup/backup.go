package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/wledctl/internal/discovery"
	"github.com/muurk/wledctl/internal/logging"
	"github.com/muurk/wledctl/internal/wled"
)

// TempSuffix is appended to a backup file while it is being fetched
const TempSuffix = ".tmp"

// Resource is one JSON document backed up from every device
type Resource struct {
	Name string // file name suffix, e.g. "cfg.json"
	Path string // URL path on the device
}

// Resources are fetched in this order
var Resources = []Resource{
	{Name: "cfg.json", Path: wled.ConfigPath},
	{Name: "presets.json", Path: wled.PresetsPath},
}

// Downloader fetches a URL into a local file
type Downloader interface {
	Download(ctx context.Context, host, url, dest string) wled.Result
}

// Runner backs up devices into Directory
type Runner struct {
	Client    Downloader
	Logger    *logging.Logger
	Directory string
}

// FinalPath is where a completed backup of resource name for hostname lives.
func FinalPath(dir, hostname, name string) string {
	return filepath.Join(dir, safeName(hostname)+"."+name)
}

// TempPath is where a backup is written before being renamed into place.
func TempPath(dir, hostname, name string) string {
	return FinalPath(dir, hostname, name) + TempSuffix
}

// safeName keeps a hostname from escaping the backup directory.
func safeName(hostname string) string {
	return strings.NewReplacer("/", "_", `\`, "_").Replace(hostname)
}

// Backup fetches every resource of dev into temp files and, only when all of
// them succeeded, renames them to their final names.
//
// If a fetch fails its temp file is removed and the backup stops. Temp files
// of resources fetched earlier in the same run are left as they are, and no
// final file is touched.
func (r *Runner) Backup(ctx context.Context, dev discovery.Device) error {
	if err := os.MkdirAll(r.Directory, 0755); err != nil {
		r.Logger.Error(fmt.Sprintf("%s: cannot create backup directory %s: %v", dev.Hostname, r.Directory, err))
		return fmt.Errorf("create backup directory: %w", err)
	}

	for _, res := range Resources {
		url := dev.BaseURL() + res.Path
		tmp := TempPath(r.Directory, dev.Hostname, res.Name)

		r.Logger.Debug("fetching", zap.String("host", dev.Hostname), zap.String("url", url), zap.String("dest", tmp))

		result := r.Client.Download(ctx, dev.Hostname, url, tmp)
		if !result.OK() {
			_ = os.Remove(tmp)
			r.Logger.Error(fmt.Sprintf("%s: %s fetch failed: %v", dev.Hostname, res.Name, result.Err()))
			return fmt.Errorf("fetch %s: %w", res.Name, result.Err())
		}
	}

	for _, res := range Resources {
		tmp := TempPath(r.Directory, dev.Hostname, res.Name)
		final := FinalPath(r.Directory, dev.Hostname, res.Name)
		if err := os.Rename(tmp, final); err != nil {
			r.Logger.Error(fmt.Sprintf("%s: cannot save %s: %v", dev.Hostname, final, err))
			return fmt.Errorf("save %s: %w", res.Name, err)
		}
	}

	r.Logger.Success(fmt.Sprintf("%s: backup saved to %s", dev.Hostname, r.Directory))
	return nil
}
