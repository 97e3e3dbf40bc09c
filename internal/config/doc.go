// Package config resolves the settings for a single wledctl invocation.
//
// Settings come from two places. An optional YAML file supplies defaults:
//
//	version: 1
//	directory: /srv/backups/wled
//	http_timeout: 60s
//	discovery:
//	  backend: zeroconf   # or avahi
//	  timeout: 3s
//
// The file lives in the platform config directory:
//   - Linux: $XDG_CONFIG_HOME/wledctl/config.yaml or $HOME/.config/wledctl/config.yaml
//   - macOS: $HOME/.config/wledctl/config.yaml
//   - Windows: %LOCALAPPDATA%\wledctl\config.yaml
//
// WLEDCTL_CONFIG overrides the location. A missing file is not an error.
//
// Command line flags then override the file, and Resolve produces an
// immutable Options value that is handed to every component.
package config
