// Package backup saves the configuration and presets of WLED devices.
//
// For a device with hostname "kitchen" and directory "/srv/wled" the result is
//
//	/srv/wled/kitchen.cfg.json
//	/srv/wled/kitchen.presets.json
//
// Each document is downloaded to "<final>.tmp" and renamed into place only
// after both downloads succeeded, so a file under its final name is always a
// complete document. The two renames are independent.
package backup
