// Package logging provides the status line logger for wledctl.
//
// Every backup, upload and discovery outcome is reported as a single line on
// stdout:
//
//	INFO   ✓ kitchen: backup complete
//	ERROR  ✗ livingroom: presets.json fetch failed (HTTP 404)
//
// The logger wraps zap with a console encoder and no timestamps. Levels are
// coloured only when stdout is a terminal; a quiet logger writes nothing.
//
// # Verbosity
//
// WLEDCTL_LOG_LEVEL=debug adds request URLs and discovery details:
//
//	WLEDCTL_LOG_LEVEL=debug wledctl backup --discover
//
// # Usage
//
//	logger, err := logging.New(logging.Options{
//	    Quiet: quiet,
//	    Color: ui.IsTerminal(os.Stdout),
//	})
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	logger.Success("kitchen: backup complete")
package logging
