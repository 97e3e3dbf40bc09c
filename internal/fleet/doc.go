// Package fleet runs wledctl commands over a set of WLED devices.
//
// The device set is either the single --target (hostname = address = target,
// port 80) or everything discovery returns. Devices are processed
// sequentially. Per-device failures are logged and counted in the Summary;
// they do not produce an error, so a batch with failed devices still exits 0.
// Only setup problems (ArgumentError, PreconditionError, ErrNoTarget) and
// cancellation are returned as errors.
package fleet
