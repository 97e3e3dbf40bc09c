package config

import "time"

// Flags carries the raw command line values.
type Flags struct {
	Target       string
	Discover     bool
	Directory    string
	DirectorySet bool // --directory was given explicitly
	Firmware     string
	Quiet        bool
}

// Options is the resolved, read-only configuration for one invocation.
// It is built once and passed by value.
type Options struct {
	Target   string // --target; takes precedence over Discover
	Discover bool   // --discover

	Directory    string // backup destination
	FirmwarePath string // --firmware

	Quiet bool // suppress log output; discover prints bare hostnames
	Color bool // ANSI colour on stdout

	HTTPTimeout      time.Duration
	DiscoveryBackend string
	DiscoveryTimeout time.Duration
}

// Resolve merges command line flags over the config file.
func Resolve(file *File, flags Flags, color bool) Options {
	if file == nil {
		file = NewFile()
	}

	directory := file.Directory
	if flags.DirectorySet || directory == "" {
		directory = flags.Directory
	}
	if directory == "" {
		directory = DefaultDirectory
	}

	return Options{
		Target:           flags.Target,
		Discover:         flags.Discover,
		Directory:        directory,
		FirmwarePath:     flags.Firmware,
		Quiet:            flags.Quiet,
		Color:            color && !flags.Quiet,
		HTTPTimeout:      file.HTTPTimeout,
		DiscoveryBackend: file.Discovery.Backend,
		DiscoveryTimeout: file.Discovery.Timeout,
	}
}
