package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "wledctl"
	configFile = "config.yaml"

	// ConfigEnvVar points at an alternative config file
	ConfigEnvVar = "WLEDCTL_CONFIG"

	// CurrentVersion is the config file format version
	CurrentVersion = 1
)

// Defaults applied when neither the config file nor a flag sets a value
const (
	DefaultDirectory        = "."
	DefaultHTTPTimeout      = 60 * time.Second
	DefaultDiscoveryBackend = "zeroconf"
	DefaultDiscoveryTimeout = 3 * time.Second
)

// File is the on-disk configuration. Every field is optional.
type File struct {
	Version     int           `yaml:"version"`
	Directory   string        `yaml:"directory,omitempty"`    // Default backup directory
	HTTPTimeout time.Duration `yaml:"http_timeout,omitempty"` // Per-request timeout
	Discovery   DiscoveryFile `yaml:"discovery,omitempty"`
}

// DiscoveryFile configures mDNS discovery.
type DiscoveryFile struct {
	Backend string        `yaml:"backend,omitempty"` // "zeroconf" or "avahi"
	Timeout time.Duration `yaml:"timeout,omitempty"` // zeroconf scan window
}

// NewFile returns a File populated with defaults.
func NewFile() *File {
	return &File{
		Version:     CurrentVersion,
		Directory:   DefaultDirectory,
		HTTPTimeout: DefaultHTTPTimeout,
		Discovery: DiscoveryFile{
			Backend: DefaultDiscoveryBackend,
			Timeout: DefaultDiscoveryTimeout,
		},
	}
}

// GetConfigDir returns the OS-appropriate configuration directory:
//   - Linux: $XDG_CONFIG_HOME/wledctl or $HOME/.config/wledctl
//   - macOS: $HOME/.config/wledctl
//   - Windows: %LOCALAPPDATA%\wledctl
func GetConfigDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, appName), nil
		}
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
		}
		return filepath.Join(userProfile, "AppData", "Local", appName), nil

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", appName), nil

	default:
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			return filepath.Join(xdgConfigHome, appName), nil
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", appName), nil
	}
}

// GetConfigPath returns the config file location, honouring WLEDCTL_CONFIG.
func GetConfigPath() (string, error) {
	if path := os.Getenv(ConfigEnvVar); path != "" {
		return path, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// Load reads the config file at path. An empty path means GetConfigPath().
// A missing file yields the defaults.
func Load(path string) (*File, error) {
	if path == "" {
		var err error
		if path, err = GetConfigPath(); err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewFile(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes a config document and fills unset fields with defaults.
func Parse(data []byte) (*File, error) {
	file := NewFile()
	file.Version = 0

	if err := yaml.Unmarshal(data, file); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// An omitted version means the current one
	if file.Version == 0 {
		file.Version = CurrentVersion
	}
	if file.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported config version: %d (expected %d)", file.Version, CurrentVersion)
	}

	if file.HTTPTimeout < 0 {
		return nil, fmt.Errorf("http_timeout must not be negative")
	}
	if file.Discovery.Timeout < 0 {
		return nil, fmt.Errorf("discovery.timeout must not be negative")
	}

	if file.Directory == "" {
		file.Directory = DefaultDirectory
	}
	if file.HTTPTimeout == 0 {
		file.HTTPTimeout = DefaultHTTPTimeout
	}
	if file.Discovery.Backend == "" {
		file.Discovery.Backend = DefaultDiscoveryBackend
	}
	if file.Discovery.Timeout == 0 {
		file.Discovery.Timeout = DefaultDiscoveryTimeout
	}

	return file, nil
}
