package discovery

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// DefaultPort is the HTTP port assumed for user-supplied targets
const DefaultPort = 80

// Device represents a WLED controller to operate on
type Device struct {
	// Hostname names the device in logs and backup filenames (e.g., "wled-kitchen")
	Hostname string

	// Address is an IPv4/IPv6 address or resolvable host name
	Address string

	// Port is the HTTP port (typically 80)
	Port int

	// Metadata contains mDNS TXT record data, e.g. "mac=a8032a4b1c2d"
	Metadata map[string]string

	// DiscoveredAt is when the device was discovered (zero for --target)
	DiscoveredAt time.Time
}

// NewTargetDevice builds the device record for an explicit --target.
func NewTargetDevice(target string) Device {
	return Device{
		Hostname: target,
		Address:  target,
		Port:     DefaultPort,
	}
}

// String returns a human-readable string representation of the device
func (d Device) String() string {
	return fmt.Sprintf("%s (%s)", d.Hostname, net.JoinHostPort(d.Address, strconv.Itoa(d.Port)))
}

// BaseURL returns the HTTP base URL for the device
func (d Device) BaseURL() string {
	return "http://" + net.JoinHostPort(d.Address, strconv.Itoa(d.Port))
}

// shortHostname strips the mDNS domain: "wled-kitchen.local." -> "wled-kitchen".
func shortHostname(host string) string {
	host = strings.TrimSuffix(host, ".")
	return strings.TrimSuffix(host, ".local")
}

// parseTXT converts "key=value" TXT strings into a map.
func parseTXT(records []string) map[string]string {
	metadata := make(map[string]string, len(records))
	for _, txt := range records {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else if parts[0] != "" {
			metadata[parts[0]] = ""
		}
	}
	return metadata
}
