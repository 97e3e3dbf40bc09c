package discovery

import (
	"context"
	"fmt"
	"net"
	"time"
)

const (
	// ServiceType is the mDNS service type WLED advertises
	ServiceType = "_wled._tcp"

	// ServiceDomain is the mDNS domain
	ServiceDomain = "local."

	// DefaultScanTimeout bounds a single zeroconf scan
	DefaultScanTimeout = 3 * time.Second
)

// Backend names accepted by NewProvider
const (
	BackendZeroconf = "zeroconf"
	BackendAvahi    = "avahi"
)

// Provider enumerates WLED devices on the local network in one pass.
// Zero devices is not an error.
type Provider interface {
	Discover(ctx context.Context) ([]Device, error)
}

// UnavailableError means the mDNS facility itself cannot be used
// (missing avahi-browse, daemon not running, no multicast interface).
type UnavailableError struct {
	Backend string
	Reason  string
	Err     error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mDNS discovery unavailable (%s): %s: %v", e.Backend, e.Reason, e.Err)
	}
	return fmt.Sprintf("mDNS discovery unavailable (%s): %s", e.Backend, e.Reason)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// NewProvider returns the provider for a backend name. An empty name selects zeroconf.
func NewProvider(backend string, timeout time.Duration) (Provider, error) {
	switch backend {
	case "", BackendZeroconf:
		s := NewScanner()
		if timeout > 0 {
			s.Timeout = timeout
		}
		return s, nil
	case BackendAvahi:
		return NewAvahiBrowser(), nil
	default:
		return nil, fmt.Errorf("unknown discovery backend %q (use %s or %s)", backend, BackendZeroconf, BackendAvahi)
	}
}

// dedupe keeps one record per hostname in first-seen order. When a host was
// announced over both protocols the IPv4 address is kept.
func dedupe(devices []Device) []Device {
	index := make(map[string]int, len(devices))
	out := make([]Device, 0, len(devices))
	for _, d := range devices {
		i, seen := index[d.Hostname]
		if !seen {
			index[d.Hostname] = len(out)
			out = append(out, d)
			continue
		}
		if isIPv6(out[i].Address) && !isIPv6(d.Address) {
			out[i].Address = d.Address
		}
	}
	return out
}

func isIPv6(address string) bool {
	ip := net.ParseIP(address)
	return ip != nil && ip.To4() == nil
}
