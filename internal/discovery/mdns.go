package discovery

import (
	"context"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
)

// collectGrace is how long Discover waits for in-flight entries after the
// scan window closes.
const collectGrace = 200 * time.Millisecond

// Scanner discovers WLED devices with an in-process mDNS resolver
type Scanner struct {
	// Timeout is the length of the scan window
	Timeout time.Duration

	// newResolver is swapped in tests
	newResolver func() (resolver, error)
}

// resolver is the part of *zeroconf.Resolver the scanner uses
type resolver interface {
	Browse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
		newResolver: func() (resolver, error) {
			return zeroconf.NewResolver(nil)
		},
	}
}

// Discover browses for _wled._tcp services for one scan window and returns
// the resolved devices in the order they were announced.
func (s *Scanner) Discover(ctx context.Context) ([]Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	res, err := s.newResolver()
	if err != nil {
		return nil, &UnavailableError{Backend: BackendZeroconf, Reason: "failed to create mDNS resolver", Err: err}
	}

	entries := make(chan *zeroconf.ServiceEntry)
	collected := make(chan struct{})

	var mu sync.Mutex
	devices := make([]Device, 0)

	go func() {
		defer close(collected)
		for entry := range entries {
			if device, ok := parseServiceEntry(entry); ok {
				mu.Lock()
				devices = append(devices, device)
				mu.Unlock()
			}
		}
	}()

	if err := res.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, &UnavailableError{Backend: BackendZeroconf, Reason: "failed to browse for mDNS services", Err: err}
	}

	<-ctx.Done()

	select {
	case <-collected:
	case <-time.After(collectGrace):
	}

	mu.Lock()
	defer mu.Unlock()
	return dedupe(devices), nil
}

// parseServiceEntry converts a zeroconf service entry to a Device.
// Entries without a hostname or address are not fully resolved and are skipped.
func parseServiceEntry(entry *zeroconf.ServiceEntry) (Device, bool) {
	if entry == nil || entry.HostName == "" {
		return Device{}, false
	}

	// Prefer IPv4
	var address string
	if len(entry.AddrIPv4) > 0 {
		address = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		address = entry.AddrIPv6[0].String()
	}
	if address == "" {
		return Device{}, false
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	return Device{
		Hostname:     shortHostname(entry.HostName),
		Address:      address,
		Port:         port,
		Metadata:     parseTXT(entry.Text),
		DiscoveredAt: time.Now(),
	}, true
}
