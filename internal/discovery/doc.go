// Package discovery finds WLED controllers on the local network.
//
// WLED advertises itself over multicast DNS as "_wled._tcp". Two Provider
// implementations browse for it:
//
//   - Scanner: an in-process resolver (github.com/grandcat/zeroconf) that
//     listens for one scan window (DefaultScanTimeout) and returns every
//     resolved service.
//   - AvahiBrowser: runs `avahi-browse --resolve --parsable --terminate
//     _wled._tcp` and parses the resolved ("=") records.
//
// Both return devices in announcement order with duplicates (the same host
// seen over IPv4 and IPv6) removed. An empty result is not an error. When the
// mDNS facility itself cannot be used, Discover returns *UnavailableError.
//
// # Usage Example
//
//	provider, err := discovery.NewProvider(discovery.BackendZeroconf, 3*time.Second)
//	if err != nil {
//	    return err
//	}
//	devices, err := provider.Discover(ctx)
//	if err != nil {
//	    return err
//	}
//	for _, d := range devices {
//	    fmt.Println(d.Hostname, d.BaseURL())
//	}
//
// # Network Requirements
//
//   - Multicast on the local segment (UDP port 5353)
//   - For the avahi backend: avahi-daemon running and avahi-utils installed
package discovery
