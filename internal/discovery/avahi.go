package discovery

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// AvahiBrowseBinary is the external browser used by the avahi backend
const AvahiBrowseBinary = "avahi-browse"

// AvahiBrowser discovers devices by running avahi-browse once in
// resolve/parsable/terminate mode.
type AvahiBrowser struct {
	// Binary is the avahi-browse executable name or path
	Binary string

	lookPath func(string) (string, error)
	run      func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewAvahiBrowser creates a browser that uses avahi-browse from PATH
func NewAvahiBrowser() *AvahiBrowser {
	return &AvahiBrowser{
		Binary:   AvahiBrowseBinary,
		lookPath: exec.LookPath,
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		},
	}
}

// Args returns the avahi-browse arguments for one complete scan.
func (a *AvahiBrowser) Args() []string {
	return []string{"--resolve", "--parsable", "--terminate", ServiceType}
}

// Discover runs avahi-browse and parses its resolved records.
func (a *AvahiBrowser) Discover(ctx context.Context) ([]Device, error) {
	path, err := a.lookPath(a.Binary)
	if err != nil {
		return nil, &UnavailableError{
			Backend: BackendAvahi,
			Reason:  a.Binary + " not found in PATH (install avahi-utils, or set discovery.backend: zeroconf)",
			Err:     err,
		}
	}

	out, err := a.run(ctx, path, a.Args()...)
	if err != nil {
		reason := a.Binary + " failed"
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			reason += ": " + strings.TrimSpace(string(exitErr.Stderr))
		}
		return nil, &UnavailableError{Backend: BackendAvahi, Reason: reason, Err: err}
	}

	return ParseAvahiOutput(out), nil
}

// ParseAvahiOutput extracts devices from `avahi-browse --parsable --resolve`
// output. Only "=" lines (resolved, added) are used:
//
//	=;eth0;IPv4;WLED-Kitchen;_wled._tcp;local;wled-kitchen.local;192.168.1.20;80;"mac=a8032a4b1c2d"
func ParseAvahiOutput(out []byte) []Device {
	devices := make([]Device, 0)

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if device, ok := parseAvahiLine(scanner.Text()); ok {
			devices = append(devices, device)
		}
	}

	return dedupe(devices)
}

func parseAvahiLine(line string) (Device, bool) {
	fields := strings.Split(line, ";")
	if len(fields) < 9 || fields[0] != "=" {
		return Device{}, false
	}

	hostname := shortHostname(unescapeAvahi(fields[6]))
	address := fields[7]
	if hostname == "" || address == "" {
		return Device{}, false
	}

	port, err := strconv.Atoi(fields[8])
	if err != nil || port <= 0 || port > 65535 {
		return Device{}, false
	}

	var txt []string
	if len(fields) > 9 {
		txt = splitAvahiTXT(strings.Join(fields[9:], ";"))
	}

	return Device{
		Hostname:     hostname,
		Address:      address,
		Port:         port,
		Metadata:     parseTXT(txt),
		DiscoveredAt: time.Now(),
	}, true
}

// unescapeAvahi decodes avahi's \DDD decimal escapes (e.g. "\032" is a space).
func unescapeAvahi(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+4 <= len(s) && isDigits(s[i+1:i+4]) {
			if n, _ := strconv.Atoi(s[i+1 : i+4]); n <= 255 {
				b.WriteByte(byte(n))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}

// splitAvahiTXT splits `"a=1" "b=2"` into its quoted strings.
func splitAvahiTXT(s string) []string {
	var out []string
	for _, part := range strings.Split(s, `" "`) {
		part = strings.Trim(part, `"`)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
