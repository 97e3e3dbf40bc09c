package ui

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette for status output
var (
	SuccessColor = lipgloss.Color("#43BF6D") // Green - completed backups/uploads
	ErrorColor   = lipgloss.Color("#FF5555") // Red - per-device failures
	MutedColor   = lipgloss.Color("#626262") // Gray - addresses, ports
	TextColor    = lipgloss.Color("#FFFFFF") // White - hostnames
)

var (
	// SuccessStyle colours a success message
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	// ErrorStyle colours a failure message
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// HostnameStyle is for the hostname column of the discover listing
	HostnameStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true)

	// EndpointStyle is for the address:port column of the discover listing
	EndpointStyle = lipgloss.NewStyle().
			Foreground(MutedColor)
)

// Status markers
const (
	SuccessMarker = "✓"
	FailureMarker = "✗"
)

// hostnameWidth pads the hostname column so addresses line up.
const hostnameWidth = 24

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Paint renders text with style when color is enabled, and returns it
// unchanged otherwise.
func Paint(style lipgloss.Style, text string, color bool) string {
	if !color {
		return text
	}
	return style.Render(text)
}

// DeviceLine formats one row of the discover listing.
func DeviceLine(hostname, address string, port int, color bool) string {
	name := fmt.Sprintf("%-*s", hostnameWidth, hostname)
	endpoint := net.JoinHostPort(address, strconv.Itoa(port))
	if !color {
		return name + " " + endpoint
	}
	return HostnameStyle.Render(name) + " " + EndpointStyle.Render(endpoint)
}
