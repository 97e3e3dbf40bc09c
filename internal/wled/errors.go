package wled

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
)

// ErrorType represents the category of a failed request
type ErrorType int

const (
	// ErrTypeTransport indicates no HTTP response was received (connect, DNS, timeout)
	ErrTypeTransport ErrorType = iota
	// ErrTypeServer indicates the device answered with a status >= 400
	ErrTypeServer
	// ErrTypeUnexpected indicates any other non-2xx status (1xx, 3xx)
	ErrTypeUnexpected
)

// TransportSubtype narrows down a transport failure
type TransportSubtype int

const (
	TransportGeneral TransportSubtype = iota
	TransportTimeout
	TransportConnectionRefused
	TransportDNS
	TransportHostUnreachable
	TransportNetworkUnreachable
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeTransport:
		return "Transport Error"
	case ErrTypeServer:
		return "Server Error"
	case ErrTypeUnexpected:
		return "Unexpected Response"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

func (s TransportSubtype) String() string {
	switch s {
	case TransportTimeout:
		return "timed out"
	case TransportConnectionRefused:
		return "connection refused"
	case TransportDNS:
		return "name resolution failed"
	case TransportHostUnreachable:
		return "host unreachable"
	case TransportNetworkUnreachable:
		return "network unreachable"
	default:
		return "could not connect"
	}
}

// DeviceError describes a failed request to a WLED device
type DeviceError struct {
	Type       ErrorType        // Category of error
	Host       string           // Device hostname or address
	StatusCode int              // HTTP status code (0 for transport errors)
	Subtype    TransportSubtype // Set for transport errors
	Err        error            // Underlying error (transport errors only)
}

// Error implements the error interface
func (e *DeviceError) Error() string {
	switch e.Type {
	case ErrTypeTransport:
		if e.Err != nil {
			return fmt.Sprintf("%s: %s (%v)", e.Host, e.Subtype, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Host, e.Subtype)
	case ErrTypeServer:
		return fmt.Sprintf("%s: server error (HTTP %d)", e.Host, e.StatusCode)
	default:
		return fmt.Sprintf("%s: unexpected response (HTTP %d)", e.Host, e.StatusCode)
	}
}

// Unwrap returns the underlying error for error chain inspection
func (e *DeviceError) Unwrap() error {
	return e.Err
}

// classifyTransport picks the most specific subtype for a failed round trip.
func classifyTransport(err error) TransportSubtype {
	if os.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return TransportTimeout
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
		if os.IsTimeout(err) {
			return TransportTimeout
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return TransportDNS
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return TransportConnectionRefused
	case errors.Is(err, syscall.EHOSTUNREACH):
		return TransportHostUnreachable
	case errors.Is(err, syscall.ENETUNREACH):
		return TransportNetworkUnreachable
	}

	return TransportGeneral
}

// NewTransportError creates a transport-level error with automatic classification
func NewTransportError(host string, err error) *DeviceError {
	return &DeviceError{
		Type:    ErrTypeTransport,
		Host:    host,
		Subtype: classifyTransport(err),
		Err:     err,
	}
}

// NewStatusError creates an error for a non-2xx HTTP status
func NewStatusError(host string, statusCode int) *DeviceError {
	typ := ErrTypeUnexpected
	if statusCode >= 400 {
		typ = ErrTypeServer
	}
	return &DeviceError{
		Type:       typ,
		Host:       host,
		StatusCode: statusCode,
	}
}

func errorType(err error) (ErrorType, bool) {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr.Type, true
	}
	return 0, false
}

// IsTransportError checks if an error is a transport error
func IsTransportError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeTransport
}

// IsServerError checks if an error is a server (>= 400) error
func IsServerError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeServer
}

// IsUnexpectedResponse checks if an error is an unexpected (non-2xx, < 400) response
func IsUnexpectedResponse(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeUnexpected
}
