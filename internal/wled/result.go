package wled

import "net/http"

// Outcome is the classification of a single request attempt.
type Outcome int

const (
	// OutcomeSuccess is any status in [200,300)
	OutcomeSuccess Outcome = iota
	// OutcomeServerError is any status >= 400
	OutcomeServerError
	// OutcomeUnexpectedResponse is any other status (1xx, 3xx)
	OutcomeUnexpectedResponse
	// OutcomeTransportError means no response was received
	OutcomeTransportError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeServerError:
		return "server error"
	case OutcomeUnexpectedResponse:
		return "unexpected response"
	case OutcomeTransportError:
		return "transport error"
	default:
		return "unknown"
	}
}

// Result is the classified outcome of one request to a device.
type Result struct {
	Outcome    Outcome
	Host       string
	StatusCode int
	err        *DeviceError
}

// Classify maps a transport error and HTTP status code to a Result.
// A non-nil transportErr always wins; statusCode is ignored in that case.
func Classify(host string, statusCode int, transportErr error) Result {
	if transportErr != nil {
		return Result{
			Outcome: OutcomeTransportError,
			Host:    host,
			err:     NewTransportError(host, transportErr),
		}
	}

	r := Result{Host: host, StatusCode: statusCode}
	switch {
	case statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices:
		r.Outcome = OutcomeSuccess
	case statusCode >= http.StatusBadRequest:
		r.Outcome = OutcomeServerError
		r.err = NewStatusError(host, statusCode)
	default:
		r.Outcome = OutcomeUnexpectedResponse
		r.err = NewStatusError(host, statusCode)
	}
	return r
}

// OK reports whether the request succeeded.
func (r Result) OK() bool {
	return r.Outcome == OutcomeSuccess
}

// Err returns nil on success, or a *DeviceError describing the failure.
func (r Result) Err() error {
	if r.err == nil {
		return nil
	}
	return r.err
}
