package fleet

import (
	"errors"
	"fmt"
)

// ErrNoTarget is returned when neither --target nor --discover was given
var ErrNoTarget = errors.New("no target specified (use --target <host> or --discover)")

// ArgumentError reports invalid command line input
type ArgumentError struct {
	Flag   string
	Reason string
}

func (e *ArgumentError) Error() string {
	if e.Flag == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Flag, e.Reason)
}

// PreconditionError reports a missing external tool or file that the whole
// run depends on
type PreconditionError struct {
	What string
	Err  error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %v", e.What, e.Err)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}
