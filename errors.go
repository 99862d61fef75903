package wagman

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout is returned when the device does not finish a response within
	// Config.Timeout, or sends more than Config.MaxLines body lines.
	ErrTimeout = errors.New("wagman: timeout")

	// ErrSessionUsed is returned by Send on a session that already sent a command.
	ErrSessionUsed = errors.New("wagman: session already used")

	// ErrLineTooLong is returned when the device sends more than 64 KiB
	// without a line delimiter.
	ErrLineTooLong = errors.New("wagman: line too long")
)

// ProtocolError reports a response that does not start with the header line.
type ProtocolError struct {
	Line string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("header not found: got %q", e.Line)
}

// TransportError wraps a failure opening, reading or writing the serial device.
type TransportError struct {
	Op     string
	Device string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Device == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Device, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
