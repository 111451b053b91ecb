package recording

import (
	"errors"
	"fmt"
)

// ErrNilDevice is returned by Emit when called without a device.
var ErrNilDevice = errors.New("recording: nil device")

// Device error codes. Devices wrap one of these in the errors they report
// from Err so that callers can classify failures with errors.Is.
var (
	ErrInvalidEnum      = errors.New("recording: invalid enum")
	ErrInvalidValue     = errors.New("recording: invalid value")
	ErrInvalidOperation = errors.New("recording: invalid operation")
	ErrOutOfMemory      = errors.New("recording: out of memory")
	ErrInvalidTarget    = errors.New("recording: invalid framebuffer operation")
)

// DeviceError reports a device failure during replay. Device errors are
// fatal for the frame: there is no recovery path once the device has
// rejected a call.
type DeviceError struct {
	// Op is the failing call site, e.g. "Draw" or "UploadVertices".
	Op string
	// Index is the position of the failing command in the frame, or -1 for
	// calls made outside command replay.
	Index int
	// Err is the underlying error.
	Err error
}

// Error implements error.
func (e *DeviceError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("recording: device error in %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("recording: device error in %s (command %d): %v", e.Op, e.Index, e.Err)
}

// Unwrap returns the underlying error.
func (e *DeviceError) Unwrap() error { return e.Err }
