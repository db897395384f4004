package rocfft

import "errors"

// Sentinel errors returned by the runtime compilation service.
var (
	// ErrNilStage is returned when RuntimeCompile is given a nil stage.
	ErrNilStage = errors.New("rocfft: nil stage")

	// ErrNoDevice is returned when no device matches the requested
	// index on the active backend.
	ErrNoDevice = errors.New("rocfft: no such device")

	// ErrCompileOnly is returned by launch attempts on a kernel that was
	// compiled under compile-only mode and never loaded onto a device.
	ErrCompileOnly = errors.New("rocfft: kernel compiled without loading")

	// ErrClosed is returned when the service is used after Close.
	ErrClosed = errors.New("rocfft: service closed")
)
