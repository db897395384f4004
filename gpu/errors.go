package gpu

import "errors"

var (
	// ErrNoBackend is returned when no GPU backend is registered.
	ErrNoBackend = errors.New("rocfft/gpu: no backend registered")

	// ErrBackendUnavailable is returned when the backend is registered but not
	// available on the current system (e.g., no device, driver missing).
	ErrBackendUnavailable = errors.New("rocfft/gpu: backend unavailable")

	// ErrNotImplemented is returned by stubbed operations.
	ErrNotImplemented = errors.New("rocfft/gpu: not implemented")

	// ErrKernelClosed is returned when launching through a closed kernel
	// handle.
	ErrKernelClosed = errors.New("rocfft/gpu: kernel closed")

	// ErrLaunchLimits is returned when requested launch geometry or shared
	// memory exceeds device limits. The launch never reaches the driver.
	ErrLaunchLimits = errors.New("rocfft/gpu: launch exceeds device limits")

	// ErrEmptyCode is returned when constructing a kernel from an empty
	// code object.
	ErrEmptyCode = errors.New("rocfft/gpu: empty code object")
)
