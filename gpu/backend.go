package gpu

import "sync"

// Backend is implemented by GPU runtime backends (HIP, CUDA, the mock).
// It is responsible for device discovery, kernel compilation, and module
// loading.
type Backend interface {
	Info() BackendInfo
	Available() bool
	Devices() ([]DeviceProperties, error)
	// SetDevice selects the device subsequent module loads and launches
	// target. Compile workers call this before touching the driver.
	SetDevice(index int) error
	// Compiler returns the source-to-code-object compiler for this
	// backend.
	Compiler() Compiler
	// LoadModule loads a compiled code object onto the current device.
	LoadModule(code []byte) (Module, error)
	// NewStream creates an execution stream/queue on the current device.
	NewStream() (Stream, error)
}

// Compiler turns generated kernel source into a device code object for
// one architecture.
type Compiler interface {
	Compile(kernelName, source, arch string) ([]byte, error)
}

// Module is a loaded code object owning device resources until Unload.
type Module interface {
	Function(name string) (Function, error)
	Unload() error
}

// Function is a resolved kernel entry point.
type Function interface {
	// Launch enqueues the kernel with packed arguments. Geometry is
	// assumed validated by the caller.
	Launch(args *ArgBuffer, grid, block Dim3, sharedBytes uint32, stream Stream) error
	// MaxActiveBlocks reports occupancy: how many thread blocks of the
	// given size can be resident per multiprocessor.
	MaxActiveBlocks(blockSize uint32, sharedBytes uint32) (int, error)
}

// Stream represents an execution queue/stream.
type Stream interface {
	Synchronize() error
	Close() error
}

var (
	backendMu sync.RWMutex
	backend   Backend
)

// RegisterBackend registers a GPU backend. Passing nil clears the backend.
func RegisterBackend(b Backend) {
	backendMu.Lock()
	backend = b
	backendMu.Unlock()
}

// CurrentBackendInfo reports the currently registered backend, if any.
func CurrentBackendInfo() (BackendInfo, bool) {
	backendMu.RLock()
	b := backend
	backendMu.RUnlock()
	if b == nil {
		return BackendInfo{}, false
	}
	return b.Info(), true
}

// CurrentBackend returns the registered backend, or ErrNoBackend.
func CurrentBackend() (Backend, error) {
	backendMu.RLock()
	b := backend
	backendMu.RUnlock()
	if b == nil {
		return nil, ErrNoBackend
	}
	if !b.Available() {
		return nil, ErrBackendUnavailable
	}
	return b, nil
}
