//go:build cuda

package gpu

// CUDABackend is a stub backend enabled with the "cuda" build tag.
// It does not provide a working implementation yet.
type CUDABackend struct{}

func (b *CUDABackend) Info() BackendInfo {
	return BackendInfo{
		Name:        "cuda",
		Version:     "stub",
		Description: "CUDA backend stub (no implementation)",
	}
}

func (b *CUDABackend) Available() bool {
	return false
}

func (b *CUDABackend) Devices() ([]DeviceProperties, error) {
	return nil, ErrBackendUnavailable
}

func (b *CUDABackend) SetDevice(_ int) error {
	return ErrBackendUnavailable
}

func (b *CUDABackend) Compiler() Compiler {
	return nil
}

func (b *CUDABackend) LoadModule(_ []byte) (Module, error) {
	return nil, ErrBackendUnavailable
}

func (b *CUDABackend) NewStream() (Stream, error) {
	return nil, ErrBackendUnavailable
}

// RegisterCUDABackend registers the CUDA backend stub.
func RegisterCUDABackend() {
	RegisterBackend(&CUDABackend{})
}
