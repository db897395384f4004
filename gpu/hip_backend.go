//go:build hip

package gpu

// HIPBackend is a stub backend enabled with the "hip" build tag.
// It does not provide a working implementation yet.
type HIPBackend struct{}

func (b *HIPBackend) Info() BackendInfo {
	return BackendInfo{
		Name:        "hip",
		Version:     "stub",
		Description: "HIP backend stub (no implementation)",
	}
}

func (b *HIPBackend) Available() bool {
	return false
}

func (b *HIPBackend) Devices() ([]DeviceProperties, error) {
	return nil, ErrBackendUnavailable
}

func (b *HIPBackend) SetDevice(_ int) error {
	return ErrBackendUnavailable
}

func (b *HIPBackend) Compiler() Compiler {
	return nil
}

func (b *HIPBackend) LoadModule(_ []byte) (Module, error) {
	return nil, ErrBackendUnavailable
}

func (b *HIPBackend) NewStream() (Stream, error) {
	return nil, ErrBackendUnavailable
}

// RegisterHIPBackend registers the HIP backend stub.
func RegisterHIPBackend() {
	RegisterBackend(&HIPBackend{})
}
