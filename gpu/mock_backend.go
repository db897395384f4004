package gpu

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/pkg/errors"
)

// MockBackend is a CPU-backed GPU backend for development and tests.
// Its compiler produces a deterministic blob from the kernel name and a
// source digest, and its modules record launches instead of executing.
type MockBackend struct {
	mu      sync.Mutex
	devices []DeviceProperties
	current int

	// CompileErr, when set, is returned by every compile. Tests use it
	// to exercise failure paths.
	CompileErr error

	compileCount int
}

// DefaultMockProperties are the limits the mock device honors unless a
// test overrides them.
func DefaultMockProperties() DeviceProperties {
	return DeviceProperties{
		Name:               "MockGPU",
		Vendor:             "rocfft",
		Driver:             "mock",
		Arch:               "gfx000",
		MaxThreadsPerBlock: 1024,
		MaxBlockDim:        Dim3{X: 1024, Y: 1024, Z: 64},
		MaxGridDim:         Dim3{X: 1 << 31, Y: 65535, Z: 65535},
		SharedMemPerBlock:  64 * 1024,
		MultiprocessorMax:  64,
	}
}

// NewMockBackend returns a mock backend with a single fake device.
func NewMockBackend() *MockBackend {
	return &MockBackend{devices: []DeviceProperties{DefaultMockProperties()}}
}

// NewMockBackendWith returns a mock backend exposing the given devices.
func NewMockBackendWith(devices ...DeviceProperties) *MockBackend {
	return &MockBackend{devices: devices}
}

func (b *MockBackend) Info() BackendInfo {
	return BackendInfo{
		Name:        "mock",
		Version:     "0.1",
		Description: "CPU-backed mock GPU backend",
	}
}

func (b *MockBackend) Available() bool {
	return len(b.devices) > 0
}

func (b *MockBackend) Devices() ([]DeviceProperties, error) {
	return b.devices, nil
}

func (b *MockBackend) SetDevice(index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 || index >= len(b.devices) {
		return errors.Errorf("mock backend: device index %d out of range", index)
	}
	b.current = index
	return nil
}

// CurrentDevice reports the selected device's properties.
func (b *MockBackend) CurrentDevice() DeviceProperties {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.devices[b.current]
}

func (b *MockBackend) Compiler() Compiler {
	return &mockCompiler{backend: b}
}

func (b *MockBackend) LoadModule(code []byte) (Module, error) {
	if len(code) == 0 {
		return nil, ErrEmptyCode
	}
	// the mock "code object" carries the kernel name in front of the
	// source digest; anything shorter is corrupt
	sep := -1
	for i, c := range code {
		if c == '\n' {
			sep = i
			break
		}
	}
	if sep <= 0 {
		return nil, errors.New("mock backend: malformed code object")
	}
	return &mockModule{kernelName: string(code[:sep])}, nil
}

func (b *MockBackend) NewStream() (Stream, error) {
	return &mockStream{}, nil
}

// CompileCount reports how many real compiles the mock performed. The
// single-flight cache tests assert on it.
func (b *MockBackend) CompileCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.compileCount
}

// RegisterMockBackend registers the mock backend as the active backend
// and returns it for inspection.
func RegisterMockBackend() *MockBackend {
	b := NewMockBackend()
	RegisterBackend(b)
	return b
}

type mockCompiler struct {
	backend *MockBackend
}

// Compile produces a deterministic blob: kernel name, newline, then the
// hex digest of arch and source. Equal inputs yield equal code objects.
func (c *mockCompiler) Compile(kernelName, source, arch string) ([]byte, error) {
	c.backend.mu.Lock()
	err := c.backend.CompileErr
	c.backend.compileCount++
	c.backend.mu.Unlock()
	if err != nil {
		return nil, err
	}
	h := sha256.New()
	h.Write([]byte(arch))
	h.Write([]byte{0})
	h.Write([]byte(source))
	return []byte(kernelName + "\n" + hex.EncodeToString(h.Sum(nil))), nil
}

// LaunchRecord captures one mock kernel launch for test assertions.
type LaunchRecord struct {
	Name        string
	Grid        Dim3
	Block       Dim3
	SharedBytes uint32
	ArgBytes    []byte
}

type mockModule struct {
	mu         sync.Mutex
	kernelName string
	unloaded   bool
	launches   []LaunchRecord
}

func (m *mockModule) Function(name string) (Function, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unloaded {
		return nil, errors.New("mock backend: module unloaded")
	}
	if name != m.kernelName {
		return nil, errors.Errorf("mock backend: no function %q in module", name)
	}
	return &mockFunction{module: m, name: name}, nil
}

func (m *mockModule) Unload() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unloaded = true
	return nil
}

// Launches returns the launches recorded through this module.
func (m *mockModule) Launches() []LaunchRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LaunchRecord, len(m.launches))
	copy(out, m.launches)
	return out
}

type mockFunction struct {
	module *mockModule
	name   string
}

func (f *mockFunction) Launch(args *ArgBuffer, grid, block Dim3, sharedBytes uint32, _ Stream) error {
	f.module.mu.Lock()
	defer f.module.mu.Unlock()
	if f.module.unloaded {
		return errors.New("mock backend: launch on unloaded module")
	}
	rec := LaunchRecord{
		Name:        f.name,
		Grid:        grid,
		Block:       block,
		SharedBytes: sharedBytes,
	}
	if args != nil {
		rec.ArgBytes = append(rec.ArgBytes, args.Bytes()...)
	}
	f.module.launches = append(f.module.launches, rec)
	return nil
}

func (f *mockFunction) MaxActiveBlocks(blockSize uint32, sharedBytes uint32) (int, error) {
	if blockSize == 0 {
		return 0, errors.New("mock backend: zero block size")
	}
	// a stand-in occupancy model: resident threads capped at 2048 per
	// multiprocessor, halved once shared memory crosses half the limit
	blocks := 2048 / int(blockSize)
	if blocks == 0 {
		blocks = 1
	}
	if sharedBytes > 32*1024 {
		blocks = (blocks + 1) / 2
	}
	return blocks, nil
}

type mockStream struct{}

func (s *mockStream) Synchronize() error { return nil }
func (s *mockStream) Close() error       { return nil }
