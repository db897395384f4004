package gpu

// DevicePtr is a device memory address. The zero value is the null
// device pointer.
type DevicePtr uint64

// Dim3 is a three-dimensional launch extent for grids and thread
// blocks. Unset components should be 1, not 0.
type Dim3 struct {
	X, Y, Z uint32
}

// Total is the product of the three extents.
func (d Dim3) Total() uint64 {
	return uint64(d.X) * uint64(d.Y) * uint64(d.Z)
}

// DeviceProperties describes a GPU device and the launch limits the
// kernel handle validates against before any driver call.
type DeviceProperties struct {
	Name   string
	Vendor string
	Driver string
	// Arch is the device architecture string embedded in compiled
	// kernel identities, e.g. "gfx90a".
	Arch     string
	MemoryMB int

	MaxThreadsPerBlock uint32
	MaxBlockDim        Dim3
	MaxGridDim         Dim3
	SharedMemPerBlock  uint32
	MultiprocessorMax  uint32
}

// BackendInfo describes a backend implementation.
type BackendInfo struct {
	Name        string
	Version     string
	Description string
}
