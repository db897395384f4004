package rtc

import (
	"math"

	"github.com/pkg/errors"
	"github.com/samjwu/rocFFT/gpu"
	"github.com/samjwu/rocFFT/internal/fftypes"
)

// Callbacks holds the device-side user callback pointers passed to
// every generated kernel, in launch-ABI order.
type Callbacks struct {
	LoadFn       gpu.DevicePtr
	LoadData     gpu.DevicePtr
	LoadLDSBytes uint32
	StoreFn      gpu.DevicePtr
	StoreData    gpu.DevicePtr
}

// ExecInfo carries the per-execution device resources an args builder
// packs alongside the stage's geometry. Second buffer pointers are only
// consulted for planar layouts.
type ExecInfo struct {
	BufIn  [2]gpu.DevicePtr
	BufOut [2]gpu.DevicePtr

	// Twiddles is the device twiddle table for butterfly kernels, or the
	// large twiddle table for fused-twiddle transposes.
	Twiddles gpu.DevicePtr

	// Device-resident lengths/stride arrays for kernels that take them
	// indirectly.
	DevLengths   gpu.DevicePtr
	DevStrideIn  gpu.DevicePtr
	DevStrideOut gpu.DevicePtr

	Callbacks Callbacks

	Stream gpu.Stream
}

func appendCallbackArgs(kargs *gpu.ArgBuffer, cb Callbacks) {
	kargs.AppendPtr(cb.LoadFn)
	kargs.AppendPtr(cb.LoadData)
	kargs.AppendUint32(cb.LoadLDSBytes)
	kargs.AppendPtr(cb.StoreFn)
	kargs.AppendPtr(cb.StoreData)
}

// float16bits converts to IEEE binary16 for half-precision scale
// arguments. Round-to-nearest-even, matching device conversion.
func float16bits(f float64) uint16 {
	b := math.Float32bits(float32(f))
	sign := uint16(b>>16) & 0x8000
	exp := int32(b>>23&0xff) - 127 + 15
	mant := b & 0x7fffff
	switch {
	case exp >= 0x1f:
		return sign | 0x7c00
	case exp <= 0:
		return sign
	}
	half := sign | uint16(exp)<<10 | uint16(mant>>13)
	// round to nearest even on the truncated mantissa bits
	if mant&0x1fff > 0x1000 || (mant&0x1fff == 0x1000 && half&1 == 1) {
		half++
	}
	return half
}

// appendLoadStoreArgs packs arguments for any fused load/store
// elementwise ops, in the kernel's real precision.
func appendLoadStoreArgs(kargs *gpu.ArgBuffer, stage *fftypes.Stage) {
	if !stage.StoreOps.Enabled() {
		return
	}
	switch stage.Precision {
	case fftypes.PrecisionDouble:
		kargs.AppendFloat64(stage.StoreOps.ScaleFactor)
	case fftypes.PrecisionSingle:
		kargs.AppendFloat32(float32(stage.StoreOps.ScaleFactor))
	case fftypes.PrecisionHalf:
		kargs.AppendFloat16(float16bits(stage.StoreOps.ScaleFactor))
	}
}

// realComplexArgs packs launch arguments for the copy family, matching
// the generated kernel's parameter order.
func realComplexArgs(stage *fftypes.Stage, exec ExecInfo) (*gpu.ArgBuffer, error) {
	if stage.Dim() < 1 || stage.Dim() > 3 {
		return nil, errors.Errorf("realcomplex stage dim %d out of range", stage.Dim())
	}

	// explode lengths/strides out to pass to the kernel
	kernLengths := [3]uint{1, 1, 1}
	kernStrideIn := [4]uint{1, 1, 1, 1}
	kernStrideOut := [4]uint{1, 1, 1, 1}
	dim := stage.Dim()

	copy(kernLengths[:], stage.Lengths)
	copy(kernStrideIn[:], stage.InStride)
	kernStrideIn[dim] = stage.IDist
	copy(kernStrideOut[:], stage.OutStride)
	kernStrideOut[dim] = stage.ODist

	kargs := &gpu.ArgBuffer{}
	if stage.Scheme == fftypes.SchemeCopyHermToComplex {
		// dim 0 is the innermost dimension
		kernLengths[0] = stage.OutputLengths[0]
		hermitianSize := kernLengths[0]/2 + 1
		kargs.AppendUint32(uint32(hermitianSize))
	}
	kargs.AppendUint32(uint32(kernLengths[0]))
	kargs.AppendUint32(uint32(kernLengths[1]))
	kargs.AppendUint32(uint32(kernLengths[2]))
	kargs.AppendUint32(uint32(stage.Batch))
	for _, s := range kernStrideIn {
		kargs.AppendUint32(uint32(s))
	}
	for _, s := range kernStrideOut {
		kargs.AppendUint32(uint32(s))
	}

	kargs.AppendPtr(exec.BufIn[0])
	if stage.InArrayType.IsPlanar() {
		kargs.AppendPtr(exec.BufIn[1])
	}
	kargs.AppendPtr(exec.BufOut[0])
	if stage.OutArrayType.IsPlanar() {
		kargs.AppendPtr(exec.BufOut[1])
	}

	appendCallbackArgs(kargs, exec.Callbacks)
	appendLoadStoreArgs(kargs, stage)
	return kargs, nil
}

// realComplexEvenArgs packs launch arguments for the even-length
// butterfly family.
func realComplexEvenArgs(stage *fftypes.Stage, halfN uint, exec ExecInfo) (*gpu.ArgBuffer, error) {
	kargs := &gpu.ArgBuffer{}

	kargs.AppendUint32(uint32(halfN))
	if stage.Dim() > 1 {
		if len(stage.InStride) < 2 || len(stage.OutStride) < 2 {
			return nil, errors.New("even-length stage missing higher-dimension strides")
		}
		kargs.AppendUint32(uint32(stage.InStride[1]))
		kargs.AppendUint32(uint32(stage.OutStride[1]))
	}
	kargs.AppendPtr(exec.BufIn[0])
	if stage.InArrayType.IsPlanar() {
		kargs.AppendPtr(exec.BufIn[1])
	}
	kargs.AppendUint32(uint32(stage.IDist))
	kargs.AppendPtr(exec.BufOut[0])
	if stage.OutArrayType.IsPlanar() {
		kargs.AppendPtr(exec.BufOut[1])
	}
	kargs.AppendUint32(uint32(stage.ODist))
	kargs.AppendPtr(exec.Twiddles)

	appendCallbackArgs(kargs, exec.Callbacks)
	appendLoadStoreArgs(kargs, stage)
	return kargs, nil
}

// realComplexEvenTransposeArgs packs launch arguments for the fused
// butterfly + transpose family.
func realComplexEvenTransposeArgs(stage *fftypes.Stage, exec ExecInfo) (*gpu.ArgBuffer, error) {
	if exec.DevLengths == 0 || exec.DevStrideIn == 0 || exec.DevStrideOut == 0 {
		return nil, errors.New("even-transpose stage requires device length/stride arrays")
	}
	kargs := &gpu.ArgBuffer{}

	kargs.AppendUint64(uint64(stage.Dim()))
	kargs.AppendPtr(exec.BufIn[0])
	if stage.InArrayType.IsPlanar() {
		kargs.AppendPtr(exec.BufIn[1])
	}
	kargs.AppendUint64(uint64(stage.IDist))
	kargs.AppendPtr(exec.BufOut[0])
	if stage.OutArrayType.IsPlanar() {
		kargs.AppendPtr(exec.BufOut[1])
	}
	kargs.AppendUint64(uint64(stage.ODist))
	kargs.AppendPtr(exec.Twiddles)
	kargs.AppendPtr(exec.DevLengths)
	kargs.AppendPtr(exec.DevStrideIn)
	kargs.AppendPtr(exec.DevStrideOut)

	appendCallbackArgs(kargs, exec.Callbacks)
	appendLoadStoreArgs(kargs, stage)
	return kargs, nil
}

// transposeArgs packs launch arguments for the tiled transpose family.
func transposeArgs(stage *fftypes.Stage, exec ExecInfo) (*gpu.ArgBuffer, error) {
	if exec.DevLengths == 0 || exec.DevStrideIn == 0 || exec.DevStrideOut == 0 {
		return nil, errors.New("transpose stage requires device length/stride arrays")
	}
	kernLengths := [3]uint{1, 1, 1}
	kernStrideIn := [3]uint{1, 1, 1}
	kernStrideOut := [3]uint{1, 1, 1}
	copy(kernLengths[:], stage.Lengths)
	copy(kernStrideIn[:], stage.InStride)
	copy(kernStrideOut[:], stage.OutStride)

	kargs := &gpu.ArgBuffer{}
	kargs.AppendPtr(exec.BufIn[0])
	if stage.InArrayType.IsPlanar() {
		kargs.AppendPtr(exec.BufIn[1])
	}
	kargs.AppendPtr(exec.BufOut[0])
	if stage.OutArrayType.IsPlanar() {
		kargs.AppendPtr(exec.BufOut[1])
	}
	kargs.AppendPtr(exec.Twiddles)
	kargs.AppendUint32(uint32(stage.Dim()))
	kargs.AppendUint32(uint32(kernLengths[0]))
	kargs.AppendUint32(uint32(kernLengths[1]))
	kargs.AppendUint32(uint32(kernLengths[2]))
	kargs.AppendPtr(exec.DevLengths)
	kargs.AppendUint32(uint32(kernStrideIn[0]))
	kargs.AppendUint32(uint32(kernStrideIn[1]))
	kargs.AppendUint32(uint32(kernStrideIn[2]))
	kargs.AppendPtr(exec.DevStrideIn)
	kargs.AppendUint32(uint32(stage.IDist))
	kargs.AppendUint32(uint32(kernStrideOut[0]))
	kargs.AppendUint32(uint32(kernStrideOut[1]))
	kargs.AppendUint32(uint32(kernStrideOut[2]))
	kargs.AppendPtr(exec.DevStrideOut)
	kargs.AppendUint32(uint32(stage.ODist))

	appendCallbackArgs(kargs, exec.Callbacks)
	appendLoadStoreArgs(kargs, stage)
	return kargs, nil
}
