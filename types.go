package rocfft

import (
	"github.com/samjwu/rocFFT/internal/fftypes"
	"github.com/samjwu/rocFFT/internal/rtc"
)

// Stage describes one node of a transform plan: the unit of kernel
// generation. The canonical definition is in internal/fftypes.
type Stage = fftypes.Stage

// Scheme identifies the kernel family serving a stage.
type Scheme = fftypes.Scheme

// Precision selects the floating-point width of a transform.
type Precision = fftypes.Precision

// ArrayType describes the memory layout of one side of a transform.
type ArrayType = fftypes.ArrayType

// CallbackType describes which user callback plumbing a kernel carries.
type CallbackType = fftypes.CallbackType

// LoadOps and StoreOps describe fused elementwise operations applied at
// global memory boundaries.
type (
	LoadOps  = fftypes.LoadOps
	StoreOps = fftypes.StoreOps
)

// ExecInfo carries per-execution device pointers and callbacks for a
// kernel launch.
type ExecInfo = rtc.ExecInfo

// Callbacks holds user load/store callback pointers for one execution.
type Callbacks = rtc.Callbacks

// Re-exported scheme constants, so callers can build stages without
// importing internal packages.
const (
	SchemeNone                       = fftypes.SchemeNone
	SchemeStockham                   = fftypes.SchemeStockham
	SchemeStockhamBlockCC            = fftypes.SchemeStockhamBlockCC
	SchemeStockhamBlockRC            = fftypes.SchemeStockhamBlockRC
	SchemeStockhamBlockCR            = fftypes.SchemeStockhamBlockCR
	SchemeTranspose                  = fftypes.SchemeTranspose
	SchemeTransposeXYZ               = fftypes.SchemeTransposeXYZ
	SchemeTransposeZXY               = fftypes.SchemeTransposeZXY
	SchemeCopyRealToComplex          = fftypes.SchemeCopyRealToComplex
	SchemeCopyComplexToHerm          = fftypes.SchemeCopyComplexToHerm
	SchemeCopyComplexToReal          = fftypes.SchemeCopyComplexToReal
	SchemeCopyHermToComplex          = fftypes.SchemeCopyHermToComplex
	SchemeRealToComplexEven          = fftypes.SchemeRealToComplexEven
	SchemeComplexToRealEven          = fftypes.SchemeComplexToRealEven
	SchemeRealToComplexEvenTranspose = fftypes.SchemeRealToComplexEvenTranspose
	SchemeTransposeComplexToRealEven = fftypes.SchemeTransposeComplexToRealEven
	SchemeBluesteinSingle            = fftypes.SchemeBluesteinSingle
	SchemeBluesteinMulti             = fftypes.SchemeBluesteinMulti
)

const (
	PrecisionSingle = fftypes.PrecisionSingle
	PrecisionDouble = fftypes.PrecisionDouble
	PrecisionHalf   = fftypes.PrecisionHalf
)

const (
	ArrayTypeComplexInterleaved   = fftypes.ArrayTypeComplexInterleaved
	ArrayTypeComplexPlanar        = fftypes.ArrayTypeComplexPlanar
	ArrayTypeReal                 = fftypes.ArrayTypeReal
	ArrayTypeHermitianInterleaved = fftypes.ArrayTypeHermitianInterleaved
	ArrayTypeHermitianPlanar      = fftypes.ArrayTypeHermitianPlanar
	ArrayTypeUnset                = fftypes.ArrayTypeUnset
)
