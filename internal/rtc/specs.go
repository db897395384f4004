package rtc

import "github.com/samjwu/rocFFT/internal/fftypes"

// launchBoundsR2CC2RKernel is the thread-group size used by the
// real/complex copy and even-length butterfly kernels.
const launchBoundsR2CC2RKernel = 64

// RealComplexSpecs describes one kernel of the real/hermitian copy
// family. Specs are immutable value data: two specs with identical
// fields yield identical names and identical source.
type RealComplexSpecs struct {
	Scheme       fftypes.Scheme
	Dim          int
	Precision    fftypes.Precision
	InArrayType  fftypes.ArrayType
	OutArrayType fftypes.ArrayType
	CallbackType fftypes.CallbackType
	LoadOps      fftypes.LoadOps
	StoreOps     fftypes.StoreOps
}

// RealComplexEvenSpecs describes one even-length post/pre-process
// butterfly kernel. NDiv4 marks real lengths divisible by four, which
// gain an analytic quarter-point path.
type RealComplexEvenSpecs struct {
	RealComplexSpecs
	NDiv4 bool
}

// RealComplexEvenTransposeSpecs describes the even-length butterfly
// fused with a tile transpose.
type RealComplexEvenTransposeSpecs struct {
	RealComplexSpecs
}

// TileX is the tile width for the fused butterfly-transpose. The
// read-side scheme uses wider tiles along the row direction.
func (s RealComplexEvenTransposeSpecs) TileX() int {
	if s.Scheme == fftypes.SchemeRealToComplexEvenTranspose {
		return 64
	}
	return 16
}

// TileY is the tile height for the fused butterfly-transpose.
func (s RealComplexEvenTransposeSpecs) TileY() int { return 16 }

// TransposeSpecs describes one tiled transpose kernel.
type TransposeSpecs struct {
	TileX        int
	TileY        int
	Dim          int
	Precision    fftypes.Precision
	InArrayType  fftypes.ArrayType
	OutArrayType fftypes.ArrayType
	CallbackType fftypes.CallbackType

	// Large twiddle multiply fused into the transpose.
	LargeTwdSteps     uint
	LargeTwdDirection int

	Diagonal    bool
	TileAligned bool

	LoadOps  fftypes.LoadOps
	StoreOps fftypes.StoreOps
}
