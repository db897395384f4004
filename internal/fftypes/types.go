// Package fftypes holds the value types shared between the kernel
// generators, the dispatch chain, and the launch layer: transform schemes,
// precisions, array layouts, and the stage descriptor handed over by the
// plan builder.
package fftypes

import "fmt"

// Scheme identifies the exact semantic variant a kernel family must
// generate for one stage of a transform plan.
type Scheme int

const (
	SchemeNone Scheme = iota

	// General multi-stage FFT kernels. These are served by precompiled
	// kernels rather than runtime generation.
	SchemeStockham
	SchemeStockhamBlockCC
	SchemeStockhamBlockRC
	SchemeStockhamBlockCR

	// Plain tiled transpose variants.
	SchemeTranspose
	SchemeTransposeXYZ
	SchemeTransposeZXY

	// Real/complex copy family.
	SchemeCopyRealToComplex
	SchemeCopyComplexToHerm
	SchemeCopyComplexToReal
	SchemeCopyHermToComplex

	// Even-length real FFT post/pre-processing.
	SchemeRealToComplexEven
	SchemeComplexToRealEven

	// Even-length post/pre-processing fused with transpose.
	SchemeRealToComplexEvenTranspose
	SchemeTransposeComplexToRealEven

	// Bluestein (arbitrary-length) kernels, single and multi variants.
	SchemeBluesteinSingle
	SchemeBluesteinMulti
)

func (s Scheme) String() string {
	switch s {
	case SchemeNone:
		return "none"
	case SchemeStockham:
		return "stockham"
	case SchemeStockhamBlockCC:
		return "stockham_block_cc"
	case SchemeStockhamBlockRC:
		return "stockham_block_rc"
	case SchemeStockhamBlockCR:
		return "stockham_block_cr"
	case SchemeTranspose:
		return "transpose"
	case SchemeTransposeXYZ:
		return "transpose_xy_z"
	case SchemeTransposeZXY:
		return "transpose_z_xy"
	case SchemeCopyRealToComplex:
		return "copy_r_to_cmplx"
	case SchemeCopyComplexToHerm:
		return "copy_cmplx_to_herm"
	case SchemeCopyComplexToReal:
		return "copy_cmplx_to_r"
	case SchemeCopyHermToComplex:
		return "copy_herm_to_cmplx"
	case SchemeRealToComplexEven:
		return "r_to_cmplx_even"
	case SchemeComplexToRealEven:
		return "cmplx_to_r_even"
	case SchemeRealToComplexEvenTranspose:
		return "r_to_cmplx_even_transpose"
	case SchemeTransposeComplexToRealEven:
		return "transpose_cmplx_to_r_even"
	case SchemeBluesteinSingle:
		return "bluestein_single"
	case SchemeBluesteinMulti:
		return "bluestein_multi"
	default:
		return fmt.Sprintf("scheme(%d)", int(s))
	}
}

// Precision selects the scalar width of the generated kernel.
type Precision int

const (
	PrecisionSingle Precision = iota
	PrecisionDouble
	PrecisionHalf
)

func (p Precision) String() string {
	switch p {
	case PrecisionSingle:
		return "single"
	case PrecisionDouble:
		return "double"
	case PrecisionHalf:
		return "half"
	default:
		return fmt.Sprintf("precision(%d)", int(p))
	}
}

// ArrayType describes the memory layout of one side of a transform.
type ArrayType int

const (
	ArrayTypeComplexInterleaved ArrayType = iota
	ArrayTypeComplexPlanar
	ArrayTypeReal
	ArrayTypeHermitianInterleaved
	ArrayTypeHermitianPlanar
	ArrayTypeUnset
)

// IsPlanar reports whether the layout stores real and imaginary
// components in separate arrays.
func (a ArrayType) IsPlanar() bool {
	return a == ArrayTypeComplexPlanar || a == ArrayTypeHermitianPlanar
}

// IsComplex reports whether elements of the layout are complex values.
func (a ArrayType) IsComplex() bool {
	return a != ArrayTypeReal && a != ArrayTypeUnset
}

func (a ArrayType) String() string {
	switch a {
	case ArrayTypeComplexInterleaved:
		return "complex_interleaved"
	case ArrayTypeComplexPlanar:
		return "complex_planar"
	case ArrayTypeReal:
		return "real"
	case ArrayTypeHermitianInterleaved:
		return "hermitian_interleaved"
	case ArrayTypeHermitianPlanar:
		return "hermitian_planar"
	default:
		return "unset"
	}
}

// CallbackType describes which user callback plumbing a kernel carries.
type CallbackType int

const (
	// CallbackNone means loads and stores access global memory directly.
	CallbackNone CallbackType = iota
	// CallbackUserLoadStore routes element loads/stores through
	// user-supplied callback functions.
	CallbackUserLoadStore
	// CallbackUserLoadStoreR2C is the load/store callback variant for
	// even-length real-to-complex transforms where real data is viewed
	// as complex.
	CallbackUserLoadStoreR2C
	// CallbackUserLoadStoreC2R is the complex-to-real counterpart.
	CallbackUserLoadStoreC2R
)

// LoadOps describes fused elementwise operations applied when elements
// are loaded from global memory.
type LoadOps struct{}

// Enabled reports whether any fused load operation is requested.
func (LoadOps) Enabled() bool { return false }

// StoreOps describes fused elementwise operations applied when elements
// are stored to global memory.
type StoreOps struct {
	// ScaleFactor multiplies every stored element when non-zero and not 1.
	ScaleFactor float64
}

// Enabled reports whether any fused store operation is requested.
func (s StoreOps) Enabled() bool {
	return s.ScaleFactor != 0 && s.ScaleFactor != 1
}
