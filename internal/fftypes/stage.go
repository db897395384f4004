package fftypes

// Stage is the opaque description of one kernel-sized unit of work
// within a transform plan, as produced by the plan builder. The runtime
// compilation layer never alters a stage; it only decides which kernel
// family realizes it.
type Stage struct {
	Scheme    Scheme
	Precision Precision

	// Lengths holds the per-dimension transform extents, fastest
	// dimension first. Dim() is len(Lengths).
	Lengths []uint
	// OutputLengths holds the logical output extents where they differ
	// from Lengths (hermitian expansion).
	OutputLengths []uint
	Batch         uint

	InArrayType  ArrayType
	OutArrayType ArrayType

	// Strides per dimension, fastest dimension first.
	InStride  []uint
	OutStride []uint
	// Distance between consecutive batches.
	IDist uint
	ODist uint

	// Transpose-only parameters.
	LargeTwdSteps     uint
	LargeTwdDirection int
	Diagonal          bool
	TileAligned       bool

	LoadOps  LoadOps
	StoreOps StoreOps
}

// Dim returns the transform dimensionality of the stage.
func (s *Stage) Dim() int { return len(s.Lengths) }

// CallbackType resolves the callback configuration for this stage.
// Load/store callbacks only make sense on kernels that may touch global
// memory at the boundary of a transform, so the resolved type depends on
// the scheme: even-length real/complex post- and pre-processing kernels
// view real data as complex and use the r2c/c2r callback variants.
func (s *Stage) CallbackType(enabled bool) CallbackType {
	if !enabled {
		return CallbackNone
	}
	switch s.Scheme {
	case SchemeRealToComplexEven, SchemeRealToComplexEvenTranspose:
		return CallbackUserLoadStoreR2C
	case SchemeComplexToRealEven, SchemeTransposeComplexToRealEven:
		return CallbackUserLoadStoreC2R
	default:
		return CallbackUserLoadStore
	}
}

// ElemsTotal returns the total number of logical elements addressed by
// the stage across all dimensions and batches, with the innermost
// dimension overridden by innermost.
func (s *Stage) ElemsTotal(innermost uint) uint {
	elems := innermost * s.Batch
	for _, l := range s.Lengths[1:] {
		elems *= l
	}
	return elems
}
