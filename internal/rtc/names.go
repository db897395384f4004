// Package rtc implements the runtime kernel taxonomy: per-family
// descriptor specs, deterministic kernel name generation, source
// generation on top of the IR, the family dispatch chain, and
// launch-argument builders.
package rtc

import (
	"fmt"

	"github.com/samjwu/rocFFT/internal/fftypes"
)

// Kernel names concatenate, in fixed order: scheme mnemonic, geometry
// or dimension tags, precision tag, input/output array-type tags, a
// load/store-operation suffix, and a callback-type tag. The name is
// injective over every spec field that affects generated source, so
// name-equality is content-equality within one generator version.

func arrayTypeName(t fftypes.ArrayType) string {
	// hermitian generates the same code as complex, so the two layouts
	// share name tags
	switch t {
	case fftypes.ArrayTypeComplexInterleaved, fftypes.ArrayTypeHermitianInterleaved:
		return "_CI"
	case fftypes.ArrayTypeComplexPlanar, fftypes.ArrayTypeHermitianPlanar:
		return "_CP"
	case fftypes.ArrayTypeReal:
		return "_R"
	default:
		return "_UN"
	}
}

func precisionName(p fftypes.Precision) string {
	switch p {
	case fftypes.PrecisionSingle:
		return "_sp"
	case fftypes.PrecisionDouble:
		return "_dp"
	case fftypes.PrecisionHalf:
		return "_half"
	default:
		return "_unknown"
	}
}

func cbtypeName(t fftypes.CallbackType) string {
	switch t {
	case fftypes.CallbackNone:
		return ""
	case fftypes.CallbackUserLoadStore:
		return "_CB"
	case fftypes.CallbackUserLoadStoreR2C:
		return "_CBr2c"
	case fftypes.CallbackUserLoadStoreC2R:
		return "_CBc2r"
	default:
		return ""
	}
}

func loadStoreSuffix(load fftypes.LoadOps, store fftypes.StoreOps) string {
	suffix := ""
	if load.Enabled() {
		suffix += "_loadop"
	}
	if store.Enabled() {
		suffix += "_scale"
	}
	return suffix
}

func precisionTypeDecl(p fftypes.Precision, isComplex bool) string {
	scalar := ""
	switch p {
	case fftypes.PrecisionSingle:
		scalar = "float"
	case fftypes.PrecisionDouble:
		scalar = "double"
	case fftypes.PrecisionHalf:
		scalar = "_Float16"
	}
	if isComplex {
		return "typedef rocfft_complex<" + scalar + "> scalar_type;\n"
	}
	return "typedef " + scalar + " scalar_type;\n"
}

func cbtypeDecl(t fftypes.CallbackType) string {
	name := ""
	switch t {
	case fftypes.CallbackNone:
		name = "NONE"
	case fftypes.CallbackUserLoadStore:
		name = "USER_LOAD_STORE"
	case fftypes.CallbackUserLoadStoreR2C:
		name = "USER_LOAD_STORE_R2C"
	case fftypes.CallbackUserLoadStoreC2R:
		name = "USER_LOAD_STORE_C2R"
	}
	return "static const CallbackType cbtype = CallbackType::" + name + ";\n"
}

func dimDecl(dim int) string {
	return fmt.Sprintf("static const unsigned int dim = %d;\n", dim)
}
