package fftypes

import "github.com/pkg/errors"

var schemeNames = map[string]Scheme{
	"none":                      SchemeNone,
	"stockham":                  SchemeStockham,
	"stockham_block_cc":         SchemeStockhamBlockCC,
	"stockham_block_rc":         SchemeStockhamBlockRC,
	"stockham_block_cr":         SchemeStockhamBlockCR,
	"transpose":                 SchemeTranspose,
	"transpose_xy_z":            SchemeTransposeXYZ,
	"transpose_z_xy":            SchemeTransposeZXY,
	"copy_r_to_cmplx":           SchemeCopyRealToComplex,
	"copy_cmplx_to_herm":        SchemeCopyComplexToHerm,
	"copy_cmplx_to_r":           SchemeCopyComplexToReal,
	"copy_herm_to_cmplx":        SchemeCopyHermToComplex,
	"r_to_cmplx_even":           SchemeRealToComplexEven,
	"cmplx_to_r_even":           SchemeComplexToRealEven,
	"r_to_cmplx_even_transpose": SchemeRealToComplexEvenTranspose,
	"transpose_cmplx_to_r_even": SchemeTransposeComplexToRealEven,
	"bluestein_single":          SchemeBluesteinSingle,
	"bluestein_multi":           SchemeBluesteinMulti,
}

// ParseScheme is the inverse of Scheme.String.
func ParseScheme(name string) (Scheme, error) {
	s, ok := schemeNames[name]
	if !ok {
		return SchemeNone, errors.Errorf("unknown scheme %q", name)
	}
	return s, nil
}

// ParsePrecision is the inverse of Precision.String.
func ParsePrecision(name string) (Precision, error) {
	switch name {
	case "single":
		return PrecisionSingle, nil
	case "double":
		return PrecisionDouble, nil
	case "half":
		return PrecisionHalf, nil
	default:
		return PrecisionSingle, errors.Errorf("unknown precision %q", name)
	}
}

// ParseArrayType is the inverse of ArrayType.String.
func ParseArrayType(name string) (ArrayType, error) {
	switch name {
	case "complex_interleaved":
		return ArrayTypeComplexInterleaved, nil
	case "complex_planar":
		return ArrayTypeComplexPlanar, nil
	case "real":
		return ArrayTypeReal, nil
	case "hermitian_interleaved":
		return ArrayTypeHermitianInterleaved, nil
	case "hermitian_planar":
		return ArrayTypeHermitianPlanar, nil
	case "unset":
		return ArrayTypeUnset, nil
	default:
		return ArrayTypeUnset, errors.Errorf("unknown array type %q", name)
	}
}
