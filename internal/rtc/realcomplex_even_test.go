package rtc

import (
	"strings"
	"testing"

	"github.com/samjwu/rocFFT/internal/fftypes"
)

func evenSpecs(scheme fftypes.Scheme, ndiv4 bool) RealComplexEvenSpecs {
	return RealComplexEvenSpecs{
		RealComplexSpecs: RealComplexSpecs{
			Scheme:       scheme,
			Dim:          1,
			Precision:    fftypes.PrecisionSingle,
			InArrayType:  fftypes.ArrayTypeComplexInterleaved,
			OutArrayType: fftypes.ArrayTypeComplexInterleaved,
		},
		NDiv4: ndiv4,
	}
}

func renderEven(t *testing.T, specs RealComplexEvenSpecs) string {
	t.Helper()

	name, err := RealComplexEvenKernelName(specs)
	if err != nil {
		t.Fatal(err)
	}
	src, err := RealComplexEvenSource(name, specs)
	if err != nil {
		t.Fatal(err)
	}
	return src
}

// The post-process kernel runs after the complex FFT, so it is the last
// to write global memory and only its stores are routed through the
// callback helper; the pre-process kernel is the mirror image.
func TestRealComplexEvenCallbackRouting(t *testing.T) {
	t.Parallel()

	post := renderEven(t, evenSpecs(fftypes.SchemeRealToComplexEven, false))
	if strings.Contains(post, "load_cb(") {
		t.Error("post-process kernel must load directly")
	}
	if !strings.Contains(post, "store_cb(") {
		t.Error("post-process kernel must store through the callback helper")
	}

	pre := renderEven(t, evenSpecs(fftypes.SchemeComplexToRealEven, false))
	if !strings.Contains(pre, "load_cb(") {
		t.Error("pre-process kernel must load through the callback helper")
	}
	if strings.Contains(pre, "store_cb(") {
		t.Error("pre-process kernel must store directly")
	}
}

func TestRealComplexEvenQuarterPoint(t *testing.T) {
	t.Parallel()

	plain := renderEven(t, evenSpecs(fftypes.SchemeRealToComplexEven, false))
	ndiv4 := renderEven(t, evenSpecs(fftypes.SchemeRealToComplexEven, true))

	if plain == ndiv4 {
		t.Error("Ndiv4 variant must generate a distinct quarter-point path")
	}
	if !strings.Contains(ndiv4, "quarter_N") {
		t.Error("Ndiv4 variant missing quarter-point block")
	}
}

func TestRealComplexEvenHigherDimArgs(t *testing.T) {
	t.Parallel()

	specs := evenSpecs(fftypes.SchemeRealToComplexEven, false)
	oneD := renderEven(t, specs)
	if strings.Contains(oneD, "idist1D") {
		t.Error("1D kernel must not take per-row distances")
	}

	specs.Dim = 2
	twoD := renderEven(t, specs)
	if !strings.Contains(twoD, "idist1D") || !strings.Contains(twoD, "odist1D") {
		t.Error("2D kernel missing per-row distance arguments")
	}
}

func TestRealComplexEvenRejectsWrongScheme(t *testing.T) {
	t.Parallel()

	bad := evenSpecs(fftypes.SchemeCopyRealToComplex, false)
	if _, err := RealComplexEvenKernelName(bad); err == nil {
		t.Error("expected error for copy scheme in even family")
	}
}

func TestRealComplexEvenTransposeSource(t *testing.T) {
	t.Parallel()

	for _, scheme := range []fftypes.Scheme{
		fftypes.SchemeRealToComplexEvenTranspose,
		fftypes.SchemeTransposeComplexToRealEven,
	} {
		scheme := scheme
		t.Run(scheme.String(), func(t *testing.T) {
			t.Parallel()

			specs := RealComplexEvenTransposeSpecs{
				RealComplexSpecs: RealComplexSpecs{
					Scheme:       scheme,
					Dim:          2,
					Precision:    fftypes.PrecisionSingle,
					InArrayType:  fftypes.ArrayTypeComplexInterleaved,
					OutArrayType: fftypes.ArrayTypeComplexInterleaved,
				},
			}
			name, err := RealComplexEvenTransposeKernelName(specs)
			if err != nil {
				t.Fatal(err)
			}
			src, err := RealComplexEvenTransposeSource(name, specs)
			if err != nil {
				t.Fatal(err)
			}

			// fused kernels stage both tile halves through shared memory
			if !strings.Contains(src, "__shared__") {
				t.Error("fused kernel missing shared tile storage")
			}
			if !strings.Contains(src, "__syncthreads()") {
				t.Error("fused kernel missing tile barrier")
			}
			if !strings.Contains(src, "load_cb(") || !strings.Contains(src, "store_cb(") {
				t.Error("fused kernel must route boundary accesses through helpers")
			}
		})
	}
}

func TestRealComplexEvenTransposeTileDependsOnDirection(t *testing.T) {
	t.Parallel()

	r2c := RealComplexEvenTransposeSpecs{RealComplexSpecs: RealComplexSpecs{Scheme: fftypes.SchemeRealToComplexEvenTranspose}}
	c2r := RealComplexEvenTransposeSpecs{RealComplexSpecs: RealComplexSpecs{Scheme: fftypes.SchemeTransposeComplexToRealEven}}
	if r2c.TileX() != 64 || r2c.TileY() != 16 {
		t.Errorf("r2c tile = %dx%d, want 64x16", r2c.TileX(), r2c.TileY())
	}
	if c2r.TileX() != 16 || c2r.TileY() != 16 {
		t.Errorf("c2r tile = %dx%d, want 16x16", c2r.TileX(), c2r.TileY())
	}
}
