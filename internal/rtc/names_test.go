package rtc

import (
	"strings"
	"testing"

	"github.com/samjwu/rocFFT/internal/fftypes"
)

// collectNames generates names for a broad grid of specs across all
// four families and records which spec produced each.
func collectNames(t *testing.T) map[string]string {
	t.Helper()

	names := make(map[string]string)
	add := func(name, desc string) {
		t.Helper()
		if prev, ok := names[name]; ok {
			t.Errorf("name collision: %q produced by both %s and %s", name, prev, desc)
			return
		}
		names[name] = desc
	}

	precisions := []fftypes.Precision{fftypes.PrecisionSingle, fftypes.PrecisionDouble, fftypes.PrecisionHalf}
	cbtypes := []fftypes.CallbackType{fftypes.CallbackNone, fftypes.CallbackUserLoadStore}
	scales := []float64{0, 2}

	copySchemes := []fftypes.Scheme{
		fftypes.SchemeCopyRealToComplex,
		fftypes.SchemeCopyComplexToHerm,
		fftypes.SchemeCopyComplexToReal,
		fftypes.SchemeCopyHermToComplex,
	}
	for _, scheme := range copySchemes {
		for dim := 1; dim <= 3; dim++ {
			for _, prec := range precisions {
				for _, cb := range cbtypes {
					for _, scale := range scales {
						specs := RealComplexSpecs{
							Scheme:       scheme,
							Dim:          dim,
							Precision:    prec,
							InArrayType:  fftypes.ArrayTypeComplexInterleaved,
							OutArrayType: fftypes.ArrayTypeComplexInterleaved,
							CallbackType: cb,
							StoreOps:     fftypes.StoreOps{ScaleFactor: scale},
						}
						name, err := RealComplexKernelName(specs)
						if err != nil {
							t.Fatalf("RealComplexKernelName(%+v): %v", specs, err)
						}
						add(name, "realcomplex "+scheme.String())
					}
				}
			}
		}
	}

	evenSchemes := []fftypes.Scheme{fftypes.SchemeRealToComplexEven, fftypes.SchemeComplexToRealEven}
	for _, scheme := range evenSchemes {
		for _, ndiv4 := range []bool{false, true} {
			for dim := 1; dim <= 3; dim++ {
				specs := RealComplexEvenSpecs{
					RealComplexSpecs: RealComplexSpecs{
						Scheme:       scheme,
						Dim:          dim,
						Precision:    fftypes.PrecisionSingle,
						InArrayType:  fftypes.ArrayTypeComplexInterleaved,
						OutArrayType: fftypes.ArrayTypeComplexInterleaved,
					},
					NDiv4: ndiv4,
				}
				name, err := RealComplexEvenKernelName(specs)
				if err != nil {
					t.Fatalf("RealComplexEvenKernelName(%+v): %v", specs, err)
				}
				add(name, "realcomplex_even "+scheme.String())
			}
		}
	}

	fusedSchemes := []fftypes.Scheme{
		fftypes.SchemeRealToComplexEvenTranspose,
		fftypes.SchemeTransposeComplexToRealEven,
	}
	for _, scheme := range fusedSchemes {
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
			t.Fatalf("RealComplexEvenTransposeKernelName(%+v): %v", specs, err)
		}
		add(name, "realcomplex_even_transpose "+scheme.String())
	}

	for _, twdSteps := range []uint{0, 2, 3} {
		for _, twdDir := range []int{-1, 1} {
			if twdSteps == 0 && twdDir == 1 {
				continue
			}
			for _, diagonal := range []bool{false, true} {
				for _, aligned := range []bool{false, true} {
					specs := TransposeSpecs{
						TileX:             64,
						TileY:             16,
						Dim:               2,
						Precision:         fftypes.PrecisionSingle,
						InArrayType:       fftypes.ArrayTypeComplexInterleaved,
						OutArrayType:      fftypes.ArrayTypeComplexInterleaved,
						LargeTwdSteps:     twdSteps,
						LargeTwdDirection: twdDir,
						Diagonal:          diagonal,
						TileAligned:       aligned,
					}
					add(TransposeKernelName(specs), "transpose")
				}
			}
		}
	}

	return names
}

func TestKernelNamesInjective(t *testing.T) {
	t.Parallel()

	names := collectNames(t)
	if len(names) == 0 {
		t.Fatal("no names generated")
	}
}

func TestKernelNamesDeterministic(t *testing.T) {
	t.Parallel()

	specs := RealComplexSpecs{
		Scheme:       fftypes.SchemeCopyHermToComplex,
		Dim:          2,
		Precision:    fftypes.PrecisionDouble,
		InArrayType:  fftypes.ArrayTypeHermitianInterleaved,
		OutArrayType: fftypes.ArrayTypeComplexPlanar,
		CallbackType: fftypes.CallbackUserLoadStore,
	}
	a, err := RealComplexKernelName(specs)
	if err != nil {
		t.Fatal(err)
	}
	b, err := RealComplexKernelName(specs)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("same specs produced %q and %q", a, b)
	}
}

func TestKernelNameMnemonics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		specs RealComplexSpecs
		want  []string
	}{
		{
			name: "r2c single interleaved",
			specs: RealComplexSpecs{
				Scheme:       fftypes.SchemeCopyRealToComplex,
				Dim:          1,
				Precision:    fftypes.PrecisionSingle,
				InArrayType:  fftypes.ArrayTypeReal,
				OutArrayType: fftypes.ArrayTypeComplexInterleaved,
			},
			want: []string{"r2c", "_dim1", "_sp", "_R", "_CI"},
		},
		{
			name: "herm2c double with callbacks",
			specs: RealComplexSpecs{
				Scheme:       fftypes.SchemeCopyHermToComplex,
				Dim:          3,
				Precision:    fftypes.PrecisionDouble,
				InArrayType:  fftypes.ArrayTypeHermitianInterleaved,
				OutArrayType: fftypes.ArrayTypeComplexInterleaved,
				CallbackType: fftypes.CallbackUserLoadStore,
			},
			want: []string{"herm2c", "_dim3", "_dp", "_CB"},
		},
		{
			name: "c2r scaled",
			specs: RealComplexSpecs{
				Scheme:       fftypes.SchemeCopyComplexToReal,
				Dim:          1,
				Precision:    fftypes.PrecisionHalf,
				InArrayType:  fftypes.ArrayTypeComplexInterleaved,
				OutArrayType: fftypes.ArrayTypeReal,
				StoreOps:     fftypes.StoreOps{ScaleFactor: 0.5},
			},
			want: []string{"c2r", "_half", "_scale"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := RealComplexKernelName(tt.specs)
			if err != nil {
				t.Fatal(err)
			}
			for _, frag := range tt.want {
				if !strings.Contains(got, frag) {
					t.Errorf("name %q missing %q", got, frag)
				}
			}
		})
	}
}

func TestTransposeKernelNameVariants(t *testing.T) {
	t.Parallel()

	base := TransposeSpecs{
		TileX:        64,
		TileY:        16,
		Dim:          2,
		Precision:    fftypes.PrecisionSingle,
		InArrayType:  fftypes.ArrayTypeComplexInterleaved,
		OutArrayType: fftypes.ArrayTypeComplexInterleaved,
	}

	plain := TransposeKernelName(base)
	if !strings.Contains(plain, "_tile64x16") {
		t.Errorf("name %q missing tile tag", plain)
	}
	if !strings.Contains(plain, "_dim2") {
		t.Errorf("name %q missing dim tag", plain)
	}

	twd := base
	twd.LargeTwdSteps = 3
	twd.LargeTwdDirection = -1
	if got := TransposeKernelName(twd); !strings.Contains(got, "_twd3step_fwd") {
		t.Errorf("name %q missing forward twiddle tag", got)
	}
	twd.LargeTwdDirection = 1
	if got := TransposeKernelName(twd); !strings.Contains(got, "_twd3step_back") {
		t.Errorf("name %q missing inverse twiddle tag", got)
	}

	diag := base
	diag.Diagonal = true
	diag.TileAligned = true
	got := TransposeKernelName(diag)
	if !strings.Contains(got, "_diag") || !strings.Contains(got, "_aligned") {
		t.Errorf("name %q missing diagonal/aligned tags", got)
	}
	if got == plain {
		t.Error("diagonal/aligned variants must rename the kernel")
	}
}
