package fftypes

import "testing"

func TestParseSchemeRoundTrip(t *testing.T) {
	t.Parallel()

	schemes := []Scheme{
		SchemeStockham,
		SchemeStockhamBlockCC,
		SchemeTranspose,
		SchemeTransposeXYZ,
		SchemeTransposeZXY,
		SchemeCopyRealToComplex,
		SchemeCopyComplexToHerm,
		SchemeCopyComplexToReal,
		SchemeCopyHermToComplex,
		SchemeRealToComplexEven,
		SchemeComplexToRealEven,
		SchemeRealToComplexEvenTranspose,
		SchemeTransposeComplexToRealEven,
		SchemeBluesteinSingle,
		SchemeBluesteinMulti,
	}
	for _, s := range schemes {
		got, err := ParseScheme(s.String())
		if err != nil {
			t.Errorf("ParseScheme(%q): %v", s.String(), err)
			continue
		}
		if got != s {
			t.Errorf("ParseScheme(%q) = %v, want %v", s.String(), got, s)
		}
	}

	if _, err := ParseScheme("butterfly_supreme"); err == nil {
		t.Error("ParseScheme accepted an unknown scheme")
	}
}

func TestParsePrecision(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Precision
	}{
		{"single", PrecisionSingle},
		{"double", PrecisionDouble},
		{"half", PrecisionHalf},
	}
	for _, tt := range tests {
		got, err := ParsePrecision(tt.in)
		if err != nil {
			t.Errorf("ParsePrecision(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParsePrecision(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParsePrecision("quad"); err == nil {
		t.Error("ParsePrecision accepted quad")
	}
}

func TestParseArrayType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want ArrayType
	}{
		{"complex_interleaved", ArrayTypeComplexInterleaved},
		{"complex_planar", ArrayTypeComplexPlanar},
		{"real", ArrayTypeReal},
		{"hermitian_interleaved", ArrayTypeHermitianInterleaved},
		{"hermitian_planar", ArrayTypeHermitianPlanar},
	}
	for _, tt := range tests {
		got, err := ParseArrayType(tt.in)
		if err != nil {
			t.Errorf("ParseArrayType(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseArrayType(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseArrayType("jagged"); err == nil {
		t.Error("ParseArrayType accepted jagged")
	}
}

func TestStageCallbackType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		scheme Scheme
		want   CallbackType
	}{
		{SchemeCopyComplexToHerm, CallbackUserLoadStore},
		{SchemeTranspose, CallbackUserLoadStore},
		{SchemeRealToComplexEven, CallbackUserLoadStoreR2C},
		{SchemeRealToComplexEvenTranspose, CallbackUserLoadStoreR2C},
		{SchemeComplexToRealEven, CallbackUserLoadStoreC2R},
		{SchemeTransposeComplexToRealEven, CallbackUserLoadStoreC2R},
	}
	for _, tt := range tests {
		stage := &Stage{Scheme: tt.scheme}
		if got := stage.CallbackType(true); got != tt.want {
			t.Errorf("CallbackType(%v, enabled) = %v, want %v", tt.scheme, got, tt.want)
		}
		if got := stage.CallbackType(false); got != CallbackNone {
			t.Errorf("CallbackType(%v, disabled) = %v, want CallbackNone", tt.scheme, got)
		}
	}
}

func TestStageElemsTotal(t *testing.T) {
	t.Parallel()

	stage := &Stage{Lengths: []uint{100, 8, 4}, Batch: 3}
	if got := stage.ElemsTotal(100); got != 100*8*4*3 {
		t.Errorf("ElemsTotal(100) = %d, want %d", got, 100*8*4*3)
	}
	// The innermost override replaces Lengths[0], as a hermitian side
	// with N/2+1 elements does.
	if got := stage.ElemsTotal(51); got != 51*8*4*3 {
		t.Errorf("ElemsTotal(51) = %d, want %d", got, 51*8*4*3)
	}

	one := &Stage{Lengths: []uint{64}, Batch: 1}
	if got := one.ElemsTotal(64); got != 64 {
		t.Errorf("ElemsTotal = %d, want 64", got)
	}
}
