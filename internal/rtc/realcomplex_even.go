package rtc

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/samjwu/rocFFT/internal/fftypes"
	gen "github.com/samjwu/rocFFT/internal/generator"
)

// RealComplexEvenKernelName generates the kernel name for the
// even-length post/pre-process butterfly family.
func RealComplexEvenKernelName(specs RealComplexEvenSpecs) (string, error) {
	name := ""
	switch specs.Scheme {
	case fftypes.SchemeRealToComplexEven:
		name = "r2c_even_post"
	case fftypes.SchemeComplexToRealEven:
		name = "c2r_even_pre"
	default:
		return "", errors.Errorf("invalid realcomplex even rtc scheme %s", specs.Scheme)
	}

	if specs.NDiv4 {
		name += "_Ndiv4"
	}
	name += fmt.Sprintf("_dim%d", specs.Dim)
	name += precisionName(specs.Precision)
	name += arrayTypeName(specs.InArrayType)
	name += arrayTypeName(specs.OutArrayType)
	name += loadStoreSuffix(specs.LoadOps, specs.StoreOps)
	name += cbtypeName(specs.CallbackType)
	return name, nil
}

// RealComplexEvenSource generates source for one even-length butterfly
// kernel. Each thread handles the conjugate-symmetric pair
// (p, half_N - p); index 0 and the quarter point (when N is divisible
// by 4) are handled outside the general butterfly.
func RealComplexEvenSource(name string, specs RealComplexEvenSpecs) (string, error) {
	isPost := false
	switch specs.Scheme {
	case fftypes.SchemeRealToComplexEven:
		isPost = true
	case fftypes.SchemeComplexToRealEven:
	default:
		return "", errors.Errorf("invalid realcomplex even rtc scheme %s", specs.Scheme)
	}

	src := complexHeader + commonHeader + callbackHeader
	src += precisionTypeDecl(specs.Precision, true)
	src += cbtypeDecl(specs.CallbackType)
	src += dimDecl(specs.Dim)
	if specs.NDiv4 {
		src += "static const bool Ndiv4 = true;\n"
	} else {
		src += "static const bool Ndiv4 = false;\n"
	}
	src += "// Each thread handles 2 points.\n"
	src += "// When N is divisible by 4, one value is handled separately; this is controlled by Ndiv4.\n"

	halfN := gen.Variable{Name: "half_N", Type: "const unsigned int"}
	idist1D := gen.Variable{Name: "idist1D", Type: "const unsigned int"}
	odist1D := gen.Variable{Name: "odist1D", Type: "const unsigned int"}
	input := gen.Variable{Name: "input", Type: "scalar_type", Pointer: true, Restrict: true}
	idist := gen.Variable{Name: "idist", Type: "const unsigned int"}
	output := gen.Variable{Name: "output", Type: "scalar_type", Pointer: true, Restrict: true}
	odist := gen.Variable{Name: "odist", Type: "const unsigned int"}
	twiddles := gen.Variable{Name: "twiddles", Type: "const scalar_type", Pointer: true, Restrict: true}

	f := gen.Function{
		Name:         name,
		Qualifier:    `extern "C" __global__`,
		LaunchBounds: launchBoundsR2CC2RKernel,
	}
	f.AppendArg(halfN)
	if specs.Dim > 1 {
		f.AppendArg(idist1D)
		f.AppendArg(odist1D)
	}
	f.AppendArg(input)
	f.AppendArg(idist)
	f.AppendArg(output)
	f.AppendArg(odist)
	f.AppendArg(twiddles)
	for _, a := range callbackArgs() {
		f.AppendArg(a)
	}

	f.Body.Add(gen.Comment{
		"blockIdx.y gives the multi-dimensional offset",
		"blockIdx.z gives the batch offset",
	})

	idxP := gen.Variable{Name: "idx_p", Type: "const auto"}
	idxQ := gen.Variable{Name: "idx_q", Type: "const auto"}
	f.Body.Add(gen.Declaration{Var: idxP, Init: gen.Literal("blockIdx.x * blockDim.x + threadIdx.x")})
	f.Body.Add(gen.Declaration{Var: idxQ, Init: gen.Sub(halfN, idxP)})

	quarterN := gen.Variable{Name: "quarter_N", Type: "const auto"}
	f.Body.Add(gen.Declaration{Var: quarterN, Init: gen.Div(gen.Paren{E: gen.Add(halfN, gen.Lit(1))}, gen.Lit(2))})

	guard := gen.If{Cond: gen.Lt(idxP, quarterN)}

	inputOffset := gen.Variable{Name: "input_offset", Type: "auto"}
	outputOffset := gen.Variable{Name: "output_offset", Type: "auto"}
	guard.Then.Add(gen.Comment{"blockIdx.z gives the batch offset"})
	guard.Then.Add(gen.Declaration{Var: inputOffset, Init: gen.Mul(gen.Literal("blockIdx.z"), idist)})
	guard.Then.Add(gen.Declaration{Var: outputOffset, Init: gen.Mul(gen.Literal("blockIdx.z"), odist)})

	if specs.Dim > 1 {
		guard.Then.Add(gen.Comment{"blockIdx.y gives the multi-dimensional offset, stride is [i/o]dist1D."})
		guard.Then.Add(gen.AddAssign(inputOffset, gen.Mul(gen.Literal("blockIdx.y"), idist1D)))
		guard.Then.Add(gen.AddAssign(outputOffset, gen.Mul(gen.Literal("blockIdx.y"), odist1D)))
	}

	if isPost {
		guard.Then.Add(gen.Comment{
			"post process can't be the first kernel, so don't bother",
			"going through the load cb to read global memory",
		})
	} else {
		guard.Then.Add(gen.Comment{
			"pre process runs at the beginning of a C2R transform, so it is",
			"never the last kernel to write to global memory.  don't bother",
			"going through the store callback to write global memory.",
		})
	}
	guard.Then.Add(callbackLoadDecl("scalar_type", specs.CallbackType))
	guard.Then.Add(callbackStoreDecl("scalar_type", specs.CallbackType, specs.StoreOps.Enabled()))

	outval := gen.Variable{Name: "outval", Type: "scalar_type"}
	guard.Then.Add(gen.Declaration{Var: outval})

	// p and q receive values from callback loads, which must sit in
	// plain assignments for the planar rewrite, so they are not const
	p := gen.Variable{Name: "p", Type: "scalar_type"}
	q := gen.Variable{Name: "q", Type: "scalar_type"}
	u := gen.Variable{Name: "u", Type: "const scalar_type"}
	v := gen.Variable{Name: "v", Type: "const scalar_type"}
	twdP := gen.Variable{Name: "twd_p", Type: "const scalar_type"}

	ifZero := gen.If{Cond: gen.Eq(idxP, gen.Lit(0))}
	if isPost {
		ifZero.Then.Add(gen.Assign{Dst: outval.X(), Src: gen.Sub(input.At(gen.Add(inputOffset, gen.Lit(0))).X(), input.At(gen.Add(inputOffset, gen.Lit(0))).Y())})
		ifZero.Then.Add(gen.Assign{Dst: outval.Y(), Src: gen.Lit(0)})
		ifZero.Then.Add(gen.StoreGlobal{Ptr: output, Idx: gen.Add(outputOffset, halfN), Val: outval})

		ifZero.Then.Add(gen.Assign{Dst: outval.X(), Src: gen.Add(input.At(gen.Add(inputOffset, gen.Lit(0))).X(), input.At(gen.Add(inputOffset, gen.Lit(0))).Y())})
		ifZero.Then.Add(gen.Assign{Dst: outval.Y(), Src: gen.Lit(0)})
		ifZero.Then.Add(gen.StoreGlobal{Ptr: output, Idx: gen.Add(outputOffset, gen.Lit(0)), Val: outval})
	} else {
		ifZero.Then.Add(gen.Declaration{Var: p})
		ifZero.Then.Add(gen.Assign{Dst: p, Src: gen.LoadGlobal{Ptr: input, Idx: gen.Add(inputOffset, idxP)}})
		ifZero.Then.Add(gen.Declaration{Var: q})
		ifZero.Then.Add(gen.Assign{Dst: q, Src: gen.LoadGlobal{Ptr: input, Idx: gen.Add(inputOffset, idxQ)}})
		ifZero.Then.Add(gen.Assign{Dst: output.At(gen.Add(outputOffset, idxP)).X(), Src: gen.Add(p.X(), q.X())})
		ifZero.Then.Add(gen.Assign{Dst: output.At(gen.Add(outputOffset, idxP)).Y(), Src: gen.Sub(p.X(), q.X())})
	}

	ifNdiv4 := gen.If{Cond: gen.Literal("Ndiv4")}
	if isPost {
		ifNdiv4.Then.Add(gen.Assign{Dst: outval.X(), Src: input.At(gen.Add(inputOffset, quarterN)).X()})
		ifNdiv4.Then.Add(gen.Assign{Dst: outval.Y(), Src: gen.Neg(input.At(gen.Add(inputOffset, quarterN)).Y())})
		ifNdiv4.Then.Add(gen.StoreGlobal{Ptr: output, Idx: gen.Add(outputOffset, quarterN), Val: outval})
	} else {
		quarterElem := gen.Variable{Name: "quarter_elem", Type: "scalar_type"}
		ifNdiv4.Then.Add(gen.Declaration{Var: quarterElem})
		ifNdiv4.Then.Add(gen.Assign{Dst: quarterElem, Src: gen.LoadGlobal{Ptr: input, Idx: gen.Add(inputOffset, quarterN)}})
		ifNdiv4.Then.Add(gen.Assign{Dst: output.At(gen.Add(outputOffset, quarterN)).X(), Src: gen.Mul(gen.Literal("2.0"), quarterElem.X())})
		ifNdiv4.Then.Add(gen.Assign{Dst: output.At(gen.Add(outputOffset, quarterN)).Y(), Src: gen.Mul(gen.Literal("-2.0"), quarterElem.Y())})
	}
	ifZero.Then.Add(ifNdiv4)

	if isPost {
		ifZero.Else.Add(gen.Declaration{Var: p, Init: input.At(gen.Add(inputOffset, idxP))})
		ifZero.Else.Add(gen.Declaration{Var: q, Init: input.At(gen.Add(inputOffset, idxQ))})
		ifZero.Else.Add(gen.Declaration{Var: u, Init: gen.Mul(gen.Literal("0.5"), gen.Paren{E: gen.Add(p, q)})})
		ifZero.Else.Add(gen.Declaration{Var: v, Init: gen.Mul(gen.Literal("0.5"), gen.Paren{E: gen.Sub(p, q)})})

		ifZero.Else.Add(gen.Declaration{Var: twdP, Init: twiddles.At(idxP)})
		ifZero.Else.Add(gen.Comment{"NB: twd_q = -conj(twd_p) = (-twd_p.x, twd_p.y);"})

		ifZero.Else.Add(gen.Assign{Dst: outval.X(), Src: gen.Add(u.X(), gen.Mul(v.X(), twdP.Y()), gen.Mul(u.Y(), twdP.X()))})
		ifZero.Else.Add(gen.Assign{Dst: outval.Y(), Src: gen.Sub(gen.Add(v.Y(), gen.Mul(u.Y(), twdP.Y())), gen.Mul(v.X(), twdP.X()))})
		ifZero.Else.Add(gen.StoreGlobal{Ptr: output, Idx: gen.Add(outputOffset, idxP), Val: outval})

		ifZero.Else.Add(gen.Assign{Dst: outval.X(), Src: gen.Sub(gen.Sub(u.X(), gen.Mul(v.X(), twdP.Y())), gen.Mul(u.Y(), twdP.X()))})
		ifZero.Else.Add(gen.Assign{Dst: outval.Y(), Src: gen.Sub(gen.Add(gen.Neg(v.Y()), gen.Mul(u.Y(), twdP.Y())), gen.Mul(v.X(), twdP.X()))})
		ifZero.Else.Add(gen.StoreGlobal{Ptr: output, Idx: gen.Add(outputOffset, idxQ), Val: outval})
	} else {
		ifZero.Else.Add(gen.Declaration{Var: p})
		ifZero.Else.Add(gen.Assign{Dst: p, Src: gen.LoadGlobal{Ptr: input, Idx: gen.Add(inputOffset, idxP)}})
		ifZero.Else.Add(gen.Declaration{Var: q})
		ifZero.Else.Add(gen.Assign{Dst: q, Src: gen.LoadGlobal{Ptr: input, Idx: gen.Add(inputOffset, idxQ)}})
		ifZero.Else.Add(gen.Declaration{Var: u, Init: gen.Add(p, q)})
		ifZero.Else.Add(gen.Declaration{Var: v, Init: gen.Sub(p, q)})

		ifZero.Else.Add(gen.Declaration{Var: twdP, Init: twiddles.At(idxP)})
		ifZero.Else.Add(gen.Comment{"NB: twd_q = -conj(twd_p);"})

		ifZero.Else.Add(gen.Assign{Dst: output.At(gen.Add(outputOffset, idxP)).X(), Src: gen.Sub(gen.Add(u.X(), gen.Mul(v.X(), twdP.Y())), gen.Mul(u.Y(), twdP.X()))})
		ifZero.Else.Add(gen.Assign{Dst: output.At(gen.Add(outputOffset, idxP)).Y(), Src: gen.Add(v.Y(), gen.Mul(u.Y(), twdP.Y()), gen.Mul(v.X(), twdP.X()))})

		ifZero.Else.Add(gen.Assign{Dst: output.At(gen.Add(outputOffset, idxQ)).X(), Src: gen.Add(gen.Sub(u.X(), gen.Mul(v.X(), twdP.Y())), gen.Mul(u.Y(), twdP.X()))})
		ifZero.Else.Add(gen.Assign{Dst: output.At(gen.Add(outputOffset, idxQ)).Y(), Src: gen.Add(gen.Neg(v.Y()), gen.Mul(u.Y(), twdP.Y()), gen.Mul(v.X(), twdP.X()))})
	}

	guard.Then.Add(ifZero)
	f.Body.Add(guard)

	makeLoadStoreOps(&f, specs.LoadOps, specs.StoreOps)

	var err error
	if specs.InArrayType.IsPlanar() {
		if f, err = gen.MakePlanar(f, "input"); err != nil {
			return "", err
		}
	}
	if specs.OutArrayType.IsPlanar() {
		if f, err = gen.MakePlanar(f, "output"); err != nil {
			return "", err
		}
	}

	return src + f.Render(), nil
}
