package rtc

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/samjwu/rocFFT/internal/fftypes"
	gen "github.com/samjwu/rocFFT/internal/generator"
)

// RealComplexKernelName generates the kernel name for the
// real/hermitian copy family.
func RealComplexKernelName(specs RealComplexSpecs) (string, error) {
	name := ""
	switch specs.Scheme {
	case fftypes.SchemeCopyRealToComplex:
		name = "r2c_copy_rtc"
	case fftypes.SchemeCopyComplexToHerm:
		name = "c2herm_copy_rtc"
	case fftypes.SchemeCopyComplexToReal:
		name = "c2r_copy_rtc"
	case fftypes.SchemeCopyHermToComplex:
		name = "herm2c_copy_rtc"
	default:
		return "", errors.Errorf("invalid realcomplex rtc scheme %s", specs.Scheme)
	}

	name += fmt.Sprintf("_dim%d", specs.Dim)
	name += precisionName(specs.Precision)
	name += arrayTypeName(specs.InArrayType)
	name += arrayTypeName(specs.OutArrayType)
	name += loadStoreSuffix(specs.LoadOps, specs.StoreOps)
	name += cbtypeName(specs.CallbackType)
	return name, nil
}

// RealComplexSource generates source for one kernel of the
// real/hermitian copy family.
func RealComplexSource(name string, specs RealComplexSpecs) (string, error) {
	switch specs.Scheme {
	case fftypes.SchemeCopyRealToComplex, fftypes.SchemeCopyComplexToHerm,
		fftypes.SchemeCopyComplexToReal, fftypes.SchemeCopyHermToComplex:
	default:
		return "", errors.Errorf("invalid realcomplex rtc scheme %s", specs.Scheme)
	}

	src := complexHeader + commonHeader + callbackHeader
	src += precisionTypeDecl(specs.Precision, true)
	src += cbtypeDecl(specs.CallbackType)
	src += dimDecl(specs.Dim)

	inputType := "scalar_type"
	if specs.Scheme == fftypes.SchemeCopyRealToComplex {
		inputType = "real_type_t<scalar_type>"
	}
	outputType := "scalar_type"
	if specs.Scheme == fftypes.SchemeCopyComplexToReal {
		outputType = "real_type_t<scalar_type>"
	}

	hermitianSize := gen.Variable{Name: "hermitian_size", Type: "const unsigned int"}
	lengths0 := gen.Variable{Name: "lengths0", Type: "unsigned int"}
	lengths1 := gen.Variable{Name: "lengths1", Type: "unsigned int"}
	lengths2 := gen.Variable{Name: "lengths2", Type: "unsigned int"}
	nbatch := gen.Variable{Name: "nbatch", Type: "unsigned int"}
	strideIn := [4]gen.Variable{}
	strideOut := [4]gen.Variable{}
	for i := range strideIn {
		strideIn[i] = gen.Variable{Name: fmt.Sprintf("stride_in%d", i), Type: "unsigned int"}
		strideOut[i] = gen.Variable{Name: fmt.Sprintf("stride_out%d", i), Type: "unsigned int"}
	}
	input := gen.Variable{Name: "input", Type: inputType, Pointer: true, Restrict: true}
	output := gen.Variable{Name: "output", Type: outputType, Pointer: true, Restrict: true}

	f := gen.Function{
		Name:         name,
		Qualifier:    `extern "C" __global__`,
		LaunchBounds: launchBoundsR2CC2RKernel,
	}

	if specs.Scheme == fftypes.SchemeCopyHermToComplex {
		f.AppendArg(hermitianSize)
	}
	f.AppendArg(lengths0)
	f.AppendArg(lengths1)
	f.AppendArg(lengths2)
	f.AppendArg(nbatch)
	for i := range strideIn {
		f.AppendArg(strideIn[i])
	}
	for i := range strideOut {
		f.AppendArg(strideOut[i])
	}
	f.AppendArg(input)
	f.AppendArg(output)
	for _, a := range callbackArgs() {
		f.AppendArg(a)
	}

	globalIdx := gen.Variable{Name: "global_idx", Type: "unsigned int"}
	f.Body.Add(gen.Declaration{Var: globalIdx, Init: gen.Literal("blockIdx.x * blockDim.x + threadIdx.x")})

	idx0 := gen.Variable{Name: "idx_0", Type: "const unsigned int"}
	idx1 := gen.Variable{Name: "idx_1", Type: "const unsigned int"}
	idx2 := gen.Variable{Name: "idx_2", Type: "const unsigned int"}
	idxBatch := gen.Variable{Name: "idx_batch", Type: "const unsigned int"}

	// herm2c allocates threads along the hermitian length, the other
	// schemes along the FFT length
	lengths0Divide := lengths0
	if specs.Scheme == fftypes.SchemeCopyHermToComplex {
		lengths0Divide = hermitianSize
	}

	f.Body.Add(gen.Comment{"per-dimension indexes"})
	f.Body.Add(gen.Declaration{Var: idx0, Init: gen.Mod(globalIdx, lengths0Divide)})
	f.Body.Add(gen.Assign{Dst: globalIdx, Src: gen.Div(globalIdx, lengths0Divide)})
	if specs.Dim > 1 {
		f.Body.Add(gen.Declaration{Var: idx1, Init: gen.Mod(globalIdx, lengths1)})
		f.Body.Add(gen.Assign{Dst: globalIdx, Src: gen.Div(globalIdx, lengths1)})
	} else {
		f.Body.Add(gen.Declaration{Var: idx1, Init: gen.Lit(0)})
	}
	if specs.Dim > 2 {
		f.Body.Add(gen.Declaration{Var: idx2, Init: gen.Mod(globalIdx, lengths2)})
		f.Body.Add(gen.Assign{Dst: globalIdx, Src: gen.Div(globalIdx, lengths2)})
	} else {
		f.Body.Add(gen.Declaration{Var: idx2, Init: gen.Lit(0)})
	}
	f.Body.Add(gen.Declaration{Var: idxBatch, Init: globalIdx})

	f.Body.Add(gen.Comment{"any excess threads will be past the end of batch"})
	f.Body.Add(gen.If{Cond: gen.Ge(idxBatch, nbatch), Then: gen.StatementList{gen.Return{}}})

	batchStrideIn := strideIn[specs.Dim]
	batchStrideOut := strideOut[specs.Dim]

	if specs.Scheme == fftypes.SchemeCopyHermToComplex {
		inputOffset := gen.Variable{Name: "input_offset", Type: "auto"}
		f.Body.Add(gen.Declaration{Var: inputOffset, Init: gen.Add(
			gen.Mul(idx0, strideIn[0]),
			gen.Mul(idx1, strideIn[1]),
			gen.Mul(idx2, strideIn[2]),
			gen.Mul(idxBatch, batchStrideIn),
		)})

		f.Body.Add(gen.Comment{"straight copy indices"})
		is0 := gen.Variable{Name: "is0", Type: "auto"}
		is1 := gen.Variable{Name: "is1", Type: "auto"}
		is2 := gen.Variable{Name: "is2", Type: "auto"}
		f.Body.Add(gen.Declaration{Var: is0, Init: idx0})
		f.Body.Add(gen.Declaration{Var: is1, Init: idx1})
		f.Body.Add(gen.Declaration{Var: is2, Init: idx2})

		f.Body.Add(gen.Comment{"conjugate copy indices"})
		ic0 := gen.Variable{Name: "ic0", Type: "auto"}
		ic1 := gen.Variable{Name: "ic1", Type: "auto"}
		ic2 := gen.Variable{Name: "ic2", Type: "auto"}
		f.Body.Add(gen.Declaration{Var: ic0, Init: gen.Ternary{Cond: gen.Eq(is0, gen.Lit(0)), Then: gen.Lit(0), Else: gen.Sub(lengths0, is0)}})
		f.Body.Add(gen.Declaration{Var: ic1, Init: gen.Ternary{Cond: gen.Eq(is1, gen.Lit(0)), Then: gen.Lit(0), Else: gen.Sub(lengths1, is1)}})
		f.Body.Add(gen.Declaration{Var: ic2, Init: gen.Ternary{Cond: gen.Eq(is2, gen.Lit(0)), Then: gen.Lit(0), Else: gen.Sub(lengths2, is2)}})

		outputsOffset := gen.Variable{Name: "outputs_offset", Type: "auto"}
		outputcOffset := gen.Variable{Name: "outputc_offset", Type: "auto"}
		f.Body.Add(gen.Declaration{Var: outputsOffset, Init: gen.Add(
			gen.Mul(is0, strideOut[0]),
			gen.Mul(is1, strideOut[1]),
			gen.Mul(is2, strideOut[2]),
			gen.Mul(idxBatch, batchStrideOut),
		)})
		f.Body.Add(gen.Declaration{Var: outputcOffset, Init: gen.Add(
			gen.Mul(ic0, strideOut[0]),
			gen.Mul(ic1, strideOut[1]),
			gen.Mul(ic2, strideOut[2]),
			gen.Mul(idxBatch, batchStrideOut),
		)})

		f.Body.Add(callbackLoadDecl("scalar_type", specs.CallbackType))
		f.Body.Add(callbackStoreDecl("scalar_type", specs.CallbackType, specs.StoreOps.Enabled()))

		f.Body.Add(gen.Comment{
			"hermitian2complex runs at the start of a C2R transform, so it",
			"is never the last kernel to write to global memory.  don't",
			"bother going through the store callback to write global memory.",
		})

		elem := gen.Variable{Name: "elem", Type: "scalar_type"}

		writeSimple := gen.If{Cond: gen.Or(gen.Eq(is0, gen.Lit(0)), gen.Eq(gen.Mul(is0, gen.Lit(2)), lengths0))}
		writeSimple.Then.Add(gen.Comment{"simply write the element to output"})
		writeSimple.Then.Add(gen.Declaration{Var: elem})
		writeSimple.Then.Add(gen.Assign{Dst: elem, Src: gen.LoadGlobal{Ptr: input, Idx: inputOffset}})
		writeSimple.Then.Add(gen.Assign{Dst: output.At(outputsOffset), Src: elem})
		writeSimple.Then.Add(gen.Return{})
		f.Body.Add(writeSimple)
		writeConj := gen.If{Cond: gen.Lt(is0, hermitianSize)}
		writeConj.Then.Add(gen.Declaration{Var: elem})
		writeConj.Then.Add(gen.Assign{Dst: elem, Src: gen.LoadGlobal{Ptr: input, Idx: inputOffset}})
		writeConj.Then.Add(gen.Assign{Dst: output.At(outputsOffset), Src: elem})
		writeConj.Then.Add(gen.Assign{Dst: elem.Y(), Src: gen.Neg(elem.Y())})
		writeConj.Then.Add(gen.Assign{Dst: output.At(outputcOffset), Src: elem})
		f.Body.Add(writeConj)
	} else {
		inputIdx := gen.Variable{Name: "inputIdx", Type: "auto"}
		outputIdx := gen.Variable{Name: "outputIdx", Type: "auto"}
		f.Body.Add(gen.Declaration{Var: inputIdx, Init: gen.Add(
			gen.Mul(idx0, strideIn[0]),
			gen.Mul(idx1, strideIn[1]),
			gen.Mul(idx2, strideIn[2]),
			gen.Mul(idxBatch, batchStrideIn),
		)})
		f.Body.Add(gen.Declaration{Var: outputIdx, Init: gen.Add(
			gen.Mul(idx0, strideOut[0]),
			gen.Mul(idx1, strideOut[1]),
			gen.Mul(idx2, strideOut[2]),
			gen.Mul(idxBatch, batchStrideOut),
		)})

		switch specs.Scheme {
		case fftypes.SchemeCopyRealToComplex:
			guard := gen.If{Cond: gen.Lt(idx0, lengths0)}
			guard.Then.Add(gen.Comment{
				"real2complex runs at the beginning of an R2C transform, so",
				"it is never the last kernel to write to global memory.",
				"don't bother going through the store cb to write global memory.",
			})
			guard.Then.Add(callbackLoadDecl("real_type_t<scalar_type>", specs.CallbackType))
			guard.Then.Add(callbackStoreDecl("real_type_t<scalar_type>", specs.CallbackType, specs.StoreOps.Enabled()))
			guard.Then.Add(gen.Assign{
				Dst: output.At(outputIdx),
				Src: gen.ComplexLit{Re: gen.LoadGlobal{Ptr: input, Idx: inputIdx}, Im: gen.Literal("0.0")},
			})
			f.Body.Add(guard)

		case fftypes.SchemeCopyComplexToHerm:
			f.Body.Add(gen.Comment{
				"only read and write the first [length0/2+1] elements due to",
				"conjugate redundancy",
			})
			guard := gen.If{Cond: gen.Lt(idx0, gen.Paren{E: gen.Add(gen.Lit(1), gen.Div(lengths0, gen.Lit(2)))})}
			guard.Then.Add(gen.Comment{
				"complex2hermitian runs at the end of an R2C transform, so it",
				"is never the first kernel to read from global memory.  don't",
				"bother going through the load callback to read global memory.",
			})
			guard.Then.Add(callbackLoadDecl("scalar_type", specs.CallbackType))
			guard.Then.Add(callbackStoreDecl("scalar_type", specs.CallbackType, specs.StoreOps.Enabled()))
			elem := gen.Variable{Name: "elem", Type: "scalar_type"}
			guard.Then.Add(gen.Declaration{Var: elem, Init: input.At(inputIdx)})
			guard.Then.Add(gen.StoreGlobal{Ptr: output, Idx: outputIdx, Val: elem})
			f.Body.Add(guard)

		case fftypes.SchemeCopyComplexToReal:
			f.Body.Add(gen.Comment{
				"complex2real runs at the end of a C2R transform, so it is",
				"never the first kernel to read from global memory.  don't",
				"bother going through the load cb to read global memory.",
			})
			f.Body.Add(callbackLoadDecl("real_type_t<scalar_type>", specs.CallbackType))
			f.Body.Add(callbackStoreDecl("real_type_t<scalar_type>", specs.CallbackType, specs.StoreOps.Enabled()))
			elem := gen.Variable{Name: "elem", Type: "auto"}
			f.Body.Add(gen.Declaration{Var: elem, Init: input.At(inputIdx).X()})
			f.Body.Add(gen.StoreGlobal{Ptr: output, Idx: outputIdx, Val: elem})
		}
	}

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
