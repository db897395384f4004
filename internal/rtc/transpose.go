package rtc

import (
	"fmt"

	"github.com/pkg/errors"
	gen "github.com/samjwu/rocFFT/internal/generator"
)

// TransposeKernelName generates the kernel name for one tiled
// transpose kernel.
func TransposeKernelName(specs TransposeSpecs) string {
	name := "transpose_rtc"

	name += fmt.Sprintf("_tile%dx%d", specs.TileX, specs.TileY)

	// 2D + 3D kernels are specialized to omit loops
	switch specs.Dim {
	case 2:
		name += "_dim2"
	case 3:
		name += "_dim3"
	}

	name += precisionName(specs.Precision)
	name += arrayTypeName(specs.InArrayType)
	name += arrayTypeName(specs.OutArrayType)

	if specs.LargeTwdSteps > 0 {
		name += fmt.Sprintf("_twd%dstep", specs.LargeTwdSteps)
		if specs.LargeTwdDirection == -1 {
			name += "_fwd"
		} else {
			name += "_back"
		}
	}

	if specs.Diagonal {
		name += "_diag"
	}
	if specs.TileAligned {
		name += "_aligned"
	}
	name += loadStoreSuffix(specs.LoadOps, specs.StoreOps)
	name += cbtypeName(specs.CallbackType)
	return name
}

// TransposeSource generates source for one tiled transpose kernel.
// Each thread block moves a TileX x TileX tile through shared memory;
// TileY threads along y each carry TileX/TileY elements so the tile
// shape is independent of block shape.
func TransposeSource(name string, specs TransposeSpecs) (string, error) {
	// we use tileX*tileX tiles - tileY must evenly divide into
	// tileX, so that elemsPerThread is integral
	if specs.TileY == 0 || specs.TileX%specs.TileY != 0 {
		return "", errors.Errorf("non-integral transpose elems per thread for tile %dx%d", specs.TileX, specs.TileY)
	}
	elemsPerThread := specs.TileX / specs.TileY
	if elemsPerThread == 0 {
		return "", errors.New("zero transpose elems per thread")
	}

	src := complexHeader + commonHeader + callbackHeader
	src += precisionTypeDecl(specs.Precision, specs.InArrayType.IsComplex())
	src += cbtypeDecl(specs.CallbackType)

	// twiddle code assumes scalar type is named T
	src += "typedef scalar_type T;\n"
	if specs.LargeTwdSteps > 0 {
		src += largeTwiddleHeader
	}

	input := gen.Variable{Name: "input", Type: "scalar_type", Pointer: true, Restrict: true}
	output := gen.Variable{Name: "output", Type: "scalar_type", Pointer: true, Restrict: true}
	twiddlesLarge := gen.Variable{Name: "twiddles_large", Type: "const scalar_type", Pointer: true, Restrict: true}
	dim := gen.Variable{Name: "dim", Type: "unsigned int"}
	length0 := gen.Variable{Name: "length0", Type: "unsigned int"}
	length1 := gen.Variable{Name: "length1", Type: "unsigned int"}
	length2 := gen.Variable{Name: "length2", Type: "unsigned int"}
	lengths := gen.Variable{Name: "lengths", Type: "const size_t", Pointer: true, Restrict: true}
	strideIn0 := gen.Variable{Name: "stride_in0", Type: "unsigned int"}
	strideIn1 := gen.Variable{Name: "stride_in1", Type: "unsigned int"}
	strideIn2 := gen.Variable{Name: "stride_in2", Type: "unsigned int"}
	strideIn := gen.Variable{Name: "stride_in", Type: "const size_t", Pointer: true, Restrict: true}
	idist := gen.Variable{Name: "idist", Type: "unsigned int"}
	strideOut0 := gen.Variable{Name: "stride_out0", Type: "unsigned int"}
	strideOut1 := gen.Variable{Name: "stride_out1", Type: "unsigned int"}
	strideOut2 := gen.Variable{Name: "stride_out2", Type: "unsigned int"}
	strideOut := gen.Variable{Name: "stride_out", Type: "const size_t", Pointer: true, Restrict: true}
	odist := gen.Variable{Name: "odist", Type: "unsigned int"}

	f := gen.Function{
		Name:         name,
		Qualifier:    `extern "C" __global__`,
		LaunchBounds: uint(specs.TileX * specs.TileY),
	}
	for _, a := range []gen.Variable{
		input, output, twiddlesLarge, dim,
		length0, length1, length2, lengths,
		strideIn0, strideIn1, strideIn2, strideIn, idist,
		strideOut0, strideOut1, strideOut2, strideOut, odist,
	} {
		f.AppendArg(a)
	}
	for _, a := range callbackArgs() {
		f.AppendArg(a)
	}

	lds := gen.Variable{Name: "lds", Type: "__shared__ scalar_type", ArraySize: specs.TileX, ArraySize2: specs.TileX}
	f.Body.Add(gen.Declaration{Var: lds})

	tileBlockIdxY := gen.Variable{Name: "tileBlockIdx_y", Type: "unsigned int"}
	tileBlockIdxX := gen.Variable{Name: "tileBlockIdx_x", Type: "unsigned int"}
	f.Body.Add(gen.Declaration{Var: tileBlockIdxY, Init: gen.Literal("blockIdx.y")})
	f.Body.Add(gen.Declaration{Var: tileBlockIdxX, Init: gen.Literal("blockIdx.x")})

	if specs.Diagonal {
		bid := gen.Variable{Name: "bid", Type: "auto"}
		f.Body.Add(gen.Declaration{Var: bid, Init: gen.Literal("blockIdx.x + gridDim.x * blockIdx.y")})
		f.Body.Add(gen.Assign{Dst: tileBlockIdxY, Src: gen.Mod(bid, gen.Literal("gridDim.y"))})
		f.Body.Add(gen.Assign{Dst: tileBlockIdxX,
			Src: gen.Mod(gen.Paren{E: gen.Add(gen.Div(bid, gen.Literal("gridDim.y")), tileBlockIdxY)}, gen.Literal("gridDim.x"))})
	}

	if specs.Dim == 2 {
		f.Body.Add(gen.Comment{
			"only using 2 dimensions, pretend length2 is 1 so the",
			"compiler can optimize out comparisons against it",
		})
		f.Body.Add(gen.Assign{Dst: length2, Src: gen.Lit(1)})
	}

	tileXIndex := gen.Variable{Name: "tile_x_index", Type: "unsigned int"}
	tileYIndex := gen.Variable{Name: "tile_y_index", Type: "unsigned int"}
	f.Body.Add(gen.Declaration{Var: tileXIndex, Init: gen.Literal("threadIdx.x")})
	f.Body.Add(gen.Declaration{Var: tileYIndex, Init: gen.Literal("threadIdx.y")})

	f.Body.Add(gen.Comment{"work out offset for dimensions after the first 3"})
	remaining := gen.Variable{Name: "remaining", Type: "unsigned int"}
	offsetIn := gen.Variable{Name: "offset_in", Type: "unsigned int"}
	offsetOut := gen.Variable{Name: "offset_out", Type: "unsigned int"}
	f.Body.Add(gen.Declaration{Var: remaining, Init: gen.Literal("blockIdx.z")})
	f.Body.Add(gen.Declaration{Var: offsetIn, Init: gen.Lit(0)})
	f.Body.Add(gen.Declaration{Var: offsetOut, Init: gen.Lit(0)})

	// use specified dim to avoid loops if possible
	if specs.Dim > 3 {
		d := gen.Variable{Name: "d", Type: "unsigned int"}
		offsetLoop := gen.For{Var: d, Init: gen.Lit(3), Cond: gen.Lt(d, dim), Inc: gen.Lit(1)}

		indexAlongD := gen.Variable{Name: "index_along_d", Type: "auto"}
		offsetLoop.Body.Add(gen.Declaration{Var: indexAlongD, Init: gen.Mod(remaining, lengths.At(d))})
		offsetLoop.Body.Add(gen.Assign{Dst: remaining, Src: gen.Div(remaining, lengths.At(d))})
		offsetLoop.Body.Add(gen.Assign{Dst: offsetIn, Src: gen.Add(offsetIn, gen.Mul(indexAlongD, strideIn.At(d)))})
		offsetLoop.Body.Add(gen.Assign{Dst: offsetOut, Src: gen.Add(offsetOut, gen.Mul(indexAlongD, strideOut.At(d)))})
		f.Body.Add(offsetLoop)
	}

	f.Body.Add(gen.Comment{"remaining is now the batch"})
	f.Body.Add(gen.AddAssign(offsetIn, gen.Mul(remaining, idist)))
	f.Body.Add(gen.AddAssign(offsetOut, gen.Mul(remaining, odist)))
	f.Body.Add(callbackLoadDecl("scalar_type", specs.CallbackType))
	f.Body.Add(callbackStoreDecl("scalar_type", specs.CallbackType, specs.StoreOps.Enabled()))

	i := gen.Variable{Name: "i", Type: "unsigned int"}
	logicalRow := gen.Variable{Name: "logical_row", Type: "auto"}
	logicalCol := gen.Variable{Name: "logical_col", Type: "auto"}
	idx0 := gen.Variable{Name: "idx0", Type: "auto"}
	idx1 := gen.Variable{Name: "idx1", Type: "auto"}
	idx2 := gen.Variable{Name: "idx2", Type: "auto"}
	globalReadIdx := gen.Variable{Name: "global_read_idx", Type: "auto"}
	globalWriteIdx := gen.Variable{Name: "global_write_idx", Type: "auto"}
	elem := gen.Variable{Name: "elem", Type: "scalar_type"}
	twlIdx := gen.Variable{Name: "twl_idx", Type: "auto"}

	boundsCheck := gen.Or(gen.Or(gen.Ge(idx0, length0), gen.Ge(idx1, length1)), gen.Ge(idx2, length2))

	readLoop := gen.For{Var: i, Init: gen.Lit(0), Cond: gen.Lt(i, gen.Lit(elemsPerThread)), Inc: gen.Lit(1), Unroll: true}

	readLoop.Body.Add(gen.Declaration{Var: logicalRow,
		Init: gen.Add(gen.Mul(gen.Lit(specs.TileX), tileBlockIdxY), tileYIndex, gen.Mul(i, gen.Lit(specs.TileY)))})
	readLoop.Body.Add(gen.Declaration{Var: idx0, Init: gen.Add(gen.Mul(gen.Lit(specs.TileX), tileBlockIdxX), tileXIndex)})
	readLoop.Body.Add(gen.Declaration{Var: idx1, Init: logicalRow})
	if specs.Dim != 2 {
		readLoop.Body.Add(gen.ModAssign(idx1, length1))
	}

	if specs.Dim == 2 {
		readLoop.Body.Add(gen.Declaration{Var: idx2, Init: gen.Lit(0)})
	} else {
		readLoop.Body.Add(gen.Declaration{Var: idx2, Init: gen.Div(logicalRow, length1)})
	}

	if !specs.TileAligned {
		oob := gen.If{Cond: boundsCheck}
		oob.Then.Add(gen.Break{})
		readLoop.Body.Add(oob)
	}

	readLoop.Body.Add(gen.Declaration{Var: globalReadIdx,
		Init: gen.Add(gen.Mul(idx0, strideIn0), gen.Mul(idx1, strideIn1), gen.Mul(idx2, strideIn2), offsetIn)})
	readLoop.Body.Add(gen.Declaration{Var: elem})
	readLoop.Body.Add(gen.Assign{Dst: elem, Src: gen.LoadGlobal{Ptr: input, Idx: globalReadIdx}})

	if specs.LargeTwdSteps > 0 {
		twiddleMulMacro := "TWIDDLE_STEP_MUL_INV"
		if specs.LargeTwdDirection == -1 {
			twiddleMulMacro = "TWIDDLE_STEP_MUL_FWD"
		}
		twiddleStepFunc := fmt.Sprintf("TWLstep%d", specs.LargeTwdSteps)

		readLoop.Body.Add(gen.Declaration{Var: twlIdx, Init: gen.Mul(idx0, idx1)})
		readLoop.Body.Add(gen.Raw(fmt.Sprintf("        %s(%s, twiddles_large, twl_idx, elem);",
			twiddleMulMacro, twiddleStepFunc)))
	}
	readLoop.Body.Add(gen.Assign{
		Dst: lds.At2(tileXIndex, gen.Add(gen.Mul(i, gen.Lit(specs.TileY)), tileYIndex)),
		Src: elem,
	})

	f.Body.Add(readLoop)

	f.Body.Add(gen.SyncThreads{})

	val := gen.Variable{Name: "val", Type: "scalar_type", ArraySize: elemsPerThread}
	f.Body.Add(gen.Declaration{Var: val})

	f.Body.Add(gen.Comment{
		"reallocate threads to write along fastest dim (length1) and",
		"read transposed from LDS",
	})
	f.Body.Add(gen.Assign{Dst: tileXIndex, Src: gen.Literal("threadIdx.y")})
	f.Body.Add(gen.Assign{Dst: tileYIndex, Src: gen.Literal("threadIdx.x")})

	transposeLoop := gen.For{Var: i, Init: gen.Lit(0), Cond: gen.Lt(i, gen.Lit(elemsPerThread)), Inc: gen.Lit(1), Unroll: true}
	transposeLoop.Body.Add(gen.Assign{
		Dst: val.At(i),
		Src: lds.At2(gen.Add(tileXIndex, gen.Mul(i, gen.Lit(specs.TileY))), tileYIndex),
	})
	f.Body.Add(transposeLoop)

	writeLoop := gen.For{Var: i, Init: gen.Lit(0), Cond: gen.Lt(i, gen.Lit(elemsPerThread)), Inc: gen.Lit(1), Unroll: true}

	writeLoop.Body.Add(gen.Declaration{Var: logicalCol,
		Init: gen.Add(gen.Mul(gen.Lit(specs.TileX), tileBlockIdxX), tileXIndex, gen.Mul(i, gen.Lit(specs.TileY)))})
	writeLoop.Body.Add(gen.Declaration{Var: logicalRow,
		Init: gen.Add(gen.Mul(gen.Lit(specs.TileX), tileBlockIdxY), tileYIndex)})

	writeLoop.Body.Add(gen.Declaration{Var: idx0, Init: logicalCol})
	writeLoop.Body.Add(gen.Declaration{Var: idx1, Init: logicalRow})
	if specs.Dim != 2 {
		writeLoop.Body.Add(gen.ModAssign(idx1, length1))
	}
	if specs.Dim == 2 {
		writeLoop.Body.Add(gen.Declaration{Var: idx2, Init: gen.Lit(0)})
	} else {
		writeLoop.Body.Add(gen.Declaration{Var: idx2, Init: gen.Div(logicalRow, length1)})
	}

	if !specs.TileAligned {
		oob := gen.If{Cond: boundsCheck}
		oob.Then.Add(gen.Break{})
		writeLoop.Body.Add(oob)
	}
	writeLoop.Body.Add(gen.Declaration{Var: globalWriteIdx,
		Init: gen.Add(gen.Mul(idx0, strideOut0), gen.Mul(idx1, strideOut1), gen.Mul(idx2, strideOut2), offsetOut)})
	writeLoop.Body.Add(gen.StoreGlobal{Ptr: output, Idx: globalWriteIdx, Val: val.At(i)})

	f.Body.Add(writeLoop)

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
