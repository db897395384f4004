package rtc

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/samjwu/rocFFT/internal/fftypes"
	gen "github.com/samjwu/rocFFT/internal/generator"
)

// RealComplexEvenTransposeKernelName generates the kernel name for the
// fused even-length butterfly + transpose family.
func RealComplexEvenTransposeKernelName(specs RealComplexEvenTransposeSpecs) (string, error) {
	name := ""
	switch specs.Scheme {
	case fftypes.SchemeRealToComplexEvenTranspose:
		name = "r2c_even_post_transpose"
	case fftypes.SchemeTransposeComplexToRealEven:
		name = "transpose_c2r_even_pre"
	default:
		return "", errors.Errorf("invalid realcomplex even transpose rtc scheme %s", specs.Scheme)
	}

	name += fmt.Sprintf("_tile%dx%d", specs.TileX(), specs.TileY())
	name += precisionName(specs.Precision)
	name += arrayTypeName(specs.InArrayType)
	name += arrayTypeName(specs.OutArrayType)
	name += loadStoreSuffix(specs.LoadOps, specs.StoreOps)
	name += cbtypeName(specs.CallbackType)
	return name, nil
}

// r2c uses a device function helper to work out which dimension the
// transpose targets. The helper never touches complex elements, so it
// bypasses the IR and goes straight into the source.
const outputRowBaseHelper = `
__device__ size_t output_row_base(size_t        dim,
                                  size_t        output_batch_start,
                                  const size_t* outStride,
                                  const size_t  col)
{
    if(dim == 2)
        return output_batch_start + outStride[1] * col;
    else if(dim == 3)
        return output_batch_start + outStride[2] * col;
    return 0;
}
`

// RealComplexEvenTransposeSource generates source for one fused
// butterfly + transpose kernel. Post-processing reads a row of the
// fastest dimension into two shared-memory tiles (values from the row
// start into the left tile, from the row end into the right),
// butterflies them together and writes the results out as columns.
// Pre-processing does the mirror image: columns in, rows out.
func RealComplexEvenTransposeSource(name string, specs RealComplexEvenTransposeSpecs) (string, error) {
	isR2C := false
	switch specs.Scheme {
	case fftypes.SchemeRealToComplexEvenTranspose:
		isR2C = true
	case fftypes.SchemeTransposeComplexToRealEven:
	default:
		return "", errors.Errorf("invalid realcomplex even transpose rtc scheme %s", specs.Scheme)
	}
	tileX := specs.TileX()
	tileY := specs.TileY()

	src := complexHeader + commonHeader + callbackHeader
	src += precisionTypeDecl(specs.Precision, true)
	src += cbtypeDecl(specs.CallbackType)
	if isR2C {
		src += outputRowBaseHelper
	}

	dim := gen.Variable{Name: "dim", Type: "size_t"}
	input := gen.Variable{Name: "input", Type: "scalar_type", Pointer: true, Restrict: true}
	idist := gen.Variable{Name: "idist", Type: "size_t"}
	output := gen.Variable{Name: "output", Type: "scalar_type", Pointer: true, Restrict: true}
	odist := gen.Variable{Name: "odist", Type: "size_t"}
	twiddles := gen.Variable{Name: "twiddles", Type: "scalar_type", Pointer: true, Restrict: true}
	lengths := gen.Variable{Name: "lengths", Type: "size_t", Pointer: true, Restrict: true}
	inStride := gen.Variable{Name: "inStride", Type: "size_t", Pointer: true, Restrict: true}
	outStride := gen.Variable{Name: "outStride", Type: "size_t", Pointer: true, Restrict: true}

	f := gen.Function{
		Name:         name,
		Qualifier:    `extern "C" __global__`,
		LaunchBounds: uint(tileX * tileY),
	}
	f.AppendArg(dim)
	f.AppendArg(input)
	f.AppendArg(idist)
	f.AppendArg(output)
	f.AppendArg(odist)
	f.AppendArg(twiddles)
	f.AppendArg(lengths)
	f.AppendArg(inStride)
	f.AppendArg(outStride)
	for _, a := range callbackArgs() {
		f.AppendArg(a)
	}

	inputBatchStart := gen.Variable{Name: "input_batch_start", Type: "size_t"}
	outputBatchStart := gen.Variable{Name: "output_batch_start", Type: "size_t"}
	f.Body.Add(gen.Declaration{Var: inputBatchStart, Init: gen.Mul(idist, gen.Literal("blockIdx.z"))})
	f.Body.Add(gen.Declaration{Var: outputBatchStart, Init: gen.Mul(odist, gen.Literal("blockIdx.z"))})

	leftTile := gen.Variable{Name: "leftTile", Type: "__shared__ scalar_type", ArraySize: tileX, ArraySize2: tileY}
	rightTile := gen.Variable{Name: "rightTile", Type: "__shared__ scalar_type", ArraySize: tileX, ArraySize2: tileY}
	f.Body.Add(gen.Comment{
		"post-processing reads rows and transposes them to columns.",
		"pre-processing reads columns and transposes them to rows.",
	})
	f.Body.Add(gen.LineBreak{})
	f.Body.Add(gen.Comment{
		"allocate 2 tiles so we can butterfly the values together.",
		"left tile grabs values from towards the beginnings of the rows",
		"right tile grabs values from towards the ends",
	})
	f.Body.Add(gen.Declaration{Var: leftTile})
	f.Body.Add(gen.Declaration{Var: rightTile})

	// r2c reads the fastest dimension as a row, c2r reads higher dims.
	// The IR variables carry r2c names; names in generated source are
	// adjusted to suit both directions.
	rowName := func(r2c, c2r string) string {
		if isR2C {
			return r2c
		}
		return c2r
	}
	lenRow := gen.Variable{Name: rowName("len_row", "len_col"), Type: "const size_t"}
	tileSize := gen.Variable{Name: "tile_size", Type: "const size_t"}
	leftColStart := gen.Variable{Name: rowName("left_col_start", "left_row_start"), Type: "const size_t"}
	middle := gen.Variable{Name: "middle", Type: "const size_t"}
	colsToRead := gen.Variable{Name: rowName("cols_to_read", "rows_to_read"), Type: "size_t"}
	rowLimit := gen.Variable{Name: rowName("row_limit", "col_limit"), Type: "const size_t"}
	rowStart := gen.Variable{Name: rowName("row_start", "col_start"), Type: "const size_t"}
	rowEnd := gen.Variable{Name: rowName("row_end", "col_end"), Type: "size_t"}

	var lenRowInit, tileSizeInit, leftColStartInit gen.Expr
	var rowLimitInit, rowStartInit, rowEndInit gen.Expr
	if isR2C {
		f.Body.Add(gen.Comment{
			"take fastest dimension and partition it into lengths that will go into each tile",
		})
		lenRowInit = lengths.At(gen.Lit(0))
		tileSizeInit = gen.Ternary{
			Cond: gen.Lt(gen.Div(gen.Paren{E: gen.Sub(lenRow, gen.Lit(1))}, gen.Lit(2)), gen.Lit(tileX)),
			Then: gen.Div(gen.Paren{E: gen.Sub(lenRow, gen.Lit(1))}, gen.Lit(2)),
			Else: gen.Lit(tileX),
		}
		leftColStartInit = gen.Add(gen.Mul(gen.Literal("blockIdx.x"), tileSize), gen.Lit(1))
		rowLimitInit = gen.Ternary{
			Cond: gen.Eq(dim, gen.Lit(2)),
			Then: lengths.At(gen.Lit(1)),
			Else: gen.Mul(lengths.At(gen.Lit(1)), lengths.At(gen.Lit(2))),
		}
		rowStartInit = gen.Mul(gen.Literal("blockIdx.y"), gen.Lit(tileY))
		rowEndInit = gen.Add(gen.Lit(tileY), rowStart)
	} else {
		f.Body.Add(gen.Comment{
			"take middle dimension and partition it into lengths that will go into each tile",
			"note that last row effectively gets thrown away",
		})
		lenRowInit = gen.Ternary{
			Cond: gen.Eq(dim, gen.Lit(2)),
			Then: gen.Sub(lengths.At(gen.Lit(1)), gen.Lit(1)),
			Else: gen.Sub(lengths.At(gen.Lit(2)), gen.Lit(1)),
		}
		tileSizeInit = gen.Ternary{
			Cond: gen.Lt(gen.Div(gen.Paren{E: gen.Sub(lenRow, gen.Lit(1))}, gen.Lit(2)), gen.Lit(tileY)),
			Then: gen.Div(gen.Paren{E: gen.Sub(lenRow, gen.Lit(1))}, gen.Lit(2)),
			Else: gen.Lit(tileY),
		}
		leftColStartInit = gen.Add(gen.Mul(gen.Literal("blockIdx.y"), tileSize), gen.Lit(1))
		rowLimitInit = gen.Ternary{
			Cond: gen.Eq(dim, gen.Lit(2)),
			Then: lengths.At(gen.Lit(0)),
			Else: gen.Mul(lengths.At(gen.Lit(0)), lengths.At(gen.Lit(1))),
		}
		rowStartInit = gen.Mul(gen.Literal("blockIdx.x"), gen.Lit(tileX))
		rowEndInit = gen.Add(gen.Lit(tileX), rowStart)
	}

	f.Body.Add(gen.Declaration{Var: lenRow, Init: lenRowInit})
	f.Body.Add(gen.Comment{
		"size of a complete tile for this problem - ignore the first",
		"element and middle element (if there is one).  those are",
		"treated specially",
	})
	f.Body.Add(gen.Declaration{Var: tileSize, Init: tileSizeInit})
	f.Body.Add(gen.Comment{
		"first column to read into the left tile, offset by one because",
		"first element is already handled",
	})
	f.Body.Add(gen.Declaration{Var: leftColStart, Init: leftColStartInit})
	f.Body.Add(gen.Declaration{Var: middle, Init: gen.Div(gen.Paren{E: gen.Add(lenRow, gen.Lit(1))}, gen.Lit(2))})

	f.Body.Add(gen.Comment{
		"number of columns to actually read into the tile (can be less",
		"than tile size if we're out of data)",
	})
	f.Body.Add(gen.Declaration{Var: colsToRead, Init: tileSize})

	f.Body.Add(gen.Comment{"maximum number of rows in the problem"})
	f.Body.Add(gen.Declaration{Var: rowLimit, Init: rowLimitInit})

	f.Body.Add(gen.Comment{"start+end of range this thread will work on"})
	f.Body.Add(gen.Declaration{Var: rowStart, Init: rowStartInit})
	f.Body.Add(gen.Declaration{Var: rowEnd, Init: rowEndInit})

	clampEnd := gen.If{Cond: gen.Gt(rowEnd, rowLimit)}
	clampEnd.Then.Add(gen.Assign{Dst: rowEnd, Src: rowLimit})
	f.Body.Add(clampEnd)

	clampCols := gen.If{Cond: gen.Ge(gen.Add(leftColStart, tileSize), middle)}
	clampCols.Then.Add(gen.Assign{Dst: colsToRead, Src: gen.Sub(middle, leftColStart)})
	f.Body.Add(clampCols)

	ldsRow := gen.Variable{Name: "lds_row", Type: "const size_t"}
	ldsCol := gen.Variable{Name: "lds_col", Type: "const size_t"}
	val := gen.Variable{Name: "val", Type: "scalar_type"}
	firstElem := gen.Variable{Name: "first_elem", Type: "scalar_type"}
	middleElem := gen.Variable{Name: "middle_elem", Type: "scalar_type"}
	lastElem := gen.Variable{Name: "last_elem", Type: "scalar_type"}

	f.Body.Add(gen.Declaration{Var: ldsRow, Init: gen.Literal("threadIdx.y")})
	f.Body.Add(gen.Declaration{Var: ldsCol, Init: gen.Literal("threadIdx.x")})

	var readCondition, readLeftIdx, readRightIdx gen.Expr
	var readFirstCondition, readFirstIdx, readMiddleIdx, readLastIdx gen.Expr
	var writeCondition gen.Expr
	var computeFirstVal, computeMiddleVal, computeLastVal gen.StatementList
	var writeFirstIdx, writeMiddleIdx, writeLastIdx gen.Expr

	if isR2C {
		inputRowIdx := gen.Variable{Name: "input_row_idx", Type: "const size_t"}
		inputRowBase := gen.Variable{Name: "input_row_base", Type: "size_t"}
		f.Body.Add(gen.Declaration{Var: inputRowIdx, Init: gen.Add(rowStart, ldsRow)})
		f.Body.Add(gen.Declaration{Var: inputRowBase, Init: gen.Mul(gen.Mod(inputRowIdx, lengths.At(gen.Lit(1))), inStride.At(gen.Lit(1)))})
		higherDim := gen.If{Cond: gen.Gt(dim, gen.Lit(2))}
		higherDim.Then.Add(gen.AddAssign(inputRowBase, gen.Mul(gen.Div(inputRowIdx, lengths.At(gen.Lit(1))), inStride.At(gen.Lit(2)))))
		f.Body.Add(higherDim)

		readCondition = gen.And(gen.Lt(gen.Add(rowStart, ldsRow), rowEnd), gen.Lt(ldsCol, colsToRead))
		readLeftIdx = gen.Add(inputBatchStart, inputRowBase, leftColStart, ldsCol)
		readRightIdx = gen.Add(inputBatchStart, inputRowBase,
			gen.Paren{E: gen.Sub(lenRow, gen.Paren{E: gen.Sub(gen.Add(leftColStart, colsToRead), gen.Lit(1))})}, ldsCol)
		readFirstCondition = gen.And(
			gen.Eq(gen.Literal("blockIdx.x"), gen.Lit(0)),
			gen.Eq(gen.Literal("threadIdx.x"), gen.Lit(0)),
			gen.Lt(gen.Add(rowStart, ldsRow), rowEnd))
		readFirstIdx = gen.Add(inputBatchStart, inputRowBase)
		readMiddleIdx = gen.Add(inputBatchStart, inputRowBase, gen.Div(lenRow, gen.Lit(2)))

		writeCondition = readFirstCondition

		computeFirstVal.Add(gen.Assign{Dst: val.X(), Src: gen.Sub(firstElem.X(), firstElem.Y())})
		computeFirstVal.Add(gen.Assign{Dst: val.Y(), Src: gen.Literal("0.0")})
		writeFirstIdx = gen.Add(
			gen.Call{Name: "output_row_base", Args: []gen.Expr{dim, outputBatchStart, outStride, lenRow}},
			rowStart, ldsRow)

		computeMiddleVal.Add(gen.Assign{Dst: val.X(), Src: middleElem.X()})
		computeMiddleVal.Add(gen.Assign{Dst: val.Y(), Src: gen.Neg(middleElem.Y())})
		writeMiddleIdx = gen.Add(
			gen.Call{Name: "output_row_base", Args: []gen.Expr{dim, outputBatchStart, outStride, middle}},
			rowStart, ldsRow)

		computeLastVal.Add(gen.Assign{Dst: val.X(), Src: gen.Add(firstElem.X(), firstElem.Y())})
		computeLastVal.Add(gen.Assign{Dst: val.Y(), Src: gen.Literal("0.0")})
		writeLastIdx = gen.Add(
			gen.Call{Name: "output_row_base", Args: []gen.Expr{dim, outputBatchStart, outStride, gen.Lit(0)}},
			rowStart, ldsRow)
	} else {
		inputColBase := gen.Variable{Name: "input_col_base", Type: "const size_t"}
		inputColStride := gen.Variable{Name: "input_col_stride", Type: "const size_t"}
		outputRowBase := gen.Variable{Name: "output_row_base", Type: "const size_t"}
		outputRowStride := gen.Variable{Name: "output_row_stride", Type: "const size_t"}

		f.Body.Add(gen.Declaration{Var: inputColBase, Init: gen.Add(
			gen.Mul(gen.Mod(gen.Paren{E: gen.Add(rowStart, ldsCol)}, lengths.At(gen.Lit(0))), inStride.At(gen.Lit(0))),
			gen.Mul(gen.Div(gen.Paren{E: gen.Add(rowStart, ldsCol)}, lengths.At(gen.Lit(0))), inStride.At(gen.Lit(1))))})
		f.Body.Add(gen.Declaration{Var: inputColStride, Init: gen.Ternary{
			Cond: gen.Eq(dim, gen.Lit(2)), Then: inStride.At(gen.Lit(1)), Else: inStride.At(gen.Lit(2))}})

		f.Body.Add(gen.Declaration{Var: outputRowBase, Init: gen.Add(
			gen.Mul(gen.Mod(gen.Paren{E: gen.Add(rowStart, ldsCol)}, lengths.At(gen.Lit(0))), outStride.At(gen.Lit(1))),
			gen.Mul(gen.Div(gen.Paren{E: gen.Add(rowStart, ldsCol)}, lengths.At(gen.Lit(0))), outStride.At(gen.Lit(2))))})
		f.Body.Add(gen.Declaration{Var: outputRowStride, Init: outStride.At(gen.Lit(0))})

		readCondition = gen.And(gen.Lt(gen.Add(rowStart, ldsCol), rowEnd), gen.Lt(ldsRow, colsToRead))
		readLeftIdx = gen.Add(inputBatchStart, inputColBase,
			gen.Mul(gen.Paren{E: gen.Add(leftColStart, ldsRow)}, inputColStride))
		readRightIdx = gen.Add(inputBatchStart, inputColBase,
			gen.Mul(gen.Paren{E: gen.Sub(lenRow, gen.Paren{E: gen.Add(leftColStart, ldsRow)})}, inputColStride))
		readFirstCondition = gen.And(
			gen.Eq(gen.Literal("blockIdx.y"), gen.Lit(0)),
			gen.Eq(gen.Literal("threadIdx.y"), gen.Lit(0)),
			gen.Lt(gen.Add(rowStart, ldsCol), rowEnd))
		readFirstIdx = gen.Add(inputBatchStart, inputColBase)
		readMiddleIdx = gen.Add(inputBatchStart, inputColBase, gen.Mul(middle, inputColStride))
		readLastIdx = gen.Add(inputBatchStart, inputColBase, gen.Mul(lenRow, inputColStride))

		writeCondition = readFirstCondition

		computeFirstVal.Add(gen.Assign{Dst: val.X(), Src: gen.Add(firstElem.X(), lastElem.X())})
		computeFirstVal.Add(gen.Assign{Dst: val.Y(), Src: gen.Sub(firstElem.X(), lastElem.X())})
		writeFirstIdx = gen.Add(outputBatchStart, outputRowBase)

		computeMiddleVal.Add(gen.Assign{Dst: val.X(), Src: gen.Mul(gen.Literal("2.0"), middleElem.X())})
		computeMiddleVal.Add(gen.Assign{Dst: val.Y(), Src: gen.Mul(gen.Literal("-2.0"), middleElem.Y())})
		writeMiddleIdx = gen.Add(outputBatchStart, outputRowBase, gen.Mul(middle, outputRowStride))
	}

	f.Body.Add(callbackLoadDecl("scalar_type", specs.CallbackType))
	f.Body.Add(callbackStoreDecl("scalar_type", specs.CallbackType, specs.StoreOps.Enabled()))

	f.Body.Add(gen.Declaration{Var: val})

	readBlock := gen.If{Cond: readCondition}
	readBlock.Then.Add(gen.Assign{Dst: val, Src: gen.LoadGlobal{Ptr: input, Idx: readLeftIdx}})
	readBlock.Then.Add(gen.Assign{Dst: leftTile.At2(ldsCol, ldsRow), Src: val})
	readBlock.Then.Add(gen.Assign{Dst: val, Src: gen.LoadGlobal{Ptr: input, Idx: readRightIdx}})
	readBlock.Then.Add(gen.Assign{Dst: rightTile.At2(ldsCol, ldsRow), Src: val})
	f.Body.Add(readBlock)

	f.Body.Add(gen.Declaration{Var: firstElem})
	f.Body.Add(gen.Declaration{Var: middleElem})
	if !isR2C {
		f.Body.Add(gen.Declaration{Var: lastElem})
	}

	readFirstBlock := gen.If{Cond: readFirstCondition}
	readFirstBlock.Then.Add(gen.Assign{Dst: firstElem, Src: gen.LoadGlobal{Ptr: input, Idx: readFirstIdx}})
	readMid := gen.If{Cond: gen.Eq(gen.Mod(lenRow, gen.Lit(2)), gen.Lit(0))}
	readMid.Then.Add(gen.Assign{Dst: middleElem, Src: gen.LoadGlobal{Ptr: input, Idx: readMiddleIdx}})
	readFirstBlock.Then.Add(readMid)
	if !isR2C {
		readFirstBlock.Then.Add(gen.Assign{Dst: lastElem, Src: gen.LoadGlobal{Ptr: input, Idx: readLastIdx}})
	}

	f.Body.Add(gen.Comment{
		"handle first + middle element (if there is a middle),",
		"and last element (for c2r)",
	})
	f.Body.Add(readFirstBlock)
	f.Body.Add(gen.SyncThreads{})

	f.Body.Add(gen.Comment{"write first + middle"})
	writeFirstBlock := gen.If{Cond: writeCondition}
	writeFirstBlock.Then = append(writeFirstBlock.Then, computeFirstVal...)
	writeFirstBlock.Then.Add(gen.StoreGlobal{Ptr: output, Idx: writeFirstIdx, Val: val})
	// only r2c writes the "last" value
	if isR2C {
		writeFirstBlock.Then = append(writeFirstBlock.Then, computeLastVal...)
		writeFirstBlock.Then.Add(gen.StoreGlobal{Ptr: output, Idx: writeLastIdx, Val: val})
	}

	writeMiddleBlock := gen.If{Cond: gen.Eq(gen.Mod(lenRow, gen.Lit(2)), gen.Lit(0))}
	writeMiddleBlock.Then = append(writeMiddleBlock.Then, computeMiddleVal...)
	writeMiddleBlock.Then.Add(gen.StoreGlobal{Ptr: output, Idx: writeMiddleIdx, Val: val})
	writeFirstBlock.Then.Add(writeMiddleBlock)

	f.Body.Add(writeFirstBlock)

	f.Body.Add(gen.Comment{
		"butterfly the two tiles we've collected (offset col by one",
		"because first element is special)",
	})

	p := gen.Variable{Name: "p", Type: "const scalar_type"}
	q := gen.Variable{Name: "q", Type: "const scalar_type"}
	u := gen.Variable{Name: "u", Type: "const scalar_type"}
	v := gen.Variable{Name: "v", Type: "const scalar_type"}
	twdP := gen.Variable{Name: "twd_p", Type: "const auto"}
	if isR2C {
		col := gen.Variable{Name: "col", Type: "size_t"}

		butterfly := gen.If{Cond: gen.And(gen.Lt(gen.Add(rowStart, ldsRow), rowEnd), gen.Lt(ldsCol, colsToRead))}
		butterfly.Then.Add(gen.Declaration{Var: col,
			Init: gen.Add(gen.Mul(gen.Literal("blockIdx.x"), tileSize), gen.Lit(1), gen.Literal("threadIdx.x"))})

		butterfly.Then.Add(gen.Declaration{Var: p, Init: leftTile.At2(ldsCol, ldsRow)})
		butterfly.Then.Add(gen.Declaration{Var: q, Init: rightTile.At2(gen.Sub(gen.Sub(colsToRead, ldsCol), gen.Lit(1)), ldsRow)})
		butterfly.Then.Add(gen.Declaration{Var: u, Init: gen.Mul(gen.Literal("0.5"), gen.Paren{E: gen.Add(p, q)})})
		butterfly.Then.Add(gen.Declaration{Var: v, Init: gen.Mul(gen.Literal("0.5"), gen.Paren{E: gen.Sub(p, q)})})

		butterfly.Then.Add(gen.Declaration{Var: twdP, Init: twiddles.At(col)})
		butterfly.Then.Add(gen.Comment{"NB: twd_q = -conj(twd_p) = (-twd_p.x, twd_p.y)"})

		butterfly.Then.Add(gen.Comment{"write left side"})
		butterfly.Then.Add(gen.Assign{Dst: val.X(), Src: gen.Add(u.X(), gen.Mul(v.X(), twdP.Y()), gen.Mul(u.Y(), twdP.X()))})
		butterfly.Then.Add(gen.Assign{Dst: val.Y(), Src: gen.Sub(gen.Add(v.Y(), gen.Mul(u.Y(), twdP.Y())), gen.Mul(v.X(), twdP.X()))})
		butterfly.Then.Add(gen.StoreGlobal{Ptr: output,
			Idx: gen.Add(
				gen.Call{Name: "output_row_base", Args: []gen.Expr{dim, outputBatchStart, outStride, col}},
				rowStart, ldsRow),
			Val: val})

		butterfly.Then.Add(gen.Comment{"write right side"})
		butterfly.Then.Add(gen.Assign{Dst: val.X(), Src: gen.Sub(gen.Sub(u.X(), gen.Mul(v.X(), twdP.Y())), gen.Mul(u.Y(), twdP.X()))})
		butterfly.Then.Add(gen.Assign{Dst: val.Y(), Src: gen.Sub(gen.Add(gen.Neg(v.Y()), gen.Mul(u.Y(), twdP.Y())), gen.Mul(v.X(), twdP.X()))})
		butterfly.Then.Add(gen.StoreGlobal{Ptr: output,
			Idx: gen.Add(
				gen.Call{Name: "output_row_base", Args: []gen.Expr{dim, outputBatchStart, outStride, gen.Sub(lenRow, col)}},
				rowStart, ldsRow),
			Val: val})

		f.Body.Add(butterfly)
	} else {
		outputRowBase := gen.Variable{Name: "output_row_base", Type: "const size_t"}
		outputRowStride := gen.Variable{Name: "output_row_stride", Type: "const size_t"}

		butterfly := gen.If{Cond: gen.And(gen.Lt(gen.Add(rowStart, ldsCol), rowEnd), gen.Lt(ldsRow, colsToRead))}

		butterfly.Then.Add(gen.Declaration{Var: p, Init: leftTile.At2(ldsCol, ldsRow)})
		butterfly.Then.Add(gen.Declaration{Var: q, Init: rightTile.At2(ldsCol, ldsRow)})
		butterfly.Then.Add(gen.Declaration{Var: u, Init: gen.Add(p, q)})
		butterfly.Then.Add(gen.Declaration{Var: v, Init: gen.Sub(p, q)})

		butterfly.Then.Add(gen.Declaration{Var: twdP, Init: twiddles.At(gen.Add(leftColStart, ldsRow))})

		butterfly.Then.Add(gen.Comment{"write top side"})
		butterfly.Then.Add(gen.Assign{Dst: val.X(), Src: gen.Sub(gen.Add(u.X(), gen.Mul(v.X(), twdP.Y())), gen.Mul(u.Y(), twdP.X()))})
		butterfly.Then.Add(gen.Assign{Dst: val.Y(), Src: gen.Add(v.Y(), gen.Mul(u.Y(), twdP.Y()), gen.Mul(v.X(), twdP.X()))})
		butterfly.Then.Add(gen.StoreGlobal{Ptr: output,
			Idx: gen.Add(outputBatchStart, outputRowBase,
				gen.Mul(gen.Paren{E: gen.Add(leftColStart, ldsRow)}, outputRowStride)),
			Val: val})

		butterfly.Then.Add(gen.Comment{"write bottom side"})
		butterfly.Then.Add(gen.Assign{Dst: val.X(), Src: gen.Add(gen.Sub(u.X(), gen.Mul(v.X(), twdP.Y())), gen.Mul(u.Y(), twdP.X()))})
		butterfly.Then.Add(gen.Assign{Dst: val.Y(), Src: gen.Add(gen.Neg(v.Y()), gen.Mul(u.Y(), twdP.Y()), gen.Mul(v.X(), twdP.X()))})
		butterfly.Then.Add(gen.StoreGlobal{Ptr: output,
			Idx: gen.Add(outputBatchStart, outputRowBase,
				gen.Mul(gen.Paren{E: gen.Sub(lenRow, gen.Paren{E: gen.Add(leftColStart, ldsRow)})}, outputRowStride)),
			Val: val})
		f.Body.Add(butterfly)
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
