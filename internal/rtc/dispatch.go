package rtc

import (
	"github.com/pkg/errors"
	"github.com/samjwu/rocFFT/gpu"
	"github.com/samjwu/rocFFT/internal/fftypes"
)

// transposeTileX and transposeTileY shape the thread block of the tiled
// transpose family. The logical tile is transposeTileX square.
const (
	transposeTileX = 64
	transposeTileY = 16
)

// Generator describes how one transform stage is realized as a
// runtime-compiled kernel: its name, launch geometry, a source
// closure, and an argument builder. The zero Generator means "this
// family does not serve the stage".
type Generator struct {
	Name     string
	GridDim  gpu.Dim3
	BlockDim gpu.Dim3

	// Source renders kernel source for the generated name. nil for
	// pre-compiled entries.
	Source func(name string) (string, error)
	// Args packs launch arguments for one execution of the kernel.
	Args func(exec ExecInfo) (*gpu.ArgBuffer, error)

	// PreCompiled marks stages served by a kernel shipped with the
	// library rather than generated at runtime.
	PreCompiled bool
}

// Valid reports whether the generator produces a runtime-compiled
// kernel.
func (g Generator) Valid() bool { return g.Source != nil }

// Family is one entry of the dispatch chain.
type Family struct {
	Name     string
	Generate func(stage *fftypes.Stage, enableCallbacks bool) (Generator, error)
}

// Families is the dispatch chain, tried in order. Families are mutually
// exclusive on scheme, so ordering is a determinism guarantee rather
// than a correctness one.
var Families = []Family{
	{Name: "stockham", Generate: generateStockham},
	{Name: "transpose", Generate: generateTranspose},
	{Name: "realcomplex", Generate: generateRealComplex},
	{Name: "realcomplex_even", Generate: generateRealComplexEven},
	{Name: "realcomplex_even_transpose", Generate: generateRealComplexEvenTranspose},
	{Name: "bluestein_single", Generate: generateBluesteinSingle},
	{Name: "bluestein_multi", Generate: generateBluesteinMulti},
}

// GenerateFromStage walks the dispatch chain and returns the first
// family's generator for the stage. A zero-valued generator with nil
// error means no family serves the stage and the caller must fall back
// to a statically linked kernel.
func GenerateFromStage(stage *fftypes.Stage, enableCallbacks bool) (Generator, error) {
	for _, fam := range Families {
		g, err := fam.Generate(stage, enableCallbacks)
		if err != nil {
			return Generator{}, errors.Wrapf(err, "%s generator", fam.Name)
		}
		if g.Valid() || g.PreCompiled {
			return g, nil
		}
	}
	return Generator{}, nil
}

func divRoundingUp(a, b uint) uint32 {
	return uint32((a + b - 1) / b)
}

// generateStockham recognizes the multi-stage FFT schemes. Those are
// served by kernels shipped pre-compiled with the library, so the
// entry resolves without producing source.
func generateStockham(stage *fftypes.Stage, _ bool) (Generator, error) {
	switch stage.Scheme {
	case fftypes.SchemeStockham, fftypes.SchemeStockhamBlockCC,
		fftypes.SchemeStockhamBlockRC, fftypes.SchemeStockhamBlockCR:
		return Generator{Name: "stockham_" + stage.Scheme.String(), PreCompiled: true}, nil
	default:
		return Generator{}, nil
	}
}

func generateBluesteinSingle(stage *fftypes.Stage, _ bool) (Generator, error) {
	if stage.Scheme != fftypes.SchemeBluesteinSingle {
		return Generator{}, nil
	}
	return Generator{Name: "bluestein_single", PreCompiled: true}, nil
}

func generateBluesteinMulti(stage *fftypes.Stage, _ bool) (Generator, error) {
	if stage.Scheme != fftypes.SchemeBluesteinMulti {
		return Generator{}, nil
	}
	return Generator{Name: "bluestein_multi", PreCompiled: true}, nil
}

func generateRealComplex(stage *fftypes.Stage, enableCallbacks bool) (Generator, error) {
	switch stage.Scheme {
	case fftypes.SchemeCopyRealToComplex, fftypes.SchemeCopyComplexToHerm,
		fftypes.SchemeCopyComplexToReal, fftypes.SchemeCopyHermToComplex:
	default:
		return Generator{}, nil
	}

	// input size is the innermost dimension; hermitian size is used for
	// the hermitian->complex copy
	inputSize := stage.Lengths[0]
	if stage.Scheme == fftypes.SchemeCopyHermToComplex {
		if len(stage.OutputLengths) == 0 {
			return Generator{}, errors.New("hermitian->complex stage missing output lengths")
		}
		inputSize = stage.OutputLengths[0]/2 + 1
	}
	elems := stage.ElemsTotal(inputSize)

	specs := RealComplexSpecs{
		Scheme:       stage.Scheme,
		Dim:          stage.Dim(),
		Precision:    stage.Precision,
		InArrayType:  stage.InArrayType,
		OutArrayType: stage.OutArrayType,
		CallbackType: stage.CallbackType(enableCallbacks),
		LoadOps:      stage.LoadOps,
		StoreOps:     stage.StoreOps,
	}
	name, err := RealComplexKernelName(specs)
	if err != nil {
		return Generator{}, err
	}

	stageCopy := *stage
	return Generator{
		Name:     name,
		GridDim:  gpu.Dim3{X: divRoundingUp(elems, launchBoundsR2CC2RKernel), Y: 1, Z: 1},
		BlockDim: gpu.Dim3{X: launchBoundsR2CC2RKernel, Y: 1, Z: 1},
		Source: func(kernelName string) (string, error) {
			return RealComplexSource(kernelName, specs)
		},
		Args: func(exec ExecInfo) (*gpu.ArgBuffer, error) {
			return realComplexArgs(&stageCopy, exec)
		},
	}, nil
}

func generateRealComplexEven(stage *fftypes.Stage, enableCallbacks bool) (Generator, error) {
	switch stage.Scheme {
	case fftypes.SchemeRealToComplexEven, fftypes.SchemeComplexToRealEven:
	default:
		return Generator{}, nil
	}

	var halfN uint
	if stage.Scheme == fftypes.SchemeRealToComplexEven {
		// the plan provides N/2 here, the regular complex fft size
		halfN = stage.Lengths[0]
	} else {
		// length on the stage is the complex fft size; halfN is half of
		// the real size
		halfN = stage.Lengths[0] - 1
	}
	nDiv4 := halfN%2 == 0

	highDimension := uint(1)
	for _, l := range stage.Lengths[1:] {
		highDimension *= l
	}
	blocks := divRoundingUp((halfN+1)/2, launchBoundsR2CC2RKernel)

	specs := RealComplexEvenSpecs{
		RealComplexSpecs: RealComplexSpecs{
			Scheme:       stage.Scheme,
			Dim:          stage.Dim(),
			Precision:    stage.Precision,
			InArrayType:  stage.InArrayType,
			OutArrayType: stage.OutArrayType,
			CallbackType: stage.CallbackType(enableCallbacks),
			LoadOps:      stage.LoadOps,
			StoreOps:     stage.StoreOps,
		},
		NDiv4: nDiv4,
	}
	name, err := RealComplexEvenKernelName(specs)
	if err != nil {
		return Generator{}, err
	}

	stageCopy := *stage
	return Generator{
		Name:     name,
		GridDim:  gpu.Dim3{X: blocks, Y: uint32(highDimension), Z: uint32(stage.Batch)},
		BlockDim: gpu.Dim3{X: launchBoundsR2CC2RKernel, Y: 1, Z: 1},
		Source: func(kernelName string) (string, error) {
			return RealComplexEvenSource(kernelName, specs)
		},
		Args: func(exec ExecInfo) (*gpu.ArgBuffer, error) {
			return realComplexEvenArgs(&stageCopy, halfN, exec)
		},
	}, nil
}

func generateRealComplexEvenTranspose(stage *fftypes.Stage, enableCallbacks bool) (Generator, error) {
	switch stage.Scheme {
	case fftypes.SchemeRealToComplexEvenTranspose, fftypes.SchemeTransposeComplexToRealEven:
	default:
		return Generator{}, nil
	}
	if stage.Dim() < 2 {
		return Generator{}, errors.New("even-transpose stage must be at least 2D")
	}

	specs := RealComplexEvenTransposeSpecs{
		RealComplexSpecs: RealComplexSpecs{
			Scheme:       stage.Scheme,
			Dim:          stage.Dim(),
			Precision:    stage.Precision,
			InArrayType:  stage.InArrayType,
			OutArrayType: stage.OutArrayType,
			CallbackType: stage.CallbackType(enableCallbacks),
			LoadOps:      stage.LoadOps,
			StoreOps:     stage.StoreOps,
		},
	}
	tileX := uint(specs.TileX())
	tileY := uint(specs.TileY())

	count := stage.Batch
	m := stage.Lengths[1]
	n := stage.Lengths[0]
	dim := stage.Dim()

	var grid gpu.Dim3
	if stage.Scheme == fftypes.SchemeRealToComplexEvenTranspose {
		// grid X handles 2 tiles at a time, so allocate enough blocks to
		// go halfway across n.
		//
		// grid Y needs enough blocks to cover the second dimension,
		// multiplied by the third dimension if we're doing 3D.
		//
		// grid Z counts batches.
		y := (m-1)/tileY + 1
		if dim > 2 {
			y *= stage.Lengths[2]
		}
		grid = gpu.Dim3{X: uint32((n-1)/tileX/2 + 1), Y: uint32(y), Z: uint32(count)}
	} else {
		// grid X needs enough blocks to cover the first dimension,
		// multiplied by the second dimension if we're doing 3D
		if dim > 2 {
			n *= stage.Lengths[1]
			m = stage.Lengths[2]
		}
		// grid Y handles 2 tiles at a time, so allocate enough blocks to
		// go halfway across m
		gridY := ((m-1)/2 + (tileY - 1)) / tileY
		if gridY == 0 {
			gridY = 1
		}
		grid = gpu.Dim3{X: uint32((n-1)/tileX + 1), Y: uint32(gridY), Z: uint32(count)}
	}

	name, err := RealComplexEvenTransposeKernelName(specs)
	if err != nil {
		return Generator{}, err
	}

	stageCopy := *stage
	return Generator{
		Name:     name,
		GridDim:  grid,
		BlockDim: gpu.Dim3{X: uint32(tileX), Y: uint32(tileY), Z: 1},
		Source: func(kernelName string) (string, error) {
			return RealComplexEvenTransposeSource(kernelName, specs)
		},
		Args: func(exec ExecInfo) (*gpu.ArgBuffer, error) {
			return realComplexEvenTransposeArgs(&stageCopy, exec)
		},
	}, nil
}

func generateTranspose(stage *fftypes.Stage, enableCallbacks bool) (Generator, error) {
	switch stage.Scheme {
	case fftypes.SchemeTranspose, fftypes.SchemeTransposeXYZ, fftypes.SchemeTransposeZXY:
	default:
		return Generator{}, nil
	}
	if stage.Dim() < 2 {
		return Generator{}, errors.New("transpose stage must be at least 2D")
	}

	specs := TransposeSpecs{
		TileX:             transposeTileX,
		TileY:             transposeTileY,
		Dim:               stage.Dim(),
		Precision:         stage.Precision,
		InArrayType:       stage.InArrayType,
		OutArrayType:      stage.OutArrayType,
		CallbackType:      stage.CallbackType(enableCallbacks),
		LargeTwdSteps:     stage.LargeTwdSteps,
		LargeTwdDirection: stage.LargeTwdDirection,
		Diagonal:          stage.Diagonal,
		TileAligned:       stage.TileAligned,
		LoadOps:           stage.LoadOps,
		StoreOps:          stage.StoreOps,
	}
	name := TransposeKernelName(specs)

	// the logical tile is TileX square: grid X covers the fastest
	// dimension, grid Y the row dimensions (dims 1 and 2), grid Z the
	// batch and any higher dimensions
	rows := stage.Lengths[1]
	if stage.Dim() > 2 {
		rows *= stage.Lengths[2]
	}
	z := stage.Batch
	if stage.Dim() > 3 {
		for _, l := range stage.Lengths[3:] {
			z *= l
		}
	}
	grid := gpu.Dim3{
		X: divRoundingUp(stage.Lengths[0], transposeTileX),
		Y: divRoundingUp(rows, transposeTileX),
		Z: uint32(z),
	}

	stageCopy := *stage
	return Generator{
		Name:     name,
		GridDim:  grid,
		BlockDim: gpu.Dim3{X: transposeTileX, Y: transposeTileY, Z: 1},
		Source: func(kernelName string) (string, error) {
			return TransposeSource(kernelName, specs)
		},
		Args: func(exec ExecInfo) (*gpu.ArgBuffer, error) {
			return transposeArgs(&stageCopy, exec)
		},
	}, nil
}
