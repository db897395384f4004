package commands

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/samjwu/rocFFT/internal/fftypes"
)

// stageFlags collects the flag values describing one transform stage.
type stageFlags struct {
	scheme    string
	precision string
	inType    string
	outType   string

	lengths    []uint
	outLengths []uint
	batch      uint
	inStride   []uint
	outStride  []uint
	idist      uint
	odist      uint

	largeTwdSteps     uint
	largeTwdDirection int
	diagonal          bool
	tileAligned       bool

	callbacks bool
	scale     float64
}

func addStageFlags(cmd *cobra.Command, f *stageFlags) {
	fl := cmd.Flags()
	fl.StringVar(&f.scheme, "scheme", "", "kernel scheme (e.g. copy_r_to_cmplx, transpose, r_to_cmplx_even)")
	fl.StringVar(&f.precision, "precision", "single", "single, double, or half")
	fl.StringVar(&f.inType, "in-type", "complex_interleaved", "input array type")
	fl.StringVar(&f.outType, "out-type", "complex_interleaved", "output array type")
	fl.UintSliceVar(&f.lengths, "length", nil, "per-dimension lengths, fastest first")
	fl.UintSliceVar(&f.outLengths, "out-length", nil, "output lengths where they differ from --length")
	fl.UintVar(&f.batch, "batch", 1, "batch count")
	fl.UintSliceVar(&f.inStride, "in-stride", nil, "input strides (default contiguous)")
	fl.UintSliceVar(&f.outStride, "out-stride", nil, "output strides (default contiguous)")
	fl.UintVar(&f.idist, "idist", 0, "input batch distance (default contiguous)")
	fl.UintVar(&f.odist, "odist", 0, "output batch distance (default contiguous)")
	fl.UintVar(&f.largeTwdSteps, "large-twd-steps", 0, "fused large-twiddle steps (transpose only)")
	fl.IntVar(&f.largeTwdDirection, "large-twd-direction", -1, "large-twiddle direction, -1 forward or 1 inverse")
	fl.BoolVar(&f.diagonal, "diagonal", false, "diagonal block ordering (transpose only)")
	fl.BoolVar(&f.tileAligned, "tile-aligned", false, "lengths are tile-aligned (transpose only)")
	fl.BoolVar(&f.callbacks, "callbacks", false, "generate user callback plumbing")
	fl.Float64Var(&f.scale, "scale", 0, "fused store scale factor (0 disables)")

	cobra.CheckErr(cmd.MarkFlagRequired("scheme"))
	cobra.CheckErr(cmd.MarkFlagRequired("length"))
}

// buildStage converts the flag values into a stage description,
// deriving contiguous strides and distances where not given.
func (f *stageFlags) buildStage() (*fftypes.Stage, error) {
	scheme, err := fftypes.ParseScheme(f.scheme)
	if err != nil {
		return nil, err
	}
	prec, err := fftypes.ParsePrecision(f.precision)
	if err != nil {
		return nil, err
	}
	inType, err := fftypes.ParseArrayType(f.inType)
	if err != nil {
		return nil, errors.Wrap(err, "--in-type")
	}
	outType, err := fftypes.ParseArrayType(f.outType)
	if err != nil {
		return nil, errors.Wrap(err, "--out-type")
	}
	if len(f.lengths) == 0 || len(f.lengths) > 3 {
		return nil, errors.Errorf("--length wants 1 to 3 dimensions, got %d", len(f.lengths))
	}
	if f.batch == 0 {
		return nil, errors.New("--batch must be positive")
	}

	inLens := f.lengths
	outLens := f.outLengths
	if len(outLens) == 0 {
		outLens = inLens
	}

	stage := &fftypes.Stage{
		Scheme:            scheme,
		Precision:         prec,
		Lengths:           inLens,
		OutputLengths:     outLens,
		Batch:             f.batch,
		InArrayType:       inType,
		OutArrayType:      outType,
		InStride:          f.inStride,
		OutStride:         f.outStride,
		IDist:             f.idist,
		ODist:             f.odist,
		LargeTwdSteps:     f.largeTwdSteps,
		LargeTwdDirection: f.largeTwdDirection,
		Diagonal:          f.diagonal,
		TileAligned:       f.tileAligned,
		StoreOps:          fftypes.StoreOps{ScaleFactor: f.scale},
	}
	if len(stage.InStride) == 0 {
		stage.InStride = contiguousStrides(inLens)
	}
	if len(stage.OutStride) == 0 {
		stage.OutStride = contiguousStrides(outLens)
	}
	if stage.IDist == 0 {
		stage.IDist = stage.InStride[len(stage.InStride)-1] * inLens[len(inLens)-1]
	}
	if stage.ODist == 0 {
		stage.ODist = stage.OutStride[len(stage.OutStride)-1] * outLens[len(outLens)-1]
	}
	return stage, nil
}

func contiguousStrides(lengths []uint) []uint {
	strides := make([]uint, len(lengths))
	acc := uint(1)
	for i, l := range lengths {
		strides[i] = acc
		acc *= l
	}
	return strides
}
