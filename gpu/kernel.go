package gpu

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Kernel is a compiled kernel handle: a loaded module plus resolved
// entry point and default launch geometry. The handle is exclusively
// owned by whichever plan requested it; the cached code object behind
// it is shared and outlives any single handle.
type Kernel struct {
	Name     string
	GridDim  Dim3
	BlockDim Dim3

	module Module
	fn     Function
	closed bool
}

// NewKernel loads the code object on the backend's current device and
// resolves the entry point. Construction is all-or-nothing: a module
// that loads but lacks the entry point is unloaded before returning.
func NewKernel(b Backend, name string, code []byte, grid, block Dim3) (*Kernel, error) {
	if len(code) == 0 {
		return nil, errors.Wrap(ErrEmptyCode, name)
	}
	mod, err := b.LoadModule(code)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load module for %s", name)
	}
	fn, err := mod.Function(name)
	if err != nil {
		err = errors.Wrapf(err, "failed to get function %s", name)
		return nil, multierr.Append(err, mod.Unload())
	}
	return &Kernel{
		Name:     name,
		GridDim:  grid,
		BlockDim: block,
		module:   mod,
		fn:       fn,
	}, nil
}

// checkLaunchLimits validates geometry and shared memory against device
// limits so that an oversized launch never reaches the driver.
func checkLaunchLimits(name string, grid, block Dim3, sharedBytes uint32, props DeviceProperties) error {
	threads := block.Total()
	if threads == 0 || grid.Total() == 0 {
		return errors.Wrapf(ErrLaunchLimits, "%s: zero launch extent", name)
	}
	if threads > uint64(props.MaxThreadsPerBlock) {
		return errors.Wrapf(ErrLaunchLimits, "%s: %d threads per block, max %d",
			name, threads, props.MaxThreadsPerBlock)
	}
	if block.X > props.MaxBlockDim.X || block.Y > props.MaxBlockDim.Y || block.Z > props.MaxBlockDim.Z {
		return errors.Wrapf(ErrLaunchLimits, "%s: block (%d,%d,%d) exceeds (%d,%d,%d)",
			name, block.X, block.Y, block.Z,
			props.MaxBlockDim.X, props.MaxBlockDim.Y, props.MaxBlockDim.Z)
	}
	if grid.X > props.MaxGridDim.X || grid.Y > props.MaxGridDim.Y || grid.Z > props.MaxGridDim.Z {
		return errors.Wrapf(ErrLaunchLimits, "%s: grid (%d,%d,%d) exceeds (%d,%d,%d)",
			name, grid.X, grid.Y, grid.Z,
			props.MaxGridDim.X, props.MaxGridDim.Y, props.MaxGridDim.Z)
	}
	if sharedBytes > props.SharedMemPerBlock {
		return errors.Wrapf(ErrLaunchLimits, "%s: %d shared bytes, max %d",
			name, sharedBytes, props.SharedMemPerBlock)
	}
	return nil
}

// Launch validates geometry against the device and enqueues the kernel.
func (k *Kernel) Launch(args *ArgBuffer, grid, block Dim3, sharedBytes uint32, props DeviceProperties, stream Stream) error {
	if k.closed || k.fn == nil {
		return errors.Wrap(ErrKernelClosed, k.Name)
	}
	if err := checkLaunchLimits(k.Name, grid, block, sharedBytes, props); err != nil {
		return err
	}
	if err := k.fn.Launch(args, grid, block, sharedBytes, stream); err != nil {
		return errors.Wrapf(err, "launch failure for %s", k.Name)
	}
	return nil
}

// LaunchDefault launches with the geometry resolved at generation time.
func (k *Kernel) LaunchDefault(args *ArgBuffer, sharedBytes uint32, props DeviceProperties, stream Stream) error {
	return k.Launch(args, k.GridDim, k.BlockDim, sharedBytes, props, stream)
}

// Occupancy reports how many thread blocks of the given shape can be
// resident per multiprocessor.
func (k *Kernel) Occupancy(block Dim3, sharedBytes uint32) (int, error) {
	if k.closed || k.fn == nil {
		return 0, errors.Wrap(ErrKernelClosed, k.Name)
	}
	return k.fn.MaxActiveBlocks(uint32(block.Total()), sharedBytes)
}

// Close releases the loaded module. Safe to call more than once.
func (k *Kernel) Close() error {
	if k.closed {
		return nil
	}
	k.closed = true
	k.fn = nil
	if k.module == nil {
		return nil
	}
	err := k.module.Unload()
	k.module = nil
	return err
}
