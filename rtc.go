package rocfft

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/samjwu/rocFFT/gpu"
	"github.com/samjwu/rocFFT/internal/cache"
	"github.com/samjwu/rocFFT/internal/config"
	"github.com/samjwu/rocFFT/internal/logging"
	"github.com/samjwu/rocFFT/internal/rtc"
)

// RTC is the runtime kernel-compilation service. It owns the compiled
// kernel cache, the target device, and the backend compiler. Construct
// it explicitly with NewRTC; there is no package-level instance.
type RTC struct {
	backend gpu.Backend
	cache   *cache.Cache
	cfg     *config.Config
	log     logrus.FieldLogger

	device int
	props  gpu.DeviceProperties

	mu     sync.Mutex
	closed bool
}

// Option configures an RTC service.
type Option func(*RTC)

// WithBackend substitutes the GPU backend. The default is the
// registered process-wide backend.
func WithBackend(b gpu.Backend) Option {
	return func(r *RTC) { r.backend = b }
}

// WithConfig supplies a loaded configuration. The default is
// config.DefaultConfig().
func WithConfig(cfg *config.Config) Option {
	return func(r *RTC) { r.cfg = cfg }
}

// WithLogger routes service logging to log. The default discards.
func WithLogger(log logrus.FieldLogger) Option {
	return func(r *RTC) { r.log = log }
}

// WithDevice selects the device index compiled kernels load onto.
func WithDevice(index int) Option {
	return func(r *RTC) { r.device = index }
}

// NewRTC constructs the service and verifies the target device exists.
func NewRTC(opts ...Option) (*RTC, error) {
	r := &RTC{}
	for _, opt := range opts {
		opt(r)
	}

	if r.cfg == nil {
		r.cfg = config.DefaultConfig()
	}
	if r.log == nil {
		r.log = logging.Discard()
	}
	if r.backend == nil {
		b, err := gpu.CurrentBackend()
		if err != nil {
			return nil, err
		}
		r.backend = b
	}

	devices, err := r.backend.Devices()
	if err != nil {
		return nil, errors.Wrap(err, "enumerating devices")
	}
	if r.device < 0 || r.device >= len(devices) {
		return nil, errors.Wrapf(ErrNoDevice, "device %d of %d", r.device, len(devices))
	}
	r.props = devices[r.device]

	copts := []cache.Option{cache.WithLogger(r.log)}
	if r.cfg.Cache.Dir != "" {
		store, err := cache.NewDurableStore(r.cfg.Cache.Dir)
		if err != nil {
			return nil, errors.Wrap(err, "opening durable kernel cache")
		}
		copts = append(copts, cache.WithDurableStore(store))
	}
	r.cache = cache.New(copts...)

	return r, nil
}

// Device reports the properties of the selected device.
func (r *RTC) Device() gpu.DeviceProperties { return r.props }

// CacheLen reports the number of code objects held in memory.
func (r *RTC) CacheLen() int { return r.cache.Len() }

// ClearCache drops all cached code objects, durable entries included.
func (r *RTC) ClearCache() error { return r.cache.Clear() }

// Close marks the service closed. Subsequent RuntimeCompile calls fail
// with ErrClosed. Kernels already handed out stay valid.
func (r *RTC) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// RuntimeCompile starts compilation of the kernel serving stage and
// returns immediately. The caller collects the result with
// Future.Kernel, overlapping compilation with the rest of plan
// construction.
//
// arch selects the target architecture; empty means the selected
// device's architecture. The compile.arch config key overrides both.
func (r *RTC) RuntimeCompile(stage *Stage, arch string, enableCallbacks bool) *Future {
	f := &Future{done: make(chan struct{})}

	if stage == nil {
		f.resolve(nil, ErrNilStage)
		return f
	}
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		f.resolve(nil, ErrClosed)
		return f
	}

	go r.compileWorker(f, stage, arch, enableCallbacks)
	return f
}

func (r *RTC) compileWorker(f *Future, stage *Stage, arch string, enableCallbacks bool) {
	gen, err := rtc.GenerateFromStage(stage, enableCallbacks)
	if err != nil {
		f.resolve(nil, err)
		return
	}
	if !gen.Valid() {
		// Precompiled families and unknown schemes fall back to the
		// statically linked kernels.
		f.resolve(nil, nil)
		return
	}

	// Pin the device before any driver interaction; compilation and
	// module loading are device-scoped.
	if err := r.backend.SetDevice(r.device); err != nil {
		f.resolve(nil, errors.Wrapf(err, "selecting device %d", r.device))
		return
	}

	if r.cfg.Compile.Arch != "" {
		arch = r.cfg.Compile.Arch
	} else if arch == "" {
		arch = r.props.Arch
	}

	id := cache.Identity{
		Kernel:           gen.Name,
		Arch:             arch,
		GeneratorVersion: rtc.GeneratorVersion,
	}
	code, err := r.cache.GetOrCompile(id, func() ([]byte, error) {
		src, err := gen.Source(gen.Name)
		if err != nil {
			return nil, err
		}
		return r.backend.Compiler().Compile(gen.Name, src, arch)
	})
	if err != nil {
		f.resolve(nil, errors.Wrapf(err, "compiling %s", gen.Name))
		return
	}

	if r.cfg.Compile.Only {
		// Cache warming without a usable device: the code object is
		// stored but never loaded.
		f.resolve(&CompiledKernel{gen: gen, props: r.props, log: r.log}, nil)
		return
	}

	k, err := gpu.NewKernel(r.backend, gen.Name, code, gen.GridDim, gen.BlockDim)
	if err != nil {
		f.resolve(nil, errors.Wrapf(err, "loading %s", gen.Name))
		return
	}
	f.resolve(&CompiledKernel{gen: gen, kernel: k, props: r.props, log: r.log}, nil)
}

// Future is the handle to one in-flight kernel compilation.
type Future struct {
	done   chan struct{}
	once   sync.Once
	kernel *CompiledKernel
	err    error
}

func (f *Future) resolve(k *CompiledKernel, err error) {
	f.once.Do(func() {
		f.kernel = k
		f.err = err
		close(f.done)
	})
}

// Kernel blocks until compilation finishes. A nil kernel with a nil
// error means the stage is served by a statically linked kernel and no
// runtime compilation was needed.
func (f *Future) Kernel() (*CompiledKernel, error) {
	<-f.done
	return f.kernel, f.err
}

// CompiledKernel is a runtime-compiled kernel bound to a device, ready
// to launch.
type CompiledKernel struct {
	gen    rtc.Generator
	kernel *gpu.Kernel
	props  gpu.DeviceProperties
	log    logrus.FieldLogger
}

// Name returns the generated kernel name.
func (k *CompiledKernel) Name() string { return k.gen.Name }

// GridDim returns the launch grid computed from the stage geometry.
func (k *CompiledKernel) GridDim() gpu.Dim3 { return k.gen.GridDim }

// BlockDim returns the thread block dimensions.
func (k *CompiledKernel) BlockDim() gpu.Dim3 { return k.gen.BlockDim }

// Launch packs arguments for exec and enqueues the kernel on
// exec.Stream with the geometry computed at generation time.
func (k *CompiledKernel) Launch(exec ExecInfo, sharedBytes uint32) error {
	if k.kernel == nil {
		return errors.Wrap(ErrCompileOnly, k.gen.Name)
	}

	args, err := k.gen.Args(exec)
	if err != nil {
		return errors.Wrapf(err, "packing args for %s", k.gen.Name)
	}

	if occ, err := k.kernel.Occupancy(k.gen.BlockDim, sharedBytes); err == nil {
		k.log.WithFields(logrus.Fields{
			"kernel":    k.gen.Name,
			"grid":      k.gen.GridDim,
			"block":     k.gen.BlockDim,
			"occupancy": occ,
		}).Debug("launching")
	}

	return k.kernel.Launch(args, k.gen.GridDim, k.gen.BlockDim, sharedBytes, k.props, exec.Stream)
}

// Close releases the kernel's device module. Safe to call twice.
func (k *CompiledKernel) Close() error {
	if k.kernel == nil {
		return nil
	}
	return k.kernel.Close()
}
