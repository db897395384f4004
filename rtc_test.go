package rocfft_test

import (
	"errors"
	"testing"

	rocfft "github.com/samjwu/rocFFT"
	"github.com/samjwu/rocFFT/gpu"
	"github.com/samjwu/rocFFT/internal/config"
)

func copyStage() *rocfft.Stage {
	return &rocfft.Stage{
		Scheme:       rocfft.SchemeCopyComplexToHerm,
		Precision:    rocfft.PrecisionSingle,
		Lengths:      []uint{64},
		Batch:        2,
		InArrayType:  rocfft.ArrayTypeComplexInterleaved,
		OutArrayType: rocfft.ArrayTypeHermitianInterleaved,
		InStride:     []uint{1},
		OutStride:    []uint{1},
		IDist:        64,
		ODist:        33,
	}
}

func execInfo() rocfft.ExecInfo {
	return rocfft.ExecInfo{
		BufIn:  [2]gpu.DevicePtr{0x1000},
		BufOut: [2]gpu.DevicePtr{0x2000},
	}
}

func TestRuntimeCompileAndLaunch(t *testing.T) {
	t.Parallel()

	backend := gpu.NewMockBackend()
	r, err := rocfft.NewRTC(rocfft.WithBackend(backend))
	if err != nil {
		t.Fatalf("NewRTC: %v", err)
	}

	k, err := r.RuntimeCompile(copyStage(), "", false).Kernel()
	if err != nil {
		t.Fatalf("Kernel: %v", err)
	}
	if k == nil {
		t.Fatal("Kernel returned nil for a runtime-compiled scheme")
	}
	defer k.Close()

	if k.Name() == "" {
		t.Error("kernel name is empty")
	}
	if k.GridDim().X == 0 || k.BlockDim().X == 0 {
		t.Errorf("degenerate launch geometry: grid %+v block %+v", k.GridDim(), k.BlockDim())
	}
	if err := k.Launch(execInfo(), 0); err != nil {
		t.Errorf("Launch: %v", err)
	}
}

func TestRuntimeCompileCachesCodeObjects(t *testing.T) {
	t.Parallel()

	backend := gpu.NewMockBackend()
	r, err := rocfft.NewRTC(rocfft.WithBackend(backend))
	if err != nil {
		t.Fatalf("NewRTC: %v", err)
	}

	for i := 0; i < 3; i++ {
		k, err := r.RuntimeCompile(copyStage(), "", false).Kernel()
		if err != nil {
			t.Fatalf("Kernel #%d: %v", i, err)
		}
		k.Close()
	}
	if n := backend.CompileCount(); n != 1 {
		t.Errorf("backend compiled %d times, want 1", n)
	}
	if r.CacheLen() != 1 {
		t.Errorf("CacheLen = %d, want 1", r.CacheLen())
	}
}

func TestRuntimeCompileArchSplitsCache(t *testing.T) {
	t.Parallel()

	backend := gpu.NewMockBackend()
	r, err := rocfft.NewRTC(rocfft.WithBackend(backend))
	if err != nil {
		t.Fatalf("NewRTC: %v", err)
	}

	for _, arch := range []string{"gfx906", "gfx1030"} {
		k, err := r.RuntimeCompile(copyStage(), arch, false).Kernel()
		if err != nil {
			t.Fatalf("Kernel(%s): %v", arch, err)
		}
		k.Close()
	}
	if n := backend.CompileCount(); n != 2 {
		t.Errorf("backend compiled %d times, want 2", n)
	}
}

func TestRuntimeCompileArchOverride(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Compile.Arch = "gfx90a"
	backend := gpu.NewMockBackend()
	r, err := rocfft.NewRTC(rocfft.WithBackend(backend), rocfft.WithConfig(cfg))
	if err != nil {
		t.Fatalf("NewRTC: %v", err)
	}

	// With the configured override, the per-call arch no longer splits
	// the cache.
	for _, arch := range []string{"gfx906", "gfx1030"} {
		k, err := r.RuntimeCompile(copyStage(), arch, false).Kernel()
		if err != nil {
			t.Fatalf("Kernel(%s): %v", arch, err)
		}
		k.Close()
	}
	if n := backend.CompileCount(); n != 1 {
		t.Errorf("backend compiled %d times, want 1", n)
	}
}

func TestRuntimeCompileStaticFallback(t *testing.T) {
	t.Parallel()

	r, err := rocfft.NewRTC(rocfft.WithBackend(gpu.NewMockBackend()))
	if err != nil {
		t.Fatalf("NewRTC: %v", err)
	}

	stage := copyStage()
	stage.Scheme = rocfft.SchemeStockham

	k, err := r.RuntimeCompile(stage, "", false).Kernel()
	if err != nil {
		t.Fatalf("Kernel: %v", err)
	}
	if k != nil {
		t.Errorf("precompiled scheme produced a runtime kernel %q", k.Name())
	}
}

func TestRuntimeCompileNilStage(t *testing.T) {
	t.Parallel()

	r, err := rocfft.NewRTC(rocfft.WithBackend(gpu.NewMockBackend()))
	if err != nil {
		t.Fatalf("NewRTC: %v", err)
	}

	_, err = r.RuntimeCompile(nil, "", false).Kernel()
	if !errors.Is(err, rocfft.ErrNilStage) {
		t.Errorf("err = %v, want ErrNilStage", err)
	}
}

func TestRTCClose(t *testing.T) {
	t.Parallel()

	r, err := rocfft.NewRTC(rocfft.WithBackend(gpu.NewMockBackend()))
	if err != nil {
		t.Fatalf("NewRTC: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	_, err = r.RuntimeCompile(copyStage(), "", false).Kernel()
	if !errors.Is(err, rocfft.ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}

func TestCompileOnly(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Compile.Only = true
	backend := gpu.NewMockBackend()
	r, err := rocfft.NewRTC(rocfft.WithBackend(backend), rocfft.WithConfig(cfg))
	if err != nil {
		t.Fatalf("NewRTC: %v", err)
	}

	k, err := r.RuntimeCompile(copyStage(), "", false).Kernel()
	if err != nil {
		t.Fatalf("Kernel: %v", err)
	}
	if k == nil {
		t.Fatal("compile-only returned nil kernel")
	}
	if n := backend.CompileCount(); n != 1 {
		t.Errorf("backend compiled %d times, want 1", n)
	}
	if err := k.Launch(execInfo(), 0); !errors.Is(err, rocfft.ErrCompileOnly) {
		t.Errorf("Launch err = %v, want ErrCompileOnly", err)
	}
	if err := k.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestDurableCacheWarmsSecondService(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Cache.Dir = t.TempDir()

	first, err := rocfft.NewRTC(rocfft.WithBackend(gpu.NewMockBackend()), rocfft.WithConfig(cfg))
	if err != nil {
		t.Fatalf("NewRTC: %v", err)
	}
	k, err := first.RuntimeCompile(copyStage(), "", false).Kernel()
	if err != nil {
		t.Fatalf("first Kernel: %v", err)
	}
	k.Close()

	// A fresh service over the same cache directory loads the code
	// object from disk without calling the compiler.
	backend := gpu.NewMockBackend()
	second, err := rocfft.NewRTC(rocfft.WithBackend(backend), rocfft.WithConfig(cfg))
	if err != nil {
		t.Fatalf("NewRTC: %v", err)
	}
	k, err = second.RuntimeCompile(copyStage(), "", false).Kernel()
	if err != nil {
		t.Fatalf("second Kernel: %v", err)
	}
	defer k.Close()
	if n := backend.CompileCount(); n != 0 {
		t.Errorf("second backend compiled %d times, want 0", n)
	}
	if err := k.Launch(execInfo(), 0); err != nil {
		t.Errorf("Launch from durable hit: %v", err)
	}
}

func TestClearCache(t *testing.T) {
	t.Parallel()

	backend := gpu.NewMockBackend()
	r, err := rocfft.NewRTC(rocfft.WithBackend(backend))
	if err != nil {
		t.Fatalf("NewRTC: %v", err)
	}

	k, err := r.RuntimeCompile(copyStage(), "", false).Kernel()
	if err != nil {
		t.Fatalf("Kernel: %v", err)
	}
	k.Close()
	if err := r.ClearCache(); err != nil {
		t.Fatalf("ClearCache: %v", err)
	}
	if r.CacheLen() != 0 {
		t.Errorf("CacheLen after clear = %d, want 0", r.CacheLen())
	}

	k, err = r.RuntimeCompile(copyStage(), "", false).Kernel()
	if err != nil {
		t.Fatalf("Kernel after clear: %v", err)
	}
	k.Close()
	if n := backend.CompileCount(); n != 2 {
		t.Errorf("backend compiled %d times, want 2", n)
	}
}

func TestWithDeviceOutOfRange(t *testing.T) {
	t.Parallel()

	_, err := rocfft.NewRTC(rocfft.WithBackend(gpu.NewMockBackend()), rocfft.WithDevice(3))
	if !errors.Is(err, rocfft.ErrNoDevice) {
		t.Errorf("err = %v, want ErrNoDevice", err)
	}
}

func TestDeviceProperties(t *testing.T) {
	t.Parallel()

	r, err := rocfft.NewRTC(rocfft.WithBackend(gpu.NewMockBackend()))
	if err != nil {
		t.Fatalf("NewRTC: %v", err)
	}
	if got := r.Device().Arch; got != "gfx000" {
		t.Errorf("Device().Arch = %q, want gfx000", got)
	}
}
