package gpu

import (
	"bytes"
	"errors"
	"testing"
)

func TestMockCompilerDeterministic(t *testing.T) {
	t.Parallel()

	b := NewMockBackend()
	c := b.Compiler()

	a1, err := c.Compile("k", "source", "gfx000")
	if err != nil {
		t.Fatal(err)
	}
	a2, err := c.Compile("k", "source", "gfx000")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a1, a2) {
		t.Error("equal inputs produced different code objects")
	}

	diff, err := c.Compile("k", "source", "gfx90a")
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(a1, diff) {
		t.Error("different arch produced an identical code object")
	}

	if got := b.CompileCount(); got != 3 {
		t.Errorf("compile count = %d, want 3", got)
	}
}

func TestMockCompilerError(t *testing.T) {
	t.Parallel()

	b := NewMockBackend()
	wantErr := errors.New("nope")
	b.CompileErr = wantErr
	if _, err := b.Compiler().Compile("k", "s", "gfx000"); !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want injected error", err)
	}
}

func TestMockBackendSetDevice(t *testing.T) {
	t.Parallel()

	small := DefaultMockProperties()
	small.Name = "small"
	small.MaxThreadsPerBlock = 256
	b := NewMockBackendWith(DefaultMockProperties(), small)

	if err := b.SetDevice(1); err != nil {
		t.Fatal(err)
	}
	if got := b.CurrentDevice().Name; got != "small" {
		t.Errorf("current device = %q, want small", got)
	}
	if err := b.SetDevice(5); err == nil {
		t.Error("expected error for out-of-range device")
	}
}

func TestMockModuleRejectsCorruptCode(t *testing.T) {
	t.Parallel()

	b := NewMockBackend()
	if _, err := b.LoadModule(nil); !errors.Is(err, ErrEmptyCode) {
		t.Errorf("nil code: %v, want ErrEmptyCode", err)
	}
	if _, err := b.LoadModule([]byte("no separator")); err == nil {
		t.Error("expected error for code object without a name header")
	}
}

func TestRegisterBackend(t *testing.T) {
	// registry is process-global, so no t.Parallel here
	prev, _ := CurrentBackend()
	defer RegisterBackend(prev)

	RegisterBackend(nil)
	if _, err := CurrentBackend(); !errors.Is(err, ErrNoBackend) {
		t.Errorf("err = %v, want ErrNoBackend", err)
	}

	b := RegisterMockBackend()
	got, err := CurrentBackend()
	if err != nil {
		t.Fatal(err)
	}
	if got != Backend(b) {
		t.Error("registered backend not returned")
	}
	info, ok := CurrentBackendInfo()
	if !ok || info.Name != "mock" {
		t.Errorf("backend info = %+v, ok=%v", info, ok)
	}
}
