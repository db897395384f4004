package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func testIdentity(kernel string) Identity {
	return Identity{
		Kernel:           kernel,
		Arch:             "gfx906",
		GeneratorVersion: "rtc-gen-1",
	}
}

func discardLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestGetOrCompileCachesResult(t *testing.T) {
	t.Parallel()

	c := New(WithLogger(discardLogger()))
	id := testIdentity("r2c_copy_dim1_sp_CI")
	want := []byte("code-object")

	var calls int32
	compile := func() ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return want, nil
	}

	for i := 0; i < 3; i++ {
		got, err := c.GetOrCompile(id, compile)
		if err != nil {
			t.Fatalf("GetOrCompile: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("GetOrCompile = %q, want %q", got, want)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("compile called %d times, want 1", n)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestGetOrCompileSingleFlight(t *testing.T) {
	t.Parallel()

	c := New(WithLogger(discardLogger()))
	id := testIdentity("transpose_tile64x16_dim2_dp")

	var calls int32
	release := make(chan struct{})
	compile := func() ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []byte("blob"), nil
	}

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.GetOrCompile(id, compile)
		}(i)
	}
	close(release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("worker %d: %v", i, err)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("compile called %d times, want 1", n)
	}
}

func TestGetOrCompileFailureNotCached(t *testing.T) {
	t.Parallel()

	c := New(WithLogger(discardLogger()))
	id := testIdentity("c2r_copy_dim1_sp_CI")

	var calls int32
	compile := func() ([]byte, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, errors.New("nvrtc exploded")
		}
		return []byte("second try"), nil
	}

	if _, err := c.GetOrCompile(id, compile); err == nil {
		t.Fatal("first GetOrCompile succeeded, want error")
	}
	if c.Len() != 0 {
		t.Fatalf("failed compile was cached, Len = %d", c.Len())
	}

	got, err := c.GetOrCompile(id, compile)
	if err != nil {
		t.Fatalf("retry GetOrCompile: %v", err)
	}
	if string(got) != "second try" {
		t.Errorf("retry GetOrCompile = %q, want %q", got, "second try")
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("compile called %d times, want 2", n)
	}
}

func TestGetWithoutCompile(t *testing.T) {
	t.Parallel()

	c := New(WithLogger(discardLogger()))
	id := testIdentity("herm2c_copy_dim1_sp_CI")

	if _, ok := c.Get(id); ok {
		t.Fatal("Get on empty cache reported a hit")
	}
	if _, err := c.GetOrCompile(id, func() ([]byte, error) {
		return []byte("x"), nil
	}); err != nil {
		t.Fatalf("GetOrCompile: %v", err)
	}
	code, ok := c.Get(id)
	if !ok || string(code) != "x" {
		t.Fatalf("Get = %q, %v; want %q, true", code, ok, "x")
	}
}

func TestIdentityDistinguishesComponents(t *testing.T) {
	t.Parallel()

	c := New(WithLogger(discardLogger()))
	base := testIdentity("r2c_copy_dim1_sp_CI")
	variants := []Identity{
		base,
		{Kernel: base.Kernel, Arch: "gfx1030", GeneratorVersion: base.GeneratorVersion},
		{Kernel: base.Kernel, Arch: base.Arch, GeneratorVersion: "rtc-gen-2"},
		{Kernel: "c2r_copy_dim1_sp_CI", Arch: base.Arch, GeneratorVersion: base.GeneratorVersion},
	}

	var calls int32
	for _, id := range variants {
		if _, err := c.GetOrCompile(id, func() ([]byte, error) {
			atomic.AddInt32(&calls, 1)
			return []byte("code"), nil
		}); err != nil {
			t.Fatalf("GetOrCompile(%+v): %v", id, err)
		}
	}
	if n := atomic.LoadInt32(&calls); int(n) != len(variants) {
		t.Errorf("compile called %d times, want %d", n, len(variants))
	}
	if c.Len() != len(variants) {
		t.Errorf("Len = %d, want %d", c.Len(), len(variants))
	}
}

func TestClearDropsEntries(t *testing.T) {
	t.Parallel()

	store, err := NewDurableStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDurableStore: %v", err)
	}
	c := New(WithDurableStore(store), WithLogger(discardLogger()))
	id := testIdentity("r2c_copy_dim1_sp_CI")

	if _, err := c.GetOrCompile(id, func() ([]byte, error) {
		return []byte("code"), nil
	}); err != nil {
		t.Fatalf("GetOrCompile: %v", err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", c.Len())
	}
	if _, ok := c.Get(id); ok {
		t.Error("Get after Clear reported a hit")
	}
	if _, ok := store.Load(id); ok {
		t.Error("durable store still holds the entry after Clear")
	}
}

func TestDurableRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewDurableStore(dir)
	if err != nil {
		t.Fatalf("NewDurableStore: %v", err)
	}
	id := testIdentity("c2r_even_pre_dim1_sp_CI")
	code := []byte("compiled code object payload")

	first := New(WithDurableStore(store), WithLogger(discardLogger()))
	var calls int32
	compile := func() ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return code, nil
	}
	if _, err := first.GetOrCompile(id, compile); err != nil {
		t.Fatalf("first GetOrCompile: %v", err)
	}

	// A second cache over the same directory must hit durably without
	// compiling, even though its memory map is empty.
	second := New(WithDurableStore(store), WithLogger(discardLogger()))
	got, err := second.GetOrCompile(id, compile)
	if err != nil {
		t.Fatalf("second GetOrCompile: %v", err)
	}
	if !bytes.Equal(got, code) {
		t.Errorf("durable hit = %q, want %q", got, code)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("compile called %d times, want 1", n)
	}
}

func TestDurableCorruptEntryRecompiled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewDurableStore(dir)
	if err != nil {
		t.Fatalf("NewDurableStore: %v", err)
	}
	id := testIdentity("r2c_even_post_dim1_dp_CI")
	if err := store.Store(id, []byte("good code")); err != nil {
		t.Fatalf("Store: %v", err)
	}

	// Flip payload bytes so the checksum fails.
	path := store.entryPath(id)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	data[len(data)-1] ^= 0xff
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, ok := store.Load(id); ok {
		t.Fatal("Load returned a corrupt entry")
	}

	c := New(WithDurableStore(store), WithLogger(discardLogger()))
	var calls int32
	got, err := c.GetOrCompile(id, func() ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return []byte("fresh code"), nil
	})
	if err != nil {
		t.Fatalf("GetOrCompile: %v", err)
	}
	if string(got) != "fresh code" {
		t.Errorf("GetOrCompile = %q, want recompiled code", got)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("compile called %d times, want 1", n)
	}
	// The rewritten entry must load cleanly next time.
	if code, ok := store.Load(id); !ok || string(code) != "fresh code" {
		t.Errorf("Load after rewrite = %q, %v; want %q, true", code, ok, "fresh code")
	}
}

func TestDurableIdentityMismatchIsMiss(t *testing.T) {
	t.Parallel()

	store, err := NewDurableStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDurableStore: %v", err)
	}
	id := testIdentity("transpose_tile64x16_dim2_sp")
	if err := store.Store(id, []byte("code")); err != nil {
		t.Fatalf("Store: %v", err)
	}

	// Overwrite the file with an entry carrying a different identity but
	// the same path, as a stale generator version would after a hash
	// collision in the file name.
	foreign := id
	foreign.GeneratorVersion = "rtc-gen-0"
	entry := encodeEntry(foreign, []byte("stale code"))
	if err := os.WriteFile(store.entryPath(id), entry, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, ok := store.Load(id); ok {
		t.Error("Load accepted an entry with a foreign identity")
	}
}

func TestDurableClearLeavesForeignFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewDurableStore(dir)
	if err != nil {
		t.Fatalf("NewDurableStore: %v", err)
	}
	if err := store.Store(testIdentity("r2c_copy_dim1_sp_CI"), []byte("code")); err != nil {
		t.Fatalf("Store: %v", err)
	}
	keep := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(keep, []byte("keep me"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	entries, err := filepath.Glob(filepath.Join(dir, "*.bin"))
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Clear left %d entry files", len(entries))
	}
	if _, err := os.Stat(keep); err != nil {
		t.Errorf("Clear removed an unrelated file: %v", err)
	}
}

func TestNewDurableStoreEmptyDir(t *testing.T) {
	t.Parallel()

	if _, err := NewDurableStore(""); err == nil {
		t.Fatal("NewDurableStore(\"\") succeeded, want error")
	}
}
