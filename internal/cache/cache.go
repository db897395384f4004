// Package cache provides the compiled-kernel cache: a process-lifetime
// in-memory map plus an optional durable store, with single-flight
// compilation so concurrent requests for one kernel compile it once.
package cache

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Identity is the compiled kernel cache key. It is stable across
// process restarts: no pointer, timestamp, or process-local value may
// enter it.
type Identity struct {
	// Kernel is the generated kernel name.
	Kernel string
	// Arch is the target device architecture string.
	Arch string
	// GeneratorVersion changes whenever kernel generation semantics
	// change, invalidating all prior identities.
	GeneratorVersion string
}

// CompileFunc produces the code object for an identity. It is invoked
// at most once per identity per flight.
type CompileFunc func() ([]byte, error)

type flight struct {
	done chan struct{}
	code []byte
	err  error
}

// Cache maps identities to compiled code objects. Entries live for the
// process lifetime and are never invalidated except by Clear; a durable
// store, when configured, carries them across processes.
type Cache struct {
	mu       sync.Mutex
	entries  map[Identity][]byte
	inflight map[Identity]*flight

	durable *DurableStore
	log     logrus.FieldLogger
}

// Option configures a Cache.
type Option func(*Cache)

// WithDurableStore backs the cache with an on-disk store.
func WithDurableStore(s *DurableStore) Option {
	return func(c *Cache) { c.durable = s }
}

// WithLogger routes cache diagnostics to the given logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Cache) { c.log = log }
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:  make(map[Identity][]byte),
		inflight: make(map[Identity]*flight),
		log:      logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// GetOrCompile returns the code object for the identity, compiling it
// via compile if no cached copy exists. Concurrent callers with the
// same identity share one compile; a failed compile is returned to all
// waiters and never stored, so the next caller retries.
func (c *Cache) GetOrCompile(id Identity, compile CompileFunc) ([]byte, error) {
	for {
		c.mu.Lock()
		if code, ok := c.entries[id]; ok {
			c.mu.Unlock()
			return code, nil
		}
		if fl, ok := c.inflight[id]; ok {
			c.mu.Unlock()
			<-fl.done
			if fl.err == nil {
				return fl.code, nil
			}
			// the flight owner failed; loop and retry our own compile
			continue
		}
		fl := &flight{done: make(chan struct{})}
		c.inflight[id] = fl
		c.mu.Unlock()

		fl.code, fl.err = c.compileMiss(id, compile)

		c.mu.Lock()
		delete(c.inflight, id)
		if fl.err == nil {
			c.entries[id] = fl.code
		}
		c.mu.Unlock()
		close(fl.done)
		return fl.code, fl.err
	}
}

// compileMiss resolves a miss: durable store first, then a real
// compile, storing the result durably on success.
func (c *Cache) compileMiss(id Identity, compile CompileFunc) ([]byte, error) {
	if c.durable != nil {
		if code, ok := c.durable.Load(id); ok {
			c.log.WithField("kernel", id.Kernel).Debug("durable cache hit")
			return code, nil
		}
	}
	code, err := compile()
	if err != nil {
		return nil, errors.Wrapf(err, "compile %s for %s", id.Kernel, id.Arch)
	}
	if c.durable != nil {
		if err := c.durable.Store(id, code); err != nil {
			// durable store failure only costs a future recompile
			c.log.WithError(err).WithField("kernel", id.Kernel).
				Warn("failed to store compiled kernel durably")
		}
	}
	return code, nil
}

// Get returns a cached code object without compiling.
func (c *Cache) Get(id Identity) ([]byte, bool) {
	c.mu.Lock()
	code, ok := c.entries[id]
	c.mu.Unlock()
	if ok {
		return code, true
	}
	if c.durable != nil {
		return c.durable.Load(id)
	}
	return nil, false
}

// Len reports the number of in-memory entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops all in-memory entries and, when a durable store is
// configured, its on-disk entries too.
func (c *Cache) Clear() error {
	c.mu.Lock()
	c.entries = make(map[Identity][]byte)
	c.mu.Unlock()
	if c.durable != nil {
		return c.durable.Clear()
	}
	return nil
}
