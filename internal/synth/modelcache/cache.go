// Package modelcache bounds how many synthesis models are resident in
// memory at once.
package modelcache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/voxserve/voxserve/internal/synth/engine"
)

// DefaultMaxResident is the residency bound used when none is configured.
// Two slots cover the usual working set of alternating voices while keeping
// the memory footprint of a small instance predictable.
const DefaultMaxResident = 2

// Unloader releases the resources behind a loaded model. engine.Engine
// satisfies it.
type Unloader interface {
	Unload(h engine.Handle) error
}

// LoaderFunc performs the slow cold load for a model key.
type LoaderFunc func(ctx context.Context) (engine.Handle, error)

// LoadError reports a failed model load. The resident set is unchanged
// when it is returned, so a retried request can attempt a fresh load.
type LoadError struct {
	Key string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load model %q: %v", e.Key, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

type entry struct {
	key      string
	handle   engine.Handle
	loadedAt time.Time
}

// Cache holds the resident models in insertion order. Eviction is FIFO,
// not LRU: a hit does not promote the entry. With at most a couple of
// slots and voice traffic alternating over a small working set, insertion
// order is enough and keeps the gate simple.
//
// One mutex serializes the entire Acquire path, hits included. That is the
// baseline contract: two concurrent requests for the same uncached key must
// not both trigger a load, and load+evict+insert must never interleave.
// Callers hold the returned handle only for the duration of one render and
// must perform that render outside the gate.
type Cache struct {
	maxResident int
	unloader    Unloader

	mu      sync.Mutex
	entries []*entry
}

// New creates a cache bounded to maxResident models, using unloader for
// evicted entries.
func New(maxResident int, unloader Unloader) *Cache {
	if maxResident <= 0 {
		maxResident = DefaultMaxResident
	}
	return &Cache{
		maxResident: maxResident,
		unloader:    unloader,
	}
}

// Acquire returns the resident handle for key, loading it first when
// absent. When the cache is full the oldest-inserted entry is evicted to
// make room, but only after the new load has succeeded, so a failed load
// leaves the resident set exactly as it was.
func (c *Cache) Acquire(ctx context.Context, key string, load LoaderFunc) (engine.Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		if e.key == key {
			return e.handle, nil
		}
	}

	slog.InfoContext(ctx, "loading model", slog.String("model", key))
	start := time.Now()
	handle, err := load(ctx)
	if err != nil {
		return nil, &LoadError{Key: key, Err: err}
	}
	slog.InfoContext(ctx, "model loaded",
		slog.String("model", key),
		slog.Duration("duration", time.Since(start)),
	)

	if len(c.entries) >= c.maxResident {
		c.evictOldestLocked(ctx)
	}

	c.entries = append(c.entries, &entry{
		key:      key,
		handle:   handle,
		loadedAt: time.Now(),
	})
	return handle, nil
}

func (c *Cache) evictOldestLocked(ctx context.Context) {
	oldest := c.entries[0]
	c.entries = c.entries[1:]

	slog.InfoContext(ctx, "evicting model",
		slog.String("model", oldest.key),
		slog.Duration("resident_for", time.Since(oldest.loadedAt)),
	)
	if err := c.unloader.Unload(oldest.handle); err != nil {
		slog.WarnContext(ctx, "model unload failed",
			slog.String("model", oldest.key),
			slog.String("error", err.Error()),
		)
	}
}

// ReleaseAll evicts every resident model in insertion order. Individual
// unload failures are logged and swallowed; the cache always ends empty.
// Used at shutdown.
func (c *Cache) ReleaseAll(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.entries) > 0 {
		c.evictOldestLocked(ctx)
	}
}

// Len returns the number of resident models.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns the resident model keys in insertion order.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		keys = append(keys, e.key)
	}
	return keys
}
