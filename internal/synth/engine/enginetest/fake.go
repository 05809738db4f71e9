// Package enginetest provides an in-memory synthesis engine for tests.
package enginetest

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/voxserve/voxserve/internal/synth/engine"
)

// Handle is the fake's loaded-model token.
type Handle struct {
	ModelKey string
	Seq      int
}

func (h *Handle) Key() string { return h.ModelKey }

// Fake implements engine.Engine without any real model. Loads and renders
// are recorded so tests can assert on cache and pipeline behavior.
type Fake struct {
	mu sync.Mutex

	// FailLoad makes LoadModel fail for the given keys.
	FailLoad map[string]error
	// RenderErr makes every Render call fail.
	RenderErr error
	// UnloadErr makes every Unload call fail (after recording it).
	UnloadErr error
	// RenderOutput is written to the destination file on successful
	// renders. Leave nil for a small WAV-ish placeholder; set to an empty
	// slice to simulate an engine that produces no audio.
	RenderOutput []byte

	loads    map[string]int
	unloaded []string
	renders  []engine.RenderRequest
	seq      int
}

// New creates an empty fake engine.
func New() *Fake {
	return &Fake{
		FailLoad: map[string]error{},
		loads:    map[string]int{},
	}
}

func (f *Fake) LoadModel(_ context.Context, key string) (engine.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.FailLoad[key]; err != nil {
		return nil, err
	}
	f.loads[key]++
	f.seq++
	return &Handle{ModelKey: key, Seq: f.seq}, nil
}

func (f *Fake) Render(_ context.Context, h engine.Handle, req engine.RenderRequest, dst string) error {
	f.mu.Lock()
	f.renders = append(f.renders, req)
	renderErr := f.RenderErr
	out := f.RenderOutput
	f.mu.Unlock()

	if renderErr != nil {
		return renderErr
	}
	if out == nil {
		out = []byte(fmt.Sprintf("RIFF fake audio for %s", h.Key()))
	}
	return os.WriteFile(dst, out, 0o644)
}

func (f *Fake) Unload(h engine.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unloaded = append(f.unloaded, h.Key())
	return f.UnloadErr
}

// Loads returns how many times the key was loaded.
func (f *Fake) Loads(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads[key]
}

// Unloaded returns the keys passed to Unload, in order.
func (f *Fake) Unloaded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.unloaded...)
}

// Renders returns every render request seen so far.
func (f *Fake) Renders() []engine.RenderRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]engine.RenderRequest(nil), f.renders...)
}
