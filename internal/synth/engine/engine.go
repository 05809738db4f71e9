// Package engine defines the synthesis engine capability consumed by the
// model cache and pipeline. The rest of the service never inspects engine
// internals; it only orchestrates load/render/unload around opaque handles.
package engine

import "context"

// Handle is a borrowed reference to a loaded model. It is owned by the
// model cache and is only valid for the duration of one render call.
type Handle interface {
	Key() string
}

// RenderRequest carries the per-call synthesis parameters.
type RenderRequest struct {
	Text    string
	Speaker string // sub-speaker id for multi-speaker models, empty otherwise
	Speed   float64
}

// Engine loads heavyweight synthesis models and renders audio with them.
type Engine interface {
	// LoadModel makes the model identified by key resident and returns a
	// handle to it. Loading is slow (tens of seconds for a neural model).
	LoadModel(ctx context.Context, key string) (Handle, error)

	// Render synthesizes req.Text with the given model into a WAV file at dst.
	Render(ctx context.Context, h Handle, req RenderRequest, dst string) error

	// Unload releases the model behind the handle.
	Unload(h Handle) error
}
