// Package pipeline turns a validated synthesis request into a WAV buffer.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/voxserve/voxserve/internal/synth/engine"
	"github.com/voxserve/voxserve/internal/synth/modelcache"
	"github.com/voxserve/voxserve/internal/synth/voices"
)

// Request limits. Oversized text is truncated, out-of-range speed clamped;
// only empty text is rejected. The lenient contract matches what callers of
// the original service already depend on.
const (
	DefaultMaxTextLength = 5000
	DefaultMinSpeed      = 0.5
	DefaultMaxSpeed      = 2.0
)

// Result is one rendered utterance. Ownership of Audio transfers to the
// caller; the pipeline keeps no reference.
type Result struct {
	Audio       []byte
	ContentType string
}

// Options tune the pipeline's request normalization.
type Options struct {
	MaxTextLength int
	MinSpeed      float64
	MaxSpeed      float64
	// WorkDir is where transient render files live. Empty means the
	// system temp dir.
	WorkDir string
}

// Pipeline validates requests, resolves voices, borrows model handles from
// the cache, and renders audio through the engine.
type Pipeline struct {
	registry *voices.Registry
	cache    *modelcache.Cache
	eng      engine.Engine
	opts     Options
}

// New creates a pipeline. Zero option fields take the package defaults.
func New(registry *voices.Registry, cache *modelcache.Cache, eng engine.Engine, opts Options) *Pipeline {
	if opts.MaxTextLength <= 0 {
		opts.MaxTextLength = DefaultMaxTextLength
	}
	if opts.MinSpeed <= 0 {
		opts.MinSpeed = DefaultMinSpeed
	}
	if opts.MaxSpeed <= 0 {
		opts.MaxSpeed = DefaultMaxSpeed
	}
	return &Pipeline{
		registry: registry,
		cache:    cache,
		eng:      eng,
		opts:     opts,
	}
}

// Generate synthesizes text with the given voice and speed.
//
// Validation, first violation wins: empty or all-whitespace text is
// rejected; text over the length limit is truncated; an unknown voice falls
// back to the default; speed is clamped into range.
func (p *Pipeline) Generate(ctx context.Context, text, voiceID string, speed float64) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &InvalidInputError{Reason: "empty text"}
	}
	if runes := []rune(text); len(runes) > p.opts.MaxTextLength {
		slog.DebugContext(ctx, "truncating text",
			slog.Int("length", len(runes)),
			slog.Int("limit", p.opts.MaxTextLength),
		)
		text = string(runes[:p.opts.MaxTextLength])
	}

	profile := p.registry.Resolve(voiceID)

	if speed < p.opts.MinSpeed {
		speed = p.opts.MinSpeed
	} else if speed > p.opts.MaxSpeed {
		speed = p.opts.MaxSpeed
	}

	// The handle is borrowed under the cache gate; the slow render below
	// runs outside it.
	handle, err := p.cache.Acquire(ctx, profile.ModelKey, func(ctx context.Context) (engine.Handle, error) {
		return p.eng.LoadModel(ctx, profile.ModelKey)
	})
	if err != nil {
		return nil, &UnavailableError{Err: err}
	}

	audio, err := p.render(ctx, handle, profile, text, speed)
	if err != nil {
		return nil, err
	}
	return &Result{Audio: audio, ContentType: "audio/wav"}, nil
}

func (p *Pipeline) render(ctx context.Context, handle engine.Handle, profile voices.Profile, text string, speed float64) ([]byte, error) {
	tmp, err := os.CreateTemp(p.opts.WorkDir, "synth-*.wav")
	if err != nil {
		return nil, &GenerationError{Err: fmt.Errorf("create render target: %w", err)}
	}
	path := tmp.Name()
	tmp.Close()
	defer func() {
		// Cleanup failures do not affect the returned result.
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.WarnContext(ctx, "remove render file",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
		}
	}()

	req := engine.RenderRequest{
		Text:    text,
		Speaker: profile.SubSpeaker,
		Speed:   speed,
	}
	if err := p.eng.Render(ctx, handle, req, path); err != nil {
		return nil, &GenerationError{Err: err}
	}

	audio, err := os.ReadFile(path)
	if err != nil {
		return nil, &GenerationError{Err: fmt.Errorf("read rendered audio: %w", err)}
	}
	if len(audio) == 0 {
		return nil, &GenerationError{Err: fmt.Errorf("engine produced no audio for voice %q", profile.ID)}
	}
	return audio, nil
}
