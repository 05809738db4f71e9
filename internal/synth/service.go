// Package synth owns the synthesis service: voice registry, model cache,
// generation pipeline, and their lifetime.
package synth

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/pitabwire/frame/workerpool"

	"github.com/voxserve/voxserve/internal/synth/engine"
	"github.com/voxserve/voxserve/internal/synth/modelcache"
	"github.com/voxserve/voxserve/internal/synth/pipeline"
	"github.com/voxserve/voxserve/internal/synth/voices"
	"github.com/voxserve/voxserve/pkg/events"
)

// Status is the health snapshot exposed to the transport layer.
type Status struct {
	Ready          bool
	ResidentModels int
}

// Options configure a Service.
type Options struct {
	// Registry defaults to the built-in voice table.
	Registry *voices.Registry
	// Engine is required.
	Engine engine.Engine
	// MaxResidentModels bounds the cache; zero means the package default.
	MaxResidentModels int
	// Pipeline holds request normalization limits.
	Pipeline pipeline.Options
	// WarmUp preloads the default voice's model in the background on Start.
	WarmUp bool
	// Pool runs the warm-up; a goroutine is used when nil.
	Pool workerpool.WorkerPool
	// Publisher is optional; nil disables events.
	Publisher *events.Publisher
}

// Service wires the registry, cache, and pipeline together and owns the
// cache's lifetime. It is an explicit injected object, not a process-wide
// singleton.
type Service struct {
	registry *voices.Registry
	cache    *modelcache.Cache
	eng      engine.Engine
	pipe     *pipeline.Pipeline
	warmUp   bool
	pool     workerpool.WorkerPool
	pub      *events.Publisher

	ready atomic.Bool
}

// NewService builds a service from options.
func NewService(opts Options) *Service {
	registry := opts.Registry
	if registry == nil {
		registry = voices.Default()
	}
	cache := modelcache.New(opts.MaxResidentModels, opts.Engine)

	return &Service{
		registry: registry,
		cache:    cache,
		eng:      opts.Engine,
		pipe:     pipeline.New(registry, cache, opts.Engine, opts.Pipeline),
		warmUp:   opts.WarmUp,
		pool:     opts.Pool,
		pub:      opts.Publisher,
	}
}

// Start marks the service ready and kicks off the background warm-up. It
// never blocks on the warm-up: a failed or slow preload just means the
// first real request pays the cold-load cost instead.
func (s *Service) Start(ctx context.Context) {
	s.ready.Store(true)
	if !s.warmUp {
		return
	}

	warm := func() { s.warmDefaultModel(ctx) }
	if s.pool != nil {
		if err := s.pool.Submit(ctx, warm); err != nil {
			slog.WarnContext(ctx, "warm-up submit failed, running inline goroutine",
				slog.String("error", err.Error()))
			go warm()
		}
	} else {
		go warm()
	}
}

func (s *Service) warmDefaultModel(ctx context.Context) {
	profile := s.registry.Resolve(s.registry.DefaultID())
	_, err := s.cache.Acquire(ctx, profile.ModelKey, func(ctx context.Context) (engine.Handle, error) {
		return s.eng.LoadModel(ctx, profile.ModelKey)
	})
	if err != nil {
		slog.WarnContext(ctx, "model warm-up failed",
			slog.String("model", profile.ModelKey),
			slog.String("error", err.Error()),
		)
		s.pub.Emit(ctx, events.WarmupFailed, "", events.WarmupFailedData{
			Model:  profile.ModelKey,
			Reason: err.Error(),
		})
		return
	}
	slog.InfoContext(ctx, "model warm-up complete", slog.String("model", profile.ModelKey))
}

// GenerateSpeech renders text with the given voice and speed.
func (s *Service) GenerateSpeech(ctx context.Context, text, voiceID string, speed float64) (*pipeline.Result, error) {
	profile := s.registry.Resolve(voiceID)
	requestID := events.RequestIDFromContext(ctx)

	start := time.Now()
	res, err := s.pipe.Generate(ctx, text, voiceID, speed)
	if err != nil {
		s.pub.Emit(ctx, events.SynthesisFailed, requestID, events.SynthesisFailedData{
			Voice:  profile.ID,
			Reason: err.Error(),
		})
		return nil, err
	}

	s.pub.Emit(ctx, events.SynthesisCompleted, requestID, events.SynthesisCompletedData{
		Voice:      profile.ID,
		Model:      profile.ModelKey,
		AudioBytes: len(res.Audio),
		DurationMs: time.Since(start).Milliseconds(),
	})
	return res, nil
}

// Voices returns the voice table in its configured order.
func (s *Service) Voices() []voices.Profile { return s.registry.List() }

// DefaultVoice returns the fallback voice id.
func (s *Service) DefaultVoice() string { return s.registry.DefaultID() }

// Health reports readiness and the resident model count.
func (s *Service) Health() Status {
	return Status{
		Ready:          s.ready.Load(),
		ResidentModels: s.cache.Len(),
	}
}

// Shutdown releases every resident model. Individual teardown failures are
// logged by the cache and do not abort the release.
func (s *Service) Shutdown(ctx context.Context) {
	s.ready.Store(false)
	s.cache.ReleaseAll(ctx)
}
