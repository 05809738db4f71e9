package main

import (
	"context"
	"log"
	"time"

	"github.com/pitabwire/frame"
	"github.com/pitabwire/frame/config"

	vsconfig "github.com/voxserve/voxserve/config"
	"github.com/voxserve/voxserve/internal/httpapi"
	"github.com/voxserve/voxserve/internal/httputil"
	"github.com/voxserve/voxserve/internal/synth"
	"github.com/voxserve/voxserve/internal/synth/engine"
	"github.com/voxserve/voxserve/internal/synth/pipeline"
	"github.com/voxserve/voxserve/internal/synth/voices"
	"github.com/voxserve/voxserve/pkg/events"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadWithOIDC[vsconfig.TTSConfig](ctx)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	eventRef := cfg.GetEventsQueueName()
	eventURL := cfg.GetEventsQueueURL()

	ctx, srv := frame.NewService(
		frame.WithConfig(&cfg),
		frame.WithName("voxserve"),
		frame.WithRegisterPublisher(eventRef, eventURL),
	)
	defer srv.Stop(ctx)

	pool, err := srv.WorkManager().GetPool()
	if err != nil {
		log.Fatalf("getting worker pool: %v", err)
	}

	registry, err := voices.NewRegistry(cfg.DefaultVoice, voices.Builtin())
	if err != nil {
		log.Fatalf("building voice registry: %v", err)
	}
	if cfg.VoicesPath != "" {
		registry, err = voices.LoadFile(cfg.VoicesPath)
		if err != nil {
			log.Fatalf("loading voices: %v", err)
		}
	}

	eng := engine.NewCoqui(cfg.TTSServerBinary, time.Duration(cfg.ModelStartTimeoutSec)*time.Second)
	pub := events.NewPublisher(srv.QueueManager(), "voxserve", eventRef)

	svc := synth.NewService(synth.Options{
		Registry:          registry,
		Engine:            eng,
		MaxResidentModels: cfg.MaxResidentModels,
		Pipeline: pipeline.Options{
			MaxTextLength: cfg.MaxTextLength,
			MinSpeed:      cfg.MinSpeed,
			MaxSpeed:      cfg.MaxSpeed,
			WorkDir:       cfg.AudioWorkDir,
		},
		WarmUp:    cfg.WarmUpModel,
		Pool:      pool,
		Publisher: pub,
	})
	svc.Start(ctx)
	defer svc.Shutdown(ctx)

	handler := httputil.LoggingMiddleware(httpapi.NewServer(svc))
	srv.Init(ctx, frame.WithHTTPHandler(httputil.H2CHandler(handler)))

	if err := srv.Run(ctx, ""); err != nil {
		log.Fatalf("service exited: %v", err)
	}
}
