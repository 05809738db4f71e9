package synth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/voxserve/voxserve/internal/synth/engine/enginetest"
	"github.com/voxserve/voxserve/internal/synth/pipeline"
)

func newTestService(t *testing.T, f *enginetest.Fake, warmUp bool) *Service {
	t.Helper()
	return NewService(Options{
		Engine:   f,
		WarmUp:   warmUp,
		Pipeline: pipeline.Options{WorkDir: t.TempDir()},
	})
}

func waitForResident(t *testing.T, svc *Service, want int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if svc.Health().ResidentModels == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("resident models = %d, want %d", svc.Health().ResidentModels, want)
}

func TestStartWarmsUpDefaultModel(t *testing.T) {
	f := enginetest.New()
	svc := newTestService(t, f, true)

	svc.Start(context.Background())

	if !svc.Health().Ready {
		t.Error("service not ready immediately after Start")
	}
	waitForResident(t, svc, 1)
	if f.Loads("tts_models/en/ljspeech/tacotron2-DDC") != 1 {
		t.Error("default model was not warmed up")
	}
}

func TestWarmUpFailureDoesNotBlockReadiness(t *testing.T) {
	f := enginetest.New()
	f.FailLoad["tts_models/en/ljspeech/tacotron2-DDC"] = errors.New("no disk space")
	svc := newTestService(t, f, true)

	svc.Start(context.Background())

	if !svc.Health().Ready {
		t.Error("warm-up failure must not prevent readiness")
	}

	// The next real request retries the load on demand.
	delete(f.FailLoad, "tts_models/en/ljspeech/tacotron2-DDC")
	res, err := svc.GenerateSpeech(context.Background(), "hello", "female_calm", 1.0)
	if err != nil {
		t.Fatalf("GenerateSpeech after failed warm-up: %v", err)
	}
	if len(res.Audio) == 0 {
		t.Error("no audio returned")
	}
}

func TestGenerateSpeechWithoutWarmUp(t *testing.T) {
	f := enginetest.New()
	svc := newTestService(t, f, false)
	svc.Start(context.Background())

	if got := svc.Health().ResidentModels; got != 0 {
		t.Errorf("resident before first request = %d, want 0", got)
	}

	res, err := svc.GenerateSpeech(context.Background(), "hello", "female_calm", 1.0)
	if err != nil {
		t.Fatalf("GenerateSpeech: %v", err)
	}
	if res.ContentType != "audio/wav" {
		t.Errorf("content type = %q, want audio/wav", res.ContentType)
	}
	if got := svc.Health().ResidentModels; got != 1 {
		t.Errorf("resident after first request = %d, want 1", got)
	}
}

func TestShutdownReleasesModels(t *testing.T) {
	f := enginetest.New()
	svc := newTestService(t, f, false)
	svc.Start(context.Background())

	if _, err := svc.GenerateSpeech(context.Background(), "hello", "female_calm", 1.0); err != nil {
		t.Fatalf("GenerateSpeech: %v", err)
	}
	if _, err := svc.GenerateSpeech(context.Background(), "hello", "male_deep", 1.0); err != nil {
		t.Fatalf("GenerateSpeech: %v", err)
	}

	svc.Shutdown(context.Background())

	status := svc.Health()
	if status.Ready {
		t.Error("service still ready after Shutdown")
	}
	if status.ResidentModels != 0 {
		t.Errorf("resident after Shutdown = %d, want 0", status.ResidentModels)
	}
	if len(f.Unloaded()) != 2 {
		t.Errorf("unloaded %v, want both models released", f.Unloaded())
	}
}

func TestVoicesAndDefault(t *testing.T) {
	svc := newTestService(t, enginetest.New(), false)

	if svc.DefaultVoice() != "female_calm" {
		t.Errorf("default voice = %q, want female_calm", svc.DefaultVoice())
	}
	if len(svc.Voices()) != 6 {
		t.Errorf("voices = %d, want 6", len(svc.Voices()))
	}
}
