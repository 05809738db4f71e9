package events

import (
	"encoding/json"
	"time"
)

// EventType identifies the kind of event flowing through the system.
type EventType string

const (
	SynthesisCompleted EventType = "tts.completed"
	SynthesisFailed    EventType = "tts.failed"
	WarmupFailed       EventType = "model.warmup_failed"
)

// Envelope is the standard event wrapper published to the event bus.
type Envelope struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Source    string          `json:"source"`
	RequestID string          `json:"request_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// SynthesisCompletedData is the payload for tts.completed events.
type SynthesisCompletedData struct {
	Voice      string `json:"voice"`
	Model      string `json:"model"`
	AudioBytes int    `json:"audio_bytes"`
	DurationMs int64  `json:"duration_ms"`
}

// SynthesisFailedData is the payload for tts.failed events.
type SynthesisFailedData struct {
	Voice  string `json:"voice"`
	Reason string `json:"reason"`
}

// WarmupFailedData is the payload for model.warmup_failed events.
type WarmupFailedData struct {
	Model  string `json:"model"`
	Reason string `json:"reason"`
}
