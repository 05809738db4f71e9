// Package httpapi exposes the synthesis service over JSON/HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/voxserve/voxserve/internal/synth"
	"github.com/voxserve/voxserve/internal/synth/pipeline"
)

const serviceVersion = "1.0.0"

// Server routes HTTP requests to the synthesis service.
type Server struct {
	svc *synth.Service
	mux *http.ServeMux
}

// NewServer creates the HTTP surface for the given service.
func NewServer(svc *synth.Service) *Server {
	s := &Server{
		svc: svc,
		mux: http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /", s.handleRoot)
	s.mux.HandleFunc("GET /voices", s.handleVoices)
	s.mux.HandleFunc("POST /generate-speech", s.handleGenerateSpeech)
	s.mux.HandleFunc("GET /health", s.handleHealth)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "voxserve speech synthesis service",
		"version": serviceVersion,
		"status":  "running",
	})
}

type voiceInfo struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

func (s *Server) handleVoices(w http.ResponseWriter, _ *http.Request) {
	profiles := s.svc.Voices()
	voices := make([]voiceInfo, 0, len(profiles))
	for _, p := range profiles {
		voices = append(voices, voiceInfo{ID: p.ID, Description: p.Description})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"voices":  voices,
		"default": s.svc.DefaultVoice(),
	})
}

type generateRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
	// Pointer so an absent field defaults to 1.0 while an explicit value,
	// zero included, takes the pipeline's clamping path.
	Speed *float64 `json:"speed"`
}

func (s *Server) handleGenerateSpeech(w http.ResponseWriter, r *http.Request) {
	var body generateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	speed := 1.0
	if body.Speed != nil {
		speed = *body.Speed
	}

	res, err := s.svc.GenerateSpeech(r.Context(), body.Text, body.Voice, speed)
	if err != nil {
		writeGenerateError(w, err)
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Audio)))
	w.Header().Set("Content-Disposition", `attachment; filename=speech.wav`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Audio)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := s.svc.Health()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"ready":         status.Ready,
		"models_loaded": status.ResidentModels,
	})
}

func writeGenerateError(w http.ResponseWriter, err error) {
	var invalid *pipeline.InvalidInputError
	var unavailable *pipeline.UnavailableError
	var generation *pipeline.GenerationError

	switch {
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, invalid.Reason)
	case errors.As(err, &unavailable):
		writeError(w, http.StatusServiceUnavailable, "failed to load TTS model")
	case errors.As(err, &generation):
		writeError(w, http.StatusInternalServerError, "speech generation failed")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
