package httputil

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/voxserve/voxserve/pkg/events"
)

// RequestIDHeader carries the generated request id back to the caller.
const RequestIDHeader = "X-Request-Id"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps the wrapper transparent for streaming handlers.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// LoggingMiddleware assigns each request an id and logs method, path,
// status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = xid.New().String()
		}
		w.Header().Set(RequestIDHeader, requestID)

		ctx := events.WithRequestID(r.Context(), requestID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))
		duration := time.Since(start)

		attrs := []any{
			slog.String("request_id", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", duration),
		}
		if rec.status >= 500 {
			slog.ErrorContext(ctx, "http request", attrs...)
		} else {
			slog.InfoContext(ctx, "http request", attrs...)
		}
	})
}
