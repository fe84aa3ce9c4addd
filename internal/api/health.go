package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Pinger checks a dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SessionCounter reports live voice sessions.
type SessionCounter interface {
	Len() int
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	records Pinger
	voice   SessionCounter
	timeout time.Duration
	backend bool
}

// NewHealthHandler creates a health handler. voice may be nil.
func NewHealthHandler(records Pinger, backend bool, voice SessionCounter, timeout time.Duration) *HealthHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HealthHandler{records: records, backend: backend, voice: voice, timeout: timeout}
}

// Health returns the health status of the API and its dependencies.
// Running without a records backend is healthy; an unreachable one is not.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	checks := map[string]string{"api": "ok"}
	status := map[string]interface{}{
		"status": "healthy",
		"checks": checks,
	}
	statusCode := http.StatusOK

	if !h.backend {
		checks["records"] = "mock"
	} else if err := h.records.Ping(ctx); err != nil {
		slog.Error("Health check failed", "error", err)
		status["status"] = "degraded"
		checks["records"] = "unreachable"
		statusCode = http.StatusServiceUnavailable
	} else {
		checks["records"] = "ok"
	}
	if h.voice != nil {
		status["voice_sessions"] = h.voice.Len()
	}

	JSON(w, statusCode, status)
}

// RegisterHealth registers the health check route.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/health", h.Health)
}
