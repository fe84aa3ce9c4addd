// Package api provides the HTTP handlers for the site pages and the records API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/voicesite/internal/records"
	"github.com/ashureev/voicesite/internal/siteconfig"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Handler serves the pages and the records API for the site resolved per request.
type Handler struct {
	records *records.Service
	loc     *time.Location
	now     func() time.Time
}

// NewHandler creates a Handler backed by svc.
func NewHandler(svc *records.Service) *Handler {
	return &Handler{records: svc, loc: time.Local, now: time.Now}
}

// RegisterRoutes registers the pages and the records API.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Landing)
	r.Get("/dashboard", h.DashboardPage)

	r.Route("/api", func(r chi.Router) {
		r.Get("/site", h.GetSite)
		r.Get("/dashboard", h.GetDashboard)
		r.Route("/appointments", func(r chi.Router) {
			r.Get("/", h.ListAppointments)
			r.Post("/", h.CreateAppointment)
			r.Put("/{id}", h.UpdateAppointment)
			r.Delete("/{id}", h.DeleteAppointment)
		})
		r.Get("/patients", h.ListPatients)
		r.Get("/call-logs", h.ListCallLogs)
		r.Get("/calendar/events", h.CalendarEvents)
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// recordError maps records service errors to HTTP statuses.
func recordError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, records.ErrNoBackend):
		Error(w, http.StatusServiceUnavailable, "records backend not configured")
	case errors.Is(err, records.ErrInvalid):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, records.ErrNotFound):
		Error(w, http.StatusNotFound, "not found")
	default:
		slog.Error("Records operation failed", "error", err)
		Error(w, http.StatusInternalServerError, "internal error")
	}
}

// site returns the tenant resolved by siteconfig.Middleware.
func site(w http.ResponseWriter, r *http.Request) (*siteconfig.Site, bool) {
	s := siteconfig.FromContext(r.Context())
	if s == nil {
		Error(w, http.StatusInternalServerError, "site not configured")
		return nil, false
	}
	return s, true
}

func pageSize(s *siteconfig.Site) int {
	if s.Dashboard != nil && s.Dashboard.PageSize > 0 {
		return s.Dashboard.PageSize
	}
	return 0
}
