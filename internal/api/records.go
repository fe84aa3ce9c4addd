package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ashureev/voicesite/internal/domain"
	"github.com/ashureev/voicesite/internal/listing"
	"github.com/ashureev/voicesite/internal/records"
	"github.com/go-chi/chi/v5"
)

// listResponse is one filtered page plus the fallback status of the read.
type listResponse[T any] struct {
	listing.Page[T]
	Degraded bool   `json:"degraded"`
	Error    string `json:"error,omitempty"`
}

func writeList[T any](w http.ResponseWriter, r *http.Request, res records.Result[[]T], fields listing.Fields[T], defaultPageSize int) {
	q := listing.ParseQuery(r.URL.Query(), defaultPageSize)
	filtered := listing.Filter(res.Data, q, fields)
	JSON(w, http.StatusOK, listResponse[T]{
		Page:     listing.Paginate(filtered, q.Page, q.PageSize),
		Degraded: res.Degraded,
		Error:    res.Err,
	})
}

// GetSite returns the active site configuration.
func (h *Handler) GetSite(w http.ResponseWriter, r *http.Request) {
	s, ok := site(w, r)
	if !ok {
		return
	}
	JSON(w, http.StatusOK, s)
}

// GetDashboard returns stat cards and chart series.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	s, ok := site(w, r)
	if !ok {
		return
	}
	JSON(w, http.StatusOK, h.records.Dashboard(r.Context(), s))
}

// ListAppointments returns a filtered page of appointments.
func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	s, ok := site(w, r)
	if !ok {
		return
	}
	writeList(w, r, h.records.Appointments(r.Context(), s), listing.AppointmentFields, pageSize(s))
}

// ListPatients returns a filtered page of patients.
func (h *Handler) ListPatients(w http.ResponseWriter, r *http.Request) {
	s, ok := site(w, r)
	if !ok {
		return
	}
	writeList(w, r, h.records.Patients(r.Context(), s), listing.PatientFields, pageSize(s))
}

// ListCallLogs returns a filtered page of call logs.
func (h *Handler) ListCallLogs(w http.ResponseWriter, r *http.Request) {
	s, ok := site(w, r)
	if !ok {
		return
	}
	writeList(w, r, h.records.CallLogs(r.Context(), s), listing.CallLogFields, pageSize(s))
}

func decodeAppointment(w http.ResponseWriter, r *http.Request) (domain.Appointment, error) {
	var a domain.Appointment
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return a, fmt.Errorf("%w: %v", records.ErrInvalid, err)
	}
	return a, nil
}

// CreateAppointment stores a new appointment.
func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	a, err := decodeAppointment(w, r)
	if err != nil {
		recordError(w, err)
		return
	}
	created, err := h.records.CreateAppointment(r.Context(), a)
	if err != nil {
		recordError(w, err)
		return
	}
	JSON(w, http.StatusCreated, created)
}

// UpdateAppointment replaces an appointment.
func (h *Handler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	a, err := decodeAppointment(w, r)
	if err != nil {
		recordError(w, err)
		return
	}
	updated, err := h.records.UpdateAppointment(r.Context(), chi.URLParam(r, "id"), a)
	if err != nil {
		recordError(w, err)
		return
	}
	JSON(w, http.StatusOK, updated)
}

// DeleteAppointment removes an appointment.
func (h *Handler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	if err := h.records.DeleteAppointment(r.Context(), chi.URLParam(r, "id")); err != nil {
		recordError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type calendarResponse struct {
	Events   []records.CalendarEvent `json:"events"`
	Degraded bool                    `json:"degraded"`
	Error    string                  `json:"error,omitempty"`
}

// CalendarEvents returns appointments as calendar events. The optional start
// and end parameters bound the appointment day, end exclusive; only their
// date part is read so ISO datetimes work too.
func (h *Handler) CalendarEvents(w http.ResponseWriter, r *http.Request) {
	s, ok := site(w, r)
	if !ok {
		return
	}
	res := h.records.Appointments(r.Context(), s)
	start := dayParam(r, "start")
	end := dayParam(r, "end")

	appts := make([]domain.Appointment, 0, len(res.Data))
	for _, a := range res.Data {
		if start != "" && a.Date < start {
			continue
		}
		if end != "" && a.Date >= end {
			continue
		}
		appts = append(appts, a)
	}
	JSON(w, http.StatusOK, calendarResponse{
		Events:   records.CalendarEvents(appts, h.loc),
		Degraded: res.Degraded,
		Error:    res.Err,
	})
}

func dayParam(r *http.Request, key string) string {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if len(v) >= len(domain.DateLayout) {
		return v[:len(domain.DateLayout)]
	}
	return ""
}
