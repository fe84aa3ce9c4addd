package api

import (
	"log/slog"
	"net/http"

	"github.com/ashureev/voicesite/internal/listing"
	"github.com/ashureev/voicesite/internal/render"
	g "maragu.dev/gomponents"
)

func writeHTML(w http.ResponseWriter, status int, n g.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := n.Render(w); err != nil {
		slog.Error("Failed to render page", "error", err)
	}
}

// Landing renders the marketing page.
func (h *Handler) Landing(w http.ResponseWriter, r *http.Request) {
	s, ok := site(w, r)
	if !ok {
		return
	}
	writeHTML(w, http.StatusOK, render.LandingPage(s))
}

// DashboardPage renders the admin dashboard with the tab, filters and page
// taken from the query string.
func (h *Handler) DashboardPage(w http.ResponseWriter, r *http.Request) {
	s, ok := site(w, r)
	if !ok {
		return
	}
	if !s.SectionEnabled("dashboard") {
		http.NotFound(w, r)
		return
	}

	ctx := r.Context()
	q := listing.ParseQuery(r.URL.Query(), pageSize(s))
	dash := h.records.Dashboard(ctx, s)
	view := render.DashboardView{
		Tab:       render.NormalizeTab(r.URL.Query().Get("tab")),
		Dashboard: dash.Data,
		Query:     q,
		Degraded:  dash.Degraded,
		Err:       dash.Err,
		Now:       h.now(),
	}

	var degraded bool
	var reason string
	switch view.Tab {
	case render.TabAppointments:
		res := h.records.Appointments(ctx, s)
		view.Appointments = listing.Paginate(listing.Filter(res.Data, q, listing.AppointmentFields), q.Page, q.PageSize)
		degraded, reason = res.Degraded, res.Err
	case render.TabPatients:
		res := h.records.Patients(ctx, s)
		view.Patients = listing.Paginate(listing.Filter(res.Data, q, listing.PatientFields), q.Page, q.PageSize)
		degraded, reason = res.Degraded, res.Err
	default:
		res := h.records.CallLogs(ctx, s)
		view.Calls = listing.Paginate(listing.Filter(res.Data, q, listing.CallLogFields), q.Page, q.PageSize)
		degraded, reason = res.Degraded, res.Err
	}
	if degraded && !view.Degraded {
		view.Degraded, view.Err = true, reason
	}

	writeHTML(w, http.StatusOK, render.DashboardPage(s, view))
}
