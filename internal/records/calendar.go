package records

import (
	"log/slog"
	"time"

	"github.com/ashureev/voicesite/internal/dashboard"
	"github.com/ashureev/voicesite/internal/domain"
)

// CalendarEvent is an appointment projected for a calendar widget.
type CalendarEvent struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Start         string       `json:"start"`
	End           string       `json:"end"`
	Color         string       `json:"color"`
	ExtendedProps EventDetails `json:"extendedProps"`
}

// EventDetails carries the appointment fields a calendar popover shows.
type EventDetails struct {
	PatientName string `json:"patient_name"`
	Service     string `json:"service"`
	Status      string `json:"status"`
	Phone       string `json:"phone,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// CalendarEvents projects appointments into calendar events in loc.
// Appointments with unparsable dates are skipped.
func CalendarEvents(appts []domain.Appointment, loc *time.Location) []CalendarEvent {
	if loc == nil {
		loc = time.Local
	}
	out := make([]CalendarEvent, 0, len(appts))
	for i := range appts {
		a := &appts[i]
		start, err := a.Start(loc)
		if err != nil {
			slog.Debug("Skipping appointment with bad start", "id", a.ID, "error", err)
			continue
		}
		title := a.PatientName
		if a.Service != "" {
			title += " - " + a.Service
		}
		out = append(out, CalendarEvent{
			ID:    a.ID,
			Title: title,
			Start: start.Format(time.RFC3339),
			End:   start.Add(time.Duration(a.DurationMin) * time.Minute).Format(time.RFC3339),
			Color: dashboard.StyleFor(dashboard.StatusColor(a.Status)).Hex,
			ExtendedProps: EventDetails{
				PatientName: a.PatientName,
				Service:     a.Service,
				Status:      a.Status,
				Phone:       a.Phone,
				Notes:       a.Notes,
			},
		})
	}
	return out
}
