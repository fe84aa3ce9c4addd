package mockdata

import (
	"fmt"
	"time"

	"github.com/ashureev/voicesite/internal/domain"
)

// DefaultServices is used when a site lists no services.
var DefaultServices = []string{"Consultation", "Follow-up", "Check-up", "Treatment", "Review"}

var (
	durations   = []int{15, 30, 45, 60}
	statusOrder = []string{domain.StatusConfirmed, domain.StatusPending, domain.StatusCancelled, domain.StatusCompleted}
	statusWeigh = []int{45, 30, 10, 15}
	notes       = []string{"", "", "First visit", "Requested morning slot", "Bring previous records", "Follow-up from last month"}
	conditions  = []string{"Acne", "Eczema", "Psoriasis", "Rosacea", "Routine check", "Allergy", "Hypertension", "None"}
	intents     = []string{"book_appointment", "reschedule", "cancel", "pricing_question", "hours_question", "insurance_question", "speak_to_staff"}
	sentiments  = []string{"positive", "neutral", "negative"}
	outcomeWt   = []int{62, 15, 10, 10, 3}
)

// Appointments returns n bookings spread from a week before to three weeks after from.
func (g *Generator) Appointments(n int, services []string, from time.Time) []domain.Appointment {
	if len(services) == 0 {
		services = DefaultServices
	}
	day := truncateDay(from)
	out := make([]domain.Appointment, 0, max(n, 0))
	for i := 0; i < n; i++ {
		name := g.name()
		date := day.AddDate(0, 0, g.between(-7, 21))
		slot := g.between(0, 19) // 08:00 .. 17:30
		out = append(out, domain.Appointment{
			ID:          g.id(),
			PatientName: name,
			Email:       emailFor(name),
			Phone:       g.phone(),
			Service:     pick(g, services),
			Date:        date.Format(domain.DateLayout),
			Time:        fmt.Sprintf("%02d:%02d", 8+slot/2, (slot%2)*30),
			DurationMin: pick(g, durations),
			Status:      weighted(g, statusOrder, statusWeigh),
			Notes:       pick(g, notes),
			CreatedAt:   date.AddDate(0, 0, -g.between(1, 30)),
		})
	}
	return out
}

// Patients returns n customer records.
func (g *Generator) Patients(n int, from time.Time) []domain.Patient {
	day := truncateDay(from)
	out := make([]domain.Patient, 0, max(n, 0))
	for i := 0; i < n; i++ {
		name := g.name()
		status := domain.PatientActive
		lastVisit := day.AddDate(0, 0, -g.between(0, 120))
		if g.rng.IntN(5) == 0 {
			status = domain.PatientInactive
			lastVisit = day.AddDate(0, 0, -g.between(180, 720))
		}
		out = append(out, domain.Patient{
			ID:          g.id(),
			Name:        name,
			Email:       emailFor(name),
			Phone:       g.phone(),
			DateOfBirth: day.AddDate(-g.between(18, 85), -g.between(0, 11), -g.between(0, 27)).Format(domain.DateLayout),
			LastVisit:   lastVisit.Format(domain.DateLayout),
			Visits:      g.between(1, 24),
			Condition:   pick(g, conditions),
			Status:      status,
		})
	}
	return out
}

// CallLogs returns n calls from the two weeks before end, newest first.
func (g *Generator) CallLogs(n int, end time.Time) []domain.CallLog {
	out := make([]domain.CallLog, 0, max(n, 0))
	cursor := end
	for i := 0; i < n; i++ {
		cursor = cursor.Add(-time.Duration(g.between(5, 14*24*60/max(n, 1))) * time.Minute)
		outcome := weighted(g, domain.CallOutcomes, outcomeWt)
		duration := g.between(45, 600)
		if outcome == domain.OutcomeMissed {
			duration = 0
		}
		intent := pick(g, intents)
		name := g.name()
		out = append(out, domain.CallLog{
			ID:          g.id(),
			Caller:      name,
			Phone:       g.phone(),
			StartedAt:   cursor,
			DurationSec: duration,
			Outcome:     outcome,
			Sentiment:   weighted(g, sentiments, []int{55, 35, 10}),
			Intent:      intent,
			Summary:     summarize(name, intent, outcome),
		})
	}
	return out
}

func summarize(name, intent, outcome string) string {
	if outcome == domain.OutcomeMissed {
		return "Call was not answered."
	}
	if outcome == domain.OutcomeDropped {
		return "Call with " + name + " dropped before it finished."
	}
	switch intent {
	case "book_appointment":
		return name + " booked a new appointment."
	case "reschedule":
		return name + " moved an existing appointment."
	case "cancel":
		return name + " cancelled an appointment."
	case "speak_to_staff":
		return name + " asked to speak with a staff member."
	default:
		return name + " asked a general question."
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
