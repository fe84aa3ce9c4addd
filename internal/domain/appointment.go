// Package domain contains the display records shared across the application.
package domain

import (
	"fmt"
	"time"
)

// Appointment statuses.
const (
	StatusConfirmed = "confirmed"
	StatusPending   = "pending"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// AppointmentStatuses lists every valid appointment status.
var AppointmentStatuses = []string{StatusConfirmed, StatusPending, StatusCancelled, StatusCompleted}

// DateLayout is the day format used by every date field and filter.
const DateLayout = "2006-01-02"

// Appointment is a booking shown in the dashboard and calendar.
type Appointment struct {
	ID          string    `json:"id"`
	PatientName string    `json:"patient_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Service     string    `json:"service"`
	Date        string    `json:"date"` // YYYY-MM-DD
	Time        string    `json:"time"` // HH:MM, 24h
	DurationMin int       `json:"duration_min"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Start returns the appointment start in loc.
func (a *Appointment) Start(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" 15:04", a.Date+" "+a.Time, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse appointment %s start: %w", a.ID, err)
	}
	return t, nil
}

// End returns the appointment end in loc.
func (a *Appointment) End(loc *time.Location) (time.Time, error) {
	start, err := a.Start(loc)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(a.DurationMin) * time.Minute), nil
}

// ValidStatus reports whether s is an appointment status.
func ValidStatus(s string) bool {
	for _, v := range AppointmentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Validate checks the fields required to persist an appointment.
func (a *Appointment) Validate() error {
	if a.PatientName == "" {
		return fmt.Errorf("patient_name is required")
	}
	if _, err := time.Parse(DateLayout, a.Date); err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD")
	}
	if _, err := time.Parse("15:04", a.Time); err != nil {
		return fmt.Errorf("time must be HH:MM")
	}
	if a.DurationMin <= 0 {
		return fmt.Errorf("duration_min must be > 0")
	}
	if !ValidStatus(a.Status) {
		return fmt.Errorf("unknown status %q", a.Status)
	}
	return nil
}
