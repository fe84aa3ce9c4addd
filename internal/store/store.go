// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"errors"

	"github.com/ashureev/voicesite/internal/domain"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Repository persists the records shown on the dashboard.
type Repository interface {
	// ListAppointments returns every appointment ordered by date and time.
	ListAppointments(ctx context.Context) ([]domain.Appointment, error)

	// GetAppointment returns one appointment or ErrNotFound.
	GetAppointment(ctx context.Context, id string) (*domain.Appointment, error)

	// CreateAppointment inserts a new appointment.
	CreateAppointment(ctx context.Context, a *domain.Appointment) error

	// UpdateAppointment replaces an existing appointment or returns ErrNotFound.
	UpdateAppointment(ctx context.Context, a *domain.Appointment) error

	// DeleteAppointment removes an appointment or returns ErrNotFound.
	DeleteAppointment(ctx context.Context, id string) error

	// ListPatients returns every patient ordered by name.
	ListPatients(ctx context.Context) ([]domain.Patient, error)

	// ListCallLogs returns call logs newest first. A limit <= 0 returns all of them.
	ListCallLogs(ctx context.Context, limit int) ([]domain.CallLog, error)

	// AppendCallLog records a finished call.
	AppendCallLog(ctx context.Context, c *domain.CallLog) error

	// SeedIfEmpty inserts the fixtures when the appointments table is empty and
	// reports whether it did.
	SeedIfEmpty(ctx context.Context, f Fixtures) (bool, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}

// Fixtures is a batch of demo records.
type Fixtures struct {
	Appointments []domain.Appointment
	Patients     []domain.Patient
	CallLogs     []domain.CallLog
}
