// Package records serves appointments, patients and call logs to the API and
// pages. Reads fall back to generated demo data when the backend is absent or
// failing, and the fallback is reported to the caller instead of hidden.
package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ashureev/voicesite/internal/dashboard"
	"github.com/ashureev/voicesite/internal/domain"
	"github.com/ashureev/voicesite/internal/mockdata"
	"github.com/ashureev/voicesite/internal/siteconfig"
	"github.com/ashureev/voicesite/internal/store"
	"github.com/google/uuid"
)

// Errors returned by write operations.
var (
	ErrNoBackend = errors.New("no records backend configured")
	ErrInvalid   = errors.New("invalid record")
	ErrNotFound  = store.ErrNotFound
)

// Demo fixture sizes.
const (
	DemoAppointments = 60
	DemoPatients     = 40
	DemoCallLogs     = 50
)

// Result is a read outcome. Degraded is set when Data was generated because
// the backend was unavailable; Err then carries the reason.
type Result[T any] struct {
	Data     T      `json:"data"`
	Degraded bool   `json:"degraded"`
	Err      string `json:"error,omitempty"`
}

// Service reads and writes display records.
type Service struct {
	repo    store.Repository
	seed    uint64
	timeout time.Duration
	now     func() time.Time
}

// NewService creates a records service. repo may be nil, in which case every
// read is served from generated data seeded with seed.
func NewService(repo store.Repository, seed uint64, timeout time.Duration) *Service {
	if seed == 0 {
		seed = mockdata.RandomSeed()
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{repo: repo, seed: seed, timeout: timeout, now: time.Now}
}

// HasBackend reports whether writes are possible.
func (s *Service) HasBackend() bool {
	return s.repo != nil
}

// Seed returns the demo data seed.
func (s *Service) Seed() uint64 {
	return s.seed
}

// Generator returns a fresh generator for the service seed.
// The same seed is used on every call so demo pages stay stable across requests.
func (s *Service) Generator() *mockdata.Generator {
	return mockdata.NewGenerator(s.seed)
}

func (s *Service) anchor() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 18, 0, 0, 0, time.Local)
}

// Fixtures generates the demo records for site.
func (s *Service) Fixtures(site *siteconfig.Site) store.Fixtures {
	gen := s.Generator()
	anchor := s.anchor()
	var services []string
	if site != nil {
		services = site.Industry.Services
	}
	return store.Fixtures{
		Appointments: gen.Appointments(DemoAppointments, services, anchor),
		Patients:     gen.Patients(DemoPatients, anchor),
		CallLogs:     gen.CallLogs(DemoCallLogs, anchor),
	}
}

// read runs fetch against the backend, falling back to the generated value on failure.
func read[T any](ctx context.Context, s *Service, what string, fetch func(context.Context, store.Repository) (T, error), fallback func() T) Result[T] {
	if s.repo == nil {
		return Result[T]{Data: fallback(), Degraded: true, Err: ErrNoBackend.Error()}
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := fetch(ctx, s.repo)
	if err != nil {
		slog.Warn("Records backend failed, serving generated data", "records", what, "error", err)
		return Result[T]{Data: fallback(), Degraded: true, Err: err.Error()}
	}
	return Result[T]{Data: data}
}

// Appointments lists appointments.
func (s *Service) Appointments(ctx context.Context, site *siteconfig.Site) Result[[]domain.Appointment] {
	return read(ctx, s, "appointments",
		func(ctx context.Context, r store.Repository) ([]domain.Appointment, error) {
			return r.ListAppointments(ctx)
		},
		func() []domain.Appointment { return s.Fixtures(site).Appointments })
}

// Patients lists patients.
func (s *Service) Patients(ctx context.Context, site *siteconfig.Site) Result[[]domain.Patient] {
	return read(ctx, s, "patients",
		func(ctx context.Context, r store.Repository) ([]domain.Patient, error) {
			return r.ListPatients(ctx)
		},
		func() []domain.Patient { return s.Fixtures(site).Patients })
}

// CallLogs lists call logs newest first.
func (s *Service) CallLogs(ctx context.Context, site *siteconfig.Site) Result[[]domain.CallLog] {
	return read(ctx, s, "call logs",
		func(ctx context.Context, r store.Repository) ([]domain.CallLog, error) {
			return r.ListCallLogs(ctx, 0)
		},
		func() []domain.CallLog { return s.Fixtures(site).CallLogs })
}

// Dashboard builds the dashboard payload. Metrics that can be measured from
// backend records replace generated values.
func (s *Service) Dashboard(ctx context.Context, site *siteconfig.Site) Result[dashboard.Dashboard] {
	appts := s.Appointments(ctx, site)
	patients := s.Patients(ctx, site)
	calls := s.CallLogs(ctx, site)

	res := Result[dashboard.Dashboard]{}
	var measured map[string]float64
	for _, r := range []struct {
		degraded bool
		err      string
	}{{appts.Degraded, appts.Err}, {patients.Degraded, patients.Err}, {calls.Degraded, calls.Err}} {
		if r.degraded {
			res.Degraded = true
			if res.Err == "" {
				res.Err = r.err
			}
		}
	}
	if !res.Degraded {
		measured = Measure(appts.Data, patients.Data, calls.Data, s.now())
	}
	res.Data = dashboard.Build(site, s.Generator(), s.now(), measured)
	return res
}

// Measure derives metric values from records.
func Measure(appts []domain.Appointment, patients []domain.Patient, calls []domain.CallLog, now time.Time) map[string]float64 {
	today := now.Format(domain.DateLayout)
	m := map[string]float64{
		"total_calls":    float64(len(calls)),
		"total_patients": float64(len(patients)),
	}

	var todayCount, booked float64
	for _, a := range appts {
		if a.Date == today {
			todayCount++
		}
		if a.Status == domain.StatusConfirmed || a.Status == domain.StatusCompleted {
			booked++
		}
	}
	m["appointments_today"] = todayCount
	m["booked"] = booked

	if len(calls) > 0 {
		var answered, totalSec float64
		for _, c := range calls {
			if c.Outcome != domain.OutcomeMissed {
				answered++
				totalSec += float64(c.DurationSec)
			}
		}
		m["answer_rate"] = answered / float64(len(calls)) * 100
		if answered > 0 {
			m["avg_duration"] = totalSec / answered
		}
	}
	return m
}

// CreateAppointment validates and stores a new appointment. ID and CreatedAt are assigned here.
func (s *Service) CreateAppointment(ctx context.Context, a domain.Appointment) (*domain.Appointment, error) {
	if s.repo == nil {
		return nil, ErrNoBackend
	}
	if a.Status == "" {
		a.Status = domain.StatusPending
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	a.ID = uuid.NewString()
	a.CreatedAt = s.now().UTC().Truncate(time.Second)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.repo.CreateAppointment(ctx, &a); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	return &a, nil
}

// UpdateAppointment replaces the appointment with id, keeping its CreatedAt.
func (s *Service) UpdateAppointment(ctx context.Context, id string, a domain.Appointment) (*domain.Appointment, error) {
	if s.repo == nil {
		return nil, ErrNoBackend
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	existing, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment %s: %w", id, err)
	}
	a.ID = id
	a.CreatedAt = existing.CreatedAt
	if err := s.repo.UpdateAppointment(ctx, &a); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	return &a, nil
}

// DeleteAppointment removes the appointment with id.
func (s *Service) DeleteAppointment(ctx context.Context, id string) error {
	if s.repo == nil {
		return ErrNoBackend
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.repo.DeleteAppointment(ctx, id); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}

// RecordCall stores a finished voice call. Without a backend the call is only logged.
func (s *Service) RecordCall(ctx context.Context, c domain.CallLog) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if s.repo == nil {
		slog.Info("Call finished", "call_id", c.ID, "agent_id", c.AgentID, "duration_sec", c.DurationSec, "outcome", c.Outcome)
		return ErrNoBackend
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.repo.AppendCallLog(ctx, &c); err != nil {
		return fmt.Errorf("record call: %w", err)
	}
	return nil
}

// Ping checks the backend. A service without a backend is always healthy.
func (s *Service) Ping(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	return s.repo.Ping(ctx)
}
