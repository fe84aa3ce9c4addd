package records

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/ashureev/voicesite/internal/domain"
	"github.com/ashureev/voicesite/internal/siteconfig"
	"github.com/ashureev/voicesite/internal/store"
)

// fakeRepo is an in-memory store.Repository.
type fakeRepo struct {
	appts   map[string]domain.Appointment
	calls   []domain.CallLog
	listErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{appts: make(map[string]domain.Appointment)}
}

func (f *fakeRepo) ListAppointments(context.Context) ([]domain.Appointment, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Appointment, 0, len(f.appts))
	for _, a := range f.appts {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeRepo) GetAppointment(_ context.Context, id string) (*domain.Appointment, error) {
	a, ok := f.appts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &a, nil
}

func (f *fakeRepo) CreateAppointment(_ context.Context, a *domain.Appointment) error {
	f.appts[a.ID] = *a
	return nil
}

func (f *fakeRepo) UpdateAppointment(_ context.Context, a *domain.Appointment) error {
	if _, ok := f.appts[a.ID]; !ok {
		return store.ErrNotFound
	}
	f.appts[a.ID] = *a
	return nil
}

func (f *fakeRepo) DeleteAppointment(_ context.Context, id string) error {
	if _, ok := f.appts[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.appts, id)
	return nil
}

func (f *fakeRepo) ListPatients(context.Context) ([]domain.Patient, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []domain.Patient{}, nil
}

func (f *fakeRepo) ListCallLogs(context.Context, int) ([]domain.CallLog, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.calls, nil
}

func (f *fakeRepo) AppendCallLog(_ context.Context, c *domain.CallLog) error {
	f.calls = append(f.calls, *c)
	return nil
}

func (f *fakeRepo) SeedIfEmpty(context.Context, store.Fixtures) (bool, error) { return false, nil }
func (f *fakeRepo) Ping(context.Context) error                                { return f.listErr }
func (f *fakeRepo) Close() error                                              { return nil }

func validAppointment() domain.Appointment {
	return domain.Appointment{PatientName: "Ada Park", Date: "2026-03-10", Time: "10:00", DurationMin: 30}
}

func TestReadsWithoutBackendAreDegradedAndStable(t *testing.T) {
	s := NewService(nil, 99, time.Second)
	site, _ := siteconfig.Builtin("dermatology")

	first := s.Appointments(context.Background(), site)
	if !first.Degraded || first.Err == "" {
		t.Fatalf("expected degraded result with reason, got %+v", first)
	}
	if len(first.Data) != DemoAppointments {
		t.Fatalf("expected %d demo appointments, got %d", DemoAppointments, len(first.Data))
	}
	second := s.Appointments(context.Background(), site)
	if !reflect.DeepEqual(first.Data, second.Data) {
		t.Fatal("expected identical demo data across requests")
	}
}

func TestReadFailureFallsBack(t *testing.T) {
	repo := newFakeRepo()
	repo.listErr = errors.New("disk on fire")
	s := NewService(repo, 1, time.Second)

	res := s.CallLogs(context.Background(), nil)
	if !res.Degraded || res.Err != "disk on fire" || len(res.Data) != DemoCallLogs {
		t.Fatalf("unexpected fallback result: degraded=%v err=%q n=%d", res.Degraded, res.Err, len(res.Data))
	}

	d := s.Dashboard(context.Background(), nil)
	if !d.Degraded || len(d.Data.Stats) == 0 {
		t.Fatalf("expected degraded dashboard with stats, got %+v", d)
	}
}

func TestWritesRequireBackend(t *testing.T) {
	s := NewService(nil, 1, time.Second)
	if _, err := s.CreateAppointment(context.Background(), validAppointment()); !errors.Is(err, ErrNoBackend) {
		t.Fatalf("expected ErrNoBackend, got %v", err)
	}
	if err := s.DeleteAppointment(context.Background(), "x"); !errors.Is(err, ErrNoBackend) {
		t.Fatalf("expected ErrNoBackend, got %v", err)
	}
}

func TestAppointmentLifecycle(t *testing.T) {
	repo := newFakeRepo()
	s := NewService(repo, 1, time.Second)
	ctx := context.Background()

	created, err := s.CreateAppointment(ctx, validAppointment())
	if err != nil {
		t.Fatalf("CreateAppointment failed: %v", err)
	}
	if created.ID == "" || created.Status != domain.StatusPending || created.CreatedAt.IsZero() {
		t.Fatalf("expected assigned id, pending status and timestamp, got %+v", created)
	}

	bad := validAppointment()
	bad.Time = "25:99"
	if _, err := s.CreateAppointment(ctx, bad); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}

	upd := validAppointment()
	upd.Status = domain.StatusConfirmed
	updated, err := s.UpdateAppointment(ctx, created.ID, upd)
	if err != nil {
		t.Fatalf("UpdateAppointment failed: %v", err)
	}
	if updated.CreatedAt != created.CreatedAt || updated.Status != domain.StatusConfirmed {
		t.Fatalf("unexpected update result %+v", updated)
	}

	if _, err := s.UpdateAppointment(ctx, "missing", upd); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteAppointment(ctx, created.ID); err != nil {
		t.Fatalf("DeleteAppointment failed: %v", err)
	}

	res := s.Appointments(ctx, nil)
	if res.Degraded || len(res.Data) != 0 {
		t.Fatalf("expected empty live result, got %+v", res)
	}
}

func TestRecordCall(t *testing.T) {
	repo := newFakeRepo()
	s := NewService(repo, 1, time.Second)
	if err := s.RecordCall(context.Background(), domain.CallLog{Caller: "Web visitor", Outcome: domain.OutcomeCompleted}); err != nil {
		t.Fatalf("RecordCall failed: %v", err)
	}
	if len(repo.calls) != 1 || repo.calls[0].ID == "" {
		t.Fatalf("expected one call log with id, got %+v", repo.calls)
	}
}

func TestMeasure(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	appts := []domain.Appointment{
		{Date: "2026-03-10", Status: domain.StatusConfirmed},
		{Date: "2026-03-10", Status: domain.StatusPending},
		{Date: "2026-03-11", Status: domain.StatusCompleted},
	}
	calls := []domain.CallLog{
		{Outcome: domain.OutcomeCompleted, DurationSec: 100},
		{Outcome: domain.OutcomeMissed},
		{Outcome: domain.OutcomeCompleted, DurationSec: 200},
		{Outcome: domain.OutcomeVoicemail, DurationSec: 0},
	}
	m := Measure(appts, nil, calls, now)
	if m["appointments_today"] != 2 || m["booked"] != 2 || m["total_calls"] != 4 {
		t.Fatalf("unexpected counts %+v", m)
	}
	if m["answer_rate"] != 75 || m["avg_duration"] != 100 {
		t.Fatalf("unexpected rates %+v", m)
	}
}

func TestCalendarEvents(t *testing.T) {
	appts := []domain.Appointment{
		{ID: "a", PatientName: "Ada", Service: "Botox", Date: "2026-03-10", Time: "09:30", DurationMin: 45, Status: domain.StatusConfirmed},
		{ID: "b", PatientName: "Bad", Date: "not-a-date", Time: "09:30", DurationMin: 30, Status: domain.StatusPending},
	}
	events := CalendarEvents(appts, time.UTC)
	if len(events) != 1 {
		t.Fatalf("expected malformed appointment to be skipped, got %d events", len(events))
	}
	e := events[0]
	if e.Title != "Ada - Botox" || e.Start != "2026-03-10T09:30:00Z" || e.End != "2026-03-10T10:15:00Z" {
		t.Fatalf("unexpected event %+v", e)
	}
	if e.Color != "#16a34a" || e.ExtendedProps.Status != domain.StatusConfirmed {
		t.Fatalf("unexpected event styling %+v", e)
	}
}
