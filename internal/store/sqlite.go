package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ashureev/voicesite/internal/domain"
	"github.com/ashureev/voicesite/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db    *sql.DB
	retry shared.RetryPolicy
	mu    sync.Mutex // serializes writes to prevent SQLITE_BUSY
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string, retry shared.RetryPolicy) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	// WAL mode lets the dashboard read while the voice handler appends call logs.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if retry.MaxRetries <= 0 {
		retry = shared.DefaultRetryPolicy
	}
	s := &SQLiteStore{db: db, retry: retry}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS appointments (
		id TEXT PRIMARY KEY,
		patient_name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		service TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL,
		time TEXT NOT NULL,
		duration_min INTEGER NOT NULL,
		status TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_appointments_date ON appointments(date, time);

	CREATE TABLE IF NOT EXISTS patients (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		date_of_birth TEXT NOT NULL DEFAULT '',
		last_visit TEXT NOT NULL DEFAULT '',
		visits INTEGER NOT NULL DEFAULT 0,
		condition TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS call_logs (
		id TEXT PRIMARY KEY,
		caller TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		started_at INTEGER NOT NULL,
		duration_sec INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		sentiment TEXT NOT NULL DEFAULT '',
		intent TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '',
		agent_id TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_call_logs_started ON call_logs(started_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// write runs fn under the write lock with conflict retries.
func (s *SQLiteStore) write(ctx context.Context, op string, fn func() error) error {
	return shared.RetryOnConflict(ctx, s.retry, op, func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		return fn()
	})
}

type scanner interface {
	Scan(dest ...any) error
}

const appointmentColumns = `id, patient_name, email, phone, service, date, time, duration_min, status, notes, created_at`

func scanAppointment(row scanner) (domain.Appointment, error) {
	var a domain.Appointment
	var createdAt int64
	err := row.Scan(&a.ID, &a.PatientName, &a.Email, &a.Phone, &a.Service,
		&a.Date, &a.Time, &a.DurationMin, &a.Status, &a.Notes, &createdAt)
	a.CreatedAt = time.Unix(createdAt, 0).UTC()
	return a, err
}

// ListAppointments returns every appointment ordered by date and time.
func (s *SQLiteStore) ListAppointments(ctx context.Context) ([]domain.Appointment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+appointmentColumns+` FROM appointments ORDER BY date, time, id`)
	if err != nil {
		return nil, fmt.Errorf("query appointments: %w", err)
	}
	defer closeRows(rows, "appointments")

	out := make([]domain.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment row: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate appointments: %w", err)
	}
	return out, nil
}

// GetAppointment returns one appointment or ErrNotFound.
func (s *SQLiteStore) GetAppointment(ctx context.Context, id string) (*domain.Appointment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = ?`, id)
	a, err := scanAppointment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan appointment %s: %w", id, err)
	}
	return &a, nil
}

// CreateAppointment inserts a new appointment.
func (s *SQLiteStore) CreateAppointment(ctx context.Context, a *domain.Appointment) error {
	return s.write(ctx, "create appointment", func() error {
		return insertAppointment(ctx, s.db, a)
	})
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertAppointment(ctx context.Context, db execer, a *domain.Appointment) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO appointments (`+appointmentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.PatientName, a.Email, a.Phone, a.Service,
		a.Date, a.Time, a.DurationMin, a.Status, a.Notes, a.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert appointment %s: %w", a.ID, err)
	}
	return nil
}

// UpdateAppointment replaces an existing appointment or returns ErrNotFound.
func (s *SQLiteStore) UpdateAppointment(ctx context.Context, a *domain.Appointment) error {
	return s.write(ctx, "update appointment", func() error {
		result, err := s.db.ExecContext(ctx, `
			UPDATE appointments SET patient_name = ?, email = ?, phone = ?, service = ?,
				date = ?, time = ?, duration_min = ?, status = ?, notes = ?
			WHERE id = ?`,
			a.PatientName, a.Email, a.Phone, a.Service,
			a.Date, a.Time, a.DurationMin, a.Status, a.Notes, a.ID)
		if err != nil {
			return fmt.Errorf("update appointment %s: %w", a.ID, err)
		}
		return requireRow(result, a.ID)
	})
}

// DeleteAppointment removes an appointment or returns ErrNotFound.
func (s *SQLiteStore) DeleteAppointment(ctx context.Context, id string) error {
	return s.write(ctx, "delete appointment", func() error {
		result, err := s.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete appointment %s: %w", id, err)
		}
		return requireRow(result, id)
	})
}

func requireRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("appointment %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListPatients returns every patient ordered by name.
func (s *SQLiteStore) ListPatients(ctx context.Context) ([]domain.Patient, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, phone, date_of_birth, last_visit, visits, condition, status
		FROM patients ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("query patients: %w", err)
	}
	defer closeRows(rows, "patients")

	out := make([]domain.Patient, 0)
	for rows.Next() {
		var p domain.Patient
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.DateOfBirth,
			&p.LastVisit, &p.Visits, &p.Condition, &p.Status); err != nil {
			return nil, fmt.Errorf("scan patient row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patients: %w", err)
	}
	return out, nil
}

// ListCallLogs returns call logs newest first.
func (s *SQLiteStore) ListCallLogs(ctx context.Context, limit int) ([]domain.CallLog, error) {
	query := `
		SELECT id, caller, phone, started_at, duration_sec, outcome, sentiment, intent, summary, agent_id
		FROM call_logs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query call logs: %w", err)
	}
	defer closeRows(rows, "call logs")

	out := make([]domain.CallLog, 0)
	for rows.Next() {
		var c domain.CallLog
		var startedAt int64
		if err := rows.Scan(&c.ID, &c.Caller, &c.Phone, &startedAt, &c.DurationSec,
			&c.Outcome, &c.Sentiment, &c.Intent, &c.Summary, &c.AgentID); err != nil {
			return nil, fmt.Errorf("scan call log row: %w", err)
		}
		c.StartedAt = time.Unix(startedAt, 0).UTC()
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate call logs: %w", err)
	}
	return out, nil
}

// AppendCallLog records a finished call.
func (s *SQLiteStore) AppendCallLog(ctx context.Context, c *domain.CallLog) error {
	return s.write(ctx, "append call log", func() error {
		return insertCallLog(ctx, s.db, c)
	})
}

func insertCallLog(ctx context.Context, db execer, c *domain.CallLog) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO call_logs (id, caller, phone, started_at, duration_sec, outcome, sentiment, intent, summary, agent_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Caller, c.Phone, c.StartedAt.Unix(), c.DurationSec,
		c.Outcome, c.Sentiment, c.Intent, c.Summary, c.AgentID)
	if err != nil {
		return fmt.Errorf("insert call log %s: %w", c.ID, err)
	}
	return nil
}

// SeedIfEmpty inserts f in one transaction when no appointments exist yet.
func (s *SQLiteStore) SeedIfEmpty(ctx context.Context, f Fixtures) (bool, error) {
	seeded := false
	err := s.write(ctx, "seed", func() error {
		var n int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM appointments`).Scan(&n); err != nil {
			return fmt.Errorf("count appointments: %w", err)
		}
		if n > 0 {
			return nil
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin seed: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		for i := range f.Appointments {
			if err := insertAppointment(ctx, tx, &f.Appointments[i]); err != nil {
				return err
			}
		}
		for _, p := range f.Patients {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO patients (id, name, email, phone, date_of_birth, last_visit, visits, condition, status)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				p.ID, p.Name, p.Email, p.Phone, p.DateOfBirth, p.LastVisit, p.Visits, p.Condition, p.Status); err != nil {
				return fmt.Errorf("insert patient %s: %w", p.ID, err)
			}
		}
		for i := range f.CallLogs {
			if err := insertCallLog(ctx, tx, &f.CallLogs[i]); err != nil {
				return err
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit seed: %w", err)
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if seeded {
		slog.Info("Seeded demo records",
			"appointments", len(f.Appointments),
			"patients", len(f.Patients),
			"call_logs", len(f.CallLogs))
	}
	return seeded, nil
}

func closeRows(rows *sql.Rows, what string) {
	if err := rows.Close(); err != nil {
		slog.Warn("failed to close rows", "table", what, "error", err)
	}
}
