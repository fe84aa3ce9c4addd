package voice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper periodically ends and removes abandoned voice sessions.
type Sweeper struct {
	cron *cron.Cron
	reg  *Registry
	ttl  time.Duration
}

// NewSweeper schedules sweeps of reg on spec (standard cron or "@every 1m").
func NewSweeper(reg *Registry, ttl time.Duration, spec string) (*Sweeper, error) {
	s := &Sweeper{cron: cron.New(), reg: reg, ttl: ttl}
	if _, err := s.cron.AddFunc(spec, func() { s.Sweep(context.Background()) }); err != nil {
		return nil, fmt.Errorf("schedule voice sweep %q: %w", spec, err)
	}
	return s, nil
}

// Schedule runs fn on spec alongside the session sweep.
func (s *Sweeper) Schedule(spec string, fn func()) error {
	if _, err := s.cron.AddFunc(spec, fn); err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}
	return nil
}

// Start begins the schedule.
func (s *Sweeper) Start() {
	s.cron.Start()
	slog.Info("Voice sweeper started", "ttl", s.ttl)
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("Voice sweeper stopped")
}

// Sweep removes every expired session and returns how many it removed.
func (s *Sweeper) Sweep(ctx context.Context) int {
	expired := s.reg.Expired(s.ttl)
	if len(expired) == 0 {
		return 0
	}
	slog.Info("Voice sweeper found expired sessions", "count", len(expired))
	for _, sess := range expired {
		s.reg.Remove(ctx, sess.VisitorID, sess.SessionID)
	}
	return len(expired)
}
