// Package shared holds helpers used by more than one layer.
//
//nolint:revive // "shared" is an intentional package name for cross-cutting helpers.
package shared

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// sqliteConflictMarkers are the driver messages for lock contention.
var sqliteConflictMarkers = []string{"SQLITE_BUSY", "database is locked", "database table is locked"}

// IsSQLiteConflictError reports whether err is an SQLite lock contention error
// that is worth retrying.
func IsSQLiteConflictError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, m := range sqliteConflictMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// RetryPolicy bounds RetryOnConflict.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultRetryPolicy retries three times starting at 100ms.
var DefaultRetryPolicy = RetryPolicy{MaxRetries: 3, BaseDelay: 100 * time.Millisecond}

// RetryOnConflict runs fn until it succeeds, fails with a non-conflict error,
// or the policy is exhausted. Delays double after each attempt.
func RetryOnConflict(ctx context.Context, p RetryPolicy, op string, fn func() error) error {
	attempts := max(p.MaxRetries, 1)
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil || !IsSQLiteConflictError(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		delay := p.BaseDelay * time.Duration(1<<i)
		slog.Debug("SQLite busy, retrying", "op", op, "attempt", i+1, "delay", delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}
