package shared

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIsSQLiteConflictError(t *testing.T) {
	if IsSQLiteConflictError(nil) {
		t.Fatal("nil is not a conflict")
	}
	if !IsSQLiteConflictError(errors.New("exec: database is locked (5) (SQLITE_BUSY)")) {
		t.Fatal("expected busy error to be a conflict")
	}
	if IsSQLiteConflictError(errors.New("no such table: appointments")) {
		t.Fatal("schema errors are not conflicts")
	}
}

func TestRetryOnConflict(t *testing.T) {
	p := RetryPolicy{MaxRetries: 3, BaseDelay: time.Millisecond}

	calls := 0
	err := RetryOnConflict(context.Background(), p, "test", func() error {
		calls++
		if calls < 3 {
			return errors.New("SQLITE_BUSY")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("expected success on third attempt, got err=%v calls=%d", err, calls)
	}

	calls = 0
	permanent := errors.New("constraint failed")
	err = RetryOnConflict(context.Background(), p, "test", func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) || calls != 1 {
		t.Fatalf("expected single attempt for permanent error, got err=%v calls=%d", err, calls)
	}

	calls = 0
	err = RetryOnConflict(context.Background(), p, "test", func() error {
		calls++
		return errors.New("database is locked")
	})
	if err == nil || calls != 3 {
		t.Fatalf("expected exhausted retries, got err=%v calls=%d", err, calls)
	}
}
