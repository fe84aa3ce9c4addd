package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TENANTS", "Clinic.Example.com=dermatology, eat.example.com=restaurant")
	t.Setenv("VOICE_SESSION_TTL", "2m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %q", cfg.Port)
	}
	if cfg.BackendEnabled() {
		t.Error("expected backend disabled without DB_PATH")
	}
	if cfg.Tenants["clinic.example.com"] != "dermatology" {
		t.Errorf("unexpected tenants: %v", cfg.Tenants)
	}
	if cfg.Voice.SessionTTL != 2*time.Minute {
		t.Errorf("expected 2m ttl, got %s", cfg.Voice.SessionTTL)
	}
}

func TestValidateRejectsUnknownTransport(t *testing.T) {
	t.Setenv("VOICE_TRANSPORT", "carrier-pigeon")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown voice transport")
	}
}

func TestValidateTranscriptLog(t *testing.T) {
	t.Setenv("TRANSCRIPT_LOG_ENABLED", "true")
	t.Setenv("TRANSCRIPT_LOG_DIR", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for enabled transcript log without a directory")
	}

	t.Setenv("TRANSCRIPT_LOG_DIR", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.TranscriptLog.Enabled || cfg.TranscriptLog.QueueSize != 256 {
		t.Errorf("unexpected transcript config %+v", cfg.TranscriptLog)
	}
}

func TestValidateRejectsZeroKeepalive(t *testing.T) {
	t.Setenv("SSE_KEEPALIVE_INTERVAL", "0s")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero SSE keepalive")
	}
}
