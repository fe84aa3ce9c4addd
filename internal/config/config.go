// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	// DBPath enables the SQLite records backend. Empty means mock-only mode.
	DBPath string
	// SiteConfig names a builtin site ("dermatology", "healthcare", ...) or a YAML file path.
	SiteConfig string
	// Tenants maps extra hosts to site configs: "clinic.example.com=dermatology,eat.example.com=restaurant".
	Tenants  map[string]string
	MockSeed uint64
	SeedDemo bool
	Voice    VoiceConfig
	Timeout  TimeoutConfig
	Retry    RetryConfig
	SSE      SSEConfig
	// TranscriptLog writes per-session NDJSON voice transcripts.
	TranscriptLog TranscriptLogConfig
}

// VoiceConfig controls the voice call adapter.
type VoiceConfig struct {
	Transport string // "websocket" or "grpc"
	Endpoint  string
	APIKey    string
	// HealthService is the grpc.health.v1 service name probed by the grpc transport.
	HealthService string
	SessionTTL    time.Duration
	SweepSpec     string
	StartsPerMin  int
	StartBurst    int
	DialTimeout   time.Duration
}

// TimeoutConfig holds request-scoped timeouts.
type TimeoutConfig struct {
	HealthCheck   time.Duration
	BackendCall   time.Duration
	VoiceShutdown time.Duration
}

// SSEConfig controls the voice event stream.
type SSEConfig struct {
	RetryDelay        time.Duration
	KeepaliveInterval time.Duration
	ReplayBuffer      int
}

// TranscriptLogConfig controls voice transcript logging.
type TranscriptLogConfig struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// RetryConfig controls SQLite busy retries.
type RetryConfig struct {
	DatabaseMaxRetries     int
	DatabaseRetryBaseDelay time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		DBPath:      getEnv("DB_PATH", ""),
		SiteConfig:  getEnv("SITE_CONFIG", "default"),
		Tenants:     parseTenants(getEnv("TENANTS", "")),
		MockSeed:    getEnvUint64("MOCK_SEED", 0),
		SeedDemo:    getEnvBool("SEED_DEMO_DATA", true),
		Voice: VoiceConfig{
			Transport:     getEnv("VOICE_TRANSPORT", "websocket"),
			Endpoint:      getEnv("VOICE_ENDPOINT", "wss://api.elevenlabs.io/v1/convai/conversation"),
			APIKey:        getEnv("VOICE_API_KEY", ""),
			HealthService: getEnv("VOICE_HEALTH_SERVICE", ""),
			SessionTTL:    getEnvDuration("VOICE_SESSION_TTL", 15*time.Minute),
			SweepSpec:     getEnv("VOICE_SWEEP_SCHEDULE", "@every 1m"),
			StartsPerMin:  getEnvInt("VOICE_STARTS_PER_MINUTE", 6),
			StartBurst:    getEnvInt("VOICE_START_BURST", 2),
			DialTimeout:   getEnvDuration("VOICE_DIAL_TIMEOUT", 10*time.Second),
		},
		Timeout: TimeoutConfig{
			HealthCheck:   5 * time.Second,
			BackendCall:   getEnvDuration("BACKEND_TIMEOUT", 3*time.Second),
			VoiceShutdown: 5 * time.Second,
		},
		Retry: RetryConfig{
			DatabaseMaxRetries:     3,
			DatabaseRetryBaseDelay: 50 * time.Millisecond,
		},
		SSE: SSEConfig{
			RetryDelay:        getEnvDuration("SSE_RETRY_DELAY", 5*time.Second),
			KeepaliveInterval: getEnvDuration("SSE_KEEPALIVE_INTERVAL", 15*time.Second),
			ReplayBuffer:      getEnvInt("SSE_REPLAY_BUFFER", 100),
		},
		TranscriptLog: TranscriptLogConfig{
			Enabled:   getEnvBool("TRANSCRIPT_LOG_ENABLED", false),
			Dir:       getEnv("TRANSCRIPT_LOG_DIR", "data/transcripts"),
			QueueSize: getEnvInt("TRANSCRIPT_LOG_QUEUE_SIZE", 256),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.SiteConfig == "" {
		return fmt.Errorf("SITE_CONFIG cannot be empty")
	}
	switch c.Voice.Transport {
	case "websocket", "grpc":
	default:
		return fmt.Errorf("VOICE_TRANSPORT must be websocket or grpc, got %q", c.Voice.Transport)
	}
	if c.Voice.Endpoint == "" {
		return fmt.Errorf("VOICE_ENDPOINT cannot be empty")
	}
	if c.Voice.StartsPerMin <= 0 || c.Voice.StartBurst <= 0 {
		return fmt.Errorf("VOICE_STARTS_PER_MINUTE and VOICE_START_BURST must be > 0")
	}
	if c.Voice.SessionTTL <= 0 {
		return fmt.Errorf("VOICE_SESSION_TTL must be > 0")
	}
	if c.SSE.KeepaliveInterval <= 0 {
		return fmt.Errorf("SSE_KEEPALIVE_INTERVAL must be > 0")
	}
	if c.TranscriptLog.Enabled && c.TranscriptLog.Dir == "" {
		return fmt.Errorf("TRANSCRIPT_LOG_DIR cannot be empty when transcript logging is enabled")
	}
	for host, site := range c.Tenants {
		if host == "" || site == "" {
			return fmt.Errorf("TENANTS entries must be host=site")
		}
	}
	return nil
}

// BackendEnabled reports whether a records database is configured.
func (c *Config) BackendEnabled() bool {
	return c.DBPath != ""
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func parseTenants(raw string) map[string]string {
	tenants := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		host, site, _ := strings.Cut(pair, "=")
		tenants[strings.ToLower(strings.TrimSpace(host))] = strings.TrimSpace(site)
	}
	return tenants
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvUint64(key string, fallback uint64) uint64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
