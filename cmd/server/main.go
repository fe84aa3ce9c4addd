// Voice site server: config-driven landing page, dashboard and voice agent.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/voicesite/internal/api"
	"github.com/ashureev/voicesite/internal/config"
	"github.com/ashureev/voicesite/internal/identity"
	"github.com/ashureev/voicesite/internal/middleware"
	"github.com/ashureev/voicesite/internal/records"
	"github.com/ashureev/voicesite/internal/shared"
	"github.com/ashureev/voicesite/internal/siteconfig"
	"github.com/ashureev/voicesite/internal/store"
	"github.com/ashureev/voicesite/internal/voice"
	"github.com/ashureev/voicesite/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "site", cfg.SiteConfig)

	sites, err := siteconfig.NewRegistryFromRefs(cfg.SiteConfig, cfg.Tenants)
	if err != nil {
		slog.Error("Failed to load site configuration", "error", err)
		os.Exit(1)
	}
	slog.Info("Site configuration loaded", "business", sites.Default().Business.Name, "tenants", sites.Hosts())

	// Records backend is optional; without it every read serves generated data.
	var repo store.Repository
	if cfg.BackendEnabled() {
		sqlite, err := store.NewSQLite(cfg.DBPath, shared.RetryPolicy{
			MaxRetries: cfg.Retry.DatabaseMaxRetries,
			BaseDelay:  cfg.Retry.DatabaseRetryBaseDelay,
		})
		if err != nil {
			slog.Error("Failed to initialize database", "error", err)
			os.Exit(1)
		}
		defer func() {
			if closeErr := sqlite.Close(); closeErr != nil {
				slog.Error("Failed to close repository", "error", closeErr)
			}
		}()
		if err := sqlite.Ping(context.Background()); err != nil {
			slog.Error("Database health check failed", "error", err)
			os.Exit(1)
		}
		repo = sqlite
		slog.Info("Database connected", "path", cfg.DBPath)
	} else {
		slog.Info("No DB_PATH set, serving generated demo data")
	}

	svc := records.NewService(repo, cfg.MockSeed, cfg.Timeout.BackendCall)
	slog.Info("Records service ready", "backend", svc.HasBackend(), "seed", svc.Seed())

	if repo != nil && cfg.SeedDemo {
		seeded, err := repo.SeedIfEmpty(context.Background(), svc.Fixtures(sites.Default()))
		if err != nil {
			slog.Error("Failed to seed demo data", "error", err)
			os.Exit(1)
		}
		slog.Info("Demo data check complete", "seeded", seeded)
	}

	// Voice sessions.
	var transport voice.Transport
	switch cfg.Voice.Transport {
	case "grpc":
		transport = &voice.GRPCTransport{Address: cfg.Voice.Endpoint, HealthService: cfg.Voice.HealthService}
	default:
		transport = &voice.WebSocketTransport{Endpoint: cfg.Voice.Endpoint, APIKey: cfg.Voice.APIKey}
	}
	slog.Info("Voice transport configured", "transport", cfg.Voice.Transport, "endpoint", cfg.Voice.Endpoint)

	voiceRegistry := voice.NewRegistry(transport, svc, cfg.SSE.ReplayBuffer)

	transcripts, err := voice.NewTranscriptLogger(voice.TranscriptConfig{
		Enabled:   cfg.TranscriptLog.Enabled,
		Dir:       cfg.TranscriptLog.Dir,
		QueueSize: cfg.TranscriptLog.QueueSize,
	})
	if err != nil {
		slog.Error("Failed to initialize transcript logger", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := transcripts.Close(); closeErr != nil {
			slog.Error("Failed to close transcript logger", "error", closeErr)
		}
	}()
	voiceRegistry.SetTranscripts(transcripts)
	slog.Info("Transcript logging configured", "enabled", cfg.TranscriptLog.Enabled, "dir", cfg.TranscriptLog.Dir)
	voiceHandler := voice.NewHandler(voiceRegistry, voice.HandlerConfig{
		DialTimeout:       cfg.Voice.DialTimeout,
		StartsPerMinute:   cfg.Voice.StartsPerMin,
		StartBurst:        cfg.Voice.StartBurst,
		RetryDelay:        cfg.SSE.RetryDelay,
		KeepaliveInterval: cfg.SSE.KeepaliveInterval,
	})

	sweeper, err := voice.NewSweeper(voiceRegistry, cfg.Voice.SessionTTL, cfg.Voice.SweepSpec)
	if err != nil {
		slog.Error("Failed to schedule voice sweeper", "error", err)
		os.Exit(1)
	}
	if err := sweeper.Schedule(cfg.Voice.SweepSpec, func() {
		if n := voiceHandler.EvictLimiters(cfg.Voice.SessionTTL); n > 0 {
			slog.Debug("Evicted idle rate limiters", "count", n)
		}
	}); err != nil {
		slog.Error("Failed to schedule limiter eviction", "error", err)
		os.Exit(1)
	}

	// Initialize handlers.
	pages := api.NewHandler(svc)
	healthHandler := api.NewHealthHandler(svc, svc.HasBackend(), voiceRegistry, cfg.Timeout.HealthCheck)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(middleware.AllowedOrigins(cfg.FrontendURL)))

	// Public routes.
	healthHandler.RegisterHealth(r)
	r.Handle("/static/*", http.StripPrefix("/static", web.StaticHandler()))

	// Site-scoped routes resolve the tenant and the anonymous visitor.
	r.Group(func(r chi.Router) {
		r.Use(siteconfig.Middleware(sites))
		r.Use(identity.Middleware(cfg.IsDevelopment()))
		pages.RegisterRoutes(r)
		voiceHandler.RegisterRoutes(r)
	})

	// Note: SSE connections require long timeouts (no WriteTimeout).
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,                 // 0 = no timeout for SSE support
		IdleTimeout:  120 * time.Second, // 2 minutes for idle connections
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper.Start()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	sweeper.Stop()

	voiceCtx, cancelVoice := context.WithTimeout(context.Background(), cfg.Timeout.VoiceShutdown)
	voiceRegistry.CloseAll(voiceCtx)
	cancelVoice()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
