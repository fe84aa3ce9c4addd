package voice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ashureev/voicesite/internal/identity"
	"github.com/ashureev/voicesite/internal/siteconfig"
	"github.com/go-chi/chi/v5"
)

// maxRequestBodySize bounds the mute request body.
const maxRequestBodySize = 1 << 10

// HandlerConfig tunes the HTTP surface.
type HandlerConfig struct {
	DialTimeout       time.Duration
	StartsPerMinute   int
	StartBurst        int
	RetryDelay        time.Duration
	KeepaliveInterval time.Duration
}

// Handler exposes voice sessions over HTTP with an SSE event stream.
type Handler struct {
	reg     *Registry
	limiter *startLimiter
	cfg     HandlerConfig
}

// NewHandler creates a voice handler.
func NewHandler(reg *Registry, cfg HandlerConfig) *Handler {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 5 * time.Second
	}
	if cfg.KeepaliveInterval <= 0 {
		cfg.KeepaliveInterval = 15 * time.Second
	}
	return &Handler{
		reg:     reg,
		limiter: newStartLimiter(cfg.StartsPerMinute, cfg.StartBurst),
		cfg:     cfg,
	}
}

// RegisterRoutes mounts the voice routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/voice", func(r chi.Router) {
		r.Post("/session", h.HandleStart)
		r.Delete("/session", h.HandleEnd)
		r.Post("/mute", h.HandleMute)
		r.Get("/state", h.HandleState)
		r.Get("/events", h.HandleStream)
	})
}

// EvictLimiters drops per-visitor limiters unused for idle.
func (h *Handler) EvictLimiters(idle time.Duration) int {
	return h.limiter.evict(idle)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode voice response", "error", err)
	}
}

type stateResponse struct {
	Status
	Error string `json:"error,omitempty"`
	Ended *bool  `json:"ended,omitempty"`
}

func idleStatus() Status {
	return Status{State: StateIdle}
}

// HandleStart begins a call with the site's agent.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	visitorID := identity.VisitorIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	if visitorID == "" {
		writeJSON(w, http.StatusUnauthorized, stateResponse{Status: idleStatus(), Error: "unauthorized"})
		return
	}

	site := siteconfig.FromContext(r.Context())
	if !site.SectionEnabled("voice") {
		writeJSON(w, http.StatusNotFound, stateResponse{Status: idleStatus(), Error: "voice agent is not enabled for this site"})
		return
	}

	if !h.limiter.Allow(visitorID) {
		slog.Warn("Voice start rate limited", "visitor_id", visitorID)
		w.Header().Set("Retry-After", "60")
		writeJSON(w, http.StatusTooManyRequests, stateResponse{Status: idleStatus(), Error: "too many call attempts, please wait a minute"})
		return
	}

	sess := h.reg.Open(visitorID, sessionID, site.Agent.AgentID)

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.DialTimeout)
	defer cancel()
	err := sess.Adapter.Start(ctx)
	switch {
	case errors.Is(err, ErrBusy):
		writeJSON(w, http.StatusConflict, stateResponse{Status: sess.Adapter.Status(), Error: "a call is already in progress"})
	case errors.Is(err, ErrSessionClosed):
		writeJSON(w, http.StatusConflict, stateResponse{Status: idleStatus(), Error: "voice session closed, please try again"})
	case err != nil:
		writeJSON(w, http.StatusBadGateway, stateResponse{Status: sess.Adapter.Status(), Error: sess.Adapter.LastError()})
	default:
		writeJSON(w, http.StatusOK, stateResponse{Status: sess.Adapter.Status()})
	}
}

// HandleEnd ends the current call. Ending when nothing is connected succeeds with ended=false.
func (h *Handler) HandleEnd(w http.ResponseWriter, r *http.Request) {
	sess := h.session(r)
	ended := false
	if sess == nil {
		writeJSON(w, http.StatusOK, stateResponse{Status: idleStatus(), Ended: &ended})
		return
	}
	ended = sess.Adapter.End(r.Context())
	writeJSON(w, http.StatusOK, stateResponse{Status: sess.Adapter.Status(), Ended: &ended})
}

// HandleMute sets the mute flag of a connected call.
func (h *Handler) HandleMute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Muted bool `json:"muted"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, stateResponse{Status: idleStatus(), Error: "invalid request body"})
		return
	}

	sess := h.session(r)
	if sess == nil {
		writeJSON(w, http.StatusConflict, stateResponse{Status: idleStatus(), Error: ErrNotConnected.Error()})
		return
	}
	if err := sess.Adapter.SetMuted(r.Context(), req.Muted); err != nil {
		writeJSON(w, http.StatusConflict, stateResponse{Status: sess.Adapter.Status(), Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{Status: sess.Adapter.Status()})
}

// HandleState returns the current call status.
func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	sess := h.session(r)
	if sess == nil {
		writeJSON(w, http.StatusOK, stateResponse{Status: idleStatus()})
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{Status: sess.Adapter.Status()})
}

func (h *Handler) session(r *http.Request) *Session {
	visitorID := identity.VisitorIDFromContext(r.Context())
	if visitorID == "" {
		return nil
	}
	sess := h.reg.Get(visitorID, identity.SessionIDFromContext(r.Context()))
	if sess != nil {
		sess.Touch()
	}
	return sess
}

// HandleStream streams state transitions and messages over SSE, replaying
// events after Last-Event-ID on reconnect.
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	visitorID := identity.VisitorIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	if visitorID == "" {
		http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
		return
	}

	lastEventID := int64(0)
	idHeader := r.Header.Get("Last-Event-ID")
	if idHeader == "" {
		idHeader = r.URL.Query().Get("lastEventId")
	}
	if idHeader != "" {
		if parsed, err := strconv.ParseInt(idHeader, 10, 64); err == nil {
			lastEventID = parsed
		}
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, `{"error": "streaming not supported"}`, http.StatusInternalServerError)
		return
	}

	agentID := ""
	if site := siteconfig.FromContext(r.Context()); site != nil {
		agentID = site.Agent.AgentID
	}
	sess := h.reg.Open(visitorID, sessionID, agentID)
	events, unsubscribe := sess.events.subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	if _, err := io.WriteString(w, fmt.Sprintf("retry: %d\n\n", h.cfg.RetryDelay.Milliseconds())); err != nil {
		slog.Warn("failed to write SSE retry header", "error", err, "visitor_id", visitorID)
		return
	}

	// Replay what the client missed, then the current state.
	for _, ev := range sess.events.since(lastEventID) {
		if err := writeEvent(w, ev); err != nil {
			return
		}
	}
	if err := writeSSE(w, EventState, sess.Adapter.Status()); err != nil {
		return
	}
	flusher.Flush()

	slog.Info("Voice event stream connected",
		"visitor_id", visitorID,
		"session_id", sessionID,
		"reconnect", lastEventID > 0,
	)

	keepalive := time.NewTicker(h.cfg.KeepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			slog.Info("Voice event stream disconnected", "visitor_id", visitorID, "session_id", sessionID)
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(w, ev); err != nil {
				slog.Warn("failed to write SSE event", "error", err, "visitor_id", visitorID)
				return
			}
			flusher.Flush()
		case <-keepalive.C:
			sess.Touch()
			if _, err := io.WriteString(w, "event: ping\ndata: {\"status\":\"alive\"}\n\n"); err != nil {
				slog.Warn("failed to write SSE keepalive ping", "error", err, "visitor_id", visitorID)
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w io.Writer, ev Event) error {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return fmt.Errorf("marshal event %d: %w", ev.ID, err)
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", ev.ID, ev.Type, data)
	return err
}

func writeSSE(w io.Writer, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event, err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
