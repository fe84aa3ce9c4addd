package voice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ashureev/voicesite/internal/domain"
)

// CallRecorder stores finished calls.
type CallRecorder interface {
	RecordCall(ctx context.Context, c domain.CallLog) error
}

// Session is one visitor tab's voice call and its event stream.
type Session struct {
	VisitorID string
	SessionID string
	Adapter   *Adapter

	events   *eventLog
	mu       sync.Mutex
	lastSeen time.Time
}

// Touch marks the session as active.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// LastSeen returns the last activity time.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Registry manages voice sessions keyed by visitor and tab session.
type Registry struct {
	transport    Transport
	recorder     CallRecorder
	replayBuffer int
	transcripts  TranscriptLogger

	mu     sync.RWMutex
	active map[string]map[string]*Session
}

// NewRegistry creates a registry whose adapters dial through t. recorder may be nil.
func NewRegistry(t Transport, recorder CallRecorder, replayBuffer int) *Registry {
	return &Registry{
		transport:    t,
		recorder:     recorder,
		replayBuffer: replayBuffer,
		transcripts:  noopTranscripts{},
		active:       make(map[string]map[string]*Session),
	}
}

// SetTranscripts routes call transcripts to l. Call before serving requests.
func (r *Registry) SetTranscripts(l TranscriptLogger) {
	if l == nil {
		l = noopTranscripts{}
	}
	r.transcripts = l
}

func (r *Registry) transcribe(s *Session, event, role, text string) {
	r.transcripts.Log(TranscriptEntry{
		VisitorID: s.VisitorID,
		SessionID: s.SessionID,
		AgentID:   s.Adapter.agentID,
		Event:     event,
		Role:      role,
		Text:      text,
	})
}

// Get returns the session for a visitor tab, or nil.
func (r *Registry) Get(visitorID, sessionID string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if sessions, ok := r.active[visitorID]; ok {
		return sessions[sessionID]
	}
	return nil
}

// Open returns the visitor tab's session, creating one bound to agentID if needed.
// An idle session for a different agent is replaced.
func (r *Registry) Open(visitorID, sessionID, agentID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.active[visitorID]; !exists {
		r.active[visitorID] = make(map[string]*Session)
	}
	if existing, ok := r.active[visitorID][sessionID]; ok {
		if existing.Adapter.agentID == agentID || existing.Adapter.State() != StateIdle {
			existing.Touch()
			return existing
		}
		existing.Adapter.Close(context.Background())
		existing.events.closeAll()
	}

	s := &Session{VisitorID: visitorID, SessionID: sessionID, events: newEventLog(r.replayBuffer), lastSeen: time.Now()}
	s.Adapter = NewAdapter(r.transport, agentID, r.callbacks(s))
	r.active[visitorID][sessionID] = s
	slog.Info("Voice session registered", "visitor_id", visitorID, "session_id", sessionID, "agent_id", agentID)
	return s
}

// callbacks wires an adapter's lifecycle into the session event stream and call log.
func (r *Registry) callbacks(s *Session) Callbacks {
	return Callbacks{
		OnStateChange: func(st State) {
			s.events.publish(EventState, map[string]State{"state": st})
		},
		OnConnect: func() {
			s.Touch()
			s.events.publish(EventConnected, s.Adapter.Status())
			r.transcribe(s, EventConnected, "", "")
		},
		OnMessage: func(m Message) {
			s.Touch()
			s.events.publish(EventMessage, m)
			if m.Type == MessageAgent || m.Type == MessageUser {
				r.transcribe(s, EventMessage, m.Type, m.Text)
			}
		},
		OnError: func(msg string) {
			s.events.publish(EventError, map[string]string{"message": msg})
			r.transcribe(s, EventError, "", msg)
		},
		OnDisconnect: func(sum CallSummary) {
			s.Touch()
			s.events.publish(EventDisconnected, map[string]any{
				"duration_sec": int(sum.Duration.Seconds()),
				"messages":     sum.Messages,
			})
			r.transcribe(s, EventDisconnected, "", sum.Err)
			r.record(s, sum)
		},
	}
}

func (r *Registry) record(s *Session, sum CallSummary) {
	if r.recorder == nil {
		return
	}
	outcome := domain.OutcomeCompleted
	summary := fmt.Sprintf("Web voice session with %d messages.", sum.Messages)
	if sum.Err != "" {
		outcome = domain.OutcomeDropped
		summary = "Web voice session dropped: " + sum.Err
	}
	call := domain.CallLog{
		Caller:      "Web visitor",
		StartedAt:   sum.StartedAt.UTC().Truncate(time.Second),
		DurationSec: int(sum.Duration.Seconds()),
		Outcome:     outcome,
		Sentiment:   "neutral",
		Intent:      "web_voice",
		Summary:     summary,
		AgentID:     sum.AgentID,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.recorder.RecordCall(ctx, call); err != nil {
		slog.Debug("Voice call not recorded", "visitor_id", s.VisitorID, "error", err)
	}
}

// Remove ends and forgets a visitor tab's session.
func (r *Registry) Remove(ctx context.Context, visitorID, sessionID string) {
	r.mu.Lock()
	var s *Session
	if sessions, ok := r.active[visitorID]; ok {
		s = sessions[sessionID]
		delete(sessions, sessionID)
		if len(sessions) == 0 {
			delete(r.active, visitorID)
		}
	}
	r.mu.Unlock()

	if s == nil {
		return
	}
	s.Adapter.Close(ctx)
	s.events.closeAll()
	slog.Info("Voice session unregistered", "visitor_id", visitorID, "session_id", sessionID)
}

// Expired returns sessions idle for longer than ttl with no open event stream.
func (r *Registry) Expired(ttl time.Duration) []*Session {
	cutoff := time.Now().Add(-ttl)
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Session
	for _, sessions := range r.active {
		for _, s := range sessions {
			if s.LastSeen().Before(cutoff) && s.events.subscribers() == 0 {
				out = append(out, s)
			}
		}
	}
	return out
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, sessions := range r.active {
		n += len(sessions)
	}
	return n
}

// CloseAll ends every session, used on shutdown.
func (r *Registry) CloseAll(ctx context.Context) {
	r.mu.RLock()
	var all []*Session
	for _, sessions := range r.active {
		for _, s := range sessions {
			all = append(all, s)
		}
	}
	r.mu.RUnlock()

	for _, s := range all {
		r.Remove(ctx, s.VisitorID, s.SessionID)
	}
}
