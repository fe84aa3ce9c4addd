package voice

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// CallSummary describes a finished conversation.
type CallSummary struct {
	AgentID   string
	StartedAt time.Time
	Duration  time.Duration
	Messages  int
	Err       string // set when the call ended on a transport error
}

// Callbacks receive lifecycle notifications. Any of them may be nil.
// They are invoked without the adapter lock held.
type Callbacks struct {
	OnConnect     func()
	OnDisconnect  func(CallSummary)
	OnError       func(message string)
	OnMessage     func(Message)
	OnStateChange func(State)
}

// Status is a snapshot of the adapter for display.
type Status struct {
	State       State      `json:"state"`
	Muted       bool       `json:"muted"`
	LastError   string     `json:"last_error,omitempty"`
	AgentID     string     `json:"agent_id,omitempty"`
	ConnectedAt *time.Time `json:"connected_at,omitempty"`
	Messages    int        `json:"messages"`
}

// Adapter drives one conversation through idle, connecting, connected and back.
// Failures pass through error before settling on idle.
type Adapter struct {
	transport Transport
	agentID   string
	cb        Callbacks

	mu          sync.Mutex
	state       State
	muted       bool
	lastErr     string
	conn        Conn
	cancel      context.CancelFunc
	dialCancel  context.CancelFunc
	closed      bool
	connectedAt time.Time
	messages    int
}

// NewAdapter creates an idle adapter for agentID.
func NewAdapter(t Transport, agentID string, cb Callbacks) *Adapter {
	return &Adapter{transport: t, agentID: agentID, cb: cb, state: StateIdle}
}

// Status returns the current snapshot.
func (a *Adapter) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := Status{State: a.state, Muted: a.muted, LastError: a.lastErr, AgentID: a.agentID, Messages: a.messages}
	if a.state == StateConnected {
		t := a.connectedAt
		s.ConnectedAt = &t
	}
	return s
}

// State returns the current connection state.
func (a *Adapter) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// LastError returns the user-facing message of the most recent failure.
func (a *Adapter) LastError() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

// Start dials the agent. It returns ErrBusy when a call is already connecting
// or connected, and ErrSessionClosed once Close has been called. A dial failure
// is reported through OnError and the adapter returns to idle.
func (a *Adapter) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrSessionClosed
	}
	if a.state == StateConnecting || a.state == StateConnected {
		a.mu.Unlock()
		return ErrBusy
	}
	dialCtx, dialCancel := context.WithCancel(ctx)
	defer dialCancel()
	a.dialCancel = dialCancel
	a.state = StateConnecting
	a.lastErr = ""
	a.muted = false
	a.messages = 0
	a.mu.Unlock()
	a.emitState(StateConnecting)

	conn, err := a.transport.Dial(dialCtx, a.agentID)

	a.mu.Lock()
	a.dialCancel = nil
	if a.closed {
		// Closed while dialing; nothing can reach a call connected now.
		a.state = StateIdle
		a.mu.Unlock()
		if conn != nil {
			if cerr := conn.Close(); cerr != nil {
				slog.Debug("Voice transport close after abandoned dial failed", "error", cerr)
			}
		}
		a.emitState(StateIdle)
		slog.Info("Voice dial abandoned, session closed", "agent_id", a.agentID)
		return ErrSessionClosed
	}
	if err != nil {
		a.mu.Unlock()
		slog.Warn("Voice connect failed", "agent_id", a.agentID, "error", err)
		a.fail("Could not connect to the voice assistant. Please try again.")
		return err
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	a.conn = conn
	a.cancel = cancel
	a.state = StateConnected
	a.connectedAt = time.Now()
	a.mu.Unlock()

	a.emitState(StateConnected)
	if a.cb.OnConnect != nil {
		a.cb.OnConnect()
	}
	slog.Info("Voice session connected", "agent_id", a.agentID)

	go a.receiveLoop(loopCtx, conn)
	return nil
}

// End closes an active call. When the adapter is not connected it does nothing
// and returns false. Local state is reset whatever the transport's close result.
func (a *Adapter) End(_ context.Context) bool {
	a.mu.Lock()
	if a.state != StateConnected || a.conn == nil {
		a.mu.Unlock()
		return false
	}
	conn := a.conn
	summary := a.detachLocked("")
	a.mu.Unlock()

	if err := conn.Close(); err != nil {
		slog.Warn("Voice transport close failed", "agent_id", a.agentID, "error", err)
	}
	a.emitState(StateIdle)
	if a.cb.OnDisconnect != nil {
		a.cb.OnDisconnect(summary)
	}
	slog.Info("Voice session ended", "agent_id", a.agentID, "duration", summary.Duration)
	return true
}

// Close ends any call and retires the adapter. An in-flight dial is cancelled
// and a connection it still returns is closed; later Starts fail with
// ErrSessionClosed.
func (a *Adapter) Close(ctx context.Context) {
	a.mu.Lock()
	a.closed = true
	if a.dialCancel != nil {
		a.dialCancel()
	}
	a.mu.Unlock()
	a.End(ctx)
}

// SetMuted toggles output volume. It only has an effect while connected; otherwise
// it returns ErrNotConnected and leaves the flag unchanged.
func (a *Adapter) SetMuted(ctx context.Context, muted bool) error {
	a.mu.Lock()
	if a.state != StateConnected || a.conn == nil {
		a.mu.Unlock()
		return ErrNotConnected
	}
	conn := a.conn
	a.muted = muted
	a.mu.Unlock()

	volume := 1.0
	if muted {
		volume = 0
	}
	if err := conn.SetVolume(ctx, volume); err != nil {
		// The flag is UI state; the transport may not honor volume changes.
		slog.Warn("Voice transport ignored volume change", "agent_id", a.agentID, "error", err)
	}
	return nil
}

func (a *Adapter) receiveLoop(ctx context.Context, conn Conn) {
	for {
		msg, err := conn.Receive(ctx)
		if err != nil {
			a.remoteClosed(conn, err)
			return
		}
		a.mu.Lock()
		if a.conn != conn {
			a.mu.Unlock()
			return
		}
		a.messages++
		a.mu.Unlock()
		if a.cb.OnMessage != nil {
			a.cb.OnMessage(msg)
		}
	}
}

// remoteClosed handles the receive loop ending without End being called.
func (a *Adapter) remoteClosed(conn Conn, err error) {
	a.mu.Lock()
	if a.conn != conn {
		// End already detached this connection.
		a.mu.Unlock()
		return
	}
	var reason string
	if !errors.Is(err, ErrClosed) {
		reason = "The voice connection was interrupted."
	}
	summary := a.detachLocked(reason)
	a.mu.Unlock()

	if cerr := conn.Close(); cerr != nil {
		slog.Debug("Voice transport close after remote end failed", "error", cerr)
	}
	if reason != "" {
		slog.Warn("Voice session dropped", "agent_id", a.agentID, "error", err)
		a.fail(reason)
	} else {
		a.emitState(StateIdle)
	}
	if a.cb.OnDisconnect != nil {
		a.cb.OnDisconnect(summary)
	}
}

// detachLocked clears the connection and returns the finished call's summary.
// The caller holds a.mu.
func (a *Adapter) detachLocked(errMsg string) CallSummary {
	if a.cancel != nil {
		a.cancel()
	}
	summary := CallSummary{
		AgentID:   a.agentID,
		StartedAt: a.connectedAt,
		Duration:  time.Since(a.connectedAt),
		Messages:  a.messages,
		Err:       errMsg,
	}
	a.conn = nil
	a.cancel = nil
	a.state = StateIdle
	a.muted = false
	return summary
}

// fail surfaces msg and settles on idle through the error state.
func (a *Adapter) fail(msg string) {
	a.mu.Lock()
	a.state = StateError
	a.lastErr = msg
	a.mu.Unlock()
	a.emitState(StateError)
	if a.cb.OnError != nil {
		a.cb.OnError(msg)
	}

	a.mu.Lock()
	a.state = StateIdle
	a.mu.Unlock()
	a.emitState(StateIdle)
}

func (a *Adapter) emitState(s State) {
	if a.cb.OnStateChange != nil {
		a.cb.OnStateChange(s)
	}
}
