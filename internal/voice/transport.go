// Package voice wraps an external real-time conversational voice service and
// exposes its connection lifecycle to the UI.
package voice

import (
	"context"
	"errors"
	"time"
)

// State is the adapter connection state.
type State string

// Connection states.
const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateConnected  State = "connected"
	StateError      State = "error"
)

// Message types forwarded to the UI.
const (
	MessageAgent      = "agent"
	MessageUser       = "user"
	MessageStatus     = "status"
	MessageInterrupt  = "interruption"
	MessageConnection = "connection"
)

// Message is one event received from the voice service. Content is passed
// through to the UI untouched.
type Message struct {
	Type string    `json:"type"`
	Text string    `json:"text,omitempty"`
	At   time.Time `json:"at"`
}

var (
	// ErrClosed is returned by Conn.Receive when the remote side ended the conversation.
	ErrClosed = errors.New("voice connection closed")
	// ErrNotConnected is returned by operations that need an active call.
	ErrNotConnected = errors.New("voice session not connected")
	// ErrBusy is returned by Start when a call is already connecting or connected.
	ErrBusy = errors.New("voice session already active")
	// ErrSessionClosed is returned by Start on an adapter whose session was removed.
	ErrSessionClosed = errors.New("voice session closed")
)

// Transport opens conversations with a voice agent.
type Transport interface {
	Dial(ctx context.Context, agentID string) (Conn, error)
}

// Conn is one open conversation.
type Conn interface {
	// Receive blocks until the next message. It returns ErrClosed on a normal remote close.
	Receive(ctx context.Context) (Message, error)
	// SetVolume sets the output volume in [0, 1]. Zero mutes.
	SetVolume(ctx context.Context, v float64) error
	// Close ends the conversation.
	Close() error
}
