package voice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
)

// maxFrameBytes bounds one incoming frame. Audio events carry base64 chunks
// well beyond the library's 32 KiB default.
const maxFrameBytes = 4 << 20

// WebSocketTransport talks to a conversational voice endpoint over WebSocket.
// The agent is selected with the agent_id query parameter.
type WebSocketTransport struct {
	Endpoint   string
	APIKey     string
	HTTPClient *http.Client
}

// wsFrame is the subset of the conversation protocol the server reads.
// Audio frames are ignored; playback happens in the browser.
type wsFrame struct {
	Type          string `json:"type"`
	AgentResponse *struct {
		Text string `json:"agent_response"`
	} `json:"agent_response_event,omitempty"`
	UserTranscript *struct {
		Text string `json:"user_transcript"`
	} `json:"user_transcription_event,omitempty"`
	Ping *struct {
		EventID int64 `json:"event_id"`
	} `json:"ping_event,omitempty"`
}

// Dial opens a conversation with agentID.
func (t *WebSocketTransport) Dial(ctx context.Context, agentID string) (Conn, error) {
	u, err := url.Parse(t.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse voice endpoint: %w", err)
	}
	q := u.Query()
	q.Set("agent_id", agentID)
	u.RawQuery = q.Encode()

	opts := &websocket.DialOptions{HTTPClient: t.HTTPClient}
	if t.APIKey != "" {
		opts.HTTPHeader = http.Header{"xi-api-key": []string{t.APIKey}}
	}

	ws, resp, err := websocket.Dial(ctx, u.String(), opts)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial voice agent %s: %w", agentID, err)
	}

	ws.SetReadLimit(maxFrameBytes)

	c := &wsConn{ws: ws}
	c.volume.Store(math.Float64bits(1))
	if err := c.send(ctx, map[string]string{"type": "conversation_initiation_client_data"}); err != nil {
		_ = ws.Close(websocket.StatusInternalError, "init failed")
		return nil, fmt.Errorf("initiate conversation: %w", err)
	}
	return c, nil
}

type wsConn struct {
	ws     *websocket.Conn
	volume atomic.Uint64
}

func (c *wsConn) send(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	return c.ws.Write(ctx, websocket.MessageText, data)
}

// Receive returns the next transcript or status message, answering pings inline.
func (c *wsConn) Receive(ctx context.Context) (Message, error) {
	for {
		_, data, err := c.ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return Message{}, ErrClosed
			}
			return Message{}, fmt.Errorf("read voice frame: %w", err)
		}

		var f wsFrame
		if err := json.Unmarshal(data, &f); err != nil {
			slog.Debug("Skipping malformed voice frame", "error", err)
			continue
		}

		now := time.Now()
		switch f.Type {
		case "agent_response":
			if f.AgentResponse != nil {
				return Message{Type: MessageAgent, Text: f.AgentResponse.Text, At: now}, nil
			}
		case "user_transcript":
			if f.UserTranscript != nil {
				return Message{Type: MessageUser, Text: f.UserTranscript.Text, At: now}, nil
			}
		case "interruption":
			return Message{Type: MessageInterrupt, At: now}, nil
		case "conversation_initiation_metadata":
			return Message{Type: MessageConnection, Text: "conversation started", At: now}, nil
		case "ping":
			var id int64
			if f.Ping != nil {
				id = f.Ping.EventID
			}
			if err := c.send(ctx, map[string]any{"type": "pong", "event_id": id}); err != nil {
				return Message{}, fmt.Errorf("answer ping: %w", err)
			}
		}
	}
}

// SetVolume records the playback volume. The protocol has no server-side volume,
// so this only affects what Volume reports.
func (c *wsConn) SetVolume(_ context.Context, v float64) error {
	c.volume.Store(math.Float64bits(max(0, min(v, 1))))
	return nil
}

// Volume returns the last volume set.
func (c *wsConn) Volume() float64 {
	return math.Float64frombits(c.volume.Load())
}

func (c *wsConn) Close() error {
	err := c.ws.Close(websocket.StatusNormalClosure, "session ended")
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("close voice websocket: %w", err)
	}
	return nil
}
