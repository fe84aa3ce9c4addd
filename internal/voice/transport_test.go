package voice

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func TestWebSocketTransport(t *testing.T) {
	gotAgent := make(chan string, 1)
	gotPong := make(chan int64, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent <- r.URL.Query().Get("agent_id")
		ws, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		ctx := r.Context()

		// Client init frame.
		if _, _, err := ws.Read(ctx); err != nil {
			return
		}
		frames := []string{
			`{"type":"ping","ping_event":{"event_id":7}}`,
			`{"type":"audio","audio_event":{"audio_base_64":"AAAA"}}`,
			`{"type":"agent_response","agent_response_event":{"agent_response":"Hi there"}}`,
		}
		for _, f := range frames {
			if err := ws.Write(ctx, websocket.MessageText, []byte(f)); err != nil {
				return
			}
		}
		_, data, err := ws.Read(ctx)
		if err == nil {
			var pong struct {
				Type    string `json:"type"`
				EventID int64  `json:"event_id"`
			}
			if json.Unmarshal(data, &pong) == nil && pong.Type == "pong" {
				gotPong <- pong.EventID
			}
		}
		_ = ws.Close(websocket.StatusNormalClosure, "bye")
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	tr := &WebSocketTransport{Endpoint: "ws" + strings.TrimPrefix(srv.URL, "http")}
	conn, err := tr.Dial(ctx, "agent-42")
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	if a := <-gotAgent; a != "agent-42" {
		t.Fatalf("expected agent_id query parameter, got %q", a)
	}

	msg, err := conn.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if msg.Type != MessageAgent || msg.Text != "Hi there" {
		t.Fatalf("unexpected message %+v", msg)
	}
	select {
	case id := <-gotPong:
		if id != 7 {
			t.Fatalf("expected pong for event 7, got %d", id)
		}
	case <-ctx.Done():
		t.Fatal("ping was not answered")
	}

	if err := conn.SetVolume(ctx, 0); err != nil {
		t.Fatal(err)
	}
	if v := conn.(*wsConn).Volume(); v != 0 {
		t.Fatalf("expected volume 0, got %v", v)
	}

	if _, err := conn.Receive(ctx); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after normal close, got %v", err)
	}
}

func TestWebSocketTransportSkipsLargeAudioFrames(t *testing.T) {
	audio := strings.Repeat("A", 512<<10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		ctx := r.Context()
		if _, _, err := ws.Read(ctx); err != nil {
			return
		}
		frames := []string{
			`{"type":"audio","audio_event":{"audio_base_64":"` + audio + `"}}`,
			`{"type":"agent_response","agent_response_event":{"agent_response":"Still here"}}`,
		}
		for _, f := range frames {
			if err := ws.Write(ctx, websocket.MessageText, []byte(f)); err != nil {
				return
			}
		}
		_, _, _ = ws.Read(ctx)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	tr := &WebSocketTransport{Endpoint: "ws" + strings.TrimPrefix(srv.URL, "http")}
	conn, err := tr.Dial(ctx, "agent-42")
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	msg, err := conn.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive failed after large audio frame: %v", err)
	}
	if msg.Type != MessageAgent || msg.Text != "Still here" {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func startHealthServer(t *testing.T) (*health.Server, []grpc.DialOption) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	opts := []grpc.DialOption{
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	return hs, opts
}

func TestGRPCTransport(t *testing.T) {
	hs, opts := startHealthServer(t)
	hs.SetServingStatus("agent-1", healthpb.HealthCheckResponse_SERVING)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	tr := &GRPCTransport{Address: "passthrough:///bufnet", DialOptions: opts}
	conn, err := tr.Dial(ctx, "agent-1")
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	msg, err := conn.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if msg.Type != MessageStatus || msg.Text != "SERVING" {
		t.Fatalf("unexpected status message %+v", msg)
	}

	hs.SetServingStatus("agent-1", healthpb.HealthCheckResponse_NOT_SERVING)
	if _, err := conn.Receive(ctx); !errors.Is(err, ErrAgentUnavailable) {
		t.Fatalf("expected ErrAgentUnavailable, got %v", err)
	}
}

func TestGRPCTransportRejectsUnknownAgent(t *testing.T) {
	_, opts := startHealthServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	tr := &GRPCTransport{Address: "passthrough:///bufnet", DialOptions: opts}
	if _, err := tr.Dial(ctx, "missing-agent"); err == nil {
		t.Fatal("expected health check failure for unknown agent")
	}
}
