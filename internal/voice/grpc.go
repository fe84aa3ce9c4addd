package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
)

var (
	errConnectionShutdown       = errors.New("connection shutdown")
	errConnectionStateUnchanged = errors.New("connection state did not change")
	// ErrAgentUnavailable is returned when the gateway reports the agent as not serving.
	ErrAgentUnavailable = errors.New("voice agent not serving")
)

// GRPCTransport connects to a self-hosted voice gateway. Media flows between
// the browser and the gateway; the server only tracks the agent's serving
// status through grpc.health.v1, which it relays as status messages.
type GRPCTransport struct {
	Address string
	// HealthService is the health service name to watch. When empty the agent ID is used.
	HealthService string
	// DialOptions replace the default insecure, keepalive-enabled options.
	DialOptions []grpc.DialOption
}

func (t *GRPCTransport) dialOptions() []grpc.DialOption {
	if len(t.DialOptions) > 0 {
		return t.DialOptions
	}
	return []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:    2 * time.Minute,
			Timeout: 10 * time.Second,
		}),
	}
}

// Dial waits for the gateway connection to become ready and checks the agent is serving.
func (t *GRPCTransport) Dial(ctx context.Context, agentID string) (Conn, error) {
	// Build client connection (no network I/O yet).
	conn, err := grpc.NewClient(t.Address, t.dialOptions()...)
	if err != nil {
		return nil, fmt.Errorf("create voice gateway client %s: %w", t.Address, err)
	}

	// Force a connection attempt so bad gateways fail the dial rather than the first receive.
	if err := waitForReady(ctx, conn); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("voice gateway at %s not ready: %w", t.Address, err)
	}

	service := t.HealthService
	if service == "" {
		service = agentID
	}
	health := healthpb.NewHealthClient(conn)
	resp, err := health.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("voice gateway health check: %w", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		closeQuietly(conn)
		return nil, fmt.Errorf("%w: %s is %s", ErrAgentUnavailable, service, resp.GetStatus())
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	stream, err := health.Watch(watchCtx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		cancel()
		closeQuietly(conn)
		return nil, fmt.Errorf("watch voice agent health: %w", err)
	}

	slog.Info("Connected to voice gateway", "address", t.Address, "service", service)
	return &grpcConn{conn: conn, stream: stream, cancel: cancel, volume: 1}, nil
}

func waitForReady(ctx context.Context, conn *grpc.ClientConn) error {
	for {
		state := conn.GetState()
		switch state {
		case connectivity.Ready:
			return nil
		case connectivity.Idle:
			conn.Connect()
		case connectivity.Shutdown:
			return errConnectionShutdown
		}

		if !conn.WaitForStateChange(ctx, state) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w from %s", errConnectionStateUnchanged, state)
		}
	}
}

func closeQuietly(conn *grpc.ClientConn) {
	if err := conn.Close(); err != nil {
		slog.Warn("failed to close gRPC connection", "error", err)
	}
}

type grpcConn struct {
	conn   *grpc.ClientConn
	stream healthpb.Health_WatchClient
	cancel context.CancelFunc

	mu     sync.Mutex
	volume float64
	closed bool
}

// Receive relays serving-status changes. NOT_SERVING or SERVICE_UNKNOWN ends the call.
func (c *grpcConn) Receive(ctx context.Context) (Message, error) {
	type result struct {
		resp *healthpb.HealthCheckResponse
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		resp, err := c.stream.Recv()
		ch <- result{resp, err}
	}()

	select {
	case <-ctx.Done():
		return Message{}, ctx.Err()
	case r := <-ch:
		if errors.Is(r.err, io.EOF) {
			return Message{}, ErrClosed
		}
		if r.err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if closed {
				return Message{}, ErrClosed
			}
			return Message{}, fmt.Errorf("voice gateway stream: %w", r.err)
		}
		status := r.resp.GetStatus()
		if status != healthpb.HealthCheckResponse_SERVING {
			return Message{}, fmt.Errorf("%w: %s", ErrAgentUnavailable, status)
		}
		return Message{Type: MessageStatus, Text: status.String(), At: time.Now()}, nil
	}
}

// SetVolume is tracked locally; the gateway plays audio directly to the browser.
func (c *grpcConn) SetVolume(_ context.Context, v float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.volume = max(0, min(v, 1))
	return nil
}

func (c *grpcConn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("close voice gateway connection: %w", err)
	}
	return nil
}
