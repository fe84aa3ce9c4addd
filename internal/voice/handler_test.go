package voice

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ashureev/voicesite/internal/domain"
	"github.com/ashureev/voicesite/internal/identity"
	"github.com/ashureev/voicesite/internal/siteconfig"
	"github.com/go-chi/chi/v5"
)

type callSink struct {
	mu    sync.Mutex
	calls []domain.CallLog
}

func (s *callSink) RecordCall(_ context.Context, c domain.CallLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
	return nil
}

func (s *callSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func voiceSite(t *testing.T, enabled bool) *siteconfig.Site {
	t.Helper()
	doc := "business:\n  name: Test Clinic\nagent:\n  enabled: true\n  agentId: agent-xyz\n"
	if !enabled {
		doc = "business:\n  name: Test Clinic\n"
	}
	site, err := siteconfig.Parse([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	return site
}

func newTestRouter(t *testing.T, h *Handler, site *siteconfig.Site) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := identity.WithVisitor(req.Context(), "v_test", req.Header.Get(identity.SessionHeaderName))
			ctx = siteconfig.WithSite(ctx, site)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	h.RegisterRoutes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, stateResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var resp stateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("%s %s: decode response: %v", method, path, err)
	}
	return rec.Code, resp
}

func TestHandlerCallLifecycle(t *testing.T) {
	sink := &callSink{}
	tr := &fakeTransport{}
	reg := NewRegistry(tr, sink, 10)
	router := newTestRouter(t, NewHandler(reg, HandlerConfig{StartsPerMinute: 10, StartBurst: 5}), voiceSite(t, true))

	code, resp := do(t, router, http.MethodDelete, "/api/voice/session", "")
	if code != http.StatusOK || resp.Ended == nil || *resp.Ended || tr.dialCount() != 0 {
		t.Fatalf("ending while idle should be a no-op, got %d %+v", code, resp)
	}

	code, resp = do(t, router, http.MethodPost, "/api/voice/mute", `{"muted":true}`)
	if code != http.StatusConflict {
		t.Fatalf("expected 409 muting while idle, got %d", code)
	}

	code, resp = do(t, router, http.MethodPost, "/api/voice/session", "")
	if code != http.StatusOK || resp.State != StateConnected || resp.AgentID != "agent-xyz" {
		t.Fatalf("unexpected start response %d %+v", code, resp)
	}

	code, _ = do(t, router, http.MethodPost, "/api/voice/session", "")
	if code != http.StatusConflict {
		t.Fatalf("expected 409 on second start, got %d", code)
	}

	code, resp = do(t, router, http.MethodPost, "/api/voice/mute", `{"muted":true}`)
	if code != http.StatusOK || !resp.Muted {
		t.Fatalf("unexpected mute response %d %+v", code, resp)
	}

	code, resp = do(t, router, http.MethodGet, "/api/voice/state", "")
	if code != http.StatusOK || resp.State != StateConnected {
		t.Fatalf("unexpected state %d %+v", code, resp)
	}

	code, resp = do(t, router, http.MethodDelete, "/api/voice/session", "")
	if code != http.StatusOK || resp.Ended == nil || !*resp.Ended || resp.State != StateIdle {
		t.Fatalf("unexpected end response %d %+v", code, resp)
	}
	if sink.count() != 1 {
		t.Fatalf("expected finished call to be recorded, got %d", sink.count())
	}
}

func TestHandlerDialFailure(t *testing.T) {
	tr := &fakeTransport{dialErr: context.DeadlineExceeded}
	router := newTestRouter(t, NewHandler(NewRegistry(tr, nil, 10), HandlerConfig{StartsPerMinute: 10, StartBurst: 5}), voiceSite(t, true))

	code, resp := do(t, router, http.MethodPost, "/api/voice/session", "")
	if code != http.StatusBadGateway || resp.State != StateIdle || resp.Error == "" {
		t.Fatalf("unexpected failure response %d %+v", code, resp)
	}
}

func TestHandlerVoiceDisabled(t *testing.T) {
	tr := &fakeTransport{}
	router := newTestRouter(t, NewHandler(NewRegistry(tr, nil, 10), HandlerConfig{}), voiceSite(t, false))

	code, _ := do(t, router, http.MethodPost, "/api/voice/session", "")
	if code != http.StatusNotFound || tr.dialCount() != 0 {
		t.Fatalf("expected 404 without dialing, got %d dials=%d", code, tr.dialCount())
	}
}

func TestHandlerRateLimitsStarts(t *testing.T) {
	tr := &fakeTransport{}
	reg := NewRegistry(tr, nil, 10)
	router := newTestRouter(t, NewHandler(reg, HandlerConfig{StartsPerMinute: 1, StartBurst: 1}), voiceSite(t, true))

	if code, _ := do(t, router, http.MethodPost, "/api/voice/session", ""); code != http.StatusOK {
		t.Fatalf("first start: got %d", code)
	}
	do(t, router, http.MethodDelete, "/api/voice/session", "")

	req := httptest.NewRequest(http.MethodPost, "/api/voice/session", nil)
	req.Header.Set(identity.SessionHeaderName, "other-tab")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for a new tab of the same visitor, got %d", rec.Code)
	}
}

func TestHandleStreamDeliversEvents(t *testing.T) {
	tr := &fakeTransport{}
	reg := NewRegistry(tr, nil, 10)
	router := newTestRouter(t, NewHandler(reg, HandlerConfig{StartsPerMinute: 10, StartBurst: 5, KeepaliveInterval: time.Hour}), voiceSite(t, true))
	srv := httptest.NewServer(router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/voice/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	lines := make(chan string, 64)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	// Initial state snapshot.
	expectLine(t, lines, "event: state")

	startResp, err := http.Post(srv.URL+"/api/voice/session", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	startResp.Body.Close()

	expectLine(t, lines, "event: connected")
}

func expectLine(t *testing.T, lines <-chan string, want string) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case l, ok := <-lines:
			if !ok {
				t.Fatalf("stream closed before %q", want)
			}
			if l == want {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func TestSweeperRemovesIdleSessions(t *testing.T) {
	tr := &fakeTransport{}
	reg := NewRegistry(tr, nil, 10)
	sess := reg.Open("v_a", "tab", "agent")
	if err := sess.Adapter.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	reg.Open("v_b", "tab", "agent")

	sw, err := NewSweeper(reg, time.Minute, "@every 1h")
	if err != nil {
		t.Fatalf("NewSweeper failed: %v", err)
	}
	if n := sw.Sweep(context.Background()); n != 0 {
		t.Fatalf("fresh sessions should not be swept, removed %d", n)
	}

	sess.mu.Lock()
	sess.lastSeen = time.Now().Add(-2 * time.Minute)
	sess.mu.Unlock()

	if n := sw.Sweep(context.Background()); n != 1 {
		t.Fatalf("expected one expired session, removed %d", n)
	}
	if reg.Len() != 1 || sess.Adapter.State() != StateIdle || tr.conns[0].closeCount() != 1 {
		t.Fatalf("expected stale call ended and removed, len=%d state=%s", reg.Len(), sess.Adapter.State())
	}

	if _, err := NewSweeper(reg, time.Minute, "not a schedule"); err == nil {
		t.Fatal("expected invalid schedule error")
	}
}

func TestEventLogReplay(t *testing.T) {
	l := newEventLog(3)
	for i := 0; i < 5; i++ {
		l.publish(EventState, i)
	}
	got := l.since(0)
	if len(got) != 3 || got[0].ID != 3 || got[2].ID != 5 {
		t.Fatalf("expected last three events, got %+v", got)
	}
	if len(l.since(4)) != 1 {
		t.Fatal("expected one event after id 4")
	}
}

func TestStartLimiterEvicts(t *testing.T) {
	l := newStartLimiter(1, 1)
	if !l.Allow("a") || l.Allow("a") {
		t.Fatal("expected burst of one")
	}
	if !l.Allow("b") {
		t.Fatal("limiters must be per visitor")
	}
	if n := l.evict(-time.Second); n != 2 {
		t.Fatalf("expected both limiters evicted, got %d", n)
	}
}
