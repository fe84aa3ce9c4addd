package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func serveCORS(origins []string, method, origin string) *httptest.ResponseRecorder {
	h := CORS(origins)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	req := httptest.NewRequest(method, "/api/voice/session", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCORSWildcard(t *testing.T) {
	w := serveCORS([]string{"*"}, http.MethodGet, "https://a.example.com")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://a.example.com" {
		t.Fatalf("expected echoed origin, got %q", got)
	}
	if w.Header().Get("Access-Control-Allow-Credentials") != "" {
		t.Fatal("wildcard match must not allow credentials")
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), "X-Voice-Session-ID") {
		t.Fatal("expected voice session header to be allowed")
	}
	if w.Code != http.StatusTeapot {
		t.Fatalf("expected request to reach handler, got %d", w.Code)
	}
}

func TestCORSExplicitOrigin(t *testing.T) {
	origins := AllowedOrigins("https://site.example.com/")
	w := serveCORS(origins, http.MethodGet, "https://site.example.com")
	if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatal("expected credentials for explicit origin")
	}

	w = serveCORS(origins, http.MethodGet, "https://evil.example.com")
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("unexpected CORS headers for foreign origin")
	}
}

func TestCORSPreflight(t *testing.T) {
	w := serveCORS([]string{"*"}, http.MethodOptions, "https://a.example.com")
	if w.Code != http.StatusOK {
		t.Fatalf("expected preflight to short-circuit with 200, got %d", w.Code)
	}
}

func TestAllowedOriginsDefault(t *testing.T) {
	if got := AllowedOrigins(""); len(got) != 1 || got[0] != "*" {
		t.Fatalf("expected wildcard, got %v", got)
	}
}
