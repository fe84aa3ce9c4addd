// Package middleware provides HTTP middleware shared by the pages and APIs.
package middleware

import (
	"net/http"
	"strings"

	"github.com/ashureev/voicesite/internal/identity"
)

// allowedHeaders includes the voice session header and the SSE replay header
// so a separately hosted frontend can drive the voice endpoints.
var allowedHeaders = strings.Join([]string{"Content-Type", identity.SessionHeaderName, "Last-Event-ID"}, ", ")

// AllowedOrigins returns the origins for CORS: the configured frontend URL,
// or every origin when none is set.
func AllowedOrigins(frontendURL string) []string {
	frontendURL = strings.TrimRight(strings.TrimSpace(frontendURL), "/")
	if frontendURL == "" {
		return []string{"*"}
	}
	return []string{frontendURL}
}

// CORS returns middleware that handles CORS headers.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed, explicit := false, false
			for _, o := range allowedOrigins {
				if o == origin && origin != "" {
					allowed, explicit = true, true
					break
				}
				if o == "*" {
					allowed = true
				}
			}

			if allowed && origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)
				w.Header().Add("Vary", "Origin")
				// Credentials only for explicit origins; a wildcard-echoed origin with credentials enables CSRF.
				if explicit {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
