package siteconfig

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
)

// Registry maps request hosts to site configurations.
// Sites are shared read-only values; callers that need to modify one must Clone it.
type Registry struct {
	fallback *Site
	byHost   map[string]*Site
}

// NewRegistry creates a registry whose fallback tenant is def.
func NewRegistry(def *Site) *Registry {
	return &Registry{fallback: def, byHost: make(map[string]*Site)}
}

// NewRegistryFromRefs loads the default site and every host=ref tenant.
func NewRegistryFromRefs(defaultRef string, tenants map[string]string) (*Registry, error) {
	def, err := Load(defaultRef)
	if err != nil {
		return nil, fmt.Errorf("load default site: %w", err)
	}
	reg := NewRegistry(def)
	for host, ref := range tenants {
		site, err := Load(ref)
		if err != nil {
			return nil, fmt.Errorf("load tenant %s: %w", host, err)
		}
		reg.Register(host, site)
	}
	return reg, nil
}

// Register binds host to site.
func (r *Registry) Register(host string, site *Site) {
	r.byHost[normalizeHost(host)] = site
}

// Default returns the fallback site.
func (r *Registry) Default() *Site {
	return r.fallback
}

// Lookup returns the site for host, or the fallback when none is registered.
func (r *Registry) Lookup(host string) *Site {
	if site, ok := r.byHost[normalizeHost(host)]; ok {
		return site
	}
	return r.fallback
}

// Hosts returns the number of host-bound tenants.
func (r *Registry) Hosts() int {
	return len(r.byHost)
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

type contextKey int

const siteKey contextKey = iota

// WithSite returns a context carrying site.
func WithSite(ctx context.Context, site *Site) context.Context {
	return context.WithValue(ctx, siteKey, site)
}

// FromContext returns the site carried by ctx, or nil.
func FromContext(ctx context.Context) *Site {
	if v, ok := ctx.Value(siteKey).(*Site); ok {
		return v
	}
	return nil
}

// Middleware resolves the tenant for each request and injects it into the context.
func Middleware(reg *Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			site := reg.Lookup(r.Host)
			if site == nil {
				slog.Error("No site configuration for host", "host", r.Host)
				http.Error(w, `{"error":"site not configured"}`, http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSite(r.Context(), site)))
		})
	}
}
