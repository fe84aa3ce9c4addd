package siteconfig

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuiltinsLoadAndValidate(t *testing.T) {
	names := BuiltinNames()
	if len(names) < 5 {
		t.Fatalf("expected at least 5 builtin sites, got %v", names)
	}
	for _, name := range names {
		site, err := Builtin(name)
		if err != nil {
			t.Fatalf("builtin %s failed: %v", name, err)
		}
		if site.Business.Name == "" {
			t.Errorf("builtin %s has empty business name", name)
		}
		if !site.Branding.Primary.Valid() {
			t.Errorf("builtin %s has invalid primary color %q", name, site.Branding.Primary)
		}
	}
}

func TestBuiltinUnknown(t *testing.T) {
	_, err := Builtin("spaceport")
	if !errors.Is(err, ErrUnknownSite) {
		t.Fatalf("expected ErrUnknownSite, got %v", err)
	}
}

func TestParseAppliesDefaults(t *testing.T) {
	site, err := Parse([]byte("business:\n  name: Acme\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if site.Branding.Primary != ColorBlue || site.Branding.Accent != ColorBlue {
		t.Errorf("expected blue defaults, got %q/%q", site.Branding.Primary, site.Branding.Accent)
	}
	if site.Agent.ConnectionType != "webrtc" {
		t.Errorf("expected webrtc default, got %q", site.Agent.ConnectionType)
	}
	if site.CustomerTerm() != "customer" || site.CustomerTermPlural() != "customers" {
		t.Errorf("unexpected fallback terms %q/%q", site.CustomerTerm(), site.CustomerTermPlural())
	}
	for _, section := range []string{"hero", "features", "pricing", "roadmap", "dashboard", "footer", "voice"} {
		if site.SectionEnabled(section) {
			t.Errorf("absent section %s reported enabled", section)
		}
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"missing name":     "business:\n  tagline: nameless\n",
		"bad color":        "business:\n  name: A\nbranding:\n  primary: chartreuse\n",
		"agent without id": "business:\n  name: A\nagent:\n  enabled: true\n",
		"negative price":   "business:\n  name: A\npricing:\n  plans:\n    - name: Free\n      price: -1\n",
		"unknown field":    "business:\n  name: A\nbusines: typo\n",
		"bad roadmap":      "business:\n  name: A\nroadmap:\n  items:\n    - title: X\n      status: someday\n",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestRoadmapDisabled(t *testing.T) {
	site, err := Builtin("dermatology")
	if err != nil {
		t.Fatal(err)
	}
	if site.SectionEnabled("roadmap") {
		t.Fatal("dermatology roadmap should be disabled")
	}
	if site.CustomerTerm() != "patient" {
		t.Fatalf("expected patient term, got %q", site.CustomerTerm())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	site, err := Builtin("default")
	if err != nil {
		t.Fatal(err)
	}
	clone := site.Clone()
	clone.Business.Name = "Other"
	clone.Features.Items[0].Title = "Changed"
	off := false
	clone.Roadmap.Enabled = &off

	if site.Business.Name == "Other" || site.Features.Items[0].Title == "Changed" {
		t.Fatal("clone mutation leaked into original")
	}
	if !site.SectionEnabled("roadmap") || clone.SectionEnabled("roadmap") {
		t.Fatal("roadmap toggle should only affect the clone")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "tenant.yaml")
	if err := os.WriteFile(p, []byte("business:\n  name: File Co\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	site, err := Load(p)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if site.Business.Name != "File Co" {
		t.Fatalf("unexpected name %q", site.Business.Name)
	}
}

func TestRegistryLookupAndMiddleware(t *testing.T) {
	reg, err := NewRegistryFromRefs("default", map[string]string{"clinic.example.com": "dermatology"})
	if err != nil {
		t.Fatalf("NewRegistryFromRefs failed: %v", err)
	}
	if got := reg.Lookup("Clinic.Example.com:8443").Business.Name; got != "Clearview Dermatology" {
		t.Errorf("expected dermatology tenant, got %q", got)
	}
	if got := reg.Lookup("unknown.example.com"); got != reg.Default() {
		t.Error("expected fallback site for unknown host")
	}

	var seen *Site
	h := Middleware(reg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "clinic.example.com"
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen == nil || !strings.Contains(seen.Business.Name, "Clearview") {
		t.Fatalf("middleware did not inject tenant site: %+v", seen)
	}

	if FromContext(context.Background()) != nil {
		t.Fatal("expected nil site from empty context")
	}
}

func TestDefaultPricingLinksKeepQuery(t *testing.T) {
	site, err := Builtin("default")
	if err != nil {
		t.Fatalf("default builtin failed: %v", err)
	}
	want := map[string]string{"Starter": "/signup?plan=starter", "Growth": "/signup?plan=growth"}
	for _, p := range site.Pricing.Plans {
		href, ok := want[p.Name]
		if !ok {
			continue
		}
		if p.CTA == nil || p.CTA.Href != href {
			t.Errorf("plan %s: expected cta href %q, got %+v", p.Name, href, p.CTA)
		}
	}
}

func TestCurrencyFallback(t *testing.T) {
	var nilSite *Site
	if got := nilSite.Currency(); got != "$" {
		t.Fatalf("expected $ for nil site, got %q", got)
	}
	site, err := Parse([]byte("business:\n  name: A\npricing:\n  currency: \"£\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got := site.Currency(); got != "£" {
		t.Fatalf("expected configured currency, got %q", got)
	}
}
