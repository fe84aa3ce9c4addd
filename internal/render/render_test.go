package render

import (
	"strings"
	"testing"
	"time"

	"github.com/ashureev/voicesite/internal/dashboard"
	"github.com/ashureev/voicesite/internal/domain"
	"github.com/ashureev/voicesite/internal/listing"
	"github.com/ashureev/voicesite/internal/mockdata"
	"github.com/ashureev/voicesite/internal/siteconfig"
	g "maragu.dev/gomponents"
)

func renderString(t *testing.T, n g.Node) string {
	t.Helper()
	if n == nil {
		return ""
	}
	var b strings.Builder
	if err := n.Render(&b); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return b.String()
}

func mustBuiltin(t *testing.T, name string) *siteconfig.Site {
	t.Helper()
	site, err := siteconfig.Builtin(name)
	if err != nil {
		t.Fatalf("load %s: %v", name, err)
	}
	return site
}

func TestAbsentSectionsRenderNothing(t *testing.T) {
	site, err := siteconfig.Parse([]byte("business:\n  name: Bare\n"))
	if err != nil {
		t.Fatal(err)
	}
	sections := map[string]func(*siteconfig.Site) g.Node{
		"hero":         HeroSection,
		"features":     FeaturesSection,
		"howItWorks":   HowItWorksSection,
		"testimonials": TestimonialsSection,
		"pricing":      PricingSection,
		"roadmap":      RoadmapSection,
		"faq":          FAQSection,
		"cta":          CTASection,
		"voice":        VoiceWidget,
	}
	for name, fn := range sections {
		if n := fn(site); n != nil {
			t.Errorf("%s rendered for a site without it: %s", name, renderString(t, n))
		}
	}

	page := renderString(t, LandingPage(site))
	if !strings.Contains(page, "Bare") {
		t.Fatal("expected business name in landing page")
	}
	if strings.Contains(page, `id="features"`) {
		t.Fatal("features anchor rendered for absent section")
	}
}

func TestDisabledRoadmap(t *testing.T) {
	derm := mustBuiltin(t, "dermatology")
	if RoadmapSection(derm) != nil {
		t.Fatal("expected no roadmap for dermatology")
	}
	page := renderString(t, LandingPage(derm))
	if strings.Contains(page, `id="roadmap"`) || strings.Contains(page, "/#roadmap") {
		t.Fatal("disabled roadmap leaked into landing page")
	}

	def := mustBuiltin(t, "default")
	if !strings.Contains(renderString(t, LandingPage(def)), `id="roadmap"`) {
		t.Fatal("expected roadmap in default landing page")
	}

	clone := def.Clone()
	off := false
	clone.Roadmap.Enabled = &off
	if RoadmapSection(clone) != nil {
		t.Fatal("expected toggled roadmap to render nothing")
	}
}

func TestVoiceWidgetCarriesAgent(t *testing.T) {
	site := mustBuiltin(t, "default")
	html := renderString(t, VoiceWidget(site))
	if !strings.Contains(html, `data-agent-id="agent_default_demo"`) {
		t.Fatalf("agent id missing: %s", html)
	}

	clone := site.Clone()
	clone.Agent.Enabled = false
	if VoiceWidget(clone) != nil {
		t.Fatal("expected no widget when the agent is disabled")
	}
}

func TestEmptyStates(t *testing.T) {
	def := mustBuiltin(t, "default")
	if got := renderString(t, AppointmentTable(def, nil)); !strings.Contains(got, "No appointments found") {
		t.Errorf("unexpected empty appointments: %s", got)
	}
	derm := mustBuiltin(t, "dermatology")
	if got := renderString(t, AppointmentTable(derm, nil)); !strings.Contains(got, "No consultations found") {
		t.Errorf("unexpected dermatology empty appointments: %s", got)
	}
	if got := renderString(t, PatientTable(derm, nil)); !strings.Contains(got, "No patients found") {
		t.Errorf("unexpected empty patients: %s", got)
	}
	if got := renderString(t, CallLogTable(nil, time.Now())); !strings.Contains(got, "No records found") {
		t.Errorf("unexpected empty call log: %s", got)
	}
}

func TestTablesUseVocabulary(t *testing.T) {
	derm := mustBuiltin(t, "dermatology")
	appts := []domain.Appointment{{ID: "a1", PatientName: "Jo Park", Service: "Botox", Date: "2026-03-10", Time: "09:30", DurationMin: 30, Status: domain.StatusConfirmed}}
	html := renderString(t, AppointmentTable(derm, appts))
	if !strings.Contains(html, "<th>Patient</th>") || !strings.Contains(html, "Jo Park") {
		t.Fatalf("unexpected appointment table: %s", html)
	}
	if !strings.Contains(html, "text-green-600") {
		t.Fatal("confirmed status should use the green style")
	}
}

func TestCallLogRelativeTime(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	calls := []domain.CallLog{{ID: "c1", Caller: "Sam", StartedAt: now.Add(-2 * time.Hour), DurationSec: 185, Outcome: domain.OutcomeCompleted}}
	html := renderString(t, CallLogTable(calls, now))
	if !strings.Contains(html, "2 hours ago") || !strings.Contains(html, "3m 05s") {
		t.Fatalf("unexpected call log row: %s", html)
	}
}

func TestPager(t *testing.T) {
	q := listing.Query{Search: "ann", Status: "pending", PageSize: listing.DefaultPageSize}
	if Pager(TabAppointments, q, 1, 1) != nil {
		t.Fatal("expected no pager for a single page")
	}
	html := renderString(t, Pager(TabAppointments, q, 1, 3))
	if !strings.Contains(html, "Page 1 of 3") {
		t.Fatalf("missing page info: %s", html)
	}
	if !strings.Contains(html, "page=2") || !strings.Contains(html, "q=ann") || !strings.Contains(html, "status=pending") {
		t.Fatalf("next link lost filters: %s", html)
	}
	if !strings.Contains(html, `aria-disabled="true"`) {
		t.Fatal("previous should be disabled on the first page")
	}
}

func TestDashboardPage(t *testing.T) {
	site := mustBuiltin(t, "dermatology")
	now := time.Date(2026, time.March, 10, 18, 0, 0, 0, time.Local)
	gen := mockdata.NewGenerator(5)
	d := dashboard.Build(site, gen, now, nil)
	calls := gen.CallLogs(12, now)

	html := renderString(t, DashboardPage(site, DashboardView{
		Tab:       "bogus",
		Dashboard: d,
		Calls:     listing.Paginate(calls, 1, 10),
		Query:     listing.Query{Page: 1, PageSize: 10},
		Degraded:  true,
		Err:       "backend offline",
		Now:       now,
	}))
	for _, want := range []string{"Showing sample data", "backend offline", `data-metric="total_patients"`, "Page 1 of 2", "tab-active"} {
		if !strings.Contains(html, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	cases := map[float64]string{0: "Free", 49: "$49", 19.5: "$19.50"}
	for in, want := range cases {
		if got := FormatPrice("$", in); got != want {
			t.Errorf("FormatPrice(%v) = %q, want %q", in, got, want)
		}
	}
}
