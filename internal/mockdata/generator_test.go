package mockdata

import (
	"reflect"
	"testing"
	"time"

	"github.com/ashureev/voicesite/internal/domain"
)

var anchor = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

func TestSameSeedSameFixtures(t *testing.T) {
	a := NewGenerator(42).Appointments(25, nil, anchor)
	b := NewGenerator(42).Appointments(25, nil, anchor)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("expected identical appointments for identical seeds")
	}

	c := NewGenerator(43).Appointments(25, nil, anchor)
	if reflect.DeepEqual(a, c) {
		t.Fatal("expected different appointments for different seeds")
	}
}

func TestZeroSeedIsRandomised(t *testing.T) {
	g := NewGenerator(0)
	if g.Seed() == 0 {
		t.Fatal("expected a non-zero derived seed")
	}
}

func TestAppointmentsAreValid(t *testing.T) {
	services := []string{"Botox", "Chemical Peel"}
	appts := NewGenerator(7).Appointments(60, services, anchor)
	if len(appts) != 60 {
		t.Fatalf("expected 60 appointments, got %d", len(appts))
	}
	ids := make(map[string]bool)
	for _, a := range appts {
		if err := a.Validate(); err != nil {
			t.Fatalf("generated appointment invalid: %v (%+v)", err, a)
		}
		if a.Service != "Botox" && a.Service != "Chemical Peel" {
			t.Errorf("service %q not drawn from site services", a.Service)
		}
		if ids[a.ID] {
			t.Errorf("duplicate id %s", a.ID)
		}
		ids[a.ID] = true
	}
}

func TestCallLogsNewestFirst(t *testing.T) {
	logs := NewGenerator(9).CallLogs(40, anchor)
	for i := 1; i < len(logs); i++ {
		if logs[i].StartedAt.After(logs[i-1].StartedAt) {
			t.Fatalf("call logs not sorted newest first at %d", i)
		}
		if logs[i].Outcome == domain.OutcomeMissed && logs[i].DurationSec != 0 {
			t.Fatalf("missed call has duration %d", logs[i].DurationSec)
		}
	}
}

func TestSeriesShapes(t *testing.T) {
	g := NewGenerator(11)
	if got := len(g.CallVolume(14, anchor)); got != 14 {
		t.Errorf("expected 14 daily points, got %d", got)
	}
	if got := len(g.HourlyDistribution()); got != 24 {
		t.Errorf("expected 24 hourly points, got %d", got)
	}
	if got := len(g.OutcomeBreakdown()); got != len(domain.CallOutcomes) {
		t.Errorf("expected %d outcome slices, got %d", len(domain.CallOutcomes), got)
	}
	rev := g.Revenue(6, anchor)
	if len(rev) != 6 || rev[5].Label != "Mar" {
		t.Errorf("unexpected revenue series %+v", rev)
	}
	if s := g.Metric("percent"); s.Value < 72 || s.Value > 99 {
		t.Errorf("percent metric out of range: %v", s.Value)
	}
}

func TestNegativeCountsYieldEmpty(t *testing.T) {
	g := NewGenerator(1)
	if len(g.Appointments(-1, nil, anchor)) != 0 || len(g.Patients(0, anchor)) != 0 {
		t.Fatal("expected empty slices for non-positive counts")
	}
}
