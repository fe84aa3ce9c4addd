package mockdata

import (
	"fmt"
	"math"
	"time"

	"github.com/ashureev/voicesite/internal/domain"
)

// Point is one labelled chart sample. Secondary is zero for single-series charts.
type Point struct {
	Label     string  `json:"label"`
	Value     float64 `json:"value"`
	Secondary float64 `json:"secondary,omitempty"`
}

// Sample is a current/previous pair behind a stat card.
type Sample struct {
	Value    float64
	Previous float64
}

// CallVolume returns daily calls (Value) and bookings (Secondary) for days ending at end.
func (g *Generator) CallVolume(days int, end time.Time) []Point {
	out := make([]Point, 0, max(days, 0))
	for i := days - 1; i >= 0; i-- {
		day := end.AddDate(0, 0, -i)
		calls := g.between(20, 90)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			calls /= 2
		}
		out = append(out, Point{
			Label:     day.Format("Jan 02"),
			Value:     float64(calls),
			Secondary: float64(calls * g.between(20, 45) / 100),
		})
	}
	return out
}

// OutcomeBreakdown returns one slice per call outcome.
func (g *Generator) OutcomeBreakdown() []Point {
	out := make([]Point, 0, len(domain.CallOutcomes))
	for i, outcome := range domain.CallOutcomes {
		out = append(out, Point{Label: outcome, Value: float64(g.between(5, 40) * (len(outcomeWt) - i))})
	}
	return out
}

// HourlyDistribution returns call counts for each hour of the day, peaking late morning.
func (g *Generator) HourlyDistribution() []Point {
	out := make([]Point, 0, 24)
	for h := 0; h < 24; h++ {
		base := 40 * math.Exp(-math.Pow(float64(h)-11, 2)/18)
		out = append(out, Point{
			Label: fmt.Sprintf("%02d:00", h),
			Value: math.Round(base + g.betweenF(0, 6)),
		})
	}
	return out
}

// Revenue returns monthly revenue for months ending at end.
func (g *Generator) Revenue(months int, end time.Time) []Point {
	out := make([]Point, 0, max(months, 0))
	level := g.betweenF(18000, 30000)
	for i := months - 1; i >= 0; i-- {
		m := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location()).AddDate(0, -i, 0)
		level *= g.betweenF(0.94, 1.12)
		out = append(out, Point{Label: m.Format("Jan"), Value: math.Round(level)})
	}
	return out
}

// Metric returns a plausible current/previous pair for a metric format.
func (g *Generator) Metric(format string) Sample {
	var cur float64
	switch format {
	case "percent":
		cur = math.Round(g.betweenF(72, 99)*10) / 10
	case "currency":
		cur = math.Round(g.betweenF(12000, 48000))
	case "duration":
		cur = float64(g.between(90, 420))
	default:
		cur = float64(g.between(40, 1500))
	}
	return Sample{Value: cur, Previous: math.Round(cur * g.betweenF(0.8, 1.15))}
}
