package dashboard

import (
	"fmt"
	"math"
	"time"

	"github.com/ashureev/voicesite/internal/mockdata"
	"github.com/ashureev/voicesite/internal/siteconfig"
	"github.com/dustin/go-humanize"
)

// StatCard is a summary statistic card.
type StatCard struct {
	Key         string  `json:"key"`
	Title       string  `json:"title"`
	Value       string  `json:"value"`
	Raw         float64 `json:"raw"`
	Change      float64 `json:"change"` // percent vs previous period
	ChangeLabel string  `json:"change_label,omitempty"`
	Trend       string  `json:"trend"` // "up", "down", "neutral"
	Icon        string  `json:"icon,omitempty"`
	Style       Style   `json:"style"`
}

// ChartData is a generic labelled multi-series chart.
type ChartData struct {
	Type   string        `json:"type"` // "line", "bar", "area"
	Labels []string      `json:"labels"`
	Data   []ChartSeries `json:"data"`
}

// ChartSeries is one named data series.
type ChartSeries struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
	Color  string    `json:"color,omitempty"`
}

// PieChartData is a pie or donut chart.
type PieChartData struct {
	Type   string    `json:"type"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Colors []string  `json:"colors,omitempty"`
}

// Dashboard is the complete dashboard payload.
type Dashboard struct {
	Title      string       `json:"title"`
	Stats      []StatCard   `json:"stats"`
	CallVolume ChartData    `json:"call_volume"`
	Outcomes   PieChartData `json:"outcomes"`
	Hourly     ChartData    `json:"hourly"`
	Revenue    ChartData    `json:"revenue"`
}

var defaultMetrics = []siteconfig.Metric{
	{Key: "total_calls", Label: "Total calls", Color: siteconfig.ColorBlue, Format: siteconfig.FormatCount},
	{Key: "booked", Label: "Appointments booked", Color: siteconfig.ColorGreen, Format: siteconfig.FormatCount},
	{Key: "answer_rate", Label: "Answer rate", Color: siteconfig.ColorPurple, Format: siteconfig.FormatPercent},
}

// Build assembles the dashboard for site. Values in measured replace the generated
// current value of the metric with the same key.
func Build(site *siteconfig.Site, gen *mockdata.Generator, now time.Time, measured map[string]float64) Dashboard {
	metrics := defaultMetrics
	title := "Dashboard"
	if site != nil && site.Dashboard != nil {
		if len(site.Dashboard.Metrics) > 0 {
			metrics = site.Dashboard.Metrics
		}
		if site.Dashboard.Title != "" {
			title = site.Dashboard.Title
		}
	}

	primary := siteconfig.ColorBlue
	accent := siteconfig.ColorPurple
	if site != nil {
		primary, accent = site.Branding.Primary, site.Branding.Accent
	}

	currency := site.Currency()
	d := Dashboard{Title: title, Stats: make([]StatCard, 0, len(metrics))}
	for _, m := range metrics {
		sample := gen.Metric(m.Format)
		if v, ok := measured[m.Key]; ok {
			sample.Value = v
		}
		d.Stats = append(d.Stats, NewStatCard(m, sample, currency))
	}

	volume := gen.CallVolume(14, now)
	d.CallVolume = ChartData{Type: "area", Labels: labels(volume), Data: []ChartSeries{
		{Name: "Calls", Values: values(volume, false), Color: StyleFor(primary).Hex},
		{Name: "Booked", Values: values(volume, true), Color: StyleFor(accent).Hex},
	}}

	outcomes := gen.OutcomeBreakdown()
	d.Outcomes = PieChartData{Type: "donut", Labels: labels(outcomes), Values: values(outcomes, false)}
	for _, p := range outcomes {
		d.Outcomes.Colors = append(d.Outcomes.Colors, StyleFor(StatusColor(p.Label)).Hex)
	}

	hourly := gen.HourlyDistribution()
	d.Hourly = ChartData{Type: "bar", Labels: labels(hourly), Data: []ChartSeries{
		{Name: "Calls", Values: values(hourly, false), Color: StyleFor(primary).Hex},
	}}

	revenue := gen.Revenue(6, now)
	d.Revenue = ChartData{Type: "line", Labels: labels(revenue), Data: []ChartSeries{
		{Name: "Revenue", Values: values(revenue, false), Color: StyleFor(siteconfig.ColorGreen).Hex},
	}}
	return d
}

// NewStatCard formats one metric sample. currency prefixes currency metrics.
func NewStatCard(m siteconfig.Metric, s mockdata.Sample, currency string) StatCard {
	card := StatCard{
		Key:         m.Key,
		Title:       m.Label,
		Value:       FormatValue(s.Value, m.Format, currency),
		Raw:         s.Value,
		ChangeLabel: m.ChangeLabel,
		Trend:       "neutral",
		Icon:        m.Icon,
		Style:       StyleFor(m.Color),
	}
	if s.Previous != 0 {
		card.Change = math.Round((s.Value-s.Previous)/s.Previous*1000) / 10
	}
	switch {
	case card.Change > 0:
		card.Trend = "up"
	case card.Change < 0:
		card.Trend = "down"
	}
	return card
}

// FormatValue renders v according to a metric format.
func FormatValue(v float64, format, currency string) string {
	switch format {
	case siteconfig.FormatPercent:
		return fmt.Sprintf("%.1f%%", v)
	case siteconfig.FormatCurrency:
		return currency + humanize.Comma(int64(math.Round(v)))
	case siteconfig.FormatDuration:
		return FormatDuration(int(v))
	default:
		return humanize.Comma(int64(math.Round(v)))
	}
}

// FormatDuration renders seconds as "3m 05s".
func FormatDuration(sec int) string {
	if sec < 60 {
		return fmt.Sprintf("%ds", sec)
	}
	return fmt.Sprintf("%dm %02ds", sec/60, sec%60)
}

func labels(points []mockdata.Point) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = p.Label
	}
	return out
}

func values(points []mockdata.Point, secondary bool) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		if secondary {
			out[i] = p.Secondary
		} else {
			out[i] = p.Value
		}
	}
	return out
}
