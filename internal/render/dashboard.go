package render

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/ashureev/voicesite/internal/dashboard"
	"github.com/ashureev/voicesite/internal/domain"
	"github.com/ashureev/voicesite/internal/listing"
	"github.com/ashureev/voicesite/internal/siteconfig"
	"github.com/dustin/go-humanize"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// Dashboard tabs.
const (
	TabCalls        = "calls"
	TabAppointments = "appointments"
	TabPatients     = "patients"
)

// DashboardView is everything the dashboard page shows for one request.
type DashboardView struct {
	Tab          string
	Dashboard    dashboard.Dashboard
	Calls        listing.Page[domain.CallLog]
	Appointments listing.Page[domain.Appointment]
	Patients     listing.Page[domain.Patient]
	Query        listing.Query
	Degraded     bool
	Err          string
	Now          time.Time
}

// NormalizeTab maps unknown tab names to the call log.
func NormalizeTab(tab string) string {
	switch tab {
	case TabAppointments, TabPatients:
		return tab
	default:
		return TabCalls
	}
}

// DashboardPage renders the admin dashboard.
func DashboardPage(site *siteconfig.Site, v DashboardView) g.Node {
	tab := NormalizeTab(v.Tab)
	title := v.Dashboard.Title
	if title == "" {
		title = "Dashboard"
	}

	var table g.Node
	switch tab {
	case TabAppointments:
		table = g.Group{AppointmentTable(site, v.Appointments.Items), Pager(tab, v.Query, v.Appointments.Page, v.Appointments.TotalPages)}
	case TabPatients:
		table = g.Group{PatientTable(site, v.Patients.Items), Pager(tab, v.Query, v.Patients.Page, v.Patients.TotalPages)}
	default:
		table = g.Group{CallLogTable(v.Calls.Items, v.Now), Pager(tab, v.Query, v.Calls.Page, v.Calls.TotalPages)}
	}

	return Layout(site, title,
		Main(ID("dashboard"), Class("dashboard"),
			H1(g.Text(title)),
			DegradedBanner(v.Degraded, v.Err),
			StatCards(v.Dashboard.Stats),
			Div(Class("charts"),
				BarChart("Call volume", v.Dashboard.CallVolume),
				OutcomeChart(v.Dashboard.Outcomes),
				BarChart("Calls by hour", v.Dashboard.Hourly),
				BarChart("Revenue", v.Dashboard.Revenue),
			),
			VoiceWidget(site),
			tabNav(site, tab),
			FilterBar(tab, v.Query, statusOptions(tab)),
			table,
		),
	)
}

func tabNav(site *siteconfig.Site, active string) g.Node {
	tabs := []struct{ key, label string }{
		{TabCalls, callLogTitle(site)},
		{TabAppointments, appointmentsTitle(site)},
		{TabPatients, capitalize(site.CustomerTermPlural())},
	}
	return Nav(Class("tabs"), g.Map(tabs, func(t struct{ key, label string }) g.Node {
		cls := "tab"
		if t.key == active {
			cls += " tab-active"
		}
		return A(Href("/dashboard?tab="+t.key), Class(cls), g.Text(t.label))
	}))
}

func callLogTitle(site *siteconfig.Site) string {
	if site != nil && site.Dashboard != nil && site.Dashboard.CallLogTitle != "" {
		return site.Dashboard.CallLogTitle
	}
	return "Call log"
}

func appointmentsTitle(site *siteconfig.Site) string {
	if site != nil && site.Dashboard != nil && site.Dashboard.AppointmentsTitle != "" {
		return site.Dashboard.AppointmentsTitle
	}
	return capitalize(site.AppointmentTerm()) + "s"
}

func statusOptions(tab string) []string {
	switch tab {
	case TabAppointments:
		return domain.AppointmentStatuses
	case TabPatients:
		return []string{domain.PatientActive, domain.PatientInactive}
	default:
		return domain.CallOutcomes
	}
}

// StatCards renders one card per metric.
func StatCards(cards []dashboard.StatCard) g.Node {
	if len(cards) == 0 {
		return nil
	}
	return Div(Class("stat-cards"), g.Map(cards, func(sc dashboard.StatCard) g.Node {
		st := sc.Style
		return Div(Class("card stat "+st.Background+" "+st.Border), g.Attr("data-metric", sc.Key),
			P(Class("stat-title"), g.Text(sc.Title)),
			P(Class("stat-value "+st.Text), g.Text(sc.Value)),
			P(Class("stat-change trend-"+sc.Trend),
				g.Text(changeText(sc.Change)),
				g.If(sc.ChangeLabel != "", Span(g.Text(" "+sc.ChangeLabel))),
			),
		)
	}))
}

func changeText(change float64) string {
	if change > 0 {
		return fmt.Sprintf("+%.1f%%", change)
	}
	return fmt.Sprintf("%.1f%%", change)
}

// BarChart renders the first series of chart as CSS bars scaled to its maximum.
func BarChart(title string, chart dashboard.ChartData) g.Node {
	if len(chart.Data) == 0 || len(chart.Labels) == 0 {
		return nil
	}
	series := chart.Data[0]
	peak := 0.0
	for _, v := range series.Values {
		peak = max(peak, v)
	}
	bars := make([]g.Node, 0, len(series.Values))
	for i, v := range series.Values {
		label := ""
		if i < len(chart.Labels) {
			label = chart.Labels[i]
		}
		pct := 0.0
		if peak > 0 {
			pct = v / peak * 100
		}
		bars = append(bars, Div(Class("bar"),
			g.Attr("title", label+": "+humanize.Commaf(v)),
			g.Attr("style", fmt.Sprintf("height:%.0f%%;background:%s", pct, series.Color)),
		))
	}
	return Div(Class("card chart chart-"+chart.Type),
		H3(g.Text(title)),
		Div(Class("bars"), g.Group(bars)),
	)
}

// OutcomeChart renders the outcome breakdown as a legend with shares.
func OutcomeChart(pie dashboard.PieChartData) g.Node {
	if len(pie.Values) == 0 {
		return nil
	}
	total := 0.0
	for _, v := range pie.Values {
		total += v
	}
	rows := make([]g.Node, 0, len(pie.Values))
	for i, v := range pie.Values {
		if i >= len(pie.Labels) {
			break
		}
		color := dashboard.StyleFor(dashboard.DefaultColor).Hex
		if i < len(pie.Colors) {
			color = pie.Colors[i]
		}
		share := 0.0
		if total > 0 {
			share = v / total * 100
		}
		rows = append(rows, Li(
			Span(Class("swatch"), g.Attr("style", "background:"+color)),
			g.Text(fmt.Sprintf("%s %.0f%%", capitalize(pie.Labels[i]), share)),
		))
	}
	return Div(Class("card chart chart-"+pie.Type),
		H3(g.Text("Call outcomes")),
		Ul(Class("legend"), g.Group(rows)),
	)
}

// CallLogTable renders call records in the order given.
func CallLogTable(calls []domain.CallLog, now time.Time) g.Node {
	if len(calls) == 0 {
		return emptyState("No records found")
	}
	return Table(Class("records calls"),
		THead(Tr(Th(g.Text("Caller")), Th(g.Text("Phone")), Th(g.Text("When")), Th(g.Text("Duration")),
			Th(g.Text("Outcome")), Th(g.Text("Summary")))),
		TBody(g.Map(calls, func(cl domain.CallLog) g.Node {
			return Tr(
				Td(g.Text(cl.Caller)),
				Td(g.Text(cl.Phone)),
				Td(g.Attr("title", cl.StartedAt.Format(time.RFC1123)), g.Text(humanize.RelTime(cl.StartedAt, now, "ago", "from now"))),
				Td(g.Text(dashboard.FormatDuration(cl.DurationSec))),
				Td(statusBadge(cl.Outcome)),
				Td(g.Text(cl.Summary)),
			)
		})),
	)
}

// AppointmentTable renders bookings using the site vocabulary.
func AppointmentTable(site *siteconfig.Site, appts []domain.Appointment) g.Node {
	if len(appts) == 0 {
		return emptyState("No " + site.AppointmentTerm() + "s found")
	}
	return Table(Class("records appointments"),
		THead(Tr(Th(g.Text(capitalize(site.CustomerTerm()))), Th(g.Text("Service")), Th(g.Text("Date")),
			Th(g.Text("Time")), Th(g.Text("Duration")), Th(g.Text("Status")))),
		TBody(g.Map(appts, func(a domain.Appointment) g.Node {
			return Tr(g.Attr("data-id", a.ID),
				Td(g.Text(a.PatientName), g.If(a.Email != "", Div(Class("muted"), g.Text(a.Email)))),
				Td(g.Text(a.Service)),
				Td(g.Text(a.Date)),
				Td(g.Text(a.Time)),
				Td(g.Text(strconv.Itoa(a.DurationMin)+" min")),
				Td(statusBadge(a.Status)),
			)
		})),
	)
}

// PatientTable renders customer records using the site vocabulary.
func PatientTable(site *siteconfig.Site, patients []domain.Patient) g.Node {
	if len(patients) == 0 {
		return emptyState("No " + site.CustomerTermPlural() + " found")
	}
	return Table(Class("records patients"),
		THead(Tr(Th(g.Text("Name")), Th(g.Text("Contact")), Th(g.Text("Last visit")),
			Th(g.Text("Visits")), Th(g.Text("Status")))),
		TBody(g.Map(patients, func(p domain.Patient) g.Node {
			return Tr(g.Attr("data-id", p.ID),
				Td(g.Text(p.Name), g.If(p.Condition != "", Div(Class("muted"), g.Text(p.Condition)))),
				Td(g.Text(p.Email), Div(Class("muted"), g.Text(p.Phone))),
				Td(g.Text(p.LastVisit)),
				Td(g.Text(humanize.Comma(int64(p.Visits)))),
				Td(statusBadge(p.Status)),
			)
		})),
	)
}

func statusBadge(status string) g.Node {
	st := dashboard.StyleFor(dashboard.StatusColor(status))
	return Span(Class("badge "+st.Text+" "+st.Background), g.Text(capitalize(status)))
}

func emptyState(msg string) g.Node {
	return Div(Class("empty-state"), P(g.Text(msg)))
}

// FilterBar renders the search, status and date controls for tab.
func FilterBar(tab string, q listing.Query, statuses []string) g.Node {
	status := q.Status
	if status == "" {
		status = listing.StatusAll
	}
	options := []g.Node{Option(Value(listing.StatusAll), g.Text("All"), g.If(status == listing.StatusAll, Selected()))}
	for _, s := range statuses {
		options = append(options, Option(Value(s), g.Text(capitalize(s)), g.If(status == s, Selected())))
	}
	return g.El("form", Class("filters"), Method("get"), Action("/dashboard"),
		Input(Type("hidden"), Name("tab"), Value(tab)),
		Input(Type("search"), Name("q"), Value(q.Search), Placeholder("Search")),
		Select(Name("status"), g.Group(options)),
		g.If(tab != TabPatients, Input(Type("date"), Name("date"), Value(q.Date))),
		Button(Type("submit"), Class("btn"), g.Text("Filter")),
	)
}

// Pager renders previous and next links that keep the active filters.
func Pager(tab string, q listing.Query, page, total int) g.Node {
	if total <= 1 {
		return nil
	}
	link := func(p int, label string, enabled bool) g.Node {
		if !enabled {
			return Span(Class("btn btn-disabled"), g.Attr("aria-disabled", "true"), g.Text(label))
		}
		return A(Class("btn"), Href(pageURL(tab, q, p)), g.Text(label))
	}
	return Nav(Class("pager"), g.Attr("aria-label", "Pagination"),
		link(page-1, "Previous", page > 1),
		Span(Class("page-info"), g.Textf("Page %d of %d", page, total)),
		link(page+1, "Next", page < total),
	)
}

func pageURL(tab string, q listing.Query, page int) string {
	v := url.Values{}
	v.Set("tab", tab)
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	if q.Status != "" && q.Status != listing.StatusAll {
		v.Set("status", q.Status)
	}
	if q.Date != "" {
		v.Set("date", q.Date)
	}
	if q.PageSize > 0 && q.PageSize != listing.DefaultPageSize {
		v.Set("page_size", strconv.Itoa(q.PageSize))
	}
	v.Set("page", strconv.Itoa(page))
	return "/dashboard?" + v.Encode()
}

func capitalize(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
