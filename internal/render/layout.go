// Package render builds the server-rendered pages from the active site
// configuration. Every section component returns nil when its block is
// absent, empty or disabled, so a disabled section produces no markup.
package render

import (
	"strings"

	"github.com/ashureev/voicesite/internal/dashboard"
	"github.com/ashureev/voicesite/internal/siteconfig"
	g "maragu.dev/gomponents"
	c "maragu.dev/gomponents/components"
	. "maragu.dev/gomponents/html"
)

// Layout wraps body in the document shell.
func Layout(site *siteconfig.Site, title string, body ...g.Node) g.Node {
	name := "Voice Assistant"
	description := ""
	if site != nil {
		name = site.Business.Name
		description = site.Business.Tagline
	}
	if title == "" {
		title = name
	} else {
		title += " | " + name
	}
	primary := dashboard.StyleFor(siteconfig.ColorBlue)
	accent := primary
	if site != nil {
		primary = dashboard.StyleFor(site.Branding.Primary)
		accent = dashboard.StyleFor(site.Branding.Accent)
	}

	return c.HTML5(c.HTML5Props{
		Title:       title,
		Description: description,
		Language:    "en",
		Head: []g.Node{
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			Link(Rel("stylesheet"), Href("/static/site.css")),
			g.El("style", g.Raw(":root{--primary:"+primary.Hex+";--accent:"+accent.Hex+"}")),
			Script(Src("/static/voice.js"), Defer()),
		},
		Body: append([]g.Node{SiteNav(site)}, append(body, SiteFooter(site))...),
	})
}

// SiteNav renders the top navigation with anchors to the enabled sections.
func SiteNav(site *siteconfig.Site) g.Node {
	if site == nil {
		return nil
	}
	links := []struct{ section, href, label string }{
		{"features", "/#features", "Features"},
		{"howItWorks", "/#how-it-works", "How it works"},
		{"pricing", "/#pricing", "Pricing"},
		{"roadmap", "/#roadmap", "Roadmap"},
		{"faq", "/#faq", "FAQ"},
	}
	var items []g.Node
	for _, l := range links {
		if site.SectionEnabled(l.section) {
			items = append(items, Li(A(Href(l.href), g.Text(l.label))))
		}
	}
	if site.SectionEnabled("dashboard") {
		items = append(items, Li(A(Href("/dashboard"), Class("nav-cta"), g.Text("Dashboard"))))
	}

	return Header(Class("site-nav"),
		A(Href("/"), Class("brand"),
			g.If(site.Branding.LogoPath != "", Img(Src(site.Branding.LogoPath), Alt(site.Business.Name), Class("logo"))),
			Span(g.Text(site.Business.Name)),
		),
		g.If(len(items) > 0, Nav(Ul(g.Group(items)))),
	)
}

// SiteFooter renders the footer columns and contact details.
func SiteFooter(site *siteconfig.Site) g.Node {
	if site == nil {
		return nil
	}
	b := site.Business
	var columns []g.Node
	if site.SectionEnabled("footer") {
		columns = g.Map(site.Footer.Columns, func(col siteconfig.FooterColumn) g.Node {
			return Div(Class("footer-column"),
				g.If(col.Title != "", H4(g.Text(col.Title))),
				Ul(g.Map(col.Links, func(l siteconfig.Link) g.Node {
					return Li(A(Href(l.Href), g.Text(l.Label)))
				})),
			)
		})
	}
	copyright := b.Name
	if site.Footer != nil && site.Footer.Copyright != "" {
		copyright = site.Footer.Copyright
	}

	return Footer(Class("site-footer"),
		Div(Class("footer-contact"),
			P(Class("footer-brand"), g.Text(b.Name)),
			g.If(b.Address != "", P(g.Text(b.Address))),
			g.If(b.Phone != "", P(A(Href("tel:"+strings.ReplaceAll(b.Phone, " ", "")), g.Text(b.Phone)))),
			g.If(b.Email != "", P(A(Href("mailto:"+b.Email), g.Text(b.Email)))),
			g.If(b.Hours != "", P(g.Text(b.Hours))),
			g.If(len(b.Socials) > 0, Ul(Class("socials"), g.Map(b.Socials, func(s siteconfig.Social) g.Node {
				return Li(A(Href(s.URL), Rel("noopener"), g.Text(s.Platform)))
			}))),
		),
		g.If(len(columns) > 0, Div(Class("footer-columns"), g.Group(columns))),
		P(Class("copyright"), g.Text(copyright)),
	)
}

// DegradedBanner tells the visitor the page shows generated sample data.
func DegradedBanner(degraded bool, reason string) g.Node {
	if !degraded {
		return nil
	}
	return Div(Class("banner banner-warning"), g.Attr("role", "status"),
		Strong(g.Text("Showing sample data. ")),
		g.If(reason != "", Span(Class("banner-reason"), g.Text("The records backend is unavailable: "+reason))),
	)
}

// sectionHeader renders the shared title and subtitle of a content block.
func sectionHeader(s siteconfig.Section) g.Node {
	if s.Title == "" && s.Subtitle == "" {
		return nil
	}
	return Div(Class("section-header"),
		g.If(s.Title != "", H2(g.Text(s.Title))),
		g.If(s.Subtitle != "", P(Class("subtitle"), g.Text(s.Subtitle))),
	)
}

func colorClass(col siteconfig.Color) string {
	st := dashboard.StyleFor(col)
	return st.Text + " " + st.Background + " " + st.Border
}
