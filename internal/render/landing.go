package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ashureev/voicesite/internal/siteconfig"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// LandingPage renders the marketing page for site.
func LandingPage(site *siteconfig.Site) g.Node {
	return Layout(site, "",
		Main(ID("content"),
			HeroSection(site),
			VoiceWidget(site),
			FeaturesSection(site),
			HowItWorksSection(site),
			TestimonialsSection(site),
			PricingSection(site),
			RoadmapSection(site),
			FAQSection(site),
			CTASection(site),
		),
	)
}

// HeroSection renders the hero block.
func HeroSection(site *siteconfig.Site) g.Node {
	if !site.SectionEnabled("hero") {
		return nil
	}
	h := site.Hero
	title := h.Title
	if title == "" {
		title = site.Business.Name
	}
	subtitle := h.Subtitle
	if subtitle == "" {
		subtitle = site.Business.Tagline
	}
	return g.El("section", ID("hero"), Class("hero"),
		H1(g.Text(title)),
		g.If(subtitle != "", P(Class("subtitle"), g.Text(subtitle))),
		g.If(h.Primary != nil || h.Secondary != nil, Div(Class("hero-actions"),
			linkButton(h.Primary, "btn btn-primary"),
			linkButton(h.Secondary, "btn btn-secondary"),
		)),
		g.If(len(h.Highlights) > 0, Ul(Class("highlights"), g.Map(h.Highlights, func(s string) g.Node {
			return Li(g.Text(s))
		}))),
	)
}

// FeaturesSection renders the feature cards.
func FeaturesSection(site *siteconfig.Site) g.Node {
	if !site.SectionEnabled("features") {
		return nil
	}
	f := site.Features
	return g.El("section", ID("features"), Class("features"),
		sectionHeader(f.Section),
		Div(Class("grid"), g.Map(f.Items, func(it siteconfig.Feature) g.Node {
			return Div(Class("card feature "+colorClass(it.Color)),
				g.If(it.Icon != "", Span(Class("icon icon-"+it.Icon), g.Attr("aria-hidden", "true"))),
				H3(g.Text(it.Title)),
				g.If(it.Description != "", P(g.Text(it.Description))),
			)
		})),
	)
}

// HowItWorksSection renders the numbered steps.
func HowItWorksSection(site *siteconfig.Site) g.Node {
	if !site.SectionEnabled("howItWorks") {
		return nil
	}
	s := site.HowItWorks
	steps := make([]g.Node, 0, len(s.Steps))
	for i, st := range s.Steps {
		steps = append(steps, Li(Class("step"),
			Span(Class("step-number"), g.Text(strconv.Itoa(i+1))),
			H3(g.Text(st.Title)),
			g.If(st.Description != "", P(g.Text(st.Description))),
		))
	}
	return g.El("section", ID("how-it-works"), Class("how-it-works"),
		sectionHeader(s.Section),
		Ol(Class("steps"), g.Group(steps)),
	)
}

// TestimonialsSection renders the customer quotes.
func TestimonialsSection(site *siteconfig.Site) g.Node {
	if !site.SectionEnabled("testimonials") {
		return nil
	}
	s := site.Testimonials
	return g.El("section", ID("testimonials"), Class("testimonials"),
		sectionHeader(s.Section),
		Div(Class("grid"), g.Map(s.Items, func(t siteconfig.Testimonial) g.Node {
			return g.El("figure", Class("card testimonial"),
				g.If(t.Rating > 0, Div(Class("rating"), g.Attr("aria-label", fmt.Sprintf("%d out of 5", t.Rating)),
					g.Text(strings.Repeat("★", t.Rating)+strings.Repeat("☆", 5-t.Rating)))),
				g.El("blockquote", g.Text(t.Quote)),
				g.El("figcaption",
					Strong(g.Text(t.Author)),
					g.If(t.Role != "", Span(Class("role"), g.Text(t.Role))),
				),
			)
		})),
	)
}

// PricingSection renders the plan tiers.
func PricingSection(site *siteconfig.Site) g.Node {
	if !site.SectionEnabled("pricing") {
		return nil
	}
	s := site.Pricing
	return g.El("section", ID("pricing"), Class("pricing"),
		sectionHeader(s.Section),
		Div(Class("grid"), g.Map(s.Plans, func(p siteconfig.Plan) g.Node {
			cls := "card plan"
			if p.Highlighted {
				cls += " plan-highlighted"
			}
			return Div(Class(cls),
				H3(g.Text(p.Name)),
				P(Class("price"),
					g.Text(FormatPrice(s.Currency, p.Price)),
					g.If(p.Period != "", Span(Class("period"), g.Text("/"+p.Period))),
				),
				g.If(p.Description != "", P(g.Text(p.Description))),
				g.If(len(p.Features) > 0, Ul(g.Map(p.Features, func(f string) g.Node {
					return Li(g.Text(f))
				}))),
				linkButton(p.CTA, "btn btn-primary"),
			)
		})),
	)
}

// FormatPrice renders whole amounts without decimals.
func FormatPrice(currency string, price float64) string {
	if price == 0 {
		return "Free"
	}
	if price == float64(int64(price)) {
		return currency + strconv.FormatInt(int64(price), 10)
	}
	return currency + strconv.FormatFloat(price, 'f', 2, 64)
}

// RoadmapSection renders upcoming work grouped by status badge.
func RoadmapSection(site *siteconfig.Site) g.Node {
	if !site.SectionEnabled("roadmap") {
		return nil
	}
	s := site.Roadmap
	return g.El("section", ID("roadmap"), Class("roadmap"),
		sectionHeader(s.Section),
		Ul(Class("roadmap-items"), g.Map(s.Items, func(it siteconfig.RoadmapItem) g.Node {
			status := it.Status
			if status == "" {
				status = siteconfig.RoadmapPlanned
			}
			return Li(Class("roadmap-item roadmap-"+status),
				Span(Class("badge"), g.Text(strings.ReplaceAll(status, "-", " "))),
				g.If(it.Quarter != "", Span(Class("quarter"), g.Text(it.Quarter))),
				H3(g.Text(it.Title)),
				g.If(it.Description != "", P(g.Text(it.Description))),
			)
		})),
	)
}

// FAQSection renders the questions as disclosure widgets.
func FAQSection(site *siteconfig.Site) g.Node {
	if !site.SectionEnabled("faq") {
		return nil
	}
	s := site.FAQ
	return g.El("section", ID("faq"), Class("faq"),
		sectionHeader(s.Section),
		g.Map(s.Items, func(qa siteconfig.QA) g.Node {
			return g.El("details", Class("faq-item"),
				g.El("summary", g.Text(qa.Question)),
				P(g.Text(qa.Answer)),
			)
		}),
	)
}

// CTASection renders the closing call to action.
func CTASection(site *siteconfig.Site) g.Node {
	if !site.SectionEnabled("cta") {
		return nil
	}
	s := site.CTA
	return g.El("section", ID("cta"), Class("cta"),
		sectionHeader(s.Section),
		linkButton(s.Button, "btn btn-primary btn-large"),
	)
}

func linkButton(l *siteconfig.Link, cls string) g.Node {
	if l == nil {
		return nil
	}
	return A(Href(l.Href), Class(cls), g.Text(l.Label))
}
