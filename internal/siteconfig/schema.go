// Package siteconfig defines the site configuration schema that parameterizes
// every page, dashboard label and voice agent setting for one deployment, and
// loads validated instances of it.
package siteconfig

// Color is a token from the fixed branding palette.
type Color string

// Palette tokens.
const (
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorPurple Color = "purple"
	ColorOrange Color = "orange"
	ColorRed    Color = "red"
	ColorTeal   Color = "teal"
	ColorPink   Color = "pink"
	ColorGray   Color = "gray"
)

// Palette lists every valid color token.
var Palette = []Color{ColorBlue, ColorGreen, ColorPurple, ColorOrange, ColorRed, ColorTeal, ColorPink, ColorGray}

// Valid reports whether c is a palette token.
func (c Color) Valid() bool {
	for _, p := range Palette {
		if c == p {
			return true
		}
	}
	return false
}

// Site is the single configuration value for one deployment.
type Site struct {
	Business     Business            `yaml:"business" json:"business"`
	Branding     Branding            `yaml:"branding" json:"branding"`
	Agent        Agent               `yaml:"agent" json:"agent"`
	Industry     Industry            `yaml:"industry" json:"industry"`
	Hero         *Hero               `yaml:"hero,omitempty" json:"hero,omitempty"`
	Features     *FeatureSection     `yaml:"features,omitempty" json:"features,omitempty"`
	HowItWorks   *StepSection        `yaml:"howItWorks,omitempty" json:"howItWorks,omitempty"`
	Testimonials *TestimonialSection `yaml:"testimonials,omitempty" json:"testimonials,omitempty"`
	Pricing      *PricingSection     `yaml:"pricing,omitempty" json:"pricing,omitempty"`
	Roadmap      *RoadmapSection     `yaml:"roadmap,omitempty" json:"roadmap,omitempty"`
	FAQ          *FAQSection         `yaml:"faq,omitempty" json:"faq,omitempty"`
	CTA          *CTASection         `yaml:"cta,omitempty" json:"cta,omitempty"`
	Dashboard    *DashboardSection   `yaml:"dashboard,omitempty" json:"dashboard,omitempty"`
	Footer       *Footer             `yaml:"footer,omitempty" json:"footer,omitempty"`
}

// Business holds identity and contact details.
type Business struct {
	Name    string   `yaml:"name" json:"name" validate:"required"`
	Tagline string   `yaml:"tagline" json:"tagline"`
	Email   string   `yaml:"email" json:"email" validate:"omitempty,email"`
	Phone   string   `yaml:"phone" json:"phone"`
	Address string   `yaml:"address" json:"address"`
	Hours   string   `yaml:"hours" json:"hours"`
	Socials []Social `yaml:"socials" json:"socials" validate:"dive"`
}

// Social is a social network profile link.
type Social struct {
	Platform string `yaml:"platform" json:"platform" validate:"required"`
	URL      string `yaml:"url" json:"url" validate:"required,url"`
}

// Branding holds the color tokens and logo.
type Branding struct {
	Primary  Color  `yaml:"primary" json:"primary" validate:"palette"`
	Accent   Color  `yaml:"accent" json:"accent" validate:"palette"`
	LogoPath string `yaml:"logo" json:"logo"`
}

// Agent describes the voice agent persona and its connection settings.
type Agent struct {
	Enabled        bool     `yaml:"enabled" json:"enabled"`
	AgentID        string   `yaml:"agentId" json:"agentId" validate:"required_if=Enabled true"`
	Name           string   `yaml:"name" json:"name"`
	Persona        string   `yaml:"persona" json:"persona"`
	Greeting       string   `yaml:"greeting" json:"greeting"`
	Capabilities   []string `yaml:"capabilities" json:"capabilities"`
	Languages      []string `yaml:"languages" json:"languages"`
	ConnectionType string   `yaml:"connectionType" json:"connectionType" validate:"oneof=webrtc websocket"`
}

// Industry carries the vocabulary that components must use instead of hardcoded nouns.
type Industry struct {
	Name               string   `yaml:"name" json:"name"`
	CustomerTerm       string   `yaml:"customerTerm" json:"customerTerm"`
	CustomerTermPlural string   `yaml:"customerTermPlural" json:"customerTermPlural"`
	AppointmentTerm    string   `yaml:"appointmentTerm" json:"appointmentTerm"`
	Services           []string `yaml:"services" json:"services"`
}

// Link is a labelled call-to-action or navigation target.
type Link struct {
	Label string `yaml:"label" json:"label" validate:"required"`
	Href  string `yaml:"href" json:"href" validate:"required"`
}

// Section carries the fields every optional content block shares.
// A nil Enabled means the block is shown when present.
type Section struct {
	Enabled  *bool  `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Title    string `yaml:"title" json:"title"`
	Subtitle string `yaml:"subtitle" json:"subtitle"`
}

// IsEnabled reports whether the block should render.
func (s Section) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Hero is the top-of-page block.
type Hero struct {
	Section    `yaml:",inline"`
	Primary    *Link    `yaml:"primaryCta,omitempty" json:"primaryCta,omitempty"`
	Secondary  *Link    `yaml:"secondaryCta,omitempty" json:"secondaryCta,omitempty"`
	Highlights []string `yaml:"highlights" json:"highlights"`
}

// FeatureSection lists product capabilities.
type FeatureSection struct {
	Section `yaml:",inline"`
	Items   []Feature `yaml:"items" json:"items" validate:"dive"`
}

// Feature is one capability card.
type Feature struct {
	Icon        string `yaml:"icon" json:"icon"`
	Title       string `yaml:"title" json:"title" validate:"required"`
	Description string `yaml:"description" json:"description"`
	Color       Color  `yaml:"color" json:"color" validate:"omitempty,palette"`
}

// StepSection is a numbered how-it-works list.
type StepSection struct {
	Section `yaml:",inline"`
	Steps   []Step `yaml:"steps" json:"steps" validate:"dive"`
}

// Step is one how-it-works entry.
type Step struct {
	Title       string `yaml:"title" json:"title" validate:"required"`
	Description string `yaml:"description" json:"description"`
}

// TestimonialSection lists customer quotes.
type TestimonialSection struct {
	Section `yaml:",inline"`
	Items   []Testimonial `yaml:"items" json:"items" validate:"dive"`
}

// Testimonial is a single quote.
type Testimonial struct {
	Quote  string `yaml:"quote" json:"quote" validate:"required"`
	Author string `yaml:"author" json:"author" validate:"required"`
	Role   string `yaml:"role" json:"role"`
	Rating int    `yaml:"rating" json:"rating" validate:"gte=0,lte=5"`
}

// PricingSection lists plans.
type PricingSection struct {
	Section  `yaml:",inline"`
	Currency string `yaml:"currency" json:"currency"`
	Plans    []Plan `yaml:"plans" json:"plans" validate:"dive"`
}

// Plan is one pricing tier.
type Plan struct {
	Name        string   `yaml:"name" json:"name" validate:"required"`
	Price       float64  `yaml:"price" json:"price" validate:"gte=0"`
	Period      string   `yaml:"period" json:"period"`
	Description string   `yaml:"description" json:"description"`
	Features    []string `yaml:"features" json:"features"`
	Highlighted bool     `yaml:"highlighted" json:"highlighted"`
	CTA         *Link    `yaml:"cta,omitempty" json:"cta,omitempty"`
}

// Roadmap item statuses.
const (
	RoadmapPlanned    = "planned"
	RoadmapInProgress = "in-progress"
	RoadmapShipped    = "shipped"
)

// RoadmapSection lists upcoming work.
type RoadmapSection struct {
	Section `yaml:",inline"`
	Items   []RoadmapItem `yaml:"items" json:"items" validate:"dive"`
}

// RoadmapItem is one roadmap entry.
type RoadmapItem struct {
	Title       string `yaml:"title" json:"title" validate:"required"`
	Description string `yaml:"description" json:"description"`
	Status      string `yaml:"status" json:"status" validate:"omitempty,oneof=planned in-progress shipped"`
	Quarter     string `yaml:"quarter" json:"quarter"`
}

// FAQSection lists questions and answers.
type FAQSection struct {
	Section `yaml:",inline"`
	Items   []QA `yaml:"items" json:"items" validate:"dive"`
}

// QA is one FAQ entry.
type QA struct {
	Question string `yaml:"question" json:"question" validate:"required"`
	Answer   string `yaml:"answer" json:"answer" validate:"required"`
}

// CTASection is the closing call to action.
type CTASection struct {
	Section `yaml:",inline"`
	Button  *Link `yaml:"button,omitempty" json:"button,omitempty"`
}

// Metric formats.
const (
	FormatCount    = "count"
	FormatPercent  = "percent"
	FormatCurrency = "currency"
	FormatDuration = "duration"
)

// DashboardSection maps dashboard metrics to display labels.
type DashboardSection struct {
	Section           `yaml:",inline"`
	Metrics           []Metric `yaml:"metrics" json:"metrics" validate:"dive"`
	CallLogTitle      string   `yaml:"callLogTitle" json:"callLogTitle"`
	AppointmentsTitle string   `yaml:"appointmentsTitle" json:"appointmentsTitle"`
	PageSize          int      `yaml:"pageSize" json:"pageSize" validate:"gte=0,lte=200"`
}

// Metric is one dashboard stat card definition.
type Metric struct {
	Key         string `yaml:"key" json:"key" validate:"required"`
	Label       string `yaml:"label" json:"label" validate:"required"`
	Color       Color  `yaml:"color" json:"color" validate:"omitempty,palette"`
	Format      string `yaml:"format" json:"format" validate:"omitempty,oneof=count percent currency duration"`
	Icon        string `yaml:"icon" json:"icon"`
	ChangeLabel string `yaml:"changeLabel" json:"changeLabel"`
}

// Footer holds link columns and legal text.
type Footer struct {
	Columns   []FooterColumn `yaml:"columns" json:"columns" validate:"dive"`
	Copyright string         `yaml:"copyright" json:"copyright"`
}

// FooterColumn is a titled group of links.
type FooterColumn struct {
	Title string `yaml:"title" json:"title"`
	Links []Link `yaml:"links" json:"links" validate:"dive"`
}
