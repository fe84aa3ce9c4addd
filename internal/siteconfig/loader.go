package siteconfig

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed sites/*.yaml
var builtinFS embed.FS

// ErrUnknownSite is returned when a builtin name does not exist.
var ErrUnknownSite = errors.New("unknown site config")

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("palette", func(fl validator.FieldLevel) bool {
			return Color(fl.Field().String()).Valid()
		})
	})
	return validate
}

// Parse decodes, defaults and validates a YAML site configuration.
func Parse(data []byte) (*Site, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var site Site
	if err := dec.Decode(&site); err != nil {
		return nil, fmt.Errorf("decode site config: %w", err)
	}

	site.applyDefaults()

	if err := validatorInstance().Struct(&site); err != nil {
		return nil, fmt.Errorf("validate site config: %w", describe(err))
	}
	return &site, nil
}

// describe flattens validator errors into one readable error.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func (s *Site) applyDefaults() {
	if s.Branding.Primary == "" {
		s.Branding.Primary = ColorBlue
	}
	if s.Branding.Accent == "" {
		s.Branding.Accent = s.Branding.Primary
	}
	if s.Agent.ConnectionType == "" {
		s.Agent.ConnectionType = "webrtc"
	}
	if s.Agent.Name == "" {
		s.Agent.Name = s.Business.Name + " Assistant"
	}
	if s.Pricing != nil && s.Pricing.Currency == "" {
		s.Pricing.Currency = "$"
	}
	if s.Dashboard != nil && s.Dashboard.PageSize == 0 {
		s.Dashboard.PageSize = 10
	}
}

// Builtin loads one of the embedded site configurations.
func Builtin(name string) (*Site, error) {
	data, err := builtinFS.ReadFile(path.Join("sites", name+".yaml"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSite, name)
		}
		return nil, fmt.Errorf("read builtin %s: %w", name, err)
	}
	site, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("builtin %s: %w", name, err)
	}
	return site, nil
}

// BuiltinNames lists the embedded configurations.
func BuiltinNames() []string {
	entries, err := builtinFS.ReadDir("sites")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// LoadFile reads a site configuration from disk.
func LoadFile(p string) (*Site, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read site config %s: %w", p, err)
	}
	site, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return site, nil
}

// Load resolves ref as a YAML file path when it looks like one, otherwise as a builtin name.
func Load(ref string) (*Site, error) {
	if strings.HasSuffix(ref, ".yaml") || strings.HasSuffix(ref, ".yml") || strings.ContainsRune(ref, os.PathSeparator) {
		return LoadFile(ref)
	}
	return Builtin(ref)
}

// Clone returns a deep copy so tests and tenants can diverge without sharing state.
func (s *Site) Clone() *Site {
	data, err := yaml.Marshal(s)
	if err != nil {
		panic("siteconfig: marshal for clone: " + err.Error())
	}
	var c Site
	if err := yaml.Unmarshal(data, &c); err != nil {
		panic("siteconfig: unmarshal for clone: " + err.Error())
	}
	return &c
}

// CustomerTerm returns the singular noun for the people this business serves.
func (s *Site) CustomerTerm() string {
	if s == nil || s.Industry.CustomerTerm == "" {
		return "customer"
	}
	return s.Industry.CustomerTerm
}

// CustomerTermPlural returns the plural noun for the people this business serves.
func (s *Site) CustomerTermPlural() string {
	if s == nil {
		return "customers"
	}
	if s.Industry.CustomerTermPlural != "" {
		return s.Industry.CustomerTermPlural
	}
	return s.CustomerTerm() + "s"
}

// Currency returns the pricing currency symbol, "$" when none is configured.
func (s *Site) Currency() string {
	if s == nil || s.Pricing == nil || s.Pricing.Currency == "" {
		return "$"
	}
	return s.Pricing.Currency
}

// AppointmentTerm returns the noun used for bookings.
func (s *Site) AppointmentTerm() string {
	if s == nil || s.Industry.AppointmentTerm == "" {
		return "appointment"
	}
	return s.Industry.AppointmentTerm
}

// SectionEnabled reports whether the named block is present and switched on.
func (s *Site) SectionEnabled(name string) bool {
	if s == nil {
		return false
	}
	switch name {
	case "hero":
		return s.Hero != nil && s.Hero.IsEnabled()
	case "features":
		return s.Features != nil && s.Features.IsEnabled() && len(s.Features.Items) > 0
	case "howItWorks":
		return s.HowItWorks != nil && s.HowItWorks.IsEnabled() && len(s.HowItWorks.Steps) > 0
	case "testimonials":
		return s.Testimonials != nil && s.Testimonials.IsEnabled() && len(s.Testimonials.Items) > 0
	case "pricing":
		return s.Pricing != nil && s.Pricing.IsEnabled() && len(s.Pricing.Plans) > 0
	case "roadmap":
		return s.Roadmap != nil && s.Roadmap.IsEnabled() && len(s.Roadmap.Items) > 0
	case "faq":
		return s.FAQ != nil && s.FAQ.IsEnabled() && len(s.FAQ.Items) > 0
	case "cta":
		return s.CTA != nil && s.CTA.IsEnabled()
	case "dashboard":
		return s.Dashboard != nil && s.Dashboard.IsEnabled()
	case "footer":
		return s.Footer != nil && len(s.Footer.Columns) > 0
	case "voice":
		return s.Agent.Enabled && s.Agent.AgentID != ""
	default:
		return false
	}
}
