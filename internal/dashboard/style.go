// Package dashboard maps palette tokens to styles and assembles stat cards
// and chart payloads for the admin dashboard.
package dashboard

import "github.com/ashureev/voicesite/internal/siteconfig"

// Style is the concrete presentation of a palette token.
type Style struct {
	Token      siteconfig.Color `json:"token"`
	Hex        string           `json:"hex"`
	Text       string           `json:"text"`
	Background string           `json:"background"`
	Border     string           `json:"border"`
}

// DefaultColor is used for unknown or empty tokens.
const DefaultColor = siteconfig.ColorGray

var styles = map[siteconfig.Color]Style{
	siteconfig.ColorBlue:   {Hex: "#2563eb", Text: "text-blue-600", Background: "bg-blue-50", Border: "border-blue-200"},
	siteconfig.ColorGreen:  {Hex: "#16a34a", Text: "text-green-600", Background: "bg-green-50", Border: "border-green-200"},
	siteconfig.ColorPurple: {Hex: "#9333ea", Text: "text-purple-600", Background: "bg-purple-50", Border: "border-purple-200"},
	siteconfig.ColorOrange: {Hex: "#ea580c", Text: "text-orange-600", Background: "bg-orange-50", Border: "border-orange-200"},
	siteconfig.ColorRed:    {Hex: "#dc2626", Text: "text-red-600", Background: "bg-red-50", Border: "border-red-200"},
	siteconfig.ColorTeal:   {Hex: "#0d9488", Text: "text-teal-600", Background: "bg-teal-50", Border: "border-teal-200"},
	siteconfig.ColorPink:   {Hex: "#db2777", Text: "text-pink-600", Background: "bg-pink-50", Border: "border-pink-200"},
	siteconfig.ColorGray:   {Hex: "#4b5563", Text: "text-gray-600", Background: "bg-gray-50", Border: "border-gray-200"},
}

// StyleFor returns the style for c, falling back to DefaultColor for unknown tokens.
func StyleFor(c siteconfig.Color) Style {
	s, ok := styles[c]
	if !ok {
		c = DefaultColor
		s = styles[c]
	}
	s.Token = c
	return s
}

// StatusColor maps record statuses and call outcomes to palette tokens.
func StatusColor(status string) siteconfig.Color {
	switch status {
	case "confirmed", "completed", "active":
		return siteconfig.ColorGreen
	case "pending", "voicemail":
		return siteconfig.ColorOrange
	case "cancelled", "missed", "dropped":
		return siteconfig.ColorRed
	case "transferred":
		return siteconfig.ColorBlue
	default:
		return DefaultColor
	}
}
