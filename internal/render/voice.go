package render

import (
	"strings"

	"github.com/ashureev/voicesite/internal/siteconfig"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// VoiceWidget renders the call control panel that /static/voice.js drives
// through the /api/voice endpoints. It renders nothing when the agent is off.
func VoiceWidget(site *siteconfig.Site) g.Node {
	if !site.SectionEnabled("voice") {
		return nil
	}
	a := site.Agent
	return g.El("section", ID("voice-widget"), Class("voice-widget"),
		g.Attr("data-agent-id", a.AgentID),
		g.Attr("data-connection-type", a.ConnectionType),
		g.Attr("data-state", "idle"),
		H2(g.Text("Talk to "+a.Name)),
		g.If(a.Greeting != "", P(Class("greeting"), g.Text(a.Greeting))),
		g.If(len(a.Capabilities) > 0, Ul(Class("capabilities"), g.Map(a.Capabilities, func(s string) g.Node {
			return Li(g.Text(s))
		}))),
		g.If(len(a.Languages) > 0, P(Class("muted"), g.Text("Speaks "+strings.Join(a.Languages, ", ")))),
		Div(Class("voice-controls"),
			Button(Type("button"), Class("btn btn-primary"), g.Attr("data-action", "start"), g.Text("Start call")),
			Button(Type("button"), Class("btn"), g.Attr("data-action", "mute"), Disabled(), g.Text("Mute")),
			Button(Type("button"), Class("btn btn-danger"), g.Attr("data-action", "end"), Disabled(), g.Text("End call")),
		),
		P(Class("voice-status"), g.Attr("aria-live", "polite"), g.Text("Ready")),
		Ol(Class("transcript"), g.Attr("aria-live", "polite")),
	)
}
