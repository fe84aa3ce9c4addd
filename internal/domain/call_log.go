package domain

import "time"

// Call outcomes.
const (
	OutcomeCompleted   = "completed"
	OutcomeMissed      = "missed"
	OutcomeVoicemail   = "voicemail"
	OutcomeTransferred = "transferred"
	OutcomeDropped     = "dropped"
)

// CallOutcomes lists every call outcome.
var CallOutcomes = []string{OutcomeCompleted, OutcomeMissed, OutcomeVoicemail, OutcomeTransferred, OutcomeDropped}

// CallLog is one handled call.
type CallLog struct {
	ID          string    `json:"id"`
	Caller      string    `json:"caller"`
	Phone       string    `json:"phone"`
	StartedAt   time.Time `json:"started_at"`
	DurationSec int       `json:"duration_sec"`
	Outcome     string    `json:"outcome"`
	Sentiment   string    `json:"sentiment"`
	Intent      string    `json:"intent"`
	Summary     string    `json:"summary"`
	AgentID     string    `json:"agent_id,omitempty"`
}

// Date returns the call day in DateLayout.
func (c *CallLog) Date() string {
	return c.StartedAt.Format(DateLayout)
}
