package model

import "strings"

// Diagnosis sources.
const (
	SourceOnDevice = "on-device"
	SourceRemote   = "remote"
)

// StatusEscalated is the service status that moves a session into the
// escalated stage regardless of which call produced it.
const StatusEscalated = "ESCALATED"

// Prediction is the output of a local classifier: an intent label and the
// trust level of the rule that fired. It lives for one diagnosis attempt only.
type Prediction struct {
	Intent     string
	Confidence float64
}

// CatalogEntry is one canned diagnosis in the response pack, keyed by intent.
type CatalogEntry struct {
	Intent    string   `json:"intent"`
	Diagnosis string   `json:"diagnosis"`
	Actions   []string `json:"actions"`
}

// ResponsePack is the on-device response catalog: a version tag plus an
// ordered list of entries. Unknown keys in the source document are ignored.
type ResponsePack struct {
	Version string         `json:"version"`
	Intents []CatalogEntry `json:"intents"`
}

// Lookup returns the entry whose intent matches case-insensitively, or nil.
func (p *ResponsePack) Lookup(intent string) *CatalogEntry {
	for i := range p.Intents {
		if strings.EqualFold(p.Intents[i].Intent, intent) {
			return &p.Intents[i]
		}
	}
	return nil
}

// Diagnosis is the single "current result" a workflow session holds. It is
// replaced wholesale on every successful diagnose/retry/escalate call, never
// merged field by field.
type Diagnosis struct {
	Intent        string   `json:"intent"`
	Confidence    float64  `json:"confidence"`
	Message       string   `json:"message"`
	Actions       []string `json:"actions"`
	Source        string   `json:"-"`
	TicketID      string   `json:"escalationTicketId"`
	Status        string   `json:"status"`
	CorrelationID string   `json:"correlationId"`
}

// Escalated reports whether the service marked this diagnosis as handed off.
func (d *Diagnosis) Escalated() bool {
	return strings.EqualFold(d.Status, StatusEscalated)
}

// ChatRequest is the wire shape shared by the chat and escalate calls.
type ChatRequest struct {
	Query                 string            `json:"query"`
	Platform              string            `json:"platform"`
	UserID                string            `json:"userId"`
	AuthProtocol          string            `json:"authProtocol,omitempty"`
	DeviceMetadata        map[string]string `json:"deviceMetadata"`
	TroubleshootingFailed bool              `json:"troubleshootingFailed"`
	RetryAttempt          bool              `json:"retryAttempt"`
	PreviousDiagnosis     string            `json:"previousDiagnosis,omitempty"`
	AttemptedActions      []string          `json:"attemptedActions,omitempty"`
	AttemptCount          int               `json:"attemptCount,omitempty"`
	CorrelationID         string            `json:"correlationId,omitempty"`
}

// LogAnalysis is the result of the auxiliary log upload call.
type LogAnalysis struct {
	RootCause      string   `json:"rootCause"`
	FixAction      string   `json:"fixAction"`
	Severity       string   `json:"severity"`
	Confidence     float64  `json:"confidence"`
	MatchedSignals []string `json:"matchedSignals"`
	CorrelationID  string   `json:"correlationId"`
}

// IncidentTimeline is the read-only incident history joined by correlation id.
type IncidentTimeline struct {
	CorrelationID string              `json:"correlationId"`
	Total         int                 `json:"total"`
	Events        []map[string]string `json:"events"`
}

// TimelineFilter narrows the unscoped incident query.
type TimelineFilter struct {
	Platform  string
	EventType string
	Size      int
}

// ComponentStatus describes the health of one backing component.
type ComponentStatus struct {
	Status string `json:"status"`
	URL    string `json:"url,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// ComponentStatusReport maps component names to their health.
type ComponentStatusReport struct {
	Components map[string]ComponentStatus `json:"components"`
}
