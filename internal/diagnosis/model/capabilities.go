package model

import "context"

// LocalClassifier maps free text to an intent prediction, or nil when the
// input is too short or no rule fires. Implementations must be pure.
type LocalClassifier interface {
	Classify(query string) *Prediction
}

// ResponseCatalog is the read-only canned-diagnosis lookup.
type ResponseCatalog interface {
	// Lookup returns the entry for the intent (case-insensitive), nil when
	// the catalog has no entry, or an error when the catalog itself cannot
	// be loaded. A failed load is sticky until Reload is called.
	Lookup(ctx context.Context, intent string) (*CatalogEntry, error)

	// Reload drops the memoized pack so the next Lookup reads the source again.
	Reload(ctx context.Context) error
}

// DiagnosisService is the remote diagnosis capability. Transport, retries and
// timeouts belong to the implementation; the workflow engine only sees a
// result or an error. Chat and Escalate return a non-nil Diagnosis whenever
// the error is nil; the engine treats a nil/nil response as a service failure.
type DiagnosisService interface {
	Chat(ctx context.Context, req *ChatRequest) (*Diagnosis, error)
	Escalate(ctx context.Context, req *ChatRequest) (*Diagnosis, error)
	AnalyzeLog(ctx context.Context, fileName string, data []byte, correlationID string) (*LogAnalysis, error)
	IncidentTimeline(ctx context.Context, correlationID string) (*IncidentTimeline, error)
	IncidentTimelineByFilters(ctx context.Context, filter TimelineFilter) (*IncidentTimeline, error)
	ComponentStatus(ctx context.Context) (*ComponentStatusReport, error)
}
