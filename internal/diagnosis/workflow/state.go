package workflow

import "github.com/aegis-support-poc/client/internal/diagnosis/model"

// ActionChecklistItem is one suggested remediation action the user can mark
// as attempted before retrying.
type ActionChecklistItem struct {
	Label string
	Done  bool
}

// WorkflowState is the session's sole mutable aggregate. Commands receive and
// return value snapshots; the Diagnosis pointer is replaced wholesale on every
// successful call and must be treated as immutable.
type WorkflowState struct {
	Stage         Stage
	Query         string
	Diagnosis     *model.Diagnosis
	Checklist     []ActionChecklistItem
	RetryCount    int
	CorrelationID string
	Err           string

	// Auxiliary results, no lifecycle coupling.
	LogAnalysis *model.LogAnalysis
	Timeline    *model.IncidentTimeline
	Components  *model.ComponentStatusReport

	// Per-operation busy flags. Diagnose/Retry/Escalate exclude each other;
	// the auxiliary calls only exclude themselves.
	Diagnosing        bool
	Retrying          bool
	Escalating        bool
	Uploading         bool
	LoadingTimeline   bool
	LoadingComponents bool
}

// Busy reports whether any operation is outstanding on the session.
func (s *WorkflowState) Busy() bool {
	return s.Diagnosing || s.Retrying || s.Escalating ||
		s.Uploading || s.LoadingTimeline || s.LoadingComponents
}

// DoneActions returns the labels of checklist items marked as attempted.
func (s *WorkflowState) DoneActions() []string {
	var done []string
	for _, item := range s.Checklist {
		if item.Done {
			done = append(done, item.Label)
		}
	}
	return done
}

// snapshot copies the state so callers can never mutate the session through
// a returned value.
func (s *WorkflowState) snapshot() WorkflowState {
	out := *s
	out.Checklist = make([]ActionChecklistItem, len(s.Checklist))
	copy(out.Checklist, s.Checklist)
	return out
}

func checklistFrom(actions []string) []ActionChecklistItem {
	items := make([]ActionChecklistItem, 0, len(actions))
	for _, a := range actions {
		items = append(items, ActionChecklistItem{Label: a})
	}
	return items
}
