package workflow

// Stage identifies where a diagnosis session sits in the remediation
// lifecycle. The topology is fixed: draft → diagnosed → actions-in-progress
// → retry-result → escalated/resolved.
type Stage string

const (
	StageDraft             Stage = "draft"
	StageDiagnosed         Stage = "diagnosed"
	StageActionsInProgress Stage = "actions-in-progress"
	StageRetryResult       Stage = "retry-result"
	StageEscalated         Stage = "escalated"
	StageResolved          Stage = "resolved"
)

// Terminal reports whether the stage ends the remediation cycle. Once a
// session is escalated or resolved, only an EditQuery can restart it.
func (s Stage) Terminal() bool {
	return s == StageEscalated || s == StageResolved
}

// String returns the string representation of the stage.
func (s Stage) String() string {
	return string(s)
}
