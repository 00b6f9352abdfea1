// Package workflow owns the diagnosis remediation lifecycle: the stage
// machine, the guard logic in front of every transition, and the choice
// between the on-device coordinator and the remote diagnosis service.
package workflow

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/aegis-support-poc/client/internal/diagnosis/hybrid"
	"github.com/aegis-support-poc/client/internal/diagnosis/model"
	errx "github.com/aegis-support-poc/client/internal/core/error"
	logx "github.com/aegis-support-poc/client/pkg/logger"
	"github.com/google/uuid"
)

// DiagnoseMode selects the diagnosis path for one Diagnose command.
type DiagnoseMode int

const (
	ModeRemote DiagnoseMode = iota
	ModeOnDevice
)

// User-facing guard messages.
const (
	msgBlankQuery       = "Please describe the issue before requesting a diagnosis"
	msgNoDiagnosisRetry = "Run Diagnose first to generate an initial resolution"
	msgNoActionTried    = "Try at least one suggested action before retry"
	msgRetryFirst       = "Use Retry once before escalation"
	msgNothingToResolve = "No active diagnosis to resolve"
	msgSessionClosed    = "This session has ended; start a new one"
	msgSessionTerminal  = "This incident is closed; edit the query to start over"
	msgCallInFlight     = "A diagnosis call is already in flight"
	msgActionOutOfRange = "Unknown checklist action"
	msgLowConfidence    = "On-device confidence was below the threshold; retry with the remote service"
)

// Session is the single logical owner of one WorkflowState. All commands are
// serialized through its mutex: guards run synchronously under the lock, the
// network call happens outside it, and the completion is applied exactly once
// unless the generation moved on (query edited or session closed) in the
// meantime.
type Session struct {
	mu     sync.Mutex
	state  WorkflowState
	gen    uint64
	closed bool

	svc         model.DiagnosisService
	coordinator *hybrid.Coordinator
	cfg         model.SessionConfig
	deviceMeta  map[string]string
}

func NewSession(svc model.DiagnosisService, coordinator *hybrid.Coordinator, cfg model.SessionConfig, deviceMeta map[string]string) *Session {
	return &Session{
		svc:         svc,
		coordinator: coordinator,
		cfg:         cfg,
		deviceMeta:  deviceMeta,
		state: WorkflowState{
			Stage:         StageDraft,
			CorrelationID: uuid.NewString(),
		},
	}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() WorkflowState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.snapshot()
}

// Close tears the session down. Outstanding call results are discarded on
// arrival instead of mutating a dead state.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.gen++
	s.state.Diagnosing = false
	s.state.Retrying = false
	s.state.Escalating = false
}

// EditQuery replaces the query and resets the remediation cycle: diagnosis,
// checklist, error and retry count are cleared, the stage returns to draft
// and a fresh correlation id is issued. Results of calls still in flight for
// the previous query are discarded.
func (s *Session) EditQuery(text string) WorkflowState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.state.Query = text
	s.state.Diagnosis = nil
	s.state.Checklist = nil
	s.state.RetryCount = 0
	s.state.Err = ""
	s.state.Stage = StageDraft
	s.state.CorrelationID = uuid.NewString()
	s.state.Diagnosing = false
	s.state.Retrying = false
	s.state.Escalating = false
	return s.state.snapshot()
}

// Diagnose runs one diagnosis attempt on the selected path. The remote path
// calls DiagnosisService.Chat; the on-device path asks the hybrid
// coordinator and treats "no result" as an instruction to fall back to
// remote, reported as a guard-style error.
func (s *Session) Diagnose(ctx context.Context, mode DiagnoseMode) (WorkflowState, error) {
	s.mu.Lock()
	if err := s.guardMutating(); err != nil {
		defer s.mu.Unlock()
		return s.state.snapshot(), err
	}
	if strings.TrimSpace(s.state.Query) == "" {
		defer s.mu.Unlock()
		err := s.fail(msgBlankQuery)
		return s.state.snapshot(), err
	}
	s.state.Diagnosing = true
	s.state.Err = ""
	gen := s.gen
	query := s.state.Query
	req := s.buildRequest(false, false, nil, 0)
	s.mu.Unlock()

	var diag *model.Diagnosis
	var err error
	if mode == ModeOnDevice {
		diag, err = s.coordinator.Diagnose(ctx, query)
	} else {
		diag, err = s.svc.Chat(ctx, req)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// The stale path must not touch the flag: EditQuery already cleared it,
	// and a newer call of the same kind may have set it again.
	if s.gen != gen {
		return s.state.snapshot(), nil
	}
	s.state.Diagnosing = false
	if err != nil {
		s.state.Err = err.Error()
		return s.state.snapshot(), err
	}
	if diag == nil {
		if mode == ModeOnDevice {
			// Soft failure: confidence gate or catalog unavailable.
			err := s.fail(msgLowConfidence)
			return s.state.snapshot(), err
		}
		err := s.serviceContractErr()
		return s.state.snapshot(), err
	}

	s.applyDiagnosis(diag, StageDiagnosed)
	s.state.RetryCount = 0
	logx.Info().
		Str("component", "workflow").
		Str("correlation_id", s.state.CorrelationID).
		Str("intent", diag.Intent).
		Str("source", diag.Source).
		Str("stage", s.state.Stage.String()).
		Msg("diagnosis applied")
	return s.state.snapshot(), nil
}

// ToggleAction flips one checklist item. Any attempted action moves the
// session into actions-in-progress; clearing them all returns it to
// diagnosed. Rejected in terminal stages.
func (s *Session) ToggleAction(index int) (WorkflowState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		err := s.fail(msgSessionClosed)
		return s.state.snapshot(), err
	}
	if s.state.Stage.Terminal() {
		err := s.fail(msgSessionTerminal)
		return s.state.snapshot(), err
	}
	if index < 0 || index >= len(s.state.Checklist) {
		err := s.fail(msgActionOutOfRange)
		return s.state.snapshot(), err
	}

	s.state.Checklist[index].Done = !s.state.Checklist[index].Done
	if len(s.state.DoneActions()) > 0 {
		s.state.Stage = StageActionsInProgress
	} else {
		s.state.Stage = StageDiagnosed
	}
	s.state.Err = ""
	return s.state.snapshot(), nil
}

// Retry asks the service for a new resolution, carrying the previous
// diagnosis message, the actions already attempted and the incremented
// attempt count. Requires a prior diagnosis and at least one attempted
// action.
func (s *Session) Retry(ctx context.Context) (WorkflowState, error) {
	s.mu.Lock()
	if err := s.guardMutating(); err != nil {
		defer s.mu.Unlock()
		return s.state.snapshot(), err
	}
	if s.state.Stage.Terminal() {
		defer s.mu.Unlock()
		err := s.fail(msgSessionTerminal)
		return s.state.snapshot(), err
	}
	if strings.TrimSpace(s.state.Query) == "" {
		defer s.mu.Unlock()
		err := s.fail(msgBlankQuery)
		return s.state.snapshot(), err
	}
	if s.state.Diagnosis == nil {
		defer s.mu.Unlock()
		err := s.fail(msgNoDiagnosisRetry)
		return s.state.snapshot(), err
	}
	attempted := s.state.DoneActions()
	if len(attempted) == 0 {
		defer s.mu.Unlock()
		err := s.fail(msgNoActionTried)
		return s.state.snapshot(), err
	}

	s.state.Retrying = true
	s.state.Err = ""
	gen := s.gen
	attempt := s.state.RetryCount + 1
	req := s.buildRequest(true, false, attempted, attempt)
	req.PreviousDiagnosis = s.state.Diagnosis.Message
	s.mu.Unlock()

	diag, err := s.svc.Chat(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return s.state.snapshot(), nil
	}
	s.state.Retrying = false
	if err != nil {
		s.state.Err = err.Error()
		return s.state.snapshot(), err
	}
	if diag == nil {
		err := s.serviceContractErr()
		return s.state.snapshot(), err
	}

	s.applyDiagnosis(diag, StageRetryResult)
	s.state.RetryCount = attempt
	logx.Info().
		Str("component", "workflow").
		Str("correlation_id", s.state.CorrelationID).
		Int("attempt", attempt).
		Str("stage", s.state.Stage.String()).
		Msg("retry applied")
	return s.state.snapshot(), nil
}

// Escalate hands the incident to the human ticketing process. Only allowed
// after at least one retry: escalating a first answer the user never acted
// on would waste the support queue.
func (s *Session) Escalate(ctx context.Context) (WorkflowState, error) {
	s.mu.Lock()
	if err := s.guardMutating(); err != nil {
		defer s.mu.Unlock()
		return s.state.snapshot(), err
	}
	if s.state.Stage.Terminal() {
		defer s.mu.Unlock()
		err := s.fail(msgSessionTerminal)
		return s.state.snapshot(), err
	}
	if strings.TrimSpace(s.state.Query) == "" {
		defer s.mu.Unlock()
		err := s.fail(msgBlankQuery)
		return s.state.snapshot(), err
	}
	if s.state.Diagnosis == nil {
		defer s.mu.Unlock()
		err := s.fail(msgNoDiagnosisRetry)
		return s.state.snapshot(), err
	}
	if s.state.RetryCount == 0 && s.state.Stage != StageRetryResult {
		defer s.mu.Unlock()
		err := s.fail(msgRetryFirst)
		return s.state.snapshot(), err
	}

	s.state.Escalating = true
	s.state.Err = ""
	gen := s.gen
	req := s.buildRequest(false, true, nil, 0)
	s.mu.Unlock()

	diag, err := s.svc.Escalate(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return s.state.snapshot(), nil
	}
	s.state.Escalating = false
	if err != nil {
		s.state.Err = err.Error()
		return s.state.snapshot(), err
	}
	if diag == nil {
		err := s.serviceContractErr()
		return s.state.snapshot(), err
	}

	// Stage only moves if the service confirms the handoff; the checklist is
	// kept so the user can still see what was attempted.
	s.state.Diagnosis = diag
	if diag.CorrelationID != "" {
		s.state.CorrelationID = diag.CorrelationID
	}
	if diag.Escalated() {
		s.state.Stage = StageEscalated
	}
	s.state.Err = ""
	logx.Info().
		Str("component", "workflow").
		Str("correlation_id", s.state.CorrelationID).
		Str("ticket_id", diag.TicketID).
		Str("stage", s.state.Stage.String()).
		Msg("escalation applied")
	return s.state.snapshot(), nil
}

// MarkResolved closes the cycle locally. No network call is made.
func (s *Session) MarkResolved() (WorkflowState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		err := s.fail(msgSessionClosed)
		return s.state.snapshot(), err
	}
	if s.state.Stage.Terminal() {
		err := s.fail(msgSessionTerminal)
		return s.state.snapshot(), err
	}
	if s.state.Diagnosis == nil {
		err := s.fail(msgNothingToResolve)
		return s.state.snapshot(), err
	}

	s.state.Stage = StageResolved
	s.state.Err = ""
	return s.state.snapshot(), nil
}

// AnalyzeLog uploads a log file for root-cause analysis. Stateless with
// respect to the lifecycle; may run while a diagnosis call is outstanding.
func (s *Session) AnalyzeLog(ctx context.Context, fileName string, data []byte) (WorkflowState, error) {
	s.mu.Lock()
	if s.closed {
		defer s.mu.Unlock()
		err := s.fail(msgSessionClosed)
		return s.state.snapshot(), err
	}
	if s.state.Uploading {
		defer s.mu.Unlock()
		err := s.fail(msgCallInFlight)
		return s.state.snapshot(), err
	}
	s.state.Uploading = true
	gen := s.gen
	correlationID := s.state.CorrelationID
	s.mu.Unlock()

	analysis, err := s.svc.AnalyzeLog(ctx, fileName, data, correlationID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Uploading = false
	if s.gen != gen {
		return s.state.snapshot(), nil
	}
	if err != nil {
		s.state.Err = err.Error()
		return s.state.snapshot(), err
	}
	s.state.LogAnalysis = analysis
	return s.state.snapshot(), nil
}

// FetchTimeline loads the incident history for this session's correlation id.
func (s *Session) FetchTimeline(ctx context.Context) (WorkflowState, error) {
	s.mu.Lock()
	if s.closed {
		defer s.mu.Unlock()
		err := s.fail(msgSessionClosed)
		return s.state.snapshot(), err
	}
	if s.state.LoadingTimeline {
		defer s.mu.Unlock()
		err := s.fail(msgCallInFlight)
		return s.state.snapshot(), err
	}
	s.state.LoadingTimeline = true
	gen := s.gen
	correlationID := s.state.CorrelationID
	s.mu.Unlock()

	timeline, err := s.svc.IncidentTimeline(ctx, correlationID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LoadingTimeline = false
	if s.gen != gen {
		return s.state.snapshot(), nil
	}
	if err != nil {
		s.state.Err = err.Error()
		return s.state.snapshot(), err
	}
	s.state.Timeline = timeline
	return s.state.snapshot(), nil
}

// LoadComponentStatus polls backing component health. Independent of the
// lifecycle and of the other calls.
func (s *Session) LoadComponentStatus(ctx context.Context) (WorkflowState, error) {
	s.mu.Lock()
	if s.closed {
		defer s.mu.Unlock()
		err := s.fail(msgSessionClosed)
		return s.state.snapshot(), err
	}
	if s.state.LoadingComponents {
		defer s.mu.Unlock()
		err := s.fail(msgCallInFlight)
		return s.state.snapshot(), err
	}
	s.state.LoadingComponents = true
	gen := s.gen
	s.mu.Unlock()

	report, err := s.svc.ComponentStatus(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LoadingComponents = false
	if s.gen != gen {
		return s.state.snapshot(), nil
	}
	if err != nil {
		s.state.Err = err.Error()
		return s.state.snapshot(), err
	}
	s.state.Components = report
	return s.state.snapshot(), nil
}

// guardMutating covers the preconditions shared by Diagnose, Retry and
// Escalate: the session must be open and no other mutating call in flight.
func (s *Session) guardMutating() error {
	if s.closed {
		return s.fail(msgSessionClosed)
	}
	if s.state.Diagnosing || s.state.Retrying || s.state.Escalating {
		return s.fail(msgCallInFlight)
	}
	return nil
}

// fail records a user-facing precondition message without touching anything
// else and returns it as an error.
func (s *Session) fail(msg string) error {
	s.state.Err = msg
	return errx.New(nil, http.StatusPreconditionFailed, msg)
}

// serviceContractErr covers a service call that reported success but carried
// no diagnosis. The current diagnosis and stage are left untouched.
func (s *Session) serviceContractErr() error {
	err := errx.New(nil, http.StatusBadGateway, errx.ServiceErrorMessage)
	s.state.Err = err.Message
	return err
}

// applyDiagnosis replaces the current diagnosis wholesale, rebuilds the
// checklist from its actions and moves to the given stage unless the service
// escalated.
func (s *Session) applyDiagnosis(diag *model.Diagnosis, onSuccess Stage) {
	s.state.Diagnosis = diag
	s.state.Checklist = checklistFrom(diag.Actions)
	if diag.CorrelationID != "" {
		s.state.CorrelationID = diag.CorrelationID
	}
	if diag.Escalated() {
		s.state.Stage = StageEscalated
	} else {
		s.state.Stage = onSuccess
	}
	s.state.Err = ""
}

// buildRequest assembles the wire request under the session lock.
func (s *Session) buildRequest(retry, troubleshootingFailed bool, attempted []string, attemptCount int) *model.ChatRequest {
	return &model.ChatRequest{
		Query:                 s.state.Query,
		Platform:              s.cfg.Platform,
		UserID:                s.cfg.UserID,
		AuthProtocol:          s.cfg.AuthProtocol,
		DeviceMetadata:        s.deviceMeta,
		TroubleshootingFailed: troubleshootingFailed,
		RetryAttempt:          retry,
		AttemptedActions:      attempted,
		AttemptCount:          attemptCount,
		CorrelationID:         s.state.CorrelationID,
	}
}
