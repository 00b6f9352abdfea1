// Package service implements the remote DiagnosisService capability over the
// Aegis support agent HTTP API.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aegis-support-poc/client/internal/diagnosis/model"
	"github.com/aegis-support-poc/client/internal/diagnosis/sanitize"
	errx "github.com/aegis-support-poc/client/internal/core/error"
	logx "github.com/aegis-support-poc/client/pkg/logger"
	"github.com/aegis-support-poc/client/pkg/httpx"
)

const maxErrSnippet = 200

// HTTPService talks to the Aegis agent endpoints. Queries, previous
// diagnoses and device metadata are redacted and the user id pseudonymized
// before anything is written to the wire.
type HTTPService struct {
	client *http.Client
	base   string
}

func NewHTTPService(cfg *httpx.Config) *HTTPService {
	return &HTTPService{
		client: cfg.New(),
		base:   cfg.Base(),
	}
}

var _ model.DiagnosisService = (*HTTPService)(nil)

func (s *HTTPService) Chat(ctx context.Context, req *model.ChatRequest) (*model.Diagnosis, error) {
	return s.postChat(ctx, "/chat", req)
}

func (s *HTTPService) Escalate(ctx context.Context, req *model.ChatRequest) (*model.Diagnosis, error) {
	return s.postChat(ctx, "/escalate", req)
}

func (s *HTTPService) postChat(ctx context.Context, path string, req *model.ChatRequest) (*model.Diagnosis, error) {
	outbound := *req
	outbound.Query = sanitize.Redact(req.Query)
	outbound.PreviousDiagnosis = sanitize.Redact(req.PreviousDiagnosis)
	outbound.DeviceMetadata = sanitize.RedactMap(req.DeviceMetadata)
	outbound.UserID = sanitize.Pseudonymize(req.UserID)

	body, err := json.Marshal(&outbound)
	if err != nil {
		return nil, errx.New(err, http.StatusInternalServerError, errx.SystemErrorMessage)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.base+path, bytes.NewReader(body))
	if err != nil {
		return nil, errx.New(err, http.StatusInternalServerError, errx.SystemErrorMessage)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var diagnosis model.Diagnosis
	if err := s.do(httpReq, &diagnosis); err != nil {
		return nil, err
	}
	diagnosis.Source = model.SourceRemote

	logx.Debug().
		Str("component", "http_service").
		Str("path", path).
		Str("correlation_id", diagnosis.CorrelationID).
		Str("status", diagnosis.Status).
		Msg("diagnosis received")
	return &diagnosis, nil
}

func (s *HTTPService) AnalyzeLog(ctx context.Context, fileName string, data []byte, correlationID string) (*model.LogAnalysis, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("logFile", fileName)
	if err != nil {
		return nil, errx.New(err, http.StatusInternalServerError, errx.SystemErrorMessage)
	}
	if _, err := part.Write(data); err != nil {
		return nil, errx.New(err, http.StatusInternalServerError, errx.SystemErrorMessage)
	}
	if err := writer.WriteField("correlationId", correlationID); err != nil {
		return nil, errx.New(err, http.StatusInternalServerError, errx.SystemErrorMessage)
	}
	if err := writer.Close(); err != nil {
		return nil, errx.New(err, http.StatusInternalServerError, errx.SystemErrorMessage)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.base+"/analyze-logs", &buf)
	if err != nil {
		return nil, errx.New(err, http.StatusInternalServerError, errx.SystemErrorMessage)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	var analysis model.LogAnalysis
	if err := s.do(httpReq, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

func (s *HTTPService) IncidentTimeline(ctx context.Context, correlationID string) (*model.IncidentTimeline, error) {
	var timeline model.IncidentTimeline
	if err := s.get(ctx, "/incidents/"+url.PathEscape(correlationID), &timeline); err != nil {
		return nil, err
	}
	return &timeline, nil
}

func (s *HTTPService) IncidentTimelineByFilters(ctx context.Context, filter model.TimelineFilter) (*model.IncidentTimeline, error) {
	q := url.Values{}
	if filter.Platform != "" {
		q.Set("platform", filter.Platform)
	}
	if filter.EventType != "" {
		q.Set("eventType", filter.EventType)
	}
	size := filter.Size
	if size <= 0 {
		size = 50
	}
	q.Set("size", strconv.Itoa(size))

	var timeline model.IncidentTimeline
	if err := s.get(ctx, "/incidents?"+q.Encode(), &timeline); err != nil {
		return nil, err
	}
	return &timeline, nil
}

func (s *HTTPService) ComponentStatus(ctx context.Context) (*model.ComponentStatusReport, error) {
	var report model.ComponentStatusReport
	if err := s.get(ctx, "/status/components", &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *HTTPService) get(ctx context.Context, path string, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.base+path, nil)
	if err != nil {
		return errx.New(err, http.StatusInternalServerError, errx.SystemErrorMessage)
	}
	return s.do(httpReq, out)
}

func (s *HTTPService) do(req *http.Request, out any) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return errx.New(err, http.StatusBadGateway, errx.ServiceErrorMessage)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrSnippet))
		logx.Warn().
			Str("component", "http_service").
			Str("path", req.URL.Path).
			Int("status", resp.StatusCode).
			Msg("diagnosis service returned an error")
		return errx.WrapHTTP(resp.StatusCode, string(snippet))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errx.New(fmt.Errorf("decode %s: %w", req.URL.Path, err), http.StatusInternalServerError, errx.ServiceErrorMessage)
	}
	return nil
}
