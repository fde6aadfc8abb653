// Package lab relays OCR-extracted lab report text to the analysis
// workflow and normalizes its loosely-shaped answer.
package lab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/medilens/patient-portal/internal/session"
	"github.com/medilens/patient-portal/internal/webhook"
	"github.com/medilens/patient-portal/pkg/logging"
)

const offlineAnalysis = "### Analysis (Offline Mode)\n\n**Note:** The lab analysis server is currently unreachable.\n\n**Recommendation:** Please show this report to a specialist for accurate interpretation."

// analysisKeys is the priority order for locating the analysis text in
// the workflow response.
var analysisKeys = []string{"analysis", "response", "output", "text", "message"}

// Result is the normalized lab analysis outcome.
type Result struct {
	Status          string `json:"status"`
	Analysis        string `json:"analysis"`
	Recommendations string `json:"recommendations,omitempty"`
	RawPayload      any    `json:"raw_payload"`
}

// Service relays lab report text to the analysis workflow.
type Service struct {
	client   *webhook.Client
	sessions *session.Manager
	url      string
	logger   *logging.Logger
}

// NewService creates the lab relay service.
func NewService(client *webhook.Client, sessions *session.Manager, url string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		client:   client,
		sessions: sessions,
		url:      url,
		logger:   logger.Component("lab"),
	}
}

// Analyze submits the extracted report text and returns the normalized
// analysis. A disabled or failing workflow yields the canned offline
// result; a timeout propagates as an error because the lab flow has an
// explicit error-display slot.
func (s *Service) Analyze(ctx context.Context, extractedText string) (*Result, error) {
	sessionID := s.sessions.Token()

	// The workflow versions disagree on which field they read, so the
	// text rides under all three names.
	payload := map[string]any{
		"sessionId":      sessionID,
		"type":           "lab_report_analysis",
		"extracted_data": extractedText,
		"text":           extractedText,
		"input":          extractedText,
	}

	s.logger.Info("sending lab report", "session_id", sessionID, "chars", len(extractedText))

	// Exactly one attempt: lab analysis is slow and duplicate requests
	// double-bill the workflow's AI step.
	body, err := s.client.PostJSON(ctx, "lab", s.url, payload, webhook.WithMaxRetries(0))
	if err != nil {
		if errors.Is(err, webhook.ErrServiceDisabled) || webhook.IsServerError(err) {
			s.logger.Warn("lab workflow unreachable, serving offline analysis", "error", err)
			return &Result{
				Status:          "success",
				Analysis:        offlineAnalysis,
				Recommendations: "Consult a specialist directly.",
				RawPayload:      map[string]any{"offline": true},
			}, nil
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.New("lab: analysis timed out, the document might be too complex or the server is busy")
		}
		return nil, fmt.Errorf("lab: webhook call failed: %w", err)
	}

	var raw map[string]any
	if jsonErr := json.Unmarshal(body, &raw); jsonErr != nil || raw == nil {
		raw = map[string]any{"analysis": string(body)}
	}

	result := &Result{
		Status:     "success",
		RawPayload: raw,
	}
	if status, ok := raw["status"].(string); ok && status != "" {
		result.Status = status
	}
	for _, key := range analysisKeys {
		if s, ok := raw[key].(string); ok && s != "" {
			result.Analysis = s
			break
		}
	}
	if result.Analysis == "" {
		encoded, _ := json.Marshal(raw)
		result.Analysis = string(encoded)
	}
	if rec, ok := raw["recommendations"].(string); ok {
		result.Recommendations = rec
	}
	return result, nil
}
