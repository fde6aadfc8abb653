package triage

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/medilens/patient-portal/internal/session"
	"github.com/medilens/patient-portal/internal/webhook"
	"github.com/medilens/patient-portal/pkg/logging"
)

// medicalKeys is the vocabulary that marks a payload as structured
// guidance rather than free text.
var medicalKeys = []string{
	"diagnosis", "severity", "firstAid", "emergencyReason",
	"homeRemedies", "herbalTreatments", "diet", "yoga", "exercise", "lifestyleChanges",
	"General wellness tips", "generalWellness",
}

// bestTextKeys is the priority order for salvaging a displayable string
// out of an unstructured payload.
var bestTextKeys = []string{
	"response", "output", "text", "message", "answer", "content", "result", "advice", "summary",
}

const noAdvicePlaceholder = "Symptoms received. No specific advice returned."

// Service runs the symptom triage pipeline: payload shaping, the
// resilient webhook call, normalization, and classification. Every
// failure path resolves to a renderable SymptomResponse; the UI always
// has something to show.
type Service struct {
	client   *webhook.Client
	sessions *session.Manager
	url      string
	logger   *logging.Logger
}

// NewService creates the triage service.
func NewService(client *webhook.Client, sessions *session.Manager, url string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		client:   client,
		sessions: sessions,
		url:      url,
		logger:   logger.Component("triage"),
	}
}

// Analyze submits the visitor's symptom description to the triage
// workflow and reduces whatever comes back to a SymptomResponse.
func (s *Service) Analyze(ctx context.Context, inputType InputType, data string) *SymptomResponse {
	sessionID := s.sessions.Token()

	payload := map[string]any{"sessionId": sessionID}
	switch inputType {
	case InputVoice:
		payload["audioData"] = data
	case InputImage:
		payload["imageData"] = data
	default:
		payload["text"] = data
	}

	s.logger.Info("sending triage request", "session_id", sessionID, "input_type", inputType)

	body, err := s.client.PostJSON(ctx, "triage", s.url, payload)
	if err != nil {
		return s.failureResponse(inputType, err)
	}

	var rawResult any
	if len(body) > 0 {
		if jsonErr := json.Unmarshal(body, &rawResult); jsonErr != nil {
			// Some workflows answer with bare text.
			rawResult = map[string]any{"response": string(body)}
		}
	} else {
		rawResult = map[string]any{}
	}

	cleanData := Normalize(rawResult)

	guidanceText := ""
	if hasStructuredData(cleanData) {
		encoded, encErr := json.Marshal(cleanData)
		if encErr == nil {
			guidanceText = string(encoded)
		}
	}
	if guidanceText == "" {
		guidanceText = findBestResponseText(cleanData, rawResult)
	}
	if guidanceText == "" {
		guidanceText = noAdvicePlaceholder
	}

	verdict := Classify(ctx, cleanData)

	s.logger.Info("triage analysis complete",
		"session_id", sessionID,
		"triage_level", verdict.TriageLevel,
		"specialty", verdict.SpecialtyRecommendation,
	)

	return &SymptomResponse{
		SymptomSummary:          verdict.Summary,
		InputType:               inputType,
		Guidance:                guidanceText,
		TriageLevel:             verdict.TriageLevel,
		SpecialtyRecommendation: verdict.SpecialtyRecommendation,
		RawPayload:              rawResult,
	}
}

func (s *Service) failureResponse(inputType InputType, err error) *SymptomResponse {
	if errors.Is(err, webhook.ErrServiceDisabled) {
		s.logger.Warn("triage workflow inactive, serving offline analysis")
		return s.offlineResponse(inputType)
	}

	msg := err.Error()
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		msg = "Request timed out. The AI analysis is taking longer than expected. Please try again."
	case webhook.IsServerError(err):
		msg = "The analysis server is having trouble right now. Please try again shortly."
	}

	s.logger.Error("triage webhook failed", "error", err)
	return &SymptomResponse{
		SymptomSummary:          "Connection Failed",
		InputType:               inputType,
		Guidance:                "Error: " + msg,
		TriageLevel:             LevelRoutine,
		SpecialtyRecommendation: "Support",
		RawPayload:              map[string]any{},
	}
}

// offlineResponse is the canned analysis served when the workflow is
// disabled, so the visitor flow is never blocked.
func (s *Service) offlineResponse(inputType InputType) *SymptomResponse {
	guidance, _ := json.Marshal(map[string]any{
		"diagnosis":       "Preliminary Assessment (Offline)",
		"severity":        "Low Risk",
		"generalWellness": "The symptom checker server is currently offline. Based on general guidelines, please rest and stay hydrated. If symptoms worsen, consult a doctor immediately.",
		"homeRemedies":    []string{"Hydration", "Rest"},
		"emergencyReason": "N/A",
	})
	return &SymptomResponse{
		SymptomSummary:          "Offline Analysis",
		InputType:               inputType,
		Guidance:                string(guidance),
		TriageLevel:             LevelRoutine,
		SpecialtyRecommendation: "General Physician",
		RawPayload:              map[string]any{"offline": true},
	}
}

func hasStructuredData(cleanData map[string]any) bool {
	for _, key := range medicalKeys {
		if _, ok := cleanData[key]; ok {
			return true
		}
	}
	return false
}

// findBestResponseText salvages a displayable string from an
// unstructured payload: a priority key on the normalized mapping, or
// the raw payload itself when the workflow answered with a bare string.
func findBestResponseText(cleanData map[string]any, raw any) string {
	for _, key := range bestTextKeys {
		if s, ok := cleanData[key].(string); ok && s != "" {
			return s
		}
	}
	if s, ok := raw.(string); ok && len(s) > 2 && s != "0" {
		return s
	}
	return ""
}
