package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/medilens/patient-portal/internal/ai"
	"github.com/medilens/patient-portal/internal/guidance"
	"github.com/medilens/patient-portal/internal/triage"
	"github.com/medilens/patient-portal/pkg/logging"
)

// SymptomHandler exposes the symptom checker flow: intake preparation
// with follow-up questions, then the full triage analysis.
type SymptomHandler struct {
	flow   *triage.Flow
	triage *triage.Service
	logger *logging.Logger
}

// NewSymptomHandler creates the symptom checker handler.
func NewSymptomHandler(flow *triage.Flow, svc *triage.Service, logger *logging.Logger) *SymptomHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &SymptomHandler{flow: flow, triage: svc, logger: logger.Component("http.symptom")}
}

type prepareRequest struct {
	InputType triage.InputType `json:"input_type"`
	Data      string           `json:"data"`
}

// Prepare distills the visitor's input (text, voice, or image) to
// symptom text and returns follow-up questions.
// Route: POST /api/symptoms/prepare
func (h *SymptomHandler) Prepare(w http.ResponseWriter, r *http.Request) {
	var req prepareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Data == "" {
		writeError(w, http.StatusBadRequest, "data is required")
		return
	}

	intake, err := h.flow.Prepare(r.Context(), req.InputType, req.Data)
	if err != nil {
		if ai.IsRefusal(err) {
			writeError(w, http.StatusUnprocessableEntity, ai.RefusalMessage)
			return
		}
		h.logger.Error("intake preparation failed", "error", err)
		writeError(w, http.StatusBadGateway, "could not process the provided input")
		return
	}
	writeJSON(w, http.StatusOK, intake)
}

type submitRequest struct {
	SymptomText string   `json:"symptom_text"`
	Questions   []string `json:"questions"`
	Answers     []string `json:"answers"`
}

type analysisResponse struct {
	*triage.SymptomResponse
	Rendered *guidance.Result `json:"rendered"`
}

// Submit runs the triage pipeline on the combined symptom description
// and returns the analysis with its rendered guidance sections.
// Route: POST /api/symptoms/submit
func (h *SymptomHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SymptomText == "" {
		writeError(w, http.StatusBadRequest, "symptom_text is required")
		return
	}

	resp := h.flow.Submit(r.Context(), req.SymptomText, req.Questions, req.Answers)
	writeJSON(w, http.StatusOK, analysisResponse{
		SymptomResponse: resp,
		Rendered:        guidance.Render(resp.Guidance),
	})
}

type analyzeRequest struct {
	InputType triage.InputType `json:"input_type"`
	Data      string           `json:"data"`
}

// Analyze runs the triage pipeline directly, skipping follow-ups. Kept
// for clients that collect the full description in one shot.
// Route: POST /api/symptoms/analyze
func (h *SymptomHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Data == "" {
		writeError(w, http.StatusBadRequest, "data is required")
		return
	}

	resp := h.triage.Analyze(r.Context(), req.InputType, req.Data)
	writeJSON(w, http.StatusOK, analysisResponse{
		SymptomResponse: resp,
		Rendered:        guidance.Render(resp.Guidance),
	})
}
