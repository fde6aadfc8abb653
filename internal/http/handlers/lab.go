package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/medilens/patient-portal/internal/ai"
	"github.com/medilens/patient-portal/internal/lab"
	"github.com/medilens/patient-portal/pkg/logging"
)

// DocumentExtractor pulls the clinically relevant text out of an
// uploaded report. Implemented by internal/ai.
type DocumentExtractor interface {
	AnalyzeMedicalDocument(ctx context.Context, docBase64, mimeType string) (string, error)
}

// LabHandler accepts a lab report (pre-extracted text or an uploaded
// document) and returns the workflow's analysis.
type LabHandler struct {
	lab       *lab.Service
	extractor DocumentExtractor
	logger    *logging.Logger
}

// NewLabHandler creates the lab report handler.
func NewLabHandler(svc *lab.Service, extractor DocumentExtractor, logger *logging.Logger) *LabHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &LabHandler{lab: svc, extractor: extractor, logger: logger.Component("http.lab")}
}

type labRequest struct {
	ExtractedText string `json:"extracted_text"`
	Document      string `json:"document"`
	MimeType      string `json:"mime_type"`
}

// Analyze runs the lab report analysis.
// Route: POST /api/lab/analyze
func (h *LabHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req labRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	text := req.ExtractedText
	if text == "" && req.Document != "" {
		if h.extractor == nil {
			writeError(w, http.StatusServiceUnavailable, "document extraction is not configured")
			return
		}
		extracted, err := h.extractor.AnalyzeMedicalDocument(r.Context(), req.Document, req.MimeType)
		if err != nil {
			if ai.IsRefusal(err) {
				writeError(w, http.StatusUnprocessableEntity, "The uploaded file does not look like a readable medical document. Please upload a lab report or prescription.")
				return
			}
			h.logger.Error("document extraction failed", "error", err)
			writeError(w, http.StatusBadGateway, "could not read the uploaded document")
			return
		}
		text = extracted
	}
	if text == "" {
		writeError(w, http.StatusBadRequest, "extracted_text or document is required")
		return
	}

	result, err := h.lab.Analyze(r.Context(), text)
	if err != nil {
		h.logger.Error("lab analysis failed", "error", err)
		writeError(w, http.StatusGatewayTimeout, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}
