package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/medilens/patient-portal/pkg/logging"
)

// Speaker synthesizes guidance text as audio. Implemented by internal/ai.
type Speaker interface {
	Speak(ctx context.Context, text string) ([]byte, error)
}

// SpeechHandler reads guidance aloud for accessibility.
type SpeechHandler struct {
	speaker Speaker
	logger  *logging.Logger
}

// NewSpeechHandler creates the speech handler.
func NewSpeechHandler(speaker Speaker, logger *logging.Logger) *SpeechHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &SpeechHandler{speaker: speaker, logger: logger.Component("http.speech")}
}

type speakRequest struct {
	Text string `json:"text"`
}

// Speak synthesizes the given text and streams the audio back.
// Route: POST /api/speak
func (h *SpeechHandler) Speak(w http.ResponseWriter, r *http.Request) {
	if h.speaker == nil {
		writeError(w, http.StatusServiceUnavailable, "speech synthesis is not configured")
		return
	}
	var req speakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	audio, err := h.speaker.Speak(r.Context(), req.Text)
	if err != nil {
		h.logger.Error("speech synthesis failed", "error", err)
		writeError(w, http.StatusBadGateway, "could not synthesize audio")
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}
