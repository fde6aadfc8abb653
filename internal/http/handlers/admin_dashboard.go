package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medilens/patient-portal/internal/admin"
	"github.com/medilens/patient-portal/pkg/logging"
)

// AdminDashboardHandler serves the operations dashboard: refresh,
// collection snapshots, the headline summary, and suggestion
// acknowledgements.
type AdminDashboardHandler struct {
	admin  *admin.Service
	logger *logging.Logger
}

// NewAdminDashboardHandler creates the dashboard handler.
func NewAdminDashboardHandler(svc *admin.Service, logger *logging.Logger) *AdminDashboardHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminDashboardHandler{admin: svc, logger: logger.Component("http.admin")}
}

// Refresh pulls fresh data from the reporting workflow. A refresh that
// fell back to seeded data still answers 200; the dashboard renders
// whatever the store now holds.
// Route: POST /admin/refresh
func (h *AdminDashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	err := h.admin.RefreshAll(r.Context())
	if errors.Is(err, admin.ErrRefreshInFlight) {
		writeError(w, http.StatusConflict, "a refresh is already running")
		return
	}
	fallback := err != nil
	if fallback {
		h.logger.Warn("dashboard refresh degraded to fallback data", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"fallback":    fallback,
		"collections": h.admin.Store().Snapshot(),
	})
}

// Dashboard returns the current collections without refreshing.
// Route: GET /admin/dashboard
func (h *AdminDashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.admin.Store().Snapshot())
}

// Summary returns the headline aggregation.
// Route: GET /admin/summary
func (h *AdminDashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.admin.Store().Summarize())
}

type ackSuggestionRequest struct {
	Status string `json:"status"`
}

// AcknowledgeSuggestion updates a suggestion's status.
// Route: POST /admin/suggestions/{suggestionID}/ack
func (h *AdminDashboardHandler) AcknowledgeSuggestion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "suggestionID")
	var req ackSuggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status == "" {
		req.Status = "Acknowledged"
	}
	if err := h.admin.Store().AcknowledgeSuggestion(id, req.Status); err != nil {
		writeError(w, http.StatusNotFound, "suggestion not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": req.Status})
}

// Logout clears the dashboard state.
// Route: POST /admin/logout
func (h *AdminDashboardHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.admin.Store().Clear()
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}
