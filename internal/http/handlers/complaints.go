package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medilens/patient-portal/internal/admin"
	"github.com/medilens/patient-portal/pkg/logging"
)

// ComplaintsHandler covers the public complaint submission and the
// admin-side complaint management endpoints.
type ComplaintsHandler struct {
	admin  *admin.Service
	logger *logging.Logger
}

// NewComplaintsHandler creates the complaints handler.
func NewComplaintsHandler(svc *admin.Service, logger *logging.Logger) *ComplaintsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ComplaintsHandler{admin: svc, logger: logger.Component("http.complaints")}
}

type submitComplaintRequest struct {
	Name     string `json:"name"`
	Contact  string `json:"contact"`
	Type     string `json:"type"`
	Details  string `json:"details"`
	Priority string `json:"priority"`
}

// Submit files a new complaint.
// Route: POST /api/complaints
func (h *ComplaintsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitComplaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Details == "" {
		writeError(w, http.StatusBadRequest, "details is required")
		return
	}

	c := h.admin.SubmitComplaint(r.Context(), req.Name, req.Contact, req.Type, req.Details, req.Priority)
	writeJSON(w, http.StatusCreated, c)
}

// List refreshes from the workflow and returns the complaint list. A
// refresh failure still serves the local list.
// Route: GET /admin/complaints
func (h *ComplaintsHandler) List(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.RefreshComplaints(r.Context()); err != nil {
		h.logger.Warn("complaint refresh failed, serving local list", "error", err)
	}
	writeJSON(w, http.StatusOK, h.admin.Store().Snapshot().Complaints)
}

type assignComplaintRequest struct {
	StaffName string `json:"staff_name"`
}

// Assign moves a complaint to In Progress.
// Route: POST /admin/complaints/{complaintID}/assign
func (h *ComplaintsHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "complaintID")
	var req assignComplaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.admin.AssignComplaint(r.Context(), id, req.StaffName)
	switch {
	case errors.Is(err, admin.ErrComplaintNotFound):
		writeError(w, http.StatusNotFound, "complaint not found")
	case errors.Is(err, admin.ErrComplaintResolved):
		writeError(w, http.StatusConflict, "complaint is already resolved")
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(admin.ComplaintInProgress)})
	}
}

// Resolve marks a complaint resolved.
// Route: POST /admin/complaints/{complaintID}/resolve
func (h *ComplaintsHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "complaintID")

	err := h.admin.ResolveComplaint(r.Context(), id)
	switch {
	case errors.Is(err, admin.ErrComplaintNotFound):
		writeError(w, http.StatusNotFound, "complaint not found")
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(admin.ComplaintResolved)})
	}
}
