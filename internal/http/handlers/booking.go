package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/medilens/patient-portal/internal/booking"
	"github.com/medilens/patient-portal/pkg/logging"
)

// BookingHandler submits appointment bookings to the scheduling
// workflow.
type BookingHandler struct {
	booking *booking.Service
	logger  *logging.Logger
}

// NewBookingHandler creates the booking handler.
func NewBookingHandler(svc *booking.Service, logger *logging.Logger) *BookingHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingHandler{booking: svc, logger: logger.Component("http.booking")}
}

// Book submits an appointment.
// Route: POST /api/appointments
func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	var appt booking.Appointment
	if err := json.NewDecoder(r.Body).Decode(&appt); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if appt.PatientName == "" || appt.Date == "" {
		writeError(w, http.StatusBadRequest, "patient_name and date are required")
		return
	}

	conf, err := h.booking.Book(r.Context(), appt)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		h.logger.Error("booking failed", "error", err)
		writeError(w, http.StatusBadGateway, "The scheduling server is unavailable right now. Please try again shortly.")
		return
	}
	writeJSON(w, http.StatusOK, conf)
}
