// Package booking relays appointment bookings to the scheduling
// workflow. The relay is deliberately forgiving: the local booking is
// the source of truth for the visitor, the webhook is notification.
package booking

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/medilens/patient-portal/internal/session"
	"github.com/medilens/patient-portal/internal/webhook"
	"github.com/medilens/patient-portal/pkg/logging"
)

// Appointment is the booking submitted by the visitor.
type Appointment struct {
	ID           string `json:"id"`
	PatientName  string `json:"patient_name"`
	PatientEmail string `json:"patient_email"`
	DoctorName   string `json:"doctor_name"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Status       string `json:"status"`
}

// Confirmation is the relay outcome shown to the visitor.
type Confirmation struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	RawPayload any    `json:"raw_payload,omitempty"`
}

// Service relays bookings to the scheduling workflow.
type Service struct {
	client   *webhook.Client
	sessions *session.Manager
	url      string
	logger   *logging.Logger
}

// NewService creates the booking relay.
func NewService(client *webhook.Client, sessions *session.Manager, url string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		client:   client,
		sessions: sessions,
		url:      url,
		logger:   logger.Component("booking"),
	}
}

// Book sends the appointment to the workflow. A disabled workflow or
// transport noise confirms locally so the visitor is never blocked; a
// gateway timeout after retries surfaces as an error because the
// booking form has an error slot.
func (s *Service) Book(ctx context.Context, appt Appointment) (*Confirmation, error) {
	sessionID := s.sessions.Token()

	payload := map[string]any{
		"sessionId":     sessionID,
		"action":        "book_appointment",
		"appointmentId": appt.ID,
		"patientName":   appt.PatientName,
		"patientEmail":  appt.PatientEmail,
		"doctorName":    appt.DoctorName,
		"date":          appt.Date,
		"time":          appt.Time,
		"status":        appt.Status,
	}

	s.logger.Info("sending booking request", "session_id", sessionID, "appointment_id", appt.ID)

	body, err := s.client.PostJSON(ctx, "booking", s.url, payload)
	if err != nil {
		switch {
		case errors.Is(err, webhook.ErrServiceDisabled):
			s.logger.Warn("booking workflow inactive, confirming locally")
			return &Confirmation{Status: "confirmed_local", Message: "Booking confirmed (System Offline)"}, nil
		case webhook.IsServerError(err):
			return nil, errors.New("booking: scheduling server unavailable, please try again")
		case errors.Is(err, context.Canceled):
			return nil, err
		default:
			// Transport noise: keep the local booking.
			s.logger.Warn("booking webhook unreachable, saving locally", "error", err)
			return &Confirmation{Status: "confirmed_offline", Message: "Booking saved locally"}, nil
		}
	}

	var raw map[string]any
	if jsonErr := json.Unmarshal(body, &raw); jsonErr != nil || raw == nil {
		message := string(body)
		if message == "" {
			message = "Booking sent to scheduling workflow"
		}
		return &Confirmation{Status: "received", Message: message}, nil
	}

	conf := &Confirmation{Status: "received", RawPayload: raw}
	if status, ok := raw["status"].(string); ok && status != "" {
		conf.Status = status
	}
	if message, ok := raw["message"].(string); ok {
		conf.Message = message
	}
	return conf, nil
}
