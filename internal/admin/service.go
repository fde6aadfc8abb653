package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/medilens/patient-portal/internal/webhook"
	"github.com/medilens/patient-portal/pkg/logging"
)

// Service drives the dashboard refresh and complaint workflows against
// their reporting webhooks, landing results in the Store. Remote
// failures degrade to the seeded fallback dataset; the dashboard is
// never left empty.
type Service struct {
	client       *webhook.Client
	store        *Store
	refreshURL   string
	complaintURL string
	manageURL    string
	logger       *logging.Logger
}

// Config wires the service's webhook endpoints.
type Config struct {
	RefreshURL          string
	ComplaintsURL       string
	ManageComplaintsURL string
}

// NewService creates the admin service.
func NewService(client *webhook.Client, store *Store, cfg Config, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		client:       client,
		store:        store,
		refreshURL:   cfg.RefreshURL,
		complaintURL: cfg.ComplaintsURL,
		manageURL:    cfg.ManageComplaintsURL,
		logger:       logger.Component("admin"),
	}
}

// Store exposes the backing store for read handlers.
func (s *Service) Store() *Store {
	return s.store
}

// RefreshAll pulls the full entity stream from the reporting workflow,
// dispatches every item, and swaps the rebuilt collections in. On any
// failure the seeded dataset is installed instead.
func (s *Service) RefreshAll(ctx context.Context) error {
	if err := s.store.BeginRefresh(); err != nil {
		return err
	}
	defer s.store.EndRefresh()

	payload := map[string]any{
		"action":    "refresh_all",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	body, err := s.client.PostJSON(ctx, "admin_refresh", s.refreshURL, payload)
	if err != nil {
		s.logger.Warn("dashboard refresh failed, seeding fallback data", "error", err)
		s.store.ReplaceAll(seedCollections())
		return fmt.Errorf("admin: refresh: %w", err)
	}

	items, err := decodeItemStream(body)
	if err != nil {
		s.logger.Warn("dashboard refresh returned malformed data, seeding fallback data", "error", err)
		s.store.ReplaceAll(seedCollections())
		return fmt.Errorf("admin: refresh: %w", err)
	}

	batch := Collections{
		Doctors:      []Doctor{},
		Nurses:       []Nurse{},
		Patients:     []Patient{},
		Beds:         []Bed{},
		Risks:        []RiskLog{},
		Appointments: []Appointment{},
		Suggestions:  []AISuggestion{},
	}
	dropped := 0
	for _, item := range items {
		d := Dispatch(item)
		if d == nil {
			dropped++
			continue
		}
		switch d.Kind {
		case KindDoctor:
			batch.Doctors = append(batch.Doctors, d.Entity.(Doctor))
		case KindNurse:
			batch.Nurses = append(batch.Nurses, d.Entity.(Nurse))
		case KindPatient:
			batch.Patients = append(batch.Patients, d.Entity.(Patient))
		case KindBed:
			batch.Beds = append(batch.Beds, d.Entity.(Bed))
		case KindRiskLog:
			batch.Risks = append(batch.Risks, d.Entity.(RiskLog))
		case KindAppointment:
			batch.Appointments = append(batch.Appointments, d.Entity.(Appointment))
		case KindSuggestion:
			batch.Suggestions = append(batch.Suggestions, d.Entity.(AISuggestion))
		case KindComplaint:
			// Complaints arrive through their own endpoint; a stray
			// complaint row in the refresh stream is ignored rather
			// than clobbering local complaint state.
		}
	}

	s.store.ReplaceAll(batch)
	s.logger.Info("dashboard refreshed",
		"doctors", len(batch.Doctors),
		"nurses", len(batch.Nurses),
		"patients", len(batch.Patients),
		"beds", len(batch.Beds),
		"risks", len(batch.Risks),
		"appointments", len(batch.Appointments),
		"suggestions", len(batch.Suggestions),
		"dropped", dropped,
	)
	return nil
}

// SubmitComplaint registers a new public complaint. The webhook send is
// best effort: the complaint lands in the local store either way so the
// submitter always sees it listed.
func (s *Service) SubmitComplaint(ctx context.Context, name, contact, complaintType, details, priority string) Complaint {
	c := Complaint{
		ID:        fmt.Sprintf("c-%d", nowFunc().UnixMilli()),
		Name:      defaultStr(name, "Anonymous"),
		Contact:   defaultStr(contact, "N/A"),
		Type:      defaultStr(complaintType, "Other"),
		Details:   details,
		Priority:  defaultStr(priority, "Low"),
		Status:    ComplaintPending,
		CreatedAt: nowFunc().Format(timestampLayout),
	}

	payload := map[string]any{
		"id":       c.ID,
		"name":     c.Name,
		"contact":  c.Contact,
		"type":     c.Type,
		"details":  c.Details,
		"priority": c.Priority,
		"status":   string(c.Status),
	}
	if _, err := s.client.PostJSON(ctx, "complaints", s.complaintURL+"?action=submit", payload); err != nil {
		s.logger.Warn("complaint submit webhook failed, keeping local copy", "complaint_id", c.ID, "error", err)
	}

	s.store.PrependComplaint(c)
	return c
}

// RefreshComplaints pulls the complaint list from the workflow. The
// local list is replaced only when at least one complaint comes back;
// an empty or failed response leaves local state alone.
func (s *Service) RefreshComplaints(ctx context.Context) error {
	body, err := s.client.PostJSON(ctx, "complaints", s.complaintURL+"?action=refresh", map[string]any{"action": "refresh"})
	if err != nil {
		return fmt.Errorf("admin: refresh complaints: %w", err)
	}

	items, err := decodeItemStream(body)
	if err != nil {
		return fmt.Errorf("admin: refresh complaints: %w", err)
	}

	var complaints []Complaint
	for _, item := range items {
		d := Dispatch(item)
		if d == nil || d.Kind != KindComplaint {
			continue
		}
		complaints = append(complaints, d.Entity.(Complaint))
	}
	if len(complaints) == 0 {
		s.logger.Info("complaint refresh returned no rows, keeping local list")
		return nil
	}

	s.store.SetComplaints(complaints)
	return nil
}

// AssignComplaint applies the assignment locally and notifies the
// management workflow. The local transition is optimistic: a webhook
// failure is logged but does not roll it back.
func (s *Service) AssignComplaint(ctx context.Context, id, staffName string) error {
	if err := s.store.AssignComplaint(id, staffName); err != nil {
		return err
	}
	s.notifyManage(ctx, "assign", map[string]any{"id": id, "assignedTo": staffName})
	return nil
}

// ResolveComplaint marks the complaint resolved locally and notifies
// the management workflow.
func (s *Service) ResolveComplaint(ctx context.Context, id string) error {
	if err := s.store.ResolveComplaint(id); err != nil {
		return err
	}
	s.notifyManage(ctx, "solve", map[string]any{"id": id})
	return nil
}

func (s *Service) notifyManage(ctx context.Context, action string, payload map[string]any) {
	url := fmt.Sprintf("%s?action=%s", s.manageURL, action)
	if _, err := s.client.PostJSON(ctx, "manage_complaints", url, payload); err != nil {
		s.logger.Warn("complaint management webhook failed", "action", action, "error", err)
	}
}

// decodeItemStream accepts the shapes the reporting workflow has been
// seen to produce: a bare array, or an object wrapping one under
// "data" or "items".
func decodeItemStream(body []byte) ([]any, error) {
	if len(body) == 0 {
		return nil, nil
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode item stream: %w", err)
	}

	switch v := raw.(type) {
	case []any:
		return v, nil
	case map[string]any:
		for _, key := range []string{"data", "items"} {
			if arr, ok := v[key].([]any); ok {
				return arr, nil
			}
		}
		// A single object is treated as a one-item stream.
		return []any{v}, nil
	}
	return nil, fmt.Errorf("decode item stream: unexpected payload shape")
}

func defaultStr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
