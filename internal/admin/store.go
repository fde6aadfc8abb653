package admin

import (
	"errors"
	"strings"
	"sync"
)

var (
	// ErrComplaintNotFound reports a transition against an unknown id.
	ErrComplaintNotFound = errors.New("admin: complaint not found")
	// ErrComplaintResolved reports a transition out of the terminal state.
	ErrComplaintResolved = errors.New("admin: complaint already resolved")
	// ErrRefreshInFlight reports a refresh attempted while one is pending.
	ErrRefreshInFlight = errors.New("admin: refresh already in flight")
)

// Store is the process-wide dashboard state. Non-complaint collections
// are replaced wholesale on every refresh; complaints are preserved and
// mutated in place, since they arrive from a separate endpoint.
type Store struct {
	mu         sync.Mutex
	data       Collections
	refreshing bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// BeginRefresh sets the busy flag. It fails if a refresh is already
// pending; overlapping refreshes would interleave partial writes.
func (s *Store) BeginRefresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refreshing {
		return ErrRefreshInFlight
	}
	s.refreshing = true
	return nil
}

// EndRefresh clears the busy flag.
func (s *Store) EndRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshing = false
}

// ReplaceAll swaps in freshly-built collections, keeping the existing
// complaints.
func (s *Store) ReplaceAll(batch Collections) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch.Complaints = s.data.Complaints
	s.data = batch
}

// SetComplaints replaces the complaint collection. Callers only invoke
// this with a non-empty batch so a flaky empty webhook response never
// wipes local complaints.
func (s *Store) SetComplaints(complaints []Complaint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Complaints = complaints
}

// PrependComplaint inserts a newly submitted complaint at the front.
func (s *Store) PrependComplaint(c Complaint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Complaints = append([]Complaint{c}, s.data.Complaints...)
}

// AssignComplaint moves a pending complaint to In Progress and records
// the assignee.
func (s *Store) AssignComplaint(id, staffName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.Complaints {
		if s.data.Complaints[i].ID != id {
			continue
		}
		if s.data.Complaints[i].Status == ComplaintResolved {
			return ErrComplaintResolved
		}
		s.data.Complaints[i].Status = ComplaintInProgress
		if staffName != "" {
			s.data.Complaints[i].AssignedTo = staffName
		}
		return nil
	}
	return ErrComplaintNotFound
}

// ResolveComplaint moves any non-resolved complaint to Resolved. There
// is no transition out of Resolved.
func (s *Store) ResolveComplaint(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.Complaints {
		if s.data.Complaints[i].ID != id {
			continue
		}
		s.data.Complaints[i].Status = ComplaintResolved
		return nil
	}
	return ErrComplaintNotFound
}

// AcknowledgeSuggestion updates an AI suggestion's status in place.
func (s *Store) AcknowledgeSuggestion(suggestionID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.Suggestions {
		if s.data.Suggestions[i].SuggestionID == suggestionID {
			s.data.Suggestions[i].Status = status
			return nil
		}
	}
	return errors.New("admin: suggestion not found")
}

// Clear tears down all collections (logout).
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = Collections{}
}

// Snapshot returns a copy of every collection for rendering.
func (s *Store) Snapshot() Collections {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Collections{
		Doctors:      append([]Doctor(nil), s.data.Doctors...),
		Nurses:       append([]Nurse(nil), s.data.Nurses...),
		Patients:     append([]Patient(nil), s.data.Patients...),
		Beds:         append([]Bed(nil), s.data.Beds...),
		Risks:        append([]RiskLog(nil), s.data.Risks...),
		Appointments: append([]Appointment(nil), s.data.Appointments...),
		Suggestions:  append([]AISuggestion(nil), s.data.Suggestions...),
		Complaints:   append([]Complaint(nil), s.data.Complaints...),
	}
}

// ResourceUsage is a used/total pair on the summary.
type ResourceUsage struct {
	Used  int `json:"used"`
	Total int `json:"total"`
}

// Summary is the dashboard headline aggregation.
type Summary struct {
	TotalPatients         int           `json:"total_patients"`
	HighRisk              int           `json:"high_risk"`
	AppointmentsToday     int           `json:"appointments_today"`
	ActiveAppointments    int           `json:"active_appointments"`
	CompletedAppointments int           `json:"completed_appointments"`
	TotalComplaints       int           `json:"total_complaints"`
	PendingComplaints     int           `json:"pending_complaints"`
	AvgWaitTimeMinutes    int           `json:"avg_wait_time_minutes"`
	Beds                  ResourceUsage `json:"beds"`
}

// Summarize computes the headline numbers. Baseline figures stand in
// where a collection has not been populated yet, matching what the
// dashboard showed before its first successful refresh.
func (s *Store) Summarize() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := Summary{
		TotalPatients:      len(s.data.Patients),
		AppointmentsToday:  len(s.data.Appointments),
		TotalComplaints:    len(s.data.Complaints),
		AvgWaitTimeMinutes: 18,
	}
	if summary.TotalPatients == 0 {
		summary.TotalPatients = 120
	}
	if summary.AppointmentsToday == 0 {
		summary.AppointmentsToday = 8
	}
	for _, r := range s.data.Risks {
		if strings.Contains(strings.ToLower(r.RiskLevel), "high") {
			summary.HighRisk++
		}
	}
	for _, a := range s.data.Appointments {
		if a.Status == "Completed" {
			summary.CompletedAppointments++
		} else {
			summary.ActiveAppointments++
		}
	}
	for _, c := range s.data.Complaints {
		if c.Status == ComplaintPending {
			summary.PendingComplaints++
		}
	}
	summary.Beds.Total = len(s.data.Beds)
	if summary.Beds.Total == 0 {
		summary.Beds.Total = 20
	}
	for _, b := range s.data.Beds {
		if b.Status == "Occupied" {
			summary.Beds.Used++
		}
	}
	return summary
}
