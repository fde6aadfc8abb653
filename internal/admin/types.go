// Package admin maintains the operations dashboard's typed collections,
// built from the heterogeneous item stream the reporting workflow
// returns on each refresh.
package admin

// EntityKind identifies which collection a dispatched item belongs to.
type EntityKind string

const (
	KindComplaint   EntityKind = "complaint"
	KindDoctor      EntityKind = "doctor"
	KindNurse       EntityKind = "nurse"
	KindPatient     EntityKind = "patient"
	KindBed         EntityKind = "bed"
	KindRiskLog     EntityKind = "risk"
	KindAppointment EntityKind = "appointment"
	KindSuggestion  EntityKind = "suggestion"
)

// ComplaintStatus is the complaint lifecycle state.
type ComplaintStatus string

const (
	ComplaintPending    ComplaintStatus = "Pending"
	ComplaintInProgress ComplaintStatus = "In Progress"
	ComplaintResolved   ComplaintStatus = "Resolved"
)

// Doctor is a staffed physician row.
type Doctor struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Specialty      string   `json:"specialty"`
	Department     string   `json:"department"`
	Status         string   `json:"status"`
	CurrentLoad    int      `json:"current_load"`
	MaxLoad        int      `json:"max_load"`
	Image          string   `json:"image"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	Experience     string   `json:"experience"`
	AvailableSlots []string `json:"available_slots"`
}

// Nurse is a staffed nurse row.
type Nurse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Department      string `json:"department"`
	Shift           string `json:"shift"`
	Status          string `json:"status"`
	CurrentPatients int    `json:"current_patients"`
}

// Patient is an admitted or outpatient record.
type Patient struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Age            int    `json:"age"`
	Gender         string `json:"gender"`
	RiskLevel      string `json:"risk_level"`
	Symptoms       string `json:"symptoms"`
	Department     string `json:"department"`
	Status         string `json:"status"`
	AssignedBed    string `json:"assigned_bed"`
	AssignedDoctor string `json:"assigned_doctor"`
	Timestamp      string `json:"timestamp"`
}

// Bed is a ward/ICU bed row.
type Bed struct {
	ID         string `json:"id"`
	Number     string `json:"number"`
	Type       string `json:"type"`
	Status     string `json:"status"`
	PatientID  string `json:"patient_id"`
	Department string `json:"department"`
}

// RiskLog is a triage session risk summary row.
type RiskLog struct {
	SessionID   string `json:"session_id"`
	PatientName string `json:"patient_name"`
	Age         int    `json:"age"`
	Symptoms    string `json:"symptoms"`
	RiskLevel   string `json:"risk_level"`
	Summary     string `json:"summary"`
	Reason      string `json:"reason"`
	Department  string `json:"department"`
	Timestamp   string `json:"timestamp"`
}

// Appointment is a booked appointment row. The reporting workflow emits
// these with human-readable, space-separated column names.
type Appointment struct {
	ID                  string `json:"id"`
	SessionID           string `json:"session_id"`
	PatientName         string `json:"patient_name"`
	Contact             string `json:"contact"`
	DoctorName          string `json:"doctor_name"`
	Department          string `json:"department"`
	Date                string `json:"date"`
	Time                string `json:"time"`
	Status              string `json:"status"`
	DoctorAvailability  string `json:"doctor_availability"`
	RescheduledDateTime string `json:"rescheduled_date_time"`
	CreatedAt           string `json:"created_at"`
	UpdatedAt           string `json:"updated_at"`
	Notes               string `json:"notes"`
}

// AISuggestion is a staffing/ops suggestion produced by the workflow's
// analysis step.
type AISuggestion struct {
	SuggestionID string `json:"suggestion_id"`
	RelatedSheet string `json:"related_sheet"`
	EntityID     string `json:"entity_id"`
	PatientName  string `json:"patient_name"`
	Action       string `json:"action"`
	Reason       string `json:"reason"`
	Details      string `json:"details"`
	Critical     string `json:"critical"`
	Status       string `json:"status"`
	Notes        string `json:"notes"`
}

// Complaint is a public complaint, the only collection mutated in place
// between refreshes.
type Complaint struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Contact    string          `json:"contact"`
	Type       string          `json:"type"`
	Details    string          `json:"details"`
	Priority   string          `json:"priority"`
	Status     ComplaintStatus `json:"status"`
	AssignedTo string          `json:"assigned_to"`
	CreatedAt  string          `json:"created_at"`
	Department string          `json:"department"`
}

// Collections groups every dashboard collection for a wholesale swap.
type Collections struct {
	Doctors      []Doctor       `json:"doctors"`
	Nurses       []Nurse        `json:"nurses"`
	Patients     []Patient      `json:"patients"`
	Beds         []Bed          `json:"beds"`
	Risks        []RiskLog      `json:"risks"`
	Appointments []Appointment  `json:"appointments"`
	Suggestions  []AISuggestion `json:"suggestions"`
	Complaints   []Complaint    `json:"complaints"`
}
