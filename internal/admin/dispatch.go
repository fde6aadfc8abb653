package admin

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const timestampLayout = "1/2/2006, 3:04:05 PM"

// nowFunc is swapped out in tests for deterministic default timestamps.
var nowFunc = time.Now

// Dispatched is a classified refresh item.
type Dispatched struct {
	Kind   EntityKind
	Entity any
}

// dispatchRule pairs a discriminator predicate with its mapper. Rules
// are evaluated in order and the first match wins, so discriminator
// specificity must be proven (or ordered) whenever a kind is added;
// see TestDispatchPrecedence.
type dispatchRule struct {
	kind  EntityKind
	match func(map[string]any) bool
	build func(map[string]any) any
}

var dispatchRules = []dispatchRule{
	{
		kind: KindComplaint,
		match: func(d map[string]any) bool {
			return has(d, "id") && (has(d, "details") || has(d, "type"))
		},
		build: func(d map[string]any) any { return buildComplaint(d) },
	},
	{
		kind:  KindDoctor,
		match: func(d map[string]any) bool { return has(d, "doctor_id") },
		build: func(d map[string]any) any {
			return Doctor{
				ID:             str(d, "doctor_id", ""),
				Name:           str(d, "name", "Unknown Doctor"),
				Specialty:      str(d, "specialty", "General"),
				Department:     str(d, "department", "General"),
				Status:         str(d, "status", "On Duty"),
				CurrentLoad:    num(d, "current_load", 0),
				MaxLoad:        num(d, "max_load", 10),
				Image:          str(d, "image", defaultDoctorImage),
				Email:          str(d, "email", "N/A"),
				Phone:          str(d, "phone", "N/A"),
				Experience:     str(d, "experience", "N/A"),
				AvailableSlots: strSlice(d, "availableSlots"),
			}
		},
	},
	{
		kind:  KindNurse,
		match: func(d map[string]any) bool { return has(d, "nurse_id") },
		build: func(d map[string]any) any {
			return Nurse{
				ID:              str(d, "nurse_id", ""),
				Name:            str(d, "name", "Unknown Nurse"),
				Department:      str(d, "department", "General"),
				Shift:           str(d, "shift", "Morning"),
				Status:          str(d, "status", "Active"),
				CurrentPatients: num(d, "current_patients", 0),
			}
		},
	},
	{
		kind:  KindPatient,
		match: func(d map[string]any) bool { return has(d, "patient_id") },
		build: func(d map[string]any) any {
			return Patient{
				ID:             str(d, "patient_id", ""),
				Name:           str(d, "name", "Guest"),
				Age:            num(d, "age", 0),
				Gender:         str(d, "gender", "Other"),
				RiskLevel:      str(d, "risk_level", "Low"),
				Symptoms:       str(d, "symptoms", "None reported"),
				Department:     str(d, "department", "General"),
				Status:         str(d, "status", "Outpatient"),
				AssignedBed:    str(d, "assigned_bed", "N/A"),
				AssignedDoctor: str(d, "assigned_doctor", "Unassigned"),
				Timestamp:      str(d, "timestamp", nowFunc().Format(timestampLayout)),
			}
		},
	},
	{
		kind:  KindBed,
		match: func(d map[string]any) bool { return has(d, "bed_id") },
		build: func(d map[string]any) any {
			return Bed{
				ID:         str(d, "bed_id", ""),
				Number:     str(d, "bed_id", ""),
				Type:       str(d, "type", "Standard"),
				Status:     str(d, "status", "Available"),
				PatientID:  str(d, "patient_id", "N/A"),
				Department: str(d, "department", "General"),
			}
		},
	},
	{
		kind: KindRiskLog,
		match: func(d map[string]any) bool {
			return has(d, "sessionid") && has(d, "patientName") && has(d, "summary")
		},
		build: func(d map[string]any) any {
			return RiskLog{
				SessionID:   str(d, "sessionid", ""),
				PatientName: str(d, "patientName", ""),
				Age:         num(d, "age", 0),
				Symptoms:    str(d, "symptoms", ""),
				RiskLevel:   str(d, "riskLevel", "Low"),
				Summary:     str(d, "summary", ""),
				Reason:      str(d, "reason", ""),
				Department:  str(d, "department", "General"),
				Timestamp:   str(d, "timestamp", nowFunc().Format(timestampLayout)),
			}
		},
	},
	{
		kind:  KindAppointment,
		match: func(d map[string]any) bool { return has(d, "Session ID") },
		build: func(d map[string]any) any {
			return Appointment{
				ID:                  str(d, "Session ID", ""),
				SessionID:           str(d, "Session ID", ""),
				PatientName:         str(d, "Patient Name", ""),
				Contact:             str(d, "Contact", ""),
				DoctorName:          str(d, "Doctor", ""),
				Department:          str(d, "Department", "General"),
				Date:                str(d, "Appointment Date", ""),
				Time:                str(d, "Time", ""),
				Status:              str(d, "Status", "Confirmed"),
				DoctorAvailability:  str(d, "Doctor Availability", "Available"),
				RescheduledDateTime: str(d, "Rescheduled Date/Time", ""),
				CreatedAt:           str(d, "Created At", ""),
				UpdatedAt:           str(d, "Updated At", ""),
				Notes:               str(d, "Notes", ""),
			}
		},
	},
	{
		kind:  KindSuggestion,
		match: func(d map[string]any) bool { return has(d, "suggestionId") },
		build: func(d map[string]any) any {
			critical := "No"
			if str(d, "critical", "") == "True" {
				critical = "Yes"
			}
			return AISuggestion{
				SuggestionID: str(d, "suggestionId", ""),
				RelatedSheet: str(d, "relatedSheet", ""),
				EntityID:     str(d, "entityId", ""),
				PatientName:  str(d, "patientName", ""),
				Action:       str(d, "action", ""),
				Reason:       str(d, "reason", ""),
				Details:      str(d, "details", ""),
				Critical:     critical,
				Status:       str(d, "status", "Pending"),
				Notes:        str(d, "notes", ""),
			}
		},
	},
}

// Dispatch classifies one raw refresh item into a typed entity. Items
// matching no discriminator return nil: the upstream stream is
// heterogeneous and some rows are expected to be irrelevant.
func Dispatch(item any) *Dispatched {
	data, ok := item.(map[string]any)
	if !ok {
		return nil
	}
	if inner, ok := data["json"].(map[string]any); ok {
		data = inner
	}
	for _, rule := range dispatchRules {
		if rule.match(data) {
			return &Dispatched{Kind: rule.kind, Entity: rule.build(data)}
		}
	}
	return nil
}

func buildComplaint(d map[string]any) Complaint {
	status := ComplaintStatus(str(d, "status", string(ComplaintPending)))
	switch status {
	case ComplaintPending, ComplaintInProgress, ComplaintResolved:
	default:
		status = ComplaintPending
	}
	return Complaint{
		ID:         str(d, "id", ""),
		Name:       str(d, "name", "Anonymous"),
		Contact:    str(d, "contact", "N/A"),
		Type:       str(d, "type", "Other"),
		Details:    str(d, "details", ""),
		Priority:   str(d, "priority", "Low"),
		Status:     status,
		AssignedTo: str(d, "assignedTo", ""),
		CreatedAt:  str(d, "createdAt", nowFunc().Format(timestampLayout)),
		Department: str(d, "department", ""),
	}
}

// has reports whether the key holds a usable (non-nil, non-empty) value.
func has(d map[string]any, key string) bool {
	v, ok := d[key]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr {
		return strings.TrimSpace(s) != ""
	}
	return true
}

func str(d map[string]any, key, fallback string) string {
	v, ok := d[key]
	if !ok || v == nil {
		return fallback
	}
	switch s := v.(type) {
	case string:
		if s == "" {
			return fallback
		}
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func num(d map[string]any, key string, fallback int) int {
	switch v := d[key].(type) {
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	case int:
		return v
	}
	return fallback
}

func strSlice(d map[string]any, key string) []string {
	arr, ok := d[key].([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
