package admin

const defaultDoctorImage = "https://images.unsplash.com/photo-1559839734-2b71ea197ec2?auto=format&fit=crop&q=80&w=200&h=200"

// seedCollections is the local fallback dataset served when the refresh
// workflow is unreachable, so the dashboard never shows an empty store.
func seedCollections() Collections {
	now := nowFunc().Format(timestampLayout)
	return Collections{
		Doctors: []Doctor{
			{
				ID:             "DR001",
				Name:           "Dr. Ben Smith",
				Specialty:      "Endocrinologist",
				Department:     "Endocrinology",
				Status:         "On Duty",
				CurrentLoad:    10,
				MaxLoad:        12,
				Image:          defaultDoctorImage,
				Email:          "ben.s@medilens.pk",
				Phone:          "+92 42 1234 5678",
				Experience:     "15 yrs",
				AvailableSlots: []string{"Mon 09:00", "Wed 09:00"},
			},
			{
				ID:             "DR002",
				Name:           "Dr. Anya Sharma",
				Specialty:      "Dermatology",
				Department:     "Dermatology",
				Status:         "Surgery",
				CurrentLoad:    5,
				MaxLoad:        10,
				Image:          "https://images.unsplash.com/photo-1594824476967-48c8b964273f?auto=format&fit=crop&q=80&w=200&h=200",
				Email:          "anya.s@medilens.pk",
				Phone:          "+92 42 1234 5678",
				Experience:     "10 yrs",
				AvailableSlots: []string{"Tue 10:00", "Thu 10:00"},
			},
		},
		Nurses: []Nurse{
			{ID: "NR001", Name: "Nurse David Davis", Department: "ICU", Shift: "Night", Status: "Active", CurrentPatients: 4},
			{ID: "NR002", Name: "Nurse Sam Williams", Department: "Emergency", Shift: "Morning", Status: "Active", CurrentPatients: 7},
		},
		Patients: []Patient{
			{
				ID: "PT005", Name: "Alexa Jones", Age: 12, Gender: "Female",
				RiskLevel: "High", Symptoms: "Irregular period", Department: "Gynecology",
				Status: "Awaiting Bed", AssignedBed: "N/A", AssignedDoctor: "Dr. Sana Iqbal",
				Timestamp: now,
			},
		},
		Beds: []Bed{
			{ID: "BED001", Number: "BED001", Type: "ICU", Status: "Available", Department: "Critical Care"},
			{ID: "BED010", Number: "BED010", Type: "Ward", Status: "Occupied", PatientID: "PT007", Department: "General Ward"},
		},
		Risks: []RiskLog{
			{
				SessionID: "724014", PatientName: "Ivan Drago", Age: 75,
				Symptoms: "Fatigue", RiskLevel: "Low", Summary: "Stable condition.",
				Reason: "Observation", Department: "Internal Medicine", Timestamp: now,
			},
		},
		Suggestions: []AISuggestion{
			{
				SuggestionID: "SUG001", RelatedSheet: "Patients", EntityID: "PT005",
				PatientName: "Alexa Jones", Action: "Assign bed immediately",
				Reason: "High risk patient", Details: "Critical triage required",
				Critical: "Yes", Status: "Pending", Notes: "AI Alert",
			},
		},
		Appointments: []Appointment{},
		Complaints:   []Complaint{},
	}
}
