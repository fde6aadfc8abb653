package triage

// TriageLevel is the canonical severity classification driving UI
// emphasis and downstream alerting.
type TriageLevel string

const (
	LevelRoutine   TriageLevel = "routine"
	LevelUrgent    TriageLevel = "urgent"
	LevelEmergency TriageLevel = "emergency"
)

// InputType identifies how the visitor described their symptoms.
type InputType string

const (
	InputText  InputType = "text"
	InputVoice InputType = "voice"
	InputImage InputType = "image"
)

// SymptomResponse is the output of the triage pipeline. Guidance is
// opaque to callers: either free text or a JSON-encoded structured
// object consumed by the guidance renderer.
type SymptomResponse struct {
	SymptomSummary          string      `json:"symptom_summary"`
	InputType               InputType   `json:"input_type"`
	Guidance                string      `json:"guidance"`
	TriageLevel             TriageLevel `json:"triage_level"`
	SpecialtyRecommendation string      `json:"specialty_recommendation"`
	RawPayload              any         `json:"raw_payload"`
}
