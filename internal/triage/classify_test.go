package triage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyLevelMapping(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]any
		want TriageLevel
	}{
		{"high severity", map[string]any{"severity": "High Risk"}, LevelEmergency},
		{"critical status", map[string]any{"status": "CRITICAL"}, LevelEmergency},
		{"emergency word", map[string]any{"triage_status": "This is an Emergency"}, LevelEmergency},
		{"moderate", map[string]any{"status": "moderate concern"}, LevelUrgent},
		{"urgent", map[string]any{"severity": "urgent"}, LevelUrgent},
		{"empty record", map[string]any{}, LevelRoutine},
		{"unknown wording", map[string]any{"severity": "mild"}, LevelRoutine},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(context.Background(), tt.in)
			assert.Equal(t, tt.want, got.TriageLevel)
		})
	}
}

func TestClassifyStatusPriority(t *testing.T) {
	// triage_status outranks status, which outranks severity.
	got := Classify(context.Background(), map[string]any{
		"triage_status": "urgent",
		"status":        "high",
		"severity":      "low",
	})
	assert.Equal(t, LevelUrgent, got.TriageLevel)
}

func TestClassifyEscalationOverride(t *testing.T) {
	got := Classify(context.Background(), map[string]any{
		"severity":        "routine",
		"emergencyReason": "Patient reports chest pain",
	})
	assert.Equal(t, LevelEmergency, got.TriageLevel)
}

func TestClassifyEscalationDoesNotFire(t *testing.T) {
	tests := []struct {
		name   string
		record map[string]any
	}{
		{"n/a reason", map[string]any{"severity": "routine", "emergencyReason": "N/A"}},
		{"no emergency text", map[string]any{"severity": "routine", "emergencyReason": "No emergency detected"}},
		{"too short", map[string]any{"severity": "routine", "emergencyReason": "meh"}},
		{"status not routine", map[string]any{"severity": "mild ache", "emergencyReason": "Patient reports chest pain"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(context.Background(), tt.record)
			assert.Equal(t, LevelRoutine, got.TriageLevel)
		})
	}
}

func TestClassifySummaryAndSpecialty(t *testing.T) {
	got := Classify(context.Background(), map[string]any{
		"diagnosis": "Possible cardiac event",
		"specialty": "Cardiology",
	})
	assert.Equal(t, "Possible cardiac event", got.Summary)
	assert.Equal(t, "Cardiology", got.SpecialtyRecommendation)

	empty := Classify(context.Background(), map[string]any{})
	assert.Equal(t, "Triage Analysis", empty.Summary)
	assert.Equal(t, "Specialist Review", empty.SpecialtyRecommendation)
}

func TestClassifyDeterministic(t *testing.T) {
	record := map[string]any{"severity": "moderate", "diagnosis": "Flu"}
	first := Classify(context.Background(), record)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Classify(context.Background(), record))
	}
}
