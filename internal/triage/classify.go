package triage

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var classifyTracer = otel.Tracer("medilens/triage-classifier")

const (
	defaultSummary   = "Triage Analysis"
	defaultSpecialty = "Specialist Review"
)

// Classification is the classifier's verdict over a normalized record.
type Classification struct {
	TriageLevel             TriageLevel
	SpecialtyRecommendation string
	Summary                 string
}

// Classify derives the three-level severity and a specialty
// recommendation from a normalized payload. It is a pure function of
// the mapping: no randomness, no external state.
func Classify(ctx context.Context, normalized map[string]any) Classification {
	_, span := classifyTracer.Start(ctx, "triage.classify")
	defer span.End()

	result := Classification{
		Summary:                 stringField(normalized, "diagnosis", defaultSummary),
		SpecialtyRecommendation: stringField(normalized, "specialty", defaultSpecialty),
	}

	statusText := resolveStatus(normalized)

	// Product rule, deliberately preserved: some workflows report a
	// routine severity while still populating a real emergency note.
	// A substantive emergencyReason overrides the routine status so
	// those cases are not mis-triaged as low priority.
	if statusText == "routine" {
		if reason := anyToString(normalized["emergencyReason"]); reason != "" {
			lower := strings.ToLower(reason)
			if !strings.Contains(lower, "n/a") && !strings.Contains(lower, "no emergency") && len(reason) > 5 {
				statusText = "emergency"
			}
		}
	}

	result.TriageLevel = mapLevel(statusText)

	span.SetAttributes(
		attribute.String("triage.level", string(result.TriageLevel)),
		attribute.String("triage.specialty", result.SpecialtyRecommendation),
	)
	return result
}

// resolveStatus picks the severity text by priority across the key
// aliases different workflow versions have used.
func resolveStatus(normalized map[string]any) string {
	for _, key := range []string{"triage_status", "status", "severity"} {
		if s := anyToString(normalized[key]); s != "" {
			return s
		}
	}
	return "routine"
}

// mapLevel buckets free-form status text into the canonical levels.
// Rules are checked in order; the emergency vocabulary wins over the
// urgent vocabulary.
func mapLevel(statusText string) TriageLevel {
	lower := strings.ToLower(statusText)
	switch {
	case strings.Contains(lower, "emergency"),
		strings.Contains(lower, "high"),
		strings.Contains(lower, "critical"):
		return LevelEmergency
	case strings.Contains(lower, "urgent"),
		strings.Contains(lower, "moderate"):
		return LevelUrgent
	default:
		return LevelRoutine
	}
}

func stringField(normalized map[string]any, key, fallback string) string {
	if s := anyToString(normalized[key]); s != "" {
		return s
	}
	return fallback
}

func anyToString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
