// Package guidance decomposes the triage pipeline's opaque guidance
// string into named, presentable sections. The input is either a
// JSON-encoded structured object or free text; rendering never fails,
// it degrades to a single free-text block.
package guidance

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Section ids in display order. The vocabulary is fixed; unrecognized
// top-level keys are discarded.
const (
	SectionDiagnosis        = "diagnosis"
	SectionSeverity         = "severity"
	SectionGeneralWellness  = "generalWellness"
	SectionHomeRemedies     = "homeRemedies"
	SectionHerbalTreatments = "herbalTreatments"
	SectionDiet             = "diet"
	SectionExercise         = "exercise"
	SectionYoga             = "yoga"
	SectionLifestyleChanges = "lifestyleChanges"
	SectionFirstAid         = "firstAid"
	SectionEmergencyReason  = "emergencyReason"
)

// generalWellnessAlias is the label variant some workflow versions emit
// instead of the camelCase key.
const generalWellnessAlias = "General wellness tips"

var sectionOrder = []string{
	SectionDiagnosis,
	SectionSeverity,
	SectionGeneralWellness,
	SectionHomeRemedies,
	SectionHerbalTreatments,
	SectionDiet,
	SectionExercise,
	SectionYoga,
	SectionLifestyleChanges,
	SectionFirstAid,
	SectionEmergencyReason,
}

// ContentKind tags how a section's value should be presented.
type ContentKind string

const (
	KindParagraph ContentKind = "paragraph"
	KindList      ContentKind = "list"
	// KindNone marks a list-typed section with zero elements, shown as
	// an explicit "None" rather than an empty block.
	KindNone ContentKind = "none"
)

// Content is a section's display-ready value.
type Content struct {
	Kind  ContentKind `json:"kind"`
	Text  string      `json:"text,omitempty"`
	Items []string    `json:"items,omitempty"`
}

// Section pairs a section id with its content.
type Section struct {
	ID      string  `json:"id"`
	Content Content `json:"content"`
}

// SeverityBand is the presentation-only severity classification. It
// does not feed back into the triage classifier.
type SeverityBand string

const (
	BandHigh     SeverityBand = "high"
	BandModerate SeverityBand = "moderate"
	BandLow      SeverityBand = "low"
)

// Result is the tagged outcome of rendering: either structured
// sections or a single free-text block.
type Result struct {
	Structured   bool         `json:"structured"`
	General      string       `json:"general,omitempty"`
	Sections     []Section    `json:"sections,omitempty"`
	SeverityBand SeverityBand `json:"severity_band,omitempty"`
}

// Render parses guidanceText as JSON and decomposes it into sections.
// Input that is not a JSON object comes back as free text under
// General with no sections.
func Render(guidanceText string) *Result {
	var parsed any
	if err := json.Unmarshal([]byte(guidanceText), &parsed); err != nil {
		return &Result{General: guidanceText}
	}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return &Result{General: guidanceText}
	}

	result := &Result{Structured: true}
	for _, id := range sectionOrder {
		value, present := obj[id]
		if !present && id == SectionGeneralWellness {
			value, present = obj[generalWellnessAlias]
		}
		if !present || !displayable(id, value) {
			continue
		}
		content, ok := shapeContent(value)
		if !ok {
			continue
		}
		result.Sections = append(result.Sections, Section{ID: id, Content: content})
		if id == SectionSeverity {
			result.SeverityBand = ClassifySeverity(content.Text)
		}
	}

	if !result.hasSection(SectionGeneralWellness) {
		for _, key := range []string{"response", "summary", "intro"} {
			if s, ok := obj[key].(string); ok && s != "" {
				result.General = s
				break
			}
		}
	}
	return result
}

// ClassifySeverity buckets a severity string into a display band by
// substring match; anything unrecognized lands in the lowest band.
func ClassifySeverity(severity string) SeverityBand {
	lower := strings.ToLower(severity)
	switch {
	case strings.Contains(lower, "high"):
		return BandHigh
	case strings.Contains(lower, "moderate"):
		return BandModerate
	default:
		return BandLow
	}
}

func (r *Result) hasSection(id string) bool {
	for _, s := range r.Sections {
		if s.ID == id {
			return true
		}
	}
	return false
}

// displayable filters out placeholder values the workflow emits for
// sections it has nothing to say about.
func displayable(id string, value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		if v == "" || v == "N/A" || v == "None" || v == "null" {
			return false
		}
		if id == SectionEmergencyReason && strings.Contains(strings.ToLower(v), "no emergency") {
			return false
		}
		return true
	case bool:
		return v
	default:
		return true
	}
}

func shapeContent(value any) (Content, bool) {
	switch v := value.(type) {
	case []any:
		if len(v) == 0 {
			return Content{Kind: KindNone}, true
		}
		items := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				items = append(items, s)
			} else {
				items = append(items, fmt.Sprint(item))
			}
		}
		return Content{Kind: KindList, Items: items}, true
	case string:
		if strings.Contains(v, "\n") {
			var items []string
			for _, line := range strings.Split(v, "\n") {
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				items = append(items, strings.TrimPrefix(line, "- "))
			}
			return Content{Kind: KindList, Items: items}, true
		}
		return Content{Kind: KindParagraph, Text: v}, true
	default:
		return Content{Kind: KindParagraph, Text: fmt.Sprint(v)}, true
	}
}
