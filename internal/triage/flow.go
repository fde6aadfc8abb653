package triage

import (
	"context"
	"fmt"
	"strings"
)

// Extractor is the AI layer that turns voice/image input into symptom
// text and proposes follow-up questions. Implemented by internal/ai.
type Extractor interface {
	ExtractImageFindings(ctx context.Context, base64Image, mimeType string) (string, error)
	TranscribeAudio(ctx context.Context, base64Audio string) (string, error)
	FollowUpQuestions(ctx context.Context, symptoms string) ([]string, error)
}

// Flow orchestrates the multi-step symptom intake: extract text from
// the visitor's input, ask follow-up questions, then submit the
// combined description to the triage service.
type Flow struct {
	ai     Extractor
	triage *Service
}

// NewFlow creates a symptom intake flow.
func NewFlow(ai Extractor, triage *Service) *Flow {
	return &Flow{ai: ai, triage: triage}
}

// Intake is the first step's outcome: the symptom text distilled from
// the input plus the follow-up questions to put to the visitor.
type Intake struct {
	SymptomText string   `json:"symptom_text"`
	Questions   []string `json:"questions"`
}

// Prepare distills the input to symptom text and generates follow-up
// questions. Refusal errors from the extraction layer propagate as-is
// so the caller can show the off-topic message.
func (f *Flow) Prepare(ctx context.Context, inputType InputType, data string) (*Intake, error) {
	text := data
	var err error
	switch inputType {
	case InputVoice:
		text, err = f.ai.TranscribeAudio(ctx, data)
	case InputImage:
		text, err = f.ai.ExtractImageFindings(ctx, data, "image/jpeg")
	}
	if err != nil {
		return nil, err
	}

	questions, err := f.ai.FollowUpQuestions(ctx, text)
	if err != nil {
		return nil, err
	}
	return &Intake{SymptomText: text, Questions: questions}, nil
}

// Submit combines the symptom text with answered follow-ups and runs
// the triage pipeline. The final submission is always text, matching
// how the intake form flattens voice/image input.
func (f *Flow) Submit(ctx context.Context, symptomText string, questions, answers []string) *SymptomResponse {
	var b strings.Builder
	b.WriteString(symptomText)
	if len(questions) > 0 {
		b.WriteString("\n\nFollow-up details:\n")
		for i, q := range questions {
			answer := "Not answered"
			if i < len(answers) && strings.TrimSpace(answers[i]) != "" {
				answer = answers[i]
			}
			fmt.Fprintf(&b, "Q: %s\nA: %s\n", q, answer)
		}
	}
	return f.triage.Analyze(ctx, InputText, b.String())
}
