// Package ai wraps the Gemini API behind the narrow multimodal surface
// the symptom checker needs: image findings, document analysis, audio
// transcription, and follow-up question generation.
package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Off-topic and unusable inputs come back as these sentinels so
// handlers can swap in user-facing copy instead of raw model output.
const (
	sentinelOffTopic        = "OFF_TOPIC"
	sentinelInvalidDocument = "INVALID_DOCUMENT"

	// RefusalMessage is shown when the model declines a request that
	// falls outside symptom checking.
	RefusalMessage = "I am a symptoms checker designed to help you understand your disease and symptoms. I cannot help you with other matters."
)

// RefusalError reports that the model declined an off-topic request.
type RefusalError struct {
	Reason string
}

func (e *RefusalError) Error() string {
	return "ai: request refused: " + e.Reason
}

// IsRefusal reports whether err is a model refusal.
func IsRefusal(err error) bool {
	var re *RefusalError
	return errors.As(err, &re)
}

// fallbackQuestions is served when question generation fails; the
// intake flow must never stall on the model.
var fallbackQuestions = []string{
	"How long have you been experiencing these symptoms?",
	"On a scale of 1 to 10, how severe is your discomfort?",
	"Have you taken any medication for this?",
	"Do you have any known allergies or chronic conditions?",
	"Have the symptoms been getting better, worse, or staying the same?",
}

// Client is the Gemini-backed extractor.
type Client struct {
	client  *genai.Client
	modelID string
	ttsID   string
}

// NewClient creates the Gemini client.
func NewClient(ctx context.Context, apiKey, modelID, ttsID string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("ai: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}
	if strings.TrimSpace(ttsID) == "" {
		ttsID = "gemini-2.5-flash-preview-tts"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("ai: failed to create gemini client: %w", err)
	}
	return &Client{client: client, modelID: modelID, ttsID: ttsID}, nil
}

// Close releases resources held by the underlying client.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// ExtractImageFindings describes the medically relevant content of a
// symptom photo. Non-medical images come back as a refusal.
func (c *Client) ExtractImageFindings(ctx context.Context, imageBase64, mimeType string) (string, error) {
	prompt := "You are a medical triage assistant. Describe the visible symptoms or findings in this image in 2-3 clinical sentences. " +
		"If the image has no medical relevance, reply with exactly " + sentinelOffTopic + "."

	text, err := c.generateWithBlob(ctx, prompt, imageBase64, mimeType)
	if err != nil {
		return "", err
	}
	if strings.Contains(text, sentinelOffTopic) {
		return "", &RefusalError{Reason: "image is not medically relevant"}
	}
	return text, nil
}

// AnalyzeMedicalDocument extracts the clinically relevant text of a lab
// report or prescription. Unreadable or unrelated documents come back
// as a refusal.
func (c *Client) AnalyzeMedicalDocument(ctx context.Context, docBase64, mimeType string) (string, error) {
	prompt := "Extract the medically relevant content of this document (test names, values, reference ranges, medications, dosages) as plain text. " +
		"If the document is unreadable or not a medical document, reply with exactly " + sentinelInvalidDocument + "."

	text, err := c.generateWithBlob(ctx, prompt, docBase64, mimeType)
	if err != nil {
		return "", err
	}
	if strings.Contains(text, sentinelInvalidDocument) {
		return "", &RefusalError{Reason: "document is not a readable medical document"}
	}
	return text, nil
}

// TranscribeAudio turns a recorded symptom description into text. The
// recorder always produces webm, so the mime type is fixed.
func (c *Client) TranscribeAudio(ctx context.Context, audioBase64 string) (string, error) {
	prompt := "Transcribe this audio recording of a patient describing their symptoms. Return only the transcription."
	return c.generateWithBlob(ctx, prompt, audioBase64, "audio/webm")
}

// FollowUpQuestions generates up to five clarifying questions for the
// given symptom description. Failures fall back to a canned set.
func (c *Client) FollowUpQuestions(ctx context.Context, symptomText string) ([]string, error) {
	prompt := fmt.Sprintf(
		"A patient reports: %q. Generate at most 5 short follow-up questions a triage nurse would ask, one per line, no numbering.",
		symptomText,
	)

	text, err := c.generateText(ctx, prompt)
	if err != nil {
		return fallbackQuestions, nil
	}

	var questions []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*0123456789. "))
		if line == "" {
			continue
		}
		questions = append(questions, line)
		if len(questions) == 5 {
			break
		}
	}
	if len(questions) == 0 {
		return fallbackQuestions, nil
	}
	return questions, nil
}

// Speak synthesizes the guidance text as audio and returns the raw
// audio bytes.
func (c *Client) Speak(ctx context.Context, text string) ([]byte, error) {
	model := c.client.GenerativeModel(c.ttsID)
	resp, err := model.GenerateContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("ai: speech synthesis failed: %w", err)
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if blob, ok := part.(genai.Blob); ok {
				return blob.Data, nil
			}
		}
	}
	return nil, errors.New("ai: speech synthesis returned no audio")
}

func (c *Client) generateWithBlob(ctx context.Context, prompt, dataBase64, mimeType string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(stripDataURL(dataBase64))
	if err != nil {
		return "", fmt.Errorf("ai: decode media payload: %w", err)
	}

	model := c.client.GenerativeModel(c.modelID)
	resp, err := model.GenerateContent(ctx,
		genai.Text(prompt),
		genai.Blob{MIMEType: mimeType, Data: data},
	)
	if err != nil {
		return "", fmt.Errorf("ai: generation failed: %w", err)
	}
	return responseText(resp)
}

func (c *Client) generateText(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.modelID)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("ai: generation failed: %w", err)
	}
	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", errors.New("ai: gemini returned no candidates")
	}
	cand := resp.Candidates[0]
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		return "", errors.New("ai: gemini returned empty content")
	}
	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// stripDataURL drops a "data:<mime>;base64," prefix when the browser
// sends one.
func stripDataURL(s string) string {
	if idx := strings.Index(s, "base64,"); idx >= 0 && strings.HasPrefix(s, "data:") {
		return s[idx+len("base64,"):]
	}
	return s
}
