package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/Hasnain-011/emotion-driven-ai-chatbots/internal/models"
)

const DefaultGeminiModel = "gemini-2.0-flash"

const emotionInstruction = `You label the emotion of a chat message written by a user to an empathetic companion.
Reply with JSON containing one field "emotion" set to exactly one of: happy, sad, neutral, angry, fear, surprise, disgust.
Pick "neutral" when no emotion is clearly expressed.`

// GeminiEmotionDetector asks Gemini for a label constrained by a response
// schema enum.
type GeminiEmotionDetector struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiEmotionDetector(ctx context.Context, apiKey, modelName string) (*GeminiEmotionDetector, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)
	model.SystemInstruction = genai.NewUserContent(genai.Text(emotionInstruction))
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"emotion": {
				Type:   genai.TypeString,
				Format: "enum",
				Enum:   models.EmotionLabels,
			},
		},
		Required: []string{"emotion"},
	}

	return &GeminiEmotionDetector{client: client, model: model}, nil
}

func (d *GeminiEmotionDetector) Close() error {
	return d.client.Close()
}

func (d *GeminiEmotionDetector) Detect(ctx context.Context, text string) (string, error) {
	resp, err := d.model.GenerateContent(ctx, genai.Text(text))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	return parseEmotionJSON(extractText(resp))
}

func parseEmotionJSON(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var out struct {
		Emotion string `json:"emotion"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &out); err != nil {
		return "", fmt.Errorf("failed to parse emotion JSON: %w", err)
	}
	if out.Emotion == "" {
		return "", ErrNoEmotionMatch
	}
	return out.Emotion, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
