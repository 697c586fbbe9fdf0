package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/samber/lo"

	"github.com/Hasnain-011/emotion-driven-ai-chatbots/internal/models"
)

const (
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"
	DefaultGroqModel   = "llama-3.3-70b-versatile"
)

var (
	ErrOnlineNotConfigured = errors.New("online responder has no API key")
	ErrOnlineEmptyReply    = errors.New("online responder returned no content")
)

// GroqService is the hosted chat-completion backend. Groq exposes an
// OpenAI-compatible API, so the go-openai client is pointed at its base URL.
type GroqService struct {
	api   *openai.Client
	model string
}

func NewGroqService(apiKey, baseURL, model string, timeout time.Duration) *GroqService {
	model, _ = lo.Coalesce(model, DefaultGroqModel)
	if apiKey == "" {
		return &GroqService{model: model}
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL, _ = lo.Coalesce(strings.TrimRight(baseURL, "/"), DefaultGroqBaseURL)
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &GroqService{
		api:   openai.NewClientWithConfig(cfg),
		model: model,
	}
}

func (s *GroqService) Model() string { return s.model }

// Complete sends the full message list and returns the first choice.
func (s *GroqService) Complete(ctx context.Context, messages []models.ChatMessage) (string, error) {
	if s.api == nil {
		return "", ErrOnlineNotConfigured
	}

	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: lo.Map(messages, func(m models.ChatMessage, _ int) openai.ChatCompletionMessage {
			return openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
		}),
	}

	resp, err := s.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("creating completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrOnlineEmptyReply
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", ErrOnlineEmptyReply
	}

	return content, nil
}
