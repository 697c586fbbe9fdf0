package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"
)

const (
	DefaultOllamaURL     = "http://localhost:11434"
	DefaultOllamaModel   = "phi3:mini"
	DefaultOllamaTimeout = 120 * time.Second

	ollamaGeneratePath = "/api/generate"
	ollamaTagsPath     = "/api/tags"
)

var (
	// ErrOllamaUnreachable covers connection failures, timeouts and
	// undecodable bodies.
	ErrOllamaUnreachable = errors.New("ollama unreachable")
	// ErrOllamaStatus is returned for any non-200 answer.
	ErrOllamaStatus = errors.New("ollama returned unexpected status")
	// ErrOllamaNoResponse means the body decoded but had no "response" field.
	ErrOllamaNoResponse = errors.New("ollama response field missing")
	// ErrOllamaModelMissing is reported by Ping when the model is not pulled.
	ErrOllamaModelMissing = errors.New("ollama model not available")
)

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Model    string  `json:"model"`
	Response *string `json:"response"`
	Done     bool    `json:"done"`
}

type ollamaModelInfo struct {
	Name string `json:"name"`
}

type ollamaTagsResponse struct {
	Models []ollamaModelInfo `json:"models"`
}

// OllamaService talks to a locally running Ollama server. It is only used
// after the hosted responder has failed.
type OllamaService struct {
	endpoint   string
	model      string
	httpClient *http.Client
}

func NewOllamaService(endpoint, model string, timeout time.Duration) *OllamaService {
	endpoint, _ = lo.Coalesce(strings.TrimRight(endpoint, "/"), DefaultOllamaURL)
	model, _ = lo.Coalesce(model, DefaultOllamaModel)
	timeout, _ = lo.Coalesce(timeout, DefaultOllamaTimeout)

	return &OllamaService{
		endpoint:   endpoint,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *OllamaService) Model() string    { return s.model }
func (s *OllamaService) Endpoint() string { return s.endpoint }

// Generate sends a single non-streaming prompt to /api/generate.
func (s *OllamaService) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ollamaGenerateRequest{
		Model:  s.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+ollamaGeneratePath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	slog.DebugContext(ctx, "sending prompt to ollama", "endpoint", s.endpoint, "model", s.model)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOllamaUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: %d %s", ErrOllamaStatus, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var parsed ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrOllamaUnreachable, err)
	}
	if parsed.Response == nil {
		return "", ErrOllamaNoResponse
	}

	return *parsed.Response, nil
}

// Ping checks that the server answers and that the configured model has
// been pulled.
func (s *OllamaService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+ollamaTagsPath, nil)
	if err != nil {
		return fmt.Errorf("failed to create ollama request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w at %s (start with: ollama serve): %v", ErrOllamaUnreachable, s.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrOllamaStatus, resp.StatusCode)
	}

	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return fmt.Errorf("%w: decoding tags: %v", ErrOllamaUnreachable, err)
	}

	found := lo.ContainsBy(tags.Models, func(m ollamaModelInfo) bool {
		return m.Name == s.model
	})
	if !found {
		return fmt.Errorf("%w: %s (pull with: ollama pull %s)", ErrOllamaModelMissing, s.model, s.model)
	}
	return nil
}
