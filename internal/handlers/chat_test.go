package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Hasnain-011/emotion-driven-ai-chatbots/internal/models"
	"github.com/Hasnain-011/emotion-driven-ai-chatbots/internal/services"
)

type stubChatService struct {
	result services.ChatResult

	called      bool
	lastMessage string
}

func (s *stubChatService) Respond(ctx context.Context, message string) services.ChatResult {
	s.called = true
	s.lastMessage = message
	return s.result
}

func TestChatHandler_ReturnsReplyAndEmotion(t *testing.T) {
	svc := &stubChatService{result: services.ChatResult{
		Reply:   "That sounds really hard. I'm here for you.",
		Emotion: "sad",
		Source:  services.SourceOnline,
	}}
	h := NewChatHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"I lost my job today"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	h.Chat(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if svc.lastMessage != "I lost my job today" {
		t.Fatalf("unexpected message passed to service: %q", svc.lastMessage)
	}

	var payload models.ChatResponse
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Reply != svc.result.Reply || payload.Emotion != "sad" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestChatHandler_TotalBackendFailureStillOK(t *testing.T) {
	svc := &stubChatService{result: services.ChatResult{
		Reply:   services.OfflineUnreachableReply,
		Emotion: "neutral",
		Source:  services.SourceFallback,
		Err:     errors.New("online: no key; offline: connection refused"),
	}}
	h := NewChatHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hello?"}`))
	rr := httptest.NewRecorder()

	h.Chat(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["reply"] != services.OfflineUnreachableReply {
		t.Fatalf("unexpected reply: %v", payload["reply"])
	}
	if payload["emotion"] != "neutral" {
		t.Fatalf("expected emotion to be present, got %v", payload["emotion"])
	}
	if _, leaked := payload["error"]; leaked {
		t.Fatalf("backend errors must not be surfaced to the client")
	}
}

func TestChatHandler_InvalidRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"message":`},
		{"wrong type", `{"message": 42}`},
		{"missing message", `{}`},
		{"null message", `{"message": null}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubChatService{}
			h := NewChatHandler(svc)

			req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(tc.body))
			req.Header.Set("X-Request-ID", "req-42")
			rr := httptest.NewRecorder()

			h.Chat(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
			}
			if svc.called {
				t.Fatalf("service should not be called for invalid input")
			}

			var payload models.ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if payload.Error.Code != "VALIDATION_ERROR" || payload.Error.RequestID != "req-42" {
				t.Fatalf("unexpected error payload: %+v", payload.Error)
			}
		})
	}
}

func TestChatHandler_BlankMessagesAreAnswered(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty message", `{"message":""}`, ""},
		{"whitespace message", `{"message":"   "}`, "   "},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubChatService{result: services.ChatResult{
				Reply:   "I'm here whenever you want to talk.",
				Emotion: "neutral",
				Source:  services.SourceOnline,
			}}
			h := NewChatHandler(svc)

			rr := httptest.NewRecorder()
			h.Chat(rr, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(tc.body)))

			if rr.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
			}
			if !svc.called || svc.lastMessage != tc.want {
				t.Fatalf("expected service to get %q, called=%v got %q", tc.want, svc.called, svc.lastMessage)
			}

			var payload map[string]interface{}
			if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if payload["reply"] == nil || payload["emotion"] == nil {
				t.Fatalf("expected reply and emotion, got %v", payload)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}
