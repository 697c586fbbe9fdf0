package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Hasnain-011/emotion-driven-ai-chatbots/internal/logger"
	"github.com/Hasnain-011/emotion-driven-ai-chatbots/internal/models"
	"github.com/Hasnain-011/emotion-driven-ai-chatbots/internal/services"
)

type chatResponder interface {
	Respond(ctx context.Context, message string) services.ChatResult
}

type ChatHandler struct {
	chatService chatResponder
}

func NewChatHandler(chatService chatResponder) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat answers every request carrying a message string with 200, whichever
// backend produced the reply. Empty and blank messages are answered too.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if req.Message == nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Message is required", r))
		return
	}

	result := h.chatService.Respond(r.Context(), *req.Message)
	if result.Err != nil {
		slog.WarnContext(r.Context(), "chat answered without the online model",
			"source", string(result.Source), logger.Err(result.Err))
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{
		Reply:   result.Reply,
		Emotion: result.Emotion,
	})
}
