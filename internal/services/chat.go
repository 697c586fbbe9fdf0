package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"

	"github.com/Hasnain-011/emotion-driven-ai-chatbots/internal/logger"
	"github.com/Hasnain-011/emotion-driven-ai-chatbots/internal/models"
)

// User-facing replies for the offline path. They are returned instead of
// errors so the endpoint always answers.
const (
	OfflineNoResponseReply  = "I'm offline, but I'm here."
	OfflineUnreachableReply = "I am offline, and I cannot find the Ollama app running. Please open Ollama."
	OfflineErrorReply       = "Offline mode error."
)

// Source tells which path produced a reply.
type Source string

const (
	SourceOnline   Source = "online"
	SourceOffline  Source = "offline"
	SourceFallback Source = "fallback"
)

// ChatResult is the outcome of one chat turn. Reply and Emotion are always
// set. Err aggregates the backend failures seen on the way, if any.
type ChatResult struct {
	Reply   string
	Emotion string
	Source  Source
	Err     error
}

type emotionClassifier interface {
	Classify(ctx context.Context, text string) string
}

type onlineResponder interface {
	Complete(ctx context.Context, messages []models.ChatMessage) (string, error)
}

type offlineResponder interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type conversationMemory interface {
	History() []models.ChatMessage
	AppendExchange(userText, assistantText string)
}

// ChatService runs a chat turn: classify, try the hosted model with memory,
// fall back to the local model on any failure.
type ChatService struct {
	classifier emotionClassifier
	online     onlineResponder
	offline    offlineResponder
	memory     conversationMemory
}

func NewChatService(
	classifier emotionClassifier,
	online onlineResponder,
	offline offlineResponder,
	memory conversationMemory,
) *ChatService {
	return &ChatService{
		classifier: classifier,
		online:     online,
		offline:    offline,
		memory:     memory,
	}
}

func (s *ChatService) Respond(ctx context.Context, message string) ChatResult {
	emotion := s.classifier.Classify(ctx, message)
	slog.InfoContext(ctx, "chat message received", "emotion", emotion, "chars", len(message))

	reply, err := s.respondOnline(ctx, message, emotion)
	if err == nil {
		return ChatResult{Reply: reply, Emotion: emotion, Source: SourceOnline}
	}

	var errs *multierror.Error
	errs = multierror.Append(errs, fmt.Errorf("online: %w", err))
	slog.WarnContext(ctx, "online responder failed, switching to offline mode", logger.Err(err))

	reply, err = s.offline.Generate(ctx, BuildOfflinePrompt(emotion, message))
	if err == nil {
		return ChatResult{Reply: reply, Emotion: emotion, Source: SourceOffline, Err: errs.ErrorOrNil()}
	}

	errs = multierror.Append(errs, fmt.Errorf("offline: %w", err))
	slog.ErrorContext(ctx, "offline responder failed", logger.Err(err))

	return ChatResult{
		Reply:   offlineFailureReply(err),
		Emotion: emotion,
		Source:  SourceFallback,
		Err:     errs.ErrorOrNil(),
	}
}

func (s *ChatService) respondOnline(ctx context.Context, message, emotion string) (string, error) {
	history := s.memory.History()

	messages := make([]models.ChatMessage, 0, len(history)+2)
	messages = append(messages, models.ChatMessage{Role: models.RoleSystem, Content: OnlineSystemInstruction(emotion)})
	messages = append(messages, history...)
	messages = append(messages, models.ChatMessage{Role: models.RoleUser, Content: message})

	reply, err := s.online.Complete(ctx, messages)
	if err != nil {
		return "", err
	}

	// Offline replies are not remembered.
	s.memory.AppendExchange(message, reply)
	return reply, nil
}

func offlineFailureReply(err error) string {
	switch {
	case errors.Is(err, ErrOllamaNoResponse):
		return OfflineNoResponseReply
	case errors.Is(err, ErrOllamaStatus):
		return OfflineErrorReply
	default:
		return OfflineUnreachableReply
	}
}

// OnlineSystemInstruction is the system message sent to the hosted model.
func OnlineSystemInstruction(emotion string) string {
	return fmt.Sprintf("You are a warm, empathetic AI companion. User feeling: %s. Support them naturally. Keep it short.", emotion)
}

// BuildOfflinePrompt flattens the instruction and the user message into the
// single prompt string /api/generate expects.
func BuildOfflinePrompt(emotion, message string) string {
	system := fmt.Sprintf("You are a warm, empathetic AI. The user feels %s. Give a short, supportive answer.", emotion)
	return fmt.Sprintf("System: %s\nUser: %s\nAI:", system, message)
}
