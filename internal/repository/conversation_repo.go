package repository

import (
	"sync"

	"github.com/Hasnain-011/emotion-driven-ai-chatbots/internal/models"
)

// DefaultConversationLimit keeps the last five user/assistant exchanges.
const DefaultConversationLimit = 10

// ConversationRepo is the process-wide conversation memory. It holds the
// most recent turns, oldest first, without the system instruction. When the
// limit is exceeded the oldest user/assistant pair is dropped.
type ConversationRepo struct {
	mu       sync.Mutex
	messages []models.ChatMessage
	limit    int
}

func NewConversationRepo(limit int) *ConversationRepo {
	if limit < 2 {
		limit = DefaultConversationLimit
	}
	// Eviction works in pairs.
	if limit%2 != 0 {
		limit++
	}
	return &ConversationRepo{
		messages: make([]models.ChatMessage, 0, limit+2),
		limit:    limit,
	}
}

// History returns a copy of the stored messages.
func (r *ConversationRepo) History() []models.ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.ChatMessage, len(r.messages))
	copy(out, r.messages)
	return out
}

// AppendExchange records one user message and the assistant reply, then
// trims the memory back to its limit.
func (r *ConversationRepo) AppendExchange(userText, assistantText string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages = append(r.messages,
		models.ChatMessage{Role: models.RoleUser, Content: userText},
		models.ChatMessage{Role: models.RoleAssistant, Content: assistantText},
	)

	for len(r.messages) > r.limit {
		r.messages = append(r.messages[:0], r.messages[2:]...)
	}
}

func (r *ConversationRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

func (r *ConversationRepo) Limit() int {
	return r.limit
}
