package models

// Message roles accepted by the chat-completion APIs.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the chat endpoint. Message is a pointer
// so a missing field can be told apart from an empty string.
type ChatRequest struct {
	Message *string `json:"message"`
}

// ChatResponse is the reply from the chat endpoint, tagged with the
// emotion detected in the user's message.
type ChatResponse struct {
	Reply   string `json:"reply"`
	Emotion string `json:"emotion"`
}
