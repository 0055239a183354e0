package nutrition

import (
	"time"

	"github.com/google/uuid"
)

// Sender identifies who wrote a chat message
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// GroundingSource is a web citation attached to a grounded reply
type GroundingSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// ChatMessage is one entry of the append-only chat log
type ChatMessage struct {
	ID        string            `json:"id"`
	Sender    Sender            `json:"sender"`
	Text      string            `json:"text"`
	Timestamp time.Time         `json:"timestamp"`
	Sources   []GroundingSource `json:"sources,omitempty"`
}

// NewChatMessage stamps a message with a fresh id and the given time
func NewChatMessage(sender Sender, text string, sources []GroundingSource, at time.Time) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		Timestamp: at,
		Sources:   sources,
	}
}

// LastMessages returns at most n trailing messages of history
func LastMessages(history []ChatMessage, n int) []ChatMessage {
	if n <= 0 {
		return nil
	}
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
