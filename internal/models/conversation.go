package models

import (
	"fmt"
	"time"
)

// Role identifies the author of a message.
type Role string

const (
	// RoleUser marks a question asked by the user.
	RoleUser Role = "user"
	// RoleAssistant marks a generated (or heuristic) answer.
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// RetrievalMode is the kind of index a conversation answers queries from.
type RetrievalMode string

const (
	// ModeVector ranks chunks by cosine similarity of embeddings.
	ModeVector RetrievalMode = "vector"
	// ModeLexical ranks chunks by token overlap; used once a conversation is degraded.
	ModeLexical RetrievalMode = "lexical"
)

// SourceReference links an answer to a chunk that informed it.
type SourceReference struct {
	ChunkID       string  `json:"chunk_id"`
	DocumentID    string  `json:"document_id"`
	OrderIndex    int     `json:"order_index"`
	Score         float64 `json:"score"`
	Snippet       string  `json:"snippet"`
	LowConfidence bool    `json:"low_confidence,omitempty"`
}

// Message is one turn of a conversation. Messages are never mutated after being appended.
type Message struct {
	ID        string            `json:"id"`
	Role      Role              `json:"role"`
	Content   string            `json:"content"`
	Timestamp time.Time         `json:"timestamp"`
	Sources   []SourceReference `json:"sources,omitempty"`
}

// Validate checks the message has a known role and non-empty content.
func (m *Message) Validate() error {
	if !m.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, m.Role)
	}
	if m.Content == "" {
		return fmt.Errorf("%w: message content is empty", ErrInvalidInput)
	}
	return nil
}

// Conversation is a read-only snapshot of one chat session.
type Conversation struct {
	ID         string        `json:"id"`
	CreatedAt  time.Time     `json:"created_at"`
	Documents  []*Document   `json:"documents"`
	Messages   []*Message    `json:"messages"`
	Mode       RetrievalMode `json:"mode"`
	Degraded   bool          `json:"degraded"`
	Generation uint64        `json:"generation"`
}

// HasDocuments reports whether at least one document has been uploaded.
func (c *Conversation) HasDocuments() bool {
	return len(c.Documents) > 0
}

// RecentMessages returns up to n of the latest messages in chronological order.
func (c *Conversation) RecentMessages(n int) []*Message {
	if n <= 0 || len(c.Messages) == 0 {
		return nil
	}
	if n > len(c.Messages) {
		n = len(c.Messages)
	}
	return c.Messages[len(c.Messages)-n:]
}

// LastAnswer returns the content of the most recent assistant message, if any.
func (c *Conversation) LastAnswer() (string, bool) {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleAssistant {
			return c.Messages[i].Content, true
		}
	}
	return "", false
}
