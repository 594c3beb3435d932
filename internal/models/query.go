package models

import (
	"fmt"
	"strings"
)

// ChatRequest is a question asked within a conversation.
type ChatRequest struct {
	ConversationID string `json:"conversation_id"`
	Question       string `json:"question"`
}

// Validate trims the question and ensures both fields are set.
func (r *ChatRequest) Validate() error {
	r.ConversationID = strings.TrimSpace(r.ConversationID)
	r.Question = strings.TrimSpace(r.Question)
	if r.ConversationID == "" {
		return fmt.Errorf("%w: conversation_id is required", ErrInvalidInput)
	}
	if r.Question == "" {
		return ErrEmptyQuestion
	}
	return nil
}

// IndexQuery is what a chunk index is asked. Vector indices read Vector, lexical indices read Text.
type IndexQuery struct {
	Text   string
	Vector []float32
}

// ScoredChunk is a single index hit.
type ScoredChunk struct {
	Chunk *Chunk
	Score float64
}
