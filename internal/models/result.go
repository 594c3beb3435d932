package models

// UploadResponse acknowledges an uploaded document.
type UploadResponse struct {
	ConversationID string           `json:"conversation_id"`
	Message        string           `json:"message"`
	Metadata       DocumentMetadata `json:"metadata"`
	Degraded       bool             `json:"degraded,omitempty"`
	Notice         string           `json:"notice,omitempty"`
}

// ChatResponse is the complete answer to a question plus its provenance.
type ChatResponse struct {
	ConversationID string            `json:"conversation_id"`
	Answer         string            `json:"answer"`
	KeyPoints      []string          `json:"key_points"`
	Sources        []SourceReference `json:"sources"`
	Mode           RetrievalMode     `json:"mode,omitempty"`
	// Informational is set when the answer is a notice (no document, nothing relevant) rather
	// than an answer built from retrieved context.
	Informational bool `json:"informational,omitempty"`
	// Degraded is set when either retrieval fell back to lexical matching or the answer was
	// built heuristically because the generator was unavailable.
	Degraded       bool   `json:"degraded,omitempty"`
	DegradedReason string `json:"degraded_reason,omitempty"`
	Notice         string `json:"notice,omitempty"`
}

// ConversationInitResponse returns a freshly created conversation id.
type ConversationInitResponse struct {
	ConversationID string `json:"conversation_id"`
}
