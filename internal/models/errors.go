package models

import "errors"

// Domain errors. Callers wrap them with context and test with errors.Is.
var (
	// ErrConversationNotFound indicates an unknown or expired conversation id.
	// It is surfaced to the client and never auto-recovered.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrConversationReset indicates the conversation was reset while an operation was in flight.
	ErrConversationReset = errors.New("conversation was reset")

	// ErrEmbeddingUnavailable indicates the embedding model cannot be loaded or invoked.
	// Retrieval degrades to lexical matching.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrUnsupportedFileType indicates an upload with an extension we cannot extract.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrFileTooLarge indicates an upload above the configured size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrEmptyDocument indicates a document without any text to chunk.
	ErrEmptyDocument = errors.New("document contains no text")

	// ErrGeneratorTimeout indicates the language model did not answer in time.
	ErrGeneratorTimeout = errors.New("generator timed out")

	// ErrGeneratorFailure indicates the language model call failed.
	ErrGeneratorFailure = errors.New("generator failed")

	// ErrGeneratorUnavailable indicates no language model is configured.
	ErrGeneratorUnavailable = errors.New("generator not configured")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyQuestion indicates a chat request without a question.
	ErrEmptyQuestion = errors.New("question cannot be empty")

	// ErrInvalidTopK indicates a retrieval request asking for fewer than one chunk.
	ErrInvalidTopK = errors.New("top-k must be at least 1")

	// ErrInvalidChunkConfig indicates chunk size and overlap that cannot make progress.
	ErrInvalidChunkConfig = errors.New("invalid chunk configuration")
)
