package embedding

import (
	"context"
	"fmt"

	"github.com/hyperjump/docchat/internal/models"
)

// DisabledEmbedder always fails with models.ErrEmbeddingUnavailable. It stands in when no model
// could be loaded, so every conversation runs in lexical mode.
type DisabledEmbedder struct {
	reason string
}

// NewDisabledEmbedder returns an embedder that reports reason on every call.
func NewDisabledEmbedder(reason string) *DisabledEmbedder {
	if reason == "" {
		reason = "embeddings disabled"
	}
	return &DisabledEmbedder{reason: reason}
}

// Embed always fails.
func (e *DisabledEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, fmt.Errorf("%w: %s", models.ErrEmbeddingUnavailable, e.reason)
}

// EmbedBatch always fails.
func (e *DisabledEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, fmt.Errorf("%w: %s", models.ErrEmbeddingUnavailable, e.reason)
}

// Dimensions is 0: nothing is ever produced.
func (e *DisabledEmbedder) Dimensions() int { return 0 }

// Close is a no-op.
func (e *DisabledEmbedder) Close() error { return nil }
