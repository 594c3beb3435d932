// Package embedding turns text into fixed-dimension vectors.
package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperjump/docchat/internal/models"
)

// Embedder produces vector embeddings for text. Implementations are deterministic for identical
// input and report any model failure wrapped in models.ErrEmbeddingUnavailable.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// unavailable wraps err so that errors.Is(err, models.ErrEmbeddingUnavailable) holds.
// Context cancellation is passed through untouched.
func unavailable(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, models.ErrEmbeddingUnavailable) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", models.ErrEmbeddingUnavailable, err)
}

// embedEach calls embed for every text, preserving order.
func embedEach(ctx context.Context, texts []string, embed func(context.Context, string) ([]float32, error)) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		emb, err := embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

func errBatchMismatch(want, got int) error {
	return fmt.Errorf("batch returned %d embeddings for %d texts", got, want)
}
