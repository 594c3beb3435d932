package embedding

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/docchat/internal/models"
)

// LazyEmbedder defers loading a provider until the first call. A load failure is
// remembered: every later call fails with models.ErrEmbeddingUnavailable without retrying.
type LazyEmbedder struct {
	load       func() (Embedder, error)
	dimensions int
	logger     *zap.Logger

	mu     sync.Mutex
	loaded bool
	inner  Embedder
	err    error
}

// NewLazyEmbedder wraps load. dimensions is reported before the provider is loaded.
func NewLazyEmbedder(load func() (Embedder, error), dimensions int, logger *zap.Logger) *LazyEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LazyEmbedder{load: load, dimensions: dimensions, logger: logger}
}

func (e *LazyEmbedder) get() (Embedder, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loaded {
		return e.inner, e.err
	}
	e.loaded = true
	inner, err := e.load()
	if err != nil {
		e.err = fmt.Errorf("%w: load failed: %v", models.ErrEmbeddingUnavailable, err)
		e.logger.Warn("embedding model unavailable, falling back to lexical retrieval", zap.Error(err))
		return nil, e.err
	}
	e.inner = inner
	e.logger.Info("embedding model loaded", zap.Int("dimensions", inner.Dimensions()))
	return e.inner, nil
}

func (e *LazyEmbedder) loadedInner() Embedder {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inner
}

// Embed loads the provider if needed and embeds text.
func (e *LazyEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	inner, err := e.get()
	if err != nil {
		return nil, err
	}
	emb, err := inner.Embed(ctx, text)
	return emb, unavailable(err)
}

// EmbedBatch loads the provider if needed and embeds texts.
func (e *LazyEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	inner, err := e.get()
	if err != nil {
		return nil, err
	}
	embs, err := inner.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, unavailable(err)
	}
	if len(embs) != len(texts) {
		return nil, unavailable(errBatchMismatch(len(texts), len(embs)))
	}
	return embs, nil
}

// Dimensions returns the loaded provider's dimension, or the configured one before loading.
func (e *LazyEmbedder) Dimensions() int {
	if inner := e.loadedInner(); inner != nil {
		return inner.Dimensions()
	}
	return e.dimensions
}

// Close closes the provider if it was loaded.
func (e *LazyEmbedder) Close() error {
	if inner := e.loadedInner(); inner != nil {
		return inner.Close()
	}
	return nil
}
