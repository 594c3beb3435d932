package vector

import (
	"context"
	"fmt"
	"sync"

	"github.com/hyperjump/docchat/internal/models"
	"github.com/hyperjump/docchat/internal/ranking"
)

// MemoryIndex is a brute-force cosine index over one conversation's chunks.
// The dimension is fixed by the first chunk added.
type MemoryIndex struct {
	dimensions int
	chunks     []*models.Chunk
	mu         sync.RWMutex
}

// NewMemoryIndex creates an empty index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

// Mode returns models.ModeVector.
func (m *MemoryIndex) Mode() models.RetrievalMode {
	return models.ModeVector
}

// Add stores chunks with their embeddings. Either every chunk is stored or none is: a chunk without
// an embedding, or whose embedding dimension differs from the index, rejects the whole batch.
func (m *MemoryIndex) Add(ctx context.Context, chunks []*models.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	dim := m.dimensions
	for _, c := range chunks {
		if !c.HasEmbedding() {
			return fmt.Errorf("chunk %s has no embedding", c.ID)
		}
		if dim == 0 {
			dim = len(c.Embedding)
		}
		if len(c.Embedding) != dim {
			return fmt.Errorf("chunk %s: vector dimension mismatch: got %d, expected %d", c.ID, len(c.Embedding), dim)
		}
	}
	m.dimensions = dim
	m.chunks = append(m.chunks, chunks...)
	return nil
}

// Search returns at most k chunks ranked by cosine similarity to query.Vector.
func (m *MemoryIndex) Search(ctx context.Context, query models.IndexQuery, k int) ([]models.ScoredChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.chunks) == 0 {
		return nil, nil
	}
	hits := make([]models.ScoredChunk, len(m.chunks))
	for i, c := range m.chunks {
		hits[i] = models.ScoredChunk{Chunk: c, Score: Cosine(query.Vector, c.Embedding)}
	}
	return ranking.TopN(hits, k), nil
}

// Size returns the number of indexed chunks.
func (m *MemoryIndex) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks)
}

// Dimensions returns the vector dimension, 0 while empty.
func (m *MemoryIndex) Dimensions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dimensions
}

// Close is a no-op for MemoryIndex.
func (m *MemoryIndex) Close() error {
	return nil
}
