package conversation

import (
	"context"
	"fmt"

	"github.com/hyperjump/docchat/internal/keyword"
	"github.com/hyperjump/docchat/internal/models"
	"github.com/hyperjump/docchat/internal/vector"
)

// ChunkIndex is the retrieval contract shared by the vector and lexical indices.
// Search returns at most k hits ordered by descending score, ties by ascending OrderIndex
// then insertion order. Scores of different index kinds are never compared.
type ChunkIndex interface {
	Mode() models.RetrievalMode
	Add(ctx context.Context, chunks []*models.Chunk) error
	Search(ctx context.Context, query models.IndexQuery, k int) ([]models.ScoredChunk, error)
	Size() int
	Close() error
}

// IndexFactory creates an empty index of the given mode.
type IndexFactory func(mode models.RetrievalMode) (ChunkIndex, error)

// DefaultIndexFactory builds vector.MemoryIndex and keyword.LexicalIndex.
func DefaultIndexFactory(mode models.RetrievalMode) (ChunkIndex, error) {
	switch mode {
	case models.ModeVector:
		return vector.NewMemoryIndex(), nil
	case models.ModeLexical:
		return keyword.NewLexicalIndex()
	default:
		return nil, fmt.Errorf("unknown retrieval mode %q", mode)
	}
}
