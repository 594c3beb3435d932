package vector

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/docchat/internal/models"
)

func chunk(id string, order int, emb ...float32) *models.Chunk {
	return &models.Chunk{ID: id, DocumentID: "doc", OrderIndex: order, Text: id, Embedding: emb}
}

func TestMemoryIndex_AddAndSearch(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, []*models.Chunk{
		chunk("x", 0, 1, 0, 0),
		chunk("y", 1, 0, 1, 0),
		chunk("xy", 2, 1, 1, 0),
	}))
	assert.Equal(t, 3, idx.Size())
	assert.Equal(t, 3, idx.Dimensions())
	assert.Equal(t, models.ModeVector, idx.Mode())

	hits, err := idx.Search(ctx, models.IndexQuery{Vector: []float32{1, 0, 0}}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "x", hits[0].Chunk.ID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
	assert.Equal(t, "xy", hits[1].Chunk.ID)
	assert.InDelta(t, 1/math.Sqrt2, hits[1].Score, 1e-6)
}

func TestMemoryIndex_TieBreakByOrderIndex(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, []*models.Chunk{
		chunk("late", 7, 1, 0),
		chunk("early", 3, 1, 0),
	}))
	hits, err := idx.Search(ctx, models.IndexQuery{Vector: []float32{2, 0}}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "early", hits[0].Chunk.ID)
	assert.Equal(t, "late", hits[1].Chunk.ID)
}

func TestMemoryIndex_RejectsBadBatchAtomically(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, []*models.Chunk{chunk("a", 0, 1, 0)}))

	err := idx.Add(ctx, []*models.Chunk{chunk("b", 1, 0, 1), chunk("c", 2, 1, 0, 0)})
	require.Error(t, err)
	err = idx.Add(ctx, []*models.Chunk{chunk("d", 3)})
	require.Error(t, err)
	assert.Equal(t, 1, idx.Size())
}

func TestMemoryIndex_EmptyAndZeroK(t *testing.T) {
	idx := NewMemoryIndex()
	hits, err := idx.Search(context.Background(), models.IndexQuery{Vector: []float32{1}}, 3)
	require.NoError(t, err)
	assert.Empty(t, hits)

	require.NoError(t, idx.Add(context.Background(), []*models.Chunk{chunk("a", 0, 1)}))
	hits, err = idx.Search(context.Background(), models.IndexQuery{Vector: []float32{1}}, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestMemoryIndex_MismatchedQueryScoresZero(t *testing.T) {
	idx := NewMemoryIndex()
	require.NoError(t, idx.Add(context.Background(), []*models.Chunk{chunk("a", 0, 1, 0)}))
	hits, err := idx.Search(context.Background(), models.IndexQuery{Vector: []float32{1, 0, 0}}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 0.0, hits[0].Score)
}
