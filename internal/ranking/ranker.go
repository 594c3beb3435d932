// Package ranking orders index hits and annotates their confidence.
package ranking

import (
	"sort"

	"github.com/hyperjump/docchat/internal/models"
)

// Sort orders hits by descending score, then ascending chunk OrderIndex. The sort is stable,
// so hits produced in insertion order keep that order on a full tie.
func Sort(hits []models.ScoredChunk) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Chunk.OrderIndex < hits[j].Chunk.OrderIndex
	})
}

// TopN sorts hits and returns at most n of them.
func TopN(hits []models.ScoredChunk, n int) []models.ScoredChunk {
	Sort(hits)
	if n < 0 {
		n = 0
	}
	if n >= len(hits) {
		return hits
	}
	return hits[:n]
}

// FilterByMinScore drops hits scoring at or below minScore.
func FilterByMinScore(hits []models.ScoredChunk, minScore float64) []models.ScoredChunk {
	filtered := make([]models.ScoredChunk, 0, len(hits))
	for _, h := range hits {
		if h.Score > minScore {
			filtered = append(filtered, h)
		}
	}
	return filtered
}

// LowConfidence reports whether a vector score falls below the similarity threshold.
// Lexical scores are never flagged: they already exclude non-matching chunks.
func LowConfidence(mode models.RetrievalMode, score, minSimilarity float64) bool {
	return mode == models.ModeVector && score < minSimilarity
}
