package embedding

import (
	"context"

	"github.com/hyperjump/docchat/pkg/utils"
)

// DefaultHashingDimensions is the vector size of the hashing embedder when none is configured.
const DefaultHashingDimensions = 512

// HashingEmbedder is an offline bag-of-words embedder. Tokens and adjacent token bigrams are
// hashed into a fixed number of signed buckets and the result is L2-normalised, so texts that
// share vocabulary get a positive cosine similarity.
type HashingEmbedder struct {
	dimensions int
}

// NewHashingEmbedder returns a hashing embedder with the given number of buckets.
func NewHashingEmbedder(dimensions int) *HashingEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultHashingDimensions
	}
	return &HashingEmbedder{dimensions: dimensions}
}

// Embed hashes text into a unit vector. Text without tokens yields the zero vector.
func (e *HashingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	emb := make([]float32, e.dimensions)
	tokens := utils.Tokenize(text)
	for i, tok := range tokens {
		e.add(emb, tok, 1)
		if i > 0 {
			e.add(emb, tokens[i-1]+" "+tok, 0.5)
		}
	}
	utils.NormalizeL2(emb)
	return emb, nil
}

func (e *HashingEmbedder) add(emb []float32, feature string, weight float32) {
	h := HashString(feature)
	bucket := h % e.dimensions
	if (h/e.dimensions)%2 == 1 {
		weight = -weight
	}
	emb[bucket] += weight
}

// EmbedBatch calls Embed for each text.
func (e *HashingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, texts, e.Embed)
}

// Dimensions returns the number of buckets.
func (e *HashingEmbedder) Dimensions() int { return e.dimensions }

// Close is a no-op.
func (e *HashingEmbedder) Close() error { return nil }
