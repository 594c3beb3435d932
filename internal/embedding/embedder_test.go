package embedding

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/docchat/internal/config"
	"github.com/hyperjump/docchat/internal/models"
	"github.com/hyperjump/docchat/pkg/utils"
)

func cosine(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (utils.L2Norm(a) * utils.L2Norm(b))
}

func TestHashingEmbedder_DeterministicUnitVectors(t *testing.T) {
	e := NewHashingEmbedder(128)
	ctx := context.Background()
	a, err := e.Embed(ctx, "Refund policy: 30 days.")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "Refund policy: 30 days.")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 128)
	assert.InDelta(t, 1.0, utils.L2Norm(a), 1e-5)
}

func TestHashingEmbedder_SharedVocabularyScoresHigher(t *testing.T) {
	e := NewHashingEmbedder(4096)
	ctx := context.Background()
	q, _ := e.Embed(ctx, "what is the refund policy")
	related, _ := e.Embed(ctx, "The refund policy allows returns within 30 days")
	unrelated, _ := e.Embed(ctx, "Shipping takes five business days to Canada")
	assert.Greater(t, cosine(q, related), cosine(q, unrelated))
}

func TestHashingEmbedder_EmptyText(t *testing.T) {
	emb, err := NewHashingEmbedder(16).Embed(context.Background(), "  ... ")
	require.NoError(t, err)
	assert.Equal(t, 0.0, utils.L2Norm(emb))
}

func TestHashingEmbedder_BatchKeepsOrder(t *testing.T) {
	e := NewHashingEmbedder(32)
	ctx := context.Background()
	batch, err := e.EmbedBatch(ctx, []string{"one", "two"})
	require.NoError(t, err)
	one, _ := e.Embed(ctx, "one")
	two, _ := e.Embed(ctx, "two")
	assert.Equal(t, [][]float32{one, two}, batch)
}

func TestMockEmbedder(t *testing.T) {
	e := NewMockEmbedder(8)
	a, err := e.Embed(context.Background(), "x")
	require.NoError(t, err)
	assert.Len(t, a, 8)
	assert.InDelta(t, 1.0, utils.L2Norm(a), 1e-5)
	assert.Equal(t, 8, e.Dimensions())
}

func TestDisabledEmbedder(t *testing.T) {
	e := NewDisabledEmbedder("")
	_, err := e.Embed(context.Background(), "x")
	assert.ErrorIs(t, err, models.ErrEmbeddingUnavailable)
	_, err = e.EmbedBatch(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, models.ErrEmbeddingUnavailable)
}

func TestLazyEmbedder_RemembersLoadFailure(t *testing.T) {
	loads := 0
	e := NewLazyEmbedder(func() (Embedder, error) {
		loads++
		return nil, errors.New("model file missing")
	}, 384, nil)

	for i := 0; i < 3; i++ {
		_, err := e.Embed(context.Background(), "x")
		assert.ErrorIs(t, err, models.ErrEmbeddingUnavailable)
	}
	assert.Equal(t, 1, loads)
	assert.Equal(t, 384, e.Dimensions())
}

func TestLazyEmbedder_LoadsOnce(t *testing.T) {
	loads := 0
	e := NewLazyEmbedder(func() (Embedder, error) {
		loads++
		return NewMockEmbedder(4), nil
	}, 0, nil)
	_, err := e.Embed(context.Background(), "a")
	require.NoError(t, err)
	_, err = e.EmbedBatch(context.Background(), []string{"b", "c"})
	require.NoError(t, err)
	assert.Equal(t, 1, loads)
	assert.Equal(t, 4, e.Dimensions())
}

func TestUnavailable_PassesCancellation(t *testing.T) {
	assert.NoError(t, unavailable(nil))
	assert.Equal(t, context.Canceled, unavailable(context.Canceled))
	err := unavailable(errors.New("boom"))
	assert.ErrorIs(t, err, models.ErrEmbeddingUnavailable)
}

func TestNew_Providers(t *testing.T) {
	cases := []struct {
		provider string
		wantErr  bool
	}{
		{ProviderHashing, false},
		{ProviderMock, false},
		{ProviderNone, false},
		{ProviderONNX, false},
		{ProviderOpenAI, false},
		{"word2vec", true},
	}
	for _, tc := range cases {
		t.Run(tc.provider, func(t *testing.T) {
			cfg := config.EmbeddingConfig{Provider: tc.provider, Dimensions: 16, CacheSize: 4, MaxTokens: 16}
			emb, err := New(cfg, "", nil)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, emb)
		})
	}
}

func TestNew_OpenAIWithoutKeyDegrades(t *testing.T) {
	emb, err := New(config.EmbeddingConfig{Provider: ProviderOpenAI}, "", nil)
	require.NoError(t, err)
	_, err = emb.Embed(context.Background(), "hello")
	assert.ErrorIs(t, err, models.ErrEmbeddingUnavailable)
}

func TestNew_HashingIsCachedAndUsable(t *testing.T) {
	emb, err := New(config.EmbeddingConfig{Provider: ProviderHashing, Dimensions: 64, CacheSize: 8}, "", nil)
	require.NoError(t, err)
	v, err := emb.Embed(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Len(t, v, 64)
	assert.False(t, math.IsNaN(float64(v[0])))
}
