package indexer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/docchat/internal/models"
)

func reconstruct(spans []Span, overlap int) string {
	var b strings.Builder
	for i, sp := range spans {
		text := []rune(sp.Text)
		if i > 0 {
			text = text[overlap:]
		}
		b.WriteString(string(text))
	}
	return b.String()
}

func TestChunker_HardCutWindows(t *testing.T) {
	c, err := NewChunker(DefaultMaxLen, DefaultOverlap)
	require.NoError(t, err)

	text := strings.Repeat("x", 1200)
	spans := c.Spans(text)
	require.Len(t, spans, 3)
	assert.Equal(t, [2]int{0, 500}, [2]int{spans[0].Start, spans[0].End})
	assert.Equal(t, [2]int{400, 900}, [2]int{spans[1].Start, spans[1].End})
	assert.Equal(t, [2]int{800, 1200}, [2]int{spans[2].Start, spans[2].End})
	assert.Equal(t, text, reconstruct(spans, 100))
}

func TestChunker_PrefersSentenceEnd(t *testing.T) {
	c, err := NewChunker(40, 5)
	require.NoError(t, err)

	text := "The first sentence ends here. The second one runs on a little longer than that."
	spans := c.Spans(text)
	require.GreaterOrEqual(t, len(spans), 2)
	assert.Equal(t, "The first sentence ends here.", spans[0].Text)
	assert.Equal(t, text, reconstruct(spans, 5))
}

func TestChunker_IgnoresTerminatorWithoutWhitespace(t *testing.T) {
	c, err := NewChunker(20, 2)
	require.NoError(t, err)

	spans := c.Spans("version 1.2.3 of the tool is out now")
	require.NotEmpty(t, spans)
	assert.Equal(t, 20, len([]rune(spans[0].Text)))
}

func TestChunker_SkipsSentenceEndWithinOverlap(t *testing.T) {
	c, err := NewChunker(20, 10)
	require.NoError(t, err)

	// The only terminator leaves a 4 rune chunk, shorter than the overlap.
	spans := c.Spans("Hey. abcdefghijklmnopqrstuvwxyz")
	assert.Equal(t, 20, len([]rune(spans[0].Text)))
	assert.Equal(t, "Hey. abcdefghijklmnopqrstuvwxyz", reconstruct(spans, 10))
}

func TestChunker_ReconstructsText(t *testing.T) {
	texts := []string{
		strings.Repeat("Short sentence. ", 90),
		strings.Repeat("héllo wörld ", 150) + "Done! Really? Yes.",
		"tiny",
	}
	for _, overlap := range []int{0, 1, 50, 100} {
		c, err := NewChunker(200, overlap)
		require.NoError(t, err)
		for _, text := range texts {
			spans := c.Spans(text)
			assert.Equal(t, text, reconstruct(spans, overlap))
			for i, sp := range spans {
				assert.LessOrEqual(t, len([]rune(sp.Text)), 200)
				if i > 0 {
					assert.Equal(t, spans[i-1].End-overlap, sp.Start)
				}
			}
		}
	}
}

func TestChunker_Empty(t *testing.T) {
	c, err := NewChunker(10, 2)
	require.NoError(t, err)
	assert.Empty(t, c.Spans(""))
	assert.Nil(t, c.Chunk("d", ""))
}

func TestChunker_InvalidConfig(t *testing.T) {
	for _, tc := range [][2]int{{0, 0}, {-1, 0}, {10, 10}, {10, 11}, {10, -1}} {
		_, err := NewChunker(tc[0], tc[1])
		assert.ErrorIs(t, err, models.ErrInvalidChunkConfig, "%v", tc)
	}
}

func TestChunker_Chunk(t *testing.T) {
	c, err := NewChunker(10, 2)
	require.NoError(t, err)

	text := "abcdefghijklmnopqrstuvwxyz"
	chunks := c.Chunk("doc1", text)
	require.Len(t, chunks, 3)
	for i, ch := range chunks {
		assert.Equal(t, "doc1", ch.DocumentID)
		assert.Equal(t, i, ch.OrderIndex)
		assert.Equal(t, text[ch.StartOffset:ch.EndOffset], ch.Text)
		assert.False(t, ch.HasEmbedding())
	}
	assert.Equal(t, "doc1_0", chunks[0].ID)
	assert.Equal(t, "doc1_2", chunks[2].ID)
}

func TestPreprocess(t *testing.T) {
	assert.Equal(t, "a\nb\nc", Preprocess("\ufeffa\r\nb\rc\x00"))
}
