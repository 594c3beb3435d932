// Package indexer turns extracted document text into chunked, embedded documents.
package indexer

import (
	"fmt"
	"unicode"

	"github.com/hyperjump/docchat/internal/models"
)

// Default chunk geometry, in characters.
const (
	DefaultMaxLen  = 500
	DefaultOverlap = 100
)

// Span is a chunk candidate: its text and rune offsets into the source (end exclusive).
type Span struct {
	Text  string
	Start int
	End   int
}

// Chunker splits text into overlapping character windows that prefer to end on a sentence.
type Chunker struct {
	maxLen  int
	overlap int
}

// NewChunker creates a chunker with the given window size and overlap (in characters).
// maxLen must be positive and overlap must be in [0, maxLen).
func NewChunker(maxLen, overlap int) (*Chunker, error) {
	if maxLen <= 0 || overlap < 0 || overlap >= maxLen {
		return nil, fmt.Errorf("%w: max_len=%d overlap=%d", models.ErrInvalidChunkConfig, maxLen, overlap)
	}
	return &Chunker{maxLen: maxLen, overlap: overlap}, nil
}

// MaxLen returns the window size.
func (c *Chunker) MaxLen() int { return c.maxLen }

// Overlap returns the number of characters shared by consecutive chunks.
func (c *Chunker) Overlap() int { return c.overlap }

// Spans splits text into ordered spans. Every span after the first starts exactly Overlap
// characters before the previous span ends, so dropping that prefix and concatenating the spans
// yields text again. Empty text yields no spans.
func (c *Chunker) Spans(text string) []Span {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}
	spans := make([]Span, 0, n/(c.maxLen-c.overlap)+1)
	start := 0
	for {
		if n-start <= c.maxLen {
			spans = append(spans, Span{Text: string(runes[start:]), Start: start, End: n})
			return spans
		}
		end := c.sentenceEnd(runes, start)
		if end < 0 {
			end = start + c.maxLen
		}
		spans = append(spans, Span{Text: string(runes[start:end]), Start: start, End: end})
		start = end - c.overlap
	}
}

// sentenceEnd returns the offset just past the last sentence terminator inside the window
// starting at start, or -1. A terminator is '.', '?' or '!' followed by whitespace. The
// resulting chunk must be longer than the overlap so the next window moves forward.
func (c *Chunker) sentenceEnd(runes []rune, start int) int {
	limit := start + c.maxLen
	for i := limit - 1; i > start; i-- {
		end := i + 1
		if end-start <= c.overlap {
			return -1
		}
		switch runes[i] {
		case '.', '?', '!':
			if end < len(runes) && unicode.IsSpace(runes[end]) {
				return end
			}
		}
	}
	return -1
}

// Chunk splits text into chunks owned by docID, numbered from 0 in document order.
func (c *Chunker) Chunk(docID, text string) []*models.Chunk {
	spans := c.Spans(text)
	if len(spans) == 0 {
		return nil
	}
	chunks := make([]*models.Chunk, len(spans))
	for i, sp := range spans {
		chunks[i] = &models.Chunk{
			ID:          fmt.Sprintf("%s_%d", docID, i),
			DocumentID:  docID,
			Text:        sp.Text,
			StartOffset: sp.Start,
			EndOffset:   sp.End,
			OrderIndex:  i,
		}
	}
	return chunks
}
