// Package keyword provides the lexical fallback chunk index used when embeddings are unavailable.
package keyword

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/whitespace"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/hyperjump/docchat/internal/models"
	"github.com/hyperjump/docchat/internal/ranking"
	"github.com/hyperjump/docchat/pkg/utils"
)

const (
	termsField    = "terms"
	termsAnalyzer = "docchat_terms"
)

// LexicalIndex scores chunks by the fraction of distinct query tokens they contain. Candidate
// chunks come from an in-memory Bleve index; scores are then computed exactly, so Bleve's own
// relevance model never leaks into results.
type LexicalIndex struct {
	index bleve.Index

	mu     sync.RWMutex
	chunks []*models.Chunk
	terms  map[string]map[string]struct{} // chunk ID -> distinct tokens
}

// NewLexicalIndex creates an empty in-memory index.
func NewLexicalIndex() (*LexicalIndex, error) {
	im, err := newTermsMapping()
	if err != nil {
		return nil, err
	}
	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &LexicalIndex{index: index, terms: make(map[string]map[string]struct{})}, nil
}

// newTermsMapping indexes one field of pre-tokenised text. Tokens are produced by utils.Tokenize
// and joined by spaces, so a whitespace tokenizer with no filters reproduces them exactly.
func newTermsMapping() (mapping.IndexMapping, error) {
	im := bleve.NewIndexMapping()
	err := im.AddCustomAnalyzer(termsAnalyzer, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": whitespace.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register analyzer: %w", err)
	}
	field := bleve.NewTextFieldMapping()
	field.Analyzer = termsAnalyzer
	field.Store = false
	field.IncludeTermVectors = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt(termsField, field)
	im.DefaultMapping = doc
	im.DefaultAnalyzer = termsAnalyzer
	return im, nil
}

// Mode returns models.ModeLexical.
func (l *LexicalIndex) Mode() models.RetrievalMode {
	return models.ModeLexical
}

// Add indexes chunks. Embeddings are ignored. The Bleve batch is applied before the chunks become
// visible, so a failed batch leaves the index unchanged.
func (l *LexicalIndex) Add(ctx context.Context, chunks []*models.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	batch := l.index.NewBatch()
	sets := make([]map[string]struct{}, len(chunks))
	for i, c := range chunks {
		tokens := utils.Tokenize(c.Text)
		sets[i] = tokenSet(tokens)
		if err := batch.Index(c.ID, map[string]interface{}{termsField: strings.Join(tokens, " ")}); err != nil {
			return fmt.Errorf("index chunk %s: %w", c.ID, err)
		}
	}
	if err := l.index.Batch(batch); err != nil {
		return fmt.Errorf("Bleve batch failed: %w", err)
	}
	for i, c := range chunks {
		l.terms[c.ID] = sets[i]
	}
	l.chunks = append(l.chunks, chunks...)
	return nil
}

// Search returns at most k chunks sharing at least one token with query.Text.
func (l *LexicalIndex) Search(ctx context.Context, query models.IndexQuery, k int) ([]models.ScoredChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	queryTerms := tokenSet(utils.Tokenize(query.Text))
	if k <= 0 || len(queryTerms) == 0 {
		return nil, nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.chunks) == 0 {
		return nil, nil
	}

	candidates, err := l.candidates(queryTerms)
	if err != nil {
		return nil, err
	}
	hits := make([]models.ScoredChunk, 0, len(candidates))
	for _, c := range l.chunks {
		if _, ok := candidates[c.ID]; !ok {
			continue
		}
		hits = append(hits, models.ScoredChunk{Chunk: c, Score: Overlap(queryTerms, l.terms[c.ID])})
	}
	return ranking.TopN(ranking.FilterByMinScore(hits, 0), k), nil
}

// candidates returns the IDs of chunks containing any of terms.
func (l *LexicalIndex) candidates(terms map[string]struct{}) (map[string]struct{}, error) {
	queries := make([]blevequery.Query, 0, len(terms))
	for term := range terms {
		tq := bleve.NewTermQuery(term)
		tq.SetField(termsField)
		queries = append(queries, tq)
	}
	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(queries...))
	req.Size = len(l.chunks)
	res, err := l.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make(map[string]struct{}, len(res.Hits))
	for _, hit := range res.Hits {
		out[hit.ID] = struct{}{}
	}
	return out, nil
}

// Size returns the number of indexed chunks.
func (l *LexicalIndex) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.chunks)
}

// Close releases the Bleve index.
func (l *LexicalIndex) Close() error {
	return l.index.Close()
}

// Overlap returns |query ∩ chunk| / |query| over distinct tokens; 0 for an empty query.
func Overlap(query, chunk map[string]struct{}) float64 {
	if len(query) == 0 {
		return 0
	}
	matched := 0
	for t := range query {
		if _, ok := chunk[t]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(query))
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
