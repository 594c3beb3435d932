// Package search retrieves the chunks of a conversation most relevant to a question.
package search

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/docchat/internal/conversation"
	"github.com/hyperjump/docchat/internal/embedding"
	"github.com/hyperjump/docchat/internal/models"
	"github.com/hyperjump/docchat/internal/ranking"
	"github.com/hyperjump/docchat/pkg/utils"
)

// Defaults for Options.
const (
	DefaultTopK          = 4
	DefaultMinSimilarity = 0.2
	DefaultSnippetLen    = 200
)

// Options are the retrieval tunables. They can be replaced while the engine is serving.
type Options struct {
	// MinSimilarity is the cosine score below which vector hits are flagged LowConfidence.
	// Nil means DefaultMinSimilarity.
	MinSimilarity *float64
	SnippetLen    int
}

// Threshold returns the effective similarity threshold.
func (o Options) Threshold() float64 {
	if o.MinSimilarity != nil {
		return *o.MinSimilarity
	}
	return DefaultMinSimilarity
}

// Hit is one retrieved chunk with its score and provenance.
type Hit struct {
	Chunk         *models.Chunk
	Score         float64
	LowConfidence bool
	Snippet       string
}

// Reference converts the hit into a SourceReference.
func (h Hit) Reference() models.SourceReference {
	return models.SourceReference{
		ChunkID:       h.Chunk.ID,
		DocumentID:    h.Chunk.DocumentID,
		OrderIndex:    h.Chunk.OrderIndex,
		Score:         h.Score,
		Snippet:       h.Snippet,
		LowConfidence: h.LowConfidence,
	}
}

// Retrieval is the ranked result for one question.
type Retrieval struct {
	Hits        []Hit
	Mode        models.RetrievalMode
	Degraded    bool
	Generation  uint64
	NoDocuments bool
}

// Sources returns the references of every hit, in rank order.
func (r *Retrieval) Sources() []models.SourceReference {
	refs := make([]models.SourceReference, len(r.Hits))
	for i, h := range r.Hits {
		refs[i] = h.Reference()
	}
	return refs
}

// Engine embeds questions and queries the conversation's active index. When the embedder is
// unavailable the conversation is degraded to lexical retrieval and the question is answered anyway.
type Engine struct {
	store    *conversation.Store
	embedder embedding.Embedder
	logger   *zap.Logger

	mu   sync.RWMutex
	opts Options
}

// NewEngine creates an engine over store.
func NewEngine(store *conversation.Store, embedder embedding.Embedder, opts Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{store: store, embedder: embedder, logger: logger}
	e.SetOptions(opts)
	return e
}

// SetOptions replaces the tunables. A nil MinSimilarity or non-positive SnippetLen takes its default.
func (e *Engine) SetOptions(opts Options) {
	ms := opts.Threshold()
	opts.MinSimilarity = &ms
	if opts.SnippetLen <= 0 {
		opts.SnippetLen = DefaultSnippetLen
	}
	e.mu.Lock()
	e.opts = opts
	e.mu.Unlock()
}

// Options returns the current tunables.
func (e *Engine) Options() Options {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.opts
}

// Retrieve returns up to k chunks of the conversation ranked against question. A conversation
// without documents yields an empty Retrieval with NoDocuments set, not an error.
func (e *Engine) Retrieve(ctx context.Context, conversationID, question string, k int) (*Retrieval, error) {
	question, err := ProcessQuestion(question, k)
	if err != nil {
		return nil, err
	}
	opts := e.Options()

	// A reset between planning and searching can put the conversation back into vector mode
	// after a lexical plan; plan once more in that case.
	for attempt := 0; ; attempt++ {
		query, err := e.plan(ctx, conversationID, question)
		if err != nil {
			return nil, err
		}
		res, err := e.store.Search(ctx, conversationID, query, k)
		if err != nil {
			if errors.Is(err, models.ErrEmbeddingUnavailable) && attempt == 0 {
				continue
			}
			return nil, err
		}
		return e.build(res, question, opts), nil
	}
}

// plan snapshots the conversation state and embeds the question outside any lock when the
// conversation is in vector mode.
func (e *Engine) plan(ctx context.Context, conversationID, question string) (models.IndexQuery, error) {
	query := models.IndexQuery{Text: question}
	st, err := e.store.State(conversationID)
	if err != nil {
		return query, err
	}
	if st.Mode != models.ModeVector || st.Documents == 0 {
		return query, nil
	}

	vec, err := e.embedder.Embed(ctx, question)
	switch {
	case err == nil:
		query.Vector = vec
		return query, nil
	case errors.Is(err, models.ErrEmbeddingUnavailable):
		e.logger.Warn("question embedding failed, using lexical retrieval",
			zap.String("conversation_id", conversationID), zap.Error(err))
		if err := e.store.MarkDegraded(ctx, conversationID); err != nil {
			return query, fmt.Errorf("degrade conversation: %w", err)
		}
		return query, nil
	default:
		return query, err
	}
}

func (e *Engine) build(res *conversation.SearchResult, question string, opts Options) *Retrieval {
	out := &Retrieval{
		Mode:        res.Mode,
		Degraded:    res.Degraded,
		Generation:  res.Generation,
		NoDocuments: res.NoDocuments,
		Hits:        make([]Hit, 0, len(res.Hits)),
	}
	terms := utils.Tokenize(question)
	for _, sc := range res.Hits {
		out.Hits = append(out.Hits, Hit{
			Chunk:         sc.Chunk,
			Score:         sc.Score,
			LowConfidence: ranking.LowConfidence(res.Mode, sc.Score, opts.Threshold()),
			Snippet:       Highlight(sc.Chunk.Text, terms, opts.SnippetLen),
		})
	}
	return out
}
