package indexer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/docchat/internal/embedding"
	"github.com/hyperjump/docchat/internal/extract"
	"github.com/hyperjump/docchat/internal/models"
	"github.com/hyperjump/docchat/pkg/utils"
)

// Prepared is a document ready to be committed to a conversation.
type Prepared struct {
	Document *models.Document
	// Degraded is set when the chunks could not be embedded; they carry no embeddings.
	Degraded bool
	// EmbedErr is the embedding failure behind Degraded.
	EmbedErr error
}

// Indexer extracts, chunks and embeds uploaded files. It holds no conversation state, so
// Prepare runs without any conversation lock held.
type Indexer struct {
	extractor *extract.Extractor
	chunker   *Chunker
	embedder  embedding.Embedder
	logger    *zap.Logger
	now       func() time.Time
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// WithClock overrides the upload timestamp source.
func WithClock(now func() time.Time) IndexerOption {
	return func(idx *Indexer) { idx.now = now }
}

// NewIndexer creates an indexer.
func NewIndexer(extractor *extract.Extractor, chunker *Chunker, embedder embedding.Embedder, opts ...IndexerOption) *Indexer {
	idx := &Indexer{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Supported reports whether filename has an extension the extractor accepts.
func (idx *Indexer) Supported(filename string) bool {
	return idx.extractor.Supported(filename)
}

// Prepare extracts the text of an uploaded file and chunks and embeds it. An embedding failure
// is not an error: the document comes back Degraded with unembedded chunks.
func (idx *Indexer) Prepare(ctx context.Context, filename string, content []byte) (*Prepared, error) {
	filename = filepath.Base(strings.TrimSpace(filename))
	res, err := idx.extractor.Extract(filename, content)
	if err != nil {
		return nil, err
	}
	return idx.PrepareText(ctx, filename, res.FileType, res.Pages, res.Text)
}

// PrepareText chunks and embeds already extracted text.
func (idx *Indexer) PrepareText(ctx context.Context, filename, fileType string, pages int, text string) (*Prepared, error) {
	text = Preprocess(text)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s", models.ErrEmptyDocument, filename)
	}

	doc := &models.Document{
		ID:         uuid.New().String(),
		Filename:   filename,
		FileType:   fileType,
		RawText:    text,
		WordCount:  utils.CountWords(text),
		Pages:      pages,
		UploadedAt: idx.now().UTC(),
	}
	doc.Chunks = idx.chunker.Chunk(doc.ID, text)
	out := &Prepared{Document: doc}

	texts := make([]string, len(doc.Chunks))
	for i, ch := range doc.Chunks {
		texts[i] = ch.Text
	}
	vectors, err := idx.embedder.EmbedBatch(ctx, texts)
	switch {
	case err == nil:
		for i, ch := range doc.Chunks {
			ch.Embedding = vectors[i]
		}
	case errors.Is(err, models.ErrEmbeddingUnavailable):
		idx.logger.Warn("chunk embedding failed, document will be searched lexically",
			zap.String("filename", filename), zap.Int("chunks", len(doc.Chunks)), zap.Error(err))
		out.Degraded = true
		out.EmbedErr = err
	default:
		return nil, fmt.Errorf("embed chunks: %w", err)
	}

	idx.logger.Debug("document prepared",
		zap.String("document_id", doc.ID),
		zap.String("filename", filename),
		zap.Int("words", doc.WordCount),
		zap.Int("chunks", len(doc.Chunks)),
		zap.Bool("degraded", out.Degraded))
	return out, nil
}
