// Package conversation holds the process-wide registry of chat sessions and their indices.
package conversation

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/docchat/internal/models"
)

// Store owns every conversation. The map is guarded by the store lock; each entry has its own
// lock guarding its documents, messages and index, so conversations never contend.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry

	newIndex IndexFactory
	logger   *zap.Logger
	now      func() time.Time

	documentsIndexed atomic.Int64
	queries          atomic.Int64
}

type entry struct {
	mu         sync.RWMutex
	id         string
	createdAt  time.Time
	documents  []*models.Document
	messages   []*models.Message
	mode       models.RetrievalMode
	index      ChunkIndex // nil until the first document is committed
	degraded   bool
	notice     bool // degradation not yet reported to the client
	generation uint64
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIndexFactory replaces DefaultIndexFactory.
func WithIndexFactory(f IndexFactory) Option {
	return func(s *Store) {
		if f != nil {
			s.newIndex = f
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		entries:  make(map[string]*entry),
		newIndex: DefaultIndexFactory,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stats are process-lifetime usage counters.
type Stats struct {
	Conversations    int   `json:"total_conversations"`
	DocumentsIndexed int64 `json:"documents_indexed"`
	Queries          int64 `json:"total_queries"`
}

// SearchResult is the outcome of an index query against one conversation.
type SearchResult struct {
	Hits        []models.ScoredChunk
	Mode        models.RetrievalMode
	Degraded    bool
	Generation  uint64
	NoDocuments bool
}

// Create registers a new empty conversation in vector mode and returns its id.
func (s *Store) Create() string {
	e := &entry{createdAt: s.now().UTC(), mode: models.ModeVector}
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		id := newID()
		if _, exists := s.entries[id]; exists {
			continue
		}
		e.id = id
		s.entries[id] = e
		s.logger.Debug("conversation created", zap.String("conversation_id", id))
		return id
	}
}

// Exists reports whether id is registered.
func (s *Store) Exists(id string) bool {
	_, err := s.entry(id)
	return err == nil
}

// Get returns a read-only snapshot of the conversation.
func (s *Store) Get(id string) (*models.Conversation, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return &models.Conversation{
		ID:         e.id,
		CreatedAt:  e.createdAt,
		Documents:  append([]*models.Document(nil), e.documents...),
		Messages:   append([]*models.Message(nil), e.messages...),
		Mode:       e.mode,
		Degraded:   e.degraded,
		Generation: e.generation,
	}, nil
}

// State is the part of a conversation retrieval needs to plan a query.
type State struct {
	Mode       models.RetrievalMode
	Generation uint64
	Documents  int
	Degraded   bool
}

// State returns the conversation's retrieval state without copying its history.
func (s *Store) State(id string) (State, error) {
	e, err := s.entry(id)
	if err != nil {
		return State{}, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return State{Mode: e.mode, Generation: e.generation, Documents: len(e.documents), Degraded: e.degraded}, nil
}

// Reset empties the conversation in place. The id is kept; the generation is bumped so that
// uploads and exchanges prepared before the reset are rejected at commit.
func (s *Store) Reset(id string) (string, error) {
	e, err := s.entry(id)
	if err != nil {
		return "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closeIndex(s.logger)
	e.documents = nil
	e.messages = nil
	e.mode = models.ModeVector
	e.degraded = false
	e.notice = false
	e.generation++
	s.logger.Info("conversation reset", zap.String("conversation_id", id), zap.Uint64("generation", e.generation))
	return id, nil
}

// Delete removes the conversation and releases its index.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	e, ok := s.entries[id]
	delete(s.entries, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrConversationNotFound, id)
	}
	e.mu.Lock()
	e.closeIndex(s.logger)
	e.mu.Unlock()
	return nil
}

// AddDocument commits a prepared document and its chunks atomically. generation must match the
// conversation's current generation. If any chunk lacks an embedding, or the vector index rejects
// the chunks, the conversation switches permanently to lexical mode and its lexical index is
// rebuilt from every chunk it holds. On error nothing is committed.
func (s *Store) AddDocument(ctx context.Context, id string, doc *models.Document, generation uint64) error {
	e, err := s.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.generation != generation {
		return fmt.Errorf("%w: %s", models.ErrConversationReset, id)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if e.mode == models.ModeVector {
		addErr := s.addToVector(ctx, e, doc)
		if addErr == nil {
			s.commitDocument(e, doc)
			return nil
		}
		if isCancellation(addErr) {
			return addErr
		}
		s.logger.Warn("vector indexing unavailable, switching conversation to lexical retrieval",
			zap.String("conversation_id", id), zap.String("document_id", doc.ID), zap.Error(addErr))
		if err := s.switchToLexical(ctx, e, doc.Chunks); err != nil {
			return err
		}
		s.commitDocument(e, doc)
		return nil
	}

	if err := s.ensureIndex(e); err != nil {
		return err
	}
	if err := e.index.Add(ctx, doc.Chunks); err != nil {
		return fmt.Errorf("index document %s: %w", doc.ID, err)
	}
	s.commitDocument(e, doc)
	return nil
}

func (s *Store) addToVector(ctx context.Context, e *entry, doc *models.Document) error {
	for _, c := range doc.Chunks {
		if !c.HasEmbedding() {
			return fmt.Errorf("%w: chunk %s has no embedding", models.ErrEmbeddingUnavailable, c.ID)
		}
	}
	if err := s.ensureIndex(e); err != nil {
		return err
	}
	return e.index.Add(ctx, doc.Chunks)
}

func (s *Store) ensureIndex(e *entry) error {
	if e.index != nil {
		return nil
	}
	idx, err := s.newIndex(e.mode)
	if err != nil {
		return fmt.Errorf("create %s index: %w", e.mode, err)
	}
	e.index = idx
	return nil
}

// switchToLexical replaces the entry's index with a lexical one holding every committed chunk plus
// extra. The old index is kept if the rebuild fails. Caller holds e.mu.
func (s *Store) switchToLexical(ctx context.Context, e *entry, extra []*models.Chunk) error {
	idx, err := s.newIndex(models.ModeLexical)
	if err != nil {
		return fmt.Errorf("create lexical index: %w", err)
	}
	var chunks []*models.Chunk
	for _, d := range e.documents {
		chunks = append(chunks, d.Chunks...)
	}
	chunks = append(chunks, extra...)
	if len(chunks) > 0 {
		if err := idx.Add(ctx, chunks); err != nil {
			_ = idx.Close()
			return fmt.Errorf("rebuild lexical index: %w", err)
		}
	}
	e.closeIndex(s.logger)
	e.index = idx
	e.mode = models.ModeLexical
	if !e.degraded {
		e.degraded = true
		e.notice = true
	}
	return nil
}

func (s *Store) commitDocument(e *entry, doc *models.Document) {
	e.documents = append(e.documents, doc)
	s.documentsIndexed.Add(1)
	s.logger.Info("document indexed",
		zap.String("conversation_id", e.id),
		zap.String("document_id", doc.ID),
		zap.String("filename", doc.Filename),
		zap.Int("chunks", len(doc.Chunks)),
		zap.String("mode", string(e.mode)))
}

// MarkDegraded records that embeddings failed for this conversation. A vector-mode conversation
// is switched permanently to lexical retrieval.
func (s *Store) MarkDegraded(ctx context.Context, id string) error {
	e, err := s.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode == models.ModeLexical {
		if !e.degraded {
			e.degraded = true
			e.notice = true
		}
		return nil
	}
	s.logger.Warn("query embedding unavailable, switching conversation to lexical retrieval", zap.String("conversation_id", id))
	return s.switchToLexical(ctx, e, nil)
}

// TakeDegradedNotice reports true exactly once after each degradation.
func (s *Store) TakeDegradedNotice(id string) bool {
	e, err := s.entry(id)
	if err != nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	n := e.notice
	e.notice = false
	return n
}

// Search queries the conversation's active index under its read lock. query.Text must always be
// set; query.Vector is only read in vector mode.
func (s *Store) Search(ctx context.Context, id string, query models.IndexQuery, k int) (*SearchResult, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	s.queries.Add(1)
	e.mu.RLock()
	defer e.mu.RUnlock()

	res := &SearchResult{Mode: e.mode, Degraded: e.degraded, Generation: e.generation}
	if len(e.documents) == 0 || e.index == nil {
		res.NoDocuments = true
		return res, nil
	}
	if e.mode == models.ModeVector && len(query.Vector) == 0 {
		return nil, fmt.Errorf("%w: vector query without embedding", models.ErrEmbeddingUnavailable)
	}
	hits, err := e.index.Search(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("search conversation %s: %w", id, err)
	}
	res.Hits = hits
	return res, nil
}

// AppendMessage validates and appends one message.
func (s *Store) AppendMessage(id string, msg *models.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	e, err := s.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.messages = append(e.messages, msg)
	return nil
}

// AppendExchange appends a question and its answer together. It fails with ErrConversationReset,
// appending nothing, if the conversation was reset since generation was observed.
func (s *Store) AppendExchange(id string, generation uint64, user, assistant *models.Message) error {
	if user.Role != models.RoleUser || assistant.Role != models.RoleAssistant {
		return fmt.Errorf("%w: exchange must be a user message followed by an assistant message", models.ErrInvalidInput)
	}
	if err := errors.Join(user.Validate(), assistant.Validate()); err != nil {
		return err
	}
	e, err := s.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.generation != generation {
		return fmt.Errorf("%w: %s", models.ErrConversationReset, id)
	}
	e.messages = append(e.messages, user, assistant)
	return nil
}

// Stats returns usage counters.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	n := len(s.entries)
	s.mu.RUnlock()
	return Stats{
		Conversations:    n,
		DocumentsIndexed: s.documentsIndexed.Load(),
		Queries:          s.queries.Load(),
	}
}

// Len returns the number of conversations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) entry(id string) (*entry, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrConversationNotFound, id)
	}
	return e, nil
}

func (e *entry) closeIndex(logger *zap.Logger) {
	if e.index == nil {
		return
	}
	if err := e.index.Close(); err != nil {
		logger.Debug("close index", zap.String("conversation_id", e.id), zap.Error(err))
	}
	e.index = nil
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// newID returns 32 lowercase hex characters from crypto/rand.
func newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("crypto/rand: %v", err))
	}
	return hex.EncodeToString(b[:])
}
