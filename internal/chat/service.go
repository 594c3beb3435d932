// Package chat implements the conversation operations exposed over HTTP and the CLI.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/docchat/internal/config"
	"github.com/hyperjump/docchat/internal/conversation"
	"github.com/hyperjump/docchat/internal/indexer"
	"github.com/hyperjump/docchat/internal/llm"
	"github.com/hyperjump/docchat/internal/models"
	"github.com/hyperjump/docchat/internal/prompt"
	"github.com/hyperjump/docchat/internal/ranking"
	"github.com/hyperjump/docchat/internal/search"
	"github.com/hyperjump/docchat/pkg/metrics"
)

// ServiceName is reported by Health.
const ServiceName = "docchat"

// Health is the liveness report.
type Health struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Tuning holds the retrieval settings that can change while serving. Zero fields and a nil
// MinSimilarity take the config defaults; a negative HistoryTurns disables history.
type Tuning struct {
	TopK          int
	MinSimilarity *float64
	HistoryTurns  int
	ContextChars  int
}

// TuningFromConfig converts the retrieval config section.
func TuningFromConfig(cfg config.RetrievalConfig) Tuning {
	return Tuning{
		TopK:          cfg.TopK,
		MinSimilarity: cfg.MinSimilarity,
		HistoryTurns:  cfg.HistoryTurns,
		ContextChars:  cfg.ContextChars,
	}
}

func (t Tuning) withDefaults() Tuning {
	if t.TopK < 1 {
		t.TopK = config.DefaultTopK
	}
	ms := config.DefaultMinSimilarity
	if t.MinSimilarity != nil {
		ms = *t.MinSimilarity
	}
	t.MinSimilarity = &ms
	switch {
	case t.HistoryTurns == 0:
		t.HistoryTurns = config.DefaultHistoryTurns
	case t.HistoryTurns < 0:
		t.HistoryTurns = 0
	}
	if t.ContextChars <= 0 {
		t.ContextChars = config.DefaultContextChars
	}
	return t
}

// Service owns the conversations and answers questions about their documents.
type Service struct {
	store     *conversation.Store
	engine    *search.Engine
	indexer   *indexer.Indexer
	generator llm.Generator
	analyzer  *ranking.QueryAnalyzer
	logger    *zap.Logger
	maxBytes  int64

	mu     sync.RWMutex
	tuning Tuning
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMaxUploadBytes caps accepted upload sizes. Zero disables the check.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Service) { s.maxBytes = n }
}

// WithTuning sets the initial retrieval settings.
func WithTuning(t Tuning) Option {
	return func(s *Service) { s.tuning = t }
}

// NewService wires a service from its collaborators.
func NewService(store *conversation.Store, engine *search.Engine, idx *indexer.Indexer, gen llm.Generator, opts ...Option) *Service {
	s := &Service{
		store:     store,
		engine:    engine,
		indexer:   idx,
		generator: gen,
		analyzer:  ranking.NewQueryAnalyzer(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.UpdateRetrieval(s.tuning)
	return s
}

// UpdateRetrieval replaces the retrieval settings. Requests already running keep the old ones.
func (s *Service) UpdateRetrieval(t Tuning) {
	t = t.withDefaults()
	s.mu.Lock()
	s.tuning = t
	s.mu.Unlock()
	opts := s.engine.Options()
	opts.MinSimilarity = t.MinSimilarity
	s.engine.SetOptions(opts)
}

// Tuning returns the current retrieval settings.
func (s *Service) Tuning() Tuning {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tuning
}

// Health reports liveness.
func (s *Service) Health() Health {
	return Health{Status: "ok", Service: ServiceName}
}

// Stats returns usage counters.
func (s *Service) Stats() conversation.Stats {
	return s.store.Stats()
}

// InitConversation creates an empty conversation.
func (s *Service) InitConversation() string {
	id := s.store.Create()
	metrics.ConversationsTotal.Inc()
	metrics.SetConversations(s.store.Len())
	s.logger.Debug("conversation created", zap.String("conversation_id", id))
	return id
}

// GetConversation returns a snapshot of the conversation's history and documents.
func (s *Service) GetConversation(id string) (*models.Conversation, error) {
	return s.store.Get(strings.TrimSpace(id))
}

// ResetConversation discards the conversation's documents, history and index. The id stays valid.
func (s *Service) ResetConversation(id string) (string, error) {
	return s.store.Reset(strings.TrimSpace(id))
}

// DeleteConversation removes the conversation.
func (s *Service) DeleteConversation(id string) error {
	if err := s.store.Delete(strings.TrimSpace(id)); err != nil {
		return err
	}
	metrics.SetConversations(s.store.Len())
	return nil
}

// UploadDocument extracts, chunks and embeds data and adds it to the conversation. An empty or
// unknown conversationID starts a new conversation. Embedding failures degrade the conversation
// to lexical retrieval instead of failing the upload.
func (s *Service) UploadDocument(ctx context.Context, conversationID, filename string, data []byte) (*models.UploadResponse, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, fmt.Errorf("%w: filename is required", models.ErrInvalidInput)
	}
	if !s.indexer.Supported(filename) {
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedFileType, filename)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds the %d byte limit", models.ErrFileTooLarge, len(data), s.maxBytes)
	}

	// The generation is observed before the slow work so a reset in between rejects the commit.
	conversationID = strings.TrimSpace(conversationID)
	state, err := s.store.State(conversationID)
	known := err == nil
	if err != nil && !errors.Is(err, models.ErrConversationNotFound) {
		return nil, err
	}

	prepared, err := s.indexer.Prepare(ctx, filename, data)
	if err != nil {
		return nil, err
	}
	if !known {
		conversationID = s.InitConversation()
		if state, err = s.store.State(conversationID); err != nil {
			return nil, err
		}
	}
	doc := prepared.Document
	if err := s.store.AddDocument(ctx, conversationID, doc, state.Generation); err != nil {
		return nil, err
	}

	after, err := s.store.State(conversationID)
	if err != nil {
		return nil, err
	}
	metrics.RecordDocument(string(after.Mode), len(doc.Chunks))
	s.logger.Debug("upload committed",
		zap.String("conversation_id", conversationID),
		zap.String("document_id", doc.ID),
		zap.Bool("embedding_failed", prepared.Degraded),
		zap.Int("bytes", len(data)))

	resp := &models.UploadResponse{
		ConversationID: conversationID,
		Message:        fmt.Sprintf("Document '%s' uploaded successfully. You can now ask questions about it.", doc.Filename),
		Metadata:       doc.Metadata(),
		Degraded:       after.Degraded,
	}
	if s.store.TakeDegradedNotice(conversationID) {
		metrics.Degradations.Inc()
		resp.Notice = DegradedNotice
	}
	return resp, nil
}

// Chat answers question from the conversation's documents. The question and answer are
// appended to the history together once the answer is complete.
func (s *Service) Chat(ctx context.Context, conversationID, question string) (*models.ChatResponse, error) {
	req := models.ChatRequest{ConversationID: conversationID, Question: question}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	conv, err := s.store.Get(req.ConversationID)
	if err != nil {
		return nil, err
	}
	t := s.Tuning()
	previous, _ := conv.LastAnswer()

	resp := &models.ChatResponse{
		ConversationID: conv.ID,
		KeyPoints:      []string{},
		Sources:        []models.SourceReference{},
		Mode:           conv.Mode,
	}
	if !conv.HasDocuments() {
		resp.Answer = NoDocumentAnswer
		resp.Informational = true
		resp.KeyPoints = KeyPoints(resp.Answer)
		s.record(ctx, conv.ID, conv.Generation, req.Question, resp, "no_document")
		return resp, nil
	}

	ret, err := s.engine.Retrieve(ctx, conv.ID, req.Question, t.TopK)
	if err != nil {
		return nil, err
	}
	resp.Mode = ret.Mode
	if ret.Degraded {
		resp.Degraded = true
		resp.DegradedReason = ReasonEmbeddingUnavailable
	}
	if s.store.TakeDegradedNotice(conv.ID) {
		metrics.Degradations.Inc()
		resp.Notice = DegradedNotice
	}

	switch {
	case ret.NoDocuments:
		resp.Answer = NoDocumentAnswer
		resp.Informational = true
		resp.KeyPoints = KeyPoints(resp.Answer)
		s.record(ctx, conv.ID, ret.Generation, req.Question, resp, "no_document")
		return resp, nil
	case len(ret.Hits) == 0:
		if s.analyzer.Analyze(req.Question).FollowUp {
			resp.Answer = Restatement(previous)
		} else {
			resp.Answer = NoMatchAnswer
		}
		resp.Informational = true
		resp.KeyPoints = KeyPoints(resp.Answer)
		s.record(ctx, conv.ID, ret.Generation, req.Question, resp, "no_match")
		return resp, nil
	}

	assembled := prompt.Assemble(ret.Hits, conv.RecentMessages(t.HistoryTurns), prompt.Budget{
		MaxChars:     t.ContextChars,
		HistoryTurns: t.HistoryTurns,
	})
	resp.Sources = assembled.Sources

	answer, genErr := s.generate(ctx, prompt.BuildPrompt(assembled, req.Question, previous))
	if genErr != nil {
		if errors.Is(genErr, context.Canceled) {
			return nil, genErr
		}
		s.logger.Warn("generator unavailable, answering with excerpts",
			zap.String("conversation_id", conv.ID), zap.Error(genErr))
		answer = HeuristicAnswer(assembled.Hits)
		resp.Degraded = true
		resp.DegradedReason = joinReasons(resp.DegradedReason, generatorReason(genErr))
	}
	resp.Answer = answer
	resp.KeyPoints = KeyPoints(answer)

	outcome := "answered"
	if genErr != nil {
		outcome = "heuristic"
	}
	s.record(ctx, conv.ID, ret.Generation, req.Question, resp, outcome)
	return resp, nil
}

func (s *Service) generate(ctx context.Context, p *prompt.Prompt) (string, error) {
	start := time.Now()
	answer, err := s.generator.Generate(ctx, p)
	status := "ok"
	if err != nil {
		status = generatorReason(err)
	}
	metrics.RecordGeneration(s.generator.Name(), status, time.Since(start).Seconds())
	return answer, err
}

// record appends the exchange to the history. A reset or deletion while the answer was being
// produced drops the exchange; the caller still gets its answer.
func (s *Service) record(ctx context.Context, id string, generation uint64, question string, resp *models.ChatResponse, outcome string) {
	metrics.RecordQuery(string(resp.Mode), outcome)
	if ctx.Err() != nil {
		return
	}
	now := time.Now().UTC()
	user := &models.Message{ID: uuid.New().String(), Role: models.RoleUser, Content: question, Timestamp: now}
	assistant := &models.Message{
		ID:        uuid.New().String(),
		Role:      models.RoleAssistant,
		Content:   resp.Answer,
		Timestamp: now,
		Sources:   resp.Sources,
	}
	err := s.store.AppendExchange(id, generation, user, assistant)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrConversationReset), errors.Is(err, models.ErrConversationNotFound):
		s.logger.Info("conversation changed while answering, exchange not recorded",
			zap.String("conversation_id", id), zap.Error(err))
	default:
		s.logger.Error("record exchange", zap.String("conversation_id", id), zap.Error(err))
	}
}
