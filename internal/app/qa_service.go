package app

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"gopherqa/internal/ai"
	"gopherqa/internal/format"
	"gopherqa/internal/model"
	"gopherqa/internal/vectorstore"
)

// ModelFailureSentinel is the fixed user-facing answer for any model failure.
// Callers cannot distinguish error subtypes from it; detail goes to the log.
const ModelFailureSentinel = "Sorry, something went wrong with the model."

const warmUpPrompt = "Hello"

// AsyncQuestionPublisher hands an answered question off for background persistence.
type AsyncQuestionPublisher interface {
	Publish(ctx context.Context, record model.Question) error
}

// HistoryCacheInvalidator is the slice of the history cache the ask path touches.
type HistoryCacheInvalidator interface {
	MarkDirty(ctx context.Context, userID uint) error
	DeleteHistory(ctx context.Context, userID uint) error
}

type QAService struct {
	llm          *ai.OllamaClient
	genCfg       ai.GenerateConfig
	embCfg       ai.EmbeddingConfig
	genTimeout   time.Duration
	embedTimeout time.Duration

	indexes *vectorstore.UserIndexStore
	topK    int

	publisher    AsyncQuestionPublisher
	historyCache HistoryCacheInvalidator

	warmMu sync.Mutex
	warmed bool
}

type QAServiceConfig struct {
	Generate     ai.GenerateConfig
	Embedding    ai.EmbeddingConfig
	GenTimeout   time.Duration
	EmbedTimeout time.Duration
	TopK         int
}

func NewQAService(
	llm *ai.OllamaClient,
	cfg QAServiceConfig,
	indexes *vectorstore.UserIndexStore,
	publisher AsyncQuestionPublisher,
	historyCache HistoryCacheInvalidator,
) *QAService {
	if cfg.GenTimeout <= 0 {
		cfg.GenTimeout = 90 * time.Second
	}
	if cfg.EmbedTimeout <= 0 {
		cfg.EmbedTimeout = 60 * time.Second
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 4
	}
	return &QAService{
		llm:          llm,
		genCfg:       cfg.Generate,
		embCfg:       cfg.Embedding,
		genTimeout:   cfg.GenTimeout,
		embedTimeout: cfg.EmbedTimeout,
		indexes:      indexes,
		topK:         cfg.TopK,
		publisher:    publisher,
		historyCache: historyCache,
	}
}

// Ask runs the full question pipeline: validate, retrieve document context
// when the caller has an uploaded index, generate, format, and hand the pair
// off for background persistence. Model failures never propagate; they become
// the fixed sentinel answer and the record is not persisted.
func (s *QAService) Ask(ctx context.Context, userID uint, question string) (format.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return format.Answer{}, ErrQuestionEmpty
	}

	s.warmUpOnce(ctx)

	prompt := s.buildPrompt(ctx, userID, question)

	genCtx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()

	rawAnswer, err := s.llm.Generate(genCtx, s.genCfg, prompt)
	if err != nil {
		log.Printf("model generate failed: %v", err)
		return format.Format(question, ModelFailureSentinel), nil
	}

	s.persistAsync(userID, question, rawAnswer)

	return format.Format(question, rawAnswer), nil
}

// buildPrompt prepends top-k retrieved chunks when the user has an index.
// Retrieval failures degrade to the plain question, never fail the ask.
func (s *QAService) buildPrompt(ctx context.Context, userID uint, question string) string {
	if s.indexes == nil || !s.indexes.Has(userID) {
		return question
	}

	embCtx, cancel := context.WithTimeout(ctx, s.embedTimeout)
	defer cancel()

	queryEmb, err := s.llm.Embed(embCtx, s.embCfg, question)
	if err != nil {
		log.Printf("embed question failed, answering without context: %v", err)
		return question
	}

	matches := s.indexes.Query(userID, queryEmb, s.topK)
	if len(matches) == 0 {
		return question
	}

	var b strings.Builder
	b.WriteString("Answer the question using the following context from the user's document. If the context does not contain enough information, say so.\n\nContext:")
	for _, m := range matches {
		b.WriteString("\n---\n")
		b.WriteString(m.Content)
	}
	b.WriteString("\n---\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer:")
	return b.String()
}

// persistAsync enqueues the record for the persistence worker. An absent
// identity or a failed enqueue skips persistence silently; the answer was
// already produced and must still reach the user.
func (s *QAService) persistAsync(userID uint, question, answer string) {
	if userID == 0 || s.publisher == nil {
		return
	}

	ctx := context.Background()
	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, userID)
		_ = s.historyCache.DeleteHistory(ctx, userID)
	}

	record := model.Question{
		UserID:    userID,
		Question:  question,
		Answer:    answer,
		CreatedAt: time.Now(),
	}
	if err := s.publisher.Publish(ctx, record); err != nil {
		log.Printf("enqueue question record failed: %v", err)
	}
}

// warmUpOnce issues one throwaway prompt on first use to pre-load the backing
// model. Failure is logged and never blocks real requests.
func (s *QAService) warmUpOnce(ctx context.Context) {
	s.warmMu.Lock()
	defer s.warmMu.Unlock()
	if s.warmed {
		return
	}
	s.warmed = true

	warmCtx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()

	log.Printf("warming up model %s", s.genCfg.Model)
	if _, err := s.llm.Generate(warmCtx, s.genCfg, warmUpPrompt); err != nil {
		log.Printf("model warm-up failed: %v", err)
		return
	}
	log.Printf("model warmed up")
}
