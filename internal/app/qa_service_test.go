package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"gopherqa/internal/ai"
	"gopherqa/internal/model"
	"gopherqa/internal/vectorstore"
)

type fakePublisher struct {
	mu      sync.Mutex
	records []model.Question
	err     error
}

func (p *fakePublisher) Publish(ctx context.Context, record model.Question) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.records = append(p.records, record)
	return nil
}

type fakeInvalidator struct {
	dirtyCalls  int
	deleteCalls int
}

func (c *fakeInvalidator) MarkDirty(ctx context.Context, userID uint) error {
	c.dirtyCalls++
	return nil
}

func (c *fakeInvalidator) DeleteHistory(ctx context.Context, userID uint) error {
	c.deleteCalls++
	return nil
}

// ollamaStub serves both the generate and embeddings endpoints and records
// every generate prompt it sees.
type ollamaStub struct {
	mu        sync.Mutex
	prompts   []string
	answer    string
	genFail   bool
	embedFail bool
	embedding []float32
}

func (o *ollamaStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		json.NewDecoder(r.Body).Decode(&req)
		o.mu.Lock()
		o.prompts = append(o.prompts, req["prompt"].(string))
		o.mu.Unlock()
		if o.genFail {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"response": o.answer})
	})
	mux.HandleFunc("/api/embeddings", func(w http.ResponseWriter, r *http.Request) {
		if o.embedFail {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string][]float32{"embedding": o.embedding})
	})
	return mux
}

func (o *ollamaStub) lastPrompt() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.prompts) == 0 {
		return ""
	}
	return o.prompts[len(o.prompts)-1]
}

func newTestQAService(t *testing.T, stub *ollamaStub, indexes *vectorstore.UserIndexStore, pub *fakePublisher, inv *fakeInvalidator) *QAService {
	t.Helper()
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)

	cfg := QAServiceConfig{
		Generate:  ai.GenerateConfig{BaseURL: srv.URL, Model: "gemma:2b", NumPredict: 100},
		Embedding: ai.EmbeddingConfig{BaseURL: srv.URL, Model: "nomic-embed-text"},
	}
	// Avoid wrapping a typed nil *fakeInvalidator in the interface, which
	// would pass the service's nil check and panic on a nil receiver.
	var historyCache HistoryCacheInvalidator
	if inv != nil {
		historyCache = inv
	}
	return NewQAService(ai.NewOllamaClient(), cfg, indexes, pub, historyCache)
}

func TestAskEmptyQuestion(t *testing.T) {
	stub := &ollamaStub{answer: "x"}
	svc := newTestQAService(t, stub, vectorstore.NewUserIndexStore(), &fakePublisher{}, nil)

	if _, err := svc.Ask(context.Background(), 1, "   "); !errors.Is(err, ErrQuestionEmpty) {
		t.Fatalf("err = %v, want ErrQuestionEmpty", err)
	}
	if len(stub.prompts) != 0 {
		t.Errorf("backend called for empty question")
	}
}

func TestAskFormatsAndPublishes(t *testing.T) {
	stub := &ollamaStub{answer: "**DNA** stores genetic information."}
	pub := &fakePublisher{}
	inv := &fakeInvalidator{}
	svc := newTestQAService(t, stub, vectorstore.NewUserIndexStore(), pub, inv)

	answer, err := svc.Ask(context.Background(), 42, "What is DNA? Explain.")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if answer.Heading != "What is DNA" {
		t.Errorf("heading = %q", answer.Heading)
	}
	if answer.Body != "DNA stores genetic information." {
		t.Errorf("body = %q", answer.Body)
	}

	if len(pub.records) != 1 {
		t.Fatalf("published %d records, want 1", len(pub.records))
	}
	rec := pub.records[0]
	if rec.UserID != 42 || rec.Question != "What is DNA? Explain." {
		t.Errorf("record = %+v", rec)
	}
	if rec.Answer != "**DNA** stores genetic information." {
		t.Errorf("persisted answer should be raw, got %q", rec.Answer)
	}
	if inv.dirtyCalls != 1 || inv.deleteCalls != 1 {
		t.Errorf("cache invalidation calls: dirty=%d delete=%d", inv.dirtyCalls, inv.deleteCalls)
	}
}

func TestAskWarmsUpOnce(t *testing.T) {
	stub := &ollamaStub{answer: "fine"}
	svc := newTestQAService(t, stub, vectorstore.NewUserIndexStore(), &fakePublisher{}, nil)

	ctx := context.Background()
	svc.Ask(ctx, 1, "first question")
	svc.Ask(ctx, 1, "second question")

	// warm-up plus two real prompts
	if len(stub.prompts) != 3 {
		t.Fatalf("generate called %d times, want 3", len(stub.prompts))
	}
	if stub.prompts[0] != warmUpPrompt {
		t.Errorf("first prompt = %q, want warm-up", stub.prompts[0])
	}
}

func TestAskModelFailureReturnsSentinel(t *testing.T) {
	stub := &ollamaStub{genFail: true}
	pub := &fakePublisher{}
	svc := newTestQAService(t, stub, vectorstore.NewUserIndexStore(), pub, nil)

	answer, err := svc.Ask(context.Background(), 7, "Why is the sky blue?")
	if err != nil {
		t.Fatalf("model failure must not surface as error, got %v", err)
	}
	if answer.Body != ModelFailureSentinel {
		t.Errorf("body = %q, want sentinel", answer.Body)
	}
	if answer.Heading != "Why is the sky blue" {
		t.Errorf("heading = %q", answer.Heading)
	}
	if len(pub.records) != 0 {
		t.Errorf("failed answer must not be persisted, got %d records", len(pub.records))
	}
}

func TestAskAnonymousNotPersisted(t *testing.T) {
	stub := &ollamaStub{answer: "ok"}
	pub := &fakePublisher{}
	svc := newTestQAService(t, stub, vectorstore.NewUserIndexStore(), pub, nil)

	if _, err := svc.Ask(context.Background(), 0, "anything?"); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if len(pub.records) != 0 {
		t.Errorf("anonymous ask was persisted")
	}
}

func TestAskUsesDocumentContext(t *testing.T) {
	stub := &ollamaStub{answer: "from the paper", embedding: []float32{1, 0}}
	indexes := vectorstore.NewUserIndexStore()
	indexes.Replace(5, []vectorstore.Entry{
		{Content: "photosynthesis converts light into chemical energy", Embedding: []float32{1, 0}},
		{Content: "unrelated chunk about plate tectonics", Embedding: []float32{0, 1}},
	})
	svc := newTestQAService(t, stub, indexes, &fakePublisher{}, nil)

	if _, err := svc.Ask(context.Background(), 5, "What does photosynthesis do?"); err != nil {
		t.Fatalf("Ask: %v", err)
	}

	prompt := stub.lastPrompt()
	if !strings.Contains(prompt, "Context:") {
		t.Errorf("prompt missing context block: %q", prompt)
	}
	if !strings.Contains(prompt, "photosynthesis converts light") {
		t.Errorf("prompt missing retrieved chunk: %q", prompt)
	}
	if !strings.Contains(prompt, "What does photosynthesis do?") {
		t.Errorf("prompt missing question: %q", prompt)
	}
}

func TestAskEmbedFailureDegradesToPlainQuestion(t *testing.T) {
	stub := &ollamaStub{answer: "still answered", embedFail: true}
	indexes := vectorstore.NewUserIndexStore()
	indexes.Replace(5, []vectorstore.Entry{
		{Content: "some chunk", Embedding: []float32{1, 0}},
	})
	svc := newTestQAService(t, stub, indexes, &fakePublisher{}, nil)

	answer, err := svc.Ask(context.Background(), 5, "plain question?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if answer.Body != "still answered" {
		t.Errorf("body = %q", answer.Body)
	}
	if got := stub.lastPrompt(); got != "plain question?" {
		t.Errorf("prompt = %q, want bare question", got)
	}
}

func TestAskPublishFailureDoesNotSurface(t *testing.T) {
	stub := &ollamaStub{answer: "answered"}
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := newTestQAService(t, stub, vectorstore.NewUserIndexStore(), pub, nil)

	answer, err := svc.Ask(context.Background(), 3, "does it still work?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if answer.Body != "answered" {
		t.Errorf("body = %q", answer.Body)
	}
}
