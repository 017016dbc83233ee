package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"gopherqa/internal/ai"
	"gopherqa/internal/pkg/pdfextract"
	"gopherqa/internal/vectorstore"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
)

// DocumentService builds a user's retrieval index from an uploaded PDF.
// Each build replaces the user's previous index wholesale.
type DocumentService struct {
	llm          *ai.OllamaClient
	embCfg       ai.EmbeddingConfig
	embedTimeout time.Duration
	indexes      *vectorstore.UserIndexStore
	chunkSize    int
	chunkOverlap int
}

func NewDocumentService(
	llm *ai.OllamaClient,
	embCfg ai.EmbeddingConfig,
	embedTimeout time.Duration,
	indexes *vectorstore.UserIndexStore,
	chunkSize, chunkOverlap int,
) *DocumentService {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 5
	}
	if embedTimeout <= 0 {
		embedTimeout = 60 * time.Second
	}
	return &DocumentService{
		llm:          llm,
		embCfg:       embCfg,
		embedTimeout: embedTimeout,
		indexes:      indexes,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// UploadPDF parses the PDF, chunks and embeds its text, and installs the
// result as the user's index. Returns the number of indexed chunks.
func (s *DocumentService) UploadPDF(ctx context.Context, userID uint, r io.Reader) (int, error) {
	if userID == 0 {
		return 0, ErrInvalidInput
	}

	pages, err := pdfextract.ExtractPages(r)
	if err != nil {
		return 0, fmt.Errorf("parse pdf failed: %w", err)
	}
	text := strings.TrimSpace(strings.Join(pages, "\n\n"))
	if text == "" {
		return 0, ErrDocumentEmpty
	}

	return s.IngestText(ctx, userID, text)
}

// IngestText chunks, embeds and indexes plain document text.
func (s *DocumentService) IngestText(ctx context.Context, userID uint, text string) (int, error) {
	chunks := chunkText(text, s.chunkSize, s.chunkOverlap)
	if len(chunks) == 0 {
		return 0, ErrDocumentEmpty
	}

	embCtx, cancel := context.WithTimeout(ctx, s.embedTimeout*time.Duration(len(chunks)))
	defer cancel()

	embeddings, err := s.llm.EmbedBatch(embCtx, s.embCfg, chunks)
	if err != nil {
		return 0, fmt.Errorf("embed document failed: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return 0, fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(embeddings))
	}

	entries := make([]vectorstore.Entry, len(chunks))
	for i := range chunks {
		entries[i] = vectorstore.Entry{
			Content:   chunks[i],
			Embedding: embeddings[i],
		}
	}
	s.indexes.Replace(userID, entries)
	return len(entries), nil
}

// chunkText splits text into overlapping windows by rune count.
func chunkText(text string, size, overlap int) []string {
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap >= size {
		overlap = size / 2
	}
	var chunks []string
	runes := []rune(text)
	for i := 0; i < len(runes); {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		i += size - overlap
		if i >= len(runes) {
			break
		}
	}
	return chunks
}
