// Package vectorstore holds per-user in-memory retrieval indices.
package vectorstore

import (
	"math"
	"sort"
	"sync"
)

// Entry is one indexed chunk with its embedding.
type Entry struct {
	Content   string
	Embedding []float32
}

// Match is a scored retrieval result.
type Match struct {
	Content string
	Score   float32
}

// UserIndexStore maps a user ID to that user's retrieval index. A new build
// for the same user fully replaces the prior index; indices live only for the
// process lifetime.
type UserIndexStore struct {
	mu      sync.RWMutex
	indices map[uint][]Entry
}

func NewUserIndexStore() *UserIndexStore {
	return &UserIndexStore{indices: make(map[uint][]Entry)}
}

// Replace installs the given entries as the user's index, discarding any
// previous one outright.
func (s *UserIndexStore) Replace(userID uint, entries []Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indices[userID] = entries
}

// Has reports whether the user currently has an index.
func (s *UserIndexStore) Has(userID uint) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.indices[userID]) > 0
}

// Query returns the user's top-k chunks ranked by cosine similarity to the
// query embedding.
func (s *UserIndexStore) Query(userID uint, embedding []float32, topK int) []Match {
	s.mu.RLock()
	entries := s.indices[userID]
	s.mu.RUnlock()

	if len(entries) == 0 || topK <= 0 {
		return nil
	}

	matches := make([]Match, len(entries))
	for i := range entries {
		matches[i] = Match{
			Content: entries[i].Content,
			Score:   cosineSimilarity(embedding, entries[i].Embedding),
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
