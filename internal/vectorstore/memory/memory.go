package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"marsfaq/internal/domain"
)

type entry struct {
	chunk  domain.Chunk
	vector []float32
}

// Index is an in-memory vector index using brute-force cosine similarity,
// grouped by document identifier. Suitable for tests and small corpora.
type Index struct {
	mu   sync.RWMutex
	docs map[string][]entry
}

func NewIndex() *Index {
	return &Index{docs: make(map[string][]entry)}
}

// Upsert replaces all chunks stored for docID.
func (s *Index) Upsert(_ context.Context, docID string, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	entries := make([]entry, len(chunks))
	for i := range chunks {
		entries[i] = entry{chunk: chunks[i], vector: vectors[i]}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[docID] = entries
	return nil
}

// Delete removes every chunk stored for docID.
func (s *Index) Delete(_ context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, docID)
	return nil
}

// Query returns the topK most similar chunks across all documents.
// Vectors are assumed L2-normalized, so the dot product is the cosine.
func (s *Index) Query(_ context.Context, vector []float32, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var results []domain.SearchResult
	for _, entries := range s.docs {
		for _, e := range entries {
			results = append(results, domain.SearchResult{Chunk: e.chunk, Score: dot(e.vector, vector)})
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

// Count reports the number of stored chunks. Used by tests.
func (s *Index) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, entries := range s.docs {
		n += len(entries)
	}
	return n
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
