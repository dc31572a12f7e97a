// Package chromem persists chunks in an embedded chromem-go database.
// No external service is needed; collections are stored as gob files
// under the configured directory.
package chromem

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	chromemgo "github.com/philippgille/chromem-go"

	"marsfaq/internal/domain"
)

// Config for the embedded chromem store.
type Config struct {
	Path       string
	Collection string
	Compress   bool
}

// Index implements vectorstore.Index on top of a chromem collection.
// All embeddings are computed by the caller; the collection's embedding
// function is never invoked.
type Index struct {
	collection *chromemgo.Collection
}

func NewIndex(cfg Config) (*Index, error) {
	if cfg.Path == "" {
		return nil, errors.New("chromem path is required")
	}
	if cfg.Collection == "" {
		cfg.Collection = "mars_faq"
	}
	db, err := chromemgo.NewPersistentDB(cfg.Path, cfg.Compress)
	if err != nil {
		return nil, fmt.Errorf("opening chromem db: %w", err)
	}
	collection, err := db.GetOrCreateCollection(cfg.Collection, nil, rejectEmbedding)
	if err != nil {
		return nil, fmt.Errorf("opening collection %s: %w", cfg.Collection, err)
	}
	return &Index{collection: collection}, nil
}

// rejectEmbedding guards against chromem falling back to its built-in
// OpenAI embedding function; every document and query carries a
// precomputed vector.
func rejectEmbedding(context.Context, string) ([]float32, error) {
	return nil, errors.New("embeddings must be precomputed")
}

// Upsert replaces all chunks stored for docID.
func (s *Index) Upsert(ctx context.Context, docID string, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	if err := s.Delete(ctx, docID); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}
	docs := make([]chromemgo.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = chromemgo.Document{
			ID:        c.ChunkID,
			Content:   c.Text,
			Embedding: vectors[i],
			Metadata: map[string]string{
				"document_id": c.DocumentID,
				"subject":     c.Subject,
				"source":      c.Source,
				"chunk_index": strconv.Itoa(c.Index),
			},
		}
	}
	if err := s.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("adding documents for %s: %w", docID, err)
	}
	return nil
}

// Delete removes every chunk whose metadata names docID.
func (s *Index) Delete(ctx context.Context, docID string) error {
	if s.collection.Count() == 0 {
		return nil
	}
	if err := s.collection.Delete(ctx, map[string]string{"document_id": docID}, nil); err != nil {
		return fmt.Errorf("deleting chunks for %s: %w", docID, err)
	}
	return nil
}

// Query returns up to topK chunks ranked by cosine similarity. An empty
// collection yields an empty result, not an error.
func (s *Index) Query(ctx context.Context, vector []float32, topK int) ([]domain.SearchResult, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if topK <= 0 || topK > count {
		topK = count
	}
	found, err := s.collection.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}
	results := make([]domain.SearchResult, 0, len(found))
	for _, r := range found {
		idx, _ := strconv.Atoi(r.Metadata["chunk_index"])
		results = append(results, domain.SearchResult{
			Chunk: domain.Chunk{
				DocumentID: r.Metadata["document_id"],
				ChunkID:    r.ID,
				Text:       r.Content,
				Subject:    r.Metadata["subject"],
				Source:     r.Metadata["source"],
				Index:      idx,
			},
			Score: float64(r.Similarity),
		})
	}
	return results, nil
}
