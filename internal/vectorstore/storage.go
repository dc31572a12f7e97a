package vectorstore

import (
	"context"

	"marsfaq/internal/domain"
)

// Index stores embedded chunks keyed by document identifier and supports
// similarity search. Upsert replaces every chunk previously stored for
// the document, so a re-indexed document never leaves stale chunks behind.
type Index interface {
	Upsert(ctx context.Context, docID string, chunks []domain.Chunk, vectors [][]float32) error
	Delete(ctx context.Context, docID string) error
	Query(ctx context.Context, vector []float32, topK int) ([]domain.SearchResult, error)
}
