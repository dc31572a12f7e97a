package embedding

import "context"

// Embedder converts text into fixed-dimension vectors. Implementations
// bound each call by a timeout and mark timeouts and rate limits as
// transient via domain.Transient.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
