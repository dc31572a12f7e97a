package llm

import "context"

// Generator produces text from a prompt. Implementations bound each call
// by a timeout and mark retryable failures via domain.Transient.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
