// Package openai provides embeddings through an OpenAI-compatible API
// via langchaingo. Works against api.openai.com or any compatible
// endpoint (Ollama, TEI).
package openai

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	lcopenai "github.com/tmc/langchaingo/llms/openai"

	"marsfaq/internal/domain"
)

// Config for the embeddings client. The API key is read from the
// environment variable named by APIKeyEnv.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

type Client struct {
	embedder *embeddings.EmbedderImpl
	timeout  time.Duration
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	llm, err := lcopenai.New(
		lcopenai.WithToken(key),
		lcopenai.WithBaseURL(cfg.BaseURL),
		lcopenai.WithEmbeddingModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	return &Client{embedder: embedder, timeout: cfg.Timeout}, nil
}

// Embed returns the embedding vector for one text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	vec, err := c.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, classify(ctx, err)
	}
	return vec, nil
}

// EmbedBatch returns one vector per input text, in order.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	vecs, err := c.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, classify(ctx, err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d for %d texts", len(vecs), len(texts))
	}
	return vecs, nil
}

// classify marks deadline expiry as transient; the caller decides
// whether to retry.
func classify(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return domain.Transient(err)
	}
	return err
}
