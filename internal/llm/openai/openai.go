// Package openai generates chat completions through an OpenAI-compatible
// API via langchaingo.
package openai

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"

	"marsfaq/internal/domain"
)

// Config for the completion client. The API key is read from the
// environment variable named by APIKeyEnv.
type Config struct {
	BaseURL     string
	APIKeyEnv   string
	Model       string
	Timeout     time.Duration
	Temperature float64
}

type Client struct {
	llm         *lcopenai.LLM
	timeout     time.Duration
	temperature float64
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
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	llm, err := lcopenai.New(
		lcopenai.WithToken(key),
		lcopenai.WithBaseURL(cfg.BaseURL),
		lcopenai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}
	return &Client{llm: llm, timeout: cfg.Timeout, temperature: cfg.Temperature}, nil
}

// Generate returns the completion for prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	out, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt,
		llms.WithTemperature(c.temperature))
	if err != nil {
		return "", classify(ctx, err)
	}
	return strings.TrimSpace(out), nil
}

// classify marks timeouts, rate limits and server errors as transient.
func classify(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return domain.Transient(err)
	}
	msg := err.Error()
	for _, marker := range []string{"429", "rate limit", "500", "502", "503", "504"} {
		if strings.Contains(msg, marker) {
			return domain.Transient(err)
		}
	}
	return err
}
