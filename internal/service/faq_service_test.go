package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marsfaq/internal/domain"
)

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []float32{1, 0, 0}, nil
}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

type stubIndex struct {
	results []domain.SearchResult
	err     error
}

func (s *stubIndex) Upsert(context.Context, string, []domain.Chunk, [][]float32) error { return nil }
func (s *stubIndex) Delete(context.Context, string) error                              { return nil }
func (s *stubIndex) Query(context.Context, []float32, int) ([]domain.SearchResult, error) {
	return s.results, s.err
}

type stubGenerator struct {
	replies []string
	errs    []error
	prompts []string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	i := len(s.prompts) - 1
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	reply := ""
	if i < len(s.replies) {
		reply = s.replies[i]
	}
	return reply, err
}

func result(docID, text string, score float64) domain.SearchResult {
	return domain.SearchResult{
		Chunk: domain.Chunk{DocumentID: docID, ChunkID: docID + ":0", Text: text},
		Score: score,
	}
}

func TestAnswerHappyPath(t *testing.T) {
	gen := &stubGenerator{replies: []string{"Book through the website."}}
	svc := New(&stubEmbedder{}, &stubIndex{results: []domain.SearchResult{
		result("booking.txt#0", "Subject: Booking\nQuestion: How do I book?\nAnswer: Online.", 0.9),
		result("travel.txt#0", "Subject: Travel\nQuestion: How long?\nAnswer: Seven months.", 0.5),
	}}, gen, Config{}, nil)

	ans, err := svc.Answer(context.Background(), "How do I book a trip?")
	require.NoError(t, err)
	assert.Equal(t, "Book through the website.", ans.Text)
	assert.Equal(t, []string{"booking.txt#0", "travel.txt#0"}, ans.Sources)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Mars Tourism Inc.")
	assert.Contains(t, gen.prompts[0], "Question: How do I book a trip?")
	assert.Contains(t, gen.prompts[0], "Answer: Online.")
}

func TestAnswerEmptyIndexFallsBack(t *testing.T) {
	gen := &stubGenerator{}
	svc := New(&stubEmbedder{}, &stubIndex{}, gen, Config{}, nil)

	ans, err := svc.Answer(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, FallbackAnswer, ans.Text)
	assert.Empty(t, ans.Sources)
	assert.Empty(t, gen.prompts, "fallback must not call the model")
}

func TestAnswerRetriesOnceOnTransientFailure(t *testing.T) {
	gen := &stubGenerator{
		errs:    []error{domain.Transient(errors.New("rate limited")), nil},
		replies: []string{"", "Second try worked."},
	}
	svc := New(&stubEmbedder{}, &stubIndex{results: []domain.SearchResult{
		result("a#0", "text", 0.9),
	}}, gen, Config{}, nil)

	ans, err := svc.Answer(context.Background(), "q?")
	require.NoError(t, err)
	assert.Equal(t, "Second try worked.", ans.Text)
	assert.Len(t, gen.prompts, 2)
}

func TestAnswerSurfacesPersistentTransientFailure(t *testing.T) {
	boom := domain.Transient(errors.New("still down"))
	gen := &stubGenerator{errs: []error{boom, boom}}
	svc := New(&stubEmbedder{}, &stubIndex{results: []domain.SearchResult{
		result("a#0", "text", 0.9),
	}}, gen, Config{}, nil)

	_, err := svc.Answer(context.Background(), "q?")
	var ansErr *domain.AnswerError
	require.ErrorAs(t, err, &ansErr)
	assert.Len(t, gen.prompts, 2, "exactly one retry")
}

func TestAnswerDoesNotRetryPermanentFailure(t *testing.T) {
	gen := &stubGenerator{errs: []error{errors.New("invalid api key")}}
	svc := New(&stubEmbedder{}, &stubIndex{results: []domain.SearchResult{
		result("a#0", "text", 0.9),
	}}, gen, Config{}, nil)

	_, err := svc.Answer(context.Background(), "q?")
	var ansErr *domain.AnswerError
	require.ErrorAs(t, err, &ansErr)
	assert.Len(t, gen.prompts, 1)
}

func TestAnswerQueryFailureIsRetrievalError(t *testing.T) {
	svc := New(&stubEmbedder{}, &stubIndex{err: errors.New("index offline")}, &stubGenerator{}, Config{}, nil)
	_, err := svc.Answer(context.Background(), "q?")
	var retErr *domain.RetrievalError
	assert.ErrorAs(t, err, &retErr)
}

func TestAnswerEmbedFailureIsRetrievalError(t *testing.T) {
	svc := New(&stubEmbedder{err: errors.New("embed down")}, &stubIndex{}, &stubGenerator{}, Config{}, nil)
	_, err := svc.Answer(context.Background(), "q?")
	var retErr *domain.RetrievalError
	assert.ErrorAs(t, err, &retErr)
}

func TestAnswerBlankQuestionFallsBack(t *testing.T) {
	svc := New(&stubEmbedder{}, &stubIndex{}, &stubGenerator{}, Config{}, nil)
	ans, err := svc.Answer(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, FallbackAnswer, ans.Text)
}

func TestBuildPromptRespectsBudget(t *testing.T) {
	big := strings.Repeat("x", 300)
	results := []domain.SearchResult{
		result("a#0", big, 0.9),
		result("b#0", big, 0.8),
		result("c#0", big, 0.7),
	}
	prompt, sources := buildPrompt("q?", results, 400)
	assert.Equal(t, []string{"a#0"}, sources, "budget admits only the top chunk")
	assert.Contains(t, prompt, big)

	_, all := buildPrompt("q?", results, 10000)
	assert.Equal(t, []string{"a#0", "b#0", "c#0"}, all)
}

func TestBuildPromptDeduplicatesSources(t *testing.T) {
	results := []domain.SearchResult{
		result("a#0", "first", 0.9),
		result("a#0", "second", 0.8),
		result("b#0", "third", 0.7),
	}
	_, sources := buildPrompt("q?", results, 10000)
	assert.Equal(t, []string{"a#0", "b#0"}, sources)
}
