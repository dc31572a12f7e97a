package chromem

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marsfaq/internal/domain"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex(Config{Path: t.TempDir(), Collection: "test"})
	require.NoError(t, err)
	return idx
}

func chunk(docID string, i int) domain.Chunk {
	return domain.Chunk{
		DocumentID: docID,
		ChunkID:    docID + ":" + strconv.Itoa(i),
		Text:       "text " + docID,
		Subject:    "Subject",
		Source:     "data/" + docID,
		Index:      i,
	}
}

func TestQueryEmptyCollection(t *testing.T) {
	idx := newTestIndex(t)
	results, err := idx.Query(context.Background(), []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestUpsertAndQuery(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	require.NoError(t, idx.Upsert(ctx, "a#0",
		[]domain.Chunk{chunk("a#0", 0)}, [][]float32{{1, 0, 0}}))
	require.NoError(t, idx.Upsert(ctx, "b#0",
		[]domain.Chunk{chunk("b#0", 0)}, [][]float32{{0, 1, 0}}))

	results, err := idx.Query(ctx, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a#0", results[0].Chunk.DocumentID)
	assert.Equal(t, "Subject", results[0].Chunk.Subject)
	assert.InDelta(t, 1.0, results[0].Score, 1e-5)
}

func TestUpsertReplacesPriorChunks(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	require.NoError(t, idx.Upsert(ctx, "a#0",
		[]domain.Chunk{chunk("a#0", 0), chunk("a#0", 1)},
		[][]float32{{1, 0, 0}, {0, 1, 0}}))
	require.NoError(t, idx.Upsert(ctx, "a#0",
		[]domain.Chunk{chunk("a#0", 0)}, [][]float32{{0, 0, 1}}))

	results, err := idx.Query(ctx, []float32{0, 0, 1}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a#0:0", results[0].Chunk.ChunkID)
}

func TestDeleteDocument(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	require.NoError(t, idx.Upsert(ctx, "a#0",
		[]domain.Chunk{chunk("a#0", 0)}, [][]float32{{1, 0, 0}}))
	require.NoError(t, idx.Upsert(ctx, "b#0",
		[]domain.Chunk{chunk("b#0", 0)}, [][]float32{{0, 1, 0}}))

	require.NoError(t, idx.Delete(ctx, "a#0"))

	results, err := idx.Query(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b#0", results[0].Chunk.DocumentID)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	idx, err := NewIndex(Config{Path: dir, Collection: "test"})
	require.NoError(t, err)
	require.NoError(t, idx.Upsert(ctx, "a#0",
		[]domain.Chunk{chunk("a#0", 0)}, [][]float32{{1, 0, 0}}))

	reopened, err := NewIndex(Config{Path: dir, Collection: "test"})
	require.NoError(t, err)
	results, err := reopened.Query(ctx, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a#0", results[0].Chunk.DocumentID)
}

func TestNewIndexRequiresPath(t *testing.T) {
	_, err := NewIndex(Config{})
	assert.Error(t, err)
}
