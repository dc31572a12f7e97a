package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marsfaq/internal/domain"
)

func TestChunks(t *testing.T) {
	doc := domain.Document{
		ID:      "booking.txt#0",
		Subject: "Booking",
		Source:  "data/booking.txt",
		Pairs: []domain.QAPair{
			{Question: "How do I book?", Answer: "Online."},
			{Question: "Can I cancel?", Answer: "Yes."},
		},
	}
	chunks := Chunks(doc)
	require.Len(t, chunks, 2)

	assert.Equal(t, "booking.txt#0:0", chunks[0].ChunkID)
	assert.Equal(t, "booking.txt#0:1", chunks[1].ChunkID)
	assert.Equal(t, "booking.txt#0", chunks[0].DocumentID)
	assert.Equal(t, "Booking", chunks[0].Subject)
	assert.Equal(t, "data/booking.txt", chunks[0].Source)
	assert.Equal(t, "Subject: Booking\nQuestion: How do I book?\nAnswer: Online.", chunks[0].Text)
	assert.Equal(t, 1, chunks[1].Index)
}

func TestChunksEmptyDocument(t *testing.T) {
	chunks := Chunks(domain.Document{ID: "x#0", Subject: "Empty"})
	assert.Empty(t, chunks)
}

func TestChunksDeterministic(t *testing.T) {
	doc := domain.Document{
		ID:      "a#0",
		Subject: "S",
		Pairs:   []domain.QAPair{{Question: "Q?", Answer: "A."}},
	}
	assert.Equal(t, Chunks(doc), Chunks(doc))
}
