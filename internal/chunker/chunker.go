// Package chunker derives indexable chunks from parsed FAQ documents.
// One chunk per question/answer pair; chunk IDs are positional so the
// same document always produces the same IDs.
package chunker

import (
	"fmt"
	"strconv"

	"marsfaq/internal/domain"
)

// Chunks renders each QA pair of doc as one chunk. The rendered text
// carries the subject so a chunk stays meaningful on its own inside a
// prompt context.
func Chunks(doc domain.Document) []domain.Chunk {
	chunks := make([]domain.Chunk, 0, len(doc.Pairs))
	for i, p := range doc.Pairs {
		chunks = append(chunks, domain.Chunk{
			DocumentID: doc.ID,
			ChunkID:    doc.ID + ":" + strconv.Itoa(i),
			Text:       Render(doc.Subject, p),
			Subject:    doc.Subject,
			Source:     doc.Source,
			Index:      i,
		})
	}
	return chunks
}

// Render formats one QA pair as prompt-ready text.
func Render(subject string, p domain.QAPair) string {
	return fmt.Sprintf("Subject: %s\nQuestion: %s\nAnswer: %s", subject, p.Question, p.Answer)
}
