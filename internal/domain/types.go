package domain

// QAPair is a single question/answer record within a document.
// A question always ends with '?'; the answer may be empty when the
// source file ends (or a new question starts) before any answer line.
type QAPair struct {
	Question string
	Answer   string
}

// Document is one parsed FAQ section: a subject followed by an ordered
// sequence of question/answer pairs. Documents are immutable once parsed;
// a changed source file produces a new Document, never a mutation.
type Document struct {
	ID      string
	Subject string
	Source  string
	Pairs   []QAPair
}

// Chunk is the unit stored in the vector index: one question/answer pair
// rendered as text, plus metadata tying it back to its document.
type Chunk struct {
	DocumentID string
	ChunkID    string
	Text       string
	Subject    string
	Source     string
	Index      int
}

// SearchResult is a matching chunk with a relevance score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Answer is the response to a user question: generated text plus the
// identifiers of the documents the context was drawn from, in rank order.
type Answer struct {
	Text    string
	Sources []string
}
