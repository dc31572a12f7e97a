// Package index reconciles the loaded corpus against the vector index:
// it diffs fingerprints against the persisted state store, embeds and
// upserts what changed, and removes what disappeared.
package index

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"marsfaq/internal/chunker"
	"marsfaq/internal/corpus"
	"marsfaq/internal/domain"
	"marsfaq/internal/embedding"
	"marsfaq/internal/state"
	"marsfaq/internal/vectorstore"
)

// Failure is a per-document error recorded during a sync pass.
type Failure struct {
	DocumentID string
	Err        error
}

// Report summarizes one synchronization pass. The ID slices are sorted.
type Report struct {
	Added     []string
	Updated   []string
	Deleted   []string
	Unchanged []string
	Skipped   []string
	Failures  []Failure
}

// Changed reports whether the pass performed any index mutation.
func (r *Report) Changed() bool {
	return len(r.Added)+len(r.Updated)+len(r.Deleted) > 0
}

// Synchronizer drives sync passes. All collaborators are injected; it
// owns no global state.
type Synchronizer struct {
	store    *state.Store
	index    vectorstore.Index
	embedder embedding.Embedder
	logger   *zap.Logger
}

func New(store *state.Store, index vectorstore.Index, embedder embedding.Embedder, logger *zap.Logger) *Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synchronizer{store: store, index: index, embedder: embedder, logger: logger}
}

// Sync reconciles entries against the state store and the vector index.
//
// Documents are processed one at a time in sorted ID order. A failure on
// one document is recorded and the pass continues; the state store is
// only written for documents whose index mutation fully succeeded, so a
// record's fingerprint always matches chunks actually in the index.
// Cancellation is honored between documents: completed work stays valid
// and the context error is returned alongside the partial report.
//
// A second pass over an unchanged corpus performs no mutations.
func (s *Synchronizer) Sync(ctx context.Context, entries map[string]corpus.Entry) (*Report, error) {
	report := &Report{}

	var toWrite, toRemove []string
	for id, entry := range entries {
		prev, known := s.store.Get(id)
		switch {
		case !known:
			toWrite = append(toWrite, id)
		case prev.Fingerprint != entry.Fingerprint:
			toWrite = append(toWrite, id)
		default:
			report.Unchanged = append(report.Unchanged, id)
		}
	}
	for _, id := range s.store.List() {
		if _, ok := entries[id]; !ok {
			toRemove = append(toRemove, id)
		}
	}
	sort.Strings(toWrite)
	sort.Strings(toRemove)
	sort.Strings(report.Unchanged)

	for _, id := range toWrite {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		s.syncDocument(ctx, id, entries[id], report)
	}
	for _, id := range toRemove {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		s.removeDocument(ctx, id, report)
	}

	s.verify(entries)
	s.logger.Info("sync pass complete",
		zap.Int("added", len(report.Added)),
		zap.Int("updated", len(report.Updated)),
		zap.Int("deleted", len(report.Deleted)),
		zap.Int("unchanged", len(report.Unchanged)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("failures", len(report.Failures)))
	return report, nil
}

// syncDocument embeds and upserts one added or changed document, then
// persists its record. Zero-pair documents are excluded from the index.
func (s *Synchronizer) syncDocument(ctx context.Context, id string, entry corpus.Entry, report *Report) {
	doc := entry.Document
	_, known := s.store.Get(id)

	if len(doc.Pairs) == 0 {
		// Nothing to embed. If an earlier version was indexed, its
		// chunks and record must go.
		if known && !s.remove(ctx, id, report) {
			return
		}
		s.logger.Warn("skipping document with no QA pairs", zap.String("id", id))
		report.Skipped = append(report.Skipped, id)
		return
	}

	chunks := chunker.Chunks(doc)
	texts := make([]string, len(chunks))
	chunkIDs := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
		chunkIDs[i] = c.ChunkID
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		s.fail(report, id, &domain.SyncError{DocumentID: id, Op: "embed", Err: err})
		return
	}
	if err := s.index.Upsert(ctx, id, chunks, vectors); err != nil {
		s.fail(report, id, &domain.SyncError{DocumentID: id, Op: "upsert", Err: err})
		return
	}
	err = s.store.Put(id, state.Record{
		Fingerprint: entry.Fingerprint,
		ChunkIDs:    chunkIDs,
		Subject:     doc.Subject,
		Source:      doc.Source,
	})
	if err != nil {
		s.fail(report, id, &domain.SyncError{DocumentID: id, Op: "record", Err: err})
		return
	}

	if known {
		report.Updated = append(report.Updated, id)
	} else {
		report.Added = append(report.Added, id)
	}
}

// removeDocument drops a document's chunks from the index, then its
// record.
func (s *Synchronizer) removeDocument(ctx context.Context, id string, report *Report) {
	if s.remove(ctx, id, report) {
		report.Deleted = append(report.Deleted, id)
	}
}

// remove performs the index-then-record deletion. Record deletion comes
// second so a crash in between costs nothing worse than an extra delete
// next run.
func (s *Synchronizer) remove(ctx context.Context, id string, report *Report) bool {
	if err := s.index.Delete(ctx, id); err != nil {
		s.fail(report, id, &domain.SyncError{DocumentID: id, Op: "delete", Err: err})
		return false
	}
	if err := s.store.Delete(id); err != nil {
		s.fail(report, id, &domain.SyncError{DocumentID: id, Op: "record", Err: err})
		return false
	}
	return true
}

func (s *Synchronizer) fail(report *Report, id string, err error) {
	s.logger.Error("document sync failed", zap.String("id", id), zap.Error(err))
	report.Failures = append(report.Failures, Failure{DocumentID: id, Err: err})
}

// verify compares store contents with the corpus after the pass and logs
// any divergence (expected only when documents failed or were skipped).
func (s *Synchronizer) verify(entries map[string]corpus.Entry) {
	for _, id := range s.store.List() {
		if _, ok := entries[id]; !ok {
			s.logger.Warn("post-sync check: record without source document", zap.String("id", id))
		}
	}
	for id, entry := range entries {
		if len(entry.Document.Pairs) == 0 {
			continue
		}
		if _, ok := s.store.Get(id); !ok {
			s.logger.Warn("post-sync check: document without record", zap.String("id", id))
		}
	}
}
