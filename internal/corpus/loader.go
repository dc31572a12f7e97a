// Package corpus loads the FAQ source directory into parsed, fingerprinted
// documents keyed by stable identifier.
package corpus

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"marsfaq/internal/domain"
	"marsfaq/internal/parser"
)

// Entry pairs a parsed document with the fingerprint of its content.
type Entry struct {
	Document    domain.Document
	Fingerprint string
}

// Problem is a per-file failure that did not abort the scan.
type Problem struct {
	Path string
	Err  error
}

// Loader scans a directory of .txt FAQ files.
type Loader struct {
	dir    string
	logger *zap.Logger
}

func NewLoader(dir string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{dir: dir, logger: logger}
}

// Load parses every eligible file in the directory and returns a map from
// document ID to entry. A file that cannot be read is reported as a
// Problem and skipped; the rest of the corpus still loads. Identical
// directory contents always produce identical IDs and fingerprints.
func (l *Loader) Load(ctx context.Context) (map[string]Entry, []Problem, error) {
	files, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, nil, err
	}

	entries := make(map[string]Entry)
	seen := make(map[string]string) // fingerprint -> first document ID
	var problems []Problem
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return entries, problems, err
		}
		if f.IsDir() || !strings.HasSuffix(strings.ToLower(f.Name()), ".txt") {
			continue
		}
		path := filepath.Join(l.dir, f.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			l.logger.Warn("skipping unreadable file", zap.String("path", path), zap.Error(err))
			problems = append(problems, Problem{Path: path, Err: &domain.FingerprintError{Path: path, Err: err}})
			continue
		}

		docs, warnings := parser.Parse(f.Name(), string(data))
		for _, w := range warnings {
			l.logger.Warn("parse warning", zap.String("warning", w.String()))
		}
		for _, doc := range docs {
			doc.Source = path
			fp := Fingerprint(doc)
			if first, ok := seen[fp]; ok {
				l.logger.Warn("duplicate section content",
					zap.String("id", doc.ID), zap.String("first", first))
			} else {
				seen[fp] = doc.ID
			}
			entries[doc.ID] = Entry{Document: doc, Fingerprint: fp}
		}
		l.logger.Debug("parsed file",
			zap.String("path", path),
			zap.Int("sections", len(docs)))
	}

	l.logger.Info("corpus loaded",
		zap.String("dir", l.dir),
		zap.Int("documents", len(entries)),
		zap.Int("problems", len(problems)))
	return entries, problems, nil
}

// Fingerprint digests a document's parsed content. Hashing the parsed
// form rather than raw file bytes keeps sibling sections of a multi-section
// file untouched when only one section changes.
func Fingerprint(doc domain.Document) string {
	h := sha256.New()
	h.Write([]byte(doc.Subject))
	for _, p := range doc.Pairs {
		h.Write([]byte{0})
		h.Write([]byte(p.Question))
		h.Write([]byte{0})
		h.Write([]byte(p.Answer))
	}
	return hex.EncodeToString(h.Sum(nil))
}
