// Package state persists the record of what the vector index currently
// holds: one fingerprint (plus chunk IDs) per document identifier. The
// synchronizer diffs the corpus against this store to find changes.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Record describes one indexed document.
type Record struct {
	Fingerprint string   `json:"fingerprint"`
	ChunkIDs    []string `json:"chunk_ids"`
	Subject     string   `json:"subject"`
	Source      string   `json:"source"`
}

// Store is a JSON manifest on disk mapping document ID to Record.
// Put and Delete flush the manifest before returning, so a crash between
// documents never leaves a record for work that did not complete.
type Store struct {
	path    string
	records map[string]Record
}

// Open loads the manifest at path, or starts empty if it does not exist.
func Open(path string) (*Store, error) {
	s := &Store{path: path, records: make(map[string]Record)}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &s.records); err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return s, nil
}

// Get returns the record for id, if present.
func (s *Store) Get(id string) (Record, bool) {
	r, ok := s.records[id]
	return r, ok
}

// List returns all known document IDs, sorted.
func (s *Store) List() []string {
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Put stores the record for id and persists the manifest.
func (s *Store) Put(id string, r Record) error {
	s.records[id] = r
	return s.flush()
}

// Delete removes the record for id and persists the manifest. Deleting an
// absent id is a no-op.
func (s *Store) Delete(id string) error {
	if _, ok := s.records[id]; !ok {
		return nil
	}
	delete(s.records, id)
	return s.flush()
}

// flush writes the manifest atomically: temp file in the same directory,
// fsync, then rename over the old manifest.
func (s *Store) flush() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".manifest-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
