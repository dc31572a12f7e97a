package domain

import (
	"errors"
	"fmt"
)

// FingerprintError reports an I/O failure while reading or digesting a
// source file. The file is skipped; the scan continues.
type FingerprintError struct {
	Path string
	Err  error
}

func (e *FingerprintError) Error() string {
	return fmt.Sprintf("fingerprint %s: %v", e.Path, e.Err)
}

func (e *FingerprintError) Unwrap() error { return e.Err }

// SyncError reports a failure to embed, upsert or delete one document
// during a synchronization pass. It is recorded in the report and does
// not abort the batch.
type SyncError struct {
	DocumentID string
	Op         string
	Err        error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s %s: %v", e.Op, e.DocumentID, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// RetrievalError reports a vector index query failure. It is surfaced to
// the caller; retrieval never silently degrades to an empty result.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string { return fmt.Sprintf("retrieval: %v", e.Err) }

func (e *RetrievalError) Unwrap() error { return e.Err }

// AnswerError reports a generation failure that persisted through the
// single retry. Distinct from the empty-context fallback, which is a
// valid answer.
type AnswerError struct {
	Err error
}

func (e *AnswerError) Error() string { return fmt.Sprintf("answer: %v", e.Err) }

func (e *AnswerError) Unwrap() error { return e.Err }

// TransientError marks a failure worth retrying once: timeouts, rate
// limits, 5xx responses from external collaborators.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return fmt.Sprintf("transient: %v", e.Err) }

func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as retryable. Returns nil for a nil err.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err is marked retryable.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
