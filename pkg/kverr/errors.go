// Package kverr defines the error taxonomy surfaced by the kv engine and
// the replay coordinator: which failures are fatal to the caller, and
// which are recoverable retry signals.
package kverr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransaction is returned by Begin when the id is negative
	// or already live. No state is mutated.
	ErrInvalidTransaction = errors.New("kv: invalid transaction id")

	// ErrNoSuchTransaction is returned by Read, Write, Commit, or Remove
	// when the id does not reference a live transaction. No state is
	// mutated.
	ErrNoSuchTransaction = errors.New("kv: no such live transaction")

	// ErrInternalInvariant indicates corrupted engine state: an unknown
	// op-log variant, or a live transaction missing its snapshot. It
	// signals a bug in the engine, not caller misuse.
	ErrInternalInvariant = errors.New("kv: internal invariant violated")

	// ErrNotImplemented is the taxonomy's kind for an unsupported
	// operation. The kv engine does not return it: its Remove is always
	// modeled as a tombstone write.
	ErrNotImplemented = errors.New("kv: not implemented")
)

// RetryError is the recoverable signal raised when commit-time
// validation fails. The transaction has already been rolled back and
// removed from the engine's indices by the time this is returned; the
// caller (or the replay coordinator) decides whether and when to retry.
type RetryError struct {
	WaitMS        int
	ConflictCount int
	Message       string
}

func (e *RetryError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("kv: retry later (%s), wait %dms", e.Message, e.WaitMS)
	}
	return fmt.Sprintf("kv: retry later, %d conflicting key(s), wait %dms", e.ConflictCount, e.WaitMS)
}

// NewConflictRetry builds a RetryError for a commit that was rolled back
// because conflictCount keys were written by another transaction at or
// after this one's start.
func NewConflictRetry(conflictCount, baseMS, perConflictMS int) *RetryError {
	return &RetryError{
		WaitMS:        baseMS + perConflictMS*conflictCount,
		ConflictCount: conflictCount,
	}
}

// NewMessageRetry builds a RetryError with a caller-supplied message
// instead of a conflict count, e.g. for the pessimistic lock-set
// variant's "key in use" rejection.
func NewMessageRetry(message string, waitMS int) *RetryError {
	return &RetryError{WaitMS: waitMS, Message: message}
}

// GiveUpError is raised by the replay coordinator once a closure has
// produced more RetryError observations than its configured budget
// allows.
type GiveUpError struct {
	MaxAttempts int
	Invocations int
}

func (e *GiveUpError) Error() string {
	return fmt.Sprintf("kv: gave up after %d invocations (max attempts %d)", e.Invocations, e.MaxAttempts)
}

// IsRetryable reports whether err is a *RetryError.
func IsRetryable(err error) (*RetryError, bool) {
	var re *RetryError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
