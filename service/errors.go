package service

import "errors"

// Ledger failure kinds. Each is independently distinguishable with
// errors.Is; the event router converts all four into user-visible
// messages rather than surfacing them to the caller.
var (
	// ErrSelfMention - excluding the sender emptied the recipient set
	ErrSelfMention = errors.New("sender is the only recipient")

	// ErrQuotaExceeded - the transfer would push the sender past the
	// daily quota
	ErrQuotaExceeded = errors.New("daily point quota exceeded")

	// ErrConflict - a guarded write lost the race to a concurrent
	// writer and the retry budget is exhausted
	ErrConflict = errors.New("write conflict after retries")

	// ErrStorage - the store failed for a reason other than a guarded
	// condition; never retried by the core
	ErrStorage = errors.New("storage failure")
)

// Collaborator failure kinds.
var (
	// ErrProfileNotFound - the identity source does not know the user
	ErrProfileNotFound = errors.New("profile not found")

	// ErrCredentialMissing - the workspace has no usable token;
	// terminal, reported to the caller
	ErrCredentialMissing = errors.New("workspace credential missing")
)
