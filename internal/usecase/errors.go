package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrOutcomePending rejects scoring for an outcome that has not
	// reached a terminal status yet.
	ErrOutcomePending = errors.New("outcome is not terminal")
	// ErrScoringInProgress signals that another pass currently holds the
	// per-outcome lock. Callers may retry after the running pass commits.
	ErrScoringInProgress = errors.New("scoring already in progress for outcome")
	// ErrCommitFailed reports a commit that did not apply; no partial
	// ledger state is left behind.
	ErrCommitFailed = errors.New("scoring pass commit failed")
)
