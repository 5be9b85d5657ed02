package ledger

import (
	"context"

	"github.com/riskibarqy/tournament-predictor/internal/domain/outcome"
)

type Repository interface {
	// CommitPass atomically records the pass, appends the new entries and
	// marks the entries they supersede inactive. Either everything in the
	// pass becomes visible or nothing does.
	CommitPass(ctx context.Context, pass Pass, entries []Entry) error

	GetLastPass(ctx context.Context, ref outcome.Ref) (Pass, bool, error)

	ListActiveByOutcome(ctx context.Context, ref outcome.Ref) ([]Entry, error)
	ListByOutcome(ctx context.Context, ref outcome.Ref) ([]Entry, error)
	ListByUser(ctx context.Context, userID string) ([]Entry, error)
}
