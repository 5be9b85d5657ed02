package ledger

import (
	"time"

	"github.com/riskibarqy/tournament-predictor/internal/domain/outcome"
)

// Entry is one point award in the append-only ledger. Entries are never
// mutated: a reconciliation writes a new active entry that supersedes the
// previous one, which is kept and marked inactive.
type Entry struct {
	ID           string
	UserID       string
	OutcomeRef   outcome.Ref
	PredictionID string
	Points       int
	Voided       bool
	Active       bool
	RuleVersion  string
	PassID       string
	SupersedesID string
	ComputedAt   time.Time
}

// Pass records one committed scoring pass for an outcome. The result hash is
// compared on the next trigger: an unchanged hash makes a re-trigger a no-op.
type Pass struct {
	ID          string
	OutcomeRef  outcome.Ref
	ResultHash  uint64
	RuleVersion string
	EntryCount  int
	CommittedAt time.Time
}
