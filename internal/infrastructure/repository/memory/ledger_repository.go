package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/tournament-predictor/internal/domain/ledger"
	"github.com/riskibarqy/tournament-predictor/internal/domain/outcome"
)

// LedgerRepository keeps the append-only ledger in process memory. One
// mutex guards passes and entries together so CommitPass is atomic with
// respect to every reader.
type LedgerRepository struct {
	mu      sync.RWMutex
	passes  []ledger.Pass
	entries []ledger.Entry
}

func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{}
}

func (r *LedgerRepository) CommitPass(_ context.Context, pass ledger.Pass, entries []ledger.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	superseded := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if entry.SupersedesID != "" {
			superseded[entry.SupersedesID] = struct{}{}
		}
	}
	for i := range r.entries {
		if _, ok := superseded[r.entries[i].ID]; ok {
			r.entries[i].Active = false
		}
	}

	r.entries = append(r.entries, entries...)
	r.passes = append(r.passes, pass)
	return nil
}

func (r *LedgerRepository) GetLastPass(_ context.Context, ref outcome.Ref) (ledger.Pass, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.passes) - 1; i >= 0; i-- {
		if r.passes[i].OutcomeRef == ref {
			return r.passes[i], true, nil
		}
	}
	return ledger.Pass{}, false, nil
}

func (r *LedgerRepository) ListActiveByOutcome(_ context.Context, ref outcome.Ref) ([]ledger.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ledger.Entry, 0)
	for _, entry := range r.entries {
		if entry.OutcomeRef == ref && entry.Active {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r *LedgerRepository) ListByOutcome(_ context.Context, ref outcome.Ref) ([]ledger.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ledger.Entry, 0)
	for _, entry := range r.entries {
		if entry.OutcomeRef == ref {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r *LedgerRepository) ListByUser(_ context.Context, userID string) ([]ledger.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ledger.Entry, 0)
	for _, entry := range r.entries {
		if entry.UserID == userID {
			out = append(out, entry)
		}
	}
	return out, nil
}
