package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/tournament-predictor/internal/domain/outcome"
)

type OutcomeRepository struct {
	mu      sync.RWMutex
	matches map[string]outcome.MatchOutcome
	bonuses map[string]outcome.BonusOutcome
}

func NewOutcomeRepository(matches []outcome.MatchOutcome, bonuses []outcome.BonusOutcome) *OutcomeRepository {
	matchByID := make(map[string]outcome.MatchOutcome, len(matches))
	for _, item := range matches {
		matchByID[item.ID] = item
	}
	bonusByID := make(map[string]outcome.BonusOutcome, len(bonuses))
	for _, item := range bonuses {
		bonusByID[item.ID] = item
	}

	return &OutcomeRepository{matches: matchByID, bonuses: bonusByID}
}

func (r *OutcomeRepository) GetMatch(_ context.Context, id string) (outcome.MatchOutcome, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.matches[id]
	return item, ok, nil
}

func (r *OutcomeRepository) UpsertMatch(_ context.Context, item outcome.MatchOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.matches[item.ID] = item
	return nil
}

func (r *OutcomeRepository) ListMatches(_ context.Context) ([]outcome.MatchOutcome, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]outcome.MatchOutcome, 0, len(r.matches))
	for _, item := range r.matches {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *OutcomeRepository) GetBonus(_ context.Context, id string) (outcome.BonusOutcome, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.bonuses[id]
	return item, ok, nil
}

func (r *OutcomeRepository) UpsertBonus(_ context.Context, item outcome.BonusOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bonuses[item.ID] = item
	return nil
}

func (r *OutcomeRepository) ListBonuses(_ context.Context) ([]outcome.BonusOutcome, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]outcome.BonusOutcome, 0, len(r.bonuses))
	for _, item := range r.bonuses {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
