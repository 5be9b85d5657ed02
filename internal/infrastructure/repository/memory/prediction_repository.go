package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/tournament-predictor/internal/domain/outcome"
	"github.com/riskibarqy/tournament-predictor/internal/domain/prediction"
)

type PredictionRepository struct {
	mu    sync.RWMutex
	items map[string]prediction.Prediction
}

func NewPredictionRepository(items []prediction.Prediction) *PredictionRepository {
	byID := make(map[string]prediction.Prediction, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	return &PredictionRepository{items: byID}
}

func (r *PredictionRepository) ListByOutcome(_ context.Context, ref outcome.Ref) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.Prediction, 0)
	for _, item := range r.items {
		if item.OutcomeRef == ref {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PredictionRepository) GetByUserAndOutcome(_ context.Context, userID string, ref outcome.Ref) (prediction.Prediction, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.UserID == userID && item.OutcomeRef == ref {
			return item, true, nil
		}
	}
	return prediction.Prediction{}, false, nil
}

func (r *PredictionRepository) Upsert(_ context.Context, item prediction.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = item
	return nil
}

func (r *PredictionRepository) ListByUser(_ context.Context, userID string) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.Prediction, 0)
	for _, item := range r.items {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
