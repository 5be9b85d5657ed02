// Package cache wraps repositories with read-through caching. Writes go to
// the underlying repository first and invalidate the affected keys, so a hit
// never outlives the row it was loaded from by more than the store TTL.
package cache

import (
	"context"

	"github.com/riskibarqy/tournament-predictor/internal/domain/outcome"
	"github.com/riskibarqy/tournament-predictor/internal/domain/prediction"
	basecache "github.com/riskibarqy/tournament-predictor/internal/platform/cache"
)

type OutcomeRepository struct {
	next  outcome.Repository
	cache *basecache.Store
}

func NewOutcomeRepository(next outcome.Repository, cache *basecache.Store) *OutcomeRepository {
	return &OutcomeRepository{next: next, cache: cache}
}

func (r *OutcomeRepository) GetMatch(ctx context.Context, id string) (outcome.MatchOutcome, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, matchByIDKey(id), func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetMatch(ctx, id)
		if err != nil {
			return nil, err
		}
		return cachedMatchByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return outcome.MatchOutcome{}, false, err
	}

	cached, _ := v.(cachedMatchByID)
	return cached.value, cached.exists, nil
}

func (r *OutcomeRepository) UpsertMatch(ctx context.Context, item outcome.MatchOutcome) error {
	if err := r.next.UpsertMatch(ctx, item); err != nil {
		return err
	}
	r.cache.Delete(ctx, matchByIDKey(item.ID))
	r.cache.Delete(ctx, matchListKey)
	return nil
}

func (r *OutcomeRepository) ListMatches(ctx context.Context) ([]outcome.MatchOutcome, error) {
	v, err := r.cache.GetOrLoad(ctx, matchListKey, func(ctx context.Context) (any, error) {
		items, err := r.next.ListMatches(ctx)
		if err != nil {
			return nil, err
		}
		return append([]outcome.MatchOutcome(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]outcome.MatchOutcome)
	return append([]outcome.MatchOutcome(nil), items...), nil
}

func (r *OutcomeRepository) GetBonus(ctx context.Context, id string) (outcome.BonusOutcome, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, bonusByIDKey(id), func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetBonus(ctx, id)
		if err != nil {
			return nil, err
		}
		return cachedBonusByID{value: cloneBonus(item), exists: exists}, nil
	})
	if err != nil {
		return outcome.BonusOutcome{}, false, err
	}

	cached, _ := v.(cachedBonusByID)
	return cloneBonus(cached.value), cached.exists, nil
}

func (r *OutcomeRepository) UpsertBonus(ctx context.Context, item outcome.BonusOutcome) error {
	if err := r.next.UpsertBonus(ctx, item); err != nil {
		return err
	}
	r.cache.Delete(ctx, bonusByIDKey(item.ID))
	r.cache.Delete(ctx, bonusListKey)
	return nil
}

func (r *OutcomeRepository) ListBonuses(ctx context.Context) ([]outcome.BonusOutcome, error) {
	v, err := r.cache.GetOrLoad(ctx, bonusListKey, func(ctx context.Context) (any, error) {
		items, err := r.next.ListBonuses(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]outcome.BonusOutcome, 0, len(items))
		for _, item := range items {
			out = append(out, cloneBonus(item))
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]outcome.BonusOutcome)
	out := make([]outcome.BonusOutcome, 0, len(items))
	for _, item := range items {
		out = append(out, cloneBonus(item))
	}
	return out, nil
}

type cachedMatchByID struct {
	value  outcome.MatchOutcome
	exists bool
}

type cachedBonusByID struct {
	value  outcome.BonusOutcome
	exists bool
}

type PredictionRepository struct {
	next  prediction.Repository
	cache *basecache.Store
}

func NewPredictionRepository(next prediction.Repository, cache *basecache.Store) *PredictionRepository {
	return &PredictionRepository{next: next, cache: cache}
}

func (r *PredictionRepository) ListByOutcome(ctx context.Context, ref outcome.Ref) ([]prediction.Prediction, error) {
	v, err := r.cache.GetOrLoad(ctx, predictionByOutcomeKey(ref), func(ctx context.Context) (any, error) {
		items, err := r.next.ListByOutcome(ctx, ref)
		if err != nil {
			return nil, err
		}
		return clonePredictions(items), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]prediction.Prediction)
	return clonePredictions(items), nil
}

func (r *PredictionRepository) GetByUserAndOutcome(ctx context.Context, userID string, ref outcome.Ref) (prediction.Prediction, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, predictionByUserOutcomeKey(userID, ref), func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByUserAndOutcome(ctx, userID, ref)
		if err != nil {
			return nil, err
		}
		return cachedPredictionByUserOutcome{value: clonePrediction(item), exists: exists}, nil
	})
	if err != nil {
		return prediction.Prediction{}, false, err
	}

	cached, _ := v.(cachedPredictionByUserOutcome)
	return clonePrediction(cached.value), cached.exists, nil
}

func (r *PredictionRepository) Upsert(ctx context.Context, item prediction.Prediction) error {
	if err := r.next.Upsert(ctx, item); err != nil {
		return err
	}
	r.cache.Delete(ctx, predictionByUserOutcomeKey(item.UserID, item.OutcomeRef))
	r.cache.Delete(ctx, predictionByOutcomeKey(item.OutcomeRef))
	r.cache.Delete(ctx, predictionByUserKey(item.UserID))
	return nil
}

func (r *PredictionRepository) ListByUser(ctx context.Context, userID string) ([]prediction.Prediction, error) {
	v, err := r.cache.GetOrLoad(ctx, predictionByUserKey(userID), func(ctx context.Context) (any, error) {
		items, err := r.next.ListByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		return clonePredictions(items), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]prediction.Prediction)
	return clonePredictions(items), nil
}

type cachedPredictionByUserOutcome struct {
	value  prediction.Prediction
	exists bool
}

func cloneBonus(item outcome.BonusOutcome) outcome.BonusOutcome {
	out := item
	out.Answer = cloneAnswer(item.Answer)
	return out
}

func clonePrediction(item prediction.Prediction) prediction.Prediction {
	out := item
	out.Answer = cloneAnswer(item.Answer)
	return out
}

func clonePredictions(items []prediction.Prediction) []prediction.Prediction {
	out := make([]prediction.Prediction, 0, len(items))
	for _, item := range items {
		out = append(out, clonePrediction(item))
	}
	return out
}

func cloneAnswer(answer *outcome.Answer) *outcome.Answer {
	if answer == nil {
		return nil
	}
	out := *answer
	out.TeamIDs = append([]string(nil), answer.TeamIDs...)
	if answer.TeamByGroup != nil {
		out.TeamByGroup = make(map[string]string, len(answer.TeamByGroup))
		for group, teamID := range answer.TeamByGroup {
			out.TeamByGroup[group] = teamID
		}
	}
	return &out
}

const (
	matchListKey = "outcome:match:list"
	bonusListKey = "outcome:bonus:list"
)

func matchByIDKey(id string) string {
	return "outcome:match:id:" + id
}

func bonusByIDKey(id string) string {
	return "outcome:bonus:id:" + id
}

func predictionByOutcomeKey(ref outcome.Ref) string {
	return "prediction:outcome:" + ref.String()
}

func predictionByUserOutcomeKey(userID string, ref outcome.Ref) string {
	return "prediction:user:" + userID + ":outcome:" + ref.String()
}

func predictionByUserKey(userID string) string {
	return "prediction:user-list:" + userID
}
