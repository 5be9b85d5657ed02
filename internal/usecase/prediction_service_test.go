package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/tournament-predictor/internal/domain/outcome"
	"github.com/riskibarqy/tournament-predictor/internal/domain/prediction"
)

type stubPredictionRepo struct {
	stubPredictionView
	mu sync.Mutex
}

func (r *stubPredictionRepo) GetByUserAndOutcome(_ context.Context, userID string, ref outcome.Ref) (prediction.Prediction, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.UserID == userID && item.OutcomeRef == ref {
			return item, true, nil
		}
	}
	return prediction.Prediction{}, false, nil
}

func (r *stubPredictionRepo) Upsert(_ context.Context, item prediction.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == item.ID {
			r.items[i] = item
			return nil
		}
	}
	r.items = append(r.items, item)
	return nil
}

func (r *stubPredictionRepo) ListByUser(_ context.Context, userID string) ([]prediction.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]prediction.Prediction, 0)
	for _, item := range r.items {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type predictionFixture struct {
	outcomes    *stubOutcomeRepo
	predictions *stubPredictionRepo
	service     *PredictionService
}

func newPredictionFixture(t *testing.T) *predictionFixture {
	t.Helper()

	outcomes := newStubOutcomeRepo()
	predictions := &stubPredictionRepo{}
	service := NewPredictionService(predictions, outcomes, &seqIDGen{}, nil)
	service.now = func() time.Time {
		return time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC)
	}
	return &predictionFixture{outcomes: outcomes, predictions: predictions, service: service}
}

func TestPredictionService_SubmitMatchPrediction(t *testing.T) {
	t.Parallel()

	fx := newPredictionFixture(t)
	fx.outcomes.matches["m1"] = outcome.MatchOutcome{ID: "m1", Status: outcome.StatusScheduled}

	saved, err := fx.service.SubmitMatchPrediction(context.Background(), SubmitMatchPredictionInput{
		UserID:    "alice",
		MatchID:   "m1",
		HomeScore: 2,
		AwayScore: 1,
	})
	if err != nil {
		t.Fatalf("SubmitMatchPrediction error: %v", err)
	}
	if saved.HomeScore == nil || *saved.HomeScore != 2 || saved.AwayScore == nil || *saved.AwayScore != 1 {
		t.Fatalf("unexpected saved pick: %+v", saved)
	}

	// Re-submitting before the match turns terminal replaces the pick.
	replaced, err := fx.service.SubmitMatchPrediction(context.Background(), SubmitMatchPredictionInput{
		UserID:    "alice",
		MatchID:   "m1",
		HomeScore: 0,
		AwayScore: 0,
	})
	if err != nil {
		t.Fatalf("resubmit error: %v", err)
	}
	if replaced.ID != saved.ID {
		t.Fatalf("resubmit should keep the prediction id, got %s want %s", replaced.ID, saved.ID)
	}

	items, _ := fx.predictions.ListByUser(context.Background(), "alice")
	if len(items) != 1 || *items[0].HomeScore != 0 {
		t.Fatalf("store should hold exactly the replaced pick: %+v", items)
	}
}

func TestPredictionService_SubmitMatchPrediction_TerminalMatchRejected(t *testing.T) {
	t.Parallel()

	fx := newPredictionFixture(t)
	fx.outcomes.matches["m1"] = finalMatch("m1", 2, 1)

	_, err := fx.service.SubmitMatchPrediction(context.Background(), SubmitMatchPredictionInput{
		UserID:    "alice",
		MatchID:   "m1",
		HomeScore: 2,
		AwayScore: 1,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("submission against a terminal match should fail, got %v", err)
	}
}

func TestPredictionService_SubmitMatchPrediction_UnknownMatch(t *testing.T) {
	t.Parallel()

	fx := newPredictionFixture(t)
	_, err := fx.service.SubmitMatchPrediction(context.Background(), SubmitMatchPredictionInput{
		UserID:  "alice",
		MatchID: "nope",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestPredictionService_SubmitBonusPrediction_ShapeChecked(t *testing.T) {
	t.Parallel()

	fx := newPredictionFixture(t)
	fx.outcomes.bonuses["b1"] = outcome.BonusOutcome{
		ID:     "b1",
		Type:   outcome.BonusRoundOf16Teams,
		Status: outcome.StatusOpen,
	}

	// Entity answer against a team-set question.
	_, err := fx.service.SubmitBonusPrediction(context.Background(), SubmitBonusPredictionInput{
		UserID:  "alice",
		BonusID: "b1",
		Answer:  outcome.Answer{EntityID: "team-esp"},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("mismatched answer shape should be rejected, got %v", err)
	}

	saved, err := fx.service.SubmitBonusPrediction(context.Background(), SubmitBonusPredictionInput{
		UserID:  "alice",
		BonusID: "b1",
		Answer:  outcome.Answer{TeamIDs: []string{"A", "B", "C", "D", "E", "F", "G", "H"}},
	})
	if err != nil {
		t.Fatalf("SubmitBonusPrediction error: %v", err)
	}
	if saved.Answer == nil || len(saved.Answer.TeamIDs) != 8 {
		t.Fatalf("unexpected saved answer: %+v", saved.Answer)
	}
}

func TestPredictionService_SubmitBonusPrediction_ResolvedBonusRejected(t *testing.T) {
	t.Parallel()

	fx := newPredictionFixture(t)
	fx.outcomes.bonuses["b1"] = outcome.BonusOutcome{
		ID:     "b1",
		Type:   outcome.BonusWinner,
		Status: outcome.StatusResolved,
		Answer: &outcome.Answer{EntityID: "team-esp"},
	}

	_, err := fx.service.SubmitBonusPrediction(context.Background(), SubmitBonusPredictionInput{
		UserID:  "alice",
		BonusID: "b1",
		Answer:  outcome.Answer{EntityID: "team-esp"},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("submission after resolution should fail, got %v", err)
	}
}

func TestPredictionService_ListUserPredictions(t *testing.T) {
	t.Parallel()

	fx := newPredictionFixture(t)
	fx.outcomes.matches["m1"] = outcome.MatchOutcome{ID: "m1", Status: outcome.StatusScheduled}
	fx.outcomes.bonuses["b1"] = outcome.BonusOutcome{ID: "b1", Type: outcome.BonusWinner, Status: outcome.StatusOpen}

	if _, err := fx.service.SubmitMatchPrediction(context.Background(), SubmitMatchPredictionInput{
		UserID: "alice", MatchID: "m1", HomeScore: 1, AwayScore: 0,
	}); err != nil {
		t.Fatalf("SubmitMatchPrediction error: %v", err)
	}
	if _, err := fx.service.SubmitBonusPrediction(context.Background(), SubmitBonusPredictionInput{
		UserID: "alice", BonusID: "b1", Answer: outcome.Answer{EntityID: "team-esp"},
	}); err != nil {
		t.Fatalf("SubmitBonusPrediction error: %v", err)
	}

	items, err := fx.service.ListUserPredictions(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ListUserPredictions error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d predictions, want 2", len(items))
	}
}
