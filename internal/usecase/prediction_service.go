package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/tournament-predictor/internal/domain/outcome"
	"github.com/riskibarqy/tournament-predictor/internal/domain/prediction"
	"github.com/riskibarqy/tournament-predictor/internal/platform/id"
	"github.com/riskibarqy/tournament-predictor/internal/platform/logging"
)

type SubmitMatchPredictionInput struct {
	UserID    string
	MatchID   string
	HomeScore int
	AwayScore int
}

type SubmitBonusPredictionInput struct {
	UserID  string
	BonusID string
	Answer  outcome.Answer
}

// PredictionService is the write side of the prediction store. A user holds
// at most one prediction per outcome; re-submitting before the outcome turns
// terminal replaces the earlier pick, afterwards the submission is rejected.
type PredictionService struct {
	predictionRepo prediction.Repository
	outcomeRepo    outcome.Repository
	idGen          id.Generator
	logger         *logging.Logger
	now            func() time.Time
}

func NewPredictionService(
	predictionRepo prediction.Repository,
	outcomeRepo outcome.Repository,
	idGen id.Generator,
	logger *logging.Logger,
) *PredictionService {
	if idGen == nil {
		idGen = id.NewRandomGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PredictionService{
		predictionRepo: predictionRepo,
		outcomeRepo:    outcomeRepo,
		idGen:          idGen,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *PredictionService) SubmitMatchPrediction(ctx context.Context, input SubmitMatchPredictionInput) (prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.SubmitMatchPrediction")
	defer span.End()

	if strings.TrimSpace(input.UserID) == "" {
		return prediction.Prediction{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.HomeScore < 0 || input.AwayScore < 0 {
		return prediction.Prediction{}, fmt.Errorf("%w: predicted scores must be >= 0", ErrInvalidInput)
	}

	match, exists, err := s.outcomeRepo.GetMatch(ctx, input.MatchID)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("get match %s: %w", input.MatchID, err)
	}
	if !exists {
		return prediction.Prediction{}, fmt.Errorf("%w: match %s", ErrNotFound, input.MatchID)
	}
	if match.IsTerminal() {
		return prediction.Prediction{}, fmt.Errorf("%w: match %s is already %s", ErrInvalidInput, match.ID, match.Status)
	}

	home, away := input.HomeScore, input.AwayScore
	return s.save(ctx, input.UserID, match.Ref(), func(p *prediction.Prediction) {
		p.HomeScore = &home
		p.AwayScore = &away
		p.Answer = nil
	})
}

func (s *PredictionService) SubmitBonusPrediction(ctx context.Context, input SubmitBonusPredictionInput) (prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.SubmitBonusPrediction")
	defer span.End()

	if strings.TrimSpace(input.UserID) == "" {
		return prediction.Prediction{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	bonus, exists, err := s.outcomeRepo.GetBonus(ctx, input.BonusID)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("get bonus %s: %w", input.BonusID, err)
	}
	if !exists {
		return prediction.Prediction{}, fmt.Errorf("%w: bonus %s", ErrNotFound, input.BonusID)
	}
	if bonus.IsTerminal() {
		return prediction.Prediction{}, fmt.Errorf("%w: bonus %s is already %s", ErrInvalidInput, bonus.ID, bonus.Status)
	}
	if !input.Answer.Matches(bonus.Type) {
		return prediction.Prediction{}, fmt.Errorf("%w: answer shape does not fit bonus type %s", ErrInvalidInput, bonus.Type)
	}

	answer := input.Answer
	return s.save(ctx, input.UserID, bonus.Ref(), func(p *prediction.Prediction) {
		p.HomeScore = nil
		p.AwayScore = nil
		p.Answer = &answer
	})
}

func (s *PredictionService) GetUserPrediction(ctx context.Context, userID string, ref outcome.Ref) (prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.GetUserPrediction")
	defer span.End()

	item, exists, err := s.predictionRepo.GetByUserAndOutcome(ctx, userID, ref)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("get prediction user=%s outcome=%s: %w", userID, ref, err)
	}
	if !exists {
		return prediction.Prediction{}, fmt.Errorf("%w: prediction user=%s outcome=%s", ErrNotFound, userID, ref)
	}
	return item, nil
}

func (s *PredictionService) ListUserPredictions(ctx context.Context, userID string) ([]prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.ListUserPredictions")
	defer span.End()

	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	items, err := s.predictionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list predictions for user %s: %w", userID, err)
	}
	return items, nil
}

func (s *PredictionService) save(
	ctx context.Context,
	userID string,
	ref outcome.Ref,
	apply func(p *prediction.Prediction),
) (prediction.Prediction, error) {
	now := s.now().UTC()

	item, exists, err := s.predictionRepo.GetByUserAndOutcome(ctx, userID, ref)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("get prediction user=%s outcome=%s: %w", userID, ref, err)
	}
	if !exists {
		predictionID, idErr := s.idGen.NewID()
		if idErr != nil {
			return prediction.Prediction{}, fmt.Errorf("generate prediction id: %w", idErr)
		}
		item = prediction.Prediction{
			ID:         predictionID,
			UserID:     userID,
			OutcomeRef: ref,
			CreatedAt:  now,
		}
	}

	apply(&item)
	item.UpdatedAt = now

	if err := s.predictionRepo.Upsert(ctx, item); err != nil {
		return prediction.Prediction{}, fmt.Errorf("upsert prediction %s: %w", item.ID, err)
	}
	s.logger.DebugContext(ctx, "prediction saved",
		"prediction_id", item.ID, "user_id", userID, "outcome", ref.String(), "replaced", exists)
	return item, nil
}
