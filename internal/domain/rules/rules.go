package rules

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/tournament-predictor/internal/domain/outcome"
	"github.com/riskibarqy/tournament-predictor/internal/domain/prediction"
)

var ErrMalformedPrediction = errors.New("prediction shape does not match outcome category")

// Config stores the point weights for every scoring category. Rules never
// hardcode magnitudes; the weights and their version tag come from service
// configuration and are stamped onto every ledger entry.
type Config struct {
	Version string

	ExactScorePoints     int
	CorrectOutcomePoints int
	WinnerPoints         int
	TopScorerPoints      int
	TeamPoints           int
	GroupPoints          int
}

func DefaultConfig() Config {
	return Config{
		Version:              "v1",
		ExactScorePoints:     10,
		CorrectOutcomePoints: 5,
		WinnerPoints:         10,
		TopScorerPoints:      10,
		TeamPoints:           3,
		GroupPoints:          5,
	}
}

// Score is the outcome of evaluating one prediction. Voided entries keep the
// audit trail for cancelled outcomes instead of being omitted.
type Score struct {
	Points int
	Voided bool
}

// EvaluateMatch scores a match prediction against a terminal match outcome.
// Exact score beats correct direction; wrong direction scores zero.
func EvaluateMatch(p prediction.Prediction, m outcome.MatchOutcome, cfg Config) (Score, error) {
	if p.OutcomeRef.Kind != outcome.KindMatch || p.OutcomeRef.ID != m.ID {
		return Score{}, fmt.Errorf("%w: prediction %s does not reference match %s", ErrMalformedPrediction, p.ID, m.ID)
	}
	if m.Status == outcome.StatusCancelled {
		return Score{Voided: true}, nil
	}

	pick, ok := p.ScorePick()
	if !ok {
		return Score{}, fmt.Errorf("%w: prediction %s is missing a score pick", ErrMalformedPrediction, p.ID)
	}
	result, ok := m.Result()
	if !ok {
		return Score{}, fmt.Errorf("match %s has no result to score against", m.ID)
	}

	switch {
	case pick == result:
		return Score{Points: cfg.ExactScorePoints}, nil
	case pick.Direction() == result.Direction():
		return Score{Points: cfg.CorrectOutcomePoints}, nil
	default:
		return Score{}, nil
	}
}

// bonusEvaluator scores one resolved bonus category. Adding a category is a
// local change: implement the evaluator and register it in the table.
type bonusEvaluator func(predicted, resolved outcome.Answer, cfg Config) int

var bonusEvaluators = map[outcome.BonusQuestionType]bonusEvaluator{
	outcome.BonusWinner: func(predicted, resolved outcome.Answer, cfg Config) int {
		return entityMatchPoints(predicted, resolved, cfg.WinnerPoints)
	},
	outcome.BonusTopScorer: func(predicted, resolved outcome.Answer, cfg Config) int {
		return entityMatchPoints(predicted, resolved, cfg.TopScorerPoints)
	},
	outcome.BonusMostGoalsGroup:    groupMatchPoints,
	outcome.BonusMostConcededGroup: groupMatchPoints,
	outcome.BonusRoundOf16Teams:    teamIntersectionPoints,
	outcome.BonusQuarterFinalTeams: teamIntersectionPoints,
	outcome.BonusSemiFinalTeams:    teamIntersectionPoints,
	outcome.BonusFinalTeams:        teamIntersectionPoints,
}

// EvaluateBonus scores a bonus prediction against a terminal bonus outcome.
func EvaluateBonus(p prediction.Prediction, b outcome.BonusOutcome, cfg Config) (Score, error) {
	if p.OutcomeRef.Kind != outcome.KindBonus || p.OutcomeRef.ID != b.ID {
		return Score{}, fmt.Errorf("%w: prediction %s does not reference bonus %s", ErrMalformedPrediction, p.ID, b.ID)
	}
	if b.Status == outcome.StatusCancelled {
		return Score{Voided: true}, nil
	}

	if p.Answer == nil || !p.Answer.Matches(b.Type) {
		return Score{}, fmt.Errorf("%w: prediction %s does not fit bonus type %s", ErrMalformedPrediction, p.ID, b.Type)
	}
	if b.Answer == nil {
		return Score{}, fmt.Errorf("bonus %s has no resolved answer to score against", b.ID)
	}

	evaluate, ok := bonusEvaluators[b.Type]
	if !ok {
		return Score{}, fmt.Errorf("%w: %s", outcome.ErrUnknownBonusType, b.Type)
	}
	return Score{Points: evaluate(*p.Answer, *b.Answer, cfg)}, nil
}

func entityMatchPoints(predicted, resolved outcome.Answer, points int) int {
	if predicted.EntityID != "" && predicted.EntityID == resolved.EntityID {
		return points
	}
	return 0
}

// teamIntersectionPoints awards the per-team weight for every predicted team
// present in the resolved set. Extra wrong picks earn nothing but cost nothing.
func teamIntersectionPoints(predicted, resolved outcome.Answer, cfg Config) int {
	resolvedSet := make(map[string]struct{}, len(resolved.TeamIDs))
	for _, teamID := range resolved.TeamIDs {
		resolvedSet[teamID] = struct{}{}
	}

	points := 0
	seen := make(map[string]struct{}, len(predicted.TeamIDs))
	for _, teamID := range predicted.TeamIDs {
		if _, dup := seen[teamID]; dup {
			continue
		}
		seen[teamID] = struct{}{}
		if _, ok := resolvedSet[teamID]; ok {
			points += cfg.TeamPoints
		}
	}
	return points
}

// groupMatchPoints scores each group key of the resolved map independently.
func groupMatchPoints(predicted, resolved outcome.Answer, cfg Config) int {
	points := 0
	for group, teamID := range resolved.TeamByGroup {
		if predicted.TeamByGroup[group] == teamID {
			points += cfg.GroupPoints
		}
	}
	return points
}
