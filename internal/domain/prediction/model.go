package prediction

import (
	"time"

	"github.com/riskibarqy/tournament-predictor/internal/domain/outcome"
)

// Prediction is one user's pick against exactly one outcome. Match
// predictions carry a score pick, bonus predictions carry an answer whose
// shape must match the referenced question's type.
type Prediction struct {
	ID         string
	UserID     string
	OutcomeRef outcome.Ref
	HomeScore  *int
	AwayScore  *int
	Answer     *outcome.Answer
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (p Prediction) IsMatchPrediction() bool {
	return p.OutcomeRef.Kind == outcome.KindMatch
}

// ScorePick returns the predicted match result when both scores are set.
func (p Prediction) ScorePick() (outcome.MatchResult, bool) {
	if p.HomeScore == nil || p.AwayScore == nil {
		return outcome.MatchResult{}, false
	}
	return outcome.MatchResult{HomeScore: *p.HomeScore, AwayScore: *p.AwayScore}, true
}
