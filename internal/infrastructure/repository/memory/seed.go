package memory

import (
	"time"

	"github.com/riskibarqy/tournament-predictor/internal/domain/outcome"
	"github.com/riskibarqy/tournament-predictor/internal/domain/prediction"
)

// Demo data for running the API without Postgres: a small World-Cup-style
// slate of matches and bonus questions plus a couple of users' predictions.

func intPtr(v int) *int { return &v }

func SeedMatches() []outcome.MatchOutcome {
	kickoff := time.Date(2026, time.June, 11, 18, 0, 0, 0, time.UTC)
	return []outcome.MatchOutcome{
		{
			ID:         "wc-group-a-01",
			HomeTeamID: "team-mex",
			AwayTeamID: "team-pol",
			Status:     outcome.StatusScheduled,
			KickoffAt:  kickoff,
		},
		{
			ID:         "wc-group-a-02",
			HomeTeamID: "team-arg",
			AwayTeamID: "team-ksa",
			Status:     outcome.StatusLive,
			KickoffAt:  kickoff.Add(3 * time.Hour),
		},
		{
			ID:         "wc-group-b-01",
			HomeTeamID: "team-eng",
			AwayTeamID: "team-irn",
			HomeScore:  intPtr(6),
			AwayScore:  intPtr(2),
			Status:     outcome.StatusFinal,
			KickoffAt:  kickoff.Add(-24 * time.Hour),
		},
		{
			ID:         "wc-group-b-02",
			HomeTeamID: "team-usa",
			AwayTeamID: "team-wal",
			HomeScore:  intPtr(1),
			AwayScore:  intPtr(1),
			Status:     outcome.StatusFinal,
			KickoffAt:  kickoff.Add(-20 * time.Hour),
		},
	}
}

func SeedBonuses() []outcome.BonusOutcome {
	return []outcome.BonusOutcome{
		{
			ID:     "wc-winner",
			Type:   outcome.BonusWinner,
			Status: outcome.StatusOpen,
		},
		{
			ID:     "wc-top-scorer",
			Type:   outcome.BonusTopScorer,
			Status: outcome.StatusOpen,
		},
		{
			ID:     "wc-round-of-16",
			Type:   outcome.BonusRoundOf16Teams,
			Status: outcome.StatusOpen,
		},
		{
			ID:     "wc-most-goals-group",
			Type:   outcome.BonusMostGoalsGroup,
			Status: outcome.StatusOpen,
		},
	}
}

func SeedPredictions() []prediction.Prediction {
	submitted := time.Date(2026, time.June, 10, 9, 0, 0, 0, time.UTC)
	return []prediction.Prediction{
		{
			ID:         "pred-0001",
			UserID:     "user-ayu",
			OutcomeRef: outcome.MatchRef("wc-group-b-01"),
			HomeScore:  intPtr(6),
			AwayScore:  intPtr(2),
			CreatedAt:  submitted,
			UpdatedAt:  submitted,
		},
		{
			ID:         "pred-0002",
			UserID:     "user-bima",
			OutcomeRef: outcome.MatchRef("wc-group-b-01"),
			HomeScore:  intPtr(2),
			AwayScore:  intPtr(0),
			CreatedAt:  submitted,
			UpdatedAt:  submitted,
		},
		{
			ID:         "pred-0003",
			UserID:     "user-ayu",
			OutcomeRef: outcome.MatchRef("wc-group-b-02"),
			HomeScore:  intPtr(0),
			AwayScore:  intPtr(2),
			CreatedAt:  submitted,
			UpdatedAt:  submitted,
		},
		{
			ID:         "pred-0004",
			UserID:     "user-ayu",
			OutcomeRef: outcome.BonusRef("wc-winner"),
			Answer:     &outcome.Answer{EntityID: "team-arg"},
			CreatedAt:  submitted,
			UpdatedAt:  submitted,
		},
		{
			ID:         "pred-0005",
			UserID:     "user-bima",
			OutcomeRef: outcome.BonusRef("wc-round-of-16"),
			Answer: &outcome.Answer{TeamIDs: []string{
				"team-arg", "team-eng", "team-usa", "team-mex",
				"team-fra", "team-bra", "team-esp", "team-ger",
			}},
			CreatedAt: submitted,
			UpdatedAt: submitted,
		},
	}
}
