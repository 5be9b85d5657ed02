package outcome

import "context"

type Repository interface {
	GetMatch(ctx context.Context, id string) (MatchOutcome, bool, error)
	UpsertMatch(ctx context.Context, item MatchOutcome) error
	ListMatches(ctx context.Context) ([]MatchOutcome, error)

	GetBonus(ctx context.Context, id string) (BonusOutcome, bool, error)
	UpsertBonus(ctx context.Context, item BonusOutcome) error
	ListBonuses(ctx context.Context) ([]BonusOutcome, error)
}
