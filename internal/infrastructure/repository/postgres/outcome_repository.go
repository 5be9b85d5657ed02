package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/tournament-predictor/internal/domain/outcome"
	qb "github.com/riskibarqy/tournament-predictor/internal/platform/querybuilder"
)

type OutcomeRepository struct {
	db *sqlx.DB
}

func NewOutcomeRepository(db *sqlx.DB) *OutcomeRepository {
	return &OutcomeRepository{db: db}
}

func (r *OutcomeRepository) GetMatch(ctx context.Context, id string) (outcome.MatchOutcome, bool, error) {
	query, args, err := qb.Select("*").
		From("match_outcomes").
		Where(
			qb.Eq("public_id", id),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return outcome.MatchOutcome{}, false, fmt.Errorf("build get match outcome query: %w", err)
	}

	var row matchOutcomeTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return outcome.MatchOutcome{}, false, nil
		}
		return outcome.MatchOutcome{}, false, fmt.Errorf("get match outcome: %w", err)
	}

	return matchFromRow(row), true, nil
}

func (r *OutcomeRepository) UpsertMatch(ctx context.Context, item outcome.MatchOutcome) error {
	insertModel := matchOutcomeInsertModel{
		PublicID:   item.ID,
		HomeTeamID: item.HomeTeamID,
		AwayTeamID: item.AwayTeamID,
		HomeScore:  intPtrToNullInt64(item.HomeScore),
		AwayScore:  intPtrToNullInt64(item.AwayScore),
		Status:     item.Status,
		KickoffAt:  item.KickoffAt,
	}
	query, args, err := qb.InsertModel("match_outcomes", insertModel, `ON CONFLICT (public_id) WHERE deleted_at IS NULL
DO UPDATE SET
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    status = EXCLUDED.status,
    kickoff_at = EXCLUDED.kickoff_at,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert match outcome query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert match outcome: %w", err)
	}
	return nil
}

func (r *OutcomeRepository) ListMatches(ctx context.Context) ([]outcome.MatchOutcome, error) {
	query, args, err := qb.Select("*").
		From("match_outcomes").
		Where(qb.IsNull("deleted_at")).
		OrderBy("kickoff_at", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list match outcomes query: %w", err)
	}

	var rows []matchOutcomeTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list match outcomes: %w", err)
	}

	out := make([]outcome.MatchOutcome, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}
	return out, nil
}

func (r *OutcomeRepository) GetBonus(ctx context.Context, id string) (outcome.BonusOutcome, bool, error) {
	query, args, err := qb.Select("*").
		From("bonus_outcomes").
		Where(
			qb.Eq("public_id", id),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return outcome.BonusOutcome{}, false, fmt.Errorf("build get bonus outcome query: %w", err)
	}

	var row bonusOutcomeTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return outcome.BonusOutcome{}, false, nil
		}
		return outcome.BonusOutcome{}, false, fmt.Errorf("get bonus outcome: %w", err)
	}

	item, err := bonusFromRow(row)
	if err != nil {
		return outcome.BonusOutcome{}, false, err
	}
	return item, true, nil
}

func (r *OutcomeRepository) UpsertBonus(ctx context.Context, item outcome.BonusOutcome) error {
	insertModel, err := bonusToInsertModel(item)
	if err != nil {
		return err
	}
	query, args, err := qb.InsertModel("bonus_outcomes", insertModel, `ON CONFLICT (public_id) WHERE deleted_at IS NULL
DO UPDATE SET
    answered = EXCLUDED.answered,
    answer_entity_id = EXCLUDED.answer_entity_id,
    answer_team_ids = EXCLUDED.answer_team_ids,
    answer_team_by_group = EXCLUDED.answer_team_by_group,
    status = EXCLUDED.status,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert bonus outcome query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert bonus outcome: %w", err)
	}
	return nil
}

func (r *OutcomeRepository) ListBonuses(ctx context.Context) ([]outcome.BonusOutcome, error) {
	query, args, err := qb.Select("*").
		From("bonus_outcomes").
		Where(qb.IsNull("deleted_at")).
		OrderBy("public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list bonus outcomes query: %w", err)
	}

	var rows []bonusOutcomeTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list bonus outcomes: %w", err)
	}

	out := make([]outcome.BonusOutcome, 0, len(rows))
	for _, row := range rows {
		item, err := bonusFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}
