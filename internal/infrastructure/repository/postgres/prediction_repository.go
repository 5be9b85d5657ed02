package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/tournament-predictor/internal/domain/outcome"
	"github.com/riskibarqy/tournament-predictor/internal/domain/prediction"
	qb "github.com/riskibarqy/tournament-predictor/internal/platform/querybuilder"
)

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// ListByOutcome orders by public_id so scoring passes walk predictions in a
// reproducible order.
func (r *PredictionRepository) ListByOutcome(ctx context.Context, ref outcome.Ref) ([]prediction.Prediction, error) {
	query, args, err := qb.Select("*").
		From("predictions").
		Where(
			qb.Eq("outcome_kind", ref.Kind),
			qb.Eq("outcome_public_id", ref.ID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list predictions by outcome query: %w", err)
	}

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list predictions by outcome: %w", err)
	}

	return predictionsFromRows(rows)
}

func (r *PredictionRepository) GetByUserAndOutcome(ctx context.Context, userID string, ref outcome.Ref) (prediction.Prediction, bool, error) {
	query, args, err := qb.Select("*").
		From("predictions").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("outcome_kind", ref.Kind),
			qb.Eq("outcome_public_id", ref.ID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return prediction.Prediction{}, false, fmt.Errorf("build get prediction query: %w", err)
	}

	var row predictionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return prediction.Prediction{}, false, nil
		}
		return prediction.Prediction{}, false, fmt.Errorf("get prediction: %w", err)
	}

	item, err := predictionFromRow(row)
	if err != nil {
		return prediction.Prediction{}, false, err
	}
	return item, true, nil
}

func (r *PredictionRepository) Upsert(ctx context.Context, item prediction.Prediction) error {
	insertModel, err := predictionToInsertModel(item)
	if err != nil {
		return err
	}
	query, args, err := qb.InsertModel("predictions", insertModel, `ON CONFLICT (user_id, outcome_kind, outcome_public_id) WHERE deleted_at IS NULL
DO UPDATE SET
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    has_answer = EXCLUDED.has_answer,
    answer_entity_id = EXCLUDED.answer_entity_id,
    answer_team_ids = EXCLUDED.answer_team_ids,
    answer_team_by_group = EXCLUDED.answer_team_by_group,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert prediction query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert prediction: %w", err)
	}
	return nil
}

func (r *PredictionRepository) ListByUser(ctx context.Context, userID string) ([]prediction.Prediction, error) {
	query, args, err := qb.Select("*").
		From("predictions").
		Where(
			qb.Eq("user_id", userID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list predictions by user query: %w", err)
	}

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list predictions by user: %w", err)
	}

	return predictionsFromRows(rows)
}

func predictionsFromRows(rows []predictionTableModel) ([]prediction.Prediction, error) {
	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		item, err := predictionFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}
