package postgres

import (
	"database/sql"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/lib/pq"
	"github.com/riskibarqy/tournament-predictor/internal/domain/outcome"
	"github.com/riskibarqy/tournament-predictor/internal/domain/prediction"
)

type predictionTableModel struct {
	ID          int64          `db:"id"`
	PublicID    string         `db:"public_id"`
	UserID      string         `db:"user_id"`
	OutcomeKind string         `db:"outcome_kind"`
	OutcomeID   string         `db:"outcome_public_id"`
	HomeScore   sql.NullInt64  `db:"home_score"`
	AwayScore   sql.NullInt64  `db:"away_score"`
	HasAnswer   bool           `db:"has_answer"`
	EntityID    sql.NullString `db:"answer_entity_id"`
	TeamIDs     pq.StringArray `db:"answer_team_ids"`
	TeamByGroup sql.NullString `db:"answer_team_by_group"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	DeletedAt   *time.Time     `db:"deleted_at"`
}

type predictionInsertModel struct {
	PublicID    string         `db:"public_id"`
	UserID      string         `db:"user_id"`
	OutcomeKind string         `db:"outcome_kind"`
	OutcomeID   string         `db:"outcome_public_id"`
	HomeScore   sql.NullInt64  `db:"home_score"`
	AwayScore   sql.NullInt64  `db:"away_score"`
	HasAnswer   bool           `db:"has_answer"`
	EntityID    sql.NullString `db:"answer_entity_id"`
	TeamIDs     pq.StringArray `db:"answer_team_ids"`
	TeamByGroup sql.NullString `db:"answer_team_by_group"`
}

func predictionFromRow(row predictionTableModel) (prediction.Prediction, error) {
	item := prediction.Prediction{
		ID:         row.PublicID,
		UserID:     row.UserID,
		OutcomeRef: outcome.Ref{Kind: row.OutcomeKind, ID: row.OutcomeID},
		HomeScore:  nullInt64ToIntPtr(row.HomeScore),
		AwayScore:  nullInt64ToIntPtr(row.AwayScore),
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
	if !row.HasAnswer {
		return item, nil
	}

	answer := outcome.Answer{
		EntityID: row.EntityID.String,
		TeamIDs:  append([]string(nil), row.TeamIDs...),
	}
	if row.TeamByGroup.Valid && row.TeamByGroup.String != "" {
		if err := sonic.UnmarshalString(row.TeamByGroup.String, &answer.TeamByGroup); err != nil {
			return prediction.Prediction{}, fmt.Errorf("decode prediction %s answer groups: %w", row.PublicID, err)
		}
	}
	item.Answer = &answer
	return item, nil
}

func predictionToInsertModel(item prediction.Prediction) (predictionInsertModel, error) {
	model := predictionInsertModel{
		PublicID:    item.ID,
		UserID:      item.UserID,
		OutcomeKind: item.OutcomeRef.Kind,
		OutcomeID:   item.OutcomeRef.ID,
		HomeScore:   intPtrToNullInt64(item.HomeScore),
		AwayScore:   intPtrToNullInt64(item.AwayScore),
	}
	if item.Answer == nil {
		return model, nil
	}

	model.HasAnswer = true
	model.EntityID = nullableString(item.Answer.EntityID)
	model.TeamIDs = pq.StringArray(item.Answer.TeamIDs)
	if len(item.Answer.TeamByGroup) > 0 {
		encoded, err := sonic.MarshalString(item.Answer.TeamByGroup)
		if err != nil {
			return predictionInsertModel{}, fmt.Errorf("encode prediction %s answer groups: %w", item.ID, err)
		}
		model.TeamByGroup = sql.NullString{String: encoded, Valid: true}
	}
	return model, nil
}
