package postgres

import (
	"database/sql"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/lib/pq"
	"github.com/riskibarqy/tournament-predictor/internal/domain/outcome"
)

type matchOutcomeTableModel struct {
	ID         int64         `db:"id"`
	PublicID   string        `db:"public_id"`
	HomeTeamID string        `db:"home_team_public_id"`
	AwayTeamID string        `db:"away_team_public_id"`
	HomeScore  sql.NullInt64 `db:"home_score"`
	AwayScore  sql.NullInt64 `db:"away_score"`
	Status     string        `db:"status"`
	KickoffAt  time.Time     `db:"kickoff_at"`
	CreatedAt  time.Time     `db:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at"`
	DeletedAt  *time.Time    `db:"deleted_at"`
}

type matchOutcomeInsertModel struct {
	PublicID   string        `db:"public_id"`
	HomeTeamID string        `db:"home_team_public_id"`
	AwayTeamID string        `db:"away_team_public_id"`
	HomeScore  sql.NullInt64 `db:"home_score"`
	AwayScore  sql.NullInt64 `db:"away_score"`
	Status     string        `db:"status"`
	KickoffAt  time.Time     `db:"kickoff_at"`
}

type bonusOutcomeTableModel struct {
	ID          int64          `db:"id"`
	PublicID    string         `db:"public_id"`
	Type        string         `db:"question_type"`
	Answered    bool           `db:"answered"`
	EntityID    sql.NullString `db:"answer_entity_id"`
	TeamIDs     pq.StringArray `db:"answer_team_ids"`
	TeamByGroup sql.NullString `db:"answer_team_by_group"`
	Status      string         `db:"status"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	DeletedAt   *time.Time     `db:"deleted_at"`
}

type bonusOutcomeInsertModel struct {
	PublicID    string         `db:"public_id"`
	Type        string         `db:"question_type"`
	Answered    bool           `db:"answered"`
	EntityID    sql.NullString `db:"answer_entity_id"`
	TeamIDs     pq.StringArray `db:"answer_team_ids"`
	TeamByGroup sql.NullString `db:"answer_team_by_group"`
	Status      string         `db:"status"`
}

func matchFromRow(row matchOutcomeTableModel) outcome.MatchOutcome {
	return outcome.MatchOutcome{
		ID:         row.PublicID,
		HomeTeamID: row.HomeTeamID,
		AwayTeamID: row.AwayTeamID,
		HomeScore:  nullInt64ToIntPtr(row.HomeScore),
		AwayScore:  nullInt64ToIntPtr(row.AwayScore),
		Status:     row.Status,
		KickoffAt:  row.KickoffAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

func bonusFromRow(row bonusOutcomeTableModel) (outcome.BonusOutcome, error) {
	item := outcome.BonusOutcome{
		ID:        row.PublicID,
		Type:      outcome.BonusQuestionType(row.Type),
		Status:    row.Status,
		UpdatedAt: row.UpdatedAt,
	}
	if !row.Answered {
		return item, nil
	}

	answer := outcome.Answer{
		EntityID: row.EntityID.String,
		TeamIDs:  append([]string(nil), row.TeamIDs...),
	}
	if row.TeamByGroup.Valid && row.TeamByGroup.String != "" {
		if err := sonic.UnmarshalString(row.TeamByGroup.String, &answer.TeamByGroup); err != nil {
			return outcome.BonusOutcome{}, fmt.Errorf("decode bonus %s answer groups: %w", row.PublicID, err)
		}
	}
	item.Answer = &answer
	return item, nil
}

func bonusToInsertModel(item outcome.BonusOutcome) (bonusOutcomeInsertModel, error) {
	model := bonusOutcomeInsertModel{
		PublicID: item.ID,
		Type:     string(item.Type),
		Status:   item.Status,
	}
	if item.Answer == nil {
		return model, nil
	}

	model.Answered = true
	model.EntityID = nullableString(item.Answer.EntityID)
	model.TeamIDs = pq.StringArray(item.Answer.TeamIDs)
	if len(item.Answer.TeamByGroup) > 0 {
		encoded, err := sonic.MarshalString(item.Answer.TeamByGroup)
		if err != nil {
			return bonusOutcomeInsertModel{}, fmt.Errorf("encode bonus %s answer groups: %w", item.ID, err)
		}
		model.TeamByGroup = sql.NullString{String: encoded, Valid: true}
	}
	return model, nil
}

func nullInt64ToIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	value := int(v.Int64)
	return &value
}

func intPtrToNullInt64(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullableString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}
