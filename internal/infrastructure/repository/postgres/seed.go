package postgres

import (
	"context"
	"fmt"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/tournament-predictor/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the demo tournament slate into an empty database. A
// non-empty match_outcomes table means the instance already has real data and
// the seed is skipped.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM match_outcomes WHERE deleted_at IS NULL`); err != nil {
		return fmt.Errorf("count match outcomes for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, m := range memory.SeedMatches() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO match_outcomes (public_id, home_team_public_id, away_team_public_id, home_score, away_score, status, kickoff_at)
VALUES (:public_id, :home_team_public_id, :away_team_public_id, :home_score, :away_score, :status, :kickoff_at)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":           m.ID,
			"home_team_public_id": m.HomeTeamID,
			"away_team_public_id": m.AwayTeamID,
			"home_score":          intPtrToNullInt64(m.HomeScore),
			"away_score":          intPtrToNullInt64(m.AwayScore),
			"status":              m.Status,
			"kickoff_at":          m.KickoffAt,
		})
		if err != nil {
			return fmt.Errorf("bind seed match %s query: %w", m.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed match %s: %w", m.ID, err)
		}
	}

	for _, b := range memory.SeedBonuses() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO bonus_outcomes (public_id, question_type, status, answered)
VALUES (:public_id, :question_type, :status, :answered)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":     b.ID,
			"question_type": string(b.Type),
			"status":        b.Status,
			"answered":      b.Answer != nil,
		})
		if err != nil {
			return fmt.Errorf("bind seed bonus %s query: %w", b.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed bonus %s: %w", b.ID, err)
		}
	}

	for _, p := range memory.SeedPredictions() {
		params := map[string]any{
			"public_id":            p.ID,
			"user_id":              p.UserID,
			"outcome_kind":         p.OutcomeRef.Kind,
			"outcome_public_id":    p.OutcomeRef.ID,
			"home_score":           intPtrToNullInt64(p.HomeScore),
			"away_score":           intPtrToNullInt64(p.AwayScore),
			"has_answer":           p.Answer != nil,
			"answer_entity_id":     nil,
			"answer_team_ids":      nil,
			"answer_team_by_group": nil,
		}
		if p.Answer != nil {
			params["answer_entity_id"] = nullableString(p.Answer.EntityID)
			params["answer_team_ids"] = pq.StringArray(p.Answer.TeamIDs)
			if len(p.Answer.TeamByGroup) > 0 {
				encoded, err := sonic.MarshalString(p.Answer.TeamByGroup)
				if err != nil {
					return fmt.Errorf("encode seed prediction %s answer groups: %w", p.ID, err)
				}
				params["answer_team_by_group"] = encoded
			}
		}

		sqlQuery, args, err := sqlx.Named(`
INSERT INTO predictions (public_id, user_id, outcome_kind, outcome_public_id, home_score, away_score, has_answer, answer_entity_id, answer_team_ids, answer_team_by_group)
VALUES (:public_id, :user_id, :outcome_kind, :outcome_public_id, :home_score, :away_score, :has_answer, :answer_entity_id, :answer_team_ids, :answer_team_by_group)
ON CONFLICT (public_id) DO NOTHING`, params)
		if err != nil {
			return fmt.Errorf("bind seed prediction %s query: %w", p.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed prediction %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
