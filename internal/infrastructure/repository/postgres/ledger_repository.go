package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/tournament-predictor/internal/domain/ledger"
	"github.com/riskibarqy/tournament-predictor/internal/domain/outcome"
	qb "github.com/riskibarqy/tournament-predictor/internal/platform/querybuilder"
)

type LedgerRepository struct {
	db *sqlx.DB
}

func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// CommitPass runs in one transaction: superseded entries flip inactive, the
// new entries and the pass row land together, or nothing is written.
func (r *LedgerRepository) CommitPass(ctx context.Context, pass ledger.Pass, entries []ledger.Entry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx commit scoring pass: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	supersededIDs := make([]any, 0, len(entries))
	for _, entry := range entries {
		if entry.SupersedesID != "" {
			supersededIDs = append(supersededIDs, entry.SupersedesID)
		}
	}
	if len(supersededIDs) > 0 {
		query, args, err := qb.Update("score_entries").
			Set("active", false).
			SetExpr("updated_at", "NOW()").
			Where(
				qb.In("public_id", supersededIDs),
				qb.Eq("active", true),
			).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build supersede entries query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("supersede entries: %w", err)
		}
	}

	if len(entries) > 0 {
		builder := qb.InsertInto("score_entries").Columns(
			"public_id",
			"user_id",
			"outcome_kind",
			"outcome_public_id",
			"prediction_public_id",
			"points",
			"voided",
			"active",
			"rule_version",
			"pass_public_id",
			"supersedes_public_id",
			"computed_at",
		)
		for _, entry := range entries {
			builder.Values(
				entry.ID,
				entry.UserID,
				entry.OutcomeRef.Kind,
				entry.OutcomeRef.ID,
				entry.PredictionID,
				entry.Points,
				entry.Voided,
				entry.Active,
				entry.RuleVersion,
				entry.PassID,
				nullableString(entry.SupersedesID),
				entry.ComputedAt,
			)
		}
		query, args, err := builder.ToSQL()
		if err != nil {
			return fmt.Errorf("build insert score entries query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert score entries: %w", err)
		}
	}

	passModel := scorePassInsertModel{
		PublicID:    pass.ID,
		OutcomeKind: pass.OutcomeRef.Kind,
		OutcomeID:   pass.OutcomeRef.ID,
		ResultHash:  formatResultHash(pass.ResultHash),
		RuleVersion: pass.RuleVersion,
		EntryCount:  pass.EntryCount,
		CommittedAt: pass.CommittedAt,
	}
	query, args, err := qb.InsertModel("score_passes", passModel, "")
	if err != nil {
		return fmt.Errorf("build insert score pass query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert score pass: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit scoring pass tx: %w", err)
	}
	return nil
}

func (r *LedgerRepository) GetLastPass(ctx context.Context, ref outcome.Ref) (ledger.Pass, bool, error) {
	query, args, err := qb.Select("*").
		From("score_passes").
		Where(
			qb.Eq("outcome_kind", ref.Kind),
			qb.Eq("outcome_public_id", ref.ID),
		).
		OrderBy("id DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return ledger.Pass{}, false, fmt.Errorf("build get last scoring pass query: %w", err)
	}

	var row scorePassTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isBindParameterMismatch(err) || isUnnamedPreparedStatementMissing(err) {
			return r.getLastPassSingleParam(ctx, ref)
		}
		if isNotFound(err) {
			return ledger.Pass{}, false, nil
		}
		return ledger.Pass{}, false, fmt.Errorf("get last scoring pass: %w", err)
	}

	pass, err := passFromRow(row)
	if err != nil {
		return ledger.Pass{}, false, err
	}
	return pass, true, nil
}

// getLastPassSingleParam folds both filters into one array parameter so the
// query survives pgbouncer's transaction pooling mode.
func (r *LedgerRepository) getLastPassSingleParam(ctx context.Context, ref outcome.Ref) (ledger.Pass, bool, error) {
	query, _, err := qb.Select("*").
		From("score_passes").
		Where(
			qb.Expr("outcome_kind = ($1::text[])[1]"),
			qb.Expr("outcome_public_id = ($1::text[])[2]"),
		).
		OrderBy("id DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return ledger.Pass{}, false, fmt.Errorf("build get last scoring pass fallback query: %w", err)
	}

	var row scorePassTableModel
	if err := r.db.GetContext(ctx, &row, query, pq.Array([]string{ref.Kind, ref.ID})); err != nil {
		if isNotFound(err) {
			return ledger.Pass{}, false, nil
		}
		return ledger.Pass{}, false, fmt.Errorf("get last scoring pass fallback: %w", err)
	}

	pass, err := passFromRow(row)
	if err != nil {
		return ledger.Pass{}, false, err
	}
	return pass, true, nil
}

func (r *LedgerRepository) ListActiveByOutcome(ctx context.Context, ref outcome.Ref) ([]ledger.Entry, error) {
	return r.listEntries(ctx,
		qb.Eq("outcome_kind", ref.Kind),
		qb.Eq("outcome_public_id", ref.ID),
		qb.Eq("active", true),
	)
}

func (r *LedgerRepository) ListByOutcome(ctx context.Context, ref outcome.Ref) ([]ledger.Entry, error) {
	return r.listEntries(ctx,
		qb.Eq("outcome_kind", ref.Kind),
		qb.Eq("outcome_public_id", ref.ID),
	)
}

func (r *LedgerRepository) ListByUser(ctx context.Context, userID string) ([]ledger.Entry, error) {
	return r.listEntries(ctx, qb.Eq("user_id", userID))
}

func (r *LedgerRepository) listEntries(ctx context.Context, conditions ...qb.Condition) ([]ledger.Entry, error) {
	query, args, err := qb.Select("*").
		From("score_entries").
		Where(conditions...).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list score entries query: %w", err)
	}

	var rows []scoreEntryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list score entries: %w", err)
	}

	out := make([]ledger.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, entryFromRow(row))
	}
	return out, nil
}
