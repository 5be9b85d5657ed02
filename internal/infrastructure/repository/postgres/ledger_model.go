package postgres

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/riskibarqy/tournament-predictor/internal/domain/ledger"
	"github.com/riskibarqy/tournament-predictor/internal/domain/outcome"
)

type scorePassTableModel struct {
	ID          int64     `db:"id"`
	PublicID    string    `db:"public_id"`
	OutcomeKind string    `db:"outcome_kind"`
	OutcomeID   string    `db:"outcome_public_id"`
	// Result hashes are full uint64 values, stored as text to avoid BIGINT
	// sign overflow.
	ResultHash  string    `db:"result_hash"`
	RuleVersion string    `db:"rule_version"`
	EntryCount  int       `db:"entry_count"`
	CommittedAt time.Time `db:"committed_at"`
	CreatedAt   time.Time `db:"created_at"`
}

type scorePassInsertModel struct {
	PublicID    string    `db:"public_id"`
	OutcomeKind string    `db:"outcome_kind"`
	OutcomeID   string    `db:"outcome_public_id"`
	ResultHash  string    `db:"result_hash"`
	RuleVersion string    `db:"rule_version"`
	EntryCount  int       `db:"entry_count"`
	CommittedAt time.Time `db:"committed_at"`
}

type scoreEntryTableModel struct {
	ID           int64          `db:"id"`
	PublicID     string         `db:"public_id"`
	UserID       string         `db:"user_id"`
	OutcomeKind  string         `db:"outcome_kind"`
	OutcomeID    string         `db:"outcome_public_id"`
	PredictionID string         `db:"prediction_public_id"`
	Points       int            `db:"points"`
	Voided       bool           `db:"voided"`
	Active       bool           `db:"active"`
	RuleVersion  string         `db:"rule_version"`
	PassID       string         `db:"pass_public_id"`
	SupersedesID sql.NullString `db:"supersedes_public_id"`
	ComputedAt   time.Time      `db:"computed_at"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func passFromRow(row scorePassTableModel) (ledger.Pass, error) {
	hash, err := strconv.ParseUint(row.ResultHash, 16, 64)
	if err != nil {
		return ledger.Pass{}, fmt.Errorf("decode pass %s result hash: %w", row.PublicID, err)
	}
	return ledger.Pass{
		ID:          row.PublicID,
		OutcomeRef:  outcome.Ref{Kind: row.OutcomeKind, ID: row.OutcomeID},
		ResultHash:  hash,
		RuleVersion: row.RuleVersion,
		EntryCount:  row.EntryCount,
		CommittedAt: row.CommittedAt,
	}, nil
}

func entryFromRow(row scoreEntryTableModel) ledger.Entry {
	return ledger.Entry{
		ID:           row.PublicID,
		UserID:       row.UserID,
		OutcomeRef:   outcome.Ref{Kind: row.OutcomeKind, ID: row.OutcomeID},
		PredictionID: row.PredictionID,
		Points:       row.Points,
		Voided:       row.Voided,
		Active:       row.Active,
		RuleVersion:  row.RuleVersion,
		PassID:       row.PassID,
		SupersedesID: row.SupersedesID.String,
		ComputedAt:   row.ComputedAt,
	}
}

func formatResultHash(hash uint64) string {
	return strconv.FormatUint(hash, 16)
}
