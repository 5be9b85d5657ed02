package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/tournament-predictor/internal/domain/ledger"
	"github.com/riskibarqy/tournament-predictor/internal/domain/outcome"
	"github.com/riskibarqy/tournament-predictor/internal/domain/prediction"
	"github.com/riskibarqy/tournament-predictor/internal/usecase"
)

type Handler struct {
	outcomeService    *usecase.OutcomeService
	predictionService *usecase.PredictionService
	scoringService    *usecase.ScoringService
	rescoreService    *usecase.RescoreService
	logger            *slog.Logger
	validator         *validator.Validate
}

func NewHandler(
	outcomeService *usecase.OutcomeService,
	predictionService *usecase.PredictionService,
	scoringService *usecase.ScoringService,
	rescoreService *usecase.RescoreService,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		outcomeService:    outcomeService,
		predictionService: predictionService,
		scoringService:    scoringService,
		rescoreService:    rescoreService,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// parseOutcomeRef reads a "kind:id" path value into a Ref, mapping parse
// failures onto the shared error taxonomy.
func parseOutcomeRef(raw string) (outcome.Ref, error) {
	ref, err := outcome.ParseRef(raw)
	if err != nil {
		return outcome.Ref{}, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return ref, nil
}

type matchDTO struct {
	ID         string `json:"id"`
	Ref        string `json:"ref"`
	HomeTeamID string `json:"homeTeamId"`
	AwayTeamID string `json:"awayTeamId"`
	HomeScore  *int   `json:"homeScore"`
	AwayScore  *int   `json:"awayScore"`
	Status     string `json:"status"`
	KickoffAt  string `json:"kickoffAt"`
	UpdatedAt  string `json:"updatedAt"`
}

type bonusDTO struct {
	ID        string     `json:"id"`
	Ref       string     `json:"ref"`
	Type      string     `json:"type"`
	Answer    *answerDTO `json:"answer,omitempty"`
	Status    string     `json:"status"`
	UpdatedAt string     `json:"updatedAt"`
}

type answerDTO struct {
	EntityID    string            `json:"entityId,omitempty"`
	TeamIDs     []string          `json:"teamIds,omitempty"`
	TeamByGroup map[string]string `json:"teamByGroup,omitempty"`
}

type predictionDTO struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	OutcomeRef string     `json:"outcomeRef"`
	HomeScore  *int       `json:"homeScore,omitempty"`
	AwayScore  *int       `json:"awayScore,omitempty"`
	Answer     *answerDTO `json:"answer,omitempty"`
	CreatedAt  string     `json:"createdAt"`
	UpdatedAt  string     `json:"updatedAt"`
}

type ledgerEntryDTO struct {
	ID           string `json:"id"`
	UserID       string `json:"userId"`
	OutcomeRef   string `json:"outcomeRef"`
	PredictionID string `json:"predictionId"`
	Points       int    `json:"points"`
	Voided       bool   `json:"voided"`
	Active       bool   `json:"active"`
	RuleVersion  string `json:"ruleVersion"`
	PassID       string `json:"passId"`
	SupersedesID string `json:"supersedesId,omitempty"`
	ComputedAt   string `json:"computedAt"`
}

type scoreReportDTO struct {
	PassID      string `json:"passId"`
	OutcomeRef  string `json:"outcomeRef"`
	Stage       string `json:"stage"`
	ResultHash  string `json:"resultHash"`
	RuleVersion string `json:"ruleVersion"`
	Entries     int    `json:"entries"`
	Superseded  int    `json:"superseded"`
	Unchanged   int    `json:"unchanged"`
	Skipped     int    `json:"skipped"`
	Idempotent  bool   `json:"idempotent"`
}

type userTotalDTO struct {
	UserID  string `json:"userId"`
	Points  int    `json:"points"`
	Entries int    `json:"entries"`
}

func matchToDTO(ctx context.Context, v outcome.MatchOutcome) matchDTO {
	ctx, span := startSpan(ctx, "httpapi.matchToDTO")
	defer span.End()

	return matchDTO{
		ID:         v.ID,
		Ref:        v.Ref().String(),
		HomeTeamID: v.HomeTeamID,
		AwayTeamID: v.AwayTeamID,
		HomeScore:  v.HomeScore,
		AwayScore:  v.AwayScore,
		Status:     v.Status,
		KickoffAt:  v.KickoffAt.UTC().Format(time.RFC3339),
		UpdatedAt:  v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func bonusToDTO(ctx context.Context, v outcome.BonusOutcome) bonusDTO {
	ctx, span := startSpan(ctx, "httpapi.bonusToDTO")
	defer span.End()

	return bonusDTO{
		ID:        v.ID,
		Ref:       v.Ref().String(),
		Type:      string(v.Type),
		Answer:    answerToDTO(v.Answer),
		Status:    v.Status,
		UpdatedAt: v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func answerToDTO(v *outcome.Answer) *answerDTO {
	if v == nil {
		return nil
	}
	return &answerDTO{
		EntityID:    v.EntityID,
		TeamIDs:     append([]string(nil), v.TeamIDs...),
		TeamByGroup: v.TeamByGroup,
	}
}

func predictionToDTO(ctx context.Context, v prediction.Prediction) predictionDTO {
	ctx, span := startSpan(ctx, "httpapi.predictionToDTO")
	defer span.End()

	return predictionDTO{
		ID:         v.ID,
		UserID:     v.UserID,
		OutcomeRef: v.OutcomeRef.String(),
		HomeScore:  v.HomeScore,
		AwayScore:  v.AwayScore,
		Answer:     answerToDTO(v.Answer),
		CreatedAt:  v.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func entryToDTO(ctx context.Context, v ledger.Entry) ledgerEntryDTO {
	ctx, span := startSpan(ctx, "httpapi.entryToDTO")
	defer span.End()

	return ledgerEntryDTO{
		ID:           v.ID,
		UserID:       v.UserID,
		OutcomeRef:   v.OutcomeRef.String(),
		PredictionID: v.PredictionID,
		Points:       v.Points,
		Voided:       v.Voided,
		Active:       v.Active,
		RuleVersion:  v.RuleVersion,
		PassID:       v.PassID,
		SupersedesID: v.SupersedesID,
		ComputedAt:   v.ComputedAt.UTC().Format(time.RFC3339),
	}
}

func entriesToDTO(ctx context.Context, entries []ledger.Entry) []ledgerEntryDTO {
	items := make([]ledgerEntryDTO, 0, len(entries))
	for _, e := range entries {
		items = append(items, entryToDTO(ctx, e))
	}
	return items
}

func reportToDTO(ctx context.Context, v usecase.ScoreReport) scoreReportDTO {
	ctx, span := startSpan(ctx, "httpapi.reportToDTO")
	defer span.End()

	return scoreReportDTO{
		PassID:      v.PassID,
		OutcomeRef:  v.OutcomeRef.String(),
		Stage:       string(v.Stage),
		ResultHash:  fmt.Sprintf("%016x", v.ResultHash),
		RuleVersion: v.RuleVersion,
		Entries:     v.Entries,
		Superseded:  v.Superseded,
		Unchanged:   v.Unchanged,
		Skipped:     v.Skipped,
		Idempotent:  v.Idempotent,
	}
}
