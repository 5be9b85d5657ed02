package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/tournament-predictor/internal/domain/outcome"
	"github.com/riskibarqy/tournament-predictor/internal/usecase"
)

type scheduleMatchRequest struct {
	ID         string `json:"id"`
	HomeTeamID string `json:"homeTeamId" validate:"required"`
	AwayTeamID string `json:"awayTeamId" validate:"required"`
	KickoffAt  string `json:"kickoffAt" validate:"required"`
}

type matchResultRequest struct {
	HomeScore int `json:"homeScore" validate:"min=0"`
	AwayScore int `json:"awayScore" validate:"min=0"`
}

type createBonusRequest struct {
	ID   string `json:"id"`
	Type string `json:"type" validate:"required"`
}

type bonusAnswerRequest struct {
	EntityID    string            `json:"entityId"`
	TeamIDs     []string          `json:"teamIds"`
	TeamByGroup map[string]string `json:"teamByGroup"`
}

func (h *Handler) ScheduleMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ScheduleMatch")
	defer span.End()

	var req scheduleMatchRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	kickoff, err := time.Parse(time.RFC3339, req.KickoffAt)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: kickoffAt must be RFC3339: %v", usecase.ErrInvalidInput, err))
		return
	}

	match, err := h.outcomeService.ScheduleMatch(ctx, usecase.ScheduleMatchInput{
		ID:         strings.TrimSpace(req.ID),
		HomeTeamID: req.HomeTeamID,
		AwayTeamID: req.AwayTeamID,
		KickoffAt:  kickoff,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "schedule match failed", "home_team_id", req.HomeTeamID, "away_team_id", req.AwayTeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, matchToDTO(ctx, match))
}

func (h *Handler) BeginMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.BeginMatch")
	defer span.End()

	matchID := r.PathValue("matchID")
	match, err := h.outcomeService.BeginMatch(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "begin match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(ctx, match))
}

func (h *Handler) FinalizeMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.FinalizeMatch")
	defer span.End()

	matchID := r.PathValue("matchID")
	result, err := h.decodeMatchResult(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	match, err := h.outcomeService.FinalizeMatch(ctx, matchID, result)
	if err != nil {
		h.logger.WarnContext(ctx, "finalize match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(ctx, match))
}

func (h *Handler) CorrectMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CorrectMatch")
	defer span.End()

	matchID := r.PathValue("matchID")
	result, err := h.decodeMatchResult(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	match, err := h.outcomeService.CorrectMatch(ctx, matchID, result)
	if err != nil {
		h.logger.WarnContext(ctx, "correct match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(ctx, match))
}

func (h *Handler) CancelMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CancelMatch")
	defer span.End()

	matchID := r.PathValue("matchID")
	match, err := h.outcomeService.CancelMatch(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "cancel match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(ctx, match))
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	matchID := r.PathValue("matchID")
	match, err := h.outcomeService.GetMatch(ctx, matchID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(ctx, match))
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	matches, err := h.outcomeService.ListMatches(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]matchDTO, 0, len(matches))
	for _, m := range matches {
		items = append(items, matchToDTO(ctx, m))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) CreateBonus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateBonus")
	defer span.End()

	var req createBonusRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	bonus, err := h.outcomeService.CreateBonus(ctx, usecase.CreateBonusInput{
		ID:   strings.TrimSpace(req.ID),
		Type: outcome.BonusQuestionType(req.Type),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create bonus failed", "type", req.Type, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, bonusToDTO(ctx, bonus))
}

func (h *Handler) ResolveBonus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResolveBonus")
	defer span.End()

	bonusID := r.PathValue("bonusID")
	answer, err := h.decodeBonusAnswer(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	bonus, err := h.outcomeService.ResolveBonus(ctx, bonusID, answer)
	if err != nil {
		h.logger.WarnContext(ctx, "resolve bonus failed", "bonus_id", bonusID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, bonusToDTO(ctx, bonus))
}

func (h *Handler) ReviseBonus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReviseBonus")
	defer span.End()

	bonusID := r.PathValue("bonusID")
	answer, err := h.decodeBonusAnswer(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	bonus, err := h.outcomeService.ReviseBonus(ctx, bonusID, answer)
	if err != nil {
		h.logger.WarnContext(ctx, "revise bonus failed", "bonus_id", bonusID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, bonusToDTO(ctx, bonus))
}

func (h *Handler) CancelBonus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CancelBonus")
	defer span.End()

	bonusID := r.PathValue("bonusID")
	bonus, err := h.outcomeService.CancelBonus(ctx, bonusID)
	if err != nil {
		h.logger.WarnContext(ctx, "cancel bonus failed", "bonus_id", bonusID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, bonusToDTO(ctx, bonus))
}

func (h *Handler) GetBonus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetBonus")
	defer span.End()

	bonusID := r.PathValue("bonusID")
	bonus, err := h.outcomeService.GetBonus(ctx, bonusID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, bonusToDTO(ctx, bonus))
}

func (h *Handler) ListBonuses(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListBonuses")
	defer span.End()

	bonuses, err := h.outcomeService.ListBonuses(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list bonuses failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]bonusDTO, 0, len(bonuses))
	for _, b := range bonuses {
		items = append(items, bonusToDTO(ctx, b))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) decodeMatchResult(r *http.Request) (outcome.MatchResult, error) {
	var req matchResultRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return outcome.MatchResult{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	if err := h.validateRequest(r.Context(), req); err != nil {
		return outcome.MatchResult{}, err
	}

	return outcome.MatchResult{HomeScore: req.HomeScore, AwayScore: req.AwayScore}, nil
}

func (h *Handler) decodeBonusAnswer(r *http.Request) (outcome.Answer, error) {
	var req bonusAnswerRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return outcome.Answer{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return outcomeAnswer(req), nil
}

func outcomeAnswer(req bonusAnswerRequest) outcome.Answer {
	return outcome.Answer{
		EntityID:    strings.TrimSpace(req.EntityID),
		TeamIDs:     req.TeamIDs,
		TeamByGroup: req.TeamByGroup,
	}
}
