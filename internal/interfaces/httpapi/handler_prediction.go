package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/tournament-predictor/internal/usecase"
)

type submitMatchPredictionRequest struct {
	UserID    string `json:"userId" validate:"required"`
	HomeScore *int   `json:"homeScore" validate:"required,min=0"`
	AwayScore *int   `json:"awayScore" validate:"required,min=0"`
}

type submitBonusPredictionRequest struct {
	UserID string             `json:"userId" validate:"required"`
	Answer bonusAnswerRequest `json:"answer" validate:"required"`
}

func (h *Handler) SubmitMatchPrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitMatchPrediction")
	defer span.End()

	matchID := r.PathValue("matchID")
	var req submitMatchPredictionRequest
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

	item, err := h.predictionService.SubmitMatchPrediction(ctx, usecase.SubmitMatchPredictionInput{
		UserID:    req.UserID,
		MatchID:   matchID,
		HomeScore: *req.HomeScore,
		AwayScore: *req.AwayScore,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit match prediction failed", "user_id", req.UserID, "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, predictionToDTO(ctx, item))
}

func (h *Handler) SubmitBonusPrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitBonusPrediction")
	defer span.End()

	bonusID := r.PathValue("bonusID")
	var req submitBonusPredictionRequest
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

	item, err := h.predictionService.SubmitBonusPrediction(ctx, usecase.SubmitBonusPredictionInput{
		UserID:  req.UserID,
		BonusID: bonusID,
		Answer:  outcomeAnswer(req.Answer),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit bonus prediction failed", "user_id", req.UserID, "bonus_id", bonusID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, predictionToDTO(ctx, item))
}

func (h *Handler) GetUserPrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUserPrediction")
	defer span.End()

	userID := strings.TrimSpace(r.PathValue("userID"))
	ref, err := parseOutcomeRef(r.PathValue("outcomeRef"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.predictionService.GetUserPrediction(ctx, userID, ref)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, predictionToDTO(ctx, item))
}

func (h *Handler) ListUserPredictions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListUserPredictions")
	defer span.End()

	userID := strings.TrimSpace(r.PathValue("userID"))
	items, err := h.predictionService.ListUserPredictions(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "list user predictions failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	dtos := make([]predictionDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, predictionToDTO(ctx, item))
	}

	writeSuccess(ctx, w, http.StatusOK, dtos)
}
