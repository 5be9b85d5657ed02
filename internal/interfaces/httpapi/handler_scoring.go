package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/tournament-predictor/internal/domain/outcome"
	"github.com/riskibarqy/tournament-predictor/internal/usecase"
)

type rescoreJobRequest struct {
	OutcomeRefs []string `json:"outcomeRefs"`
	MaxWorkers  int      `json:"maxWorkers" validate:"min=0,max=32"`
}

func (h *Handler) TriggerScoring(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TriggerScoring")
	defer span.End()

	ref, err := parseOutcomeRef(r.PathValue("outcomeRef"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.scoringService.TriggerScoring(ctx, ref)
	if err != nil {
		h.logger.WarnContext(ctx, "trigger scoring failed", "outcome", ref.String(), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, reportToDTO(ctx, report))
}

func (h *Handler) ListOutcomeEntries(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListOutcomeEntries")
	defer span.End()

	ref, err := parseOutcomeRef(r.PathValue("outcomeRef"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	activeOnly := strings.EqualFold(r.URL.Query().Get("active"), "true")
	entries, err := h.scoringService.ListOutcomeEntries(ctx, ref, activeOnly)
	if err != nil {
		h.logger.WarnContext(ctx, "list outcome entries failed", "outcome", ref.String(), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, entriesToDTO(ctx, entries))
}

func (h *Handler) ListUserEntries(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListUserEntries")
	defer span.End()

	userID := strings.TrimSpace(r.PathValue("userID"))
	entries, err := h.scoringService.ListUserEntries(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "list user entries failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, entriesToDTO(ctx, entries))
}

func (h *Handler) GetUserScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUserScore")
	defer span.End()

	userID := strings.TrimSpace(r.PathValue("userID"))
	total, err := h.scoringService.GetUserTotal(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "get user score failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, userTotalDTO{
		UserID:  total.UserID,
		Points:  total.Points,
		Entries: total.Entries,
	})
}

// RunScoreJob is the queue-facing side of outcome scoring: the job queue
// calls back into this endpoint with the payload enqueued on a terminal
// transition.
func (h *Handler) RunScoreJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunScoreJob")
	defer span.End()

	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var payload usecase.ScoreJobPayload
	if err := decoder.Decode(&payload); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}

	ref, err := parseOutcomeRef(payload.OutcomeRef)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.scoringService.TriggerScoring(ctx, ref)
	if err != nil {
		h.logger.WarnContext(ctx, "score job failed", "outcome", ref.String(), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, reportToDTO(ctx, report))
}

func (h *Handler) RunRescoreJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRescoreJob")
	defer span.End()

	if h.rescoreService == nil {
		writeError(ctx, w, fmt.Errorf("%w: rescore service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := decodeRescoreJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	refs := make([]outcome.Ref, 0, len(req.OutcomeRefs))
	for _, raw := range req.OutcomeRefs {
		ref, err := parseOutcomeRef(raw)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		refs = append(refs, ref)
	}

	result, err := h.rescoreService.Rescore(ctx, usecase.RescoreInput{
		Refs:       refs,
		MaxWorkers: req.MaxWorkers,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "rescore job failed", "refs", len(refs), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

// An empty body means "rescore everything".
func decodeRescoreJobRequest(r *http.Request) (rescoreJobRequest, error) {
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req rescoreJobRequest
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return rescoreJobRequest{}, nil
		}
		return rescoreJobRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return req, nil
}
