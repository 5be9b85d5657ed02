package httpapi

import (
	"net/http"

	"github.com/riskibarqy/tournament-predictor/internal/usecase"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/matches", handler.ListMatches)
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatch)
	mux.HandleFunc("GET /v1/bonuses", handler.ListBonuses)
	mux.HandleFunc("GET /v1/bonuses/{bonusID}", handler.GetBonus)

	mux.HandleFunc("PUT /v1/matches/{matchID}/predictions", handler.SubmitMatchPrediction)
	mux.HandleFunc("PUT /v1/bonuses/{bonusID}/predictions", handler.SubmitBonusPrediction)
	mux.HandleFunc("GET /v1/users/{userID}/predictions", handler.ListUserPredictions)
	mux.HandleFunc("GET /v1/users/{userID}/predictions/{outcomeRef}", handler.GetUserPrediction)

	mux.HandleFunc("GET /v1/outcomes/{outcomeRef}/entries", handler.ListOutcomeEntries)
	mux.HandleFunc("GET /v1/users/{userID}/entries", handler.ListUserEntries)
	mux.HandleFunc("GET /v1/users/{userID}/score", handler.GetUserScore)
}

// Operator routes mutate tournament state and are reserved for the platform
// side, so they share the internal token guard with the job endpoints.
func registerOperatorRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	guard := func(h http.HandlerFunc) http.Handler {
		return RequireInternalJobToken(internalJobToken, h)
	}

	mux.Handle("POST /v1/matches", guard(handler.ScheduleMatch))
	mux.Handle("POST /v1/matches/{matchID}/begin", guard(handler.BeginMatch))
	mux.Handle("POST /v1/matches/{matchID}/finalize", guard(handler.FinalizeMatch))
	mux.Handle("POST /v1/matches/{matchID}/correct", guard(handler.CorrectMatch))
	mux.Handle("POST /v1/matches/{matchID}/cancel", guard(handler.CancelMatch))

	mux.Handle("POST /v1/bonuses", guard(handler.CreateBonus))
	mux.Handle("POST /v1/bonuses/{bonusID}/resolve", guard(handler.ResolveBonus))
	mux.Handle("POST /v1/bonuses/{bonusID}/revise", guard(handler.ReviseBonus))
	mux.Handle("POST /v1/bonuses/{bonusID}/cancel", guard(handler.CancelBonus))

	mux.Handle("POST /v1/outcomes/{outcomeRef}/score", guard(handler.TriggerScoring))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST "+usecase.ScoreJobPath, RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunScoreJob)))
	mux.Handle("POST /internal/jobs/rescore", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRescoreJob)))
}
