package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/riskibarqy/tournament-predictor/external/jobqueue"
	"github.com/riskibarqy/tournament-predictor/internal/config"
	"github.com/riskibarqy/tournament-predictor/internal/domain/ledger"
	"github.com/riskibarqy/tournament-predictor/internal/domain/outcome"
	"github.com/riskibarqy/tournament-predictor/internal/domain/prediction"
	cacherepo "github.com/riskibarqy/tournament-predictor/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/tournament-predictor/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/tournament-predictor/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/tournament-predictor/internal/interfaces/httpapi"
	"github.com/riskibarqy/tournament-predictor/internal/platform/cache"
	idgen "github.com/riskibarqy/tournament-predictor/internal/platform/id"
	"github.com/riskibarqy/tournament-predictor/internal/platform/logging"
	"github.com/riskibarqy/tournament-predictor/internal/platform/resilience"
	"github.com/riskibarqy/tournament-predictor/internal/usecase"
)

type storageSet struct {
	outcomeRepo    outcome.Repository
	predictionRepo prediction.Repository
	ledgerRepo     ledger.Repository
	db             *sqlx.DB
}

// NewHTTPServer wires storage, services and the HTTP layer. The returned
// cleanup releases storage resources and must run after server shutdown.
func NewHTTPServer(cfg config.Config, logger *slog.Logger, appLogger *logging.Logger) (*http.Server, func(context.Context) error, error) {
	store, err := openStorage(context.Background(), cfg, appLogger)
	if err != nil {
		return nil, nil, err
	}

	var cacheStore *cache.Store
	outcomeRepo := store.outcomeRepo
	predictionRepo := store.predictionRepo
	if cfg.CacheEnabled {
		cacheStore = cache.NewStore(cfg.CacheTTL)
		outcomeRepo = cacherepo.NewOutcomeRepository(outcomeRepo, cacheStore)
		predictionRepo = cacherepo.NewPredictionRepository(predictionRepo, cacheStore)
	}

	idGen := idgen.NewRandomGenerator()

	scoringSvc := usecase.NewScoringService(
		outcomeRepo,
		predictionRepo,
		store.ledgerRepo,
		cfg.Rules,
		idGen,
		cacheStore,
		appLogger,
	)
	queue := newJobQueue(cfg, scoringSvc, logger, appLogger)

	outcomeSvc := usecase.NewOutcomeService(outcomeRepo, queue, idGen, appLogger)
	predictionSvc := usecase.NewPredictionService(predictionRepo, outcomeRepo, idGen, appLogger)
	rescoreSvc := usecase.NewRescoreService(store.outcomeRepo, scoringSvc, appLogger)
	rescoreSvc.SetDefaultWorkers(cfg.RescoreMaxWorkers)

	handler := httpapi.NewHandler(outcomeSvc, predictionSvc, scoringSvc, rescoreSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	cleanup := func(context.Context) error {
		if store.db != nil {
			return store.db.Close()
		}
		return nil
	}

	return server, cleanup, nil
}

func openStorage(ctx context.Context, cfg config.Config, logger *logging.Logger) (storageSet, error) {
	if cfg.Storage == config.StorageMemory {
		return storageSet{
			outcomeRepo:    memory.NewOutcomeRepository(memory.SeedMatches(), memory.SeedBonuses()),
			predictionRepo: memory.NewPredictionRepository(memory.SeedPredictions()),
			ledgerRepo:     memory.NewLedgerRepository(),
		}, nil
	}

	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Connect("postgres", dsn,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return storageSet{}, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := postgres.BootstrapSeed(ctx, db); err != nil {
		_ = db.Close()
		return storageSet{}, fmt.Errorf("bootstrap seed: %w", err)
	}
	logger.Info("postgres storage ready", "db", dbNameFromURL(cfg.DBURL))

	return storageSet{
		outcomeRepo:    postgres.NewOutcomeRepository(db),
		predictionRepo: postgres.NewPredictionRepository(db),
		ledgerRepo:     postgres.NewLedgerRepository(db),
		db:             db,
	}, nil
}

// newJobQueue picks the external publisher when QStash is configured and
// falls back to the inline queue otherwise, so transitions always reach a
// scoring pass.
func newJobQueue(cfg config.Config, scoring *usecase.ScoringService, logger *slog.Logger, appLogger *logging.Logger) usecase.JobQueue {
	if !cfg.QStashEnabled {
		return usecase.NewInlineJobQueue(scoring, appLogger)
	}

	return jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
		BaseURL:          cfg.QStashBaseURL,
		Token:            cfg.QStashToken,
		TargetBaseURL:    cfg.QStashTargetBaseURL,
		Retries:          cfg.QStashRetries,
		InternalJobToken: cfg.InternalJobToken,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.QStashCircuitEnabled,
			FailureThreshold: cfg.QStashCircuitFailureCount,
			OpenTimeout:      cfg.QStashCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.QStashCircuitHalfOpenMaxReq,
		},
	}, logger)
}
