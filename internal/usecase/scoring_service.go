package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/tournament-predictor/internal/domain/ledger"
	"github.com/riskibarqy/tournament-predictor/internal/domain/outcome"
	"github.com/riskibarqy/tournament-predictor/internal/domain/prediction"
	"github.com/riskibarqy/tournament-predictor/internal/domain/rules"
	"github.com/riskibarqy/tournament-predictor/internal/platform/cache"
	"github.com/riskibarqy/tournament-predictor/internal/platform/id"
	"github.com/riskibarqy/tournament-predictor/internal/platform/logging"
	"github.com/riskibarqy/tournament-predictor/internal/platform/resilience"
)

// PassStage tracks how far a scoring pass got. A pass that fails leaves the
// ledger exactly as it was; the stage only feeds reporting and logs.
type PassStage string

const (
	PassTriggered  PassStage = "TRIGGERED"
	PassLoading    PassStage = "LOADING"
	PassEvaluating PassStage = "EVALUATING"
	PassCommitting PassStage = "COMMITTING"
	PassDone       PassStage = "DONE"
	PassFailed     PassStage = "FAILED"
)

// ScoreReport summarizes one TriggerScoring call.
type ScoreReport struct {
	PassID      string
	OutcomeRef  outcome.Ref
	Stage       PassStage
	ResultHash  uint64
	RuleVersion string
	Entries     int
	Superseded  int
	Unchanged   int
	Skipped     int
	Idempotent  bool
}

// UserScoreTotal aggregates a user's active, non-voided ledger entries.
type UserScoreTotal struct {
	UserID  string
	Points  int
	Entries int
}

type ScoringService struct {
	outcomeRepo    outcome.Repository
	predictionView prediction.View
	ledgerRepo     ledger.Repository
	ruleConfig     rules.Config
	idGen          id.Generator
	store          *cache.Store
	locks          *resilience.KeyedLock
	logger         *logging.Logger
	now            func() time.Time
}

func NewScoringService(
	outcomeRepo outcome.Repository,
	predictionView prediction.View,
	ledgerRepo ledger.Repository,
	ruleConfig rules.Config,
	idGen id.Generator,
	store *cache.Store,
	logger *logging.Logger,
) *ScoringService {
	if idGen == nil {
		idGen = id.NewRandomGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ScoringService{
		outcomeRepo:    outcomeRepo,
		predictionView: predictionView,
		ledgerRepo:     ledgerRepo,
		ruleConfig:     ruleConfig,
		idGen:          idGen,
		store:          store,
		locks:          resilience.NewKeyedLock(),
		logger:         logger,
		now:            time.Now,
	}
}

// TriggerScoring runs one scoring pass for the referenced outcome. Triggers
// are idempotent: when the outcome's result and the rule version are
// unchanged since the last committed pass, nothing is written. A result that
// did change supersedes the previous active entries instead of mutating them,
// but only for users whose recomputed entry actually changed; the rest keep
// their active entry untouched.
func (s *ScoringService) TriggerScoring(ctx context.Context, ref outcome.Ref) (ScoreReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.TriggerScoring")
	defer span.End()

	if ref.IsZero() {
		return ScoreReport{Stage: PassFailed}, fmt.Errorf("%w: outcome ref is required", ErrInvalidInput)
	}

	release, ok := s.locks.Acquire(ref.String())
	if !ok {
		return ScoreReport{OutcomeRef: ref, Stage: PassFailed},
			fmt.Errorf("%w: %s", ErrScoringInProgress, ref)
	}
	defer release()

	report := ScoreReport{
		OutcomeRef:  ref,
		Stage:       PassTriggered,
		RuleVersion: s.ruleConfig.Version,
	}

	report.Stage = PassLoading
	target, err := s.loadScorable(ctx, ref)
	if err != nil {
		report.Stage = PassFailed
		return report, err
	}
	report.ResultHash = target.hash

	lastPass, hasLast, err := s.ledgerRepo.GetLastPass(ctx, ref)
	if err != nil {
		report.Stage = PassFailed
		return report, fmt.Errorf("get last pass for %s: %w", ref, err)
	}
	if hasLast && lastPass.ResultHash == target.hash && lastPass.RuleVersion == s.ruleConfig.Version {
		report.PassID = lastPass.ID
		report.Stage = PassDone
		report.Idempotent = true
		s.logger.DebugContext(ctx, "scoring pass skipped, result unchanged",
			"outcome", ref.String(), "pass_id", lastPass.ID)
		return report, nil
	}

	report.Stage = PassEvaluating
	predictions, err := s.predictionView.ListByOutcome(ctx, ref)
	if err != nil {
		report.Stage = PassFailed
		return report, fmt.Errorf("list predictions for %s: %w", ref, err)
	}

	previousActive, err := s.ledgerRepo.ListActiveByOutcome(ctx, ref)
	if err != nil {
		report.Stage = PassFailed
		return report, fmt.Errorf("list active entries for %s: %w", ref, err)
	}
	activeByPrediction := make(map[string]ledger.Entry, len(previousActive))
	for _, entry := range previousActive {
		activeByPrediction[entry.PredictionID] = entry
	}

	passID, err := s.idGen.NewID()
	if err != nil {
		report.Stage = PassFailed
		return report, fmt.Errorf("generate pass id: %w", err)
	}
	now := s.now().UTC()

	entries := make([]ledger.Entry, 0, len(predictions))
	for _, p := range predictions {
		score, evalErr := target.evaluate(p)
		if evalErr != nil {
			if errors.Is(evalErr, rules.ErrMalformedPrediction) {
				report.Skipped++
				s.logger.WarnContext(ctx, "skipping malformed prediction",
					"prediction_id", p.ID, "user_id", p.UserID, "outcome", ref.String(), "error", evalErr)
				continue
			}
			report.Stage = PassFailed
			return report, fmt.Errorf("evaluate prediction %s: %w", p.ID, evalErr)
		}

		previous, hasPrevious := activeByPrediction[p.ID]
		if hasPrevious && previous.Points == score.Points && previous.Voided == score.Voided {
			// The recomputed value matches the active entry; it stays as is.
			report.Unchanged++
			continue
		}

		entryID, idErr := s.idGen.NewID()
		if idErr != nil {
			report.Stage = PassFailed
			return report, fmt.Errorf("generate entry id: %w", idErr)
		}

		entry := ledger.Entry{
			ID:           entryID,
			UserID:       p.UserID,
			OutcomeRef:   ref,
			PredictionID: p.ID,
			Points:       score.Points,
			Voided:       score.Voided,
			Active:       true,
			RuleVersion:  s.ruleConfig.Version,
			PassID:       passID,
			ComputedAt:   now,
		}
		if hasPrevious {
			entry.SupersedesID = previous.ID
			report.Superseded++
		}
		entries = append(entries, entry)
	}
	report.Entries = len(entries)

	report.Stage = PassCommitting
	pass := ledger.Pass{
		ID:          passID,
		OutcomeRef:  ref,
		ResultHash:  target.hash,
		RuleVersion: s.ruleConfig.Version,
		EntryCount:  len(entries),
		CommittedAt: now,
	}
	if err := s.ledgerRepo.CommitPass(ctx, pass, entries); err != nil {
		report.Stage = PassFailed
		return report, fmt.Errorf("%w: %s: %v", ErrCommitFailed, ref, err)
	}
	s.invalidateLedgerCache(ctx, ref)

	report.PassID = passID
	report.Stage = PassDone
	s.logger.InfoContext(ctx, "scoring pass committed",
		"outcome", ref.String(),
		"pass_id", passID,
		"entries", report.Entries,
		"superseded", report.Superseded,
		"unchanged", report.Unchanged,
		"skipped", report.Skipped,
		"rule_version", s.ruleConfig.Version)
	return report, nil
}

// scorable is a loaded terminal outcome reduced to what a pass needs: the
// result hash for idempotence and an evaluator closed over the outcome.
type scorable struct {
	hash     uint64
	evaluate func(p prediction.Prediction) (rules.Score, error)
}

func (s *ScoringService) loadScorable(ctx context.Context, ref outcome.Ref) (scorable, error) {
	switch ref.Kind {
	case outcome.KindMatch:
		match, exists, err := s.outcomeRepo.GetMatch(ctx, ref.ID)
		if err != nil {
			return scorable{}, fmt.Errorf("get match %s: %w", ref.ID, err)
		}
		if !exists {
			return scorable{}, fmt.Errorf("%w: match %s", ErrNotFound, ref.ID)
		}
		if !match.IsTerminal() {
			return scorable{}, fmt.Errorf("%w: match %s is %s", ErrOutcomePending, match.ID, match.Status)
		}
		return scorable{
			hash: match.ResultHash(),
			evaluate: func(p prediction.Prediction) (rules.Score, error) {
				return rules.EvaluateMatch(p, match, s.ruleConfig)
			},
		}, nil

	case outcome.KindBonus:
		bonus, exists, err := s.outcomeRepo.GetBonus(ctx, ref.ID)
		if err != nil {
			return scorable{}, fmt.Errorf("get bonus %s: %w", ref.ID, err)
		}
		if !exists {
			return scorable{}, fmt.Errorf("%w: bonus %s", ErrNotFound, ref.ID)
		}
		if !bonus.IsTerminal() {
			return scorable{}, fmt.Errorf("%w: bonus %s is %s", ErrOutcomePending, bonus.ID, bonus.Status)
		}
		return scorable{
			hash: bonus.ResultHash(),
			evaluate: func(p prediction.Prediction) (rules.Score, error) {
				return rules.EvaluateBonus(p, bonus, s.ruleConfig)
			},
		}, nil

	default:
		return scorable{}, fmt.Errorf("%w: unknown outcome kind %q", ErrInvalidInput, ref.Kind)
	}
}

// ListOutcomeEntries returns the ledger entries for one outcome, newest pass
// included. With activeOnly set, superseded entries are filtered out.
func (s *ScoringService) ListOutcomeEntries(ctx context.Context, ref outcome.Ref, activeOnly bool) ([]ledger.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ListOutcomeEntries")
	defer span.End()

	if ref.IsZero() {
		return nil, fmt.Errorf("%w: outcome ref is required", ErrInvalidInput)
	}

	key := "ledger:outcome:" + ref.String()
	loader := func(ctx context.Context) (any, error) {
		return s.ledgerRepo.ListByOutcome(ctx, ref)
	}
	if activeOnly {
		key += ":active"
		loader = func(ctx context.Context) (any, error) {
			return s.ledgerRepo.ListActiveByOutcome(ctx, ref)
		}
	}

	value, err := s.cached(ctx, key, loader)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries for %s: %w", ref, err)
	}
	entries, _ := value.([]ledger.Entry)
	return entries, nil
}

// ListUserEntries returns every ledger entry for a user, superseded and
// voided entries included, so the full audit trail is visible.
func (s *ScoringService) ListUserEntries(ctx context.Context, userID string) ([]ledger.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ListUserEntries")
	defer span.End()

	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	value, err := s.cached(ctx, "ledger:user:"+userID, func(ctx context.Context) (any, error) {
		return s.ledgerRepo.ListByUser(ctx, userID)
	})
	if err != nil {
		return nil, fmt.Errorf("list ledger entries for user %s: %w", userID, err)
	}
	entries, _ := value.([]ledger.Entry)
	return entries, nil
}

// GetUserTotal sums a user's active, non-voided entries.
func (s *ScoringService) GetUserTotal(ctx context.Context, userID string) (UserScoreTotal, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.GetUserTotal")
	defer span.End()

	entries, err := s.ListUserEntries(ctx, userID)
	if err != nil {
		return UserScoreTotal{}, err
	}

	total := UserScoreTotal{UserID: userID}
	for _, entry := range entries {
		if !entry.Active || entry.Voided {
			continue
		}
		total.Points += entry.Points
		total.Entries++
	}
	return total, nil
}

func (s *ScoringService) cached(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if s.store == nil {
		return loader(ctx)
	}
	return s.store.GetOrLoad(ctx, key, loader)
}

func (s *ScoringService) invalidateLedgerCache(ctx context.Context, ref outcome.Ref) {
	if s.store == nil {
		return
	}
	s.store.DeletePrefix(ctx, "ledger:outcome:"+ref.String())
	// User totals span outcomes, so they are dropped wholesale.
	s.store.DeletePrefix(ctx, "ledger:user:")
}
