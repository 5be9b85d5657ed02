package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/tournament-predictor/internal/domain/outcome"
	"github.com/riskibarqy/tournament-predictor/internal/platform/id"
	"github.com/riskibarqy/tournament-predictor/internal/platform/logging"
)

// JobQueue hands scoring work to a queue: either an external one that calls
// the service back on an internal route, or the inline one that runs the job
// in-process.
type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return nil
}

// NewNoopJobQueue discards jobs. It backs tests that only assert the
// transition side of an operation; production wiring uses the inline queue
// or the external publisher.
func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}

const ScoreJobPath = "/internal/jobs/score"

type ScoreJobPayload struct {
	OutcomeRef string `json:"outcome_ref"`
}

var dedupUnsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

type ScheduleMatchInput struct {
	ID         string
	HomeTeamID string
	AwayTeamID string
	KickoffAt  time.Time
}

type CreateBonusInput struct {
	ID   string
	Type outcome.BonusQuestionType
}

// OutcomeService owns the outcome lifecycle. Every transition into a terminal
// status hands the outcome to the scoring queue; scoring itself stays in
// ScoringService.
type OutcomeService struct {
	outcomeRepo outcome.Repository
	queue       JobQueue
	idGen       id.Generator
	logger      *logging.Logger
	now         func() time.Time
}

func NewOutcomeService(
	outcomeRepo outcome.Repository,
	queue JobQueue,
	idGen id.Generator,
	logger *logging.Logger,
) *OutcomeService {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if idGen == nil {
		idGen = id.NewRandomGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &OutcomeService{
		outcomeRepo: outcomeRepo,
		queue:       queue,
		idGen:       idGen,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *OutcomeService) ScheduleMatch(ctx context.Context, input ScheduleMatchInput) (outcome.MatchOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OutcomeService.ScheduleMatch")
	defer span.End()

	if strings.TrimSpace(input.HomeTeamID) == "" || strings.TrimSpace(input.AwayTeamID) == "" {
		return outcome.MatchOutcome{}, fmt.Errorf("%w: home and away team ids are required", ErrInvalidInput)
	}
	if input.HomeTeamID == input.AwayTeamID {
		return outcome.MatchOutcome{}, fmt.Errorf("%w: a team cannot play itself", ErrInvalidInput)
	}

	matchID := strings.TrimSpace(input.ID)
	if matchID == "" {
		generated, err := s.idGen.NewID()
		if err != nil {
			return outcome.MatchOutcome{}, fmt.Errorf("generate match id: %w", err)
		}
		matchID = generated
	} else if _, exists, err := s.outcomeRepo.GetMatch(ctx, matchID); err != nil {
		return outcome.MatchOutcome{}, fmt.Errorf("check match %s: %w", matchID, err)
	} else if exists {
		return outcome.MatchOutcome{}, fmt.Errorf("%w: match %s already exists", ErrInvalidInput, matchID)
	}

	match := outcome.MatchOutcome{
		ID:         matchID,
		HomeTeamID: input.HomeTeamID,
		AwayTeamID: input.AwayTeamID,
		Status:     outcome.StatusScheduled,
		KickoffAt:  input.KickoffAt,
		UpdatedAt:  s.now().UTC(),
	}
	if err := s.outcomeRepo.UpsertMatch(ctx, match); err != nil {
		return outcome.MatchOutcome{}, fmt.Errorf("upsert match %s: %w", matchID, err)
	}
	return match, nil
}

func (s *OutcomeService) BeginMatch(ctx context.Context, matchID string) (outcome.MatchOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OutcomeService.BeginMatch")
	defer span.End()

	return s.updateMatch(ctx, matchID, false, func(m *outcome.MatchOutcome, now time.Time) error {
		return m.Begin(now)
	})
}

func (s *OutcomeService) FinalizeMatch(ctx context.Context, matchID string, result outcome.MatchResult) (outcome.MatchOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OutcomeService.FinalizeMatch")
	defer span.End()

	return s.updateMatch(ctx, matchID, true, func(m *outcome.MatchOutcome, now time.Time) error {
		return m.Finalize(result, now)
	})
}

// CorrectMatch replaces a terminal match result. Submitting the already
// recorded result is accepted and changes nothing.
func (s *OutcomeService) CorrectMatch(ctx context.Context, matchID string, result outcome.MatchResult) (outcome.MatchOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OutcomeService.CorrectMatch")
	defer span.End()

	match, exists, err := s.outcomeRepo.GetMatch(ctx, matchID)
	if err != nil {
		return outcome.MatchOutcome{}, fmt.Errorf("get match %s: %w", matchID, err)
	}
	if !exists {
		return outcome.MatchOutcome{}, fmt.Errorf("%w: match %s", ErrNotFound, matchID)
	}

	previous, changed, err := match.Correct(result, s.now().UTC())
	if err != nil {
		return outcome.MatchOutcome{}, err
	}
	if !changed {
		s.logger.DebugContext(ctx, "match correction matches recorded result, nothing to do",
			"match_id", matchID)
		return match, nil
	}

	if err := s.outcomeRepo.UpsertMatch(ctx, match); err != nil {
		return outcome.MatchOutcome{}, fmt.Errorf("upsert match %s: %w", matchID, err)
	}
	s.logger.InfoContext(ctx, "match result corrected",
		"match_id", matchID,
		"previous", fmt.Sprintf("%d-%d", previous.HomeScore, previous.AwayScore),
		"corrected", fmt.Sprintf("%d-%d", result.HomeScore, result.AwayScore))
	s.enqueueScoring(ctx, match.Ref(), match.ResultHash())
	return match, nil
}

func (s *OutcomeService) CancelMatch(ctx context.Context, matchID string) (outcome.MatchOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OutcomeService.CancelMatch")
	defer span.End()

	return s.updateMatch(ctx, matchID, true, func(m *outcome.MatchOutcome, now time.Time) error {
		return m.Cancel(now)
	})
}

func (s *OutcomeService) GetMatch(ctx context.Context, matchID string) (outcome.MatchOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OutcomeService.GetMatch")
	defer span.End()

	match, exists, err := s.outcomeRepo.GetMatch(ctx, matchID)
	if err != nil {
		return outcome.MatchOutcome{}, fmt.Errorf("get match %s: %w", matchID, err)
	}
	if !exists {
		return outcome.MatchOutcome{}, fmt.Errorf("%w: match %s", ErrNotFound, matchID)
	}
	return match, nil
}

func (s *OutcomeService) ListMatches(ctx context.Context) ([]outcome.MatchOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OutcomeService.ListMatches")
	defer span.End()

	matches, err := s.outcomeRepo.ListMatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return matches, nil
}

func (s *OutcomeService) CreateBonus(ctx context.Context, input CreateBonusInput) (outcome.BonusOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OutcomeService.CreateBonus")
	defer span.End()

	if !outcome.IsEntityBonus(input.Type) && !outcome.IsTeamSetBonus(input.Type) && !outcome.IsGroupBonus(input.Type) {
		return outcome.BonusOutcome{}, fmt.Errorf("%w: %s", outcome.ErrUnknownBonusType, input.Type)
	}

	bonusID := strings.TrimSpace(input.ID)
	if bonusID == "" {
		generated, err := s.idGen.NewID()
		if err != nil {
			return outcome.BonusOutcome{}, fmt.Errorf("generate bonus id: %w", err)
		}
		bonusID = generated
	} else if _, exists, err := s.outcomeRepo.GetBonus(ctx, bonusID); err != nil {
		return outcome.BonusOutcome{}, fmt.Errorf("check bonus %s: %w", bonusID, err)
	} else if exists {
		return outcome.BonusOutcome{}, fmt.Errorf("%w: bonus %s already exists", ErrInvalidInput, bonusID)
	}

	bonus := outcome.BonusOutcome{
		ID:        bonusID,
		Type:      input.Type,
		Status:    outcome.StatusOpen,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.outcomeRepo.UpsertBonus(ctx, bonus); err != nil {
		return outcome.BonusOutcome{}, fmt.Errorf("upsert bonus %s: %w", bonusID, err)
	}
	return bonus, nil
}

func (s *OutcomeService) ResolveBonus(ctx context.Context, bonusID string, answer outcome.Answer) (outcome.BonusOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OutcomeService.ResolveBonus")
	defer span.End()

	return s.updateBonus(ctx, bonusID, true, func(b *outcome.BonusOutcome, now time.Time) error {
		return b.Resolve(answer, now)
	})
}

// ReviseBonus replaces a resolved answer. Submitting the recorded answer,
// even with team sets reordered, is accepted and changes nothing.
func (s *OutcomeService) ReviseBonus(ctx context.Context, bonusID string, answer outcome.Answer) (outcome.BonusOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OutcomeService.ReviseBonus")
	defer span.End()

	bonus, exists, err := s.outcomeRepo.GetBonus(ctx, bonusID)
	if err != nil {
		return outcome.BonusOutcome{}, fmt.Errorf("get bonus %s: %w", bonusID, err)
	}
	if !exists {
		return outcome.BonusOutcome{}, fmt.Errorf("%w: bonus %s", ErrNotFound, bonusID)
	}

	changed, err := bonus.Revise(answer, s.now().UTC())
	if err != nil {
		return outcome.BonusOutcome{}, err
	}
	if !changed {
		s.logger.DebugContext(ctx, "bonus revision matches recorded answer, nothing to do",
			"bonus_id", bonusID)
		return bonus, nil
	}

	if err := s.outcomeRepo.UpsertBonus(ctx, bonus); err != nil {
		return outcome.BonusOutcome{}, fmt.Errorf("upsert bonus %s: %w", bonusID, err)
	}
	s.logger.InfoContext(ctx, "bonus answer revised", "bonus_id", bonusID, "type", string(bonus.Type))
	s.enqueueScoring(ctx, bonus.Ref(), bonus.ResultHash())
	return bonus, nil
}

func (s *OutcomeService) CancelBonus(ctx context.Context, bonusID string) (outcome.BonusOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OutcomeService.CancelBonus")
	defer span.End()

	return s.updateBonus(ctx, bonusID, true, func(b *outcome.BonusOutcome, now time.Time) error {
		return b.Cancel(now)
	})
}

func (s *OutcomeService) GetBonus(ctx context.Context, bonusID string) (outcome.BonusOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OutcomeService.GetBonus")
	defer span.End()

	bonus, exists, err := s.outcomeRepo.GetBonus(ctx, bonusID)
	if err != nil {
		return outcome.BonusOutcome{}, fmt.Errorf("get bonus %s: %w", bonusID, err)
	}
	if !exists {
		return outcome.BonusOutcome{}, fmt.Errorf("%w: bonus %s", ErrNotFound, bonusID)
	}
	return bonus, nil
}

func (s *OutcomeService) ListBonuses(ctx context.Context) ([]outcome.BonusOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OutcomeService.ListBonuses")
	defer span.End()

	bonuses, err := s.outcomeRepo.ListBonuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bonuses: %w", err)
	}
	return bonuses, nil
}

func (s *OutcomeService) updateMatch(
	ctx context.Context,
	matchID string,
	score bool,
	transition func(m *outcome.MatchOutcome, now time.Time) error,
) (outcome.MatchOutcome, error) {
	match, exists, err := s.outcomeRepo.GetMatch(ctx, matchID)
	if err != nil {
		return outcome.MatchOutcome{}, fmt.Errorf("get match %s: %w", matchID, err)
	}
	if !exists {
		return outcome.MatchOutcome{}, fmt.Errorf("%w: match %s", ErrNotFound, matchID)
	}

	if err := transition(&match, s.now().UTC()); err != nil {
		return outcome.MatchOutcome{}, err
	}
	if err := s.outcomeRepo.UpsertMatch(ctx, match); err != nil {
		return outcome.MatchOutcome{}, fmt.Errorf("upsert match %s: %w", matchID, err)
	}

	s.logger.InfoContext(ctx, "match transitioned", "match_id", matchID, "status", match.Status)
	if score {
		s.enqueueScoring(ctx, match.Ref(), match.ResultHash())
	}
	return match, nil
}

func (s *OutcomeService) updateBonus(
	ctx context.Context,
	bonusID string,
	score bool,
	transition func(b *outcome.BonusOutcome, now time.Time) error,
) (outcome.BonusOutcome, error) {
	bonus, exists, err := s.outcomeRepo.GetBonus(ctx, bonusID)
	if err != nil {
		return outcome.BonusOutcome{}, fmt.Errorf("get bonus %s: %w", bonusID, err)
	}
	if !exists {
		return outcome.BonusOutcome{}, fmt.Errorf("%w: bonus %s", ErrNotFound, bonusID)
	}

	if err := transition(&bonus, s.now().UTC()); err != nil {
		return outcome.BonusOutcome{}, err
	}
	if err := s.outcomeRepo.UpsertBonus(ctx, bonus); err != nil {
		return outcome.BonusOutcome{}, fmt.Errorf("upsert bonus %s: %w", bonusID, err)
	}

	s.logger.InfoContext(ctx, "bonus transitioned", "bonus_id", bonusID, "status", bonus.Status)
	if score {
		s.enqueueScoring(ctx, bonus.Ref(), bonus.ResultHash())
	}
	return bonus, nil
}

// enqueueScoring is best-effort: the transition is already persisted and a
// failed dispatch is recoverable by re-triggering the outcome manually.
func (s *OutcomeService) enqueueScoring(ctx context.Context, ref outcome.Ref, resultHash uint64) {
	payload := ScoreJobPayload{OutcomeRef: ref.String()}
	dedupID := scoreJobDeduplicationID(ref, resultHash)
	if err := s.queue.Enqueue(ctx, ScoreJobPath, payload, 0, dedupID); err != nil {
		s.logger.ErrorContext(ctx, "dispatch scoring job failed",
			"outcome", ref.String(), "deduplication_id", dedupID, "error", err)
		return
	}
	s.logger.InfoContext(ctx, "scoring job dispatched", "outcome", ref.String(), "deduplication_id", dedupID)
}

// scoreJobDeduplicationID collapses duplicate triggers for the same result:
// re-finalizing with an unchanged result reuses the id, a correction gets a
// new one.
func scoreJobDeduplicationID(ref outcome.Ref, resultHash uint64) string {
	raw := "score-" + ref.String() + "-" + strconv.FormatUint(resultHash, 16)
	return dedupUnsafeCharRegex.ReplaceAllString(raw, "-")
}
