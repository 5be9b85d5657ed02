package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/tournament-predictor/internal/domain/outcome"
	"github.com/riskibarqy/tournament-predictor/internal/platform/logging"
)

const (
	rescoreStatusSuccess = "success"
	rescoreStatusSkipped = "skipped"
	rescoreStatusFailed  = "failed"

	defaultRescoreWorkers = 4
	maxRescoreWorkers     = 32
)

type RescoreInput struct {
	// Refs narrows the run to specific outcomes. Empty means every terminal
	// outcome in the store.
	Refs       []outcome.Ref
	MaxWorkers int
}

type RescoreResult struct {
	TaskCount    int                 `json:"task_count"`
	SuccessCount int                 `json:"success_count"`
	SkippedCount int                 `json:"skipped_count"`
	FailedCount  int                 `json:"failed_count"`
	WorkerCount  int                 `json:"worker_count"`
	Tasks        []RescoreTaskResult `json:"tasks"`
}

type RescoreTaskResult struct {
	OutcomeRef string `json:"outcome_ref"`
	Status     string `json:"status"`
	PassID     string `json:"pass_id,omitempty"`
	Entries    int    `json:"entries"`
	DurationMs int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

// RescoreService replays scoring across many outcomes, e.g. after a rule
// weight change. Each outcome is an independent task; idempotence in the
// engine makes the whole run safe to repeat.
type RescoreService struct {
	outcomeRepo    outcome.Repository
	scoringSvc     *ScoringService
	logger         *logging.Logger
	defaultWorkers int
}

func NewRescoreService(
	outcomeRepo outcome.Repository,
	scoringSvc *ScoringService,
	logger *logging.Logger,
) *RescoreService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RescoreService{
		outcomeRepo:    outcomeRepo,
		scoringSvc:     scoringSvc,
		logger:         logger,
		defaultWorkers: defaultRescoreWorkers,
	}
}

// SetDefaultWorkers changes the pool size used when a run does not ask for
// one. Values outside [1, maxRescoreWorkers] are ignored.
func (s *RescoreService) SetDefaultWorkers(n int) {
	if n >= 1 && n <= maxRescoreWorkers {
		s.defaultWorkers = n
	}
}

func (s *RescoreService) Rescore(ctx context.Context, input RescoreInput) (RescoreResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RescoreService.Rescore")
	defer span.End()

	refs := input.Refs
	if len(refs) == 0 {
		loaded, err := s.listTerminalRefs(ctx)
		if err != nil {
			return RescoreResult{}, err
		}
		refs = loaded
	}

	workerCount := input.MaxWorkers
	if workerCount <= 0 {
		workerCount = s.defaultWorkers
	}
	if workerCount > maxRescoreWorkers {
		workerCount = maxRescoreWorkers
	}
	if workerCount > len(refs) && len(refs) > 0 {
		workerCount = len(refs)
	}

	result := RescoreResult{
		TaskCount:   len(refs),
		WorkerCount: workerCount,
		Tasks:       make([]RescoreTaskResult, 0, len(refs)),
	}
	if len(refs) == 0 {
		return result, nil
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return RescoreResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	rows := make(chan RescoreTaskResult, len(refs))

	var successCount atomic.Int32
	var skippedCount atomic.Int32
	var failedCount atomic.Int32

	var workers sync.WaitGroup
	for _, ref := range refs {
		ref := ref
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := RescoreTaskResult{OutcomeRef: ref.String()}

			report, runErr := s.scoringSvc.TriggerScoring(ctx, ref)
			row.DurationMs = time.Since(start).Milliseconds()
			row.PassID = report.PassID
			row.Entries = report.Entries

			switch {
			case runErr == nil && report.Idempotent:
				row.Status = rescoreStatusSkipped
				row.Message = "result unchanged"
				skippedCount.Add(1)
			case runErr == nil:
				row.Status = rescoreStatusSuccess
				successCount.Add(1)
			case errors.Is(runErr, ErrScoringInProgress):
				row.Status = rescoreStatusSkipped
				row.Message = runErr.Error()
				skippedCount.Add(1)
			default:
				row.Status = rescoreStatusFailed
				row.Message = runErr.Error()
				failedCount.Add(1)
			}

			rows <- row
		}); err != nil {
			workers.Done()
			return RescoreResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(rows)

	for row := range rows {
		result.Tasks = append(result.Tasks, row)
	}
	sort.SliceStable(result.Tasks, func(i, j int) bool {
		return result.Tasks[i].OutcomeRef < result.Tasks[j].OutcomeRef
	})

	result.SuccessCount = int(successCount.Load())
	result.SkippedCount = int(skippedCount.Load())
	result.FailedCount = int(failedCount.Load())

	s.logger.InfoContext(ctx, "rescore run finished",
		"tasks", result.TaskCount,
		"success", result.SuccessCount,
		"skipped", result.SkippedCount,
		"failed", result.FailedCount,
		"workers", result.WorkerCount)
	return result, nil
}

func (s *RescoreService) listTerminalRefs(ctx context.Context) ([]outcome.Ref, error) {
	matches, err := s.outcomeRepo.ListMatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("list matches for rescore: %w", err)
	}
	bonuses, err := s.outcomeRepo.ListBonuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bonuses for rescore: %w", err)
	}

	refs := make([]outcome.Ref, 0, len(matches)+len(bonuses))
	for _, m := range matches {
		if m.IsTerminal() {
			refs = append(refs, m.Ref())
		}
	}
	for _, b := range bonuses {
		if b.IsTerminal() {
			refs = append(refs, b.Ref())
		}
	}
	return refs, nil
}
