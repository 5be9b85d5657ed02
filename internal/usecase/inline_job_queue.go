package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/tournament-predictor/internal/domain/outcome"
	"github.com/riskibarqy/tournament-predictor/internal/platform/logging"
)

// inlineJobQueue runs scoring jobs in-process. It is the queue for
// deployments without an external scheduler, so outcome transitions still
// produce a scoring pass instead of waiting for a callback that never comes.
type inlineJobQueue struct {
	scoring *ScoringService
	logger  *logging.Logger
}

func NewInlineJobQueue(scoring *ScoringService, logger *logging.Logger) JobQueue {
	if logger == nil {
		logger = logging.Default()
	}
	return &inlineJobQueue{scoring: scoring, logger: logger}
}

// Enqueue dispatches the job synchronously. The delay is ignored; a caller
// that needs deferred execution needs the external queue.
func (q *inlineJobQueue) Enqueue(ctx context.Context, path string, payload any, _ time.Duration, deduplicationID string) error {
	if path != ScoreJobPath {
		return fmt.Errorf("%w: no inline handler for job path %s", ErrInvalidInput, path)
	}
	job, ok := payload.(ScoreJobPayload)
	if !ok {
		return fmt.Errorf("%w: unexpected score job payload %T", ErrInvalidInput, payload)
	}
	ref, err := outcome.ParseRef(job.OutcomeRef)
	if err != nil {
		return fmt.Errorf("parse outcome ref %q: %w", job.OutcomeRef, err)
	}

	report, err := q.scoring.TriggerScoring(ctx, ref)
	if err != nil {
		return fmt.Errorf("run scoring job for %s: %w", ref, err)
	}
	q.logger.InfoContext(ctx, "scoring job ran inline",
		"outcome", ref.String(),
		"pass_id", report.PassID,
		"deduplication_id", deduplicationID,
		"idempotent", report.Idempotent)
	return nil
}
