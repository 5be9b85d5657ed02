package prediction

import (
	"context"

	"github.com/riskibarqy/tournament-predictor/internal/domain/outcome"
)

// View is the read-only access the scoring engine needs. ListByOutcome must
// return predictions ordered by id ascending so re-scoring is reproducible.
type View interface {
	ListByOutcome(ctx context.Context, ref outcome.Ref) ([]Prediction, error)
}

type Repository interface {
	View

	GetByUserAndOutcome(ctx context.Context, userID string, ref outcome.Ref) (Prediction, bool, error)
	Upsert(ctx context.Context, item Prediction) error
	ListByUser(ctx context.Context, userID string) ([]Prediction, error)
}
