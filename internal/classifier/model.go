// Package classifier wraps a pre-trained accept/reject model behind a small
// capability interface and maps its binary labels onto selection statuses.
package classifier

import (
	"context"
	"errors"

	"screening-workers/internal/scoring"
)

// Model is a loaded classifier. Predict returns one label per input row, in order.
// Implementations must be safe for concurrent use.
type Model interface {
	Predict(ctx context.Context, rows []scoring.CategoryScores) ([]int, error)
	Close() error
}

// ErrNotConfigured is the cause reported for classifier rows when no model was injected.
var ErrNotConfigured = errors.New("no classifier configured")

// ErrLabelCount reports a model that returned a different number of labels than rows.
var ErrLabelCount = errors.New("classifier returned a label count that does not match the rows")

// features orders the category scores the way the model was trained.
func features(c scoring.CategoryScores) [3]float64 {
	return [3]float64{c.ValueProposition, c.MarketGrowthPotential, c.TeamExpertise}
}
