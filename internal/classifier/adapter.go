package classifier

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	apperrors "screening-workers/internal/common/errors"
	"screening-workers/internal/common/logger"
	"screening-workers/internal/common/metrics"
	"screening-workers/internal/scoring"
)

// Decision is the classifier outcome for one row. Err is set instead of Status
// when the row could not be classified.
type Decision struct {
	Label  int
	Status scoring.SelectionStatus
	Err    error
}

// Adapter calls a Model with a timeout and isolates failures per row.
type Adapter struct {
	model   Model
	timeout time.Duration
	logger  logger.Logger
}

// NewAdapter wraps model. A nil model is allowed: every row then fails with
// CLASSIFIER_UNAVAILABLE.
func NewAdapter(model Model, timeout time.Duration, log logger.Logger) *Adapter {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Adapter{
		model:   model,
		timeout: timeout,
		logger:  log.WithFields(map[string]interface{}{"component": "classifier"}),
	}
}

// Available reports whether a model is configured.
func (a *Adapter) Available() bool {
	return a != nil && a.model != nil
}

// Close releases the underlying model.
func (a *Adapter) Close() error {
	if !a.Available() {
		return nil
	}
	return a.model.Close()
}

// ClassifyOne classifies a single row.
func (a *Adapter) ClassifyOne(ctx context.Context, row scoring.CategoryScores) Decision {
	return a.Classify(ctx, []scoring.CategoryScores{row})[0]
}

// Classify returns one Decision per row in input order. Rows with non-finite scores
// fail with INVALID_INPUT without reaching the model. The rest are sent as one
// batch; if that call fails they are retried one at a time so that only the
// faulting rows report CLASSIFIER_UNAVAILABLE. A label count mismatch fails every
// pending row without retrying.
func (a *Adapter) Classify(ctx context.Context, rows []scoring.CategoryScores) []Decision {
	out := make([]Decision, len(rows))

	if !a.Available() {
		for i := range out {
			out[i].Err = apperrors.NewClassifierUnavailableError(ErrNotConfigured)
		}
		return out
	}

	pending := make([]int, 0, len(rows))
	for i, row := range rows {
		if !row.Finite() {
			out[i].Err = apperrors.NewInvalidInputError("scores", "category scores must be finite numbers")
			continue
		}
		pending = append(pending, i)
	}
	if len(pending) == 0 {
		return out
	}

	batch := make([]scoring.CategoryScores, len(pending))
	for j, idx := range pending {
		batch[j] = rows[idx]
	}

	labels, err := a.predict(ctx, batch)
	if err == nil {
		for j, idx := range pending {
			out[idx] = decide(labels[j])
		}
		return out
	}

	if len(pending) == 1 || errors.Is(err, ErrLabelCount) {
		for _, idx := range pending {
			out[idx].Err = apperrors.NewClassifierUnavailableError(err)
		}
		return out
	}

	a.logger.Warn("Batch prediction failed, retrying rows individually", map[string]interface{}{
		"rows":  len(pending),
		"error": err,
	})

	for _, idx := range pending {
		if ctxErr := ctx.Err(); ctxErr != nil {
			out[idx].Err = apperrors.NewClassifierUnavailableError(ctxErr)
			continue
		}
		single, err := a.predict(ctx, rows[idx:idx+1])
		if err != nil {
			out[idx].Err = apperrors.NewClassifierUnavailableError(err)
			continue
		}
		out[idx] = decide(single[0])
	}
	return out
}

func (a *Adapter) predict(ctx context.Context, rows []scoring.CategoryScores) ([]int, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	labels, err := a.model.Predict(ctx, rows)
	if err == nil && len(labels) != len(rows) {
		err = fmt.Errorf("%w: %d labels for %d rows", ErrLabelCount, len(labels), len(rows))
	}

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.ClassifierPredictDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

	if err != nil {
		return nil, err
	}
	return labels, nil
}

func decide(label int) Decision {
	metrics.ClassifierPredictions.WithLabelValues(strconv.Itoa(label)).Inc()

	status, err := scoring.StatusFromLabel(label)
	if err != nil {
		return Decision{Label: label, Err: apperrors.NewClassifierUnavailableError(err)}
	}
	return Decision{Label: label, Status: status}
}
