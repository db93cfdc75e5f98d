// Package screening selects a scoring path per input and runs it: the rule-based
// formula for raw applicant attributes, the classifier for pre-computed category scores.
package screening

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"screening-workers/internal/classifier"
	apperrors "screening-workers/internal/common/errors"
	"screening-workers/internal/common/logger"
	"screening-workers/internal/common/metrics"
	"screening-workers/internal/scoring"
)

const defaultMaxParallel = 8

// Options tunes the orchestrator.
type Options struct {
	// MaxParallel bounds concurrent rule-based scoring within one batch.
	MaxParallel int
}

// Orchestrator holds only immutable injected dependencies and is safe for
// concurrent use.
type Orchestrator struct {
	classifier  *classifier.Adapter
	maxParallel int
	logger      logger.Logger
}

// RowOutcome is the result for one input row. Exactly one of Result and Error is set.
type RowOutcome struct {
	Index  int                    `json:"index"`
	RowID  string                 `json:"rowId,omitempty"`
	Result *scoring.ScoringResult `json:"result,omitempty"`
	Error  *apperrors.RowFailure  `json:"error,omitempty"`
}

// BatchSummary counts outcomes of a batch.
type BatchSummary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Accepted  int `json:"accepted"`
	Rejected  int `json:"rejected"`
}

// BatchResult holds one outcome per input row, in input order.
type BatchResult struct {
	BatchID  string        `json:"batchId"`
	Results  []RowOutcome  `json:"results"`
	Summary  BatchSummary  `json:"summary"`
	Duration time.Duration `json:"-"`
}

// New builds an orchestrator. adapter may be nil or wrap a nil model; classifier
// rows then fail with CLASSIFIER_UNAVAILABLE.
func New(adapter *classifier.Adapter, opts Options, log logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = defaultMaxParallel
	}
	if adapter == nil {
		adapter = classifier.NewAdapter(nil, 0, log)
	}
	return &Orchestrator{
		classifier:  adapter,
		maxParallel: opts.MaxParallel,
		logger:      log.WithFields(map[string]interface{}{"component": "screening"}),
	}
}

// ClassifierAvailable reports whether a classifier model is configured.
func (o *Orchestrator) ClassifierAvailable() bool {
	return o.classifier.Available()
}

// ScoreApplicant runs the rule-based path on raw attributes.
func (o *Orchestrator) ScoreApplicant(ctx context.Context, rec scoring.ApplicantRecord) (scoring.ScoringResult, error) {
	if err := ctx.Err(); err != nil {
		return scoring.ScoringResult{}, err
	}
	result, err := scoring.Evaluate(rec)
	if err != nil {
		recordFailure(err)
		return scoring.ScoringResult{}, err
	}
	recordDecision(result)
	return result, nil
}

// ClassifyScores delegates pre-computed category scores to the classifier.
func (o *Orchestrator) ClassifyScores(ctx context.Context, scores scoring.CategoryScores) (scoring.ScoringResult, error) {
	d := o.classifier.ClassifyOne(ctx, scores)
	if d.Err != nil {
		recordFailure(d.Err)
		return scoring.ScoringResult{}, d.Err
	}
	result := classifierResult(scores, d)
	recordDecision(result)
	return result, nil
}

// ScoreRow decodes a named-field row and scores it on the path its fields select.
func (o *Orchestrator) ScoreRow(ctx context.Context, row Row) (scoring.ScoringResult, error) {
	p, err := parseRow(row)
	if err != nil {
		recordFailure(err)
		return scoring.ScoringResult{}, err
	}
	o.logWarnings(0, p)

	var result scoring.ScoringResult
	if p.kind == kindClassifier {
		result, err = o.ClassifyScores(ctx, p.scores)
	} else {
		result, err = o.ScoreApplicant(ctx, p.record)
	}
	if err != nil {
		return scoring.ScoringResult{}, err
	}
	result.RowID = p.id
	return result, nil
}

// ScoreBatch scores every row and returns one outcome per row in input order.
// Row failures do not stop the batch: when any row failed, the full BatchResult is
// returned together with a *PartialBatchFailure. Only context cancellation
// returns a nil BatchResult.
func (o *Orchestrator) ScoreBatch(ctx context.Context, rows []Row) (*BatchResult, error) {
	start := time.Now()
	batch := &BatchResult{
		BatchID: uuid.New().String(),
		Results: make([]RowOutcome, len(rows)),
	}

	parsed := make([]parsedRow, len(rows))
	var ruleIdx, classIdx []int

	for i, row := range rows {
		batch.Results[i].Index = i
		p, err := parseRow(row)
		if err != nil {
			o.fail(batch, i, err)
			continue
		}
		parsed[i] = p
		batch.Results[i].RowID = p.id
		o.logWarnings(i, p)

		if p.kind == kindClassifier {
			classIdx = append(classIdx, i)
		} else {
			ruleIdx = append(ruleIdx, i)
		}
	}

	if len(ruleIdx) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(o.maxParallel)
		for _, i := range ruleIdx {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				result, err := scoring.Evaluate(parsed[i].record)
				if err != nil {
					o.fail(batch, i, err)
					return nil
				}
				result.RowID = parsed[i].id
				batch.Results[i].Result = &result
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	if len(classIdx) > 0 {
		inputs := make([]scoring.CategoryScores, len(classIdx))
		for j, i := range classIdx {
			inputs[j] = parsed[i].scores
		}
		decisions := o.classifier.Classify(ctx, inputs)
		for j, i := range classIdx {
			if decisions[j].Err != nil {
				o.fail(batch, i, decisions[j].Err)
				continue
			}
			result := classifierResult(parsed[i].scores, decisions[j])
			result.RowID = parsed[i].id
			batch.Results[i].Result = &result
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var failures []apperrors.RowFailure
	batch.Summary.Total = len(rows)
	for _, out := range batch.Results {
		if out.Error != nil {
			failures = append(failures, *out.Error)
			continue
		}
		batch.Summary.Succeeded++
		recordDecision(*out.Result)
		if out.Result.SelectionStatus == scoring.StatusAccepted {
			batch.Summary.Accepted++
		} else {
			batch.Summary.Rejected++
		}
	}
	batch.Summary.Failed = len(failures)
	batch.Duration = time.Since(start)

	o.logger.Info("Batch scored", map[string]interface{}{
		"batchId":    batch.BatchID,
		"total":      batch.Summary.Total,
		"failed":     batch.Summary.Failed,
		"accepted":   batch.Summary.Accepted,
		"durationMs": batch.Duration.Milliseconds(),
	})

	if len(failures) > 0 {
		return batch, &apperrors.PartialBatchFailure{Total: len(rows), Failures: failures}
	}
	return batch, nil
}

// fail records a row failure. Each index is written by exactly one goroutine.
func (o *Orchestrator) fail(batch *BatchResult, i int, err error) {
	f := apperrors.NewRowFailure(i, err)
	batch.Results[i].Error = &f
	recordFailure(err)
	o.logger.Debug("Row could not be scored", map[string]interface{}{
		"batchId": batch.BatchID,
		"row":     i,
		"code":    string(f.Code),
		"reason":  f.Reason,
	})
}

func (o *Orchestrator) logWarnings(i int, p parsedRow) {
	for _, w := range p.warnings {
		o.logger.Warn("Unrecognized attribute value", map[string]interface{}{
			"row":    i,
			"rowId":  p.id,
			"detail": w,
		})
	}
}

func classifierResult(scores scoring.CategoryScores, d classifier.Decision) scoring.ScoringResult {
	return scoring.ScoringResult{
		Path:            scoring.PathClassifier,
		Scores:          scores,
		SelectionStatus: d.Status,
	}
}

func recordDecision(r scoring.ScoringResult) {
	metrics.ScreeningDecisions.WithLabelValues(string(r.Path), string(r.SelectionStatus)).Inc()
}

func recordFailure(err error) {
	metrics.ScreeningRowFailures.WithLabelValues(string(apperrors.CodeOf(err))).Inc()
}
