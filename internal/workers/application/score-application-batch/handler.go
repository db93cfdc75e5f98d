package scoreapplicationbatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"screening-workers/internal/common/errors"
	"screening-workers/internal/common/logger"
	"screening-workers/internal/common/metrics"
	"screening-workers/internal/common/observability"
	"screening-workers/internal/screening"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "score-application-batch"

// BatchScorer scores a table of rows. *screening.Orchestrator implements it.
type BatchScorer interface {
	ScoreBatch(ctx context.Context, rows []screening.Row) (*screening.BatchResult, error)
}

type Handler struct {
	config       *Config
	scorer       BatchScorer
	obs          *observability.Observability
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

type HandlerOptions struct {
	Config        *Config
	Scorer        BatchScorer
	Observability *observability.Observability
	Logger        logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Scorer == nil {
		return nil, fmt.Errorf("%s: scorer is required", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:       cfg,
		scorer:       opts.Scorer,
		obs:          opts.Observability,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("Processing screening batch", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := h.parseInput(job)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

// Execute scores all rows. Row failures are reported in the output; only a
// batch-level failure such as cancellation returns an error.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewInvalidInputError("rows", "rows are required")
	}
	if h.config.MaxRows > 0 && len(input.Rows) > h.config.MaxRows {
		return nil, errors.NewInvalidInputError("rows",
			fmt.Sprintf("%d rows exceed the limit of %d", len(input.Rows), h.config.MaxRows))
	}

	rows := make([]screening.Row, len(input.Rows))
	for i, r := range input.Rows {
		rows[i] = screening.Row(r)
	}

	batch, err := h.scorer.ScoreBatch(ctx, rows)
	if err != nil {
		partial, ok := errors.AsPartialBatchFailure(err)
		if !ok || batch == nil {
			return nil, err
		}
		h.logger.Warn("Some rows could not be scored", map[string]interface{}{
			"batchId": batch.BatchID,
			"failed":  len(partial.Failures),
			"total":   partial.Total,
		})
	}

	h.obs.RecordBatch(ctx, batch.Summary.Total, batch.Summary.Failed)
	h.logger.Info("Batch scored", map[string]interface{}{
		"batchId":  batch.BatchID,
		"total":    batch.Summary.Total,
		"accepted": batch.Summary.Accepted,
		"rejected": batch.Summary.Rejected,
		"failed":   batch.Summary.Failed,
		"duration": batch.Duration.String(),
	})

	return &Output{
		BatchID: batch.BatchID,
		Results: batch.Results,
		Summary: batch.Summary,
	}, nil
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	raw := []byte(job.GetVariables())

	if res := GetInputSchema().ValidateJSON(raw); !res.Valid {
		return nil, res.Err()
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var input Input
	if err := dec.Decode(&input); err != nil {
		return nil, errors.NewParseError(err)
	}
	return &input, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
	}
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.CodeOf(err))).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}
