package scoreapplication

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"screening-workers/internal/common/errors"
	"screening-workers/internal/common/logger"
	"screening-workers/internal/common/metrics"
	"screening-workers/internal/scoring"
	"screening-workers/internal/screening"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "score-application"

// Scorer scores one applicant row. *screening.Orchestrator implements it.
type Scorer interface {
	ScoreRow(ctx context.Context, row screening.Row) (scoring.ScoringResult, error)
}

type Handler struct {
	config       *Config
	scorer       Scorer
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

type HandlerOptions struct {
	Config *Config
	Scorer Scorer
	Logger logger.Logger
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

	h.logger.Info("Processing screening request", map[string]interface{}{
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

// Execute scores the applicant or the supplied category scores.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || (input.Applicant == nil) == (input.Scores == nil) {
		return nil, errors.NewInvalidInputError("applicant", "exactly one of applicant or scores is required")
	}

	result, err := h.scorer.ScoreRow(ctx, input.toRow())
	if err != nil {
		return nil, err
	}

	h.logger.Info("Application scored", map[string]interface{}{
		"applicationId":   result.RowID,
		"path":            result.Path,
		"selectionStatus": result.SelectionStatus,
	})

	return &Output{
		ApplicationID:   result.RowID,
		SelectionStatus: result.SelectionStatus,
		Result:          result,
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

// toRow flattens the input into a row. applicationId is only used when the
// applicant does not carry its own id.
func (in *Input) toRow() screening.Row {
	src := in.Applicant
	if src == nil {
		src = in.Scores
	}

	row := make(screening.Row, len(src)+1)
	hasID := false
	for k, v := range src {
		row[k] = v
		if f, ok := screening.ResolveField(k); ok && f == screening.FieldID {
			hasID = true
		}
	}
	if in.ApplicationID != nil && !hasID {
		row[screening.FieldID] = in.ApplicationID
	}
	return row
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
		return
	}

	h.logger.Info("Completed screening job", map[string]interface{}{
		"jobKey":          job.GetKey(),
		"selectionStatus": output.SelectionStatus,
	})
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.CodeOf(err))).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}
