package scoreapplicationbatch

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"screening-workers/internal/classifier"
	"screening-workers/internal/common/errors"
	"screening-workers/internal/common/logger"
	"screening-workers/internal/scoring"
	"screening-workers/internal/screening"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Helpers
// ==========================

// teamModel accepts rows whose team expertise is at least 2.
type teamModel struct{}

func (teamModel) Predict(_ context.Context, rows []scoring.CategoryScores) ([]int, error) {
	out := make([]int, len(rows))
	for i, r := range rows {
		if r.TeamExpertise >= 2 {
			out[i] = 1
		}
	}
	return out, nil
}

func (teamModel) Close() error { return nil }

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)

	activatedJob := &pb.ActivatedJob{
		Key:                      key,
		Type:                     TaskType,
		ProcessInstanceKey:       key * 10,
		BpmnProcessId:            "screening-process",
		ProcessDefinitionVersion: 1,
		ProcessDefinitionKey:     1,
		ElementId:                "Activity_ScoreApplicationBatch",
		ElementInstanceKey:       1,
		CustomHeaders:            "{}",
		Worker:                   "test-worker",
		Retries:                  3,
		Deadline:                 0,
		Variables:                string(variablesJSON),
	}

	return entities.Job{ActivatedJob: activatedJob}
}

func createTestHandler(t *testing.T, cfg *Config) *Handler {
	log := logger.NewTestLogger(t)
	orch := screening.New(classifier.NewAdapter(teamModel{}, time.Second, log), screening.Options{MaxParallel: 2}, log)

	h, err := NewHandler(HandlerOptions{Config: cfg, Scorer: orch, Logger: log})
	require.NoError(t, err)
	return h
}

func applicantRow(id string, age interface{}) map[string]interface{} {
	return map[string]interface{}{
		"Application ID":                      id,
		"Industry":                            "Processed_Food",
		"Annual Revenue":                      "120,000",
		"Number of Employees":                 4,
		"Investment Received":                 0,
		"Number of Clients":                   250,
		"Number of Rural Producers Supported": 12,
		"Highest Level of Education":          "Bachelors",
		"Age of Founder":                      age,
		"Gender of Founder":                   "Female",
	}
}

func scoresRow(id string, te float64) map[string]interface{} {
	return map[string]interface{}{
		"id":                      id,
		"value_proposition":       3,
		"market_growth_potential": 3,
		"team_expertise":          te,
	}
}

// ==========================
// Input Parsing Tests
// ==========================

func TestParseInput(t *testing.T) {
	h := createTestHandler(t, nil)

	input, err := h.parseInput(createMockJob(1, map[string]interface{}{
		"rows": []interface{}{applicantRow("A-1", 35), scoresRow("S-1", 2)},
	}))
	require.NoError(t, err)
	require.Len(t, input.Rows, 2)
	assert.Equal(t, json.Number("35"), input.Rows[0]["Age of Founder"])

	_, err = h.parseInput(createMockJob(2, map[string]interface{}{"table": []interface{}{}}))
	assert.True(t, errors.IsInvalidInput(err))

	_, err = h.parseInput(createMockJob(3, map[string]interface{}{"rows": []interface{}{"not a row"}}))
	assert.True(t, errors.IsInvalidInput(err))
}

// ==========================
// Execute Tests
// ==========================

func TestExecute_MixedBatch(t *testing.T) {
	h := createTestHandler(t, nil)

	input, err := h.parseInput(createMockJob(1, map[string]interface{}{
		"rows": []interface{}{
			applicantRow("A-1", 35),
			scoresRow("S-1", 2.5),
			applicantRow("A-2", "unknown"),
			scoresRow("S-2", 1),
		},
	}))
	require.NoError(t, err)

	output, err := h.Execute(context.Background(), input)
	require.NoError(t, err, "row failures must not fail the job")

	assert.NotEmpty(t, output.BatchID)
	require.Len(t, output.Results, 4)
	assert.Equal(t, screening.BatchSummary{Total: 4, Succeeded: 3, Failed: 1, Accepted: 2, Rejected: 1}, output.Summary)

	assert.Equal(t, "A-1", output.Results[0].RowID)
	assert.Equal(t, scoring.PathRules, output.Results[0].Result.Path)
	assert.InDelta(t, 68.75, *output.Results[0].Result.FinalScorePercentage, 1e-9)

	assert.Equal(t, scoring.StatusAccepted, output.Results[1].Result.SelectionStatus)

	require.NotNil(t, output.Results[2].Error)
	assert.Equal(t, errors.ErrCodeInvalidInput, output.Results[2].Error.Code)
	assert.Nil(t, output.Results[2].Result)

	assert.Equal(t, scoring.StatusRejected, output.Results[3].Result.SelectionStatus)
}

func TestExecute_OutputSerializes(t *testing.T) {
	h := createTestHandler(t, nil)

	output, err := h.Execute(context.Background(), &Input{Rows: []map[string]interface{}{scoresRow("S-1", 3)}})
	require.NoError(t, err)

	data, err := json.Marshal(output)
	require.NoError(t, err)

	var vars map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &vars))
	assert.Contains(t, vars, "batchId")
	assert.Contains(t, vars, "results")
	assert.Equal(t, float64(1), vars["summary"].(map[string]interface{})["accepted"])
}

func TestExecute_EmptyBatch(t *testing.T) {
	h := createTestHandler(t, nil)

	output, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.Empty(t, output.Results)
	assert.Equal(t, 0, output.Summary.Total)
}

func TestExecute_RowLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRows = 1
	h := createTestHandler(t, cfg)

	_, err := h.Execute(context.Background(), &Input{Rows: []map[string]interface{}{
		scoresRow("S-1", 3), scoresRow("S-2", 3),
	}})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestExecute_Canceled(t *testing.T) {
	h := createTestHandler(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Execute(ctx, &Input{Rows: []map[string]interface{}{applicantRow("A-1", 35)}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.MaxRows = -1
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Timeout = 0
	assert.Error(t, cfg.Validate())
}
