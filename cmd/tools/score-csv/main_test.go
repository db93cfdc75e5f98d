package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gopkg.in/yaml.v3"
)

const applicants = "Application ID,Industry,Annual Revenue,Number of Employees,Investment Received,Number of Clients,Number of Rural Producers Supported,Highest Level of Education,Age of Founder,Gender of Founder,Notes\n" +
	"A-1,ICT_and_digital_serivces,600000,10,60000,6000,60,PhD,30,Female,strong\n" +
	"A-2,other,0,0,0,0,0,No Formal Education,60,Male,weak\n" +
	"A-3,other,0,0,0,0,0,No Formal Education,sixty,Male,bad age\n"

const scoresOnly = "Value_Proposition_Score,Market_Growth_Potential_Score,Team_Expertise_Score\n" +
	"4,3,3\n" +
	"1,2,1\n"

func writeInput(t *testing.T, content string) (in, out string) {
	dir := t.TempDir()
	in = filepath.Join(dir, "applicants.csv")
	require.NoError(t, os.WriteFile(in, []byte(content), 0o600))
	return in, filepath.Join(dir, "AI_Selection_Results.csv")
}

func readOutput(t *testing.T, path string) [][]string {
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestRun_RuleBased(t *testing.T) {
	in, out := writeInput(t, applicants)
	var stdout bytes.Buffer

	err := run(context.Background(), options{In: in, Out: out, Format: formatYAML}, &stdout, zaptest.NewLogger(t))
	require.NoError(t, err)

	records := readOutput(t, out)
	require.Len(t, records, 4)
	n := len(records[0])
	assert.Equal(t, "Notes", records[0][n-5])
	assert.Equal(t, "Accepted", records[1][n-2])
	assert.Equal(t, "Rejected", records[2][n-2])
	assert.Contains(t, records[3][n-1], "INVALID_INPUT")

	var s summary
	require.NoError(t, yaml.Unmarshal(stdout.Bytes(), &s))
	assert.Equal(t, 3, s.Counts.Total)
	assert.Equal(t, 1, s.Counts.Failed)
	assert.Equal(t, []string{"Notes"}, s.IgnoredColumns)
	require.Len(t, s.Failures, 1)
	assert.Equal(t, 2, s.Failures[0].Index)
}

func TestRun_StrictRejectsUnknownColumns(t *testing.T) {
	in, out := writeInput(t, applicants)
	var stdout bytes.Buffer

	err := run(context.Background(), options{In: in, Out: out, Format: formatJSON, Strict: true}, &stdout, zaptest.NewLogger(t))
	require.NoError(t, err)

	var s summary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &s))
	assert.Equal(t, 3, s.Counts.Failed)
}

func TestRun_RemoteClassifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Instances [][3]float64 `json:"instances"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		preds := make([]float64, len(req.Instances))
		for i, row := range req.Instances {
			if row[0] >= 3 {
				preds[i] = 1
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"predictions": preds})
	}))
	defer srv.Close()

	in, out := writeInput(t, scoresOnly)
	var stdout bytes.Buffer

	err := run(context.Background(), options{In: in, Out: out, Format: formatJSON, Endpoint: srv.URL}, &stdout, zaptest.NewLogger(t))
	require.NoError(t, err)

	records := readOutput(t, out)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"", "", "Accepted", ""}, records[1][3:])
	assert.Equal(t, []string{"", "", "Rejected", ""}, records[2][3:])

	var s summary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &s))
	assert.Equal(t, "remote", s.Classifier)
}

func TestRun_NoClassifierForScores(t *testing.T) {
	in, out := writeInput(t, scoresOnly)
	var stdout bytes.Buffer

	err := run(context.Background(), options{In: in, Out: out, Format: formatYAML}, &stdout, zaptest.NewLogger(t))
	require.NoError(t, err)

	records := readOutput(t, out)
	assert.Contains(t, records[1][len(records[1])-1], "CLASSIFIER_UNAVAILABLE")
}

func TestRun_Errors(t *testing.T) {
	log := zaptest.NewLogger(t)

	err := run(context.Background(), options{In: "missing.csv", Out: "x.csv", Format: formatJSON}, &bytes.Buffer{}, log)
	assert.Error(t, err)

	err = run(context.Background(), options{In: "missing.csv", Format: "xml"}, &bytes.Buffer{}, log)
	assert.Error(t, err)

	err = run(context.Background(), options{In: "missing.csv", Format: formatJSON, Classifier: "onnx"}, &bytes.Buffer{}, log)
	assert.Error(t, err)
}

func TestClassifierConfig_Flags(t *testing.T) {
	ccfg, err := classifierConfig(options{ModelPath: "models/selection.onnx"})
	require.NoError(t, err)
	assert.Equal(t, "onnx", ccfg.Type)
	assert.Equal(t, "models/selection.onnx", ccfg.ModelPath)

	ccfg, err = classifierConfig(options{})
	require.NoError(t, err)
	assert.Equal(t, "none", ccfg.Type)
}
