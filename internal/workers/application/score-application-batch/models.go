package scoreapplicationbatch

import "screening-workers/internal/screening"

type Input struct {
	Rows []map[string]interface{} `json:"rows"`
}

// Output reports every row. Failed rows carry an error and are counted in
// Summary.Failed; they do not fail the job.
type Output struct {
	BatchID string                 `json:"batchId"`
	Results []screening.RowOutcome `json:"results"`
	Summary screening.BatchSummary `json:"summary"`
}
