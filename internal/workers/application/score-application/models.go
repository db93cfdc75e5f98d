package scoreapplication

import "screening-workers/internal/scoring"

// Input carries either the raw applicant attributes or precomputed category
// scores, never both.
type Input struct {
	ApplicationID interface{}            `json:"applicationId,omitempty"`
	Applicant     map[string]interface{} `json:"applicant,omitempty"`
	Scores        map[string]interface{} `json:"scores,omitempty"`
}

type Output struct {
	ApplicationID   string                  `json:"applicationId,omitempty"`
	SelectionStatus scoring.SelectionStatus `json:"selectionStatus"`
	Result          scoring.ScoringResult   `json:"result"`
}
