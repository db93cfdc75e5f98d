// internal/scoring/decision.go
package scoring

import (
	"fmt"
	"math"

	apperrors "screening-workers/internal/common/errors"
)

// AcceptanceThreshold is the lowest percentage that is accepted.
const AcceptanceThreshold = 50.0

// SelectionStatus is the binary outcome of screening.
type SelectionStatus string

const (
	StatusAccepted SelectionStatus = "Accepted"
	StatusRejected SelectionStatus = "Rejected"
)

// Path identifies which engine produced a result.
type Path string

const (
	PathRules      Path = "rules"
	PathClassifier Path = "classifier"
)

// Decide applies the acceptance threshold.
func Decide(percentage float64) SelectionStatus {
	if percentage >= AcceptanceThreshold {
		return StatusAccepted
	}
	return StatusRejected
}

// StatusFromLabel maps a binary classifier label to a status.
func StatusFromLabel(label int) (SelectionStatus, error) {
	switch label {
	case 1:
		return StatusAccepted, nil
	case 0:
		return StatusRejected, nil
	default:
		return "", fmt.Errorf("classifier label %d is not binary", label)
	}
}

// ScoringResult is produced once per input and never modified afterwards.
// FinalScore and FinalScorePercentage are nil on the classifier path.
type ScoringResult struct {
	RowID                string          `json:"row_id,omitempty"`
	Path                 Path            `json:"path"`
	Scores               CategoryScores  `json:"scores"`
	FinalScore           *float64        `json:"final_score,omitempty"`
	FinalScorePercentage *float64        `json:"final_score_percentage,omitempty"`
	SelectionStatus      SelectionStatus `json:"selection_status"`
}

// Evaluate runs the rule-based path: validate, aggregate, weight, threshold.
func Evaluate(r ApplicantRecord) (ScoringResult, error) {
	if err := r.Validate(); err != nil {
		return ScoringResult{}, err
	}

	scores := Aggregate(r)
	final := FinalScore(scores)
	pct := Percentage(final)
	if math.IsNaN(pct) || pct < 0 || pct > 100 {
		return ScoringResult{}, apperrors.NewInvalidInputError("final_score_percentage",
			fmt.Sprintf("%v outside [0,100]", pct))
	}

	return ScoringResult{
		Path:                 PathRules,
		Scores:               scores,
		FinalScore:           &final,
		FinalScorePercentage: &pct,
		SelectionStatus:      Decide(pct),
	}, nil
}
