// internal/scoring/aggregator.go
package scoring

import "math"

// Category weights and the affine map from final score to percentage.
const (
	WeightValueProposition = 0.25
	WeightMarketGrowth     = 0.25
	WeightTeamExpertise    = 0.50

	ScoreFloor = 1.0
	ScoreSpan  = 4.0
)

// CategoryScores are the three unweighted category totals. They are either derived
// from an ApplicantRecord or supplied directly for the classifier.
type CategoryScores struct {
	ValueProposition      float64 `json:"value_proposition"`
	MarketGrowthPotential float64 `json:"market_growth_potential"`
	TeamExpertise         float64 `json:"team_expertise"`
}

// Finite reports whether all three scores are finite numbers.
func (c CategoryScores) Finite() bool {
	for _, v := range [...]float64{c.ValueProposition, c.MarketGrowthPotential, c.TeamExpertise} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Aggregate sums the sub-scores of a record per category. The record must have
// passed Validate.
func Aggregate(r ApplicantRecord) CategoryScores {
	return CategoryScores{
		ValueProposition: SectorScore(*r.Sector),
		MarketGrowthPotential: RevenueScore(*r.AnnualRevenue) +
			JobsScore(*r.EmployeeCount) +
			InvestmentScore(*r.InvestmentReceived) +
			ClientsScore(*r.ClientCount) +
			RuralProducersScore(*r.RuralProducersSupported),
		TeamExpertise: EducationScore(*r.EducationLevel) +
			AgeScore(*r.FounderAge) +
			GenderScore(*r.FounderGender),
	}
}

// FinalScore is the weighted sum of the category scores.
func FinalScore(c CategoryScores) float64 {
	return c.ValueProposition*WeightValueProposition +
		c.MarketGrowthPotential*WeightMarketGrowth +
		c.TeamExpertise*WeightTeamExpertise
}

// Percentage maps a final score onto the 0-100 scale used by the decision policy.
func Percentage(finalScore float64) float64 {
	return ((finalScore - ScoreFloor) / ScoreSpan) * 100
}
