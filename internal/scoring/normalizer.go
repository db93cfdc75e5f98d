// internal/scoring/normalizer.go
package scoring

// Banded sub-scores. Each named band is inclusive on its lower bound; the top band
// is strictly above the previous band's upper bound. Do not reorder.

// RevenueScore scores annual revenue.
func RevenueScore(v float64) float64 {
	switch {
	case v > 500_000:
		return 1.5
	case v >= 100_000:
		return 1.0
	default:
		return 0.5
	}
}

// JobsScore scores the employee headcount.
func JobsScore(v int) float64 {
	switch {
	case v > 8:
		return 1.0
	case v >= 4:
		return 0.75
	default:
		return 0.5
	}
}

// InvestmentScore scores the investment received to date.
func InvestmentScore(v float64) float64 {
	switch {
	case v > 50_000:
		return 1.0
	case v >= 10_000:
		return 0.75
	default:
		return 0.5
	}
}

// ClientsScore scores the number of clients served.
func ClientsScore(v int) float64 {
	switch {
	case v > 5000:
		return 1.0
	case v >= 401:
		return 0.75
	case v >= 51:
		return 0.5
	default:
		return 0.25
	}
}

// RuralProducersScore scores the number of rural producers supported.
func RuralProducersScore(v int) float64 {
	switch {
	case v > 50:
		return 1.0
	case v >= 6:
		return 0.75
	case v >= 1:
		return 0.5
	default:
		return 0.25
	}
}

// EducationScore scores the founder's education level.
func EducationScore(e EducationLevel) float64 {
	switch e {
	case EducationPhD, EducationMasters, EducationBachelors:
		return 1.75
	case EducationHighschool:
		return 1.25
	default:
		return 0.75
	}
}

// AgeScore scores the founder's age.
func AgeScore(v int) float64 {
	switch {
	case v < 35:
		return 1.5
	case v <= 50:
		return 1.0
	default:
		return 0.5
	}
}

// GenderScore scores the founder's gender.
func GenderScore(g Gender) float64 {
	if g == GenderFemale {
		return 1.0
	}
	return 0.5
}
