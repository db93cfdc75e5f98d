// internal/scoring/decision_test.go
package scoring

import (
	"math"
	"testing"

	apperrors "screening-workers/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func ptr[T any](v T) *T { return &v }

func createStrongRecord() ApplicantRecord {
	return ApplicantRecord{
		Sector:                  ptr(SectorICT),
		AnnualRevenue:           ptr(600000.0),
		EmployeeCount:           ptr(10),
		InvestmentReceived:      ptr(60000.0),
		ClientCount:             ptr(6000),
		RuralProducersSupported: ptr(60),
		EducationLevel:          ptr(EducationPhD),
		FounderAge:              ptr(30),
		FounderGender:           ptr(GenderFemale),
	}
}

func createWeakRecord() ApplicantRecord {
	return ApplicantRecord{
		Sector:                  ptr(SectorOther),
		AnnualRevenue:           ptr(0.0),
		EmployeeCount:           ptr(0),
		InvestmentReceived:      ptr(0.0),
		ClientCount:             ptr(0),
		RuralProducersSupported: ptr(0),
		EducationLevel:          ptr(EducationNone),
		FounderAge:              ptr(60),
		FounderGender:           ptr(GenderMale),
	}
}

// ==========================
// Aggregation Tests
// ==========================

func TestEvaluate_StrongApplicant(t *testing.T) {
	result, err := Evaluate(createStrongRecord())
	require.NoError(t, err)

	assert.Equal(t, PathRules, result.Path)
	assert.Equal(t, 5.0, result.Scores.ValueProposition)
	assert.Equal(t, 5.5, result.Scores.MarketGrowthPotential)
	assert.Equal(t, 4.25, result.Scores.TeamExpertise)
	require.NotNil(t, result.FinalScore)
	require.NotNil(t, result.FinalScorePercentage)
	assert.InDelta(t, 4.75, *result.FinalScore, 1e-9)
	assert.InDelta(t, 93.75, *result.FinalScorePercentage, 1e-9)
	assert.Equal(t, StatusAccepted, result.SelectionStatus)
}

func TestEvaluate_WeakApplicant(t *testing.T) {
	result, err := Evaluate(createWeakRecord())
	require.NoError(t, err)

	// 0.5 + 0.5 + 0.5 + 0.25 + 0.25 for market growth.
	assert.Equal(t, 2.0, result.Scores.ValueProposition)
	assert.Equal(t, 2.0, result.Scores.MarketGrowthPotential)
	assert.Equal(t, 1.75, result.Scores.TeamExpertise)
	assert.InDelta(t, 1.875, *result.FinalScore, 1e-9)
	assert.InDelta(t, 21.875, *result.FinalScorePercentage, 1e-9)
	assert.Equal(t, StatusRejected, result.SelectionStatus)
}

func TestEvaluate_ExactThresholdIsAccepted(t *testing.T) {
	rec := ApplicantRecord{
		Sector:                  ptr(SectorFashion), // 3
		AnnualRevenue:           ptr(0.0),           // 0.5
		EmployeeCount:           ptr(0),             // 0.5
		InvestmentReceived:      ptr(0.0),           // 0.5
		ClientCount:             ptr(100),           // 0.5
		RuralProducersSupported: ptr(3),             // 0.5
		EducationLevel:          ptr(EducationBachelors),
		FounderAge:              ptr(40),
		FounderGender:           ptr(GenderMale),
	}

	result, err := Evaluate(rec)
	require.NoError(t, err)
	assert.Equal(t, 3.0, *result.FinalScore)
	assert.Equal(t, 50.0, *result.FinalScorePercentage)
	assert.Equal(t, StatusAccepted, result.SelectionStatus)
}

func TestEvaluate_Idempotent(t *testing.T) {
	rec := createStrongRecord()
	first, err := Evaluate(rec)
	require.NoError(t, err)
	second, err := Evaluate(rec)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPercentage_Affine(t *testing.T) {
	assert.Equal(t, 0.0, Percentage(1))
	assert.Equal(t, 50.0, Percentage(3))
	assert.Equal(t, 100.0, Percentage(5))
	assert.Less(t, Percentage(2.5), Percentage(2.6))
}

// ==========================
// Decision Tests
// ==========================

func TestDecide(t *testing.T) {
	assert.Equal(t, StatusAccepted, Decide(50.0))
	assert.Equal(t, StatusAccepted, Decide(93.75))
	assert.Equal(t, StatusRejected, Decide(49.999))
	assert.Equal(t, StatusRejected, Decide(0))
}

func TestStatusFromLabel(t *testing.T) {
	status, err := StatusFromLabel(1)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, status)

	status, err = StatusFromLabel(0)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, status)

	_, err = StatusFromLabel(2)
	assert.Error(t, err)
}

// ==========================
// Validation Tests
// ==========================

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *ApplicantRecord)
		field  string
	}{
		{"missing sector", func(r *ApplicantRecord) { r.Sector = nil }, FieldSector},
		{"negative revenue", func(r *ApplicantRecord) { r.AnnualRevenue = ptr(-1.0) }, FieldAnnualRevenue},
		{"nan revenue", func(r *ApplicantRecord) { r.AnnualRevenue = ptr(math.NaN()) }, FieldAnnualRevenue},
		{"negative employees", func(r *ApplicantRecord) { r.EmployeeCount = ptr(-3) }, FieldEmployeeCount},
		{"infinite investment", func(r *ApplicantRecord) { r.InvestmentReceived = ptr(math.Inf(1)) }, FieldInvestmentReceived},
		{"missing clients", func(r *ApplicantRecord) { r.ClientCount = nil }, FieldClientCount},
		{"negative rural producers", func(r *ApplicantRecord) { r.RuralProducersSupported = ptr(-1) }, FieldRuralProducersSupported},
		{"missing education", func(r *ApplicantRecord) { r.EducationLevel = nil }, FieldEducationLevel},
		{"age too low", func(r *ApplicantRecord) { r.FounderAge = ptr(17) }, FieldFounderAge},
		{"age too high", func(r *ApplicantRecord) { r.FounderAge = ptr(101) }, FieldFounderAge},
		{"missing gender", func(r *ApplicantRecord) { r.FounderGender = nil }, FieldFounderGender},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := createStrongRecord()
			tt.mutate(&rec)

			_, err := Evaluate(rec)
			require.Error(t, err)
			assert.True(t, apperrors.IsInvalidInput(err))

			stdErr := apperrors.Normalize(err)
			assert.Equal(t, tt.field, stdErr.Metadata["field"])
		})
	}
}

func TestValidate_AgeBoundsInclusive(t *testing.T) {
	for _, age := range []int{MinFounderAge, MaxFounderAge} {
		rec := createStrongRecord()
		rec.FounderAge = ptr(age)
		assert.NoError(t, rec.Validate())
	}
}
