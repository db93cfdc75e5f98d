// internal/scoring/record.go
package scoring

import (
	"fmt"
	"math"

	apperrors "screening-workers/internal/common/errors"
)

const (
	MinFounderAge = 18
	MaxFounderAge = 100
)

// Field names used in errors and on the wire.
const (
	FieldSector                  = "sector"
	FieldAnnualRevenue           = "annual_revenue"
	FieldEmployeeCount           = "employee_count"
	FieldInvestmentReceived      = "investment_received"
	FieldClientCount             = "client_count"
	FieldRuralProducersSupported = "rural_producers_supported"
	FieldEducationLevel          = "education_level"
	FieldFounderAge              = "founder_age"
	FieldFounderGender           = "founder_gender"
)

// ApplicantRecord holds the raw attributes of one application. Every attribute is
// optional at the type level so that absence can be reported; the rule-based path
// requires all of them. Pass by value: a record is not modified once submitted.
type ApplicantRecord struct {
	Sector                  *Sector         `json:"sector,omitempty"`
	AnnualRevenue           *float64        `json:"annual_revenue,omitempty"`
	EmployeeCount           *int            `json:"employee_count,omitempty"`
	InvestmentReceived      *float64        `json:"investment_received,omitempty"`
	ClientCount             *int            `json:"client_count,omitempty"`
	RuralProducersSupported *int            `json:"rural_producers_supported,omitempty"`
	EducationLevel          *EducationLevel `json:"education_level,omitempty"`
	FounderAge              *int            `json:"founder_age,omitempty"`
	FounderGender           *Gender         `json:"founder_gender,omitempty"`
}

// Validate checks presence and domain of every attribute and returns the first
// violation as an INVALID_INPUT error, in field declaration order.
func (r ApplicantRecord) Validate() error {
	if r.Sector == nil {
		return missing(FieldSector)
	}
	if err := checkAmount(FieldAnnualRevenue, r.AnnualRevenue); err != nil {
		return err
	}
	if err := checkCount(FieldEmployeeCount, r.EmployeeCount); err != nil {
		return err
	}
	if err := checkAmount(FieldInvestmentReceived, r.InvestmentReceived); err != nil {
		return err
	}
	if err := checkCount(FieldClientCount, r.ClientCount); err != nil {
		return err
	}
	if err := checkCount(FieldRuralProducersSupported, r.RuralProducersSupported); err != nil {
		return err
	}
	if r.EducationLevel == nil {
		return missing(FieldEducationLevel)
	}
	if r.FounderAge == nil {
		return missing(FieldFounderAge)
	}
	if age := *r.FounderAge; age < MinFounderAge || age > MaxFounderAge {
		return apperrors.NewInvalidInputError(FieldFounderAge,
			fmt.Sprintf("%d outside [%d,%d]", age, MinFounderAge, MaxFounderAge))
	}
	if r.FounderGender == nil {
		return missing(FieldFounderGender)
	}
	return nil
}

func missing(field string) error {
	return apperrors.NewInvalidInputError(field, "required field missing")
}

func checkAmount(field string, v *float64) error {
	switch {
	case v == nil:
		return missing(field)
	case math.IsNaN(*v) || math.IsInf(*v, 0):
		return apperrors.NewInvalidInputError(field, "not a finite number")
	case *v < 0:
		return apperrors.NewInvalidInputError(field, fmt.Sprintf("negative value %v", *v))
	}
	return nil
}

func checkCount(field string, v *int) error {
	switch {
	case v == nil:
		return missing(field)
	case *v < 0:
		return apperrors.NewInvalidInputError(field, fmt.Sprintf("negative value %d", *v))
	}
	return nil
}
