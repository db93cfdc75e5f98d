package screening

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	apperrors "screening-workers/internal/common/errors"
	"screening-workers/internal/scoring"
)

// Row is one named-field record, from a CSV line or from job variables.
type Row map[string]any

// Canonical field names beyond the applicant attributes in package scoring.
const (
	FieldID                    = "id"
	FieldValueProposition      = "value_proposition"
	FieldMarketGrowthPotential = "market_growth_potential"
	FieldTeamExpertise         = "team_expertise"
)

var scoreFields = [...]string{FieldValueProposition, FieldMarketGrowthPotential, FieldTeamExpertise}

// aliases maps canonicalized column names to field names. Keys must already be
// in canonical form (see CanonicalKey).
var aliases = map[string]string{
	"id":             FieldID,
	"application_id": FieldID,
	"applicationid":  FieldID,
	"applicant_id":   FieldID,

	"value_proposition":       FieldValueProposition,
	"value_proposition_score": FieldValueProposition,
	"valueproposition":        FieldValueProposition,
	"vp":                      FieldValueProposition,

	"market_growth_potential":       FieldMarketGrowthPotential,
	"market_growth_potential_score": FieldMarketGrowthPotential,
	"marketgrowthpotential":         FieldMarketGrowthPotential,
	"mgp":                           FieldMarketGrowthPotential,

	"team_expertise":       FieldTeamExpertise,
	"team_expertise_score": FieldTeamExpertise,
	"teamexpertise":        FieldTeamExpertise,
	"te":                   FieldTeamExpertise,

	"sector":          scoring.FieldSector,
	"industry":        scoring.FieldSector,
	"business_sector": scoring.FieldSector,

	"annual_revenue": scoring.FieldAnnualRevenue,
	"annualrevenue":  scoring.FieldAnnualRevenue,
	"revenue":        scoring.FieldAnnualRevenue,

	"employee_count":      scoring.FieldEmployeeCount,
	"employeecount":       scoring.FieldEmployeeCount,
	"employees":           scoring.FieldEmployeeCount,
	"number_of_employees": scoring.FieldEmployeeCount,
	"jobs":                scoring.FieldEmployeeCount,
	"jobs_created":        scoring.FieldEmployeeCount,

	"investment_received": scoring.FieldInvestmentReceived,
	"investmentreceived":  scoring.FieldInvestmentReceived,
	"investment":          scoring.FieldInvestmentReceived,

	"client_count":      scoring.FieldClientCount,
	"clientcount":       scoring.FieldClientCount,
	"clients":           scoring.FieldClientCount,
	"number_of_clients": scoring.FieldClientCount,

	"rural_producers_supported":           scoring.FieldRuralProducersSupported,
	"ruralproducerssupported":             scoring.FieldRuralProducersSupported,
	"rural_producers":                     scoring.FieldRuralProducersSupported,
	"number_of_rural_producers_supported": scoring.FieldRuralProducersSupported,

	"education_level":            scoring.FieldEducationLevel,
	"educationlevel":             scoring.FieldEducationLevel,
	"education":                  scoring.FieldEducationLevel,
	"highest_level_of_education": scoring.FieldEducationLevel,

	"founder_age":    scoring.FieldFounderAge,
	"founderage":     scoring.FieldFounderAge,
	"age":            scoring.FieldFounderAge,
	"age_of_founder": scoring.FieldFounderAge,

	"founder_gender":    scoring.FieldFounderGender,
	"foundergender":     scoring.FieldFounderGender,
	"gender":            scoring.FieldFounderGender,
	"gender_of_founder": scoring.FieldFounderGender,
}

// CanonicalKey trims, lower-cases and replaces spaces and hyphens with underscores.
func CanonicalKey(name string) string {
	k := strings.ToLower(strings.TrimSpace(name))
	k = strings.NewReplacer(" ", "_", "-", "_").Replace(k)
	return k
}

// ResolveField returns the field a column name refers to.
func ResolveField(name string) (string, bool) {
	f, ok := aliases[CanonicalKey(name)]
	return f, ok
}

// rowKind is the scoring path a row selects.
type rowKind int

const (
	kindRules rowKind = iota
	kindClassifier
)

// parsedRow is a Row decoded into typed values.
type parsedRow struct {
	id       string
	kind     rowKind
	record   scoring.ApplicantRecord
	scores   scoring.CategoryScores
	warnings []string
}

// parseRow resolves aliases, decodes values and selects the scoring path.
// Unknown field names, duplicate fields and undecodable values are INVALID_INPUT.
func parseRow(row Row) (parsedRow, error) {
	var p parsedRow

	fields := make(map[string]any, len(row))
	names := make([]string, 0, len(row))
	for name := range row {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		field, ok := ResolveField(name)
		if !ok {
			return p, apperrors.NewInvalidInputError(name, "unknown field")
		}
		if _, dup := fields[field]; dup {
			return p, apperrors.NewInvalidInputError(field, fmt.Sprintf("supplied more than once (via %q)", name))
		}
		fields[field] = row[name]
	}

	if v, ok := fields[FieldID]; ok && !isAbsent(v) {
		p.id = idString(v)
	}

	present := 0
	for _, f := range scoreFields {
		if !isAbsent(fields[f]) {
			present++
		}
	}

	switch {
	case present == len(scoreFields):
		p.kind = kindClassifier
		var err error
		if p.scores.ValueProposition, err = floatField(FieldValueProposition, fields[FieldValueProposition]); err != nil {
			return p, err
		}
		if p.scores.MarketGrowthPotential, err = floatField(FieldMarketGrowthPotential, fields[FieldMarketGrowthPotential]); err != nil {
			return p, err
		}
		if p.scores.TeamExpertise, err = floatField(FieldTeamExpertise, fields[FieldTeamExpertise]); err != nil {
			return p, err
		}
		if !p.scores.Finite() {
			return p, apperrors.NewInvalidInputError("scores", "category scores must be finite numbers")
		}
		return p, nil

	case present > 0:
		for _, f := range scoreFields {
			if isAbsent(fields[f]) {
				return p, apperrors.NewInvalidInputError(f, "category scores must be supplied together")
			}
		}
	}

	p.kind = kindRules
	rec, warnings, err := recordFromFields(fields)
	if err != nil {
		return p, err
	}
	p.record = rec
	p.warnings = warnings
	return p, nil
}

// recordFromFields decodes the applicant attributes. Missing attributes stay nil
// and are reported by ApplicantRecord.Validate.
func recordFromFields(fields map[string]any) (scoring.ApplicantRecord, []string, error) {
	var (
		rec      scoring.ApplicantRecord
		warnings []string
	)

	if v := fields[scoring.FieldSector]; !isAbsent(v) {
		s, err := stringField(scoring.FieldSector, v)
		if err != nil {
			return rec, nil, err
		}
		sector, known := scoring.ParseSector(s)
		if !known {
			warnings = append(warnings, fmt.Sprintf("unrecognized sector %q scored as %s", s, scoring.SectorOther))
		}
		rec.Sector = &sector
	}

	var err error
	if rec.AnnualRevenue, err = optionalFloat(fields, scoring.FieldAnnualRevenue); err != nil {
		return rec, nil, err
	}
	if rec.EmployeeCount, err = optionalCount(fields, scoring.FieldEmployeeCount); err != nil {
		return rec, nil, err
	}
	if rec.InvestmentReceived, err = optionalFloat(fields, scoring.FieldInvestmentReceived); err != nil {
		return rec, nil, err
	}
	if rec.ClientCount, err = optionalCount(fields, scoring.FieldClientCount); err != nil {
		return rec, nil, err
	}
	if rec.RuralProducersSupported, err = optionalCount(fields, scoring.FieldRuralProducersSupported); err != nil {
		return rec, nil, err
	}

	if v := fields[scoring.FieldEducationLevel]; !isAbsent(v) {
		s, err := stringField(scoring.FieldEducationLevel, v)
		if err != nil {
			return rec, nil, err
		}
		level, known := scoring.ParseEducationLevel(s)
		if !known {
			warnings = append(warnings, fmt.Sprintf("unrecognized education level %q scored as %s", s, scoring.EducationNone))
		}
		rec.EducationLevel = &level
	}

	if rec.FounderAge, err = optionalCount(fields, scoring.FieldFounderAge); err != nil {
		return rec, nil, err
	}

	if v := fields[scoring.FieldFounderGender]; !isAbsent(v) {
		s, err := stringField(scoring.FieldFounderGender, v)
		if err != nil {
			return rec, nil, err
		}
		gender, known := scoring.ParseGender(s)
		if !known {
			warnings = append(warnings, fmt.Sprintf("unrecognized gender %q scored as %s", s, scoring.GenderOther))
		}
		rec.FounderGender = &gender
	}

	return rec, warnings, nil
}

func isAbsent(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}

func idString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func stringField(field string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", apperrors.NewInvalidInputError(field, fmt.Sprintf("expected text, got %T", v))
	}
	return s, nil
}

func optionalFloat(fields map[string]any, field string) (*float64, error) {
	v := fields[field]
	if isAbsent(v) {
		return nil, nil
	}
	f, err := floatField(field, v)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func optionalCount(fields map[string]any, field string) (*int, error) {
	v := fields[field]
	if isAbsent(v) {
		return nil, nil
	}
	f, err := floatField(field, v)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, apperrors.NewInvalidInputError(field, fmt.Sprintf("%v is not an integer", v))
	}
	if math.Abs(f) > math.MaxInt32 {
		return nil, apperrors.NewInvalidInputError(field, fmt.Sprintf("%v is out of range", v))
	}
	n := int(f)
	return &n, nil
}

// floatField decodes JSON numbers, Go numeric types and numeric text
// (thousands separators allowed, as exported by spreadsheets).
func floatField(field string, v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, apperrors.NewInvalidInputError(field, fmt.Sprintf("%q is not a number", string(t)))
		}
		return f, nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(t), ",", "")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, apperrors.NewInvalidInputError(field, fmt.Sprintf("%q is not a number", t))
		}
		return f, nil
	default:
		return 0, apperrors.NewInvalidInputError(field, fmt.Sprintf("expected a number, got %T", v))
	}
}
