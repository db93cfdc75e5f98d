// internal/scoring/attributes.go
package scoring

import "strings"

// EducationLevel is the founder's highest completed education. The zero value is
// EducationNone.
type EducationLevel int

const (
	EducationNone EducationLevel = iota
	EducationHighschool
	EducationBachelors
	EducationMasters
	EducationPhD
)

var educationNames = [...]string{
	EducationNone:       "No Formal Education",
	EducationHighschool: "Highschool",
	EducationBachelors:  "Bachelors",
	EducationMasters:    "Masters",
	EducationPhD:        "PhD",
}

func (e EducationLevel) String() string {
	if e < 0 || int(e) >= len(educationNames) {
		return educationNames[EducationNone]
	}
	return educationNames[e]
}

func (e EducationLevel) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// ParseEducationLevel accepts the display names ("No Formal Education") as well as
// compact forms ("NoFormalEducation", "high_school"). Unknown values map to
// EducationNone with known=false.
func ParseEducationLevel(v string) (e EducationLevel, known bool) {
	key := compactKey(v)
	for i, name := range educationNames {
		if compactKey(name) == key {
			return EducationLevel(i), true
		}
	}
	return EducationNone, false
}

// Gender is the founder's declared gender. The zero value is GenderOther.
type Gender int

const (
	GenderOther Gender = iota
	GenderMale
	GenderFemale
)

var genderNames = [...]string{
	GenderOther:  "Other",
	GenderMale:   "Male",
	GenderFemale: "Female",
}

func (g Gender) String() string {
	if g < 0 || int(g) >= len(genderNames) {
		return genderNames[GenderOther]
	}
	return genderNames[g]
}

func (g Gender) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// ParseGender is case-insensitive. Unknown values map to GenderOther with known=false.
func ParseGender(v string) (g Gender, known bool) {
	key := compactKey(v)
	for i, name := range genderNames {
		if compactKey(name) == key {
			return Gender(i), true
		}
	}
	return GenderOther, false
}

func compactKey(v string) string {
	r := strings.NewReplacer(" ", "", "_", "", "-", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(v)))
}
