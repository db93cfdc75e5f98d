// internal/scoring/sector.go
package scoring

import "strings"

// Sector is the business sector an applicant operates in. The zero value is SectorOther.
type Sector int

const (
	SectorOther Sector = iota
	SectorHealthcare
	SectorICT
	SectorFinancialProfessional
	SectorAgriculture
	SectorProcessedFood
	SectorFashion
	SectorAccommodationFood
	SectorWholesaleRetail
	SectorConstruction
	SectorTransportation
	SectorEntrepreneurshipSkills
	SectorElectricAutoEquipment
	SectorSoftEmployabilitySkills
	SectorMiningUtilities
	SectorPublicAdministration
)

// Wire values as they appear in the application datasets, spelling included.
var sectorNames = [...]string{
	SectorOther:                   "other",
	SectorHealthcare:              "Healthcare_and_Allied_services",
	SectorICT:                     "ICT_and_digital_serivces",
	SectorFinancialProfessional:   "Financial,_professional,_and_management_",
	SectorAgriculture:             "Agriculture,_Agroforestry,_Crops_and_Horticulture",
	SectorProcessedFood:           "Processed_Food",
	SectorFashion:                 "Fashion,_apparel_and_crafts",
	SectorAccommodationFood:       "Accommodation,_food_and_beverage_service",
	SectorWholesaleRetail:         "Wholesale_and_retail",
	SectorConstruction:            "Construction_and_building_services",
	SectorTransportation:          "Tranportation_and_travel",
	SectorEntrepreneurshipSkills:  "Enterpreneurship_skills",
	SectorElectricAutoEquipment:   "electric__auto__equipment__che",
	SectorSoftEmployabilitySkills: "Soft_and_employability_skill",
	SectorMiningUtilities:         "Mining,_quarry_and_utilities",
	SectorPublicAdministration:    "Public_Administration,_community_and_soc",
}

// KnownSectors lists every sector, including SectorOther, in declaration order.
func KnownSectors() []Sector {
	out := make([]Sector, len(sectorNames))
	for i := range sectorNames {
		out[i] = Sector(i)
	}
	return out
}

func (s Sector) String() string {
	if s < 0 || int(s) >= len(sectorNames) {
		return sectorNames[SectorOther]
	}
	return sectorNames[s]
}

// MarshalText encodes the sector as its wire value.
func (s Sector) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseSector maps a wire value to a Sector. Matching ignores case and treats
// spaces as underscores. Unrecognized values map to SectorOther with known=false.
func ParseSector(v string) (s Sector, known bool) {
	key := sectorKey(v)
	for i, name := range sectorNames {
		if sectorKey(name) == key {
			return Sector(i), true
		}
	}
	return SectorOther, false
}

func sectorKey(v string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(v), " ", "_"))
}

// SectorScore is the Value Proposition sub-score of a sector, in {2,3,4,5}.
func SectorScore(s Sector) float64 {
	switch s {
	case SectorHealthcare, SectorICT, SectorFinancialProfessional, SectorAgriculture:
		return 5
	case SectorProcessedFood, SectorElectricAutoEquipment:
		return 4
	case SectorFashion, SectorAccommodationFood, SectorConstruction, SectorTransportation,
		SectorEntrepreneurshipSkills, SectorSoftEmployabilitySkills:
		return 3
	default:
		// SectorWholesaleRetail, SectorMiningUtilities, SectorPublicAdministration, SectorOther
		return 2
	}
}
