package models

// Institution is one of the fixed organizational scopes partitioning listings.
type Institution string

const (
	InstitutionIIITA Institution = "IIITA"
	InstitutionIIITH Institution = "IIITH"
	InstitutionIIITD Institution = "IIITD"
	InstitutionIIITB Institution = "IIITB"
)

type InstitutionInfo struct {
	ID   Institution `json:"id"`
	Name string      `json:"name"`
}

// Institutions lists the closed institution set in display order.
var Institutions = []InstitutionInfo{
	{ID: InstitutionIIITA, Name: "IIIT Allahabad"},
	{ID: InstitutionIIITH, Name: "IIIT Hyderabad"},
	{ID: InstitutionIIITD, Name: "IIIT Delhi"},
	{ID: InstitutionIIITB, Name: "IIIT Bangalore"},
}

// Valid reports whether i belongs to the closed institution set.
func (i Institution) Valid() bool {
	for _, info := range Institutions {
		if info.ID == i {
			return true
		}
	}
	return false
}

// ParseInstitution converts a raw code into an Institution. ok is false for
// anything outside the closed set.
func ParseInstitution(raw string) (Institution, bool) {
	inst := Institution(raw)
	return inst, inst.Valid()
}

// DisplayName returns the full institution name, or the raw code when unknown.
func (i Institution) DisplayName() string {
	for _, info := range Institutions {
		if info.ID == i {
			return info.Name
		}
	}
	return string(i)
}
