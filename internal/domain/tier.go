package domain

// Tier is one level of the location hierarchy, ordered from the root.
type Tier int

const (
	TierCompany   Tier = iota // Climbing company (brand)
	TierGym                   // Gym, identified by suburb
	TierClimbType             // Boulder, Sport, ...
	TierLocation              // Wall or area inside the gym
)

var Tiers = []Tier{
	TierCompany,
	TierGym,
	TierClimbType,
	TierLocation,
}

func (t Tier) String() string {
	switch t {
	case TierCompany:
		return "company"
	case TierGym:
		return "gym"
	case TierClimbType:
		return "climb_type"
	case TierLocation:
		return "location"
	default:
		return "unknown"
	}
}

func (t Tier) GetTierName() string {
	switch t {
	case TierCompany:
		return "Company"
	case TierGym:
		return "Gym"
	case TierClimbType:
		return "Climb Type"
	case TierLocation:
		return "Location"
	default:
		return "Unknown"
	}
}

// Below reports whether t sits strictly under other in the hierarchy.
func (t Tier) Below(other Tier) bool {
	return t > other
}

// LocationKey is the fully resolved four-tuple used to filter routes and attempts.
type LocationKey struct {
	Company   string `json:"company"`
	Gym       string `json:"suburb"`
	ClimbType string `json:"type_column"`
	Location  string `json:"location"`
}

// Complete is true iff every tier of the key is non-empty.
func (k LocationKey) Complete() bool {
	return k.Company != "" && k.Gym != "" && k.ClimbType != "" && k.Location != ""
}
