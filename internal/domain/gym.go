package domain

type Company struct {
	CompanyName        string `json:"CompanyName"`
	BoulderGradeSystem string `json:"BoulderGradeSystem,omitempty"`
	SportGradeSystem   string `json:"SportGradeSystem,omitempty"`
	PrimaryCountry     string `json:"PrimaryCountry,omitempty"`
}

type Gym struct {
	CompanyName string `json:"CompanyName,omitempty"`
	Suburb      string `json:"Suburb"`
	City        string `json:"City,omitempty"`
	Country     string `json:"Country,omitempty"`
}

// Location is a wall or area of a gym, tagged with the climb type set on it.
type Location struct {
	Name      string `json:"Location"`
	ClimbType string `json:"ClimbType"`
}

// ClimbTypeCatalog is the combined answer for one gym: its climb types and every location.
type ClimbTypeCatalog struct {
	ClimbTypes []string
	Locations  []Location
}

func FilterLocations(pool []Location, climbType string) []string {
	names := make([]string, 0, len(pool))
	if climbType == "" {
		return names
	}
	for _, l := range pool {
		if l.ClimbType == climbType {
			names = append(names, l.Name)
		}
	}
	return names
}

type Colour struct {
	CompanyName string `json:"CompanyName,omitempty"`
	Colour      string `json:"Colour"`
	HexCode     string `json:"HexCode,omitempty"`
}

type Grade struct {
	Grade      string `json:"Grade"`
	GradeOrder int    `json:"GradeOrder"`
}

type GradeSystem struct {
	GradingSystem string `json:"GradingSystem"`
}
