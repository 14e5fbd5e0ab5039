package domain

import "time"

// Route is a set climb at a location. Field names follow the API wire format.
type Route struct {
	RID          int64     `json:"RID"`
	CreationDate time.Time `json:"CreationDate"`
	CompanyName  string    `json:"CompanyName"`
	Suburb       string    `json:"Suburb"`
	Location     string    `json:"Location"`
	Grade        string    `json:"Grade"`
	ClimbType    string    `json:"Type_column"`
	Colour       string    `json:"Colour"`
	NumberHolds  int       `json:"NumberHolds"`
}

// Key returns the location key the route belongs to.
func (r *Route) Key() LocationKey {
	return LocationKey{
		Company:   r.CompanyName,
		Gym:       r.Suburb,
		ClimbType: r.ClimbType,
		Location:  r.Location,
	}
}

// NewRoute is the payload for adding a route.
type NewRoute struct {
	CreationDate string `json:"creationDate"` // 2006-01-02
	CompanyName  string `json:"companyName"`
	Suburb       string `json:"suburb"`
	Location     string `json:"location"`
	Grade        string `json:"grade"`
	ClimbType    string `json:"type_column"`
	Colour       string `json:"colour"`
	NumberHolds  int    `json:"numberHolds"`
}
