package domain

import "encoding/json"

// Entities accepted by the misc_additions endpoint.
const (
	EntityCompany           = "company"
	EntityGym               = "gym"
	EntityLocation          = "location"
	EntityColour            = "colour"
	EntityColours           = "colours"
	EntityClimbType         = "climbtype"
	EntityClimbTypeLocation = "climbtype_location"
	EntityGradeSystem       = "grade_system"
	EntityGrades            = "grades"
	EntityMode              = "mode"
	EntityResult            = "result"
)

// Route actions accepted by POST /routes.
const (
	ActionAdd     = "add"
	ActionArchive = "archive"
)

// EntityRequest is the body of POST /misc_additions. CompanyName and Suburb are only
// used by the location entity, whose Data is a list.
type EntityRequest struct {
	Entity      string          `json:"entity"`
	CompanyName string          `json:"companyName,omitempty"`
	Suburb      string          `json:"suburb,omitempty"`
	Data        json.RawMessage `json:"data"`
}

type NewCompany struct {
	CompanyName        string `json:"companyName"`
	BoulderGradeSystem string `json:"boulderGradeSystem"`
	SportGradeSystem   string `json:"sportGradeSystem"`
	PrimaryCountry     string `json:"primaryCountry"`
}

type NewGym struct {
	CompanyName string `json:"companyName"`
	Suburb      string `json:"suburb"`
	City        string `json:"city"`
	Country     string `json:"country"`
}

type NewColour struct {
	CompanyName string `json:"companyName"`
	Colour      string `json:"colour"`
	HexCode     string `json:"hexCode,omitempty"`
}

type NewLocation struct {
	Location string `json:"location"`
	Type     string `json:"type"`
}

// RouteAction is the body of POST /routes.
type RouteAction struct {
	Action string     `json:"action"`
	RID    int64      `json:"rid,omitempty"`
	Routes []NewRoute `json:"routes,omitempty"`
	Route  *NewRoute  `json:"route,omitempty"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Response bodies.

type Message struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	AttemptNo int    `json:"attempt_no,omitempty"`
	Inserted  int    `json:"inserted,omitempty"`
}

type LoginResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
}

type ClimbTypeRow struct {
	ClimbType string `json:"ClimbType"`
}

type ClimbTypeLocationResponse struct {
	ClimbTypes *[]ClimbTypeRow `json:"climbtypes"`
	Locations  *[]Location     `json:"locations"`
}

type ModeRow struct {
	Mode string `json:"Mode_column"`
}

type ResultRow struct {
	Result string `json:"Result"`
}

// ResultsResponse wraps list answers of misc_additions. A nil Results means the key was absent.
type ResultsResponse[T any] struct {
	Results *[]T `json:"results"`
}

type RoutesResponse struct {
	Routes *[]Route `json:"routes"`
}

type AttemptsResponse struct {
	Attempts *[]Attempt `json:"attempts"`
}
