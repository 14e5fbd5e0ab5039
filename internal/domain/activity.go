package domain

import "time"

// Activity kinds recorded on the activity stream.
const (
	ActivityRouteAdded    = "route_added"
	ActivityRouteArchived = "route_archived"
	ActivityAttemptLogged = "attempt_logged"
	ActivityEntityAdded   = "entity_added"
	ActivityUserJoined    = "user_joined"
)

// Activity is one write made through the API, newest first when listed.
type Activity struct {
	ID       string    `json:"id"`
	Kind     string    `json:"kind"`
	Username string    `json:"username"`
	At       time.Time `json:"at"`
	Summary  string    `json:"summary"`
}

type ActivityResponse struct {
	Activity *[]Activity `json:"activity"`
}
