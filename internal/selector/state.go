// Package selector implements the cascading Company → Gym → ClimbType → Location
// selection used to address routes and attempts.
//
// State is an immutable value with reducer-style transitions; Selector drives it
// against a Provider, running fetches concurrently and discarding stale results.
package selector

import (
	"errors"
	"fmt"
	"slices"

	"climbing/logbook/internal/domain"
)

var (
	ErrInvalidSelection = errors.New("invalid selection")
	ErrNotReady         = errors.New("location is not fully selected")
)

type Status int

const (
	StatusEmpty Status = iota
	StatusLoading
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// TierState is the observable state of one tier.
type TierState struct {
	Status   Status
	Options  []string
	Selected string
	Err      string
}

// Has reports whether v is one of the tier's current options.
func (t TierState) Has(v string) bool {
	return slices.Contains(t.Options, v)
}

type FetchKind int

const (
	FetchCompanies FetchKind = iota
	FetchGyms
	FetchClimbTypes

	fetchKinds
)

func (k FetchKind) String() string {
	switch k {
	case FetchCompanies:
		return "companies"
	case FetchGyms:
		return "gyms"
	case FetchClimbTypes:
		return "climb_types_and_locations"
	default:
		return "unknown"
	}
}

// Tag identifies a fetch by sequence number and the ancestor selections it was issued for.
type Tag struct {
	Kind    FetchKind
	Seq     uint64
	Company string
	Gym     string
}

// Fetch is a request the caller must perform and feed back through Resolve.
type Fetch struct {
	Tag Tag
}

// Result is the outcome of a Fetch. Only the field matching Tag.Kind is read.
type Result struct {
	Tag       Tag
	Companies []string
	Gyms      []string
	Catalog   *domain.ClimbTypeCatalog
	Err       error
}

// State is the full selector state. The zero value has every tier empty.
type State struct {
	company   TierState
	gym       TierState
	climbType TierState
	location  TierState // Options are derived from pool, never stored

	pool []domain.Location

	// latest holds the sequence of the fetch each kind is waiting for, 0 when none.
	latest [fetchKinds]uint64
	seq    uint64
}

// Load (re)fetches the company list and clears every tier.
func (s State) Load() (State, *Fetch) {
	s.company = TierState{Status: StatusLoading}
	s.clearBelow(domain.TierCompany)
	return s, s.issue(FetchCompanies)
}

// SelectCompany selects a company and starts fetching its gyms. An empty name clears it.
func (s State) SelectCompany(name string) (State, *Fetch, error) {
	if name != "" && !s.selectable(s.company, name) {
		return s, nil, fmt.Errorf("%w: company %q", ErrInvalidSelection, name)
	}

	s.company.Selected = name
	s.clearBelow(domain.TierCompany)
	if name == "" {
		return s, nil, nil
	}

	s.gym.Status = StatusLoading
	return s, s.issue(FetchGyms), nil
}

// SelectGym selects a gym (suburb) and starts the combined climb type and location fetch.
func (s State) SelectGym(suburb string) (State, *Fetch, error) {
	if s.company.Selected == "" {
		return s, nil, fmt.Errorf("%w: gym %q selected before a company", ErrInvalidSelection, suburb)
	}
	if suburb != "" && !s.selectable(s.gym, suburb) {
		return s, nil, fmt.Errorf("%w: gym %q", ErrInvalidSelection, suburb)
	}

	s.gym.Selected = suburb
	s.clearBelow(domain.TierGym)
	if suburb == "" {
		return s, nil, nil
	}

	s.climbType.Status = StatusLoading
	s.location.Status = StatusLoading
	return s, s.issue(FetchClimbTypes), nil
}

// SelectClimbType selects a climb type. Locations are filtered locally, no fetch is needed.
func (s State) SelectClimbType(climbType string) (State, error) {
	if s.gym.Selected == "" {
		return s, fmt.Errorf("%w: climb type %q selected before a gym", ErrInvalidSelection, climbType)
	}
	if climbType != "" && !s.selectable(s.climbType, climbType) {
		return s, fmt.Errorf("%w: climb type %q", ErrInvalidSelection, climbType)
	}

	s.climbType.Selected = climbType
	s.clearBelow(domain.TierClimbType)
	if climbType == "" {
		if s.latest[FetchClimbTypes] != 0 {
			s.location.Status = StatusLoading
		}
		return s, nil
	}

	s.location.Status = StatusReady
	if options := s.LocationOptions(); len(options) == 1 {
		s.location.Selected = options[0]
	}
	return s, nil
}

func (s State) SelectLocation(name string) (State, error) {
	if s.climbType.Selected == "" {
		return s, fmt.Errorf("%w: location %q selected before a climb type", ErrInvalidSelection, name)
	}
	if name != "" && !slices.Contains(s.LocationOptions(), name) {
		return s, fmt.Errorf("%w: location %q", ErrInvalidSelection, name)
	}

	s.location.Selected = name
	return s, nil
}

// Select dispatches to the transition for tier t.
func (s State) Select(t domain.Tier, value string) (State, *Fetch, error) {
	switch t {
	case domain.TierCompany:
		return s.SelectCompany(value)
	case domain.TierGym:
		return s.SelectGym(value)
	case domain.TierClimbType:
		next, err := s.SelectClimbType(value)
		return next, nil, err
	case domain.TierLocation:
		next, err := s.SelectLocation(value)
		return next, nil, err
	default:
		return s, nil, fmt.Errorf("%w: unknown tier %d", ErrInvalidSelection, t)
	}
}

// Resolve applies a completed fetch. applied is false when the result is stale, in which
// case the returned state is s unchanged. A single fetched option is selected automatically,
// which may produce a follow-up fetch.
func (s State) Resolve(r Result) (next State, follow *Fetch, applied bool) {
	if !s.current(r.Tag) {
		return s, nil, false
	}
	s.latest[r.Tag.Kind] = 0

	switch r.Tag.Kind {
	case FetchCompanies:
		if r.Err != nil {
			s.company = TierState{Status: StatusError, Err: r.Err.Error()}
			return s, nil, true
		}
		s.company = TierState{Status: StatusReady, Options: slices.Clone(r.Companies)}
		if len(r.Companies) == 1 {
			next, follow, _ = s.SelectCompany(r.Companies[0])
			return next, follow, true
		}

	case FetchGyms:
		if r.Err != nil {
			s.gym = TierState{Status: StatusError, Err: r.Err.Error()}
			return s, nil, true
		}
		s.gym = TierState{Status: StatusReady, Options: slices.Clone(r.Gyms)}
		if len(r.Gyms) == 1 {
			next, follow, _ = s.SelectGym(r.Gyms[0])
			return next, follow, true
		}

	case FetchClimbTypes:
		if r.Err == nil && r.Catalog == nil {
			r.Err = errors.New("empty climb type response")
		}
		if r.Err != nil {
			s.climbType = TierState{Status: StatusError, Err: r.Err.Error()}
			s.location = TierState{Status: StatusError, Err: r.Err.Error()}
			s.pool = nil
			return s, nil, true
		}
		s.climbType = TierState{Status: StatusReady, Options: slices.Clone(r.Catalog.ClimbTypes)}
		s.location = TierState{Status: StatusEmpty}
		s.pool = slices.Clone(r.Catalog.Locations)
		if len(r.Catalog.ClimbTypes) == 1 {
			next, _ = s.SelectClimbType(r.Catalog.ClimbTypes[0])
			return next, nil, true
		}
	}

	return s, nil, true
}

func (s State) Company() TierState   { return s.tier(domain.TierCompany) }
func (s State) Gym() TierState       { return s.tier(domain.TierGym) }
func (s State) ClimbType() TierState { return s.tier(domain.TierClimbType) }
func (s State) Location() TierState  { return s.tier(domain.TierLocation) }

// Tier returns a copy of the state of t. Location options are derived on every call.
func (s State) Tier(t domain.Tier) TierState {
	return s.tier(t)
}

// LocationOptions is the subset of the location pool matching the selected climb type.
func (s State) LocationOptions() []string {
	return domain.FilterLocations(s.pool, s.climbType.Selected)
}

// LocationPool returns every location of the selected gym, regardless of climb type.
func (s State) LocationPool() []domain.Location {
	return slices.Clone(s.pool)
}

func (s State) Key() domain.LocationKey {
	return domain.LocationKey{
		Company:   s.company.Selected,
		Gym:       s.gym.Selected,
		ClimbType: s.climbType.Selected,
		Location:  s.location.Selected,
	}
}

// Ready is true iff all four tiers have a selection.
func (s State) Ready() bool {
	return s.Key().Complete()
}

// RoutesKey returns the key for a route query, or ErrNotReady.
func (s State) RoutesKey() (domain.LocationKey, error) {
	key := s.Key()
	if !key.Complete() {
		return key, ErrNotReady
	}
	return key, nil
}

// Pending reports whether any fetch is awaited.
func (s State) Pending() bool {
	for _, seq := range s.latest {
		if seq != 0 {
			return true
		}
	}
	return false
}

func (s State) tier(t domain.Tier) TierState {
	var ts TierState
	switch t {
	case domain.TierCompany:
		ts = s.company
	case domain.TierGym:
		ts = s.gym
	case domain.TierClimbType:
		ts = s.climbType
	case domain.TierLocation:
		ts = s.location
		if ts.Status == StatusReady {
			ts.Options = s.LocationOptions()
		}
	}
	ts.Options = slices.Clone(ts.Options)
	return ts
}

func (s State) selectable(t TierState, v string) bool {
	return t.Status == StatusReady && t.Has(v)
}

func (s State) current(tag Tag) bool {
	if tag.Kind < 0 || tag.Kind >= fetchKinds {
		return false
	}
	if tag.Seq == 0 || s.latest[tag.Kind] != tag.Seq {
		return false
	}
	switch tag.Kind {
	case FetchGyms:
		return tag.Company == s.company.Selected
	case FetchClimbTypes:
		return tag.Company == s.company.Selected && tag.Gym == s.gym.Selected
	}
	return true
}

// issue records a new fetch of kind k tagged with the current ancestor selections.
func (s *State) issue(k FetchKind) *Fetch {
	s.seq++
	s.latest[k] = s.seq

	tag := Tag{Kind: k, Seq: s.seq}
	switch k {
	case FetchGyms:
		tag.Company = s.company.Selected
	case FetchClimbTypes:
		tag.Company = s.company.Selected
		tag.Gym = s.gym.Selected
	}
	return &Fetch{Tag: tag}
}

// clearBelow empties every tier strictly below t and forgets their pending fetches.
func (s *State) clearBelow(t domain.Tier) {
	if domain.TierGym.Below(t) {
		s.gym = TierState{}
		s.latest[FetchGyms] = 0
	}
	if domain.TierClimbType.Below(t) {
		s.climbType = TierState{}
		s.pool = nil
		s.latest[FetchClimbTypes] = 0
	}
	if domain.TierLocation.Below(t) {
		s.location = TierState{}
	}
}
