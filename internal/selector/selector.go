package selector

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"climbing/logbook/internal/domain"

	log "github.com/sirupsen/logrus"
)

var ErrClosed = errors.New("selector is closed")

// Provider supplies the option lists for each tier.
type Provider interface {
	ListCompanies(ctx context.Context) ([]domain.Company, error)
	ListGyms(ctx context.Context, company string) ([]domain.Gym, error)
	ListClimbTypesAndLocations(ctx context.Context, company, gym string) (*domain.ClimbTypeCatalog, error)
}

// RouteStore answers route queries once a location is fully selected.
type RouteStore interface {
	ListRoutes(ctx context.Context, key domain.LocationKey) ([]domain.Route, error)
}

// Execute performs f against provider and packages the outcome for State.Resolve.
func Execute(ctx context.Context, provider Provider, f Fetch) Result {
	r := Result{Tag: f.Tag}

	switch f.Tag.Kind {
	case FetchCompanies:
		companies, err := provider.ListCompanies(ctx)
		if err != nil {
			r.Err = fmt.Errorf("failed to list companies: %w", err)
			return r
		}
		r.Companies = make([]string, 0, len(companies))
		for _, c := range companies {
			r.Companies = append(r.Companies, c.CompanyName)
		}

	case FetchGyms:
		gyms, err := provider.ListGyms(ctx, f.Tag.Company)
		if err != nil {
			r.Err = fmt.Errorf("failed to list gyms for %s: %w", f.Tag.Company, err)
			return r
		}
		r.Gyms = make([]string, 0, len(gyms))
		for _, g := range gyms {
			r.Gyms = append(r.Gyms, g.Suburb)
		}

	case FetchClimbTypes:
		catalog, err := provider.ListClimbTypesAndLocations(ctx, f.Tag.Company, f.Tag.Gym)
		if err != nil {
			r.Err = fmt.Errorf("failed to list climb types for %s %s: %w", f.Tag.Company, f.Tag.Gym, err)
			return r
		}
		r.Catalog = catalog

	default:
		r.Err = fmt.Errorf("unknown fetch kind %d", f.Tag.Kind)
	}

	return r
}

// Selector runs a State against a Provider. Selections return immediately; fetches run
// in their own goroutines and are applied on completion unless superseded.
type Selector struct {
	provider Provider
	routes   RouteStore

	mu          sync.Mutex
	state       State
	inflight    map[uint64]inflightFetch
	subscribers []func(State)
	closed      bool

	wg sync.WaitGroup
}

type inflightFetch struct {
	tag    Tag
	cancel context.CancelFunc
}

type Option func(*Selector)

// WithRouteStore sets the store used by FetchRoutes.
func WithRouteStore(routes RouteStore) Option {
	return func(s *Selector) {
		s.routes = routes
	}
}

func New(provider Provider, opts ...Option) *Selector {
	s := &Selector{
		provider: provider,
		state:    NewState(),
		inflight: make(map[uint64]inflightFetch),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewState returns the initial state with every tier empty.
func NewState() State {
	return State{}
}

// State returns a snapshot of the current state.
func (s *Selector) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to receive every applied state. fn runs with the selector
// locked and must not call back into it.
func (s *Selector) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Load fetches the company list.
func (s *Selector) Load(ctx context.Context) error {
	return s.transition(ctx, func(st State) (State, *Fetch, error) {
		next, f := st.Load()
		return next, f, nil
	})
}

func (s *Selector) SelectCompany(ctx context.Context, name string) error {
	return s.transition(ctx, func(st State) (State, *Fetch, error) {
		return st.SelectCompany(name)
	})
}

func (s *Selector) SelectGym(ctx context.Context, suburb string) error {
	return s.transition(ctx, func(st State) (State, *Fetch, error) {
		return st.SelectGym(suburb)
	})
}

func (s *Selector) SelectClimbType(climbType string) error {
	return s.transition(context.Background(), func(st State) (State, *Fetch, error) {
		next, err := st.SelectClimbType(climbType)
		return next, nil, err
	})
}

func (s *Selector) SelectLocation(name string) error {
	return s.transition(context.Background(), func(st State) (State, *Fetch, error) {
		next, err := st.SelectLocation(name)
		return next, nil, err
	})
}

// Select dispatches to the selection for tier t.
func (s *Selector) Select(ctx context.Context, t domain.Tier, value string) error {
	return s.transition(ctx, func(st State) (State, *Fetch, error) {
		return st.Select(t, value)
	})
}

// Key returns the selected four-tuple and whether it is complete.
func (s *Selector) Key() (domain.LocationKey, bool) {
	st := s.State()
	return st.Key(), st.Ready()
}

// FetchRoutes queries the route store for the selected location. It returns ErrNotReady
// without issuing a request unless all four tiers are selected.
func (s *Selector) FetchRoutes(ctx context.Context) ([]domain.Route, error) {
	key, err := s.State().RoutesKey()
	if err != nil {
		return nil, err
	}
	if s.routes == nil {
		return nil, errors.New("no route store configured")
	}

	routes, err := s.routes.ListRoutes(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch routes: %w", err)
	}
	return routes, nil
}

// Wait blocks until no fetch is in flight, including follow-up fetches.
func (s *Selector) Wait() {
	s.wg.Wait()
}

// Close cancels in-flight fetches and waits for them to finish.
func (s *Selector) Close() {
	s.mu.Lock()
	s.closed = true
	for seq, f := range s.inflight {
		f.cancel()
		delete(s.inflight, seq)
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Selector) transition(ctx context.Context, fn func(State) (State, *Fetch, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	next, f, err := fn(s.state)
	if err != nil {
		return err
	}

	s.commit(ctx, next, f)
	return nil
}

// commit installs next, launches f and cancels fetches next no longer waits for.
// Must be called with mu held.
func (s *Selector) commit(ctx context.Context, next State, f *Fetch) {
	s.state = next

	for seq, in := range s.inflight {
		if !next.current(in.tag) {
			log.Debugf("Cancelling superseded %s fetch #%d", in.tag.Kind, seq)
			in.cancel()
			delete(s.inflight, seq)
		}
	}

	if f != nil {
		s.launch(ctx, *f)
	}

	for _, fn := range s.subscribers {
		fn(next)
	}
}

// Must be called with mu held.
func (s *Selector) launch(ctx context.Context, f Fetch) {
	fetchCtx, cancel := context.WithCancel(ctx)
	s.inflight[f.Tag.Seq] = inflightFetch{tag: f.Tag, cancel: cancel}

	log.Debugf("Fetching %s #%d (company=%q gym=%q)", f.Tag.Kind, f.Tag.Seq, f.Tag.Company, f.Tag.Gym)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		result := Execute(fetchCtx, s.provider, f)
		s.complete(ctx, result)
	}()
}

func (s *Selector) complete(ctx context.Context, r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inflight, r.Tag.Seq)

	if s.closed {
		return
	}

	next, follow, applied := s.state.Resolve(r)
	if !applied {
		log.Debugf("Discarding stale %s result #%d", r.Tag.Kind, r.Tag.Seq)
		return
	}
	if r.Err != nil {
		log.Warnf("⚠️ %s fetch failed: %v", r.Tag.Kind, r.Err)
	}

	s.commit(ctx, next, follow)
}
