package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"climbing/logbook/internal/auth"
	"climbing/logbook/internal/cache"
	"climbing/logbook/internal/catalog"
	"climbing/logbook/internal/domain"
	"climbing/logbook/internal/queue"
	"climbing/logbook/internal/repository"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnknownGradeSystem = errors.New("could not determine grading system")
)

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

type Service struct {
	references repository.ReferenceRepository
	routes     repository.RouteRepository
	attempts   repository.AttemptRepository
	users      repository.UserRepository
	cache      cache.ReferenceCache
	activity   queue.ActivityQueue
	tokens     *auth.TokenService
	now        func() time.Time
}

func NewService(
	references repository.ReferenceRepository,
	routes repository.RouteRepository,
	attempts repository.AttemptRepository,
	users repository.UserRepository,
	referenceCache cache.ReferenceCache,
	activity queue.ActivityQueue,
	tokens *auth.TokenService,
) *Service {
	return &Service{
		references: references,
		routes:     routes,
		attempts:   attempts,
		users:      users,
		cache:      referenceCache,
		activity:   activity,
		tokens:     tokens,
		now:        time.Now,
	}
}

// Reference lists. Every read goes through the cache.

func (s *Service) Companies(ctx context.Context) ([]domain.Company, error) {
	return cache.Remember(ctx, s.cache, cache.Key(domain.EntityCompany), s.references.ListCompanies)
}

func (s *Service) Gyms(ctx context.Context, company string) ([]domain.Gym, error) {
	if company == "" {
		return nil, invalidInput("company is required for gyms")
	}
	return cache.Remember(ctx, s.cache, cache.Key(domain.EntityGym, company), func(ctx context.Context) ([]domain.Gym, error) {
		return s.references.ListGyms(ctx, company)
	})
}

func (s *Service) Locations(ctx context.Context, company, suburb string) ([]domain.Location, error) {
	if company == "" || suburb == "" {
		return nil, invalidInput("company and suburb are required for locations")
	}
	return cache.Remember(ctx, s.cache, cache.Key(domain.EntityLocation, company, suburb), func(ctx context.Context) ([]domain.Location, error) {
		return s.references.ListLocations(ctx, company, suburb)
	})
}

func (s *Service) ClimbTypes(ctx context.Context) ([]string, error) {
	return cache.Remember(ctx, s.cache, cache.Key(domain.EntityLocation), s.references.ListAllClimbTypes)
}

// ClimbTypeCatalog returns a gym's climb types together with all of its locations.
func (s *Service) ClimbTypeCatalog(ctx context.Context, company, suburb string) (*domain.ClimbTypeCatalog, error) {
	if company == "" || suburb == "" {
		return nil, invalidInput("company and suburb are required for climbtype_location")
	}
	return cache.Remember(ctx, s.cache, cache.Key(domain.EntityLocation, company, suburb, "catalog"), func(ctx context.Context) (*domain.ClimbTypeCatalog, error) {
		climbTypes, err := s.references.ListClimbTypes(ctx, company, suburb)
		if err != nil {
			return nil, err
		}
		locations, err := s.references.ListLocations(ctx, company, suburb)
		if err != nil {
			return nil, err
		}
		return &domain.ClimbTypeCatalog{ClimbTypes: climbTypes, Locations: locations}, nil
	})
}

func (s *Service) GradeSystems(ctx context.Context) ([]domain.GradeSystem, error) {
	return cache.Remember(ctx, s.cache, cache.Key(domain.EntityGradeSystem), s.references.ListGradeSystems)
}

// Grades lists the grades of the system a company uses for climbType: its boulder system
// for bouldering, its sport system for everything else.
func (s *Service) Grades(ctx context.Context, company, climbType string) ([]domain.Grade, error) {
	if company == "" || climbType == "" {
		return nil, invalidInput("company and climbType are required for grades")
	}

	c, err := s.references.GetCompany(ctx, company)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	var system string
	if c != nil {
		system = c.SportGradeSystem
		if strings.EqualFold(climbType, "boulder") {
			system = c.BoulderGradeSystem
		}
	}
	if system == "" {
		return nil, fmt.Errorf("%w for company %s and type %s", ErrUnknownGradeSystem, company, climbType)
	}

	return cache.Remember(ctx, s.cache, cache.Key(domain.EntityGrades, system), func(ctx context.Context) ([]domain.Grade, error) {
		return s.references.ListGrades(ctx, system)
	})
}

func (s *Service) Colours(ctx context.Context, company string) ([]domain.Colour, error) {
	if company == "" {
		return nil, invalidInput("company is required for colours")
	}
	return cache.Remember(ctx, s.cache, cache.Key(domain.EntityColour, company), func(ctx context.Context) ([]domain.Colour, error) {
		return s.references.ListColours(ctx, company)
	})
}

func (s *Service) Modes(ctx context.Context) ([]string, error) {
	return cache.Remember(ctx, s.cache, cache.Key(domain.EntityMode), s.references.ListModes)
}

func (s *Service) Results(ctx context.Context) ([]string, error) {
	return cache.Remember(ctx, s.cache, cache.Key(domain.EntityResult), s.references.ListResults)
}

// Warm loads the lists every client asks for first into the cache.
func (s *Service) Warm(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { _, err := s.Companies(ctx); return err })
	g.Go(func() error { _, err := s.GradeSystems(ctx); return err })
	g.Go(func() error { _, err := s.Modes(ctx); return err })
	g.Go(func() error { _, err := s.Results(ctx); return err })
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("✅ Reference cache warmed")
	return nil
}

// AddEntity registers a company, gym, colour or batch of locations and returns the
// confirmation message.
func (s *Service) AddEntity(ctx context.Context, username string, req domain.EntityRequest) (string, error) {
	var (
		message string
		err     error
	)

	switch req.Entity {
	case domain.EntityCompany:
		message, err = s.addCompany(ctx, req.Data)
	case domain.EntityGym:
		message, err = s.addGym(ctx, req.Data)
	case domain.EntityColour:
		message, err = s.addColour(ctx, req.Data)
	case domain.EntityLocation:
		message, err = s.addLocations(ctx, req)
	default:
		return "", invalidInput("invalid entity type %q", req.Entity)
	}
	if err != nil {
		return "", err
	}

	s.invalidate(ctx, req.Entity)
	s.record(ctx, domain.ActivityEntityAdded, username, message)
	return message, nil
}

func (s *Service) addCompany(ctx context.Context, data json.RawMessage) (string, error) {
	var in domain.NewCompany
	if err := decode(data, &in); err != nil {
		return "", err
	}

	payload, err := catalog.CompanyForm{
		Name:               in.CompanyName,
		PrimaryCountry:     in.PrimaryCountry,
		BoulderGradeSystem: in.BoulderGradeSystem,
		SportGradeSystem:   in.SportGradeSystem,
	}.Payload()
	if err != nil {
		return "", err
	}

	if err := s.references.AddCompany(ctx, payload); err != nil {
		return "", err
	}
	return "Company added", nil
}

func (s *Service) addGym(ctx context.Context, data json.RawMessage) (string, error) {
	var in domain.NewGym
	if err := decode(data, &in); err != nil {
		return "", err
	}

	payload, err := catalog.GymForm{Company: in.CompanyName, Suburb: in.Suburb, City: in.City, Country: in.Country}.Payload()
	if err != nil {
		return "", err
	}

	if err := s.references.AddGym(ctx, payload); err != nil {
		return "", err
	}
	return "Gym added", nil
}

func (s *Service) addColour(ctx context.Context, data json.RawMessage) (string, error) {
	var in domain.NewColour
	if err := decode(data, &in); err != nil {
		return "", err
	}

	payload, err := catalog.ColourForm{Company: in.CompanyName, Name: in.Colour, HexCode: in.HexCode}.Payload()
	if err != nil {
		return "", err
	}

	if err := s.references.AddColour(ctx, payload); err != nil {
		return "", err
	}
	return "Colour added", nil
}

// addLocations accepts either a list or a single location as data.
func (s *Service) addLocations(ctx context.Context, req domain.EntityRequest) (string, error) {
	if req.CompanyName == "" || req.Suburb == "" {
		return "", invalidInput("companyName and suburb are required for locations")
	}

	var locations []domain.NewLocation
	if err := json.Unmarshal(req.Data, &locations); err != nil {
		var single domain.NewLocation
		if err := decode(req.Data, &single); err != nil {
			return "", err
		}
		locations = []domain.NewLocation{single}
	}
	for _, loc := range locations {
		if strings.TrimSpace(loc.Location) == "" {
			return "", invalidInput("location name is required")
		}
	}
	if len(locations) == 0 {
		return "", invalidInput("no locations provided")
	}

	n, err := s.references.AddLocations(ctx, req.CompanyName, req.Suburb, locations)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d location(s) added", n), nil
}

// Routes and attempts.

func (s *Service) Routes(ctx context.Context, key domain.LocationKey) ([]domain.Route, error) {
	if !key.Complete() {
		return nil, invalidInput("company, suburb, location and type_column are required")
	}
	return s.routes.ListRoutes(ctx, key)
}

// RouteAction adds or archives routes and returns the confirmation message.
func (s *Service) RouteAction(ctx context.Context, username string, action domain.RouteAction) (string, error) {
	switch strings.ToLower(action.Action) {
	case domain.ActionArchive:
		if action.RID <= 0 {
			return "", invalidInput("RID is required to archive a route")
		}
		if err := s.routes.ArchiveRoute(ctx, action.RID); err != nil {
			return "", err
		}
		message := fmt.Sprintf("Route %d archived successfully", action.RID)
		s.record(ctx, domain.ActivityRouteArchived, username, message)
		return message, nil

	case domain.ActionAdd:
		routes := action.Routes
		if len(routes) == 0 && action.Route != nil {
			routes = []domain.NewRoute{*action.Route}
		}
		if len(routes) == 0 {
			return "", invalidInput("no routes provided")
		}
		for i, r := range routes {
			if !(domain.LocationKey{Company: r.CompanyName, Gym: r.Suburb, ClimbType: r.ClimbType, Location: r.Location}).Complete() || r.Grade == "" {
				return "", invalidInput("route %d needs companyName, suburb, location, type_column and grade", i+1)
			}
		}

		n, err := s.routes.AddRoutes(ctx, routes)
		if err != nil {
			return "", err
		}
		message := fmt.Sprintf("%d route(s) added successfully", n)
		s.record(ctx, domain.ActivityRouteAdded, username, message)
		return message, nil

	default:
		return "", invalidInput(`invalid action, use "archive" or "add"`)
	}
}

func (s *Service) Attempts(ctx context.Context, username string, key domain.LocationKey) ([]domain.Attempt, error) {
	if !key.Complete() {
		return nil, invalidInput("company, suburb, location and type_column are required")
	}
	return s.attempts.ListAttempts(ctx, username, key)
}

// AddAttempt validates and stores an attempt, returning its attempt number. Date and time
// default to now.
func (s *Service) AddAttempt(ctx context.Context, username string, attempt domain.NewAttempt) (int, error) {
	if attempt.RID <= 0 {
		return 0, invalidInput("rid is required")
	}
	if attempt.Mode == "" || attempt.Result == "" {
		return 0, invalidInput("mode and result are required")
	}
	if attempt.Rating < 0 || attempt.Rating > 5 {
		return 0, invalidInput("rating must be between 0 and 5")
	}

	now := s.now()
	if attempt.Date == "" {
		attempt.Date = now.Format(time.DateOnly)
	} else if _, err := time.Parse(time.DateOnly, attempt.Date); err != nil {
		return 0, invalidInput("date must be YYYY-MM-DD")
	}
	if attempt.Time == "" {
		attempt.Time = now.Format("15:04")
	} else if _, err := time.Parse("15:04", attempt.Time); err != nil {
		return 0, invalidInput("time must be HH:MM")
	}

	attemptNo, err := s.attempts.AddAttempt(ctx, username, attempt)
	if err != nil {
		return 0, err
	}

	s.record(ctx, domain.ActivityAttemptLogged, username,
		fmt.Sprintf("%s attempt %d on route %d: %s", attempt.Mode, attemptNo, attempt.RID, attempt.Result))
	return attemptNo, nil
}

// Users.

// Login verifies credentials and returns the session user with a fresh token. Accounts
// still on the legacy hash are upgraded to bcrypt.
func (s *Service) Login(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	if creds.Username == "" || creds.Password == "" {
		return nil, invalidInput("username and password are required")
	}

	user, hash, err := s.users.GetUser(ctx, creds.Username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, auth.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(creds.Password, hash) {
		return nil, auth.ErrInvalidCredentials
	}

	if auth.IsLegacyHash(hash) {
		if upgraded, err := auth.HashPassword(creds.Password); err == nil {
			if err := s.users.UpdatePassword(ctx, user.Username, upgraded); err != nil {
				log.Warnf("⚠️ Failed to upgrade password hash for %s: %v", user.Username, err)
			}
		}
	}

	token, err := s.tokens.Issue(user.Username, user.Access)
	if err != nil {
		return nil, err
	}
	user.Token = token

	log.Infof("🔑 %s logged in", user.Username)
	return user, nil
}

func (s *Service) Register(ctx context.Context, registration domain.Registration) error {
	registration.Username = strings.TrimSpace(registration.Username)
	if registration.Username == "" || registration.Password == "" {
		return invalidInput("username and password are required")
	}
	if len(registration.Password) < 8 {
		return invalidInput("password must be at least 8 characters")
	}
	if registration.Email != "" && !strings.Contains(registration.Email, "@") {
		return invalidInput("invalid email address")
	}

	hash, err := auth.HashPassword(registration.Password)
	if err != nil {
		return invalidInput("%v", err)
	}
	if err := s.users.CreateUser(ctx, registration, hash); err != nil {
		return err
	}

	s.record(ctx, domain.ActivityUserJoined, registration.Username, registration.Username+" joined")
	return nil
}

// Authenticate resolves a bearer token to its username.
func (s *Service) Authenticate(token string) (string, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return "", err
	}
	return claims.Username, nil
}

func (s *Service) RecentActivity(ctx context.Context, count int64) ([]domain.Activity, error) {
	if s.activity == nil {
		return []domain.Activity{}, nil
	}
	if count <= 0 || count > 100 {
		count = 20
	}
	return s.activity.Recent(ctx, count)
}

// invalidate drops every cached list derived from entity.
func (s *Service) invalidate(ctx context.Context, entity string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, entity); err != nil {
		log.Warnf("⚠️ Failed to invalidate cached %s: %v", entity, err)
	}
}

// record publishes an activity entry. Failures never fail the write that triggered it.
func (s *Service) record(ctx context.Context, kind, username, summary string) {
	if s.activity == nil {
		return
	}
	_, err := s.activity.Publish(ctx, domain.Activity{Kind: kind, Username: username, At: s.now(), Summary: summary})
	if err != nil {
		log.Warnf("⚠️ Failed to record %s activity: %v", kind, err)
	}
}

func decode(data json.RawMessage, dest any) error {
	if len(data) == 0 {
		return invalidInput("data is required")
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return invalidInput("malformed data: %v", err)
	}
	return nil
}
