package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"climbing/logbook/internal/config"
	"climbing/logbook/internal/domain"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"golang.org/x/sync/errgroup"
	"resty.dev/v3"
)

// ErrMalformedResponse is returned when a 2xx body does not match the expected schema.
var ErrMalformedResponse = errors.New("malformed response")

// APIError is a non-2xx answer from the logbook API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Identity supplies the acting user attached to every request. CurrentUser may return nil.
type Identity interface {
	CurrentUser() *domain.User
}

// StaticIdentity always reports the same user.
type StaticIdentity struct {
	User *domain.User
}

func (s StaticIdentity) CurrentUser() *domain.User { return s.User }

type AttemptOptions struct {
	Modes   []string
	Results []string
}

type LogbookClient interface {
	ListCompanies(ctx context.Context) ([]domain.Company, error)
	ListGyms(ctx context.Context, company string) ([]domain.Gym, error)
	ListClimbTypesAndLocations(ctx context.Context, company, gym string) (*domain.ClimbTypeCatalog, error)
	ListGradeSystems(ctx context.Context) ([]domain.GradeSystem, error)
	ListGrades(ctx context.Context, company, climbType string) ([]domain.Grade, error)
	ListColours(ctx context.Context, company string) ([]domain.Colour, error)
	ListModes(ctx context.Context) ([]string, error)
	ListResults(ctx context.Context) ([]string, error)
	AttemptOptions(ctx context.Context) (*AttemptOptions, error)

	ListRoutes(ctx context.Context, key domain.LocationKey) ([]domain.Route, error)
	AddRoutes(ctx context.Context, routes []domain.NewRoute) (string, error)
	ArchiveRoute(ctx context.Context, rid int64) error
	ListAttempts(ctx context.Context, key domain.LocationKey) ([]domain.Attempt, error)
	AddAttempt(ctx context.Context, attempt domain.NewAttempt) (int, error)

	AddCompany(ctx context.Context, company domain.NewCompany) error
	AddGym(ctx context.Context, gym domain.NewGym) error
	AddColour(ctx context.Context, colour domain.NewColour) error
	AddLocations(ctx context.Context, company, gym string, locations []domain.NewLocation) (string, error)

	Login(ctx context.Context, username, password string) (*domain.User, error)
	Register(ctx context.Context, registration domain.Registration) error
	ListActivity(ctx context.Context, count int) ([]domain.Activity, error)
}

type logbookClient struct {
	rl         ratelimit.Limiter
	config     config.APIConfig
	httpClient *resty.Client
	identity   Identity
}

func NewLogbookClient(cfg config.APIConfig, identity Identity) LogbookClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Accept", "application/json")

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	if identity == nil {
		identity = StaticIdentity{}
	}

	return &logbookClient{
		rl:         rl,
		config:     cfg,
		httpClient: client,
		identity:   identity,
	}
}

func (c *logbookClient) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	companies, err := listEntity[domain.Company](ctx, c, domain.EntityCompany, nil)
	if err != nil {
		return nil, err
	}
	for i, company := range companies {
		if company.CompanyName == "" {
			return nil, fmt.Errorf("%w: company %d has no CompanyName", ErrMalformedResponse, i)
		}
	}
	return companies, nil
}

func (c *logbookClient) ListGyms(ctx context.Context, company string) ([]domain.Gym, error) {
	gyms, err := listEntity[domain.Gym](ctx, c, domain.EntityGym, map[string]string{"company": company})
	if err != nil {
		return nil, err
	}
	for i, gym := range gyms {
		if gym.Suburb == "" {
			return nil, fmt.Errorf("%w: gym %d has no Suburb", ErrMalformedResponse, i)
		}
	}
	return gyms, nil
}

func (c *logbookClient) ListClimbTypesAndLocations(ctx context.Context, company, gym string) (*domain.ClimbTypeCatalog, error) {
	var resp domain.ClimbTypeLocationResponse
	query := map[string]string{
		"entity":  domain.EntityClimbTypeLocation,
		"company": company,
		"suburb":  gym,
	}
	if err := c.do(ctx, http.MethodGet, "/misc_additions", query, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list climb types for %s %s: %w", company, gym, err)
	}
	if resp.ClimbTypes == nil || resp.Locations == nil {
		return nil, fmt.Errorf("%w: climbtypes and locations are required", ErrMalformedResponse)
	}

	climbTypes, err := climbTypeNames(*resp.ClimbTypes)
	if err != nil {
		return nil, err
	}
	if err := validateLocations(*resp.Locations); err != nil {
		return nil, err
	}

	return &domain.ClimbTypeCatalog{
		ClimbTypes: climbTypes,
		Locations:  *resp.Locations,
	}, nil
}

func (c *logbookClient) ListGradeSystems(ctx context.Context) ([]domain.GradeSystem, error) {
	return listEntity[domain.GradeSystem](ctx, c, domain.EntityGradeSystem, nil)
}

func (c *logbookClient) ListGrades(ctx context.Context, company, climbType string) ([]domain.Grade, error) {
	return listEntity[domain.Grade](ctx, c, domain.EntityGrades, map[string]string{
		"company":   company,
		"climbType": climbType,
	})
}

func (c *logbookClient) ListColours(ctx context.Context, company string) ([]domain.Colour, error) {
	return listEntity[domain.Colour](ctx, c, domain.EntityColours, map[string]string{"company": company})
}

func (c *logbookClient) ListModes(ctx context.Context) ([]string, error) {
	rows, err := listEntity[domain.ModeRow](ctx, c, domain.EntityMode, nil)
	if err != nil {
		return nil, err
	}
	modes := make([]string, 0, len(rows))
	for _, row := range rows {
		modes = append(modes, row.Mode)
	}
	return modes, nil
}

func (c *logbookClient) ListResults(ctx context.Context) ([]string, error) {
	rows, err := listEntity[domain.ResultRow](ctx, c, domain.EntityResult, nil)
	if err != nil {
		return nil, err
	}
	results := make([]string, 0, len(rows))
	for _, row := range rows {
		results = append(results, row.Result)
	}
	return results, nil
}

// AttemptOptions fetches the mode and result lists concurrently.
func (c *logbookClient) AttemptOptions(ctx context.Context) (*AttemptOptions, error) {
	opts := &AttemptOptions{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		modes, err := c.ListModes(gctx)
		opts.Modes = modes
		return err
	})
	g.Go(func() error {
		results, err := c.ListResults(gctx)
		opts.Results = results
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load attempt options: %w", err)
	}
	return opts, nil
}

func (c *logbookClient) ListRoutes(ctx context.Context, key domain.LocationKey) ([]domain.Route, error) {
	var resp domain.RoutesResponse
	if err := c.do(ctx, http.MethodGet, "/routes", locationQuery(key), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}
	if resp.Routes == nil {
		return nil, fmt.Errorf("%w: routes key missing", ErrMalformedResponse)
	}
	return *resp.Routes, nil
}

func (c *logbookClient) AddRoutes(ctx context.Context, routes []domain.NewRoute) (string, error) {
	var msg domain.Message
	body := domain.RouteAction{Action: domain.ActionAdd, Routes: routes}
	if err := c.do(ctx, http.MethodPost, "/routes", nil, body, &msg); err != nil {
		return "", fmt.Errorf("failed to add routes: %w", err)
	}
	return msg.Message, nil
}

func (c *logbookClient) ArchiveRoute(ctx context.Context, rid int64) error {
	body := domain.RouteAction{Action: domain.ActionArchive, RID: rid}
	if err := c.do(ctx, http.MethodPost, "/routes", nil, body, nil); err != nil {
		return fmt.Errorf("failed to archive route %d: %w", rid, err)
	}
	return nil
}

func (c *logbookClient) ListAttempts(ctx context.Context, key domain.LocationKey) ([]domain.Attempt, error) {
	var resp domain.AttemptsResponse
	if err := c.do(ctx, http.MethodGet, "/attempts", locationQuery(key), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	if resp.Attempts == nil {
		return nil, fmt.Errorf("%w: attempts key missing", ErrMalformedResponse)
	}
	return *resp.Attempts, nil
}

// AddAttempt logs an attempt and returns the attempt number assigned by the server.
func (c *logbookClient) AddAttempt(ctx context.Context, attempt domain.NewAttempt) (int, error) {
	var msg domain.Message
	if err := c.do(ctx, http.MethodPost, "/attempts", nil, attempt, &msg); err != nil {
		return 0, fmt.Errorf("failed to add attempt for route %d: %w", attempt.RID, err)
	}
	return msg.AttemptNo, nil
}

func (c *logbookClient) AddCompany(ctx context.Context, company domain.NewCompany) error {
	return c.addEntity(ctx, domain.EntityCompany, "", "", company)
}

func (c *logbookClient) AddGym(ctx context.Context, gym domain.NewGym) error {
	return c.addEntity(ctx, domain.EntityGym, "", "", gym)
}

func (c *logbookClient) AddColour(ctx context.Context, colour domain.NewColour) error {
	return c.addEntity(ctx, domain.EntityColour, "", "", colour)
}

func (c *logbookClient) AddLocations(ctx context.Context, company, gym string, locations []domain.NewLocation) (string, error) {
	data, err := json.Marshal(locations)
	if err != nil {
		return "", fmt.Errorf("failed to encode locations: %w", err)
	}

	var msg domain.Message
	body := domain.EntityRequest{Entity: domain.EntityLocation, CompanyName: company, Suburb: gym, Data: data}
	if err := c.do(ctx, http.MethodPost, "/misc_additions", nil, body, &msg); err != nil {
		return "", fmt.Errorf("failed to add locations to %s %s: %w", company, gym, err)
	}
	return msg.Message, nil
}

func (c *logbookClient) Login(ctx context.Context, username, password string) (*domain.User, error) {
	var resp domain.LoginResponse
	body := domain.Credentials{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "/login_user", nil, body, &resp); err != nil {
		return nil, fmt.Errorf("failed to log in: %w", err)
	}
	if resp.User == nil || resp.User.Username == "" {
		return nil, fmt.Errorf("%w: login response has no user", ErrMalformedResponse)
	}
	return resp.User, nil
}

func (c *logbookClient) Register(ctx context.Context, registration domain.Registration) error {
	if err := c.do(ctx, http.MethodPost, "/register_users", nil, registration, nil); err != nil {
		return fmt.Errorf("failed to register %s: %w", registration.Username, err)
	}
	return nil
}

func (c *logbookClient) ListActivity(ctx context.Context, count int) ([]domain.Activity, error) {
	var resp domain.ActivityResponse
	query := map[string]string{"count": strconv.Itoa(count)}
	if err := c.do(ctx, http.MethodGet, "/activity", query, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	if resp.Activity == nil {
		return nil, fmt.Errorf("%w: activity missing", ErrMalformedResponse)
	}
	return *resp.Activity, nil
}

func (c *logbookClient) addEntity(ctx context.Context, entity, company, gym string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", entity, err)
	}

	body := domain.EntityRequest{Entity: entity, CompanyName: company, Suburb: gym, Data: data}
	if err := c.do(ctx, http.MethodPost, "/misc_additions", nil, body, nil); err != nil {
		return fmt.Errorf("failed to add %s: %w", entity, err)
	}
	return nil
}

// listEntity fetches a {"results": [...]} list from misc_additions.
func listEntity[T any](ctx context.Context, c *logbookClient, entity string, query map[string]string) ([]T, error) {
	params := map[string]string{"entity": entity}
	for k, v := range query {
		params[k] = v
	}

	var resp domain.ResultsResponse[T]
	if err := c.do(ctx, http.MethodGet, "/misc_additions", params, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", entity, err)
	}
	if resp.Results == nil {
		return nil, fmt.Errorf("%w: %s results missing", ErrMalformedResponse, entity)
	}
	return *resp.Results, nil
}

func (c *logbookClient) do(ctx context.Context, method, path string, query map[string]string, body, out any) error {
	c.rl.Take()

	req := c.httpClient.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if user := c.currentUser(); user != nil {
		req.SetHeader("X-Username", user.Username)
		if user.Token != "" {
			req.SetAuthToken(user.Token)
		}
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}

	log.Debugf("%s %s -> %d", method, path, resp.StatusCode())

	if resp.IsError() {
		return newAPIError(resp.StatusCode(), resp.String())
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(resp.String()), out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func (c *logbookClient) currentUser() *domain.User {
	return c.identity.CurrentUser()
}

func newAPIError(status int, body string) *APIError {
	var msg domain.Message
	if err := json.Unmarshal([]byte(body), &msg); err == nil && msg.Error != "" {
		return &APIError{StatusCode: status, Message: msg.Error}
	}
	if body == "" {
		body = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Message: body}
}

func locationQuery(key domain.LocationKey) map[string]string {
	return map[string]string{
		"company":     key.Company,
		"suburb":      key.Gym,
		"location":    key.Location,
		"type_column": key.ClimbType,
	}
}

func climbTypeNames(rows []domain.ClimbTypeRow) ([]string, error) {
	names := make([]string, 0, len(rows))
	for i, row := range rows {
		if row.ClimbType == "" {
			return nil, fmt.Errorf("%w: climb type %d is empty", ErrMalformedResponse, i)
		}
		names = append(names, row.ClimbType)
	}
	return names, nil
}

func validateLocations(locations []domain.Location) error {
	for i, loc := range locations {
		if loc.Name == "" {
			return fmt.Errorf("%w: location %d has no name", ErrMalformedResponse, i)
		}
	}
	return nil
}
