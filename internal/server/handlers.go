package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"climbing/logbook/internal/auth"
	"climbing/logbook/internal/catalog"
	"climbing/logbook/internal/domain"
	"climbing/logbook/internal/repository"
	"climbing/logbook/internal/service"

	log "github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warnf("⚠️ Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, domain.Message{Error: message})
}

// writeServiceError maps service and repository errors to a status code. Unexpected
// errors are logged and hidden behind a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, catalog.ErrInvalidForm),
		errors.Is(err, service.ErrUnknownGradeSystem):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, auth.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "Invalid or expired token")
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusConflict, "Already exists")
	default:
		log.WithField("request_id", getRequestID(r.Context())).Errorf("❌ %s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

func results[T any](list []T) domain.ResultsResponse[T] {
	if list == nil {
		list = []T{}
	}
	return domain.ResultsResponse[T]{Results: &list}
}

func rows[T any](names []string, wrap func(string) T) domain.ResultsResponse[T] {
	out := make([]T, 0, len(names))
	for _, n := range names {
		out = append(out, wrap(n))
	}
	return domain.ResultsResponse[T]{Results: &out}
}

func locationKey(r *http.Request) domain.LocationKey {
	q := r.URL.Query()
	return domain.LocationKey{
		Company:   q.Get("company"),
		Gym:       q.Get("suburb"),
		ClimbType: q.Get("type_column"),
		Location:  q.Get("location"),
	}
}

func (s *Server) handleListEntity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	company, suburb := q.Get("company"), q.Get("suburb")

	var (
		body any
		err  error
	)

	switch q.Get("entity") {
	case domain.EntityCompany:
		var list []domain.Company
		list, err = s.service.Companies(ctx)
		body = results(list)
	case domain.EntityGym:
		var list []domain.Gym
		list, err = s.service.Gyms(ctx, company)
		body = results(list)
	case domain.EntityLocation:
		var list []domain.Location
		list, err = s.service.Locations(ctx, company, suburb)
		body = results(list)
	case domain.EntityClimbType:
		var names []string
		names, err = s.service.ClimbTypes(ctx)
		body = rows(names, func(n string) domain.ClimbTypeRow { return domain.ClimbTypeRow{ClimbType: n} })
	case domain.EntityClimbTypeLocation:
		var c *domain.ClimbTypeCatalog
		c, err = s.service.ClimbTypeCatalog(ctx, company, suburb)
		if err == nil {
			body = catalogResponse(c)
		}
	case domain.EntityGradeSystem:
		var list []domain.GradeSystem
		list, err = s.service.GradeSystems(ctx)
		body = results(list)
	case domain.EntityGrades:
		var list []domain.Grade
		list, err = s.service.Grades(ctx, company, q.Get("climbType"))
		body = results(list)
	case domain.EntityColour, domain.EntityColours:
		var list []domain.Colour
		list, err = s.service.Colours(ctx, company)
		body = results(list)
	case domain.EntityMode:
		var names []string
		names, err = s.service.Modes(ctx)
		body = rows(names, func(n string) domain.ModeRow { return domain.ModeRow{Mode: n} })
	case domain.EntityResult:
		var names []string
		names, err = s.service.Results(ctx)
		body = rows(names, func(n string) domain.ResultRow { return domain.ResultRow{Result: n} })
	default:
		writeError(w, http.StatusBadRequest, "Invalid entity type")
		return
	}

	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func catalogResponse(c *domain.ClimbTypeCatalog) domain.ClimbTypeLocationResponse {
	climbTypes := make([]domain.ClimbTypeRow, 0, len(c.ClimbTypes))
	for _, ct := range c.ClimbTypes {
		climbTypes = append(climbTypes, domain.ClimbTypeRow{ClimbType: ct})
	}
	locations := c.Locations
	if locations == nil {
		locations = []domain.Location{}
	}
	return domain.ClimbTypeLocationResponse{ClimbTypes: &climbTypes, Locations: &locations}
}

func (s *Server) handleAddEntity(w http.ResponseWriter, r *http.Request) {
	var req domain.EntityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	message, err := s.service.AddEntity(r.Context(), auth.Username(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, domain.Message{Message: message})
}

func (s *Server) handleListRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := s.service.Routes(r.Context(), locationKey(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if routes == nil {
		routes = []domain.Route{}
	}
	writeJSON(w, http.StatusOK, domain.RoutesResponse{Routes: &routes})
}

func (s *Server) handleRouteAction(w http.ResponseWriter, r *http.Request) {
	var action domain.RouteAction
	if !decodeBody(w, r, &action) {
		return
	}

	message, err := s.service.RouteAction(r.Context(), auth.Username(r.Context()), action)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if strings.EqualFold(action.Action, domain.ActionAdd) {
		status = http.StatusCreated
	}
	writeJSON(w, status, domain.Message{Message: message})
}

func (s *Server) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := s.service.Attempts(r.Context(), auth.Username(r.Context()), locationKey(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if attempts == nil {
		attempts = []domain.Attempt{}
	}
	writeJSON(w, http.StatusOK, domain.AttemptsResponse{Attempts: &attempts})
}

func (s *Server) handleAddAttempt(w http.ResponseWriter, r *http.Request) {
	var attempt domain.NewAttempt
	if !decodeBody(w, r, &attempt) {
		return
	}

	attemptNo, err := s.service.AddAttempt(r.Context(), auth.Username(r.Context()), attempt)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, domain.Message{Message: "Attempt added successfully", AttemptNo: attemptNo})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if !decodeBody(w, r, &creds) {
		return
	}

	user, err := s.service.Login(r.Context(), creds)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.LoginResponse{Message: "Login successful", User: user})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var registration domain.Registration
	if !decodeBody(w, r, &registration) {
		return
	}

	if err := s.service.Register(r.Context(), registration); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, domain.Message{Message: "User registered successfully"})
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	var count int64
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "count must be a number")
			return
		}
		count = n
	}

	activity, err := s.service.RecentActivity(r.Context(), count)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if activity == nil {
		activity = []domain.Activity{}
	}
	writeJSON(w, http.StatusOK, domain.ActivityResponse{Activity: &activity})
}
