// Package server exposes the logbook service over the JSON API used by the web dashboard
// and the CLI.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"climbing/logbook/internal/config"
	"climbing/logbook/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// LogbookService is what the handlers need from the service layer.
type LogbookService interface {
	Companies(ctx context.Context) ([]domain.Company, error)
	Gyms(ctx context.Context, company string) ([]domain.Gym, error)
	Locations(ctx context.Context, company, suburb string) ([]domain.Location, error)
	ClimbTypes(ctx context.Context) ([]string, error)
	ClimbTypeCatalog(ctx context.Context, company, suburb string) (*domain.ClimbTypeCatalog, error)
	GradeSystems(ctx context.Context) ([]domain.GradeSystem, error)
	Grades(ctx context.Context, company, climbType string) ([]domain.Grade, error)
	Colours(ctx context.Context, company string) ([]domain.Colour, error)
	Modes(ctx context.Context) ([]string, error)
	Results(ctx context.Context) ([]string, error)
	AddEntity(ctx context.Context, username string, req domain.EntityRequest) (string, error)

	Routes(ctx context.Context, key domain.LocationKey) ([]domain.Route, error)
	RouteAction(ctx context.Context, username string, action domain.RouteAction) (string, error)
	Attempts(ctx context.Context, username string, key domain.LocationKey) ([]domain.Attempt, error)
	AddAttempt(ctx context.Context, username string, attempt domain.NewAttempt) (int, error)

	Login(ctx context.Context, creds domain.Credentials) (*domain.User, error)
	Register(ctx context.Context, registration domain.Registration) error
	Authenticate(token string) (string, error)
	RecentActivity(ctx context.Context, count int64) ([]domain.Activity, error)
}

type Server struct {
	cfg     config.ServerConfig
	service LogbookService
	http    *http.Server

	trustUsernameHeader bool
}

func NewServer(cfg config.ServerConfig, authCfg config.AuthConfig, service LogbookService) *Server {
	s := &Server{
		cfg:                 cfg,
		service:             service,
		trustUsernameHeader: authCfg.TrustUsernameHeader,
	}
	s.http = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler builds the router. Reference reads and account endpoints are public; every
// write plus the route and attempt endpoints require a user.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors(s.cfg.AllowedOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Post("/login_user", s.handleLogin)
		r.Post("/register_users", s.handleRegister)
		r.Get("/misc_additions", s.handleListEntity)
		r.Get("/activity", s.handleActivity)

		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)
			r.Post("/misc_additions", s.handleAddEntity)
			r.Get("/routes", s.handleListRoutes)
			r.Post("/routes", s.handleRouteAction)
			r.Get("/attempts", s.handleListAttempts)
			r.Post("/attempts", s.handleAddAttempt)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Infof("🚀 Logbook API listening on %s", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to serve: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := time.Duration(s.cfg.ShutdownTimeout) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log.Info("🛑 Shutting down API server...")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return <-errCh
}
