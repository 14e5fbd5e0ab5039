package container

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"climbing/logbook/internal/auth"
	"climbing/logbook/internal/cache"
	"climbing/logbook/internal/config"
	"climbing/logbook/internal/queue"
	"climbing/logbook/internal/repository"
	"climbing/logbook/internal/server"
	"climbing/logbook/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components of the API server
type Container struct {
	Config *config.Config

	References repository.ReferenceRepository
	Routes     repository.RouteRepository
	Attempts   repository.AttemptRepository
	Users      repository.UserRepository
	Cache      cache.ReferenceCache
	Activity   queue.ActivityQueue

	Service *service.Service
	Server  *server.Server

	pool  *pgxpool.Pool
	db    *sql.DB
	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	container.pool = pool
	container.db = stdlib.OpenDBFromPool(pool)

	log.Info("✅ Connected to Postgres successfully")

	if err := repository.Migrate(ctx, container.db); err != nil {
		container.Close()
		return nil, err
	}

	container.References = repository.NewReferenceRepository(container.db)
	container.Routes = repository.NewRouteRepository(container.db)
	container.Attempts = repository.NewAttemptRepository(container.db)
	container.Users = repository.NewUserRepository(container.db)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})
	container.redis = rdb

	// Test connection
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info("✅ Connected to Redis successfully")

	container.Cache = cache.NewRedisReferenceCache(rdb, cfg.Redis.KeyPrefix, time.Duration(cfg.Redis.TTL)*time.Second)
	container.Activity = queue.NewRedisActivityQueue(rdb, cfg.Redis.StreamPrefix, cfg.Redis.ActivityMaxLen)

	tokens := auth.NewTokenService(cfg.Auth.Secret, time.Duration(cfg.Auth.TokenTTL)*time.Hour)

	container.Service = service.NewService(
		container.References,
		container.Routes,
		container.Attempts,
		container.Users,
		container.Cache,
		container.Activity,
		tokens,
	)
	container.Server = server.NewServer(cfg.Server, cfg.Auth, container.Service)

	return container, nil
}

// Run serves the API until ctx is cancelled
func (c *Container) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.Server.Run(ctx)
	})

	g.Go(func() error {
		if err := c.Service.Warm(ctx); err != nil {
			log.Warnf("⚠️ Failed to warm reference cache: %v", err)
		}
		return nil
	})

	return g.Wait()
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	if c.db != nil {
		c.db.Close()
	}
	if c.pool != nil {
		c.pool.Close()
	}
	if c.redis != nil {
		c.redis.Close()
	}

	log.Info("Container shut down successfully")
	return nil
}
