package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"climbing/logbook/internal/domain"
)

type RouteRepository interface {
	ListRoutes(ctx context.Context, key domain.LocationKey) ([]domain.Route, error)
	AddRoutes(ctx context.Context, routes []domain.NewRoute) (int, error)
	ArchiveRoute(ctx context.Context, rid int64) error
}

type routeRepository struct {
	db *sql.DB
}

func NewRouteRepository(db *sql.DB) RouteRepository {
	return &routeRepository{
		db: db,
	}
}

// ListRoutes returns the routes still on the wall at key.
func (r *routeRepository) ListRoutes(ctx context.Context, key domain.LocationKey) ([]domain.Route, error) {
	query := `
	SELECT rid, creation_date, company_name, suburb, location, grade, climb_type, colour, number_holds
	FROM routes
	WHERE existing AND company_name = $1 AND suburb = $2 AND location = $3 AND climb_type = $4
	ORDER BY rid`
	rows, err := r.db.QueryContext(ctx, query, key.Company, key.Gym, key.Location, key.ClimbType)
	if err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}
	return collect(rows, func(rows *sql.Rows) (domain.Route, error) {
		var rt domain.Route
		err := rows.Scan(&rt.RID, &rt.CreationDate, &rt.CompanyName, &rt.Suburb, &rt.Location,
			&rt.Grade, &rt.ClimbType, &rt.Colour, &rt.NumberHolds)
		return rt, err
	})
}

// AddRoutes inserts routes in one transaction. A missing creation date means today.
func (r *routeRepository) AddRoutes(ctx context.Context, routes []domain.NewRoute) (int, error) {
	query := `
	INSERT INTO routes (creation_date, company_name, suburb, location, grade, climb_type, colour, number_holds, existing)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)`

	inserted := 0
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, route := range routes {
			created := time.Now()
			if route.CreationDate != "" {
				parsed, err := time.Parse(time.DateOnly, route.CreationDate)
				if err != nil {
					return fmt.Errorf("invalid creation date %q: %w", route.CreationDate, err)
				}
				created = parsed
			}

			_, err := tx.ExecContext(ctx, query, created, route.CompanyName, route.Suburb, route.Location,
				route.Grade, route.ClimbType, route.Colour, route.NumberHolds)
			if err != nil {
				return fmt.Errorf("failed to add route: %w", translate(err))
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// ArchiveRoute takes a route off the wall. Its attempts are kept.
func (r *routeRepository) ArchiveRoute(ctx context.Context, rid int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE routes SET existing = FALSE WHERE rid = $1`, rid)
	if err != nil {
		return fmt.Errorf("failed to archive route %d: %w", rid, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to archive route %d: %w", rid, err)
	}
	if n == 0 {
		return fmt.Errorf("route %d: %w", rid, ErrNotFound)
	}
	return nil
}
