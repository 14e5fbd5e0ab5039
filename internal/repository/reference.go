package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"climbing/logbook/internal/domain"
)

// ReferenceRepository holds the slowly changing lists the location selector and forms draw on.
type ReferenceRepository interface {
	ListCompanies(ctx context.Context) ([]domain.Company, error)
	GetCompany(ctx context.Context, name string) (*domain.Company, error)
	ListGyms(ctx context.Context, company string) ([]domain.Gym, error)
	ListLocations(ctx context.Context, company, suburb string) ([]domain.Location, error)
	ListClimbTypes(ctx context.Context, company, suburb string) ([]string, error)
	ListAllClimbTypes(ctx context.Context) ([]string, error)
	ListGradeSystems(ctx context.Context) ([]domain.GradeSystem, error)
	ListGrades(ctx context.Context, gradingSystem string) ([]domain.Grade, error)
	ListColours(ctx context.Context, company string) ([]domain.Colour, error)
	ListModes(ctx context.Context) ([]string, error)
	ListResults(ctx context.Context) ([]string, error)

	AddCompany(ctx context.Context, company domain.NewCompany) error
	AddGym(ctx context.Context, gym domain.NewGym) error
	AddColour(ctx context.Context, colour domain.NewColour) error
	AddLocations(ctx context.Context, company, suburb string, locations []domain.NewLocation) (int, error)
}

type referenceRepository struct {
	db *sql.DB
}

func NewReferenceRepository(db *sql.DB) ReferenceRepository {
	return &referenceRepository{
		db: db,
	}
}

func (r *referenceRepository) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	query := `
	SELECT company_name, COALESCE(boulder_grade_system, ''), COALESCE(sport_grade_system, ''), primary_country
	FROM companies
	ORDER BY company_name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return collect(rows, func(rows *sql.Rows) (domain.Company, error) {
		var c domain.Company
		err := rows.Scan(&c.CompanyName, &c.BoulderGradeSystem, &c.SportGradeSystem, &c.PrimaryCountry)
		return c, err
	})
}

func (r *referenceRepository) GetCompany(ctx context.Context, name string) (*domain.Company, error) {
	query := `
	SELECT company_name, COALESCE(boulder_grade_system, ''), COALESCE(sport_grade_system, ''), primary_country
	FROM companies
	WHERE company_name = $1`
	var c domain.Company
	err := r.db.QueryRowContext(ctx, query, name).
		Scan(&c.CompanyName, &c.BoulderGradeSystem, &c.SportGradeSystem, &c.PrimaryCountry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("company %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company %s: %w", name, err)
	}
	return &c, nil
}

func (r *referenceRepository) ListGyms(ctx context.Context, company string) ([]domain.Gym, error) {
	query := `
	SELECT company_name, suburb, city, country
	FROM gyms
	WHERE company_name = $1
	ORDER BY suburb`
	rows, err := r.db.QueryContext(ctx, query, company)
	if err != nil {
		return nil, fmt.Errorf("failed to list gyms: %w", err)
	}
	return collect(rows, func(rows *sql.Rows) (domain.Gym, error) {
		var g domain.Gym
		err := rows.Scan(&g.CompanyName, &g.Suburb, &g.City, &g.Country)
		return g, err
	})
}

func (r *referenceRepository) ListLocations(ctx context.Context, company, suburb string) ([]domain.Location, error) {
	query := `
	SELECT location, climb_type
	FROM locations
	WHERE company_name = $1 AND suburb = $2
	ORDER BY location`
	rows, err := r.db.QueryContext(ctx, query, company, suburb)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return collect(rows, func(rows *sql.Rows) (domain.Location, error) {
		var l domain.Location
		err := rows.Scan(&l.Name, &l.ClimbType)
		return l, err
	})
}

func (r *referenceRepository) ListClimbTypes(ctx context.Context, company, suburb string) ([]string, error) {
	query := `
	SELECT DISTINCT climb_type
	FROM locations
	WHERE company_name = $1 AND suburb = $2
	ORDER BY climb_type`
	rows, err := r.db.QueryContext(ctx, query, company, suburb)
	if err != nil {
		return nil, fmt.Errorf("failed to list climb types: %w", err)
	}
	return collect(rows, scanString)
}

func (r *referenceRepository) ListAllClimbTypes(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT climb_type FROM locations ORDER BY climb_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to list climb types: %w", err)
	}
	return collect(rows, scanString)
}

func (r *referenceRepository) ListGradeSystems(ctx context.Context) ([]domain.GradeSystem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT grading_system FROM grade_systems ORDER BY grading_system`)
	if err != nil {
		return nil, fmt.Errorf("failed to list grade systems: %w", err)
	}
	return collect(rows, func(rows *sql.Rows) (domain.GradeSystem, error) {
		var g domain.GradeSystem
		err := rows.Scan(&g.GradingSystem)
		return g, err
	})
}

func (r *referenceRepository) ListGrades(ctx context.Context, gradingSystem string) ([]domain.Grade, error) {
	query := `
	SELECT grade, grade_order
	FROM grades
	WHERE grading_system = $1
	ORDER BY grade_order`
	rows, err := r.db.QueryContext(ctx, query, gradingSystem)
	if err != nil {
		return nil, fmt.Errorf("failed to list grades: %w", err)
	}
	return collect(rows, func(rows *sql.Rows) (domain.Grade, error) {
		var g domain.Grade
		err := rows.Scan(&g.Grade, &g.GradeOrder)
		return g, err
	})
}

func (r *referenceRepository) ListColours(ctx context.Context, company string) ([]domain.Colour, error) {
	query := `
	SELECT company_name, colour, hex_code
	FROM colours
	WHERE company_name = $1
	ORDER BY colour`
	rows, err := r.db.QueryContext(ctx, query, company)
	if err != nil {
		return nil, fmt.Errorf("failed to list colours: %w", err)
	}
	return collect(rows, func(rows *sql.Rows) (domain.Colour, error) {
		var c domain.Colour
		err := rows.Scan(&c.CompanyName, &c.Colour, &c.HexCode)
		return c, err
	})
}

func (r *referenceRepository) ListModes(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT mode FROM modes ORDER BY mode`)
	if err != nil {
		return nil, fmt.Errorf("failed to list modes: %w", err)
	}
	return collect(rows, scanString)
}

func (r *referenceRepository) ListResults(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT result FROM results ORDER BY result`)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return collect(rows, scanString)
}

func (r *referenceRepository) AddCompany(ctx context.Context, company domain.NewCompany) error {
	query := `
	INSERT INTO companies (company_name, boulder_grade_system, sport_grade_system, primary_country)
	VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query,
		company.CompanyName, company.BoulderGradeSystem, company.SportGradeSystem, company.PrimaryCountry)
	if err != nil {
		return fmt.Errorf("failed to add company %s: %w", company.CompanyName, translate(err))
	}
	return nil
}

func (r *referenceRepository) AddGym(ctx context.Context, gym domain.NewGym) error {
	query := `
	INSERT INTO gyms (company_name, suburb, city, country)
	VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, gym.CompanyName, gym.Suburb, gym.City, gym.Country)
	if err != nil {
		return fmt.Errorf("failed to add gym %s: %w", gym.Suburb, translate(err))
	}
	return nil
}

func (r *referenceRepository) AddColour(ctx context.Context, colour domain.NewColour) error {
	query := `
	INSERT INTO colours (company_name, colour, hex_code)
	VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, colour.CompanyName, colour.Colour, colour.HexCode)
	if err != nil {
		return fmt.Errorf("failed to add colour %s: %w", colour.Colour, translate(err))
	}
	return nil
}

// AddLocations inserts every location in one transaction. A missing climb type is stored
// as "not specified".
func (r *referenceRepository) AddLocations(ctx context.Context, company, suburb string, locations []domain.NewLocation) (int, error) {
	query := `
	INSERT INTO locations (company_name, suburb, location, climb_type)
	VALUES ($1, $2, $3, $4)`

	inserted := 0
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, loc := range locations {
			climbType := loc.Type
			if climbType == "" {
				climbType = "not specified"
			}
			if _, err := tx.ExecContext(ctx, query, company, suburb, loc.Location, climbType); err != nil {
				return fmt.Errorf("failed to add location %s: %w", loc.Location, translate(err))
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
