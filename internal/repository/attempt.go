package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"climbing/logbook/internal/domain"
)

type AttemptRepository interface {
	ListAttempts(ctx context.Context, username string, key domain.LocationKey) ([]domain.Attempt, error)
	AddAttempt(ctx context.Context, username string, attempt domain.NewAttempt) (int, error)
}

type attemptRepository struct {
	db *sql.DB
}

func NewAttemptRepository(db *sql.DB) AttemptRepository {
	return &attemptRepository{
		db: db,
	}
}

// ListAttempts returns username's attempts on the current routes at key, with each
// route's grade and colour.
func (r *attemptRepository) ListAttempts(ctx context.Context, username string, key domain.LocationKey) ([]domain.Attempt, error) {
	query := `
	SELECT a.username, a.rid, a.mode, a.attempt_no,
	       to_char(a.attempt_date, 'YYYY-MM-DD'), to_char(a.attempt_time, 'HH24:MI'),
	       a.result, a.rating, a.notes, COALESCE(a.video, ''), r.grade, r.colour
	FROM attempts a
	JOIN routes r ON r.rid = a.rid
	WHERE a.username = $1
	  AND r.existing AND r.company_name = $2 AND r.suburb = $3 AND r.location = $4 AND r.climb_type = $5
	ORDER BY a.attempt_date DESC, a.attempt_time DESC, a.attempt_no DESC`
	rows, err := r.db.QueryContext(ctx, query, username, key.Company, key.Gym, key.Location, key.ClimbType)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return collect(rows, func(rows *sql.Rows) (domain.Attempt, error) {
		var a domain.Attempt
		err := rows.Scan(&a.Username, &a.RID, &a.Mode, &a.AttemptNo, &a.Date, &a.Time,
			&a.Result, &a.Rating, &a.Notes, &a.Video, &a.Grade, &a.Colour)
		return a, err
	})
}

// AddAttempt stores an attempt numbered one past the user's highest for the route and mode.
// The route row is locked for the duration so concurrent inserts cannot share a number.
func (r *attemptRepository) AddAttempt(ctx context.Context, username string, attempt domain.NewAttempt) (int, error) {
	lock := `SELECT rid FROM routes WHERE rid = $1 FOR UPDATE`
	insert := `
	INSERT INTO attempts (username, rid, mode, attempt_no, attempt_date, attempt_time, result, rating, notes, video)
	SELECT $1, $2, $3, COALESCE(MAX(attempt_no), 0) + 1, $4::date, $5::time, $6, $7, $8, NULLIF($9, '')
	FROM attempts
	WHERE username = $1 AND rid = $2 AND mode = $3
	RETURNING attempt_no`

	var attemptNo int
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var rid int64
		if err := tx.QueryRowContext(ctx, lock, attempt.RID).Scan(&rid); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("route %d: %w", attempt.RID, ErrNotFound)
			}
			return fmt.Errorf("failed to lock route %d: %w", attempt.RID, err)
		}

		err := tx.QueryRowContext(ctx, insert, username, attempt.RID, attempt.Mode, attempt.Date, attempt.Time,
			attempt.Result, attempt.Rating, attempt.Notes, attempt.Video).Scan(&attemptNo)
		if err != nil {
			return fmt.Errorf("failed to add attempt: %w", translate(err))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return attemptNo, nil
}
