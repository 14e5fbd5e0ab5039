package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"climbing/logbook/internal/domain"
)

type UserRepository interface {
	// GetUser returns the user and their stored password hash.
	GetUser(ctx context.Context, username string) (*domain.User, string, error)
	CreateUser(ctx context.Context, registration domain.Registration, passwordHash string) error
	UpdatePassword(ctx context.Context, username, passwordHash string) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) GetUser(ctx context.Context, username string) (*domain.User, string, error) {
	query := `
	SELECT username, pass, first_name, last_name, email, access
	FROM climbers
	WHERE username = $1`
	var (
		u    domain.User
		hash string
	)
	err := r.db.QueryRowContext(ctx, query, username).
		Scan(&u.Username, &hash, &u.FirstName, &u.LastName, &u.Email, &u.Access)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to get user %s: %w", username, err)
	}
	return &u, hash, nil
}

func (r *userRepository) CreateUser(ctx context.Context, registration domain.Registration, passwordHash string) error {
	query := `
	INSERT INTO climbers (username, pass, first_name, last_name, email)
	VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, registration.Username, passwordHash,
		registration.FirstName, registration.LastName, registration.Email)
	if err != nil {
		return fmt.Errorf("failed to create user %s: %w", registration.Username, translate(err))
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE climbers SET pass = $2 WHERE username = $1`, username, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password for %s: %w", username, err)
	}
	return nil
}
