package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/recall/pkg/models"
)

// UserRepository handles database operations for users.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new repository instance.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID returns a user by id, or ErrNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `
		SELECT id, name, daily_capacity, digest_hour, digest_enabled, created_at
		FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// Exists reports whether the user id is known, using the caller's
// transaction when given one.
func (r *UserRepository) Exists(ctx context.Context, ext sqlx.ExtContext, id int64) (bool, error) {
	var one int
	err := sqlx.GetContext(ctx, ext, &one, `SELECT 1 FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return true, nil
}

// Create inserts a user and fills in its id.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	const cols = `
		INSERT INTO users (name, daily_capacity, digest_hour, digest_enabled)
		VALUES ($1, $2, $3, $4)`

	if r.db.Postgres() {
		err := r.db.QueryRowxContext(ctx, cols+" RETURNING id",
			user.Name, user.DailyCapacity, user.DigestHour, user.DigestEnabled,
		).Scan(&user.ID)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	}

	res, err := r.db.ExecContext(ctx, cols,
		user.Name, user.DailyCapacity, user.DigestHour, user.DigestEnabled)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	user.ID = id
	return nil
}

// GetUsersForDigest returns users with reminders enabled for the given
// hour of day.
func (r *UserRepository) GetUsersForDigest(ctx context.Context, hour int) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users, `
		SELECT id, name, daily_capacity, digest_hour, digest_enabled, created_at
		FROM users
		WHERE digest_enabled = $1 AND digest_hour = $2`,
		true, hour)
	if err != nil {
		return nil, fmt.Errorf("failed to get users for digest: %w", err)
	}
	return users, nil
}
