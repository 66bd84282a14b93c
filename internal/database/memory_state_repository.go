package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/recall/pkg/models"
)

// ErrNotFound is returned by lookups that matched no row.
var ErrNotFound = errors.New("not found")

const memoryStateColumns = `
	id, user_id, item_id, state, difficulty, stability,
	reps, lapses, streak, last_rating, scheduled_days, elapsed_days,
	last_review, due, created_at, updated_at`

// MemoryStateRepository handles database operations for memory states.
// Methods that must run inside the caller's transaction take an
// sqlx.ExtContext, so the same code serves both the pooled handle and a
// transaction.
type MemoryStateRepository struct {
	db *DB
}

// NewMemoryStateRepository creates a new repository instance.
func NewMemoryStateRepository(db *DB) *MemoryStateRepository {
	return &MemoryStateRepository{db: db}
}

// GetByUserAndItem returns the memory state for a (user, item) pair, or
// ErrNotFound. With forUpdate set, the row is locked for the duration of
// the transaction on PostgreSQL; SQLite serializes writers on its own.
func (r *MemoryStateRepository) GetByUserAndItem(ctx context.Context, ext sqlx.ExtContext, userID, itemID int64, forUpdate bool) (*models.MemoryState, error) {
	query := `SELECT` + memoryStateColumns + `
		FROM memory_states WHERE user_id = $1 AND item_id = $2`
	if forUpdate && r.db.Postgres() {
		query += " FOR UPDATE"
	}
	var st models.MemoryState
	err := sqlx.GetContext(ctx, ext, &st, query, userID, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get memory state: %w", err)
	}
	return &st, nil
}

// Create inserts a new memory state and fills in its id.
func (r *MemoryStateRepository) Create(ctx context.Context, ext sqlx.ExtContext, st *models.MemoryState) error {
	const cols = `
		INSERT INTO memory_states (
			user_id, item_id, state, difficulty, stability,
			reps, lapses, streak, last_rating, scheduled_days, elapsed_days,
			last_review, due
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	if r.db.Postgres() {
		err := ext.QueryRowxContext(ctx, cols+" RETURNING id",
			st.UserID, st.ItemID, st.State, st.Difficulty, st.Stability,
			st.Reps, st.Lapses, st.Streak, st.LastRating, st.ScheduledDays, st.ElapsedDays,
			st.LastReview, st.Due,
		).Scan(&st.ID)
		if err != nil {
			return fmt.Errorf("failed to create memory state: %w", err)
		}
		return nil
	}

	res, err := ext.ExecContext(ctx, cols,
		st.UserID, st.ItemID, st.State, st.Difficulty, st.Stability,
		st.Reps, st.Lapses, st.Streak, st.LastRating, st.ScheduledDays, st.ElapsedDays,
		st.LastReview, st.Due,
	)
	if err != nil {
		return fmt.Errorf("failed to create memory state: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	st.ID = id
	return nil
}

// Update overwrites an existing memory state row.
func (r *MemoryStateRepository) Update(ctx context.Context, ext sqlx.ExtContext, st *models.MemoryState) error {
	res, err := ext.ExecContext(ctx, `
		UPDATE memory_states SET
			state = $1,
			difficulty = $2,
			stability = $3,
			reps = $4,
			lapses = $5,
			streak = $6,
			last_rating = $7,
			scheduled_days = $8,
			elapsed_days = $9,
			last_review = $10,
			due = $11,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $12`,
		st.State, st.Difficulty, st.Stability,
		st.Reps, st.Lapses, st.Streak, st.LastRating,
		st.ScheduledDays, st.ElapsedDays, st.LastReview, st.Due,
		st.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update memory state: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("memory state %d: %w", st.ID, ErrNotFound)
	}
	return nil
}

// CountDueOn counts the user's items already due on the calendar day
// (UTC) containing t. The load balancer uses this to detect days over
// capacity.
func (r *MemoryStateRepository) CountDueOn(ctx context.Context, ext sqlx.ExtContext, userID int64, t time.Time) (int, error) {
	dayStart := t.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)
	var count int
	err := sqlx.GetContext(ctx, ext, &count, `
		SELECT COUNT(*) FROM memory_states
		WHERE user_id = $1 AND due >= $2 AND due < $3`,
		userID, dayStart, dayEnd)
	if err != nil {
		return 0, fmt.Errorf("failed to count due items: %w", err)
	}
	return count, nil
}

// CountDueBefore counts the user's items due at or before t.
func (r *MemoryStateRepository) CountDueBefore(ctx context.Context, userID int64, t time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM memory_states
		WHERE user_id = $1 AND due IS NOT NULL AND due <= $2`,
		userID, t)
	if err != nil {
		return 0, fmt.Errorf("failed to count due items: %w", err)
	}
	return count, nil
}

// DueForUser returns up to limit memory states due at or before t,
// most overdue first.
func (r *MemoryStateRepository) DueForUser(ctx context.Context, userID int64, t time.Time, limit int) ([]models.MemoryState, error) {
	var states []models.MemoryState
	err := r.db.SelectContext(ctx, &states, `
		SELECT`+memoryStateColumns+`
		FROM memory_states
		WHERE user_id = $1 AND due IS NOT NULL AND due <= $2
		ORDER BY due ASC
		LIMIT $3`,
		userID, t, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get due items: %w", err)
	}
	return states, nil
}

// ResetForUser deletes all of a user's memory states. This is the bulk
// reset owned by the ops collaborator; review logs are retained, so the
// history can still be audited and replayed.
func (r *MemoryStateRepository) ResetForUser(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM memory_states WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to reset memory states: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}
