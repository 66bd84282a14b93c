package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/recall/pkg/models"
)

const reviewLogColumns = `
	id, user_id, item_id, session_id, mode, rating, reviewed_at,
	quality, is_correct, target_text, user_text, duration_ms,
	before_state AS "before.state",
	before_difficulty AS "before.difficulty",
	before_stability AS "before.stability",
	before_reps AS "before.reps",
	before_lapses AS "before.lapses",
	before_scheduled_days AS "before.scheduled_days",
	before_elapsed_days AS "before.elapsed_days",
	after_state AS "after.state",
	after_difficulty AS "after.difficulty",
	after_stability AS "after.stability",
	after_reps AS "after.reps",
	after_lapses AS "after.lapses",
	after_scheduled_days AS "after.scheduled_days",
	after_elapsed_days AS "after.elapsed_days"`

// ReviewLogRepository handles the append-only review log. The engine
// only ever inserts; entries are never updated or deleted, and every
// aggregate statistic is rebuilt from this table alone.
type ReviewLogRepository struct {
	db *DB
}

// NewReviewLogRepository creates a new repository instance.
func NewReviewLogRepository(db *DB) *ReviewLogRepository {
	return &ReviewLogRepository{db: db}
}

// Append inserts one log entry and fills in its id. It is intended to
// run in the same transaction as the memory-state write so the pair
// commits as one logical unit.
func (r *ReviewLogRepository) Append(ctx context.Context, ext sqlx.ExtContext, entry *models.ReviewLogEntry) error {
	const cols = `
		INSERT INTO review_logs (
			user_id, item_id, session_id, mode, rating, reviewed_at,
			quality, is_correct, target_text, user_text, duration_ms,
			before_state, before_difficulty, before_stability,
			before_reps, before_lapses, before_scheduled_days, before_elapsed_days,
			after_state, after_difficulty, after_stability,
			after_reps, after_lapses, after_scheduled_days, after_elapsed_days
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24, $25
		)`

	args := []any{
		entry.UserID, entry.ItemID, entry.SessionID, string(entry.Mode), entry.Rating, entry.ReviewedAt,
		entry.Quality, entry.IsCorrect, entry.TargetText, entry.UserText, entry.DurationMs,
		entry.Before.State, entry.Before.Difficulty, entry.Before.Stability,
		entry.Before.Reps, entry.Before.Lapses, entry.Before.ScheduledDays, entry.Before.ElapsedDays,
		entry.After.State, entry.After.Difficulty, entry.After.Stability,
		entry.After.Reps, entry.After.Lapses, entry.After.ScheduledDays, entry.After.ElapsedDays,
	}

	if r.db.Postgres() {
		if err := ext.QueryRowxContext(ctx, cols+" RETURNING id", args...).Scan(&entry.ID); err != nil {
			return fmt.Errorf("failed to append review log: %w", err)
		}
		return nil
	}

	res, err := ext.ExecContext(ctx, cols, args...)
	if err != nil {
		return fmt.Errorf("failed to append review log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	entry.ID = id
	return nil
}

// ListByUserAndItem returns the full history for one (user, item) pair,
// oldest first.
func (r *ReviewLogRepository) ListByUserAndItem(ctx context.Context, userID, itemID int64) ([]models.ReviewLogEntry, error) {
	var entries []models.ReviewLogEntry
	err := r.db.SelectContext(ctx, &entries, `
		SELECT`+reviewLogColumns+`
		FROM review_logs
		WHERE user_id = $1 AND item_id = $2
		ORDER BY reviewed_at ASC, id ASC`,
		userID, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list review logs: %w", err)
	}
	return entries, nil
}

// ListBySession returns all entries recorded under one session id,
// oldest first.
func (r *ReviewLogRepository) ListBySession(ctx context.Context, sessionID string) ([]models.ReviewLogEntry, error) {
	var entries []models.ReviewLogEntry
	err := r.db.SelectContext(ctx, &entries, `
		SELECT`+reviewLogColumns+`
		FROM review_logs
		WHERE session_id = $1
		ORDER BY reviewed_at ASC, id ASC`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list review logs: %w", err)
	}
	return entries, nil
}

// UserStats is the aggregate view downstream analytics consume.
//
// Bucketing is canonical and non-overlapping: a review is incorrect iff
// its rating is Again; Hard, Good and Easy all count as correct. The
// per-rating counts are reported alongside so consumers wanting a
// partial-credit split can derive one without double counting.
type UserStats struct {
	TotalReviews int     `db:"total_reviews"`
	Correct      int     `db:"correct"`
	Incorrect    int     `db:"incorrect"`
	AgainCount   int     `db:"again_count"`
	HardCount    int     `db:"hard_count"`
	GoodCount    int     `db:"good_count"`
	EasyCount    int     `db:"easy_count"`
	Accuracy     float64 `db:"-"`
}

// GetUserStats rebuilds aggregate statistics for a user from the log.
func (r *ReviewLogRepository) GetUserStats(ctx context.Context, userID int64) (*UserStats, error) {
	var stats UserStats
	err := r.db.GetContext(ctx, &stats, `
		SELECT
			COUNT(*) AS total_reviews,
			COALESCE(SUM(CASE WHEN rating != 'Again' THEN 1 ELSE 0 END), 0) AS correct,
			COALESCE(SUM(CASE WHEN rating = 'Again' THEN 1 ELSE 0 END), 0) AS incorrect,
			COALESCE(SUM(CASE WHEN rating = 'Again' THEN 1 ELSE 0 END), 0) AS again_count,
			COALESCE(SUM(CASE WHEN rating = 'Hard' THEN 1 ELSE 0 END), 0) AS hard_count,
			COALESCE(SUM(CASE WHEN rating = 'Good' THEN 1 ELSE 0 END), 0) AS good_count,
			COALESCE(SUM(CASE WHEN rating = 'Easy' THEN 1 ELSE 0 END), 0) AS easy_count
		FROM review_logs
		WHERE user_id = $1`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	if stats.TotalReviews > 0 {
		stats.Accuracy = float64(stats.Correct) / float64(stats.TotalReviews)
	}
	return &stats, nil
}
