// Package service is the single entry point external collaborators call
// to record an answer: it normalizes the evidence, advances the memory
// model, smooths the interval, and persists the new state together with
// its audit log entry in one transaction.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/example/recall/internal/answer"
	"github.com/example/recall/internal/balance"
	"github.com/example/recall/internal/database"
	"github.com/example/recall/internal/srs"
	"github.com/example/recall/pkg/models"
)

const defaultMaxAttempts = 5

// Config assembles the service's explicit dependencies; there is no
// ambient configuration lookup anywhere below this point.
type Config struct {
	Params      srs.Params        // zero value → srs.DefaultParams()
	Balancer    *balance.Balancer // nil → time-seeded balancer, capacity 50
	Logger      *zap.Logger       // nil → zap.NewNop()
	MaxAttempts int               // zero → 5 transaction attempts
}

// Service orchestrates one interaction end to end.
type Service struct {
	db          *database.DB
	users       *database.UserRepository
	items       *database.ItemRepository
	states      *database.MemoryStateRepository
	logs        *database.ReviewLogRepository
	params      srs.Params
	balancer    *balance.Balancer
	logger      *zap.Logger
	maxAttempts int
}

// New creates a Service. Zero-value config fields get defaults; invalid
// engine parameters return an error.
func New(db *database.DB, cfg Config) (*Service, error) {
	params := cfg.Params
	if params == (srs.Params{}) {
		params = srs.DefaultParams()
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine parameters: %w", err)
	}

	balancer := cfg.Balancer
	if balancer == nil {
		balancer = balance.New(nil, 50)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}

	return &Service{
		db:          db,
		users:       database.NewUserRepository(db),
		items:       database.NewItemRepository(db),
		states:      database.NewMemoryStateRepository(db),
		logs:        database.NewReviewLogRepository(db),
		params:      params,
		balancer:    balancer,
		logger:      logger,
		maxAttempts: attempts,
	}, nil
}

// Interaction is one answered exercise.
type Interaction struct {
	UserID    int64
	ItemID    int64
	Mode      models.ReviewMode
	Evidence  models.Evidence
	SessionID string    // empty → a fresh session id is generated
	Now       time.Time // zero → time.Now()
}

// Result summarizes the committed transition for the caller. Scoring
// and gamification are driven off Rating downstream; the engine itself
// stops here.
type Result struct {
	Due         time.Time     `json:"due"`
	Rating      models.Rating `json:"rating"`
	State       models.State  `json:"state"`
	MemoryPower float64       `json:"memory_power"`
	LogID       int64         `json:"log_id"`
	SessionID   string        `json:"session_id"`
}

// ProcessInteraction records one answer: normalize → load or lazily
// create the memory state → advance the state machine → smooth the
// interval → persist state and audit entry atomically.
//
// Malformed evidence degrades to the most conservative rating rather
// than failing; unknown users or items fail with the named sentinels
// and mutate nothing. Transient storage contention is retried with
// exponential backoff up to the configured attempt budget, after which
// ErrContention is returned and the caller may replay the whole
// interaction.
func (s *Service) ProcessInteraction(ctx context.Context, in Interaction) (*Result, error) {
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	sessionID := in.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	rating := answer.Normalize(in.Mode, in.Evidence)

	var result *Result
	op := func() error {
		res, err := s.processOnce(ctx, in, rating, sessionID, now)
		if err != nil {
			if isTransient(err) {
				s.logger.Warn("transaction contention, retrying",
					zap.Int64("user_id", in.UserID),
					zap.Int64("item_id", in.ItemID),
					zap.Error(err))
				return err
			}
			return backoff.Permanent(err)
		}
		result = res
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(s.maxAttempts-1)), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		if isTransient(err) {
			err = fmt.Errorf("%w: %v", ErrContention, err)
		}
		s.logger.Error("interaction failed",
			zap.Int64("user_id", in.UserID),
			zap.Int64("item_id", in.ItemID),
			zap.String("mode", string(in.Mode)),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("interaction processed",
		zap.Int64("user_id", in.UserID),
		zap.Int64("item_id", in.ItemID),
		zap.String("mode", string(in.Mode)),
		zap.Stringer("rating", result.Rating),
		zap.Stringer("state", result.State),
		zap.Time("due", result.Due))
	return result, nil
}

// processOnce runs a single transactional attempt.
func (s *Service) processOnce(ctx context.Context, in Interaction, rating models.Rating, sessionID string, now time.Time) (*Result, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if ok, err := s.users.Exists(ctx, tx, in.UserID); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("user %d: %w", in.UserID, ErrUserNotFound)
	}
	if ok, err := s.items.Exists(ctx, tx, in.ItemID); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("item %d: %w", in.ItemID, ErrItemNotFound)
	}

	st, err := s.states.GetByUserAndItem(ctx, tx, in.UserID, in.ItemID, true)
	if errors.Is(err, database.ErrNotFound) {
		fresh := models.NewMemoryState(in.UserID, in.ItemID)
		if err := s.states.Create(ctx, tx, &fresh); err != nil {
			return nil, err
		}
		st = &fresh
	} else if err != nil {
		return nil, err
	}

	before := st.Snapshot()
	next, rawDays := srs.Advance(s.params, *st, rating, now)

	// Jitter first, then capacity shedding against the candidate day.
	days := s.balancer.Fuzz(rawDays)
	due := now.Add(time.Duration(days * 24 * float64(time.Hour)))
	dueCount, err := s.states.CountDueOn(ctx, tx, in.UserID, due)
	if err != nil {
		return nil, err
	}
	if shift := s.balancer.Shed(days, rating, dueCount); shift != 0 {
		due = due.AddDate(0, 0, shift)
	}

	next.ScheduledDays = due.Sub(now).Hours() / 24.0
	next.LastReview = &now
	next.Due = &due
	if err := s.states.Update(ctx, tx, &next); err != nil {
		return nil, err
	}

	entry := &models.ReviewLogEntry{
		UserID:     in.UserID,
		ItemID:     in.ItemID,
		SessionID:  sessionID,
		Mode:       in.Mode,
		Rating:     rating,
		ReviewedAt: now,
		Quality:    in.Evidence.Quality,
		IsCorrect:  in.Evidence.IsCorrect,
		TargetText: in.Evidence.TargetText,
		UserText:   in.Evidence.UserText,
		DurationMs: in.Evidence.DurationMs,
		Before:     before,
		After:      next.Snapshot(),
	}
	if err := s.logs.Append(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true

	return &Result{
		Due:         due,
		Rating:      rating,
		State:       next.State,
		MemoryPower: srs.MemoryPower(s.params, next, now),
		LogID:       entry.ID,
		SessionID:   sessionID,
	}, nil
}

// MemoryPower returns the 0-100 display score for a (user, item) pair.
func (s *Service) MemoryPower(ctx context.Context, userID, itemID int64, now time.Time) (float64, error) {
	st, err := s.states.GetByUserAndItem(ctx, s.db, userID, itemID, false)
	if errors.Is(err, database.ErrNotFound) {
		return 0, fmt.Errorf("item %d: %w", itemID, ErrItemNotFound)
	}
	if err != nil {
		return 0, err
	}
	return srs.MemoryPower(s.params, *st, now), nil
}

// History returns the full audit trail for a (user, item) pair.
func (s *Service) History(ctx context.Context, userID, itemID int64) ([]models.ReviewLogEntry, error) {
	return s.logs.ListByUserAndItem(ctx, userID, itemID)
}

// Stats rebuilds the user's aggregate statistics from the review log.
func (s *Service) Stats(ctx context.Context, userID int64) (*database.UserStats, error) {
	return s.logs.GetUserStats(ctx, userID)
}

// ResetUser deletes all memory states for a user. This is the explicit
// ops-owned bulk reset; the review log is left intact.
func (s *Service) ResetUser(ctx context.Context, userID int64) (int64, error) {
	n, err := s.states.ResetForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.logger.Info("memory states reset",
		zap.Int64("user_id", userID),
		zap.Int64("deleted", n))
	return n, nil
}

// isTransient reports whether the error is a contention condition worth
// retrying: SQLite busy/locked, PostgreSQL serialization failures and
// deadlocks.
func isTransient(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// 40001 serialization_failure, 40P01 deadlock_detected,
		// 55P03 lock_not_available.
		switch pqErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
	}
	return false
}
