// Package scheduler runs the hourly due-item digest: outside the
// engine's write path, it counts what each user has waiting and hands
// the number to a Notifier. Delivery (bot, e-mail, push) lives outside
// this repository.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/example/recall/internal/database"
)

// Notifier delivers a due-item reminder to a user.
type Notifier interface {
	SendDigest(ctx context.Context, userID int64, dueCount int) error
}

// Config bounds the hours of day (inclusive) during which digests are
// sent, so reminders never fire in the middle of the night.
type Config struct {
	StartHour int // zero value → 8
	EndHour   int // zero value → 22
}

// Scheduler manages the periodic digest job.
type Scheduler struct {
	scheduler *gocron.Scheduler
	users     *database.UserRepository
	states    *database.MemoryStateRepository
	notifier  Notifier
	logger    *zap.Logger
	startHour int
	endHour   int
}

// New creates a scheduler instance.
func New(db *database.DB, notifier Notifier, logger *zap.Logger, cfg Config) *Scheduler {
	if cfg.StartHour == 0 {
		cfg.StartHour = 8
	}
	if cfg.EndHour == 0 {
		cfg.EndHour = 22
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		users:     database.NewUserRepository(db),
		states:    database.NewMemoryStateRepository(db),
		notifier:  notifier,
		logger:    logger,
		startHour: cfg.StartHour,
		endHour:   cfg.EndHour,
	}
}

// Start begins running the digest job hourly, non-blocking.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(1).Hour().Do(s.runDigest); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled jobs.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// runDigest is one pass: users whose preferred hour is now, inside the
// allowed window, get a reminder capped at their daily capacity.
func (s *Scheduler) runDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	s.runDigestAt(ctx, time.Now().UTC())
}

func (s *Scheduler) runDigestAt(ctx context.Context, now time.Time) {
	hour := now.Hour()
	if hour < s.startHour || hour > s.endHour {
		s.logger.Debug("outside digest window, skipping",
			zap.Int("hour", hour),
			zap.Int("start", s.startHour),
			zap.Int("end", s.endHour))
		return
	}

	users, err := s.users.GetUsersForDigest(ctx, hour)
	if err != nil {
		s.logger.Error("failed to get users for digest", zap.Error(err))
		return
	}

	for _, user := range users {
		count, err := s.states.CountDueBefore(ctx, user.ID, now)
		if err != nil {
			s.logger.Error("failed to count due items",
				zap.Int64("user_id", user.ID), zap.Error(err))
			continue
		}
		if count == 0 {
			continue
		}
		if user.DailyCapacity > 0 && count > user.DailyCapacity {
			count = user.DailyCapacity
		}
		if err := s.notifier.SendDigest(ctx, user.ID, count); err != nil {
			s.logger.Error("failed to send digest",
				zap.Int64("user_id", user.ID), zap.Error(err))
		}
	}
}

// RunManualCheck forces a digest for a single user, ignoring the window.
// Used by ops tooling.
func (s *Scheduler) RunManualCheck(ctx context.Context, userID int64) error {
	count, err := s.states.CountDueBefore(ctx, userID, time.Now().UTC())
	if err != nil {
		return err
	}
	return s.notifier.SendDigest(ctx, userID, count)
}

// LogNotifier is a Notifier that only logs; the default when no real
// delivery channel is wired in.
type LogNotifier struct {
	Logger *zap.Logger
}

// SendDigest implements Notifier.
func (n LogNotifier) SendDigest(_ context.Context, userID int64, dueCount int) error {
	n.Logger.Info("review digest",
		zap.Int64("user_id", userID),
		zap.Int("due_count", dueCount))
	return nil
}
