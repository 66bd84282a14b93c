package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/recall/internal/database"
	"github.com/example/recall/pkg/models"
)

type digestCall struct {
	userID   int64
	dueCount int
}

type recordingNotifier struct {
	calls []digestCall
}

func (n *recordingNotifier) SendDigest(_ context.Context, userID int64, dueCount int) error {
	n.calls = append(n.calls, digestCall{userID: userID, dueCount: dueCount})
	return nil
}

func newTestScheduler(t *testing.T, cfg Config) (*Scheduler, *recordingNotifier, *database.DB) {
	t.Helper()
	db, err := database.Connect(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	notifier := &recordingNotifier{}
	return New(db, notifier, nil, cfg), notifier, db
}

func seedUserWithDue(t *testing.T, db *database.DB, user models.User, dueCount int, due time.Time) int64 {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, database.NewUserRepository(db).Create(ctx, &user))
	items := database.NewItemRepository(db)
	states := database.NewMemoryStateRepository(db)
	for i := 0; i < dueCount; i++ {
		item := &models.Item{Prompt: "p", Answer: "a"}
		require.NoError(t, items.Create(ctx, item))
		st := models.NewMemoryState(user.ID, item.ID)
		require.NoError(t, states.Create(ctx, db, &st))
		d := due
		st.Due = &d
		require.NoError(t, states.Update(ctx, db, &st))
	}
	return user.ID
}

func TestDigestSendsInsideWindow(t *testing.T) {
	s, notifier, db := newTestScheduler(t, Config{StartHour: 8, EndHour: 22})
	at := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	userID := seedUserWithDue(t, db,
		models.User{Name: "alice", DailyCapacity: 50, DigestHour: 9, DigestEnabled: true},
		3, at.Add(-time.Hour))

	s.runDigestAt(context.Background(), at)

	require.Len(t, notifier.calls, 1)
	assert.Equal(t, userID, notifier.calls[0].userID)
	assert.Equal(t, 3, notifier.calls[0].dueCount)
}

func TestDigestSkipsOutsideWindow(t *testing.T) {
	s, notifier, db := newTestScheduler(t, Config{StartHour: 8, EndHour: 22})
	// Preferred hour 3 is outside the allowed window; the gate wins.
	seedUserWithDue(t, db,
		models.User{Name: "alice", DailyCapacity: 50, DigestHour: 3, DigestEnabled: true},
		2, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC))

	s.runDigestAt(context.Background(), time.Date(2026, 7, 1, 3, 0, 0, 0, time.UTC))
	s.runDigestAt(context.Background(), time.Date(2026, 7, 1, 23, 0, 0, 0, time.UTC))

	assert.Empty(t, notifier.calls)
}

func TestDigestSkipsWrongHourAndMutedUsers(t *testing.T) {
	s, notifier, db := newTestScheduler(t, Config{StartHour: 8, EndHour: 22})
	at := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	// Preferred hour does not match the current hour.
	seedUserWithDue(t, db,
		models.User{Name: "alice", DailyCapacity: 50, DigestHour: 9, DigestEnabled: true},
		2, at.Add(-time.Hour))
	// Digest disabled entirely.
	seedUserWithDue(t, db,
		models.User{Name: "bob", DailyCapacity: 50, DigestHour: 10, DigestEnabled: false},
		2, at.Add(-time.Hour))

	s.runDigestAt(context.Background(), at)

	assert.Empty(t, notifier.calls)
}

func TestDigestCapsCountAtDailyCapacity(t *testing.T) {
	s, notifier, db := newTestScheduler(t, Config{StartHour: 8, EndHour: 22})
	at := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	seedUserWithDue(t, db,
		models.User{Name: "alice", DailyCapacity: 2, DigestHour: 9, DigestEnabled: true},
		5, at.Add(-time.Hour))

	s.runDigestAt(context.Background(), at)

	require.Len(t, notifier.calls, 1)
	assert.Equal(t, 2, notifier.calls[0].dueCount)
}

func TestDigestSkipsUsersWithNothingDue(t *testing.T) {
	s, notifier, db := newTestScheduler(t, Config{StartHour: 8, EndHour: 22})
	at := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	seedUserWithDue(t, db,
		models.User{Name: "alice", DailyCapacity: 50, DigestHour: 9, DigestEnabled: true},
		0, at)

	s.runDigestAt(context.Background(), at)

	assert.Empty(t, notifier.calls)
}

func TestRunManualCheckIgnoresWindow(t *testing.T) {
	s, notifier, db := newTestScheduler(t, Config{StartHour: 8, EndHour: 22})
	userID := seedUserWithDue(t, db,
		models.User{Name: "alice", DailyCapacity: 50, DigestHour: 3, DigestEnabled: true},
		2, time.Now().UTC().Add(-time.Hour))

	require.NoError(t, s.RunManualCheck(context.Background(), userID))

	require.Len(t, notifier.calls, 1)
	assert.Equal(t, 2, notifier.calls[0].dueCount)
}
