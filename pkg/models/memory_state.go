package models

import "time"

// DefaultDifficulty is the midpoint difficulty assigned to brand-new items.
const DefaultDifficulty = 5.0

// MemoryState tracks the scheduling model for one (user, item) pair.
// There is exactly one row per pair; it is created lazily on first
// interaction and updated in place on every answer.
type MemoryState struct {
	ID            int64      `json:"id" db:"id"`
	UserID        int64      `json:"user_id" db:"user_id"`
	ItemID        int64      `json:"item_id" db:"item_id"`
	State         State      `json:"state" db:"state"`
	Difficulty    float64    `json:"difficulty" db:"difficulty"`         // Intrinsic hardness in [1, 10].
	Stability     float64    `json:"stability" db:"stability"`           // Days until retrievability decays to the reference value.
	Reps          int        `json:"reps" db:"reps"`                     // Completed reviews.
	Lapses        int        `json:"lapses" db:"lapses"`                 // Again ratings on graduated items.
	Streak        int        `json:"streak" db:"streak"`                 // Consecutive successful answers.
	LastRating    Rating     `json:"last_rating" db:"last_rating"`       // Zero before first review.
	ScheduledDays float64    `json:"scheduled_days" db:"scheduled_days"` // Last committed interval.
	ElapsedDays   float64    `json:"elapsed_days" db:"elapsed_days"`     // Actual elapsed time at last review.
	LastReview    *time.Time `json:"last_review" db:"last_review"`       // nil before first review.
	Due           *time.Time `json:"due" db:"due"`                       // nil before first review.
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// NewMemoryState returns the state for an item the user has never seen:
// New, midpoint difficulty, zero stability, no history.
func NewMemoryState(userID, itemID int64) MemoryState {
	return MemoryState{
		UserID:     userID,
		ItemID:     itemID,
		State:      StateNew,
		Difficulty: DefaultDifficulty,
		Stability:  0,
	}
}

// ElapsedSince returns the days elapsed between the last review and now.
// Zero for states with no review history.
func (m MemoryState) ElapsedSince(now time.Time) float64 {
	if m.LastReview == nil {
		return 0
	}
	d := now.Sub(*m.LastReview).Hours() / 24.0
	if d < 0 {
		return 0
	}
	return d
}
