package models

import "time"

// MemorySnapshot is the scheduling-relevant projection of a MemoryState,
// embedded twice in every log entry (before and after the transition).
type MemorySnapshot struct {
	State         State   `json:"state" db:"state"`
	Difficulty    float64 `json:"difficulty" db:"difficulty"`
	Stability     float64 `json:"stability" db:"stability"`
	Reps          int     `json:"reps" db:"reps"`
	Lapses        int     `json:"lapses" db:"lapses"`
	ScheduledDays float64 `json:"scheduled_days" db:"scheduled_days"`
	ElapsedDays   float64 `json:"elapsed_days" db:"elapsed_days"`
}

// Snapshot extracts the loggable projection of a memory state.
func (m MemoryState) Snapshot() MemorySnapshot {
	return MemorySnapshot{
		State:         m.State,
		Difficulty:    m.Difficulty,
		Stability:     m.Stability,
		Reps:          m.Reps,
		Lapses:        m.Lapses,
		ScheduledDays: m.ScheduledDays,
		ElapsedDays:   m.ElapsedDays,
	}
}

// ReviewLogEntry is the immutable audit record of one answer event.
// Entries are append-only: the engine never mutates or deletes them, and
// aggregate statistics are rebuilt exclusively from this table.
type ReviewLogEntry struct {
	ID         int64      `json:"id" db:"id"`
	UserID     int64      `json:"user_id" db:"user_id"`
	ItemID     int64      `json:"item_id" db:"item_id"`
	SessionID  string     `json:"session_id" db:"session_id"`
	Mode       ReviewMode `json:"mode" db:"mode"`
	Rating     Rating     `json:"rating" db:"rating"`
	ReviewedAt time.Time  `json:"reviewed_at" db:"reviewed_at"`

	// Raw answer evidence, preserved verbatim for audit.
	Quality    *int   `json:"quality" db:"quality"`
	IsCorrect  *bool  `json:"is_correct" db:"is_correct"`
	TargetText string `json:"target_text" db:"target_text"`
	UserText   string `json:"user_text" db:"user_text"`
	DurationMs int64  `json:"duration_ms" db:"duration_ms"`

	Before MemorySnapshot `json:"before" db:"before"`
	After  MemorySnapshot `json:"after" db:"after"`
}
