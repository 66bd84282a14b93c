package models

import "time"

// User holds the per-user scheduling preferences the engine reads.
// Authentication and profile data live outside the engine.
type User struct {
	ID            int64     `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	DailyCapacity int       `json:"daily_capacity" db:"daily_capacity"` // Review-load threshold for load shedding.
	DigestHour    int       `json:"digest_hour" db:"digest_hour"`       // Hour of day for reminders (0-23).
	DigestEnabled bool      `json:"digest_enabled" db:"digest_enabled"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
