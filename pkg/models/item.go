package models

import "time"

// Item is a learning item (flashcard face, quiz prompt, typing target).
// Content authoring happens outside the engine; items exist here so the
// scheduler can refuse interactions against unknown ids.
type Item struct {
	ID        int64     `json:"id" db:"id"`
	Prompt    string    `json:"prompt" db:"prompt"`
	Answer    string    `json:"answer" db:"answer"`
	Topic     string    `json:"topic" db:"topic"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
