package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding"
	"encoding/json"
	"fmt"
)

// Rating is the canonical 4-level answer rating every review mode is
// normalized to. The order is total: Again < Hard < Good < Easy.
type Rating int

const (
	Again Rating = iota + 1 // Failed to recall.
	Hard                    // Recalled with significant difficulty, or a near-miss.
	Good                    // Recalled with some effort.
	Easy                    // Recalled quickly and cleanly.
)

var (
	ratingNames = [...]string{Again: "Again", Hard: "Hard", Good: "Good", Easy: "Easy"}

	ratingByName = map[string]Rating{
		"Again": Again,
		"Hard":  Hard,
		"Good":  Good,
		"Easy":  Easy,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = Rating(0)
	_ json.Marshaler           = Rating(0)
	_ json.Unmarshaler         = (*Rating)(nil)
	_ encoding.TextMarshaler   = Rating(0)
	_ encoding.TextUnmarshaler = (*Rating)(nil)
	_ driver.Valuer            = Rating(0)
	_ sql.Scanner              = (*Rating)(nil)
)

// IsValid reports whether r is a valid rating (Again through Easy).
func (r Rating) IsValid() bool {
	return r >= Again && r <= Easy
}

// String returns the name of the rating ("Again", "Hard", "Good", "Easy").
// For invalid values it returns "Rating(n)".
func (r Rating) String() string {
	if r.IsValid() {
		return ratingNames[r]
	}
	return fmt.Sprintf("Rating(%d)", int(r))
}

// Correct reports whether the rating counts as a correct answer in
// aggregate statistics. Only Again is incorrect; Hard is a successful
// (if strained) recall and is never double-counted into both buckets.
func (r Rating) Correct() bool {
	return r >= Hard
}

// Urgent reports whether the rating marks an at-risk item whose due date
// must never be deferred by load shedding.
func (r Rating) Urgent() bool {
	return r == Again || r == Hard
}

// MarshalText implements encoding.TextMarshaler.
func (r Rating) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("invalid rating: %d", int(r))
	}
	return []byte(ratingNames[r]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rating) UnmarshalText(text []byte) error {
	v, ok := ratingByName[string(text)]
	if !ok {
		return fmt.Errorf("invalid rating: %q", text)
	}
	*r = v
	return nil
}

// MarshalJSON implements json.Marshaler. Rating serializes as a JSON string.
func (r Rating) MarshalJSON() ([]byte, error) {
	text, err := r.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (r *Rating) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid rating: %s", data)
	}
	return r.UnmarshalText([]byte(s))
}

// Value implements driver.Valuer. Ratings are stored as their text names;
// the zero Rating (no review yet) is stored as NULL.
func (r Rating) Value() (driver.Value, error) {
	if r == 0 {
		return nil, nil
	}
	text, err := r.MarshalText()
	if err != nil {
		return nil, err
	}
	return string(text), nil
}

// Scan implements sql.Scanner.
func (r *Rating) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*r = 0
		return nil
	case string:
		return r.UnmarshalText([]byte(v))
	case []byte:
		return r.UnmarshalText(v)
	case int64:
		*r = Rating(v)
		if !r.IsValid() {
			return fmt.Errorf("invalid rating: %d", v)
		}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Rating", src)
	}
}
