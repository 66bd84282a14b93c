package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding"
	"encoding/json"
	"fmt"
)

// State represents the lifecycle stage of a memory state.
type State int

const (
	StateNew        State = iota + 1 // Never graduated; scheduled in minutes, not days.
	StateLearning                    // Initial day-scale learning.
	StateReview                      // Steady-state long-term review cycle.
	StateRelearning                  // Lapsed mature item being re-learned.
)

var (
	stateNames = [...]string{
		StateNew:        "New",
		StateLearning:   "Learning",
		StateReview:     "Review",
		StateRelearning: "Relearning",
	}

	stateByName = map[string]State{
		"New":        StateNew,
		"Learning":   StateLearning,
		"Review":     StateReview,
		"Relearning": StateRelearning,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = State(0)
	_ json.Marshaler           = State(0)
	_ json.Unmarshaler         = (*State)(nil)
	_ encoding.TextMarshaler   = State(0)
	_ encoding.TextUnmarshaler = (*State)(nil)
	_ driver.Valuer            = State(0)
	_ sql.Scanner              = (*State)(nil)
)

// IsValid reports whether s is a valid lifecycle state.
func (s State) IsValid() bool {
	return s >= StateNew && s <= StateRelearning
}

// String returns the name of the state. For invalid values it returns "State(n)".
func (s State) String() string {
	if s.IsValid() {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid state: %d", int(s))
	}
	return []byte(stateNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	v, ok := stateByName[string(text)]
	if !ok {
		return fmt.Errorf("invalid state: %q", text)
	}
	*s = v
	return nil
}

// MarshalJSON implements json.Marshaler. State serializes as a JSON string.
func (s State) MarshalJSON() ([]byte, error) {
	text, err := s.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (s *State) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("invalid state: %s", data)
	}
	return s.UnmarshalText([]byte(str))
}

// Value implements driver.Valuer. States are stored as their text names.
func (s State) Value() (driver.Value, error) {
	text, err := s.MarshalText()
	if err != nil {
		return nil, err
	}
	return string(text), nil
}

// Scan implements sql.Scanner.
func (s *State) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return s.UnmarshalText([]byte(v))
	case []byte:
		return s.UnmarshalText(v)
	case int64:
		*s = State(v)
		if !s.IsValid() {
			return fmt.Errorf("invalid state: %d", v)
		}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into State", src)
	}
}
