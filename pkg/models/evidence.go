package models

// Evidence carries the raw answer signal for one interaction. Which
// fields are meaningful depends on the review mode:
//
//   - flashcard: Quality (explicit 0-5 self-assessment)
//   - quiz, matching, listening, speed_review: IsCorrect + DurationMs
//   - typing: TargetText + UserText + DurationMs
//
// Missing or malformed fields never fail an interaction; normalization
// degrades to the most conservative rating instead.
type Evidence struct {
	Quality    *int   `json:"quality,omitempty"`
	IsCorrect  *bool  `json:"is_correct,omitempty"`
	TargetText string `json:"target_text,omitempty"`
	UserText   string `json:"user_text,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
}
