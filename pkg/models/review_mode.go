package models

// ReviewMode identifies the exercise type that produced an answer.
// Each mode supplies a different evidence shape; all of them are
// normalized to the same canonical Rating before scheduling.
type ReviewMode string

const (
	// ModeFlashcard is a self-assessed flashcard flip with an explicit
	// 0-5 quality rating.
	ModeFlashcard ReviewMode = "flashcard"
	// ModeQuiz is a multiple-choice question: binary correctness plus latency.
	ModeQuiz ReviewMode = "quiz"
	// ModeTyping is a typed-answer exercise: target text, user text, latency.
	ModeTyping ReviewMode = "typing"
	// ModeMatching is a pair-matching drill: binary correctness plus latency.
	ModeMatching ReviewMode = "matching"
	// ModeListening is an audio comprehension drill: binary correctness plus latency.
	ModeListening ReviewMode = "listening"
	// ModeSpeedReview is a timed rapid-fire drill: binary correctness plus latency.
	ModeSpeedReview ReviewMode = "speed_review"
)

// IsValid reports whether m is one of the known review modes.
func (m ReviewMode) IsValid() bool {
	switch m {
	case ModeFlashcard, ModeQuiz, ModeTyping, ModeMatching, ModeListening, ModeSpeedReview:
		return true
	}
	return false
}
