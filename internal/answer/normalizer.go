// Package answer normalizes mode-specific answer evidence into the
// canonical 4-level rating the scheduler consumes.
//
// Normalization is pure and never fails: missing, malformed or
// unrecognized evidence degrades to Again, erring toward more
// repetition rather than false mastery.
package answer

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/example/recall/pkg/models"
)

const (
	// Quiz latency thresholds (milliseconds).
	fastAnswerMs = 3000
	slowAnswerMs = 10000

	// Typing thresholds.
	nearMissSimilarity = 0.8
	fluentWPM          = 40.0

	// Explicit-quality cut points on the 0-5 scale.
	qualityHard = 2
	qualityGood = 3
)

// Normalize maps the evidence for one interaction to a canonical rating.
func Normalize(mode models.ReviewMode, ev models.Evidence) models.Rating {
	switch mode {
	case models.ModeFlashcard:
		return fromQuality(ev.Quality)
	case models.ModeQuiz, models.ModeMatching, models.ModeListening, models.ModeSpeedReview:
		return fromCorrectness(ev.IsCorrect, ev.DurationMs)
	case models.ModeTyping:
		return fromTypedText(ev.TargetText, ev.UserText, ev.DurationMs)
	default:
		return models.Again
	}
}

// fromQuality maps an explicit 0-5 self-assessment. Coarser 3/4-button
// systems arrive pre-mapped to this scale by the presentation layer.
func fromQuality(quality *int) models.Rating {
	if quality == nil {
		return models.Again
	}
	switch q := *quality; {
	case q < qualityHard:
		return models.Again
	case q == qualityHard:
		return models.Hard
	case q == qualityGood:
		return models.Good
	default:
		return models.Easy
	}
}

// fromCorrectness maps binary correctness plus answer latency.
func fromCorrectness(isCorrect *bool, durationMs int64) models.Rating {
	if isCorrect == nil || !*isCorrect {
		return models.Again
	}
	switch {
	case durationMs < fastAnswerMs:
		return models.Easy
	case durationMs <= slowAnswerMs:
		return models.Good
	default:
		return models.Hard
	}
}

// fromTypedText compares trimmed, case-folded text. An exact match rates
// Easy or Good depending on implied typing speed; a near-miss by
// normalized Levenshtein similarity still counts as an attempt (Hard);
// anything further off is Again.
func fromTypedText(target, user string, durationMs int64) models.Rating {
	target = strings.ToLower(strings.TrimSpace(target))
	user = strings.ToLower(strings.TrimSpace(user))
	if target == "" || user == "" {
		return models.Again
	}

	if target == user {
		if wordsPerMinute(target, durationMs) >= fluentWPM {
			return models.Easy
		}
		return models.Good
	}

	if similarity(target, user) >= nearMissSimilarity {
		return models.Hard
	}
	return models.Again
}

// wordsPerMinute derives typing speed from the answer latency using the
// conventional 5-characters-per-word estimate. Missing latency yields
// zero: like every other absent signal here, it degrades toward more
// repetition, so an exact match without timing rates Good, not Easy.
func wordsPerMinute(text string, durationMs int64) float64 {
	if durationMs <= 0 {
		return 0
	}
	words := float64(len([]rune(text))) / 5.0
	return words / (float64(durationMs) / 60000.0)
}

// similarity is 1 - distance/max(len(target), len(user), 1), in [0, 1].
func similarity(target, user string) float64 {
	dist := levenshtein.ComputeDistance(target, user)
	denom := max(len([]rune(target)), len([]rune(user)), 1)
	return 1 - float64(dist)/float64(denom)
}
