package srs

import (
	"time"

	"github.com/example/recall/pkg/models"
)

// minuteDays converts a duration to fractional days.
func minuteDays(d time.Duration) float64 {
	return d.Hours() / 24.0
}

// Advance applies one rated review to a memory state and returns the
// next state together with the raw next interval in days. The raw
// interval has not been fuzzed or load-balanced; New-state intervals are
// minute-scale fractions of a day.
//
// Advance is a pure function of (p, st, rating, now): it never touches
// Due, LastReview or ScheduledDays, which are owned by the caller after
// interval smoothing.
func Advance(p Params, st models.MemoryState, rating models.Rating, now time.Time) (models.MemoryState, float64) {
	next := st
	next.ElapsedDays = st.ElapsedSince(now)

	var raw float64
	switch st.State {
	case models.StateNew:
		raw = advanceNew(p, &next, rating)
	case models.StateLearning, models.StateRelearning:
		raw = advanceLearning(p, &next, rating)
	default:
		raw = advanceReview(p, &next, rating)
	}

	next.LastRating = rating
	next.Stability = clampStability(next.Stability)
	if raw > p.MaxIntervalDays {
		raw = p.MaxIntervalDays
	}
	return next, raw
}

// advanceNew handles the minute-scale New state. Again re-presents
// almost immediately and resets the streak; Hard/Good re-present within
// minutes; Easy graduates straight to Learning. Every pass through here
// counts against the safety-valve cap, so an item can never loop in New
// forever regardless of the rating sequence.
func advanceNew(p Params, next *models.MemoryState, rating models.Rating) float64 {
	next.Reps++

	var raw float64
	switch rating {
	case models.Again:
		next.Streak = 0
		raw = minuteDays(p.NewStepAgain)
	case models.Hard:
		next.Streak++
		raw = minuteDays(p.NewStepHard)
	case models.Good:
		next.Streak++
		raw = minuteDays(p.NewStepGood)
	default: // Easy
		next.Streak++
		next.State = models.StateLearning
		next.Stability = p.InitialStability[models.Easy]
		next.Difficulty = nextDifficulty(p, next.Difficulty, rating)
		return dayFloor(rawIntervalDays(p, next.Stability))
	}

	if next.Reps >= p.NewStateCap {
		// Safety valve: force graduation with a conservative floor and
		// the difficulty nudged toward hard.
		next.State = models.StateReview
		next.Stability = p.LapseStabilityFloor
		next.Difficulty = nextDifficulty(p, next.Difficulty, models.Hard)
		return dayFloor(rawIntervalDays(p, next.Stability))
	}
	return raw
}

// advanceLearning handles Learning and Relearning, both day-scale.
// A successful rating updates the memory model and graduates to Review
// once stability crosses the graduation threshold; Again keeps the item
// in place on the shortest day-scale step.
func advanceLearning(p Params, next *models.MemoryState, rating models.Rating) float64 {
	next.Reps++
	next.Difficulty = nextDifficulty(p, next.Difficulty, rating)

	if rating == models.Again {
		next.Streak = 0
		if next.State == models.StateRelearning {
			next.Lapses++
		}
		next.Stability = nextForgetStability(p, next.Stability)
		return 1.0
	}

	next.Streak++
	r := retrievabilityAt(p, *next, next.ElapsedDays)
	next.Stability = nextRecallStability(p, next.Difficulty, next.Stability, r, rating)

	if next.Stability >= p.GraduationStability {
		next.State = models.StateReview
	}
	return dayFloor(rawIntervalDays(p, next.Stability))
}

// advanceReview handles the steady state. Success grows stability via
// the recall rule; Again collapses it and, on a mature item, demotes to
// Relearning.
func advanceReview(p Params, next *models.MemoryState, rating models.Rating) float64 {
	next.Reps++
	matureBefore := next.Stability > p.MatureStability

	// Early-review handling: retrievability comes from the actual
	// elapsed time, so reviewing ahead of schedule earns less gain.
	r := retrievabilityAt(p, *next, next.ElapsedDays)
	next.Difficulty = nextDifficulty(p, next.Difficulty, rating)

	if rating == models.Again {
		next.Streak = 0
		next.Lapses++
		next.Stability = nextForgetStability(p, next.Stability)
		if matureBefore {
			next.State = models.StateRelearning
			return 1.0
		}
		return dayFloor(rawIntervalDays(p, next.Stability))
	}

	next.Streak++
	next.Stability = nextRecallStability(p, next.Difficulty, next.Stability, r, rating)
	return dayFloor(rawIntervalDays(p, next.Stability))
}

// dayFloor enforces the day-scale minimum granularity outside New.
func dayFloor(days float64) float64 {
	if days < 1 {
		return 1
	}
	return days
}
