// Package balance smooths raw review intervals so future review days do
// not clump: long intervals receive bounded random jitter, and days over
// capacity shed non-urgent items to an adjacent day.
package balance

import (
	"math/rand"
	"time"

	"github.com/example/recall/pkg/models"
)

const (
	// fuzzThresholdDays is the interval below which no perturbation is
	// ever applied; jitter on short intervals would meaningfully distort
	// learning timing.
	fuzzThresholdDays = 3.0
	// fuzzSpread is the half-width of the multiplicative jitter band.
	fuzzSpread = 0.05
)

// Balancer perturbs and redistributes raw intervals. The random source
// is injected so tests can pin its behavior with a seed.
type Balancer struct {
	rng           *rand.Rand
	dailyCapacity int
}

// New creates a Balancer. A nil rng falls back to a time-seeded source;
// a non-positive capacity disables load shedding.
func New(rng *rand.Rand, dailyCapacity int) *Balancer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Balancer{rng: rng, dailyCapacity: dailyCapacity}
}

// Fuzz applies bounded multiplicative jitter to a raw interval.
// Intervals of at most three days pass through untouched; longer ones
// are scaled by a uniform factor in [0.95, 1.05] and floored at three
// days so jitter can never pull a long interval into short-term range.
func (b *Balancer) Fuzz(rawDays float64) float64 {
	if rawDays <= fuzzThresholdDays {
		return rawDays
	}
	factor := 1 - fuzzSpread + b.rng.Float64()*2*fuzzSpread
	fuzzed := rawDays * factor
	if fuzzed < fuzzThresholdDays {
		fuzzed = fuzzThresholdDays
	}
	return fuzzed
}

// Shed decides whether an over-capacity day may push this review to an
// adjacent day. Only Good/Easy reviews are ever deferred: Again/Hard
// mark at-risk items whose timing must not be compromised. Short
// candidate intervals are never shed either: shifting a minute-scale
// step by a day would land the due date before the review itself. The
// shift is exactly one day, direction uniform at random.
func (b *Balancer) Shed(intervalDays float64, rating models.Rating, dueCount int) int {
	if intervalDays <= fuzzThresholdDays {
		return 0
	}
	if b.dailyCapacity <= 0 || dueCount <= b.dailyCapacity {
		return 0
	}
	if rating.Urgent() {
		return 0
	}
	if b.rng.Intn(2) == 0 {
		return -1
	}
	return 1
}

// Smooth converts a raw interval into the final due date: jitter first,
// then capacity-based shedding against the count of items already due on
// the candidate day.
func (b *Balancer) Smooth(rawDays float64, rating models.Rating, lastReview time.Time, dueCount int) time.Time {
	days := b.Fuzz(rawDays)
	due := lastReview.Add(time.Duration(days * 24 * float64(time.Hour)))
	if shift := b.Shed(days, rating, dueCount); shift != 0 {
		due = due.AddDate(0, 0, shift)
	}
	return due
}
