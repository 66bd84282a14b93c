package balance

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/recall/pkg/models"
)

func seeded(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func TestFuzzShortIntervalsUntouched(t *testing.T) {
	b := New(seeded(1), 50)
	for _, raw := range []float64{0.001, 0.5, 1, 2, 2.9, 3} {
		for i := 0; i < 100; i++ {
			assert.Equal(t, raw, b.Fuzz(raw), "interval %f must never be perturbed", raw)
		}
	}
}

func TestFuzzLongIntervalsBoundedSpread(t *testing.T) {
	b := New(seeded(42), 50)
	const raw = 30.0
	const n = 2000

	var sum, sumSq float64
	for i := 0; i < n; i++ {
		got := b.Fuzz(raw)
		assert.GreaterOrEqual(t, got, raw*0.95-1e-9)
		assert.LessOrEqual(t, got, raw*1.05+1e-9)
		sum += got
		sumSq += got * got
	}

	mean := sum / n
	stddev := math.Sqrt(sumSq/n - mean*mean)
	assert.Less(t, stddev, raw*0.05, "spread wider than the jitter band allows")
	assert.Greater(t, stddev, 0.1, "no spread at all: jitter not applied")
}

func TestFuzzFloorsAtThreshold(t *testing.T) {
	b := New(seeded(7), 50)
	// Just above the threshold the 0.95 factor could dip below it;
	// the floor holds at three days.
	for i := 0; i < 1000; i++ {
		got := b.Fuzz(3.05)
		assert.GreaterOrEqual(t, got, 3.0)
	}
}

func TestShedOnlyOverCapacity(t *testing.T) {
	b := New(seeded(3), 10)

	assert.Zero(t, b.Shed(7, models.Good, 5))
	assert.Zero(t, b.Shed(7, models.Good, 10)) // at capacity, not over
	assert.NotZero(t, b.Shed(7, models.Good, 11))
}

func TestShedNeverDefersUrgentRatings(t *testing.T) {
	b := New(seeded(9), 1)
	for i := 0; i < 100; i++ {
		assert.Zero(t, b.Shed(30, models.Again, 1000))
		assert.Zero(t, b.Shed(30, models.Hard, 1000))
	}
}

func TestShedNeverMovesShortIntervals(t *testing.T) {
	// A day shift on a minute- or short-day-scale interval would put
	// the due date before the review that produced it.
	b := New(seeded(15), 1)
	for _, days := range []float64{10.0 / (24 * 60), 0.5, 1, 2.9, 3} {
		for i := 0; i < 50; i++ {
			assert.Zero(t, b.Shed(days, models.Easy, 1000),
				"interval %f must never be shed", days)
		}
	}
}

func TestShedShiftsExactlyOneDay(t *testing.T) {
	b := New(seeded(11), 1)
	sawMinus, sawPlus := false, false
	for i := 0; i < 200; i++ {
		shift := b.Shed(30, models.Easy, 100)
		assert.Contains(t, []int{-1, 1}, shift)
		if shift == -1 {
			sawMinus = true
		} else {
			sawPlus = true
		}
	}
	assert.True(t, sawMinus, "never shifted backward")
	assert.True(t, sawPlus, "never shifted forward")
}

func TestShedDisabledCapacity(t *testing.T) {
	b := New(seeded(5), 0)
	assert.Zero(t, b.Shed(30, models.Easy, 1000000))
}

func TestSmoothShortIntervalDeterministic(t *testing.T) {
	b := New(seeded(13), 50)
	last := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	want := last.Add(48 * time.Hour)
	for i := 0; i < 50; i++ {
		assert.Equal(t, want, b.Smooth(2.0, models.Good, last, 0))
	}
}

func TestSmoothAppliesShedding(t *testing.T) {
	last := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	// Over capacity with a safe rating: due moves by exactly one day
	// relative to the unshifted result under the same random stream.
	base := New(seeded(21), 0).Smooth(30.0, models.Good, last, 100)
	shed := New(seeded(21), 10).Smooth(30.0, models.Good, last, 100)
	diff := shed.Sub(base)
	assert.Contains(t, []time.Duration{-24 * time.Hour, 24 * time.Hour}, diff)

	// Urgent ratings are never moved even over capacity.
	urgent := New(seeded(21), 10).Smooth(30.0, models.Again, last, 100)
	assert.Equal(t, base, urgent)
}
