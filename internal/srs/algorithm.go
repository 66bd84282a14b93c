package srs

import (
	"math"
	"time"

	"github.com/example/recall/pkg/models"
)

// ln09 is ln(0.9), the decay constant of the retention curve.
var ln09 = math.Log(0.9)

// Retrievability estimates the probability the item is recalled at now:
//
//	R(t) = R0 * 0.9^(t / S)
//
// where R0 is the per-rating reference retention achieved right after the
// last review and S is the current stability in days. Never-reviewed
// items (stability zero) have retrievability zero.
func Retrievability(p Params, st models.MemoryState, now time.Time) float64 {
	return retrievabilityAt(p, st, st.ElapsedSince(now))
}

func retrievabilityAt(p Params, st models.MemoryState, elapsedDays float64) float64 {
	if st.Stability <= 0 {
		return 0
	}
	r0 := referenceRetention(p, st.LastRating)
	r := r0 * math.Pow(0.9, elapsedDays/st.Stability)
	return clamp01(r)
}

// MemoryPower is the 0-100 progress score collaborators display. It is
// the retention curve evaluated at the current elapsed time; the
// scheduler itself never reads it.
func MemoryPower(p Params, st models.MemoryState, now time.Time) float64 {
	return 100 * Retrievability(p, st, now)
}

func referenceRetention(p Params, last models.Rating) float64 {
	if !last.IsValid() {
		// No review history yet: fall back to the Good reference.
		return p.ReferenceRetention[models.Good]
	}
	return p.ReferenceRetention[last]
}

// rawIntervalDays inverts the decay term for the configured target:
// solve target = 0.9^(ivl/S) for ivl. The per-rating R0 shifts where the
// curve starts but not the due-date math.
func rawIntervalDays(p Params, stability float64) float64 {
	if stability <= 0 {
		return 0
	}
	ivl := stability * math.Log(p.DesiredRetention) / ln09
	return math.Min(ivl, p.MaxIntervalDays)
}

// nextDifficulty moves difficulty toward the rating's target with linear
// damping, then applies a small mean reversion toward the midpoint so
// one-off ratings cannot pin an item at the extremes. Result is clamped
// to [1, 10].
func nextDifficulty(p Params, difficulty float64, rating models.Rating) float64 {
	delta := p.DifficultyStep * (float64(models.Good) - float64(rating))
	damped := difficulty + (10-difficulty)*delta/9
	reverted := p.MeanReversion*models.DefaultDifficulty + (1-p.MeanReversion)*damped
	return clampDifficulty(reverted)
}

// nextRecallStability grows stability after a successful recall. The
// gain shrinks for hard items (low 11-D headroom), for already-stable
// items (S^-decay), and for reviews taken while the item was still
// highly retrievable (early reviews earn less). Success never shrinks
// stability: the multiplier is floored at 1.
func nextRecallStability(p Params, difficulty, stability, retrievability float64, rating models.Rating) float64 {
	if stability <= 0 {
		if !rating.IsValid() {
			rating = models.Good
		}
		return p.InitialStability[rating]
	}
	bonus := 1.0
	switch rating {
	case models.Hard:
		bonus = p.HardPenalty
	case models.Easy:
		bonus = p.EasyBonus
	}
	gain := p.GrowthRate *
		(11 - difficulty) / 10 *
		math.Pow(stability, -p.StabilityDecay) *
		(math.Exp(p.RetrievabilityGain*(1-retrievability)) - 1) *
		bonus
	factor := math.Max(1+gain, 1.0)
	return clampStability(stability * factor)
}

// nextForgetStability collapses stability after a lapse toward the
// recovery floor. The result never exceeds the previous stability.
func nextForgetStability(p Params, stability float64) float64 {
	if stability <= 0 {
		return 0
	}
	recovered := p.LapseMultiplier * math.Pow(stability, p.LapseExponent)
	recovered = math.Max(recovered, p.LapseStabilityFloor)
	return clampStability(math.Min(stability, recovered))
}

// clampStability keeps stability in valid domain bounds. Negative or NaN
// values are defects upstream; they are clamped rather than persisted.
func clampStability(s float64) float64 {
	if math.IsNaN(s) || s < 0 {
		return 0
	}
	return s
}

func clampDifficulty(d float64) float64 {
	if math.IsNaN(d) {
		return models.DefaultDifficulty
	}
	return math.Min(math.Max(d, 1), 10)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
