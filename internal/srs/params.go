// Package srs implements the adaptive memory model and scheduling state
// machine: an FSRS-style difficulty/stability update driven by an
// exponential-decay retention curve.
//
// Everything in this package is pure: Advance and the curve functions
// are deterministic in their inputs, so the same (state, rating, now)
// always yields the same next state. Persistence, randomized interval
// smoothing, and logging happen in the layers above.
package srs

import (
	"fmt"
	"time"

	"github.com/example/recall/pkg/models"
)

// Params holds every tunable constant of the engine. All scheduling
// behavior flows through an explicit Params value; there is no ambient
// configuration.
type Params struct {
	// DesiredRetention is the target retrievability used to invert the
	// decay curve into the next interval.
	DesiredRetention float64 `toml:"desired_retention"`
	// MaxIntervalDays caps every computed interval.
	MaxIntervalDays float64 `toml:"max_interval_days"`

	// ReferenceRetention is R0 per rating: the retention achieved
	// immediately after the review that produced the current stability.
	// Indexed by models.Rating; index 0 is unused.
	ReferenceRetention [5]float64 `toml:"reference_retention"`

	// InitialStability seeds stability on graduation out of New,
	// per graduating rating. Indexed by models.Rating; index 0 unused.
	InitialStability [5]float64 `toml:"initial_stability"`

	// New-state re-presentation steps. New is the only state measured
	// in minutes rather than days.
	NewStepAgain time.Duration `toml:"new_step_again"`
	NewStepHard  time.Duration `toml:"new_step_hard"`
	NewStepGood  time.Duration `toml:"new_step_good"`

	// NewStateCap is the safety valve: after this many reviews without
	// graduating, a New item is forced into Review so it can never loop
	// in New indefinitely.
	NewStateCap int `toml:"new_state_cap"`

	// GraduationStability is the stability threshold at which a
	// Learning or Relearning item graduates to Review.
	GraduationStability float64 `toml:"graduation_stability"`
	// MatureStability gates the Review -> Relearning transition: only a
	// lapse on an item at least this stable demotes it to Relearning.
	MatureStability float64 `toml:"mature_stability"`
	// LapseStabilityFloor is the minimum stability granted by the New
	// safety valve and the lapse-recovery collapse.
	LapseStabilityFloor float64 `toml:"lapse_stability_floor"`

	// Difficulty update weights.
	DifficultyStep float64 `toml:"difficulty_step"` // Per-rating step toward harder/easier.
	MeanReversion  float64 `toml:"mean_reversion"`  // Pull toward the midpoint difficulty.

	// Stability growth weights (successful reviews).
	GrowthRate         float64 `toml:"growth_rate"`         // Overall multiplicative gain scale.
	StabilityDecay     float64 `toml:"stability_decay"`     // Gain shrinks as S^-decay for stable items.
	RetrievabilityGain float64 `toml:"retrievability_gain"` // Gain grows as retrievability drops.
	HardPenalty        float64 `toml:"hard_penalty"`
	EasyBonus          float64 `toml:"easy_bonus"`

	// Lapse collapse weights (Again on a graduated item).
	LapseMultiplier float64 `toml:"lapse_multiplier"`
	LapseExponent   float64 `toml:"lapse_exponent"`
}

// DefaultParams returns the stock engine tuning.
func DefaultParams() Params {
	return Params{
		DesiredRetention:   0.9,
		MaxIntervalDays:    365,
		ReferenceRetention: [5]float64{0, 0.60, 0.80, 0.90, 0.95},
		InitialStability:   [5]float64{0, 0.5, 1.2, 3.0, 7.0},
		NewStepAgain:       1 * time.Minute,
		NewStepHard:        5 * time.Minute,
		NewStepGood:        10 * time.Minute,
		NewStateCap:        10,

		GraduationStability: 2.0,
		MatureStability:     21.0,
		LapseStabilityFloor: 1.0,

		DifficultyStep: 0.8,
		MeanReversion:  0.05,

		GrowthRate:         3.0,
		StabilityDecay:     0.2,
		RetrievabilityGain: 1.0,
		HardPenalty:        0.6,
		EasyBonus:          1.4,

		LapseMultiplier: 0.5,
		LapseExponent:   0.5,
	}
}

// Validate checks that p describes a usable engine.
func (p Params) Validate() error {
	if p.DesiredRetention <= 0 || p.DesiredRetention >= 1 {
		return fmt.Errorf("desired retention %f out of range (0, 1)", p.DesiredRetention)
	}
	if p.MaxIntervalDays < 1 {
		return fmt.Errorf("max interval %f must be at least one day", p.MaxIntervalDays)
	}
	if p.NewStateCap < 1 {
		return fmt.Errorf("new state cap %d must be positive", p.NewStateCap)
	}
	for r := models.Again; r <= models.Easy; r++ {
		if rr := p.ReferenceRetention[r]; rr <= 0 || rr > 1 {
			return fmt.Errorf("reference retention for %s is %f, want (0, 1]", r, rr)
		}
		if s := p.InitialStability[r]; s <= 0 {
			return fmt.Errorf("initial stability for %s is %f, want > 0", r, s)
		}
	}
	if p.GraduationStability <= 0 || p.MatureStability <= 0 || p.LapseStabilityFloor <= 0 {
		return fmt.Errorf("stability thresholds must be positive")
	}
	if p.HardPenalty <= 0 || p.HardPenalty > 1 {
		return fmt.Errorf("hard penalty %f out of range (0, 1]", p.HardPenalty)
	}
	if p.EasyBonus < 1 {
		return fmt.Errorf("easy bonus %f must be at least 1", p.EasyBonus)
	}
	if p.LapseMultiplier <= 0 || p.LapseMultiplier > 1 {
		return fmt.Errorf("lapse multiplier %f out of range (0, 1]", p.LapseMultiplier)
	}
	if p.LapseExponent <= 0 || p.LapseExponent > 1 {
		return fmt.Errorf("lapse exponent %f out of range (0, 1]", p.LapseExponent)
	}
	return nil
}
