// Package precision implements the scale→tier decision function with
// cooldown hysteresis (SPEC_FULL.md §4.5).
//
// Grounded on internal/tile/zoom.go's AutoZoomRange: a small pure threshold
// function over a continuous input, not a stateful strategy object.
package precision

import "time"

// Tier is one of the four precision variants. Represented as a tagged
// union (a small closed enum), not via interface/virtual dispatch, per
// spec §9's "dynamic dispatch" design note.
type Tier uint8

const (
	TierStandard Tier = iota
	TierDD
	TierPerturbation
	TierArbitrary
)

func (t Tier) String() string {
	switch t {
	case TierStandard:
		return "standard"
	case TierDD:
		return "dd"
	case TierPerturbation:
		return "perturbation"
	case TierArbitrary:
		return "arbitrary"
	default:
		return "unknown"
	}
}

// Thresholds holds the tunable scale boundaries between tiers (config
// §6's dd_threshold/perturbation_threshold/arbitrary_threshold).
type Thresholds struct {
	DD           float64 // scale below which DD direct kicks in (default 5e-6)
	Perturbation float64 // scale below which perturbation kicks in (default 1e-10)
	Arbitrary    float64 // scale below which perturbation uses a BigFixed-sized orbit (default 1e-14)
}

// DefaultThresholds matches the table in spec §4.5.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DD:           5e-6,
		Perturbation: 1e-10,
		Arbitrary:    1e-14,
	}
}

func (th Thresholds) tierForScale(scale float64) Tier {
	switch {
	case scale >= th.DD:
		return TierStandard
	case scale >= th.Perturbation:
		return TierDD
	case scale >= th.Arbitrary:
		return TierPerturbation
	default:
		return TierArbitrary
	}
}

// Selector is a pure decision function with a cooldown against flicker near
// tier boundaries (spec §4.5).
type Selector struct {
	Thresholds Thresholds
	Cooldown   time.Duration // default ~100ms

	lastTier      Tier
	lastChangeAt  time.Time
	hasLastChange bool
	forced        *Tier // set by ForceTier, cleared by ClearForce
}

// NewSelector builds a Selector with the given thresholds and cooldown.
func NewSelector(th Thresholds, cooldown time.Duration) *Selector {
	if cooldown <= 0 {
		cooldown = 100 * time.Millisecond
	}
	return &Selector{Thresholds: th, Cooldown: cooldown}
}

// Select returns the tier for the given scale at time now, suppressing a
// proposed tier change if the previous change happened within the cooldown
// window. The very first call is never suppressed.
//
// ForceTier overrides this decision for debug/manual-override use (spec §9
// open question): it still only selects among the four tiers and never
// bypasses glitch handling, which lives entirely in internal/perturb.
func (s *Selector) Select(scale float64, now time.Time) Tier {
	if s.forced != nil {
		return *s.forced
	}

	proposed := s.Thresholds.tierForScale(scale)

	if !s.hasLastChange {
		s.lastTier = proposed
		s.lastChangeAt = now
		s.hasLastChange = true
		return proposed
	}

	if proposed == s.lastTier {
		return s.lastTier
	}

	if now.Sub(s.lastChangeAt) < s.Cooldown {
		return s.lastTier // suppressed: too soon after the last change
	}

	s.lastTier = proposed
	s.lastChangeAt = now
	return proposed
}

// ForceTier pins the selector to a specific tier regardless of scale, for
// debug/manual-override affordances. Glitch detection in internal/perturb
// is never skipped by this — only the tier choice is overridden.
func (s *Selector) ForceTier(t Tier) {
	s.forced = &t
}

// ClearForce removes a previous ForceTier override.
func (s *Selector) ClearForce() {
	s.forced = nil
}
