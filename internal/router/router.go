// Package router assigns a token to a dual-track evaluation lane based on
// age, and gates it against that track's signal requirements.
package router

import (
	"github.com/sawpanic/memescan/internal/model"
)

// Decision is the outcome of routing a token: either a track assignment
// that still needs to clear its per-track gate, or an outright reject
// for being too young to evaluate at all.
type Decision struct {
	TooEarly bool
	Track    model.Track
}

// Router assigns tokens to PROVEN_RUNNER or EARLY_QUALITY by age; the
// [45, 90) transition zone routes to PROVEN_RUNNER like any older token.
type Router struct{}

func New() *Router { return &Router{} }

const (
	tooEarlyCutoffMinutes  = 2
	earlyQualityCapMinutes = 45
	provenRunnerCutoff     = 90
)

// Route returns the age-based track assignment. Tokens younger than 2
// minutes are TooEarly and never reach scoring. From 45 minutes onward
// (including the [45, 90) transition zone) a token routes to
// PROVEN_RUNNER under its standard gate; the strict age cutoff was
// found empirically too exclusionary, so the transition zone is folded
// into PROVEN_RUNNER rather than given its own relaxed track.
func (r *Router) Route(m *model.TokenMetrics) Decision {
	age := m.TokenAgeMinutes
	if age < tooEarlyCutoffMinutes {
		return Decision{TooEarly: true}
	}
	if age >= earlyQualityCapMinutes {
		return Decision{Track: model.TrackProvenRunner}
	}
	return Decision{Track: model.TrackEarlyQuality}
}

// InTransitionZone reports whether age falls within [45, 90) minutes,
// where PROVEN_RUNNER applies with standard (non-relaxed) requirements.
func (r *Router) InTransitionZone(m *model.TokenMetrics) bool {
	age := m.TokenAgeMinutes
	return age >= earlyQualityCapMinutes && age < provenRunnerCutoff
}

// GateProvenRunner reports whether holderGrowthRate (holders per minute)
// clears the PROVEN_RUNNER track's requirement: sustained positive
// holder growth. Learning mode relaxes the floor to 0 so flat growth
// still passes and more outcomes get collected.
func GateProvenRunner(holderGrowthRate float64, learningMode bool) bool {
	floor := 0.01
	if learningMode {
		floor = 0
	}
	return holderGrowthRate >= floor
}

// GateEarlyQuality reports whether m clears the EARLY_QUALITY track's
// requirement: a minimum safety score and a maximum bundle risk score.
// Learning mode relaxes both bars.
func GateEarlyQuality(safetyScore, bundleRiskScore float64, learningMode bool) bool {
	minSafety := 50.0
	maxBundleRisk := 55.0
	if learningMode {
		minSafety = 35.0
		maxBundleRisk = 70.0
	}
	return safetyScore >= minSafety && bundleRiskScore <= maxBundleRisk
}
