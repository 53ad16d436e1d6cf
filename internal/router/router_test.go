package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sawpanic/memescan/internal/model"
)

func TestRouter_Route_TooEarlyUnder2Minutes(t *testing.T) {
	r := New()
	d := r.Route(&model.TokenMetrics{TokenAgeMinutes: 1})
	assert.True(t, d.TooEarly)
}

func TestRouter_Route_EarlyQualityBetween2And45(t *testing.T) {
	r := New()
	d := r.Route(&model.TokenMetrics{TokenAgeMinutes: 20})
	assert.False(t, d.TooEarly)
	assert.Equal(t, model.TrackEarlyQuality, d.Track)
}

func TestRouter_Route_ProvenRunnerAt45AndAbove(t *testing.T) {
	r := New()
	d := r.Route(&model.TokenMetrics{TokenAgeMinutes: 120})
	assert.Equal(t, model.TrackProvenRunner, d.Track)
}

func TestRouter_InTransitionZone(t *testing.T) {
	r := New()
	assert.True(t, r.InTransitionZone(&model.TokenMetrics{TokenAgeMinutes: 60}))
	assert.False(t, r.InTransitionZone(&model.TokenMetrics{TokenAgeMinutes: 30}))
	assert.False(t, r.InTransitionZone(&model.TokenMetrics{TokenAgeMinutes: 90}))
}

func TestGateProvenRunner_ProductionRequiresPositiveGrowth(t *testing.T) {
	assert.False(t, GateProvenRunner(0, false))
	assert.True(t, GateProvenRunner(0.01, false))
}

func TestGateProvenRunner_LearningModeAllowsZero(t *testing.T) {
	assert.True(t, GateProvenRunner(0, true))
}

func TestGateEarlyQuality_ProductionThresholds(t *testing.T) {
	assert.True(t, GateEarlyQuality(50, 55, false))
	assert.False(t, GateEarlyQuality(49, 55, false))
	assert.False(t, GateEarlyQuality(50, 56, false))
}

func TestGateEarlyQuality_LearningModeRelaxesThresholds(t *testing.T) {
	assert.True(t, GateEarlyQuality(35, 70, true))
	assert.False(t, GateEarlyQuality(34, 70, true))
}
