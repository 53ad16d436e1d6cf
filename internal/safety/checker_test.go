package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sawpanic/memescan/internal/model"
)

func TestChecker_PermissiveOnMissingData(t *testing.T) {
	c := NewChecker()
	r := c.Score(nil, 1.0)
	assert.True(t, r.HasFlag(model.FlagDataMissing))
	assert.False(t, r.Block)
	assert.Equal(t, 50, r.SafetyScore)
}

func TestChecker_BlocksOnActiveAuthoritiesPlusHighDeployerHolding(t *testing.T) {
	c := NewChecker()
	r := &model.SafetyReport{
		MintAuthorityRevoked:     false,
		FreezeAuthorityRevoked:   false,
		DeployerHoldingPercent:   45,
		Top10HolderConcentration: 60,
		Flags:                    model.NewSafetyFlags(),
	}
	out := c.Score(r, 1.0)
	assert.True(t, out.Block)
	assert.True(t, out.HasFlag(model.FlagMintActive))
	assert.True(t, out.HasFlag(model.FlagFreezeActive))
	assert.True(t, out.HasFlag(model.FlagHighDeployerHold))
}

func TestChecker_HoneypotHeuristicBlocks(t *testing.T) {
	c := NewChecker()
	r := &model.SafetyReport{
		MintAuthorityRevoked:   true,
		FreezeAuthorityRevoked: true,
		DeployerHoldingPercent: 5,
		Flags:                  model.NewSafetyFlags(),
	}
	out := c.Score(r, 0.05)
	assert.True(t, out.Block)
	assert.True(t, out.HasFlag(model.FlagHoneypotSuspected))
}

func TestChecker_HighScoreWhenClean(t *testing.T) {
	c := NewChecker()
	r := &model.SafetyReport{
		MintAuthorityRevoked:     true,
		FreezeAuthorityRevoked:   true,
		DeployerHoldingPercent:   2,
		Top10HolderConcentration: 20,
		Flags:                    model.NewSafetyFlags(),
	}
	out := c.Score(r, 1.0)
	assert.False(t, out.Block)
	assert.Greater(t, out.SafetyScore, 70)
}
