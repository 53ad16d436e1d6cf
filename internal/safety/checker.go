// Package safety scores contract and distribution properties of a token
// and recommends a hard block when red flags combine.
package safety

import (
	"github.com/sawpanic/memescan/internal/model"
)

const (
	maxDeployerHoldingPercent = 30.0
	honeypotSellRatioFloor    = 0.15
)

// Checker turns a SafetyReport's raw contract facts into a 0..100 score
// and a block recommendation. Weights sum to 100.
type Checker struct {
	mintFreezeWeight float64
	concentrationWeight float64
	deployerWeight      float64
	metadataWeight      float64
}

func NewChecker() *Checker {
	return &Checker{
		mintFreezeWeight:    40,
		concentrationWeight: 30,
		deployerWeight:      20,
		metadataWeight:      10,
	}
}

// Score fills in SafetyScore, InsiderRiskScore-adjacent flags, and Block
// on a report whose boolean/percent facts were already populated by the
// acquisition layer (mint/freeze revocation, deployer holding percent,
// top10 concentration, honeypot sell-ratio proxy).
func (c *Checker) Score(r *model.SafetyReport, honeypotSellRatio float64) *model.SafetyReport {
	if r == nil {
		r = &model.SafetyReport{Flags: model.NewSafetyFlags(model.FlagDataMissing)}
	}
	if r.HasFlag(model.FlagDataMissing) {
		r.SafetyScore = 50
		r.Block = false
		return r
	}

	score := 0.0
	if r.MintAuthorityRevoked {
		score += c.mintFreezeWeight / 2
	} else {
		addFlag(r, model.FlagMintActive)
	}
	if r.FreezeAuthorityRevoked {
		score += c.mintFreezeWeight / 2
	} else {
		addFlag(r, model.FlagFreezeActive)
	}

	concentrationScore := c.concentrationWeight * (1 - r.Top10HolderConcentration/100)
	if concentrationScore < 0 {
		concentrationScore = 0
	}
	score += concentrationScore

	deployerScore := c.deployerWeight
	if r.DeployerHoldingPercent > maxDeployerHoldingPercent {
		deployerScore = 0
		addFlag(r, model.FlagHighDeployerHold)
	} else {
		deployerScore *= 1 - r.DeployerHoldingPercent/100
	}
	score += deployerScore

	if r.MetadataMutable {
		addFlag(r, model.FlagMetadataMutable)
	} else {
		score += c.metadataWeight
	}

	honeypotSuspected := honeypotSellRatio < honeypotSellRatioFloor
	if honeypotSuspected {
		addFlag(r, model.FlagHoneypotSuspected)
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	r.SafetyScore = int(score)

	mintFreezeActive := !r.MintAuthorityRevoked && !r.FreezeAuthorityRevoked
	r.Block = (mintFreezeActive && r.DeployerHoldingPercent > maxDeployerHoldingPercent) || honeypotSuspected
	return r
}

func addFlag(r *model.SafetyReport, f model.SafetyFlag) {
	if r.Flags == nil {
		r.Flags = model.NewSafetyFlags()
	}
	r.Flags[f] = struct{}{}
}
