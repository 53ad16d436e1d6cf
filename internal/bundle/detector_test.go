package bundle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sawpanic/memescan/internal/model"
)

func TestDetector_NoTransactions_MediumRisk(t *testing.T) {
	d := NewDetector()
	r := d.Analyze(nil, 1000, false)
	assert.Equal(t, model.RiskMedium, r.RiskLevel)
}

func TestDetector_HighClusterAndFunding_CriticalRisk(t *testing.T) {
	d := NewDetector()
	txs := []Tx{
		{Signer: "a", Slot: 1000, FundedByDeployer: true},
		{Signer: "b", Slot: 1001, FundedByDeployer: true},
		{Signer: "c", Slot: 1002, FundedByDeployer: true},
	}
	r := d.Analyze(txs, 1000, false)
	assert.Equal(t, model.RiskCritical, r.RiskLevel)
	assert.Equal(t, 3, r.ClusteredWalletCount)
}

func TestDetector_RugHistoryForcesCritical(t *testing.T) {
	d := NewDetector()
	txs := []Tx{{Signer: "a", Slot: 5000, FundedByDeployer: false}}
	r := d.Analyze(txs, 1000, true)
	assert.Equal(t, 100, r.RiskScore)
	assert.True(t, r.HasRugHistory)
}

func TestDetector_DispersedBuyers_LowRisk(t *testing.T) {
	d := NewDetector()
	txs := []Tx{
		{Signer: "a", Slot: 5000, FundedByDeployer: false},
		{Signer: "b", Slot: 6000, FundedByDeployer: false},
		{Signer: "c", Slot: 7000, FundedByDeployer: false},
	}
	r := d.Analyze(txs, 1000, false)
	assert.Equal(t, model.RiskLow, r.RiskLevel)
}
