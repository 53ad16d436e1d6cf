// Package bundle estimates insider/bundle risk from early-block
// transaction clustering: wallets that bought in the same block as
// creation, or that were funded by the deployer before buying.
package bundle

import (
	"github.com/sawpanic/memescan/internal/model"
)

// Tx is the minimal shape the clustering analysis needs from a parsed
// transaction.
type Tx struct {
	Signer           string
	Slot             uint64
	FundedByDeployer bool
}

// Detector clusters a token's earliest transactions into a BundleReport.
type Detector struct {
	// sameBlockWindow is how many leading slots after creation count as
	// "early-block" for clustering purposes.
	sameBlockWindow uint64
}

func NewDetector() *Detector {
	return &Detector{sameBlockWindow: 2}
}

// Analyze clusters txs relative to creationSlot into a BundleReport.
// hasRugHistory is supplied by the caller (e.g. a deployer-address
// lookup against a known-rugger list) since that data doesn't come from
// transaction clustering itself.
func (d *Detector) Analyze(txs []Tx, creationSlot uint64, hasRugHistory bool) *model.BundleReport {
	if len(txs) == 0 {
		return &model.BundleReport{
			RiskLevel: model.RiskMedium,
			RiskScore: 40,
			Flags:     []string{"no_transaction_data"},
		}
	}

	clustered := make(map[string]struct{})
	sameBlockBuyers := 0
	deployerFundedBuyers := 0

	for _, tx := range txs {
		if tx.Slot <= creationSlot+d.sameBlockWindow {
			clustered[tx.Signer] = struct{}{}
			sameBlockBuyers++
		}
		if tx.FundedByDeployer {
			deployerFundedBuyers++
		}
	}

	clusterRatio := float64(len(clustered)) / float64(len(txs))
	fundedRatio := float64(deployerFundedBuyers) / float64(len(txs))

	riskScore := int(clusterRatio*60 + fundedRatio*40)
	if riskScore > 100 {
		riskScore = 100
	}
	if hasRugHistory {
		riskScore = 100
	}

	var flags []string
	if fundedRatio > 0.2 {
		flags = append(flags, "deployer_funded_cluster")
	}
	if clusterRatio > 0.4 {
		flags = append(flags, "same_block_cluster")
	}

	return &model.BundleReport{
		RiskLevel:            riskLevelFor(riskScore),
		RiskScore:            riskScore,
		ClusteredWalletCount: len(clustered),
		HasRugHistory:        hasRugHistory,
		Flags:                flags,
	}
}

func riskLevelFor(score int) model.RiskLevel {
	switch {
	case score >= 80:
		return model.RiskCritical
	case score >= 60:
		return model.RiskHigh
	case score >= 30:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}
