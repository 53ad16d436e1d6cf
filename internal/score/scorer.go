// Package score computes the weighted on-chain composite that gates
// signal emission, and the social-verification bonus layered on top of it.
package score

import (
	"github.com/sawpanic/memescan/internal/model"
)

// OnChainScorer combines momentum, safety, bundle, and market-structure
// signals into a single 0..100 composite plus a recommendation, risk
// level, and confidence.
type OnChainScorer struct {
	minSafetyScore     float64
	maxBundleRiskScore float64
}

func NewScorer() *OnChainScorer {
	return &OnChainScorer{minSafetyScore: 25, maxBundleRiskScore: 60}
}

// SetDynamicThresholds lets a threshold-store apply() call retune the
// bullish/bearish signal labeling without reconstructing the scorer.
func (s *OnChainScorer) SetDynamicThresholds(minSafety, maxBundleRisk float64) {
	s.minSafetyScore = minSafety
	s.maxBundleRiskScore = maxBundleRisk
}

// Score produces the composite OnChainScore. Any of the three reports may
// be nil (the pipeline may not have run that analysis); a nil report
// contributes zero to its component and degrades Confidence instead of
// failing the scorer.
func (s *OnChainScorer) Score(m *model.TokenMetrics, safety *model.SafetyReport, bundle *model.BundleReport, mom *model.MomentumSnapshot) *model.OnChainScore {
	comp := model.ScoreComponents{
		Momentum:        momentumComponent(mom),
		Safety:          safetyComponent(safety),
		BundleSafety:    bundleComponent(bundle),
		MarketStructure: marketStructureComponent(m),
		Timing:          timingComponent(m),
	}
	total := comp.Momentum + comp.Safety + comp.BundleSafety + comp.MarketStructure + comp.Timing

	out := &model.OnChainScore{
		Total:      total,
		Components: comp,
	}
	out.Recommendation = recommendationFor(total)
	out.RiskLevel = riskLevelFor(m, safety, bundle)
	out.Confidence = confidenceFor(safety, bundle, mom)
	out.BullishSignals, out.BearishSignals, out.Warnings = s.signalsFor(m, safety, bundle, mom)
	out.AdjustedTotal = total
	return out
}

func momentumComponent(mom *model.MomentumSnapshot) float64 {
	if mom == nil {
		return 0
	}
	return mom.TotalScore * 0.30
}

func safetyComponent(r *model.SafetyReport) float64 {
	if r == nil {
		return 0
	}
	return float64(r.SafetyScore) * 0.25
}

func bundleComponent(b *model.BundleReport) float64 {
	if b == nil {
		return 0
	}
	return (100 - float64(b.RiskScore)) * 0.20
}

// marketStructureComponent splits its 15 points evenly between
// liquidity adequacy (saturating at $50k) and holder-concentration
// health (inverse of top-10%).
func marketStructureComponent(m *model.TokenMetrics) float64 {
	if m == nil {
		return 0
	}
	const liquiditySaturation = 50_000.0
	liq, _ := m.Liquidity.Float64()
	if liq < 0 {
		liq = 0
	}
	if liq > liquiditySaturation {
		liq = liquiditySaturation
	}
	liquidityScore := (liq / liquiditySaturation) * 7.5

	concentration := m.Top10Concentration
	if concentration < 0 {
		concentration = 0
	}
	if concentration > 100 {
		concentration = 100
	}
	concentrationScore := ((100 - concentration) / 100) * 7.5

	return liquidityScore + concentrationScore
}

// timingComponent rewards the 2-120 minute window most heavily, since
// that's where on-chain signals have the best entry-to-exit runway;
// very new or long-stale tokens score lower.
func timingComponent(m *model.TokenMetrics) float64 {
	if m == nil {
		return 0
	}
	age := m.TokenAgeMinutes
	switch {
	case age < 2:
		return 2
	case age < 120:
		return 10
	default:
		return 4
	}
}

func recommendationFor(total float64) model.Recommendation {
	switch {
	case total >= 75:
		return model.RecStrongBuy
	case total >= 60:
		return model.RecBuy
	case total >= 40:
		return model.RecWatch
	case total >= 25:
		return model.RecAvoid
	default:
		return model.RecStrongAvoid
	}
}

// riskLevelFor applies the fixed safety/bundle/concentration thresholds:
// CRITICAL on a hard safety floor breach, extreme bundle risk, or a
// honeypot flag; HIGH on a softer safety/bundle/concentration breach;
// MEDIUM on a still-softer one; LOW otherwise. A nil report can't breach
// any of its own thresholds, so missing data never forces a worse
// bucket than what the present reports already imply.
func riskLevelFor(m *model.TokenMetrics, safety *model.SafetyReport, bundle *model.BundleReport) model.RiskLevel {
	safetyScore, haveSafety := 100.0, false
	if safety != nil {
		safetyScore, haveSafety = float64(safety.SafetyScore), true
	}
	bundleRisk, haveBundle := 0.0, false
	if bundle != nil {
		bundleRisk, haveBundle = float64(bundle.RiskScore), true
	}
	top10 := 0.0
	if m != nil {
		top10 = m.Top10Concentration
	}
	honeypot := safety != nil && safety.HasFlag(model.FlagHoneypotSuspected)

	switch {
	case (haveSafety && safetyScore < 20) || (haveBundle && bundleRisk > 80) || honeypot:
		return model.RiskCritical
	case (haveSafety && safetyScore < 40) || (haveBundle && bundleRisk > 60) || top10 > 85:
		return model.RiskHigh
	case (haveSafety && safetyScore < 60) || (haveBundle && bundleRisk > 40):
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

func confidenceFor(safety *model.SafetyReport, bundle *model.BundleReport, mom *model.MomentumSnapshot) model.Confidence {
	present := 0
	if safety != nil && !safety.HasFlag(model.FlagDataMissing) {
		present++
	}
	if bundle != nil {
		present++
	}
	if mom != nil {
		present++
	}
	switch present {
	case 3:
		return model.ConfidenceHigh
	case 2:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}

func (s *OnChainScorer) signalsFor(m *model.TokenMetrics, safety *model.SafetyReport, bundle *model.BundleReport, mom *model.MomentumSnapshot) (bullish, bearish, warnings []string) {
	if mom != nil && mom.BuySellRatio >= 2.0 {
		bullish = append(bullish, "strong_buy_pressure")
	}
	if mom != nil && mom.HolderGrowthRate > 0.1 {
		bullish = append(bullish, "holder_growth_accelerating")
	}
	if m != nil && m.VolumeMarketCapRatio() > 0.5 {
		bullish = append(bullish, "high_volume_to_cap_ratio")
	}
	if safety != nil && safety.MintAuthorityRevoked && safety.FreezeAuthorityRevoked {
		bullish = append(bullish, "authorities_revoked")
	}

	if mom != nil && mom.BuySellRatio < 0.5 {
		bearish = append(bearish, "sell_pressure_dominant")
	}
	if m != nil && m.HolderChange1h < -2 {
		bearish = append(bearish, "holder_count_declining")
	}

	if safety != nil && safety.SafetyScore < s.minSafetyScore {
		warnings = append(warnings, "safety_score_below_threshold")
	}
	if bundle != nil && float64(bundle.RiskScore) > s.maxBundleRiskScore {
		warnings = append(warnings, "bundle_risk_above_threshold")
	}
	if safety == nil {
		warnings = append(warnings, "no_safety_data")
	}
	if bundle == nil {
		warnings = append(warnings, "no_bundle_data")
	}

	// Every candidate that hasn't yet attracted outside attention carries
	// these two generic entries; the pipeline's warning-count gate
	// excludes them so an otherwise-clean token isn't penalized just for
	// being undiscovered.
	warnings = append(warnings, NoKOLTwitterMention, NoKOLTelegramMention)

	return bullish, bearish, warnings
}

// NoKOLTwitterMention and NoKOLTelegramMention are the two generic
// "no KOL" warnings every score carries until an external validation
// signal arrives; callers filtering "serious" warnings exclude both.
const (
	NoKOLTwitterMention  = "no_kol_twitter_mention"
	NoKOLTelegramMention = "no_kol_telegram_mention"
)
