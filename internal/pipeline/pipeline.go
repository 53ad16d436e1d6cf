// Package pipeline runs the per-candidate evaluation that turns a token
// address into either an emitted Signal or a diagnostic code explaining
// why it stopped short.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/sawpanic/memescan/internal/acquisition"
	"github.com/sawpanic/memescan/internal/bundle"
	"github.com/sawpanic/memescan/internal/config"
	"github.com/sawpanic/memescan/internal/discovery"
	"github.com/sawpanic/memescan/internal/exclusion"
	"github.com/sawpanic/memescan/internal/model"
	"github.com/sawpanic/memescan/internal/momentum"
	"github.com/sawpanic/memescan/internal/notify"
	"github.com/sawpanic/memescan/internal/providers/dexagg"
	"github.com/sawpanic/memescan/internal/router"
	"github.com/sawpanic/memescan/internal/safety"
	"github.com/sawpanic/memescan/internal/scamfilter"
	"github.com/sawpanic/memescan/internal/score"
	"github.com/sawpanic/memescan/internal/store"
	"github.com/sawpanic/memescan/internal/threshold"
	"github.com/sawpanic/memescan/internal/tier"
)

// Diagnostic is the closed set of outcomes a pipeline run can return.
type Diagnostic string

const (
	Skipped           Diagnostic = "SKIPPED"
	SafetyBlocked     Diagnostic = "SAFETY_BLOCKED"
	NoMetrics         Diagnostic = "NO_METRICS"
	ScreeningFailed   Diagnostic = "SCREENING_FAILED"
	ScamRejected      Diagnostic = "SCAM_REJECTED"
	ScoringFailed     Diagnostic = "SCORING_FAILED"
	SignalSent        Diagnostic = "SIGNAL_SENT"
	DiscoverySent     Diagnostic = "DISCOVERY_SENT"
	KOLValidationSent Diagnostic = "KOL_VALIDATION_SENT"
	DiscoveryFailed   Diagnostic = "DISCOVERY_FAILED"
	OnChainSignalSent Diagnostic = "ONCHAIN_SIGNAL_SENT"
	MomentumFailed    Diagnostic = "MOMENTUM_FAILED"
	BundleBlocked     Diagnostic = "BUNDLE_BLOCKED"
	TooEarly          Diagnostic = "TOO_EARLY"
	TierBlocked       Diagnostic = "TIER_BLOCKED"
)

// seriousWarningThreshold is the production-mode warning-count gate from
// step 13. learningMode skips this step entirely.
const seriousWarningThreshold = 4

// bundleTxLimit bounds how many recent signatures step 8's bundle
// sub-analysis fetches per candidate.
const bundleTxLimit = 40

// Result is what a single candidate evaluation produces: always a
// diagnostic, and a Signal only when one was emitted.
type Result struct {
	Address    model.TokenAddress
	Diagnostic Diagnostic
	Signal     *model.Signal
}

// Pipeline wires every evaluation collaborator together. Construct one
// per process; it is safe for concurrent use across candidates.
type Pipeline struct {
	Facade     *acquisition.Facade
	Safety     *safety.Checker
	Exclusion  *exclusion.Filter
	Tier       *tier.Classifier
	Sizer      *tier.PositionSizer
	Bundle     *bundle.Detector
	Momentum   *momentum.Analyzer
	Scorer     *score.OnChainScorer
	Router     *router.Router
	Thresholds *threshold.Store
	Discovery  *discovery.Tracker
	ScamFilter scamfilter.Filter
	Notifier   notify.Notifier
	Store      store.SignalStore
	Screening  config.ScreeningConfig
}

func New(
	facade *acquisition.Facade,
	thresholds *threshold.Store,
	disc *discovery.Tracker,
	scam scamfilter.Filter,
	notifier notify.Notifier,
	signalStore store.SignalStore,
	screening config.ScreeningConfig,
) *Pipeline {
	return &Pipeline{
		Facade:     facade,
		Safety:     safety.NewChecker(),
		Exclusion:  exclusion.New(exclusion.DefaultBlocklist()),
		Tier:       tier.DefaultClassifier(),
		Sizer:      tier.NewPositionSizer(decimal.NewFromInt(100), tier.DefaultClassifier()),
		Bundle:     bundle.NewDetector(),
		Momentum:   momentum.NewAnalyzer(),
		Scorer:     score.NewScorer(),
		Router:     router.New(),
		Thresholds: thresholds,
		Discovery:  disc,
		ScamFilter: scam,
		Notifier:   notifier,
		Store:      signalStore,
		Screening:  screening,
	}
}

// Evaluate runs the full step sequence for one candidate. It never
// returns an error: every failure mode short-circuits into a Diagnostic,
// per the "no exception crosses the scan-cycle boundary" rule.
func (p *Pipeline) Evaluate(ctx context.Context, addr model.TokenAddress, learningMode bool) Result {
	thresholds := p.Thresholds.Current() // consistent snapshot for this whole evaluation
	p.Scorer.SetDynamicThresholds(thresholds.MinSafetyScore, thresholds.MaxBundleRiskScore)

	// 1. Open-position short-circuit.
	open, err := p.Store.HasOpenPosition(ctx, addr)
	if err != nil {
		log.Debug().Err(err).Str("addr", string(addr)).Msg("has-open-position check failed")
	}
	if open {
		return Result{Address: addr, Diagnostic: Skipped}
	}

	// 2. Safety check. Volume authenticity doubles as the honeypot-sell
	// proxy the checker wants: a token nobody can sell shows up as an
	// extreme buy/sell imbalance, which scores low here too.
	safetyReport := p.Facade.AnalyzeTokenContract(ctx, addr)
	authenticityScore, _ := p.Facade.AnalyzeVolumeAuthenticity(ctx, addr)
	safetyReport = p.Safety.Score(safetyReport, authenticityScore/100)
	if safetyReport.Block {
		return Result{Address: addr, Diagnostic: SafetyBlocked}
	}

	// 3. Fused metrics fetch.
	metrics, err := p.Facade.GetTokenMetrics(ctx, addr)
	if err != nil {
		log.Debug().Err(err).Str("addr", string(addr)).Msg("metrics fetch errored")
	}
	if metrics == nil {
		return Result{Address: addr, Diagnostic: NoMetrics}
	}

	// 4. Exclusion filter.
	if p.Exclusion.IsExcluded(metrics) {
		return Result{Address: addr, Diagnostic: ScreeningFailed}
	}

	// 5. Tier classification.
	tokenTier := p.Tier.Classify(metrics.MarketCap)
	if !p.Tier.Gate(tokenTier, metrics.Liquidity, float64(safetyReport.SafetyScore)) {
		return Result{Address: addr, Diagnostic: TierBlocked}
	}

	// 6. Screening thresholds.
	if !p.passesScreening(metrics) {
		return Result{Address: addr, Diagnostic: ScreeningFailed}
	}

	// 7. Scam filter (external Layer-1 source).
	verdict, err := p.ScamFilter.Check(ctx, addr)
	if err != nil {
		log.Debug().Err(err).Str("addr", string(addr)).Msg("scam filter errored, defaulting to allow")
	}
	if verdict == scamfilter.VerdictReject {
		return Result{Address: addr, Diagnostic: ScamRejected}
	}

	// 8. On-chain score: bundle and momentum fan out in parallel; safety
	// is already computed above and folds straight into the scorer.
	bundleReport, momSnapshot, momErr := p.analyzeScoreInputs(ctx, addr, metrics)
	if momErr != nil {
		return Result{Address: addr, Diagnostic: MomentumFailed}
	}
	if bundleReport == nil {
		return Result{Address: addr, Diagnostic: ScoringFailed}
	}

	onChainScore := p.Scorer.Score(metrics, safetyReport, bundleReport, momSnapshot)
	info, err := p.Facade.Dex.GetTokenInfo(ctx, addr)
	if err == nil {
		score.ApplySocialBonus(onChainScore, score.SocialBonus(info))
	} else {
		onChainScore.AdjustedTotal = onChainScore.Total
	}

	// 9. Risk gate.
	if onChainScore.RiskLevel == model.RiskCritical || (!learningMode && onChainScore.RiskLevel == model.RiskHigh) {
		return Result{Address: addr, Diagnostic: BundleBlocked}
	}

	// 10. Dual-track routing.
	decision := p.Router.Route(metrics)
	if decision.TooEarly {
		return Result{Address: addr, Diagnostic: TooEarly}
	}

	// 11. Per-track gates.
	trackCleared := false
	switch decision.Track {
	case model.TrackProvenRunner:
		trackCleared = router.GateProvenRunner(holderGrowthPerMinute(metrics), learningMode)
	case model.TrackEarlyQuality:
		trackCleared = router.GateEarlyQuality(float64(safetyReport.SafetyScore), float64(bundleReport.RiskScore), learningMode)
	}
	if !trackCleared {
		p.Discovery.Observe(addr, onChainScore.AdjustedTotal, time.Now())
		if err := p.Notifier.NotifyDiscovery(ctx, addr, onChainScore.AdjustedTotal); err != nil {
			log.Debug().Err(err).Str("addr", string(addr)).Msg("discovery notify failed")
		}
		return Result{Address: addr, Diagnostic: DiscoverySent}
	}

	// 12. Score + recommendation gate.
	effectiveMin := thresholds.EffectiveMinOnChainScore()
	blockingRec := onChainScore.Recommendation == model.RecStrongAvoid ||
		(!learningMode && onChainScore.Recommendation == model.RecAvoid)
	if onChainScore.AdjustedTotal < effectiveMin || blockingRec {
		p.Discovery.Observe(addr, onChainScore.AdjustedTotal, time.Now())
		return Result{Address: addr, Diagnostic: DiscoveryFailed}
	}

	// 13. Warning count gate (skipped in learning mode).
	if !learningMode {
		serious := seriousWarnings(onChainScore.Warnings)
		if len(serious) >= seriousWarningThreshold {
			return Result{Address: addr, Diagnostic: DiscoveryFailed}
		}
	}

	// 14. Sizing, emit, persist.
	wasAlreadyDiscovered := p.Discovery.Seen(addr)
	sig := &model.Signal{
		ID:                    uuid.NewString(),
		Track:                 decision.Track,
		TokenMetrics:          metrics,
		Safety:                safetyReport,
		Bundle:                bundleReport,
		Momentum:              momSnapshot,
		OnChainScore:          onChainScore,
		SuggestedPositionSize: p.Sizer.Size(tokenTier, onChainScore.AdjustedTotal),
		RiskWarnings:          seriousWarnings(onChainScore.Warnings),
		GeneratedAt:           time.Now(),
	}

	if err := p.Store.RecordSignal(ctx, sig); err != nil {
		log.Error().Err(err).Str("addr", string(addr)).Msg("record signal failed")
	}
	if err := p.Notifier.NotifySignal(ctx, sig); err != nil {
		log.Warn().Err(err).Str("addr", string(addr)).Msg("notify signal failed")
	}

	diag := OnChainSignalSent
	if wasAlreadyDiscovered {
		diag = KOLValidationSent
	}
	return Result{Address: addr, Diagnostic: diag, Signal: sig}
}

// passesScreening applies the config-driven numeric bounds from step 6.
func (p *Pipeline) passesScreening(m *model.TokenMetrics) bool {
	s := p.Screening
	mc, _ := m.MarketCap.Float64()
	vol, _ := m.Volume24h.Float64()
	liq, _ := m.Liquidity.Float64()

	if mc < s.MinMarketCap || mc > s.MaxMarketCap {
		return false
	}
	if vol < s.Min24hVolume {
		return false
	}
	if m.VolumeMarketCapRatio() < s.MinVolumeMarketCapRatio {
		return false
	}
	if m.HolderCount < s.MinHolderCount {
		return false
	}
	if m.Top10Concentration > s.MaxTop10Concentration {
		return false
	}
	if liq < s.MinLiquidity {
		return false
	}
	return true
}

// analyzeScoreInputs fans bundle clustering and momentum analysis out in
// parallel, all-settled: bundle degrades to a permissive report rather
// than failing, while momentum reports a hard failure when the dex pair
// data it needs isn't available at all, distinct from the nil-tolerant
// degradation the scorer otherwise allows. A context cancellation mid
// fan-out surfaces as a (nil, nil, nil) scoring failure.
func (p *Pipeline) analyzeScoreInputs(ctx context.Context, addr model.TokenAddress, m *model.TokenMetrics) (*model.BundleReport, *model.MomentumSnapshot, error) {
	var (
		bundleReport *model.BundleReport
		momSnapshot  *model.MomentumSnapshot
		momErr       error
	)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		in := p.Facade.FetchBundleInputs(ctx, addr, bundleTxLimit)
		if !in.Ok {
			bundleReport = &model.BundleReport{RiskLevel: model.RiskMedium, RiskScore: 40, Flags: []string{"chain_rpc_unavailable"}}
			return
		}
		bundleReport = p.Bundle.Analyze(in.Txs, in.CreationSlot, false)
	}()

	go func() {
		defer wg.Done()
		pairs, err := p.Facade.Dex.GetTokenPairs(ctx, addr)
		if err != nil || len(pairs) == 0 {
			momErr = fmt.Errorf("pipeline: no dex pair data for momentum: %w", err)
			return
		}
		pair := pairs[0]
		momSnapshot = p.Momentum.Analyze(momentum.Input{
			Buys5m:           pair.Buys5m,
			Sells5m:          pair.Sells5m,
			Volume1h:         volume1hOrExtrapolated(pair),
			Volume24h:        pair.Volume24hUsd,
			AvgTradeSizeUsd:  avgTradeSizeUsd(pair),
			HolderGrowthRate: holderGrowthPerMinute(m),
		})
	}()

	wg.Wait()

	// A cancellation mid-fan-out means neither slot can be trusted even
	// though the goroutines above ran to completion; surface it as a hard
	// scoring failure rather than feeding partial data to the scorer.
	if ctx.Err() != nil {
		return nil, nil, nil
	}
	return bundleReport, momSnapshot, momErr
}

// holderGrowthPerMinute converts the hourly percent change the acquisition
// layer reports into holders-per-minute, the unit both the PROVEN_RUNNER
// gate and the momentum analyzer's holder-growth component expect.
func holderGrowthPerMinute(m *model.TokenMetrics) float64 {
	return (m.HolderChange1h / 100 * float64(m.HolderCount)) / 60
}

// avgTradeSizeUsd extrapolates the 5-minute buy/sell count to a full day
// and divides 24h volume by that trade count, since the aggregator
// doesn't expose trade size directly.
func avgTradeSizeUsd(pair dexagg.Pair) decimal.Decimal {
	trades5m := pair.Buys5m + pair.Sells5m
	if trades5m <= 0 {
		return decimal.Zero
	}
	const windowsPerDay = 288 // 24h / 5m
	tradesPerDay := decimal.NewFromInt(int64(trades5m) * windowsPerDay)
	if tradesPerDay.IsZero() {
		return decimal.Zero
	}
	return pair.Volume24hUsd.Div(tradesPerDay)
}

// volume1hOrExtrapolated prefers the aggregator's own hourly bucket;
// some pairs (thin liquidity, brand-new listings) report a zero h1
// bucket even with nonzero h24 volume, so a flat 24h/24 extrapolation
// is used only as a fallback, not as the primary source.
func volume1hOrExtrapolated(pair dexagg.Pair) decimal.Decimal {
	if !pair.Volume1hUsd.IsZero() {
		return pair.Volume1hUsd
	}
	return pair.Volume24hUsd.Div(decimal.NewFromInt(24))
}

// seriousWarnings filters out the two generic "no KOL" entries every
// score carries, per step 13's exclusion.
func seriousWarnings(warnings []string) []string {
	out := make([]string, 0, len(warnings))
	for _, w := range warnings {
		if w == score.NoKOLTwitterMention || w == score.NoKOLTelegramMention {
			continue
		}
		out = append(out, w)
	}
	return out
}
