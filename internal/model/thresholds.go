package model

import "github.com/shopspring/decimal"

// Thresholds is the process-wide dynamic gating configuration. Values are
// read via an atomic snapshot (see internal/threshold) so a concurrent
// apply() never mutates a Thresholds value a pipeline run is already
// holding.
type Thresholds struct {
	MinMomentumScore     float64
	MinOnChainScore      float64
	MinSafetyScore       float64
	MaxBundleRiskScore   float64
	MinLiquidity         decimal.Decimal
	MaxTop10Concentration float64

	LearningMode bool
}

// DefaultThresholds are the stock gating defaults a fresh process starts
// with before any optimizer run adjusts them.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinMomentumScore:      20,
		MinOnChainScore:       30,
		MinSafetyScore:        25,
		MaxBundleRiskScore:    60,
		MinLiquidity:          decimal.NewFromInt(2000),
		MaxTop10Concentration: 85,
		LearningMode:          true,
	}
}

// Clone returns a value copy; Thresholds holds no reference types other
// than decimal.Decimal, which is itself immutable, so a plain copy is a
// safe snapshot.
func (t Thresholds) Clone() Thresholds { return t }

// EffectiveMinOnChainScore applies the learning-mode relaxation: in
// learning mode the floor is capped at 20 so more outcomes get collected
// even when the configured threshold is stricter.
func (t Thresholds) EffectiveMinOnChainScore() float64 {
	if t.LearningMode && t.MinOnChainScore > 20 {
		return 20
	}
	return t.MinOnChainScore
}

// Tier is a market-cap band name.
type Tier string

const (
	TierMicro       Tier = "MICRO"
	TierRising      Tier = "RISING"
	TierEmerging    Tier = "EMERGING"
	TierGraduated   Tier = "GRADUATED"
	TierEstablished Tier = "ESTABLISHED"
	TierUnknown     Tier = "UNKNOWN"
)

// TierConfig holds the per-tier gates and sizing multiplier.
type TierConfig struct {
	Enabled               bool
	MinLiquidity          decimal.Decimal
	MinSafetyScore        float64
	PositionSizeMultiplier float64
	MaxPositionSize       decimal.Decimal
}

// TierBound is a half-open [Min, Max) market-cap band.
type TierBound struct {
	Tier Tier
	Min  decimal.Decimal
	Max  decimal.Decimal // zero Max means +inf
}

// DefaultTierBounds are the default market-cap band boundaries.
func DefaultTierBounds() []TierBound {
	k := func(n int64) decimal.Decimal { return decimal.NewFromInt(n) }
	return []TierBound{
		{TierMicro, k(50_000), k(500_000)},
		{TierRising, k(500_000), k(8_000_000)},
		{TierEmerging, k(8_000_000), k(20_000_000)},
		{TierGraduated, k(20_000_000), k(50_000_000)},
		{TierEstablished, k(50_000_000), k(150_000_000)},
	}
}

// DefaultTierConfigs returns reasonable production defaults; UNKNOWN is
// always disabled since a token with no classifiable market cap can't be
// sized safely.
func DefaultTierConfigs() map[Tier]TierConfig {
	d := func(n int64) decimal.Decimal { return decimal.NewFromInt(n) }
	return map[Tier]TierConfig{
		TierMicro: {
			Enabled: true, MinLiquidity: d(3_000), MinSafetyScore: 40,
			PositionSizeMultiplier: 0.5, MaxPositionSize: d(150),
		},
		TierRising: {
			Enabled: true, MinLiquidity: d(8_000), MinSafetyScore: 35,
			PositionSizeMultiplier: 1.0, MaxPositionSize: d(400),
		},
		TierEmerging: {
			Enabled: true, MinLiquidity: d(20_000), MinSafetyScore: 30,
			PositionSizeMultiplier: 1.25, MaxPositionSize: d(800),
		},
		TierGraduated: {
			Enabled: true, MinLiquidity: d(40_000), MinSafetyScore: 25,
			PositionSizeMultiplier: 1.5, MaxPositionSize: d(1500),
		},
		TierEstablished: {
			Enabled: true, MinLiquidity: d(75_000), MinSafetyScore: 20,
			PositionSizeMultiplier: 1.75, MaxPositionSize: d(3000),
		},
		TierUnknown: {Enabled: false},
	}
}
