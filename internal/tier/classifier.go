// Package tier classifies a token into a market-cap band and sizes a
// suggested position within that band's configured bounds.
package tier

import (
	"github.com/shopspring/decimal"

	"github.com/sawpanic/memescan/internal/model"
)

// Classifier maps a market cap onto one of model.DefaultTierBounds.
type Classifier struct {
	bounds  []model.TierBound
	configs map[model.Tier]model.TierConfig
}

func NewClassifier(bounds []model.TierBound, configs map[model.Tier]model.TierConfig) *Classifier {
	return &Classifier{bounds: bounds, configs: configs}
}

func DefaultClassifier() *Classifier {
	return NewClassifier(model.DefaultTierBounds(), model.DefaultTierConfigs())
}

// Classify returns the tier for marketCap, or TierUnknown if it falls
// outside every configured band.
func (c *Classifier) Classify(marketCap decimal.Decimal) model.Tier {
	for _, b := range c.bounds {
		if marketCap.LessThan(b.Min) {
			continue
		}
		if b.Max.IsZero() || marketCap.LessThan(b.Max) {
			return b.Tier
		}
	}
	return model.TierUnknown
}

// Config returns the gate/sizing config for t.
func (c *Classifier) Config(t model.Tier) model.TierConfig {
	return c.configs[t]
}

// Gate reports whether a token at tier t with the given liquidity and
// safety score clears that tier's per-tier gate. A disabled tier always
// fails.
func (c *Classifier) Gate(t model.Tier, liquidity decimal.Decimal, safetyScore float64) bool {
	cfg := c.configs[t]
	if !cfg.Enabled {
		return false
	}
	if liquidity.LessThan(cfg.MinLiquidity) {
		return false
	}
	if safetyScore < cfg.MinSafetyScore {
		return false
	}
	return true
}

// PositionSizer scales a base position size by tier multiplier and signal
// quality, capped per-tier. Sizing is advisory only — no trade is placed.
type PositionSizer struct {
	basePositionSize decimal.Decimal
	classifier       *Classifier
}

func NewPositionSizer(basePositionSize decimal.Decimal, classifier *Classifier) *PositionSizer {
	return &PositionSizer{basePositionSize: basePositionSize, classifier: classifier}
}

// Size returns the suggested position size for t given a 0..100
// signalStrength (typically the score's adjusted total).
func (s *PositionSizer) Size(t model.Tier, signalStrength float64) decimal.Decimal {
	cfg := s.classifier.Config(t)
	quality := qualityMultiplier(signalStrength)
	size := s.basePositionSize.Mul(decimal.NewFromFloat(cfg.PositionSizeMultiplier)).Mul(decimal.NewFromFloat(quality))
	if !cfg.MaxPositionSize.IsZero() && size.GreaterThan(cfg.MaxPositionSize) {
		return cfg.MaxPositionSize
	}
	return size
}

// qualityMultiplier maps a 0..100 signal strength onto a 0.5..1.5
// multiplier so a marginal pass sizes smaller than a strong one.
func qualityMultiplier(signalStrength float64) float64 {
	m := 0.5 + (signalStrength/100)*1.0
	if m < 0.5 {
		m = 0.5
	}
	if m > 1.5 {
		m = 1.5
	}
	return m
}
