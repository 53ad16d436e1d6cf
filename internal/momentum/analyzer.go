// Package momentum scores short-term trading pressure: buy/sell ratio,
// unique buyer count, net USD pressure, and holder growth rate.
package momentum

import (
	"github.com/shopspring/decimal"

	"github.com/sawpanic/memescan/internal/model"
)

// Input bundles the raw signals the analyzer needs; callers assemble it
// from a dexagg.Pair plus the holder-growth rate already derived by the
// acquisition layer.
type Input struct {
	Buys5m           int
	Sells5m          int
	UniqueBuyers5m   int
	Volume1h         decimal.Decimal
	Volume24h        decimal.Decimal
	AvgTradeSizeUsd  decimal.Decimal
	HolderGrowthRate float64 // holders per minute
}

// Analyzer turns an Input into a MomentumSnapshot with four 0..25
// component scores summing to a 0..100 total.
type Analyzer struct{}

func NewAnalyzer() *Analyzer { return &Analyzer{} }

func (a *Analyzer) Analyze(in Input) *model.MomentumSnapshot {
	total := in.Buys5m + in.Sells5m
	ratio := 1.0
	if in.Sells5m > 0 {
		ratio = float64(in.Buys5m) / float64(in.Sells5m)
	} else if in.Buys5m > 0 {
		ratio = float64(in.Buys5m)
	}

	buyPressure := scaleBuyPressure(ratio)
	volumeVelocity := scaleVolumeVelocity(in.Volume1h, in.Volume24h)
	tradeQuality := scaleTradeQuality(in.AvgTradeSizeUsd)
	holderGrowth := scaleHolderGrowth(in.HolderGrowthRate)

	netPressure := decimal.NewFromInt(int64(in.Buys5m - in.Sells5m)).Mul(in.AvgTradeSizeUsd)
	if total == 0 {
		netPressure = decimal.Zero
	}

	comp := model.MomentumComponents{
		BuyPressure:    buyPressure,
		VolumeVelocity: volumeVelocity,
		TradeQuality:   tradeQuality,
		HolderGrowth:   holderGrowth,
	}

	return &model.MomentumSnapshot{
		BuySellRatio:      ratio,
		UniqueBuyers5m:    in.UniqueBuyers5m,
		NetBuyPressureUsd: netPressure,
		HolderGrowthRate:  in.HolderGrowthRate,
		Components:        comp,
		TotalScore:        buyPressure + volumeVelocity + tradeQuality + holderGrowth,
	}
}

// scaleBuyPressure maps a buy/sell ratio onto 0..25: 1.0 (balanced)
// yields about 8.33, and the score saturates above a 3:1 ratio.
func scaleBuyPressure(ratio float64) float64 {
	const saturation = 3.0
	if ratio > saturation {
		ratio = saturation
	}
	return (ratio / saturation) * 25
}

// scaleVolumeVelocity rewards an hourly volume pace above the 24h average
// pace (i.e. volume accelerating, not just large).
func scaleVolumeVelocity(vol1h, vol24h decimal.Decimal) float64 {
	if vol24h.IsZero() {
		return 12.5
	}
	hourlyAvg := vol24h.Div(decimal.NewFromInt(24))
	if hourlyAvg.IsZero() {
		return 12.5
	}
	ratio, _ := vol1h.Div(hourlyAvg).Float64()
	const saturation = 4.0
	if ratio > saturation {
		ratio = saturation
	}
	if ratio < 0 {
		ratio = 0
	}
	return (ratio / saturation) * 25
}

// scaleTradeQuality rewards an average trade size band that looks like
// organic retail activity ($20-$500) over either dust-trade wash patterns
// or single-whale dominance.
func scaleTradeQuality(avgSize decimal.Decimal) float64 {
	f, _ := avgSize.Float64()
	switch {
	case f <= 0:
		return 12.5
	case f < 20:
		return 10
	case f <= 500:
		return 25
	case f <= 2000:
		return 15
	default:
		return 5
	}
}

func scaleHolderGrowth(perMinute float64) float64 {
	const saturation = 0.5 // holders/minute
	if perMinute < 0 {
		return 0
	}
	if perMinute > saturation {
		perMinute = saturation
	}
	return (perMinute / saturation) * 25
}
