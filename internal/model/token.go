// Package model holds the fused data types shared across the acquisition,
// scoring, and pipeline layers.
package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TokenAddress is an opaque base58 mint address. Equality is by value.
type TokenAddress string

// Equal reports whether two addresses refer to the same token.
func (a TokenAddress) Equal(b TokenAddress) bool {
	return string(a) == string(b)
}

func (a TokenAddress) String() string { return string(a) }

// Tristate models a boolean that may be unknown because the upstream data
// source never answered the question.
type Tristate int

const (
	Unknown Tristate = iota
	True
	False
)

func TristateFromBool(b bool) Tristate {
	if b {
		return True
	}
	return False
}

func (t Tristate) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// TokenMetrics is a fused, point-in-time snapshot of a token. A nil
// *TokenMetrics means no provider returned anything usable.
type TokenMetrics struct {
	Address TokenAddress
	Ticker  string
	Name    string

	Price      decimal.Decimal
	MarketCap  decimal.Decimal
	Volume24h  decimal.Decimal
	Liquidity  decimal.Decimal

	HolderCount      int
	HolderChange1h   float64 // signed percent
	Top10Concentration float64 // 0..100
	TokenAgeMinutes  float64
	LPLocked         Tristate
}

// VolumeMarketCapRatio is derived on demand rather than stored, so the
// value always reflects the current Volume24h/MarketCap pair.
func (m *TokenMetrics) VolumeMarketCapRatio() float64 {
	if m == nil || m.MarketCap.IsZero() {
		return 0
	}
	ratio, _ := m.Volume24h.Div(m.MarketCap).Float64()
	return ratio
}

// DisplayName returns "TICKER (Name)" falling back gracefully when either
// field is blank — used only by logging, never by comparisons.
func (m *TokenMetrics) DisplayName() string {
	if m == nil {
		return "<nil>"
	}
	t := strings.TrimSpace(m.Ticker)
	n := strings.TrimSpace(m.Name)
	switch {
	case t == "" && n == "":
		return string(m.Address)
	case n == "":
		return t
	default:
		return t + " (" + n + ")"
	}
}

// SafetyFlag is a symbolic string tag attached to a SafetyReport or
// BundleReport to explain a score without inventing a new type per cause.
type SafetyFlag string

const (
	FlagDataMissing       SafetyFlag = "data_missing"
	FlagMintActive        SafetyFlag = "mint_authority_active"
	FlagFreezeActive      SafetyFlag = "freeze_authority_active"
	FlagHighDeployerHold  SafetyFlag = "high_deployer_holding"
	FlagHoneypotSuspected SafetyFlag = "honeypot_suspected"
	FlagMetadataMutable   SafetyFlag = "metadata_mutable"
)

// SafetyReport summarizes contract and distribution safety for a token.
type SafetyReport struct {
	MintAuthorityRevoked   bool
	FreezeAuthorityRevoked bool
	MetadataMutable        bool

	SafetyScore int // 0..100

	DeployerHoldingPercent   float64 // 0..100
	Top10HolderConcentration float64 // 0..100

	InsiderRiskScore      int // 0..100
	SameBlockBuyers       int
	DeployerFundedBuyers  int

	Flags map[SafetyFlag]struct{}

	Block bool // hard reject recommendation
}

func NewSafetyFlags(flags ...SafetyFlag) map[SafetyFlag]struct{} {
	m := make(map[SafetyFlag]struct{}, len(flags))
	for _, f := range flags {
		m[f] = struct{}{}
	}
	return m
}

func (r *SafetyReport) HasFlag(f SafetyFlag) bool {
	if r == nil || r.Flags == nil {
		return false
	}
	_, ok := r.Flags[f]
	return ok
}

// RiskLevel is a coarse 4-way risk bucket shared by BundleReport and
// OnChainScore.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// BundleReport is the output of early-block insider-clustering analysis.
type BundleReport struct {
	RiskLevel          RiskLevel
	RiskScore          int // 0..100
	ClusteredWalletCount int
	HasRugHistory      bool
	Flags              []string
}

// MomentumComponents are the four 0..25 sub-scores that sum into
// MomentumSnapshot.TotalScore.
type MomentumComponents struct {
	BuyPressure    float64
	VolumeVelocity float64
	TradeQuality   float64
	HolderGrowth   float64
}

// MomentumSnapshot is the output of buy/sell and holder-growth analysis.
type MomentumSnapshot struct {
	BuySellRatio      float64
	UniqueBuyers5m    int
	NetBuyPressureUsd decimal.Decimal
	HolderGrowthRate  float64 // holders per minute

	Components MomentumComponents
	TotalScore float64 // 0..100
}

// ScoreComponents are the five weighted buckets that sum into
// OnChainScore.Total.
type ScoreComponents struct {
	Momentum        float64 // 0..30
	Safety          float64 // 0..25
	BundleSafety    float64 // 0..20
	MarketStructure float64 // 0..15
	Timing          float64 // 0..10
}

// Recommendation is the scorer's verdict, derived from OnChainScore.Total.
type Recommendation string

const (
	RecStrongBuy   Recommendation = "STRONG_BUY"
	RecBuy         Recommendation = "BUY"
	RecWatch       Recommendation = "WATCH"
	RecAvoid       Recommendation = "AVOID"
	RecStrongAvoid Recommendation = "STRONG_AVOID"
)

// Confidence reflects how much of the data that fed the score was actually
// present, as opposed to a permissive default.
type Confidence string

const (
	ConfidenceLow    Confidence = "LOW"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceHigh   Confidence = "HIGH"
)

// OnChainScore is the weighted composite that gates signal emission.
type OnChainScore struct {
	Total      float64 // 0..100, pre social bonus
	Components ScoreComponents

	Recommendation Recommendation
	RiskLevel      RiskLevel
	Confidence     Confidence

	BullishSignals []string
	BearishSignals []string
	Warnings       []string

	SocialBonus    float64 // 0..25
	AdjustedTotal  float64 // min(100, Total+SocialBonus)
}

// Track is the dual-track routing label.
type Track string

const (
	TrackProvenRunner Track = "PROVEN_RUNNER"
	TrackEarlyQuality Track = "EARLY_QUALITY"
)

// Signal is the structured record emitted on a full pipeline pass.
type Signal struct {
	ID                    string
	Track                 Track
	TokenMetrics          *TokenMetrics
	Safety                *SafetyReport
	Bundle                *BundleReport
	Momentum              *MomentumSnapshot
	OnChainScore          *OnChainScore
	SuggestedPositionSize decimal.Decimal
	RiskWarnings          []string
	GeneratedAt           time.Time
}

// DiscoveryEntry tracks a token that was observed but did not (yet) clear
// the full signal bar.
type DiscoveryEntry struct {
	Address    TokenAddress
	FirstSeenAt time.Time
	LastScore  float64
}

// Expired reports whether the entry should be swept given now.
func (d DiscoveryEntry) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(d.FirstSeenAt) >= ttl
}
