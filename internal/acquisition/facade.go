// Package acquisition composes the four provider clients into a single
// fused view per token: metrics, contract safety, volume authenticity,
// and bundle clustering. Each composition tolerates any subset of its
// inputs failing — only a total loss of data yields a nil/zero result.
package acquisition

import (
	"context"
	"sync"
	"time"

	"github.com/sawpanic/memescan/internal/model"
	"github.com/sawpanic/memescan/internal/providererr"
	"github.com/sawpanic/memescan/internal/providers/chainrpc"
	"github.com/sawpanic/memescan/internal/providers/dexagg"
	"github.com/sawpanic/memescan/internal/providers/holderapi"
)

// defaultHolderCount is used when neither C nor A returns a holder total.
const defaultHolderCount = 25

// defaultTop10Concentration is used when no top-holder data is available.
const defaultTop10Concentration = 50.0

// defaultTokenAgeMinutes is used when the pair's creation timestamp is
// unknown.
const defaultTokenAgeMinutes = 5

// Facade fans a token address out across the market aggregator and the
// two holder-count sources (C preferred, A as fallback).
type Facade struct {
	Dex      *dexagg.Client
	Holders  *holderapi.Client // Provider C
	ChainRPC *chainrpc.Client  // Provider A
}

// GetTokenMetrics fuses the primary pair (B) with a holder count (C,
// falling back to A) into one TokenMetrics. Returns nil only when every
// source returned nothing.
func (f *Facade) GetTokenMetrics(ctx context.Context, addr model.TokenAddress) (*model.TokenMetrics, error) {
	var (
		pairs       []dexagg.Pair
		holdersC    holderapi.Holders
		holdersCErr error
		holdersA    chainrpc.Holders
		holdersAErr error
	)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		p, err := f.Dex.GetTokenPairs(ctx, addr)
		if err == nil {
			pairs = p
		}
	}()

	go func() {
		defer wg.Done()
		holdersAErr = providererr.ErrDisabled
		if f.Holders == nil {
			holdersCErr = providererr.ErrDisabled
			if f.ChainRPC != nil {
				ha, aerr := f.ChainRPC.GetTokenHolders(ctx, addr)
				holdersA, holdersAErr = ha, aerr
			}
			return
		}
		h, err := f.Holders.GetTokenHolders(ctx, addr)
		if err != nil {
			holdersCErr = err
			if f.ChainRPC != nil {
				ha, aerr := f.ChainRPC.GetTokenHolders(ctx, addr)
				holdersA, holdersAErr = ha, aerr
			}
			return
		}
		holdersC = h
	}()

	wg.Wait()

	if len(pairs) == 0 && holdersCErr != nil && holdersAErr != nil {
		return nil, nil
	}

	m := &model.TokenMetrics{Address: addr}

	if len(pairs) > 0 {
		primary := pairs[0]
		m.Ticker = primary.BaseSymbol
		m.Name = primary.BaseName
		m.Price = primary.PriceUsd
		m.MarketCap = primary.MarketCapUsd
		m.Volume24h = primary.Volume24hUsd
		m.Liquidity = primary.LiquidityUsd
		if primary.PairCreatedAt > 0 {
			m.TokenAgeMinutes = ageMinutesFromUnixMillis(primary.PairCreatedAt)
		} else {
			m.TokenAgeMinutes = defaultTokenAgeMinutes
		}
	} else {
		m.TokenAgeMinutes = defaultTokenAgeMinutes
	}

	switch {
	case holdersCErr == nil:
		m.HolderCount = holdersC.Total
		m.Top10Concentration = sumTop10PctC(holdersC.TopHolders)
		m.HolderChange1h = f.Holders.DeriveHolderChange1h(addr, holdersC.Total)
	case holdersAErr == nil:
		m.HolderCount = holdersA.Total
		m.Top10Concentration = defaultTop10Concentration
	default:
		m.HolderCount = defaultHolderCount
		m.Top10Concentration = defaultTop10Concentration
	}

	if m.Ticker == "" && m.Name == "" {
		m.Ticker = string(addr)
	}

	return m, nil
}

func sumTop10PctC(holders []holderapi.HolderEntry) float64 {
	if len(holders) == 0 {
		return defaultTop10Concentration
	}
	n := len(holders)
	if n > 10 {
		n = 10
	}
	var sum float64
	for _, h := range holders[:n] {
		sum += h.Pct
	}
	return sum
}

func ageMinutesFromUnixMillis(unixMillis int64) float64 {
	nowMillis := time.Now().UnixMilli()
	if unixMillis <= 0 || unixMillis > nowMillis {
		return defaultTokenAgeMinutes
	}
	return float64(nowMillis-unixMillis) / 60000.0
}

// AnalyzeTokenContract reports mint/freeze authority status from chain RPC
// mint info. When RPC is disabled or returns nothing, a permissive report
// is returned with the data_missing flag.
func (f *Facade) AnalyzeTokenContract(ctx context.Context, addr model.TokenAddress) *model.SafetyReport {
	if f.ChainRPC == nil {
		return permissiveSafetyReport()
	}
	info, err := f.ChainRPC.GetTokenMintInfo(ctx, addr)
	if err != nil {
		return permissiveSafetyReport()
	}
	return &model.SafetyReport{
		MintAuthorityRevoked:   info.MintAuthority == nil,
		FreezeAuthorityRevoked: info.FreezeAuthority == nil,
		MetadataMutable:        false,
		SafetyScore:            50,
		Flags:                  model.NewSafetyFlags(),
	}
}

func permissiveSafetyReport() *model.SafetyReport {
	return &model.SafetyReport{
		MintAuthorityRevoked:   true,
		FreezeAuthorityRevoked: true,
		MetadataMutable:        false,
		SafetyScore:            50,
		Flags:                  model.NewSafetyFlags(model.FlagDataMissing),
	}
}

// AnalyzeVolumeAuthenticity scores 0..100 from a pair's recent buy/sell
// split. Wash-trading is suspected when the unique-wallet proxy (here,
// buy/sell balance as a stand-in for unique wallets) drops below 0.3.
func (f *Facade) AnalyzeVolumeAuthenticity(ctx context.Context, addr model.TokenAddress) (float64, error) {
	pairs, err := f.Dex.GetTokenPairs(ctx, addr)
	if err != nil || len(pairs) == 0 {
		return 50, err
	}
	p := pairs[0]
	total := p.Buys5m + p.Sells5m
	if total == 0 {
		return 50, nil
	}
	balance := float64(min(p.Buys5m, p.Sells5m)) / float64(total) * 2
	score := balance * 100
	if balance < 0.3 {
		score *= 0.5
	}
	if score > 100 {
		score = 100
	}
	return score, nil
}
