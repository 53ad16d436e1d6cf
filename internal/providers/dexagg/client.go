// Package dexagg wraps a free, rate-limited DEX market-data aggregator:
// per-token trading pairs, newly-listed pairs, trending tokens, and social
// profile metadata. Failures are returned as providererr sentinel errors;
// GetNewPairs and GetTrending try a fallback endpoint before returning one.
package dexagg

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/memescan/internal/guard"
	"github.com/sawpanic/memescan/internal/model"
	"github.com/sawpanic/memescan/internal/providererr"
	"github.com/sawpanic/memescan/internal/ratelimit"
)

const (
	pairsTTL       = 30 * time.Second
	pairsEmptyTTL  = 10 * time.Second
	requestTimeout = 15 * time.Second
)

// Pair is one trading pair as returned by the aggregator's token-pairs and
// search endpoints.
type Pair struct {
	ChainID        string
	PairAddress    string
	BaseTokenAddr  model.TokenAddress
	BaseSymbol     string
	BaseName       string
	PriceUsd       decimal.Decimal
	LiquidityUsd   decimal.Decimal
	Volume1hUsd    decimal.Decimal
	Volume24hUsd   decimal.Decimal
	MarketCapUsd   decimal.Decimal
	PairCreatedAt  int64 // unix millis
	Buys5m         int
	Sells5m        int
}

// SocialLinks is getTokenInfo's socialLinks sub-object.
type SocialLinks struct {
	Twitter  string
	Telegram string
	Discord  string
	Website  string
}

// TokenInfo mirrors getTokenInfo.
type TokenInfo struct {
	HasPaidProfile bool
	BoostCount     int
	Description    string
	Links          SocialLinks
}

// Client wraps the aggregator's HTTP API. targetChainID filters
// getTokenPairs results to a single chain.
type Client struct {
	baseURL       string
	targetChainID string
	httpClient    *http.Client

	pairs     *guard.Fetch[[]Pair]
	tokenInfo *guard.Fetch[TokenInfo]
	limiter   *ratelimit.MinInterval

	listingsURL string
}

func New(baseURL, targetChainID string) *Client {
	lim := ratelimit.NewMinInterval("dexagg", 350*time.Millisecond)
	return &Client{
		baseURL:       baseURL,
		targetChainID: targetChainID,
		httpClient:    &http.Client{Timeout: requestTimeout},
		pairs: guard.NewFetch[[]Pair](guard.Config{
			Name: "dexagg.pairs", Limiter: lim, CacheSize: 1500,
			SweepEvery: time.Minute, Timeout: requestTimeout,
		}),
		tokenInfo: guard.NewFetch[TokenInfo](guard.Config{
			Name: "dexagg.tokenInfo", Limiter: lim, CacheSize: 1000,
			SweepEvery: 2 * time.Minute, Timeout: requestTimeout,
		}),
		limiter: lim,
	}
}

// WithListingsURL configures the websocket endpoint for Listings. Without
// it, Listings returns providererr.ErrDisabled and callers fall back to
// polling GetNewPairs.
func (c *Client) WithListingsURL(wsURL string) *Client {
	c.listingsURL = wsURL
	return c
}

// Listings streams newly-announced pairs as they're published, as an
// alternative to polling GetNewPairs. It's entirely optional: a nil or
// closed channel here just means the scheduler keeps relying on its poll
// loop, so callers should treat a stream failure as informational, not
// fatal.
func (c *Client) Listings(ctx context.Context) (<-chan Pair, error) {
	if c.listingsURL == "" {
		return nil, providererr.ErrDisabled
	}
	stream := NewListingsStream(c.listingsURL, c.targetChainID)
	return stream.Listings(ctx)
}

// GetTokenPairs fetches and chain-filters a token's pairs. An empty result
// is cached for pairsEmptyTTL rather than pairsTTL so a token that just
// hasn't listed yet gets re-checked sooner than one with stable pairs.
func (c *Client) GetTokenPairs(ctx context.Context, addr model.TokenAddress) ([]Pair, error) {
	key := "pairs:" + string(addr)
	return c.pairs.DoTTL(ctx, key, func(cctx context.Context) ([]Pair, time.Duration, error) {
		var raw struct {
			Pairs []rawPair `json:"pairs"`
		}
		if err := c.get(cctx, fmt.Sprintf("/latest/dex/tokens/%s", addr), &raw); err != nil {
			return nil, pairsTTL, err
		}
		converted := filterAndConvert(raw.Pairs, c.targetChainID)
		if len(converted) == 0 {
			return converted, pairsEmptyTTL, nil
		}
		return converted, pairsTTL, nil
	})
}

// GetNewPairs tries the primary search endpoint first, falling back to the
// boosts endpoint (a reasonable proxy for "new") when the primary fails.
func (c *Client) GetNewPairs(ctx context.Context, limit int) ([]Pair, error) {
	var raw struct {
		Pairs []rawPair `json:"pairs"`
	}
	if err := c.get(ctx, "/latest/dex/search?q=new", &raw); err == nil {
		pairs := filterAndConvert(raw.Pairs, c.targetChainID)
		return capPairs(pairs, limit), nil
	}
	log.Debug().Str("provider", "dexagg").Msg("getNewPairs primary failed, using fallback")

	var boosts []struct {
		TokenAddress string `json:"tokenAddress"`
		ChainID      string `json:"chainId"`
	}
	if err := c.get(ctx, "/token-boosts/latest/v1", &boosts); err != nil {
		return nil, err
	}
	out := make([]Pair, 0, len(boosts))
	for _, b := range boosts {
		if c.targetChainID != "" && b.ChainID != c.targetChainID {
			continue
		}
		out = append(out, Pair{ChainID: b.ChainID, BaseTokenAddr: model.TokenAddress(b.TokenAddress)})
	}
	return capPairs(out, limit), nil
}

// GetTrending mirrors GetNewPairs's fallback shape, returning bare
// addresses rather than full pairs.
func (c *Client) GetTrending(ctx context.Context, limit int) ([]model.TokenAddress, error) {
	var raw struct {
		Pairs []rawPair `json:"pairs"`
	}
	if err := c.get(ctx, "/latest/dex/search?q=trending", &raw); err == nil {
		pairs := filterAndConvert(raw.Pairs, c.targetChainID)
		addrs := make([]model.TokenAddress, 0, len(pairs))
		for _, p := range capPairs(pairs, limit) {
			addrs = append(addrs, p.BaseTokenAddr)
		}
		return addrs, nil
	}
	log.Debug().Str("provider", "dexagg").Msg("getTrending primary failed, using fallback")

	var profiles []struct {
		TokenAddress string `json:"tokenAddress"`
		ChainID      string `json:"chainId"`
	}
	if err := c.get(ctx, "/token-profiles/latest/v1", &profiles); err != nil {
		return nil, err
	}
	addrs := make([]model.TokenAddress, 0, len(profiles))
	for _, p := range profiles {
		if c.targetChainID != "" && p.ChainID != c.targetChainID {
			continue
		}
		addrs = append(addrs, model.TokenAddress(p.TokenAddress))
		if len(addrs) >= limit {
			break
		}
	}
	return addrs, nil
}

func (c *Client) GetTokenInfo(ctx context.Context, addr model.TokenAddress) (TokenInfo, error) {
	return c.tokenInfo.Do(ctx, string(addr), pairsTTL, func(cctx context.Context) (TokenInfo, error) {
		var profiles []struct {
			TokenAddress   string `json:"tokenAddress"`
			Description    string `json:"description"`
			HasPaidProfile bool   `json:"hasPaidProfile"`
			Links          []struct {
				Type  string `json:"type"`
				Label string `json:"label"`
				URL   string `json:"url"`
			} `json:"links"`
		}
		if err := c.get(cctx, "/token-profiles/latest/v1", &profiles); err != nil {
			return TokenInfo{}, err
		}
		for _, p := range profiles {
			if !strings.EqualFold(p.TokenAddress, string(addr)) {
				continue
			}
			info := TokenInfo{HasPaidProfile: p.HasPaidProfile, Description: p.Description}
			for _, l := range p.Links {
				switch strings.ToLower(l.Type) {
				case "twitter":
					info.Links.Twitter = l.URL
				case "telegram":
					info.Links.Telegram = l.URL
				case "discord":
					info.Links.Discord = l.URL
				case "website":
					info.Links.Website = l.URL
				}
			}
			return info, nil
		}
		return TokenInfo{}, providererr.ErrSchema
	})
}

type rawPair struct {
	ChainID   string `json:"chainId"`
	PairAddr  string `json:"pairAddress"`
	BaseToken struct {
		Address string `json:"address"`
		Symbol  string `json:"symbol"`
		Name    string `json:"name"`
	} `json:"baseToken"`
	PriceUsd      string `json:"priceUsd"`
	Liquidity     struct{ Usd string `json:"usd"` } `json:"liquidity"`
	Volume        struct {
		H1  string `json:"h1"`
		H24 string `json:"h24"`
	} `json:"volume"`
	FDV           string `json:"fdv"`
	PairCreatedAt int64  `json:"pairCreatedAt"`
	Txns          struct {
		M5 struct {
			Buys  int `json:"buys"`
			Sells int `json:"sells"`
		} `json:"m5"`
	} `json:"txns"`
}

func filterAndConvert(raw []rawPair, chainID string) []Pair {
	out := make([]Pair, 0, len(raw))
	for _, r := range raw {
		if chainID != "" && r.ChainID != chainID {
			continue
		}
		out = append(out, Pair{
			ChainID:       r.ChainID,
			PairAddress:   r.PairAddr,
			BaseTokenAddr: model.TokenAddress(r.BaseToken.Address),
			BaseSymbol:    r.BaseToken.Symbol,
			BaseName:      r.BaseToken.Name,
			PriceUsd:      parseDecimal(r.PriceUsd),
			LiquidityUsd:  parseDecimal(r.Liquidity.Usd),
			Volume1hUsd:   parseDecimal(r.Volume.H1),
			Volume24hUsd:  parseDecimal(r.Volume.H24),
			MarketCapUsd:  parseDecimal(r.FDV),
			PairCreatedAt: r.PairCreatedAt,
			Buys5m:        r.Txns.M5.Buys,
			Sells5m:       r.Txns.M5.Sells,
		})
	}
	return out
}

func parseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func capPairs(p []Pair, limit int) []Pair {
	if limit > 0 && len(p) > limit {
		return p[:limit]
	}
	return p
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	if err := c.limiter.Acquire(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", providererr.ErrTransient, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.limiter.OnRejected()
		return fmt.Errorf("%w: %v", providererr.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.limiter.OnRejected()
		return providererr.ErrRateLimited
	}
	if resp.StatusCode >= 500 {
		c.limiter.OnRejected()
		return providererr.ErrTransient
	}
	c.limiter.OnSuccess()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", providererr.ErrTransient, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: unmarshal: %v", providererr.ErrSchema, err)
	}
	return nil
}
