// Package chainrpc talks to a single blockchain's JSON-RPC endpoint for
// authoritative on-chain facts: mint/freeze authority, holder accounts,
// recent transactions, and a token's creation signature. Mint info and
// holder lookups are guarded (cached, rate-limited, deduplicated,
// circuit-broken) via internal/guard; the transaction and signature calls
// go straight to the endpoint with only a per-request timeout.
package chainrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/memescan/internal/guard"
	"github.com/sawpanic/memescan/internal/model"
	"github.com/sawpanic/memescan/internal/providererr"
	"github.com/sawpanic/memescan/internal/ratelimit"
)

const (
	mintInfoTTL  = 5 * time.Minute
	holdersTTL   = 60 * time.Second
	requestTimeout = 20 * time.Second
)

// Client wraps a Solana-style JSON-RPC endpoint. Disabled when no URL is
// configured; in that state every method returns providererr.ErrDisabled
// without attempting a network call.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	disabled   bool

	mintInfo *guard.Fetch[MintInfo]
	holders  *guard.Fetch[Holders]
}

// New constructs a chain RPC client. endpoint is the base JSON-RPC URL;
// apiKey, if set, is appended as a query parameter on every request.
func New(endpoint, apiKey string) *Client {
	c := &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: requestTimeout},
		disabled:   endpoint == "",
	}
	c.mintInfo = guard.NewFetch[MintInfo](guard.Config{
		Name: "chainrpc.mintInfo", Limiter: ratelimit.NewTokenBucket("chainrpc", 5),
		CacheSize: 1000, SweepEvery: 2 * time.Minute, Timeout: requestTimeout,
	})
	c.holders = guard.NewFetch[Holders](guard.Config{
		Name: "chainrpc.holders", Limiter: ratelimit.NewTokenBucket("chainrpc", 5),
		CacheSize: 1000, SweepEvery: 2 * time.Minute, Timeout: requestTimeout,
	})
	return c
}

// MintInfo mirrors getTokenMintInfo's response shape.
type MintInfo struct {
	MintAuthority   *string
	FreezeAuthority *string
	Decimals        int
	Supply          string
	IsInitialized   bool
}

// Holders mirrors getTokenHolders. Total may be pagination-capped — callers
// must treat it as a floor, not an exact count.
type Holders struct {
	Total       int
	TopHolders  []HolderEntry
}

type HolderEntry struct {
	Owner  string
	Amount string
	Pct    float64
}

// CreationSig mirrors getTokenCreationSignature.
type CreationSig struct {
	Signature string
	BlockTime int64
	Slot      uint64
}

// Transaction is a loosely-typed parsed transaction; downstream consumers
// only look at a handful of fields (signer, block time, account keys), so
// this stays a raw map rather than a fully-typed RPC transaction.
type Transaction map[string]any

func (c *Client) GetTokenMintInfo(ctx context.Context, addr model.TokenAddress) (MintInfo, error) {
	if c.disabled {
		return MintInfo{}, providererr.ErrDisabled
	}
	return c.mintInfo.Do(ctx, string(addr), mintInfoTTL, func(cctx context.Context) (MintInfo, error) {
		var raw struct {
			Result struct {
				Value struct {
					Data struct {
						Parsed struct {
							Info struct {
								MintAuthority   *string `json:"mintAuthority"`
								FreezeAuthority *string `json:"freezeAuthority"`
								Decimals        int     `json:"decimals"`
								Supply          string  `json:"supply"`
								IsInitialized   bool    `json:"isInitialized"`
							} `json:"info"`
						} `json:"parsed"`
					} `json:"data"`
				} `json:"value"`
			} `json:"result"`
		}
		if err := c.call(cctx, "getAccountInfo", []any{string(addr), map[string]string{"encoding": "jsonParsed"}}, &raw); err != nil {
			return MintInfo{}, err
		}
		info := raw.Result.Value.Data.Parsed.Info
		return MintInfo{
			MintAuthority:   info.MintAuthority,
			FreezeAuthority: info.FreezeAuthority,
			Decimals:        info.Decimals,
			Supply:          info.Supply,
			IsInitialized:   info.IsInitialized,
		}, nil
	})
}

func (c *Client) GetTokenHolders(ctx context.Context, addr model.TokenAddress) (Holders, error) {
	if c.disabled {
		return Holders{}, providererr.ErrDisabled
	}
	return c.holders.Do(ctx, string(addr), holdersTTL, func(cctx context.Context) (Holders, error) {
		var raw struct {
			Result struct {
				TokenAccounts []struct {
					Owner  string `json:"owner"`
					Amount string `json:"amount"`
				} `json:"token_accounts"`
			} `json:"result"`
		}
		if err := c.call(cctx, "getTokenAccounts", []any{map[string]any{"mint": string(addr), "page": 1, "limit": 1000}}, &raw); err != nil {
			return Holders{}, err
		}
		top := make([]HolderEntry, 0, len(raw.Result.TokenAccounts))
		for _, a := range raw.Result.TokenAccounts {
			top = append(top, HolderEntry{Owner: a.Owner, Amount: a.Amount})
		}
		return Holders{Total: len(top), TopHolders: top}, nil
	})
}

// GetRecentTransactions is never cached — callers want the freshest
// signature list for bundle/momentum analysis.
func (c *Client) GetRecentTransactions(ctx context.Context, addr model.TokenAddress, limit int) ([]string, error) {
	if c.disabled {
		return nil, providererr.ErrDisabled
	}
	var raw struct {
		Result []struct {
			Signature string `json:"signature"`
		} `json:"result"`
	}
	if err := c.call(ctx, "getSignaturesForAddress", []any{string(addr), map[string]any{"limit": limit}}, &raw); err != nil {
		log.Debug().Str("provider", "chainrpc").Err(err).Msg("getRecentTransactions failed")
		return nil, err
	}
	sigs := make([]string, 0, len(raw.Result))
	for _, r := range raw.Result {
		sigs = append(sigs, r.Signature)
	}
	return sigs, nil
}

func (c *Client) GetTransaction(ctx context.Context, signature string) (Transaction, error) {
	if c.disabled {
		return nil, providererr.ErrDisabled
	}
	var raw struct {
		Result Transaction `json:"result"`
	}
	if err := c.call(ctx, "getTransaction", []any{signature, map[string]string{"encoding": "jsonParsed"}}, &raw); err != nil {
		log.Debug().Str("provider", "chainrpc").Err(err).Msg("getTransaction failed")
		return nil, err
	}
	return raw.Result, nil
}

func (c *Client) GetTokenCreationSignature(ctx context.Context, addr model.TokenAddress) (CreationSig, error) {
	if c.disabled {
		return CreationSig{}, providererr.ErrDisabled
	}
	var raw struct {
		Result []struct {
			Signature string `json:"signature"`
			BlockTime int64  `json:"blockTime"`
			Slot      uint64 `json:"slot"`
		} `json:"result"`
	}
	if err := c.call(ctx, "getSignaturesForAddress", []any{string(addr), map[string]any{"limit": 1000}}, &raw); err != nil {
		log.Debug().Str("provider", "chainrpc").Err(err).Msg("getTokenCreationSignature failed")
		return CreationSig{}, err
	}
	if len(raw.Result) == 0 {
		return CreationSig{}, providererr.ErrSchema
	}
	oldest := raw.Result[len(raw.Result)-1]
	return CreationSig{Signature: oldest.Signature, BlockTime: oldest.BlockTime, Slot: oldest.Slot}, nil
}

// call performs one JSON-RPC request. It is not guarded directly — callers
// wrap it through guard.Fetch where caching applies, or call it bare for
// the no-cache endpoints, relying on the per-request timeout for bound.
func (c *Client) call(ctx context.Context, method string, params []any, out any) error {
	url := c.endpoint
	if c.apiKey != "" {
		url = fmt.Sprintf("%s?api-key=%s", url, c.apiKey)
	}

	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	if err != nil {
		return fmt.Errorf("%w: marshal request: %v", providererr.ErrSchema, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", providererr.ErrTransient, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", providererr.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return providererr.ErrRateLimited
	}
	if resp.StatusCode >= 500 {
		return providererr.ErrTransient
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", providererr.ErrTransient, err)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: unmarshal: %v", providererr.ErrSchema, err)
	}
	return nil
}
