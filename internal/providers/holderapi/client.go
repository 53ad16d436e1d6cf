// Package holderapi wraps a paid, authoritative holder-count API. Unlike
// chainrpc's pagination-capped count, this total is exact. The client also
// maintains a bounded per-token history of holder-count snapshots so
// callers can derive an hourly growth rate.
package holderapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/sawpanic/memescan/internal/cache"
	"github.com/sawpanic/memescan/internal/guard"
	"github.com/sawpanic/memescan/internal/model"
	"github.com/sawpanic/memescan/internal/providererr"
	"github.com/sawpanic/memescan/internal/ratelimit"
)

const (
	holdersTTL     = 60 * time.Second
	requestTimeout = 15 * time.Second
	historyWindow  = 2 * time.Hour
	maxExtrapolation = 3.0
)

// Holders mirrors getTokenHolders. Total is authoritative, not
// pagination-capped.
type Holders struct {
	Total      int
	TopHolders []HolderEntry
}

type HolderEntry struct {
	Owner string
	Pct   float64
}

type snapshot struct {
	count int
	at    time.Time
}

// Client wraps the holder API, plus a per-token snapshot history used by
// DeriveHolderChange1h. The history is kept in memory; each update is also
// written to persist when one is set, but nothing reads it back, so the
// history starts empty after a restart.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	holders *guard.Fetch[Holders]

	histMu  sync.Mutex
	history map[model.TokenAddress][]snapshot

	persist cache.BytesCache
}

func New(baseURL, apiKey string, persist cache.BytesCache) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: requestTimeout},
		holders: guard.NewFetch[Holders](guard.Config{
			Name: "holderapi.holders", Limiter: ratelimit.NewTokenBucket("holderapi", 5),
			CacheSize: 1000, SweepEvery: 2 * time.Minute, Timeout: requestTimeout,
		}),
		history: make(map[model.TokenAddress][]snapshot),
		persist: persist,
	}
}

func (c *Client) GetTokenHolders(ctx context.Context, addr model.TokenAddress) (Holders, error) {
	h, err := c.holders.Do(ctx, string(addr), holdersTTL, func(cctx context.Context) (Holders, error) {
		var raw struct {
			Holders []struct {
				Owner   string  `json:"owner"`
				Percent float64 `json:"percent"`
			} `json:"holders"`
			Total int `json:"total"`
		}
		url := fmt.Sprintf("%s/token/holders?address=%s&page=1&page_size=20", c.baseURL, addr)
		if err := c.get(cctx, url, &raw); err != nil {
			return Holders{}, err
		}
		top := make([]HolderEntry, 0, len(raw.Holders))
		for _, h := range raw.Holders {
			top = append(top, HolderEntry{Owner: h.Owner, Pct: h.Percent})
		}
		return Holders{Total: raw.Total, TopHolders: top}, nil
	})
	if err != nil {
		return Holders{}, err
	}
	c.recordSnapshot(ctx, addr, h.Total)
	return h, nil
}

func (c *Client) recordSnapshot(ctx context.Context, addr model.TokenAddress, count int) {
	now := time.Now()
	c.histMu.Lock()
	hist := append(c.history[addr], snapshot{count: count, at: now})
	cutoff := now.Add(-historyWindow)
	trimmed := hist[:0]
	for _, s := range hist {
		if s.at.After(cutoff) {
			trimmed = append(trimmed, s)
		}
	}
	c.history[addr] = trimmed
	snap := append([]snapshot(nil), trimmed...)
	c.histMu.Unlock()

	if c.persist != nil {
		_ = cache.PutJSON(ctx, c.persist, "holderhist:"+string(addr), snap, historyWindow)
	}
}

// DeriveHolderChange1h estimates the signed percent change in holder
// count over the last hour, using the closest-to-1h-old snapshot. If no
// snapshot falls in [30,90] minutes it extrapolates from the oldest
// available sample, capped at a 3x rate multiplier. Returns 0 if fewer
// than 5 minutes of history exist.
func (c *Client) DeriveHolderChange1h(addr model.TokenAddress, current int) float64 {
	c.histMu.Lock()
	hist := append([]snapshot(nil), c.history[addr]...)
	c.histMu.Unlock()

	if len(hist) == 0 {
		return 0
	}
	sort.Slice(hist, func(i, j int) bool { return hist[i].at.Before(hist[j].at) })

	now := time.Now()
	oldest := hist[0]
	if now.Sub(oldest.at) < 5*time.Minute {
		return 0
	}

	target := now.Add(-time.Hour)
	var closest *snapshot
	for i := range hist {
		s := hist[i]
		if s.at.After(now.Add(-90*time.Minute)) && s.at.Before(now.Add(-30*time.Minute)) {
			if closest == nil || absDur(s.at.Sub(target)) < absDur(closest.at.Sub(target)) {
				c := s
				closest = &c
			}
		}
	}

	if closest != nil {
		return pctChange(closest.count, current)
	}

	// Extrapolate from the oldest available sample to a 1-hour rate,
	// capped at maxExtrapolation.
	elapsed := now.Sub(oldest.at)
	if elapsed <= 0 {
		return 0
	}
	rawChange := pctChange(oldest.count, current)
	scale := time.Hour.Seconds() / elapsed.Seconds()
	if scale > maxExtrapolation {
		scale = maxExtrapolation
	}
	return rawChange * scale
}

func pctChange(from, to int) float64 {
	if from <= 0 {
		return 0
	}
	return (float64(to) - float64(from)) / float64(from) * 100
}

func absDur(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func (c *Client) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", providererr.ErrTransient, err)
	}
	req.Header.Set("token", c.apiKey)
	req.Header.Set("Accept", "application/json")

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

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", providererr.ErrTransient, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: unmarshal: %v", providererr.ErrSchema, err)
	}
	return nil
}
