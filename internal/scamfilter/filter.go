// Package scamfilter wraps an external RugCheck-style scam-screening
// source: a Layer-1 check the pipeline runs after its own numeric
// screening, ahead of the heavier on-chain scoring work.
package scamfilter

import (
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

// Verdict is the scam filter's coarse call on a token.
type Verdict string

const (
	VerdictAllow  Verdict = "ALLOW"
	VerdictReject Verdict = "REJECT"
)

// Filter is the pipeline-facing boundary; Noop and Client both satisfy it.
type Filter interface {
	Check(ctx context.Context, addr model.TokenAddress) (Verdict, error)
}

// Noop always allows. It's the default when no external source is
// configured, matching the "dependency disabled by config → permissive
// default" rule every other optional collaborator follows.
type Noop struct{}

func (Noop) Check(ctx context.Context, addr model.TokenAddress) (Verdict, error) {
	return VerdictAllow, nil
}

const (
	checkTTL       = 10 * time.Minute
	requestTimeout = 15 * time.Second
)

// Client calls a RugCheck-style REST endpoint. Any transport, schema, or
// rate-limit failure degrades to VerdictAllow — a scam filter that can't
// answer must never itself gate a signal out.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	check      *guard.Fetch[Verdict]
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: requestTimeout},
		check: guard.NewFetch[Verdict](guard.Config{
			Name: "scamfilter.check", Limiter: ratelimit.NewTokenBucket("scamfilter", 5),
			CacheSize: 2000, SweepEvery: 5 * time.Minute, Timeout: requestTimeout,
		}),
	}
}

func (c *Client) Check(ctx context.Context, addr model.TokenAddress) (Verdict, error) {
	if c.baseURL == "" {
		return VerdictAllow, nil
	}
	v, err := c.check.Do(ctx, string(addr), checkTTL, func(cctx context.Context) (Verdict, error) {
		var raw struct {
			Risk string `json:"risk"`
		}
		if err := c.get(cctx, fmt.Sprintf("%s/v1/tokens/%s/report", c.baseURL, addr), &raw); err != nil {
			return VerdictAllow, err
		}
		switch raw.Risk {
		case "danger", "critical", "high":
			return VerdictReject, nil
		default:
			return VerdictAllow, nil
		}
	})
	if err != nil {
		log.Debug().Str("provider", "scamfilter").Err(err).Msg("check failed, defaulting to allow")
		return VerdictAllow, nil
	}
	return v, nil
}

func (c *Client) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests {
		return providererr.ErrRateLimited
	}
	if resp.StatusCode >= 500 {
		return providererr.ErrTransient
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("scamfilter: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return providererr.ErrSchema
	}
	return nil
}
