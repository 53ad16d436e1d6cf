// Package directory wraps a token directory/listing API used for two
// scan-feed sources: the verified-tag list and the recently-added list.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sawpanic/memescan/internal/guard"
	"github.com/sawpanic/memescan/internal/model"
	"github.com/sawpanic/memescan/internal/providererr"
	"github.com/sawpanic/memescan/internal/ratelimit"
)

const (
	verifiedTTL    = 10 * time.Minute
	requestTimeout = 15 * time.Second
)

type Client struct {
	baseURL    string
	httpClient *http.Client

	verified *guard.Fetch[[]model.TokenAddress]
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		verified: guard.NewFetch[[]model.TokenAddress](guard.Config{
			Name: "directory.verified", Limiter: ratelimit.NewMinInterval("directory", 500*time.Millisecond),
			CacheSize: 4, SweepEvery: 5 * time.Minute, Timeout: requestTimeout,
		}),
	}
}

func (c *Client) GetVerifiedTokens(ctx context.Context, limit int) ([]model.TokenAddress, error) {
	addrs, err := c.verified.Do(ctx, "verified", verifiedTTL, func(cctx context.Context) ([]model.TokenAddress, error) {
		var raw []struct {
			ID string `json:"id"`
		}
		if err := c.get(cctx, c.baseURL+"/tokens/v2/tag?query=verified", &raw); err != nil {
			return nil, err
		}
		out := make([]model.TokenAddress, 0, len(raw))
		for _, r := range raw {
			out = append(out, model.TokenAddress(r.ID))
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(addrs) > limit {
		addrs = addrs[:limit]
	}
	return addrs, nil
}

// GetRecentTokens is deliberately uncached: callers want the freshest
// listing every scan cycle.
func (c *Client) GetRecentTokens(ctx context.Context, limit int) ([]model.TokenAddress, error) {
	var raw []struct {
		ID string `json:"id"`
	}
	if err := c.get(ctx, c.baseURL+"/tokens/v2/recent", &raw); err != nil {
		return nil, err
	}
	out := make([]model.TokenAddress, 0, len(raw))
	for _, r := range raw {
		out = append(out, model.TokenAddress(r.ID))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", providererr.ErrTransient, err)
	}
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
