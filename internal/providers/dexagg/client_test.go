package dexagg

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/memescan/internal/model"
)

func pairsHandler(t *testing.T, pairs []map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"pairs": pairs})
	}
}

func TestClient_GetTokenPairs_FiltersByChain(t *testing.T) {
	server := httptest.NewServer(pairsHandler(t, []map[string]any{
		{"chainId": "solana", "pairAddress": "p1", "baseToken": map[string]string{"address": "tokenA", "symbol": "AAA"}, "priceUsd": "1.5"},
		{"chainId": "ethereum", "pairAddress": "p2", "baseToken": map[string]string{"address": "tokenB", "symbol": "BBB"}, "priceUsd": "2.0"},
	}))
	defer server.Close()

	c := New(server.URL, "solana")
	pairs, err := c.GetTokenPairs(context.Background(), model.TokenAddress("tokenA"))
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "solana", pairs[0].ChainID)
}

func TestClient_GetTokenPairs_ParsesHourlyVolume(t *testing.T) {
	server := httptest.NewServer(pairsHandler(t, []map[string]any{
		{
			"chainId": "solana", "pairAddress": "p1",
			"baseToken": map[string]string{"address": "tokenA", "symbol": "AAA"},
			"priceUsd":  "1.5",
			"volume":    map[string]string{"h1": "12000", "h24": "240000"},
		},
	}))
	defer server.Close()

	c := New(server.URL, "solana")
	pairs, err := c.GetTokenPairs(context.Background(), model.TokenAddress("tokenA"))
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.True(t, pairs[0].Volume1hUsd.Equal(decimal.NewFromInt(12000)))
	assert.True(t, pairs[0].Volume24hUsd.Equal(decimal.NewFromInt(240000)))
}

func TestClient_GetTokenPairs_EmptyResultShortTTL(t *testing.T) {
	server := httptest.NewServer(pairsHandler(t, nil))
	defer server.Close()

	c := New(server.URL, "solana")
	pairs, err := c.GetTokenPairs(context.Background(), model.TokenAddress("missing"))
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestClient_GetNewPairs_FallsBackOnPrimaryFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/latest/dex/search", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/token-boosts/latest/v1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]string{
			{"tokenAddress": "tokenC", "chainId": "solana"},
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := New(server.URL, "solana")
	pairs, err := c.GetNewPairs(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, model.TokenAddress("tokenC"), pairs[0].BaseTokenAddr)
}

func TestClient_GetTokenInfo_ParsesSocialLinks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{
				"tokenAddress":   "tokenD",
				"hasPaidProfile": true,
				"links": []map[string]string{
					{"type": "twitter", "url": "https://twitter.com/x"},
					{"type": "website", "url": "https://x.io"},
				},
			},
		})
	}))
	defer server.Close()

	c := New(server.URL, "")
	info, err := c.GetTokenInfo(context.Background(), model.TokenAddress("tokenD"))
	require.NoError(t, err)
	assert.True(t, info.HasPaidProfile)
	assert.Equal(t, "https://twitter.com/x", info.Links.Twitter)
	assert.Equal(t, "https://x.io", info.Links.Website)
}
