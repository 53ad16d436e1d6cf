package dexagg

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/memescan/internal/providererr"
)

var upgrader = websocket.Upgrader{}

func TestListingsStream_ReceivesFilteredPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		_ = conn.WriteJSON(rawPair{
			ChainID:  "solana",
			PairAddr: "pair1",
			BaseToken: struct {
				Address string `json:"address"`
				Symbol  string `json:"symbol"`
				Name    string `json:"name"`
			}{Address: "tokNew", Symbol: "NEW", Name: "New Token"},
		})
		time.Sleep(50 * time.Millisecond)
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	stream := NewListingsStream(wsURL, "solana")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ch, err := stream.Listings(ctx)
	require.NoError(t, err)

	select {
	case p, ok := <-ch:
		require.True(t, ok)
		assert.Equal(t, "tokNew", string(p.BaseTokenAddr))
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for listing")
	}

	require.NoError(t, stream.Close())
}

func TestClient_Listings_DisabledWithoutURL(t *testing.T) {
	c := New("http://localhost", "solana")
	_, err := c.Listings(context.Background())
	assert.ErrorIs(t, err, providererr.ErrDisabled)
}

func TestClient_WithListingsURL_Enables(t *testing.T) {
	c := New("http://localhost", "solana").WithListingsURL("ws://localhost:1/listings")
	assert.Equal(t, "ws://localhost:1/listings", c.listingsURL)
}
