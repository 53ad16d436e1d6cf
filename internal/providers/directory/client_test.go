package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetVerifiedTokens_RespectsLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tokens/v2/tag", r.URL.Path)
		assert.Equal(t, "verified", r.URL.Query().Get("query"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]string{
			{"id": "tok1"}, {"id": "tok2"}, {"id": "tok3"},
		})
	}))
	defer server.Close()

	c := New(server.URL)
	addrs, err := c.GetVerifiedTokens(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, addrs, 2)
}

func TestClient_GetRecentTokens_Uncached(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]string{{"id": "tokX"}})
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.GetRecentTokens(context.Background(), 10)
	require.NoError(t, err)
	_, err = c.GetRecentTokens(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "recent tokens must not be cached")
}
