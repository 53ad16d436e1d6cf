package scamfilter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoop_AlwaysAllows(t *testing.T) {
	v, err := Noop{}.Check(context.Background(), "addr-1")
	require.NoError(t, err)
	assert.Equal(t, VerdictAllow, v)
}

func TestClient_RejectsOnHighRisk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"risk": "danger"})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	v, err := c.Check(context.Background(), "addr-1")
	require.NoError(t, err)
	assert.Equal(t, VerdictReject, v)
}

func TestClient_AllowsOnLowRisk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"risk": "low"})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	v, err := c.Check(context.Background(), "addr-1")
	require.NoError(t, err)
	assert.Equal(t, VerdictAllow, v)
}

func TestClient_DefaultsToAllowOnTransportFailure(t *testing.T) {
	c := New("http://127.0.0.1:1", "")
	v, err := c.Check(context.Background(), "addr-1")
	require.NoError(t, err)
	assert.Equal(t, VerdictAllow, v)
}

func TestClient_EmptyBaseURLDisabled(t *testing.T) {
	c := New("", "")
	v, err := c.Check(context.Background(), "addr-1")
	require.NoError(t, err)
	assert.Equal(t, VerdictAllow, v)
}
