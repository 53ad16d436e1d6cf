package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/memescan/internal/threshold"
)

func TestServer_Healthz(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := New(DefaultConfig(":0"), reg, nil, threshold.NewDefault(), "test")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body healthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "test", body.Version)
}

func TestServer_Status_NilSchedulerOmitsPanic(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := New(DefaultConfig(":0"), reg, nil, threshold.NewDefault(), "test")

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body statusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "test", body.Version)
}

func TestServer_Metrics_ServesPrometheusFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_counter", Help: "h"})
	reg.MustRegister(counter)
	counter.Inc()

	s := New(DefaultConfig(":0"), reg, nil, threshold.NewDefault(), "test")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_counter 1")
}
