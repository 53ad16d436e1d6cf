package main

import (
	"context"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/memescan/internal/acquisition"
	"github.com/sawpanic/memescan/internal/config"
	"github.com/sawpanic/memescan/internal/discovery"
	"github.com/sawpanic/memescan/internal/feed"
	"github.com/sawpanic/memescan/internal/metrics"
	"github.com/sawpanic/memescan/internal/model"
	"github.com/sawpanic/memescan/internal/notify"
	"github.com/sawpanic/memescan/internal/pipeline"
	"github.com/sawpanic/memescan/internal/scamfilter"
	"github.com/sawpanic/memescan/internal/store"
	"github.com/sawpanic/memescan/internal/threshold"
)

func defaultTestConfig() config.Config {
	return config.Default()
}

func TestNewRunCmd_HasConfigFlag(t *testing.T) {
	cmd := newRunCmd()
	flag := cmd.Flags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}

func TestNewStatusCmd_DefaultsToLocalMonitoringAddr(t *testing.T) {
	cmd := newStatusCmd()
	flag := cmd.Flags().Lookup("addr")
	require.NotNil(t, flag)
	assert.Equal(t, "http://127.0.0.1:9090", flag.DefValue)
}

func TestNewVersionCmd_Runs(t *testing.T) {
	cmd := newVersionCmd()
	require.NotNil(t, cmd.RunE)
	assert.NoError(t, cmd.RunE(cmd, nil))
}

func TestBuildFacade_AllEndpointsEmptyYieldsEmptyFacade(t *testing.T) {
	cfg := defaultTestConfig()
	f := buildFacade(cfg)
	assert.Nil(t, f.Dex)
	assert.Nil(t, f.Holders)
	assert.Nil(t, f.ChainRPC)
}

func TestBuildFacade_WiresConfiguredEndpoints(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.Endpoints.DexAgg = "http://localhost:1"
	cfg.Endpoints.ChainRPC = "http://localhost:2"
	f := buildFacade(cfg)
	assert.NotNil(t, f.Dex)
	assert.NotNil(t, f.ChainRPC)
	assert.Nil(t, f.Holders)
}

func TestBuildFacade_ChainRPCDisabledFlagOverridesEndpoint(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.Endpoints.ChainRPC = "http://localhost:2"
	cfg.ChainRPCDisabled = true
	f := buildFacade(cfg)
	assert.Nil(t, f.ChainRPC)
}

func TestBuildScamFilter_NoopWhenUnconfigured(t *testing.T) {
	cfg := defaultTestConfig()
	filter := buildScamFilter(cfg)
	assert.IsType(t, scamfilter.Noop{}, filter)
}

func TestBuildSignalStore_DefaultsToInMemory(t *testing.T) {
	cfg := defaultTestConfig()
	s, closeFn, err := buildSignalStore(context.Background(), cfg)
	require.NoError(t, err)
	defer closeFn()
	require.NotNil(t, s)
}

func TestRunCycle_PersistsOptimizedThresholds(t *testing.T) {
	ctx := context.Background()
	signalStore := store.NewInMemory()

	// Seed enough losing outcomes to trip Optimize's tighten branch.
	for i := 0; i < 20; i++ {
		sig := &model.Signal{ID: fmt.Sprintf("sig-%d", i), TokenMetrics: &model.TokenMetrics{Address: model.TokenAddress(fmt.Sprintf("tok-%d", i))}}
		require.NoError(t, signalStore.RecordSignal(ctx, sig))
		require.NoError(t, signalStore.RecordOutcome(ctx, store.Outcome{SignalID: sig.ID, TokenAddr: sig.TokenMetrics.Address, WasWin: false}))
	}

	thresholdStore := threshold.NewDefault()
	before := thresholdStore.Current()

	p := pipeline.New(&acquisition.Facade{}, thresholdStore, discovery.New(), scamfilter.Noop{}, notify.NewLogNotifier(), signalStore, defaultTestConfig().Screening)
	collector := feed.New(feed.Sources{})
	reg := prometheus.NewRegistry()
	m := metrics.NewRegistry(reg)

	require.NoError(t, runCycle(ctx, p, collector, discovery.New(), signalStore, thresholdStore, m))

	after := thresholdStore.Current()
	assert.Greater(t, after.MinOnChainScore, before.MinOnChainScore)

	persisted, ok, err := signalStore.LoadThresholds(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, after.MinOnChainScore, persisted.MinOnChainScore)
}
