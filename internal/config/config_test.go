package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_PassesValidate(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
scan_interval_ms: 5000
learning_mode: false
screening:
  min_market_cap: 100000
  max_market_cap: 200000000
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.ScanIntervalMs)
	assert.False(t, cfg.LearningMode)
	assert.Equal(t, 100000.0, cfg.Screening.MinMarketCap)
	assert.Equal(t, 25, cfg.Screening.MinHolderCount) // untouched field keeps its default
}

func TestValidate_RejectsInvertedMarketCapBounds(t *testing.T) {
	cfg := Default()
	cfg.Screening.MinMarketCap = 1_000_000
	cfg.Screening.MaxMarketCap = 500_000
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsNonPositiveScanInterval(t *testing.T) {
	cfg := Default()
	cfg.ScanIntervalMs = 0
	assert.Error(t, cfg.Validate())
}

func TestScanInterval_ConvertsMillis(t *testing.T) {
	cfg := Default()
	cfg.ScanIntervalMs = 20000
	assert.Equal(t, "20s", cfg.ScanInterval().String())
}
