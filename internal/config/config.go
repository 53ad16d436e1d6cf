// Package config loads and validates the process-wide runtime
// configuration: scheduler pacing, provider API keys, screening bounds,
// and per-tier overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sawpanic/memescan/internal/model"
)

// Config is the complete recognised configuration surface.
type Config struct {
	ScanIntervalMs   int  `yaml:"scan_interval_ms"`
	LearningMode     bool `yaml:"learning_mode"`
	ChainRPCDisabled bool `yaml:"chain_rpc_disabled"`

	APIKeys    APIKeys           `yaml:"api_keys"`
	Endpoints  ProviderEndpoints `yaml:"endpoints"`
	Screening  ScreeningConfig   `yaml:"screening"`
	TierTuning map[string]Tier   `yaml:"tier_overrides"`
	Database   DatabaseConfig    `yaml:"database"`
	HTTP       HTTPConfig        `yaml:"http"`
}

// ProviderEndpoints holds the base URL for each provider. An empty URL
// (the default) disables that provider and its consumer degrades to
// permissive defaults.
type ProviderEndpoints struct {
	ChainRPC  string `yaml:"chain_rpc"`
	DexAgg    string `yaml:"dex_aggregator"`
	DexAggWS  string `yaml:"dex_aggregator_ws"`
	HolderAPI string `yaml:"holder_api"`
	Directory string `yaml:"directory"`
	ScamCheck string `yaml:"scam_check"`
}

// APIKeys holds per-provider credentials. Whether a provider is enabled
// depends only on its ProviderEndpoints entry; an empty key does not
// disable it.
type APIKeys struct {
	ChainRPC  string `yaml:"chain_rpc"`
	DexAgg    string `yaml:"dex_aggregator"`
	HolderAPI string `yaml:"holder_api"`
	Directory string `yaml:"directory"`
	ScamCheck string `yaml:"scam_check"`
}

// ScreeningConfig is the config-driven numeric bounds applied at
// pipeline step 6.
type ScreeningConfig struct {
	MinMarketCap            float64 `yaml:"min_market_cap"`
	MaxMarketCap            float64 `yaml:"max_market_cap"`
	Min24hVolume            float64 `yaml:"min_24h_volume"`
	MinVolumeMarketCapRatio float64 `yaml:"min_volume_market_cap_ratio"`
	MinHolderCount          int     `yaml:"min_holder_count"`
	MaxTop10Concentration   float64 `yaml:"max_top10_concentration"`
	MinLiquidity            float64 `yaml:"min_liquidity"`
}

// Tier is a per-tier override of model.TierConfig's YAML-facing fields.
type Tier struct {
	Enabled                bool    `yaml:"enabled"`
	MinLiquidity           float64 `yaml:"min_liquidity"`
	MinSafetyScore         float64 `yaml:"min_safety_score"`
	PositionSizeMultiplier float64 `yaml:"position_size_multiplier"`
	MaxPositionSize        float64 `yaml:"max_position_size"`
}

// DatabaseConfig mirrors internal/store/postgres.Config's YAML surface.
type DatabaseConfig struct {
	Enabled         bool          `yaml:"enabled"`
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	QueryTimeout    time.Duration `yaml:"query_timeout"`
}

// HTTPConfig controls the ambient metrics/health server.
type HTTPConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Default returns the stock configuration a fresh process starts with.
func Default() Config {
	return Config{
		ScanIntervalMs:   20000,
		LearningMode:     true,
		ChainRPCDisabled: false,
		Screening: ScreeningConfig{
			MinMarketCap:            50_000,
			MaxMarketCap:            150_000_000,
			Min24hVolume:            5_000,
			MinVolumeMarketCapRatio: 0.02,
			MinHolderCount:          25,
			MaxTop10Concentration:   85,
			MinLiquidity:            2_000,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			QueryTimeout:    10 * time.Second,
		},
		HTTP: HTTPConfig{ListenAddr: ":9090"},
	}
}

// Load reads and validates a YAML configuration file, filling any
// zero-valued field from Default() first.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: invalid: %w", err)
	}
	return cfg, nil
}

// Validate rejects a configuration that would make the scheduler or
// screening gates behave nonsensically.
func (c Config) Validate() error {
	if c.ScanIntervalMs <= 0 {
		return fmt.Errorf("scan_interval_ms must be positive, got %d", c.ScanIntervalMs)
	}
	s := c.Screening
	if s.MinMarketCap < 0 || s.MaxMarketCap <= 0 {
		return fmt.Errorf("screening market cap bounds must be positive")
	}
	if s.MaxMarketCap <= s.MinMarketCap {
		return fmt.Errorf("screening max_market_cap (%v) must exceed min_market_cap (%v)", s.MaxMarketCap, s.MinMarketCap)
	}
	if s.MaxTop10Concentration <= 0 || s.MaxTop10Concentration > 100 {
		return fmt.Errorf("screening max_top10_concentration must be in (0, 100], got %v", s.MaxTop10Concentration)
	}
	return nil
}

// ToThresholds seeds a model.Thresholds from the static config, as a
// starting point before ThresholdStore's dynamic optimizer takes over.
func (c Config) ToThresholds() model.Thresholds {
	t := model.DefaultThresholds()
	t.LearningMode = c.LearningMode
	t.MaxTop10Concentration = c.Screening.MaxTop10Concentration
	return t
}

// ScanInterval is ScanIntervalMs as a time.Duration.
func (c Config) ScanInterval() time.Duration {
	return time.Duration(c.ScanIntervalMs) * time.Millisecond
}
