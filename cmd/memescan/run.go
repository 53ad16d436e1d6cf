package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/memescan/internal/acquisition"
	"github.com/sawpanic/memescan/internal/cache"
	"github.com/sawpanic/memescan/internal/config"
	"github.com/sawpanic/memescan/internal/discovery"
	"github.com/sawpanic/memescan/internal/feed"
	"github.com/sawpanic/memescan/internal/httpapi"
	"github.com/sawpanic/memescan/internal/metrics"
	"github.com/sawpanic/memescan/internal/notify"
	"github.com/sawpanic/memescan/internal/pipeline"
	"github.com/sawpanic/memescan/internal/providers/chainrpc"
	"github.com/sawpanic/memescan/internal/providers/dexagg"
	"github.com/sawpanic/memescan/internal/providers/directory"
	"github.com/sawpanic/memescan/internal/providers/holderapi"
	"github.com/sawpanic/memescan/internal/scamfilter"
	"github.com/sawpanic/memescan/internal/scheduler"
	"github.com/sawpanic/memescan/internal/store"
	"github.com/sawpanic/memescan/internal/store/postgres"
	"github.com/sawpanic/memescan/internal/threshold"
)

// outcomeReplayLimit bounds how many recent signal outcomes the optimizer
// considers on each post-cycle pass.
const outcomeReplayLimit = 500

func newRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the continuous scan-and-evaluate loop",
		Long:  "Starts the scheduler, the monitoring HTTP server, and blocks until interrupted (SIGINT/SIGTERM).",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file (defaults are used if omitted)")
	return cmd
}

func runEngine(ctx context.Context, configPath string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	facade := buildFacade(cfg)
	scamFilter := buildScamFilter(cfg)
	dirClient := buildDirectory(cfg)

	discoveryTracker := discovery.New()
	signalStore, closeStore, err := buildSignalStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	notifier := notify.NewLogNotifier()

	thresholdStore := threshold.New(cfg.ToThresholds())
	if persisted, ok, err := signalStore.LoadThresholds(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to load persisted thresholds, starting from config defaults")
	} else if ok {
		thresholdStore.Apply(persisted)
	}

	p := pipeline.New(facade, thresholdStore, discoveryTracker, scamFilter, notifier, signalStore, cfg.Screening)
	collector := feed.New(feed.Sources{Dex: facade.Dex, Directory: dirClient})

	if cfg.Endpoints.DexAggWS != "" && facade.Dex != nil {
		facade.Dex.WithListingsURL(cfg.Endpoints.DexAggWS)
		go streamListings(ctx, facade.Dex, p, thresholdStore)
	}

	reg := prometheus.NewRegistry()
	m := metrics.NewRegistry(reg)

	sched := scheduler.New(cfg.ScanInterval(), func(cctx context.Context) error {
		return runCycle(cctx, p, collector, discoveryTracker, signalStore, thresholdStore, m)
	})

	httpSrv := httpapi.New(httpapi.DefaultConfig(cfg.HTTP.ListenAddr), reg, sched, thresholdStore, version)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil {
			log.Error().Err(err).Msg("httpapi server exited")
		}
	}()

	runErr := sched.Run(ctx)

	if err := httpSrv.Shutdown(5 * time.Second); err != nil {
		log.Warn().Err(err).Msg("httpapi server shutdown error")
	}

	if runErr != nil && runErr != context.Canceled {
		return runErr
	}
	return nil
}

// runCycle is the scheduler's CycleFunc: collect candidates, evaluate
// each one, then nudge the dynamic thresholds from recent outcomes.
func runCycle(ctx context.Context, p *pipeline.Pipeline, collector *feed.Collector, disc *discovery.Tracker, signalStore store.SignalStore, thresholdStore *threshold.Store, m *metrics.Registry) error {
	candidates := collector.Collect(ctx)
	log.Info().Int("candidates", len(candidates)).Msg("scan cycle: candidates collected")

	now := time.Now()
	for _, addr := range candidates {
		res := p.Evaluate(ctx, addr, thresholdStore.Current().LearningMode)
		m.CandidatesEvaluated.WithLabelValues(string(res.Diagnostic)).Inc()

		if res.Signal != nil {
			m.SignalsEmitted.WithLabelValues(string(res.Signal.Track)).Inc()
		}
		disc.Observe(addr, scoreForDiagnostic(res), now)
	}
	disc.Sweep(now)

	recent, err := signalStore.RecentSignalsWithOutcomes(ctx, outcomeReplayLimit)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load recent outcomes for threshold optimizer")
	} else if changed := thresholdStore.Optimize(store.ToOptimizerOutcomes(recent)); changed {
		if err := signalStore.PersistThresholds(ctx, thresholdStore.Current()); err != nil {
			log.Warn().Err(err).Msg("failed to persist optimized thresholds")
		}
	}

	t := thresholdStore.Current()
	m.RecordThresholds(t.MinOnChainScore, t.MinSafetyScore, t.MaxBundleRiskScore)
	return nil
}

// streamListings is the optional push path alongside the poll-based
// feed.Collector: when a deployment configures a websocket URL it
// evaluates newly-listed pairs as soon as the aggregator announces them,
// instead of waiting for the next scan cycle. Reconnects with a fixed
// backoff on disconnect; the poll loop keeps running regardless.
func streamListings(ctx context.Context, dex *dexagg.Client, p *pipeline.Pipeline, thresholdStore *threshold.Store) {
	const reconnectDelay = 5 * time.Second
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		ch, err := dex.Listings(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("listings stream: dial failed, retrying")
			select {
			case <-ctx.Done():
				return
			case <-time.After(reconnectDelay):
			}
			continue
		}

		for pair := range ch {
			p.Evaluate(ctx, pair.BaseTokenAddr, thresholdStore.Current().LearningMode)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

// scoreForDiagnostic gives the discovery tracker a coarse score: the
// adjusted total for an emitted signal, and 0 for every other diagnostic.
func scoreForDiagnostic(res pipeline.Result) float64 {
	if res.Signal != nil {
		return res.Signal.OnChainScore.AdjustedTotal
	}
	return 0
}

func buildFacade(cfg config.Config) *acquisition.Facade {
	f := &acquisition.Facade{}
	if cfg.Endpoints.DexAgg != "" {
		f.Dex = dexagg.New(cfg.Endpoints.DexAgg, "solana")
	}
	if !cfg.ChainRPCDisabled && cfg.Endpoints.ChainRPC != "" {
		f.ChainRPC = chainrpc.New(cfg.Endpoints.ChainRPC, cfg.APIKeys.ChainRPC)
	}
	if cfg.Endpoints.HolderAPI != "" {
		f.Holders = holderapi.New(cfg.Endpoints.HolderAPI, cfg.APIKeys.HolderAPI, cache.NewAuto())
	}
	return f
}

func buildScamFilter(cfg config.Config) scamfilter.Filter {
	if cfg.Endpoints.ScamCheck == "" {
		return scamfilter.Noop{}
	}
	return scamfilter.New(cfg.Endpoints.ScamCheck, cfg.APIKeys.ScamCheck)
}

// buildSignalStore chooses the postgres-backed store when the database
// is configured and enabled, falling back to the in-memory default
// otherwise. The returned close func is always safe to defer.
func buildSignalStore(ctx context.Context, cfg config.Config) (store.SignalStore, func(), error) {
	if !cfg.Database.Enabled {
		return store.NewInMemory(), func() {}, nil
	}

	pgCfg := postgres.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		QueryTimeout:    cfg.Database.QueryTimeout,
		Enabled:         true,
	}
	pg, err := postgres.Open(ctx, pgCfg)
	if err != nil {
		return nil, func() {}, err
	}
	return pg, func() {
		if err := pg.Close(); err != nil {
			log.Warn().Err(err).Msg("postgres store close error")
		}
	}, nil
}

func buildDirectory(cfg config.Config) *directory.Client {
	if cfg.Endpoints.Directory == "" {
		return nil
	}
	return directory.New(cfg.Endpoints.Directory)
}
