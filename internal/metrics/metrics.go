// Package metrics holds the process-wide Prometheus registry: scan-cycle
// counters, per-step latency histograms, and provider error counts.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every metric the scheduler and pipeline touch. Construct
// one per process with NewRegistry and share it by pointer.
type Registry struct {
	ScanCycles     prometheus.Counter
	ScanCyclesSkip prometheus.Counter
	ScanDuration   prometheus.Histogram

	CandidatesEvaluated *prometheus.CounterVec // label: diagnostic
	SignalsEmitted      *prometheus.CounterVec // label: track

	StepDuration  *prometheus.HistogramVec // label: step
	ProviderCalls *prometheus.CounterVec   // labels: provider, outcome

	ThresholdValue *prometheus.GaugeVec // label: name (min_on_chain_score, min_safety_score, max_bundle_risk_score)
}

// NewRegistry builds and registers every metric against reg. Passing
// prometheus.NewRegistry() (rather than the global DefaultRegisterer)
// keeps tests free of cross-test registration panics.
func NewRegistry(reg prometheus.Registerer) *Registry {
	m := &Registry{
		ScanCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "memescan_scan_cycles_total",
			Help: "Total number of completed scan cycles.",
		}),
		ScanCyclesSkip: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "memescan_scan_cycles_skipped_total",
			Help: "Total number of scan cycles skipped because the previous one was still running.",
		}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "memescan_scan_cycle_duration_seconds",
			Help:    "Wall-clock duration of a full scan cycle.",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		CandidatesEvaluated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "memescan_candidates_evaluated_total",
			Help: "Total candidates evaluated, by terminal diagnostic.",
		}, []string{"diagnostic"}),
		SignalsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "memescan_signals_emitted_total",
			Help: "Total signals emitted, by track.",
		}, []string{"track"}),
		StepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "memescan_pipeline_step_duration_seconds",
			Help:    "Duration of individual pipeline steps.",
			Buckets: []float64{0.001, 0.005, 0.025, 0.1, 0.5, 1, 5},
		}, []string{"step"}),
		ProviderCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "memescan_provider_calls_total",
			Help: "Total provider calls, by provider and outcome.",
		}, []string{"provider", "outcome"}),
		ThresholdValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "memescan_threshold_value",
			Help: "Current value of a dynamically-tuned threshold.",
		}, []string{"name"}),
	}

	reg.MustRegister(
		m.ScanCycles,
		m.ScanCyclesSkip,
		m.ScanDuration,
		m.CandidatesEvaluated,
		m.SignalsEmitted,
		m.StepDuration,
		m.ProviderCalls,
		m.ThresholdValue,
	)
	return m
}

// StepTimer times a single pipeline step; call Stop when it completes.
type StepTimer struct {
	m     *Registry
	step  string
	start time.Time
}

func (m *Registry) StartStep(step string) *StepTimer {
	return &StepTimer{m: m, step: step, start: time.Now()}
}

func (t *StepTimer) Stop() {
	t.m.StepDuration.WithLabelValues(t.step).Observe(time.Since(t.start).Seconds())
}

// RecordProviderCall tags a provider round-trip as "ok", "error", or
// "disabled" for the cross-provider health dashboard.
func (m *Registry) RecordProviderCall(provider, outcome string) {
	m.ProviderCalls.WithLabelValues(provider, outcome).Inc()
}

// RecordThresholds mirrors the live gate values from threshold.Store into
// gauges so /metrics shows what the optimizer is currently doing.
func (m *Registry) RecordThresholds(minOnChain, minSafety, maxBundleRisk float64) {
	m.ThresholdValue.WithLabelValues("min_on_chain_score").Set(minOnChain)
	m.ThresholdValue.WithLabelValues("min_safety_score").Set(minSafety)
	m.ThresholdValue.WithLabelValues("max_bundle_risk_score").Set(maxBundleRisk)
}
