package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	return m.GetCounter().GetValue()
}

func TestRegistry_ScanCycleCounters(t *testing.T) {
	m := NewRegistry(prometheus.NewRegistry())
	m.ScanCycles.Inc()
	m.ScanCyclesSkip.Inc()
	assert.Equal(t, 1.0, counterValue(t, m.ScanCycles))
	assert.Equal(t, 1.0, counterValue(t, m.ScanCyclesSkip))
}

func TestRegistry_StepTimer(t *testing.T) {
	m := NewRegistry(prometheus.NewRegistry())
	timer := m.StartStep("screening")
	timer.Stop()

	out := &dto.Metric{}
	require.NoError(t, m.StepDuration.WithLabelValues("screening").(prometheus.Histogram).Write(out))
	assert.Equal(t, uint64(1), out.GetHistogram().GetSampleCount())
}

func TestRegistry_RecordThresholds(t *testing.T) {
	m := NewRegistry(prometheus.NewRegistry())
	m.RecordThresholds(30, 50, 60)

	out := &dto.Metric{}
	require.NoError(t, m.ThresholdValue.WithLabelValues("min_on_chain_score").Write(out))
	assert.Equal(t, 30.0, out.GetGauge().GetValue())
}
