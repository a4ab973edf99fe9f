package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrometheusMetricsLeavesRuntimeCollectorsToCaller(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	var m *Prometheus
	require.NotPanics(t, func() { m = NewPrometheusMetrics(reg, "workbench") })

	m.IncCacheMiss("posts")
	m.IncCacheMiss("posts")
	families, err := reg.Gather()
	require.NoError(t, err)
	var misses float64
	for _, mf := range families {
		if mf.GetName() == "query_cache_misses_total" {
			misses = mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	assert.Equal(t, 2.0, misses)
}
