package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func resetCollectors() {
	loadCounterLock.Lock()
	loadCounter = nil
	loadCounterLock.Unlock()
	hotReloadCounterLock.Lock()
	hotReloadCounter = nil
	hotReloadCounterLock.Unlock()
	functionsGaugeLock.Lock()
	functionsGauge = nil
	functionsGaugeLock.Unlock()
}

func TestNoopCollector(t *testing.T) {
	collector := Noop()
	require.NotNil(t, collector)
	collector.IncLoad("loaded")
	collector.IncHotReload("debug.yaml")
	collector.SetFunctionsConfigured(3)
}

func TestPrometheusCollectorRegistersAndReusesMetrics(t *testing.T) {
	resetCollectors()

	reg := prometheus.NewRegistry()
	collector, err := NewPrometheusCollector(reg)
	require.NoError(t, err)
	require.NotNil(t, collector)

	collector.IncLoad("loaded")
	collector.IncHotReload("debug.yaml")
	collector.SetFunctionsConfigured(2)

	metrics, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, metrics, 3)

	byName := make(map[string]*dto.MetricFamily, len(metrics))
	for _, mf := range metrics {
		byName[mf.GetName()] = mf
	}

	loads := byName["lambda_debug_mode_config_load_total"]
	require.NotNil(t, loads)
	requireCounterValue(t, loads, 1)

	reloads := byName["lambda_debug_mode_config_hot_reload_total"]
	require.NotNil(t, reloads)
	requireCounterValue(t, reloads, 1)

	gauge := byName["lambda_debug_mode_functions_configured"]
	require.NotNil(t, gauge)
	require.Len(t, gauge.Metric, 1)
	require.NotNil(t, gauge.Metric[0].Gauge)
	require.Equal(t, float64(2), gauge.Metric[0].Gauge.GetValue())

	again, err := NewPrometheusCollector(reg)
	require.NoError(t, err)
	require.Same(t, collector.loads, again.loads)
	require.Same(t, collector.hotReloads, again.hotReloads)

	again.IncLoad("loaded")

	metrics, err = reg.Gather()
	require.NoError(t, err)
	for _, mf := range metrics {
		if mf.GetName() == "lambda_debug_mode_config_load_total" {
			requireCounterValue(t, mf, 2)
		}
	}
}

func TestPrometheusCollectorNilReceiver(t *testing.T) {
	var collector *PrometheusCollector
	collector.IncLoad("loaded")
	collector.IncHotReload("debug.yaml")
	collector.SetFunctionsConfigured(1)
}

func requireCounterValue(t *testing.T, mf *dto.MetricFamily, value float64) {
	t.Helper()
	require.Len(t, mf.Metric, 1)
	require.NotNil(t, mf.Metric[0].Counter)
	require.Equal(t, value, mf.Metric[0].Counter.GetValue())
}
