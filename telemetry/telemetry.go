package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector captures telemetry events emitted while loading and serving the
// lambda debug mode configuration.
//
// Implementations may forward metrics to Prometheus, loggers or other
// monitoring systems. They should be inexpensive to call because hooks are
// executed inline with configuration reloads.
type Collector interface {
	IncLoad(outcome string)
	IncHotReload(file string)
	SetFunctionsConfigured(count int)
}

type noopCollector struct{}

// Noop returns a collector that discards all metrics.
func Noop() Collector {
	return noopCollector{}
}

func (noopCollector) IncLoad(string)             {}
func (noopCollector) IncHotReload(string)        {}
func (noopCollector) SetFunctionsConfigured(int) {}

// PrometheusCollector exposes telemetry counters via Prometheus.
type PrometheusCollector struct {
	loads      *prometheus.CounterVec
	hotReloads *prometheus.CounterVec
	functions  prometheus.Gauge
}

var (
	loadCounter          *prometheus.CounterVec
	loadCounterLock      sync.Mutex
	hotReloadCounter     *prometheus.CounterVec
	hotReloadCounterLock sync.Mutex
	functionsGauge       prometheus.Gauge
	functionsGaugeLock   sync.Mutex
)

// NewPrometheusCollector registers the required metrics with the provided
// registerer. Registration is idempotent: metrics that were already
// registered, for instance by an earlier session, are reused.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	loadCounterLock.Lock()
	if loadCounter == nil {
		counter := prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lambda_debug_mode_config_load_total",
			Help: "Number of debug mode configuration load attempts per outcome.",
		}, []string{"outcome"})
		if err := reg.Register(counter); err != nil {
			if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
				if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
					loadCounter = existing
				} else {
					loadCounterLock.Unlock()
					return nil, err
				}
			} else {
				loadCounterLock.Unlock()
				return nil, err
			}
		} else {
			loadCounter = counter
		}
	}
	loadCounterLock.Unlock()

	hotReloadCounterLock.Lock()
	if hotReloadCounter == nil {
		counter := prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lambda_debug_mode_config_hot_reload_total",
			Help: "Number of hot reload operations triggered by configuration file changes.",
		}, []string{"file"})
		if err := reg.Register(counter); err != nil {
			if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
				if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
					hotReloadCounter = existing
				} else {
					hotReloadCounterLock.Unlock()
					return nil, err
				}
			} else {
				hotReloadCounterLock.Unlock()
				return nil, err
			}
		} else {
			hotReloadCounter = counter
		}
	}
	hotReloadCounterLock.Unlock()

	functionsGaugeLock.Lock()
	if functionsGauge == nil {
		gauge := prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lambda_debug_mode_functions_configured",
			Help: "Number of functions with an active debug configuration.",
		})
		if err := reg.Register(gauge); err != nil {
			if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
				if existing, ok := already.ExistingCollector.(prometheus.Gauge); ok {
					functionsGauge = existing
				} else {
					functionsGaugeLock.Unlock()
					return nil, err
				}
			} else {
				functionsGaugeLock.Unlock()
				return nil, err
			}
		} else {
			functionsGauge = gauge
		}
	}
	functionsGaugeLock.Unlock()

	return &PrometheusCollector{
		loads:      loadCounter,
		hotReloads: hotReloadCounter,
		functions:  functionsGauge,
	}, nil
}

// IncLoad increments the load counter for the provided outcome.
func (p *PrometheusCollector) IncLoad(outcome string) {
	if p == nil || p.loads == nil {
		return
	}
	p.loads.WithLabelValues(outcome).Inc()
}

// IncHotReload increments the counter for the provided file path.
func (p *PrometheusCollector) IncHotReload(file string) {
	if p == nil || p.hotReloads == nil {
		return
	}
	p.hotReloads.WithLabelValues(file).Inc()
}

// SetFunctionsConfigured updates the gauge tracking configured functions.
func (p *PrometheusCollector) SetFunctionsConfigured(count int) {
	if p == nil || p.functions == nil {
		return
	}
	p.functions.Set(float64(count))
}
