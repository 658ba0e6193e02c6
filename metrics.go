package cloak

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the Prometheus collectors of an engine.
// A nil *metrics records nothing.
type metrics struct {
	traversals *prometheus.CounterVec
	masked     *prometheus.CounterVec
	cycles     *prometheus.CounterVec
	failures   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		return nil
	}
	return &metrics{
		traversals: registerCollector(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cloak_traversals_total",
			Help: "Completed traversals by mode.",
		}, []string{"mode"})),
		masked: registerCollector(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cloak_fields_masked_total",
			Help: "Field values masked by strategy.",
		}, []string{"strategy"})),
		cycles: registerCollector(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cloak_cycles_total",
			Help: "Reference cycles cut by mode.",
		}, []string{"mode"})),
		failures: registerCollector(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cloak_field_failures_total",
			Help: "Fields that could not be masked by mode.",
		}, []string{"mode"})),
		duration: registerCollector(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cloak_traversal_duration_seconds",
			Help:    "Traversal latency by mode.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"mode"})),
	}
}

// registerCollector registers c, reusing an identical collector that is
// already registered so several engines can share one registry.
func registerCollector[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

func (m *metrics) traversal(mode string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.traversals.WithLabelValues(mode).Inc()
	m.duration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

func (m *metrics) fieldMasked(strategy string) {
	if m == nil {
		return
	}
	m.masked.WithLabelValues(strategy).Inc()
}

func (m *metrics) cycle(mode string) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(mode).Inc()
}

func (m *metrics) fieldFailure(mode string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(mode).Inc()
}
