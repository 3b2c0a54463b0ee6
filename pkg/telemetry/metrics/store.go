package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/saturn/pkg/config"
)

// StoreMetrics tracks trust store operation metrics.
//
// Metrics:
//   - saturn_truststore_operations_total: operation count by operation, status
//   - saturn_truststore_operation_duration_seconds: operation duration histogram
//   - saturn_truststore_open_stores: currently open store handles
type StoreMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	openStores        prometheus.Gauge
}

// NewStoreMetrics creates and registers store metrics with the provided
// registry.
func NewStoreMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *StoreMetrics {
	sm := &StoreMetrics{
		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "operations_total",
				Help:      "Total number of trust store operations",
			},
			[]string{"operation", "status"},
		),
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "operation_duration_seconds",
				Help:      "Duration of trust store operations in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		openStores: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "open_stores",
				Help:      "Number of currently open trust store handles",
			},
		),
	}

	registry.MustRegister(sm.operationsTotal, sm.operationDuration, sm.openStores)
	return sm
}

// ObserveOperation records one operation's duration and outcome.
func (sm *StoreMetrics) ObserveOperation(operation string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	sm.operationsTotal.WithLabelValues(operation, status).Inc()
	sm.operationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// StoreOpened increments the open-stores gauge.
func (sm *StoreMetrics) StoreOpened() {
	sm.openStores.Inc()
}

// StoreClosed decrements the open-stores gauge.
func (sm *StoreMetrics) StoreClosed() {
	sm.openStores.Dec()
}
