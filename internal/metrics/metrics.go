// Package metrics holds the prometheus collectors of a filesystem instance.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation results used as the "result" label
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics counts filesystem operations per instance. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	Ops        *prometheus.CounterVec   // labels: op, result
	OpLatency  *prometheus.HistogramVec // labels: op
	LiveInodes prometheus.Gauge
}

// New creates the collectors for the filesystem instance fsName. They are
// not registered; see [Metrics.Register].
func New(fsName string) *Metrics {
	labels := prometheus.Labels{"fs": fsName}
	return &Metrics{
		Ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "jimfs",
			Name:        "operations_total",
			Help:        "Filesystem operations by operation and result.",
			ConstLabels: labels,
		}, []string{"op", "result"}),
		OpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   "jimfs",
			Name:        "operation_duration_seconds",
			Help:        "Filesystem operation latency.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"op"}),
		LiveInodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "jimfs",
			Name:        "live_inodes",
			Help:        "Inodes that still have at least one hard link.",
			ConstLabels: labels,
		}),
	}
}

// Register adds all collectors to reg
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.Ops, m.OpLatency, m.LiveInodes} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Observe records one finished operation
func (m *Metrics) Observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.Ops.WithLabelValues(op, result).Inc()
	m.OpLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *Metrics) InodeCreated() {
	if m != nil {
		m.LiveInodes.Inc()
	}
}

func (m *Metrics) InodeDestroyed() {
	if m != nil {
		m.LiveInodes.Dec()
	}
}
