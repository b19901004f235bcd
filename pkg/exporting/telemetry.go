package exporting

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const telemetryNamespace = "dockerstats"

// Cycle outcomes used as the result label.
const (
	ResultSuccess = "success"
	ResultPartial = "partial"
	ResultFailure = "failure"
)

// Telemetry reports on the collector itself.
type Telemetry struct {
	cycles     *prometheus.CounterVec
	duration   prometheus.Histogram
	published  prometheus.Gauge
	containers prometheus.Gauge
	failed     prometheus.Gauge
}

func NewTelemetry(reg prometheus.Registerer) *Telemetry {
	t := &Telemetry{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: telemetryNamespace,
			Name:      "cycles_total",
			Help:      "Collection cycles by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: telemetryNamespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of a collection cycle.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		published: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: telemetryNamespace,
			Name:      "published_metrics",
			Help:      "Metrics published by the last successful cycle.",
		}),
		containers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: telemetryNamespace,
			Name:      "containers_observed",
			Help:      "Running containers seen by the last successful cycle.",
		}),
		failed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: telemetryNamespace,
			Name:      "containers_failed",
			Help:      "Containers skipped by the last cycle.",
		}),
	}
	for _, r := range []string{ResultSuccess, ResultPartial, ResultFailure} {
		t.cycles.WithLabelValues(r)
	}
	reg.MustRegister(t.cycles, t.duration, t.published, t.containers, t.failed)
	return t
}

// Observe records one finished cycle.
func (t *Telemetry) Observe(result string, published, containers, failed int, took time.Duration) {
	t.cycles.WithLabelValues(result).Inc()
	t.duration.Observe(took.Seconds())
	t.failed.Set(float64(failed))
	if result != ResultFailure {
		t.published.Set(float64(published))
		t.containers.Set(float64(containers))
	}
}
