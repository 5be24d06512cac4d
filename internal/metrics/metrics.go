// Package metrics holds the Prometheus collectors recorded by a bloomcheck run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors of one run on its own registry.
type Metrics struct {
	Registry *prometheus.Registry

	BuildDuration  *prometheus.HistogramVec
	Members        prometheus.Gauge
	FilterBits     prometheus.Gauge
	FilterHashes   prometheus.Gauge
	FillRatio      prometheus.Gauge
	Queries        prometheus.Counter
	FalsePositives prometheus.Counter
	Rate           *prometheus.GaugeVec
}

// New creates and registers the collectors under namespace.
func New(namespace string) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		BuildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Time spent building the filter.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"backend"}),
		Members: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "members",
			Help:      "Members inserted into the filter.",
		}),
		FilterBits: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "filter_bits",
			Help:      "Size m of the filter bit array.",
		}),
		FilterHashes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "filter_hashes",
			Help:      "Number k of hash functions.",
		}),
		FillRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "filter_fill_ratio",
			Help:      "Fraction of filter bits set.",
		}),
		Queries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Absent candidates queried.",
		}),
		FalsePositives: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "false_positives_total",
			Help:      "Absent candidates the filter reported as present.",
		}),
		Rate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "false_positive_rate",
			Help:      "False positive rate by kind: configured, estimated or observed.",
		}, []string{"kind"}),
	}
	m.Registry.MustRegister(
		m.BuildDuration,
		m.Members,
		m.FilterBits,
		m.FilterHashes,
		m.FillRatio,
		m.Queries,
		m.FalsePositives,
		m.Rate,
	)
	return m
}

// ObserveBuild records how long building on backend took since start.
func (m *Metrics) ObserveBuild(backend string, start time.Time) {
	m.BuildDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
}

// WriteTextfile writes the registry in the text exposition format, for the
// node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
