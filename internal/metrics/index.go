package metrics

import "github.com/prometheus/client_golang/prometheus"

// Semantic index Prometheus metrics.
var (
	IndexSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "semantic_index_size",
			Help:      "Client profiles in the published index snapshot",
		},
	)

	IndexRebuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "semantic_index_rebuild_duration_seconds",
			Help:      "Time to build and publish an index snapshot",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	IndexRebuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "semantic_index_rebuilds_total",
			Help:      "Index rebuild attempts",
		},
		[]string{"status"},
	)

	IndexQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "semantic_index_queries_total",
			Help:      "Index queries by outcome",
		},
		[]string{"status"}, // "ok" / "empty" / "unavailable"
	)
)

func indexCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		IndexSize,
		IndexRebuildDuration,
		IndexRebuildsTotal,
		IndexQueriesTotal,
	}
}
