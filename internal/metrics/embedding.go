package metrics

import "github.com/prometheus/client_golang/prometheus"

const embeddingSubsystem = "embedding"

// Embedding provider, budget and cache metrics. Provider calls are labeled
// by provider and model so OpenAI-compatible and Gemini traffic stay apart.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: embeddingSubsystem,
			Name:      "requests_total",
			Help:      "Provider embedding calls by outcome",
		},
		[]string{"provider", "model", "status"}, // "success" / "error"
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: embeddingSubsystem,
			Name:      "request_duration_seconds",
			Help:      "Provider embedding call latency",
			Buckets:   prometheus.ExponentialBuckets(0.025, 2, 10),
		},
		[]string{"provider", "model"},
	)

	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: embeddingSubsystem,
			Name:      "tokens_total",
			Help:      "Tokens reported by the provider",
		},
		[]string{"provider", "model", "type"}, // "prompt" / "total"
	)

	EmbeddingErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: embeddingSubsystem,
			Name:      "errors_total",
			Help:      "Provider embedding failures by error type",
		},
		[]string{"provider", "model", "error_type"},
	)

	EmbeddingDimensionMismatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: embeddingSubsystem,
			Name:      "dimension_mismatches_total",
			Help:      "Provider vectors rejected for having the wrong dimensionality",
		},
		[]string{"provider", "model"},
	)

	EmbeddingBudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: embeddingSubsystem,
			Name:      "budget_tokens_remaining",
			Help:      "Tokens left in the current budget window; unset when unlimited",
		},
		[]string{"provider", "period"}, // "daily" / "monthly"
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: embeddingSubsystem,
			Name:      "cache_lookups_total",
			Help:      "Embedding cache lookups by result",
		},
		[]string{"result"}, // "hit" / "miss" / "stale"
	)
)

func embeddingCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		EmbeddingRequestsTotal,
		EmbeddingRequestDuration,
		EmbeddingTokensTotal,
		EmbeddingErrorsTotal,
		EmbeddingDimensionMismatchTotal,
		EmbeddingBudgetTokensRemaining,
		EmbeddingCacheTotal,
	}
}
