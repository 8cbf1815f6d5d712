package metrics

import "github.com/prometheus/client_golang/prometheus"

// Matching and curation Prometheus metrics.
var (
	MatchScores = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_score",
			Help:      "Final match scores after feedback penalty",
			Buckets:   []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
		[]string{"vertical"},
	)

	MatchKnockoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_knockouts_total",
			Help:      "Candidates disqualified before positive scoring",
		},
		[]string{"vertical", "kind"}, // "knockout" / "data_error"
	)

	MatchPenaltiesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_penalties_total",
			Help:      "Scores damped for similarity to dismissed candidates",
		},
		[]string{"vertical"},
	)

	MatchDegradedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_degraded_total",
			Help:      "Scoring calls that proceeded without a collaborator",
		},
		[]string{"collaborator"}, // "embedding" / "feedback"
	)

	SlatesEmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slates_emitted_total",
			Help:      "Recommendation slates produced",
		},
		[]string{"mode"}, // "batch" / "consolidated" / "incremental"
	)

	CurationPassDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "curation_pass_duration_seconds",
			Help:      "Duration of a full curation pass",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
	)

	CurationPassesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "curation_passes_total",
			Help:      "Completed curation passes",
		},
		[]string{"status"}, // "ok" / "partial" / "error"
	)
)

func matchingCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		MatchScores,
		MatchKnockoutsTotal,
		MatchPenaltiesTotal,
		MatchDegradedTotal,
		SlatesEmittedTotal,
		CurationPassDuration,
		CurationPassesTotal,
	}
}
