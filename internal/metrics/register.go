package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "matchdex"

var registerOnce sync.Once

// Register registers all matchdex collectors with the default registry.
// Safe to call more than once; must be called from main before serving /metrics.
func Register() {
	registerOnce.Do(func() {
		collectors := make([]prometheus.Collector, 0, 24)
		collectors = append(collectors, httpCollectors()...)
		collectors = append(collectors, embeddingCollectors()...)
		collectors = append(collectors, matchingCollectors()...)
		collectors = append(collectors, indexCollectors()...)
		prometheus.MustRegister(collectors...)
	})
}
