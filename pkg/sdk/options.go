package matchdex

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Engine.
type Option interface {
	apply(*engineConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*engineConfig)

func (f optionFunc) apply(c *engineConfig) { f(c) }

type engineConfig struct {
	addrs    []string
	password string

	embedder Embedder
	feedback FeedbackSource

	vertical string
	weights  map[string]float64

	minScore            int
	slateCap            int
	workers             int
	dismissedSimilarity float64
	damping             float64
	indexFloor          float64
	vectorDimensions    int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis stores dismissal feedback in Redis. Without it the engine is
// purely in memory and feedback comes from WithFeedback, if set.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *engineConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithEmbedder sets the text embedding provider.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *engineConfig) {
		c.embedder = e
	})
}

// WithFeedback sets a custom dismissal feedback source.
// Takes precedence over the Redis-backed source.
func WithFeedback(f FeedbackSource) Option {
	return optionFunc(func(c *engineConfig) {
		c.feedback = f
	})
}

// WithVertical selects the scoring policy by name. Default: "realestate".
func WithVertical(name string) Option {
	return optionFunc(func(c *engineConfig) {
		c.vertical = name
	})
}

// WithWeights overrides individual scoring weights of the vertical policy,
// keyed by weight name.
func WithWeights(w map[string]float64) Option {
	return optionFunc(func(c *engineConfig) {
		c.weights = w
	})
}

// WithMinScore sets the qualifying threshold for slates. Default: 30.
func WithMinScore(n int) Option {
	return optionFunc(func(c *engineConfig) {
		c.minScore = n
	})
}

// WithSlateCap sets the maximum number of entries per slate. Default: 10.
func WithSlateCap(n int) Option {
	return optionFunc(func(c *engineConfig) {
		c.slateCap = n
	})
}

// WithWorkers sets how many clients are curated concurrently in batch mode.
// Default: 8.
func WithWorkers(n int) Option {
	return optionFunc(func(c *engineConfig) {
		c.workers = n
	})
}

// WithPenalty sets the dismissed-feedback penalty: candidates whose cosine
// similarity to a dismissed one exceeds similarity have their score
// multiplied by damping. Defaults: 0.85 and 0.1.
func WithPenalty(similarity, damping float64) Option {
	return optionFunc(func(c *engineConfig) {
		c.dismissedSimilarity = similarity
		c.damping = damping
	})
}

// WithIndexFloor sets the minimum similarity for semantic search hits.
func WithIndexFloor(floor float64) Option {
	return optionFunc(func(c *engineConfig) {
		c.indexFloor = floor
	})
}

// WithVectorDimensions enforces the profile embedding length.
// Zero (default) accepts any length.
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *engineConfig) {
		c.vectorDimensions = dim
	})
}

// WithLogger enables structured logging for SDK operations and for the
// scoring and curation internals, including warnings about degraded scores.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *engineConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *engineConfig) {
		c.metricsReg = reg
	})
}
