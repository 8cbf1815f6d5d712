package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/metrics"
)

// BudgetChecker is the local interface for budget enforcement.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

// Meta identifies the provider behind an embedder. Dimensions > 0 rejects
// vectors of any other length.
type Meta struct {
	Provider   string
	Model      string
	Dimensions int
}

// InstrumentedEmbedder enforces the token budget, attributes tokens to the
// pass usage carried by the context, and logs every provider call.
// Transport metrics are recorded by the provider clients.
type InstrumentedEmbedder struct {
	inner  domain.Embedder
	meta   Meta
	budget BudgetChecker
	logger *zap.Logger
}

// NewInstrumentedEmbedder wraps inner. budget may be nil.
func NewInstrumentedEmbedder(inner domain.Embedder, meta Meta, budget BudgetChecker, logger *zap.Logger) *InstrumentedEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedEmbedder{
		inner:  inner,
		meta:   meta,
		budget: budget,
		logger: logger.With(zap.String("provider", meta.Provider), zap.String("model", meta.Model)),
	}
}

// Embed checks the budget, delegates, then bills the tokens.
func (p *InstrumentedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if p.budget != nil {
		if err := p.budget.Check(ctx); err != nil {
			p.logger.Error("Budget exceeded", zap.Error(err))
			return domain.EmbeddingResult{}, fmt.Errorf("budget check: %w", err)
		}
	}

	start := time.Now()
	result, err := p.inner.Embed(ctx, text)
	duration := time.Since(start)
	if err != nil {
		p.logger.Error("Embedding request failed", zap.Duration("duration", duration), zap.Error(err))
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	// Tokens were spent even if the vector turns out unusable.
	p.bill(ctx, result.TotalTokens)

	if p.meta.Dimensions > 0 && len(result.Embedding) != p.meta.Dimensions {
		metrics.EmbeddingDimensionMismatchTotal.WithLabelValues(p.meta.Provider, p.meta.Model).Inc()
		p.logger.Error("Provider returned wrong dimensions",
			zap.Int("got", len(result.Embedding)), zap.Int("want", p.meta.Dimensions))
		return domain.EmbeddingResult{}, fmt.Errorf("embed: got %d dimensions, want %d: %w",
			len(result.Embedding), p.meta.Dimensions, domain.ErrVectorDimMismatch)
	}

	p.logger.Debug("Embedding request completed",
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return result, nil
}

func (p *InstrumentedEmbedder) bill(ctx context.Context, tokens int) {
	domain.UsageFromContext(ctx).AddTokens(tokens)
	if p.budget == nil || tokens <= 0 {
		return
	}
	p.budget.Record(int64(tokens))

	remaining := metrics.EmbeddingBudgetTokensRemaining
	if daily := p.budget.RemainingDaily(); daily >= 0 {
		remaining.WithLabelValues(p.meta.Provider, "daily").Set(float64(daily))
	}
	if monthly := p.budget.RemainingMonthly(); monthly >= 0 {
		remaining.WithLabelValues(p.meta.Provider, "monthly").Set(float64(monthly))
	}
}

// HealthCheck forwards to the inner embedder when it supports health checks.
func (p *InstrumentedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := p.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
