package embedding

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

type healthyEmbedder struct {
	mockEmbedder
	healthErr error
}

func (h *healthyEmbedder) HealthCheck(_ context.Context) error { return h.healthErr }

func TestInstrumentedEmbedder_Success(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}}
	p := NewInstrumentedEmbedder(inner, Meta{Provider: "test", Model: "test-model"}, nil, nil)

	result, err := p.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 {
		t.Fatalf("expected 3 dimensions, got %d", len(result.Embedding))
	}
}

func TestInstrumentedEmbedder_ErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	inner := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	p := NewInstrumentedEmbedder(inner, Meta{Provider: "test-err", Model: "test-model-e"}, nil, zap.New(core))

	_, err := p.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
	if logs.FilterMessage("Embedding request failed").Len() != 1 {
		t.Errorf("expected one failure log, got %v", logs.All())
	}
}

func TestInstrumentedEmbedder_BudgetRejection(t *testing.T) {
	budget := newTracker(100, 0, BudgetActionReject, fixedClock())
	budget.Record(100)

	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	p := NewInstrumentedEmbedder(inner, Meta{Provider: "test-budget", Model: "test-model-b"}, budget, zap.NewNop())

	_, err := p.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingQuotaExceeded) {
		t.Fatalf("expected ErrEmbeddingQuotaExceeded, got %v", err)
	}
	if inner.calls != 0 {
		t.Errorf("provider must not be called over budget, got %d calls", inner.calls)
	}
}

func TestInstrumentedEmbedder_RecordsBudgetAndMetrics(t *testing.T) {
	budget := newTracker(1000000, 10000000, BudgetActionReject, fixedClock())
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2, 0.3},
		PromptTokens: 500,
		TotalTokens:  500,
	}}
	p := NewInstrumentedEmbedder(inner, Meta{Provider: "test-record", Model: "test-model-r"}, budget, zap.NewNop())

	if _, err := p.Embed(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := budget.RemainingDaily(); got != 1000000-500 {
		t.Errorf("expected daily remaining %d, got %d", 1000000-500, got)
	}
	gauge := metrics.EmbeddingBudgetTokensRemaining.WithLabelValues("test-record", "monthly")
	if got := testutil.ToFloat64(gauge); got != 10000000-500 {
		t.Errorf("expected monthly gauge %d, got %v", 10000000-500, got)
	}
}

func TestInstrumentedEmbedder_CacheHitSkipsBudget(t *testing.T) {
	budget := newTracker(1000, 0, BudgetActionReject, fixedClock())
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	p := NewInstrumentedEmbedder(inner, Meta{Provider: "test-hit", Model: "m"}, budget, zap.NewNop())

	_, _ = p.Embed(context.Background(), "hello")
	if budget.DailyUsed() != 0 {
		t.Errorf("zero-token results must not be recorded, got %d", budget.DailyUsed())
	}
}

func TestInstrumentedEmbedder_HealthCheck(t *testing.T) {
	p := NewInstrumentedEmbedder(&mockEmbedder{}, Meta{Provider: "p", Model: "m"}, nil, nil)
	if err := p.HealthCheck(context.Background()); err != nil {
		t.Errorf("plain embedder should report healthy, got %v", err)
	}

	down := &healthyEmbedder{healthErr: errors.New("down")}
	p = NewInstrumentedEmbedder(down, Meta{Provider: "p", Model: "m"}, nil, nil)
	if err := p.HealthCheck(context.Background()); err == nil {
		t.Error("expected forwarded health error")
	}
}

func TestInstrumentedEmbedder_RecordsContextUsage(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}, TotalTokens: 7}}
	p := NewInstrumentedEmbedder(inner, Meta{Provider: "test-usage", Model: "test-model-u"}, nil, nil)

	ctx, usage := domain.NewContextWithUsage(context.Background())
	for range 3 {
		if _, err := p.Embed(ctx, "hello"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if usage.Calls() != 3 || usage.Tokens() != 21 {
		t.Errorf("usage: calls=%d tokens=%d, want 3/21", usage.Calls(), usage.Tokens())
	}

	// no collector in context must not panic
	if _, err := p.Embed(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInstrumentedEmbedder_DimensionGuard(t *testing.T) {
	budget := newTracker(1000, 0, BudgetActionReject, fixedClock())
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}, TotalTokens: 9}}
	p := NewInstrumentedEmbedder(inner, Meta{Provider: "test-dims", Model: "m", Dimensions: 3}, budget, nil)
	mismatches := metrics.EmbeddingDimensionMismatchTotal.WithLabelValues("test-dims", "m")
	before := testutil.ToFloat64(mismatches)

	_, err := p.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("expected ErrVectorDimMismatch, got %v", err)
	}
	if got := testutil.ToFloat64(mismatches) - before; got != 1 {
		t.Errorf("expected one dimension mismatch counted, got %v", got)
	}
	if budget.DailyUsed() != 9 {
		t.Errorf("tokens spent on a rejected vector are still billed, got %d", budget.DailyUsed())
	}
}
