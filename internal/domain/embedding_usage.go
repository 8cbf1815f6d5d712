package domain

import (
	"context"
	"sync/atomic"
)

type embeddingUsageKey struct{}

// EmbeddingUsage collects token usage for one operation, such as a curation
// pass. The caller puts a pointer into the context; embedders add to it from
// any goroutine.
type EmbeddingUsage struct {
	tokens atomic.Int64
	calls  atomic.Int64
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, embeddingUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(embeddingUsageKey{}).(*EmbeddingUsage)
	return u
}

// AddTokens records one embedding call and the tokens it consumed.
// Cache hits count as calls with zero tokens.
func (u *EmbeddingUsage) AddTokens(n int) {
	if u == nil {
		return
	}
	u.calls.Add(1)
	u.tokens.Add(int64(n))
}

// Tokens returns the tokens consumed so far.
func (u *EmbeddingUsage) Tokens() int64 {
	if u == nil {
		return 0
	}
	return u.tokens.Load()
}

// Calls returns the number of embedding calls so far.
func (u *EmbeddingUsage) Calls() int64 {
	if u == nil {
		return 0
	}
	return u.calls.Load()
}
