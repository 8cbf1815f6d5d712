// Package embedding decorates embedding providers with token budgets and logging.
package embedding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchdex/internal/domain"
)

// BudgetAction defines behavior when token budget is exceeded.
type BudgetAction string

const (
	// BudgetActionWarn logs a warning but allows the request.
	BudgetActionWarn BudgetAction = "warn"
	// BudgetActionReject blocks the request.
	BudgetActionReject BudgetAction = "reject"
)

// BudgetStore persists budget counters shared by every replica.
// IncrBy returns the counter total after the increment.
type BudgetStore interface {
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	Get(ctx context.Context, key string) (int64, error)
}

// window is one rolling budget period (a UTC day or month).
type window struct {
	name     string
	layout   string
	limit    int64
	used     int64
	start    time.Time
	truncate func(time.Time) time.Time
}

func (w *window) roll(now time.Time) {
	if cur := w.truncate(now); cur.After(w.start) {
		w.used = 0
		w.start = cur
	}
}

func (w *window) exceeded() bool { return w.limit > 0 && w.used >= w.limit }

func (w *window) remaining() int64 {
	if w.limit == 0 {
		return -1 // unlimited
	}
	return max(w.limit-w.used, 0)
}

// BudgetTracker counts embedding tokens per day and month.
// Check is in-memory only. Record writes behind to the store when one is
// attached and adopts the shared total, so usage from other replicas
// counts against this one's limits too.
type BudgetTracker struct {
	mu       sync.Mutex
	daily    window
	monthly  window
	action   BudgetAction
	provider string
	store    BudgetStore
	now      func() time.Time
	logger   *zap.Logger
}

// NewBudgetTracker creates a budget tracker. A zero limit means unlimited.
func NewBudgetTracker(
	provider string, dailyLimit, monthlyLimit int64,
	action BudgetAction, logger *zap.Logger,
) *BudgetTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &BudgetTracker{
		daily:    window{name: "daily", layout: "2006-01-02", limit: dailyLimit, truncate: truncateToDay},
		monthly:  window{name: "monthly", layout: "2006-01", limit: monthlyLimit, truncate: truncateToMonth},
		action:   action,
		provider: provider,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
	now := b.now()
	b.daily.start = truncateToDay(now)
	b.monthly.start = truncateToMonth(now)
	return b
}

// WithStore attaches a persistence store and loads the current counters.
func (b *BudgetTracker) WithStore(ctx context.Context, store BudgetStore) *BudgetTracker {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.store = store
	now := b.now()
	for _, w := range []*window{&b.daily, &b.monthly} {
		val, err := store.Get(ctx, b.key(w, now))
		if err != nil {
			b.logger.Warn("Failed to load budget from store", zap.String("period", w.name), zap.Error(err))
			continue
		}
		w.used = val
	}

	b.logger.Info("Budget loaded from store",
		zap.String("provider", b.provider),
		zap.Int64("daily_used", b.daily.used),
		zap.Int64("monthly_used", b.monthly.used),
	)
	return b
}

func (b *BudgetTracker) key(w *window, t time.Time) string {
	return fmt.Sprintf("%sbudget:%s:%s:%s", domain.KeyPrefix, b.provider, w.name, t.Format(w.layout))
}

func (b *BudgetTracker) rollLocked() time.Time {
	now := b.now()
	b.daily.roll(now)
	b.monthly.roll(now)
	return now
}

// Check verifies the budget allows a new request.
func (b *BudgetTracker) Check(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rollLocked()
	if !b.daily.exceeded() && !b.monthly.exceeded() {
		return nil
	}
	if b.action == BudgetActionReject {
		return domain.ErrEmbeddingQuotaExceeded
	}

	b.logger.Warn("Token budget exceeded",
		zap.String("provider", b.provider),
		zap.Int64("daily_used", b.daily.used),
		zap.Int64("daily_limit", b.daily.limit),
		zap.Int64("monthly_used", b.monthly.used),
		zap.Int64("monthly_limit", b.monthly.limit),
	)
	return nil
}

// Record registers consumed tokens after a request.
func (b *BudgetTracker) Record(tokens int64) {
	b.mu.Lock()
	now := b.rollLocked()
	b.daily.used += tokens
	b.monthly.used += tokens
	store := b.store
	windows := []*window{&b.daily, &b.monthly}
	keys := []string{b.key(&b.daily, now), b.key(&b.monthly, now)}
	b.mu.Unlock()

	if store == nil {
		return
	}

	// Detached from the caller so a cancelled request still gets billed.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for i, key := range keys {
		total, err := store.IncrBy(ctx, key, tokens)
		if err != nil {
			b.logger.Warn("Failed to persist budget", zap.String("key", key), zap.Error(err))
			continue
		}
		b.adopt(windows[i], key, total)
	}
}

// adopt raises the window's count to the shared total unless the window
// rolled over while the write was in flight.
func (b *BudgetTracker) adopt(w *window, key string, total int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.key(w, w.start) == key && total > w.used {
		w.used = total
	}
}

// RemainingDaily returns tokens left in the daily budget (-1 if unlimited).
func (b *BudgetTracker) RemainingDaily() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollLocked()
	return b.daily.remaining()
}

// RemainingMonthly returns tokens left in the monthly budget (-1 if unlimited).
func (b *BudgetTracker) RemainingMonthly() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollLocked()
	return b.monthly.remaining()
}

// DailyUsed returns tokens consumed today.
func (b *BudgetTracker) DailyUsed() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollLocked()
	return b.daily.used
}

// MonthlyUsed returns tokens consumed this month.
func (b *BudgetTracker) MonthlyUsed() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollLocked()
	return b.monthly.used
}

// Provider names the embedding provider this budget meters.
func (b *BudgetTracker) Provider() string { return b.provider }

// DailyLimit returns the configured daily token limit (0 = unlimited).
func (b *BudgetTracker) DailyLimit() int64 { return b.daily.limit }

// MonthlyLimit returns the configured monthly token limit (0 = unlimited).
func (b *BudgetTracker) MonthlyLimit() int64 { return b.monthly.limit }

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func truncateToMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
