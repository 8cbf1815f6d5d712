// Package budget persists embedding token counters per provider and window.
package budget

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/matchdex/internal/db"
)

// DefaultGrace keeps a counter readable for a day after its window closes.
const DefaultGrace = 24 * time.Hour

// store is the consumer interface for budget counters (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrByWithTTL(ctx context.Context, key string, val int64, ttl time.Duration) (int64, error)
}

// Store keeps one counter per key. Keys end with the window they count:
// "2006-01-02" for a day, "2006-01" for a month.
type Store struct {
	store store
	grace time.Duration
	now   func() time.Time
}

// New creates a budget store. grace <= 0 uses DefaultGrace.
func New(s store, grace time.Duration) *Store {
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &Store{store: s, grace: grace, now: time.Now}
}

// IncrBy adds val to the counter and returns the new total.
func (s *Store) IncrBy(ctx context.Context, key string, val int64) (int64, error) {
	total, err := s.store.IncrByWithTTL(ctx, key, val, s.ttl(key))
	if err != nil {
		return total, fmt.Errorf("budget add %s: %w", key, err)
	}
	return total, nil
}

// Get returns the counter value, or 0 when the window has no usage yet.
func (s *Store) Get(ctx context.Context, key string) (int64, error) {
	data, err := s.store.Get(ctx, key)
	if errors.Is(err, db.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("budget get %s: %w", key, err)
	}
	val, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("budget get %s: corrupt counter %q: %w", key, data, err)
	}
	return val, nil
}

// ttl expires the key one grace period after its window ends.
func (s *Store) ttl(key string) time.Duration {
	end, ok := windowEnd(key[strings.LastIndexByte(key, ':')+1:])
	if !ok {
		return s.grace
	}
	return max(end.Sub(s.now().UTC()), 0) + s.grace
}

func windowEnd(stamp string) (time.Time, bool) {
	if day, err := time.Parse("2006-01-02", stamp); err == nil {
		return day.AddDate(0, 0, 1), true
	}
	if month, err := time.Parse("2006-01", stamp); err == nil {
		return month.AddDate(0, 1, 0), true
	}
	return time.Time{}, false
}
