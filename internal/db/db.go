// Package db declares the storage primitives the matching engine persists
// through: client and candidate hashes, slate and cache values, budget
// counters and capped conversation logs.
package db

import (
	"context"
	"time"
)

// Store is the facade implemented by the Redis driver.
type Store interface {
	Pinger
	HashStore
	KVStore
	ListStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem is one hash written by HSetMulti. A positive TTL expires the
// whole key; it is refreshed on every write.
type HashSetItem struct {
	Key    string
	Fields map[string]string
	TTL    time.Duration
}

// HashStore holds profiles and pool entries.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// KVStore holds opaque values and counters.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// IncrByWithTTL adds val and returns the new total. The TTL is set only
	// when the key has none, so a counter window never slides.
	IncrByWithTTL(ctx context.Context, key string, val int64, ttl time.Duration) (int64, error)
}

// ListStore keeps bounded append-only logs.
type ListStore interface {
	// AppendCapped pushes values to the tail and trims the list to the newest limit entries.
	AppendCapped(ctx context.Context, key string, limit int, values ...string) error
	// Range returns the whole list, oldest first.
	Range(ctx context.Context, key string) ([]string, error)
}
