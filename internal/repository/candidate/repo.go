// Package candidate stores the active candidate pool as Redis hashes.
package candidate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kailas-cloud/matchdex/internal/db"
	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/domain/resource"
)

// DefaultTTL is how long a candidate stays in the active pool.
const DefaultTTL = 14 * 24 * time.Hour

var keyPrefix = domain.KeyPrefix + "candidate:"

// store is the consumer interface for the candidate pool (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo persists candidates. Keys expire after the TTL, which retires them
// from the pool without a sweeper.
type Repo struct {
	store store
	ttl   time.Duration
	now   func() time.Time
}

// New creates a candidate repository. ttl <= 0 uses DefaultTTL.
func New(s store, ttl time.Duration) *Repo {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Repo{store: s, ttl: ttl, now: time.Now}
}

func candidateKey(id string) string { return keyPrefix + id }

// Put adds candidates to the active pool in one round trip. Re-putting a
// candidate refreshes its TTL.
// Arrival order within the call is preserved for tie-breaking.
func (r *Repo) Put(ctx context.Context, candidates ...resource.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}
	base := r.now().UnixMilli()
	items := make([]db.HashSetItem, len(candidates))
	for i, c := range candidates {
		fields, err := candidateToHash(c, base+int64(i))
		if err != nil {
			return fmt.Errorf("encode candidate %s: %w", c.ID(), err)
		}
		items[i] = db.HashSetItem{Key: candidateKey(c.ID()), Fields: fields, TTL: r.ttl}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("put candidates: %w", err)
	}
	return nil
}

// Get returns one candidate or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, id string) (resource.Candidate, error) {
	m, err := r.store.HGetAll(ctx, candidateKey(id))
	if err != nil {
		return resource.Candidate{}, fmt.Errorf("get candidate %s: %w", id, err)
	}
	if len(m) == 0 {
		return resource.Candidate{}, fmt.Errorf("candidate %s: %w", id, domain.ErrNotFound)
	}
	row, err := candidateFromHash(m)
	if err != nil {
		return resource.Candidate{}, err
	}
	return row.candidate, nil
}

// Active returns the whole pool in arrival order.
func (r *Repo) Active(ctx context.Context) ([]resource.Candidate, error) {
	keys, err := r.store.Scan(ctx, keyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan candidates: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	rows := make([]row, 0, len(hashes))
	for i, m := range hashes {
		if len(m) == 0 {
			continue // expired between SCAN and HGETALL
		}
		row, err := candidateFromHash(m)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].discoveredAt != rows[j].discoveredAt {
			return rows[i].discoveredAt < rows[j].discoveredAt
		}
		return rows[i].candidate.ID() < rows[j].candidate.ID()
	})

	out := make([]resource.Candidate, len(rows))
	for i, row := range rows {
		out[i] = row.candidate
	}
	return out, nil
}

// Remove retires a candidate from the pool.
func (r *Repo) Remove(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, candidateKey(id)); err != nil {
		return fmt.Errorf("remove candidate %s: %w", id, err)
	}
	return nil
}
