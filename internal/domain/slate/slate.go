// Package slate holds ranked, capped recommendation sets per client.
package slate

import (
	"fmt"
	"slices"
	"sort"

	"github.com/kailas-cloud/matchdex/internal/domain/match"
)

// DefaultCap is the slate size when none is configured.
const DefaultCap = 10

// Slate is a client's ranked recommendation set (immutable value object).
// Entries are ordered by score descending, ties by presentation order.
type Slate struct {
	id              string
	clientID        string
	entries         []match.Result
	cap             int
	totalConsidered int
}

// Empty creates a slate with no entries.
func Empty(clientID string, limit int) Slate {
	return Slate{id: clientID, clientID: clientID, cap: normalizeCap(limit)}
}

// Rank builds a slate from qualifying results in presentation order.
// totalConsidered is the pre-truncation count.
func Rank(clientID string, results []match.Result, limit int) Slate {
	limit = normalizeCap(limit)
	return Slate{
		id:              clientID,
		clientID:        clientID,
		entries:         rankAndCap(slices.Clone(results), limit),
		cap:             limit,
		totalConsidered: len(results),
	}
}

// Reconstruct restores a Slate from storage, validating its invariants.
func Reconstruct(id, clientID string, entries []match.Result, limit, totalConsidered int) (Slate, error) {
	limit = normalizeCap(limit)
	if len(entries) > limit {
		return Slate{}, fmt.Errorf("slate has %d entries, cap %d", len(entries), limit)
	}
	if totalConsidered < len(entries) {
		return Slate{}, fmt.Errorf("total considered %d below entry count %d", totalConsidered, len(entries))
	}
	if id == "" {
		id = clientID
	}
	return Slate{
		id:              id,
		clientID:        clientID,
		entries:         slices.Clone(entries),
		cap:             limit,
		totalConsidered: totalConsidered,
	}, nil
}

func normalizeCap(limit int) int {
	if limit <= 0 {
		return DefaultCap
	}
	return limit
}

func rankAndCap(results []match.Result, limit int) []match.Result {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score() > results[j].Score()
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Merge folds freshly qualifying results into the slate.
// A fresh result for a candidate already on the slate replaces the old entry
// in place. The total considered grows only by candidates new to the slate.
func (s Slate) Merge(fresh []match.Result) Slate {
	merged := slices.Clone(s.entries)
	pos := make(map[string]int, len(merged))
	for i, e := range merged {
		pos[e.CandidateID()] = i
	}
	added := 0
	for _, r := range fresh {
		if i, ok := pos[r.CandidateID()]; ok {
			merged[i] = r
			continue
		}
		pos[r.CandidateID()] = len(merged)
		merged = append(merged, r)
		added++
	}

	return Slate{
		id:              s.id,
		clientID:        s.clientID,
		entries:         rankAndCap(merged, s.Cap()),
		cap:             s.Cap(),
		totalConsidered: s.totalConsidered + added,
	}
}

// ID returns the slate identifier.
func (s Slate) ID() string { return s.id }

// ClientID returns the owning client.
func (s Slate) ClientID() string { return s.clientID }

// Entries returns a copy of the ranked entries.
func (s Slate) Entries() []match.Result { return slices.Clone(s.entries) }

// Len returns the number of entries.
func (s Slate) Len() int { return len(s.entries) }

// IsEmpty reports whether the slate has no entries.
func (s Slate) IsEmpty() bool { return len(s.entries) == 0 }

// Cap returns the maximum number of entries.
func (s Slate) Cap() int { return normalizeCap(s.cap) }

// TotalConsidered returns how many results qualified before truncation.
func (s Slate) TotalConsidered() int { return s.totalConsidered }

// CandidateIDs returns entry candidate IDs in rank order.
func (s Slate) CandidateIDs() []string {
	ids := make([]string, len(s.entries))
	for i, e := range s.entries {
		ids[i] = e.CandidateID()
	}
	return ids
}
