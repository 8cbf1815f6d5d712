// Package vertical defines the pluggable scoring policy contract and registry.
package vertical

import (
	"github.com/kailas-cloud/matchdex/internal/domain/attribute"
	"github.com/kailas-cloud/matchdex/internal/domain/client"
)

// Role is a vertical-specific client classification (e.g. buyer, seller).
type Role string

// Candidate is the resource view a policy scores against.
type Candidate struct {
	EventType  string
	Attributes attribute.Set
	Remarks    string
	Embedding  []float32
}

// Outcome is a raw policy score with ordered reasons.
// Knockout and DataError outcomes always score zero with a single reason.
type Outcome struct {
	Score     int
	Reasons   []string
	Knockout  bool
	DataError bool
}

// Campaign is display metadata for notifications about an event type.
type Campaign struct {
	EventType string
	Title     string
	Name      string
}

// ScoringPolicy scores clients against candidates for one vertical.
// Implementations are stateless and safe for concurrent use.
type ScoringPolicy interface {
	Name() string
	Role(c client.Profile) Role
	Score(c client.Profile, cand Candidate) Outcome
	Campaign(eventType string) (Campaign, bool)
}
