// Package resource holds candidate opportunities surfaced by the market feed.
package resource

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/matchdex/internal/domain/attribute"
)

// Kind discriminates resource types.
type Kind string

const (
	// KindListing is a property listing.
	KindListing Kind = "listing"
	// KindContent is an article or market report.
	KindContent Kind = "content"
	// KindEvent is an open house or similar event.
	KindEvent Kind = "event"
)

// DefaultListingEvent is the event type of a listing submitted without one.
const DefaultListingEvent = "new_listing"

// IsValid checks if the kind is supported.
func (k Kind) IsValid() bool {
	return k == KindListing || k == KindContent || k == KindEvent
}

// Candidate is a resource considered for a client's slate (immutable value object).
type Candidate struct {
	id         string
	kind       Kind
	eventType  string
	attributes attribute.Set
	remarks    string
	embedding  []float32
}

// New validates and creates a Candidate. Empty kind defaults to listing,
// and a listing without an event type is a new listing.
func New(id string, kind Kind, eventType string, attrs attribute.Set, remarks string, embedding []float32) (Candidate, error) {
	if strings.TrimSpace(id) == "" {
		return Candidate{}, fmt.Errorf("resource id is required")
	}
	if kind == "" {
		kind = KindListing
	}
	if !kind.IsValid() {
		return Candidate{}, fmt.Errorf("invalid resource kind: %q", kind)
	}
	eventType = strings.ToLower(strings.TrimSpace(eventType))
	if eventType == "" && kind == KindListing {
		eventType = DefaultListingEvent
	}
	var emb []float32
	if len(embedding) > 0 {
		emb = slices.Clone(embedding)
	}
	return Candidate{
		id:         id,
		kind:       kind,
		eventType:  eventType,
		attributes: attrs,
		remarks:    remarks,
		embedding:  emb,
	}, nil
}

// Reconstruct restores a Candidate from storage without validation.
func Reconstruct(id string, kind Kind, eventType string, attrs attribute.Set, remarks string, embedding []float32) Candidate {
	return Candidate{
		id:         id,
		kind:       kind,
		eventType:  eventType,
		attributes: attrs,
		remarks:    remarks,
		embedding:  embedding,
	}
}

// ID returns the resource identifier.
func (c Candidate) ID() string { return c.id }

// Kind returns the resource type.
func (c Candidate) Kind() Kind { return c.kind }

// EventType returns the market event that surfaced the resource.
func (c Candidate) EventType() string { return c.eventType }

// Attributes returns the attribute map.
func (c Candidate) Attributes() attribute.Set { return c.attributes }

// Remarks returns the free-text description.
func (c Candidate) Remarks() string { return c.remarks }

// Embedding returns the cached remarks vector, or nil.
func (c Candidate) Embedding() []float32 { return c.embedding }

// WithEmbedding returns a copy carrying vec.
func (c Candidate) WithEmbedding(vec []float32) Candidate {
	c.embedding = vec
	return c
}
