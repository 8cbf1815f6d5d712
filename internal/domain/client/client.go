// Package client holds the client profile aggregate scored by the engine.
package client

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/domain/attribute"
)

// Profile is a client of a service professional (immutable value object).
type Profile struct {
	id          string
	preferences attribute.Set
	userTags    []string
	aiTags      []string
	notes       string
	embedding   []float32
	updatedAt   int64
}

// New validates and creates a Profile.
// When dim > 0 a non-nil embedding must have exactly dim components.
func New(
	id string,
	preferences attribute.Set,
	userTags, aiTags []string,
	notes string,
	embedding []float32,
	dim int,
) (Profile, error) {
	if strings.TrimSpace(id) == "" {
		return Profile{}, fmt.Errorf("client id is required")
	}
	if err := checkEmbedding(embedding, dim); err != nil {
		return Profile{}, err
	}
	return Profile{
		id:          id,
		preferences: preferences,
		userTags:    cleanTags(userTags),
		aiTags:      cleanTags(aiTags),
		notes:       notes,
		embedding:   cloneEmbedding(embedding),
	}, nil
}

// Reconstruct restores a Profile from storage without validation.
func Reconstruct(
	id string,
	preferences attribute.Set,
	userTags, aiTags []string,
	notes string,
	embedding []float32,
	updatedAt int64,
) Profile {
	return Profile{
		id:          id,
		preferences: preferences,
		userTags:    userTags,
		aiTags:      aiTags,
		notes:       notes,
		embedding:   embedding,
		updatedAt:   updatedAt,
	}
}

func checkEmbedding(embedding []float32, dim int) error {
	if embedding == nil {
		return nil
	}
	if len(embedding) == 0 {
		return fmt.Errorf("embedding must be nil or non-empty: %w", domain.ErrVectorDimMismatch)
	}
	if dim > 0 && len(embedding) != dim {
		return fmt.Errorf("embedding has %d dimensions, want %d: %w",
			len(embedding), dim, domain.ErrVectorDimMismatch)
	}
	return nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func cloneEmbedding(v []float32) []float32 {
	if v == nil {
		return nil
	}
	return slices.Clone(v)
}

// ID returns the client identifier.
func (p Profile) ID() string { return p.id }

// Preferences returns the structured preference map.
func (p Profile) Preferences() attribute.Set { return p.preferences }

// UserTags returns tags assigned by the professional.
func (p Profile) UserTags() []string { return p.userTags }

// AITags returns tags inferred by the assistant.
func (p Profile) AITags() []string { return p.aiTags }

// Tags returns user tags followed by AI tags.
func (p Profile) Tags() []string {
	out := make([]string, 0, len(p.userTags)+len(p.aiTags))
	out = append(out, p.userTags...)
	return append(out, p.aiTags...)
}

// HasTag reports whether any tag equals name, ignoring case.
func (p Profile) HasTag(name string) bool {
	for _, t := range p.userTags {
		if strings.EqualFold(t, name) {
			return true
		}
	}
	for _, t := range p.aiTags {
		if strings.EqualFold(t, name) {
			return true
		}
	}
	return false
}

// Notes returns free-form notes about the client.
func (p Profile) Notes() string { return p.notes }

// Embedding returns the composite-profile vector, or nil.
func (p Profile) Embedding() []float32 { return p.embedding }

// HasEmbedding reports whether the profile carries a vector.
func (p Profile) HasEmbedding() bool { return len(p.embedding) > 0 }

// UpdatedAt returns the last modification time in unix millis.
func (p Profile) UpdatedAt() int64 { return p.updatedAt }

// WithEmbedding returns a copy carrying vec. dim is checked as in New.
func (p Profile) WithEmbedding(vec []float32, dim int) (Profile, error) {
	if err := checkEmbedding(vec, dim); err != nil {
		return Profile{}, err
	}
	p.embedding = cloneEmbedding(vec)
	return p, nil
}

// WithoutEmbedding returns a copy with the vector cleared.
func (p Profile) WithoutEmbedding() Profile {
	p.embedding = nil
	return p
}

// WithUpdatedAt returns a copy stamped with ts (unix millis).
func (p Profile) WithUpdatedAt(ts int64) Profile {
	p.updatedAt = ts
	return p
}
