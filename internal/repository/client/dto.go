package client

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/matchdex/internal/domain/attribute"
	domclient "github.com/kailas-cloud/matchdex/internal/domain/client"
	"github.com/kailas-cloud/matchdex/internal/domain/vector"
)

const (
	fieldID          = "id"
	fieldPreferences = "preferences"
	fieldUserTags    = "user_tags"
	fieldAITags      = "ai_tags"
	fieldNotes       = "notes"
	fieldEmbedding   = "embedding"
	fieldUpdatedAt   = "updated_at"
)

// profileToHash converts a domain Profile to a map for HSET.
// The embedding field is omitted when the profile has none.
func profileToHash(p domclient.Profile) (map[string]string, error) {
	prefs, err := json.Marshal(p.Preferences().Map())
	if err != nil {
		return nil, fmt.Errorf("marshal preferences: %w", err)
	}
	userTags, err := json.Marshal(nonNil(p.UserTags()))
	if err != nil {
		return nil, fmt.Errorf("marshal user tags: %w", err)
	}
	aiTags, err := json.Marshal(nonNil(p.AITags()))
	if err != nil {
		return nil, fmt.Errorf("marshal ai tags: %w", err)
	}

	m := map[string]string{
		fieldID:          p.ID(),
		fieldPreferences: string(prefs),
		fieldUserTags:    string(userTags),
		fieldAITags:      string(aiTags),
		fieldNotes:       p.Notes(),
		fieldUpdatedAt:   strconv.FormatInt(p.UpdatedAt(), 10),
	}
	if p.HasEmbedding() {
		m[fieldEmbedding] = string(vector.Encode(p.Embedding()))
	}
	return m, nil
}

// profileFromHash hydrates a domain Profile from an HGETALL result map.
func profileFromHash(m map[string]string) (domclient.Profile, error) {
	var prefs map[string]attribute.Value
	if raw := m[fieldPreferences]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
			return domclient.Profile{}, fmt.Errorf("unmarshal preferences: %w", err)
		}
	}

	userTags, err := tagsFromJSON(m[fieldUserTags])
	if err != nil {
		return domclient.Profile{}, fmt.Errorf("unmarshal user tags: %w", err)
	}
	aiTags, err := tagsFromJSON(m[fieldAITags])
	if err != nil {
		return domclient.Profile{}, fmt.Errorf("unmarshal ai tags: %w", err)
	}

	var emb []float32
	if raw := m[fieldEmbedding]; raw != "" {
		if emb, err = vector.Decode([]byte(raw)); err != nil {
			return domclient.Profile{}, fmt.Errorf("decode embedding: %w", err)
		}
	}

	var updatedAt int64
	if raw := m[fieldUpdatedAt]; raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			updatedAt = parsed
		}
	}

	return domclient.Reconstruct(
		m[fieldID], attribute.NewSet(prefs), userTags, aiTags, m[fieldNotes], emb, updatedAt,
	), nil
}

func tagsFromJSON(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, err //nolint:wrapcheck // wrapped by caller
	}
	return tags, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
