package candidate

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/matchdex/internal/domain/attribute"
	"github.com/kailas-cloud/matchdex/internal/domain/resource"
	"github.com/kailas-cloud/matchdex/internal/domain/vector"
)

const (
	fieldID           = "id"
	fieldKind         = "kind"
	fieldEventType    = "event_type"
	fieldAttributes   = "attributes"
	fieldRemarks      = "remarks"
	fieldEmbedding    = "embedding"
	fieldDiscoveredAt = "discovered_at"
)

// row is a candidate with its pool arrival time.
type row struct {
	candidate    resource.Candidate
	discoveredAt int64
}

func candidateToHash(c resource.Candidate, discoveredAt int64) (map[string]string, error) {
	attrs, err := json.Marshal(c.Attributes().Map())
	if err != nil {
		return nil, fmt.Errorf("marshal attributes: %w", err)
	}
	m := map[string]string{
		fieldID:           c.ID(),
		fieldKind:         string(c.Kind()),
		fieldEventType:    c.EventType(),
		fieldAttributes:   string(attrs),
		fieldRemarks:      c.Remarks(),
		fieldDiscoveredAt: strconv.FormatInt(discoveredAt, 10),
	}
	if emb := c.Embedding(); len(emb) > 0 {
		m[fieldEmbedding] = string(vector.Encode(emb))
	}
	return m, nil
}

func candidateFromHash(m map[string]string) (row, error) {
	var attrs map[string]attribute.Value
	if raw := m[fieldAttributes]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
			return row{}, fmt.Errorf("unmarshal attributes: %w", err)
		}
	}

	var emb []float32
	if raw := m[fieldEmbedding]; raw != "" {
		var err error
		if emb, err = vector.Decode([]byte(raw)); err != nil {
			return row{}, fmt.Errorf("decode embedding: %w", err)
		}
	}

	var discoveredAt int64
	if raw := m[fieldDiscoveredAt]; raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			discoveredAt = parsed
		}
	}

	c := resource.Reconstruct(
		m[fieldID], resource.Kind(m[fieldKind]), m[fieldEventType],
		attribute.NewSet(attrs), m[fieldRemarks], emb,
	)
	return row{candidate: c, discoveredAt: discoveredAt}, nil
}
