package feedback

import (
	"encoding/json"
	"fmt"

	domfeedback "github.com/kailas-cloud/matchdex/internal/domain/feedback"
	"github.com/kailas-cloud/matchdex/internal/domain/vector"
)

// entry is the JSON stored per dismissed candidate. Embedding holds
// vector.Encode bytes, base64 by encoding/json.
type entry struct {
	Embedding []byte `json:"embedding"`
	SlateID   string `json:"slate_id,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

func toField(d domfeedback.Dismissed) (string, error) {
	raw, err := json.Marshal(entry{
		Embedding: vector.Encode(d.Embedding()),
		SlateID:   d.SlateID(),
		CreatedAt: d.CreatedAt(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal dismissal: %w", err)
	}
	return string(raw), nil
}

func fromField(clientID, candidateID, raw string) (domfeedback.Dismissed, error) {
	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return domfeedback.Dismissed{}, fmt.Errorf("unmarshal dismissal: %w", err)
	}
	vec, err := vector.Decode(e.Embedding)
	if err != nil {
		return domfeedback.Dismissed{}, fmt.Errorf("decode embedding: %w", err)
	}
	return domfeedback.New(clientID, candidateID, e.SlateID, vec, e.CreatedAt)
}
