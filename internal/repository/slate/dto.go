package slate

import (
	"encoding/json"
	"fmt"

	dommatch "github.com/kailas-cloud/matchdex/internal/domain/match"
	domslate "github.com/kailas-cloud/matchdex/internal/domain/slate"
)

type entryDTO struct {
	CandidateID string   `json:"candidate_id"`
	Score       int      `json:"score"`
	Reasons     []string `json:"reasons,omitempty"`
}

type slateDTO struct {
	ID              string     `json:"id"`
	ClientID        string     `json:"client_id"`
	Cap             int        `json:"cap"`
	TotalConsidered int        `json:"total_considered"`
	Entries         []entryDTO `json:"entries"`
	CuratedAt       int64      `json:"curated_at"`
}

func encode(s domslate.Slate, curatedAt int64) ([]byte, error) {
	entries := s.Entries()
	dto := slateDTO{
		ID:              s.ID(),
		ClientID:        s.ClientID(),
		Cap:             s.Cap(),
		TotalConsidered: s.TotalConsidered(),
		Entries:         make([]entryDTO, len(entries)),
		CuratedAt:       curatedAt,
	}
	for i, e := range entries {
		dto.Entries[i] = entryDTO{CandidateID: e.CandidateID(), Score: e.Score(), Reasons: e.Reasons()}
	}
	raw, err := json.Marshal(dto)
	if err != nil {
		return nil, fmt.Errorf("marshal slate: %w", err)
	}
	return raw, nil
}

func decode(raw []byte) (domslate.Slate, error) {
	var dto slateDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return domslate.Slate{}, fmt.Errorf("unmarshal slate: %w", err)
	}
	entries := make([]dommatch.Result, len(dto.Entries))
	for i, e := range dto.Entries {
		entries[i] = dommatch.New(e.CandidateID, e.Score, e.Reasons)
	}
	return domslate.Reconstruct(dto.ID, dto.ClientID, entries, dto.Cap, dto.TotalConsidered)
}
