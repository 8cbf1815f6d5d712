// Package feedback stores dismissed candidates per client.
package feedback

import (
	"context"
	"fmt"
	"sort"

	"github.com/kailas-cloud/matchdex/internal/domain"
	domfeedback "github.com/kailas-cloud/matchdex/internal/domain/feedback"
)

var keyPrefix = domain.KeyPrefix + "feedback:"

// store is the consumer interface for feedback persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error
}

// Repo keeps one hash per client keyed by candidate ID, so dismissing
// the same candidate twice overwrites rather than duplicates.
type Repo struct {
	store store
}

// New creates a feedback repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

func feedbackKey(clientID string) string { return keyPrefix + clientID }

// Dismiss records a rejected candidate.
func (r *Repo) Dismiss(ctx context.Context, d domfeedback.Dismissed) error {
	raw, err := toField(d)
	if err != nil {
		return err
	}
	if err := r.store.HSet(ctx, feedbackKey(d.ClientID()), map[string]string{d.CandidateID(): raw}); err != nil {
		return fmt.Errorf("dismiss %s for %s: %w", d.CandidateID(), d.ClientID(), err)
	}
	return nil
}

// Undismiss removes a dismissal.
func (r *Repo) Undismiss(ctx context.Context, clientID, candidateID string) error {
	if err := r.store.HDel(ctx, feedbackKey(clientID), candidateID); err != nil {
		return fmt.Errorf("undismiss %s for %s: %w", candidateID, clientID, err)
	}
	return nil
}

// List returns a client's dismissals, oldest first.
func (r *Repo) List(ctx context.Context, clientID string) ([]domfeedback.Dismissed, error) {
	m, err := r.store.HGetAll(ctx, feedbackKey(clientID))
	if err != nil {
		return nil, fmt.Errorf("load feedback for %s: %w", clientID, err)
	}
	out := make([]domfeedback.Dismissed, 0, len(m))
	for candidateID, raw := range m {
		d, err := fromField(clientID, candidateID, raw)
		if err != nil {
			return nil, fmt.Errorf("feedback %s/%s: %w", clientID, candidateID, err)
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt() != out[j].CreatedAt() {
			return out[i].CreatedAt() < out[j].CreatedAt()
		}
		return out[i].CandidateID() < out[j].CandidateID()
	})
	return out, nil
}

// DismissedEmbeddings returns the vectors of every dismissed candidate.
func (r *Repo) DismissedEmbeddings(ctx context.Context, clientID string) ([][]float32, error) {
	list, err := r.List(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	out := make([][]float32, len(list))
	for i, d := range list {
		out[i] = d.Embedding()
	}
	return out, nil
}
