// Package slate persists each client's current slate as a JSON value.
package slate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/matchdex/internal/db"
	"github.com/kailas-cloud/matchdex/internal/domain"
	domslate "github.com/kailas-cloud/matchdex/internal/domain/slate"
)

var keyPrefix = domain.KeyPrefix + "slate:"

// store is the consumer interface for slate persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Repo stores one slate per client, replaced on every curation.
type Repo struct {
	store store
	now   func() time.Time
}

// New creates a slate repository.
func New(s store) *Repo {
	return &Repo{store: s, now: time.Now}
}

func slateKey(clientID string) string { return keyPrefix + clientID }

// Save replaces the client's slate.
func (r *Repo) Save(ctx context.Context, s domslate.Slate) error {
	raw, err := encode(s, r.now().UnixMilli())
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, slateKey(s.ClientID()), raw); err != nil {
		return fmt.Errorf("save slate %s: %w", s.ClientID(), err)
	}
	return nil
}

// Get returns the client's slate or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, clientID string) (domslate.Slate, error) {
	raw, err := r.store.Get(ctx, slateKey(clientID))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domslate.Slate{}, fmt.Errorf("slate %s: %w", clientID, domain.ErrNotFound)
		}
		return domslate.Slate{}, fmt.Errorf("get slate %s: %w", clientID, err)
	}
	return decode(raw)
}
