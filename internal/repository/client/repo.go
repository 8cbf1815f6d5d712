// Package client stores client profiles as Redis hashes.
package client

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/matchdex/internal/domain"
	domclient "github.com/kailas-cloud/matchdex/internal/domain/client"
	"github.com/kailas-cloud/matchdex/internal/domain/vector"
)

// MaxMessages is how many recent conversation messages are kept per client.
const MaxMessages = 20

var (
	keyPrefix     = domain.KeyPrefix + "client:"
	messagePrefix = domain.KeyPrefix + "messages:"
)

// store is the consumer interface for client profiles (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	AppendCapped(ctx context.Context, key string, limit int, values ...string) error
	Range(ctx context.Context, key string) ([]string, error)
}

// Repo persists client profiles with their embeddings in one hash and
// recent messages in a capped list beside it.
type Repo struct {
	store store
	dim   int
	now   func() time.Time
}

// New creates a client repository. dim > 0 rejects embeddings of another length.
func New(s store, dim int) *Repo {
	return &Repo{store: s, dim: dim, now: time.Now}
}

func clientKey(id string) string  { return keyPrefix + id }
func messageKey(id string) string { return messagePrefix + id }

// Save writes the whole profile, replacing any stored embedding.
func (r *Repo) Save(ctx context.Context, p domclient.Profile) error {
	p = p.WithUpdatedAt(r.now().UnixMilli())
	fields, err := profileToHash(p)
	if err != nil {
		return err
	}
	key := clientKey(p.ID())
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("save client %s: %w", p.ID(), err)
	}
	if !p.HasEmbedding() {
		if err := r.store.HDel(ctx, key, fieldEmbedding); err != nil {
			return fmt.Errorf("drop embedding for %s: %w", p.ID(), err)
		}
	}
	return nil
}

// Get returns a profile or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, id string) (domclient.Profile, error) {
	m, err := r.store.HGetAll(ctx, clientKey(id))
	if err != nil {
		return domclient.Profile{}, fmt.Errorf("get client %s: %w", id, err)
	}
	if len(m) == 0 {
		return domclient.Profile{}, fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
	}
	return profileFromHash(m)
}

// List returns every stored profile ordered by ID.
func (r *Repo) List(ctx context.Context) ([]domclient.Profile, error) {
	keys, err := r.store.Scan(ctx, keyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan clients: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	rows, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load clients: %w", err)
	}

	out := make([]domclient.Profile, 0, len(rows))
	for i, m := range rows {
		if len(m) == 0 {
			continue
		}
		p, err := profileFromHash(m)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", strings.TrimPrefix(keys[i], keyPrefix), err)
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

// Delete removes a profile and its message log.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, clientKey(id), messageKey(id)); err != nil {
		return fmt.Errorf("delete client %s: %w", id, err)
	}
	return nil
}

// SetEmbedding stores the profile vector of an existing client.
func (r *Repo) SetEmbedding(ctx context.Context, id string, vec []float32) error {
	if len(vec) == 0 {
		return r.ClearEmbedding(ctx, id)
	}
	if r.dim > 0 && len(vec) != r.dim {
		return fmt.Errorf("embedding has %d dimensions, want %d: %w", len(vec), r.dim, domain.ErrVectorDimMismatch)
	}
	if err := r.mustExist(ctx, id); err != nil {
		return err
	}
	err := r.store.HSet(ctx, clientKey(id), map[string]string{
		fieldEmbedding: string(vector.Encode(vec)),
		fieldUpdatedAt: strconv.FormatInt(r.now().UnixMilli(), 10),
	})
	if err != nil {
		return fmt.Errorf("set embedding for %s: %w", id, err)
	}
	return nil
}

// ClearEmbedding removes the profile vector.
func (r *Repo) ClearEmbedding(ctx context.Context, id string) error {
	if err := r.store.HDel(ctx, clientKey(id), fieldEmbedding); err != nil {
		return fmt.Errorf("clear embedding for %s: %w", id, err)
	}
	return nil
}

// AppendMessage records conversation messages, keeping the newest MaxMessages.
func (r *Repo) AppendMessage(ctx context.Context, id string, msgs ...string) error {
	if err := r.mustExist(ctx, id); err != nil {
		return err
	}
	if err := r.store.AppendCapped(ctx, messageKey(id), MaxMessages, msgs...); err != nil {
		return fmt.Errorf("append message for %s: %w", id, err)
	}
	return nil
}

// Messages returns the client's recent messages, oldest first.
func (r *Repo) Messages(ctx context.Context, id string) ([]string, error) {
	if err := r.mustExist(ctx, id); err != nil {
		return nil, err
	}
	msgs, err := r.store.Range(ctx, messageKey(id))
	if err != nil {
		return nil, fmt.Errorf("get messages for %s: %w", id, err)
	}
	return msgs, nil
}

func (r *Repo) mustExist(ctx context.Context, id string) error {
	ok, err := r.store.Exists(ctx, clientKey(id))
	if err != nil {
		return fmt.Errorf("check client %s: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
