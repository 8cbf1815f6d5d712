// Package redis implements db.Store on top of rueidis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/matchdex/internal/db"
)

var _ db.Store = (*Store)(nil)

const (
	defaultClientName = "matchdex"
	minReadyBackoff   = 50 * time.Millisecond
	maxReadyBackoff   = time.Second
)

// Config holds connection parameters.
type Config struct {
	Addrs      []string
	Username   string
	Password   string
	DB         int
	ClientName string
}

// Store is the Redis-backed db.Store.
type Store struct {
	client rueidis.Client
}

// NewStore dials Redis. Client-side caching stays off: profiles and the
// candidate pool are rewritten by other processes between passes.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("redis: at least one address is required")
	}
	name := cfg.ClientName
	if name == "" {
		name = defaultClientName
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		ClientName:   name,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("redis: connect %v: %w", cfg.Addrs, err)
	}
	return &Store{client: client}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings with a doubling backoff until Redis answers or the
// timeout expires. The returned error carries the last ping failure.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	backoff := minReadyBackoff
	var lastErr error
	for {
		if lastErr = s.Ping(ctx); lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("redis not ready after %s: %w", timeout, errors.Join(ctx.Err(), lastErr))
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxReadyBackoff)
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

// pipeline sends cmds in one round trip and returns the first failure.
func (s *Store) pipeline(ctx context.Context, op, key string, cmds ...rueidis.Completed) error {
	for _, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return &db.Error{Op: op, Key: key, Err: err}
		}
	}
	return nil
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}
