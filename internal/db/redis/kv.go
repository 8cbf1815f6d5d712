package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/matchdex/internal/db"
)

// Get reads a value. Missing keys return db.ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.do(ctx, s.b().Get().Key(key).Build()).AsBytes()
	if rueidis.IsRedisNil(err) {
		return nil, db.ErrKeyNotFound
	}
	if err != nil {
		return nil, &db.Error{Op: db.OpGet, Key: key, Err: err}
	}
	return data, nil
}

// Set stores a value without expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.do(ctx, s.b().Set().Key(key).Value(rueidis.BinaryString(value)).Build()).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Key: key, Err: err}
	}
	return nil
}

// SetWithTTL stores a value that expires after ttl.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	cmd := s.b().Set().Key(key).Value(rueidis.BinaryString(value)).Ex(ttl).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Key: key, Err: err}
	}
	return nil
}

// IncrByWithTTL pipelines INCRBY with EXPIRE NX so the first write of a
// window fixes its expiry.
func (s *Store) IncrByWithTTL(ctx context.Context, key string, val int64, ttl time.Duration) (int64, error) {
	results := s.client.DoMulti(ctx,
		s.b().Incrby().Key(key).Increment(val).Build(),
		s.b().Expire().Key(key).Seconds(int64(ttl.Seconds())).Nx().Build(),
	)
	total, err := results[0].AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpIncrBy, Key: key, Err: err}
	}
	if err := results[1].Error(); err != nil {
		return total, &db.Error{Op: db.OpExpire, Key: key, Err: err}
	}
	return total, nil
}
