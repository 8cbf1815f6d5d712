package redis

import (
	"context"

	"github.com/kailas-cloud/matchdex/internal/db"
)

// AppendCapped pipelines RPUSH and LTRIM so the list never holds more
// than limit entries. limit <= 0 disables trimming.
func (s *Store) AppendCapped(ctx context.Context, key string, limit int, values ...string) error {
	if len(values) == 0 {
		return nil
	}
	push := s.b().Rpush().Key(key).Element(values...).Build()
	if limit <= 0 {
		if err := s.do(ctx, push).Error(); err != nil {
			return &db.Error{Op: db.OpRPush, Key: key, Err: err}
		}
		return nil
	}
	trim := s.b().Ltrim().Key(key).Start(int64(-limit)).Stop(-1).Build()
	return s.pipeline(ctx, db.OpRPush, key, push, trim)
}

// Range returns the whole list, oldest first. A missing key is an empty list.
func (s *Store) Range(ctx context.Context, key string) ([]string, error) {
	out, err := s.do(ctx, s.b().Lrange().Key(key).Start(0).Stop(-1).Build()).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpLRange, Key: key, Err: err}
	}
	return out, nil
}
