package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps entries in Redis so every instance shares one window per client.
// Keys expire at their ResetTime, which makes DeleteExpired a no-op.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a store whose keys are prefix+identifier.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(identifier string) string {
	return fmt.Sprintf("%s%s", s.prefix, identifier)
}

func (s *RedisStore) Get(ctx context.Context, identifier string) (Entry, bool, error) {
	res := s.client.HGetAll(ctx, s.key(identifier))
	if err := res.Err(); err != nil && !errors.Is(err, redis.Nil) {
		return Entry{}, false, fmt.Errorf("redis hgetall failed: %w", err)
	}
	if len(res.Val()) == 0 {
		return Entry{}, false, nil
	}

	var e Entry
	if err := res.Scan(&e); err != nil {
		return Entry{}, false, fmt.Errorf("redis scan entry failed: %w", err)
	}
	return e, true, nil
}

func (s *RedisStore) Set(ctx context.Context, identifier string, e Entry) error {
	key := s.key(identifier)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, "count", e.Count, "reset_time", e.ResetTime)
		p.PExpireAt(ctx, key, time.UnixMilli(e.ResetTime))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set entry failed: %w", err)
	}
	return nil
}

func (s *RedisStore) DeleteExpired(context.Context, int64) error {
	return nil
}
