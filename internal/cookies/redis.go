package cookies

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var errCookieBackend = errors.New("cookie store backend unavailable")

// RedisStore keeps snapshots in Redis so every process of a deployment
// sees the same persisted sessions.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore returns a Redis-backed store. A zero ttl keeps snapshots
// until explicitly dropped.
func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "alc"
	}
	return &RedisStore{redis: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(owner string) string {
	return s.prefix + ":cookies:" + owner
}

func (s *RedisStore) Persist(ctx context.Context, owner string, snapshot []byte) error {
	if err := s.redis.Set(ctx, s.key(owner), snapshot, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", errCookieBackend, err)
	}
	return nil
}

func (s *RedisStore) Restore(ctx context.Context, owner string) ([]byte, error) {
	data, err := s.redis.Get(ctx, s.key(owner)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("%w: %v", errCookieBackend, err)
	}
	return data, nil
}

func (s *RedisStore) Drop(ctx context.Context, owner string) error {
	if err := s.redis.Del(ctx, s.key(owner)).Err(); err != nil {
		return fmt.Errorf("%w: %v", errCookieBackend, err)
	}
	return nil
}
