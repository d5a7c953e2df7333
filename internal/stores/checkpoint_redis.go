package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCheckpointStore keeps pending checkpoints in Redis. Expiry is
// enforced twice: the key carries the TTL natively, and Get still checks
// the embedded deadline so a replicated or restored key cannot outlive it.
type RedisCheckpointStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisCheckpointStore returns a store using the given key prefix
// (default "alk").
func NewRedisCheckpointStore(client redis.UniversalClient, prefix string) *RedisCheckpointStore {
	if prefix == "" {
		prefix = "alk"
	}
	return &RedisCheckpointStore{redis: client, prefix: prefix}
}

func (s *RedisCheckpointStore) key(owner string) string {
	return s.prefix + ":" + owner
}

func (s *RedisCheckpointStore) Save(
	ctx context.Context,
	owner string,
	record *Checkpoint,
	ttl time.Duration,
) error {
	encoded, err := encodeCheckpoint(record)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(owner), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCheckpointBackend, err)
	}
	return nil
}

func (s *RedisCheckpointStore) Get(ctx context.Context, owner string) (*Checkpoint, error) {
	data, err := s.redis.Get(ctx, s.key(owner)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCheckpointNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrCheckpointBackend, err)
	}

	record, err := decodeCheckpoint(data)
	if err != nil {
		return nil, err
	}
	if time.Now().Unix() > record.ExpiresAt {
		_, _ = s.redis.Del(ctx, s.key(owner)).Result()
		return nil, ErrCheckpointExpired
	}
	return record, nil
}

func (s *RedisCheckpointStore) Delete(ctx context.Context, owner string) (bool, error) {
	n, err := s.redis.Del(ctx, s.key(owner)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrCheckpointBackend, err)
	}
	return n > 0, nil
}

// RecordFailure increments the attempt counter without touching the
// remaining TTL. It reports true and destroys the record when maxAttempts
// is reached.
func (s *RedisCheckpointStore) RecordFailure(
	ctx context.Context,
	owner string,
	maxAttempts int,
) (bool, error) {
	const maxRetries = 4
	key := s.key(owner)

	for i := 0; i < maxRetries; i++ {
		var exceeded bool
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			record, err := decodeCheckpoint(data)
			if err != nil {
				return err
			}
			if time.Now().Unix() > record.ExpiresAt {
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				if err != nil {
					return err
				}
				return ErrCheckpointExpired
			}

			record.Attempts++
			if int(record.Attempts) >= maxAttempts {
				exceeded = true
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				if err != nil {
					return err
				}
				return nil
			}

			ttl := time.Until(time.Unix(record.ExpiresAt, 0))
			if ttl <= 0 {
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				if err != nil {
					return err
				}
				return ErrCheckpointExpired
			}

			updated, err := encodeCheckpoint(record)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, ttl)
				return nil
			})
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return false, ErrCheckpointNotFound
			}
			if errors.Is(err, ErrCheckpointExpired) {
				return false, err
			}
			return false, fmt.Errorf("%w: %v", ErrCheckpointBackend, err)
		}
		return exceeded, nil
	}

	return false, ErrCheckpointNotFound
}

// Close is a no-op; Redis enforces expiry server-side.
func (s *RedisCheckpointStore) Close() {}
