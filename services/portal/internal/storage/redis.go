package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps values in redis under fieldbook:session:<profile>:<key>.
type RedisStore struct {
	client  *redis.Client
	profile string
	ttl     time.Duration
}

// NewRedisStore returns redis-backed store. A zero ttl keeps values until removed.
func NewRedisStore(client *redis.Client, profile string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, profile: profile, ttl: ttl}
}

func (s *RedisStore) key(key string) string {
	return fmt.Sprintf("fieldbook:session:%s:%s", s.profile, key)
}

// Get implements Storage.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	result, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return result, true, nil
}

// Set implements Storage.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.key(key), value, s.ttl).Err()
}

// Remove implements Storage.
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}
