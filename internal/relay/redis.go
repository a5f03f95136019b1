package relay

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces relay keys in Redis.
const keyPrefix = "chatscrape:relay:"

// RedisStore implements Store on Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed relay store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get retrieves the values for the given keys. Keys with no stored value
// come back as empty strings.
func (s *RedisStore) Get(ctx context.Context, keys []string) (map[string]string, error) {
	values := make(map[string]string, len(keys))
	for _, key := range keys {
		val, err := s.client.Get(ctx, keyPrefix+key).Result()
		if errors.Is(err, redis.Nil) {
			values[key] = ""
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("relay get %q: %w", key, err)
		}
		values[key] = val
	}
	return values, nil
}

// Set stores the given key-value pairs.
func (s *RedisStore) Set(ctx context.Context, values map[string]string) error {
	pipe := s.client.Pipeline()
	for key, val := range values {
		pipe.Set(ctx, keyPrefix+key, val, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("relay set: %w", err)
	}
	return nil
}
