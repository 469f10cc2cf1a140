package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// KVStore implements kv.Store on plain Redis strings.
type KVStore struct {
	client *redis.Client
	prefix string
}

// NewKVStore creates a new KVStore. prefix is prepended to every key.
func NewKVStore(client *redis.Client, prefix string) *KVStore {
	return &KVStore{client: client, prefix: prefix}
}

// Get retrieves the value stored under key.
func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

// Set stores value under key without expiry.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.prefix+key, value, 0).Err()
}
