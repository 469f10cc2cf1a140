package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still carries our token, so
// an expired lock taken over by another process is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// LockStore is a SETNX-based distributed lock. Locks are owned by the
// LockStore that took them.
type LockStore struct {
	client *redis.Client
	prefix string
	token  string
}

// NewLockStore creates a LockStore whose keys start with prefix.
func NewLockStore(client *redis.Client, prefix string) *LockStore {
	return &LockStore{client: client, prefix: prefix, token: uuid.NewString()}
}

// Acquire attempts to take the named lock for ttl.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, s.key(name), s.token, ttl).Result()
}

// Release drops the named lock if this store still owns it.
func (s *LockStore) Release(ctx context.Context, name string) error {
	return releaseScript.Run(ctx, s.client, []string{s.key(name)}, s.token).Err()
}

func (s *LockStore) key(name string) string {
	return s.prefix + "lock:" + name
}
