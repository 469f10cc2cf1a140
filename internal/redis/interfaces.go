package redis

import (
	"fleet/internal/kv"
	"fleet/internal/repository"
)

// Ensure concrete types implement interfaces.
var (
	_ kv.Store                       = (*KVStore)(nil)
	_ kv.Locker                      = (*LockStore)(nil)
	_ repository.ReferenceRepository = (*ReferenceCache)(nil)
)
