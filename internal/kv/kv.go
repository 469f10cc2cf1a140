// Package kv defines the opaque key-value collaborator that backs the
// KV trip and reference stores, plus an in-memory implementation.
package kv

import (
	"context"
	"sync"
	"time"
)

// Store is a string key-value store with get/set semantics.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}

// Locker guards a read-modify-write cycle across processes.
type Locker interface {
	// Acquire attempts to take the named lock. Returns false if it is held.
	Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error)

	// Release drops the named lock.
	Release(ctx context.Context, name string) error
}

// Memory is an in-process Store. The zero value is not usable; use NewMemory.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Get returns the value for key.
func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set stores value under key.
func (m *Memory) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

var _ Store = (*Memory)(nil)
