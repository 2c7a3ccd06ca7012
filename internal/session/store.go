// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"sync"
)

// Store is a durable string key-value store scoped to one profile.
//
// Implementations must make each individual call atomic, including [Store.SetMany]
// and multi-key [Store.Delete]. A sequence of calls is not atomic.
type Store interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores the value under key.
	Set(ctx context.Context, key, value string) error

	// SetMany stores every pair in one write. Readers see all of them or none.
	SetMany(ctx context.Context, values map[string]string) error

	// Delete removes the given keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}

// Watcher is implemented by stores that can observe writes made by other processes.
type Watcher interface {
	// Watch calls onChange for every external change until ctx is done.
	Watch(ctx context.Context, onChange func()) error
}

// # Memory Store

// MemoryStore is an in-process [Store]. It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get implements [Store].
func (store *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	value, ok := store.values[key]
	return value, ok, nil
}

// Set implements [Store].
func (store *MemoryStore) Set(_ context.Context, key, value string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.values[key] = value
	return nil
}

// SetMany implements [Store].
func (store *MemoryStore) SetMany(_ context.Context, values map[string]string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	for key, value := range values {
		store.values[key] = value
	}
	return nil
}

// Delete implements [Store].
func (store *MemoryStore) Delete(_ context.Context, keys ...string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, key := range keys {
		delete(store.values, key)
	}
	return nil
}

// Len returns the number of stored keys.
func (store *MemoryStore) Len() int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return len(store.values)
}
