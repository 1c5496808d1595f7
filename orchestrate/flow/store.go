package flow

import (
	"maps"
	"sync"
)

// Store is a synchronized key/value record for traversals whose process
// steps write shared state concurrently.
//
// The engine never requires a Store: any value can serve as the store of a
// traversal. Pipelines of one cycle run in parallel, so a store written
// from Process must be safe for concurrent use; Store is the ready-made
// option.
//
// Example:
//
//	store := flow.NewStore(map[string]any{"queries": []string{"a", "b"}})
//	_, err := flow.Run(ctx, searchNode, store)
//	answers, _ := flow.Lookup[[]string](store, "answers")
type Store struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewStore creates a Store seeded with a copy of initial. A nil initial
// map creates an empty store.
func NewStore(initial map[string]any) *Store {
	data := make(map[string]any, len(initial))
	maps.Copy(data, initial)
	return &Store{data: data}
}

// Get retrieves a value by key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, exists := s.data[key]
	return val, exists
}

// Set writes a value, overwriting any existing value for the key.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
}

// Delete removes a key. Deleting a missing key is a no-op.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
}

// Update atomically replaces the value under key with fn's return value.
// fn receives the current value and whether it exists. It runs under the
// store's write lock and must not call back into the store.
//
// Example:
//
//	store.Update("hits", func(current any, _ bool) any {
//	    n, _ := current.(int)
//	    return n + 1
//	})
func (s *Store) Update(key string, fn func(current any, exists bool) any) any {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.data[key]
	next := fn(current, exists)
	s.data[key] = next
	return next
}

// Snapshot returns a shallow copy of the store's contents.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.data)
}

// Len returns the number of keys in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data)
}

// Lookup retrieves a value and asserts it to T. It reports false when the
// key is missing or holds a value of another type.
func Lookup[T any](s *Store, key string) (T, bool) {
	val, exists := s.Get(key)
	if !exists {
		var zero T
		return zero, false
	}
	typed, ok := val.(T)
	return typed, ok
}
