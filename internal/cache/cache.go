// Package cache provides the bounded memoization store for knowledge-base
// answers. It is a performance layer only: removing it changes latency,
// never outputs.
package cache

import (
	"context"
	"sync"
	"time"
)

// Store is the capability interface for the query cache. Implementations can
// be swapped (in-process, Redis) without touching callers.
type Store interface {
	// Get returns the cached value for key, or ok=false on miss. A stale
	// entry behaves exactly like a miss.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Put stores value under key, evicting if the store is at capacity.
	Put(ctx context.Context, key string, value []byte) error

	// EvictOldest removes the single entry with the earliest insertion
	// time, if any.
	EvictOldest(ctx context.Context) error
}

type entry struct {
	value      []byte
	insertedAt time.Time
}

// MemoryStore is a mutex-guarded in-process Store with TTL expiry on read
// and oldest-entry eviction when capacity is exceeded. Not LRU: eviction
// order is insertion time, read access does not refresh an entry.
type MemoryStore struct {
	mu       sync.Mutex
	entries  map[string]entry
	ttl      time.Duration
	capacity int
	now      func() time.Time
}

// NewMemoryStore creates a bounded in-process store.
func NewMemoryStore(ttl time.Duration, capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = 100
	}
	return &MemoryStore{
		entries:  make(map[string]entry),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

// Get returns a fresh entry or a miss. Expired entries are removed lazily.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if s.ttl > 0 && s.now().Sub(e.insertedAt) > s.ttl {
		delete(s.entries, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

// Put inserts the value, evicting the oldest entry once size exceeds
// capacity. Exactly one entry is removed per insertion beyond capacity.
func (s *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{value: value, insertedAt: s.now()}
	if len(s.entries) > s.capacity {
		s.evictOldestLocked()
	}
	return nil
}

// EvictOldest removes the entry with the earliest insertion timestamp.
func (s *MemoryStore) EvictOldest(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictOldestLocked()
	return nil
}

func (s *MemoryStore) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	for key, e := range s.entries {
		if oldestKey == "" || e.insertedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = e.insertedAt
		}
	}
	if oldestKey != "" {
		delete(s.entries, oldestKey)
	}
}

// Len reports the current number of entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
