package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

const defaultMaxEntries = 4096

// MemoryStore is an in-process Store with per-entry TTL and an LRU capacity
// bound. It is the default backend for tests and single-process deployments.
type MemoryStore struct {
	maxEntries int
	clock      func() time.Time

	mu      sync.Mutex
	entries map[string]*memEntry
	lru     *list.List
	index   map[string]*list.Element
}

type memEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryOption mutates MemoryStore configuration.
type MemoryOption func(*MemoryStore)

// WithMaxEntries sets the capacity bound.
func WithMaxEntries(n int) MemoryOption {
	return func(s *MemoryStore) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

func withMemoryClock(clock func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(options ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		maxEntries: defaultMaxEntries,
		clock:      time.Now,
		entries:    make(map[string]*memEntry),
		lru:        list.New(),
		index:      make(map[string]*list.Element),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Get implements Store. Expired entries are evicted on read.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
		s.deleteLocked(key)
		return nil, false, nil
	}
	if element, ok := s.index[key]; ok {
		s.lru.MoveToFront(element)
	}
	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, true, nil
}

// Set implements Store. ttl <= 0 stores the entry without expiry.
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entry := &memEntry{value: make([]byte, len(value))}
	copy(entry.value, value)
	if ttl > 0 {
		entry.expiresAt = s.clock().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if element, ok := s.index[key]; ok {
		s.lru.MoveToFront(element)
	} else {
		s.index[key] = s.lru.PushFront(key)
	}
	s.entries[key] = entry

	for len(s.entries) > s.maxEntries {
		back := s.lru.Back()
		if back == nil {
			break
		}
		s.deleteLocked(back.Value.(string))
	}
	return nil
}

func (s *MemoryStore) deleteLocked(key string) {
	if element, ok := s.index[key]; ok {
		s.lru.Remove(element)
		delete(s.index, key)
	}
	delete(s.entries, key)
}

var _ Store = (*MemoryStore)(nil)
