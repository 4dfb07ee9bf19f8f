package cache

import (
	"sync"
	"time"

	"github.com/moznion/go-optional"
)

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Store is an in-memory TTL map keyed by string. A zero TTL disables expiry
// and a zero maxEntries disables the size bound. When full, expired entries
// are dropped first, then the oldest one.
type Store[V any] struct {
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	entries    map[string]entry[V]
	mu         sync.Mutex
}

type options struct {
	now func() time.Time
}

// Option customizes a Store or CacheV1.
type Option func(*options)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func NewStore[V any](ttl time.Duration, maxEntries int, opts ...Option) *Store[V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	return &Store[V]{
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        o.now,
		entries:    make(map[string]entry[V]),
		mu:         sync.Mutex{},
	}
}

// Get returns the value stored under key unless it has expired. Expired
// entries are dropped on access.
func (s *Store[V]) Get(key string) optional.Option[V] {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return optional.None[V]()
	}

	if s.expired(e) {
		delete(s.entries, key)

		return optional.None[V]()
	}

	return optional.Some(e.value)
}

// Set stores value under key.
func (s *Store[V]) Set(key string, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists && s.maxEntries > 0 && len(s.entries) >= s.maxEntries {
		s.evictLocked()
	}

	s.entries[key] = entry[V]{value: value, storedAt: s.now()}
}

// Len drops expired entries and returns the number still live.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()

	return len(s.entries)
}

func (s *Store[V]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]entry[V])
}

func (s *Store[V]) expired(e entry[V]) bool {
	return s.ttl > 0 && s.now().Sub(e.storedAt) >= s.ttl
}

func (s *Store[V]) pruneLocked() {
	if s.ttl <= 0 {
		return
	}

	for key, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, key)
		}
	}
}

// evictLocked drops expired entries, or the oldest one if none expired.
func (s *Store[V]) evictLocked() {
	s.pruneLocked()

	if len(s.entries) < s.maxEntries {
		return
	}

	oldestKey := ""
	var oldest time.Time

	for key, e := range s.entries {
		if oldestKey == "" || e.storedAt.Before(oldest) {
			oldestKey = key
			oldest = e.storedAt
		}
	}

	delete(s.entries, oldestKey)
}
