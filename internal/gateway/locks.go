// Package gateway funnels every allocation mutation through a per-pool
// serialization point, so concurrent requests against the same pool apply
// one at a time while distinct pools proceed independently.
package gateway

import (
	"sync"
	"time"
)

// lockEntry holds one pool's mutex plus the bookkeeping the janitor needs
// to know when the entry can be dropped.
type lockEntry struct {
	mu       sync.Mutex
	refs     int
	lastSeen time.Time
}

// LockStore hands out one mutex per key on demand and reclaims idle ones.
// Safe for concurrent use.
type LockStore struct {
	mu      sync.Mutex
	entries map[string]*lockEntry

	idleTTL      time.Duration
	cleanupEvery time.Duration

	stopOnce sync.Once
	stop     chan struct{}
}

// LockStoreOption configures a LockStore
type LockStoreOption func(*LockStore)

// WithIdleTTL sets how long an unused entry survives before cleanup
func WithIdleTTL(ttl time.Duration) LockStoreOption {
	return func(s *LockStore) {
		s.idleTTL = ttl
	}
}

// WithCleanupEvery sets the janitor interval. Zero disables the janitor;
// Cleanup can still be called manually.
func WithCleanupEvery(every time.Duration) LockStoreOption {
	return func(s *LockStore) {
		s.cleanupEvery = every
	}
}

// NewLockStore creates a lock store and starts its janitor if an interval
// is configured.
func NewLockStore(opts ...LockStoreOption) *LockStore {
	s := &LockStore{
		entries:      make(map[string]*lockEntry),
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
		stop:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cleanupEvery > 0 {
		go s.janitor()
	}
	return s
}

// Lock blocks until the key's mutex is held and returns the unlock func.
// The entry cannot be reclaimed while any caller holds or waits on it.
func (s *LockStore) Lock(key string) func() {
	s.mu.Lock()
	entry, ok := s.entries[key]
	if !ok {
		entry = &lockEntry{}
		s.entries[key] = entry
	}
	entry.refs++
	s.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()
		s.mu.Lock()
		entry.refs--
		entry.lastSeen = time.Now()
		s.mu.Unlock()
	}
}

// Cleanup drops entries that nobody holds and nobody has touched within
// the idle TTL.
func (s *LockStore) Cleanup() {
	cutoff := time.Now().Add(-s.idleTTL)
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, entry := range s.entries {
		if entry.refs == 0 && entry.lastSeen.Before(cutoff) {
			delete(s.entries, key)
		}
	}
}

// Len reports how many entries the store currently tracks
func (s *LockStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close stops the janitor
func (s *LockStore) Close() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

func (s *LockStore) janitor() {
	ticker := time.NewTicker(s.cleanupEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Cleanup()
		case <-s.stop:
			return
		}
	}
}
