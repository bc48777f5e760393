package memory

import (
	"context"
	"sync"
	"time"

	"github.com/summarybot/summarybot/internal/core/ports"
)

// Store implements ports.TierStore in process memory. It does not survive
// restarts. Expired entries are evicted lazily on read and, when a sweep
// interval is configured, by a background sweep so untouched keys do not
// accumulate forever.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	timeNow func() time.Time

	stopOnce sync.Once
	done     chan struct{}
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// New creates an in-memory tier. sweepInterval > 0 starts a background sweep
// that must be stopped with Close; sweepInterval <= 0 relies on lazy eviction
// only.
func New(sweepInterval time.Duration) *Store {
	s := &Store{
		entries: make(map[string]entry),
		timeNow: time.Now,
		done:    make(chan struct{}),
	}
	if sweepInterval > 0 {
		go s.sweepLoop(sweepInterval)
	}
	return s
}

func (s *Store) Name() string { return "memory" }

// Get implements TierStore.Get. It never reports unavailability.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := ports.ValidateKey(key); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !s.timeNow().Before(e.expiresAt) {
		s.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have renewed it.
		if cur, ok := s.entries[key]; ok && !s.timeNow().Before(cur.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set implements TierStore.Set.
func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ports.ValidateKey(key); err != nil {
		return err
	}
	if ttl <= 0 {
		return ports.ErrInvalidTTL
	}
	s.mu.Lock()
	s.entries[key] = entry{value: value, expiresAt: s.timeNow().Add(ttl)}
	s.mu.Unlock()
	return nil
}

// Delete implements TierStore.Delete.
func (s *Store) Delete(_ context.Context, key string) error {
	if err := ports.ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Health implements TierStore.Health. Process memory is always reachable.
func (s *Store) Health(context.Context) ports.TierHealth {
	return ports.TierHealthy
}

// Len reports the number of live entries, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// RemoveExpired drops every entry past its expiry and reports how many were
// removed.
func (s *Store) RemoveExpired() int {
	now := s.timeNow()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

func (s *Store) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.RemoveExpired()
		case <-s.done:
			return
		}
	}
}

// Close stops the background sweep, if any.
func (s *Store) Close() {
	s.stopOnce.Do(func() { close(s.done) })
}

var _ ports.TierStore = (*Store)(nil)
