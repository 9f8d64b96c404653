// Package cache is a process-local keyed store of snapshots with three
// eviction rules: absolute TTL, calendar-day expiry, and a rate-limit
// cooldown that suppresses refetching without discarding the last good
// value. A per-key fetch-in-progress flag gives single-flight semantics:
// at most one upstream call is outstanding for a key at a time.
package cache

import (
	"sync"
	"time"

	"github.com/XavierBriggs/Argus/pkg/models"
)

// Policy controls how an entry expires.
type Policy struct {
	ttl   time.Duration
	daily bool
}

// TTL expires the entry after d.
func TTL(d time.Duration) Policy {
	return Policy{ttl: d}
}

// Daily expires the entry when the local calendar day rolls over, regardless
// of TTL. Used for once-daily schedule caches.
func Daily() Policy {
	return Policy{daily: true}
}

// WithTTL adds an absolute TTL on top of an existing policy.
func (p Policy) WithTTL(d time.Duration) Policy {
	p.ttl = d
	return p
}

type entry struct {
	value         models.Snapshot
	expiresAt     time.Time // zero means no TTL
	dayKey        string    // empty means no daily expiry
	rateLimitedAt time.Time
	cooldown      time.Duration
}

// Store is the cache layer. Safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	entries  map[string]*entry
	inflight map[string]bool
	now      func() time.Time
}

// NewStore creates an empty cache.
func NewStore() *Store {
	return &Store{
		entries:  make(map[string]*entry),
		inflight: make(map[string]bool),
		now:      time.Now,
	}
}

// dayKey identifies the local calendar day, rolling over at local midnight.
func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Get returns the cached snapshot for key. An entry whose TTL or day-key
// has lapsed is treated as absent, but the value itself is retained so
// Stale can still serve it during a cooldown or outage.
func (s *Store) Get(key string) (models.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return models.Snapshot{}, false
	}

	now := s.now()
	if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
		return models.Snapshot{}, false
	}
	if e.dayKey != "" && e.dayKey != dayKey(now) {
		return models.Snapshot{}, false
	}
	return e.value, true
}

// Set overwrites the entry for key with snap under the given policy and
// clears any rate-limit cooldown. Entries are never partially updated.
func (s *Store) Set(key string, snap models.Snapshot, p Policy) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e := &entry{value: snap}
	if p.ttl > 0 {
		e.expiresAt = now.Add(p.ttl)
	}
	if p.daily {
		e.dayKey = dayKey(now)
	}
	s.entries[key] = e
}

// MarkRateLimited records that the previous fetch attempt for key hit a rate
// limit, without discarding the prior good value. While the cooldown is
// open, callers should serve stale data rather than refetch.
func (s *Store) MarkRateLimited(key string, cooldown time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	e.rateLimitedAt = s.now()
	e.cooldown = cooldown
}

// CoolingDown reports whether a rate-limit cooldown is open for key.
func (s *Store) CoolingDown(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.rateLimitedAt.IsZero() {
		return false
	}
	return s.now().Sub(e.rateLimitedAt) < e.cooldown
}

// Stale returns the last stored snapshot for key regardless of freshness.
// Used to serve old data during a cooldown or full provider outage.
func (s *Store) Stale(key string) (models.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.value.FetchedAt.IsZero() {
		return models.Snapshot{}, false
	}
	return e.value, true
}

// TryBeginFetch claims the single-flight slot for key. Returns false if a
// fetch is already in progress, in which case the caller should fall back to
// the current cached value instead of calling upstream.
func (s *Store) TryBeginFetch(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inflight[key] {
		return false
	}
	s.inflight[key] = true
	return true
}

// EndFetch releases the single-flight slot for key.
func (s *Store) EndFetch(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, key)
}
