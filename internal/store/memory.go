package store

import (
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when an export is unknown or has expired.
	ErrNotFound = errors.New("export not found")
)

// Export is a generated CSV file waiting to be downloaded.
type Export struct {
	ID          string    `json:"id"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Data        []byte    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}

// MemoryStore is a concurrency-safe in-memory holding area for exports.
type MemoryStore struct {
	mu sync.RWMutex

	// key: export id
	data map[string]Export

	// retention configuration
	maxEntries int           // max number of exports kept
	maxAge     time.Duration // max age of an export

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxEntries or maxAge is <= 0, it is treated as unlimited.
func NewMemoryStore(maxEntries int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]Export),
		maxEntries: maxEntries,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Save stores an export and enforces retention. An export with an existing
// ID replaces the previous one.
func (s *MemoryStore) Save(e Export) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[e.ID] = e
	s.purgeLocked(s.now())

	// Enforce retention by count, oldest first.
	if s.maxEntries > 0 && len(s.data) > s.maxEntries {
		ids := make([]string, 0, len(s.data))
		for id := range s.data {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			return s.data[ids[i]].CreatedAt.Before(s.data[ids[j]].CreatedAt)
		})
		for _, id := range ids[:len(ids)-s.maxEntries] {
			delete(s.data, id)
		}
	}
}

// Get returns the export with the given id.
func (s *MemoryStore) Get(id string) (Export, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[id]
	if !ok || s.expired(e, s.now()) {
		return Export{}, ErrNotFound
	}
	return e, nil
}

// Purge removes every export older than the configured max age and
// returns how many were removed.
func (s *MemoryStore) Purge(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.purgeLocked(now)
}

// Len returns the number of stored exports, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *MemoryStore) purgeLocked(now time.Time) int {
	if s.maxAge <= 0 {
		return 0
	}
	removed := 0
	for id, e := range s.data {
		if s.expired(e, now) {
			delete(s.data, id)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) expired(e Export, now time.Time) bool {
	return s.maxAge > 0 && e.CreatedAt.Before(now.Add(-s.maxAge))
}
