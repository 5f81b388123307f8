package session

import (
	"context"
	"slices"
	"sync"
	"time"
)

// DefaultCapacity bounds the in-memory registry.
const DefaultCapacity = 64

type memoryEntry struct {
	session *Session
	expires time.Time
}

// MemoryStore is an in-process Store. Sessions expire after the TTL and the
// oldest is evicted once capacity is reached.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	now      func() time.Time
	entries  map[string]memoryEntry
	order    []string // oldest first
}

// MemoryOption customizes a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithCapacity sets the maximum number of sessions kept.
func WithCapacity(n int) MemoryOption {
	return func(m *MemoryStore) { m.capacity = n }
}

// WithClock overrides the clock used for expiry.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *MemoryStore) { m.now = now }
}

// NewMemoryStore creates a MemoryStore. ttl <= 0 uses DefaultTTL.
func NewMemoryStore(ttl time.Duration, opts ...MemoryOption) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &MemoryStore{
		ttl:      ttl,
		capacity: DefaultCapacity,
		now:      time.Now,
		entries:  make(map[string]memoryEntry),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.capacity = max(m.capacity, 1)
	return m
}

func (m *MemoryStore) Put(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.expire()
	if _, ok := m.entries[s.ID]; ok {
		m.remove(s.ID)
	}
	for len(m.order) >= m.capacity {
		m.remove(m.order[0])
	}

	m.entries[s.ID] = memoryEntry{session: s, expires: m.now().Add(m.ttl)}
	m.order = append(m.order, s.ID)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.expire()
	e, ok := m.entries[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e.session, nil
}

func (m *MemoryStore) Latest(_ context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.expire()
	if len(m.order) == 0 {
		return nil, ErrSessionNotFound
	}
	return m.entries[m.order[len(m.order)-1]].session, nil
}

// Len returns the number of live sessions.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expire()
	return len(m.order)
}

// expire drops dead sessions. Callers hold mu.
func (m *MemoryStore) expire() {
	now := m.now()
	for _, id := range slices.Clone(m.order) {
		if !now.Before(m.entries[id].expires) {
			m.remove(id)
		}
	}
}

func (m *MemoryStore) remove(id string) {
	delete(m.entries, id)
	m.order = slices.DeleteFunc(m.order, func(v string) bool { return v == id })
}
