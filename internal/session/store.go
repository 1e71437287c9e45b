package session

import (
	"context"
	"sync"
	"time"
)

// Store keeps one State per session id. Update runs fn against the current
// state and persists the result atomically with respect to other calls for
// the same id; if fn returns an error nothing is written.
type Store interface {
	Load(ctx context.Context, id string) (*State, error)
	Update(ctx context.Context, id string, fn func(*State) error) (*State, error)
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	state    *State
	lastSeen time.Time
}

// MemoryStore is an in-process Store. Idle sessions are dropped by Sweep.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]*memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*memoryEntry),
	}
}

// Load returns a copy of the state for id, or a fresh empty state when the
// session has none yet.
func (m *MemoryStore) Load(_ context.Context, id string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.live(id)
	if !ok {
		return newState(m.now()), nil
	}
	e.lastSeen = m.now()
	return e.state.clone(), nil
}

func (m *MemoryStore) Update(_ context.Context, id string, fn func(*State) error) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var working *State
	if e, ok := m.live(id); ok {
		working = e.state.clone()
	} else {
		working = newState(m.now())
	}
	if err := fn(working); err != nil {
		return nil, err
	}
	m.entries[id] = &memoryEntry{state: working, lastSeen: m.now()}
	return working.clone(), nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// Sweep removes sessions idle for longer than the store TTL and returns how
// many were removed.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, e := range m.entries {
		if m.expired(e) {
			delete(m.entries, id)
			removed++
		}
	}
	return removed
}

// Len is the number of sessions held, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MemoryStore) live(id string) (*memoryEntry, bool) {
	e, ok := m.entries[id]
	if !ok {
		return nil, false
	}
	if m.expired(e) {
		delete(m.entries, id)
		return nil, false
	}
	return e, true
}

func (m *MemoryStore) expired(e *memoryEntry) bool {
	return m.ttl > 0 && m.now().Sub(e.lastSeen) > m.ttl
}
