package agent

import (
	"context"
	"sync"
)

// Store holds TeamState per team. Update must run fn as an atomic
// read-modify-write with respect to every other Update on the same team; a
// non-nil error from fn aborts the write.
type Store interface {
	Load(ctx context.Context, team string) (*TeamState, error)
	Update(ctx context.Context, team string, fn func(*TeamState) error) error
}

// MemoryStore is an in-process Store guarded by a single mutex.
type MemoryStore struct {
	mu    sync.Mutex
	teams map[string]*TeamState
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{teams: make(map[string]*TeamState)}
}

// Load returns a copy of the team's state, or an empty state if none exists.
func (m *MemoryStore) Load(_ context.Context, team string) (*TeamState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.teams[team]; ok {
		return st.Clone(), nil
	}
	return &TeamState{}, nil
}

// Update runs fn on a copy of the team's state and stores the copy if fn
// succeeds.
func (m *MemoryStore) Update(ctx context.Context, team string, fn func(*TeamState) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	st := &TeamState{}
	if cur, ok := m.teams[team]; ok {
		st = cur.Clone()
	}
	if err := fn(st); err != nil {
		return err
	}
	m.teams[team] = st
	return nil
}

// Delete drops a team's state.
func (m *MemoryStore) Delete(_ context.Context, team string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.teams, team)
	return nil
}
