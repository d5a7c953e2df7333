package cookies

import (
	"context"
	"errors"
	"sync"
)

// ErrNoSnapshot is returned by Restore when no cookies were ever persisted
// for the owner.
var ErrNoSnapshot = errors.New("no cookie snapshot for owner")

// Store persists cookie snapshots per owner so an authenticated session
// survives beyond the process that created it. The backing implementation
// is swappable; the contract is only that snapshots are keyed by owner and
// never visible across owners.
type Store interface {
	Persist(ctx context.Context, owner string, snapshot []byte) error
	Restore(ctx context.Context, owner string) ([]byte, error)
	Drop(ctx context.Context, owner string) error
}

// MemoryStore keeps snapshots in process memory. Suitable for tests and
// single-process deployments.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string][]byte)}
}

func (s *MemoryStore) Persist(_ context.Context, owner string, snapshot []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(snapshot))
	copy(stored, snapshot)
	s.snapshots[owner] = stored
	return nil
}

func (s *MemoryStore) Restore(_ context.Context, owner string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.snapshots[owner]
	if !ok {
		return nil, ErrNoSnapshot
	}

	out := make([]byte, len(snapshot))
	copy(out, snapshot)
	return out, nil
}

func (s *MemoryStore) Drop(_ context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, owner)
	return nil
}
