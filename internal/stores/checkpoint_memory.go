package stores

import (
	"context"
	"sync"
	"time"
)

// MemoryCheckpointStore keeps pending checkpoints in process memory. A
// cancellable background sweeper evicts expired records eventually; Get
// still evicts lazily so expiry never depends on the sweep having run.
type MemoryCheckpointStore struct {
	mu      sync.RWMutex
	records map[string]*Checkpoint

	sweepInterval time.Duration
	done          chan struct{}
	closeOnce     sync.Once
	swept         func(owner string)
}

// NewMemoryCheckpointStore starts a store whose sweeper fires every
// sweepInterval (default one hour). swept, when non-nil, is invoked for
// each evicted owner; the engine uses it for metrics.
func NewMemoryCheckpointStore(sweepInterval time.Duration, swept func(owner string)) *MemoryCheckpointStore {
	if sweepInterval <= 0 {
		sweepInterval = time.Hour
	}

	s := &MemoryCheckpointStore{
		records:       make(map[string]*Checkpoint),
		sweepInterval: sweepInterval,
		done:          make(chan struct{}),
		swept:         swept,
	}

	go s.sweepLoop()
	return s
}

func (s *MemoryCheckpointStore) Save(
	_ context.Context,
	owner string,
	record *Checkpoint,
	_ time.Duration,
) error {
	clone := *record
	clone.Secret = append([]byte(nil), record.Secret...)
	clone.Cookies = append([]byte(nil), record.Cookies...)

	s.mu.Lock()
	defer s.mu.Unlock()

	if prior, ok := s.records[owner]; ok {
		prior.Wipe()
	}
	s.records[owner] = &clone
	return nil
}

func (s *MemoryCheckpointStore) Get(_ context.Context, owner string) (*Checkpoint, error) {
	s.mu.RLock()
	record, ok := s.records[owner]
	var clone Checkpoint
	if ok {
		// Clone while the lock is held; a concurrent sweep may wipe the
		// record the moment it is released.
		clone = *record
		clone.Secret = append([]byte(nil), record.Secret...)
		clone.Cookies = append([]byte(nil), record.Cookies...)
	}
	s.mu.RUnlock()

	if !ok {
		return nil, ErrCheckpointNotFound
	}
	if time.Now().Unix() > clone.ExpiresAt {
		s.evict(owner, clone.ExpiresAt)
		return nil, ErrCheckpointExpired
	}
	return &clone, nil
}

func (s *MemoryCheckpointStore) Delete(_ context.Context, owner string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[owner]
	if !ok {
		return false, nil
	}
	record.Wipe()
	delete(s.records, owner)
	return true, nil
}

func (s *MemoryCheckpointStore) RecordFailure(
	_ context.Context,
	owner string,
	maxAttempts int,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[owner]
	if !ok {
		return false, ErrCheckpointNotFound
	}
	if time.Now().Unix() > record.ExpiresAt {
		record.Wipe()
		delete(s.records, owner)
		return false, ErrCheckpointExpired
	}

	record.Attempts++
	if int(record.Attempts) >= maxAttempts {
		record.Wipe()
		delete(s.records, owner)
		return true, nil
	}
	return false, nil
}

// Close stops the sweeper and wipes every held record.
func (s *MemoryCheckpointStore) Close() {
	s.closeOnce.Do(func() {
		close(s.done)

		s.mu.Lock()
		defer s.mu.Unlock()
		for owner, record := range s.records {
			record.Wipe()
			delete(s.records, owner)
		}
	})
}

func (s *MemoryCheckpointStore) sweepLoop() {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.done:
			return
		}
	}
}

// sweep collects expired owners under the read lock, then evicts each one
// individually so concurrent lookups are never blocked behind a full scan.
func (s *MemoryCheckpointStore) sweep() {
	now := time.Now().Unix()

	s.mu.RLock()
	expired := make([]string, 0)
	deadlines := make([]int64, 0)
	for owner, record := range s.records {
		if now > record.ExpiresAt {
			expired = append(expired, owner)
			deadlines = append(deadlines, record.ExpiresAt)
		}
	}
	s.mu.RUnlock()

	for i, owner := range expired {
		if s.evict(owner, deadlines[i]) && s.swept != nil {
			s.swept(owner)
		}
	}
}

// evict removes owner only if the stored record still carries the same
// deadline, so a checkpoint overwritten after the scan survives.
func (s *MemoryCheckpointStore) evict(owner string, expiresAt int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[owner]
	if !ok || record.ExpiresAt != expiresAt {
		return false
	}
	record.Wipe()
	delete(s.records, owner)
	return true
}
