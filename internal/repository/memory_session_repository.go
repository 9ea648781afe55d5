package repository

import (
	"context"
	"ctchen222/tic-tac-toe-history/internal/game"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

type memorySessionRepository struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemorySessionRepository creates a SessionRepository kept in process memory.
func NewMemorySessionRepository(ttl time.Duration) SessionRepository {
	return newMemorySessionRepository(ttl, time.Now)
}

func newMemorySessionRepository(ttl time.Duration, now func() time.Time) *memorySessionRepository {
	return &memorySessionRepository{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]memoryEntry),
	}
}

// Save stores the snapshot in its encoded form, so later changes to the
// caller's values never leak into the repository.
func (r *memorySessionRepository) Save(_ context.Context, id string, snap game.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = memoryEntry{data: data, expiresAt: r.now().Add(r.ttl)}
	return nil
}

func (r *memorySessionRepository) FindByID(_ context.Context, id string) (*game.State, error) {
	r.mu.Lock()
	entry, ok := r.entries[id]
	if ok && !r.now().Before(entry.expiresAt) {
		delete(r.entries, id)
		ok = false
	}
	r.mu.Unlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	return decodeSnapshot(entry.data)
}

func (r *memorySessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
	return nil
}
